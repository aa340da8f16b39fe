package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/ZanzyTHEbar/marcom-ideamaker/docs"
	apperrors "github.com/ZanzyTHEbar/marcom-ideamaker/internal/errors"
	"github.com/ZanzyTHEbar/marcom-ideamaker/internal/frontend"
	"github.com/ZanzyTHEbar/marcom-ideamaker/internal/middleware"
	"github.com/ZanzyTHEbar/marcom-ideamaker/internal/monitoring"
	"github.com/ZanzyTHEbar/marcom-ideamaker/internal/security"
)

const shutdownTimeout = 30 * time.Second

func newServeCmd(opts *rootOptions) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web UI and HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts, true)
			if err != nil {
				return err
			}
			if listen != "" {
				cfg.Listen = listen
			}
			model, err := newModel(cfg)
			if err != nil {
				return err
			}
			logger := monitoring.NewLogger(monitoring.ParseLevel(cfg.LogLevel))
			app := newApp(cfg, model, logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return app.serve(ctx)
		},
	}
	cmd.Flags().StringVarP(&listen, "listen", "l", "", "listen address, overrides the config file")
	return cmd
}

// serve runs the HTTP server until ctx is cancelled, then drains in-flight
// requests.
func (a *App) serve(ctx context.Context) error {
	router, err := a.router()
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              a.cfg.Listen,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.SystemLogger("server_start", "listening on "+a.cfg.Listen)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return apperrors.NewConfigError("서버를 시작할 수 없습니다.", err)
	case <-ctx.Done():
	}

	a.logger.SystemLogger("server_shutdown", "draining requests")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("Server forced to shutdown", "error", err)
		return err
	}
	a.logger.SystemLogger("server_stopped", "")
	return nil
}

func (a *App) securityConfig() security.SecurityConfig {
	sc := a.cfg.Security
	return security.SecurityConfig{
		MaxRequestsPerMin: sc.RequestsPerMinute,
		Burst:             sc.Burst,
		MaxBodyBytes:      sc.MaxBodyBytes,
		RequestTimeout:    sc.RequestTimeout,
		EnableHSTS:        sc.EnableHSTS,
	}
}

// router builds the gin engine with the API, docs, metrics and the UI.
func (a *App) router() (*gin.Engine, error) {
	dist, err := frontend.GetDistFS()
	if err != nil {
		return nil, apperrors.NewInternalError("UI 파일을 불러올 수 없습니다.", err)
	}
	index, err := frontend.LoadIndexTemplate(dist)
	if err != nil {
		return nil, apperrors.NewInternalError("UI 템플릿을 불러올 수 없습니다.", err)
	}

	r := gin.New()
	if err := r.SetTrustedProxies(a.cfg.Security.TrustedProxies); err != nil {
		return nil, apperrors.NewConfigError("trusted_proxies 값이 올바르지 않습니다.", err)
	}

	sm := security.NewSecurityMiddleware(a.securityConfig(), a.metrics)
	gz := middleware.NewCompressionMiddleware(middleware.DefaultCompressionConfig())

	r.Use(monitoring.RequestIDMiddleware())
	r.Use(monitoring.MonitoringMiddleware(a.metrics, a.logger))
	r.Use(monitoring.SecurityMonitoringMiddleware(a.logger))
	r.Use(gz.Handler())
	r.Use(apperrors.ErrorHandler())
	r.Use(apperrors.RecoveryHandler())
	r.Use(security.SecurityHeadersMiddleware(a.cfg.Security.EnableHSTS))

	r.GET("/health", a.health(sm, gz))
	r.GET("/metrics", gin.WrapH(a.metrics.Handler()))

	docs.SwaggerInfo.Version = version
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api")
	api.Use(cors.New(cors.Config{
		AllowOrigins:     a.cfg.Security.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", monitoring.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Disposition", monitoring.RequestIDHeader, "Retry-After"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))
	api.Use(sm.LimitBody, sm.ValidateContentType, sm.RequestTimeout)
	{
		api.GET("/options", a.getOptions)
		api.GET("/session", a.getSession)
		api.POST("/ideas", sm.RateLimitByIP, a.postIdeas)
		api.POST("/cards/:id/refine", sm.RateLimitByIP, a.postRefine)
		api.POST("/cards/:id/publish/preview", a.postPublishPreview)
		api.POST("/cards/:id/publish", a.postPublish)
		api.POST("/calendar/:year", sm.RateLimitByIP, a.postCalendar)
		api.GET("/calendar/:year/export", a.getCalendarExport)
	}

	r.NoRoute(security.CSPMiddleware(), frontend.NewUIHandler(dist, index))
	return r, nil
}

// health reports the process, the model breaker and the rate limiter. An
// open breaker marks the service degraded.
func (a *App) health(sm *security.SecurityMiddleware, gz *middleware.CompressionMiddleware) gin.HandlerFunc {
	return func(c *gin.Context) {
		model := a.modelStats()
		resp := gin.H{
			"status":       "ok",
			"timestamp":    a.now().Format(time.RFC3339),
			"version":      version,
			"metrics":      a.metrics.GetStats(),
			"rate_limiter": sm.LimiterStats(),
			"compression":  gz.GetStats(),
		}
		if model != nil {
			resp["model"] = model
			if model["state"] == "open" {
				resp["status"] = "degraded"
				c.JSON(http.StatusServiceUnavailable, resp)
				return
			}
		}
		c.JSON(http.StatusOK, resp)
	}
}

func init() {
	if os.Getenv(gin.EnvGinMode) == "" {
		gin.SetMode(gin.ReleaseMode)
	}
}
