package security

import (
	"context"
	"math"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/ZanzyTHEbar/marcom-ideamaker/internal/cache"
	apperrors "github.com/ZanzyTHEbar/marcom-ideamaker/internal/errors"
	"github.com/ZanzyTHEbar/marcom-ideamaker/internal/monitoring"
)

// SecurityConfig holds security configuration
type SecurityConfig struct {
	MaxRequestsPerMin int           `json:"max_requests_per_min"`
	Burst             int           `json:"burst"`
	MaxBodyBytes      int64         `json:"max_body_bytes"`
	RequestTimeout    time.Duration `json:"request_timeout"`
	LimiterIdleTTL    time.Duration `json:"limiter_idle_ttl"`
	EnableHSTS        bool          `json:"enable_hsts"`
}

// DefaultSecurityConfig returns secure defaults
func DefaultSecurityConfig() SecurityConfig {
	return SecurityConfig{
		MaxRequestsPerMin: 20,
		Burst:             5,
		MaxBodyBytes:      64 << 10,
		RequestTimeout:    5 * time.Minute,
		LimiterIdleTTL:    10 * time.Minute,
	}
}

// pruneEvery bounds how many new limiters are created between sweeps of idle ones.
const pruneEvery = 256

// SecurityMiddleware guards the API. Rate limiting applies per client IP and
// only to the routes it is installed on.
type SecurityMiddleware struct {
	config  SecurityConfig
	metrics *monitoring.Metrics

	mu       sync.Mutex
	limiters *cache.Cache[string, *rate.Limiter]
	created  int
}

// NewSecurityMiddleware creates a new security middleware instance
func NewSecurityMiddleware(config SecurityConfig, metrics *monitoring.Metrics) *SecurityMiddleware {
	d := DefaultSecurityConfig()
	if config.MaxRequestsPerMin <= 0 {
		config.MaxRequestsPerMin = d.MaxRequestsPerMin
	}
	if config.Burst <= 0 {
		config.Burst = d.Burst
	}
	if config.MaxBodyBytes <= 0 {
		config.MaxBodyBytes = d.MaxBodyBytes
	}
	if config.LimiterIdleTTL <= 0 {
		config.LimiterIdleTTL = d.LimiterIdleTTL
	}

	return &SecurityMiddleware{
		config:   config,
		metrics:  metrics,
		limiters: cache.New[string, *rate.Limiter](config.LimiterIdleTTL),
	}
}

// limiter returns the bucket of ip. Each use refreshes its idle timer.
func (sm *SecurityMiddleware) limiter(ip string) *rate.Limiter {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	l, ok := sm.limiters.Get(ip)
	if !ok {
		l = rate.NewLimiter(rate.Every(time.Minute/time.Duration(sm.config.MaxRequestsPerMin)), sm.config.Burst)
		sm.created++
		if sm.created%pruneEvery == 0 {
			sm.limiters.Prune()
		}
	}
	sm.limiters.Set(ip, l)
	return l
}

// RateLimitByIP rejects clients that exceed their per-minute allowance
func (sm *SecurityMiddleware) RateLimitByIP(c *gin.Context) {
	r := sm.limiter(c.ClientIP()).Reserve()
	if !r.OK() {
		sm.reject(c, "60")
		return
	}
	if delay := r.Delay(); delay > 0 {
		r.Cancel()
		sm.reject(c, strconv.Itoa(int(math.Ceil(delay.Seconds()))))
		return
	}
	c.Next()
}

func (sm *SecurityMiddleware) reject(c *gin.Context, retryAfter string) {
	sm.metrics.IncrementRateLimited()
	c.Header("Retry-After", retryAfter)
	apperrors.Respond(c, apperrors.NewRateLimitError(retryAfter))
}

// LimiterStats reports how many client buckets are tracked
func (sm *SecurityMiddleware) LimiterStats() map[string]interface{} {
	return sm.limiters.Stats()
}

// LimitBody caps the request body size
func (sm *SecurityMiddleware) LimitBody(c *gin.Context) {
	if c.Request.Body != nil {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, sm.config.MaxBodyBytes)
	}
	c.Next()
}

// ValidateContentType only lets JSON bodies through on write requests
func (sm *SecurityMiddleware) ValidateContentType(c *gin.Context) {
	switch c.Request.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
	default:
		c.Next()
		return
	}

	contentType := strings.ToLower(c.GetHeader("Content-Type"))
	if contentType != "" && !strings.HasPrefix(contentType, "application/json") {
		c.AbortWithStatusJSON(http.StatusUnsupportedMediaType, apperrors.Response{
			Error:    "JSON 요청만 지원합니다.",
			Category: apperrors.CategoryValidation,
		})
		return
	}
	c.Next()
}

// RequestTimeout bounds the request context; model calls observe it
func (sm *SecurityMiddleware) RequestTimeout(c *gin.Context) {
	if sm.config.RequestTimeout <= 0 {
		c.Next()
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), sm.config.RequestTimeout)
	defer cancel()

	c.Request = c.Request.WithContext(ctx)
	c.Header("X-Timeout", strconv.Itoa(int(sm.config.RequestTimeout.Seconds())))
	c.Next()
}

var (
	scriptPattern  = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	htmlTagPattern = regexp.MustCompile(`<[^>]+>`)
	spacePattern   = regexp.MustCompile(`[ \t]+`)
)

// SanitizeText strips markup and control characters from free text that is
// embedded in prompts, keeping line breaks.
func SanitizeText(input string) string {
	input = strings.ToValidUTF8(input, "")
	input = scriptPattern.ReplaceAllString(input, "")
	input = htmlTagPattern.ReplaceAllString(input, "")
	input = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, input)
	input = spacePattern.ReplaceAllString(input, " ")
	return strings.TrimSpace(input)
}

// ValidateText sanitizes input and rejects it when it is longer than maxRunes.
func ValidateText(field, input string, maxRunes int) (string, error) {
	clean := SanitizeText(input)
	if maxRunes > 0 && utf8.RuneCountInString(clean) > maxRunes {
		return "", apperrors.NewValidationError(field+"은(는) "+strconv.Itoa(maxRunes)+"자 이내로 입력해주세요.", field)
	}
	return clean, nil
}
