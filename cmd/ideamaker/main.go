package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	apperrors "github.com/ZanzyTHEbar/marcom-ideamaker/internal/errors"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "ideamaker",
		Short: "Marketing content ideation from upcoming events",
		Long: `ideamaker researches the events around a target day, turns them into
social post concepts for a brand and builds annual event calendars.

Run "ideamaker serve" for the web UI, or use the one-shot commands.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "",
		"config file (default $IDEAMAKER_CONFIG or ./ideamaker.yaml)")

	cmd.AddCommand(
		newServeCmd(opts),
		newIdeasCmd(opts),
		newCalendarCmd(opts),
		newTZCmd(opts),
	)
	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", apperrors.UserMessage(err))
		os.Exit(1)
	}
}
