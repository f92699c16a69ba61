// Package cli wires the configuration, logging and pipeline packages into
// the pluginrepo command tree.
package cli

import (
	"errors"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/csp2hub/plugin-repository/internal/config"
	"github.com/csp2hub/plugin-repository/internal/domain"
)

// ErrChecksFailed is returned when a command ran to completion but found
// errors. The findings have already been printed.
var ErrChecksFailed = errors.New("checks failed")

// app carries state shared by every subcommand
type app struct {
	cfg *config.Config

	pluginsDir   string
	manifestPath string
}

// NewRootCmd builds the command tree
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "pluginrepo",
		Short: "Maintain the CSP2 plugin catalog",
		Long: "pluginrepo builds, validates, link-checks and serves the curated catalog\n" +
			"of CounterStrikeSharp plugins.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("plugins-dir") {
				cfg.Paths.PluginsDir = a.pluginsDir
			}
			if flags.Changed("manifest") {
				cfg.Paths.ManifestPath = a.manifestPath
			}

			setupLogger(cfg.Logging.Level, cfg.Logging.Format, cmd.ErrOrStderr())
			a.cfg = cfg
			return nil
		},
	}

	root.PersistentFlags().StringVar(&a.pluginsDir, "plugins-dir", "", "directory of plugin config files (overrides PLUGINS_DIR)")
	root.PersistentFlags().StringVar(&a.manifestPath, "manifest", "", "manifest file path (overrides MANIFEST_PATH)")

	root.AddCommand(
		newGenerateCmd(a),
		newValidateCmd(a),
		newCheckLinksCmd(a),
		newServeCmd(a),
		newHealthCheckCmd(a),
	)

	return root
}

// Execute runs the command tree and returns the process exit code
func Execute() int {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		switch {
		case domain.IsValidationError(err):
			log.Debug().Err(err).Msg("Validation reported errors")
		case errors.Is(err, ErrChecksFailed):
		default:
			log.Error().Err(err).Msg("Command failed")
			root.PrintErrln("Error:", err)
		}
		return 1
	}
	return 0
}

func setupLogger(level, format string, w io.Writer) {
	zerolog.TimeFieldFormat = time.RFC3339

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	if w == nil {
		w = os.Stderr
	}
	if format == "text" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen})
	} else {
		log.Logger = zerolog.New(w).With().Timestamp().Logger()
	}
}
