package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/csp2hub/plugin-repository/internal/domain"
	"github.com/csp2hub/plugin-repository/internal/github"
	"github.com/csp2hub/plugin-repository/internal/loader"
	"github.com/csp2hub/plugin-repository/internal/manifest"
)

func newGenerateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "generate",
		Short: "Build the manifest from plugin configs and live GitHub data",
		Long: "generate reads every enabled plugin config, resolves its latest release\n" +
			"and repository details from GitHub and atomically writes the manifest.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd.Context(), a, cmd.OutOrStdout())
		},
	}
}

func runGenerate(ctx context.Context, a *app, out io.Writer) error {
	cfg := a.cfg
	p := printer{out: out}

	if !cfg.GitHub.HasToken() {
		log.Warn().Msg("GITHUB_TOKEN is not set, requests are subject to the anonymous rate limit")
		p.text(yellow("Set GITHUB_TOKEN environment variable for higher rate limits."))
	}

	client := github.NewClient(github.ClientConfig{
		APIURL:   cfg.GitHub.APIURL,
		Token:    cfg.GitHub.Token,
		Timeout:  cfg.GitHub.Timeout,
		CacheDir: cfg.GitHub.CacheDir,
	})

	previous, err := manifest.Read(cfg.Paths.ManifestPath)
	if err != nil {
		if !domain.IsResourceMissing(err) {
			log.Warn().Err(err).Msg("Previous manifest unreadable, downgrade detection disabled")
		}
		previous = nil
	}

	assembler := manifest.NewAssembler(loader.NewFileConfigLoader(cfg.Paths.PluginsDir), client, manifest.Options{
		DefaultPattern: cfg.Generate.DownloadPattern,
		RequestDelay:   cfg.Generate.RequestDelay,
	})

	result, err := assembler.Assemble(ctx, previous)
	if err != nil {
		return fmt.Errorf("failed to assemble manifest: %w", err)
	}

	if err := manifest.Write(cfg.Paths.ManifestPath, result.Manifest); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	p.generated(result, cfg.Paths.ManifestPath)
	return nil
}
