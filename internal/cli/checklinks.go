package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/csp2hub/plugin-repository/internal/domain"
	"github.com/csp2hub/plugin-repository/internal/linkcheck"
)

func newCheckLinksCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check-links",
		Short: "Probe every URL published in the manifest",
		Long: "check-links sends a HEAD request to each plugin's download, repository,\n" +
			"homepage and icon URL. Any non-2xx answer or network error fails the run.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheckLinks(cmd.Context(), a, cmd.OutOrStdout())
		},
	}
}

func runCheckLinks(ctx context.Context, a *app, out io.Writer) error {
	cfg := a.cfg
	p := printer{out: out}

	p.banner("CSP2 Link Checker")

	checker := linkcheck.NewChecker(linkcheck.Options{
		Timeout:  cfg.LinkCheck.Timeout,
		Delay:    cfg.LinkCheck.Delay,
		OnPlugin: p.pluginLinks,
	})

	summary, err := checker.CheckFile(ctx, cfg.Paths.ManifestPath)
	if err != nil {
		if domain.IsResourceMissing(err) {
			p.line("%s Manifest not found: %s", red("x"), cfg.Paths.ManifestPath)
			p.text(yellow("   Run \"pluginrepo generate\" first"))
			return ErrChecksFailed
		}
		return err
	}

	p.linkSummary(summary)

	if !summary.OK() {
		return ErrChecksFailed
	}
	return nil
}
