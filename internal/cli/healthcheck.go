package cli

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
)

func newHealthCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "healthcheck",
		Short: "Query /health of a local catalog server",
		Long: "healthcheck exits 0 when the server on PORT answers /health with 200,\n" +
			"for use as a container health probe.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return performHealthCheck(fmt.Sprintf("http://localhost:%d/health", a.cfg.Server.Port), cmd)
		},
	}
}

func performHealthCheck(url string, cmd *cobra.Command) error {
	client := &http.Client{
		Timeout: 3 * time.Second,
	}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check failed: HTTP %d", resp.StatusCode)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Health check passed")
	return nil
}
