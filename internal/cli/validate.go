package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/csp2hub/plugin-repository/internal/schema"
	"github.com/csp2hub/plugin-repository/internal/validate"
)

func newValidateCmd(a *app) *cobra.Command {
	var pluginSchema, manifestSchema string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate plugin configs and the persisted manifest",
		Long: "validate checks every plugin config against the plugin schema and the\n" +
			"structural rules, then checks the manifest if it has been generated.\n" +
			"Warnings never fail the run.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("plugin-schema") {
				a.cfg.Paths.PluginSchemaPath = pluginSchema
			}
			if cmd.Flags().Changed("manifest-schema") {
				a.cfg.Paths.ManifestSchemaPath = manifestSchema
			}
			return runValidate(cmd.Context(), a, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&pluginSchema, "plugin-schema", "", "plugin JSON Schema file (default embedded)")
	cmd.Flags().StringVar(&manifestSchema, "manifest-schema", "", "manifest JSON Schema file (default embedded)")

	return cmd
}

func runValidate(ctx context.Context, a *app, out io.Writer) error {
	cfg := a.cfg

	pluginSchema, err := schema.PluginSchema(cfg.Paths.PluginSchemaPath)
	if err != nil {
		return fmt.Errorf("failed to load plugin schema: %w", err)
	}
	manifestSchema, err := schema.ManifestSchema(cfg.Paths.ManifestSchemaPath)
	if err != nil {
		return fmt.Errorf("failed to load manifest schema: %w", err)
	}

	report, err := validate.New(pluginSchema, manifestSchema).Run(ctx, cfg.Paths.PluginsDir, cfg.Paths.ManifestPath)
	if err != nil {
		return err
	}

	printer{out: out}.validation(report)

	if err := report.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrChecksFailed, err)
	}
	return nil
}
