package main

import (
	"github.com/spf13/cobra"

	"github.com/yacobolo/twbridge"
	"github.com/yacobolo/twbridge/internal/lsp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the language server on stdio",
	Long: `Serve completion, hover, color, diagnostics and quick fixes for class
attributes over the Language Server Protocol. Logs go to stderr.`,
	PreRunE: func(cmd *cobra.Command, _ []string) error {
		return loadConfig(cmd)
	},
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		logger := newLogger()

		settings, err := buildSettings()
		if err != nil {
			return err
		}
		sheet, err := loadStylesheet()
		if err != nil {
			return err
		}

		svc := twbridge.New(ctx, twbridge.Config{Settings: settings, Logger: &logger})
		defer svc.Close()

		return lsp.NewServer(ctx, svc, sheet, settings, version, logger).RunStdio()
	},
}
