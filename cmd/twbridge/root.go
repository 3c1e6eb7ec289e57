package main

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "twbridge",
	Short: "Utility-class CSS builder, linter and language server",
	Long: `Compile a utility-class stylesheet once and use it to build CSS for the
classes found in your templates, lint class lists, or answer editor requests.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Global persistent flags (inherited by all subcommands)
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().Bool("quiet", false, "Suppress all output (exit code only)")
	rootCmd.PersistentFlags().Bool("color", false, "Force color output")
	rootCmd.PersistentFlags().String("config", ".twbridge.yaml", "Config file path")
	rootCmd.PersistentFlags().String("stylesheet", "", "Stylesheet to build against (default: @import \"tailwindcss\")")
	rootCmd.PersistentFlags().StringSlice("files", nil, "Glob patterns for stylesheets the main stylesheet may import")

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(lintCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(completionCmd)
	rootCmd.AddCommand(versionCmd)
}
