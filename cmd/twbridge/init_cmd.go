package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const configFile = ".twbridge.yaml"

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate a default .twbridge.yaml config file",
	Long:  `Create a .twbridge.yaml configuration file in the current directory with sensible defaults.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		force, _ := cmd.Flags().GetBool("force")

		if _, err := os.Stat(configFile); err == nil && !force {
			return fmt.Errorf("%s already exists (use --force to overwrite)", configFile)
		}

		if err := os.WriteFile(configFile, []byte(defaultConfig), 0644); err != nil {
			return fmt.Errorf("writing config file: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", configFile)
		return nil
	},
}

const defaultConfig = `# twbridge configuration

verbose: false

# Stylesheet to build against. Empty means @import "tailwindcss";
stylesheet: ""
# Stylesheets it may import, relative to its directory
files:
  - "**/*.css"

# Language service settings
settings:
  class-attributes: [class, className, ngClass, ":class"]
  root-font-size: 16
  show-pixel-equivalents: true
  color-decorators: true
  lint:
    css-conflict: warning               # error | warning | info | hint | ignore
    recommended-variant-order: warning

# Build settings
build:
  paths:
    - "**/*.html"
  output: ""                            # empty = stdout
  output-format: css                    # css | json | summary

# Linting settings
lint:
  paths:
    - "**/*.html"
  strict: false
  output-format: issues                 # issues | summary | json
  max-issues-per-linter: 0              # 0 = unlimited
  max-same-issues: 0                    # 0 = unlimited
  print-lines: true
  print-linter-name: true
`

func init() {
	initCmd.Flags().Bool("force", false, "Overwrite existing config file")
}
