package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/yacobolo/twbridge"
	"github.com/yacobolo/twbridge/internal/lsp"
	"github.com/yacobolo/twbridge/internal/report"
)

var k = koanf.New(".")

// loadConfig loads configuration with precedence: flags > env > file > defaults.
// It must be called after cobra parses flags (in PreRunE or RunE).
func loadConfig(cmd *cobra.Command) error {
	configPath, _ := cmd.Flags().GetString("config")
	if configPath == "" {
		configPath = configFile
	}

	if err := loadConfigFromPath(configPath); err != nil {
		return err
	}

	// 3. CLI flags, only those set explicitly. Defaults live in the
	// get*WithFallback calls so a flag default never hides the config file.
	flags := cmd.Flags()
	if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
		if !f.Changed {
			return "", nil
		}
		return f.Name, posflag.FlagVal(flags, f)
	}), nil); err != nil {
		return fmt.Errorf("loading command flags: %w", err)
	}

	return nil
}

// loadConfigFromPath loads configuration from a file and environment variables.
// This is separated from loadConfig to allow testing without a cobra command.
func loadConfigFromPath(configPath string) error {
	// 1. Config file
	if _, err := os.Stat(configPath); err == nil {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return fmt.Errorf("loading config file %s: %w", configPath, err)
		}
	}

	// 2. Environment variables (TWBRIDGE_* prefix)
	if err := k.Load(env.Provider("TWBRIDGE_", ".", func(s string) string {
		// TWBRIDGE_LINT_STRICT -> lint.strict
		// TWBRIDGE_STYLESHEET -> stylesheet
		return strings.ReplaceAll(
			strings.ToLower(strings.TrimPrefix(s, "TWBRIDGE_")),
			"_", ".",
		)
	}), nil); err != nil {
		return fmt.Errorf("loading environment variables: %w", err)
	}

	return nil
}

// buildSettings overlays the settings section on the defaults
func buildSettings() (twbridge.Settings, error) {
	settings := twbridge.DefaultSettings()
	if k.Exists("settings") {
		if err := k.Unmarshal("settings", &settings); err != nil {
			return settings, fmt.Errorf("reading settings: %w", err)
		}
	}
	return settings, nil
}

// buildLintOptions constructs the reporter options from koanf state
func buildLintOptions() report.Options {
	return report.Options{
		MaxIssuesPerLinter: getIntWithFallback("max-issues-per-linter", "lint.max-issues-per-linter", 0),
		MaxSameIssues:      getIntWithFallback("max-same-issues", "lint.max-same-issues", 0),
		PrintIssuedLines:   getBoolWithFallback("print-lines", "lint.print-lines", true),
		PrintLinterName:    getBoolWithFallback("print-linter-name", "lint.print-linter-name", true),
		UseColors:          getBoolWithFallback("color", "color", false),
	}
}

// loadStylesheet reads the configured stylesheet and the files it may
// import. Imported files are keyed by their path relative to the
// stylesheet's directory, rooted at "/".
func loadStylesheet() (lsp.Stylesheet, error) {
	sheet := lsp.Stylesheet{CSS: twbridge.DefaultStylesheet, Files: map[string]string{}}

	dir := "."
	if path := getStringWithFallback("stylesheet", "stylesheet", ""); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return sheet, fmt.Errorf("reading stylesheet: %w", err)
		}
		sheet.CSS = string(data)
		dir = filepath.Dir(path)
	}

	for _, pattern := range k.Strings("files") {
		matches, err := doublestar.FilepathGlob(filepath.Join(dir, pattern))
		if err != nil {
			return sheet, fmt.Errorf("expanding %s: %w", pattern, err)
		}
		for _, match := range matches {
			data, err := os.ReadFile(match)
			if err != nil {
				continue
			}
			rel, err := filepath.Rel(dir, match)
			if err != nil {
				continue
			}
			sheet.Files["/"+filepath.ToSlash(rel)] = string(data)
		}
	}
	return sheet, nil
}

// newLogger logs to stderr; stdout carries results
func newLogger() zerolog.Logger {
	level := zerolog.WarnLevel
	switch {
	case getBoolWithFallback("quiet", "quiet", false):
		level = zerolog.Disabled
	case getBoolWithFallback("verbose", "verbose", false):
		level = zerolog.DebugLevel
	}

	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// getStringWithFallback checks the flag key first, then the config file key, then returns the default.
func getStringWithFallback(flagKey, configKey, defaultVal string) string {
	if v := k.String(flagKey); v != "" {
		return v
	}
	if v := k.String(configKey); v != "" {
		return v
	}
	return defaultVal
}

// getStringsWithFallback checks the flag key first, then the config file key, then returns the default.
func getStringsWithFallback(flagKey, configKey string, defaultVal []string) []string {
	if v := k.Strings(flagKey); len(v) > 0 {
		return v
	}
	if v := k.Strings(configKey); len(v) > 0 {
		return v
	}
	return defaultVal
}

// getBoolWithFallback checks the flag key first, then the config file key, then returns the default.
func getBoolWithFallback(flagKey, configKey string, defaultVal bool) bool {
	if k.Exists(flagKey) {
		return k.Bool(flagKey)
	}
	if k.Exists(configKey) {
		return k.Bool(configKey)
	}
	return defaultVal
}

// getIntWithFallback checks the flag key first, then the config file key, then returns the default.
func getIntWithFallback(flagKey, configKey string, defaultVal int) int {
	if k.Exists(flagKey) {
		return k.Int(flagKey)
	}
	if k.Exists(configKey) {
		return k.Int(configKey)
	}
	return defaultVal
}
