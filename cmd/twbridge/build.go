package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/yacobolo/twbridge"
	"github.com/yacobolo/twbridge/internal/report"
	"github.com/yacobolo/twbridge/internal/scanner"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build CSS for the classes used in your files",
	Long: `Scan files for class attributes and build the stylesheet for the classes
they use. Classes given with --classes are added to the scanned ones.`,
	PreRunE: func(cmd *cobra.Command, _ []string) error {
		return loadConfig(cmd)
	},
	RunE: runBuild,
}

func init() {
	f := buildCmd.Flags()
	f.StringSlice("paths", nil, "File patterns to scan for classes (default: **/*.html)")
	f.StringSlice("classes", nil, "Extra classes to build")
	f.StringP("output", "o", "", "Write CSS to a file instead of stdout")
	f.String("output-format", "", "Output format: css|json|summary (default: css)")
}

func runBuild(cmd *cobra.Command, _ []string) error {
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

	paths := getStringsWithFallback("paths", "build.paths", []string{"**/*.html"})
	sc := scanner.New(settings.ClassAttributes, ".gitignore")
	refs, stats, err := sc.ScanFiles(paths)
	if err != nil {
		return fmt.Errorf("scanning files: %w", err)
	}
	classes := append(scanner.UniqueClasses(refs), k.Strings("classes")...)

	logger.Debug().
		Int("files", stats.FilesScanned).
		Int("skipped", stats.FilesSkipped).
		Int("classes", len(classes)).
		Msg("scan complete")

	svc := twbridge.New(ctx, twbridge.Config{Settings: settings, Logger: &logger})
	defer svc.Close()

	if _, err := svc.LoadStylesheet(ctx, sheet.CSS, sheet.Files); err != nil {
		return fmt.Errorf("build failed: %w", err)
	}
	result, err := svc.BuildCSS(ctx, sheet.CSS, classes, sheet.Files)
	if err != nil {
		return fmt.Errorf("build failed: %w", err)
	}
	for _, w := range result.Warnings {
		logger.Warn().Msg(w)
	}

	if getBoolWithFallback("quiet", "quiet", false) {
		return nil
	}

	var out io.Writer = cmd.OutOrStdout()
	if path := getStringWithFallback("output", "build.output", ""); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating output: %w", err)
		}
		defer f.Close()
		out = f
	}

	format := report.OutputFormat(getStringWithFallback("output-format", "build.output-format", string(report.BuildCSS)))
	useColors := report.ShouldUseColors(getBoolWithFallback("color", "color", false))
	return report.WriteBuild(out, result, format, useColors)
}
