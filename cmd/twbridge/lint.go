package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/yacobolo/twbridge"
	"github.com/yacobolo/twbridge/internal/report"
	"github.com/yacobolo/twbridge/internal/scanner"
)

// errIssuesFound makes the command exit 1 without printing an error
var errIssuesFound = errors.New("lint issues found")

var lintCmd = &cobra.Command{
	Use:   "lint",
	Short: "Lint class lists in your files",
	Long: `Check class lists for classes that set the same CSS properties and for
variants written out of the recommended order.`,
	PreRunE: func(cmd *cobra.Command, _ []string) error {
		return loadConfig(cmd)
	},
	RunE: runLint,
}

func init() {
	f := lintCmd.Flags()
	f.StringSlice("paths", nil, "File patterns to scan (default: **/*.html)")
	f.Bool("strict", false, "Exit 1 on any issue (CI mode)")
	f.String("output-format", "", "Output format: issues|summary|json")
	f.Int("max-issues-per-linter", 0, "Max issues to show per rule (0=unlimited)")
	f.Int("max-same-issues", 0, "Max repeated issues to show (0=unlimited)")
	f.Bool("print-lines", true, "Show source lines with issues")
	f.Bool("print-linter-name", true, "Show the rule name after issues")
}

func runLint(cmd *cobra.Command, _ []string) error {
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

	paths := getStringsWithFallback("paths", "lint.paths", []string{"**/*.html"})
	sc := scanner.New(settings.ClassAttributes, ".gitignore")
	files, stats, err := sc.ExpandGlobs(paths)
	if err != nil {
		return fmt.Errorf("scanning files: %w", err)
	}

	svc := twbridge.New(ctx, twbridge.Config{Settings: settings, Logger: &logger})
	defer svc.Close()

	warnings, err := svc.LoadStylesheet(ctx, sheet.CSS, sheet.Files)
	if err != nil {
		return fmt.Errorf("lint failed: %w", err)
	}

	result := &report.LintResult{
		FilesScanned: stats.FilesScanned,
		FilesSkipped: stats.FilesSkipped,
		Warnings:     warnings,
	}
	for _, file := range files {
		issues, classes, err := lintFile(cmd, svc, sc, file, logger)
		if err != nil {
			return fmt.Errorf("lint failed: %w", err)
		}
		result.Issues = append(result.Issues, issues...)
		result.ClassesFound += classes
	}

	opts := buildLintOptions()
	report.SortIssues(result.Issues)
	result.Issues, result.TruncatedCount = report.LimitIssues(result.Issues, opts)

	quiet := getBoolWithFallback("quiet", "quiet", false)
	if !quiet {
		format := report.ParseOutputFormat(getStringWithFallback("output-format", "lint.output-format", ""), quiet)
		if err := report.WriteLint(cmd.OutOrStdout(), result, format, opts); err != nil {
			return err
		}
	}

	// Soft gate: errors always fail, warnings only in strict mode
	strict := getBoolWithFallback("strict", "lint.strict", false)
	for _, issue := range result.Issues {
		if strict || issue.Severity == report.SeverityError {
			return errIssuesFound
		}
	}
	return nil
}

// lintFile validates one file. It returns the issues and the number of
// classes the file uses.
func lintFile(cmd *cobra.Command, svc *twbridge.Service, sc *scanner.Scanner, file string, logger zerolog.Logger) ([]report.Issue, int, error) {
	ctx := cmd.Context()
	data, err := os.ReadFile(file)
	if err != nil {
		logger.Warn().Err(err).Str("path", file).Msg("skipping unreadable file")
		return nil, 0, nil
	}
	text := string(data)

	uri := fileURI(file)
	svc.OpenDocument(uri, languageID(file), 1, text)
	defer svc.CloseDocument(uri)

	diagnostics, err := svc.DoValidate(ctx, uri)
	if err != nil {
		return nil, 0, err
	}

	lines := strings.Split(text, "\n")
	issues := make([]report.Issue, 0, len(diagnostics))
	for _, d := range diagnostics {
		issue := report.FromDiagnostic(file, lines, d)
		issue.Replacement = replacement(cmd, svc, uri, d)
		issues = append(issues, issue)
	}
	return issues, len(sc.ScanText(file, text)), nil
}

// replacement returns the edit of the first quick fix for d
func replacement(cmd *cobra.Command, svc *twbridge.Service, uri string, d protocol.Diagnostic) *report.Replacement {
	actions, err := svc.DoCodeActions(cmd.Context(), uri, d.Range, protocol.CodeActionContext{
		Diagnostics: []protocol.Diagnostic{d},
	})
	if err != nil {
		return nil
	}

	for _, a := range actions {
		if len(a.Diagnostics) == 0 || a.Diagnostics[0].Range != d.Range || a.Diagnostics[0].Message != d.Message {
			continue
		}
		if a.Edit == nil {
			continue
		}
		edits := a.Edit.Changes[protocol.DocumentUri(uri)]
		if len(edits) == 0 {
			continue
		}
		edit := edits[0]
		length := 0
		if edit.Range.Start.Line == edit.Range.End.Line {
			length = int(edit.Range.End.Character - edit.Range.Start.Character)
		}
		return &report.Replacement{NewText: edit.NewText, InlineLength: length}
	}
	return nil
}

func fileURI(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return "file://" + filepath.ToSlash(abs)
}

func languageID(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return "html"
	case ".vue":
		return "vue"
	case ".svelte":
		return "svelte"
	case ".jsx":
		return "javascriptreact"
	case ".tsx":
		return "typescriptreact"
	case ".templ":
		return "templ"
	case ".go":
		return "go"
	default:
		return "plaintext"
	}
}
