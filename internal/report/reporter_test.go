package report

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/yacobolo/twbridge/internal/worker"
)

func TestBuildCaretIndicator(t *testing.T) {
	reporter := &Reporter{}

	tests := []struct {
		name       string
		sourceLine string
		column     int
		want       string
	}{
		{
			name:       "spaces only",
			sourceLine: "  <div class=\"flex\">",
			column:     15,
			want:       "              ^",
		},
		{
			name:       "tabs and spaces",
			sourceLine: "\t\t<button class=\"p-4\">",
			column:     17,
			want:       "\t\t              ^",
		},
		{
			name:       "start of line",
			sourceLine: "class=\"flex\"",
			column:     1,
			want:       "^",
		},
		{
			name:       "column 0 fallback",
			sourceLine: "some line",
			column:     0,
			want:       "^",
		},
		{
			name:       "column beyond line length",
			sourceLine: "short",
			column:     100,
			want:       "     ^",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, reporter.buildCaretIndicator(tt.sourceLine, tt.column))
		})
	}
}

func sampleIssues() []Issue {
	return []Issue{
		{
			FromLinter:  "recommendedVariantOrder",
			Text:        "Variants are not in the recommended order, which may cause unexpected CSS output.",
			Severity:    SeverityWarning,
			SourceLines: []string{`<div class="hover:md:flex">`},
			Pos:         IssuePos{Filename: "b.html", Line: 3, Column: 13},
			Replacement: &Replacement{NewText: "md:hover:flex", InlineLength: 13},
		},
		{
			FromLinter:  "cssConflict",
			Text:        "'mt-2' applies the same CSS property as 'mt-4'.",
			Severity:    SeverityError,
			SourceLines: []string{`<div class="mt-2 mt-4">`},
			Pos:         IssuePos{Filename: "a.html", Line: 1, Column: 13},
		},
	}
}

func TestPrintIssues(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(&buf, Options{PrintIssuedLines: true, PrintLinterName: true})
	r.useColors = false

	issues := sampleIssues()
	r.PrintIssues(issues)
	r.PrintSummary(LintResult{Issues: issues, Warnings: []string{"stylesheet not found: /x.css"}})

	out := buf.String()
	assert.Contains(t, out, "a.html:1:13: 'mt-2' applies the same CSS property as 'mt-4'. (cssConflict)\n")
	assert.Contains(t, out, "\t            ^\n")
	assert.Contains(t, out, "\tfix: \"md:hover:flex\"\n")
	assert.Contains(t, out, "2 issues (1 error, 1 warning):\n* cssConflict: 1\n* recommendedVariantOrder: 1\n")
	assert.Contains(t, out, "warning: stylesheet not found: /x.css")
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("a.html")), bytes.Index(buf.Bytes(), []byte("b.html")))
}

func TestLimitIssues(t *testing.T) {
	issues := []Issue{
		{FromLinter: "cssConflict", Text: "same"},
		{FromLinter: "cssConflict", Text: "same"},
		{FromLinter: "cssConflict", Text: "same"},
		{FromLinter: "cssConflict", Text: "other"},
		{FromLinter: "recommendedVariantOrder", Text: "order"},
	}

	tests := []struct {
		name      string
		opts      Options
		kept      int
		truncated int
	}{
		{name: "unlimited", opts: Options{}, kept: 5},
		{name: "per linter", opts: Options{MaxIssuesPerLinter: 2}, kept: 3, truncated: 2},
		{name: "same message", opts: Options{MaxSameIssues: 1}, kept: 3, truncated: 2},
		{name: "both", opts: Options{MaxIssuesPerLinter: 3, MaxSameIssues: 2}, kept: 3, truncated: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kept, truncated := LimitIssues(issues, tt.opts)
			assert.Len(t, kept, tt.kept)
			assert.Equal(t, tt.truncated, truncated)
		})
	}
}

func TestFromDiagnostic(t *testing.T) {
	sev := protocol.DiagnosticSeverityError
	d := protocol.Diagnostic{
		Range: protocol.Range{
			Start: protocol.Position{Line: 1, Character: 12},
			End:   protocol.Position{Line: 1, Character: 16},
		},
		Severity: &sev,
		Code:     &protocol.IntegerOrString{Value: "cssConflict"},
		Message:  "conflict",
	}

	issue := FromDiagnostic("index.html", []string{"<html>", `<div class="mt-2 mt-4">`}, d)
	assert.Equal(t, "cssConflict", issue.FromLinter)
	assert.Equal(t, SeverityError, issue.Severity)
	assert.Equal(t, IssuePos{Filename: "index.html", Line: 2, Column: 13}, issue.Pos)
	assert.Equal(t, []string{`<div class="mt-2 mt-4">`}, issue.SourceLines)
	assert.Nil(t, issue.LineRange)

	d.Code = nil
	d.Severity = nil
	issue = FromDiagnostic("index.html", nil, d)
	assert.Equal(t, LinterName, issue.FromLinter)
	assert.Equal(t, SeverityWarning, issue.Severity)
	assert.Empty(t, issue.SourceLines)
}

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		flag  string
		quiet bool
		want  OutputFormat
	}{
		{flag: "", want: OutputIssues},
		{flag: "summary", want: OutputSummary},
		{flag: "json", want: OutputJSON},
		{flag: "bogus", want: OutputIssues},
		{flag: "json", quiet: true, want: OutputIssues},
	}

	for _, tt := range tests {
		t.Run(tt.flag, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseOutputFormat(tt.flag, tt.quiet))
		})
	}
}

func TestWriteLintJSON(t *testing.T) {
	result := &LintResult{
		Issues:         sampleIssues(),
		FilesScanned:   4,
		ClassesFound:   12,
		TruncatedCount: 1,
	}

	var buf bytes.Buffer
	require.NoError(t, WriteLint(&buf, result, OutputJSON, Options{}))

	var output JSONOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &output))

	assert.Equal(t, "1.0", output.Version)
	assert.NotEmpty(t, output.Timestamp)
	assert.Equal(t, JSONSummary{
		TotalIssues:  2,
		Errors:       1,
		Warnings:     1,
		Truncated:    1,
		FilesScanned: 4,
		ClassesFound: 12,
	}, output.Summary)

	require.Len(t, output.Issues, 2)
	assert.Equal(t, "b.html", output.Issues[0].File)
	require.NotNil(t, output.Issues[0].Replacement)
	assert.Equal(t, "md:hover:flex", *output.Issues[0].Replacement)
	assert.Nil(t, output.Issues[1].Replacement)
}

func TestWriteBuild(t *testing.T) {
	result := &worker.BuildResult{
		CSS:                ".flex {\n  display: flex;\n}\n\n",
		TailwindClasses:    []worker.TailwindClass{{ClassName: "flex", CSS: ".flex {\n  display: flex;\n}"}},
		NotTailwindClasses: []string{"card"},
		Warnings:           []string{"stylesheet not found: /x.css"},
	}

	var css bytes.Buffer
	require.NoError(t, WriteBuild(&css, result, BuildCSS, false))
	assert.Equal(t, ".flex {\n  display: flex;\n}\n", css.String())

	var summary bytes.Buffer
	require.NoError(t, WriteBuild(&summary, result, BuildSummary, false))
	assert.Contains(t, summary.String(), "Utility classes: 1\n")
	assert.Contains(t, summary.String(), "  card\n")
	assert.Contains(t, summary.String(), "warning: stylesheet not found: /x.css")

	var out bytes.Buffer
	require.NoError(t, WriteBuild(&out, result, BuildJSON, false))
	var decoded worker.BuildResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	assert.Equal(t, []string{"card"}, decoded.NotTailwindClasses)
}
