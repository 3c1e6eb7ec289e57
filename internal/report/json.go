package report

import (
	"encoding/json"
	"io"
	"time"
)

// JSONOutput is the JSON lint report
type JSONOutput struct {
	Version   string      `json:"version"`
	Timestamp string      `json:"timestamp"`
	Summary   JSONSummary `json:"summary"`
	Issues    []JSONIssue `json:"issues"`
	Warnings  []string    `json:"warnings,omitempty"`
}

// JSONSummary contains the issue counts
type JSONSummary struct {
	TotalIssues  int `json:"total_issues"`
	Errors       int `json:"errors"`
	Warnings     int `json:"warnings"`
	Truncated    int `json:"truncated"`
	FilesScanned int `json:"files_scanned"`
	ClassesFound int `json:"classes_found"`
}

// JSONIssue is a single issue
type JSONIssue struct {
	File        string  `json:"file"`
	Line        int     `json:"line"`
	Column      int     `json:"column"`
	Severity    string  `json:"severity"`
	Message     string  `json:"message"`
	Linter      string  `json:"linter"`
	Source      string  `json:"source,omitempty"`
	Replacement *string `json:"replacement,omitempty"`
}

// WriteLintJSON writes the lint result as indented JSON
func WriteLintJSON(w io.Writer, result *LintResult) error {
	return writeJSON(w, buildJSONOutput(result))
}

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func buildJSONOutput(result *LintResult) JSONOutput {
	errors, warnings := countSeverities(result.Issues)

	issues := make([]JSONIssue, len(result.Issues))
	for i, issue := range result.Issues {
		source := ""
		if len(issue.SourceLines) > 0 {
			source = issue.SourceLines[0]
		}
		issues[i] = JSONIssue{
			File:     issue.Pos.Filename,
			Line:     issue.Pos.Line,
			Column:   issue.Pos.Column,
			Severity: issue.Severity,
			Message:  issue.Text,
			Linter:   issue.FromLinter,
			Source:   source,
		}
		if issue.Replacement != nil {
			text := issue.Replacement.NewText
			issues[i].Replacement = &text
		}
	}

	return JSONOutput{
		Version:   "1.0",
		Timestamp: time.Now().Format(time.RFC3339),
		Summary: JSONSummary{
			TotalIssues:  len(result.Issues),
			Errors:       errors,
			Warnings:     warnings,
			Truncated:    result.TruncatedCount,
			FilesScanned: result.FilesScanned,
			ClassesFound: result.ClassesFound,
		},
		Issues:   issues,
		Warnings: result.Warnings,
	}
}
