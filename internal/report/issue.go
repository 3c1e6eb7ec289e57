// Package report prints lint issues and build results for the terminal and
// for machines.
package report

import (
	"fmt"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Issue is one lint finding in golangci-lint format
type Issue struct {
	FromLinter  string       `json:"FromLinter"` // Rule name, "cssConflict"
	Text        string       `json:"Text"`
	Severity    string       `json:"Severity"` // "error", "warning", "info", "hint"
	SourceLines []string     `json:"SourceLines"`
	Pos         IssuePos     `json:"Pos"`
	LineRange   *LineRange   `json:"LineRange"`
	Replacement *Replacement `json:"Replacement"`
}

// IssuePos specifies the exact location of an issue
type IssuePos struct {
	Filename string `json:"Filename"`
	Line     int    `json:"Line"`   // 1-based
	Column   int    `json:"Column"` // 1-based, start of the class
}

// LineRange specifies a range of lines
type LineRange struct {
	From int `json:"From"`
	To   int `json:"To"`
}

// Replacement is the fix a code action would apply
type Replacement struct {
	NewText      string
	InlineLength int // Length of text to replace
}

// Severity names
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
	SeverityInfo    = "info"
	SeverityHint    = "hint"
)

// LinterName is used when a diagnostic carries no rule
const LinterName = "twbridge"

// FromDiagnostic converts an editor diagnostic of file. lines are the lines
// of the file, used for the source excerpt.
func FromDiagnostic(file string, lines []string, d protocol.Diagnostic) Issue {
	line := int(d.Range.Start.Line)
	issue := Issue{
		FromLinter: LinterName,
		Text:       d.Message,
		Severity:   severityName(d.Severity),
		Pos: IssuePos{
			Filename: file,
			Line:     line + 1,
			Column:   int(d.Range.Start.Character) + 1,
		},
	}

	if d.Code != nil {
		issue.FromLinter = fmt.Sprint(d.Code.Value)
	}
	if line < len(lines) {
		issue.SourceLines = []string{lines[line]}
	}
	if end := int(d.Range.End.Line); end != line {
		issue.LineRange = &LineRange{From: line + 1, To: end + 1}
	}
	return issue
}

func severityName(s *protocol.DiagnosticSeverity) string {
	if s == nil {
		return SeverityWarning
	}
	switch *s {
	case protocol.DiagnosticSeverityError:
		return SeverityError
	case protocol.DiagnosticSeverityInformation:
		return SeverityInfo
	case protocol.DiagnosticSeverityHint:
		return SeverityHint
	default:
		return SeverityWarning
	}
}
