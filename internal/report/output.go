package report

import (
	"fmt"
	"io"
)

// OutputFormat selects how results are written
type OutputFormat string

const (
	OutputIssues  OutputFormat = "issues"  // golangci-lint style issues and a summary
	OutputSummary OutputFormat = "summary" // Counts only
	OutputJSON    OutputFormat = "json"
)

// ParseOutputFormat maps a flag value to a format. quiet selects issues,
// which callers then suppress. Unknown values fall back to issues.
func ParseOutputFormat(flag string, quiet bool) OutputFormat {
	if quiet {
		return OutputIssues
	}
	switch flag {
	case "summary":
		return OutputSummary
	case "json":
		return OutputJSON
	default:
		return OutputIssues
	}
}

// WriteLint writes a lint result in format
func WriteLint(w io.Writer, result *LintResult, format OutputFormat, opts Options) error {
	switch format {
	case OutputJSON:
		return WriteLintJSON(w, result)

	case OutputSummary:
		r := NewReporter(w, opts)
		r.PrintSummary(*result)
		fmt.Fprintf(w, "%s scanned, %s found\n",
			pluralizeCount(result.FilesScanned, "file", "files"),
			pluralizeCount(result.ClassesFound, "class", "classes"))
		return nil

	default:
		r := NewReporter(w, opts)
		r.PrintIssues(result.Issues)
		r.PrintSummary(*result)
		return nil
	}
}
