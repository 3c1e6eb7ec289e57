package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/yacobolo/twbridge/internal/worker"
)

// Build output formats
const (
	BuildCSS     OutputFormat = "css"
	BuildJSON    OutputFormat = "json"
	BuildSummary OutputFormat = "summary"
)

// WriteBuild writes a build result. The css format writes the stylesheet
// only; summary lists the classes the design system did not recognise.
func WriteBuild(w io.Writer, result *worker.BuildResult, format OutputFormat, useColors bool) error {
	switch format {
	case BuildJSON:
		return writeJSON(w, result)

	case BuildSummary:
		fmt.Fprintln(w, RenderStyle(StyleCyan, "Build", useColors))
		fmt.Fprintln(w, "-----")
		fmt.Fprintf(w, "Utility classes: %d\n", len(result.TailwindClasses))
		fmt.Fprintf(w, "Unknown classes: %d\n", len(result.NotTailwindClasses))
		fmt.Fprintf(w, "Output size:     %d bytes\n", len(result.CSS))

		if len(result.NotTailwindClasses) > 0 {
			fmt.Fprintln(w, "")
			fmt.Fprintln(w, RenderStyle(StyleYellow, "Unknown", useColors))
			for _, c := range result.NotTailwindClasses {
				fmt.Fprintf(w, "  %s\n", c)
			}
		}
		for _, e := range result.Errors {
			fmt.Fprintln(w, RenderStyle(StyleRed, "error: "+e, useColors))
		}
		for _, warning := range result.Warnings {
			fmt.Fprintln(w, RenderStyle(StyleYellow, "warning: "+warning, useColors))
		}
		return nil

	default:
		_, err := io.WriteString(w, strings.TrimRight(result.CSS, "\n")+"\n")
		return err
	}
}
