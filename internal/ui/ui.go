// Package ui provides formatted output utilities for the CLI.
package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"

	"github.com/d2verb/civget/internal/selection"
)

// Color functions for consistent styling.
var (
	Green  = color.New(color.FgGreen).SprintFunc()
	Red    = color.New(color.FgRed).SprintFunc()
	Yellow = color.New(color.FgYellow).SprintFunc()
	Blue   = color.New(color.FgBlue).SprintFunc()
	Cyan   = color.New(color.FgCyan).SprintFunc()
	Dim    = color.New(color.Faint).SprintFunc()
	Bold   = color.New(color.Bold).SprintFunc()
)

// Output is the destination for UI output.
// Defaults to os.Stdout but can be overridden for testing.
var Output io.Writer = os.Stdout

// PrintResolved prints the resolution line for one reference.
func PrintResolved(ref, url, format string) {
	if format == "" {
		format = "unknown"
	}
	fmt.Fprintf(Output, "%s %s %s %s %s\n",
		Blue("•"), Bold(ref), Dim("->"), url, Dim("(format: "+format+")"))
}

// PrintDecision prints one file selection decision.
func PrintDecision(d selection.Decision) {
	verdict := d.Verdict.String()
	switch d.Verdict {
	case selection.Included:
		verdict = Green(verdict)
	case selection.SkippedUnsafe:
		verdict = Red(verdict)
	default:
		verdict = Yellow(verdict)
	}
	fmt.Fprintf(Output, "  %s %s %s\n", Cyan(d.File.Name), Dim("["+d.File.Type+"]"), verdict)
}

// PrintRedirects prints the redirect hop chain of a transfer.
func PrintRedirects(hops []string) {
	if len(hops) == 0 {
		return
	}
	fmt.Fprintf(Output, "%s redirected %d time(s):\n", Dim("•"), len(hops))
	for _, hop := range hops {
		fmt.Fprintf(Output, "  %s %s\n", Dim("-"), Dim(hop))
	}
}

// PrintSuccess prints a success message with green checkmark.
func PrintSuccess(message string) {
	fmt.Fprintf(Output, "%s %s\n", Green("✓"), message)
}

// PrintError prints an error message with red X.
func PrintError(message string) {
	fmt.Fprintf(Output, "%s %s\n", Red("✗"), message)
}

// PrintWarning prints a warning message with yellow exclamation.
func PrintWarning(message string) {
	fmt.Fprintf(Output, "%s %s\n", Yellow("⚠"), message)
}

// PrintInfo prints an info message with blue dot.
func PrintInfo(message string) {
	fmt.Fprintf(Output, "%s %s\n", Blue("•"), message)
}
