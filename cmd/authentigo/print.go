package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"

	"AuthentiGo/pkg/analyzer"
	"AuthentiGo/pkg/models"
)

var (
	// Color printers
	infoColor    = color.New(color.FgBlue).SprintFunc()
	successColor = color.New(color.FgGreen).SprintFunc()
	warningColor = color.New(color.FgYellow).SprintFunc()
	errorColor   = color.New(color.FgRed).SprintFunc()
	alertColor   = color.New(color.FgRed, color.Bold).SprintFunc()
)

// out is where human readable output goes; JSON mode sends it to stderr
var out io.Writer = os.Stdout

func printInfo(format string, args ...interface{}) {
	fmt.Fprintf(out, "%s %s\n", infoColor("[*]"), fmt.Sprintf(format, args...))
}

func printSuccess(format string, args ...interface{}) {
	fmt.Fprintf(out, "%s %s\n", successColor("[+]"), fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...interface{}) {
	fmt.Fprintf(out, "%s %s\n", warningColor("[!]"), fmt.Sprintf(format, args...))
}

func printError(format string, args ...interface{}) {
	fmt.Fprintf(out, "%s %s\n", errorColor("[-]"), fmt.Sprintf(format, args...))
}

func printAlert(format string, args ...interface{}) {
	fmt.Fprintf(out, "%s %s\n", alertColor("[!!!]"), fmt.Sprintf(format, args...))
}

func displayAnalysisResult(result *models.AnalysisResult, verbose bool) {
	fmt.Fprintln(out, "\n--- Analysis Results ---")

	// Basic info
	fmt.Fprintf(out, "File: %s\n", result.Filename)
	fmt.Fprintf(out, "Format: %s (%dx%d)\n", result.FileType, result.Width, result.Height)

	switch result.Risk {
	case models.RiskHigh:
		printAlert("HIGH risk of manipulation or generation (%.2f%%)", result.Probability)
	case models.RiskMedium:
		printWarning("MEDIUM risk of manipulation or generation (%.2f%%)", result.Probability)
	default:
		printSuccess("LOW risk of manipulation or generation (%.2f%%)", result.Probability)
	}

	if strongest, ok := result.StrongestFinding(); ok {
		fmt.Fprintf(out, "Strongest signal: %s (%.2f)\n", strongest.Description, strongest.Confidence)
	}

	c := result.Components
	fmt.Fprintf(out, "Sub-scores: noise %.2f, edge %.2f, compression %.2f, metadata %.2f (%s)\n",
		c.Noise, c.Edge, c.Compression, c.Metadata, result.Metadata)

	// Findings
	if len(result.Findings) > 0 {
		fmt.Fprintln(out, "\nFindings:")
		for i, finding := range result.Findings {
			fmt.Fprintf(out, "%d. %s (Confidence: %.2f)\n", i+1, finding.Description, finding.Confidence)
			if verbose && finding.Details != "" {
				fmt.Fprintf(out, "   Details: %s\n", finding.Details)
			}
		}
	}

	// Recommendations
	if len(result.Recommendations) > 0 {
		fmt.Fprintln(out, "\nRecommendations:")
		for i, rec := range result.Recommendations {
			fmt.Fprintf(out, "%d. %s\n", i+1, rec)
		}
	}

	if verbose {
		fmt.Fprintf(out, "Analyzed by %s in %v\n", result.Analyzer, result.AnalysisDuration)
	}

	fmt.Fprintln(out, "-------------------------")
}

func printSummary(s analyzer.Summary) {
	fmt.Fprintln(out, "\n=== Analysis Summary ===")
	fmt.Fprintf(out, "Total files: %d\n", s.Total)
	fmt.Fprintf(out, "%s Low risk: %d\n", successColor("[+]"), s.ByRisk[models.RiskLow])

	if n := s.ByRisk[models.RiskMedium]; n > 0 {
		fmt.Fprintf(out, "%s Medium risk: %d\n", warningColor("[!]"), n)
	}
	if s.Failed > 0 {
		fmt.Fprintf(out, "%s Failed: %d\n", errorColor("[-]"), s.Failed)
	}

	if len(s.High) > 0 {
		fmt.Fprintf(out, "%s High risk: %d\n", alertColor("[!!!]"), len(s.High))

		fmt.Fprintln(out, "\nFiles with high risk of manipulation:")
		for _, result := range s.High {
			fmt.Fprintf(out, "- %s (%.2f%%)\n", result.Filename, result.Probability)
		}
	}
}
