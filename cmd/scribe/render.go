package main

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"scribe/internal/output"
	"scribe/internal/services/gemini"
	"scribe/internal/workflow"
)

func printRunSummary(out io.Writer, result *workflow.Result, files output.Files, costs gemini.CostSummary) {
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Transcribed: %s\n", result.Meta.DisplayTitle())
	fmt.Fprintf(out, "Audio length: %s across %d segment(s)\n", formatClock(result.AudioSeconds), result.SegmentCount)
	fmt.Fprintf(out, "Processing time: %s\n", result.ProcessingTime.Round(time.Second))
	fmt.Fprintln(out)

	fmt.Fprintln(out, "Output files:")
	fmt.Fprintf(out, "  raw:       %s\n", files.Raw)
	if result.FormattedText != "" {
		fmt.Fprintf(out, "  formatted: %s\n", files.Formatted)
	}
	if result.SummaryText != "" {
		fmt.Fprintf(out, "  summary:   %s\n", files.Summary)
	}
	if result.KeptAudioPath != "" {
		fmt.Fprintf(out, "  audio:     %s\n", result.KeptAudioPath)
	}
	fmt.Fprintln(out)

	fmt.Fprintln(out, renderCostTable(costs))
}

func renderCostTable(costs gemini.CostSummary) string {
	rows := [][]string{
		{"Text input", formatTokens(costs.InputTokens)},
		{"Audio input", formatTokens(costs.AudioInputTokens)},
		{"Output", formatTokens(costs.OutputTokens)},
		{"Total", formatTokens(costs.TotalTokens)},
		{"Cost (USD)", fmt.Sprintf("$%.4f", costs.CostUSD)},
		{"Cost (JPY)", fmt.Sprintf("¥%.1f", costs.CostJPY)},
	}
	return renderTable(
		[]string{"Usage (" + costs.Model + ")", "Value"},
		rows,
		[]columnAlignment{alignLeft, alignRight},
	)
}

func formatTokens(count int64) string {
	return strconv.FormatInt(count, 10)
}

// formatClock renders seconds as H:MM:SS, dropping the hour field for
// short audio.
func formatClock(seconds float64) string {
	total := int(seconds + 0.5)
	hours := total / 3600
	minutes := (total % 3600) / 60
	secs := total % 60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, secs)
	}
	return fmt.Sprintf("%d:%02d", minutes, secs)
}
