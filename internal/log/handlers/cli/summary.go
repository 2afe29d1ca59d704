package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/apex/log"
	"github.com/fatih/color"
)

// SummaryRow contains the statistics of a timing phase across
// repeated executions of the same request.
type SummaryRow struct {
	Phase  string
	Min    float64
	Median float64
	P90    float64
	Max    float64
}

// summaryColWidth is the width of each column of the timing summary.
const summaryColWidth = 10

func formatMillis(ms float64) string {
	if ms < 1000 {
		return fmt.Sprintf("%.1fms", ms)
	}
	return fmt.Sprintf("%.2fs", ms/1000)
}

func formatSize(size float64) string {
	if size < 1024 {
		return fmt.Sprintf("%.0fB", size)
	} else if size < 1024*1024 {
		return fmt.Sprintf("%.1fK", size/1024.0)
	} else if size < 1024*1024*1024 {
		return fmt.Sprintf("%.1fM", size/(1024.0*1024.0))
	}
	return fmt.Sprintf("%.1fG", size/(1024*1024*1024))
}

func summaryLine(columns ...string) string {
	var b strings.Builder
	for _, c := range columns {
		b.WriteString(RightPad(c, summaryColWidth))
	}
	return b.String()
}

// logTimingSummary renders the "timing_summary" typed log. The fields
// are "requests" (int), "failures" (int), "size" (float64, the median
// response size in bytes) and "rows" ([]SummaryRow).
func logTimingSummary(w io.Writer, f log.Fields) error {
	width := summaryColWidth * 5
	requests := f.Get("requests").(int)
	failures := f.Get("failures").(int)
	rows, _ := f.Get("rows").([]SummaryRow)

	title := fmt.Sprintf("%d requests, %d failed", requests, failures)
	if failures > 0 {
		title = color.RedString(title)
	}
	if size, ok := f.Get("size").(float64); ok {
		title += fmt.Sprintf(", median size %s", formatSize(size))
	}

	fmt.Fprint(w, "┏"+strings.Repeat("━", width+2)+"┓\n")
	fmt.Fprintf(w, "┃ %s ┃\n", RightPad(title, width))
	fmt.Fprint(w, "┡"+strings.Repeat("━", width+2)+"┩\n")
	if len(rows) <= 0 {
		fmt.Fprintf(w, "│ %s │\n", RightPad("no successful requests", width))
	} else {
		header := summaryLine("phase", "min", "median", "p90", "max")
		fmt.Fprintf(w, "│ %s │\n", bold.Sprint(header))
		for _, row := range rows {
			line := summaryLine(
				color.BlueString(row.Phase),
				formatMillis(row.Min),
				formatMillis(row.Median),
				formatMillis(row.P90),
				formatMillis(row.Max),
			)
			fmt.Fprintf(w, "│ %s │\n", line)
		}
	}
	fmt.Fprint(w, "└"+strings.Repeat("─", width+2)+"┘\n")
	return nil
}
