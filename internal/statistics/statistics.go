package statistics

import (
	"fmt"
	"strings"

	"gif-compressor-go/internal/report"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Comparison holds the before/after figures of one compression run.
type Comparison struct {
	InputSize  int64
	OutputSize int64
	Reduction  float64
	Ratio      float64
	Input      report.Report
	Output     report.Report
}

// FormatSize returns a human-readable string for a byte count, with two
// decimals and binary (1024) steps.
func FormatSize(bytes int64) string {
	size := float64(bytes)
	for _, unit := range []string{"B", "KB", "MB", "GB"} {
		if size < 1024.0 {
			return fmt.Sprintf("%.2f %s", size, unit)
		}
		size /= 1024.0
	}
	return fmt.Sprintf("%.2f TB", size)
}

// GetSummary returns the savings line printed after a run.
func (c Comparison) GetSummary() string {
	return fmt.Sprintf("Size reduction: %.1f%% | Compression ratio: %.2fx", c.Reduction, c.Ratio)
}

// Render returns a table comparing the input and output artifacts.
func (c Comparison) Render() string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.Style().Format.Header = text.FormatDefault
	tw.AppendHeader(table.Row{"", "Input", "Output"})
	tw.AppendRows([]table.Row{
		{"Size", FormatSize(c.InputSize), FormatSize(c.OutputSize)},
		{"Frames", c.Input.FramesString(), c.Output.FramesString()},
		{"Dimensions", c.Input.Dimensions(), c.Output.Dimensions()},
		{"Colors", c.Input.ColorsString(), c.Output.ColorsString()},
	})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 3, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})

	var b strings.Builder
	b.WriteString(tw.Render())
	b.WriteString("\n")
	b.WriteString(c.GetSummary())
	return b.String()
}

// RenderReport returns a single-artifact table for the inspect command.
func RenderReport(name string, size int64, r report.Report, extra [][2]string) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	// Paths are case sensitive; keep the header as given.
	tw.Style().Format.Header = text.FormatDefault
	tw.AppendHeader(table.Row{"Field", name})
	tw.AppendRow(table.Row{"Size", FormatSize(size)})
	tw.AppendRow(table.Row{"Frames", r.FramesString()})
	tw.AppendRow(table.Row{"Dimensions", r.Dimensions()})
	tw.AppendRow(table.Row{"Colors", r.ColorsString()})
	for _, kv := range extra {
		tw.AppendRow(table.Row{kv[0], kv[1]})
	}
	return tw.Render()
}
