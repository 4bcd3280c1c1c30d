// Package ui provides formatted output utilities for the CLI.
package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
)

// Color functions for consistent styling.
var (
	Green  = color.New(color.FgGreen).SprintFunc()
	Red    = color.New(color.FgRed).SprintFunc()
	Yellow = color.New(color.FgYellow).SprintFunc()
	Blue   = color.New(color.FgBlue).SprintFunc()
	Cyan   = color.New(color.FgCyan).SprintFunc()
	Dim    = color.New(color.Faint).SprintFunc() // Dimmed text (more readable than gray)
	Bold   = color.New(color.Bold).SprintFunc()
)

// Output is the destination for UI output.
// Defaults to os.Stdout but can be overridden for testing.
var Output io.Writer = os.Stdout

// FormatBytes formats a byte count for humans, e.g. "1.5 MB".
func FormatBytes(n int64) string {
	if n < 0 {
		return "unknown size"
	}
	return humanize.Bytes(uint64(n))
}

// FormatPath formats a filesystem path with blue color.
func FormatPath(path string) string {
	return Blue(path)
}

// ActiveStatusLabel prefixes label with a check mark when exists is true
// and an empty circle otherwise.
func ActiveStatusLabel(label string, exists bool) string {
	if exists {
		return "✓ " + label
	}
	return "○ " + label
}

// StatusBadge returns a colored indicator for whether ZokuZoku is enabled.
func StatusBadge(enabled bool) string {
	if enabled {
		return Green("● Enabled")
	}
	return Yellow("○ Disabled")
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

// ConfigDetails contains the effective configuration for display.
// LocalizeDict is empty when no localized data directory is set.
type ConfigDetails struct {
	Enabled            bool
	ConfigPath         string
	HachimiURL         string
	GameDataDir        string
	LocalizedDataDir   string
	LocalizeDict       string
	LocalizeDictExists bool
	LogLevel           string
	LogPath            string
}

// PrintConfig prints the effective configuration.
func PrintConfig(c ConfigDetails) {
	fmt.Fprintf(Output, "%s %s\n", Bold("Status:"), StatusBadge(c.Enabled))
	fmt.Fprintf(Output, "%s %s\n", Bold("Config:"), c.ConfigPath)
	fmt.Fprintf(Output, "%s %s\n", Bold("Hachimi:"), Blue(c.HachimiURL))
	fmt.Fprintf(Output, "%s %s\n", Bold("Game Data:"), orUnset(c.GameDataDir))
	fmt.Fprintf(Output, "%s %s\n", Bold("Localized Data:"), orUnset(c.LocalizedDataDir))
	if c.LocalizeDict != "" {
		fmt.Fprintf(Output, "%s %s\n", Bold("Localize Dict:"), ActiveStatusLabel(c.LocalizeDict, c.LocalizeDictExists))
	}
	fmt.Fprintf(Output, "%s %s\n", Bold("Log Level:"), c.LogLevel)
	fmt.Fprintf(Output, "%s %s\n", Bold("Logs:"), c.LogPath)
}

func orUnset(s string) string {
	if s == "" {
		return Dim("(not set)")
	}
	return Blue(s)
}

// PathStatus is a path and whether it exists.
type PathStatus struct {
	Path   string
	Exists bool
}

// PrintPathList prints paths under a title, marking the ones that exist.
func PrintPathList(title string, paths []PathStatus) {
	if len(paths) == 0 {
		fmt.Fprintln(Output, "No paths to show.")
		return
	}

	fmt.Fprintln(Output, Bold(title))
	for _, p := range paths {
		label := ActiveStatusLabel(p.Path, p.Exists)
		if p.Exists {
			label = Green(label)
		} else {
			label = Dim(label)
		}
		fmt.Fprintf(Output, "  %s\n", label)
	}
}

// PrintTable prints query results as a table followed by the row count.
// Short rows are padded with empty cells.
func PrintTable(columns []string, rows [][]string) {
	if len(columns) > 0 {
		fmt.Fprintln(Output, renderTable(columns, rows))
	}
	fmt.Fprintln(Output, Dim(fmt.Sprintf("(%d rows)", len(rows))))
}

func renderTable(columns []string, rows [][]string) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, len(columns))
		for i := range columns {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}
	return tw.Render()
}
