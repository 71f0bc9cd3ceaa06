package main

import (
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"github.com/tartampluch/birthday-reminder/internal/engine"
)

// upcomingTable draws the list view: name, date, days left and importance,
// numbers right aligned. Headers keep the catalog wording; colors are used
// only on a terminal.
func upcomingTable(header table.Row, entries []engine.BirthdayEntry, colorize bool) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.Style().Format.Header = text.FormatDefault
	if colorize {
		tw.Style().Color.Header = text.Colors{text.Bold, text.FgCyan}
	}

	tw.AppendHeader(header)
	for _, e := range entries {
		tw.AppendRow(table.Row{e.Name, e.MonthDay(), e.DaysUntil, e.Importance})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 4, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	return tw.Render()
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
