package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/lixenwraith/diaglog"
)

const maxCellWidth = 60

var levelColors = map[int64]text.Colors{
	diaglog.LevelDebug: {text.FgHiBlack},
	diaglog.LevelInfo:  {text.FgCyan},
	diaglog.LevelWarn:  {text.FgYellow, text.Bold},
	diaglog.LevelError: {text.FgRed, text.Bold},
}

// renderTable writes entries as a rounded table, oldest first
func renderTable(w io.Writer, entries []diaglog.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, text.FgYellow.Sprint("No entries found"))
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{
		text.FgHiCyan.Sprint("TIME"),
		text.FgHiCyan.Sprint("LEVEL"),
		text.FgHiCyan.Sprint("COMPONENT"),
		text.FgHiCyan.Sprint("MESSAGE"),
		text.FgHiCyan.Sprint("DATA"),
	})

	for _, e := range entries {
		level := strings.ToUpper(e.LevelName())
		if colors, ok := levelColors[e.Level]; ok {
			level = colors.Sprint(level)
		}
		t.AppendRow(table.Row{
			e.Timestamp.UTC().Format("2006-01-02 15:04:05.000"),
			level,
			e.Component,
			truncate(e.Message),
			truncate(string(e.Data)),
		})
	}
	t.AppendFooter(table.Row{"", "", "", "TOTAL", len(entries)})
	t.Render()
}

func truncate(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) > maxCellWidth {
		return s[:maxCellWidth-3] + "..."
	}
	return s
}
