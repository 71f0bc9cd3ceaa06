package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/stretchr/testify/assert"

	"github.com/tartampluch/birthday-reminder/internal/engine"
)

func TestUpcomingTable(t *testing.T) {
	entries := []engine.BirthdayEntry{
		{Record: engine.Record{Name: "Leo", Month: time.May, Day: 3, Importance: 3}, DaysUntil: 1},
		{Record: engine.Record{Name: "Ana", Month: time.May, Day: 10, Importance: 1}, DaysUntil: 128},
	}

	out := upcomingTable(table.Row{"Nombre", "Fecha", "Días", "Importancia"}, entries, false)
	lines := strings.Split(out, "\n")

	assert.Contains(t, out, "Nombre", "headers are not upper-cased")
	assert.Len(t, lines, len(entries)+4, "top border, header, separator, rows, bottom border")
	assert.Contains(t, lines[3], "Leo")
	assert.Contains(t, lines[3], "05/03")
	assert.Contains(t, lines[3], "│    1 │", "days are right aligned")
	assert.Contains(t, lines[4], "│  128 │")
	assert.NotContains(t, out, "\x1b[", "no colors off a terminal")
}

func TestUpcomingTable_Empty(t *testing.T) {
	out := upcomingTable(table.Row{"Nombre", "Fecha", "Días", "Importancia"}, nil, false)
	assert.Contains(t, out, "Importancia")
}

func TestIsTerminal_Buffer(t *testing.T) {
	assert.False(t, isTerminal(&bytes.Buffer{}))
}
