package report

import (
	"bufio"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

// Table is a rectangular grid of text cells with a header row.
type Table struct {
	Header []string
	Rows   [][]string
}

// widths returns the display width of every column, at least 1.
func (t Table) widths() []int {
	cols := len(t.Header)
	for _, row := range t.Rows {
		if len(row) > cols {
			cols = len(row)
		}
	}
	widths := make([]int, cols)
	measure := func(row []string) {
		for i, cell := range row {
			if w := runewidth.StringWidth(escapeCell(cell)); w > widths[i] {
				widths[i] = w
			}
		}
	}
	measure(t.Header)
	for _, row := range t.Rows {
		measure(row)
	}
	for i := range widths {
		if widths[i] < 1 {
			widths[i] = 1
		}
	}
	return widths
}

// WriteMarkdown writes t as a left-aligned markdown pipe table.
func (t Table) WriteMarkdown(w io.Writer) error {
	widths := t.widths()
	bw := bufio.NewWriter(w)

	writeRow := func(row []string) {
		bw.WriteString("|")
		for i, width := range widths {
			cell := ""
			if i < len(row) {
				cell = escapeCell(row[i])
			}
			bw.WriteString(" ")
			bw.WriteString(runewidth.FillRight(cell, width))
			bw.WriteString(" |")
		}
		bw.WriteString("\n")
	}

	writeRow(t.Header)
	bw.WriteString("|")
	for _, width := range widths {
		bw.WriteString(":")
		bw.WriteString(strings.Repeat("-", width+1))
		bw.WriteString("|")
	}
	bw.WriteString("\n")
	for _, row := range t.Rows {
		writeRow(row)
	}
	return bw.Flush()
}

// String renders the table as markdown.
func (t Table) String() string {
	var sb strings.Builder
	_ = t.WriteMarkdown(&sb)
	return sb.String()
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
