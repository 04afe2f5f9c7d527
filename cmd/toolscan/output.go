package main

import (
	"io"

	"github.com/holon-run/toolscan/pkg/report"
)

// renderWidth is the wrap width of --pretty output.
const renderWidth = 160

func writeReport(w io.Writer, rep *report.Report) error {
	if !pretty {
		return rep.WriteMarkdown(w)
	}
	out, err := report.Render(rep.Markdown(), renderWidth)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}
