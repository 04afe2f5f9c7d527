// Package report merges per-target PATH entries and probe results into the
// PATH and tool-version comparison tables.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/blang/semver"

	"github.com/holon-run/toolscan/pkg/probe"
)

// Options tunes the rendered tables.
type Options struct {
	// PathHeader and VersionHeader replace the target label in the column
	// headers when the report holds a single target.
	PathHeader    string
	VersionHeader string
	// Drift appends a column showing the version range of rows whose versions
	// differ between targets.
	Drift bool
}

type targetData struct {
	label   string
	path    []string
	results []probe.Result
}

// Report accumulates inspection data, one target at a time.
type Report struct {
	opts    Options
	targets []targetData
}

// New returns an empty report.
func New(opts Options) *Report {
	return &Report{opts: opts}
}

// Add appends a target's PATH entries and probe results. Targets appear as
// columns in the order they were added.
func (r *Report) Add(label string, pathEntries []string, results []probe.Result) {
	r.targets = append(r.targets, targetData{
		label:   label,
		path:    append([]string(nil), pathEntries...),
		results: append([]probe.Result(nil), results...),
	})
}

func (r *Report) columnHeader(label, override string) string {
	if len(r.targets) == 1 && override != "" {
		return override
	}
	return label
}

// PathTable has one column per target; shorter PATH lists are padded with
// empty cells.
func (r *Report) PathTable() Table {
	header := make([]string, len(r.targets))
	longest := 0
	for i, t := range r.targets {
		header[i] = r.columnHeader(t.label, r.opts.PathHeader)
		if len(t.path) > longest {
			longest = len(t.path)
		}
	}

	rows := make([][]string, longest)
	for i := range rows {
		row := make([]string, len(r.targets))
		for j, t := range r.targets {
			if i < len(t.path) {
				row[j] = t.path[i]
			}
		}
		rows[i] = row
	}
	return Table{Header: header, Rows: rows}
}

// rowKey identifies a version row. nth counts earlier records with the same
// name and path in one target, so duplicates line up on their own rows.
type rowKey struct {
	name string
	path string
	nth  int
}

type cell struct {
	text     string
	resolved bool
}

// VersionTable outer-joins the probe results of all targets on (name, path).
// Rows keep first-appearance order; a key missing from a target leaves its
// cell empty. Every record gets a row: the Nth repeat of a key in one target
// joins the Nth repeat in the others.
func (r *Report) VersionTable() Table {
	var order []rowKey
	cells := make(map[rowKey][]cell)

	for ti, t := range r.targets {
		seen := make(map[rowKey]int)
		for _, res := range t.results {
			base := rowKey{name: res.Name, path: res.Path}
			key := rowKey{name: res.Name, path: res.Path, nth: seen[base]}
			seen[base]++
			row, ok := cells[key]
			if !ok {
				row = make([]cell, len(r.targets))
				cells[key] = row
				order = append(order, key)
			}
			if rec, ok := res.Record(); ok {
				row[ti] = cell{text: rec.Version, resolved: true}
			} else {
				row[ti] = cell{text: res.Status.String()}
			}
		}
	}

	header := []string{"name", "path"}
	for _, t := range r.targets {
		header = append(header, r.columnHeader(t.label, r.opts.VersionHeader))
	}
	if r.opts.Drift {
		header = append(header, "drift")
	}

	rows := make([][]string, 0, len(order))
	for _, key := range order {
		row := []string{key.name, key.path}
		for _, c := range cells[key] {
			row = append(row, c.text)
		}
		if r.opts.Drift {
			row = append(row, drift(cells[key]))
		}
		rows = append(rows, row)
	}
	return Table{Header: header, Rows: rows}
}

// drift returns "min → max" when the resolved versions in a row differ.
func drift(row []cell) string {
	var lo, hi semver.Version
	seen := false
	for _, c := range row {
		if !c.resolved {
			continue
		}
		v, err := semver.ParseTolerant(c.text)
		if err != nil {
			continue
		}
		if !seen {
			lo, hi, seen = v, v, true
			continue
		}
		if v.LT(lo) {
			lo = v
		}
		if v.GT(hi) {
			hi = v
		}
	}
	if !seen || lo.EQ(hi) {
		return ""
	}
	return fmt.Sprintf("%s → %s", lo, hi)
}

// WriteMarkdown writes both tables under their section headings.
func (r *Report) WriteMarkdown(w io.Writer) error {
	if _, err := io.WriteString(w, "## PATH variable:\n\n"); err != nil {
		return err
	}
	if err := r.PathTable().WriteMarkdown(w); err != nil {
		return err
	}
	if _, err := io.WriteString(w, "\n## Tool versions:\n\n"); err != nil {
		return err
	}
	return r.VersionTable().WriteMarkdown(w)
}

// Markdown returns the full report as markdown text.
func (r *Report) Markdown() string {
	var sb strings.Builder
	_ = r.WriteMarkdown(&sb)
	return sb.String()
}
