// Package probe resolves the path and version of each allow-listed tool in a target.
package probe

import (
	"context"
	"errors"
	"fmt"

	holonlog "github.com/holon-run/toolscan/pkg/log"
)

// Status classifies the outcome of probing one tool.
type Status int

const (
	// StatusResolved means a version was extracted.
	StatusResolved Status = iota
	// StatusNotFound means the tool is absent from the target.
	StatusNotFound
	// StatusNoVersion means --version ran but printed no version triple.
	StatusNoVersion
	// StatusFailed covers any other failure (lookup or invocation).
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusResolved:
		return "resolved"
	case StatusNotFound:
		return "not found"
	case StatusNoVersion:
		return "no version"
	case StatusFailed:
		return "error"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Record is a resolved tool.
type Record struct {
	Name    string
	Path    string
	Version string
}

// Result is the outcome of probing one tool. Only StatusResolved results carry
// a version; the others carry Err and, for StatusNoVersion, the raw FirstLine.
type Result struct {
	Name      string
	Path      string
	Version   string
	FirstLine string
	Status    Status
	Err       error
}

// Record returns the tool record of a resolved result.
func (r Result) Record() (Record, bool) {
	if r.Status != StatusResolved {
		return Record{}, false
	}
	return Record{Name: r.Name, Path: r.Path, Version: r.Version}, true
}

// Target is what the prober needs from an environment.
type Target interface {
	Label() string
	LookPath(ctx context.Context, tool string) (string, bool, error)
	Run(ctx context.Context, argv ...string) (string, error)
}

// Options configures a Prober.
type Options struct {
	// KeepGoing records failures as results instead of aborting on the first one.
	KeepGoing bool
}

// Prober checks an ordered allow-list of tools.
type Prober struct {
	tools     []string
	keepGoing bool
}

// NewProber returns a prober for tools. Order and duplicates are preserved.
func NewProber(tools []string, opts Options) *Prober {
	return &Prober{
		tools:     append([]string(nil), tools...),
		keepGoing: opts.KeepGoing,
	}
}

// Tools returns the allow-list in probe order.
func (p *Prober) Tools() []string {
	return append([]string(nil), p.tools...)
}

// Probe returns one result per allow-listed tool, in allow-list order. Unless
// KeepGoing is set, the first unresolved tool aborts probing with its error and
// no results are returned.
func (p *Prober) Probe(ctx context.Context, t Target) ([]Result, error) {
	logger := holonlog.With("target", t.Label())
	results := make([]Result, 0, len(p.tools))

	for _, tool := range p.tools {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		res := probeTool(ctx, t, tool)
		if res.Status != StatusResolved {
			if !p.keepGoing || errors.Is(res.Err, context.Canceled) {
				return nil, fmt.Errorf("%s: %w", t.Label(), res.Err)
			}
			logger.Warnw("tool not resolved", "tool", tool, "status", res.Status.String(), "error", res.Err)
		} else {
			logger.Debugw("tool resolved", "tool", tool, "path", res.Path, "version", res.Version)
		}
		results = append(results, res)
	}
	return results, nil
}

func probeTool(ctx context.Context, t Target, tool string) Result {
	res := Result{Name: tool}

	path, found, err := t.LookPath(ctx, tool)
	if err != nil {
		res.Status = StatusFailed
		res.Err = err
		return res
	}
	res.Path = path

	out, err := t.Run(ctx, tool, "--version")
	if err != nil {
		if !found {
			res.Status = StatusNotFound
			res.Err = fmt.Errorf("%s not found: %w", tool, err)
			return res
		}
		res.Status = StatusFailed
		res.Err = fmt.Errorf("failed to run %s --version: %w", tool, err)
		return res
	}

	res.FirstLine = FirstLine(out)
	version, err := ExtractVersion(tool, res.FirstLine)
	if err != nil {
		res.Status = StatusNoVersion
		res.Err = err
		return res
	}
	res.Version = version
	res.Status = StatusResolved
	return res
}
