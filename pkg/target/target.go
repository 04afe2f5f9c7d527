// Package target describes the environments tools are probed in: the local host or
// a running container.
package target

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/holon-run/toolscan/pkg/runner"
)

// HostLabel is the report label of the local host target.
const HostLabel = "host"

// Target is an environment in which tools can be located and executed.
type Target interface {
	// Label names the target in report headers.
	Label() string
	// LookPath resolves tool to an absolute path. An absent tool yields
	// found == false and a nil error; err is reserved for failures of the
	// lookup itself.
	LookPath(ctx context.Context, tool string) (path string, found bool, err error)
	// Run executes argv and returns its standard output.
	Run(ctx context.Context, argv ...string) (string, error)
	// PathVar returns the raw PATH value seen by commands in the target.
	PathVar(ctx context.Context) (string, error)
	// PathListSeparator is the separator PathVar entries are joined with.
	PathListSeparator() string
}

// Host is the local process environment.
type Host struct {
	runner   runner.Runner
	lookPath func(string) (string, error)
	getenv   func(string) string
}

// HostOption configures a Host.
type HostOption func(*Host)

// WithLookPath replaces exec.LookPath.
func WithLookPath(fn func(string) (string, error)) HostOption {
	return func(h *Host) { h.lookPath = fn }
}

// WithGetenv replaces os.Getenv.
func WithGetenv(fn func(string) string) HostOption {
	return func(h *Host) { h.getenv = fn }
}

// NewHost returns the host target running commands through r.
func NewHost(r runner.Runner, opts ...HostOption) *Host {
	h := &Host{
		runner:   r,
		lookPath: exec.LookPath,
		getenv:   os.Getenv,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Host) Label() string {
	return HostLabel
}

func (h *Host) LookPath(ctx context.Context, tool string) (string, bool, error) {
	path, err := h.lookPath(tool)
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to look up %s: %w", tool, err)
	}
	return path, true, nil
}

func (h *Host) Run(ctx context.Context, argv ...string) (string, error) {
	return h.runner.Output(ctx, argv...)
}

func (h *Host) PathVar(ctx context.Context) (string, error) {
	return h.getenv("PATH"), nil
}

func (h *Host) PathListSeparator() string {
	return string(os.PathListSeparator)
}

// Execer runs commands inside a named container.
type Execer interface {
	Exec(ctx context.Context, name string, argv ...string) (string, error)
}

// Container is a running container addressed by name.
type Container struct {
	label  string
	name   string
	execer Execer
}

// NewContainer returns a target for the container name, labelled label in reports.
func NewContainer(e Execer, name, label string) *Container {
	return &Container{label: label, name: name, execer: e}
}

func (c *Container) Label() string {
	return c.label
}

// LookPath runs `which tool` in the container. which exits 1 when nothing
// matches, which is reported as not found rather than as an error.
func (c *Container) LookPath(ctx context.Context, tool string) (string, bool, error) {
	out, err := c.execer.Exec(ctx, c.name, "which", tool)
	if err != nil {
		if runner.IsExitCode(err, 1) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to look up %s in %s: %w", tool, c.name, err)
	}
	path := strings.TrimRight(out, " \t\r\n")
	if path == "" {
		return "", false, nil
	}
	return path, true, nil
}

func (c *Container) Run(ctx context.Context, argv ...string) (string, error) {
	return c.execer.Exec(ctx, c.name, argv...)
}

func (c *Container) PathVar(ctx context.Context) (string, error) {
	out, err := c.execer.Exec(ctx, c.name, "sh", "-c", "echo $PATH")
	if err != nil {
		return "", fmt.Errorf("failed to read PATH in %s: %w", c.name, err)
	}
	return strings.TrimSpace(out), nil
}

// PathListSeparator is always ":" since only Linux containers are inspected.
func (c *Container) PathListSeparator() string {
	return ":"
}
