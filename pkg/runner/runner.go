// Package runner executes external commands and captures their standard output.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	holonlog "github.com/holon-run/toolscan/pkg/log"
)

// Runner runs an argument vector to completion and returns its stdout.
type Runner interface {
	Output(ctx context.Context, argv ...string) (string, error)
}

// CommandFunc creates the exec.Cmd for a command. Tests swap it for a helper process.
type CommandFunc func(ctx context.Context, name string, arg ...string) *exec.Cmd

// ExitError is returned when a command exits with a non-zero status.
type ExitError struct {
	Args   []string
	Code   int
	Stderr string
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("command %q exited with status %d", strings.Join(e.Args, " "), e.Code)
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		msg += ": " + stderr
	}
	return msg
}

// IsExitCode reports whether err is an ExitError carrying the given code.
func IsExitCode(err error, code int) bool {
	var exitErr *ExitError
	return errors.As(err, &exitErr) && exitErr.Code == code
}

// Local runs commands as child processes of the current process.
type Local struct {
	command CommandFunc
}

// NewLocal returns a Runner backed by os/exec.
func NewLocal() *Local {
	return &Local{command: exec.CommandContext}
}

// NewLocalWithCommand returns a Runner using the given command constructor.
func NewLocalWithCommand(fn CommandFunc) *Local {
	return &Local{command: fn}
}

// Output runs argv and returns its stdout decoded as text.
func (l *Local) Output(ctx context.Context, argv ...string) (string, error) {
	if len(argv) == 0 {
		return "", errors.New("empty command")
	}

	holonlog.Debug("running command", "argv", argv)

	var stdout, stderr bytes.Buffer
	cmd := l.command(ctx, argv[0], argv[1:]...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return stdout.String(), &ExitError{
				Args:   argv,
				Code:   exitErr.ExitCode(),
				Stderr: stderr.String(),
			}
		}
		return "", fmt.Errorf("failed to run %s: %w", argv[0], err)
	}

	return stdout.String(), nil
}
