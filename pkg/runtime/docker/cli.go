package docker

import (
	"context"
	"errors"
	"strings"

	"github.com/holon-run/toolscan/pkg/runner"
)

// CLI implements Lifecycle by shelling out to a docker-compatible binary.
type CLI struct {
	binary string
	runner runner.Runner
}

// NewCLI returns a CLI engine invoking binary (default "docker") through r.
func NewCLI(r runner.Runner, binary string) *CLI {
	if binary == "" {
		binary = "docker"
	}
	return &CLI{binary: binary, runner: r}
}

// PullArgs builds the argument vector for an image pull.
func (c *CLI) PullArgs(ref string, platform Platform) []string {
	return []string{c.binary, "pull", "--platform", platform.String(), ref}
}

// RunArgs builds the argument vector for a detached keep-alive container.
func (c *CLI) RunArgs(ref, name string, platform Platform) []string {
	args := []string{c.binary, "run", "--platform", platform.String(), "--name", name, "-d", ref}
	return append(args, keepAliveCmd...)
}

// RemoveArgs builds the argument vector for a forced removal.
func (c *CLI) RemoveArgs(name string) []string {
	return []string{c.binary, "rm", "-f", name}
}

// ExecArgs builds the argument vector for running argv in a container.
func (c *CLI) ExecArgs(name string, argv []string) []string {
	return append([]string{c.binary, "exec", name}, argv...)
}

func (c *CLI) Pull(ctx context.Context, ref string, platform Platform) error {
	_, err := c.runner.Output(ctx, c.PullArgs(ref, platform)...)
	return err
}

func (c *CLI) Start(ctx context.Context, ref, name string, platform Platform) error {
	_, err := c.runner.Output(ctx, c.RunArgs(ref, name, platform)...)
	return err
}

func (c *CLI) Stop(ctx context.Context, name string) error {
	_, err := c.runner.Output(ctx, c.RemoveArgs(name)...)
	var exitErr *runner.ExitError
	if errors.As(err, &exitErr) && strings.Contains(strings.ToLower(exitErr.Stderr), "no such container") {
		return nil
	}
	return err
}

func (c *CLI) Exec(ctx context.Context, name string, argv ...string) (string, error) {
	out, err := c.runner.Output(ctx, c.ExecArgs(name, argv)...)
	var exitErr *runner.ExitError
	if errors.As(err, &exitErr) {
		// Report the in-container command, not the docker wrapper, so exit-status
		// checks read the same as for the SDK engine.
		return out, &runner.ExitError{Args: argv, Code: exitErr.Code, Stderr: exitErr.Stderr}
	}
	return out, err
}
