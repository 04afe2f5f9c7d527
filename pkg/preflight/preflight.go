// Package preflight verifies that the container engine is usable before any
// image is inspected.
package preflight

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	holonlog "github.com/holon-run/toolscan/pkg/log"
	"github.com/holon-run/toolscan/pkg/runner"
)

// daemonTimeout bounds each daemon probe so a wedged daemon fails fast.
const daemonTimeout = 5 * time.Second

// CheckLevel represents the severity level of a preflight check
type CheckLevel int

const (
	// LevelError indicates a critical failure that prevents execution
	LevelError CheckLevel = iota
	// LevelWarn indicates a warning that doesn't block execution
	LevelWarn
	// LevelInfo indicates informational output
	LevelInfo
)

// CheckResult represents the result of a single preflight check
type CheckResult struct {
	Name    string
	Level   CheckLevel
	Message string
	Error   error
}

// Check represents a single preflight check
type Check interface {
	Name() string
	Run(ctx context.Context) CheckResult
}

// Checker runs a collection of preflight checks
type Checker struct {
	checks  []Check
	skipped bool
	quiet   bool
}

// Config configures the preflight checker
type Config struct {
	// Skip skips all preflight checks
	Skip bool
	// Quiet suppresses info-level messages
	Quiet bool
}

// NewChecker creates a checker running checks in order.
func NewChecker(cfg Config, checks ...Check) *Checker {
	return &Checker{
		checks:  checks,
		skipped: cfg.Skip,
		quiet:   cfg.Quiet,
	}
}

// Run executes all registered checks and returns an error if any critical checks fail
func (c *Checker) Run(ctx context.Context) error {
	if c.skipped {
		holonlog.Info("preflight checks skipped")
		return nil
	}

	holonlog.Progress("running preflight checks")

	var errMsgs []string
	warnings := 0

	for _, check := range c.checks {
		result := check.Run(ctx)

		switch result.Level {
		case LevelError:
			holonlog.Error("preflight check failed", "check", result.Name, "message", result.Message)
			msg := fmt.Sprintf("%s: %s", result.Name, result.Message)
			if result.Error != nil {
				msg = fmt.Sprintf("%s (%v)", msg, result.Error)
			}
			errMsgs = append(errMsgs, msg)
		case LevelWarn:
			holonlog.Warn("preflight check warning", "check", result.Name, "message", result.Message)
			warnings++
		case LevelInfo:
			if !c.quiet {
				holonlog.Info("preflight check", "check", result.Name, "message", result.Message)
			}
		}
	}

	if warnings > 0 {
		holonlog.Info("preflight warnings", "count", warnings)
	}

	if len(errMsgs) > 0 {
		return fmt.Errorf("preflight checks failed:\n  - %s", strings.Join(errMsgs, "\n  - "))
	}

	holonlog.Progress("preflight checks passed")
	return nil
}

// Pinger is implemented by engines that can probe the daemon directly.
type Pinger interface {
	Ping(ctx context.Context) error
}

// EngineCheck pings the daemon through the Engine API.
type EngineCheck struct {
	Engine Pinger
}

func (c *EngineCheck) Name() string {
	return "docker-engine"
}

func (c *EngineCheck) Run(ctx context.Context) CheckResult {
	checkCtx, cancel := context.WithTimeout(ctx, daemonTimeout)
	defer cancel()

	if err := c.Engine.Ping(checkCtx); err != nil {
		return CheckResult{
			Name:    c.Name(),
			Level:   LevelError,
			Message: "docker daemon is not running or not accessible. Please start Docker Desktop or the Docker daemon.",
			Error:   err,
		}
	}

	return CheckResult{
		Name:    c.Name(),
		Level:   LevelInfo,
		Message: "docker daemon is reachable",
	}
}

// DockerCLICheck checks that the docker binary is installed and its daemon answers.
type DockerCLICheck struct {
	Binary   string
	Runner   runner.Runner
	LookPath func(string) (string, error)
}

func (c *DockerCLICheck) binary() string {
	if c.Binary == "" {
		return "docker"
	}
	return c.Binary
}

func (c *DockerCLICheck) Name() string {
	return c.binary()
}

func (c *DockerCLICheck) Run(ctx context.Context) CheckResult {
	lookPath := c.LookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	if _, err := lookPath(c.binary()); err != nil {
		return CheckResult{
			Name:    c.Name(),
			Level:   LevelError,
			Message: fmt.Sprintf("%s command not found. Please install Docker from https://docs.docker.com/get-docker/", c.binary()),
			Error:   err,
		}
	}

	checkCtx, cancel := context.WithTimeout(ctx, daemonTimeout)
	defer cancel()

	if _, err := c.Runner.Output(checkCtx, c.binary(), "info"); err != nil {
		return CheckResult{
			Name:    c.Name(),
			Level:   LevelError,
			Message: "docker daemon is not running or not accessible. Please start Docker Desktop or the Docker daemon.",
			Error:   err,
		}
	}

	return CheckResult{
		Name:    c.Name(),
		Level:   LevelInfo,
		Message: fmt.Sprintf("%s is available and daemon is running", c.binary()),
	}
}
