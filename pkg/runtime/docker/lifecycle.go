package docker

import (
	"context"
	"errors"
	"fmt"

	holonlog "github.com/holon-run/toolscan/pkg/log"
)

// DefaultContainerName is the reserved name used for the inspection container.
// Reusing one name keeps at most one inspection container alive at a time.
const DefaultContainerName = "temp"

// keepAliveCmd keeps a detached container running until it is removed.
var keepAliveCmd = []string{"tail", "-f", "/dev/null"}

// Lifecycle provisions inspection containers and runs commands inside them.
type Lifecycle interface {
	// Pull fetches image for platform.
	Pull(ctx context.Context, image string, platform Platform) error
	// Start launches a detached, long-lived container named name.
	Start(ctx context.Context, image, name string, platform Platform) error
	// Stop force-removes the named container. A missing container is not an error.
	Stop(ctx context.Context, name string) error
	// Exec runs argv inside the named container and returns its stdout.
	Exec(ctx context.Context, name string, argv ...string) (string, error)
}

// StartOptions describes one scoped container acquisition.
type StartOptions struct {
	Image    string
	Name     string
	Platform Platform
	// Pull fetches the image before starting the container.
	Pull bool
}

// WithContainer starts a container, calls fn, and removes the container on every
// exit path, including errors and cancellation of ctx.
func WithContainer(ctx context.Context, lc Lifecycle, opts StartOptions, fn func(ctx context.Context) error) (err error) {
	name := opts.Name
	if name == "" {
		name = DefaultContainerName
	}

	if opts.Pull {
		holonlog.Progress("pulling image", "image", opts.Image, "platform", opts.Platform)
		if err := lc.Pull(ctx, opts.Image, opts.Platform); err != nil {
			return fmt.Errorf("failed to pull image %s: %w", opts.Image, err)
		}
	}

	holonlog.Progress("starting container", "image", opts.Image, "name", name, "platform", opts.Platform)
	if err := lc.Start(ctx, opts.Image, name, opts.Platform); err != nil {
		return fmt.Errorf("failed to start container %s from %s: %w", name, opts.Image, err)
	}

	defer func() {
		holonlog.Progress("removing container", "name", name)
		if stopErr := lc.Stop(context.WithoutCancel(ctx), name); stopErr != nil {
			err = errors.Join(err, fmt.Errorf("failed to remove container %s: %w", name, stopErr))
		}
	}()

	return fn(ctx)
}
