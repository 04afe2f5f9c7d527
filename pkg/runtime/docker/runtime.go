package docker

import (
	"bytes"
	"context"
	"fmt"
	"io"

	cerrdefs "github.com/containerd/errdefs"
	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/jsonmessage"
	"github.com/docker/docker/pkg/stdcopy"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"

	holonlog "github.com/holon-run/toolscan/pkg/log"
	"github.com/holon-run/toolscan/pkg/runner"
)

// apiClient is the subset of the Engine API client the runtime uses.
type apiClient interface {
	ImagePull(ctx context.Context, refStr string, options image.PullOptions) (io.ReadCloser, error)
	ContainerCreate(ctx context.Context, config *container.Config, hostConfig *container.HostConfig, networkingConfig *network.NetworkingConfig, platform *ocispec.Platform, containerName string) (container.CreateResponse, error)
	ContainerStart(ctx context.Context, containerID string, options container.StartOptions) error
	ContainerRemove(ctx context.Context, containerID string, options container.RemoveOptions) error
	ContainerExecCreate(ctx context.Context, containerID string, options container.ExecOptions) (container.ExecCreateResponse, error)
	ContainerExecAttach(ctx context.Context, execID string, config container.ExecAttachOptions) (types.HijackedResponse, error)
	ContainerExecInspect(ctx context.Context, execID string) (container.ExecInspect, error)
	Ping(ctx context.Context) (types.Ping, error)
	Close() error
}

// Runtime implements Lifecycle on top of the Docker Engine API.
type Runtime struct {
	cli apiClient
}

// NewRuntime connects to the daemon configured by the DOCKER_* environment.
func NewRuntime() (*Runtime, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create docker client: %w", err)
	}
	return &Runtime{cli: cli}, nil
}

// Close releases the underlying client connection.
func (r *Runtime) Close() error {
	return r.cli.Close()
}

// Ping checks that the daemon answers.
func (r *Runtime) Ping(ctx context.Context) error {
	if _, err := r.cli.Ping(ctx); err != nil {
		return fmt.Errorf("docker daemon is not reachable: %w", err)
	}
	return nil
}

func (r *Runtime) Pull(ctx context.Context, ref string, platform Platform) error {
	holonlog.Debug("docker pull", "image", ref, "platform", platform)
	reader, err := r.cli.ImagePull(ctx, ref, image.PullOptions{Platform: platform.String()})
	if err != nil {
		return err
	}
	defer reader.Close()

	// The daemon reports pull failures inside the progress stream.
	if err := jsonmessage.DisplayJSONMessagesStream(reader, io.Discard, 0, false, nil); err != nil {
		return fmt.Errorf("failed to pull %s: %w", ref, err)
	}
	return nil
}

func (r *Runtime) Start(ctx context.Context, ref, name string, platform Platform) error {
	holonlog.Debug("docker run", "image", ref, "name", name, "platform", platform, "cmd", keepAliveCmd)
	resp, err := r.create(ctx, ref, name, platform)
	if cerrdefs.IsNotFound(err) {
		// Same as docker run: fetch a missing image, then create again.
		holonlog.Info("image not found locally, pulling", "image", ref, "platform", platform)
		if err := r.Pull(ctx, ref, platform); err != nil {
			return err
		}
		resp, err = r.create(ctx, ref, name, platform)
	}
	if err != nil {
		return fmt.Errorf("failed to create container: %w", err)
	}

	if err := r.cli.ContainerStart(ctx, resp.ID, container.StartOptions{}); err != nil {
		// Do not leave a created-but-stopped container holding the reserved name.
		_ = r.cli.ContainerRemove(context.WithoutCancel(ctx), resp.ID, container.RemoveOptions{Force: true})
		return fmt.Errorf("failed to start container: %w", err)
	}
	return nil
}

func (r *Runtime) create(ctx context.Context, ref, name string, platform Platform) (container.CreateResponse, error) {
	return r.cli.ContainerCreate(ctx, &container.Config{
		Image: ref,
		Cmd:   keepAliveCmd,
		Tty:   false,
	}, &container.HostConfig{}, nil, platform.OCI(), name)
}

func (r *Runtime) Stop(ctx context.Context, name string) error {
	holonlog.Debug("docker rm -f", "name", name)
	err := r.cli.ContainerRemove(ctx, name, container.RemoveOptions{Force: true})
	if err != nil && !cerrdefs.IsNotFound(err) {
		return err
	}
	return nil
}

func (r *Runtime) Exec(ctx context.Context, name string, argv ...string) (string, error) {
	holonlog.Debug("docker exec", "name", name, "argv", argv)
	created, err := r.cli.ContainerExecCreate(ctx, name, container.ExecOptions{
		Cmd:          argv,
		AttachStdout: true,
		AttachStderr: true,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create exec in %s: %w", name, err)
	}

	attached, err := r.cli.ContainerExecAttach(ctx, created.ID, container.ExecAttachOptions{})
	if err != nil {
		return "", fmt.Errorf("failed to attach exec in %s: %w", name, err)
	}
	defer attached.Close()

	var stdout, stderr bytes.Buffer
	if _, err := stdcopy.StdCopy(&stdout, &stderr, attached.Reader); err != nil {
		return "", fmt.Errorf("failed to read exec output from %s: %w", name, err)
	}

	inspect, err := r.cli.ContainerExecInspect(ctx, created.ID)
	if err != nil {
		return "", fmt.Errorf("failed to inspect exec in %s: %w", name, err)
	}
	if inspect.ExitCode != 0 {
		return stdout.String(), &runner.ExitError{
			Args:   argv,
			Code:   inspect.ExitCode,
			Stderr: stderr.String(),
		}
	}
	return stdout.String(), nil
}
