package docker

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"reflect"
	"strings"
	"testing"

	cerrdefs "github.com/containerd/errdefs"
	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/pkg/stdcopy"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"

	"github.com/holon-run/toolscan/pkg/runner"
)

type fakeAPI struct {
	pulled     []image.PullOptions
	pullStream string
	createErrs []error
	creates    int
	created    *container.Config
	platform   *ocispec.Platform
	name       string
	startErr   error
	removeErr  error
	removed    []string
	execCmd    []string
	execStdout string
	execStderr string
	exitCode   int
}

func (f *fakeAPI) ImagePull(ctx context.Context, ref string, options image.PullOptions) (io.ReadCloser, error) {
	f.pulled = append(f.pulled, options)
	stream := f.pullStream
	if stream == "" {
		stream = `{"status":"Downloaded newer image"}`
	}
	return io.NopCloser(strings.NewReader(stream)), nil
}

func (f *fakeAPI) ContainerCreate(ctx context.Context, config *container.Config, hostConfig *container.HostConfig, networkingConfig *network.NetworkingConfig, platform *ocispec.Platform, containerName string) (container.CreateResponse, error) {
	f.creates++
	if len(f.createErrs) > 0 {
		err := f.createErrs[0]
		f.createErrs = f.createErrs[1:]
		if err != nil {
			return container.CreateResponse{}, err
		}
	}
	f.created = config
	f.platform = platform
	f.name = containerName
	return container.CreateResponse{ID: "c0ffee"}, nil
}

func (f *fakeAPI) ContainerStart(ctx context.Context, containerID string, options container.StartOptions) error {
	return f.startErr
}

func (f *fakeAPI) ContainerRemove(ctx context.Context, containerID string, options container.RemoveOptions) error {
	f.removed = append(f.removed, containerID)
	return f.removeErr
}

func (f *fakeAPI) ContainerExecCreate(ctx context.Context, containerID string, options container.ExecOptions) (container.ExecCreateResponse, error) {
	f.execCmd = options.Cmd
	return container.ExecCreateResponse{ID: "exec-1"}, nil
}

func (f *fakeAPI) ContainerExecAttach(ctx context.Context, execID string, config container.ExecAttachOptions) (types.HijackedResponse, error) {
	var buf bytes.Buffer
	if f.execStdout != "" {
		if _, err := stdcopy.NewStdWriter(&buf, stdcopy.Stdout).Write([]byte(f.execStdout)); err != nil {
			return types.HijackedResponse{}, err
		}
	}
	if f.execStderr != "" {
		if _, err := stdcopy.NewStdWriter(&buf, stdcopy.Stderr).Write([]byte(f.execStderr)); err != nil {
			return types.HijackedResponse{}, err
		}
	}
	conn, peer := net.Pipe()
	_ = peer.Close()
	return types.HijackedResponse{Conn: conn, Reader: bufio.NewReader(&buf)}, nil
}

func (f *fakeAPI) ContainerExecInspect(ctx context.Context, execID string) (container.ExecInspect, error) {
	return container.ExecInspect{ExecID: execID, ExitCode: f.exitCode}, nil
}

func (f *fakeAPI) Ping(ctx context.Context) (types.Ping, error) {
	return types.Ping{APIVersion: "1.47"}, nil
}

func (f *fakeAPI) Close() error { return nil }

func TestNewRuntime(t *testing.T) {
	rt, err := NewRuntime()
	if err != nil {
		t.Skipf("Skipping: docker client unavailable: %v", err)
	}
	defer rt.Close()
	if rt.cli == nil {
		t.Error("Expected non-nil docker client")
	}
}

func TestRuntimePullUsesPlatform(t *testing.T) {
	api := &fakeAPI{}
	rt := &Runtime{cli: api}

	if err := rt.Pull(context.Background(), "img:tag", PlatformARM64); err != nil {
		t.Fatalf("Pull() error = %v", err)
	}
	if len(api.pulled) != 1 || api.pulled[0].Platform != "linux/arm64" {
		t.Errorf("pull options = %+v, want platform linux/arm64", api.pulled)
	}
}

func TestRuntimePullReportsStreamError(t *testing.T) {
	api := &fakeAPI{pullStream: `{"status":"Pulling from jmarrec/openstudio-cmake-tools"}
{"errorDetail":{"message":"no matching manifest for linux/arm64 in the manifest list entries"},"error":"no matching manifest for linux/arm64 in the manifest list entries"}
`}
	rt := &Runtime{cli: api}

	err := rt.Pull(context.Background(), "img:tag", PlatformARM64)
	if err == nil {
		t.Fatal("Pull() expected error from progress stream")
	}
	if !strings.Contains(err.Error(), "no matching manifest") {
		t.Errorf("Pull() error = %v, want the daemon message", err)
	}
}

func TestRuntimeStartPullsMissingImage(t *testing.T) {
	tests := []struct {
		name        string
		createErrs  []error
		pullStream  string
		wantErr     bool
		wantPulls   int
		wantCreates int
	}{
		{
			name:        "image present",
			wantPulls:   0,
			wantCreates: 1,
		},
		{
			name:        "image missing is pulled then created",
			createErrs:  []error{fmt.Errorf("No such image: img:tag: %w", cerrdefs.ErrNotFound)},
			wantPulls:   1,
			wantCreates: 2,
		},
		{
			name:        "failed pull aborts",
			createErrs:  []error{fmt.Errorf("No such image: img:tag: %w", cerrdefs.ErrNotFound)},
			pullStream:  `{"error":"pull access denied for img"}`,
			wantErr:     true,
			wantPulls:   1,
			wantCreates: 1,
		},
		{
			name:        "other create errors are not retried",
			createErrs:  []error{errors.New("conflict: name temp in use")},
			wantErr:     true,
			wantPulls:   0,
			wantCreates: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeAPI{createErrs: tt.createErrs, pullStream: tt.pullStream}
			rt := &Runtime{cli: api}

			err := rt.Start(context.Background(), "img:tag", "temp", PlatformARM64)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Start() error = %v, wantErr %v", err, tt.wantErr)
			}
			if len(api.pulled) != tt.wantPulls {
				t.Errorf("pulls = %d, want %d", len(api.pulled), tt.wantPulls)
			}
			if tt.wantPulls > 0 && api.pulled[0].Platform != "linux/arm64" {
				t.Errorf("pull platform = %q, want linux/arm64", api.pulled[0].Platform)
			}
			if api.creates != tt.wantCreates {
				t.Errorf("creates = %d, want %d", api.creates, tt.wantCreates)
			}
		})
	}
}

func TestRuntimeStartKeepsContainerAlive(t *testing.T) {
	api := &fakeAPI{}
	rt := &Runtime{cli: api}

	if err := rt.Start(context.Background(), "img:tag", "temp", PlatformAMD64); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if api.name != "temp" {
		t.Errorf("container name = %q, want temp", api.name)
	}
	if !reflect.DeepEqual([]string(api.created.Cmd), keepAliveCmd) {
		t.Errorf("Cmd = %v, want %v", api.created.Cmd, keepAliveCmd)
	}
	if api.platform == nil || api.platform.Architecture != "amd64" {
		t.Errorf("platform = %+v, want amd64", api.platform)
	}
}

func TestRuntimeStartFailureRemovesContainer(t *testing.T) {
	api := &fakeAPI{startErr: errors.New("port already allocated")}
	rt := &Runtime{cli: api}

	if err := rt.Start(context.Background(), "img:tag", "temp", PlatformAMD64); err == nil {
		t.Fatal("Start() expected error")
	}
	if len(api.removed) != 1 || api.removed[0] != "c0ffee" {
		t.Errorf("removed = %v, want the created container", api.removed)
	}
}

func TestRuntimeStopIgnoresNotFound(t *testing.T) {
	api := &fakeAPI{removeErr: fmt.Errorf("No such container: temp: %w", cerrdefs.ErrNotFound)}
	rt := &Runtime{cli: api}

	if err := rt.Stop(context.Background(), "temp"); err != nil {
		t.Errorf("Stop() error = %v, want nil", err)
	}

	api.removeErr = errors.New("daemon unavailable")
	if err := rt.Stop(context.Background(), "temp"); err == nil {
		t.Error("Stop() expected error to propagate")
	}
}

func TestRuntimeExec(t *testing.T) {
	api := &fakeAPI{execStdout: "/usr/bin/cmake\n"}
	rt := &Runtime{cli: api}

	out, err := rt.Exec(context.Background(), "temp", "which", "cmake")
	if err != nil {
		t.Fatalf("Exec() error = %v", err)
	}
	if out != "/usr/bin/cmake\n" {
		t.Errorf("Exec() = %q", out)
	}
	if !reflect.DeepEqual(api.execCmd, []string{"which", "cmake"}) {
		t.Errorf("exec cmd = %v", api.execCmd)
	}
}

func TestRuntimeExecNonZeroExit(t *testing.T) {
	api := &fakeAPI{execStderr: "which: no conan\n", exitCode: 1}
	rt := &Runtime{cli: api}

	_, err := rt.Exec(context.Background(), "temp", "which", "conan")
	if !runner.IsExitCode(err, 1) {
		t.Fatalf("Exec() error = %v, want exit status 1", err)
	}
	var exitErr *runner.ExitError
	if errors.As(err, &exitErr) && !strings.Contains(exitErr.Stderr, "no conan") {
		t.Errorf("Stderr = %q", exitErr.Stderr)
	}
}

func TestRuntimePing(t *testing.T) {
	rt := &Runtime{cli: &fakeAPI{}}
	if err := rt.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
}
