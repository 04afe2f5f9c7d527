package main

import (
	"fmt"

	"github.com/holon-run/toolscan/pkg/preflight"
	"github.com/holon-run/toolscan/pkg/runner"
	"github.com/holon-run/toolscan/pkg/runtime/docker"
)

// engine bundles a container lifecycle with the preflight checks that prove it works.
type engine struct {
	lifecycle docker.Lifecycle
	checks    []preflight.Check
	close     func() error
}

func newEngine(kind docker.EngineKind) (*engine, error) {
	switch kind {
	case docker.EngineCLI:
		r := runner.NewLocal()
		return &engine{
			lifecycle: docker.NewCLI(r, "docker"),
			checks:    []preflight.Check{&preflight.DockerCLICheck{Runner: r}},
			close:     func() error { return nil },
		}, nil
	case docker.EngineSDK:
		rt, err := docker.NewRuntime()
		if err != nil {
			return nil, fmt.Errorf("failed to initialize runtime: %w", err)
		}
		return &engine{
			lifecycle: rt,
			checks:    []preflight.Check{&preflight.EngineCheck{Engine: rt}},
			close:     rt.Close,
		}, nil
	default:
		return nil, fmt.Errorf("unknown engine %q", kind)
	}
}
