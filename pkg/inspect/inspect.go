// Package inspect drives the inspection of the host or of a list of image tags
// and collects the results into a report.
package inspect

import (
	"context"
	"fmt"

	holonlog "github.com/holon-run/toolscan/pkg/log"
	"github.com/holon-run/toolscan/pkg/pathvar"
	"github.com/holon-run/toolscan/pkg/probe"
	"github.com/holon-run/toolscan/pkg/report"
	"github.com/holon-run/toolscan/pkg/runtime/docker"
	"github.com/holon-run/toolscan/pkg/target"
)

// Inspector runs the PATH inspector and the prober against targets.
type Inspector struct {
	prober     *probe.Prober
	reportOpts report.Options
}

// New returns an Inspector probing with p and rendering with opts.
func New(p *probe.Prober, opts report.Options) *Inspector {
	return &Inspector{prober: p, reportOpts: opts}
}

// ImageOptions selects the images compared by Images.
type ImageOptions struct {
	Image         string
	Tags          []string
	ContainerName string
	Platform      docker.Platform
	Pull          bool
}

// Ref returns the image:tag reference of tag.
func (o ImageOptions) Ref(tag string) string {
	return o.Image + ":" + tag
}

func (i *Inspector) inspect(ctx context.Context, t target.Target) ([]string, []probe.Result, error) {
	entries, err := pathvar.Inspect(ctx, t)
	if err != nil {
		return nil, nil, err
	}
	holonlog.Debug("PATH inspected", "target", t.Label(), "entries", len(entries))

	results, err := i.prober.Probe(ctx, t)
	if err != nil {
		return nil, nil, err
	}
	return entries, results, nil
}

// Host inspects a single host target.
func (i *Inspector) Host(ctx context.Context, host target.Target) (*report.Report, error) {
	holonlog.Progress("inspecting host", "tools", len(i.prober.Tools()))

	entries, results, err := i.inspect(ctx, host)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect host: %w", err)
	}

	rep := report.New(i.reportOpts)
	rep.Add(host.Label(), entries, results)
	return rep, nil
}

// Images inspects each tag in order, one container at a time. Any failure
// aborts the run after the current container has been removed.
func (i *Inspector) Images(ctx context.Context, lc docker.Lifecycle, opts ImageOptions) (*report.Report, error) {
	name := opts.ContainerName
	if name == "" {
		name = docker.DefaultContainerName
	}

	rep := report.New(i.reportOpts)
	for n, tag := range opts.Tags {
		ref := opts.Ref(tag)
		holonlog.Progress("inspecting image", "image", ref, "progress", fmt.Sprintf("%d/%d", n+1, len(opts.Tags)))

		start := docker.StartOptions{
			Image:    ref,
			Name:     name,
			Platform: opts.Platform,
			Pull:     opts.Pull,
		}
		err := docker.WithContainer(ctx, lc, start, func(ctx context.Context) error {
			ct := target.NewContainer(lc, name, tag)
			entries, results, err := i.inspect(ctx, ct)
			if err != nil {
				return err
			}
			rep.Add(tag, entries, results)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to inspect %s: %w", ref, err)
		}
	}
	return rep, nil
}
