// Package config holds the inspection settings: the image and tags to compare,
// the tool allow-list, and the reserved container name.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/holon-run/toolscan/pkg/runtime/docker"
)

// DefaultImage is the image whose tags are compared by default.
const DefaultImage = "jmarrec/openstudio-cmake-tools"

// DefaultContainerName is the reserved name of the inspection container.
const DefaultContainerName = docker.DefaultContainerName

// Config is an immutable-by-convention set of inspection inputs.
type Config struct {
	Image         string   `yaml:"image"`
	Tags          []string `yaml:"tags"`
	Tools         []string `yaml:"tools"`
	ContainerName string   `yaml:"container_name"`
}

// DefaultTags lists the compared image tags in report column order.
func DefaultTags() []string {
	return []string{
		"ubuntu-20.04-v1",
		"ubuntu-22.04-v1",
		"ubuntu-24.04-v1",
	}
}

// DefaultTools is the probe allow-list. ruby is listed twice on purpose: the
// list is data and duplicates are probed as given.
func DefaultTools() []string {
	return []string{
		"cmake",
		"pyenv",
		"python",
		"conan",
		"rbenv",
		"ruby",
		"bundler",
		"archivegen",
		"ruby",
		"doxygen",
		"ccache",
		"gcc",
	}
}

// Default returns the compiled-in configuration.
func Default() Config {
	return Config{
		Image:         DefaultImage,
		Tags:          DefaultTags(),
		Tools:         DefaultTools(),
		ContainerName: DefaultContainerName,
	}
}

// Load reads a YAML file and overlays its non-empty fields on Default().
// An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Config{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if file.Image != "" {
		cfg.Image = file.Image
	}
	if file.Tags != nil {
		cfg.Tags = file.Tags
	}
	if file.Tools != nil {
		cfg.Tools = file.Tools
	}
	if file.ContainerName != "" {
		cfg.ContainerName = file.ContainerName
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports every problem with the configuration.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Image) == "" {
		errs = append(errs, errors.New("image must not be empty"))
	}
	if len(c.Tags) == 0 {
		errs = append(errs, errors.New("at least one tag is required"))
	}
	for i, tag := range c.Tags {
		if strings.TrimSpace(tag) == "" {
			errs = append(errs, fmt.Errorf("tags[%d] is empty", i))
		}
	}
	if len(c.Tools) == 0 {
		errs = append(errs, errors.New("at least one tool is required"))
	}
	for i, tool := range c.Tools {
		if strings.TrimSpace(tool) == "" || strings.ContainsAny(tool, " \t/") {
			errs = append(errs, fmt.Errorf("tools[%d] %q is not a command name", i, tool))
		}
	}
	if strings.TrimSpace(c.ContainerName) == "" {
		errs = append(errs, errors.New("container_name must not be empty"))
	}
	return errors.Join(errs...)
}
