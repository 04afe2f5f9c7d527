package docker

import (
	"fmt"
	"strings"

	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
)

// Platform selects the CPU architecture an image is pulled and run for.
type Platform string

const (
	// PlatformAMD64 is the default target platform.
	PlatformAMD64 Platform = "linux/amd64"
	// PlatformARM64 targets 64-bit ARM images.
	PlatformARM64 Platform = "linux/arm64"
)

// Platforms lists the accepted platform values in help order.
var Platforms = []Platform{PlatformAMD64, PlatformARM64}

func ParsePlatform(s string) (Platform, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	if normalized == "" {
		return PlatformAMD64, nil
	}
	for _, p := range Platforms {
		if normalized == string(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("invalid platform %q; must be one of: %s, %s", s, PlatformAMD64, PlatformARM64)
}

func (p Platform) String() string {
	return string(p)
}

// Set implements pflag.Value so cobra rejects unknown platforms while parsing flags.
func (p *Platform) Set(s string) error {
	parsed, err := ParsePlatform(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Type implements pflag.Value.
func (p *Platform) Type() string {
	return "platform"
}

// OCI returns the platform in the form the engine API expects.
func (p Platform) OCI() *ocispec.Platform {
	if p == "" {
		return nil
	}
	goos, arch, _ := strings.Cut(string(p), "/")
	return &ocispec.Platform{OS: goos, Architecture: arch}
}

// EngineKind selects how container operations reach the daemon.
type EngineKind string

const (
	// EngineSDK talks to the daemon through the Engine API client.
	EngineSDK EngineKind = "sdk"
	// EngineCLI shells out to the docker binary.
	EngineCLI EngineKind = "cli"
)

func ParseEngineKind(s string) (EngineKind, error) {
	switch normalized := strings.ToLower(strings.TrimSpace(s)); normalized {
	case "", string(EngineSDK):
		return EngineSDK, nil
	case string(EngineCLI):
		return EngineCLI, nil
	default:
		return "", fmt.Errorf("invalid engine %q; must be one of: sdk, cli", s)
	}
}

func (k EngineKind) String() string {
	return string(k)
}
