package release

import (
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"strings"
)

// Operating systems, spelled as runtime.GOOS spells them.
const (
	OSLinux   = "linux"
	OSWindows = "windows"
	OSMacOS   = "darwin"
)

// Auto keeps the detected value of an override.
const Auto = "auto"

// ErrUnknownPlatform is returned for a system or architecture override that is not recognised.
var ErrUnknownPlatform = errors.New("unknown platform")

// Platform describes the host a package is picked for.
type Platform struct {
	// OS is a runtime.GOOS value.
	OS string
	// Arch is the machine architecture, e.g. "amd64", "arm64", "aarch64".
	Arch string
	// Is64Bit is true for a 64-bit process.
	Is64Bit bool
}

// DetectPlatform describes the running process.
func DetectPlatform() Platform {
	return Platform{
		OS:      runtime.GOOS,
		Arch:    runtime.GOARCH,
		Is64Bit: strconv.IntSize == 64,
	}
}

// systemNames maps the accepted spellings of a system to runtime.GOOS.
//
//nolint:gochecknoglobals // Fixed lookup table.
var systemNames = map[string]string{
	"linux":   OSLinux,
	"windows": OSWindows,
	"macosx":  OSMacOS,
	"macos":   OSMacOS,
	"darwin":  OSMacOS,
}

// archNames maps the accepted spellings of an architecture to the platform it describes.
//
//nolint:gochecknoglobals // Fixed lookup table.
var archNames = map[string]Platform{
	"x86_64":    {Arch: "amd64", Is64Bit: true},
	"amd64":     {Arch: "amd64", Is64Bit: true},
	"i386":      {Arch: "386"},
	"386":       {Arch: "386"},
	"arm":       {Arch: "arm"},
	"arm64":     {Arch: "arm64", Is64Bit: true},
	"aarch64":   {Arch: "arm64", Is64Bit: true},
	"universal": {Arch: "universal", Is64Bit: true},
}

// Override replaces the system and architecture of p. Empty or "auto" keeps the
// detected value. Systems are Linux, MacOSX and Windows; architectures are
// x86_64, i386, arm, arm64 and universal, in any case.
func (p Platform) Override(system, arch string) (Platform, error) {
	if !isAuto(system) {
		osName, ok := systemNames[strings.ToLower(strings.TrimSpace(system))]
		if !ok {
			return Platform{}, fmt.Errorf("system %q: %w", system, ErrUnknownPlatform)
		}

		p.OS = osName
	}

	if !isAuto(arch) {
		known, ok := archNames[strings.ToLower(strings.TrimSpace(arch))]
		if !ok {
			return Platform{}, fmt.Errorf("architecture %q: %w", arch, ErrUnknownPlatform)
		}

		p.Arch = known.Arch
		p.Is64Bit = known.Is64Bit
	}

	return p, nil
}

func isAuto(value string) bool {
	value = strings.TrimSpace(value)

	return value == "" || strings.EqualFold(value, Auto)
}
