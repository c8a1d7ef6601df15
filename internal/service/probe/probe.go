package probe

import (
	"context"
	"errors"
	"fmt"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/oshokin/jlink-updater/internal/domain/release"
	"github.com/oshokin/jlink-updater/internal/logger"
)

// VersionSymbol is the exported J-Link DLL function returning its version.
const VersionSymbol = "JLINK_GetDLLVersion"

var (
	// ErrNotInstalled is returned when no readable installation was found.
	ErrNotInstalled = errors.New("no installed J-Link software detected")
	// errUnsupportedOS is returned by the loader on platforms without a native loader.
	errUnsupportedOS = errors.New("library loading is not supported on this OS")
)

// LoaderFunc opens the shared library at path and returns the value of VersionSymbol.
type LoaderFunc func(path string) (int, error)

// GlobFunc expands a filesystem pattern.
type GlobFunc func(pattern string) ([]string, error)

// globPattern expands pattern with doublestar, which also understands "**" and "{a,b}".
func globPattern(pattern string) ([]string, error) {
	return doublestar.FilepathGlob(pattern)
}

// Prober looks for an installed J-Link library and asks it for its version.
//
// Loading a library runs its code inside this process, so the patterns must
// only point at trusted installation directories.
type Prober struct {
	// patterns are tried in order.
	patterns []string
	// glob expands each pattern.
	glob GlobFunc
	// load reads the version from one candidate.
	load LoaderFunc
}

// Option configures the prober.
type Option func(*Prober)

// WithPatterns replaces the OS default patterns.
func WithPatterns(patterns ...string) Option {
	return func(p *Prober) {
		p.patterns = patterns
	}
}

// WithGlob replaces the doublestar expansion.
func WithGlob(glob GlobFunc) Option {
	return func(p *Prober) {
		if glob != nil {
			p.glob = glob
		}
	}
}

// WithLoader replaces the native library loader.
func WithLoader(load LoaderFunc) Option {
	return func(p *Prober) {
		if load != nil {
			p.load = load
		}
	}
}

// New creates a prober for the installation layout of osName (a runtime.GOOS value).
func New(osName string, opts ...Option) *Prober {
	p := &Prober{
		patterns: DefaultPatterns(osName),
		glob:     globPattern,
		load:     loadLibraryVersion,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// DefaultPatterns returns where the J-Link library lives on osName.
func DefaultPatterns(osName string) []string {
	switch osName {
	case release.OSLinux:
		return []string{"/opt/SEGGER/JLink*/libjlink*"}
	case release.OSWindows:
		return []string{
			`C:\Program Files\SEGGER\JLink*\JLink*.dll`,
			`C:\Program Files (x86)\SEGGER\JLink*\JLink*.dll`,
		}
	case release.OSMacOS:
		return []string{"/Applications/SEGGER/JLink*/libjlink*"}
	default:
		return nil
	}
}

// Probe returns the version of the first candidate library that loads.
// Candidates that fail to load are skipped.
func (p *Prober) Probe(ctx context.Context) (release.Number, error) {
	for _, pattern := range p.patterns {
		candidates, err := p.glob(pattern)
		if err != nil {
			logger.DebugKV(ctx, "Skipping bad library pattern", "pattern", pattern, "error", err)
			continue
		}

		for _, candidate := range candidates {
			if ctx.Err() != nil {
				return 0, ctx.Err()
			}

			libraryCtx := logger.WithKV(ctx, "path", candidate)

			version, err := p.loadSafely(candidate)
			if err != nil {
				logger.DebugKV(libraryCtx, "Library version probe failed", "error", err)
				continue
			}

			logger.DebugKV(libraryCtx, "Library version probed", "version", version)

			return release.Number(version), nil
		}
	}

	return 0, ErrNotInstalled
}

// loadSafely turns a panic inside the loader into an error.
func (p *Prober) loadSafely(path string) (version int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("load %s: %v", path, r)
		}
	}()

	return p.load(path)
}
