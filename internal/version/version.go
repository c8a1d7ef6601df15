package version

import (
	"fmt"
	"runtime"
)

// Name is the program name reported in version output and HTTP requests.
const Name = "jlink-updater"

var (
	// Version is the semantic version of the build. It can be overridden via ldflags.
	Version = "0.1.0"
	// Commit is the short git SHA embedded at build time (or "none").
	Commit = "none"
	// BuildTime is the UTC build timestamp embedded at build time.
	BuildTime = "unknown"
)

// Short returns only the semantic version string.
func Short() string {
	return Version
}

// Full returns a human-readable version string with commit, build time and target platform.
func Full() string {
	return fmt.Sprintf("%s version: %s, commit: %s, built at: %s, platform: %s/%s",
		Name, Version, Commit, BuildTime, runtime.GOOS, runtime.GOARCH)
}

// UserAgent is sent with every request to the download server.
func UserAgent() string {
	return Name + "/" + Version + " (" + runtime.GOOS + "; " + runtime.GOARCH + ")"
}
