package installer

import (
	"os/exec"
	"strings"

	"github.com/oshokin/jlink-updater/internal/domain/release"
)

// Package formats installed without a package manager.
const (
	// FormatPkg is the macOS installer package format.
	FormatPkg = "pkg"
	// FormatExe is the self-installing Windows package format.
	FormatExe = "exe"
)

// PackageManager is the format the host installs and the command installing it.
type PackageManager struct {
	// Format is the package format the command accepts: deb, rpm, pkg, exe or tgz.
	// Empty means any format.
	Format string
	// Command installs a package file passed as its last argument.
	Command []string
	// Elevate runs Command through the installer's elevation prefix.
	Elevate bool
	// RunsPackage means the downloaded file installs itself when executed.
	RunsPackage bool
}

// Custom wraps a user-supplied install command. It runs as typed, without elevation,
// and accepts any package format.
func Custom(command string) PackageManager {
	return PackageManager{Command: strings.Fields(command)}
}

// CanInstall reports whether anything can install a package on this host.
func (m PackageManager) CanInstall() bool {
	return m.RunsPackage || len(m.Command) > 0
}

// Accepts reports whether the manager can install entry.
func (m PackageManager) Accepts(entry release.PackageEntry) bool {
	return m.Format == "" || entry.HasFormat(m.Format)
}

// String renders the command for status lines.
func (m PackageManager) String() string {
	switch {
	case m.RunsPackage:
		return "run package"
	case len(m.Command) == 0:
		return "none"
	default:
		return strings.Join(m.Command, " ")
	}
}

// LookPathFunc finds an executable, like exec.LookPath.
type LookPathFunc func(file string) (string, error)

type candidate struct {
	format  string
	binary  string
	command []string
}

// linuxCandidates are tried in order; Debian tools come first.
//
//nolint:gochecknoglobals // Fixed lookup table.
var linuxCandidates = []candidate{
	{release.FormatDeb, "apt", []string{"apt", "install"}},
	{release.FormatDeb, "apt-get", []string{"apt-get", "install"}},
	{release.FormatDeb, "dpkg", []string{"dpkg", "-i"}},
	{release.FormatRPM, "yum", []string{"yum", "install"}},
	{release.FormatRPM, "dnf", []string{"dnf", "install"}},
	{release.FormatRPM, "rpm", []string{"rpm", "-Uh"}},
	{release.FormatRPM, "zypper", []string{"zypper", "install"}},
}

// Detect picks the package manager of osName (a runtime.GOOS value).
// A nil lookPath means exec.LookPath. Windows packages install themselves.
// Without a known manager the format is "tgz" and there is no command.
func Detect(osName string, lookPath LookPathFunc) PackageManager {
	if lookPath == nil {
		lookPath = exec.LookPath
	}

	switch osName {
	case release.OSLinux:
		for _, c := range linuxCandidates {
			if _, err := lookPath(c.binary); err == nil {
				return PackageManager{Format: c.format, Command: c.command, Elevate: true}
			}
		}
	case release.OSMacOS:
		if _, err := lookPath("installer"); err == nil {
			return PackageManager{
				Format:  FormatPkg,
				Command: []string{"installer", "-target", "/", "-pkg"},
				Elevate: true,
			}
		}
	case release.OSWindows:
		return PackageManager{Format: FormatExe, RunsPackage: true}
	}

	return PackageManager{Format: release.FormatTgz}
}
