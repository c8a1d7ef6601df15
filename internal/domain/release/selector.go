package release

import (
	"fmt"
	"strings"
)

// Package formats understood by the Linux branch of Select.
const (
	FormatDeb = "deb"
	FormatRPM = "rpm"
	FormatTgz = "tgz"
)

// Markers embedded in package display names.
const (
	marker64Bit        = "64-bit"
	markerUniversal    = "Universal"
	markerAppleSilicon = "Apple Silicon"
	markerIntelSilicon = "Intel Silicon"
	archTokenARM       = "arm"
	archTokenAArch     = "aarch"
)

// Select picks the single package of catalog[index] that fits p.
// preferredFormat only matters on Linux, where "deb" or "rpm" is tried before
// the ".tgz" fallback. The first match in page order wins.
func Select(catalog Catalog, index string, p Platform, preferredFormat string) (PackageEntry, error) {
	packages, ok := catalog[index]
	if !ok {
		return PackageEntry{}, fmt.Errorf("version index %q: %w", index, ErrNotFound)
	}

	arch := strings.ToLower(p.Arch)

	var (
		entry PackageEntry
		found bool
	)

	switch p.OS {
	case OSLinux:
		category := CategoryLinux
		if strings.Contains(arch, archTokenARM) || strings.Contains(arch, archTokenAArch) {
			category = CategoryLinuxARM
		}

		entry, found = selectLinux(packages[category], p.Is64Bit, preferredFormat)
	case OSWindows:
		category := CategoryWindows
		if strings.Contains(arch, archTokenARM) {
			category = CategoryWindowsARM
		}

		entry, found = first(packages[category], func(e PackageEntry) bool {
			return is64Bit(e) == p.Is64Bit
		})
	case OSMacOS:
		entry, found = selectMacOS(packages[CategoryMacOS], arch)
	}

	if !found {
		return PackageEntry{}, fmt.Errorf("package for %s/%s: %w", p.OS, p.Arch, ErrNotFound)
	}

	return entry, nil
}

func selectLinux(entries []PackageEntry, want64Bit bool, preferredFormat string) (PackageEntry, bool) {
	var matching []PackageEntry

	for _, e := range entries {
		if is64Bit(e) == want64Bit {
			matching = append(matching, e)
		}
	}

	if preferredFormat == FormatDeb || preferredFormat == FormatRPM {
		if e, ok := first(matching, hasFormat(preferredFormat)); ok {
			return e, true
		}
	}

	return first(matching, hasFormat(FormatTgz))
}

// selectMacOS prefers a universal build over an architecture-specific one.
func selectMacOS(entries []PackageEntry, arch string) (PackageEntry, bool) {
	if e, ok := first(entries, nameContains(markerUniversal)); ok {
		return e, true
	}

	if strings.Contains(arch, archTokenARM) {
		return first(entries, nameContains(markerAppleSilicon))
	}

	return first(entries, nameContains(markerIntelSilicon))
}

// is64Bit treats entries without the "64-bit" marker as 32-bit builds.
func is64Bit(e PackageEntry) bool {
	return strings.Contains(e.Name, marker64Bit)
}

func hasFormat(format string) func(PackageEntry) bool {
	return func(e PackageEntry) bool {
		return e.HasFormat(format)
	}
}

func nameContains(marker string) func(PackageEntry) bool {
	return func(e PackageEntry) bool {
		return strings.Contains(e.Name, marker)
	}
}

func first(entries []PackageEntry, match func(PackageEntry) bool) (PackageEntry, bool) {
	for _, e := range entries {
		if match(e) {
			return e, true
		}
	}

	return PackageEntry{}, false
}
