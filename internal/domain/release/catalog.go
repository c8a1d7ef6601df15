package release

import (
	"path"
	"strconv"
	"strings"
)

// Package categories used by the download page.
const (
	CategoryLinux      = "Linux"
	CategoryLinuxARM   = "Linux ARM"
	CategoryWindows    = "Windows"
	CategoryWindowsARM = "Windows ARM"
	CategoryMacOS      = "macOS"
)

// LatestIndex is the version index of the most recent release.
const LatestIndex = "0"

// PackageEntry is one downloadable artifact.
type PackageEntry struct {
	// Name is the display name, e.g. "J-Link Software and Documentation pack, 64-bit DEB installer".
	Name string
	// Path is the link target; its extension tells the package format.
	Path string
}

// FileName returns the last element of the entry path.
func (p PackageEntry) FileName() string {
	return path.Base(p.Path)
}

// HasFormat reports whether the entry path ends in "."+format.
func (p PackageEntry) HasFormat(format string) bool {
	return format != "" && strings.HasSuffix(p.Path, "."+format)
}

// Packages maps a package category to its entries in page order.
type Packages map[string][]PackageEntry

// Catalog maps a version index to the packages listed for it.
type Catalog map[string]Packages

// VersionIndex pairs a version index with the label shown for it.
type VersionIndex struct {
	Index string
	Label string
}

// VersionIndexTable lists the releases offered by the page in page order.
type VersionIndexTable []VersionIndex

// Label returns the label of index.
func (t VersionIndexTable) Label(index string) (string, bool) {
	for _, v := range t {
		if v.Index == index {
			return v.Label, true
		}
	}

	return "", false
}

// Find returns the index whose label equals query ignoring case or,
// when query is an encoded Number, whose label encodes to it.
// The first match in table order wins.
func (t VersionIndexTable) Find(query string) (string, error) {
	query = strings.TrimSpace(query)

	if number, err := strconv.Atoi(query); err == nil {
		return t.FindNumber(Number(number))
	}

	for _, v := range t {
		if strings.EqualFold(strings.TrimSpace(v.Label), query) {
			return v.Index, nil
		}
	}

	return "", ErrNotFound
}

// FindNumber returns the first index whose label encodes to n.
func (t VersionIndexTable) FindNumber(n Number) (string, error) {
	for _, v := range t {
		if encoded, err := Encode(v.Label); err == nil && encoded == n {
			return v.Index, nil
		}
	}

	return "", ErrNotFound
}
