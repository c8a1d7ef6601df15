package catalog

import (
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"

	"github.com/oshokin/jlink-updater/internal/domain/release"
)

// Markup of the download page.
const (
	versionSelectSelector = "select.version"
	linksSelector         = "div.links"
	versionClassPrefix    = "v"
	osNameClass           = "os-name"
	packageRowClass       = "linkbox-link"

	// minRowLinks is the icon link plus the text link of a package row.
	minRowLinks = 2
)

// ParseDocument reads an HTML page.
func ParseDocument(r io.Reader) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse download page: %w", err)
	}

	return doc, nil
}

// ParseVersionIndex reads the release selector of the page.
// A page without the selector yields an empty table.
func ParseVersionIndex(doc *goquery.Document) release.VersionIndexTable {
	table := make(release.VersionIndexTable, 0)

	doc.Find(versionSelectSelector).First().Find("option").Each(func(_ int, option *goquery.Selection) {
		value, _ := option.Attr("value")

		table = append(table, release.VersionIndex{
			Index: value,
			Label: strings.TrimSpace(option.Text()),
		})
	})

	return table
}

// ParsePackages reads the packages listed for one version index.
// A missing container yields empty, non-nil Packages.
//
// Elements are visited in page order: an OS heading starts a fresh list for
// its category, and a package row is kept only after a heading and only if it
// carries at least two links. The second link gives the name and path.
func ParsePackages(doc *goquery.Document, index string) release.Packages {
	packages := make(release.Packages)

	// The index is page data, so it is matched as a class name and never spliced into a selector.
	if index == "" || strings.ContainsFunc(index, unicode.IsSpace) {
		return packages
	}

	container := doc.Find(linksSelector).FilterFunction(func(_ int, s *goquery.Selection) bool {
		return s.HasClass(versionClassPrefix + index)
	}).First()
	if container.Length() == 0 {
		return packages
	}

	var category string

	container.Find("*").Each(func(_ int, s *goquery.Selection) {
		if tag := goquery.NodeName(s); tag != "p" && tag != "div" {
			return
		}

		switch {
		case s.HasClass(osNameClass):
			category = strings.TrimSpace(s.Text())
			packages[category] = []release.PackageEntry{}
		case s.HasClass(packageRowClass) && category != "":
			entry, ok := parseRow(s)
			if ok {
				packages[category] = append(packages[category], entry)
			}
		}
	})

	return packages
}

func parseRow(row *goquery.Selection) (release.PackageEntry, bool) {
	links := row.Find("a")
	if links.Length() < minRowLinks {
		return release.PackageEntry{}, false
	}

	link := links.Eq(1)
	name := strings.TrimSpace(link.Text())
	href, _ := link.Attr("href")

	if name == "" || href == "" {
		return release.PackageEntry{}, false
	}

	return release.PackageEntry{Name: name, Path: href}, true
}

// ParseCatalog reads the packages of every release listed by the page.
func ParseCatalog(doc *goquery.Document) release.Catalog {
	table := ParseVersionIndex(doc)

	catalog := make(release.Catalog, len(table))
	for _, v := range table {
		catalog[v.Index] = ParsePackages(doc, v.Index)
	}

	return catalog
}
