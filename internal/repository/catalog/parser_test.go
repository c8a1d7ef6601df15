package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	"github.com/oshokin/jlink-updater/internal/domain/release"
)

func loadPage(t *testing.T) *goquery.Document {
	t.Helper()

	f, err := os.Open(filepath.Join("testdata", "download_page.html"))
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = f.Close()
	})

	doc, err := ParseDocument(f)
	require.NoError(t, err)

	return doc
}

func parseString(t *testing.T, page string) *goquery.Document {
	t.Helper()

	doc, err := ParseDocument(strings.NewReader(page))
	require.NoError(t, err)

	return doc
}

// TestParseVersionIndex reads the release selector in page order.
func TestParseVersionIndex(t *testing.T) {
	t.Parallel()

	table := ParseVersionIndex(loadPage(t))
	require.Equal(t, release.VersionIndexTable{
		{Index: "0", Label: "V8.10g"},
		{Index: "1", Label: "V8.10f"},
		{Index: "2", Label: "V7.94e"},
	}, table)
}

// TestParseVersionIndex_NoSelector yields an empty table instead of an error.
func TestParseVersionIndex_NoSelector(t *testing.T) {
	t.Parallel()

	table := ParseVersionIndex(parseString(t, "<html><body><select class=\"other\"><option value=\"0\">V1.00</option></select></body></html>"))
	require.NotNil(t, table)
	require.Empty(t, table)
}

// TestParsePackages_Latest extracts every category of the newest release.
func TestParsePackages_Latest(t *testing.T) {
	t.Parallel()

	packages := ParsePackages(loadPage(t), "0")

	require.Equal(t, release.Packages{
		release.CategoryWindows: {
			{Name: "64-bit Installer", Path: "/downloads/jlink/JLink_Windows_V810g_x86_64.exe"},
			{Name: "32-bit Installer", Path: "/downloads/jlink/JLink_Windows_V810g_i386.exe"},
		},
		release.CategoryLinux: {
			{Name: "64-bit DEB Installer", Path: "/downloads/jlink/JLink_Linux_V810g_x86_64.deb"},
			{Name: "64-bit TGZ Archive", Path: "/downloads/jlink/JLink_Linux_V810g_x86_64.tgz"},
		},
		release.CategoryMacOS: {
			{Name: "Universal Installer", Path: "/downloads/jlink/JLink_MacOSX_V810g_universal.pkg"},
		},
	}, packages)
}

// TestParsePackages_SkipsAndOverwrites covers orphan rows, repeated headings and blank names.
func TestParsePackages_SkipsAndOverwrites(t *testing.T) {
	t.Parallel()

	packages := ParsePackages(loadPage(t), "1")

	require.Equal(t, release.Packages{
		release.CategoryLinuxARM: {
			{Name: "32-bit TGZ Archive", Path: "/downloads/jlink/JLink_Linux_V810f_arm.tgz"},
		},
	}, packages)
}

// TestParsePackages_MissingContainer returns an empty, non-nil result.
func TestParsePackages_MissingContainer(t *testing.T) {
	t.Parallel()

	doc := loadPage(t)

	for _, index := range []string{"2", "42"} {
		packages := ParsePackages(doc, index)
		require.NotNil(t, packages, index)
		require.Empty(t, packages, index)
	}
}

// TestParsePackages_IndexIsNotASelector matches odd indices literally as a class name.
func TestParsePackages_IndexIsNotASelector(t *testing.T) {
	t.Parallel()

	page := `<div class="links v1 beta">
  <p class="os-name">Linux</p>
  <div class="linkbox-link"><a href="/a.tgz"><img></a><a href="/a.tgz">64-bit TGZ Archive</a></div>
</div>
<div class="links v1.2">
  <p class="os-name">Linux</p>
  <div class="linkbox-link"><a href="/b.tgz"><img></a><a href="/b.tgz">64-bit TGZ Archive</a></div>
</div>`

	doc := parseString(t, page)

	packages := ParsePackages(doc, "1.2")
	require.Equal(t, []release.PackageEntry{{Name: "64-bit TGZ Archive", Path: "/b.tgz"}}, packages[release.CategoryLinux])

	for _, index := range []string{"1 beta", "1,div", "", " 1"} {
		packages = ParsePackages(doc, index)
		require.NotNil(t, packages, index)
		require.Empty(t, packages, index)
	}
}

// TestParsePackages_TwoLinkRule keeps only rows with at least two links.
func TestParsePackages_TwoLinkRule(t *testing.T) {
	t.Parallel()

	page := `<div class="links v5">
  <p class="os-name">Linux</p>
  <div class="linkbox-link"><a href="/a.tgz"><img></a><a href="/a.tgz">64-bit TGZ Archive</a></div>
  <div class="linkbox-link"><a href="/b.tgz">64-bit single link</a></div>
</div>`

	packages := ParsePackages(parseString(t, page), "5")
	require.Equal(t, []release.PackageEntry{{Name: "64-bit TGZ Archive", Path: "/a.tgz"}}, packages[release.CategoryLinux])
}

// TestParseCatalog parses every release listed by the selector.
func TestParseCatalog(t *testing.T) {
	t.Parallel()

	catalog := ParseCatalog(loadPage(t))

	require.Len(t, catalog, 3)
	require.Len(t, catalog["0"], 3)
	require.Len(t, catalog["1"], 1)
	require.NotNil(t, catalog["2"])
	require.Empty(t, catalog["2"])

	entry, err := release.Select(catalog, "0", release.Platform{OS: release.OSLinux, Arch: "amd64", Is64Bit: true}, release.FormatDeb)
	require.NoError(t, err)
	require.Equal(t, "JLink_Linux_V810g_x86_64.deb", entry.FileName())
}
