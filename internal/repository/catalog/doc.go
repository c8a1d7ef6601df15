// Package catalog reads SEGGER's J-Link download page.
//
// Client fetches the page, ParseVersionIndex lists the releases offered by
// its version selector and ParsePackages extracts the packages of a single
// release. ParseCatalog combines both for every release on the page.
package catalog
