// Package release holds the J-Link release model and the decisions made on it.
//
// Labels such as "V8.10g" convert to comparable Numbers and back. A Catalog
// lists the packages of each release grouped by category, and Select picks
// the one package that fits a Platform.
package release
