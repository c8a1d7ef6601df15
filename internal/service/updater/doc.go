// Package updater downloads and installs the J-Link software pack.
//
// A run reads the download page, resolves the requested release, picks the
// package that fits the host, skips the work when the installed version is
// already current, and otherwise downloads the package and hands it to the
// package manager.
package updater
