// Package installer installs a downloaded J-Link package with the host package
// manager, or by running the package itself on Windows.
package installer
