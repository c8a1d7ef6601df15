// Package version exposes build metadata of jlink-updater.
//
// Version, Commit and BuildTime are injected at build time via Go ldflags.
// Full renders them for the `version` subcommand and UserAgent identifies
// the updater to the download server.
package version
