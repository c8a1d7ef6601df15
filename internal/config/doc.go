// Package config defines the updater settings and provides helpers to load,
// validate and save them in YAML format.
//
// Settings are optional: without a file the updater talks to SEGGER's
// public download page and saves into the working directory.
package config
