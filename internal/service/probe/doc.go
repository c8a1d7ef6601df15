// Package probe detects the J-Link software already installed on the host.
//
// It globs the usual installation directories, loads each candidate library
// and calls JLINK_GetDLLVersion. The glob and the loader are injectable, so
// tests never load real shared libraries.
package probe
