// Package fetcher downloads J-Link packages.
//
// The server only hands out a package after a license acceptance form is
// posted; anything but a 200 binary response is rejected, because the server
// answers refused requests with an HTML page.
package fetcher
