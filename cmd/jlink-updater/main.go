package main

import "github.com/oshokin/jlink-updater/cmd/jlink-updater/cmd"

func main() {
	cmd.Execute()
}
