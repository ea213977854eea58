package main

import (
	"nativeaudio/cmd"
	"nativeaudio/internal/log"
	"nativeaudio/pkg/build"
)

// main wires build information into the CLI and runs it. Commands own
// their engine for their whole run and release it before returning.
func main() {
	// Missing ldflags are normal for development builds.
	if err := build.Initialize(); err != nil {
		log.Debug("build information incomplete", "err", err)
	}

	if err := cmd.Execute(); err != nil {
		log.Fatal("command failed", "err", err)
	}
}
