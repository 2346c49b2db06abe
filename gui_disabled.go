//go:build !gui

package main

import (
	"os"

	"hum/tone"
)

func initGUI() {
	logErrf("hum: built without GUI support (rebuild with -tags gui)\n")
	os.Exit(1)
}

// Stubs for non-GUI builds (never reached since guiMode stays false)
func guiSurface() tone.Surface { return nil }
func guiAttach(*app)           {}
func guiDone() <-chan struct{} { return nil }
func guiQuit()                 {}
