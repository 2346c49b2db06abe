//go:build !linux

package main

import (
	"os"
	"runtime"

	"golang.design/x/hotkey/mainthread"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	// Set up crash logging early, before any CGO code runs
	initCrashLog()

	// Check for --gui early (before cobra parses flags in run())
	if wantsGUI(os.Args[1:]) {
		initGUI() // takes main thread, calls run() in goroutine
		return
	}
	// Global hotkeys need the main thread on darwin and windows.
	mainthread.Init(run)
}
