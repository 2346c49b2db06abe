//go:build linux

package main

import "os"

func main() {
	// Set up crash logging early, before any CGO code runs
	initCrashLog()

	if wantsGUI(os.Args[1:]) {
		initGUI()
		return
	}
	run()
}
