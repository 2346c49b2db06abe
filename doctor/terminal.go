package doctor

import (
	"fmt"
	"os"

	"golang.org/x/term"

	"hum/shutdown"
)

// saveTerminal captures the terminal state so it can be restored after a
// check leaves it in raw mode. The returned restore func is safe to call
// when stdin is not a terminal.
func saveTerminal() (restore func()) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return func() {}
	}
	state, err := term.GetState(fd)
	if err != nil {
		return func() {}
	}
	return func() { term.Restore(fd, state) }
}

func setupInterruptHandler(restore func()) {
	sigChan := make(chan os.Signal, 1)
	shutdown.Notify(sigChan)
	go func() {
		<-sigChan
		restore()
		fmt.Fprintln(os.Stderr, "\nInterrupted")
		os.Exit(1)
	}()
}
