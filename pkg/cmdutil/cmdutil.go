package cmdutil

import (
	"os"
	"os/signal"
	"syscall"
)

// InterruptChan returns a channel that is closed on SIGINT or SIGTERM.
// Multiple goroutines can wait on it to coordinate shutdown.
func InterruptChan() <-chan struct{} {
	interrupt := make(chan struct{})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		close(interrupt)
	}()

	return interrupt
}
