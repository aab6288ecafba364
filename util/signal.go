package util

import (
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// terminationSignals end the process without going through an interface's quit path.
var terminationSignals = []os.Signal{os.Interrupt, syscall.SIGTERM, syscall.SIGHUP}

// OnTermination calls fn in its own goroutine when the process receives
// SIGINT, SIGTERM or SIGHUP. The returned stop unregisters the handler; fn
// is not called after stop returns.
func OnTermination(fn func(os.Signal)) (stop func()) {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, terminationSignals...)

	done := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		watchSignals(signals, done, fn)
	}()

	return sync.OnceFunc(func() {
		signal.Stop(signals)
		close(done)
		<-finished
	})
}

func watchSignals(signals <-chan os.Signal, done <-chan struct{}, fn func(os.Signal)) {
	select {
	case sig := <-signals:
		fn(sig)
	case <-done:
	}
}
