package exit

import (
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// TerminationSignals are handled by HandleSignals when none are given.
var TerminationSignals = []os.Signal{syscall.SIGTERM}

// HandleSignals turns the first delivery of one of sigs (TerminationSignals
// when none are given) into an Exception exit: the status is recorded,
// shutdown runs and the process terminates with 128 plus the signal number.
// The handler runs on its own goroutine while the rest of the program keeps
// running. The returned function stops handling; signals then get their
// default behavior again.
func (c *Coordinator) HandleSignals(sigs ...os.Signal) (stop func()) {
	if len(sigs) == 0 {
		sigs = TerminationSignals
	}
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, sigs...)
	stopWatch := c.watchSignals(ch)
	return func() {
		signal.Stop(ch)
		stopWatch()
	}
}

func (c *Coordinator) watchSignals(signals <-chan os.Signal) (stop func()) {
	done := make(chan struct{})
	go func() {
		select {
		case sig := <-signals:
			select {
			case <-done:
				return
			default:
			}
			c.logger.Error("terminated by signal", "signal", sig.String())
			c.finish(Exception, signalExitCode(sig))
		case <-done:
		}
	}()
	var once sync.Once
	return func() {
		once.Do(func() { close(done) })
	}
}

func signalExitCode(sig os.Signal) int {
	if s, ok := sig.(syscall.Signal); ok {
		return 128 + int(s)
	}
	return 1
}
