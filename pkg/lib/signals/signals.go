package signals

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/sirupsen/logrus"
)

var shutdownSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}

var (
	signalCtx context.Context
	once      sync.Once
)

// Context returns a Context cancelled on SIGTERM or SIGINT. If a second
// signal is caught, the program is terminated with exit code 1.
func Context(logger logrus.FieldLogger) context.Context {
	once.Do(func() {
		c := make(chan os.Signal, 2)
		signal.Notify(c, shutdownSignals...)
		signalCtx = notify(context.Background(), logger, c, os.Exit)
	})
	return signalCtx
}

// notify cancels the returned context on the first value received from c
// and calls exit on the second.
func notify(parent context.Context, logger logrus.FieldLogger, c <-chan os.Signal, exit func(int)) context.Context {
	ctx, cancel := context.WithCancel(parent)
	go func() {
		select {
		case s := <-c:
			logger.WithField("signal", s.String()).Info("shutting down, interrupt again to exit immediately")
			cancel()
		case <-parent.Done():
			cancel()
			return
		}
		<-c
		exit(1) // second signal. Exit directly.
	}()
	return ctx
}
