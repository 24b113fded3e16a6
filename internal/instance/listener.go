package instance

import (
	"errors"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
)

// Receiver is the owner's end of a channel.
type Receiver interface {
	Wait() error
	Signal() error
	Read() (string, error)
}

// Dispatcher receives forwarded command lines.
type Dispatcher interface {
	Dispatch(workDir, commandLine string) error
}

// Listener waits for forwarded command lines and dispatches them one at a time.
type Listener struct {
	recv       Receiver
	dispatcher Dispatcher
	logger     *slog.Logger
	onError    func(error)

	terminating atomic.Bool
	started     atomic.Bool
	stopOnce    sync.Once
	stopErr     error
	wg          sync.WaitGroup
}

// NewListener creates a Listener. onError, when set, is called for every
// failed dispatch; the listener keeps running.
func NewListener(recv Receiver, dispatcher Dispatcher, logger *slog.Logger, onError func(error)) *Listener {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Listener{
		recv:       recv,
		dispatcher: dispatcher,
		logger:     logger,
		onError:    onError,
	}
}

// Start runs the listener in its own goroutine.
func (l *Listener) Start() {
	if !l.started.CompareAndSwap(false, true) {
		return
	}

	l.wg.Add(1)
	go l.loop()
}

// Stop terminates the listener: it sets the termination flag, raises the
// signal and waits for the loop to exit.
func (l *Listener) Stop() error {
	l.stopOnce.Do(func() {
		l.terminating.Store(true)

		if l.started.Load() {
			l.stopErr = l.recv.Signal()
		}

		l.wg.Wait()
	})

	return l.stopErr
}

func (l *Listener) loop() {
	defer l.wg.Done()

	for {
		if err := l.recv.Wait(); err != nil {
			if l.terminating.Load() || errors.Is(err, os.ErrClosed) {
				return
			}

			l.logger.Warn("waiting for forwarded command line failed", "error", err)

			return
		}

		if l.terminating.Load() {
			return
		}

		l.handle()
	}
}

func (l *Listener) handle() {
	payload, err := l.recv.Read()
	if err != nil {
		l.logger.Warn("reading forwarded command line failed", "error", err)

		return
	}

	workDir, commandLine, ok := SplitPayload(payload)
	if !ok {
		l.logger.Debug("dropping malformed forwarded payload", "bytes", len(payload))

		return
	}

	l.logger.Debug("dispatching forwarded command line", "work_dir", workDir)

	if err := l.dispatcher.Dispatch(workDir, commandLine); err != nil {
		l.logger.Warn("dispatching forwarded command line failed", "error", err)

		if l.onError != nil {
			l.onError(err)
		}
	}
}
