package renderer

import "errors"

var ErrExecutorClosed = errors.New("executor is shut down")

// Executor runs functions on the thread a backend requires.
type Executor interface {
	// Call runs fn on the executor's thread and waits for it.
	Call(fn func() error) error
	// Post queues fn on the executor's thread without waiting.
	Post(fn func())
}

// Inline runs everything on the calling goroutine. Use it for backends that
// are multithreaded.
type Inline struct{}

func (Inline) Call(fn func() error) error {
	return fn()
}

func (Inline) Post(fn func()) {
	fn()
}
