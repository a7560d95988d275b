package renderer

import (
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/faiface/mainthread"

	"github.com/spaghettifunk/texload/engine/containers"
	"github.com/spaghettifunk/texload/engine/core"
)

type task struct {
	fn     func() error
	result chan error
}

func (t task) run() error {
	err := t.fn()
	if t.result != nil {
		t.result <- err
	}
	return err
}

// RenderThread owns one goroutine locked to its OS thread and runs every
// submitted function there, in submission order. Calling Call from inside a
// function already running on the render thread deadlocks.
type RenderThread struct {
	tasks    chan task
	closed   chan struct{}
	once     sync.Once
	wg       sync.WaitGroup
	inTask   atomic.Bool
	executed atomic.Uint64
}

func NewRenderThread() *RenderThread {
	rt := &RenderThread{
		tasks:  make(chan task),
		closed: make(chan struct{}),
	}
	rt.wg.Add(1)
	go rt.loop()
	return rt
}

func (rt *RenderThread) loop() {
	defer rt.wg.Done()

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	for {
		select {
		case t := <-rt.tasks:
			rt.inTask.Store(true)
			err := t.fn()
			rt.inTask.Store(false)
			rt.executed.Add(1)

			if t.result != nil {
				t.result <- err
			} else if err != nil {
				core.LogError("render thread task failed: %s", err)
			}
		case <-rt.closed:
			return
		}
	}
}

func (rt *RenderThread) Call(fn func() error) error {
	t := task{fn: fn, result: make(chan error, 1)}
	select {
	case rt.tasks <- t:
	case <-rt.closed:
		return ErrExecutorClosed
	}
	return <-t.result
}

func (rt *RenderThread) Post(fn func()) {
	t := task{fn: func() error { fn(); return nil }}
	select {
	case rt.tasks <- t:
	case <-rt.closed:
		core.LogWarn("render thread is shut down, dropping posted task")
	}
}

// InTask reports whether the render thread is executing a function right now.
func (rt *RenderThread) InTask() bool {
	return rt.inTask.Load()
}

// Executed returns how many functions the render thread has run.
func (rt *RenderThread) Executed() uint64 {
	return rt.executed.Load()
}

func (rt *RenderThread) Shutdown() error {
	rt.once.Do(func() {
		close(rt.closed)
	})
	rt.wg.Wait()
	return nil
}

// FrameQueue collects functions until the owning loop calls Pump, so they
// run on whichever thread drives the frame. Calling Call from the pumping
// thread deadlocks; use Post there.
type FrameQueue struct {
	mu      sync.Mutex
	queue   *containers.RingQueue[task]
	closed  bool
	pumping atomic.Bool
}

func NewFrameQueue(capacity int) *FrameQueue {
	return &FrameQueue{
		queue: containers.NewRingQueue[task](capacity),
	}
}

func (fq *FrameQueue) enqueue(t task) bool {
	fq.mu.Lock()
	defer fq.mu.Unlock()

	if fq.closed {
		return false
	}
	fq.queue.Enqueue(t)
	return true
}

func (fq *FrameQueue) Call(fn func() error) error {
	t := task{fn: fn, result: make(chan error, 1)}
	if !fq.enqueue(t) {
		return ErrExecutorClosed
	}
	return <-t.result
}

func (fq *FrameQueue) Post(fn func()) {
	if !fq.enqueue(task{fn: func() error { fn(); return nil }}) {
		core.LogWarn("frame queue is shut down, dropping posted task")
	}
}

// Pump runs every queued function on the caller's goroutine and returns how
// many ran. Functions queued while pumping run in the same call.
func (fq *FrameQueue) Pump() int {
	fq.pumping.Store(true)
	defer fq.pumping.Store(false)

	count := 0
	for {
		fq.mu.Lock()
		t, err := fq.queue.Dequeue()
		fq.mu.Unlock()
		if err != nil {
			return count
		}
		if err := t.run(); err != nil && t.result == nil {
			core.LogError("frame queue task failed: %s", err)
		}
		count++
	}
}

// Pumping reports whether Pump is running.
func (fq *FrameQueue) Pumping() bool {
	return fq.pumping.Load()
}

// Pending returns the number of queued functions.
func (fq *FrameQueue) Pending() int {
	fq.mu.Lock()
	defer fq.mu.Unlock()
	return fq.queue.Len()
}

// Shutdown fails every queued Call with ErrExecutorClosed and rejects new
// work.
func (fq *FrameQueue) Shutdown() error {
	fq.mu.Lock()
	fq.closed = true
	var pending []task
	for {
		t, err := fq.queue.Dequeue()
		if err != nil {
			break
		}
		pending = append(pending, t)
	}
	fq.mu.Unlock()

	for _, t := range pending {
		if t.result != nil {
			t.result <- ErrExecutorClosed
		}
	}
	return nil
}

// MainThread runs functions on the process main thread. The program must
// be started through mainthread.Run.
type MainThread struct{}

func (MainThread) Call(fn func() error) error {
	return mainthread.CallErr(fn)
}

func (MainThread) Post(fn func()) {
	mainthread.CallNonBlock(fn)
}
