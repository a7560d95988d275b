package core

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func TestPromiseSetOnce(t *testing.T) {
	p, f := NewPromise[int]()

	if f.IsReady() {
		t.Fatal("future ready before the promise was set")
	}
	if err := p.Set(1); err != nil {
		t.Fatalf("first Set returned %v", err)
	}
	if err := p.Set(2); !errors.Is(err, ErrPromiseAlreadySet) {
		t.Fatalf("second Set returned %v, want ErrPromiseAlreadySet", err)
	}
	if got := f.Get(); got != 1 {
		t.Errorf("Get() = %d, want 1", got)
	}
}

func TestFutureGetBlocksUntilSet(t *testing.T) {
	p, f := NewPromise[string]()

	result := make(chan string, 1)
	go func() {
		result <- f.Get()
	}()

	select {
	case <-result:
		t.Fatal("Get returned before Set")
	case <-time.After(20 * time.Millisecond):
	}

	_ = p.Set("ready")

	select {
	case got := <-result:
		if got != "ready" {
			t.Errorf("Get() = %q, want %q", got, "ready")
		}
	case <-time.After(time.Second):
		t.Fatal("Get did not return after Set")
	}
}

func TestFutureTryGet(t *testing.T) {
	p, f := NewPromise[int]()
	if _, ok := f.TryGet(); ok {
		t.Fatal("TryGet succeeded on an unset future")
	}
	_ = p.Set(7)
	v, ok := f.TryGet()
	if !ok || v != 7 {
		t.Errorf("TryGet() = (%d, %v), want (7, true)", v, ok)
	}
	select {
	case <-f.Done():
	default:
		t.Error("Done channel not closed after Set")
	}
}

func TestFutureThen(t *testing.T) {
	p, f := NewPromise[int]()

	var calls []int
	f.Then(func(v int) { calls = append(calls, v) })
	f.Then(func(v int) { calls = append(calls, v*10) })

	if len(calls) != 0 {
		t.Fatal("continuation ran before Set")
	}
	_ = p.Set(3)
	_ = p.Set(4)

	if len(calls) != 2 || calls[0] != 3 || calls[1] != 30 {
		t.Fatalf("continuations got %v, want [3 30]", calls)
	}

	// Registering after the value is set runs immediately.
	ran := false
	f.Then(func(v int) { ran = v == 3 })
	if !ran {
		t.Error("late continuation did not run with the stored value")
	}
}

func TestFutureConcurrentReaders(t *testing.T) {
	p, f := NewPromise[int]()

	var wg sync.WaitGroup
	errs := make(chan int, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if v := f.Get(); v != 42 {
				errs <- v
			}
		}()
	}
	_ = p.Set(42)
	wg.Wait()
	close(errs)
	for v := range errs {
		t.Errorf("reader got %d, want 42", v)
	}
}

func TestPanickingContinuationDoesNotStopOthers(t *testing.T) {
	p, f := NewPromise[int]()
	var got []int
	f.Then(func(int) { panic("first") })
	f.Then(func(v int) { got = append(got, v) })

	if err := p.Set(3); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if len(got) != 1 || got[0] != 3 {
		t.Errorf("second continuation got %v, want [3]", got)
	}
}
