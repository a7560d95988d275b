package core

import "testing"

func TestEventFiresInRegistrationOrder(t *testing.T) {
	e := NewEvent[int](false)

	var order []string
	e.Register(func(int) { order = append(order, "a") })
	e.Register(func(int) { order = append(order, "b") })
	e.Register(func(int) { order = append(order, "c") })

	if !e.Fire(1) {
		t.Fatal("first Fire returned false")
	}
	if e.Fire(2) {
		t.Error("second Fire returned true")
	}

	want := []string{"a", "b", "c"}
	if len(order) != len(want) {
		t.Fatalf("callbacks ran %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("callbacks ran %v, want %v", order, want)
		}
	}
}

func TestEventUnregister(t *testing.T) {
	e := NewEvent[int](false)

	called := 0
	tok := e.Register(func(int) { called++ })
	e.Register(func(int) { called += 10 })

	if !e.Unregister(tok) {
		t.Fatal("Unregister of a known token returned false")
	}
	if e.Unregister(tok) {
		t.Error("Unregister of a removed token returned true")
	}
	if e.Len() != 1 {
		t.Errorf("Len() = %d, want 1", e.Len())
	}

	e.Fire(0)
	if called != 10 {
		t.Errorf("called = %d, want 10", called)
	}
}

func TestEventLateSubscriber(t *testing.T) {
	tests := []struct {
		name   string
		replay bool
		want   int
	}{
		{name: "no replay", replay: false, want: 0},
		{name: "replay", replay: true, want: 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEvent[int](tt.replay)
			e.Fire(5)

			got := 0
			e.Register(func(v int) { got = v })
			if got != tt.want {
				t.Errorf("late subscriber got %d, want %d", got, tt.want)
			}
			if !e.Fired() {
				t.Error("Fired() = false after Fire")
			}
		})
	}
}

func TestEventClear(t *testing.T) {
	e := NewEvent[int](false)
	called := false
	e.Register(func(int) { called = true })
	e.Clear()
	e.Fire(1)
	if called {
		t.Error("cleared callback was invoked")
	}
}

func TestEventPanickingCallbackDoesNotStopOthers(t *testing.T) {
	e := NewEvent[int](false)
	second := 0
	e.Register(func(int) { panic("first") })
	e.Register(func(v int) { second = v })

	if !e.Fire(7) {
		t.Fatal("Fire returned false")
	}
	if second != 7 {
		t.Errorf("second callback got %d, want 7", second)
	}
}

func TestEventCloseDuringFire(t *testing.T) {
	e := NewEvent[int](true)
	later := false
	e.Register(func(int) { e.Close() })
	e.Register(func(int) { later = true })

	e.Fire(1)
	if later {
		t.Error("callback ran after Close")
	}
	if e.Fire(2) {
		t.Error("Fire on a closed event returned true")
	}

	replayed := false
	e.Register(func(int) { replayed = true })
	if replayed || e.Len() != 0 {
		t.Error("closed event accepted a subscriber")
	}
}
