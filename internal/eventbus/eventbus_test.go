package eventbus

import (
	"sync"
	"testing"
)

func TestBus_DeliversInSubscriptionOrder(t *testing.T) {
	bus := New[string]()
	var got []string

	bus.Subscribe(func(s string) { got = append(got, "a:"+s) })
	bus.Subscribe(func(s string) { got = append(got, "b:"+s) })
	bus.Subscribe(func(s string) { got = append(got, "c:"+s) })

	bus.Publish("x")

	want := []string{"a:x", "b:x", "c:x"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := New[int]()
	calls := 0

	unsub := bus.Subscribe(func(int) { calls++ })
	bus.Publish(1)
	unsub()
	unsub()
	bus.Publish(2)

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if bus.Count() != 0 {
		t.Errorf("Count() = %d, want 0", bus.Count())
	}
}

func TestBus_UnsubscribeKeepsOthers(t *testing.T) {
	bus := New[int]()
	var a, b, c int

	bus.Subscribe(func(int) { a++ })
	unsubB := bus.Subscribe(func(int) { b++ })
	bus.Subscribe(func(int) { c++ })

	unsubB()
	bus.Publish(0)

	if a != 1 || b != 0 || c != 1 {
		t.Errorf("a=%d b=%d c=%d, want 1 0 1", a, b, c)
	}
}

func TestBus_SubscribeDuringPublish(t *testing.T) {
	bus := New[int]()
	late := 0

	bus.Subscribe(func(int) {
		bus.Subscribe(func(int) { late++ })
	})

	bus.Publish(1)
	if late != 0 {
		t.Errorf("handler added during publish ran for the same event")
	}

	bus.Publish(2)
	if late != 1 {
		t.Errorf("late = %d, want 1", late)
	}
}

func TestBus_NilHandler(t *testing.T) {
	bus := New[int]()
	unsub := bus.Subscribe(nil)
	unsub()
	bus.Publish(1)
	if bus.Count() != 0 {
		t.Errorf("nil handler should not be registered")
	}
}

func TestBus_ConcurrentPublish(t *testing.T) {
	bus := New[int]()
	var mu sync.Mutex
	total := 0

	bus.Subscribe(func(n int) {
		mu.Lock()
		total += n
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bus.Publish(1)
		}()
	}
	wg.Wait()

	if total != 50 {
		t.Errorf("total = %d, want 50", total)
	}
}
