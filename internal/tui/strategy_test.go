package tui

import (
	"testing"

	"github.com/wethinkt/go-daybook/internal/scroll"
)

func TestLiveDayStrategy(t *testing.T) {
	bus := scroll.NewBus()
	var reqs []scroll.ForceEdgeRequest
	bus.ForceEdge.Subscribe(func(r scroll.ForceEdgeRequest) { reqs = append(reqs, r) })

	st := liveDayStrategy(bus, func() string { return testToday })

	if !st.Match(scroll.DayKey(testToday)) {
		t.Fatal("today should match")
	}
	if st.Match(scroll.DayKey(testYesterday)) || st.Match(scroll.PathKey(DaysPath)) {
		t.Fatal("only today should match")
	}
	if _, ok := st.Hooks.Restore(scroll.DayKey(testToday)); ok {
		t.Fatal("today never restores a saved offset")
	}

	st.Hooks.AfterSwap(scroll.DayKey(testToday))
	if len(reqs) != 1 || !reqs[0].Force || reqs[0].Direction != scroll.Down {
		t.Fatalf("unexpected force-edge requests %+v", reqs)
	}
}
