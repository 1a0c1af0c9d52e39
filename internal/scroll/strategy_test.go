package scroll

import "testing"

func TestStrategies_FirstMatchWins(t *testing.T) {
	var s Strategies
	var used string
	s.Register(Strategy{
		Name:  "days",
		Match: func(k ViewKey) bool { _, ok := k.Day(); return ok },
		Hooks: Hooks{Restore: func(ViewKey) (int, bool) { used = "days"; return 1, true }},
	})
	s.Register(Strategy{
		Name:  "all",
		Match: func(ViewKey) bool { return true },
		Hooks: Hooks{Restore: func(ViewKey) (int, bool) { used = "all"; return 2, true }},
	})

	name, hooks := s.Resolve(DayKey("2024-01-05"), Hooks{})
	hooks.Restore(DayKey("2024-01-05"))
	if name != "days" || used != "days" {
		t.Errorf("resolved %q, used %q", name, used)
	}

	name, _ = s.Resolve(PathKey("/days"), Hooks{})
	if name != "all" {
		t.Errorf("resolved %q, want all", name)
	}
}

func TestStrategies_DefaultsFillGaps(t *testing.T) {
	var s Strategies
	s.Register(Strategy{
		Name:  "partial",
		Match: func(ViewKey) bool { return true },
		Hooks: Hooks{AfterSwap: func(ViewKey) {}},
	})

	var saved bool
	_, hooks := s.Resolve("x", Hooks{Save: func(ViewKey, int) { saved = true }})
	if hooks.Save == nil || hooks.AfterSwap == nil {
		t.Fatal("hooks missing after resolve")
	}
	hooks.Save("x", 1)
	if !saved {
		t.Error("default Save not used")
	}
}

func TestStrategies_RegisterReplacesByName(t *testing.T) {
	var s Strategies
	s.Register(Strategy{Name: "a", Match: func(ViewKey) bool { return false }})
	s.Register(Strategy{Name: "b", Match: func(ViewKey) bool { return true }})
	s.Register(Strategy{Name: "a", Match: func(ViewKey) bool { return true }})

	if s.Len() != 2 {
		t.Fatalf("Len = %d, want 2", s.Len())
	}
	if name, _ := s.Resolve("x", Hooks{}); name != "a" {
		t.Errorf("resolved %q, want the replaced entry to keep its position", name)
	}
}

func TestCoordinator_StrategyHooks(t *testing.T) {
	today := DayKey("2024-01-05")
	h := newHarness(today)
	h.store.Save(today, 400)

	var afterSwap []ViewKey
	h.c.Register(Strategy{
		Name:  "live",
		Match: func(k ViewKey) bool { return k == today },
		Hooks: Hooks{
			Restore:   func(ViewKey) (int, bool) { return 0, false },
			AfterSwap: func(k ViewKey) { afterSwap = append(afterSwap, k) },
		},
	})
	h.attach()

	h.c.HandleLoad(AfterSwap{TargetID: "feed"})
	h.sched.Frame()

	if len(afterSwap) != 1 || afterSwap[0] != today {
		t.Errorf("AfterSwap calls = %v", afterSwap)
	}
	if h.vp.sets != 0 {
		t.Errorf("strategy restore was bypassed, top = %d", h.vp.top)
	}
	if len(h.completes) != 1 || h.completes[0].Restored {
		t.Errorf("completes = %+v", h.completes)
	}
}
