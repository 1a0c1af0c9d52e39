package tui

import (
	"github.com/wethinkt/go-daybook/internal/scroll"
	"github.com/wethinkt/go-daybook/internal/tuilog"
)

// liveDayStrategy makes today's view always open at its newest entry: no
// saved offset is restored and every swap-in forces a bottom scroll.
func liveDayStrategy(bus *scroll.Bus, today func() string) scroll.Strategy {
	return scroll.Strategy{
		Name: "live-day",
		Match: func(k scroll.ViewKey) bool {
			day, ok := k.Day()
			return ok && day == today()
		},
		Hooks: scroll.Hooks{
			Restore: func(scroll.ViewKey) (int, bool) { return 0, false },
			AfterSwap: func(k scroll.ViewKey) {
				tuilog.Log.Debug("LiveDay: opening at latest", "key", k)
				bus.RequestForceEdge("live-day", "swap", true, scroll.Down)
			},
		},
	}
}
