package scroll

import "time"

// Scheduler runs deferred callbacks on the coordinator's goroutine.
// Both methods return a function that cancels the callback if it has not
// run yet; cancelling twice is harmless.
type Scheduler interface {
	// NextFrame runs fn on the next display refresh.
	NextFrame(fn func()) (cancel func())
	// After runs fn once d has elapsed.
	After(d time.Duration, fn func()) (cancel func())
}

// stop cancels a scheduled callback and clears its handle.
func stop(handle *func()) {
	if *handle != nil {
		(*handle)()
		*handle = nil
	}
}
