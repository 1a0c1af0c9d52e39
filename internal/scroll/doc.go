// Package scroll decides where the feed viewport should be scrolled.
//
// The Coordinator owns one bound viewport and follow button at a time. It
// tracks whether the viewport should follow newly appended content, keeps
// the follow button's visibility in sync, persists the scroll offset per
// view key and restores it when a view is shown again. Restoration waits
// for content that has not been painted yet and never fights an explicit
// deep-link target.
//
// Collaborators talk to the Coordinator through a Bus. A Bridge subscribes
// to the bus and maps each signal onto exactly one Coordinator call.
//
// All methods are meant to be called from a single goroutine (the UI loop).
// Deferred work runs through a Scheduler that delivers callbacks on that
// same goroutine.
package scroll
