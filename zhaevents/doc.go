// Package zhaevents is the controller's synchronous event bus: listeners
// subscribe to named events and are invoked in the dispatch loop's own
// goroutine.
//
// Subscribe/publish with optional bounded history uses a two-mutex
// split (one guarding the subscriber list, one guarding history) so
// that recording history never blocks a concurrent
// Subscribe/Unsubscribe.
package zhaevents
