package mvc

import (
	"sync"
)

type (
	// ErrorSink receives errors raised by bound handlers.
	// It reports true if the error was handled and should not
	// propagate to the caller raising the event.
	// Failures of asynchronous handlers nobody awaits are reported
	// from the goroutine awaiting them, so sinks must be safe for
	// concurrent use.
	ErrorSink interface {
		UnhandledError(err error) bool
	}

	// ErrorSinkFunc adapts a function to an ErrorSink.
	ErrorSinkFunc func(err error) bool

	// UnhandledErrorEvent is delivered to ErrorHub subscribers.
	// Any subscriber may mark it Handled.
	UnhandledErrorEvent struct {
		Err     error
		Handled bool
	}

	// ErrorHub is an ErrorSink fanning errors out to subscribers.
	ErrorHub struct {
		lock sync.RWMutex
		subs []*errorSubscription
	}

	errorSubscription struct {
		fun func(*UnhandledErrorEvent)
	}
)

// UnhandledErrors is the process-wide ErrorHub.
// Engines report to it unless configured with another ErrorSink.
var UnhandledErrors = &ErrorHub{}


func (f ErrorSinkFunc) UnhandledError(err error) bool {
	return f(err)
}


// ErrorHub

// Subscribe adds fun to the subscribers and returns the
// function that removes it again.
func (h *ErrorHub) Subscribe(
	fun func(*UnhandledErrorEvent),
) (unsubscribe func()) {
	if fun == nil {
		panic("fun cannot be nil")
	}
	sub := &errorSubscription{fun}
	h.lock.Lock()
	defer h.lock.Unlock()
	h.subs = append(h.subs, sub)
	return func() {
		h.lock.Lock()
		defer h.lock.Unlock()
		for i, s := range h.subs {
			if s == sub {
				h.subs = append(h.subs[:i:i], h.subs[i+1:]...)
				return
			}
		}
	}
}

func (h *ErrorHub) UnhandledError(err error) bool {
	if err == nil {
		return true
	}
	h.lock.RLock()
	subs := h.subs
	h.lock.RUnlock()
	event := &UnhandledErrorEvent{Err: err}
	for _, sub := range subs {
		sub.fun(event)
	}
	return event.Handled
}
