package log

import (
	"github.com/go-logr/logr"
	"github.com/miruken-go/mvc"
)

// Errors subscribes logger to hub so every unhandled handler
// error is logged.  Logged errors are not marked handled.
func Errors(
	hub    *mvc.ErrorHub,
	logger logr.Logger,
) (unsubscribe func()) {
	return hub.Subscribe(func(e *mvc.UnhandledErrorEvent) {
		if !e.Handled {
			logger.Error(e.Err, "unhandled handler error")
		}
	})
}
