package observability

import (
	"runtime/debug"
)

// RecoverPanic recovers from a panic in a defer statement and logs it with
// the full stack trace. The panic is not re-raised; long-lived goroutines
// such as file watchers use this to survive a bad iteration.
func RecoverPanic(logger *Logger, context string) {
	if r := recover(); r != nil {
		logger.WithField("panic", r).
			WithField("stack", string(debug.Stack())).
			WithField("context", context).
			Error("PANIC recovered")
	}
}
