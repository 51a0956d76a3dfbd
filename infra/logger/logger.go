package logger

import corelogger "github.com/kilianp07/bessopt/core/logger"

// Logger mirrors the core logger interface.
type Logger = corelogger.Logger

// NopLogger is re-exported for tests and wiring defaults.
type NopLogger = corelogger.NopLogger

// New returns a Logger for the given component. The output format is chosen
// via the APP_ENV variable.
func New(component string) Logger {
	return NewZerologLogger(component)
}
