// Package dbglog builds the logrus.FieldLogger threaded through the page,
// b-tree, schema, and executor layers, gated by --debug/--trace flags.
package dbglog

import (
	"github.com/sirupsen/logrus"
)

// New builds a logger at the given verbosity. debug enables Debug-level
// output (component entry/exit, file header and schema loading); trace
// additionally enables Trace-level output (page fetches, schema rows parsed,
// every cell visited during a scan).
func New(debug, trace bool) logrus.FieldLogger {
	logger := logrus.New()
	switch {
	case trace:
		logger.SetLevel(logrus.TraceLevel)
	case debug:
		logger.SetLevel(logrus.DebugLevel)
	default:
		logger.SetLevel(logrus.WarnLevel)
	}
	return logger
}

// Noop returns a logger with output fully suppressed, for use in tests and
// other contexts where an engine is constructed without CLI flags.
func Noop() logrus.FieldLogger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}
