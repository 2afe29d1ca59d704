package model

//
// Logger
//

// DebugLogger is a logger emitting only debug messages.
type DebugLogger interface {
	// Debug emits a debug message.
	Debug(msg string)

	// Debugf formats and emits a debug message.
	Debugf(format string, v ...interface{})
}

// Logger is the logger used by every wirescope component. It is
// out of the box compatible with `log.Log` in `apex/log`.
type Logger interface {
	DebugLogger

	// Info emits an informational message.
	Info(msg string)

	// Infof formats and emits an informational message.
	Infof(format string, v ...interface{})

	// Warn emits a warning message.
	Warn(msg string)

	// Warnf formats and emits a warning message.
	Warnf(format string, v ...interface{})
}

// DiscardLogger is the default logger that discards its input
var DiscardLogger Logger = logDiscarder{}

type logDiscarder struct{}

func (logDiscarder) Debug(msg string)                       {}
func (logDiscarder) Debugf(format string, v ...interface{}) {}
func (logDiscarder) Info(msg string)                        {}
func (logDiscarder) Infof(format string, v ...interface{})  {}
func (logDiscarder) Warn(msg string)                        {}
func (logDiscarder) Warnf(format string, v ...interface{})  {}

// ValidLoggerOrDefault returns the given logger, if not nil, or DiscardLogger.
func ValidLoggerOrDefault(logger Logger) Logger {
	if logger != nil {
		return logger
	}
	return DiscardLogger
}

// NewPrefixLogger returns a Logger that prepends prefix to every message
// before forwarding it to the given logger. We use it to tag the log
// lines emitted while serving a given API request.
func NewPrefixLogger(prefix string, logger Logger) Logger {
	return &prefixLogger{prefix: prefix, logger: ValidLoggerOrDefault(logger)}
}

type prefixLogger struct {
	prefix string
	logger Logger
}

var _ Logger = &prefixLogger{}

// Debug implements Logger.
func (pl *prefixLogger) Debug(msg string) {
	pl.logger.Debug(pl.prefix + msg)
}

// Debugf implements Logger.
func (pl *prefixLogger) Debugf(format string, v ...interface{}) {
	pl.logger.Debugf(pl.prefix+format, v...)
}

// Info implements Logger.
func (pl *prefixLogger) Info(msg string) {
	pl.logger.Info(pl.prefix + msg)
}

// Infof implements Logger.
func (pl *prefixLogger) Infof(format string, v ...interface{}) {
	pl.logger.Infof(pl.prefix+format, v...)
}

// Warn implements Logger.
func (pl *prefixLogger) Warn(msg string) {
	pl.logger.Warn(pl.prefix + msg)
}

// Warnf implements Logger.
func (pl *prefixLogger) Warnf(format string, v ...interface{}) {
	pl.logger.Warnf(pl.prefix+format, v...)
}
