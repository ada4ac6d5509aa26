// Package ports defines the interfaces the decoder and its tooling depend on.
package ports

// LogLevel represents the severity level of a log message.
type LogLevel int

const (
	// LevelDebug is used by components: decoder state transitions, batches, boxes.
	LevelDebug LogLevel = iota
	// LevelInfo is used by the orchestrator for pipeline progress.
	LevelInfo
	LevelWarn
	LevelError
	// LevelQuiet suppresses all log output.
	LevelQuiet
)

// String returns the string representation of the log level.
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	case LevelQuiet:
		return "quiet"
	default:
		return "unknown"
	}
}

// ParseLogLevel parses a level name, defaulting to LevelInfo.
func ParseLogLevel(s string) LogLevel {
	for l := LevelDebug; l <= LevelQuiet; l++ {
		if l.String() == s {
			return l
		}
	}
	return LevelInfo
}

// Logger writes leveled messages. msg is a translation key; args are
// applied after translation.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)

	// WithComponent returns a Logger that prefixes messages with component.
	WithComponent(component string) Logger
}
