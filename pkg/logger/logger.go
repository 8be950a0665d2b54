package logger

// Level identifies the severity a message is dispatched with.
type Level int

const (
	LevelPrint Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

// LoggerInstance defines the interface for logging backends.
type LoggerInstance interface {
	Log(message string, keyvals ...any)
	Debug(message string, keyvals ...any)
	Info(message string, keyvals ...any)
	Warn(message string, keyvals ...any)
	Error(message string, keyvals ...any)
	Fatal(message string, keyvals ...any)
}

// Logger holds multiple logging backends and dispatches log calls to all of them.
type Logger struct {
	instances []LoggerInstance
}

var singleton *Logger

// Init initializes the global logger with one or more logging backends.
// Calls made before Init are dropped.
func Init(instances ...LoggerInstance) {
	singleton = &Logger{
		instances: instances,
	}
}

func dispatch(level Level, message string, keyvals []any) {
	logger := singleton
	if logger == nil {
		return
	}

	for _, instance := range logger.instances {
		switch level {
		case LevelDebug:
			instance.Debug(message, keyvals...)
		case LevelInfo:
			instance.Info(message, keyvals...)
		case LevelWarn:
			instance.Warn(message, keyvals...)
		case LevelError:
			instance.Error(message, keyvals...)
		case LevelFatal:
			instance.Fatal(message, keyvals...)
		default:
			instance.Log(message, keyvals...)
		}
	}
}

// Log writes a message without a level to all configured backends.
func Log(message string, keyvals ...any) { dispatch(LevelPrint, message, keyvals) }

// Debug writes a message at DEBUG level to all configured backends.
func Debug(message string, keyvals ...any) { dispatch(LevelDebug, message, keyvals) }

// Info writes a message at INFO level to all configured backends.
func Info(message string, keyvals ...any) { dispatch(LevelInfo, message, keyvals) }

// Warn writes a message at WARN level to all configured backends.
func Warn(message string, keyvals ...any) { dispatch(LevelWarn, message, keyvals) }

// Error writes a message at ERROR level to all configured backends.
func Error(message string, keyvals ...any) { dispatch(LevelError, message, keyvals) }

// Fatal writes a message at FATAL level. Backends are expected to exit the process.
func Fatal(message string, keyvals ...any) { dispatch(LevelFatal, message, keyvals) }
