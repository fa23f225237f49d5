package logger

import (
	"io"
	"os"
	"syscall"
	"time"

	"codeberg.org/mutker/hoststatus/internal/errors"
	"github.com/rs/zerolog"
	"golang.org/x/term"
)

// Stdout carries the status line, so every log record goes to stderr.
var log = zerolog.Nop()

type LogLevel int8

const (
	DebugLevel LogLevel = iota
	InfoLevel
	WarnLevel
	ErrorLevel
	FatalLevel
)

type LogEvent struct {
	*zerolog.Event
}

func (e *LogEvent) Msg(msg string) {
	e.Event.Msg(msg)
}

func (e *LogEvent) Send() {
	e.Event.Send()
}

// Init initializes the logger for the given level name.
func Init(level string, isService bool) {
	InitWriter(os.Stderr, level, isService)
}

// InitWriter is Init with an explicit destination.
func InitWriter(out io.Writer, level string, isService bool) {
	output := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
		NoColor:    !isTerminal(out),
	}

	if isService {
		output.TimeFormat = ""
		output.FormatTimestamp = func(_ interface{}) string {
			return ""
		}
	}

	log = zerolog.New(output).With().Timestamp().Logger()

	SetLogLevel(ParseLevel(level))
}

// ParseLevel maps a configured level name to a LogLevel. Unknown names map to WarnLevel.
func ParseLevel(level string) LogLevel {
	switch level {
	case "debug":
		return DebugLevel
	case "info":
		return InfoLevel
	case "error":
		return ErrorLevel
	default:
		return WarnLevel
	}
}

// SetLogLevel sets the global log level
func SetLogLevel(level LogLevel) {
	zerolog.SetGlobalLevel(zerolog.Level(level))
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	return term.IsTerminal(int(f.Fd()))
}

// IsService checks if the application is running as a service or a bar child
func IsService() bool {
	if !term.IsTerminal(int(os.Stderr.Fd())) {
		return true
	}
	if os.Getenv("SERVICE_NAME") != "" || os.Getenv("INVOCATION_ID") != "" {
		return true
	}
	if os.Getppid() == 1 {
		return true
	}

	return syscall.Getpgrp() == syscall.Getpid()
}

func Debug() *LogEvent {
	return &LogEvent{log.Debug()}
}

func Info() *LogEvent {
	return &LogEvent{log.Info()}
}

func Warn() *LogEvent {
	return &LogEvent{log.Warn()}
}

func Error() *LogEvent {
	return &LogEvent{log.Error()}
}

// ErrorWithCode logs an error message with its error code
func ErrorWithCode(err error) *LogEvent {
	return &LogEvent{log.Error().
		Str("error_code", string(errors.CodeOf(err))).
		Err(err)}
}

// Fatal logs a fatal message and exits the program
func Fatal() *LogEvent {
	return &LogEvent{log.Fatal()}
}
