package logger

import (
	"context"
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var (
	mu     sync.RWMutex
	out    io.Writer = os.Stderr
	level            = LevelInfo
	pretty bool
	log    = build()
)

func build() zerolog.Logger {
	w := out
	if pretty {
		w = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	}
	return zerolog.New(w).Level(level.zerolog()).With().Timestamp().Logger()
}

func (l Level) zerolog() zerolog.Level {
	switch l {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// ParseLevel переводит строку из конфига в Level. Неизвестное значение - info.
func ParseLevel(s string) Level {
	switch s {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

func SetLevel(l Level) {
	mu.Lock()
	defer mu.Unlock()
	level = l
	log = build()
}

// SetOutput перенаправляет логи (в тестах - в bytes.Buffer).
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	out = w
	log = build()
}

// SetPretty включает человекочитаемый вывод вместо JSON.
func SetPretty(on bool) {
	mu.Lock()
	defer mu.Unlock()
	pretty = on
	log = build()
}

func current() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return log
}

func Debug(ctx context.Context, msg string, fields ...interface{}) {
	l := current()
	l.Debug().Ctx(ctx).Fields(fields).Msg(msg)
}

func Info(ctx context.Context, msg string, fields ...interface{}) {
	l := current()
	l.Info().Ctx(ctx).Fields(fields).Msg(msg)
}

func Warn(ctx context.Context, msg string, fields ...interface{}) {
	l := current()
	l.Warn().Ctx(ctx).Fields(fields).Msg(msg)
}

// Error пишет ошибку вместе с сообщением; err может быть nil.
func Error(ctx context.Context, err error, msg string, fields ...interface{}) {
	l := current()
	e := l.Error().Ctx(ctx)
	if err != nil {
		e = e.Err(err)
	}
	e.Fields(fields).Msg(msg)
}
