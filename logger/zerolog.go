package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// zlog adapts zerolog.Logger to the Logger interface.
type zlog struct {
	l zerolog.Logger
}

// New returns an info-level Logger writing human-readable output to stderr.
func New() Logger {
	return NewWithLevel("info")
}

// NewWithLevel parses level (debug|info|warn|error|silent, case-insensitive)
// and returns a Logger writing to stderr at that level. An unrecognized
// level falls back to info.
func NewWithLevel(level string) Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
	base := zerolog.New(out).With().Timestamp().Logger()
	base = base.Level(parseLevel(level))
	return &zlog{l: base}
}

// NewNoOp returns a Logger that discards everything. It is the Config
// default so a Store never requires a logger to be wired in explicitly.
func NewNoOp() Logger {
	base := zerolog.New(io.Discard).Level(zerolog.Disabled)
	return &zlog{l: base}
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "silent":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

func (z *zlog) Panicln(v ...any)                 { z.l.Panic().Msg(sprint(v...)) }
func (z *zlog) Panicf(format string, v ...any)   { z.l.Panic().Msgf(format, v...) }
func (z *zlog) Fatalln(v ...any)                 { z.l.Fatal().Msg(sprint(v...)) }
func (z *zlog) Fatalf(format string, v ...any)   { z.l.Fatal().Msgf(format, v...) }
func (z *zlog) Errorln(v ...any)                 { z.l.Error().Msg(sprint(v...)) }
func (z *zlog) Errorf(format string, v ...any)   { z.l.Error().Msgf(format, v...) }
func (z *zlog) Warnln(v ...any)                  { z.l.Warn().Msg(sprint(v...)) }
func (z *zlog) Warnf(format string, v ...any)    { z.l.Warn().Msgf(format, v...) }
func (z *zlog) Infoln(v ...any)                  { z.l.Info().Msg(sprint(v...)) }
func (z *zlog) Infof(format string, v ...any)    { z.l.Info().Msgf(format, v...) }
func (z *zlog) Debugln(v ...any)                 { z.l.Debug().Msg(sprint(v...)) }
func (z *zlog) Debugf(format string, v ...any)   { z.l.Debug().Msgf(format, v...) }
func (z *zlog) Traceln(v ...any)                 { z.l.Trace().Msg(sprint(v...)) }
func (z *zlog) Tracf(format string, v ...any)    { z.l.Trace().Msgf(format, v...) }

func sprint(v ...any) string {
	if len(v) == 0 {
		return ""
	}
	s := ""
	for i, x := range v {
		if i > 0 {
			s += " "
		}
		s += toString(x)
	}
	return s
}

func toString(x any) string {
	if str, ok := x.(string); ok {
		return str
	}
	if err, ok := x.(error); ok {
		return err.Error()
	}
	return fmt.Sprintf("%v", x)
}
