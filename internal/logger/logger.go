package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// New builds the root logger and installs it as the zerolog global.
// Pretty output is a console writer; otherwise JSON lines.
func New(level string, pretty bool) zerolog.Logger {
	return newWithWriter(os.Stdout, level, pretty)
}

func newWithWriter(out io.Writer, level string, pretty bool) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	w := out
	if pretty {
		w = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
		}
	}

	l := zerolog.New(w).Level(lvl).With().Timestamp().Logger()
	log.Logger = l
	return l
}
