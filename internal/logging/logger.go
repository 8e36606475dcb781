package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Output formats accepted by New.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// New builds the process logger and installs it as the zerolog global.
// Console format writes human-readable lines to stdout; json writes one
// object per line.
func New(app, format string) (zerolog.Logger, error) {
	logger, err := NewWithWriter(os.Stdout, app, format)
	if err != nil {
		return zerolog.Nop(), err
	}
	log.Logger = logger
	return logger, nil
}

// NewWithWriter is New without touching the global logger.
func NewWithWriter(w io.Writer, app, format string) (zerolog.Logger, error) {
	var out io.Writer
	switch format {
	case FormatConsole, "":
		out = zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.RFC3339,
			NoColor:    os.Getenv("NO_COLOR") != "",
		}
	case FormatJSON:
		out = w
	default:
		return zerolog.Nop(), fmt.Errorf("unknown log format %q (expected %q or %q)", format, FormatConsole, FormatJSON)
	}

	return zerolog.New(out).With().Timestamp().Str("app", app).Logger(), nil
}
