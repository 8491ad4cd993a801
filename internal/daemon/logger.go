package daemon

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger builds the daemon logger. Format "json" writes one JSON object
// per line; anything else writes human-readable console output.
func NewLogger(cfg LoggingConfig, w io.Writer) zerolog.Logger {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	if !strings.EqualFold(cfg.Format, "json") {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// ParseLevel maps a config level name to a zerolog level. Empty means info.
func ParseLevel(s string) (zerolog.Level, error) {
	if strings.TrimSpace(s) == "" {
		return zerolog.InfoLevel, nil
	}
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("logging level %q: %w", s, err)
	}
	return level, nil
}
