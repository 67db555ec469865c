// Package logging builds the zerolog logger shared by the commands.
package logging

import (
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
)

const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Config selects the minimum level and the output format.
type Config struct {
	Level   string `yaml:"level" envconfig:"LEVEL" validate:"oneof=trace debug info warn error disabled"`
	Format  string `yaml:"format" envconfig:"FORMAT" validate:"oneof=console json"`
	NoColor bool   `yaml:"no_color" envconfig:"NO_COLOR"`
}

func DefaultConfig() Config {
	return Config{Level: "info", Format: FormatConsole}
}

// New returns a logger writing to w. Console output is human readable,
// json output is one object per line.
func New(cfg Config, w io.Writer) (zerolog.Logger, error) {
	level := zerolog.InfoLevel
	if cfg.Level != "" {
		var err error
		level, err = zerolog.ParseLevel(cfg.Level)
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("logging: %w", err)
		}
	}

	out := w
	switch cfg.Format {
	case "", FormatConsole:
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly, NoColor: cfg.NoColor}
	case FormatJSON:
	default:
		return zerolog.Nop(), fmt.Errorf("logging: unknown format %q", cfg.Format)
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger(), nil
}
