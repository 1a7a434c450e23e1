// Package logging builds the zerolog loggers shared by the commands.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config configures a logger
type Config struct {
	Level   string `yaml:"level"` // zerolog level name; empty means info
	File    string `yaml:"file"`  // Optional rotating log file
	JSON    bool   `yaml:"json"`  // Write JSON to stderr instead of console output
	NoColor bool   `yaml:"no_color"`

	MaxSizeMB  int  `yaml:"max_size_mb"`
	MaxBackups int  `yaml:"max_backups"`
	MaxAgeDays int  `yaml:"max_age_days"`
	Compress   bool `yaml:"compress"`
}

// DefaultConfig returns a console logger at warn level, so interactive
// commands stay quiet unless asked.
func DefaultConfig() Config {
	return Config{
		Level:      zerolog.WarnLevel.String(),
		MaxSizeMB:  128,
		MaxBackups: 5,
		MaxAgeDays: 16,
	}
}

// New builds a logger writing to stderr and, when File is set, to a
// lumberjack-rotated file.
func New(cfg Config, name string) (zerolog.Logger, io.Closer, error) {
	level := zerolog.InfoLevel
	if cfg.Level != "" {
		l, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
		if err != nil {
			return zerolog.Nop(), nil, errors.Wrapf(err, "log level %q", cfg.Level)
		}
		level = l
	}

	var console io.Writer = os.Stderr
	if !cfg.JSON {
		console = zerolog.ConsoleWriter{Out: os.Stderr, NoColor: cfg.NoColor, TimeFormat: time.TimeOnly}
	}

	writers := []io.Writer{console}
	var closer io.Closer = nopCloser{}
	if cfg.File != "" {
		file := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
		}
		writers = append(writers, file)
		closer = file
	}

	logger := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).
		With().
		Timestamp().
		Str("service", name).
		Logger()
	return logger, closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
