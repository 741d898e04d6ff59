// Package applog routes the standard logger to stderr and a rotating file.
package applog

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Config controls log rotation.
type Config struct {
	// Dir is the log directory. Empty disables the file.
	Dir        string `yaml:"dir"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
	// Quiet drops the stderr copy.
	Quiet bool `yaml:"quiet"`
}

// DefaultConfig returns the rotation settings used by the desktop app.
func DefaultConfig() Config {
	return Config{
		File:       "kathputli.log",
		MaxSizeMB:  10,
		MaxBackups: 2,
		MaxAgeDays: 28,
		Compress:   true,
	}
}

// Setup points the standard logger at the configured outputs. The returned
// closer releases the log file.
func Setup(cfg Config) (io.Closer, error) {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	if cfg.Dir == "" {
		log.SetOutput(os.Stderr)
		return io.NopCloser(nil), nil
	}

	if err := os.MkdirAll(cfg.Dir, 0755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	file := cfg.File
	if file == "" {
		file = DefaultConfig().File
	}

	lj := &lumberjack.Logger{
		Filename:   filepath.Join(cfg.Dir, file),
		MaxSize:    cfg.MaxSizeMB, // MB
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays, // days
		Compress:   cfg.Compress,
	}

	if cfg.Quiet {
		log.SetOutput(lj)
	} else {
		log.SetOutput(io.MultiWriter(os.Stderr, lj))
	}
	return lj, nil
}
