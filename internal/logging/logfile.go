package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LogConfig holds configuration for log output.
type LogConfig struct {
	Format string // "human" (default), "text" or "json"
	Level  string // "DEBUG", "INFO" (default), "WARN", "ERROR"
	Output string // "-" or empty for stderr, "none" to disable, otherwise a file path
}

// LogFile manages the log destination lifecycle.
type LogFile struct {
	Path   string   // Full path to the log file (empty if stderr or disabled)
	file   *os.File // Opened file handle (nil if stderr or disabled)
	writer io.Writer
}

// NewLogFile opens the destination named by cfg.Output. Files are appended
// to, so repeated runs accumulate in one place.
func NewLogFile(cfg *LogConfig) (*LogFile, error) {
	lf := &LogFile{}

	switch strings.ToLower(cfg.Output) {
	case "none":
		lf.writer = io.Discard
		return lf, nil
	case "", "-":
		lf.writer = os.Stderr
		return lf, nil
	}

	lf.Path = cfg.Output
	if dir := filepath.Dir(lf.Path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating log directory %q: %w", dir, err)
		}
	}

	f, err := os.OpenFile(lf.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening log file %q: %w", lf.Path, err)
	}

	lf.file = f
	lf.writer = f

	return lf, nil
}

// Writer returns the io.Writer for log output.
func (lf *LogFile) Writer() io.Writer {
	return lf.writer
}

// Close closes the log file if it was opened.
func (lf *LogFile) Close() error {
	if lf.file != nil {
		return lf.file.Close()
	}
	return nil
}

// NewFromConfig opens the destination and builds a Logger writing to it.
// The caller closes the returned LogFile.
func NewFromConfig(cfg *LogConfig) (Logger, *LogFile, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}
	lf, err := NewLogFile(cfg)
	if err != nil {
		return nil, nil, err
	}
	l, err := NewWithWriter(cfg.Format, level, lf.Writer())
	if err != nil {
		_ = lf.Close()
		return nil, nil, err
	}
	return l, lf, nil
}
