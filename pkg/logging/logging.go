package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

var logFile *os.File

// Config mirrors the logging section of the config file.
type Config struct {
	Level     string
	Formatter string
	File      string
}

/*
Init configures the default charmbracelet logger.  When File is set, output
is appended to it instead of stderr, which keeps the terminal chat and the
MCP stdio transport free of log lines.
*/
func Init(cfg Config) error {
	var out io.Writer = os.Stderr

	if cfg.File != "" {
		fh, err := os.OpenFile(cfg.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)

		if err != nil {
			return fmt.Errorf("failed to open log file %s: %w", cfg.File, err)
		}

		Close()
		logFile = fh
		out = fh
	}

	logger := log.NewWithOptions(out, log.Options{
		ReportTimestamp: true,
		ReportCaller:    cfg.File != "",
		Level:           ParseLevel(cfg.Level),
		Formatter:       ParseFormatter(cfg.Formatter),
	})

	log.SetDefault(logger)
	log.Debug("logging initialized", "level", cfg.Level, "file", cfg.File)

	return nil
}

// ParseLevel falls back to info for anything it does not recognise.
func ParseLevel(level string) log.Level {
	parsed, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(level)))

	if err != nil {
		return log.InfoLevel
	}

	return parsed
}

func ParseFormatter(name string) log.Formatter {
	switch strings.ToLower(name) {
	case "json":
		return log.JSONFormatter
	case "logfmt":
		return log.LogfmtFormatter
	}

	return log.TextFormatter
}

// Close closes the log file.
func Close() {
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
}
