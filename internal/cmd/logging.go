package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/runger/autocomplete/internal/config"
	aclog "github.com/runger/autocomplete/internal/log"
)

// openLogger returns the logger for interactive commands. The TUI owns the
// terminal, so records go to the configured log file. If the file cannot
// be opened, logging is disabled with a warning on stderr.
func openLogger(cfg *config.Config, paths *config.Paths) (*slog.Logger, func()) {
	level, err := aclog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	logger, closer, err := aclog.OpenFile(cfg.LogFile(paths), level, aclog.DebugFromEnv())
	if err != nil {
		fmt.Fprintf(os.Stderr, "%sWarning:%s logging disabled: %v\n", colorYellow, colorReset, err)
		return aclog.Discard(), func() {}
	}
	return logger, func() { closeQuietly(closer) }
}

func closeQuietly(c io.Closer) {
	_ = c.Close()
}
