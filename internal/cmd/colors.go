package cmd

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
)

// ANSI color codes for terminal output.
// These are initialized in init() and may be disabled on certain platforms.
var (
	colorYellow = "\033[0;33m"
	colorCyan   = "\033[0;36m"
	colorDim    = "\033[2m"
	colorBold   = "\033[1m"
	colorReset  = "\033[0m"
)

// minPickWidth is the narrowest terminal the picker will draw in.
const minPickWidth = 20

func init() {
	if shouldDisableColors() {
		colorYellow = ""
		colorCyan = ""
		colorDim = ""
		colorBold = ""
		colorReset = ""
	}
}

func shouldDisableColors() bool {
	// https://no-color.org/
	if os.Getenv("NO_COLOR") != "" {
		return true
	}
	if os.Getenv("TERM") == "dumb" {
		return true
	}
	if runtime.GOOS == "windows" {
		if os.Getenv("WT_SESSION") != "" || os.Getenv("TERM_PROGRAM") != "" {
			return false
		}
		return os.Getenv("ANSICON") == "" && os.Getenv("ConEmuANSI") != "ON"
	}
	return false
}

// checkTERM verifies that the TERM environment variable is not "dumb".
func checkTERM() error {
	if os.Getenv("TERM") == "dumb" {
		return fmt.Errorf("TERM=dumb is not supported")
	}
	return nil
}

// termWidth returns the width of f, falling back to $COLUMNS.
func termWidth(f *os.File) int {
	if w := getTermWidthIoctl(f); w > 0 {
		return w
	}
	if w, err := strconv.Atoi(os.Getenv("COLUMNS")); err == nil && w > 0 {
		return w
	}
	return 0
}

// checkTermWidth verifies that f is at least minPickWidth columns wide.
// An unknown width passes.
func checkTermWidth(f *os.File) error {
	w := termWidth(f)
	if w > 0 && w < minPickWidth {
		return fmt.Errorf("terminal too narrow (%d columns, need at least %d)", w, minPickWidth)
	}
	return nil
}
