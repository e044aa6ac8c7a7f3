//go:build windows

package cmd

import (
	"errors"
	"os"
)

// getTermWidthIoctl returns 0 on Windows; width detection falls back to $COLUMNS.
func getTermWidthIoctl(*os.File) int {
	return 0
}

// checkTTY always succeeds on Windows; the console is used directly.
func checkTTY() error {
	return nil
}

func openTTY() (*os.File, error) {
	f, err := os.OpenFile("CONIN$", os.O_RDWR, 0)
	if err != nil {
		return nil, errors.Join(errors.New("cannot open console"), err)
	}
	return f, nil
}
