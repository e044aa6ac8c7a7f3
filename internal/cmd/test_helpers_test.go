package cmd

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// isolate points every XDG directory at a temp dir so tests never read or
// write the user's configuration.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", dir+"/config")
	t.Setenv("XDG_DATA_HOME", dir+"/data")
	t.Setenv("AUTOCOMPLETE_DEBUG", "")
	t.Setenv("AUTOCOMPLETE_LOG_LEVEL", "")
	t.Setenv("AUTOCOMPLETE_CATALOG", "")
	disableColors(t)
	return dir
}

// disableColors blanks the ANSI codes for the duration of the test.
func disableColors(t *testing.T) {
	t.Helper()
	saved := []string{colorYellow, colorCyan, colorDim, colorBold, colorReset}
	colorYellow, colorCyan, colorDim, colorBold, colorReset = "", "", "", "", ""
	t.Cleanup(func() {
		colorYellow, colorCyan, colorDim, colorBold, colorReset = saved[0], saved[1], saved[2], saved[3], saved[4]
	})
}

// resetFlags restores every flag of c and its children to its default, so
// state from one Execute does not leak into the next.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// runRoot executes the root command with args and returns its stdout.
func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	resetFlags(rootCmd)
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		resetFlags(rootCmd)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return out.String(), err
}
