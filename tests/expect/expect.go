// Package expect drives the autocomplete binary inside a pseudo-terminal
// using go-expect, for end-to-end tests of the interactive commands.
//
// The tests only run with AUTOCOMPLETE_E2E=1 and a built binary, found via
// AUTOCOMPLETE_BIN or $PATH.
package expect

import (
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"testing"
	"time"

	expect "github.com/Netflix/go-expect"
)

// Key constants for special keys (ANSI escape sequences)
const (
	KeyUp     = "\x1b[A"
	KeyDown   = "\x1b[B"
	KeyEscape = "\x1b"
	KeyEnter  = "\r"
	KeyTab    = "\t"
	KeyCtrlC  = "\x03"
	KeyCtrlD  = "\x04"
)

// Session is one run of the binary attached to a pseudo-terminal.
type Session struct {
	Console *expect.Console
	Timeout time.Duration
	cmd     *exec.Cmd
	done    chan error
}

// SessionOption configures a Session.
type SessionOption func(*sessionConfig)

type sessionConfig struct {
	timeout    time.Duration
	env        []string
	showOutput bool
}

// WithTimeout sets the default timeout for expect operations.
func WithTimeout(d time.Duration) SessionOption {
	return func(c *sessionConfig) {
		c.timeout = d
	}
}

// WithEnv adds environment variables to the session.
func WithEnv(env ...string) SessionOption {
	return func(c *sessionConfig) {
		c.env = append(c.env, env...)
	}
}

// WithOutput enables output to stdout for debugging.
func WithOutput(show bool) SessionOption {
	return func(c *sessionConfig) {
		c.showOutput = show
	}
}

// Start runs bin with args on a fresh pseudo-terminal, which becomes the
// process's controlling terminal so /dev/tty resolves to it.
func Start(bin string, args []string, opts ...SessionOption) (*Session, error) {
	cfg := &sessionConfig{timeout: 5 * time.Second}
	for _, opt := range opts {
		opt(cfg)
	}

	consoleOpts := []expect.ConsoleOpt{expect.WithDefaultTimeout(cfg.timeout)}
	if cfg.showOutput {
		consoleOpts = append(consoleOpts, expect.WithStdout(os.Stdout))
	}
	console, err := expect.NewConsole(consoleOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create console: %w", err)
	}

	cmd := exec.Command(bin, args...) //nolint:gosec // G204: bin is from test config
	cmd.Stdin = console.Tty()
	cmd.Stdout = console.Tty()
	cmd.Stderr = console.Tty()
	cmd.SysProcAttr = controllingTTY()

	// Later entries win, so cfg.env can override TERM.
	cmd.Env = os.Environ()
	cmd.Env = append(cmd.Env, "TERM=xterm-256color", "COLUMNS=80", "LINES=24")
	cmd.Env = append(cmd.Env, cfg.env...)

	if err := cmd.Start(); err != nil {
		console.Close()
		return nil, fmt.Errorf("failed to start %s: %w", bin, err)
	}

	s := &Session{
		Console: console,
		Timeout: cfg.timeout,
		cmd:     cmd,
		done:    make(chan error, 1),
	}
	go func() { s.done <- cmd.Wait() }()
	return s, nil
}

// Send sends text without a newline.
func (s *Session) Send(text string) error {
	_, err := s.Console.Send(text)
	return err
}

// SendKey sends a special key (use Key* constants).
func (s *Session) SendKey(key string) error {
	_, err := s.Console.Send(key)
	return err
}

// Expect waits for an exact string match in the output.
func (s *Session) Expect(str string) (string, error) {
	return s.Console.ExpectString(str)
}

// ExpectTimeout waits for an exact string match with a specific timeout.
func (s *Session) ExpectTimeout(str string, timeout time.Duration) (string, error) {
	return s.Console.Expect(expect.String(str), expect.WithTimeout(timeout))
}

// ExpectRegex waits for a regex pattern match in the output.
func (s *Session) ExpectRegex(pattern string) (string, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return "", fmt.Errorf("invalid regex: %w", err)
	}
	return s.Console.Expect(expect.Regexp(re))
}

// Wait waits for the process to exit and returns its exit code.
func (s *Session) Wait(timeout time.Duration) (int, error) {
	select {
	case err := <-s.done:
		if err == nil {
			return 0, nil
		}
		if exitErr, ok := err.(*exec.ExitError); ok {
			return exitErr.ExitCode(), nil
		}
		return -1, err
	case <-time.After(timeout):
		return -1, fmt.Errorf("process did not exit within %s", timeout)
	}
}

// Close kills the process if it is still running and closes the console.
func (s *Session) Close() error {
	if s.cmd.Process != nil {
		_ = s.cmd.Process.Kill() // Fails harmlessly once the process has exited.
	}
	return s.Console.Close()
}

// Binary returns the autocomplete binary under test, skipping the test
// unless end-to-end tests are enabled and a binary is available.
func Binary(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping interactive test in short mode")
	}
	if os.Getenv("AUTOCOMPLETE_E2E") != "1" {
		t.Skip("set AUTOCOMPLETE_E2E=1 to run end-to-end tests")
	}
	if bin := os.Getenv("AUTOCOMPLETE_BIN"); bin != "" {
		return bin
	}
	bin, err := exec.LookPath("autocomplete")
	if err != nil {
		t.Skip("autocomplete not available, skipping")
	}
	return bin
}

// IsolatedEnv returns XDG variables pointing into a temp dir.
func IsolatedEnv(t *testing.T) []string {
	t.Helper()
	dir := t.TempDir()
	return []string{
		"HOME=" + dir,
		"XDG_CONFIG_HOME=" + dir + "/config",
		"XDG_DATA_HOME=" + dir + "/data",
	}
}
