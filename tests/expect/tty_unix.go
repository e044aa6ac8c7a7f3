//go:build !windows

package expect

import "syscall"

// controllingTTY makes the child's stdin its controlling terminal.
func controllingTTY() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setsid: true, Setctty: true, Ctty: 0}
}
