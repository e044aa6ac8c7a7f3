//go:build windows

package expect

import "syscall"

func controllingTTY() *syscall.SysProcAttr {
	return nil
}
