// SPDX-License-Identifier: MPL-2.0

//go:build windows

package builder

import (
	"os/exec"
	"syscall"
)

// setRawCommandLine hands raw to CreateProcess unchanged.
func setRawCommandLine(c *exec.Cmd, raw string) {
	if raw == "" {
		return
	}
	c.SysProcAttr = &syscall.SysProcAttr{CmdLine: raw}
}
