// SPDX-License-Identifier: MPL-2.0

//go:build !windows

package builder

import "os/exec"

// setRawCommandLine is a no-op; raw command lines only exist on Windows.
func setRawCommandLine(*exec.Cmd, string) {}
