// SPDX-License-Identifier: MPL-2.0

package platform

// GOOS values recognized by FromGOOS.
const (
	GOOSWindows = "windows"
	GOOSDarwin  = "darwin"
	GOOSLinux   = "linux"
)
