// SPDX-License-Identifier: MPL-2.0

// Box is the package manager for Neutron native modules.
package main

import cmd "github.com/neutron-modules/box/cmd/box"

func main() {
	cmd.Execute()
}
