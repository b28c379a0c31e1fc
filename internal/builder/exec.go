// SPDX-License-Identifier: MPL-2.0

package builder

import (
	"context"
	"errors"
	"io"
	"os/exec"
)

type (
	// Runner executes a compiler command.
	Runner interface {
		Run(ctx context.Context, cmd Command, stdout, stderr io.Writer) error
	}

	// ExecRunner runs commands as child processes.
	ExecRunner struct{}
)

// Run starts cmd and waits for it. Output is streamed to stdout and stderr.
func (ExecRunner) Run(ctx context.Context, cmd Command, stdout, stderr io.Writer) error {
	if len(cmd.Argv) == 0 {
		return errors.New("empty command")
	}
	c := exec.CommandContext(ctx, cmd.Argv[0], cmd.Argv[1:]...)
	c.Dir = cmd.Dir
	c.Stdout = stdout
	c.Stderr = stderr
	setRawCommandLine(c, cmd.Raw)
	return c.Run()
}
