// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"
)

// reporter renders the progress lines of the installer and builder. Info
// and success lines go to stdout, warnings and errors to stderr.
type reporter struct {
	stdout io.Writer
	stderr io.Writer
}

func newReporter(stdout, stderr io.Writer) *reporter {
	return &reporter{stdout: stdout, stderr: stderr}
}

func (r *reporter) Info(format string, args ...any) {
	fmt.Fprintln(r.stdout, fmt.Sprintf(format, args...))
}

func (r *reporter) Success(format string, args ...any) {
	fmt.Fprintln(r.stdout, SuccessStyle.Render("✓")+" "+fmt.Sprintf(format, args...))
}

func (r *reporter) Warn(format string, args ...any) {
	fmt.Fprintln(r.stderr, WarningStyle.Render("!")+" "+fmt.Sprintf(format, args...))
}

func (r *reporter) Error(format string, args ...any) {
	fmt.Fprintln(r.stderr, ErrorStyle.Render("✗")+" "+fmt.Sprintf(format, args...))
}
