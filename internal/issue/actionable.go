// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"
)

type (
	// ActionableError is a failure box can tell the user how to fix. It names
	// the operation and the module, file or URL involved, carries one-line
	// remedies and may point at a catalog entry with the long explanation.
	//
	//	err := issue.NewErrorContext().
	//		WithOperation("install module").
	//		WithResource("base64@9.9.9").
	//		WithSuggestion("Run 'box info base64' to list published versions").
	//		WithIssue(issue.VersionNotFoundId).
	//		Wrap(cause).
	//		BuildError()
	ActionableError struct {
		// Operation is a verb phrase such as "install module".
		Operation string
		// Resource is the module spec, path or URL involved, if any.
		Resource string
		// Suggestions are one-line remedies printed under the message.
		Suggestions []string
		// Cause is the wrapped domain error.
		Cause error
		// Issue is the catalog entry, 0 when there is none.
		Issue Id
	}

	// ErrorContext accumulates the fields of an ActionableError.
	ErrorContext struct {
		err ActionableError
	}
)

// NewErrorContext starts an ActionableError.
func NewErrorContext() *ErrorContext {
	return &ErrorContext{}
}

// Error returns "failed to <operation>[: <resource>][: <cause>]".
func (e *ActionableError) Error() string {
	parts := []string{"failed to " + e.Operation}
	if e.Resource != "" {
		parts = append(parts, e.Resource)
	}
	if e.Cause != nil {
		parts = append(parts, e.Cause.Error())
	}
	return strings.Join(parts, ": ")
}

func (e *ActionableError) Unwrap() error {
	return e.Cause
}

// Hints renders the suggestions as an indented bullet list, one per line,
// or "" when there are none.
func (e *ActionableError) Hints() string {
	var sb strings.Builder
	for _, s := range e.Suggestions {
		sb.WriteString("  • ")
		sb.WriteString(s)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Format returns the message followed by its hints. verbose adds the
// numbered chain of wrapped causes.
//
//	failed to install module: base64@9.9.9: version not found: base64@9.9.9
//
//	  • Run 'box info base64' to list published versions
func (e *ActionableError) Format(verbose bool) string {
	var sb strings.Builder
	sb.WriteString(e.Error())

	if hints := e.Hints(); hints != "" {
		sb.WriteString("\n\n")
		sb.WriteString(strings.TrimSuffix(hints, "\n"))
	}

	if verbose && e.Cause != nil {
		sb.WriteString("\n\nError chain:")
		depth := 1
		for err := e.Cause; err != nil; err = errors.Unwrap(err) {
			fmt.Fprintf(&sb, "\n  %d. %s", depth, err)
			depth++
		}
	}
	return sb.String()
}

// Catalog returns the linked catalog entry, or nil.
func (e *ActionableError) Catalog() *Issue {
	if e.Issue == 0 {
		return nil
	}
	return Get(e.Issue)
}

func (c *ErrorContext) WithOperation(op string) *ErrorContext {
	c.err.Operation = op
	return c
}

func (c *ErrorContext) WithResource(res string) *ErrorContext {
	c.err.Resource = res
	return c
}

// WithSuggestion appends one remedy. Empty suggestions are dropped.
func (c *ErrorContext) WithSuggestion(sug string) *ErrorContext {
	if sug != "" {
		c.err.Suggestions = append(c.err.Suggestions, sug)
	}
	return c
}

// WithIssue links the catalog entry rendered by Issue.Render.
func (c *ErrorContext) WithIssue(id Id) *ErrorContext {
	c.err.Issue = id
	return c
}

func (c *ErrorContext) Wrap(err error) *ErrorContext {
	c.err.Cause = err
	return c
}

// Build returns a copy of the accumulated error, or nil without an
// operation. The context stays usable.
func (c *ErrorContext) Build() *ActionableError {
	if c.err.Operation == "" {
		return nil
	}
	ae := c.err
	ae.Suggestions = append([]string(nil), c.err.Suggestions...)
	return &ae
}

// BuildError is Build returning an untyped nil when there is no operation.
func (c *ErrorContext) BuildError() error {
	if ae := c.Build(); ae != nil {
		return ae
	}
	return nil
}
