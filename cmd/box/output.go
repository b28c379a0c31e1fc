// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

const (
	outputText outputFormat = "text"
	outputJSON outputFormat = "json"
	outputYAML outputFormat = "yaml"
)

// outputFormat selects how read-only verbs print their results.
type outputFormat string

func parseOutputFormat(s string) (outputFormat, error) {
	switch f := outputFormat(s); f {
	case outputText, outputJSON, outputYAML:
		return f, nil
	case "":
		return outputText, nil
	default:
		return "", fmt.Errorf("invalid output format %q (expected text, json or yaml)", s)
	}
}

// writeStructured encodes v as JSON or YAML. It must not be called for text.
func writeStructured(w io.Writer, format outputFormat, v any) error {
	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported structured output format %q", format)
	}
}

// outputFormat returns the validated --output value.
func (a *App) outputFormat() outputFormat {
	f, err := parseOutputFormat(a.opts.output)
	if err != nil {
		return outputText
	}
	return f
}
