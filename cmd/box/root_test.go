// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/neutron-modules/box/internal/config"
	"github.com/neutron-modules/box/internal/issue"
	"github.com/neutron-modules/box/pkg/types"
)

type staticConfig struct {
	cfg *config.Config
	err error
}

func (s staticConfig) Load(context.Context, config.LoadOptions) (*config.Config, error) {
	if s.err != nil {
		return nil, s.err
	}
	cfg := *s.cfg
	return &cfg, nil
}

type testApp struct {
	*App
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

func newTestApp(t *testing.T, provider ConfigProvider) testApp {
	t.Helper()

	home := t.TempDir()
	if provider == nil {
		cfg := config.DefaultConfig()
		cfg.Registry.URL = "file:///nonexistent/nur"
		cfg.Store.GlobalDir = t.TempDir()
		provider = staticConfig{cfg: cfg}
	}

	var stdout, stderr bytes.Buffer
	app := NewApp(Dependencies{
		Config: provider,
		Environment: func() (config.Environment, error) {
			return config.Environment{Home: home}, nil
		},
		Stdout:  &stdout,
		Stderr:  &stderr,
		WorkDir: t.TempDir(),
	})
	return testApp{App: app, stdout: &stdout, stderr: &stderr}
}

func (ta testApp) run(args ...string) int {
	return run(context.Background(), ta.App, args)
}

func TestRun(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		args       []string
		wantCode   int
		wantStdout string
		wantStderr string
	}{
		{
			name:       "version",
			args:       []string{"version"},
			wantCode:   int(types.ExitSuccess),
			wantStdout: "Box Package Manager v" + Version,
		},
		{
			name:       "no arguments prints usage",
			args:       nil,
			wantCode:   int(types.ExitFailure),
			wantStdout: "Neutron Package Manager v" + Version,
		},
		{
			name:       "unknown command",
			args:       []string{"frobnicate"},
			wantCode:   int(types.ExitFailure),
			wantStderr: "Run 'box help' for usage information",
		},
		{
			name:       "invalid output format",
			args:       []string{"list", "-o", "xml"},
			wantCode:   int(types.ExitFailure),
			wantStderr: `invalid output format "xml"`,
		},
		{
			name:       "empty global store",
			args:       []string{"list"},
			wantCode:   int(types.ExitSuccess),
			wantStdout: "No modules installed",
		},
		{
			name:       "empty global store as json",
			args:       []string{"list", "-o", "json"},
			wantCode:   int(types.ExitSuccess),
			wantStdout: "[]",
		},
		{
			name:       "unknown build type",
			args:       []string{"build", "wasm", "mymod"},
			wantCode:   int(types.ExitFailure),
			wantStderr: "Valid types: native, nt",
		},
		{
			name:       "missing module name",
			args:       []string{"uninstall"},
			wantCode:   int(types.ExitFailure),
			wantStderr: "Usage: box uninstall <module>",
		},
		{
			name:       "uninstall of a missing module",
			args:       []string{"uninstall", "base64"},
			wantCode:   int(types.ExitFailure),
			wantStderr: "Module not installed: base64",
		},
		{
			name:       "unreachable registry",
			args:       []string{"search", "base"},
			wantCode:   int(types.ExitFailure),
			wantStderr: "Failed to fetch registry",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ta := newTestApp(t, nil)
			if got := ta.run(tt.args...); got != tt.wantCode {
				t.Fatalf("run(%q) = %d, want %d\nstdout:\n%s\nstderr:\n%s",
					tt.args, got, tt.wantCode, ta.stdout, ta.stderr)
			}
			if tt.wantStdout != "" && !strings.Contains(ta.stdout.String(), tt.wantStdout) {
				t.Errorf("stdout missing %q\ngot:\n%s", tt.wantStdout, ta.stdout)
			}
			if tt.wantStderr != "" && !strings.Contains(ta.stderr.String(), tt.wantStderr) {
				t.Errorf("stderr missing %q\ngot:\n%s", tt.wantStderr, ta.stderr)
			}
		})
	}
}

func TestRun_ConfigLoadFailure(t *testing.T) {
	t.Parallel()

	loadErr := issue.NewErrorContext().
		WithOperation("load configuration").
		WithResource("/etc/box/config.cue").
		WithSuggestion("Check that the file contains valid CUE syntax").
		WithIssue(issue.ConfigLoadFailedId).
		Wrap(errors.New("unexpected token")).
		BuildError()

	ta := newTestApp(t, staticConfig{err: loadErr})
	if got := ta.run("list"); got != int(types.ExitFailure) {
		t.Fatalf("run(list) = %d, want %d", got, types.ExitFailure)
	}

	stderr := ta.stderr.String()
	for _, want := range []string{
		"failed to load configuration: /etc/box/config.cue: unexpected token",
		"Check that the file contains valid CUE syntax",
	} {
		if !strings.Contains(stderr, want) {
			t.Errorf("stderr missing %q\ngot:\n%s", want, stderr)
		}
	}
}

func TestRun_VerboseFromConfig(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.Registry.URL = "file:///nonexistent/nur"
	cfg.Store.GlobalDir = t.TempDir()
	cfg.UI.Verbose = true
	cfg.UI.ColorScheme = config.ColorSchemeDark

	ta := newTestApp(t, staticConfig{cfg: cfg})
	if got := ta.run("list"); got != int(types.ExitSuccess) {
		t.Fatalf("run(list) = %d, want %d", got, types.ExitSuccess)
	}
	if !ta.opts.verbose {
		t.Error("ui.verbose did not enable verbose mode")
	}
	if ta.colorScheme != config.ColorSchemeDark {
		t.Errorf("colorScheme = %q, want %q", ta.colorScheme, config.ColorSchemeDark)
	}
}

func TestRun_UnknownCommandIsNotReportedTwice(t *testing.T) {
	t.Parallel()

	ta := newTestApp(t, nil)
	ta.run("frobnicate")

	if n := strings.Count(ta.stderr.String(), "frobnicate"); n != 1 {
		t.Errorf("stderr mentions the command %d times, want 1\ngot:\n%s", n, ta.stderr)
	}
	if strings.Contains(ta.stderr.String(), "Error:") {
		t.Errorf("stderr has a generic error line\ngot:\n%s", ta.stderr)
	}
}
