// SPDX-License-Identifier: MPL-2.0

package builder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/neutron-modules/box/internal/store"
	"github.com/neutron-modules/box/pkg/platform"
	"github.com/neutron-modules/box/pkg/types"
)

var (
	// ErrSourceNotFound is returned when no native source candidate exists.
	ErrSourceNotFound = errors.New("source file not found")

	// ErrHeadersNotFound is reported as an Artifact warning when no runtime
	// root with include/core/neutron.h exists. The build continues without -I.
	ErrHeadersNotFound = errors.New("neutron headers not found")

	// ErrShimNotFound is returned when no shim can be provided to a build.
	ErrShimNotFound = errors.New("native shim not found")

	// ErrToolchainMissing is returned when the compiler cannot be located.
	ErrToolchainMissing = errors.New("compiler toolchain not found")

	// ErrBuildFailed wraps a compiler process failure.
	ErrBuildFailed = errors.New("build failed")

	// ErrNotImplemented is returned for Neutron-source module builds.
	ErrNotImplemented = errors.New("neutron source builds not yet implemented")
)

type (
	// Reporter receives user-facing progress lines.
	Reporter interface {
		Info(format string, args ...any)
		Success(format string, args ...any)
		Warn(format string, args ...any)
		Error(format string, args ...any)
	}

	// Builder compiles native modules for one target platform.
	Builder struct {
		platform    platform.Platform
		env         Environment
		lookPath    func(string) (string, error)
		runner      Runner
		stdout      io.Writer
		stderr      io.Writer
		reporter    Reporter
		logger      *log.Logger
		extraFlags  []string
		compiler    string
		neutronHome string
		workDir     string
	}

	// Option configures a Builder.
	Option func(*Builder)

	// Artifact describes a finished build.
	Artifact struct {
		Library  string
		Metadata store.Metadata
		Command  Command
		// Warnings are non-fatal problems met during the build.
		Warnings []error
	}

	nopReporter struct{}
)

func (nopReporter) Info(string, ...any)    {}
func (nopReporter) Success(string, ...any) {}
func (nopReporter) Warn(string, ...any)    {}
func (nopReporter) Error(string, ...any)   {}

// WithPlatform sets the target platform. Defaults to the host.
func WithPlatform(p platform.Platform) Option {
	return func(b *Builder) { b.platform = p }
}

// WithEnvironment sets the environment snapshot used for discovery.
func WithEnvironment(env Environment) Option {
	return func(b *Builder) { b.env = env }
}

// WithLookPath replaces exec.LookPath.
func WithLookPath(fn func(string) (string, error)) Option {
	return func(b *Builder) { b.lookPath = fn }
}

// WithRunner replaces the process runner.
func WithRunner(r Runner) Option {
	return func(b *Builder) { b.runner = r }
}

// WithStdout sets where compiler stdout is streamed.
func WithStdout(w io.Writer) Option {
	return func(b *Builder) { b.stdout = w }
}

// WithStderr sets where compiler stderr is streamed.
func WithStderr(w io.Writer) Option {
	return func(b *Builder) { b.stderr = w }
}

// WithReporter sets the progress reporter.
func WithReporter(r Reporter) Option {
	return func(b *Builder) { b.reporter = r }
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *log.Logger) Option {
	return func(b *Builder) { b.logger = l }
}

// WithExtraFlags appends flags to every compile before the output flag.
func WithExtraFlags(flags []string) Option {
	return func(b *Builder) { b.extraFlags = flags }
}

// WithCompiler overrides toolchain discovery.
func WithCompiler(compiler string) Option {
	return func(b *Builder) { b.compiler = compiler }
}

// WithNeutronHome adds a runtime root searched right after $NEUTRON_HOME.
func WithNeutronHome(dir string) Option {
	return func(b *Builder) { b.neutronHome = dir }
}

// WithWorkDir sets the directory the relative runtime and shim candidates
// resolve against. Defaults to ".".
func WithWorkDir(dir string) Option {
	return func(b *Builder) { b.workDir = dir }
}

// New creates a Builder for the host platform.
func New(opts ...Option) *Builder {
	b := &Builder{
		platform: platform.Current(),
		lookPath: exec.LookPath,
		runner:   ExecRunner{},
		stdout:   os.Stdout,
		stderr:   os.Stderr,
		reporter: nopReporter{},
		logger:   log.NewWithOptions(os.Stderr, log.Options{Prefix: "builder", Level: log.WarnLevel}),
		workDir:  ".",
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Platform returns the target platform.
func (b *Builder) Platform() platform.Platform { return b.platform }

// Toolchain returns the compiler builds will use.
func (b *Builder) Toolchain() Toolchain {
	return DetectToolchain(b.platform, b.env, b.lookPath, b.compiler)
}

// BuildNative builds the module in sourceDir into <outputDir>/<name>/. Any
// path prefix on name is dropped.
func (b *Builder) BuildNative(ctx context.Context, name, sourceDir, outputDir, version string) (Artifact, error) {
	base := types.BaseModuleName(name)
	if err := base.Validate(); err != nil {
		return Artifact{}, err
	}

	b.reporter.Info("Building native module: %s", base)
	b.reporter.Info("Version: %s", version)
	b.reporter.Info("Platform: %s", b.platform)

	return b.build(ctx, string(base), sourceDir, filepath.Join(outputDir, string(base)), version)
}

// BuildFromSource builds the module in sourceDir straight into moduleDir,
// which is the module's directory inside a store.
func (b *Builder) BuildFromSource(ctx context.Context, name, sourceDir, moduleDir, version string) (Artifact, error) {
	if err := types.ModuleName(name).Validate(); err != nil {
		return Artifact{}, err
	}
	b.reporter.Info("Building %s from source...", name)
	return b.build(ctx, name, sourceDir, moduleDir, version)
}

// BuildNeutron would build a module written in Neutron itself.
func (b *Builder) BuildNeutron(_ context.Context, name, _, _ string) error {
	b.reporter.Error("Neutron source builds not yet implemented")
	return fmt.Errorf("%w: %s", ErrNotImplemented, name)
}

func (b *Builder) build(ctx context.Context, name, sourceDir, moduleDir, version string) (Artifact, error) {
	source, err := FindSource(sourceDir)
	if err != nil {
		b.reporter.Error("Error: Source file not found: %s", filepath.Join(sourceDir, "native.cpp"))
		return Artifact{}, err
	}

	in := compileInputs{
		name:      name,
		sourceDir: sourceDir,
		source:    source,
		output:    filepath.Join(moduleDir, b.platform.LibraryFileName(name)),
	}
	var warnings []error
	if root, ok := b.FindNeutronRoot(); ok {
		b.logger.Debug("neutron runtime found", "root", root)
		in.includes = IncludeDirs(root)
		if lib := LibraryDir(root); isDir(lib) {
			in.libDir = lib
		}
	} else {
		b.reporter.Warn("Neutron headers not found; set NEUTRON_HOME to the runtime root")
		b.logger.Warn("no neutron runtime root", "candidates", b.RuntimeCandidates())
		warnings = append(warnings, fmt.Errorf("%w under %s", ErrHeadersNotFound, strings.Join(b.RuntimeCandidates(), ", ")))
	}

	shim, cleanup, err := b.shim()
	if err != nil {
		return Artifact{}, err
	}
	defer cleanup()
	in.shim = shim

	cmd, err := b.command(b.Toolchain(), in)
	if err != nil {
		b.reporter.Error("%v", err)
		return Artifact{}, err
	}

	if err := os.MkdirAll(moduleDir, 0o755); err != nil {
		return Artifact{}, fmt.Errorf("failed to create directory %s: %w", moduleDir, err)
	}

	b.reporter.Info("Executing: %s", cmd.Display())
	if err := b.runner.Run(ctx, cmd, b.stdout, b.stderr); err != nil {
		b.reporter.Error("Build failed")
		return Artifact{}, fmt.Errorf("%w: %s: %w", ErrBuildFailed, name, err)
	}
	b.reporter.Success("Built: %s", in.output)

	meta := store.NewMetadata(name, version, store.DefaultDescription(name), b.platform)
	if err := store.WriteMetadata(moduleDir, meta); err != nil {
		return Artifact{}, err
	}
	b.reporter.Success("Created: %s", filepath.Join(moduleDir, store.MetadataFileName))

	return Artifact{Library: in.output, Metadata: meta, Command: cmd, Warnings: warnings}, nil
}
