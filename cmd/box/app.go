// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"cmp"
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/neutron-modules/box/internal/builder"
	"github.com/neutron-modules/box/internal/config"
	"github.com/neutron-modules/box/internal/installer"
	"github.com/neutron-modules/box/internal/issue"
	"github.com/neutron-modules/box/internal/store"
	"github.com/neutron-modules/box/pkg/registry"
)

type (
	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, error)
	}

	// EnvironmentFunc snapshots the process environment.
	EnvironmentFunc func() (config.Environment, error)

	// App wires CLI services and shared dependencies. It is the composition root
	// for the CLI layer: every Cobra handler receives an App and obtains its
	// registry, store, builder and installer through newSession.
	App struct {
		Config      ConfigProvider
		Environment EnvironmentFunc
		stdout      io.Writer
		stderr      io.Writer
		workDir     string

		opts        globalOptions
		colorScheme config.ColorScheme
	}

	// Dependencies defines the injection points for building an App. Nil fields
	// are replaced with production defaults by NewApp.
	Dependencies struct {
		Config      ConfigProvider
		Environment EnvironmentFunc
		Stdout      io.Writer
		Stderr      io.Writer
		// WorkDir is the project directory holding .quark and the local store.
		WorkDir string
	}

	// globalOptions holds the persistent root flags.
	globalOptions struct {
		verbose     bool
		configPath  string
		registryURL string
		output      string
	}

	// session is the set of services one command invocation works with.
	session struct {
		cfg       *config.Config
		env       config.Environment
		registry  *registry.Client
		store     *store.Store
		builder   *builder.Builder
		installer *installer.Installer
		reporter  *reporter
	}
)

// NewApp creates an App, filling unset dependencies with production defaults.
func NewApp(deps Dependencies) *App {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.Environment == nil {
		deps.Environment = config.LoadEnvironment
	}

	return &App{
		Config:      deps.Config,
		Environment: deps.Environment,
		stdout:      deps.Stdout,
		stderr:      deps.Stderr,
		workDir:     cmp.Or(deps.WorkDir, "."),
		colorScheme: config.ColorSchemeAuto,
	}
}

// newSession loads configuration and the environment and builds the services
// of one invocation. The --registry flag wins over registry.url.
func (a *App) newSession(ctx context.Context) (*session, error) {
	cfg, err := a.loadConfig(ctx)
	if err != nil {
		return nil, err
	}

	env, err := a.Environment()
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("read environment").
			Wrap(err).
			BuildError()
	}

	timeout, err := cfg.Registry.Timeout.Duration()
	if err != nil {
		return nil, err
	}
	extraFlags, err := builder.ParseExtraFlags(cfg.Builder.ExtraFlags)
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("parse builder.extra_flags").
			WithResource(cfg.Builder.ExtraFlags).
			WithSuggestion("Quote flags the way a POSIX shell would").
			WithIssue(issue.ConfigLoadFailedId).
			Wrap(err).
			BuildError()
	}

	logger := a.logger()
	rep := newReporter(a.stdout, a.stderr)

	client := registry.NewClient(
		registry.WithBaseURL(cmp.Or(a.opts.registryURL, cfg.Registry.URL)),
		registry.WithUserAgent(cfg.Registry.UserAgent),
		registry.WithTimeout(timeout),
		registry.WithLogger(logger.WithPrefix("registry")),
	)

	localDir := cfg.Store.LocalDir
	if localDir != "" && !filepath.IsAbs(localDir) {
		localDir = filepath.Join(a.workDir, localDir)
	}
	st := store.New(env.HomeDir(), cfg.Store.GlobalDir, localDir)

	b := builder.New(
		builder.WithEnvironment(builder.Environment{
			NeutronHome: env.NeutronHome,
			MSYSTEM:     env.MSYSTEM,
			Home:        env.HomeDir(),
		}),
		builder.WithCompiler(cfg.Builder.Compiler),
		builder.WithExtraFlags(extraFlags),
		builder.WithNeutronHome(cfg.Builder.NeutronHome),
		builder.WithStdout(a.stdout),
		builder.WithStderr(a.stderr),
		builder.WithReporter(rep),
		builder.WithLogger(logger.WithPrefix("builder")),
		builder.WithWorkDir(a.workDir),
	)

	inst := installer.New(client, b, st,
		installer.WithReporter(rep),
		installer.WithLogger(logger.WithPrefix("installer")),
		installer.WithWorkDir(a.workDir),
	)

	return &session{
		cfg:       cfg,
		env:       env,
		registry:  client,
		store:     st,
		builder:   b,
		installer: inst,
		reporter:  rep,
	}, nil
}

// loadConfig loads configuration and applies its UI settings to the App.
func (a *App) loadConfig(ctx context.Context) (*config.Config, error) {
	cfg, err := a.Config.Load(ctx, config.LoadOptions{ConfigFilePath: a.opts.configPath})
	if err != nil {
		return nil, err
	}
	if cfg.UI.Verbose {
		a.opts.verbose = true
	}
	if cfg.UI.ColorScheme != "" {
		a.colorScheme = cfg.UI.ColorScheme
	}
	return cfg, nil
}

func (a *App) logger() *log.Logger {
	level := log.WarnLevel
	if a.opts.verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(a.stderr, log.Options{Level: level})
}
