// SPDX-License-Identifier: MPL-2.0

package installer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/neutron-modules/box/internal/builder"
	"github.com/neutron-modules/box/internal/store"
	"github.com/neutron-modules/box/internal/vcs"
	"github.com/neutron-modules/box/pkg/platform"
	"github.com/neutron-modules/box/pkg/registry"
	"github.com/neutron-modules/box/pkg/types"
)

const (
	// MethodBinary means the library was downloaded prebuilt.
	MethodBinary Method = iota
	// MethodSource means the library was built from a git checkout.
	MethodSource
)

var (
	// ErrVersionNotFound is returned when the requested version is not
	// listed in the manifest.
	ErrVersionNotFound = errors.New("version not found")

	// ErrNoArtifact is returned when a release has neither a git source nor
	// a prebuilt library for the current platform.
	ErrNoArtifact = errors.New("no binary or git repository available")
)

type (
	// Method is how a module was materialized.
	Method int

	// Registry is the subset of the registry client the installer uses.
	Registry interface {
		IndexURL() string
		FetchIndex(ctx context.Context) error
		Index() registry.ModuleIndex
		FetchModuleMetadata(ctx context.Context, name string) (registry.ModuleMetadata, error)
		Download(ctx context.Context, u string) ([]byte, error)
	}

	// Builder compiles a checked-out repository into a module directory.
	Builder interface {
		BuildFromSource(ctx context.Context, name, sourceDir, moduleDir, version string) (builder.Artifact, error)
	}

	// Reporter receives user-facing progress lines.
	Reporter interface {
		Info(format string, args ...any)
		Success(format string, args ...any)
		Warn(format string, args ...any)
		Error(format string, args ...any)
	}

	// Installer installs, updates and removes modules in a store.
	Installer struct {
		registry Registry
		builder  Builder
		store    *store.Store
		cloner   vcs.Cloner
		reporter Reporter
		logger   *log.Logger
		platform platform.Platform
		workDir  string
	}

	// Option configures an Installer.
	Option func(*Installer)

	// Resolution is a module request pinned to one manifest release.
	Resolution struct {
		Name     string
		Version  string
		Metadata registry.ModuleMetadata
		Release  registry.VersionMetadata
	}

	// Result describes a finished install.
	Result struct {
		Name    string
		Version string
		Scope   store.Scope
		Dir     string
		Library string
		Method  Method
		// ManifestUpdated is set when a .quark entry was added or changed.
		ManifestUpdated bool
	}

	nopReporter struct{}
)

func (nopReporter) Info(string, ...any)    {}
func (nopReporter) Success(string, ...any) {}
func (nopReporter) Warn(string, ...any)    {}
func (nopReporter) Error(string, ...any)   {}

// String returns "binary" or "source".
func (m Method) String() string {
	if m == MethodSource {
		return "source"
	}
	return "binary"
}

// WithCloner replaces the go-git cloner.
func WithCloner(c vcs.Cloner) Option {
	return func(i *Installer) { i.cloner = c }
}

// WithReporter sets the progress reporter.
func WithReporter(r Reporter) Option {
	return func(i *Installer) { i.reporter = r }
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *log.Logger) Option {
	return func(i *Installer) { i.logger = l }
}

// WithPlatform selects which per-platform entry is downloaded.
func WithPlatform(p platform.Platform) Option {
	return func(i *Installer) { i.platform = p }
}

// WithWorkDir sets the project directory holding .quark. Defaults to ".".
func WithWorkDir(dir string) Option {
	return func(i *Installer) { i.workDir = dir }
}

// New creates an Installer.
func New(reg Registry, b Builder, s *store.Store, opts ...Option) *Installer {
	i := &Installer{
		registry: reg,
		builder:  b,
		store:    s,
		reporter: nopReporter{},
		logger:   log.NewWithOptions(os.Stderr, log.Options{Prefix: "installer", Level: log.WarnLevel}),
		platform: platform.Current(),
		workDir:  ".",
	}
	for _, opt := range opts {
		opt(i)
	}
	if i.cloner == nil {
		i.cloner = vcs.NewGitCloner()
	}
	return i
}

// InstallDir returns the root of the store for scope.
func (i *Installer) InstallDir(scope store.Scope) string {
	return i.store.Dir(scope)
}

// IsInstalled reports whether name has a directory in the store.
func (i *Installer) IsInstalled(name string, scope store.Scope) bool {
	return i.store.IsInstalled(scope, name)
}

// ListInstalled returns the installed module names, sorted.
func (i *Installer) ListInstalled(scope store.Scope) ([]string, error) {
	return i.store.List(scope)
}

// Resolve pins spec to a release without touching the filesystem. An empty
// or "latest" version selects the manifest's latest field.
func (i *Installer) Resolve(ctx context.Context, spec types.ModuleSpec) (Resolution, error) {
	name := string(spec.Name)

	if len(i.registry.Index()) == 0 {
		i.reporter.Info("Fetching NUR index from %s...", i.registry.IndexURL())
		if err := i.registry.FetchIndex(ctx); err != nil {
			i.reporter.Error("Failed to fetch NUR index")
			return Resolution{}, err
		}
		i.reporter.Info("Loaded %d modules from NUR", len(i.registry.Index()))
	}

	meta, err := i.registry.FetchModuleMetadata(ctx, name)
	if err != nil {
		if errors.Is(err, registry.ErrModuleNotFound) {
			i.reporter.Error("Module not found: %s", name)
		} else {
			i.reporter.Error("Failed to fetch module metadata for %s", name)
		}
		return Resolution{}, err
	}

	version := string(spec.Version)
	if spec.Version.IsLatest() {
		version = meta.Latest
	}
	release, ok := meta.Version(version)
	if !ok {
		i.reporter.Error("Version not found: %s", version)
		return Resolution{}, fmt.Errorf("%w: %s@%s", ErrVersionNotFound, name, version)
	}

	return Resolution{Name: name, Version: version, Metadata: meta, Release: release}, nil
}

// Description is the release description, falling back to the module's and
// then to the template used for local builds.
func (r Resolution) Description() string {
	switch {
	case r.Release.Description != "":
		return r.Release.Description
	case r.Metadata.Description != "":
		return r.Metadata.Description
	default:
		return store.DefaultDescription(r.Name)
	}
}

// Install resolves spec and installs it into the store for scope.
func (i *Installer) Install(ctx context.Context, spec types.ModuleSpec, scope store.Scope) (Result, error) {
	i.reporter.Info("Installing %s...", spec)

	res, err := i.Resolve(ctx, spec)
	if err != nil {
		return Result{}, err
	}
	return i.installResolved(ctx, res, scope)
}

// Update reinstalls name at the manifest's latest version. The old copy is
// moved aside once the new release resolved and is put back if the
// replacement fails to download or build.
func (i *Installer) Update(ctx context.Context, name string, scope store.Scope) (Result, error) {
	i.reporter.Info("Updating %s...", name)

	res, err := i.Resolve(ctx, types.ModuleSpec{Name: types.ModuleName(name)})
	if err != nil {
		return Result{}, err
	}
	if !i.IsInstalled(name, scope) {
		return i.installResolved(ctx, res, scope)
	}

	stash, err := i.stash(name, scope)
	if err != nil {
		return Result{}, err
	}
	result, err := i.installResolved(ctx, res, scope)
	if err != nil {
		if rerr := i.restore(name, scope, stash); rerr != nil {
			return Result{}, errors.Join(err, rerr)
		}
		i.reporter.Warn("Restored the previous installation of %s", name)
		return Result{}, err
	}
	if rmErr := os.RemoveAll(stash); rmErr != nil {
		i.logger.Warn("failed to remove previous installation", "dir", stash, "err", rmErr)
	}
	return result, nil
}

func (i *Installer) stash(name string, scope store.Scope) (string, error) {
	i.reporter.Info("Uninstalling %s...", name)
	lock, err := i.store.Lock(scope)
	if err != nil {
		return "", i.fail(err)
	}
	defer lock.Release()

	stash, err := i.store.Stash(scope, name)
	if err != nil {
		i.reporter.Error("Failed to uninstall %s: %v", name, err)
		return "", err
	}
	i.reporter.Success("Successfully uninstalled %s", name)
	return stash, nil
}

func (i *Installer) restore(name string, scope store.Scope, stash string) error {
	lock, err := i.store.Lock(scope)
	if err != nil {
		return i.fail(err)
	}
	defer lock.Release()

	if err := i.store.Restore(scope, name, stash); err != nil {
		return i.fail(err)
	}
	return nil
}

// Uninstall removes <store>/<name> recursively.
func (i *Installer) Uninstall(_ context.Context, name string, scope store.Scope) error {
	if !i.IsInstalled(name, scope) {
		i.reporter.Error("Module not installed: %s", name)
		return fmt.Errorf("%w: %s", store.ErrNotInstalled, name)
	}

	i.reporter.Info("Uninstalling %s...", name)
	lock, err := i.store.Lock(scope)
	if err != nil {
		return i.fail(err)
	}
	defer lock.Release()

	if err := i.store.Remove(scope, name); err != nil {
		i.reporter.Error("Failed to uninstall %s: %v", name, err)
		return err
	}
	i.reporter.Success("Successfully uninstalled %s", name)
	return nil
}

func (i *Installer) installResolved(ctx context.Context, res Resolution, scope store.Scope) (Result, error) {
	var (
		result = Result{Name: res.Name, Version: res.Version, Scope: scope}
		entry  string
		data   []byte
	)

	switch {
	case res.Release.Git.HasSource():
		result.Method = MethodSource
	default:
		entry = res.Release.Entry(i.platform)
		if entry == "" {
			i.reporter.Error("No binary or git repository available for %s", i.platform)
			return Result{}, fmt.Errorf("%w for %s on %s", ErrNoArtifact, res.Name, i.platform)
		}
		i.reporter.Info("Downloading from %s...", entry)
		var err error
		if data, err = i.registry.Download(ctx, entry); err != nil {
			i.reporter.Error("Failed to download module")
			return Result{}, err
		}
	}

	lock, err := i.store.Lock(scope)
	if err != nil {
		return Result{}, i.fail(err)
	}
	defer lock.Release()

	moduleDir, err := i.store.Ensure(scope, res.Name)
	if err != nil {
		return Result{}, i.fail(err)
	}
	result.Dir = moduleDir
	result.Library = filepath.Join(moduleDir, i.platform.LibraryFileName(res.Name))

	if result.Method == MethodSource {
		if err := i.buildFromGit(ctx, res, moduleDir); err != nil {
			return Result{}, err
		}
	} else if err := writeLibrary(result.Library, data); err != nil {
		return Result{}, i.fail(err)
	}

	meta := store.NewMetadata(res.Name, res.Version, res.Description(), i.platform)
	if err := store.WriteMetadata(moduleDir, meta); err != nil {
		return Result{}, i.fail(err)
	}
	i.reporter.Success("Installed %s@%s to %s", res.Name, res.Version, moduleDir)

	if scope == store.Local {
		updated, err := i.recordDependency(res.Name, res.Version)
		if err != nil {
			return result, err
		}
		result.ManifestUpdated = updated
	}
	return result, nil
}

// buildFromGit clones the release's repository into <moduleDir>/.tmpN/repo,
// builds it into moduleDir and removes the scratch directory whatever the
// outcome.
func (i *Installer) buildFromGit(ctx context.Context, res Resolution, moduleDir string) error {
	tmp, err := store.NewTempDir(moduleDir)
	if err != nil {
		i.reporter.Error("Failed to create unique temp directory")
		return err
	}
	defer func() {
		if rmErr := os.RemoveAll(tmp); rmErr != nil {
			i.logger.Warn("failed to remove build workspace", "dir", tmp, "err", rmErr)
		}
	}()

	repoDir := filepath.Join(tmp, "repo")
	git := res.Release.Git

	i.reporter.Info("Cloning from %s...", git.URL)
	if err := i.cloner.Clone(ctx, git.URL, repoDir); err != nil {
		i.reporter.Error("Failed to clone repository")
		return err
	}
	if git.Ref != "" {
		if err := i.cloner.Checkout(ctx, repoDir, git.Ref); err != nil {
			i.reporter.Error("Failed to checkout specific version: %s", git.Ref)
			return err
		}
	}

	if _, err := i.builder.BuildFromSource(ctx, res.Name, repoDir, moduleDir, res.Version); err != nil {
		i.reporter.Error("Failed to build module from source")
		return err
	}
	return nil
}

// fail reports an error no earlier step announced and returns it.
func (i *Installer) fail(err error) error {
	i.reporter.Error("%v", err)
	return err
}

// writeLibrary stores a downloaded library with mode 0755.
func writeLibrary(path string, data []byte) error {
	if err := store.AtomicWriteFile(path, data, 0o755); err != nil {
		return fmt.Errorf("failed to create file %s: %w", path, err)
	}
	return nil
}
