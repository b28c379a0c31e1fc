// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/neutron-modules/box/internal/builder"
	"github.com/neutron-modules/box/internal/installer"
	"github.com/neutron-modules/box/internal/issue"
	"github.com/neutron-modules/box/internal/store"
	"github.com/neutron-modules/box/internal/vcs"
	"github.com/neutron-modules/box/pkg/registry"
)

// usageError reports a missing positional argument together with the usage
// line of the verb.
type usageError struct {
	msg   string
	usage string
}

func (e *usageError) Error() string {
	return e.msg + "\nUsage: " + e.usage
}

// requireArgs accepts between minArgs and maxArgs positional arguments and
// reports too few with msg and usage.
func requireArgs(minArgs, maxArgs int, msg, usage string) cobra.PositionalArgs {
	return cobra.MatchAll(
		func(_ *cobra.Command, args []string) error {
			if len(args) < minArgs {
				return &usageError{msg: msg, usage: usage}
			}
			return nil
		},
		cobra.MaximumNArgs(maxArgs),
	)
}

// issueFor maps a failure to its catalog entry. explicit is set when the
// entry was attached to an ActionableError rather than inferred.
func issueFor(err error) (id issue.Id, explicit bool) {
	var ae *issue.ActionableError
	if errors.As(err, &ae) && ae.Catalog() != nil {
		return ae.Issue, true
	}

	switch {
	case errors.Is(err, builder.ErrHeadersNotFound):
		return issue.HeadersNotFoundId, false
	case errors.Is(err, registry.ErrModuleNotFound):
		return issue.ModuleNotFoundId, false
	case errors.Is(err, installer.ErrVersionNotFound):
		return issue.VersionNotFoundId, false
	case errors.Is(err, installer.ErrNoArtifact):
		return issue.NoArtifactId, false
	case errors.Is(err, registry.ErrFetchFailed), errors.Is(err, registry.ErrEmptyBody):
		return issue.RegistryUnreachableId, false
	case errors.Is(err, vcs.ErrCloneFailed), errors.Is(err, vcs.ErrRevisionNotFound):
		return issue.CloneFailedId, false
	case errors.Is(err, builder.ErrSourceNotFound):
		return issue.SourceNotFoundId, false
	case errors.Is(err, builder.ErrToolchainMissing):
		return issue.CompilerNotFoundId, false
	case errors.Is(err, builder.ErrBuildFailed):
		return issue.BuildFailedId, false
	case errors.Is(err, store.ErrNotInstalled):
		return issue.NotInstalledId, false
	default:
		return 0, false
	}
}

// guide wraps a classified domain failure in an ActionableError naming the
// operation, the resource and the remedies for its catalog entry. Nil,
// unclassified and already actionable errors are returned unchanged.
func guide(err error, operation, resource string) error {
	var ae *issue.ActionableError
	if err == nil || errors.As(err, &ae) {
		return err
	}
	id, _ := issueFor(err)
	if id == 0 {
		return err
	}

	ctx := issue.NewErrorContext().
		WithOperation(operation).
		WithResource(resource).
		WithIssue(id).
		Wrap(err)
	for _, s := range remedies(id, moduleOf(resource)) {
		ctx.WithSuggestion(s)
	}
	return ctx.BuildError()
}

// remedies lists the one-line fixes shown under a failure of kind id.
func remedies(id issue.Id, name string) []string {
	switch id {
	case issue.ModuleNotFoundId:
		return []string{
			fmt.Sprintf("Run 'box search %s' to look for similar names", name),
			"Check registry.url in config.cue or pass --registry",
		}
	case issue.VersionNotFoundId:
		return []string{
			fmt.Sprintf("Run 'box info %s' to list the published versions", name),
			"Omit the version to install the latest release",
		}
	case issue.NoArtifactId:
		return []string{
			fmt.Sprintf("Run 'box info %s' to see the platforms each version supports", name),
			fmt.Sprintf("Build it locally with 'box build native %s'", name),
		}
	case issue.RegistryUnreachableId:
		return []string{
			"Check the network connection and registry.url (BOX_REGISTRY_URL)",
			"Raise registry.timeout for slow mirrors",
		}
	case issue.CloneFailedId:
		return []string{
			"Check the repository URL and the version tag in the module manifest",
			"Set GITHUB_TOKEN, GITLAB_TOKEN or GIT_TOKEN, or load an SSH key, for private repositories",
		}
	case issue.SourceNotFoundId:
		return []string{
			fmt.Sprintf("Create %s/native.cpp or put the sources under %s/src", name, name),
		}
	case issue.CompilerNotFoundId:
		return []string{
			"Linux and macOS: install g++ or clang++ (build-essential, Xcode Command Line Tools)",
			"Windows: install Visual Studio Build Tools with the \"Desktop development with C++\" workload " +
				"(https://visualstudio.microsoft.com/visual-cpp-build-tools/) or use an MSYS2 MINGW shell",
			"Point builder.compiler (BOX_BUILDER_COMPILER) at a compiler on PATH",
		}
	case issue.BuildFailedId:
		return []string{
			"Fix the compiler errors printed above",
			"Rerun with --verbose for the full error chain",
		}
	case issue.NotInstalledId:
		return []string{
			"Run 'box list' or 'box list --local' to see what is installed",
		}
	default:
		return nil
	}
}

// moduleOf returns the module name of a "name@version" resource.
func moduleOf(resource string) string {
	name, _, _ := strings.Cut(resource, "@")
	return name
}
