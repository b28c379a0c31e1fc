// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type Id int

const (
	ModuleNotFoundId Id = iota + 1
	VersionNotFoundId
	NoArtifactId
	RegistryUnreachableId
	SourceNotFoundId
	HeadersNotFoundId
	CompilerNotFoundId
	CloneFailedId
	BuildFailedId
	NotInstalledId
	ConfigLoadFailedId
)

const docsBase = "https://github.com/neutron-modules/box/blob/main/docs/"

type MarkdownMsg string

type HttpLink string

type Issue struct {
	id       Id          // lookup key
	mdMsg    MarkdownMsg // rendered with glamour
	docLinks []HttpLink  // at least one per issue
	extLinks []HttpLink
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

// Render returns the issue as terminal markdown using a glamour style name
// ("dark", "light", "notty", ...) or a path to a style file.
func (i *Issue) Render(style string) (string, error) {
	var sb strings.Builder
	sb.WriteString(string(i.mdMsg))
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		sb.WriteString("\n\n## See also\n")
		for _, links := range [][]HttpLink{i.docLinks, i.extLinks} {
			for _, link := range links {
				sb.WriteString("- <" + string(link) + ">\n")
			}
		}
	}
	return render(sb.String(), style)
}

var (
	render = glamour.Render

	moduleNotFoundIssue = &Issue{
		id: ModuleNotFoundId,
		mdMsg: `
# Module not found!

The module is not listed in the NUR index.

## Things you can try:
- Check the spelling, names are case sensitive
- Search the index for similar names:
~~~
$ box search <part-of-name>
~~~
- If you use a private registry, check that it is configured:
~~~
$ box config show
~~~`,
		docLinks: []HttpLink{docsBase + "registry.md"},
	}

	versionNotFoundIssue = &Issue{
		id: VersionNotFoundId,
		mdMsg: `
# Version not found!

The module exists but does not publish the requested version.

## Things you can try:
- List the published versions:
~~~
$ box info <module>
~~~
- Install the latest version by leaving the version out:
~~~
$ box install <module>
~~~`,
		docLinks: []HttpLink{docsBase + "registry.md"},
	}

	noArtifactIssue = &Issue{
		id: NoArtifactId,
		mdMsg: `
# Nothing to install for this platform!

The release has no git repository and no prebuilt library for the
current operating system.

## Things you can try:
- Check ` + "`box info <module>`" + ` for another version that supports your platform
- Build the module yourself if you have its sources:
~~~
$ box build native <module>
~~~`,
		docLinks: []HttpLink{docsBase + "registry.md"},
	}

	registryUnreachableIssue = &Issue{
		id: RegistryUnreachableId,
		mdMsg: `
# Could not reach the registry!

Fetching the NUR index failed.

## Things you can try:
- Check your network connection and proxy settings
- Point Box at a mirror or a local copy of the registry:
~~~
$ box --registry file:///path/to/nur install <module>
~~~
- Or persist the setting in config.cue:
~~~cue
registry: {
  url: "https://example.com/nur"
}
~~~`,
		docLinks: []HttpLink{docsBase + "configuration.md"},
	}

	sourceNotFoundIssue = &Issue{
		id: SourceNotFoundId,
		mdMsg: `
# Native source not found!

A native module needs a ` + "`native.cpp`" + ` file at the root of its directory
(or under ` + "`src/`" + `).

## Things you can try:
- Run the build from the directory that contains the module folder
- Check that the entry file is named ` + "`native.cpp`",
		docLinks: []HttpLink{docsBase + "building.md"},
	}

	headersNotFoundIssue = &Issue{
		id: HeadersNotFoundId,
		mdMsg: `
# Neutron headers not found!

Box could not find a Neutron runtime checkout with ` + "`include/core/neutron.h`" + `.

## Things you can try:
- Point ` + "`NEUTRON_HOME`" + ` at your runtime checkout:
~~~
$ export NEUTRON_HOME=$HOME/src/neutron
~~~
- Or set it in config.cue:
~~~cue
builder: {
  neutron_home: "/opt/neutron"
}
~~~`,
		docLinks: []HttpLink{docsBase + "building.md"},
	}

	compilerNotFoundIssue = &Issue{
		id: CompilerNotFoundId,
		mdMsg: `
# C++ compiler not found!

Building native modules needs a C++17 compiler.

## Things you can try:
- Linux: install g++ from your distribution
- macOS: install the Xcode command line tools:
~~~
$ xcode-select --install
~~~
- Windows: install Visual Studio Build Tools with the "Desktop development
  with C++" workload, or build from an MSYS2 MINGW shell with g++
- Use a specific compiler:
~~~cue
builder: {
  compiler: "clang++"
}
~~~`,
		docLinks: []HttpLink{docsBase + "building.md"},
		extLinks: []HttpLink{"https://visualstudio.microsoft.com/visual-cpp-build-tools/"},
	}

	cloneFailedIssue = &Issue{
		id: CloneFailedId,
		mdMsg: `
# Failed to clone the module repository!

## Things you can try:
- Check that the repository URL in the manifest is reachable
- For private repositories export a token (` + "`GITHUB_TOKEN`, `GITLAB_TOKEN` or `GIT_TOKEN`" + `)
  or load an SSH key in ` + "`~/.ssh`",
		docLinks: []HttpLink{docsBase + "registry.md"},
	}

	buildFailedIssue = &Issue{
		id: BuildFailedId,
		mdMsg: `
# Build failed!

The compiler exited with an error. Its output is printed above.

## Things you can try:
- Re-run with ` + "`--verbose`" + ` to see the full command line
- Check that the Neutron headers match the module's expected runtime version`,
		docLinks: []HttpLink{docsBase + "building.md"},
	}

	notInstalledIssue = &Issue{
		id: NotInstalledId,
		mdMsg: `
# Module not installed!

## Things you can try:
- List what is installed:
~~~
$ box list
~~~
- Modules installed into a project live in ` + "`./.box/modules`" + `; use ` + "`--local`" + ` for them`,
		docLinks: []HttpLink{docsBase + "usage.md"},
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

## Configuration file locations:
- Linux: ~/.config/box/config.cue
- macOS: ~/Library/Application Support/box/config.cue
- Windows: %APPDATA%\box\config.cue

## Things you can try:
- Create a default configuration:
~~~
$ box config init
~~~
- Remove the config file to use defaults

## Example configuration:
~~~cue
registry: {
  url: "https://raw.githubusercontent.com/neutron-modules/nur/refs/heads/main"
}
ui: {
  color_scheme: "auto"
  verbose: false
}
~~~`,
		docLinks: []HttpLink{docsBase + "configuration.md"},
	}

	issues = map[Id]*Issue{
		moduleNotFoundIssue.Id():      moduleNotFoundIssue,
		versionNotFoundIssue.Id():     versionNotFoundIssue,
		noArtifactIssue.Id():          noArtifactIssue,
		registryUnreachableIssue.Id(): registryUnreachableIssue,
		sourceNotFoundIssue.Id():      sourceNotFoundIssue,
		headersNotFoundIssue.Id():     headersNotFoundIssue,
		compilerNotFoundIssue.Id():    compilerNotFoundIssue,
		cloneFailedIssue.Id():         cloneFailedIssue,
		buildFailedIssue.Id():         buildFailedIssue,
		notInstalledIssue.Id():        notInstalledIssue,
		configLoadFailedIssue.Id():    configLoadFailedIssue,
	}
)

// Values returns every issue ordered by Id.
func Values() []*Issue {
	values := maps.Values(issues)
	slices.SortFunc(values, func(a, b *Issue) int { return int(a.id - b.id) })
	return values
}

func Get(id Id) *Issue {
	return issues[id]
}
