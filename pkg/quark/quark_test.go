// SPDX-License-Identifier: MPL-2.0

package quark

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/neutron-modules/box/pkg/types"
)

const demoManifest = `[package]
name=demo

[dependencies]
foo=1.2.3

[other]
k=v
`

func TestParse(t *testing.T) {
	t.Parallel()

	src := `# project file
[package]
name = "demo"

[dependencies]
  math = "1.0.0"
json=*
# commented=1.0.0
base64 =
"quoted" = 2.0.0
broken line
=orphan

[build]
math=9.9.9
`
	m, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	if want := []string{"package", "dependencies", "build"}; !slices.Equal(m.Sections, want) {
		t.Errorf("Sections = %v, want %v", m.Sections, want)
	}

	want := []Dependency{
		{Name: "math", Version: "1.0.0", Line: 6},
		{Name: "json", Version: "*", Line: 7},
		{Name: "base64", Version: "", Line: 9},
		{Name: "quoted", Version: "2.0.0", Line: 10},
	}
	if !slices.Equal(m.Dependencies, want) {
		t.Errorf("Dependencies = %+v, want %+v", m.Dependencies, want)
	}
	if !m.HasSection("build") || m.HasSection("missing") {
		t.Error("HasSection() mismatch")
	}
	if d, ok := m.Dependency("json"); !ok || d.Line != 7 {
		t.Errorf("Dependency(json) = %+v, %v", d, ok)
	}
}

func TestDependencyWanted(t *testing.T) {
	t.Parallel()

	tests := []struct {
		version string
		want    types.Version
	}{
		{"", types.LatestVersion},
		{"*", types.LatestVersion},
		{"latest", types.LatestVersion},
		{"1.0.0", "1.0.0"},
	}
	for _, tt := range tests {
		d := Dependency{Name: "math", Version: tt.version}
		if got := d.Wanted(); got != tt.want {
			t.Errorf("Wanted(%q) = %q, want %q", tt.version, got, tt.want)
		}
	}

	spec := Dependency{Name: "math", Version: "1.0.0"}.Spec()
	if spec.Name != "math" || spec.Version != "1.0.0" {
		t.Errorf("Spec() = %+v", spec)
	}
}

func TestSetDependencyInsertsIntoExistingSection(t *testing.T) {
	t.Parallel()

	got, change := SetDependencyContent(demoManifest, "bar", "2.0.0")
	if change != Added {
		t.Fatalf("change = %v, want added", change)
	}

	want := `[package]
name=demo

[dependencies]
foo=1.2.3
bar=2.0.0

[other]
k=v
`
	if got != want {
		t.Errorf("result:\n%s\nwant:\n%s", got, want)
	}
}

func TestSetDependencyUpdatesEntry(t *testing.T) {
	t.Parallel()

	got, change := SetDependencyContent(demoManifest, "foo", "1.3.0")
	if change != Updated {
		t.Fatalf("change = %v, want updated", change)
	}
	if want := strings.Replace(demoManifest, "foo=1.2.3", "foo=1.3.0", 1); got != want {
		t.Errorf("result:\n%s\nwant:\n%s", got, want)
	}

	again, change := SetDependencyContent(got, "foo", "1.3.0")
	if change != Unchanged || again != got {
		t.Errorf("second call changed the document (%v)", change)
	}
}

func TestSetDependencyNormalizesSpacedEntry(t *testing.T) {
	t.Parallel()

	src := "[dependencies]\n  foo = \"1.2.3\"\n"
	got, change := SetDependencyContent(src, "foo", "1.2.3")
	if change != Updated {
		t.Fatalf("change = %v, want updated", change)
	}
	if got != "[dependencies]\nfoo=1.2.3\n" {
		t.Errorf("result = %q", got)
	}
}

func TestSetDependencyIgnoresOtherSections(t *testing.T) {
	t.Parallel()

	src := "[build]\nfoo=0.1\n"
	got, change := SetDependencyContent(src, "foo", "1.0.0")
	if change != Added {
		t.Fatalf("change = %v, want added", change)
	}
	if want := "[build]\nfoo=0.1\n\n[dependencies]\nfoo=1.0.0\n"; got != want {
		t.Errorf("result = %q, want %q", got, want)
	}
}

func TestSetDependencyCreatesSection(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		want string
	}{
		{"empty", "", "[dependencies]\nmath=1.0.0\n"},
		{"no trailing newline", "[package]\nname=demo", "[package]\nname=demo\n\n[dependencies]\nmath=1.0.0\n"},
		{"trailing blank line", "[package]\n\n", "[package]\n\n[dependencies]\nmath=1.0.0\n"},
		{"crlf", "[package]\r\nname=demo\r\n", "[package]\r\nname=demo\r\n\r\n[dependencies]\r\nmath=1.0.0\r\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, change := SetDependencyContent(tt.src, "math", "1.0.0")
			if change != Added {
				t.Fatalf("change = %v, want added", change)
			}
			if got != tt.want {
				t.Errorf("result = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAnnotatedDependenciesHeader(t *testing.T) {
	t.Parallel()

	src := "[dependencies] # runtime\nfoo=1.0.0\n\n[other]\nk=v\n"

	m, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := m.Dependency("foo"); !ok {
		t.Fatalf("Parse missed foo under an annotated header: %+v", m.Dependencies)
	}

	got, change := SetDependencyContent(src, "bar", "2.0.0")
	if change != Added {
		t.Fatalf("change = %v, want added", change)
	}
	if want := "[dependencies] # runtime\nfoo=1.0.0\nbar=2.0.0\n\n[other]\nk=v\n"; got != want {
		t.Errorf("result = %q, want %q", got, want)
	}

	got, change = SetDependencyContent(src, "foo", "1.1.0")
	if change != Updated {
		t.Fatalf("change = %v, want updated", change)
	}
	if strings.Count(got, "[dependencies]") != 1 {
		t.Errorf("a second [dependencies] section was created:\n%s", got)
	}
}

func TestSetDependencyInsertsBeforeComment(t *testing.T) {
	t.Parallel()

	src := "[dependencies]\nfoo=1\n# pinned\n\n\n[other]\n"
	got, _ := SetDependencyContent(src, "bar", "2")
	if want := "[dependencies]\nfoo=1\n# pinned\nbar=2\n\n\n[other]\n"; got != want {
		t.Errorf("result = %q, want %q", got, want)
	}
}

func TestSetDependencyFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), FileName)
	if err := os.WriteFile(path, []byte(demoManifest), 0o640); err != nil {
		t.Fatal(err)
	}

	change, err := SetDependency(path, "bar", "2.0.0")
	if err != nil {
		t.Fatalf("SetDependency() error: %v", err)
	}
	if change != Added {
		t.Errorf("change = %v, want added", change)
	}

	m, err := ParseFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if d, ok := m.Dependency("bar"); !ok || d.Version != "2.0.0" {
		t.Errorf("bar = %+v, %v", d, ok)
	}
	if d, ok := m.Dependency("foo"); !ok || d.Version != "1.2.3" {
		t.Errorf("foo = %+v, %v", d, ok)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o640 {
		t.Errorf("mode = %v, want 0640", info.Mode().Perm())
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("temporary file left behind: %v", err)
	}

	change, err = SetDependency(path, "bar", "2.0.0")
	if err != nil || change != Unchanged {
		t.Errorf("second SetDependency() = %v, %v", change, err)
	}
}

func TestSetDependencyMissingFile(t *testing.T) {
	t.Parallel()

	_, err := SetDependency(filepath.Join(t.TempDir(), FileName), "bar", "1")
	if !os.IsNotExist(err) {
		t.Errorf("error = %v, want not-exist", err)
	}
}

func TestFind(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	for _, name := range []string{"b.quark", ".quark", "a.quark", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "dir.quark"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "sub", "c.quark"), nil, 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := Find(dir)
	if err != nil {
		t.Fatalf("Find() error: %v", err)
	}
	want := []string{
		filepath.Join(dir, ".quark"),
		filepath.Join(dir, "a.quark"),
		filepath.Join(dir, "b.quark"),
	}
	if !slices.Equal(got, want) {
		t.Errorf("Find() = %v, want %v", got, want)
	}
}

func TestDependenciesAcrossFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	a := filepath.Join(dir, "a.quark")
	b := filepath.Join(dir, "b.quark")
	if err := os.WriteFile(a, []byte("[dependencies]\nmath=1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(b, []byte("[dependencies]\njson=*\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	deps, err := Dependencies([]string{a, b})
	if err != nil {
		t.Fatal(err)
	}
	if len(deps) != 2 || deps[0].Name != "math" || deps[1].Name != "json" {
		t.Errorf("Dependencies() = %+v", deps)
	}
}
