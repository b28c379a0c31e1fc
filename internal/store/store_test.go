// SPDX-License-Identifier: MPL-2.0

package store

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/neutron-modules/box/pkg/platform"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	root := t.TempDir()
	return New("", filepath.Join(root, "global"), filepath.Join(root, "local"))
}

func TestNewDefaults(t *testing.T) {
	t.Parallel()

	s := New("/home/ada", "", "")
	if got, want := s.Dir(Global), filepath.Join("/home/ada", ".box", "modules"); got != want {
		t.Errorf("Dir(Global) = %q, want %q", got, want)
	}
	if got, want := s.Dir(Local), filepath.Join(".box", "modules"); got != want {
		t.Errorf("Dir(Local) = %q, want %q", got, want)
	}
	if got, want := s.ModuleDir(Local, "math"), filepath.Join(".box", "modules", "math"); got != want {
		t.Errorf("ModuleDir(Local, math) = %q, want %q", got, want)
	}
}

func TestScopeString(t *testing.T) {
	t.Parallel()

	if Global.String() != "global" || Local.String() != "local" {
		t.Errorf("unexpected scope names %q, %q", Global, Local)
	}
}

func TestListMissingStoreIsEmpty(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	names, err := s.List(Local)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(names) != 0 {
		t.Errorf("List() = %v, want empty", names)
	}
}

func TestListSkipsHiddenAndFiles(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	for _, name := range []string{"zlib", "crypto", "math"} {
		if _, err := s.Ensure(Global, name); err != nil {
			t.Fatalf("Ensure(%s): %v", name, err)
		}
	}
	if err := os.MkdirAll(filepath.Join(s.Dir(Global), ".cache"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(s.Dir(Global), "README"), nil, 0o644); err != nil {
		t.Fatal(err)
	}

	names, err := s.List(Global)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if want := []string{"crypto", "math", "zlib"}; !slices.Equal(names, want) {
		t.Errorf("List() = %v, want %v", names, want)
	}
}

func TestIsInstalledAndRemove(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	if s.IsInstalled(Local, "math") {
		t.Fatal("IsInstalled() = true before install")
	}
	if _, err := s.Ensure(Local, "math"); err != nil {
		t.Fatal(err)
	}
	if !s.IsInstalled(Local, "math") {
		t.Fatal("IsInstalled() = false after Ensure")
	}
	if s.IsInstalled(Global, "math") {
		t.Error("install in local store leaked into global store")
	}

	if err := s.Remove(Local, "math"); err != nil {
		t.Fatalf("Remove() error: %v", err)
	}
	if s.IsInstalled(Local, "math") {
		t.Error("IsInstalled() = true after Remove")
	}

	err := s.Remove(Local, "math")
	if !errors.Is(err, ErrNotInstalled) {
		t.Errorf("second Remove() error = %v, want ErrNotInstalled", err)
	}
}

func TestStashAndRestore(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	dir, err := s.Ensure(Global, "math")
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "math.so"), []byte("v1"), 0o644); err != nil {
		t.Fatal(err)
	}

	stash, err := s.Stash(Global, "math")
	if err != nil {
		t.Fatalf("Stash() error: %v", err)
	}
	if s.IsInstalled(Global, "math") {
		t.Error("IsInstalled() = true after Stash")
	}
	if names, _ := s.List(Global); len(names) != 0 {
		t.Errorf("List() = %v, want the stash hidden", names)
	}

	// A half-written replacement is dropped on restore.
	if _, err := s.Ensure(Global, "math"); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "partial"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := s.Restore(Global, "math", stash); err != nil {
		t.Fatalf("Restore() error: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "math.so"))
	if err != nil || string(data) != "v1" {
		t.Errorf("restored library = %q, %v", data, err)
	}
	if _, err := os.Stat(filepath.Join(dir, "partial")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("partial replacement survived restore: %v", err)
	}
	if _, err := os.Stat(stash); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("stash still present after restore: %v", err)
	}
}

func TestStashMissingModule(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	if _, err := s.Stash(Local, "math"); !errors.Is(err, ErrNotInstalled) {
		t.Errorf("Stash() error = %v, want ErrNotInstalled", err)
	}
}

func TestStashReplacesStaleStash(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	if _, err := s.Ensure(Local, "math"); err != nil {
		t.Fatal(err)
	}
	stale := filepath.Join(s.Dir(Local), ".math.old")
	if err := os.MkdirAll(filepath.Join(stale, "leftover"), 0o755); err != nil {
		t.Fatal(err)
	}

	stash, err := s.Stash(Local, "math")
	if err != nil {
		t.Fatalf("Stash() error: %v", err)
	}
	if stash != stale {
		t.Errorf("Stash() = %q, want %q", stash, stale)
	}
	if _, err := os.Stat(filepath.Join(stash, "leftover")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("stale stash content survived: %v", err)
	}
}

func TestIsInstalledIgnoresPlainFile(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	if err := os.MkdirAll(s.Dir(Local), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(s.ModuleDir(Local, "math"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if s.IsInstalled(Local, "math") {
		t.Error("IsInstalled() = true for a plain file")
	}
}

func TestNewTempDirPicksSmallestFree(t *testing.T) {
	t.Parallel()

	parent := t.TempDir()
	if err := os.Mkdir(filepath.Join(parent, ".tmp0"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(parent, ".tmp2"), 0o755); err != nil {
		t.Fatal(err)
	}

	dir, err := NewTempDir(parent)
	if err != nil {
		t.Fatalf("NewTempDir() error: %v", err)
	}
	if want := filepath.Join(parent, ".tmp1"); dir != want {
		t.Errorf("NewTempDir() = %q, want %q", dir, want)
	}

	dir, err = NewTempDir(parent)
	if err != nil {
		t.Fatalf("NewTempDir() error: %v", err)
	}
	if want := filepath.Join(parent, ".tmp3"); dir != want {
		t.Errorf("NewTempDir() = %q, want %q", dir, want)
	}

	tmps, err := TempDirs(parent)
	if err != nil {
		t.Fatal(err)
	}
	if len(tmps) != 4 {
		t.Errorf("TempDirs() = %v, want 4 entries", tmps)
	}
}

func TestNewTempDirExhausted(t *testing.T) {
	t.Parallel()

	parent := t.TempDir()
	for n := range maxTempAttempts {
		if _, err := NewTempDir(parent); err != nil {
			t.Fatalf("NewTempDir() #%d error: %v", n, err)
		}
	}
	_, err := NewTempDir(parent)
	if !errors.Is(err, ErrTempDirExhausted) {
		t.Errorf("NewTempDir() error = %v, want ErrTempDirExhausted", err)
	}
}

func TestMetadataRoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	m := NewMetadata("math", "1.0.0", "Math helpers", platform.Linux)
	if m.Library != "math.so" || m.Platform != "Linux" {
		t.Fatalf("NewMetadata() = %+v", m)
	}
	if err := WriteMetadata(dir, m); err != nil {
		t.Fatalf("WriteMetadata() error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, MetadataFileName))
	if err != nil {
		t.Fatal(err)
	}
	want := `{
  "name": "math",
  "version": "1.0.0",
  "description": "Math helpers",
  "platform": "Linux",
  "library": "math.so"
}
`
	if string(data) != want {
		t.Errorf("metadata.json =\n%s\nwant\n%s", data, want)
	}

	got, err := ReadMetadata(dir)
	if err != nil {
		t.Fatalf("ReadMetadata() error: %v", err)
	}
	if got != m {
		t.Errorf("ReadMetadata() = %+v, want %+v", got, m)
	}

	if _, err := os.Stat(filepath.Join(dir, MetadataFileName+".tmp")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("temporary file left behind: %v", err)
	}
}

func TestMetadataLibraryPerPlatform(t *testing.T) {
	t.Parallel()

	tests := []struct {
		p    platform.Platform
		want string
	}{
		{platform.Linux, "json.so"},
		{platform.MacOS, "json.dylib"},
		{platform.Windows, "json.dll"},
	}
	for _, tt := range tests {
		t.Run(tt.p.String(), func(t *testing.T) {
			t.Parallel()
			if got := NewMetadata("json", "1.0.0", "", tt.p).Library; got != tt.want {
				t.Errorf("Library = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReadMetadataMissing(t *testing.T) {
	t.Parallel()

	if _, err := ReadMetadata(t.TempDir()); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("ReadMetadata() error = %v, want ErrNotExist", err)
	}
}

func TestDefaultDescription(t *testing.T) {
	t.Parallel()

	if got := DefaultDescription("math"); got != "math native module for Neutron" {
		t.Errorf("DefaultDescription() = %q", got)
	}
}
