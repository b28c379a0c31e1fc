// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rogpeppe/go-internal/testscript"

	"github.com/neutron-modules/box/pkg/registry"
)

func TestMain(m *testing.M) {
	testscript.Main(m, map[string]func(){
		"box": func() { os.Exit(Run()) },
	})
}

// TestScripts runs the testdata/script/*.txtar CLI scenarios against a
// registry published under $WORK/nur.
func TestScripts(t *testing.T) {
	testscript.Run(t, testscript.Params{
		Dir: filepath.Join("testdata", "script"),
		Setup: func(env *testscript.Env) error {
			home := filepath.Join(env.WorkDir, "home")
			env.Setenv("HOME", home)
			env.Setenv("USERPROFILE", home)
			env.Setenv("XDG_CONFIG_HOME", filepath.Join(env.WorkDir, ".config"))
			env.Setenv("BOX_REGISTRY_URL", registry.FileURL(filepath.Join(env.WorkDir, "nur")))
			return os.MkdirAll(home, 0o755)
		},
		Cmds: map[string]func(ts *testscript.TestScript, neg bool, args []string){
			"expandenv": expandEnv,
		},
		// Continue running all scripts even if one fails
		ContinueOnError: true,
	})
}

// expandenv rewrites files in place, replacing $VAR references with values
// from the script environment. Registry manifests use it to point at
// artifacts below $WORK.
func expandEnv(ts *testscript.TestScript, neg bool, args []string) {
	if neg {
		ts.Fatalf("unsupported: ! expandenv")
	}
	if len(args) == 0 {
		ts.Fatalf("usage: expandenv file...")
	}
	for _, name := range args {
		data := ts.ReadFile(name)
		ts.Check(os.WriteFile(ts.MkAbs(name), []byte(os.Expand(data, ts.Getenv)), 0o644))
	}
}
