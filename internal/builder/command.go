// SPDX-License-Identifier: MPL-2.0

package builder

import (
	"fmt"
	"path/filepath"
	"strings"

	"mvdan.cc/sh/v3/shell"
	"mvdan.cc/sh/v3/syntax"
)

// Visual Studio layouts searched for vcvarsall.bat, newest release first.
var (
	vcvarsRoots    = []string{`C:\Program Files\Microsoft Visual Studio`, `C:\Program Files (x86)\Microsoft Visual Studio`}
	vcvarsVersions = []string{"18", "2025", "2022", "2019"}
	vcvarsEditions = []string{"Community", "Professional", "Enterprise", "BuildTools"}
)

type (
	// Command is one compiler invocation.
	Command struct {
		// Argv is the program and its arguments.
		Argv []string
		// Dir is the working directory; empty means the current one.
		Dir string
		// Raw, when set, is the verbatim Windows command line for Argv[0].
		// It is used for cmd.exe wrappers whose quoting CreateProcess must not
		// rewrite.
		Raw string
	}

	// compileInputs are the resolved paths one build compiles and links.
	compileInputs struct {
		name      string
		sourceDir string
		source    string
		shim      string
		output    string
		includes  []string
		// libDir is empty when no runtime library directory was found.
		libDir string
	}
)

// Display renders the command as a single shell-quoted line.
func (c Command) Display() string {
	if c.Raw != "" {
		return c.Raw
	}
	parts := make([]string, 0, len(c.Argv))
	for _, arg := range c.Argv {
		q, err := syntax.Quote(arg, syntax.LangBash)
		if err != nil {
			q = arg
		}
		parts = append(parts, q)
	}
	return strings.Join(parts, " ")
}

// ParseExtraFlags splits a shell-style flag string into arguments.
func ParseExtraFlags(s string) ([]string, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	fields, err := shell.Fields(s, func(string) string { return "" })
	if err != nil {
		return nil, fmt.Errorf("invalid extra flags %q: %w", s, err)
	}
	return fields, nil
}

// gccArgv renders the GCC/Clang template. rpath is skipped on Windows.
func (b *Builder) gccArgv(tc Toolchain, in compileInputs) []string {
	argv := []string{tc.Compiler, "-std=c++17", "-fPIC", "-shared"}
	for _, inc := range in.includes {
		argv = append(argv, "-I"+inc)
	}
	argv = append(argv, in.source, in.shim)
	argv = append(argv, b.extraFlags...)
	argv = append(argv, "-o", in.output)

	if in.libDir != "" {
		argv = append(argv, "-L"+in.libDir)
		if !b.platform.IsWindows() {
			argv = append(argv, "-Wl,-rpath,"+in.libDir)
		}
		argv = append(argv, "-lneutron_runtime")
	}
	return argv
}

// msvcArgv renders the cl template. A <name>.def next to the source is
// passed to the linker when present.
func (b *Builder) msvcArgv(tc Toolchain, in compileInputs) []string {
	argv := []string{tc.Compiler, "/nologo", "/std:c++17", "/EHsc"}
	for _, inc := range in.includes {
		argv = append(argv, "/I"+inc)
	}
	argv = append(argv, in.source, in.shim)
	argv = append(argv, b.extraFlags...)
	argv = append(argv, "/LD", "/MD", "/Fe:"+in.output, "/link")

	if def := filepath.Join(in.sourceDir, in.name+".def"); isFile(def) {
		argv = append(argv, "/DEF:"+def)
	}
	return argv
}

// command synthesizes the invocation for tc. MSVC builds run through
// vcvarsall.bat when cl is not on PATH.
func (b *Builder) command(tc Toolchain, in compileInputs) (Command, error) {
	if tc.Family == GCC {
		return Command{Argv: b.gccArgv(tc, in)}, nil
	}

	argv := b.msvcArgv(tc, in)
	if _, err := b.lookPath(tc.Compiler); err == nil {
		return Command{Argv: argv}, nil
	}

	vcvars, ok := b.findVcvars()
	if !ok {
		return Command{}, fmt.Errorf("%w: %s is not on PATH and no vcvarsall.bat was found; "+
			"install Visual Studio Build Tools with the \"Desktop development with C++\" workload "+
			"or build from an MSYS2 MINGW shell", ErrToolchainMissing, tc.Compiler)
	}
	b.logger.Debug("priming MSVC environment", "vcvars", vcvars)
	return WrapVcvars(vcvars, argv), nil
}

// WrapVcvars runs argv inside a cmd.exe that first sources vcvarsall.bat for x64.
func WrapVcvars(vcvars string, argv []string) Command {
	inner := fmt.Sprintf(`"%s" x64 >nul 2>&1 && %s`, vcvars, windowsJoin(argv))
	return Command{
		Argv: []string{"cmd", "/c", inner},
		Raw:  `cmd /c "` + inner + `"`,
	}
}

// VcvarsCandidates lists the vcvarsall.bat locations searched on Windows.
func VcvarsCandidates() []string {
	var paths []string
	for _, root := range vcvarsRoots {
		for _, version := range vcvarsVersions {
			for _, edition := range vcvarsEditions {
				paths = append(paths, root+`\`+version+`\`+edition+`\VC\Auxiliary\Build\vcvarsall.bat`)
			}
		}
	}
	return paths
}

func (b *Builder) findVcvars() (string, bool) {
	for _, p := range VcvarsCandidates() {
		if isFile(p) {
			return p, true
		}
	}
	return "", false
}

// windowsJoin quotes arguments the way cmd.exe and the MSVC runtime parse
// them: whitespace or quotes force double quotes, embedded quotes are
// backslash escaped.
func windowsJoin(argv []string) string {
	parts := make([]string, 0, len(argv))
	for _, arg := range argv {
		if arg != "" && !strings.ContainsAny(arg, " \t\"") {
			parts = append(parts, arg)
			continue
		}
		parts = append(parts, `"`+strings.ReplaceAll(arg, `"`, `\"`)+`"`)
	}
	return strings.Join(parts, " ")
}
