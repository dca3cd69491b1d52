package synth_test

import (
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/go-ports/contextmenu/internal/menu"
	"github.com/go-ports/contextmenu/internal/synth"
)

var fooCallback = menu.Callback{Func: "f", Module: "foo", Dir: "/a/b", File: "/a/b/foo.py"}

// assertInOrder checks that every part occurs in s, each after the previous.
func assertInOrder(c *qt.C, s string, parts ...string) {
	c.Helper()
	pos := 0
	for _, p := range parts {
		i := strings.Index(s[pos:], p)
		c.Assert(i >= 0, qt.IsTrue, qt.Commentf("%q not found after offset %d in %q", p, pos, s))
		pos += i + len(p)
	}
}

// ---------------------------------------------------------------------------
// Callback variant
// ---------------------------------------------------------------------------

func TestFileSelect_HappyPath(t *testing.T) {
	c := qt.New(t)

	s := synth.New("/usr/bin/python3", nil, synth.WindowsTarget)
	got := s.FileSelect(fooCallback, "x")

	c.Assert(got, qt.Equals,
		`"/usr/bin/python3" -c "import sys; sys.path.insert(0, '/a/b'); import foo; foo.f([' '.join(sys.argv[1:])], 'x')" "%1"`)
	assertInOrder(c, got, "sys.path.insert(0, '/a/b')", "import foo", "f([' '.join(sys.argv[1:])], 'x')")
}

func TestFileSelect_WindowsDirUsesForwardSlashesInSearchPath(t *testing.T) {
	c := qt.New(t)

	cb := menu.Callback{Func: "run", Module: "tools", Dir: `C:\Users\me\scripts`}
	s := synth.New(`C:\Python312\python.exe`, nil, synth.WindowsTarget)
	got := s.FileSelect(cb, "")

	c.Assert(got, qt.Contains, "sys.path.insert(0, 'C:/Users/me/scripts')")
	c.Assert(got, qt.Contains, `"C:\Python312\python.exe" -c`)
	c.Assert(got, qt.Contains, "tools.run([' '.join(sys.argv[1:])], '')")
}

func TestFileSelect_LinuxTargetHasNoFileArg(t *testing.T) {
	c := qt.New(t)

	s := synth.New("python3", nil, synth.LinuxTarget)
	got := s.FileSelect(fooCallback, "x")
	c.Assert(strings.HasSuffix(got, `'x')"`), qt.IsTrue, qt.Commentf("%s", got))
}

func TestBackground_HappyPath(t *testing.T) {
	c := qt.New(t)

	s := synth.New("python", nil, synth.WindowsTarget)
	got := s.Background(fooCallback, "p")

	c.Assert(got, qt.Equals,
		`"python" -c "import sys; import os; sys.path.insert(0, '/a/b'); import foo; foo.f([os.getcwd()], 'p')"`)
	c.Assert(got, qt.Not(qt.Contains), "%1")
}

func TestSearchPath_MixedSeparators(t *testing.T) {
	c := qt.New(t)
	c.Assert(synth.SearchPath(`C:/a\b/c`), qt.Equals, "sys.path.insert(0, 'C:/a/b/c')")
}

// ---------------------------------------------------------------------------
// Template variant
// ---------------------------------------------------------------------------

func TestShell_HappyPath(t *testing.T) {
	c := qt.New(t)

	s := synth.New("python", nil, synth.WindowsTarget)

	c.Run("no variables returns template unchanged", func(c *qt.C) {
		got, err := s.Shell("echo hello > example.txt", nil)
		c.Assert(err, qt.IsNil)
		c.Assert(got, qt.Equals, "echo hello > example.txt")
	})

	c.Run("variables become runtime expressions", func(c *qt.C) {
		got, err := s.Shell("code ? --goto ?", []menu.CommandVar{menu.VarDir, menu.VarFileName})
		c.Assert(err, qt.IsNil)
		c.Assert(got, qt.Equals,
			`"python" -c "import os; import sys; os.system('code ' + os.getcwd() + ' --goto ' + ' '.join(sys.argv[1:]) + '')" "%1"`)
	})

	c.Run("interpreter location", func(c *qt.C) {
		got, err := s.Shell("? -m http.server", []menu.CommandVar{menu.VarPythonLoc})
		c.Assert(err, qt.IsNil)
		c.Assert(got, qt.Contains, "os.system('' + sys.executable + ' -m http.server')")
	})
}

func TestShell_FailurePath(t *testing.T) {
	c := qt.New(t)

	s := synth.New("python", nil, synth.WindowsTarget)

	c.Run("more markers than variables", func(c *qt.C) {
		_, err := s.Shell("echo ? ?", []menu.CommandVar{menu.VarDir})
		c.Assert(err, qt.ErrorIs, synth.ErrTemplateArity)
	})

	c.Run("more variables than markers", func(c *qt.C) {
		_, err := s.Shell("echo ?", []menu.CommandVar{menu.VarDir, menu.VarDir})
		c.Assert(err, qt.ErrorIs, synth.ErrTemplateArity)
	})

	c.Run("variable missing from table", func(c *qt.C) {
		partial := synth.New("python", map[menu.CommandVar]string{menu.VarDir: "os.getcwd()"}, synth.WindowsTarget)
		_, err := partial.Shell("echo ?", []menu.CommandVar{menu.VarFileName})
		c.Assert(err, qt.ErrorIs, menu.ErrUnknownVar)
	})
}

func TestNew_CopiesVarTable(t *testing.T) {
	c := qt.New(t)

	vars := synth.DefaultVars()
	s := synth.New("python", vars, synth.LinuxTarget)
	vars[menu.VarDir] = "'/frozen'"

	got, err := s.Shell("echo ?", []menu.CommandVar{menu.VarDir})
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.Contains, "os.getcwd()")
}

// TestShell_DirectoryEvaluatedAtSpawn runs the same synthesized command from
// two working directories and expects two different outputs.
func TestShell_DirectoryEvaluatedAtSpawn(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses sh to run the command line")
	}
	python, err := exec.LookPath("python3")
	if err != nil {
		t.Skip("python3 not available")
	}
	c := qt.New(t)

	s := synth.New(python, nil, synth.LinuxTarget)
	command, err := s.Shell("echo ?", []menu.CommandVar{menu.VarDir})
	c.Assert(err, qt.IsNil)

	run := func(dir string) string {
		cmd := exec.Command("sh", "-c", command)
		cmd.Dir = dir
		out, err := cmd.Output()
		c.Assert(err, qt.IsNil)
		return strings.TrimSpace(string(out))
	}

	first, err := filepath.EvalSymlinks(t.TempDir())
	c.Assert(err, qt.IsNil)
	second, err := filepath.EvalSymlinks(t.TempDir())
	c.Assert(err, qt.IsNil)

	c.Assert(run(first), qt.Equals, first)
	c.Assert(run(second), qt.Equals, second)
}

// ---------------------------------------------------------------------------
// Resolve
// ---------------------------------------------------------------------------

func TestResolve_PicksVariantFromRootActivation(t *testing.T) {
	c := qt.New(t)

	s := synth.New("python", nil, synth.WindowsTarget)
	cmd, err := menu.NewCommand("Run", menu.WithCallback(fooCallback), menu.WithParams("x"))
	c.Assert(err, qt.IsNil)

	cases := []struct {
		root    menu.ActivationType
		wantCwd bool
	}{
		{menu.Files, false},
		{menu.Directory, false},
		{menu.Drive, false},
		{menu.ActivationType(".txt"), false},
		{menu.DirectoryBackground, true},
		{menu.DesktopBackground, true},
	}
	for _, tc := range cases {
		c.Run(string(tc.root), func(c *qt.C) {
			got, err := s.Resolve(cmd, tc.root)
			c.Assert(err, qt.IsNil)
			c.Assert(strings.Contains(got, "[os.getcwd()]"), qt.Equals, tc.wantCwd)
			c.Assert(strings.Contains(got, "sys.argv[1:]"), qt.Equals, !tc.wantCwd)
		})
	}
}

func TestResolve_FailurePath(t *testing.T) {
	c := qt.New(t)

	s := synth.New("python", nil, synth.WindowsTarget)
	_, err := s.Resolve(&menu.Command{Name: "empty"}, menu.Files)
	c.Assert(err, qt.ErrorIs, menu.ErrNoAction)

	both := &menu.Command{Name: "both", Template: "echo", Callback: &fooCallback}
	_, err = s.Resolve(both, menu.Files)
	c.Assert(err, qt.ErrorIs, menu.ErrTemplateAndCallback)
}
