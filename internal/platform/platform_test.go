package platform_test

import (
	"runtime"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/go-ports/contextmenu/internal/platform"
)

func TestParse(t *testing.T) {
	c := qt.New(t)

	for in, want := range map[string]platform.Platform{
		"windows":   platform.Windows,
		"Linux":     platform.Linux,
		" WINDOWS ": platform.Windows,
	} {
		got, err := platform.Parse(in)
		c.Assert(err, qt.IsNil)
		c.Assert(got, qt.Equals, want)
	}

	for _, in := range []string{"darwin", "", "win"} {
		_, err := platform.Parse(in)
		c.Assert(err, qt.ErrorIs, platform.ErrUnsupported)
	}
}

func TestDetect(t *testing.T) {
	c := qt.New(t)

	got, err := platform.Detect("windows")
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.Equals, platform.Windows)

	got, err = platform.Detect("")
	switch runtime.GOOS {
	case "windows", "linux":
		c.Assert(err, qt.IsNil)
		c.Assert(string(got), qt.Equals, runtime.GOOS)
	default:
		c.Assert(err, qt.ErrorIs, platform.ErrUnsupported)
	}
}
