// Package platform identifies the desktop host a menu is compiled for.
package platform

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// ErrUnsupported is returned for hosts with no menu compiler.
var ErrUnsupported = errors.New("unsupported platform")

// Platform is a host family with its own menu mechanism.
type Platform string

const (
	Windows Platform = "windows" // shell registry
	Linux   Platform = "linux"   // nautilus-python extensions
)

// Parse accepts a platform name in any case.
func Parse(s string) (Platform, error) {
	switch p := Platform(strings.ToLower(strings.TrimSpace(s))); p {
	case Windows, Linux:
		return p, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupported, s)
}

// Detect returns override when it is set, otherwise the running host.
func Detect(override string) (Platform, error) {
	if strings.TrimSpace(override) != "" {
		return Parse(override)
	}
	return Parse(runtime.GOOS)
}
