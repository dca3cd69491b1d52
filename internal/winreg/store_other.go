//go:build !windows

// Package winreg is the registry.Store backed by the native Windows
// registry under HKEY_CURRENT_USER.
package winreg

import (
	"errors"

	"github.com/go-ports/contextmenu/internal/registry"
)

// ErrUnavailable is returned by Open on hosts without a Windows registry.
var ErrUnavailable = errors.New("native registry is only available on windows")

// Store is never constructed off Windows.
type Store struct{ registry.Store }

// Open always fails off Windows; use the SQLite hive instead.
func Open() (*Store, error) {
	return nil, ErrUnavailable
}
