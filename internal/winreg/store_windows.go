//go:build windows

// Package winreg is the registry.Store backed by the native Windows
// registry under HKEY_CURRENT_USER.
package winreg

import (
	"errors"
	"fmt"

	winapi "golang.org/x/sys/windows/registry"

	"github.com/go-ports/contextmenu/internal/registry"
)

// Store writes to HKEY_CURRENT_USER.
type Store struct {
	root winapi.Key
}

var _ registry.Store = (*Store)(nil)

// Open returns a Store rooted at HKEY_CURRENT_USER.
func Open() (*Store, error) {
	return &Store{root: winapi.CURRENT_USER}, nil
}

// Close is a no-op; every operation opens and closes its own handle.
func (*Store) Close() error { return nil }

// CreateKey creates path and any missing ancestors.
func (s *Store) CreateKey(path string) error {
	k, _, err := winapi.CreateKey(s.root, path, winapi.ALL_ACCESS)
	if err != nil {
		return fmt.Errorf("winreg.CreateKey %q: %w", path, err)
	}
	return k.Close()
}

// SetValue sets a REG_SZ value on an existing key.
func (s *Store) SetValue(path, name, value string) error {
	k, err := s.open(path, winapi.SET_VALUE)
	if err != nil {
		return fmt.Errorf("winreg.SetValue: %w", err)
	}
	defer k.Close()
	if err := k.SetStringValue(name, value); err != nil {
		return fmt.Errorf("winreg.SetValue %q: %w", path, err)
	}
	return nil
}

// Value reads a string value.
func (s *Store) Value(path, name string) (string, bool, error) {
	k, err := s.open(path, winapi.QUERY_VALUE)
	if err != nil {
		return "", false, fmt.Errorf("winreg.Value: %w", err)
	}
	defer k.Close()
	v, _, err := k.GetStringValue(name)
	if errors.Is(err, winapi.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("winreg.Value %q: %w", path, err)
	}
	return v, true, nil
}

// SubKeys lists the direct children of path.
func (s *Store) SubKeys(path string) ([]string, error) {
	k, err := s.open(path, winapi.ENUMERATE_SUB_KEYS)
	if err != nil {
		return nil, fmt.Errorf("winreg.SubKeys: %w", err)
	}
	defer k.Close()
	names, err := k.ReadSubKeyNames(-1)
	if err != nil {
		return nil, fmt.Errorf("winreg.SubKeys %q: %w", path, err)
	}
	return names, nil
}

// DeleteKey removes a key without subkeys.
func (s *Store) DeleteKey(path string) error {
	err := winapi.DeleteKey(s.root, path)
	if errors.Is(err, winapi.ErrNotExist) {
		return fmt.Errorf("winreg.DeleteKey: %w: %s", registry.ErrKeyNotFound, path)
	}
	if err != nil {
		return fmt.Errorf("winreg.DeleteKey %q: %w", path, err)
	}
	return nil
}

func (s *Store) open(path string, access uint32) (winapi.Key, error) {
	k, err := winapi.OpenKey(s.root, path, access)
	if errors.Is(err, winapi.ErrNotExist) {
		return 0, fmt.Errorf("%w: %s", registry.ErrKeyNotFound, path)
	}
	return k, err
}
