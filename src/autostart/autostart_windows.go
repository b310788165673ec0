//go:build windows

// Package autostart manages the machine-wide run key so the program starts
// with Windows. Writing the key needs elevation; callers surface the error.
package autostart

import (
	"fmt"
	"os"

	"golang.org/x/sys/windows/registry"
)

const (
	runKeyPath = `SOFTWARE\Microsoft\Windows\CurrentVersion\Run`
	valueName  = "ScreenSnip"
)

// Enable registers the current executable under the all-users run key.
func Enable() error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to resolve executable path: %w", err)
	}
	k, _, err := registry.CreateKey(registry.LOCAL_MACHINE, runKeyPath, registry.SET_VALUE)
	if err != nil {
		return fmt.Errorf("failed to open run key (administrator rights required): %w", err)
	}
	defer k.Close()
	if err := k.SetStringValue(valueName, `"`+exe+`"`); err != nil {
		return fmt.Errorf("failed to write run key: %w", err)
	}
	return nil
}

// Disable removes the run key entry. A missing entry is not an error.
func Disable() error {
	k, err := registry.OpenKey(registry.LOCAL_MACHINE, runKeyPath, registry.SET_VALUE)
	if err != nil {
		if err == registry.ErrNotExist {
			return nil
		}
		return fmt.Errorf("failed to open run key (administrator rights required): %w", err)
	}
	defer k.Close()
	err = k.DeleteValue(valueName)
	if err == registry.ErrNotExist {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to remove run key: %w", err)
	}
	return nil
}

// Enabled reports whether the run key entry exists.
func Enabled() bool {
	k, err := registry.OpenKey(registry.LOCAL_MACHINE, runKeyPath, registry.QUERY_VALUE)
	if err != nil {
		return false
	}
	defer k.Close()
	_, _, err = k.GetStringValue(valueName)
	return err == nil
}
