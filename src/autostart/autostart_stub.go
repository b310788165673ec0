//go:build !windows

// Package autostart manages the machine-wide run key so the program starts
// with Windows. Writing the key needs elevation; callers surface the error.
package autostart

import "errors"

var errUnsupported = errors.New("autostart is only supported on Windows")

func Enable() error  { return errUnsupported }
func Disable() error { return errUnsupported }
func Enabled() bool  { return false }
