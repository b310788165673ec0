//go:build windows

package settings

import (
	"golang.org/x/sys/windows/registry"
)

const (
	userPath   = `SOFTWARE\ScreenSnip`
	policyPath = `SOFTWARE\Policies\ScreenSnip`
)

// Open builds the store from the Windows registry: machine and user policy
// keys, their Recommended subkeys, and the per-user settings key.
func Open(defaultFolder string) *Store {
	policy := []Provider{
		regProvider{root: registry.LOCAL_MACHINE, path: policyPath},
		regProvider{root: registry.CURRENT_USER, path: policyPath},
	}
	recommended := []Provider{
		regProvider{root: registry.LOCAL_MACHINE, path: policyPath + `\Recommended`},
		regProvider{root: registry.CURRENT_USER, path: policyPath + `\Recommended`},
	}
	user := regProvider{root: registry.CURRENT_USER, path: userPath}
	writer := regWriter{root: registry.CURRENT_USER, path: userPath}
	return New(policy, recommended, user, writer, defaultFolder)
}

type regProvider struct {
	root registry.Key
	path string
}

func (p regProvider) Int(key string) (int32, bool) {
	k, err := registry.OpenKey(p.root, p.path, registry.QUERY_VALUE)
	if err != nil {
		return 0, false
	}
	defer k.Close()
	v, _, err := k.GetIntegerValue(key)
	if err != nil {
		return 0, false
	}
	return int32(uint32(v)), true
}

func (p regProvider) String(key string) (string, bool) {
	k, err := registry.OpenKey(p.root, p.path, registry.QUERY_VALUE)
	if err != nil {
		return "", false
	}
	defer k.Close()
	v, _, err := k.GetStringValue(key)
	if err != nil {
		return "", false
	}
	return v, true
}

type regWriter struct {
	root registry.Key
	path string
}

func (w regWriter) open() (registry.Key, error) {
	k, _, err := registry.CreateKey(w.root, w.path, registry.SET_VALUE)
	return k, err
}

func (w regWriter) SetInt(key string, v int32) error {
	k, err := w.open()
	if err != nil {
		return err
	}
	defer k.Close()
	return k.SetDWordValue(key, uint32(v))
}

func (w regWriter) SetString(key, v string) error {
	k, err := w.open()
	if err != nil {
		return err
	}
	defer k.Close()
	return k.SetStringValue(key, v)
}

func (w regWriter) Delete(key string) error {
	k, err := w.open()
	if err != nil {
		return err
	}
	defer k.Close()
	err = k.DeleteValue(key)
	if err == registry.ErrNotExist {
		return nil
	}
	return err
}
