//go:build !windows

package settings

// Open returns an in-memory store on platforms without a registry. Values do
// not persist across runs; the env layer still applies.
func Open(defaultFolder string) *Store {
	user := NewMapProvider()
	return New(nil, nil, user, user, defaultFolder)
}
