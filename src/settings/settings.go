// Package settings resolves configuration from an ordered list of providers:
// machine policy first, then recommended policy defaults, then the user's own
// values, then environment overrides, then built-in defaults. Writes always go
// to the user layer; a key present in the policy layer is locked.
package settings

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"screen-snip/src/geom"
)

// Value names shared by every provider.
const (
	KeyZoomScale       = "ZoomScale"
	KeyScreenshotDelay = "ScreenshotDelay"
	KeySaveToClipboard = "SaveToClipboard"
	KeySaveToFile      = "SaveToFile"
	KeyAlternateColors = "AlternateColors"
	KeyShowDiagnostics = "ShowDiagnostics"
	KeyOutputFolder    = "OutputFolder"
	KeySelectionLeft   = "SelectionLeft"
	KeySelectionTop    = "SelectionTop"
	KeySelectionRight  = "SelectionRight"
	KeySelectionBottom = "SelectionBottom"
)

// Built-in defaults and bounds.
const (
	DefaultZoomScale       int32 = 4
	DefaultScreenshotDelay int32 = 5
	MaxScreenshotDelay     int32 = 60
)

// Provider answers lookups for one configuration layer. A missing key is
// reported through the bool, never as a zero value.
type Provider interface {
	Int(key string) (int32, bool)
	String(key string) (string, bool)
}

// Writer is the mutable user layer.
type Writer interface {
	SetInt(key string, v int32) error
	SetString(key, v string) error
	Delete(key string) error
}

// Store resolves keys across layers and writes through to the user layer.
type Store struct {
	policy      []Provider // locked layers, highest precedence
	recommended []Provider
	user        Provider
	env         Provider
	writer      Writer

	defaultFolder string
}

// New assembles a store from explicit layers. Any layer may be nil.
func New(policy, recommended []Provider, user Provider, writer Writer, defaultFolder string) *Store {
	return &Store{
		policy:        policy,
		recommended:   recommended,
		user:          user,
		env:           envProvider{},
		writer:        writer,
		defaultFolder: defaultFolder,
	}
}

func (s *Store) layers() []Provider {
	out := make([]Provider, 0, len(s.policy)+len(s.recommended)+2)
	out = append(out, s.policy...)
	out = append(out, s.recommended...)
	if s.user != nil {
		out = append(out, s.user)
	}
	if s.env != nil {
		out = append(out, s.env)
	}
	return out
}

func (s *Store) intValue(key string, def int32) int32 {
	for _, p := range s.layers() {
		if v, ok := p.Int(key); ok {
			return v
		}
	}
	return def
}

func (s *Store) stringValue(key, def string) string {
	for _, p := range s.layers() {
		if v, ok := p.String(key); ok {
			return v
		}
	}
	return def
}

func (s *Store) boolValue(key string, def bool) bool {
	d := int32(0)
	if def {
		d = 1
	}
	return s.intValue(key, d) != 0
}

// Locked reports whether a policy layer pins the key, in which case the UI
// must gray out the corresponding control and writes are refused.
func (s *Store) Locked(key string) bool {
	for _, p := range s.policy {
		if _, ok := p.Int(key); ok {
			return true
		}
		if _, ok := p.String(key); ok {
			return true
		}
	}
	return false
}

func (s *Store) setInt(key string, v int32) {
	if s.writer == nil || s.Locked(key) {
		return
	}
	if err := s.writer.SetInt(key, v); err != nil {
		log.Printf("Failed to persist %s: %v", key, err)
	}
}

func (s *Store) setBool(key string, v bool) {
	n := int32(0)
	if v {
		n = 1
	}
	s.setInt(key, n)
}

// ZoomScale returns the loupe magnification, clamped to a sane range.
func (s *Store) ZoomScale() int32 {
	z := s.intValue(KeyZoomScale, DefaultZoomScale)
	if z < 1 {
		z = 1
	} else if z > 32 {
		z = 32
	}
	return z
}

func (s *Store) SetZoomScale(z int32) { s.setInt(KeyZoomScale, z) }

// ScreenshotDelay returns the delayed-capture countdown in seconds.
func (s *Store) ScreenshotDelay() int32 {
	d := s.intValue(KeyScreenshotDelay, DefaultScreenshotDelay)
	if d < 1 {
		d = 1
	} else if d > MaxScreenshotDelay {
		d = MaxScreenshotDelay
	}
	return d
}

func (s *Store) SetScreenshotDelay(d int32) { s.setInt(KeyScreenshotDelay, d) }

func (s *Store) SaveToClipboard() bool     { return s.boolValue(KeySaveToClipboard, true) }
func (s *Store) SetSaveToClipboard(v bool) { s.setBool(KeySaveToClipboard, v) }

func (s *Store) SaveToFile() bool     { return s.boolValue(KeySaveToFile, true) }
func (s *Store) SetSaveToFile(v bool) { s.setBool(KeySaveToFile, v) }

func (s *Store) AlternateColors() bool     { return s.boolValue(KeyAlternateColors, false) }
func (s *Store) SetAlternateColors(v bool) { s.setBool(KeyAlternateColors, v) }

func (s *Store) ShowDiagnostics() bool     { return s.boolValue(KeyShowDiagnostics, false) }
func (s *Store) SetShowDiagnostics(v bool) { s.setBool(KeyShowDiagnostics, v) }

// OutputFolder returns the screenshot destination. A configured folder that
// does not exist as a directory is ignored in favor of the default.
func (s *Store) OutputFolder() string {
	folder := s.stringValue(KeyOutputFolder, "")
	if folder != "" {
		if fi, err := os.Stat(folder); err == nil && fi.IsDir() {
			return folder
		}
		log.Printf("Configured output folder %q is not a directory, using default", folder)
	}
	return s.defaultFolder
}

func (s *Store) SetOutputFolder(folder string) {
	if s.writer == nil || s.Locked(KeyOutputFolder) {
		return
	}
	if err := s.writer.SetString(KeyOutputFolder, folder); err != nil {
		log.Printf("Failed to persist %s: %v", KeyOutputFolder, err)
	}
}

// Stored returns the persisted selection rectangle. All four coordinates
// must be present, otherwise the selection counts as unset.
func (s *Store) Stored() geom.Rect {
	r := geom.Rect{
		Left:   s.intValue(KeySelectionLeft, geom.Unset),
		Top:    s.intValue(KeySelectionTop, geom.Unset),
		Right:  s.intValue(KeySelectionRight, geom.Unset),
		Bottom: s.intValue(KeySelectionBottom, geom.Unset),
	}
	if !r.IsValid() {
		return geom.UnsetRect()
	}
	return r
}

// SetStored persists the selection, or clears all four coordinates when the
// rectangle is unset.
func (s *Store) SetStored(r geom.Rect) {
	if s.writer == nil {
		return
	}
	if !r.IsValid() {
		for _, key := range []string{KeySelectionLeft, KeySelectionTop, KeySelectionRight, KeySelectionBottom} {
			if err := s.writer.Delete(key); err != nil {
				log.Printf("Failed to clear %s: %v", key, err)
			}
		}
		return
	}
	s.setInt(KeySelectionLeft, r.Left)
	s.setInt(KeySelectionTop, r.Top)
	s.setInt(KeySelectionRight, r.Right)
	s.setInt(KeySelectionBottom, r.Bottom)
}

// LoadEnv pulls a .env file into the process environment so the env layer
// can see it. A missing file is not an error.
func LoadEnv() {
	if err := godotenv.Load(); err == nil {
		log.Printf("Loaded environment overrides from .env")
	}
}

// envProvider reads SCREEN_SNIP_<KEY> variables, with the key upper-cased
// on word boundaries (ZoomScale -> SCREEN_SNIP_ZOOM_SCALE).
type envProvider struct{}

func envName(key string) string {
	var b strings.Builder
	b.WriteString("SCREEN_SNIP_")
	for i, r := range key {
		if i > 0 && r >= 'A' && r <= 'Z' {
			b.WriteByte('_')
		}
		b.WriteRune(r)
	}
	return strings.ToUpper(b.String())
}

func (envProvider) Int(key string) (int32, bool) {
	raw, ok := os.LookupEnv(envName(key))
	if !ok {
		return 0, false
	}
	switch strings.ToLower(raw) {
	case "true", "yes", "on":
		return 1, true
	case "false", "no", "off":
		return 0, true
	}
	v, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return 0, false
	}
	return int32(v), true
}

func (envProvider) String(key string) (string, bool) {
	return os.LookupEnv(envName(key))
}

// MapProvider is an in-memory layer, used in tests and as the user layer on
// platforms without a registry.
type MapProvider struct {
	Ints    map[string]int32
	Strings map[string]string
}

func NewMapProvider() *MapProvider {
	return &MapProvider{Ints: map[string]int32{}, Strings: map[string]string{}}
}

func (m *MapProvider) Int(key string) (int32, bool) {
	v, ok := m.Ints[key]
	return v, ok
}

func (m *MapProvider) String(key string) (string, bool) {
	v, ok := m.Strings[key]
	return v, ok
}

func (m *MapProvider) SetInt(key string, v int32) error {
	m.Ints[key] = v
	return nil
}

func (m *MapProvider) SetString(key, v string) error {
	m.Strings[key] = v
	return nil
}

func (m *MapProvider) Delete(key string) error {
	delete(m.Ints, key)
	delete(m.Strings, key)
	return nil
}
