package settings

import (
	"testing"

	"screen-snip/src/geom"
)

func newTestStore(policy, recommended, user *MapProvider) *Store {
	var policyLayers, recLayers []Provider
	if policy != nil {
		policyLayers = []Provider{policy}
	}
	if recommended != nil {
		recLayers = []Provider{recommended}
	}
	var userLayer Provider
	var writer Writer
	if user != nil {
		userLayer = user
		writer = user
	}
	return New(policyLayers, recLayers, userLayer, writer, "/tmp/shots")
}

func TestBuiltinDefaults(t *testing.T) {
	s := newTestStore(nil, nil, NewMapProvider())
	if got := s.ZoomScale(); got != DefaultZoomScale {
		t.Errorf("ZoomScale = %d, want %d", got, DefaultZoomScale)
	}
	if got := s.ScreenshotDelay(); got != DefaultScreenshotDelay {
		t.Errorf("ScreenshotDelay = %d, want %d", got, DefaultScreenshotDelay)
	}
	if !s.SaveToClipboard() || !s.SaveToFile() {
		t.Error("both save targets should default to enabled")
	}
	if s.AlternateColors() || s.ShowDiagnostics() {
		t.Error("alternate colors and diagnostics should default to off")
	}
}

func TestLayerPrecedence(t *testing.T) {
	policy := NewMapProvider()
	recommended := NewMapProvider()
	user := NewMapProvider()
	recommended.Ints[KeyZoomScale] = 8
	user.Ints[KeyZoomScale] = 16

	cases := []struct {
		name  string
		store *Store
		want  int32
	}{
		{"recommended beats user", newTestStore(nil, recommended, user), 8},
		{"policy beats recommended", func() *Store {
			policy.Ints[KeyZoomScale] = 2
			return newTestStore(policy, recommended, user)
		}(), 2},
		{"user beats builtin", newTestStore(nil, nil, user), 16},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.store.ZoomScale(); got != tc.want {
				t.Errorf("ZoomScale = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestPolicyLocksWrites(t *testing.T) {
	policy := NewMapProvider()
	policy.Ints[KeySaveToFile] = 0
	user := NewMapProvider()

	s := newTestStore(policy, nil, user)
	if !s.Locked(KeySaveToFile) {
		t.Fatal("key set by policy should report locked")
	}
	if s.Locked(KeySaveToClipboard) {
		t.Error("key absent from policy should not report locked")
	}

	s.SetSaveToFile(true)
	if _, ok := user.Ints[KeySaveToFile]; ok {
		t.Error("write to a locked key must not reach the user layer")
	}
	if s.SaveToFile() {
		t.Error("policy value must win over the attempted write")
	}
}

func TestZoomScaleClamped(t *testing.T) {
	user := NewMapProvider()
	s := newTestStore(nil, nil, user)
	cases := []struct {
		raw, want int32
	}{
		{0, 1},
		{-5, 1},
		{4, 4},
		{32, 32},
		{100, 32},
	}
	for _, tc := range cases {
		user.Ints[KeyZoomScale] = tc.raw
		if got := s.ZoomScale(); got != tc.want {
			t.Errorf("ZoomScale(raw %d) = %d, want %d", tc.raw, got, tc.want)
		}
	}
}

func TestScreenshotDelayClamped(t *testing.T) {
	user := NewMapProvider()
	s := newTestStore(nil, nil, user)
	user.Ints[KeyScreenshotDelay] = 300
	if got := s.ScreenshotDelay(); got != MaxScreenshotDelay {
		t.Errorf("ScreenshotDelay = %d, want %d", got, MaxScreenshotDelay)
	}
	user.Ints[KeyScreenshotDelay] = 0
	if got := s.ScreenshotDelay(); got != 1 {
		t.Errorf("ScreenshotDelay = %d, want 1", got)
	}
}

func TestStoredSelectionRoundTrip(t *testing.T) {
	user := NewMapProvider()
	s := newTestStore(nil, nil, user)

	if s.Stored().IsValid() {
		t.Fatal("fresh store should have no selection")
	}

	r := geom.Rect{Left: 10, Top: 20, Right: 300, Bottom: 400}
	s.SetStored(r)
	if got := s.Stored(); got != r {
		t.Errorf("Stored = %+v, want %+v", got, r)
	}

	s.SetStored(geom.UnsetRect())
	if s.Stored().IsValid() {
		t.Error("clearing should remove all four coordinates")
	}
	if len(user.Ints) != 0 {
		t.Errorf("user layer still holds %d values after clear", len(user.Ints))
	}
}

func TestStoredSelectionPartialIsUnset(t *testing.T) {
	user := NewMapProvider()
	user.Ints[KeySelectionLeft] = 10
	user.Ints[KeySelectionTop] = 20
	// Right and Bottom missing.
	s := newTestStore(nil, nil, user)
	if s.Stored().IsValid() {
		t.Error("a partial selection must count as unset")
	}
}

func TestOutputFolderFallsBackWhenMissing(t *testing.T) {
	user := NewMapProvider()
	user.Strings[KeyOutputFolder] = "/definitely/not/a/real/folder"
	s := newTestStore(nil, nil, user)
	if got := s.OutputFolder(); got != "/tmp/shots" {
		t.Errorf("OutputFolder = %q, want fallback default", got)
	}
}

func TestOutputFolderUsesExistingDir(t *testing.T) {
	dir := t.TempDir()
	user := NewMapProvider()
	user.Strings[KeyOutputFolder] = dir
	s := newTestStore(nil, nil, user)
	if got := s.OutputFolder(); got != dir {
		t.Errorf("OutputFolder = %q, want %q", got, dir)
	}
}

func TestEnvNameMapping(t *testing.T) {
	cases := []struct {
		key, want string
	}{
		{KeyZoomScale, "SCREEN_SNIP_ZOOM_SCALE"},
		{KeyOutputFolder, "SCREEN_SNIP_OUTPUT_FOLDER"},
		{KeySaveToClipboard, "SCREEN_SNIP_SAVE_TO_CLIPBOARD"},
	}
	for _, tc := range cases {
		if got := envName(tc.key); got != tc.want {
			t.Errorf("envName(%s) = %q, want %q", tc.key, got, tc.want)
		}
	}
}

func TestEnvOverridesBuiltinNotUser(t *testing.T) {
	t.Setenv("SCREEN_SNIP_ZOOM_SCALE", "12")
	user := NewMapProvider()
	s := newTestStore(nil, nil, user)
	if got := s.ZoomScale(); got != 12 {
		t.Errorf("ZoomScale = %d, want env override 12", got)
	}
	user.Ints[KeyZoomScale] = 6
	if got := s.ZoomScale(); got != 6 {
		t.Errorf("ZoomScale = %d, want user value over env", got)
	}
}

func TestEnvBooleanWords(t *testing.T) {
	t.Setenv("SCREEN_SNIP_SAVE_TO_FILE", "off")
	s := newTestStore(nil, nil, NewMapProvider())
	if s.SaveToFile() {
		t.Error("SAVE_TO_FILE=off should disable file output")
	}
}
