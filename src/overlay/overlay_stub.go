//go:build !windows

package overlay

import (
	"context"
	"fmt"

	"screen-snip/src/capture"
	"screen-snip/src/geom"
	"screen-snip/src/settings"
)

type stubSelector struct{}

func newPlatformSelector() Selector { return &stubSelector{} }

func (s *stubSelector) Select(context.Context, *capture.Session, *settings.Store) (geom.Rect, bool, error) {
	return geom.Rect{}, false, fmt.Errorf("interactive selection is only supported on Windows")
}
