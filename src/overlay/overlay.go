package overlay

import (
	"context"

	"screen-snip/src/capture"
	"screen-snip/src/geom"
	"screen-snip/src/settings"
)

// Selector defines the synchronous selection-overlay API owned by the event
// loop. The call blocks until the user confirms or cancels and MUST be
// invoked only from the single event-loop goroutine.
// Returns (rect, cancelled, error). If cancelled is true, rect is undefined
// and err is nil. The returned rectangle is normalized bitmap coordinates.
type Selector interface {
	Select(ctx context.Context, cap *capture.Session, cfg *settings.Store) (geom.Rect, bool, error)
}

// NewSelector returns the platform implementation (Windows in this project).
// Implementation is provided in a platform-specific file.
func NewSelector() Selector {
	return newPlatformSelector()
}
