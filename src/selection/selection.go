// Package selection implements the rectangle-editing state machine driven by
// the overlay window. It is pure: input events come in, a State mutates, and
// an Effects value tells the caller what to do (repaint, warp the cursor,
// finalize). No OS calls happen here, which keeps the whole machine testable.
package selection

import "screen-snip/src/geom"

// Mode is the editing phase of a session.
type Mode int

const (
	// ModeFirstPoint: only corner A is placed, it tracks the pointer.
	ModeFirstPoint Mode = iota
	// ModeEditA: both corners exist, A is the active one.
	ModeEditA
	// ModeEditB: both corners exist, B is the active one.
	ModeEditB
)

func (m Mode) String() string {
	switch m {
	case ModeFirstPoint:
		return "first point"
	case ModeEditA:
		return "point A"
	case ModeEditB:
		return "point B"
	}
	return "unknown"
}

// Sampler reads a pixel from the captured bitmap.
type Sampler interface {
	PixelAt(p geom.Point) (r, g, b uint8)
}

// Store persists the stored selection across sessions.
type Store interface {
	Stored() geom.Rect
	SetStored(geom.Rect)
}

// Effects tells the overlay what an operation requires of it.
type Effects struct {
	// Warp, when non-nil, is a bitmap position the OS cursor must move to.
	Warp *geom.Point
	// Repaint requests a redraw of the overlay.
	Repaint bool
	// Finalized, when non-nil, is the normalized selection to capture.
	// The session ends.
	Finalized *geom.Rect
	// Ended reports the session was cancelled without a result.
	Ended bool
}

const (
	// MinZoom and MaxZoom bound the loupe magnification.
	MinZoom int32 = 1
	MaxZoom int32 = 32
)

// State is one selection session over a captured bitmap.
type State struct {
	mode   Mode
	rect   geom.Rect
	bounds geom.Bounds

	monitors   []geom.Rect
	monitorIdx int

	zoom        int32
	defaultZoom int32

	lastPointer geom.Point

	sampler Sampler
	store   Store
}

// Config carries everything a new session needs.
type Config struct {
	Bounds      geom.Bounds
	Monitors    []geom.Rect
	Pointer     geom.Point // current cursor position in bitmap coordinates
	DefaultZoom int32
	Sampler     Sampler
	Store       Store
}

// New starts a session. When a valid stored selection exists it is loaded,
// clamped, and editing resumes at corner B; otherwise corner A starts at the
// pointer with the opposite corner unset.
func New(cfg Config) (*State, Effects) {
	zoom := cfg.DefaultZoom
	if zoom < MinZoom {
		zoom = MinZoom
	} else if zoom > MaxZoom {
		zoom = MaxZoom
	}
	s := &State{
		bounds:      cfg.Bounds,
		monitors:    cfg.Monitors,
		monitorIdx:  -1,
		zoom:        zoom,
		defaultZoom: zoom,
		sampler:     cfg.Sampler,
		store:       cfg.Store,
	}

	if stored := s.storedRect(); stored.IsValid() {
		s.rect = cfg.Bounds.ClampRect(stored)
		s.mode = ModeEditB
		b := s.rect.B()
		s.lastPointer = b
		return s, Effects{Warp: &b, Repaint: true}
	}

	p := cfg.Bounds.ClampPoint(cfg.Pointer)
	s.rect = geom.Rect{Left: p.X, Top: p.Y, Right: geom.Unset, Bottom: geom.Unset}
	s.mode = ModeFirstPoint
	s.lastPointer = p
	return s, Effects{Repaint: true}
}

func (s *State) storedRect() geom.Rect {
	if s.store == nil {
		return geom.UnsetRect()
	}
	return s.store.Stored()
}

// Mode returns the current editing phase.
func (s *State) Mode() Mode { return s.mode }

// Rect returns the selection as edited, orientation preserved.
func (s *State) Rect() geom.Rect { return s.rect }

// Zoom returns the loupe magnification.
func (s *State) Zoom() int32 { return s.zoom }

// MonitorIndex returns the index last chosen by NextMonitor, or -1.
func (s *State) MonitorIndex() int { return s.monitorIdx }

// ActiveCorner is the corner the active mode edits.
func (s *State) ActiveCorner() geom.Point {
	if s.mode == ModeEditB {
		return s.rect.B()
	}
	return s.rect.A()
}

func (s *State) setActiveCorner(p geom.Point) {
	if s.mode == ModeEditB {
		s.rect.Right, s.rect.Bottom = p.X, p.Y
	} else {
		s.rect.Left, s.rect.Top = p.X, p.Y
	}
}

// PointerMove updates the active corner from a pointer position. Repeated
// positions are dropped so move floods do not trigger redraws.
func (s *State) PointerMove(p geom.Point) Effects {
	if p == s.lastPointer {
		return Effects{}
	}
	s.lastPointer = p
	s.setActiveCorner(s.bounds.ClampPoint(p))
	return Effects{Repaint: true}
}

// Confirm either promotes the first point into a collapsed rectangle or
// finalizes the selection. A selection collapsed on either axis is refused
// silently and editing continues.
func (s *State) Confirm() Effects {
	if s.mode == ModeFirstPoint {
		s.rect.Right, s.rect.Bottom = s.rect.Left, s.rect.Top
		s.mode = ModeEditB
		s.zoom = s.defaultZoom
		return Effects{Repaint: true}
	}
	if s.rect.Left == s.rect.Right || s.rect.Top == s.rect.Bottom {
		return Effects{}
	}
	n := s.rect.Normalized()
	return Effects{Finalized: &n}
}

// Cancel abandons the session.
func (s *State) Cancel() Effects {
	return Effects{Ended: true}
}

// ToggleCorner switches the active corner between A and B and moves the
// cursor there. It does nothing while only the first point exists.
func (s *State) ToggleCorner() Effects {
	switch s.mode {
	case ModeEditA:
		s.mode = ModeEditB
	case ModeEditB:
		s.mode = ModeEditA
	default:
		return Effects{}
	}
	c := s.ActiveCorner()
	s.lastPointer = c
	return Effects{Warp: &c, Repaint: true}
}

// Nudge moves the active corner by the given delta, clamped to the bitmap,
// and warps the cursor along with it.
func (s *State) Nudge(dx, dy int32) Effects {
	c := s.ActiveCorner()
	c.X = s.bounds.ClampX(c.X + dx)
	c.Y = s.bounds.ClampY(c.Y + dy)
	s.setActiveCorner(c)
	s.lastPointer = c
	return Effects{Warp: &c, Repaint: true}
}

// SeekEdge slides the active corner along one axis while the pixel ahead
// matches the color under the corner, stopping on the last matching pixel.
func (s *State) SeekEdge(dx, dy int32) Effects {
	c := s.ActiveCorner()
	refR, refG, refB := s.sampler.PixelAt(c)
	for {
		next := geom.Point{X: c.X + dx, Y: c.Y + dy}
		if !s.bounds.Contains(next) {
			break
		}
		r, g, b := s.sampler.PixelAt(next)
		if r != refR || g != refG || b != refB {
			break
		}
		c = next
	}
	s.setActiveCorner(c)
	s.lastPointer = c
	return Effects{Warp: &c, Repaint: true}
}

// Resize grows (positive step) or shrinks (negative step) the selection on
// both axes, keeping its center. Shrinking an axis whose span is smaller than
// twice the step collapses it onto its midpoint. The cursor follows the
// active corner.
func (s *State) Resize(step int32) Effects {
	if s.mode == ModeFirstPoint {
		return Effects{}
	}
	if step >= 0 {
		s.growAxis(&s.rect.Left, &s.rect.Right, step)
		s.growAxis(&s.rect.Top, &s.rect.Bottom, step)
	} else {
		s.shrinkAxis(&s.rect.Left, &s.rect.Right, -step)
		s.shrinkAxis(&s.rect.Top, &s.rect.Bottom, -step)
	}
	s.rect = s.bounds.ClampRect(s.rect)
	c := s.ActiveCorner()
	s.lastPointer = c
	return Effects{Warp: &c, Repaint: true}
}

func (s *State) growAxis(lo, hi *int32, step int32) {
	if *lo <= *hi {
		*lo -= step
		*hi += step
	} else {
		*lo += step
		*hi -= step
	}
}

func (s *State) shrinkAxis(lo, hi *int32, step int32) {
	span := *hi - *lo
	if span < 0 {
		span = -span
	}
	if span < 2*step {
		mid := (*lo + *hi) / 2
		*lo, *hi = mid, mid
		return
	}
	if *lo <= *hi {
		*lo += step
		*hi -= step
	} else {
		*lo -= step
		*hi += step
	}
}

// SelectAll covers the entire bitmap. The cursor stays where it is.
func (s *State) SelectAll() Effects {
	s.rect = geom.Rect{Left: 0, Top: 0, Right: s.bounds.Width - 1, Bottom: s.bounds.Height - 1}
	s.mode = ModeEditB
	return Effects{Repaint: true}
}

// NextMonitor cycles the selection through the monitors, one full monitor at
// a time, and warps the cursor to corner B.
func (s *State) NextMonitor() Effects {
	if len(s.monitors) == 0 {
		return Effects{}
	}
	s.monitorIdx = (s.monitorIdx + 1) % len(s.monitors)
	s.rect = s.monitors[s.monitorIdx]
	s.mode = ModeEditB
	b := s.rect.B()
	s.lastPointer = b
	return Effects{Warp: &b, Repaint: true}
}

// StoreSelection persists the current selection when it is complete.
func (s *State) StoreSelection() Effects {
	if s.store == nil || !s.rect.IsValid() {
		return Effects{}
	}
	s.store.SetStored(s.rect)
	return Effects{Repaint: true}
}

// ClearStored erases the persisted selection and restarts the session at the
// current pointer position.
func (s *State) ClearStored() Effects {
	if s.store != nil {
		s.store.SetStored(geom.UnsetRect())
	}
	p := s.bounds.ClampPoint(s.lastPointer)
	s.rect = geom.Rect{Left: p.X, Top: p.Y, Right: geom.Unset, Bottom: geom.Unset}
	s.mode = ModeFirstPoint
	return Effects{Repaint: true}
}

// Recall loads the persisted selection, clamped to the bitmap, and resumes
// editing at corner B. Without a valid stored selection it does nothing.
func (s *State) Recall() Effects {
	stored := s.storedRect()
	if !stored.IsValid() {
		return Effects{}
	}
	s.rect = s.bounds.ClampRect(stored)
	s.mode = ModeEditB
	b := s.rect.B()
	s.lastPointer = b
	return Effects{Warp: &b, Repaint: true}
}

// AdjustZoom changes the loupe magnification, clamped to [MinZoom, MaxZoom].
func (s *State) AdjustZoom(delta int32) Effects {
	z := s.zoom + delta
	if z < MinZoom {
		z = MinZoom
	} else if z > MaxZoom {
		z = MaxZoom
	}
	if z == s.zoom {
		return Effects{}
	}
	s.zoom = z
	return Effects{Repaint: true}
}

// RestartAtA drops corner B and returns to first-point editing at corner A.
// Used after an in-place transform so a new area can be picked on the
// modified bitmap.
func (s *State) RestartAtA() Effects {
	a := s.bounds.ClampPoint(s.rect.A())
	s.rect = geom.Rect{Left: a.X, Top: a.Y, Right: geom.Unset, Bottom: geom.Unset}
	s.mode = ModeFirstPoint
	s.lastPointer = a
	return Effects{Warp: &a, Repaint: true}
}
