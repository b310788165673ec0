package session

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"screen-snip/src/capture"
	"screen-snip/src/geom"
	"screen-snip/src/output"
	"screen-snip/src/singleinstance"
)

var ErrSelectionCancelled = errors.New("selection cancelled")

// CaptureFunc snapshots the virtual desktop.
type CaptureFunc func() (*capture.Session, error)

// RegionSelectorFunc runs the overlay and returns the confirmed rectangle,
// or cancelled=true when the user backed out.
type RegionSelectorFunc func(ctx context.Context, cap *capture.Session) (geom.Rect, bool, error)

// DeliverFunc writes the finished capture to its targets.
type DeliverFunc func(ctx context.Context, img image.Image, opts output.Options) (output.Result, error)

// ResultTarget receives the outcome of a session.
type ResultTarget interface {
	OnSuccess(res output.Result) error
	OnFailure(err error) error
}

// Options configures one capture session. Capture and Target are required;
// SelectRegion is required for interactive sessions.
type Options struct {
	// Interactive shows the selection overlay. When false the whole
	// virtual desktop is delivered immediately.
	Interactive bool
	// Delay postpones the snapshot, for capturing transient UI.
	Delay time.Duration
	// Deadline bounds the delivery step. Zero means 20 seconds.
	Deadline time.Duration

	Capture      CaptureFunc
	SelectRegion RegionSelectorFunc
	Deliver      DeliverFunc
	Output       output.Options
	Target       ResultTarget
}

// Execute runs one capture session end to end: optional delay, snapshot,
// optional interactive selection, then delivery. Target callbacks fire on
// every exit path.
func Execute(ctx context.Context, opts Options) (output.Result, error) {
	if opts.Capture == nil {
		return output.Result{}, errors.New("Capture is required")
	}
	if opts.Target == nil {
		return output.Result{}, errors.New("Target is required")
	}
	if opts.Interactive && opts.SelectRegion == nil {
		return output.Result{}, errors.New("SelectRegion is required for interactive sessions")
	}
	if !opts.Output.ToFile && !opts.Output.ToClipboard {
		_ = opts.Target.OnFailure(output.ErrNoTargets)
		return output.Result{}, output.ErrNoTargets
	}

	if opts.Delay > 0 {
		select {
		case <-time.After(opts.Delay):
		case <-ctx.Done():
			_ = opts.Target.OnFailure(ctx.Err())
			return output.Result{}, ctx.Err()
		}
	}

	cap, err := opts.Capture()
	if err != nil {
		_ = opts.Target.OnFailure(err)
		return output.Result{}, err
	}

	var img image.Image = cap.Bitmap()
	if opts.Interactive {
		rect, cancelled, err := opts.SelectRegion(ctx, cap)
		if err != nil {
			_ = opts.Target.OnFailure(err)
			return output.Result{}, err
		}
		if cancelled {
			_ = opts.Target.OnFailure(ErrSelectionCancelled)
			return output.Result{}, ErrSelectionCancelled
		}
		img = capture.Crop(cap.Bitmap(), rect)
	}

	deadline := opts.Deadline
	if deadline <= 0 {
		deadline = 20 * time.Second
	}
	jobCtx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	deliver := opts.Deliver
	if deliver == nil {
		deliver = deliverWithContext
	}

	res, err := deliver(jobCtx, img, opts.Output)
	if err != nil {
		_ = opts.Target.OnFailure(err)
		return res, err
	}

	if err := opts.Target.OnSuccess(res); err != nil {
		_ = opts.Target.OnFailure(err)
		return res, err
	}
	return res, nil
}

// SilentTarget discards outcomes. Used by tests and delegated flows that
// report through their own channel.
type SilentTarget struct{}

func (SilentTarget) OnSuccess(output.Result) error { return nil }
func (SilentTarget) OnFailure(error) error         { return nil }

// DelegatedTarget reports the outcome back over a single-instance connection.
type DelegatedTarget struct {
	Conn singleinstance.Conn
}

func (t DelegatedTarget) OnSuccess(res output.Result) error {
	if t.Conn == nil {
		return errors.New("delegated target missing connection")
	}
	return t.Conn.RespondSuccess(res.Path)
}

func (t DelegatedTarget) OnFailure(err error) error {
	if t.Conn == nil {
		return nil
	}
	if err == nil {
		return t.Conn.RespondError("unknown session error")
	}
	return t.Conn.RespondError(err.Error())
}

// FuncTarget adapts two closures into a ResultTarget.
type FuncTarget struct {
	Success func(res output.Result) error
	Failure func(err error) error
}

func (t FuncTarget) OnSuccess(res output.Result) error {
	if t.Success == nil {
		return nil
	}
	return t.Success(res)
}

func (t FuncTarget) OnFailure(err error) error {
	if t.Failure == nil {
		return nil
	}
	return t.Failure(err)
}

func deliverWithContext(ctx context.Context, img image.Image, opts output.Options) (output.Result, error) {
	type outcome struct {
		res output.Result
		err error
	}
	resCh := make(chan outcome, 1)
	go func() {
		res, err := output.Save(img, opts)
		resCh <- outcome{res: res, err: err}
	}()
	select {
	case r := <-resCh:
		return r.res, r.err
	case <-ctx.Done():
		return output.Result{}, fmt.Errorf("delivery timed out: %w", ctx.Err())
	}
}
