package eventloop

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"time"

	"screen-snip/src/capture"
	"screen-snip/src/dialog"
	"screen-snip/src/geom"
	"screen-snip/src/notification"
	"screen-snip/src/output"
	"screen-snip/src/overlay"
	"screen-snip/src/session"
	"screen-snip/src/settings"
	"screen-snip/src/singleinstance"
	"screen-snip/src/tray"
	"screen-snip/src/worker"
)

// Command is a capture request posted from the tray menu.
type Command int

const (
	// CmdRegion opens the selection overlay.
	CmdRegion Command = iota
	// CmdDesktop captures the full virtual desktop immediately.
	CmdDesktop
	// CmdDelayed opens the selection overlay after the configured delay,
	// giving the user time to stage transient UI before selecting.
	CmdDelayed
)

// Loop is the single-threaded coordinator for hotkey, tray, and
// delegated (IPC) capture flows. At most one session runs at a time.
type Loop struct {
	cfg       *settings.Store
	selector  overlay.Selector
	pool      *worker.Pool
	srv       singleinstance.Server
	captureFn session.CaptureFunc

	// pickFolder prompts for a replacement output folder after a file
	// write failure. Swappable in tests.
	pickFolder func(title string) (string, bool)

	busy           bool
	hotkeyCh       chan struct{}
	commands       chan Command
	conns          chan singleinstance.Conn
	results        chan result
	defaultTooltip string
}

type request struct {
	interactive bool
	delay       time.Duration
	conn        singleinstance.Conn
}

type result struct {
	res  output.Result
	err  error
	conn singleinstance.Conn
}

// New creates the loop with its worker pool and single-instance server.
func New(cfg *settings.Store) *Loop {
	return &Loop{
		cfg:        cfg,
		selector:   overlay.NewSelector(),
		pool:       worker.New(0),
		srv:        singleinstance.NewServer(),
		captureFn:  capture.Start,
		pickFolder: dialog.SelectFolder,
		hotkeyCh:   make(chan struct{}, 4),
		commands:   make(chan Command, 4),
		conns:      make(chan singleinstance.Conn, 4),
		results:    make(chan result, 4),
	}
}

// SetDefaultTooltip sets the tray tooltip restored after each session.
func (l *Loop) SetDefaultTooltip(s string) {
	l.defaultTooltip = s
}

// HotkeyPressed posts a hotkey event. Never blocks; bursts beyond the
// buffer are dropped because a session is already pending.
func (l *Loop) HotkeyPressed() {
	select {
	case l.hotkeyCh <- struct{}{}:
	default:
		log.Printf("Hotkey event dropped (queue full)")
	}
}

// Post queues a tray command. Never blocks.
func (l *Loop) Post(cmd Command) {
	select {
	case l.commands <- cmd:
	default:
		log.Printf("Tray command %d dropped (queue full)", cmd)
	}
}

// Run owns the single-instance endpoint and dispatches capture requests
// until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	if err := l.srv.Start(ctx); err != nil {
		return fmt.Errorf("single-instance server: %w", err)
	}
	defer l.srv.Close()
	defer l.pool.Close()
	log.Printf("Event loop running, IPC port %d", l.srv.Port())

	go l.acceptLoop(ctx)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-l.hotkeyCh:
			l.startRequest(ctx, request{interactive: true})
		case cmd := <-l.commands:
			l.startRequest(ctx, l.requestFor(cmd))
		case conn := <-l.conns:
			l.startRequest(ctx, request{
				interactive: conn.Request().Interactive,
				conn:        conn,
			})
		case r := <-l.results:
			l.finishRequest(r)
		}
	}
}

func (l *Loop) acceptLoop(ctx context.Context) {
	for {
		conn, err := l.srv.Next(ctx)
		if err != nil {
			if ctx.Err() == nil {
				log.Printf("Accept loop stopped: %v", err)
			}
			return
		}
		select {
		case l.conns <- conn:
		case <-ctx.Done():
			conn.Close()
			return
		}
	}
}

func (l *Loop) requestFor(cmd Command) request {
	switch cmd {
	case CmdRegion:
		return request{interactive: true}
	case CmdDelayed:
		return request{
			interactive: true,
			delay:       time.Duration(l.cfg.ScreenshotDelay()) * time.Second,
		}
	default:
		return request{}
	}
}

// startRequest launches one session goroutine. Rejected immediately when
// a session is already running.
func (l *Loop) startRequest(ctx context.Context, rq request) {
	if l.busy {
		log.Printf("Capture request rejected: session in progress")
		if rq.conn != nil {
			_ = rq.conn.RespondError("capture already in progress")
			rq.conn.Close()
		}
		return
	}
	l.busy = true
	tray.UpdateTooltip("Screen Snip - capturing...")

	opts := session.Options{
		Interactive: rq.interactive,
		Delay:       rq.delay,
		Capture:     l.captureFn,
		SelectRegion: func(ctx context.Context, cap *capture.Session) (geom.Rect, bool, error) {
			return l.selector.Select(ctx, cap, l.cfg)
		},
		Deliver: l.deliver,
		Output: output.Options{
			ToFile:      l.cfg.SaveToFile(),
			ToClipboard: l.cfg.SaveToClipboard(),
			Folder:      l.cfg.OutputFolder(),
		},
		Target: session.FuncTarget{
			Success: func(res output.Result) error {
				l.results <- result{res: res, conn: rq.conn}
				return nil
			},
			Failure: func(err error) error {
				l.results <- result{err: err, conn: rq.conn}
				return nil
			},
		},
	}

	go func() {
		_, _ = session.Execute(ctx, opts)
	}()
}

// finishRequest runs back on the loop goroutine.
func (l *Loop) finishRequest(r result) {
	l.busy = false
	tray.UpdateTooltip(l.defaultTooltip)

	if r.conn != nil {
		if r.err != nil {
			_ = r.conn.RespondError(r.err.Error())
		} else {
			_ = r.conn.RespondSuccess(r.res.Path)
		}
		r.conn.Close()
		return
	}

	switch {
	case r.err == nil:
		if r.res.Path != "" {
			tray.SetLastPath(r.res.Path)
		}
		notification.NotifySaved(r.res.Path, r.res.Clipboard)
	case errors.Is(r.err, session.ErrSelectionCancelled):
		log.Printf("Selection cancelled")
	case errors.Is(r.err, output.ErrNoTargets):
		notification.NotifyNoTargets()
	case errors.Is(r.err, context.Canceled):
		log.Printf("Capture aborted: %v", r.err)
	default:
		log.Printf("Capture failed: %v", r.err)
		notification.Notify("Capture failed", r.err.Error())
	}
}

// deliver hands the finished image to the worker pool and waits for the
// outcome, so PNG encoding never runs on the overlay thread. A file write
// failure offers one retry with a user-chosen folder.
func (l *Loop) deliver(ctx context.Context, img image.Image, opts output.Options) (output.Result, error) {
	res, err := l.submitAndWait(ctx, img, opts)
	if err != nil && errors.Is(err, output.ErrFileWrite) && l.pickFolder != nil {
		folder, ok := l.pickFolder("Saving failed. Select a different screenshots folder")
		if !ok {
			return res, err
		}
		l.cfg.SetOutputFolder(folder)
		opts.Folder = l.cfg.OutputFolder()
		return l.submitAndWait(ctx, img, opts)
	}
	return res, err
}

func (l *Loop) submitAndWait(ctx context.Context, img image.Image, opts output.Options) (output.Result, error) {
	type outcome struct {
		res output.Result
		err error
	}
	ch := make(chan outcome, 1)
	ok := l.pool.Submit(ctx, img, opts, func(res output.Result, err error) {
		ch <- outcome{res: res, err: err}
	})
	if !ok {
		return output.Result{}, errors.New("delivery queue is full")
	}
	select {
	case o := <-ch:
		return o.res, o.err
	case <-ctx.Done():
		return output.Result{}, ctx.Err()
	}
}
