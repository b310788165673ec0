package worker

import (
	"context"
	"image"
	"log"
	"runtime"
	"sync"

	"screen-snip/src/output"
)

// ResultCallback is invoked when a delivery finishes (from a worker
// goroutine). The event loop should pass a closure that posts back into the
// event loop safely.
type ResultCallback func(res output.Result, err error)

// Pool is a fixed-size delivery worker pool with a 1-slot input queue
// (strict back-pressure). PNG encoding of a full-desktop capture is the
// slow part; it must never block the overlay or the tray.
type Pool struct {
	jobs   chan job
	wg     sync.WaitGroup
	mu     sync.Mutex
	closed bool
}

type job struct {
	ctx  context.Context
	img  image.Image
	opts output.Options
	cb   ResultCallback
}

// New creates a worker pool. Size defaults to NumCPU when size<=0. Queue is 1 slot.
func New(size int) *Pool {
	if size <= 0 {
		size = runtime.NumCPU()
	}
	p := &Pool{jobs: make(chan job, 1)}
	p.start(size)
	return p
}

func (p *Pool) start(n int) {
	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for j := range p.jobs {
				b := j.img.Bounds()
				log.Printf("Worker: Delivering %dx%d capture (file=%v clipboard=%v)",
					b.Dx(), b.Dy(), j.opts.ToFile, j.opts.ToClipboard)
				res, err := saveWithContext(j.ctx, j.img, j.opts)
				log.Printf("Worker: Delivery completed, path=%q clipboard=%v, err=%v",
					res.Path, res.Clipboard, err)
				j.cb(res, err)
			}
		}()
	}
}

// Submit enqueues a delivery job if the single-slot queue is free. Returns
// false if dropped or if the pool is closed.
func (p *Pool) Submit(ctx context.Context, img image.Image, opts output.Options, cb ResultCallback) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return false
	}
	select {
	case p.jobs <- job{ctx: ctx, img: img, opts: opts, cb: cb}:
		return true
	default:
		return false
	}
}

// Close stops the pool after draining current work.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.jobs)
	p.mu.Unlock()
	p.wg.Wait()
}

// saveWithContext runs output.Save but stops waiting when the context
// expires. The underlying write is allowed to finish in the background.
func saveWithContext(ctx context.Context, img image.Image, opts output.Options) (output.Result, error) {
	if ctx == nil || ctx.Done() == nil {
		return output.Save(img, opts)
	}
	type outcome struct {
		res output.Result
		err error
	}
	resCh := make(chan outcome, 1)
	go func() {
		res, err := output.Save(img, opts)
		resCh <- outcome{res, err}
	}()
	select {
	case r := <-resCh:
		return r.res, r.err
	case <-ctx.Done():
		return output.Result{}, ctx.Err()
	}
}
