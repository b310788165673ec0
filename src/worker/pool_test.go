package worker

import (
	"context"
	"image"
	"os"
	"sync"
	"testing"
	"time"

	"screen-snip/src/output"
)

func TestPoolDeliversToFile(t *testing.T) {
	p := New(1)
	defer p.Close()

	dir := t.TempDir()
	done := make(chan output.Result, 1)
	ok := p.Submit(context.Background(), image.NewRGBA(image.Rect(0, 0, 4, 4)),
		output.Options{ToFile: true, Folder: dir},
		func(res output.Result, err error) {
			if err != nil {
				t.Errorf("delivery failed: %v", err)
			}
			done <- res
		})
	if !ok {
		t.Fatal("submit to idle pool should succeed")
	}

	select {
	case res := <-done:
		if _, err := os.Stat(res.Path); err != nil {
			t.Errorf("saved file missing: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("delivery callback never fired")
	}
}

func TestPoolBackPressure(t *testing.T) {
	p := New(1)
	defer p.Close()

	var wg sync.WaitGroup
	block := make(chan struct{})
	wg.Add(1)
	// First job parks the only worker inside the callback.
	p.Submit(context.Background(), image.NewRGBA(image.Rect(0, 0, 1, 1)),
		output.Options{ToFile: true, Folder: t.TempDir()},
		func(output.Result, error) {
			wg.Done()
			<-block
		})
	wg.Wait()

	// Second job fills the single queue slot.
	if !p.Submit(context.Background(), image.NewRGBA(image.Rect(0, 0, 1, 1)),
		output.Options{ToFile: true, Folder: t.TempDir()},
		func(output.Result, error) {}) {
		t.Fatal("queue slot should accept one pending job")
	}

	// Third submission must be dropped, not block.
	if p.Submit(context.Background(), image.NewRGBA(image.Rect(0, 0, 1, 1)),
		output.Options{ToFile: true, Folder: t.TempDir()},
		func(output.Result, error) {}) {
		t.Error("full queue should drop the job")
	}
	close(block)
}

func TestSaveWithContextHonorsCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := saveWithContext(ctx, image.NewRGBA(image.Rect(0, 0, 1, 1)),
		output.Options{ToFile: true, Folder: t.TempDir()})
	if err != context.Canceled {
		// The save may win the race on a fast machine; only a wrong error
		// kind is a failure.
		if err != nil {
			t.Errorf("err = %v, want context.Canceled or success", err)
		}
	}
}
