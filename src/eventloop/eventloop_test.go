package eventloop

import (
	"context"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"screen-snip/src/capture"
	"screen-snip/src/geom"
	"screen-snip/src/output"
	"screen-snip/src/settings"
	"screen-snip/src/singleinstance"
)

func testStore(t *testing.T) (*settings.Store, string) {
	t.Helper()
	folder := t.TempDir()
	user := settings.NewMapProvider()
	s := settings.New(nil, nil, user, user, folder)
	s.SetSaveToClipboard(false)
	s.SetOutputFolder(folder)
	return s, folder
}

func fakeCapture() (*capture.Session, error) {
	img := image.NewRGBA(image.Rect(0, 0, 12, 8))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	img.SetRGBA(3, 3, color.RGBA{R: 10, G: 20, B: 30, A: 255})
	monitors := []geom.Rect{{Left: 0, Top: 0, Right: 11, Bottom: 7}}
	return capture.NewSession(img, monitors, image.Point{}), nil
}

func startLoop(t *testing.T, l *Loop) context.CancelFunc {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Errorf("loop did not stop")
		}
	})
	// Give the server a moment to bind.
	time.Sleep(50 * time.Millisecond)
	return cancel
}

func waitForPNG(t *testing.T, folder string) string {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		entries, err := os.ReadDir(folder)
		if err == nil {
			for _, e := range entries {
				if strings.HasSuffix(e.Name(), ".png") {
					return filepath.Join(folder, e.Name())
				}
			}
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("no PNG appeared in %s", folder)
	return ""
}

type fakeSelector struct {
	called chan struct{}
}

func (f *fakeSelector) Select(ctx context.Context, cap *capture.Session, cfg *settings.Store) (geom.Rect, bool, error) {
	select {
	case f.called <- struct{}{}:
	default:
	}
	return geom.Rect{Left: 1, Top: 1, Right: 8, Bottom: 6}, false, nil
}

func TestDesktopCommandWritesFile(t *testing.T) {
	cfg, folder := testStore(t)
	l := New(cfg)
	l.captureFn = fakeCapture
	startLoop(t, l)

	l.Post(CmdDesktop)
	waitForPNG(t, folder)
}

func TestDelayedCommandOpensSelection(t *testing.T) {
	cfg, folder := testStore(t)
	cfg.SetScreenshotDelay(1)
	l := New(cfg)
	l.captureFn = fakeCapture
	sel := &fakeSelector{called: make(chan struct{}, 1)}
	l.selector = sel
	startLoop(t, l)

	start := time.Now()
	l.Post(CmdDelayed)
	waitForPNG(t, folder)
	if elapsed := time.Since(start); elapsed < time.Second {
		t.Errorf("capture finished after %v, want the configured delay honored", elapsed)
	}
	select {
	case <-sel.called:
	case <-time.After(time.Second):
		t.Fatal("delayed capture never opened the selection overlay")
	}
}

func TestDelegatedDesktopCaptureReturnsPath(t *testing.T) {
	cfg, folder := testStore(t)
	l := New(cfg)
	l.captureFn = fakeCapture
	startLoop(t, l)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	delegated, detail, err := singleinstance.NewClient().TryCapture(ctx, false)
	if err != nil {
		t.Fatalf("TryCapture: %v", err)
	}
	if !delegated {
		t.Fatalf("expected a resident to answer")
	}
	if !strings.HasPrefix(detail, folder) || !strings.HasSuffix(detail, ".png") {
		t.Errorf("detail = %q, want a PNG path under %s", detail, folder)
	}
	if _, err := os.Stat(detail); err != nil {
		t.Errorf("reported file missing: %v", err)
	}
}

func TestBusyRejectsDelegatedRequest(t *testing.T) {
	cfg, _ := testStore(t)
	l := New(cfg)
	release := make(chan struct{})
	l.captureFn = func() (*capture.Session, error) {
		<-release
		return fakeCapture()
	}
	startLoop(t, l)

	l.Post(CmdDesktop)
	time.Sleep(100 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	delegated, _, err := singleinstance.NewClient().TryCapture(ctx, false)
	if !delegated {
		t.Fatalf("expected a resident to answer")
	}
	if err == nil || !strings.Contains(err.Error(), "in progress") {
		t.Errorf("err = %v, want busy rejection", err)
	}
	close(release)
	// Let the parked session finish before the loop is torn down.
	time.Sleep(200 * time.Millisecond)
}

func TestDeliverRetriesWithPickedFolder(t *testing.T) {
	cfg, _ := testStore(t)
	good := t.TempDir()
	blocker := filepath.Join(t.TempDir(), "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	l := New(cfg)
	defer l.pool.Close()
	picked := false
	l.pickFolder = func(title string) (string, bool) {
		picked = true
		return good, true
	}

	sess, err := fakeCapture()
	if err != nil {
		t.Fatalf("fakeCapture: %v", err)
	}
	res, err := l.deliver(context.Background(), sess.Bitmap(), output.Options{
		ToFile: true,
		Folder: filepath.Join(blocker, "sub"),
	})
	if err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if !picked {
		t.Fatal("folder picker was not consulted")
	}
	if !strings.HasPrefix(res.Path, good) {
		t.Errorf("path = %q, want file under %s", res.Path, good)
	}
	if folder := cfg.OutputFolder(); folder != good {
		t.Errorf("OutputFolder = %q, want %q", folder, good)
	}
}

func TestHotkeyQueueNeverBlocks(t *testing.T) {
	cfg, _ := testStore(t)
	l := New(cfg)
	for i := 0; i < 20; i++ {
		l.HotkeyPressed()
	}
}
