//go:build windows

package overlay

import (
	"context"
	"fmt"
	"image"
	"log"
	"os"
	"runtime"
	"syscall"
	"time"
	"unsafe"

	"github.com/lxn/win"

	"screen-snip/src/capture"
	"screen-snip/src/geom"
	"screen-snip/src/render"
	"screen-snip/src/selection"
	"screen-snip/src/settings"
	"screen-snip/src/transform"
)

const (
	blinkTimerID      = 1
	keyPollTimerID    = 2
	keyPollIntervalMs = 25
	blinkIntervalMs   = 1000
)

var (
	user32DLL                    = syscall.NewLazyDLL("user32.dll")
	procAllowSetForegroundWindow = user32DLL.NewProc("AllowSetForegroundWindow")
	procGetAsyncKeyState         = user32DLL.NewProc("GetAsyncKeyState")
)

// Overlay session state shared with the window procedure. A wndproc is a
// plain callback, so this cannot live on the selector; only one overlay can
// exist at a time anyway (the event loop serializes sessions).
var ov struct {
	hwnd    win.HWND
	cap     *capture.Session
	cfg     *settings.Store
	state   *selection.State
	pointer geom.Point
	blink   bool
	escDown bool
	result  chan geom.Rect
}

type winSelector struct{}

func newPlatformSelector() Selector { return &winSelector{} }

// Select shows the fullscreen overlay over the captured desktop and runs the
// Win32 message loop until the selection is confirmed or cancelled.
func (s *winSelector) Select(ctx context.Context, cap *capture.Session, cfg *settings.Store) (geom.Rect, bool, error) {
	// The message loop and the window must share one OS thread.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	vx := win.GetSystemMetrics(win.SM_XVIRTUALSCREEN)
	vy := win.GetSystemMetrics(win.SM_YVIRTUALSCREEN)
	bounds := cap.Bounds()
	log.Printf("Overlay: virtual screen origin (%d,%d), bitmap %dx%d", vx, vy, bounds.Width, bounds.Height)

	var pt win.POINT
	win.GetCursorPos(&pt)

	state, eff := selection.New(selection.Config{
		Bounds:      bounds,
		Monitors:    cap.Monitors(),
		Pointer:     cap.ToBitmap(int(pt.X), int(pt.Y)),
		DefaultZoom: cfg.ZoomScale(),
		Sampler:     cap,
		Store:       cfg,
	})

	ov.hwnd = 0
	ov.cap = cap
	ov.cfg = cfg
	ov.state = state
	ov.pointer = cap.ToBitmap(int(pt.X), int(pt.Y))
	ov.blink = false
	ov.escDown = false
	ov.result = make(chan geom.Rect, 1)

	crossCursor := win.LoadCursor(0, win.MAKEINTRESOURCE(win.IDC_CROSS))

	// Unique class name per session so a failed UnregisterClass never
	// blocks the next overlay.
	classNameStr := fmt.Sprintf("SnipOverlay_%d", time.Now().UnixNano())
	className := syscall.StringToUTF16Ptr(classNameStr)
	wndClass := win.WNDCLASSEX{
		CbSize:        uint32(unsafe.Sizeof(win.WNDCLASSEX{})),
		Style:         win.CS_HREDRAW | win.CS_VREDRAW,
		LpfnWndProc:   syscall.NewCallback(overlayWndProc),
		HInstance:     win.GetModuleHandle(nil),
		HCursor:       crossCursor,
		HbrBackground: 0,
		LpszClassName: className,
	}
	if win.RegisterClassEx(&wndClass) == 0 {
		return geom.Rect{}, false, fmt.Errorf("failed to register overlay window class")
	}
	defer win.UnregisterClass(className)

	ov.hwnd = win.CreateWindowEx(
		win.WS_EX_TOPMOST,
		className,
		syscall.StringToUTF16Ptr("Screen Snip"),
		win.WS_POPUP|win.WS_VISIBLE,
		vx, vy, bounds.Width, bounds.Height,
		0, 0, win.GetModuleHandle(nil), nil,
	)
	if ov.hwnd == 0 {
		return geom.Rect{}, false, fmt.Errorf("failed to create overlay window")
	}

	win.ShowWindow(ov.hwnd, win.SW_SHOW)
	procAllowSetForegroundWindow.Call(uintptr(os.Getpid()))
	win.SetForegroundWindow(ov.hwnd)
	win.BringWindowToTop(ov.hwnd)
	win.SetFocus(ov.hwnd)
	win.UpdateWindow(ov.hwnd)

	win.SetTimer(ov.hwnd, blinkTimerID, blinkIntervalMs, 0)
	win.SetTimer(ov.hwnd, keyPollTimerID, keyPollIntervalMs, 0)

	applyEffects(eff)

	var msg win.MSG
	for {
		ret := win.GetMessage(&msg, 0, 0, 0)
		if ret == 0 || ret == -1 { // WM_QUIT or error
			break
		}
		win.TranslateMessage(&msg)
		win.DispatchMessage(&msg)

		select {
		case <-ctx.Done():
			win.DestroyWindow(ov.hwnd)
			return geom.Rect{}, false, ctx.Err()
		case rect := <-ov.result:
			win.DestroyWindow(ov.hwnd)
			log.Printf("Overlay: selection confirmed %+v", rect)
			return rect, false, nil
		default:
		}
	}

	win.DestroyWindow(ov.hwnd)
	log.Printf("Overlay: selection cancelled")
	return geom.Rect{}, true, nil
}

// applyEffects carries out what the state machine asked for.
func applyEffects(eff selection.Effects) {
	if eff.Warp != nil {
		x, y := ov.cap.ToScreen(*eff.Warp)
		win.SetCursorPos(int32(x), int32(y))
		ov.pointer = *eff.Warp
	}
	if eff.Repaint && ov.hwnd != 0 {
		win.InvalidateRect(ov.hwnd, nil, false)
	}
	if eff.Finalized != nil {
		ov.result <- *eff.Finalized
	}
	if eff.Ended {
		win.PostQuitMessage(0)
	}
}

func overlayWndProc(hwnd win.HWND, msg uint32, wParam, lParam uintptr) uintptr {
	switch msg {
	case win.WM_MOUSEMOVE:
		x := int32(int16(win.LOWORD(uint32(lParam))))
		y := int32(int16(win.HIWORD(uint32(lParam))))
		ov.pointer = geom.Point{X: x, Y: y}
		applyEffects(ov.state.PointerMove(geom.Point{X: x, Y: y}))
		return 0

	case win.WM_LBUTTONDOWN:
		applyEffects(ov.state.Confirm())
		return 0

	case win.WM_RBUTTONDOWN:
		applyEffects(ov.state.Cancel())
		return 0

	case win.WM_MOUSEWHEEL:
		delta := int32(int16(win.HIWORD(uint32(wParam)))) / 120
		applyEffects(ov.state.AdjustZoom(delta))
		return 0

	case win.WM_KEYDOWN:
		handleKey(wParam, 1)
		return 0

	case win.WM_SYSKEYDOWN:
		// Arrows and resize keys arrive here when Alt is held; Alt means
		// the large step.
		handleKey(wParam, 10)
		return 0

	case win.WM_TIMER:
		switch wParam {
		case blinkTimerID:
			ov.blink = !ov.blink
			win.InvalidateRect(hwnd, nil, false)
		case keyPollTimerID:
			pollEscape()
		}
		return 0

	case win.WM_PAINT:
		var ps win.PAINTSTRUCT
		hdc := win.BeginPaint(hwnd, &ps)
		paintFrame(hdc)
		win.EndPaint(hwnd, &ps)
		return 0

	case win.WM_NCHITTEST:
		// Everything is client area so the window sees all mouse events.
		return uintptr(win.HTCLIENT)

	case win.WM_DESTROY:
		win.KillTimer(hwnd, blinkTimerID)
		win.KillTimer(hwnd, keyPollTimerID)
		// Do NOT PostQuitMessage here. The success path returns from
		// Select as soon as the result lands, and a leftover WM_QUIT in
		// the thread queue would instantly cancel the next session.
		return 0
	}

	return win.DefWindowProc(hwnd, msg, wParam, lParam)
}

// pollEscape watches Escape via GetAsyncKeyState. Key messages can get lost
// when focus briefly drifts; polling guarantees cancel always works.
func pollEscape() {
	state, _, _ := procGetAsyncKeyState.Call(uintptr(win.VK_ESCAPE))
	down := uint16(state)&0x8000 != 0
	if down && !ov.escDown {
		applyEffects(ov.state.Cancel())
	}
	ov.escDown = down
}

func shiftHeld() bool {
	return uint16(win.GetKeyState(win.VK_SHIFT))&0x8000 != 0
}

func handleKey(wParam uintptr, step int32) {
	st := ov.state
	switch wParam {
	case win.VK_RETURN:
		applyEffects(st.Confirm())
	case win.VK_ESCAPE:
		applyEffects(st.Cancel())
	case win.VK_TAB:
		applyEffects(st.ToggleCorner())

	case win.VK_LEFT:
		if shiftHeld() {
			applyEffects(st.SeekEdge(-1, 0))
		} else {
			applyEffects(st.Nudge(-step, 0))
		}
	case win.VK_RIGHT:
		if shiftHeld() {
			applyEffects(st.SeekEdge(1, 0))
		} else {
			applyEffects(st.Nudge(step, 0))
		}
	case win.VK_UP:
		if shiftHeld() {
			applyEffects(st.SeekEdge(0, -1))
		} else {
			applyEffects(st.Nudge(0, -step))
		}
	case win.VK_DOWN:
		if shiftHeld() {
			applyEffects(st.SeekEdge(0, 1))
		} else {
			applyEffects(st.Nudge(0, step))
		}

	case win.VK_ADD, win.VK_OEM_PLUS:
		applyEffects(st.Resize(step))
	case win.VK_SUBTRACT, win.VK_OEM_MINUS:
		applyEffects(st.Resize(-step))

	case win.VK_PRIOR:
		applyEffects(st.AdjustZoom(1))
	case win.VK_NEXT:
		applyEffects(st.AdjustZoom(-1))

	case win.VK_INSERT:
		applyEffects(st.StoreSelection())
	case win.VK_DELETE:
		applyEffects(st.ClearStored())
	case win.VK_HOME:
		applyEffects(st.Recall())

	case uintptr('A'):
		applyEffects(st.SelectAll())
	case uintptr('M'):
		applyEffects(st.NextMonitor())

	case uintptr('C'):
		ov.cfg.SetSaveToClipboard(!ov.cfg.SaveToClipboard())
		win.InvalidateRect(ov.hwnd, nil, false)
	case uintptr('F'):
		ov.cfg.SetSaveToFile(!ov.cfg.SaveToFile())
		win.InvalidateRect(ov.hwnd, nil, false)
	case uintptr('S'):
		ov.cfg.SetAlternateColors(!ov.cfg.AlternateColors())
		win.InvalidateRect(ov.hwnd, nil, false)
	case win.VK_F1:
		ov.cfg.SetShowDiagnostics(!ov.cfg.ShowDiagnostics())
		win.InvalidateRect(ov.hwnd, nil, false)

	case uintptr('P'):
		if st.Rect().IsValid() {
			transform.Pixelate(ov.cap.Bitmap(), st.Rect(), transform.PixelateFactor)
			applyEffects(st.RestartAtA())
		}
	case uintptr('B'):
		if st.Rect().IsValid() {
			transform.Mark(ov.cap.Bitmap(), st.Rect(), transform.MarkWidth, transform.MarkAlpha)
			applyEffects(st.RestartAtA())
		}
	}
}

// paintFrame renders the overlay into an RGBA buffer and blits it through a
// top-down 32bpp DIB section, converting RGBA to BGRA on the way.
func paintFrame(hdc win.HDC) {
	bounds := ov.cap.Bounds()
	frame := image.NewRGBA(image.Rect(0, 0, int(bounds.Width), int(bounds.Height)))
	render.Draw(frame, render.Input{
		Bitmap:      ov.cap.Bitmap(),
		Mode:        ov.state.Mode(),
		Rect:        ov.state.Rect(),
		Zoom:        ov.state.Zoom(),
		Pointer:     ov.pointer,
		Monitors:    ov.cap.Monitors(),
		Stored:      ov.cfg.Stored(),
		Alternate:   ov.cfg.AlternateColors(),
		Diagnostics: ov.cfg.ShowDiagnostics(),
		Blink:       ov.blink,
	})
	blitRGBA(hdc, frame)
}

func blitRGBA(hdc win.HDC, img *image.RGBA) {
	width := img.Bounds().Dx()
	height := img.Bounds().Dy()

	memDC := win.CreateCompatibleDC(hdc)
	defer win.DeleteDC(memDC)

	bitmapInfo := win.BITMAPINFO{
		BmiHeader: win.BITMAPINFOHEADER{
			BiSize:        uint32(unsafe.Sizeof(win.BITMAPINFOHEADER{})),
			BiWidth:       int32(width),
			BiHeight:      -int32(height), // negative = top-down rows
			BiPlanes:      1,
			BiBitCount:    32,
			BiCompression: win.BI_RGB,
		},
	}

	var pBits unsafe.Pointer
	hBitmap := win.CreateDIBSection(memDC, &bitmapInfo.BmiHeader, win.DIB_RGB_COLORS, &pBits, 0, 0)
	if hBitmap == 0 {
		log.Printf("CreateDIBSection failed for %dx%d frame: 0x%08X", width, height, win.GetLastError())
		return
	}
	defer win.DeleteObject(win.HGDIOBJ(hBitmap))

	oldBitmap := win.SelectObject(memDC, win.HGDIOBJ(hBitmap))
	defer win.SelectObject(memDC, oldBitmap)

	// 32bpp rows are always DWORD aligned, so the DIB stride matches the
	// RGBA stride exactly.
	stride := width * 4
	for y := 0; y < height; y++ {
		row := (*[1 << 29]byte)(unsafe.Pointer(uintptr(pBits) + uintptr(y*stride)))
		si := img.PixOffset(0, y)
		for x := 0; x < width; x++ {
			row[x*4+0] = img.Pix[si+2] // B
			row[x*4+1] = img.Pix[si+1] // G
			row[x*4+2] = img.Pix[si+0] // R
			row[x*4+3] = img.Pix[si+3] // A
			si += 4
		}
	}

	win.BitBlt(hdc, 0, 0, int32(width), int32(height), memDC, 0, 0, win.SRCCOPY)
}
