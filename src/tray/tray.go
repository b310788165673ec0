package tray

import (
	"fmt"
	"log"
	"sync"

	"screen-snip/src/settings"

	"github.com/getlantern/systray"
)

// Handlers carries the callbacks invoked from tray menu clicks. All
// funcs are optional; nil entries turn the item into a no-op.
type Handlers struct {
	CaptureRegion  func()
	CaptureDesktop func()
	CaptureDelayed func()
	OpenLast       func()
	OpenFolder     func()
	SelectFolder   func()

	// Autostart state is owned by the registry, not the settings
	// store, so it is queried and toggled through callbacks.
	AutostartEnabled func() bool
	SetAutostart     func(enabled bool) error

	About  func()
	OnExit func()
}

var (
	mu           sync.Mutex
	ready        bool
	tooltip      string
	aboutHotkey  string
	lastPath     string
	mOpenLast    *systray.MenuItem
	mCaptureWait *systray.MenuItem
)

// Run starts the tray icon and blocks until Quit is called. Must run
// on the main goroutine (the tray loop owns it on some platforms).
func Run(cfg *settings.Store, h Handlers) {
	systray.Run(func() { onReady(cfg, h) }, func() {
		if h.OnExit != nil {
			h.OnExit()
		}
	})
}

// Quit tears down the tray icon and unblocks Run.
func Quit() {
	systray.Quit()
}

// UpdateTooltip replaces the tray tooltip. Safe to call before the
// tray is ready; the value is applied once it is.
func UpdateTooltip(s string) {
	mu.Lock()
	defer mu.Unlock()
	tooltip = s
	if ready {
		systray.SetTooltip(s)
	}
}

// SetAboutHotkey records the hotkey shown in menu labels.
func SetAboutHotkey(hotkey string) {
	mu.Lock()
	defer mu.Unlock()
	aboutHotkey = hotkey
}

// SetLastPath records the most recently saved screenshot and enables
// the "Open last screenshot" item.
func SetLastPath(path string) {
	mu.Lock()
	defer mu.Unlock()
	lastPath = path
	if ready && mOpenLast != nil && path != "" {
		mOpenLast.Enable()
	}
}

// LastPath returns the most recently saved screenshot path, if any.
func LastPath() string {
	mu.Lock()
	defer mu.Unlock()
	return lastPath
}

// RefreshDelay updates the delayed-capture label after the delay
// setting changes.
func RefreshDelay(cfg *settings.Store) {
	mu.Lock()
	defer mu.Unlock()
	if ready && mCaptureWait != nil {
		mCaptureWait.SetTitle(fmt.Sprintf("Capture in %d seconds", cfg.ScreenshotDelay()))
	}
}

func onReady(cfg *settings.Store, h Handlers) {
	systray.SetIcon(iconICO)
	systray.SetTitle("Screen Snip")

	mu.Lock()
	if tooltip == "" {
		if aboutHotkey != "" {
			tooltip = fmt.Sprintf("Screen Snip - Press %s to capture", aboutHotkey)
		} else {
			tooltip = "Screen Snip"
		}
	}
	systray.SetTooltip(tooltip)
	mu.Unlock()

	mCapture := systray.AddMenuItem("Capture region", "Select a region of the screen")
	mDesktop := systray.AddMenuItem("Capture full desktop", "Capture all monitors at once")
	mWait := systray.AddMenuItem(fmt.Sprintf("Capture in %d seconds", cfg.ScreenshotDelay()), "Capture the full desktop after a delay")
	systray.AddSeparator()
	mLast := systray.AddMenuItem("Open last screenshot", "Open the most recent screenshot")
	mFolder := systray.AddMenuItem("Open screenshots folder", "Open the output folder")
	mPick := systray.AddMenuItem("Select screenshots folder...", "Choose where screenshots are saved")
	systray.AddSeparator()
	mFile := systray.AddMenuItemCheckbox("Save to file", "Write each capture to a PNG file", cfg.SaveToFile())
	mClip := systray.AddMenuItemCheckbox("Copy to clipboard", "Place each capture on the clipboard", cfg.SaveToClipboard())
	mAuto := systray.AddMenuItemCheckbox("Launch at startup", "Start with Windows", h.AutostartEnabled != nil && h.AutostartEnabled())
	systray.AddSeparator()
	mAbout := systray.AddMenuItem("About", "About Screen Snip")
	mQuit := systray.AddMenuItem("Exit", "Exit the application")

	if cfg.Locked(settings.KeySaveToFile) {
		mFile.Disable()
	}
	if cfg.Locked(settings.KeySaveToClipboard) {
		mClip.Disable()
	}
	if cfg.Locked(settings.KeyOutputFolder) {
		mPick.Disable()
	}

	mu.Lock()
	mOpenLast = mLast
	mCaptureWait = mWait
	if lastPath == "" {
		mLast.Disable()
	}
	ready = true
	mu.Unlock()

	go func() {
		for {
			select {
			case <-mCapture.ClickedCh:
				invoke(h.CaptureRegion)
			case <-mDesktop.ClickedCh:
				invoke(h.CaptureDesktop)
			case <-mWait.ClickedCh:
				invoke(h.CaptureDelayed)
			case <-mLast.ClickedCh:
				invoke(h.OpenLast)
			case <-mFolder.ClickedCh:
				invoke(h.OpenFolder)
			case <-mPick.ClickedCh:
				invoke(h.SelectFolder)
			case <-mFile.ClickedCh:
				toggle(mFile, cfg, settings.KeySaveToFile, cfg.SetSaveToFile)
			case <-mClip.ClickedCh:
				toggle(mClip, cfg, settings.KeySaveToClipboard, cfg.SetSaveToClipboard)
			case <-mAuto.ClickedCh:
				toggleAutostart(mAuto, h)
			case <-mAbout.ClickedCh:
				invoke(h.About)
			case <-mQuit.ClickedCh:
				systray.Quit()
				return
			}
		}
	}()
}

func invoke(f func()) {
	if f != nil {
		f()
	}
}

func toggle(mi *systray.MenuItem, cfg *settings.Store, key string, set func(bool)) {
	if cfg.Locked(key) {
		return
	}
	want := !mi.Checked()
	set(want)
	if want {
		mi.Check()
	} else {
		mi.Uncheck()
	}
}

func toggleAutostart(mi *systray.MenuItem, h Handlers) {
	if h.SetAutostart == nil {
		return
	}
	want := !mi.Checked()
	if err := h.SetAutostart(want); err != nil {
		log.Printf("Failed to update autostart: %v", err)
		return
	}
	if want {
		mi.Check()
	} else {
		mi.Uncheck()
	}
}
