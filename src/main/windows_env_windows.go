//go:build windows

package main

import (
	"log"
	"syscall"
)

// enableDPIAwareness opts the process into per-monitor DPI awareness so the
// overlay maps 1:1 onto physical pixels. Without it the desktop bitmap and
// the window are scaled independently and the selection drifts.
func enableDPIAwareness() {
	shcore := syscall.NewLazyDLL("Shcore.dll")
	setProcessDpiAwareness := shcore.NewProc("SetProcessDpiAwareness")
	const processPerMonitorDPIAware = 2
	if err := setProcessDpiAwareness.Find(); err == nil {
		ret, _, _ := setProcessDpiAwareness.Call(uintptr(processPerMonitorDPIAware))
		if ret != 0 {
			log.Printf("DPI: SetProcessDpiAwareness failed, code %d", ret)
		}
		return
	}

	// Vista fallback.
	user32 := syscall.NewLazyDLL("user32.dll")
	setProcessDPIAware := user32.NewProc("SetProcessDPIAware")
	if err := setProcessDPIAware.Find(); err == nil {
		if ret, _, _ := setProcessDPIAware.Call(); ret == 0 {
			log.Printf("DPI: SetProcessDPIAware failed")
		}
	}
}

// logMonitorConfiguration records the display layout at startup, which is
// the first thing needed when a capture lands on the wrong monitor.
func logMonitorConfiguration() {
	user32 := syscall.NewLazyDLL("user32.dll")
	getSystemMetrics := user32.NewProc("GetSystemMetrics")

	const (
		smCMonitors       = 80
		smXVirtualScreen  = 76
		smYVirtualScreen  = 77
		smCXVirtualScreen = 78
		smCYVirtualScreen = 79
	)

	count, _, _ := getSystemMetrics.Call(uintptr(smCMonitors))
	vx, _, _ := getSystemMetrics.Call(uintptr(smXVirtualScreen))
	vy, _, _ := getSystemMetrics.Call(uintptr(smYVirtualScreen))
	vw, _, _ := getSystemMetrics.Call(uintptr(smCXVirtualScreen))
	vh, _, _ := getSystemMetrics.Call(uintptr(smCYVirtualScreen))

	log.Printf("MONITOR: %d monitors, virtual screen x:%d y:%d w:%d h:%d",
		count, int32(vx), int32(vy), vw, vh)
}
