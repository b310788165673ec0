//go:build windows

package notification

import (
	"fmt"
	"syscall"
	"unsafe"

	"github.com/go-toast/toast"
)

func show(title, message string) error {
	n := toast.Notification{
		AppID:   "Screen Snip",
		Title:   title,
		Message: message,
	}
	return n.Push()
}

var (
	user32         = syscall.NewLazyDLL("user32.dll")
	procMessageBox = user32.NewProc("MessageBoxW")
)

const (
	mbOK        = 0x00000000
	mbIconError = 0x00000010
)

// ShowBlockingError presents a modal error box. Used for startup failures
// when no tray icon exists yet.
func ShowBlockingError(title, message string) {
	t, err1 := syscall.UTF16PtrFromString(title)
	m, err2 := syscall.UTF16PtrFromString(message)
	if err1 != nil || err2 != nil {
		fmt.Println(title + ": " + message)
		return
	}
	procMessageBox.Call(0, uintptr(unsafe.Pointer(m)), uintptr(unsafe.Pointer(t)), mbOK|mbIconError)
}
