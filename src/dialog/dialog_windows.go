//go:build windows

package dialog

import (
	"syscall"

	"github.com/lxn/win"
)

// Win32 BIF_* browse-dialog flags; lxn/win does not export them.
const (
	bifReturnOnlyFSDirs = 0x00000001 // BIF_RETURNONLYFSDIRS
	bifEditBox          = 0x00000010 // BIF_EDITBOX
	bifNewDialogStyle   = 0x00000040 // BIF_NEWDIALOGSTYLE
)

// SelectFolder shows the shell folder-browse dialog and returns the
// chosen path. ok is false when the user dismissed the dialog.
func SelectFolder(title string) (path string, ok bool) {
	titlePtr, err := syscall.UTF16PtrFromString(title)
	if err != nil {
		return "", false
	}

	bi := win.BROWSEINFO{
		LpszTitle: titlePtr,
		UlFlags:   bifReturnOnlyFSDirs | bifEditBox | bifNewDialogStyle,
	}
	pidl := win.SHBrowseForFolder(&bi)
	if pidl == 0 {
		return "", false
	}
	defer win.CoTaskMemFree(pidl)

	buf := make([]uint16, win.MAX_PATH)
	if !win.SHGetPathFromIDList(pidl, &buf[0]) {
		return "", false
	}
	return syscall.UTF16ToString(buf), true
}
