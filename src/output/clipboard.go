package output

import (
	"fmt"
	"sync"

	"golang.design/x/clipboard"
)

var clipboardInit sync.Once
var clipboardErr error

// writeClipboard places PNG bytes on the system clipboard as an image.
func writeClipboard(data []byte) error {
	clipboardInit.Do(func() {
		clipboardErr = clipboard.Init()
	})
	if clipboardErr != nil {
		return fmt.Errorf("clipboard unavailable: %w", clipboardErr)
	}
	clipboard.Write(clipboard.FmtImage, data)
	return nil
}
