// Package output delivers a finished capture to its targets: a PNG file in
// the screenshot folder, the system clipboard, or both.
package output

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"time"
)

// ErrNoTargets is returned when both delivery targets are disabled.
var ErrNoTargets = errors.New("no output target enabled")

// ErrFileWrite classifies folder-creation and file-write failures so the
// caller can offer a retry with a different folder.
var ErrFileWrite = errors.New("screenshot file write failed")

// Options selects where a capture goes.
type Options struct {
	ToFile      bool
	ToClipboard bool
	// Folder is the destination directory for file output. Created on
	// demand. Empty means the current working directory.
	Folder string
	// Now overrides the timestamp source in tests. Nil means time.Now.
	Now func() time.Time
}

// Result reports what Save produced.
type Result struct {
	// Path is the written file, empty when file output was disabled.
	Path string
	// Clipboard reports whether the capture was placed on the clipboard.
	Clipboard bool
}

// FileName builds the timestamped screenshot name for a local time.
func FileName(t time.Time) string {
	return fmt.Sprintf("Screenshot %04d-%02d-%02d %02d%02d%02d.png",
		t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second())
}

// Save encodes the image once and fans it out to the enabled targets. Both
// targets are attempted; the first failure is returned after the other target
// had its chance.
func Save(img image.Image, opts Options) (Result, error) {
	if !opts.ToFile && !opts.ToClipboard {
		return Result{}, ErrNoTargets
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return Result{}, fmt.Errorf("failed to encode PNG: %w", err)
	}
	data := buf.Bytes()

	var res Result
	var firstErr error

	if opts.ToFile {
		path, err := writeFile(data, opts)
		if err != nil {
			firstErr = err
		} else {
			res.Path = path
			log.Printf("Saved screenshot to %s (%d bytes)", path, len(data))
		}
	}

	if opts.ToClipboard {
		if err := writeClipboard(data); err != nil {
			if firstErr == nil {
				firstErr = err
			}
		} else {
			res.Clipboard = true
			log.Printf("Copied screenshot to clipboard (%d bytes)", len(data))
		}
	}

	return res, firstErr
}

func writeFile(data []byte, opts Options) (string, error) {
	folder := opts.Folder
	if folder != "" {
		if err := os.MkdirAll(folder, 0o755); err != nil {
			return "", fmt.Errorf("%w: %w", ErrFileWrite, err)
		}
	}
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	path := filepath.Join(folder, FileName(now().Local()))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("%w: %w", ErrFileWrite, err)
	}
	return path, nil
}

// DefaultFolder is where screenshots land unless configured otherwise:
// the user's Pictures\Screenshots directory, falling back to the home
// directory when it cannot be resolved.
func DefaultFolder() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, "Pictures", "Screenshots")
}
