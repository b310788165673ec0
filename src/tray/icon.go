package tray

import (
	_ "embed"
)

// 16x16 32bpp icon: selection frame in the accent color with
// corner handles in the alternate color.
//
//go:embed icon.ico
var iconICO []byte
