package installer

import "github.com/gookit/color"

// Debug enables verbose diagnostics. Set via RUSTC_NPM_DEBUG=1.
var Debug bool

// color helpers
var (
	colWarn    = color.Warn
	colSuccess = color.HEX("#1976D2")
	colArrow   = color.HEX("#FFEB3B")
)
