package editor

import (
	"github.com/fatih/color"

	"github.com/quillkit/quill/internal/buffer"
	"github.com/quillkit/quill/internal/editorconfig"
)

// Theme resolves a buffer.TokenType to the fatih/color attributes a
// terminal client paints it with, and carries the display settings
// (tab width, wrapping, animated scroll) editorconfig.ThemeConfig holds.
type Theme struct {
	editorconfig.ThemeConfig

	palette map[buffer.TokenType]*color.Color
}

// NewTheme builds a Theme from cfg, installing the built-in palette. A
// zero-value cfg still produces usable (if minimal) styling.
func NewTheme(cfg editorconfig.ThemeConfig) *Theme {
	return &Theme{
		ThemeConfig: cfg,
		palette:     defaultPalette(),
	}
}

func defaultPalette() map[buffer.TokenType]*color.Color {
	return map[buffer.TokenType]*color.Color{
		buffer.TokenDefault:     color.New(color.FgWhite),
		buffer.TokenIdentifier:  color.New(color.FgWhite),
		buffer.TokenKeyword:     color.New(color.FgMagenta, color.Bold),
		buffer.TokenString:      color.New(color.FgGreen),
		buffer.TokenComment:     color.New(color.FgHiBlack),
		buffer.TokenPunctuation: color.New(color.FgCyan),
		buffer.TokenOpenPair:    color.New(color.FgYellow, color.Bold),
		buffer.TokenClosePair:   color.New(color.FgYellow, color.Bold),
		buffer.TokenNumber:      color.New(color.FgBlue),
		buffer.TokenCustom:      color.New(color.FgWhite),
	}
}

// Color returns the color attached to t, defaulting to the plain-text
// color if t has no entry (a tokenizer reporting an out-of-range type).
func (th *Theme) Color(t buffer.TokenType) *color.Color {
	if c, ok := th.palette[t]; ok {
		return c
	}

	return th.palette[buffer.TokenDefault]
}

// SetColor overrides the color for a single token type, letting a loaded
// theme file (named by ThemeConfig.Name) customize the built-in palette.
func (th *Theme) SetColor(t buffer.TokenType, c *color.Color) {
	th.palette[t] = c
}
