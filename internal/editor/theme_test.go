package editor_test

import (
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"

	"github.com/quillkit/quill/internal/buffer"
	"github.com/quillkit/quill/internal/editor"
	"github.com/quillkit/quill/internal/editorconfig"
)

func TestNewThemeCarriesThemeConfig(t *testing.T) {
	t.Parallel()

	th := editor.NewTheme(editorconfig.ThemeConfig{Name: "default", TabWidth: 4})
	assert.Equal(t, "default", th.Name)
	assert.Equal(t, 4, th.TabWidth)
}

func TestThemeColorFallsBackToDefaultForUnknownType(t *testing.T) {
	t.Parallel()

	th := editor.NewTheme(editorconfig.ThemeConfig{})
	assert.Same(t, th.Color(buffer.TokenDefault), th.Color(buffer.TokenType(999)))
}

func TestThemeSetColorOverridesPalette(t *testing.T) {
	t.Parallel()

	th := editor.NewTheme(editorconfig.ThemeConfig{})
	custom := color.New(color.FgRed)
	th.SetColor(buffer.TokenKeyword, custom)

	assert.Same(t, custom, th.Color(buffer.TokenKeyword))
}
