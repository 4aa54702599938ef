// Package editorconfig loads editor settings (theme, scroll margins,
// tab width, key-map names) from a config file, environment variables, and
// built-in defaults, the same layered way the teacher's config package
// does for analysis settings.
package editorconfig

import "errors"

// Config is the top-level editor configuration. Field tags use
// mapstructure for viper unmarshalling.
type Config struct {
	Theme       ThemeConfig       `mapstructure:"theme"`
	Scroll      ScrollConfig      `mapstructure:"scroll"`
	Completion  CompletionConfig  `mapstructure:"completion"`
	Buffer      BufferConfig      `mapstructure:"buffer"`
	Remote      RemoteConfig      `mapstructure:"remote"`
	Diagnostics DiagnosticsConfig `mapstructure:"diagnostics"`
}

// ThemeConfig holds display settings not tied to a specific file's mode.
type ThemeConfig struct {
	Name                    string `mapstructure:"name"`
	TabWidth                int    `mapstructure:"tab_width"`
	WrapLongLines           bool   `mapstructure:"wrap_long_lines"`
	AnimatedScroll          bool   `mapstructure:"animated_scroll"`
	JumpHalfPageWhenOutside bool   `mapstructure:"jump_half_page_when_outside"`
}

// ScrollConfig holds the §4.6 viewport margin settings.
type ScrollConfig struct {
	OutsideRows    int `mapstructure:"outside_rows"`
	OutsideColumns int `mapstructure:"outside_columns"`
}

// CompletionConfig holds completion engine defaults.
type CompletionConfig struct {
	DefaultFilter string `mapstructure:"default_filter"`
	FuzzyMaxEdits int    `mapstructure:"fuzzy_max_edits"`
}

// BufferConfig holds defaults applied to newly opened buffers.
type BufferConfig struct {
	UseTreeSitter     bool `mapstructure:"use_tree_sitter"`
	ReadOnlyByDefault bool `mapstructure:"read_only_by_default"`
}

// RemoteConfig holds the §6 remote-open listener settings.
type RemoteConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Address string `mapstructure:"address"`
}

// DiagnosticsConfig holds the health/readiness/metrics HTTP endpoint
// settings for a long-running editor instance (the one other instances'
// --try-remote and remote-open requests land on).
type DiagnosticsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Address string `mapstructure:"address"`
}

// Sentinel validation errors.
var (
	ErrInvalidTabWidth             = errors.New("theme.tab_width must be positive")
	ErrInvalidScrollOutsideRows    = errors.New("scroll.outside_rows must be non-negative")
	ErrInvalidScrollOutsideColumns = errors.New("scroll.outside_columns must be non-negative")
	ErrInvalidFuzzyMaxEdits        = errors.New("completion.fuzzy_max_edits must be non-negative")
	ErrEmptyRemoteAddress          = errors.New("remote.address must not be empty when remote.enabled is set")
	ErrEmptyDiagnosticsAddress     = errors.New("diagnostics.address must not be empty when diagnostics.enabled is set")
)

// Validate checks Config invariants and returns the first error found.
func (c *Config) Validate() error {
	if c.Theme.TabWidth <= 0 {
		return ErrInvalidTabWidth
	}

	if c.Scroll.OutsideRows < 0 {
		return ErrInvalidScrollOutsideRows
	}

	if c.Scroll.OutsideColumns < 0 {
		return ErrInvalidScrollOutsideColumns
	}

	if c.Completion.FuzzyMaxEdits < 0 {
		return ErrInvalidFuzzyMaxEdits
	}

	if c.Remote.Enabled && c.Remote.Address == "" {
		return ErrEmptyRemoteAddress
	}

	if c.Diagnostics.Enabled && c.Diagnostics.Address == "" {
		return ErrEmptyDiagnosticsAddress
	}

	return nil
}
