package editorconfig

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// configName is the config file name without extension.
const configName = ".quill"

// configType is the config file format.
const configType = "yaml"

// envPrefix is the environment variable prefix for quill settings.
const envPrefix = "QUILL"

// envKeySeparator is the nested key separator in environment variable names.
const envKeySeparator = "_"

// defaultRemoteAddress is the §6 remote-open listener's loopback address.
const defaultRemoteAddress = "127.0.0.1:41089"

// defaultDiagnosticsAddress is the health/readiness/metrics endpoint's
// loopback address.
const defaultDiagnosticsAddress = "127.0.0.1:41090"

// Load loads configuration from file, env vars, and defaults. If
// configPath is non-empty, it is used as the explicit config file path.
// Otherwise the config file is searched in CWD and $HOME. A missing config
// file is not an error; defaults are used.
func Load(configPath string) (*Config, error) {
	viperCfg := viper.New()

	applyDefaults(viperCfg)

	viperCfg.SetConfigType(configType)
	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", envKeySeparator))
	viperCfg.AutomaticEnv()

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName(configName)
		viperCfg.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viperCfg.AddConfigPath(home)
		}
	}

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFound) {
			return nil, fmt.Errorf("editorconfig: read config: %w", readErr)
		}
	}

	var cfg Config

	if err := viperCfg.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("editorconfig: unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("editorconfig: validate config: %w", err)
	}

	return &cfg, nil
}

func applyDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("theme.name", "default")
	viperCfg.SetDefault("theme.tab_width", 4)
	viperCfg.SetDefault("theme.wrap_long_lines", false)
	viperCfg.SetDefault("theme.animated_scroll", true)
	viperCfg.SetDefault("theme.jump_half_page_when_outside", false)

	viperCfg.SetDefault("scroll.outside_rows", 3)
	viperCfg.SetDefault("scroll.outside_columns", 5)

	viperCfg.SetDefault("completion.default_filter", "prefix")
	viperCfg.SetDefault("completion.fuzzy_max_edits", 2)

	viperCfg.SetDefault("buffer.use_tree_sitter", true)
	viperCfg.SetDefault("buffer.read_only_by_default", false)

	viperCfg.SetDefault("remote.enabled", true)
	viperCfg.SetDefault("remote.address", defaultRemoteAddress)

	viperCfg.SetDefault("diagnostics.enabled", false)
	viperCfg.SetDefault("diagnostics.address", defaultDiagnosticsAddress)
}
