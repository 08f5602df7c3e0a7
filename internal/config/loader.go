package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	envPrefix            = "GUILDCHAT"
	envConfigDefaultPath = envPrefix + "_CONFIG_DEFAULT_PATH"
	defaultConfigName    = "config.yaml"
)

// Load resolves configuration and returns it with the config file path used.
// Precedence: defaults < config file < GUILDCHAT_* env vars. A missing file is
// created from the defaults.
func Load(logger *zerolog.Logger, explicitPath string) (Config, string, error) {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	defaults := Default()
	path := resolveConfigPath(explicitPath)

	v, err := newViper(defaults)
	if err != nil {
		return defaults, path, err
	}
	if err := readConfigFile(v, path, defaults, logger); err != nil {
		return defaults, path, err
	}

	// A zero target keeps file lists from being merged into the default lists.
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return defaults, path, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, path, fmt.Errorf("validate config: %w", err)
	}
	return cfg, path, nil
}

// newViper registers every key of defaults so env lookups can find them.
func newViper(defaults Config) (*viper.Viper, error) {
	raw, err := yaml.Marshal(defaults)
	if err != nil {
		return nil, fmt.Errorf("encode defaults: %w", err)
	}
	var keys map[string]any
	if err := yaml.Unmarshal(raw, &keys); err != nil {
		return nil, fmt.Errorf("decode defaults: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	for key, value := range keys {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v, nil
}

func readConfigFile(v *viper.Viper, path string, defaults Config, logger *zerolog.Logger) error {
	v.SetConfigFile(path)

	err := v.ReadInConfig()
	if err == nil {
		return nil
	}
	var notFound viper.ConfigFileNotFoundError
	if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("read config: %w", err)
	}

	if err := writeDefaultConfig(path, defaults); err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("failed to write default config")
		return nil
	}
	logger.Info().Str("path", path).Msg("created default config")
	if err := v.ReadInConfig(); err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("failed to read config after writing default")
	}
	return nil
}

func resolveConfigPath(explicitPath string) string {
	if explicitPath != "" {
		return explicitPath
	}
	if base := os.Getenv(envConfigDefaultPath); base != "" {
		if err := os.MkdirAll(base, 0o755); err == nil {
			return filepath.Join(base, defaultConfigName)
		}
	}
	if cwd, err := os.Getwd(); err == nil {
		return filepath.Join(cwd, defaultConfigName)
	}
	return defaultConfigName
}

func writeDefaultConfig(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
