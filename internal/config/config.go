package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	kjson "github.com/knadh/koanf/parsers/json"
	kyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config is the server configuration shape (YAML or JSON on disk,
// APP_-prefixed environment overrides).
type Config struct {
	Server  ServerConfig  `json:"server"`
	Metrics MetricsConfig `json:"metrics"`

	// PresetFile optionally names a YAML storage preset applied as the
	// base for request parameters.
	PresetFile string `json:"preset_file"`
}

type ServerConfig struct {
	Port        int      `json:"port"`
	CORSOrigins []string `json:"cors_origins"`
}

type MetricsConfig struct {
	Enabled bool `json:"enabled"`
}

func (c *Config) SetDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if len(c.Server.CORSOrigins) == 0 {
		c.Server.CORSOrigins = []string{"*"}
	}
}

func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return errors.New("server.port must be in [1, 65535]")
	}
	return nil
}

// Load reads the config file, applies APP_ env overrides (APP_SERVER__PORT
// maps to server.port) and validates the result.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = kyaml.Parser()
	case ".json":
		parser = kjson.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	if err := loadEnv(k); err != nil {
		return nil, err
	}
	return unmarshal(k)
}

// Default returns the built-in configuration with env overrides applied,
// for running without a config file.
func Default() (*Config, error) {
	k := koanf.New(".")
	if err := loadEnv(k); err != nil {
		return nil, err
	}
	return unmarshal(k)
}

func loadEnv(k *koanf.Koanf) error {
	return k.Load(env.Provider("APP_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "app_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil)
}

func unmarshal(k *koanf.Koanf) (*Config, error) {
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
