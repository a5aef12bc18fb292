package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"pawpal/internal/llm"
)

// Config is the full service configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	LLM       llm.Config      `yaml:"llm"`
	Drafts    DraftsConfig    `yaml:"drafts"`
	Legacy    LegacyConfig    `yaml:"legacy"`
	Dialogue  DialogueConfig  `yaml:"dialogue"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

type ServerConfig struct {
	Addr         string   `yaml:"addr"`
	AllowOrigins []string `yaml:"allow_origins"`
}

type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

type DraftsConfig struct {
	Dir         string `yaml:"dir"`
	MaxAgeHours int    `yaml:"max_age_hours"`
}

// LegacyConfig controls the best-effort mirror into the old task format.
type LegacyConfig struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir"`
}

type DialogueConfig struct {
	MaxTurns              int `yaml:"max_turns"`
	ExtractTimeoutSeconds int `yaml:"extract_timeout_seconds"`
}

type TelemetryConfig struct {
	// OTLPEndpoint enables trace export when non-empty, e.g.
	// "localhost:4318".
	OTLPEndpoint string `yaml:"otlp_endpoint"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Server: ServerConfig{Addr: ":8089"},
		Drafts: DraftsConfig{Dir: "~/.pawpal/drafts", MaxAgeHours: 24},
		Legacy: LegacyConfig{Dir: "~/.pawpal/legacy-tasks"},
		Dialogue: DialogueConfig{
			MaxTurns:              10,
			ExtractTimeoutSeconds: 20,
		},
		LLM: llm.Config{Model: "gpt-4o-mini", Timeout: 25},
	}
}

// LoadFile reads a YAML config file over the defaults. A missing file is
// not an error; env overrides are applied by the CLI layer.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
