// Package config provides configuration loading, defaults, and validation
// for DrugRx-Intelligence.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// envPrefix is the environment variable prefix for all application settings.
const envPrefix = "DRUGRX"

// newViper builds a pre-configured Viper instance: YAML file type, DRUGRX_
// env prefix, automatic env binding, and a key replacer that maps "." → "_"
// so that nested keys like "neo4j.uri" resolve to "DRUGRX_NEO4J_URI".
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}

// Load reads the YAML file at configPath, merges any DRUGRX_* environment
// variable overrides, applies defaults for unset fields, and validates the
// result.
func Load(configPath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
	}

	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config entirely from DRUGRX_* environment variables,
// with no config file required.  Preferred for containerised deployments.
//
// Naming convention: DRUGRX_<SECTION>_<FIELD>, e.g. DRUGRX_NEO4J_URI,
// DRUGRX_LLM_API_KEY.
func LoadFromEnv() (*Config, error) {
	v := newViper()

	// AutomaticEnv alone does not surface env-only keys through Unmarshal;
	// each key has to be registered so viper knows to look it up.
	for _, key := range []string{
		"server.port", "server.mode",
		"neo4j.uri", "neo4j.user", "neo4j.password", "neo4j.database",
		"llm.endpoint", "llm.api_key", "llm.model", "llm.temperature",
		"tts.api_key", "tts.voice_id", "tts.base_url",
		"log.level", "log.format",
		"metrics.enabled", "metrics.namespace",
	} {
		_ = v.BindEnv(key)
	}

	return unmarshalAndFinalize(v)
}

func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal configuration: %w", err)
	}

	ApplyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}

	return cfg, nil
}

// MustLoad is a convenience wrapper around Load that panics on any error.
// Intended for use in main() where a config-load failure is always fatal.
func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("config: MustLoad failed: %v", err))
	}
	return cfg
}
