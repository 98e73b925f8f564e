// Package config loads nexus configuration from yaml files and environment
// variables, merging global and project-local sources over built-in defaults.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Load loads and merges configuration from global and project sources.
// Precedence, lowest to highest: defaults, ~/.nexus/config.yaml,
// ./nexus.yaml, NEXUS_* environment variables.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	if home, err := os.UserHomeDir(); err == nil {
		globalPath := filepath.Join(home, ".nexus", "config.yaml")
		if err := loadFile(globalPath, cfg); err != nil && !os.IsNotExist(err) {
			return nil, err
		}
	}

	if cwd, err := os.Getwd(); err == nil {
		projectPath := filepath.Join(cwd, "nexus.yaml")
		if err := loadFile(projectPath, cfg); err != nil && !os.IsNotExist(err) {
			return nil, err
		}
	}

	applyEnv(cfg)
	expandPaths(cfg)
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return err
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return err
	}

	return v.Unmarshal(cfg)
}

// applyEnv overlays the small set of secrets and overrides that operators
// commonly set outside config files.
func applyEnv(cfg *Config) {
	if key := os.Getenv("NEXUS_API_KEY"); key != "" {
		cfg.LLM.APIKey = key
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" && cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = key
	}
	if m := os.Getenv("NEXUS_MODEL_FAST"); m != "" {
		cfg.LLM.FastModel = m
	}
	if m := os.Getenv("NEXUS_MODEL_HEAVY"); m != "" {
		cfg.LLM.HeavyModel = m
	}
	if m := os.Getenv("NEXUS_EMBEDDING_MODEL"); m != "" {
		cfg.Embedding.Model = m
	}
	if addr := os.Getenv("NEXUS_ADDR"); addr != "" {
		cfg.Server.Addr = addr
	}
	if lvl := os.Getenv("NEXUS_LOG_LEVEL"); lvl != "" {
		cfg.Logging.Level = lvl
	}
}

// expandPaths resolves ~ prefixes and fills derived paths under the data dir.
func expandPaths(cfg *Config) {
	cfg.Storage.DataDir = expandHome(cfg.Storage.DataDir)
	if cfg.Storage.GraphDBPath == "" {
		cfg.Storage.GraphDBPath = filepath.Join(cfg.Storage.DataDir, "graph.db")
	} else {
		cfg.Storage.GraphDBPath = expandHome(cfg.Storage.GraphDBPath)
	}
	if cfg.Storage.DerivedDB == "" {
		cfg.Storage.DerivedDB = filepath.Join(cfg.Storage.DataDir, "nexus.db")
	} else {
		cfg.Storage.DerivedDB = expandHome(cfg.Storage.DerivedDB)
	}
	if cfg.Storage.GraphJSON != "" {
		cfg.Storage.GraphJSON = expandHome(cfg.Storage.GraphJSON)
	}
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
