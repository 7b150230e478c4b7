// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads ragbot settings from a YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/poiesic/ragbot/ai"
	"github.com/poiesic/ragbot/chunk"
	"github.com/poiesic/ragbot/search"
	"github.com/poiesic/ragbot/storage/jsonfile"
	"gopkg.in/yaml.v3"
)

// Environment variables consulted for the API key, in order.
const (
	EnvAPIKey       = "RAGBOT_API_KEY"
	EnvGeminiAPIKey = "GEMINI_API_KEY"
)

// ErrInvalid indicates a configuration value is out of range.
var ErrInvalid = errors.New("invalid config")

// Config holds the ragbot configuration.
type Config struct {
	AI        ai.Config    `yaml:"ai"`
	Store     StoreConfig  `yaml:"store"`
	Cache     CacheConfig  `yaml:"cache"`
	Server    ServerConfig `yaml:"server"`
	ChunkSize int          `yaml:"chunk_size"`
	Threshold *float32     `yaml:"threshold"`
}

// StoreConfig holds vector store settings.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// CacheConfig holds embedding cache settings. An empty Path disables the cache.
type CacheConfig struct {
	Path string        `yaml:"path"`
	TTL  time.Duration `yaml:"ttl"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Default returns the configuration used when no file is given.
// AI.CompletionHost is left empty so it follows whatever embedding host the
// file sets.
func Default() *Config {
	cfg := &Config{
		AI:    *ai.DefaultConfig(),
		Store: StoreConfig{Path: jsonfile.DefaultPath},
	}
	cfg.AI.CompletionHost = ""
	return cfg
}

// LoadEnv loads variables from dotenv files into the process environment.
// Variables that are already set win. Missing files are ignored.
func LoadEnv(files ...string) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		_ = godotenv.Load(f)
	}
}

// Load reads the YAML file at path over the defaults, fills the API key from
// the environment when the file leaves it empty, and validates the result.
// An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}

		// Substitute env variables of the form ${VAR}
		data = expandEnvVars(data)

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if strings.TrimSpace(cfg.AI.APIKey) == "" {
		cfg.AI.APIKey = apiKeyFromEnv()
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func apiKeyFromEnv() string {
	for _, name := range []string{EnvAPIKey, EnvGeminiAPIKey} {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			return v
		}
	}
	return ""
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	defaults := ai.DefaultConfig()
	if c.AI.EmbeddingHost == "" {
		c.AI.EmbeddingHost = defaults.EmbeddingHost
	}
	if c.AI.EmbeddingModel == "" {
		c.AI.EmbeddingModel = defaults.EmbeddingModel
	}
	if c.AI.CompletionModel == "" {
		c.AI.CompletionModel = defaults.CompletionModel
	}
	if c.AI.MaxRetries <= 0 {
		c.AI.MaxRetries = defaults.MaxRetries
	}
	if c.Store.Path == "" {
		c.Store.Path = jsonfile.DefaultPath
	}
	if c.ChunkSize <= 0 {
		c.ChunkSize = chunk.DefaultSize
	}
	if c.Threshold == nil {
		threshold := search.DefaultThreshold
		c.Threshold = &threshold
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ReadTimeout <= 0 {
		c.Server.ReadTimeout = 10 * time.Second
	}
	if c.Server.WriteTimeout <= 0 {
		c.Server.WriteTimeout = 2 * time.Minute
	}
	if c.Server.ShutdownTimeout <= 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	c.AI.Normalize()
}

// Validate checks the configuration for correctness.
// A missing API key is the first thing reported.
func (c *Config) Validate() error {
	if err := c.AI.Validate(); err != nil {
		return err
	}
	if c.ChunkSize < 1 {
		return fmt.Errorf("%w: chunk_size must be positive, got %d", ErrInvalid, c.ChunkSize)
	}
	if c.Threshold != nil && (*c.Threshold < -1 || *c.Threshold > 1) {
		return fmt.Errorf("%w: threshold must be within [-1, 1], got %v", ErrInvalid, *c.Threshold)
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("%w: cache.ttl must not be negative", ErrInvalid)
	}
	return nil
}

// SimilarityThreshold returns the configured threshold or the default.
func (c *Config) SimilarityThreshold() float32 {
	if c.Threshold == nil {
		return search.DefaultThreshold
	}
	return *c.Threshold
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
