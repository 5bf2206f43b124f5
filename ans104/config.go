package ans104

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/caarlos0/env/v11"

	"xdao.co/ans104/tags"
)

// Config holds the tunables of an SDK. Zero fields take their defaults.
//
// Example file:
//
//	{
//	  "max_tags": 128,
//	  "max_tag_name_bytes": 1024,
//	  "max_tag_value_bytes": 3072,
//	  "workers": 8
//	}
type Config struct {
	MaxTags          int `json:"max_tags,omitempty" env:"ANS104_MAX_TAGS"`
	MaxTagNameBytes  int `json:"max_tag_name_bytes,omitempty" env:"ANS104_MAX_TAG_NAME_BYTES"`
	MaxTagValueBytes int `json:"max_tag_value_bytes,omitempty" env:"ANS104_MAX_TAG_VALUE_BYTES"`
	Workers          int `json:"workers,omitempty" env:"ANS104_WORKERS"`
}

// DefaultConfig returns the network's tag limits and one worker per CPU.
func DefaultConfig() Config {
	return Config{
		MaxTags:          tags.DefaultLimits.MaxTags,
		MaxTagNameBytes:  tags.DefaultLimits.MaxNameBytes,
		MaxTagValueBytes: tags.DefaultLimits.MaxValueBytes,
		Workers:          runtime.GOMAXPROCS(0),
	}
}

// LoadConfigFile reads a JSON config and overlays ANS104_* environment
// variables on top of it.
func LoadConfigFile(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, errors.New("ans104: empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := json.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("ans104: parse config: %w", err)
	}
	return cfg.WithEnv()
}

// WithEnv returns c with any ANS104_* environment variables applied.
func (c Config) WithEnv() (Config, error) {
	if err := env.Parse(&c); err != nil {
		return c, fmt.Errorf("ans104: parse env: %w", err)
	}
	return c, c.Validate()
}

// Validate rejects negative values. Zero means "use the default".
func (c Config) Validate() error {
	switch {
	case c.MaxTags < 0:
		return fmt.Errorf("ans104: max_tags must not be negative, got %d", c.MaxTags)
	case c.MaxTagNameBytes < 0:
		return fmt.Errorf("ans104: max_tag_name_bytes must not be negative, got %d", c.MaxTagNameBytes)
	case c.MaxTagValueBytes < 0:
		return fmt.Errorf("ans104: max_tag_value_bytes must not be negative, got %d", c.MaxTagValueBytes)
	case c.Workers < 0:
		return fmt.Errorf("ans104: workers must not be negative, got %d", c.Workers)
	}
	return nil
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MaxTags == 0 {
		c.MaxTags = d.MaxTags
	}
	if c.MaxTagNameBytes == 0 {
		c.MaxTagNameBytes = d.MaxTagNameBytes
	}
	if c.MaxTagValueBytes == 0 {
		c.MaxTagValueBytes = d.MaxTagValueBytes
	}
	if c.Workers == 0 {
		c.Workers = d.Workers
	}
	return c
}

func (c Config) limits() tags.Limits {
	return tags.Limits{MaxTags: c.MaxTags, MaxNameBytes: c.MaxTagNameBytes, MaxValueBytes: c.MaxTagValueBytes}
}
