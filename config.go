package assetgo

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/goccy/go-yaml"
)

// Source kinds accepted in SourceConfig.Kind.
const (
	SourceMemory = "memory"
	SourceLocal  = "local"
	SourceMinIO  = "minio"
	SourceS3     = "s3"
)

// Config is the YAML form of an App's settings plus the source it reads from.
type Config struct {
	Workers            int    `yaml:"workers"`
	MemoryLimitBytes   int64  `yaml:"memory_limit_bytes"`
	IOLimitBytesPerSec int64  `yaml:"io_limit_bytes_per_sec"`
	LogLevel           string `yaml:"log_level"`
	LogFormat          string `yaml:"log_format"`

	// MaxTextureDimension rejects larger textures. 0 disables the check.
	MaxTextureDimension int `yaml:"max_texture_dimension"`

	Source SourceConfig `yaml:"source"`
	Cache  CacheConfig  `yaml:"cache"`
}

// SourceConfig selects where loaders read asset bytes from.
type SourceConfig struct {
	Kind string `yaml:"kind"`

	// Root is the directory of a local source.
	Root string `yaml:"root"`

	// Bucket and Prefix locate assets in object storage.
	Bucket string `yaml:"bucket"`
	Prefix string `yaml:"prefix"`

	// MinIO connection settings.
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	UseSSL    bool   `yaml:"use_ssl"`

	// Region of an S3 source. Credentials come from the default AWS chain.
	Region string `yaml:"region"`
}

// CacheConfig configures the block cache in front of the source.
// The cache is disabled when both MemoryBytes and Dir are zero.
type CacheConfig struct {
	BlockSize   int64         `yaml:"block_size"`
	MemoryBytes int64         `yaml:"memory_bytes"`
	Dir         string        `yaml:"dir"`
	TTL         time.Duration `yaml:"ttl"`
}

// Enabled reports whether a cache is configured.
func (c CacheConfig) Enabled() bool { return c.MemoryBytes > 0 || c.Dir != "" }

// DefaultConfig returns a config with a local source rooted at ".".
func DefaultConfig() *Config {
	return &Config{
		LogLevel:  "info",
		LogFormat: "text",
		Source: SourceConfig{
			Kind: SourceLocal,
			Root: ".",
		},
	}
}

// LoadConfig reads a YAML config file. Unknown keys are rejected.
func LoadConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	return decodeConfig(f)
}

// ParseConfig parses a YAML config. Unknown keys are rejected.
func ParseConfig(data []byte) (*Config, error) {
	return decodeConfig(bytes.NewReader(data))
}

func decodeConfig(r io.Reader) (*Config, error) {
	cfg := DefaultConfig()

	dec := yaml.NewDecoder(r, yaml.Strict())
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges and the fields required by the source kind.
func (c *Config) Validate() error {
	switch {
	case c.Workers < 0:
		return fmt.Errorf("%w: workers must not be negative", ErrInvalidConfig)
	case c.MemoryLimitBytes < 0:
		return fmt.Errorf("%w: memory_limit_bytes must not be negative", ErrInvalidConfig)
	case c.IOLimitBytesPerSec < 0:
		return fmt.Errorf("%w: io_limit_bytes_per_sec must not be negative", ErrInvalidConfig)
	case c.Cache.BlockSize < 0 || c.Cache.MemoryBytes < 0:
		return fmt.Errorf("%w: cache sizes must not be negative", ErrInvalidConfig)
	}

	if _, err := c.level(); err != nil {
		return fmt.Errorf("%w: log_level: %v", ErrInvalidConfig, err)
	}
	switch c.LogFormat {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: unknown log_format %q", ErrInvalidConfig, c.LogFormat)
	}

	s := c.Source
	switch s.Kind {
	case SourceMemory:
	case SourceLocal:
		if s.Root == "" {
			return fmt.Errorf("%w: local source requires root", ErrInvalidConfig)
		}
	case SourceMinIO:
		if s.Endpoint == "" || s.Bucket == "" {
			return fmt.Errorf("%w: minio source requires endpoint and bucket", ErrInvalidConfig)
		}
	case SourceS3:
		if s.Bucket == "" {
			return fmt.Errorf("%w: s3 source requires bucket", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown source kind %q", ErrInvalidConfig, s.Kind)
	}
	return nil
}

func (c *Config) level() (slog.Level, error) {
	var l slog.Level
	if c.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	err := l.UnmarshalText([]byte(c.LogLevel))
	return l, err
}

// Logger builds the logger described by LogLevel and LogFormat.
func (c *Config) Logger() *Logger {
	level, err := c.level()
	if err != nil {
		level = slog.LevelInfo
	}
	if c.LogFormat == "json" {
		return NewJSONLogger(level)
	}
	return NewTextLogger(level)
}

// Options converts the config into App options.
func (c *Config) Options() []Option {
	return []Option{
		WithLogger(c.Logger()),
		WithWorkers(c.Workers),
		WithMemoryLimit(c.MemoryLimitBytes),
		WithIOLimit(c.IOLimitBytesPerSec),
	}
}
