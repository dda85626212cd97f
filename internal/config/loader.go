package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"forge3d/internal/common/fsutil"
)

// History backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Config holds runtime parameters for the client and the local API.
type Config struct {
	Remote     RemoteConfig     `json:"remote" yaml:"remote" toml:"remote"`
	Generation GenerationConfig `json:"generation" yaml:"generation" toml:"generation"`
	Storage    StorageConfig    `json:"storage" yaml:"storage" toml:"storage"`
	History    HistoryConfig    `json:"history" yaml:"history" toml:"history"`
	Server     ServerConfig     `json:"server" yaml:"server" toml:"server"`
	Log        LogConfig        `json:"log" yaml:"log" toml:"log"`
}

// RemoteConfig describes the generation service.
type RemoteConfig struct {
	BaseURL         string   `json:"base_url" yaml:"base_url" toml:"base_url"`
	APIKey          string   `json:"api_key" yaml:"api_key" toml:"api_key"`
	RequestTimeout  Duration `json:"request_timeout" yaml:"request_timeout" toml:"request_timeout"`
	ResourceTimeout Duration `json:"resource_timeout" yaml:"resource_timeout" toml:"resource_timeout"`
}

// GenerationConfig holds job input limits and the poll cadence.
type GenerationConfig struct {
	PollInterval      Duration `json:"poll_interval" yaml:"poll_interval" toml:"poll_interval"`
	MaxPromptLength   int      `json:"max_prompt_length" yaml:"max_prompt_length" toml:"max_prompt_length"`
	MaxImageBytes     int64    `json:"max_image_bytes" yaml:"max_image_bytes" toml:"max_image_bytes"`
	ImageMaxDimension int      `json:"image_max_dimension" yaml:"image_max_dimension" toml:"image_max_dimension"`
	JPEGQuality       int      `json:"jpeg_quality" yaml:"jpeg_quality" toml:"jpeg_quality"`
}

// StorageConfig locates model files.
type StorageConfig struct {
	ModelsDir  string `json:"models_dir" yaml:"models_dir" toml:"models_dir"`
	BundledDir string `json:"bundled_dir" yaml:"bundled_dir" toml:"bundled_dir"`
	ModelExt   string `json:"model_ext" yaml:"model_ext" toml:"model_ext"`
}

// HistoryConfig selects where the history blob lives.
type HistoryConfig struct {
	Backend       string `json:"backend" yaml:"backend" toml:"backend"`
	Path          string `json:"path" yaml:"path" toml:"path"`
	RedisAddr     string `json:"redis_addr" yaml:"redis_addr" toml:"redis_addr"`
	RedisPassword string `json:"redis_password" yaml:"redis_password" toml:"redis_password"`
	RedisDB       int    `json:"redis_db" yaml:"redis_db" toml:"redis_db"`
	Key           string `json:"key" yaml:"key" toml:"key"`
	MaxEntries    int    `json:"max_entries" yaml:"max_entries" toml:"max_entries"`
}

// ServerConfig configures `forge3d serve`.
type ServerConfig struct {
	Addr              string   `json:"addr" yaml:"addr" toml:"addr"`
	ErrorDismissAfter Duration `json:"error_dismiss_after" yaml:"error_dismiss_after" toml:"error_dismiss_after"`
	MaxBodyBytes      int64    `json:"max_body_bytes" yaml:"max_body_bytes" toml:"max_body_bytes"`
	CORSEnabled       bool     `json:"cors_enabled" yaml:"cors_enabled" toml:"cors_enabled"`
	CORSOrigins       []string `json:"cors_origins" yaml:"cors_origins" toml:"cors_origins"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `json:"level" yaml:"level" toml:"level"`
	File  string `json:"file" yaml:"file" toml:"file"`
}

// Default returns a Config with the documented defaults.
func Default() Config {
	return Config{
		Remote: RemoteConfig{
			BaseURL:         "http://127.0.0.1:8000",
			RequestTimeout:  Duration(30 * time.Second),
			ResourceTimeout: Duration(60 * time.Second),
		},
		Generation: GenerationConfig{
			PollInterval:      Duration(2 * time.Second),
			MaxPromptLength:   500,
			MaxImageBytes:     10 << 20,
			ImageMaxDimension: 2048,
			JPEGQuality:       80,
		},
		Storage: StorageConfig{
			ModelsDir:  "~/.forge3d/models",
			BundledDir: "",
			ModelExt:   "glb",
		},
		History: HistoryConfig{
			Backend:    BackendFile,
			Path:       "~/.forge3d/state",
			RedisAddr:  "127.0.0.1:6379",
			Key:        "forge3d.history",
			MaxEntries: 100,
		},
		Server: ServerConfig{
			Addr:              ":8080",
			ErrorDismissAfter: Duration(4 * time.Second),
			MaxBodyBytes:      16 << 20,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads a configuration file based on its extension and merges it over Default().
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}

// Resolve expands '~' in every path field.
func (c *Config) Resolve() error {
	for _, p := range []*string{&c.Storage.ModelsDir, &c.Storage.BundledDir, &c.Log.File} {
		v, err := fsutil.ExpandHome(*p)
		if err != nil {
			return err
		}
		*p = v
	}
	if c.History.Backend != BackendRedis {
		v, err := fsutil.ExpandHome(c.History.Path)
		if err != nil {
			return err
		}
		c.History.Path = v
	}
	return nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	u, err := url.Parse(c.Remote.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("remote.base_url %q is not an absolute URL", c.Remote.BaseURL)
	}
	switch c.History.Backend {
	case BackendFile, BackendSQLite:
		if c.History.Path == "" {
			return fmt.Errorf("history.path is required for backend %q", c.History.Backend)
		}
	case BackendRedis:
		if c.History.RedisAddr == "" {
			return fmt.Errorf("history.redis_addr is required for backend %q", BackendRedis)
		}
	default:
		return fmt.Errorf("unknown history.backend %q", c.History.Backend)
	}
	if c.History.MaxEntries <= 0 {
		return fmt.Errorf("history.max_entries must be positive")
	}
	if c.Generation.PollInterval <= 0 {
		return fmt.Errorf("generation.poll_interval must be positive")
	}
	if c.Generation.MaxPromptLength <= 0 || c.Generation.MaxImageBytes <= 0 {
		return fmt.Errorf("generation limits must be positive")
	}
	if q := c.Generation.JPEGQuality; q < 1 || q > 100 {
		return fmt.Errorf("generation.jpeg_quality %d out of range 1..100", q)
	}
	if c.Storage.ModelsDir == "" {
		return fmt.Errorf("storage.models_dir is required")
	}
	return nil
}
