package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "FORGE3D_"

// ApplyEnv overrides fields from FORGE3D_* environment variables.
func (c *Config) ApplyEnv() error {
	c.Remote.BaseURL = envStr("BASE_URL", c.Remote.BaseURL)
	c.Remote.APIKey = envStr("API_KEY", c.Remote.APIKey)
	c.Storage.ModelsDir = envStr("MODELS_DIR", c.Storage.ModelsDir)
	c.Storage.BundledDir = envStr("BUNDLED_DIR", c.Storage.BundledDir)
	c.History.Backend = envStr("HISTORY_BACKEND", c.History.Backend)
	c.History.Path = envStr("HISTORY_PATH", c.History.Path)
	c.History.RedisAddr = envStr("REDIS_ADDR", c.History.RedisAddr)
	c.History.RedisPassword = envStr("REDIS_PASSWORD", c.History.RedisPassword)
	c.Server.Addr = envStr("ADDR", c.Server.Addr)
	c.Log.Level = envStr("LOG_LEVEL", c.Log.Level)
	c.Log.File = envStr("LOG_FILE", c.Log.File)
	c.Server.CORSEnabled = envBool("CORS", c.Server.CORSEnabled)
	if v := os.Getenv(EnvPrefix + "CORS_ORIGINS"); v != "" {
		c.Server.CORSOrigins = splitCSV(v)
	}

	var err error
	if c.History.MaxEntries, err = envInt("HISTORY_MAX", c.History.MaxEntries); err != nil {
		return err
	}
	if c.Generation.PollInterval, err = envDuration("POLL_INTERVAL", c.Generation.PollInterval); err != nil {
		return err
	}
	if c.Remote.RequestTimeout, err = envDuration("REQUEST_TIMEOUT", c.Remote.RequestTimeout); err != nil {
		return err
	}
	if c.Remote.ResourceTimeout, err = envDuration("RESOURCE_TIMEOUT", c.Remote.ResourceTimeout); err != nil {
		return err
	}
	return nil
}

func envStr(key, def string) string {
	if v := os.Getenv(EnvPrefix + key); v != "" {
		return v
	}
	return def
}

func envBool(key string, def bool) bool {
	v := os.Getenv(EnvPrefix + key)
	if v == "" {
		return def
	}
	s := strings.ToLower(v)
	return s == "1" || s == "true" || s == "yes"
}

func envInt(key string, def int) (int, error) {
	v := os.Getenv(EnvPrefix + key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def, fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
	}
	return n, nil
}

func envDuration(key string, def Duration) (Duration, error) {
	v := os.Getenv(EnvPrefix + key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def, fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
	}
	return Duration(d), nil
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
