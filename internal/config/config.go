package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

const envPrefix = "PDFEDITOR_"

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (PDFEDITOR_*). A double underscore
// separates nested keys: PDFEDITOR_LOG__LEVEL -> log.level.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	cfg := DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, envPrefix))
	return strings.ReplaceAll(key, "__", ".")
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

var validLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validFormats = map[string]bool{
	"text": true,
	"json": true,
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("addr is required")
	}
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}
	for name, dir := range map[string]string{
		"upload_dir": c.UploadDir,
		"old_dir":    c.OldDir,
		"new_dir":    c.NewDir,
	} {
		if dir == "" {
			return fmt.Errorf("%s is required", name)
		}
	}
	if c.UploadDir == c.OldDir || c.UploadDir == c.NewDir || c.OldDir == c.NewDir {
		return fmt.Errorf("upload_dir, old_dir and new_dir must differ")
	}

	if c.MaxUploadMB <= 0 {
		return fmt.Errorf("max_upload_mb must be positive")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("session_ttl must be positive")
	}
	if c.RenderTimeout < 0 {
		return fmt.Errorf("render_timeout must be non-negative")
	}

	if !validLevels[strings.ToLower(c.Log.Level)] {
		return fmt.Errorf("invalid log.level %q: must be one of debug, info, warn, error", c.Log.Level)
	}
	if !validFormats[strings.ToLower(c.Log.Format)] {
		return fmt.Errorf("invalid log.format %q: must be text or json", c.Log.Format)
	}

	switch c.Storage.Backend {
	case StorageLocal:
		if c.Storage.Dir == "" {
			return fmt.Errorf("storage.dir is required for the local backend")
		}
	case StorageS3:
		if c.Storage.Bucket == "" {
			return fmt.Errorf("storage.bucket is required for the s3 backend")
		}
	default:
		return fmt.Errorf("invalid storage.backend %q: must be local or s3", c.Storage.Backend)
	}

	return nil
}

// Dir resolves a folder setting against DataDir.
func (c *Config) Dir(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.DataDir, name)
}

// DBPath is the SQLite database location.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "pdfeditor.db")
}

// MaxUploadBytes is MaxUploadMB in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}
