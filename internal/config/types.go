package config

import "time"

// StorageBackend selects where saved library files go.
type StorageBackend string

const (
	StorageLocal StorageBackend = "local"
	StorageS3    StorageBackend = "s3"
)

// Config is the top-level pdfeditor configuration, corresponding to .pdfeditor.yml.
type Config struct {
	Addr            string        `yaml:"addr" koanf:"addr"`
	DataDir         string        `yaml:"data_dir" koanf:"data_dir"`
	UploadDir       string        `yaml:"upload_dir" koanf:"upload_dir"`
	OldDir          string        `yaml:"old_dir" koanf:"old_dir"`
	NewDir          string        `yaml:"new_dir" koanf:"new_dir"`
	MaxUploadMB     int           `yaml:"max_upload_mb" koanf:"max_upload_mb"`
	SessionTTL      time.Duration `yaml:"session_ttl" koanf:"session_ttl"`
	CookieSecure    bool          `yaml:"cookie_secure" koanf:"cookie_secure"`
	AllowAllOrigins bool          `yaml:"allow_all_origins" koanf:"allow_all_origins"`
	RenderTimeout   time.Duration `yaml:"render_timeout" koanf:"render_timeout"`
	CleanupPatterns []string      `yaml:"cleanup_patterns" koanf:"cleanup_patterns"`
	Log             LogConfig     `yaml:"log" koanf:"log"`
	Storage         StorageConfig `yaml:"storage" koanf:"storage"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `yaml:"level" koanf:"level"`
	Format string `yaml:"format" koanf:"format"`
}

// StorageConfig holds settings for the saved-file library.
type StorageConfig struct {
	Backend  StorageBackend `yaml:"backend" koanf:"backend"`
	Dir      string         `yaml:"dir" koanf:"dir"`
	Bucket   string         `yaml:"bucket" koanf:"bucket"`
	Region   string         `yaml:"region" koanf:"region"`
	Endpoint string         `yaml:"endpoint" koanf:"endpoint"`
	Prefix   string         `yaml:"prefix" koanf:"prefix"`
}

// DefaultPath is the config file looked up in the working directory.
const DefaultPath = ".pdfeditor.yml"

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Addr:            ":8080",
		DataDir:         "data",
		UploadDir:       "uploads",
		OldDir:          "old",
		NewDir:          "new",
		MaxUploadMB:     64,
		SessionTTL:      24 * time.Hour,
		RenderTimeout:   30 * time.Second,
		CleanupPatterns: []string{"*"},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Storage: StorageConfig{
			Backend: StorageLocal,
			Dir:     "library",
		},
	}
}
