package config

import (
	"os"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"

	"AuthentiGo/pkg/imaging"
)

// Config holds AuthentiGo configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type ServerConfig struct {
	Addr           string `yaml:"addr"`             // HTTP listen address, e.g. ":8080"
	UploadDir      string `yaml:"upload_dir"`       // where uploaded images are stored
	MaxUploadBytes int64  `yaml:"max_upload_bytes"` // request body cap
	RetainUploads  *bool  `yaml:"retain_uploads"`   // keep uploads after scoring
}

type AnalysisConfig struct {
	Workers         int           `yaml:"workers"`
	MaxFileBytes    int64         `yaml:"max_file_bytes"`
	MaxPixels       int64         `yaml:"max_pixels"` // width*height refused before decoding
	DownloadTimeout time.Duration `yaml:"download_timeout"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

const (
	DefaultAddr            = ":8080"
	DefaultUploadDir       = "static/uploads"
	DefaultMaxUploadBytes  = 20 << 20
	DefaultMaxFileBytes    = 100 << 20
	DefaultDownloadTimeout = 60 * time.Second
)

// Load reads configuration from a YAML file.
// If the file doesn't exist, it returns a default config and no error.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)

	return &cfg, nil
}

// Default returns the configuration used when no file is given
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Retain reports whether uploads are kept after scoring
func (s ServerConfig) Retain() bool {
	return s.RetainUploads == nil || *s.RetainUploads
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = DefaultAddr
	}
	if cfg.Server.UploadDir == "" {
		cfg.Server.UploadDir = DefaultUploadDir
	}
	if cfg.Server.MaxUploadBytes == 0 {
		cfg.Server.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if cfg.Server.RetainUploads == nil {
		retain := true
		cfg.Server.RetainUploads = &retain
	}

	if cfg.Analysis.Workers == 0 {
		cfg.Analysis.Workers = runtime.NumCPU()
	}
	if cfg.Analysis.MaxFileBytes == 0 {
		cfg.Analysis.MaxFileBytes = DefaultMaxFileBytes
	}
	if cfg.Analysis.MaxPixels == 0 {
		cfg.Analysis.MaxPixels = imaging.DefaultMaxPixels
	}
	if cfg.Analysis.DownloadTimeout == 0 {
		cfg.Analysis.DownloadTimeout = DefaultDownloadTimeout
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
}
