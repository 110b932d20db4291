package config

import (
	"errors"
	"fmt"
	"net"
	"strings"
)

// Validate checks the loaded config for required fields and safe values.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}

	if strings.TrimSpace(cfg.Server.Addr) == "" {
		return errors.New("server.addr must be set")
	}
	if _, _, err := net.SplitHostPort(cfg.Server.Addr); err != nil {
		return fmt.Errorf("server.addr %q is not host:port: %w", cfg.Server.Addr, err)
	}
	if strings.TrimSpace(cfg.Server.UploadDir) == "" {
		return errors.New("server.upload_dir must be set")
	}
	if cfg.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("server.max_upload_bytes must be positive, got %d", cfg.Server.MaxUploadBytes)
	}

	if cfg.Analysis.Workers < 0 {
		return fmt.Errorf("analysis.workers must not be negative, got %d", cfg.Analysis.Workers)
	}
	if cfg.Analysis.MaxFileBytes <= 0 {
		return fmt.Errorf("analysis.max_file_bytes must be positive, got %d", cfg.Analysis.MaxFileBytes)
	}
	if cfg.Analysis.MaxPixels <= 0 {
		return fmt.Errorf("analysis.max_pixels must be positive, got %d", cfg.Analysis.MaxPixels)
	}
	if cfg.Analysis.DownloadTimeout <= 0 {
		return fmt.Errorf("analysis.download_timeout must be positive, got %s", cfg.Analysis.DownloadTimeout)
	}

	switch strings.ToLower(cfg.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level %q must be one of debug, info, warn, error", cfg.Logging.Level)
	}
	switch strings.ToLower(cfg.Logging.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format %q must be text or json", cfg.Logging.Format)
	}

	return nil
}
