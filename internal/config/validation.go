package config

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/conneroisu/practicals/internal/logging"
)

var extensionPattern = regexp.MustCompile(`^[A-Za-z0-9]+$`)

var dangerousChars = []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\"", "'", "\\"}

// validateConfig validates configuration values for security and correctness
func validateConfig(config *Config) error {
	if err := validateServerConfig(&config.Server); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if err := validatePagesConfig(&config.Pages); err != nil {
		return fmt.Errorf("pages config: %w", err)
	}

	if err := validateDevelopmentConfig(&config.Development); err != nil {
		return fmt.Errorf("development config: %w", err)
	}

	if err := validateLogConfig(&config.Log); err != nil {
		return fmt.Errorf("log config: %w", err)
	}

	return nil
}

// validateServerConfig validates server configuration values
func validateServerConfig(config *ServerConfig) error {
	// Allow 0 for system-assigned ports in testing
	if config.Port < 0 || config.Port > 65535 {
		return fmt.Errorf("port %d is not in valid range 0-65535", config.Port)
	}

	for _, char := range dangerousChars {
		if strings.Contains(config.Host, char) {
			return fmt.Errorf("host contains dangerous character: %s", char)
		}
	}

	return nil
}

// validatePagesConfig validates the page directory settings
func validatePagesConfig(config *PagesConfig) error {
	if config.Dir != "" {
		if err := validatePath(config.Dir); err != nil {
			return fmt.Errorf("invalid dir '%s': %w", config.Dir, err)
		}
	}

	if !extensionPattern.MatchString(config.Extension) {
		return fmt.Errorf("extension %q must be alphanumeric without a leading dot", config.Extension)
	}

	if config.Index == "" || strings.ContainsAny(config.Index, `/\.`) {
		return fmt.Errorf("index %q must be a bare file name", config.Index)
	}

	for _, name := range config.Reserved {
		if name == "" || strings.ContainsAny(name, `/\`) {
			return fmt.Errorf("reserved name %q must be a bare file name", name)
		}
	}

	switch config.Order {
	case OrderNative, OrderName:
	default:
		return fmt.Errorf("order %q must be %q or %q", config.Order, OrderNative, OrderName)
	}

	return nil
}

func validateDevelopmentConfig(config *DevelopmentConfig) error {
	if config.DebounceMs < 0 {
		return fmt.Errorf("debounce_ms must not be negative, got %d", config.DebounceMs)
	}
	return nil
}

func validateLogConfig(config *LogConfig) error {
	if _, err := logging.ParseLevel(config.Level); err != nil {
		return err
	}
	switch config.Format {
	case "text", "json":
	default:
		return fmt.Errorf("format %q must be text or json", config.Format)
	}
	return nil
}

// validatePath validates a file path for security
func validatePath(path string) error {
	cleanPath := filepath.Clean(path)

	for _, char := range dangerousChars {
		if strings.Contains(cleanPath, char) {
			return fmt.Errorf("path contains dangerous character: %s", char)
		}
	}

	return nil
}
