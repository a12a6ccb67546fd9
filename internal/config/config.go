// Package config provides configuration management for practicals using
// Viper for flexible loading from files, environment variables and
// command-line flags.
//
// The configuration system supports YAML files, environment variable
// overrides with the PRACTICALS_ prefix, and validation. It covers the HTTP
// server, the page directory the example registry lists, the layout shell,
// live reload during development, logging and the demo mailer.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Page ordering modes for the navigation menu.
const (
	// OrderNative keeps entries in the order the directory listing returned.
	OrderNative = "native"
	// OrderName sorts entries by file name.
	OrderName = "name"
)

// DefaultReserved lists the shell-part base names that never show up in the
// navigation menu.
var DefaultReserved = []string{"header", "footer", "navbar", "sidebar"}

// DefaultStylesheets are linked from the page head.
var DefaultStylesheets = []string{
	"https://cdn.jsdelivr.net/npm/bootstrap@5.3.2/dist/css/bootstrap.min.css",
	"/static/sidebars.css",
}

type Config struct {
	Server      ServerConfig      `yaml:"server" mapstructure:"server"`
	Pages       PagesConfig       `yaml:"pages" mapstructure:"pages"`
	Layout      LayoutConfig      `yaml:"layout" mapstructure:"layout"`
	Development DevelopmentConfig `yaml:"development" mapstructure:"development"`
	Log         LogConfig         `yaml:"log" mapstructure:"log"`
	Mail        MailConfig        `yaml:"mail" mapstructure:"mail"`
}

type ServerConfig struct {
	Port int    `yaml:"port" mapstructure:"port"`
	Host string `yaml:"host" mapstructure:"host"`
}

type PagesConfig struct {
	// Dir is the page directory. Empty means the pages embedded in the binary.
	Dir       string   `yaml:"dir" mapstructure:"dir"`
	Extension string   `yaml:"extension" mapstructure:"extension"`
	Index     string   `yaml:"index" mapstructure:"index"`
	Reserved  []string `yaml:"reserved" mapstructure:"reserved"`
	Order     string   `yaml:"order" mapstructure:"order"`
}

type LayoutConfig struct {
	DefaultTitle string   `yaml:"default_title" mapstructure:"default_title"`
	Stylesheets  []string `yaml:"stylesheets" mapstructure:"stylesheets"`
}

type DevelopmentConfig struct {
	LiveReload bool `yaml:"live_reload" mapstructure:"live_reload"`
	DebounceMs int  `yaml:"debounce_ms" mapstructure:"debounce_ms"`
}

type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

type MailConfig struct {
	From string `yaml:"from" mapstructure:"from"`
}

// IndexFile returns the file name served for "/".
func (p PagesConfig) IndexFile() string {
	return p.Index + "." + p.Extension
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func Load() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	// Handle slices set via viper (workaround for viper slice handling of env values)
	if viper.IsSet("pages.reserved") && len(config.Pages.Reserved) == 0 {
		config.Pages.Reserved = viper.GetStringSlice("pages.reserved")
	}
	if viper.IsSet("layout.stylesheets") && len(config.Layout.Stylesheets) == 0 {
		config.Layout.Stylesheets = viper.GetStringSlice("layout.stylesheets")
	}

	applyDefaults(&config)

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func applyDefaults(config *Config) {
	if config.Server.Host == "" {
		config.Server.Host = "localhost"
	}
	if config.Server.Port == 0 && !viper.IsSet("server.port") {
		config.Server.Port = 8080
	}

	if config.Pages.Extension == "" {
		config.Pages.Extension = "html"
	}
	if config.Pages.Index == "" {
		config.Pages.Index = "index"
	}
	if len(config.Pages.Reserved) == 0 {
		config.Pages.Reserved = append([]string(nil), DefaultReserved...)
	}
	if config.Pages.Order == "" {
		config.Pages.Order = OrderNative
	}

	if config.Layout.DefaultTitle == "" {
		config.Layout.DefaultTitle = "Practical Exercise"
	}
	if len(config.Layout.Stylesheets) == 0 {
		config.Layout.Stylesheets = append([]string(nil), DefaultStylesheets...)
	}

	if config.Development.DebounceMs == 0 {
		config.Development.DebounceMs = 300
	}

	if config.Log.Level == "" {
		config.Log.Level = "info"
	}
	if config.Log.Format == "" {
		config.Log.Format = "text"
	}

	if config.Mail.From == "" {
		config.Mail.From = "no-reply@example.com"
	}
}
