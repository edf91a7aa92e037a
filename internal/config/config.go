// File: internal/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds the entire application configuration.
type Config struct {
	Logger     LoggerConfig     `mapstructure:"logger" yaml:"logger"`
	Driver     DriverConfig     `mapstructure:"driver" yaml:"driver"`
	Wait       WaitConfig       `mapstructure:"wait" yaml:"wait"`
	Screenshot ScreenshotConfig `mapstructure:"screenshot" yaml:"screenshot"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"`
	AddSource   bool   `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int    `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool   `mapstructure:"compress" yaml:"compress"`
}

// DriverConfig describes how to start and connect to the WebDriver service.
type DriverConfig struct {
	// Browser is the browser name requested in the session capabilities,
	// e.g. "chrome" or "firefox".
	Browser string `mapstructure:"browser" yaml:"browser"`
	// Path is the location of the driver binary (chromedriver, geckodriver).
	// When empty, webpilot connects to an already-running service at URL.
	Path string `mapstructure:"path" yaml:"path"`
	// Port the driver service listens on when webpilot starts it itself.
	Port int `mapstructure:"port" yaml:"port"`
	// URL of an externally managed WebDriver endpoint. Ignored when Path is set.
	URL      string   `mapstructure:"url" yaml:"url"`
	Headless bool     `mapstructure:"headless" yaml:"headless"`
	Args     []string `mapstructure:"args" yaml:"args"`
}

// WaitConfig tunes the explicit-wait behavior of every dispatched operation.
type WaitConfig struct {
	// Timeout is the default bound for all element waits.
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
	// PollInterval is how often a wait condition is re-evaluated.
	PollInterval time.Duration `mapstructure:"poll_interval" yaml:"poll_interval"`
	// KeyDelay paces per-rune keyboard entry in TypeKeys.
	KeyDelay time.Duration `mapstructure:"key_delay" yaml:"key_delay"`
}

// ScreenshotConfig controls where failure screenshots are written.
type ScreenshotConfig struct {
	ErrorDir string `mapstructure:"error_dir" yaml:"error_dir"`
}

// DefaultErrorScreenshotDir is the fallback location for failure screenshots.
func DefaultErrorScreenshotDir() string {
	return filepath.Join(os.TempDir(), "webpilot", "error-screenshots")
}

// NewDefaultConfig creates a new configuration struct populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// This should not happen with defaults, but good to be safe.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// SetDefaults initializes default values for various configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "webpilot")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)

	// -- Driver --
	v.SetDefault("driver.browser", "chrome")
	v.SetDefault("driver.path", "")
	v.SetDefault("driver.port", 9515)
	v.SetDefault("driver.url", "")
	v.SetDefault("driver.headless", true)

	// -- Wait --
	v.SetDefault("wait.timeout", "10s")
	v.SetDefault("wait.poll_interval", "500ms")
	v.SetDefault("wait.key_delay", "50ms")

	// -- Screenshot --
	v.SetDefault("screenshot.error_dir", DefaultErrorScreenshotDir())
}

// NewConfigFromViper creates a new configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if c.Driver.Browser == "" {
		return fmt.Errorf("driver.browser must not be empty")
	}
	if c.Driver.Path != "" && (c.Driver.Port <= 0 || c.Driver.Port > 65535) {
		return fmt.Errorf("driver.port must be a valid TCP port when driver.path is set")
	}
	if c.Wait.Timeout <= 0 {
		return fmt.Errorf("wait.timeout must be a positive duration")
	}
	if c.Wait.PollInterval <= 0 {
		return fmt.Errorf("wait.poll_interval must be a positive duration")
	}
	if c.Wait.PollInterval > c.Wait.Timeout {
		return fmt.Errorf("wait.poll_interval must not exceed wait.timeout")
	}
	if c.Wait.KeyDelay < 0 {
		return fmt.Errorf("wait.key_delay must not be negative")
	}
	if c.Screenshot.ErrorDir == "" {
		return fmt.Errorf("screenshot.error_dir must not be empty")
	}
	return nil
}
