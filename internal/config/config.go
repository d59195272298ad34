// internal/config/config.go
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	Logging LoggingConfig `mapstructure:"logging"`
	Profile ProfileConfig `mapstructure:"profile"`
	Render  RenderConfig  `mapstructure:"render"`
	App     AppConfig     `mapstructure:"app"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level" validate:"required"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

// ProfileConfig selects the printer capability profile
type ProfileConfig struct {
	Name string `mapstructure:"name" validate:"required"`
	// Path points at an external capability database; empty uses the
	// embedded one.
	Path string `mapstructure:"path"`
	// Encoding is the code page assumed active on the device at job
	// start. Empty means no code page is selected yet.
	Encoding string `mapstructure:"encoding"`
	// DefaultSymbol substitutes characters no code page can carry.
	DefaultSymbol string `mapstructure:"default_symbol"`
}

// RenderConfig represents rendering defaults
type RenderConfig struct {
	// ImageImpl forces an image transfer mode; empty picks the best the
	// profile supports.
	ImageImpl string `mapstructure:"image_impl"`
	// ImageFragmentHeight caps the rows per image command, 0 for the
	// mode default.
	ImageFragmentHeight int `mapstructure:"image_fragment_height"`
	// BarcodeSoftware routes all barcodes through the software renderer.
	BarcodeSoftware bool `mapstructure:"barcode_software"`
	HighDensity     bool `mapstructure:"high_density"`
}

// AppConfig represents application metadata
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Version     string `mapstructure:"version" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required"`
	Debug       bool   `mapstructure:"debug"`
}

// Load loads configuration from file and environment variables
func Load(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("printgen")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/printgen")
	}

	// Environment variable support
	v.SetEnvPrefix("PRINTGEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set defaults
	setDefaults(v)

	// Read config file; a missing file is fine unless one was named
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.output", "stderr")
	v.SetDefault("logging.max_size", 100)
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("logging.max_age", 28)
	v.SetDefault("logging.compress", true)

	// Profile defaults
	v.SetDefault("profile.name", "default")
	v.SetDefault("profile.default_symbol", "?")

	// Render defaults
	v.SetDefault("render.high_density", true)

	// App defaults
	v.SetDefault("app.name", "printgen")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.debug", false)
}

// validate validates the configuration
func validate(config *Config) error {
	// Basic validation
	if config.Profile.Name == "" {
		return fmt.Errorf("profile.name is required")
	}

	// Validate environment
	validEnvs := []string{"development", "staging", "production", "test"}
	isValidEnv := false
	for _, env := range validEnvs {
		if config.App.Environment == env {
			isValidEnv = true
			break
		}
	}
	if !isValidEnv {
		return fmt.Errorf("app.environment must be one of: %v", validEnvs)
	}

	// Validate logging level
	validLevels := []string{"debug", "info", "warn", "error", "fatal"}
	isValidLevel := false
	for _, level := range validLevels {
		if config.Logging.Level == level {
			isValidLevel = true
			break
		}
	}
	if !isValidLevel {
		return fmt.Errorf("logging.level must be one of: %v", validLevels)
	}

	if config.Render.ImageFragmentHeight < 0 {
		return fmt.Errorf("render.image_fragment_height must not be negative")
	}

	return nil
}

// IsProduction checks if the environment is production
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// IsDevelopment checks if the environment is development
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsDebugEnabled checks if debug mode is enabled
func (c *Config) IsDebugEnabled() bool {
	return c.App.Debug || c.IsDevelopment()
}
