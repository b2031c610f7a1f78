package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Log      LogConfig      `mapstructure:"log" validate:"required"`
	Notifier NotifierConfig `mapstructure:"notifier" validate:"required"`
	Line     LineConfig     `mapstructure:"line"`
	App      AppConfig      `mapstructure:"app" validate:"required"`
	Maps     MapsConfig     `mapstructure:"maps" validate:"required"`
}

// ServerConfig contains the HTTP listener settings.
type ServerConfig struct {
	Port int `mapstructure:"port" validate:"required,gt=0,lt=65536"`
}

// DatabaseConfig contains the SQLite settings.
type DatabaseConfig struct {
	Path     string `mapstructure:"path" validate:"required"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=silent error warn info"`
}

// LogConfig contains the application log settings.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR"`
}

// NotifierConfig selects how reminders reach the user.
type NotifierConfig struct {
	Kind string `mapstructure:"kind" validate:"required,oneof=log dbus line"`
}

// LineConfig holds LINE Messaging API credentials for the line notifier.
type LineConfig struct {
	ChannelSecret string `mapstructure:"channel_secret"`
	ChannelToken  string `mapstructure:"channel_token"`
	RecipientID   string `mapstructure:"recipient_id"`
}

// AppConfig holds settings for the memo domain itself.
type AppConfig struct {
	Timezone string `mapstructure:"timezone" validate:"required"`
}

// MapsConfig holds the map provider used for location links.
type MapsConfig struct {
	BaseURL string `mapstructure:"base_url" validate:"required,url"`
}

// Location resolves the configured timezone. "Local" means the host zone.
func (c AppConfig) Location() (*time.Location, error) {
	if strings.EqualFold(c.Timezone, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// env maps configuration keys to the environment variables that set them.
var env = map[string]string{
	"server.port":         "PORT",
	"database.path":       "MEMO_DB_PATH",
	"database.log_level":  "DB_LOG_LEVEL",
	"log.level":           "LOG_LEVEL",
	"notifier.kind":       "NOTIFIER",
	"line.channel_secret": "CHANNEL_SECRET",
	"line.channel_token":  "CHANNEL_ACCESS_TOKEN",
	"line.recipient_id":   "LINE_RECIPIENT_ID",
	"app.timezone":        "MEMO_TIMEZONE",
	"maps.base_url":       "MAPS_BASE_URL",
}

var defaults = map[string]any{
	"server.port":         8080,
	"database.path":       "memo.db",
	"database.log_level":  "warn",
	"log.level":           "INFO",
	"notifier.kind":       "log",
	"line.channel_secret": "",
	"line.channel_token":  "",
	"line.recipient_id":   "",
	"app.timezone":        "Local",
	"maps.base_url":       "https://www.google.com/maps/search/",
}

// Load reads configuration from environment variables, falling back to defaults,
// and validates the result.
func Load() (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	for key, name := range env {
		if err := v.BindEnv(key, name); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", name, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Log.Level = strings.ToUpper(cfg.Log.Level)
	cfg.Database.LogLevel = strings.ToLower(cfg.Database.LogLevel)
	cfg.Notifier.Kind = strings.ToLower(cfg.Notifier.Kind)

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if cfg.Notifier.Kind == "line" && (cfg.Line.ChannelSecret == "" || cfg.Line.ChannelToken == "") {
		return nil, fmt.Errorf("invalid config: CHANNEL_SECRET and CHANNEL_ACCESS_TOKEN are required for the line notifier")
	}
	if _, err := cfg.App.Location(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}
