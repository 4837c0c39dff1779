package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Store drivers
const (
	DriverSupabase = "supabase"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds all configuration for the application
type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Logging       LoggingConfig       `mapstructure:"logging"`
	Supabase      SupabaseConfig      `mapstructure:"supabase"`
	Store         StoreConfig         `mapstructure:"store"`
	Analytics     AnalyticsConfig     `mapstructure:"analytics"`
	Checklist     ChecklistConfig     `mapstructure:"checklist"`
	Notifications NotificationsConfig `mapstructure:"notifications"`
	CORS          CORSConfig          `mapstructure:"cors"`
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string `mapstructure:"port"`
	Env  string `mapstructure:"env"`
}

// LoggingConfig selects the log level and output format (json or text)
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SupabaseConfig holds Supabase-specific configuration
type SupabaseConfig struct {
	URL        string `mapstructure:"url"`
	ServiceKey string `mapstructure:"service_key"`
	// JWTSecret enables local token verification instead of a call to
	// /auth/v1/user on every request
	JWTSecret string `mapstructure:"jwt_secret"`
}

// StoreConfig picks where children, activities and checklists live
type StoreConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

// AnalyticsConfig holds defaults for the analytics endpoints
type AnalyticsConfig struct {
	Timezone          string        `mapstructure:"timezone"`
	DefaultWindowDays int           `mapstructure:"default_window_days"`
	InsightCacheTTL   time.Duration `mapstructure:"insight_cache_ttl"`
}

// ChecklistConfig holds defaults for checklist generation
type ChecklistConfig struct {
	DefaultJurisdiction string `mapstructure:"default_jurisdiction"`
}

// EmailConfig configures SES delivery of reminder emails. Leaving
// FromEmail empty disables email reminders.
type EmailConfig struct {
	Region    string `mapstructure:"region"`
	FromEmail string `mapstructure:"from_email"`
	FromName  string `mapstructure:"from_name"`
}

// NotificationsConfig holds reminder delivery settings
type NotificationsConfig struct {
	Email           EmailConfig `mapstructure:"email"`
	AppBaseURL      string      `mapstructure:"app_base_url"`
	CalendarEnabled bool        `mapstructure:"calendar_enabled"`
}

// CORSConfig holds the allowed browser origins. Empty allows all.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Location resolves the analytics timezone, defaulting to UTC
func (a AnalyticsConfig) Location() (*time.Location, error) {
	if a.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(a.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid analytics timezone %q: %w", a.Timezone, err)
	}
	return loc, nil
}

// Every key needs a default so AutomaticEnv can see it during Unmarshal
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.env", "development")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("store.driver", DriverSupabase)
	v.SetDefault("analytics.timezone", "UTC")
	v.SetDefault("analytics.default_window_days", 7)
	v.SetDefault("analytics.insight_cache_ttl", time.Hour)
	v.SetDefault("checklist.default_jurisdiction", "NSW")
	v.SetDefault("notifications.email.region", "us-east-1")
	v.SetDefault("notifications.email.from_email", "")
	v.SetDefault("notifications.email.from_name", "Cradle")
	v.SetDefault("notifications.app_base_url", "")
	v.SetDefault("notifications.calendar_enabled", true)
	v.SetDefault("cors.allowed_origins", []string{})
}

// Load reads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	// Read from environment variables
	v.SetEnvPrefix("CRADLE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Also bind to non-prefixed environment variables used by the hosting platform
	_ = v.BindEnv("server.port", "CRADLE_SERVER_PORT", "PORT")
	_ = v.BindEnv("supabase.url", "CRADLE_SUPABASE_URL", "SUPABASE_URL")
	_ = v.BindEnv("supabase.service_key", "CRADLE_SUPABASE_SERVICE_KEY", "SUPABASE_SERVICE_KEY")
	_ = v.BindEnv("supabase.jwt_secret", "CRADLE_SUPABASE_JWT_SECRET", "SUPABASE_JWT_SECRET")
	_ = v.BindEnv("store.dsn", "CRADLE_STORE_DSN", "DATABASE_URL")

	// Read from config file if it exists
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// It's okay if config file doesn't exist
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Comma separated lists arrive from the environment as one string
	config.CORS.AllowedOrigins = splitList(config.CORS.AllowedOrigins)
	config.Store.Driver = strings.ToLower(strings.TrimSpace(config.Store.Driver))

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func splitList(values []string) []string {
	var out []string
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// Validate checks that all required configuration values are present
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverSupabase:
		if c.Supabase.URL == "" {
			return fmt.Errorf("SUPABASE_URL is required")
		}
		if c.Supabase.ServiceKey == "" {
			return fmt.Errorf("SUPABASE_SERVICE_KEY is required")
		}
	case DriverPostgres, DriverSQLite:
		if c.Store.DSN == "" {
			return fmt.Errorf("DATABASE_URL is required for the %s store", c.Store.Driver)
		}
		// Tokens still come from Supabase Auth
		if c.Supabase.JWTSecret == "" && (c.Supabase.URL == "" || c.Supabase.ServiceKey == "") {
			return fmt.Errorf("SUPABASE_JWT_SECRET or SUPABASE_URL and SUPABASE_SERVICE_KEY are required for authentication")
		}
	default:
		return fmt.Errorf("unsupported store driver %q", c.Store.Driver)
	}

	if c.Analytics.DefaultWindowDays < 3 || c.Analytics.DefaultWindowDays > 30 {
		return fmt.Errorf("analytics.default_window_days must be between 3 and 30, got %d", c.Analytics.DefaultWindowDays)
	}
	if c.Analytics.InsightCacheTTL < 0 {
		return fmt.Errorf("analytics.insight_cache_ttl must not be negative")
	}
	if _, err := c.Analytics.Location(); err != nil {
		return err
	}

	return nil
}
