package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		Server:   ServerConfig{Port: "8080", Env: "development"},
		Supabase: SupabaseConfig{URL: "https://project.supabase.co", ServiceKey: "service-key"},
		Store:    StoreConfig{Driver: DriverSupabase},
		Analytics: AnalyticsConfig{
			Timezone:          "Australia/Sydney",
			DefaultWindowDays: 7,
			InsightCacheTTL:   time.Hour,
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"supabase store", func(c *Config) {}, ""},
		{"supabase store without url", func(c *Config) { c.Supabase.URL = "" }, "SUPABASE_URL"},
		{"supabase store without key", func(c *Config) { c.Supabase.ServiceKey = "" }, "SUPABASE_SERVICE_KEY"},
		{"sqlite store with jwt secret", func(c *Config) {
			c.Store = StoreConfig{Driver: DriverSQLite, DSN: "file:cradle.db"}
			c.Supabase = SupabaseConfig{JWTSecret: "secret"}
		}, ""},
		{"postgres store without dsn", func(c *Config) { c.Store.Driver = DriverPostgres }, "DATABASE_URL"},
		{"sqlite store without auth", func(c *Config) {
			c.Store = StoreConfig{Driver: DriverSQLite, DSN: "file:cradle.db"}
			c.Supabase = SupabaseConfig{}
		}, "authentication"},
		{"unknown driver", func(c *Config) { c.Store.Driver = "mongo" }, "unsupported store driver"},
		{"window too small", func(c *Config) { c.Analytics.DefaultWindowDays = 2 }, "default_window_days"},
		{"window too large", func(c *Config) { c.Analytics.DefaultWindowDays = 31 }, "default_window_days"},
		{"negative ttl", func(c *Config) { c.Analytics.InsightCacheTTL = -time.Second }, "insight_cache_ttl"},
		{"bad timezone", func(c *Config) { c.Analytics.Timezone = "Mars/Olympus" }, "timezone"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()

			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestAnalyticsLocation_DefaultsToUTC(t *testing.T) {
	loc, err := AnalyticsConfig{}.Location()
	if err != nil {
		t.Fatal(err)
	}
	if loc != time.UTC {
		t.Errorf("location = %v, want UTC", loc)
	}
}

func TestLoad_FromEnvironment(t *testing.T) {
	// Run from an empty directory so no config.yaml is picked up
	t.Chdir(t.TempDir())

	t.Setenv("PORT", "9090")
	t.Setenv("SUPABASE_URL", "https://project.supabase.co")
	t.Setenv("SUPABASE_SERVICE_KEY", "service-key")
	t.Setenv("CRADLE_ANALYTICS_TIMEZONE", "Australia/Sydney")
	t.Setenv("CRADLE_ANALYTICS_INSIGHT_CACHE_TTL", "30m")
	t.Setenv("CRADLE_CORS_ALLOWED_ORIGINS", "https://app.cradle.example, https://*.cradle-app.pages.dev")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("Server.Port = %q, want 9090", cfg.Server.Port)
	}
	if cfg.Store.Driver != DriverSupabase {
		t.Errorf("Store.Driver = %q, want supabase", cfg.Store.Driver)
	}
	if cfg.Analytics.DefaultWindowDays != 7 {
		t.Errorf("DefaultWindowDays = %d, want 7", cfg.Analytics.DefaultWindowDays)
	}
	if cfg.Analytics.InsightCacheTTL != 30*time.Minute {
		t.Errorf("InsightCacheTTL = %v, want 30m", cfg.Analytics.InsightCacheTTL)
	}
	if cfg.Checklist.DefaultJurisdiction != "NSW" {
		t.Errorf("DefaultJurisdiction = %q, want NSW", cfg.Checklist.DefaultJurisdiction)
	}
	if len(cfg.CORS.AllowedOrigins) != 2 || cfg.CORS.AllowedOrigins[1] != "https://*.cradle-app.pages.dev" {
		t.Errorf("AllowedOrigins = %v", cfg.CORS.AllowedOrigins)
	}
}

func TestLoad_FromConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	yaml := `
server:
  env: production
store:
  driver: SQLite
  dsn: file:cradle.db
supabase:
  jwt_secret: secret
checklist:
  default_jurisdiction: VIC
notifications:
  email:
    from_email: reminders@cradle.example
`
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Server.Env != "production" {
		t.Errorf("Server.Env = %q", cfg.Server.Env)
	}
	if cfg.Store.Driver != DriverSQLite || cfg.Store.DSN != "file:cradle.db" {
		t.Errorf("Store = %+v", cfg.Store)
	}
	if cfg.Checklist.DefaultJurisdiction != "VIC" {
		t.Errorf("DefaultJurisdiction = %q", cfg.Checklist.DefaultJurisdiction)
	}
	if cfg.Notifications.Email.FromEmail != "reminders@cradle.example" || cfg.Notifications.Email.FromName != "Cradle" {
		t.Errorf("Email = %+v", cfg.Notifications.Email)
	}
}

func TestLoad_InvalidConfigFails(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CRADLE_STORE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("CRADLE_STORE_DSN", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for postgres store without DATABASE_URL")
	}
}
