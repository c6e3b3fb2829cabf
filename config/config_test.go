package config

import (
	"os"
	"testing"
)

func TestLoad(t *testing.T) {
	// Save and restore the environment
	origJWT := os.Getenv("JWT_SECRET")
	origPort := os.Getenv("PORT")
	origTZ := os.Getenv("REMINDER_TIMEZONE")
	defer func() {
		restore := func(key, val string) {
			if val != "" {
				os.Setenv(key, val)
			} else {
				os.Unsetenv(key)
			}
		}
		restore("JWT_SECRET", origJWT)
		restore("PORT", origPort)
		restore("REMINDER_TIMEZONE", origTZ)
	}()

	t.Run("fails without JWT_SECRET", func(t *testing.T) {
		os.Unsetenv("JWT_SECRET")
		_, err := Load()
		if err == nil {
			t.Error("Load() should fail without JWT_SECRET")
		}
		if err != nil && err.Error() != "JWT_SECRET is required" {
			t.Errorf("Load() error = %v, want 'JWT_SECRET is required'", err)
		}
	})

	t.Run("defaults", func(t *testing.T) {
		os.Setenv("JWT_SECRET", "test-secret")
		os.Unsetenv("PORT")
		os.Unsetenv("REMINDER_TIMEZONE")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.JWTSecret != "test-secret" {
			t.Errorf("JWTSecret = %v, want test-secret", cfg.JWTSecret)
		}
		if cfg.Port != "8090" {
			t.Errorf("Port = %v, want 8090 (default)", cfg.Port)
		}
		if cfg.ReminderTimezone != "Asia/Bangkok" {
			t.Errorf("ReminderTimezone = %v, want Asia/Bangkok (default)", cfg.ReminderTimezone)
		}
		if cfg.ReminderCron != "0 20 * * *" {
			t.Errorf("ReminderCron = %v, want '0 20 * * *' (default)", cfg.ReminderCron)
		}
	})

	t.Run("PORT from env", func(t *testing.T) {
		os.Setenv("JWT_SECRET", "test-secret")
		os.Setenv("PORT", "9999")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.Port != "9999" {
			t.Errorf("Port = %v, want 9999", cfg.Port)
		}
	})

	t.Run("CORS parsing", func(t *testing.T) {
		os.Setenv("JWT_SECRET", "test-secret")
		os.Setenv("CORS_ALLOWED_ORIGINS", "http://a.com, http://b.com , c.com")
		defer os.Unsetenv("CORS_ALLOWED_ORIGINS")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if len(cfg.CORSOrigins) != 3 {
			t.Errorf("CORSOrigins = %v, want 3 entries", cfg.CORSOrigins)
		}
	})
}
