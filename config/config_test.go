package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNormalizeDatabaseURL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"public host gets tls", "postgres://u:p@db.example.com:5432/app", "postgresql://u:p@db.example.com:5432/app?sslmode=require"},
		{"railway internal untouched", "postgres://u:p@pg.railway.internal:5432/app", "postgresql://u:p@pg.railway.internal:5432/app"},
		{"explicit sslmode kept", "postgresql://u:p@localhost/app?sslmode=disable", "postgresql://u:p@localhost/app?sslmode=disable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeDatabaseURL(tt.in); got != tt.want {
				t.Errorf("NormalizeDatabaseURL(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func clearEnv(t *testing.T) {
	for _, k := range []string{
		"APP_ADDR", "PORT", "DB_DRIVER", "DATABASE_URL", "DB_DSN", "APP_USERNAME", "APP_PASSWORD",
		"SESSION_SECRET", "SESSION_HOURS", "RATE_LIMIT_MAX",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadReportsMissingEnv(t *testing.T) {
	clearEnv(t)
	_, err := Load()
	if err == nil {
		t.Fatal("expected an error")
	}
	for _, key := range []string{"DATABASE_URL or DB_DSN", "APP_USERNAME", "APP_PASSWORD", "SESSION_SECRET"} {
		if !strings.Contains(err.Error(), key) {
			t.Errorf("error %q does not mention %s", err, key)
		}
	}
}

func TestLoad(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("DB_DSN", "file:test.db")
	t.Setenv("APP_USERNAME", "admin")
	t.Setenv("APP_PASSWORD", "secret")
	t.Setenv("SESSION_SECRET", "x")
	t.Setenv("PORT", "9000")
	t.Setenv("SESSION_HOURS", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DBDriver != "sqlite" || cfg.DSN() != "file:test.db" {
		t.Errorf("database settings: %s %s", cfg.DBDriver, cfg.DSN())
	}
	if cfg.Addr != ":9000" {
		t.Errorf("Addr = %q", cfg.Addr)
	}
	if cfg.SessionHours != 12 {
		t.Errorf("SessionHours = %d, want fallback 12", cfg.SessionHours)
	}

	t.Setenv("DB_DRIVER", "oracle")
	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "oracle") {
		t.Errorf("unsupported driver accepted: %v", err)
	}
}

func TestLoadCompany(t *testing.T) {
	c, err := LoadCompany("")
	if err != nil || c != DefaultCompany() {
		t.Fatalf("empty path: %+v, %v", c, err)
	}

	path := filepath.Join(t.TempDir(), "company.yaml")
	if err := os.WriteFile(path, []byte("name: ร้านทดสอบ\ntax_id: \"0105550000001\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	c, err = LoadCompany(path)
	if err != nil {
		t.Fatalf("LoadCompany: %v", err)
	}
	if c.Name != "ร้านทดสอบ" || c.TaxID != "0105550000001" {
		t.Errorf("overrides not applied: %+v", c)
	}
	if c.Address != DefaultCompany().Address {
		t.Errorf("missing keys should keep defaults, got address %q", c.Address)
	}

	if _, err := LoadCompany(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected an error for a missing file")
	}
}
