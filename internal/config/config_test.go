package config

import (
	"strings"
	"testing"
	"time"
)

func env(vars map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := LoadFrom(env(nil))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want %q", cfg.Server.Host, "0.0.0.0")
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 8080)
	}
	if cfg.Upload.MaxFileSize != 52428800 {
		t.Errorf("Upload.MaxFileSize = %d, want %d", cfg.Upload.MaxFileSize, 52428800)
	}
	if cfg.Session.TTL != 2*time.Hour {
		t.Errorf("Session.TTL = %v, want %v", cfg.Session.TTL, 2*time.Hour)
	}
	if cfg.Compare.DefaultKeyColumn != "" {
		t.Errorf("Compare.DefaultKeyColumn = %q, want empty", cfg.Compare.DefaultKeyColumn)
	}
	if cfg.Database.Enabled() {
		t.Error("Database.Enabled() = true with no DATABASE_URL")
	}
	if !cfg.Rate.Enabled {
		t.Error("Rate.Enabled = false, want true")
	}
}

func TestLoad_OverrideDefaults(t *testing.T) {
	cfg, err := LoadFrom(env(map[string]string{
		"SERVER_PORT":                "9090",
		"SESSION_TTL":                "15m",
		"COMPARE_DEFAULT_KEY_COLUMN": "EMIS No",
		"LOG_LEVEL":                  "debug",
		"TRUSTED_PROXIES":            "10.0.0.0/8, 127.0.0.1 ,",
	}))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 9090)
	}
	if cfg.Session.TTL != 15*time.Minute {
		t.Errorf("Session.TTL = %v, want %v", cfg.Session.TTL, 15*time.Minute)
	}
	if cfg.Compare.DefaultKeyColumn != "EMIS No" {
		t.Errorf("Compare.DefaultKeyColumn = %q, want %q", cfg.Compare.DefaultKeyColumn, "EMIS No")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
	if got := cfg.Security.TrustedProxies; len(got) != 2 || got[0] != "10.0.0.0/8" || got[1] != "127.0.0.1" {
		t.Errorf("Security.TrustedProxies = %q", got)
	}
}

func TestLoad_AltEnvVar(t *testing.T) {
	cfg, err := LoadFrom(env(map[string]string{"DB_URL": "postgres://localhost/alttest"}))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.Database.URL != "postgres://localhost/alttest" {
		t.Errorf("Database.URL = %q, want %q", cfg.Database.URL, "postgres://localhost/alttest")
	}
	if !cfg.Database.Enabled() {
		t.Error("Database.Enabled() = false with DB_URL set")
	}
}

func TestLoad_ProcessEnvironment(t *testing.T) {
	t.Setenv("SERVER_PORT", "7070")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 7070)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		vars map[string]string
		want string
	}{
		{"bad integer", map[string]string{"SERVER_PORT": "eighty"}, "SERVER_PORT"},
		{"bad duration", map[string]string{"SESSION_TTL": "soon"}, "SESSION_TTL"},
		{"bad bool", map[string]string{"RATE_LIMIT_ENABLED": "maybe"}, "RATE_LIMIT_ENABLED"},
		{"port out of range", map[string]string{"SERVER_PORT": "70000"}, "SERVER_PORT"},
		{"zero workers", map[string]string{"COMPARE_INDEX_WORKERS": "0"}, "COMPARE_INDEX_WORKERS"},
		{"bad log level", map[string]string{"LOG_LEVEL": "verbose"}, "LOG_LEVEL"},
		{"bad log format", map[string]string{"LOG_FORMAT": "xml"}, "LOG_FORMAT"},
		{
			"pool bounds with database",
			map[string]string{"DATABASE_URL": "postgres://x", "DB_MAX_CONNS": "2", "DB_MIN_CONNS": "4"},
			"DB_MAX_CONNS",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFrom(env(tt.vars))
			if err == nil {
				t.Fatal("LoadFrom() expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %s", err, tt.want)
			}
		})
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg, err := LoadFrom(env(nil))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	cfg.Server.Port = 0
	cfg.Session.TTL = 0
	cfg.Upload.MaxConcurrent = 0

	err = cfg.Validate()
	if err == nil {
		t.Fatal("Validate() expected error")
	}
	for _, want := range []string{"SERVER_PORT", "SESSION_TTL", "UPLOAD_MAX_CONCURRENT"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error does not mention %s: %v", want, err)
		}
	}
}

func TestConfig_StringMasksDatabase(t *testing.T) {
	cfg, err := LoadFrom(env(map[string]string{"DATABASE_URL": "postgres://user:secret@db/overlap"}))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	s := cfg.String()
	if strings.Contains(s, "secret") {
		t.Errorf("String() leaks credentials: %s", s)
	}
	if !strings.Contains(s, "[MASKED]") {
		t.Errorf("String() = %s, want masked URL", s)
	}
}

func TestServerConfig_Addr(t *testing.T) {
	c := ServerConfig{Host: "127.0.0.1", Port: 8080}
	if got := c.Addr(); got != "127.0.0.1:8080" {
		t.Errorf("Addr() = %q, want %q", got, "127.0.0.1:8080")
	}
	c.Host = ""
	if got := c.Addr(); got != ":8080" {
		t.Errorf("Addr() = %q, want %q", got, ":8080")
	}
}

func TestDefaults_IgnoresEnvironment(t *testing.T) {
	t.Setenv("SERVER_PORT", "9999")

	cfg := Defaults()
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Defaults().Validate() = %v", err)
	}
}
