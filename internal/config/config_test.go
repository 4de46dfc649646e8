package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const testSecret = "0123456789abcdef0123456789abcdef"

// clearEnv unsets every variable Load reads so the host environment does
// not leak into tests. godotenv treats a variable set to "" as present, so
// they are unset rather than blanked.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"TRACKER_CONFIG", "SERVER_PORT", "TRACKER_ADDR", "DB_DRIVER", "DATABASE_URL",
		"POSTGRES_HOST", "POSTGRES_PORT", "POSTGRES_USER", "POSTGRES_PASSWORD", "POSTGRES_DB",
		"JWT_SECRET", "LOG_LEVEL", "LOG_FORMAT", "TOKEN_TTL", "LOGIN_LIMIT",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoad_Precedence(t *testing.T) {
	clearEnv(t)
	yamlPath := writeFile(t, "tracker.yaml", `
server:
  addr: ":9000"
database:
  driver: sqlite3
  dsn: "file:from-yaml.db"
auth:
  jwt_secret: "`+testSecret+`"
  token_ttl: 2h
log:
  level: debug
  format: json
`)
	envPath := writeFile(t, ".env", "LOG_LEVEL=warn\nTRACKER_ADDR=:9100\n")
	t.Setenv("TRACKER_ADDR", ":9200")

	cfg, err := Load([]string{"--config", yamlPath, "--env-file", envPath, "--db-dsn", "file:from-flag.db"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != ":9200" {
		t.Errorf("addr = %q, want environment to win over .env", cfg.Server.Addr)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("level = %q, want .env to win over YAML", cfg.Log.Level)
	}
	if cfg.Log.Format != "json" || cfg.Auth.TokenTTL != 2*time.Hour {
		t.Errorf("YAML values lost: %+v", cfg)
	}
	if cfg.Database.DSN != "file:from-flag.db" {
		t.Errorf("dsn = %q, want flag to win", cfg.Database.DSN)
	}
	if cfg.Auth.LoginLimit != 5 {
		t.Errorf("default login limit lost: %d", cfg.Auth.LoginLimit)
	}
}

func TestLoad_PostgresParts(t *testing.T) {
	clearEnv(t)
	t.Setenv("POSTGRES_HOST", "db")
	t.Setenv("POSTGRES_PORT", "5432")
	t.Setenv("POSTGRES_USER", "tracker")
	t.Setenv("POSTGRES_PASSWORD", "pw")
	t.Setenv("POSTGRES_DB", "tracker")
	t.Setenv("SERVER_PORT", "8081")
	t.Setenv("JWT_SECRET", testSecret)

	cfg, err := Load([]string{"--env-file", ""})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := "host=db user=tracker password=pw dbname=tracker port=5432 sslmode=disable"
	if got := cfg.Database.DataSource(); got != want {
		t.Errorf("DataSource() = %q, want %q", got, want)
	}
	if cfg.Server.Addr != ":8081" {
		t.Errorf("addr = %q", cfg.Server.Addr)
	}
}

func TestLoad_ValidationReportsEverything(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "short")
	t.Setenv("DB_DRIVER", "mysql")
	t.Setenv("LOG_LEVEL", "loud")

	_, err := Load([]string{"--env-file", filepath.Join(t.TempDir(), "missing.env")})
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, part := range []string{"JWT_SECRET", "mysql", "loud", "DSN"} {
		if !strings.Contains(err.Error(), part) {
			t.Errorf("error %q does not mention %q", err, part)
		}
	}
}

func TestLoad_BadFile(t *testing.T) {
	clearEnv(t)
	if _, err := Load([]string{"--config", filepath.Join(t.TempDir(), "nope.yaml")}); err == nil {
		t.Fatal("expected error for missing config file")
	}
	bad := writeFile(t, "bad.yaml", "server: [")
	if _, err := Load([]string{"--config", bad}); err == nil {
		t.Fatal("expected error for malformed YAML")
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := LogConfig{Level: "warn", Format: "json"}.NewLogger(&buf)
	logger.Info("hidden")
	logger.Warn("shown", "key", "value")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info record should be filtered at warn level")
	}
	if !strings.Contains(out, `"msg":"shown"`) || !strings.Contains(out, `"key":"value"`) {
		t.Errorf("unexpected output %q", out)
	}
}
