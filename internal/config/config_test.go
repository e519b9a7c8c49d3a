package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"LOG_LEVEL", "BOT_TOKEN", "ADMIN_IDS", "POLL_TIMEOUT_SECONDS", "BOT_WORKERS",
		"SESSION_TTL", "DATABASE_DRIVER", "DATABASE_DSN", "REDIS_ADDR", "REDIS_PASSWORD",
		"REDIS_DB", "S3_ENDPOINT", "S3_ACCESS_KEY", "S3_SECRET_KEY", "S3_BUCKET",
		"S3_USE_SSL", "HTTP_ADDR", "TIMEZONE",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.Bot.SessionTTL != 5*time.Minute {
		t.Fatalf("expected default session ttl 5m, got %s", cfg.Bot.SessionTTL)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Fatalf("expected sqlite by default, got %q", cfg.Database.Driver)
	}
	if cfg.AlcoholTypes.Len() == 0 {
		t.Fatal("expected built-in alcohol types")
	}
	if cfg.ArchiveEnabled() {
		t.Fatal("expected archive disabled by default")
	}
}

func TestLoadYAMLThenEnv(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	doc := `
bot:
  admin_ids: [1, 2]
  session_ttl: 10m
database:
  driver: postgres
  dsn: postgres://localhost/alco
alcohol_types:
  mead:
    name: Медовуха
    strength: 10
    subtypes: [Класична]
    default_volume: 330
`
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("ADMIN_IDS", "7, 8,9")
	t.Setenv("SESSION_TTL", "90s")
	t.Setenv("S3_ENDPOINT", "localhost:9000")
	t.Setenv("S3_BUCKET", "evidence")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if len(cfg.Bot.AdminIDs) != 3 || cfg.Bot.AdminIDs[0] != 7 || cfg.Bot.AdminIDs[2] != 9 {
		t.Fatalf("unexpected admin ids: %v", cfg.Bot.AdminIDs)
	}
	if cfg.Bot.SessionTTL != 90*time.Second {
		t.Fatalf("expected env ttl override, got %s", cfg.Bot.SessionTTL)
	}
	if cfg.Database.Driver != "postgres" {
		t.Fatalf("expected postgres, got %q", cfg.Database.Driver)
	}
	if cfg.AlcoholTypes.Len() != 1 {
		t.Fatalf("expected yaml catalog to replace defaults, got %d", cfg.AlcoholTypes.Len())
	}
	if _, ok := cfg.AlcoholTypes.Lookup("mead"); !ok {
		t.Fatal("expected mead category")
	}
	if !cfg.ArchiveEnabled() {
		t.Fatal("expected archive enabled")
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	clearEnv(t)

	t.Setenv("DATABASE_DRIVER", "mysql")
	if _, err := Load(""); err == nil {
		t.Fatal("expected unsupported driver error")
	}

	t.Setenv("DATABASE_DRIVER", "")
	t.Setenv("ADMIN_IDS", "1,abc")
	if _, err := Load(""); err == nil {
		t.Fatal("expected admin ids parse error")
	}
}
