package config

import (
	"os"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"WEB_HOST", "WEB_PORT", "MATCH_METRIC", "MATCH_THRESHOLD",
		"DATABASE_URL", "MARIADB_DSN", "DATA_DIR",
		"EMBEDDING_URL", "EMBEDDING_DIM",
		"SHIFTS_CONFIG_PATH", "REJECT_OUT_OF_WINDOW",
	} {
		os.Unsetenv(key)
	}

	cfg := Load()

	if cfg.Web.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Web.Port)
	}
	if cfg.Match.Metric != "euclidean" {
		t.Errorf("expected default metric euclidean, got %q", cfg.Match.Metric)
	}
	if cfg.Match.Threshold != 0.6 {
		t.Errorf("expected default threshold 0.6, got %f", cfg.Match.Threshold)
	}
	if cfg.Database.DataDir != "./data" {
		t.Errorf("expected default data dir ./data, got %q", cfg.Database.DataDir)
	}
	if cfg.Embedding.Dim != 128 {
		t.Errorf("expected default embedding dim 128, got %d", cfg.Embedding.Dim)
	}
	if !cfg.Attendance.RejectOutOfWindow {
		t.Error("expected out-of-window rejection enabled by default")
	}
}

func TestLoad_CosineDefaultThreshold(t *testing.T) {
	t.Setenv("MATCH_METRIC", "cosine")
	os.Unsetenv("MATCH_THRESHOLD")

	cfg := Load()

	if cfg.Match.Metric != "cosine" {
		t.Errorf("expected cosine metric, got %q", cfg.Match.Metric)
	}
	if cfg.Match.Threshold != 0.5 {
		t.Errorf("expected cosine default threshold 0.5, got %f", cfg.Match.Threshold)
	}
}

func TestLoad_ExplicitThresholdWins(t *testing.T) {
	t.Setenv("MATCH_METRIC", "euclidean")
	t.Setenv("MATCH_THRESHOLD", "0.45")

	cfg := Load()

	if cfg.Match.Threshold != 0.45 {
		t.Errorf("expected threshold 0.45, got %f", cfg.Match.Threshold)
	}
}

func TestLoad_InvalidThresholdFallsBack(t *testing.T) {
	t.Setenv("MATCH_METRIC", "euclidean")
	t.Setenv("MATCH_THRESHOLD", "-1")

	cfg := Load()

	if cfg.Match.Threshold != 0.6 {
		t.Errorf("expected fallback threshold 0.6, got %f", cfg.Match.Threshold)
	}
}

func TestLoad_MetricCaseInsensitive(t *testing.T) {
	t.Setenv("MATCH_METRIC", "Cosine")

	cfg := Load()

	if cfg.Match.Metric != "cosine" {
		t.Errorf("expected metric lowercased, got %q", cfg.Match.Metric)
	}
}

func TestLoad_WebConfig(t *testing.T) {
	t.Setenv("WEB_HOST", "127.0.0.1")
	t.Setenv("WEB_PORT", "9090")

	cfg := Load()

	if cfg.Web.Host != "127.0.0.1" {
		t.Errorf("expected host 127.0.0.1, got %q", cfg.Web.Host)
	}
	if cfg.Web.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Web.Port)
	}
	if cfg.Web.Addr() != "127.0.0.1:9090" {
		t.Errorf("expected addr 127.0.0.1:9090, got %q", cfg.Web.Addr())
	}
}

func TestLoad_InvalidPortFallsBack(t *testing.T) {
	t.Setenv("WEB_PORT", "not-a-port")

	cfg := Load()

	if cfg.Web.Port != 8080 {
		t.Errorf("expected fallback port 8080, got %d", cfg.Web.Port)
	}
}

func TestLoad_DatabaseConfig(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://facegate@localhost/facegate")
	t.Setenv("MARIADB_DSN", "facegate:facegate@tcp(mariadb:3306)/facegate")
	t.Setenv("DATA_DIR", "/var/lib/facegate")

	cfg := Load()

	if cfg.Database.URL != "postgres://facegate@localhost/facegate" {
		t.Errorf("unexpected database URL %q", cfg.Database.URL)
	}
	if cfg.Database.MariaDBDSN != "facegate:facegate@tcp(mariadb:3306)/facegate" {
		t.Errorf("unexpected mariadb DSN %q", cfg.Database.MariaDBDSN)
	}
	if cfg.Database.DataDir != "/var/lib/facegate" {
		t.Errorf("unexpected data dir %q", cfg.Database.DataDir)
	}
}

func TestLoad_RejectOutOfWindow(t *testing.T) {
	t.Setenv("REJECT_OUT_OF_WINDOW", "false")

	cfg := Load()

	if cfg.Attendance.RejectOutOfWindow {
		t.Error("expected rejection disabled")
	}
}

func TestLoad_RejectOutOfWindowInvalid(t *testing.T) {
	t.Setenv("REJECT_OUT_OF_WINDOW", "maybe")

	cfg := Load()

	if !cfg.Attendance.RejectOutOfWindow {
		t.Error("invalid value should fall back to the default")
	}
}
