package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "absent.yaml"))
	cfg := Load()

	if cfg.PollInterval != 30*time.Second {
		t.Fatalf("poll interval = %s", cfg.PollInterval)
	}
	if cfg.WindowStartHour != 18 || cfg.WindowEndHour != 22 {
		t.Fatalf("window = %d-%d", cfg.WindowStartHour, cfg.WindowEndHour)
	}
	if cfg.SlotLength != 15*time.Minute {
		t.Fatalf("slot length = %s", cfg.SlotLength)
	}
	if cfg.StaleAfter != 48*time.Hour {
		t.Fatalf("stale after = %s", cfg.StaleAfter)
	}
	if cfg.BundleID != "com.viber.osx" {
		t.Fatalf("bundle id = %q", cfg.BundleID)
	}
	if cfg.LedgerPath != "viber_missed_calls.json" {
		t.Fatalf("ledger path = %q", cfg.LedgerPath)
	}
	if cfg.ManualMaxBytes != 1<<20 {
		t.Fatalf("manual max bytes = %d", cfg.ManualMaxBytes)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "callwatch.yaml")
	content := "ledger_path: from-file.json\npoll_interval_sec: 60\nwindow_start_hour: 17\n"
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_PATH", configPath)
	t.Setenv("LEDGER_PATH", "from-env.json")

	cfg := Load()
	if cfg.LedgerPath != "from-env.json" {
		t.Fatalf("env should win: %q", cfg.LedgerPath)
	}
	if cfg.PollInterval != 60*time.Second {
		t.Fatalf("file poll interval ignored: %s", cfg.PollInterval)
	}
	if cfg.WindowStartHour != 17 {
		t.Fatalf("file window start ignored: %d", cfg.WindowStartHour)
	}
}

func TestLoadClampsWindowHours(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "absent.yaml"))
	t.Setenv("WINDOW_START_HOUR", "25")
	t.Setenv("WINDOW_END_HOUR", "3")

	cfg := Load()
	if cfg.WindowStartHour != 23 {
		t.Fatalf("start not clamped: %d", cfg.WindowStartHour)
	}
	if cfg.WindowEndHour != 24 {
		t.Fatalf("end must stay after start: %d", cfg.WindowEndHour)
	}
}

func TestResolveCalendarTokenPrefersEnv(t *testing.T) {
	cfg := Config{CalendarToken: " tok-env ", CalendarTokenFile: "does-not-exist"}
	token, err := cfg.ResolveCalendarToken()
	if err != nil {
		t.Fatal(err)
	}
	if token != "tok-env" {
		t.Fatalf("token = %q", token)
	}
}

func TestResolveCalendarTokenFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	if err := os.WriteFile(path, []byte("tok-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg := Config{CalendarTokenFile: path}
	token, err := cfg.ResolveCalendarToken()
	if err != nil {
		t.Fatal(err)
	}
	if token != "tok-file" {
		t.Fatalf("token = %q", token)
	}
}

func TestResolveCalendarTokenMissingIsFatal(t *testing.T) {
	cfg := Config{CalendarTokenFile: filepath.Join(t.TempDir(), "absent")}
	if _, err := cfg.ResolveCalendarToken(); err == nil {
		t.Fatal("missing credentials must surface an error")
	}
}
