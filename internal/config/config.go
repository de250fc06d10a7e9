package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all settings for the missed-call monitor.
type Config struct {
	LedgerPath     string
	ManualFile     string
	NotificationDB string
	BundleID       string

	DetectWindow   time.Duration
	PollInterval   time.Duration
	QueryTimeout   time.Duration
	StaleAfter     time.Duration
	FutureLimit    time.Duration
	BacklogGap     time.Duration
	ManualMaxBytes int64

	WindowStartHour int
	WindowEndHour   int
	SlotLength      time.Duration

	CalendarID        string
	CalendarBaseURL   string
	CalendarToken     string
	CalendarTokenFile string

	Timezone string
}

type fileConfig struct {
	LedgerPath      string `yaml:"ledger_path" json:"ledger_path"`
	ManualFile      string `yaml:"manual_file" json:"manual_file"`
	NotificationDB  string `yaml:"notification_db" json:"notification_db"`
	BundleID        string `yaml:"bundle_id" json:"bundle_id"`
	CalendarID      string `yaml:"calendar_id" json:"calendar_id"`
	CalendarBaseURL string `yaml:"calendar_base_url" json:"calendar_base_url"`
	Timezone        string `yaml:"timezone" json:"timezone"`
	PollIntervalSec int    `yaml:"poll_interval_sec" json:"poll_interval_sec"`
	WindowStartHour int    `yaml:"window_start_hour" json:"window_start_hour"`
	WindowEndHour   int    `yaml:"window_end_hour" json:"window_end_hour"`
	SlotMinutes     int    `yaml:"slot_minutes" json:"slot_minutes"`
}

const (
	defaultLedgerPath  = "viber_missed_calls.json"
	defaultManualFile  = "manual_missed_calls.txt"
	defaultBundleID    = "com.viber.osx"
	defaultCalendarID  = "primary"
	defaultCalendarURL = "https://www.googleapis.com/calendar/v3"
	defaultTimezone    = "Europe/Budapest"

	defaultManualMaxBytes = 1 << 20
)

// Load reads configuration from environment variables, an optional config
// file, and an optional .env file, applying defaults and clamping.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		DetectWindow:      time.Hour,
		PollInterval:      30 * time.Second,
		QueryTimeout:      10 * time.Second,
		StaleAfter:        48 * time.Hour,
		FutureLimit:       24 * time.Hour,
		BacklogGap:        2 * time.Hour,
		ManualMaxBytes:    defaultManualMaxBytes,
		WindowStartHour:   18,
		WindowEndHour:     22,
		SlotLength:        15 * time.Minute,
		CalendarToken:     os.Getenv("CALENDAR_TOKEN"),
		CalendarTokenFile: getenv("CALENDAR_TOKEN_FILE", "calendar_token"),
	}

	var fileCfg fileConfig
	configPath := getenv("CONFIG_PATH", "callwatch.yaml")
	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			log.Printf("config file %s unreadable: %v (using defaults)", configPath, err)
		}
	}

	cfg.LedgerPath = firstNonEmpty(os.Getenv("LEDGER_PATH"), fileCfg.LedgerPath, defaultLedgerPath)
	cfg.ManualFile = firstNonEmpty(os.Getenv("MANUAL_CALLS_FILE"), fileCfg.ManualFile, defaultManualFile)
	cfg.NotificationDB = firstNonEmpty(os.Getenv("NOTIFICATION_DB"), fileCfg.NotificationDB, defaultNotificationDB())
	cfg.BundleID = firstNonEmpty(os.Getenv("BUNDLE_ID"), fileCfg.BundleID, defaultBundleID)
	cfg.CalendarID = firstNonEmpty(os.Getenv("CALENDAR_ID"), fileCfg.CalendarID, defaultCalendarID)
	cfg.CalendarBaseURL = strings.TrimRight(firstNonEmpty(os.Getenv("CALENDAR_BASE_URL"), fileCfg.CalendarBaseURL, defaultCalendarURL), "/")
	cfg.Timezone = firstNonEmpty(os.Getenv("TIMEZONE"), fileCfg.Timezone, defaultTimezone)

	if fileCfg.PollIntervalSec > 0 {
		cfg.PollInterval = time.Duration(fileCfg.PollIntervalSec) * time.Second
	}
	if v := getenvInt("POLL_INTERVAL_SEC", 0); v > 0 {
		cfg.PollInterval = time.Duration(v) * time.Second
	}
	if fileCfg.WindowStartHour > 0 {
		cfg.WindowStartHour = fileCfg.WindowStartHour
	}
	if fileCfg.WindowEndHour > 0 {
		cfg.WindowEndHour = fileCfg.WindowEndHour
	}
	if fileCfg.SlotMinutes > 0 {
		cfg.SlotLength = time.Duration(fileCfg.SlotMinutes) * time.Minute
	}
	cfg.WindowStartHour = clampInt(getenvInt("WINDOW_START_HOUR", cfg.WindowStartHour), 0, 23)
	cfg.WindowEndHour = clampInt(getenvInt("WINDOW_END_HOUR", cfg.WindowEndHour), cfg.WindowStartHour+1, 24)
	if v := getenvInt("DETECT_WINDOW_MIN", 0); v > 0 {
		cfg.DetectWindow = time.Duration(v) * time.Minute
	}
	if v := getenvInt("MANUAL_MAX_BYTES", 0); v > 0 {
		cfg.ManualMaxBytes = int64(v)
	}

	return cfg
}

// Location resolves the configured timezone.
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// ResolveCalendarToken returns the bearer token for the calendar client,
// preferring the environment over the token file. Missing credentials are
// fatal for monitor mode, so this surfaces an error rather than degrading.
func (c Config) ResolveCalendarToken() (string, error) {
	if strings.TrimSpace(c.CalendarToken) != "" {
		return strings.TrimSpace(c.CalendarToken), nil
	}
	data, err := os.ReadFile(c.CalendarTokenFile)
	if err != nil {
		return "", fmt.Errorf("calendar token unavailable (set CALENDAR_TOKEN or %s): %w", c.CalendarTokenFile, err)
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", errors.New("calendar token file is empty")
	}
	return token, nil
}

func defaultNotificationDB() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, "Library", "Application Support", "NotificationCenter", "db2", "db")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("invalid %s=%q, using %d", key, v, def)
		return def
	}
	return n
}

func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
