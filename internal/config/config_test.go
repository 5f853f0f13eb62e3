package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv(configPathEnv, "")
	t.Setenv(httpAddrEnv, "")
	t.Setenv(openAIKeyEnv, "")
	t.Setenv(timezoneEnv, "")

	cfg := Load()

	if cfg.HTTP.Addr != ":8080" {
		t.Fatalf("addr = %q", cfg.HTTP.Addr)
	}
	if cfg.Feed.Lang != "es-419" || cfg.Feed.Country != "MX" {
		t.Fatalf("feed locale = %q/%q", cfg.Feed.Lang, cfg.Feed.Country)
	}
	if cfg.Feed.MaxResults != 35 || cfg.Feed.WindowDays != 7 {
		t.Fatalf("feed window = %d/%d", cfg.Feed.MaxResults, cfg.Feed.WindowDays)
	}
	if cfg.Scheduler.DailyAt != "06:00" {
		t.Fatalf("dailyAt = %q", cfg.Scheduler.DailyAt)
	}
	if cfg.Scheduler.Location().String() != "America/Mexico_City" {
		t.Fatalf("location = %q", cfg.Scheduler.Location())
	}
	if cfg.OpenAI.APIKey != "" {
		t.Fatalf("api key should default to empty, got %q", cfg.OpenAI.APIKey)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
http:
  addr: ":9090"
feed:
  lang: en-US
  country: US
  maxResults: 10
scheduler:
  dailyAt: "07:30"
  timezone: UTC
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(configPathEnv, path)

	cfg := Load()

	if cfg.HTTP.Addr != ":9090" {
		t.Fatalf("addr = %q", cfg.HTTP.Addr)
	}
	if cfg.Feed.Lang != "en-US" || cfg.Feed.Country != "US" || cfg.Feed.MaxResults != 10 {
		t.Fatalf("feed = %+v", cfg.Feed)
	}
	// Values the file does not set keep their defaults.
	if cfg.Feed.WindowDays != 7 {
		t.Fatalf("windowDays = %d, want default 7", cfg.Feed.WindowDays)
	}
	if cfg.Scheduler.DailyAt != "07:30" {
		t.Fatalf("dailyAt = %q", cfg.Scheduler.DailyAt)
	}
	if cfg.Scheduler.Location() != time.UTC {
		t.Fatalf("location = %q, want UTC", cfg.Scheduler.Location())
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(configPathEnv, "")
	t.Setenv(databaseDSNEnv, "postgres://env/override")
	t.Setenv(openAIKeyEnv, "sk-test")
	t.Setenv(openAIModelEnv, "gpt-4o")
	t.Setenv(httpAddrEnv, ":7070")
	t.Setenv(timezoneEnv, "America/Monterrey")

	cfg := Load()

	if cfg.Database.DSN != "postgres://env/override" {
		t.Fatalf("dsn = %q", cfg.Database.DSN)
	}
	if cfg.OpenAI.APIKey != "sk-test" || cfg.OpenAI.Model != "gpt-4o" {
		t.Fatalf("openai = %+v", cfg.OpenAI)
	}
	if cfg.HTTP.Addr != ":7070" {
		t.Fatalf("addr = %q", cfg.HTTP.Addr)
	}
	if cfg.Scheduler.Location().String() != "America/Monterrey" {
		t.Fatalf("location = %q", cfg.Scheduler.Location())
	}
}

func TestUnknownTimezoneFallsBack(t *testing.T) {
	t.Setenv(timezoneEnv, "Marte/Olympus")

	cfg := Load()
	if cfg.Scheduler.Location().String() != "America/Mexico_City" {
		t.Fatalf("location = %q, want fallback", cfg.Scheduler.Location())
	}
}

func TestTimeoutDefaults(t *testing.T) {
	t.Parallel()

	if got := (FeedConfig{}).Timeout(); got != 20*time.Second {
		t.Fatalf("feed timeout = %v", got)
	}
	if got := (FeedConfig{TimeoutSeconds: 5}).Timeout(); got != 5*time.Second {
		t.Fatalf("feed timeout = %v", got)
	}
	if got := (ScrapeConfig{}).Timeout(); got != 15*time.Second {
		t.Fatalf("scrape timeout = %v", got)
	}
	if got := (OpenAIConfig{}).Timeout(); got != 30*time.Second {
		t.Fatalf("openai timeout = %v", got)
	}
	if got := (OpenAIConfig{TimeoutSeconds: 3}).Timeout(); got != 3*time.Second {
		t.Fatalf("openai timeout = %v", got)
	}
}
