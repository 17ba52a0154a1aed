package config

import (
	"os"
	"path/filepath"
	"testing"

	"WeatherEdge/internal/model"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Schedule.RunEveryMinutes != 10 {
		t.Errorf("RunEveryMinutes = %d, want 10", cfg.Schedule.RunEveryMinutes)
	}
	if cfg.Gate.MinGap != 15 || cfg.Gate.MaxSpread != 8 || cfg.Gate.ConsensusMargin != 5 {
		t.Errorf("gate defaults = %+v", cfg.Gate)
	}
	if len(cfg.Cities) != 20 {
		t.Errorf("default roster has %d cities, want 20", len(cfg.Cities))
	}
	if cfg.Kalshi.BaseURL == "" || cfg.NWS.UserAgent == "" {
		t.Error("API defaults missing")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
schedule:
  run_every_minutes: 5
gate:
  min_gap: 20
cities:
  - key: CHI
    name: Chicago
    station: KMDW
    lat: 41.7841
    lon: -87.7551
    station_class: 5-minute
    lst_utc_offset: -6
    high_series: KXHIGHCHI
    low_series: KXLOWTCHI
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TELEGRAM_BOT_TOKEN", "tok-from-env")
	t.Setenv("TELEGRAM_CHAT_ID", "12345")
	t.Setenv("PORT", "9100")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Schedule.RunEveryMinutes != 5 {
		t.Errorf("RunEveryMinutes = %d, want 5 from file", cfg.Schedule.RunEveryMinutes)
	}
	if cfg.Gate.MinGap != 20 {
		t.Errorf("MinGap = %d, want 20 from file", cfg.Gate.MinGap)
	}
	if cfg.Telegram.BotToken != "tok-from-env" || cfg.Telegram.ChatID != 12345 {
		t.Errorf("telegram env override not applied: %+v", cfg.Telegram)
	}
	if cfg.Server.ListenAddr != ":9100" {
		t.Errorf("ListenAddr = %q, want :9100", cfg.Server.ListenAddr)
	}
	if len(cfg.Cities) != 1 || cfg.Cities[0].StationClass != model.StationFiveMinute {
		t.Errorf("cities = %+v", cfg.Cities)
	}
}

func TestValidate_Rejects(t *testing.T) {
	base := func() *Config {
		cfg, _ := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		return cfg
	}

	cfg := base()
	cfg.Cities = nil
	if err := cfg.Validate(); err == nil {
		t.Error("empty city list should fail validation")
	}

	cfg = base()
	cfg.Cities[0].StationClass = "15-minute"
	if err := cfg.Validate(); err == nil {
		t.Error("unknown station class should fail validation")
	}

	cfg = base()
	cfg.Cities[0].LSTOffset = 3
	if err := cfg.Validate(); err == nil {
		t.Error("positive LST offset should fail validation")
	}

	cfg = base()
	cfg.Cities[0].HighSeries = ""
	if err := cfg.Validate(); err == nil {
		t.Error("missing high series should fail validation")
	}
}

func TestDefaultCities_Roster(t *testing.T) {
	cities := DefaultCities()

	keys := make(map[string]City, len(cities))
	for _, c := range cities {
		keys[c.Key] = c
	}

	nyc, ok := keys["NYC"]
	if !ok {
		t.Fatal("NYC missing from the roster")
	}
	if nyc.StationClass != model.StationHourly {
		t.Errorf("NYC station class = %s, want hourly (Central Park cooperative observer)", nyc.StationClass)
	}
	if nyc.Station != "KNYC" || nyc.LSTOffset != -5 {
		t.Errorf("NYC = %+v", nyc)
	}

	chi := keys["CHI"]
	if chi.Station != "KMDW" {
		t.Errorf("Chicago settles at Midway, got %s", chi.Station)
	}

	lowCount := 0
	for _, c := range cities {
		if c.LowSeries != "" {
			lowCount++
		}
	}
	if lowCount != 7 {
		t.Errorf("%d cities trade LOW markets, want 7", lowCount)
	}

	for key := range TierOne {
		if _, ok := keys[key]; !ok {
			t.Errorf("tier-one city %s not in the roster", key)
		}
	}
}
