package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"WeatherEdge/internal/model"
)

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   int64  `yaml:"chat_id"`
	} `yaml:"telegram"`
	Kalshi struct {
		BaseURL string `yaml:"base_url"`
	} `yaml:"kalshi"`
	NWS struct {
		BaseURL   string `yaml:"base_url"`
		UserAgent string `yaml:"user_agent"`
	} `yaml:"nws"`
	OpenMeteo struct {
		BaseURL string `yaml:"base_url"`
	} `yaml:"open_meteo"`
	WeatherAPI struct {
		BaseURL string `yaml:"base_url"`
		APIKey  string `yaml:"api_key"`
	} `yaml:"weatherapi"`
	Schedule struct {
		RunEveryMinutes int `yaml:"run_every_minutes"`
	} `yaml:"schedule"`
	Signals struct {
		MinGapToShow int `yaml:"min_gap_to_show"`
	} `yaml:"signals"`
	Gate struct {
		MinGap          int `yaml:"min_gap"`
		MaxSpread       int `yaml:"max_spread"`
		ConsensusMargin int `yaml:"consensus_margin"`
	} `yaml:"gate"`
	Paper struct {
		Disabled     bool `yaml:"disabled"`
		SkipTomorrow bool `yaml:"skip_tomorrow"` // by default tomorrow markets are traded too
	} `yaml:"paper"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Server struct {
		ListenAddr string `yaml:"listen_addr"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"` // "console" or "json"
	} `yaml:"log"`
	Cities []City `yaml:"cities"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults. A missing file is fine: everything except the
// Telegram credentials has a working default.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Telegram.ChatID = id
		}
	}
	if v := os.Getenv("WEATHERAPI_KEY"); v != "" {
		cfg.WeatherAPI.APIKey = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.ListenAddr = ":" + v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}

	// Defaults
	if cfg.Kalshi.BaseURL == "" {
		cfg.Kalshi.BaseURL = "https://api.elections.kalshi.com/trade-api/v2"
	}
	if cfg.NWS.BaseURL == "" {
		cfg.NWS.BaseURL = "https://api.weather.gov"
	}
	if cfg.NWS.UserAgent == "" {
		cfg.NWS.UserAgent = "KalshiClimateBot/1.0"
	}
	if cfg.OpenMeteo.BaseURL == "" {
		cfg.OpenMeteo.BaseURL = "https://api.open-meteo.com/v1"
	}
	if cfg.WeatherAPI.BaseURL == "" {
		cfg.WeatherAPI.BaseURL = "https://api.weatherapi.com/v1"
	}
	if cfg.Schedule.RunEveryMinutes == 0 {
		cfg.Schedule.RunEveryMinutes = 10
	}
	if cfg.Gate.MinGap == 0 {
		cfg.Gate.MinGap = 15
	}
	if cfg.Gate.MaxSpread == 0 {
		cfg.Gate.MaxSpread = 8
	}
	if cfg.Gate.ConsensusMargin == 0 {
		cfg.Gate.ConsensusMargin = 5
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/weatheredge.db"
	}
	if cfg.Server.ListenAddr == "" {
		cfg.Server.ListenAddr = ":8080"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if len(cfg.Cities) == 0 {
		cfg.Cities = DefaultCities()
	}

	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Schedule.RunEveryMinutes <= 0 {
		return fmt.Errorf("schedule.run_every_minutes must be positive")
	}
	if c.Gate.MinGap < 0 {
		return fmt.Errorf("gate.min_gap must not be negative")
	}
	if len(c.Cities) == 0 {
		return fmt.Errorf("at least one city is required")
	}
	for i, city := range c.Cities {
		if city.Key == "" {
			return fmt.Errorf("cities[%d].key is required", i)
		}
		if city.Name == "" {
			return fmt.Errorf("cities[%d].name is required", i)
		}
		if city.Station == "" {
			return fmt.Errorf("cities[%d].station is required", i)
		}
		if city.HighSeries == "" {
			return fmt.Errorf("cities[%d].high_series is required", i)
		}
		if city.StationClass != model.StationFiveMinute && city.StationClass != model.StationHourly {
			return fmt.Errorf("cities[%d].station_class must be %q or %q", i, model.StationFiveMinute, model.StationHourly)
		}
		if city.LSTOffset > 0 || city.LSTOffset < -12 {
			return fmt.Errorf("cities[%d].lst_utc_offset %d is out of range", i, city.LSTOffset)
		}
	}
	return nil
}
