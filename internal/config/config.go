package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Address string `yaml:"address"`
	} `yaml:"server"`

	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`

	Redis struct {
		Address  string `yaml:"address"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	Session struct {
		TTLHours int `yaml:"ttl_hours"`
	} `yaml:"session"`

	Booking struct {
		WindowDays int `yaml:"window_days"`
	} `yaml:"booking"`

	BSC struct {
		Cabinets    int `yaml:"cabinets"`
		SlotsPerDay int `yaml:"slots_per_day"`
	} `yaml:"bsc"`

	IHC struct {
		Mode    string `yaml:"mode"` // "capacity" (default) or "exclusive"
		TrayCap int    `yaml:"tray_cap"`
	} `yaml:"ihc"`

	Freezer struct {
		OverdueAfterDays int `yaml:"overdue_after_days"`
	} `yaml:"freezer"`

	RateLimit struct {
		RPS   float64 `yaml:"rps"`
		Burst int     `yaml:"burst"`
	} `yaml:"rate_limit"`

	Monitoring struct {
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
		PrometheusPort    int  `yaml:"prometheus_port"`
	} `yaml:"monitoring"`

	Backup struct {
		Enabled       bool   `yaml:"enabled"`
		IntervalHours int    `yaml:"interval_hours"`
		Path          string `yaml:"path"`
		RetentionDays int    `yaml:"retention_days"`
	} `yaml:"backup"`
}

func Load(path string) (*Config, error) {
	if path == "" {
		path = "configs/config.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Support ${ENV_VAR} placeholders in YAML config.
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()

	if cfg.IHC.Mode != "capacity" && cfg.IHC.Mode != "exclusive" {
		return nil, fmt.Errorf("ihc.mode must be capacity or exclusive, got %q", cfg.IHC.Mode)
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Address == "" {
		c.Server.Address = ":8080"
	}
	if c.Database.Path == "" {
		c.Database.Path = "data/labreserve.db"
	}
	if c.Session.TTLHours <= 0 {
		c.Session.TTLHours = 12
	}
	if c.Booking.WindowDays <= 0 {
		c.Booking.WindowDays = 14
	}
	if c.BSC.Cabinets <= 0 {
		c.BSC.Cabinets = 4
	}
	if c.BSC.SlotsPerDay <= 0 {
		c.BSC.SlotsPerDay = 5
	}
	if c.IHC.Mode == "" {
		c.IHC.Mode = "capacity"
	}
	if c.IHC.TrayCap <= 0 {
		c.IHC.TrayCap = 3
	}
	if c.Freezer.OverdueAfterDays <= 0 {
		c.Freezer.OverdueAfterDays = 7
	}
	if c.RateLimit.RPS <= 0 {
		c.RateLimit.RPS = 20
	}
	if c.RateLimit.Burst <= 0 {
		c.RateLimit.Burst = 40
	}
}

func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.Session.TTLHours) * time.Hour
}
