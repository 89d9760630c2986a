package config

import (
	"errors"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	ServerPort      string        `yaml:"server_port"`
	DBUsername      string        `yaml:"db_username"`
	DBPassword      string        `yaml:"db_password"`
	DBHost          string        `yaml:"db_host"`
	DBPort          string        `yaml:"port"`
	DBName          string        `yaml:"db_name"`
	DisableTLS      bool          `yaml:"disable_tls"`
	DBDebug         bool          `yaml:"db_debug"`
	RedisAddr       string        `yaml:"redis_addr"`
	RedisPassword   string        `yaml:"redis_password"`
	RedisDB         int           `yaml:"redis_db"`
	BaseUrl         string        `yaml:"base_url"`
	JWTKey          string        `yaml:"jwt_key"`
	AccessTokenTTL  time.Duration `yaml:"access_token_ttl"`
	RefreshTokenTTL time.Duration `yaml:"refresh_token_ttl"`
	TimeZone        string        `yaml:"time_zone"`
	MediaDir        string        `yaml:"media_dir"`
	EnforceSchedule *bool         `yaml:"enforce_schedule"`
	PhotoRequired   bool          `yaml:"photo_required"`
	ReportMaxDays   int           `yaml:"report_max_days"`
	OfficialEntry   string        `yaml:"official_entry"`
	CompanyName     string        `yaml:"company_name"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
}

func NewConfig(path string) (*Config, error) {
	var c Config

	yamlFile, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	err = yaml.Unmarshal(yamlFile, &c)
	if err != nil {
		return nil, err
	}

	if c.DBUsername == "" || c.DBPassword == "" || c.DBHost == "" || c.DBName == "" {
		return nil, errors.New("missing required database configuration")
	}
	if c.JWTKey == "" {
		return nil, errors.New("missing jwt_key")
	}

	c.setDefaults()

	if _, err := c.Location(); err != nil {
		return nil, err
	}

	return &c, nil
}

func (c *Config) setDefaults() {
	if c.ServerPort == "" {
		c.ServerPort = ":8080"
	}
	if c.DBPort == "" {
		c.DBPort = "5432"
	}
	if c.MediaDir == "" {
		c.MediaDir = "./media"
	}
	if c.ReportMaxDays == 0 {
		c.ReportMaxDays = 365
	}
	if c.OfficialEntry == "" {
		c.OfficialEntry = "08:00"
	}
	if c.CompanyName == "" {
		c.CompanyName = "Clocker"
	}
	if c.EnforceSchedule == nil {
		enforce := true
		c.EnforceSchedule = &enforce
	}
}

// Location resolves TimeZone; an empty value means the host's local zone.
func (c *Config) Location() (*time.Location, error) {
	if c.TimeZone == "" || c.TimeZone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.TimeZone)
}

// ShouldEnforceSchedule reports whether clock events outside the person's
// zone schedule are rejected.
func (c *Config) ShouldEnforceSchedule() bool {
	return c.EnforceSchedule == nil || *c.EnforceSchedule
}
