package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type fileConfig struct {
	Port         string  `yaml:"port"`
	DBPath       string  `yaml:"db_path"`
	LogLevel     string  `yaml:"log_level"`
	LogFormat    string  `yaml:"log_format"`
	RedisURL     string  `yaml:"redis_url"`
	ProxyHost    string  `yaml:"proxy_host"`
	UserAgent    string  `yaml:"user_agent"`
	HTTPTimeout  string  `yaml:"http_timeout"`
	CacheTTL     string  `yaml:"cache_ttl"`
	SyncInterval string  `yaml:"sync_interval"`
	ChunkSize    int     `yaml:"chunk_size"`
	RequestRate  float64 `yaml:"request_rate"`
	RequestBurst int     `yaml:"request_burst"`
	SyncOnStart  bool    `yaml:"sync_on_start"`
	Provider     struct {
		URL      string `yaml:"url"`
		Username string `yaml:"username"`
		Password string `yaml:"password"`
	} `yaml:"provider"`
}

// LoadFromFile loads config from a YAML file. Keys left out keep their defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f fileConfig
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}

	c := Defaults()
	setString(&c.Port, f.Port)
	setString(&c.DBPath, f.DBPath)
	setString(&c.LogLevel, f.LogLevel)
	setString(&c.LogFormat, f.LogFormat)
	setString(&c.RedisURL, f.RedisURL)
	setString(&c.ProxyHost, f.ProxyHost)
	setString(&c.UserAgent, f.UserAgent)
	setString(&c.ProviderURL, f.Provider.URL)
	setString(&c.Username, f.Provider.Username)
	setString(&c.Password, f.Provider.Password)
	setDuration(&c.HTTPTimeout, f.HTTPTimeout)
	setDuration(&c.CacheTTL, f.CacheTTL)
	setDuration(&c.SyncInterval, f.SyncInterval)
	if f.ChunkSize != 0 {
		c.ChunkSize = f.ChunkSize
	}
	if f.RequestRate != 0 {
		c.RequestRate = f.RequestRate
	}
	if f.RequestBurst != 0 {
		c.RequestBurst = f.RequestBurst
	}
	c.SyncOnStart = f.SyncOnStart
	return c, nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v string) {
	if v == "" {
		return
	}
	if d, err := time.ParseDuration(v); err == nil {
		*dst = d
	}
}
