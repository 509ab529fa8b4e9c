package config

import (
	"fmt"
	"os"
	"path"
	"time"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Public  Public
	Private Private
}

// Duration fields are plain integer seconds in the yaml; MustLoad converts
// them to time.Duration after unmarshalling.
type Public struct {
	Pg                Pg            `yaml:"pg"`
	LogLevel          string        `yaml:"log_level"`
	LogJSON           bool          `yaml:"log_json"`
	JwtTTL            time.Duration `yaml:"jwt_ttl"`
	SecureCookies     bool          `yaml:"secure_cookies"`
	DeliveryMode      string        `yaml:"delivery_mode"`       // "push" or "poll"
	PollInterval      time.Duration `yaml:"poll_interval"`       // advertised to clients
	TypingTTL         time.Duration `yaml:"typing_ttl"`          // staleness bound for typing signals
	MediaRoot         string        `yaml:"media_root"`          // attachment blob directory
	MaxAttachmentSize int64         `yaml:"max_attachment_size"` // bytes
	AllowedMimeTypes  []string      `yaml:"allowed_mime_types"`  // empty = accept anything
	MediaRetention    time.Duration `yaml:"media_retention"`     // blob age before sweep
	SweepInterval     time.Duration `yaml:"sweep_interval"`
}

type Pg struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Dbname   string `yaml:"dbname"`
}

type Private struct {
	JwtKey string `yaml:"jwt_key"`
}

func (c *Config) JwtKey() string {
	return c.Private.JwtKey
}

func (c *Config) JwtTTL() time.Duration {
	return c.Public.JwtTTL
}

func mustLoadPath(configPath string, output interface{}) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		panic("can't read config file: " + configPath)
	}
	if err := yaml.Unmarshal(configFile, output); err != nil {
		panic("can't unmarshal config file: " + configPath)
	}
}

// MustLoad reads public.yaml and private.yaml from configFolder, applies
// defaults for optional knobs and panics on anything unusable. Config is
// read once at startup; there is no reload.
func MustLoad(configFolder string) *Config {
	var public Public
	mustLoadPath(path.Join(configFolder, "public.yaml"), &public)

	var private Private
	mustLoadPath(path.Join(configFolder, "private.yaml"), &private)

	cfg := &Config{public, private}
	cfg.secondsToDurations()
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		panic(err.Error())
	}
	return cfg
}

// secondsToDurations turns the raw integer-second yaml values into
// time.Duration. Zero values stay zero and pick up defaults below.
func (c *Config) secondsToDurations() {
	p := &c.Public
	p.JwtTTL *= time.Second
	p.PollInterval *= time.Second
	p.TypingTTL *= time.Second
	p.MediaRetention *= time.Second
	p.SweepInterval *= time.Second
}

func (c *Config) applyDefaults() {
	p := &c.Public
	if p.LogLevel == "" {
		p.LogLevel = "info"
	}
	if p.JwtTTL == 0 {
		p.JwtTTL = 24 * time.Hour
	}
	if p.DeliveryMode == "" {
		p.DeliveryMode = "push"
	}
	if p.PollInterval == 0 {
		p.PollInterval = 3 * time.Second
	}
	if p.TypingTTL == 0 {
		p.TypingTTL = 4 * time.Second
	}
	if p.MediaRoot == "" {
		p.MediaRoot = "media"
	}
	if p.MaxAttachmentSize == 0 {
		p.MaxAttachmentSize = 50 << 20
	}
	if p.MediaRetention == 0 {
		p.MediaRetention = 72 * time.Hour
	}
	if p.SweepInterval == 0 {
		p.SweepInterval = 10 * time.Minute
	}
}

func (c *Config) validate() error {
	if c.Private.JwtKey == "" {
		return fmt.Errorf("jwt_key is required")
	}
	if m := c.Public.DeliveryMode; m != "push" && m != "poll" {
		return fmt.Errorf("delivery_mode must be push or poll, got %q", m)
	}
	if c.Public.MaxAttachmentSize < 0 {
		return fmt.Errorf("max_attachment_size must be positive")
	}
	return nil
}
