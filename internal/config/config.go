package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Duration time.Duration

func (d Duration) ToDuration() time.Duration { return time.Duration(d) }

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	if value == nil {
		*d = 0
		return nil
	}
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("duration must be a scalar")
	}

	// allow: "5s", "2m", or integer seconds
	switch value.Tag {
	case "!!int":
		i, err := strconv.ParseInt(value.Value, 10, 64)
		if err != nil {
			return err
		}
		*d = Duration(time.Duration(i) * time.Second)
		return nil
	case "!!str":
		if value.Value == "" {
			*d = 0
			return nil
		}
		if dur, err := time.ParseDuration(value.Value); err == nil {
			*d = Duration(dur)
			return nil
		}
		if i, err := strconv.ParseInt(value.Value, 10, 64); err == nil {
			*d = Duration(time.Duration(i) * time.Second)
			return nil
		}
		return fmt.Errorf("invalid duration: %q", value.Value)
	default:
		if dur, err := time.ParseDuration(value.Value); err == nil {
			*d = Duration(dur)
			return nil
		}
		return fmt.Errorf("invalid duration: %q", value.Value)
	}
}

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	XenoCanto XenoCantoConfig `yaml:"xenocanto"`
	Quiz      QuizConfig      `yaml:"quiz"`
	LogLevel  string          `yaml:"log_level"`
}

type ServerConfig struct {
	Bind              string   `yaml:"bind"`
	Port              int      `yaml:"port"`
	ReadHeaderTimeout Duration `yaml:"read_header_timeout"`

	// Origins allowed to call the JSON API when the quiz is embedded elsewhere.
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type XenoCantoConfig struct {
	BaseURL    string   `yaml:"base_url"`
	Query      string   `yaml:"query"`       // q:A = quality A recordings
	TotalPages int      `yaml:"total_pages"` // page count for the query, assumed current
	APIKeyEnv  string   `yaml:"api_key_env"` // optional
	Timeout    Duration `yaml:"timeout"`
	UserAgent  string   `yaml:"user_agent"`
}

type QuizConfig struct {
	Autoplay bool `yaml:"autoplay"`

	// distinct: both distractors differ from each other and the target.
	// legacy: distractors only differ from the target.
	DistractorPolicy string `yaml:"distractor_policy"`

	SessionTTL  Duration `yaml:"session_ttl"`
	SweepEvery  Duration `yaml:"sweep_every"`
	MaxSessions int      `yaml:"max_sessions"`
}

func Default() Config {
	return Config{
		Server: ServerConfig{
			Bind:              "0.0.0.0",
			Port:              8092,
			ReadHeaderTimeout: Duration(5 * time.Second),
		},
		XenoCanto: XenoCantoConfig{
			BaseURL:    "https://xeno-canto.org/api/2/recordings",
			Query:      "q:A",
			TotalPages: 1,
			APIKeyEnv:  "XENOCANTO_API_KEY",
			Timeout:    Duration(30 * time.Second),
			UserAgent:  "spectroquiz/1.0",
		},
		Quiz: QuizConfig{
			Autoplay:         false,
			DistractorPolicy: "distinct",
			SessionTTL:       Duration(30 * time.Minute),
			SweepEvery:       Duration(time.Minute),
			MaxSessions:      1000,
		},
		LogLevel: "info",
	}
}

func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}
	cfg.sanitize()
	return cfg, nil
}

func (cfg *Config) sanitize() {
	def := Default()

	if cfg.Server.Port == 0 {
		cfg.Server.Port = def.Server.Port
	}
	if cfg.Server.Bind == "" {
		cfg.Server.Bind = def.Server.Bind
	}
	if cfg.Server.ReadHeaderTimeout.ToDuration() <= 0 {
		cfg.Server.ReadHeaderTimeout = def.Server.ReadHeaderTimeout
	}

	if cfg.XenoCanto.BaseURL == "" {
		cfg.XenoCanto.BaseURL = def.XenoCanto.BaseURL
	}
	cfg.XenoCanto.BaseURL = strings.TrimRight(cfg.XenoCanto.BaseURL, "/")
	if strings.TrimSpace(cfg.XenoCanto.Query) == "" {
		cfg.XenoCanto.Query = def.XenoCanto.Query
	}
	if cfg.XenoCanto.TotalPages <= 0 {
		cfg.XenoCanto.TotalPages = def.XenoCanto.TotalPages
	}
	if cfg.XenoCanto.Timeout.ToDuration() <= 0 {
		cfg.XenoCanto.Timeout = def.XenoCanto.Timeout
	}
	if cfg.XenoCanto.UserAgent == "" {
		cfg.XenoCanto.UserAgent = def.XenoCanto.UserAgent
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Quiz.DistractorPolicy)) {
	case "legacy":
		cfg.Quiz.DistractorPolicy = "legacy"
	default:
		cfg.Quiz.DistractorPolicy = "distinct"
	}
	if cfg.Quiz.SessionTTL.ToDuration() <= 0 {
		cfg.Quiz.SessionTTL = def.Quiz.SessionTTL
	}
	if cfg.Quiz.SweepEvery.ToDuration() <= 0 {
		cfg.Quiz.SweepEvery = def.Quiz.SweepEvery
	}
	if cfg.Quiz.MaxSessions <= 0 {
		cfg.Quiz.MaxSessions = def.Quiz.MaxSessions
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = def.LogLevel
	}
}
