package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDurationUnmarshalYAML(t *testing.T) {
	tests := []struct {
		input    string
		expected time.Duration
		wantErr  bool
	}{
		{"d: 5s", 5 * time.Second, false},
		{"d: 2m", 2 * time.Minute, false},
		{"d: 30", 30 * time.Second, false},
		{`d: "45"`, 45 * time.Second, false},
		{`d: ""`, 0, false},
		{"d: soon", 0, true},
		{"d: [1, 2]", 0, true},
	}

	for _, test := range tests {
		var out struct {
			D Duration `yaml:"d"`
		}
		err := yaml.Unmarshal([]byte(test.input), &out)
		if test.wantErr {
			if err == nil {
				t.Errorf("Unmarshal(%q) expected error", test.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("Unmarshal(%q) unexpected error: %v", test.input, err)
			continue
		}
		if out.D.ToDuration() != test.expected {
			t.Errorf("Unmarshal(%q) = %v, expected %v", test.input, out.D.ToDuration(), test.expected)
		}
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 9000\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("Port = %d, expected 9000", cfg.Server.Port)
	}
	if cfg.Server.Bind != "0.0.0.0" {
		t.Errorf("Bind = %q, expected default", cfg.Server.Bind)
	}
	if cfg.XenoCanto.Query != "q:A" {
		t.Errorf("Query = %q, expected q:A", cfg.XenoCanto.Query)
	}
	if cfg.XenoCanto.TotalPages != 1 {
		t.Errorf("TotalPages = %d, expected 1", cfg.XenoCanto.TotalPages)
	}
	if cfg.Quiz.DistractorPolicy != "distinct" {
		t.Errorf("DistractorPolicy = %q, expected distinct", cfg.Quiz.DistractorPolicy)
	}
	if cfg.Quiz.SessionTTL.ToDuration() != 30*time.Minute {
		t.Errorf("SessionTTL = %v, expected 30m", cfg.Quiz.SessionTTL.ToDuration())
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, expected info", cfg.LogLevel)
	}
}

func TestLoadSanitizesValues(t *testing.T) {
	path := writeConfig(t, `
xenocanto:
  base_url: "http://localhost:1234/api/"
  total_pages: -3
  timeout: 0
quiz:
  autoplay: true
  distractor_policy: " LEGACY "
  session_ttl: 10
  max_sessions: 0
log_level: debug
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.XenoCanto.BaseURL != "http://localhost:1234/api" {
		t.Errorf("BaseURL = %q, expected trailing slash trimmed", cfg.XenoCanto.BaseURL)
	}
	if cfg.XenoCanto.TotalPages != 1 {
		t.Errorf("TotalPages = %d, expected 1", cfg.XenoCanto.TotalPages)
	}
	if cfg.XenoCanto.Timeout.ToDuration() != 30*time.Second {
		t.Errorf("Timeout = %v, expected 30s", cfg.XenoCanto.Timeout.ToDuration())
	}
	if !cfg.Quiz.Autoplay {
		t.Error("Autoplay should be true")
	}
	if cfg.Quiz.DistractorPolicy != "legacy" {
		t.Errorf("DistractorPolicy = %q, expected legacy", cfg.Quiz.DistractorPolicy)
	}
	if cfg.Quiz.SessionTTL.ToDuration() != 10*time.Second {
		t.Errorf("SessionTTL = %v, expected 10s", cfg.Quiz.SessionTTL.ToDuration())
	}
	if cfg.Quiz.MaxSessions != 1000 {
		t.Errorf("MaxSessions = %d, expected 1000", cfg.Quiz.MaxSessions)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, expected debug", cfg.LogLevel)
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if cfg.Server.Port != 8092 {
		t.Errorf("defaults should still be returned, got port %d", cfg.Server.Port)
	}
}
