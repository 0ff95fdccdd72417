package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.App.Name != "nova" {
		t.Errorf("App.Name = %q, want nova", cfg.App.Name)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Voice.ReflectionCooldown != 45*time.Second {
		t.Errorf("Voice.ReflectionCooldown = %s, want 45s", cfg.Voice.ReflectionCooldown)
	}
	if cfg.Voice.ContinuityCooldown != 10*time.Minute {
		t.Errorf("Voice.ContinuityCooldown = %s, want 10m", cfg.Voice.ContinuityCooldown)
	}
	if cfg.Voice.DecisionBuffer != 200 {
		t.Errorf("Voice.DecisionBuffer = %d, want 200", cfg.Voice.DecisionBuffer)
	}

	if err := ValidateWithDetails(cfg); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadWithoutFile(t *testing.T) {
	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Model.Provider != "openai" {
		t.Errorf("Model.Provider = %q, want openai", cfg.Model.Provider)
	}
}

func TestLoadFromYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
app:
  name: nova-test
server:
  port: 9999
voice:
  reflection_cooldown: 90s
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.App.Name != "nova-test" {
		t.Errorf("App.Name = %q, want nova-test", cfg.App.Name)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("Server.Port = %d, want 9999", cfg.Server.Port)
	}
	if cfg.Voice.ReflectionCooldown != 90*time.Second {
		t.Errorf("Voice.ReflectionCooldown = %s, want 90s", cfg.Voice.ReflectionCooldown)
	}
	// Untouched sections keep their defaults.
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want info", cfg.Log.Level)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("NOVA_SERVER__PORT", "7070")
	t.Setenv("NOVA_LOG__LEVEL", "debug")

	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("Server.Port = %d, want 7070", cfg.Server.Port)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}
}

func TestLoadCLIOverridesWin(t *testing.T) {
	t.Setenv("NOVA_SERVER__PORT", "7070")

	cfg, err := Load("", map[string]interface{}{
		"server.port": 6060,
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 6060 {
		t.Errorf("Server.Port = %d, want CLI override 6060", cfg.Server.Port)
	}
}

func TestLoadRejectsUnknownFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("x = 1"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path, nil); err == nil {
		t.Error("Load() should reject unsupported config format")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Log.Level = "loud"
	cfg.Server.Port = 0
	cfg.Voice.ReflectionCooldown = 0

	err := ValidateWithDetails(cfg)
	if err == nil {
		t.Fatal("ValidateWithDetails() should fail")
	}
	msg := err.Error()
	if !strings.Contains(msg, "Log.Level") {
		t.Errorf("error should mention Log.Level: %s", msg)
	}
	if !strings.Contains(msg, "ReflectionCooldown") {
		t.Errorf("error should mention ReflectionCooldown: %s", msg)
	}
}

func TestConfigStringRedactsSecrets(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Model.OpenAI.APIKey = "sk-secret"

	if strings.Contains(cfg.String(), "sk-secret") {
		t.Error("String() must not leak API keys")
	}
}
