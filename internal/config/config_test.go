package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_FileMissing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoad_DefaultsFillUnsetFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	os.WriteFile(path, []byte(`{"telegram": {"token": "abc"}}`), 0o600)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Telegram.Token != "abc" {
		t.Errorf("token %q", cfg.Telegram.Token)
	}
	if cfg.Knowledge.ChunkSize != 1000 || cfg.Knowledge.Overlap != 200 {
		t.Errorf("chunk defaults not applied: %+v", cfg.Knowledge)
	}
	if cfg.Agent.MemoryTurns != 5 {
		t.Errorf("agent defaults not applied: %+v", cfg.Agent)
	}
}

func TestLoad_SaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	cfg := Defaults()
	cfg.Telegram.ChannelID = "564660774"

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Telegram.ChannelID != "564660774" {
		t.Errorf("channel id lost in round trip: %q", loaded.Telegram.ChannelID)
	}
}

func TestExpandEnvVars_SimpleSubstitution(t *testing.T) {
	t.Setenv("BUDDY_TEST_KEY", "sk-123")
	got := ExpandEnvVars(`{"apiKey": "${BUDDY_TEST_KEY}"}`)
	want := `{"apiKey": "sk-123"}`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestExpandEnvVars_DefaultValue(t *testing.T) {
	os.Unsetenv("BUDDY_TEST_UNSET")
	got := ExpandEnvVars(`${BUDDY_TEST_UNSET:-fallback}`)
	if got != "fallback" {
		t.Errorf("got %q, want fallback", got)
	}
}

func TestExpandEnvVars_UnsetWithoutDefaultKeepsLiteral(t *testing.T) {
	os.Unsetenv("BUDDY_TEST_UNSET")
	got := ExpandEnvVars(`${BUDDY_TEST_UNSET}`)
	if got != `${BUDDY_TEST_UNSET}` {
		t.Errorf("got %q, want the literal kept", got)
	}
}

func TestLoadPersona_EmptyPathUsesDefault(t *testing.T) {
	persona, err := LoadPersona("")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if persona.Name == "" || persona.HumanPrefix == "" {
		t.Errorf("default persona incomplete: %+v", persona)
	}
}

func TestLoadPersona_FromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "persona.yaml")
	os.WriteFile(path, []byte("name: Joseph\nstyle: Short and biting.\nuser_id: 6470622385\n"), 0o600)

	persona, err := LoadPersona(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if persona.Name != "Joseph" || persona.UserID != 6470622385 {
		t.Errorf("unexpected persona: %+v", persona)
	}
	if persona.HumanPrefix != "(Human)" {
		t.Errorf("unset fields must keep defaults: %+v", persona)
	}
}

func TestLoadPersona_MissingName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "persona.yaml")
	os.WriteFile(path, []byte("name: \"\"\nstyle: whatever\n"), 0o600)

	if _, err := LoadPersona(path); err == nil {
		t.Fatal("expected error for empty persona name")
	}
}
