// Package config loads the JSON configuration file, expands environment
// variables inside it and fills in defaults.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Config is the root configuration for buddybot.
type Config struct {
	General   GeneralConfig   `json:"general"`
	Telegram  TelegramConfig  `json:"telegram"`
	Provider  ProviderConfig  `json:"provider"`
	Ingest    IngestConfig    `json:"ingest"`
	Knowledge KnowledgeConfig `json:"knowledge"`
	Agent     AgentConfig     `json:"agent"`
	API       APIConfig       `json:"api"`
}

type GeneralConfig struct {
	Workspace string `json:"workspace"`
	LogLevel  string `json:"logLevel"`
}

type TelegramConfig struct {
	Token     string           `json:"token"`
	ChannelID string           `json:"channelId"`
	Aliases   map[int64]string `json:"aliases,omitempty"` // pre-seeded user id -> display name
}

type ProviderConfig struct {
	APIKey         string  `json:"apiKey"`
	APIBase        string  `json:"apiBase,omitempty"`
	Model          string  `json:"model"`
	EmbeddingModel string  `json:"embeddingModel"`
	Temperature    float64 `json:"temperature"`
}

type IngestConfig struct {
	CorpusPath     string `json:"corpusPath"`
	CheckpointPath string `json:"checkpointPath"`
	Search         string `json:"search,omitempty"` // optional server-side text filter
}

type KnowledgeConfig struct {
	IndexPath string `json:"indexPath"`
	ChunkSize int    `json:"chunkSize"`
	Overlap   int    `json:"overlap"`
	SearchK   int    `json:"searchK"`
}

type AgentConfig struct {
	PersonaPath string `json:"personaPath,omitempty"` // YAML persona file
	Retrieval   bool   `json:"retrieval"`
	Reformulate bool   `json:"reformulate"`
	MemoryTurns int    `json:"memoryTurns"`
}

type APIConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

func Defaults() *Config {
	return &Config{
		General: GeneralConfig{
			Workspace: "~/.buddybot",
			LogLevel:  "info",
		},
		Provider: ProviderConfig{
			Model:          "gpt-4o-mini",
			EmbeddingModel: "text-embedding-3-small",
			Temperature:    0.7,
		},
		Ingest: IngestConfig{
			CorpusPath:     "~/.buddybot/chat_history.json",
			CheckpointPath: "~/.buddybot/checkpoints.db",
		},
		Knowledge: KnowledgeConfig{
			IndexPath: "~/.buddybot/index.db",
			ChunkSize: 1000,
			Overlap:   200,
			SearchK:   10,
		},
		Agent: AgentConfig{
			Retrieval:   true,
			Reformulate: true,
			MemoryTurns: 5,
		},
		API: APIConfig{
			Host: "127.0.0.1",
			Port: 8080,
		},
	}
}

func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".buddybot"
	}
	return filepath.Join(home, ".buddybot")
}

func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.json")
}

func Load(path string) (*Config, error) {
	path = expandPath(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read config file %s: %w", path, err)
	}

	// Substitute environment variables: ${VAR} and ${VAR:-default}
	data = []byte(ExpandEnvVars(string(data)))

	cfg := Defaults()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("cannot parse config file %s: %w", path, err)
	}

	cfg.General.Workspace = expandPath(cfg.General.Workspace)
	cfg.Ingest.CorpusPath = expandPath(cfg.Ingest.CorpusPath)
	cfg.Ingest.CheckpointPath = expandPath(cfg.Ingest.CheckpointPath)
	cfg.Knowledge.IndexPath = expandPath(cfg.Knowledge.IndexPath)
	cfg.Agent.PersonaPath = expandPath(cfg.Agent.PersonaPath)

	return cfg, nil
}

func Save(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("cannot encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("cannot write config file %s: %w", path, err)
	}
	return nil
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns in config strings.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-(.*?))?\}`)

// ExpandEnvVars replaces ${VAR} with the environment variable value.
// Supports default values: ${VAR:-default} uses "default" when VAR is unset or empty.
func ExpandEnvVars(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		groups := envVarPattern.FindStringSubmatch(match)
		if len(groups) < 2 {
			return match
		}
		varName := groups[1]
		defaultVal := ""
		hasDefault := len(groups) >= 3 && groups[2] != ""
		if hasDefault {
			defaultVal = groups[2]
		}

		val, exists := os.LookupEnv(varName)
		if !exists || val == "" {
			if hasDefault {
				return defaultVal
			}
			return match // Keep original if no env var and no default
		}
		return val
	})
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
