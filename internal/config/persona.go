package config

import (
	"fmt"
	"os"

	"buddybot/internal/agent"

	"gopkg.in/yaml.v3"
)

// LoadPersona reads the persona YAML file. An empty path falls back to the
// built-in default persona.
func LoadPersona(path string) (agent.Persona, error) {
	if path == "" {
		return agent.DefaultPersona(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return agent.Persona{}, fmt.Errorf("cannot read persona file %s: %w", path, err)
	}

	persona := agent.DefaultPersona()
	if err := yaml.Unmarshal(data, &persona); err != nil {
		return agent.Persona{}, fmt.Errorf("cannot parse persona file %s: %w", path, err)
	}
	if persona.Name == "" {
		return agent.Persona{}, fmt.Errorf("persona file %s: name is required", path)
	}
	return persona, nil
}
