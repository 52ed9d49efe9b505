// internal/cliapp/config.go
package cliapp

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ConfigFileName is looked up in the working directory and its parents.
const ConfigFileName = "nebula.yaml"

// ErrNoConfigFile means no nebula.yaml was found; defaults apply.
var ErrNoConfigFile = errors.New("no config file found")

// FileConfig holds defaults read from nebula.yaml. Flags override it.
type FileConfig struct {
	DatabaseURL string `yaml:"database_url"`
	Output      string `yaml:"output"`
	LLM         struct {
		APIKey    string `yaml:"api_key"`
		BaseURL   string `yaml:"base_url"`
		Model     string `yaml:"model"`
		MaxTokens int    `yaml:"max_tokens"`
	} `yaml:"llm"`
}

// FindConfigFile searches dir and its parents for nebula.yaml, then falls
// back to ~/.nebula/config.yaml.
func FindConfigFile(dir string) (string, error) {
	for {
		candidate := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", ErrNoConfigFile
	}
	global := filepath.Join(home, ".nebula", "config.yaml")
	if _, err := os.Stat(global); err == nil {
		return global, nil
	}
	return "", ErrNoConfigFile
}

// ReadConfig parses a config file.
func ReadConfig(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return &cfg, nil
}

// LoadConfig returns the nearest config, or an empty one when none exists.
func LoadConfig(dir string) (*FileConfig, error) {
	path, err := FindConfigFile(dir)
	if errors.Is(err, ErrNoConfigFile) {
		return &FileConfig{}, nil
	}
	if err != nil {
		return nil, err
	}
	return ReadConfig(path)
}

// WriteConfig writes cfg as YAML to path.
func WriteConfig(path string, cfg *FileConfig) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("creating yaml: %w", err)
	}
	return os.WriteFile(path, data, 0o600)
}
