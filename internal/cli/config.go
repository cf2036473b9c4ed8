package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config carries workspace-level CLI defaults. Flags always win over the
// config file.
type Config struct {
	Pane     string      `yaml:"pane" json:"pane"`
	LogLevel string      `yaml:"log_level" json:"log_level"`
	Redis    RedisConfig `yaml:"redis" json:"redis"`
}

// RedisConfig points the CLI at a shared sink and, optionally, the
// distributed pass lock.
type RedisConfig struct {
	Address  string `yaml:"address" json:"address"`
	Password string `yaml:"password" json:"password"`
	DB       int    `yaml:"db" json:"db"`
	Lock     bool   `yaml:"lock" json:"lock"`
}

// LoadConfig reads the workspace configuration file (YAML or JSON).
// A missing file is not an error; it just means defaults.
func LoadConfig(dir string) (Config, error) {
	var cfg Config
	for _, name := range []string{"canopy.yaml", "canopy.yml", "canopy.json"} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return Config{}, fmt.Errorf("failed to read %s: %w", name, err)
		}

		if strings.ToLower(filepath.Ext(name)) == ".json" {
			if err := json.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("failed to parse %s: %w", name, err)
			}
		} else {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("failed to parse %s: %w", name, err)
			}
		}
		return cfg, nil
	}
	return cfg, nil
}
