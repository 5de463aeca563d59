package config

// Stagefile represents the structure of the stage.yaml configuration file.
type Stagefile struct {
	Version        string              `yaml:"version"`
	Configurations map[string][]string `yaml:"configurations"`
	Components     map[string][]string `yaml:"components"`
}

// SupportedVersion is the stage.yaml schema version this loader understands.
const SupportedVersion = "1"
