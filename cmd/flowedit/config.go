package main

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds persistent editor settings
type Config struct {
	ExportType  string `yaml:"export_type"`  // "svg" or "png"
	LastDir     string `yaml:"last_dir"`     // last used directory
	AutosaveDir string `yaml:"autosave_dir"` // where the autosave slot lives
	CellWidth   int    `yaml:"cell_width"`   // diagram pixels per column
	CellHeight  int    `yaml:"cell_height"`  // diagram pixels per row
}

// DefaultConfig returns default configuration
func DefaultConfig() Config {
	cwd, _ := os.Getwd()
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return Config{
		ExportType:  "svg",
		LastDir:     cwd,
		AutosaveDir: filepath.Join(dir, "flowedit"),
		CellWidth:   10,
		CellHeight:  20,
	}
}

// ConfigPath returns the path to the config file
func ConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".flowedit.yaml"
	}
	return filepath.Join(home, ".flowedit.yaml")
}

// LoadConfig reads path over the defaults. A missing or unreadable file
// yields the defaults.
func LoadConfig(path string) Config {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg
	}
	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return cfg
	}
	if file.ExportType == "svg" || file.ExportType == "png" {
		cfg.ExportType = file.ExportType
	}
	if file.LastDir != "" {
		cfg.LastDir = file.LastDir
	}
	if file.AutosaveDir != "" {
		cfg.AutosaveDir = file.AutosaveDir
	}
	if file.CellWidth > 0 {
		cfg.CellWidth = file.CellWidth
	}
	if file.CellHeight > 0 {
		cfg.CellHeight = file.CellHeight
	}
	return cfg
}

// SaveConfig writes cfg to path.
func SaveConfig(path string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, append([]byte("# flowedit configuration\n"), data...), 0644)
}
