// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/abrignoni/AI-Provenance-Scanner/internal/paths"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

var (
	validFormats    = map[string]bool{"text": true, "json": true, "yaml": true}
	validCollectors = map[string]bool{"auto": true, "exiftool": true, "native": true}
)

// Config represents the application configuration
type Config struct {
	// Default settings
	Defaults struct {
		Format          string   `yaml:"format"`
		C2PAOnly        bool     `yaml:"c2pa_only"`
		Flattened       bool     `yaml:"flattened"`
		NoColor         bool     `yaml:"no_color"`
		Debug           bool     `yaml:"debug"`
		Collector       string   `yaml:"collector"`
		ExcludePatterns []string `yaml:"exclude_patterns"`
	} `yaml:"defaults"`

	// External metadata tools
	Tools struct {
		Exiftool string        `yaml:"exiftool"`
		C2patool string        `yaml:"c2patool"`
		Timeout  time.Duration `yaml:"timeout"`
	} `yaml:"tools"`

	// Profiles for different scanning scenarios
	Profiles map[string]Profile `yaml:"profiles"`
}

// Profile represents a named set of scan settings. Boolean settings can only
// switch a behavior on.
type Profile struct {
	Format          string        `yaml:"format"`
	C2PAOnly        bool          `yaml:"c2pa_only"`
	Flattened       bool          `yaml:"flattened"`
	NoColor         bool          `yaml:"no_color"`
	Debug           bool          `yaml:"debug"`
	Collector       string        `yaml:"collector"`
	ExcludePatterns []string      `yaml:"exclude_patterns"`
	Timeout         time.Duration `yaml:"timeout"`
	Description     string        `yaml:"description"`
}

func defaultConfig() *Config {
	config := &Config{
		Profiles: make(map[string]Profile),
	}

	config.Defaults.Format = "text"
	config.Defaults.Collector = "auto"
	config.Tools.Exiftool = "exiftool"
	config.Tools.C2patool = "c2patool"
	config.Tools.Timeout = 30 * time.Second

	config.Profiles["forensic"] = Profile{
		Format:      "json",
		Flattened:   true,
		Collector:   "exiftool",
		Description: "Complete JSON records with every tag exiftool can read",
	}
	config.Profiles["quick"] = Profile{
		Format:      "text",
		C2PAOnly:    true,
		Description: "Content credentials only, no tag collection",
	}
	return config
}

// LoadConfig loads configuration from the specified file path
func LoadConfig(configPath string) (*Config, error) {
	config := defaultConfig()

	// If no config file specified, return default config
	if configPath == "" {
		return config, nil
	}

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}
	if config.Profiles == nil {
		config.Profiles = make(map[string]Profile)
	}

	if err := ValidateConfig(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return config, nil
}

// LoadConfigOrDefault loads configuration from configFile (or searches standard
// locations when configFile is empty). If loading fails, it returns the
// default configuration and the load error.
func LoadConfigOrDefault(configFile string) (*Config, error) {
	configPath := configFile
	if configPath == "" {
		configPath = FindConfigFile()
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		return defaultConfig(), err
	}
	return cfg, nil
}

// FindConfigFile looks for a configuration file in the current directory and
// then in the user config directory
func FindConfigFile() string {
	for _, name := range []string{".provenance-scan.yaml", ".provenance-scan.yml"} {
		if fileExists(name) {
			return name
		}
	}

	if standardConfig := paths.GetConfigFile(); fileExists(standardConfig) {
		return standardConfig
	}
	return ""
}

// fileExists checks if a file exists and is not a directory
func fileExists(filename string) bool {
	info, err := os.Stat(filename)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// ListProfiles returns the available profile names, sorted
func (c *Config) ListProfiles() []string {
	profiles := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		profiles = append(profiles, name)
	}
	sort.Strings(profiles)
	return profiles
}

// GetProfile returns a profile by name, or nil if not found
func (c *Config) GetProfile(name string) *Profile {
	if profile, exists := c.Profiles[name]; exists {
		return &profile
	}
	return nil
}

// ValidateConfig checks enumerated settings, the timeout and exclude patterns
func ValidateConfig(config *Config) error {
	if err := validateSettings("defaults", config.Defaults.Format, config.Defaults.Collector, config.Defaults.ExcludePatterns); err != nil {
		return err
	}
	if config.Tools.Timeout < 0 {
		return fmt.Errorf("tools.timeout must not be negative, got %s", config.Tools.Timeout)
	}

	for _, name := range config.ListProfiles() {
		profile := config.Profiles[name]
		if err := validateSettings("profile "+name, profile.Format, profile.Collector, profile.ExcludePatterns); err != nil {
			return err
		}
		if profile.Timeout < 0 {
			return fmt.Errorf("profile %s: timeout must not be negative, got %s", name, profile.Timeout)
		}
	}
	return nil
}

func validateSettings(scope, format, collector string, excludes []string) error {
	if format != "" && !validFormats[format] {
		return fmt.Errorf("%s: unknown format %q (expected text, json or yaml)", scope, format)
	}
	if collector != "" && !validCollectors[collector] {
		return fmt.Errorf("%s: unknown collector %q (expected auto, exiftool or native)", scope, collector)
	}
	for _, p := range excludes {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("%s: invalid exclude pattern %q", scope, p)
		}
	}
	return nil
}
