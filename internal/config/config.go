package config

import (
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

//go:embed data/default_config.toml
var defaultConfigTOML string

// Manager handles configuration loading and management
type Manager struct {
	v      *viper.Viper
	cfg    *Config
	logger *slog.Logger
}

// NewManager creates a new configuration manager with default settings
func NewManager() *Manager {
	v := viper.New()

	// register aliases for easier key management
	v.RegisterAlias("model", "providers.ollama.model")
	v.RegisterAlias("base-url", "providers.ollama.base_url")

	// bind settings to intuitive environment variable names
	_ = v.BindEnv("providers.ollama.base_url", "OLLAMA_HOST")
	_ = v.BindEnv("providers.ollama.model", "OLLAMA_MODEL")

	return &Manager{
		v:   v,
		cfg: &Config{}, // empty config, defaults loaded from embedded TOML in Load()
	}
}

// WithLogger sets the logger for the configuration manager
func (m *Manager) WithLogger(logger *slog.Logger) *Manager {
	m.logger = logger
	return m
}

// Load loads configuration from the specified TOML file, merging with defaults
func (m *Manager) Load(configPath string) error {
	if m.logger != nil {
		m.logger.Debug("Attempting to load config file", "path", configPath)
	}

	m.v.SetConfigType("toml")

	// load defaults from embedded TOML
	if err := m.v.ReadConfig(strings.NewReader(defaultConfigTOML)); err != nil {
		return fmt.Errorf("failed to load embedded defaults: %w", err)
	}

	m.v.SetConfigFile(configPath)

	// merge user config file over defaults
	err := m.v.MergeInConfig()
	if err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		var pathError *os.PathError
		if !errors.As(err, &configFileNotFoundError) && !errors.As(err, &pathError) {
			return err
		}
		if pathError != nil && !os.IsNotExist(pathError) {
			return err
		}

		if m.logger != nil {
			m.logger.Debug("Config file not found")
		}

		// auto-create default config file if it doesn't exist
		if err := m.createDefaultConfigFile(configPath); err != nil {
			return fmt.Errorf("failed to create default config file: %w", err)
		}

		m.v.SetConfigFile(configPath)
	} else if m.logger != nil {
		m.logger.Info("Configuration loaded successfully", "path", m.v.ConfigFileUsed())
	}

	// unmarshal final configuration
	if err := m.v.Unmarshal(&m.cfg); err != nil {
		return err
	}

	return nil
}

// Config returns the current configuration
func (m *Manager) Config() *Config {
	return m.cfg
}

// Viper returns the underlying Viper instance for flag binding
func (m *Manager) Viper() *viper.Viper {
	return m.v
}

// Save writes the current configuration state back to the config file
func (m *Manager) Save() error {
	configFile := m.v.ConfigFileUsed()
	if configFile == "" {
		return fmt.Errorf("no config file path set")
	}

	configDir := filepath.Dir(configFile)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		if err := m.v.SafeWriteConfigAs(configFile); err != nil {
			return fmt.Errorf("failed to create config file: %w", err)
		}
	} else {
		if err := m.v.WriteConfigAs(configFile); err != nil {
			return fmt.Errorf("failed to update config file: %w", err)
		}
	}

	// reload the configuration struct to reflect the changes
	if err := m.v.Unmarshal(&m.cfg); err != nil {
		return fmt.Errorf("failed to reload configuration after save: %w", err)
	}

	return nil
}

// createDefaultConfigFile writes the embedded defaults to the given path
func (m *Manager) createDefaultConfigFile(configPath string) error {
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(defaultConfigTOML), 0644); err != nil {
		return fmt.Errorf("failed to write default config: %w", err)
	}

	if m.logger != nil {
		m.logger.Info("Created default config file", "path", configPath)
	}

	return nil
}

// DefaultConfigPath returns the standard user config file location
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".ollamastream", "config.toml"), nil
}

// NewDefaultFromEmbedded creates a Config struct populated from embedded TOML;
// primarily a test helper
func NewDefaultFromEmbedded() *Config {
	v := viper.New()
	v.SetConfigType("toml")

	if err := v.ReadConfig(strings.NewReader(defaultConfigTOML)); err != nil {
		panic(fmt.Sprintf("failed to load embedded defaults in test helper: %v", err))
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		panic(fmt.Sprintf("failed to unmarshal embedded defaults in test helper: %v", err))
	}

	return cfg
}
