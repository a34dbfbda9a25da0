package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Mode selects the installation procedure.
type Mode string

const (
	ModeDocker Mode = "docker"
	ModeNative Mode = "native"
)

// Installation constants for the Agent Zero application.
const (
	// Image is the published Agent Zero image, pulled by a fixed tag.
	Image = "frdel/agent-zero-run:latest"
	// RepoURL is the upstream repository cloned in native mode.
	RepoURL = "https://github.com/frdel/agent-zero"
	// ContainerPort is the fixed port the application listens on in-container.
	ContainerPort = 80
	// ContainerDataPath is the fixed in-container path the data volume maps to.
	ContainerDataPath = "/a0"
	// UILogFile is the UI log file name, relative to the install directory.
	UILogFile = "agent0-ui.log"
)

// Config holds the resolved installer configuration. It is constructed once
// by Load and never mutated afterwards; host state is always queried fresh
// at each step instead of being cached here.
type Config struct {
	Mode          Mode
	InstallDir    string
	DataDir       string
	Port          int
	Host          string
	ContainerName string
	HomeDir       string
}

// Load builds the configuration from defaults, an optional .env file,
// A0UP_-prefixed environment variables, and bound flags (highest priority).
// Validation failures abort before any procedure runs a side effect.
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("unable to resolve home directory: %w", err)
	}

	// Optional .env in the working directory; absence is not an error.
	if err := godotenv.Load(); err == nil {
		log.Debug().Msg("Loaded .env overrides from working directory")
	}

	viper.SetDefault("mode", string(ModeDocker))
	viper.SetDefault("dir", filepath.Join(home, "agent-zero"))
	viper.SetDefault("data_dir", filepath.Join(home, "agent0_data"))
	viper.SetDefault("port", 50001)
	viper.SetDefault("host", "0.0.0.0")
	viper.SetDefault("name", "agent-zero")

	viper.SetEnvPrefix("A0UP")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	cfg := &Config{
		Mode:          Mode(viper.GetString("mode")),
		InstallDir:    viper.GetString("dir"),
		DataDir:       viper.GetString("data_dir"),
		Port:          viper.GetInt("port"),
		Host:          viper.GetString("host"),
		ContainerName: viper.GetString("name"),
		HomeDir:       home,
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Mode {
	case ModeDocker, ModeNative:
	default:
		return fmt.Errorf("mode must be one of: docker, native (got %q)", c.Mode)
	}

	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535 (got %d)", c.Port)
	}

	if c.InstallDir == "" {
		return fmt.Errorf("install directory must not be empty")
	}

	if c.DataDir == "" {
		return fmt.Errorf("data directory must not be empty")
	}

	if c.ContainerName == "" {
		return fmt.Errorf("container name must not be empty")
	}

	if c.Host == "" {
		return fmt.Errorf("bind host must not be empty")
	}

	return nil
}

// VenvDir returns the fixed virtual environment path inside the install dir.
func (c *Config) VenvDir() string {
	return filepath.Join(c.InstallDir, ".venv")
}

// UILogPath returns the fixed UI log file path inside the install dir.
func (c *Config) UILogPath() string {
	return filepath.Join(c.InstallDir, UILogFile)
}
