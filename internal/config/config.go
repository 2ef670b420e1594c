package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// DefaultFile is the config file looked up in the working directory.
const DefaultFile = "w3flow.yaml"

// Load reads the YAML config at path on top of the built-in defaults.
// A missing file is not an error when path is the default location.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}

	cfg := &Config{}
	if err := setDefaults(cfg); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist) && !explicit:
		// defaults only
	case err != nil:
		return nil, fmt.Errorf("reading config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
		cfg.path = path
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the built-in configuration without reading any file.
func Default() *Config {
	cfg := &Config{}
	if err := setDefaults(cfg); err != nil {
		// struct tags are constants; a failure here is a programming error
		panic(err)
	}
	return cfg
}

// Validate checks field constraints declared in struct tags plus the
// cross-field rules the tags cannot express.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	if c.NFT.MintChunk > c.NFT.Supply {
		c.NFT.MintChunk = c.NFT.Supply
	}
	return nil
}

// Path returns the file the config was read from.
func (c *Config) Path() string {
	return c.path
}

// StatePath joins name onto the configured state directory.
func (c *Config) StatePath(name string) string {
	return filepath.Join(c.State.Dir, name)
}

func setDefaults(cfg *Config) error {
	if err := defaults.Set(cfg); err != nil {
		return fmt.Errorf("applying config defaults: %w", err)
	}
	// AutoSendConfig is shared, so per-asset differences are set here.
	cfg.NFT.AutoSend.Delay = 4 * time.Second
	return nil
}

// Save writes the config as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
