package config

import (
	"fmt"

	"github.com/sghaida/capdi/logger"
)

// DIConfig holds registry settings.
type DIConfig struct {
	// Autowire injects untagged fields whose type is a declared component,
	// singleton, or bound interface.
	Autowire bool `yaml:"autowire" mapstructure:"autowire"`

	// Manifest is an optional path to a YAML namespace manifest.
	Manifest string `yaml:"manifest" mapstructure:"manifest"`

	// Namespaces are scanned when the registry is built from config.
	Namespaces []string `yaml:"namespaces" mapstructure:"namespaces"`
}

// Config is the root configuration.
type Config struct {
	DI  DIConfig      `yaml:"di" mapstructure:"di"`
	Log logger.Config `yaml:"log" mapstructure:"log"`
}

// ApplyDefaults fills unset values.
func (c *Config) ApplyDefaults() {
	c.Log.ApplyDefaults()
}

// Validate checks the loaded configuration.
func (c *Config) Validate() error {
	if err := c.Log.Validate(); err != nil {
		return err
	}
	for i, ns := range c.DI.Namespaces {
		if ns == "" {
			return fmt.Errorf("di.namespaces[%d] must not be empty", i)
		}
	}
	return nil
}
