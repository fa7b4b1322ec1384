package config

import (
	"fmt"
	"strings"

	"github.com/kbukum/llmkit/logger"
	"github.com/kbukum/llmkit/observability"
)

// AppConfig is the configuration of an llmkit binary.
type AppConfig struct {
	Name      string               `yaml:"name" mapstructure:"name"`
	Logging   logger.Config        `yaml:"logging" mapstructure:"logging"`
	LLM       LLMConfig            `yaml:"llm" mapstructure:"llm"`
	Telemetry observability.Config `yaml:"telemetry" mapstructure:"telemetry"`
}

// LLMConfig selects a provider by registry name and carries its raw option
// map. Options are decoded and validated by the provider itself.
type LLMConfig struct {
	Provider string         `yaml:"provider" mapstructure:"provider"`
	Options  map[string]any `yaml:"options" mapstructure:"options"`
}

// ApplyDefaults applies default values.
func (c *AppConfig) ApplyDefaults() {
	c.Logging.ApplyDefaults()
	if c.Telemetry.ServiceName == "" {
		c.Telemetry.ServiceName = c.Name
	}
	c.LLM.Provider = strings.ToLower(strings.TrimSpace(c.LLM.Provider))
	if c.LLM.Options == nil {
		c.LLM.Options = map[string]any{}
	}
}

// Validate validates the configuration. Provider options are not inspected
// here.
func (c *AppConfig) Validate() error {
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("config.logging: %w", err)
	}
	if c.LLM.Provider == "" {
		return fmt.Errorf("config.llm.provider is required")
	}
	return nil
}
