// Package config loads application configuration with Viper.
//
// LoadConfig reads config.yml and an optional .env file from standard
// locations, then overlays environment variables. Nested keys are addressed
// with a double underscore after the prefix:
//
//	LLM_GENERATE_LLM__PROVIDER=openai
//	LLM_GENERATE_LLM__OPTIONS__MODEL=gpt-4o-mini
package config
