package config

import "fmt"

// ConfigError represents a configuration error.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s", e.Message)
}

// Defaults returns a Config with sensible defaults applied.
func Defaults() Config {
	return Config{
		LLM: LLMConfig{
			Provider:   "mock",
			MaxRetries: 3,
			MaxTokens:  1024,
		},
		Debate: DebateConfig{
			StepDelaySeconds: 2,
			Followups:        true,
			Personas:         DefaultPersonas(),
		},
		Retention: RetentionConfig{
			Days:     90,
			Schedule: "0 3 * * *",
		},
		Gateway: GatewayConfig{
			Port: 18789,
			Bind: "loopback",
		},
		Logging: LoggingConfig{
			Level:        "info",
			ConsoleStyle: "pretty",
		},
	}
}
