package config

// Config is the root configuration for the arena.
type Config struct {
	Database  DatabaseConfig  `yaml:"database,omitempty"`
	LLM       LLMConfig       `yaml:"llm,omitempty"`
	Debate    DebateConfig    `yaml:"debate,omitempty"`
	Retention RetentionConfig `yaml:"retention,omitempty"`
	Gateway   GatewayConfig   `yaml:"gateway,omitempty"`
	Logging   LoggingConfig   `yaml:"logging,omitempty"`
}

// DatabaseConfig controls the SQLite store.
type DatabaseConfig struct {
	Path string `yaml:"path,omitempty"` // defaults to <base>/data/arena.db
}

// LLMConfig selects and configures the text-generation provider.
type LLMConfig struct {
	Provider    string   `yaml:"provider,omitempty"` // "openai" | "gemini" | "mock"
	APIKey      string   `yaml:"apiKey,omitempty"`   // supports ${ENV_VAR} references
	Model       string   `yaml:"model,omitempty"`
	Endpoint    string   `yaml:"endpoint,omitempty"` // custom base URL (OpenAI-compatible servers)
	MaxRetries  int      `yaml:"maxRetries,omitempty"`
	MaxTokens   int      `yaml:"maxTokens,omitempty"`
	Temperature *float64 `yaml:"temperature,omitempty"`
}

// DebateConfig controls how a debate session runs.
type DebateConfig struct {
	AutoAdvance      bool              `yaml:"autoAdvance,omitempty"`      // advance phases without waiting for input
	StepDelaySeconds int               `yaml:"stepDelaySeconds,omitempty"` // pause between auto-advanced phases
	Followups        bool              `yaml:"followups,omitempty"`        // generate follow-up reactions in cross-exam
	Personas         map[string]string `yaml:"personas,omitempty"`         // name → style description
}

// RetentionConfig controls transcript retention.
type RetentionConfig struct {
	Days     int    `yaml:"days,omitempty"`     // completed sessions older than this are purged; 0 disables
	Schedule string `yaml:"schedule,omitempty"` // cron expression for the purge job
}

// GatewayConfig controls the spectator HTTP/WebSocket server.
type GatewayConfig struct {
	Enabled bool   `yaml:"enabled,omitempty"`
	Port    int    `yaml:"port,omitempty"`
	Bind    string `yaml:"bind,omitempty"` // "loopback" | "lan"
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level        string `yaml:"level,omitempty"`        // "silent" | "fatal" | "error" | "warn" | "info" | "debug"
	ConsoleStyle string `yaml:"consoleStyle,omitempty"` // "pretty" | "json"
}

// DefaultPersonaNames is the built-in persona roster, in display order.
var DefaultPersonaNames = []string{
	"Formal Analyst",
	"Emotional Activist",
	"Sarcastic Rebel",
	"Curious Thinker",
	"Strategic Debater",
	"Evidence Expert",
}

// DefaultPersonas returns the built-in persona roster with style descriptions.
func DefaultPersonas() map[string]string {
	return map[string]string{
		"Formal Analyst":     "Logical, evidence-based, methodical approach",
		"Emotional Activist": "Passionate, persuasive, emotionally compelling",
		"Sarcastic Rebel":    "Witty, challenging, uses humor strategically",
		"Curious Thinker":    "Questioning, exploratory, open-minded",
		"Strategic Debater":  "Tactical, calculated, focuses on winning",
		"Evidence Expert":    "Data-driven, factual, research-focused",
	}
}
