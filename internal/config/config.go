package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for vinobot.
type Config struct {
	General   GeneralConfig   `yaml:"general"`
	Telegram  TelegramConfig  `yaml:"telegram"`
	LLM       LLMConfig       `yaml:"llm"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Knowledge KnowledgeConfig `yaml:"knowledge"`
	Sessions  SessionsConfig  `yaml:"sessions"`
}

type GeneralConfig struct {
	LogLevel              string `yaml:"logLevel"`
	MaxConcurrentMessages int    `yaml:"maxConcurrentMessages"`
}

type TelegramConfig struct {
	Token     string `yaml:"token"`
	ParseMode string `yaml:"parseMode"`
}

type LLMConfig struct {
	APIBase     string  `yaml:"apiBase"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	TimeoutSecs int     `yaml:"timeoutSecs"`
}

type EmbeddingConfig struct {
	APIBase string `yaml:"apiBase"`
	Model   string `yaml:"model"`
}

type KnowledgeConfig struct {
	DataDir      string `yaml:"dataDir"`
	IndexDir     string `yaml:"indexDir"`
	ChunkSize    int    `yaml:"chunkSize"`    // max characters per chunk
	ChunkOverlap int    `yaml:"chunkOverlap"` // overlapping characters between chunks
}

type SessionsConfig struct {
	MaxHistoryMessages int `yaml:"maxHistoryMessages"`
	ContextWindow      int `yaml:"contextWindow"` // history entries rendered into the prompt
	IdleTTLMinutes     int `yaml:"idleTTLMinutes"`
}

func DefaultConfigPath() string {
	return "config.yaml"
}

// Load reads a YAML config file, expanding ${VAR} references from the
// environment. A missing file yields defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Defaults(), nil
		}
		return nil, fmt.Errorf("cannot read config file %s: %w", path, err)
	}

	data = []byte(ExpandEnvVars(string(data)))

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("cannot parse config file %s: %w", path, err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *Config) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("cannot create config directory: %w", err)
		}
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("cannot marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns in config strings.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-(.*?))?\}`)

// ExpandEnvVars replaces ${VAR} with the environment variable value.
// Supports default values: ${VAR:-default} uses "default" when VAR is unset or empty.
func ExpandEnvVars(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		groups := envVarPattern.FindStringSubmatch(match)
		if len(groups) < 2 {
			return match
		}
		varName := groups[1]
		defaultVal := ""
		hasDefault := len(groups) >= 3 && groups[2] != ""
		if hasDefault {
			defaultVal = groups[2]
		}

		val, exists := os.LookupEnv(varName)
		if !exists || val == "" {
			if hasDefault {
				return defaultVal
			}
			return match
		}
		return val
	})
}

// Validate checks that the config has valid values. The Telegram token
// is checked separately by the serve command: only the bot surface
// needs it.
func Validate(cfg *Config) error {
	var errs []string

	if cfg.General.MaxConcurrentMessages < 1 || cfg.General.MaxConcurrentMessages > 100 {
		errs = append(errs, "general.maxConcurrentMessages must be between 1 and 100")
	}
	if cfg.LLM.TimeoutSecs < 1 {
		errs = append(errs, "llm.timeoutSecs must be >= 1")
	}
	if cfg.LLM.Temperature < 0 || cfg.LLM.Temperature > 2 {
		errs = append(errs, "llm.temperature must be between 0 and 2")
	}
	if cfg.Knowledge.ChunkSize < 1 {
		errs = append(errs, "knowledge.chunkSize must be >= 1")
	}
	if cfg.Knowledge.ChunkOverlap < 0 || cfg.Knowledge.ChunkOverlap >= cfg.Knowledge.ChunkSize {
		errs = append(errs, "knowledge.chunkOverlap must be >= 0 and smaller than chunkSize")
	}
	if cfg.Sessions.MaxHistoryMessages < 2 {
		errs = append(errs, "sessions.maxHistoryMessages must be >= 2")
	}
	if cfg.Sessions.ContextWindow < 0 {
		errs = append(errs, "sessions.contextWindow must be >= 0")
	}
	if cfg.Sessions.IdleTTLMinutes < 1 {
		errs = append(errs, "sessions.idleTTLMinutes must be >= 1")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
