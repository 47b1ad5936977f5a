package config

func Defaults() *Config {
	return &Config{
		General: GeneralConfig{
			LogLevel:              "info",
			MaxConcurrentMessages: 5,
		},
		Telegram: TelegramConfig{
			ParseMode: "Markdown",
		},
		LLM: LLMConfig{
			APIBase:     "http://localhost:11434",
			Model:       "mistral",
			Temperature: 0.7,
			TimeoutSecs: 120,
		},
		Embedding: EmbeddingConfig{
			APIBase: "http://localhost:11434",
			Model:   "nomic-embed-text",
		},
		Knowledge: KnowledgeConfig{
			DataDir:      "data",
			IndexDir:     "index",
			ChunkSize:    800,
			ChunkOverlap: 150,
		},
		Sessions: SessionsConfig{
			MaxHistoryMessages: 20,
			ContextWindow:      4,
			IdleTTLMinutes:     120,
		},
	}
}
