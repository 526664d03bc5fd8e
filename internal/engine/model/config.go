package model

// ================ Config ================

type SessionConfig struct {
	TTL              string `envconfig:"SESSION_TTL" default:"30m"`
	MaxTurns         int    `envconfig:"SESSION_MAX_TURNS" default:"40"`
	ContextTurns     int    `envconfig:"SESSION_CONTEXT_TURNS" default:"10"`
	FallbackCapacity int    `envconfig:"SESSION_FALLBACK_CAPACITY" default:"1000"`
}

type GatewayConfig struct {
	UnderstandTimeout int `envconfig:"GATEWAY_UNDERSTAND_TIMEOUT" default:"6"`
	GenerateTimeout   int `envconfig:"GATEWAY_GENERATE_TIMEOUT" default:"8"`
}

type GeminiModelConfig struct {
	Model       string  `envconfig:"GEMINI_MODEL" default:"gemini-2.5-flash"`
	MaxTokens   int     `envconfig:"GEMINI_MAX_TOKENS" default:"2000"`
	Temperature float32 `envconfig:"GEMINI_TEMPERATURE" default:"0.2"`
}

type OpenAIModelConfig struct {
	APIKey      string  `envconfig:"OPENAI_API_KEY"`
	Model       string  `envconfig:"OPENAI_MODEL" default:"gpt-4o-mini"`
	MaxTokens   int64   `envconfig:"OPENAI_MAX_TOKENS" default:"2000"`
	Temperature float64 `envconfig:"OPENAI_TEMPERATURE" default:"0.2"`
}

type AnthropicModelConfig struct {
	APIKey      string  `envconfig:"ANTHROPIC_API_KEY"`
	Model       string  `envconfig:"ANTHROPIC_MODEL" default:"claude-3-5-haiku-20241022"`
	MaxTokens   int64   `envconfig:"ANTHROPIC_MAX_TOKENS" default:"2000"`
	Temperature float64 `envconfig:"ANTHROPIC_TEMPERATURE" default:"0.2"`
}

type SafetyConfig struct {
	Timeout int `envconfig:"SAFETY_TIMEOUT" default:"2"`
}

type RetrieverConfig struct {
	Limit              int      `envconfig:"RETRIEVER_LIMIT" default:"5"`
	OverfetchFactor    int      `envconfig:"RETRIEVER_OVERFETCH_FACTOR" default:"2"`
	BudgetRelaxFactor  float64  `envconfig:"RETRIEVER_BUDGET_RELAX_FACTOR" default:"1.2"`
	ExcludedCategories []string `envconfig:"RETRIEVER_EXCLUDED_CATEGORIES" default:"greeting-cards,accessories"`
	ExcludedKeywords   []string `envconfig:"RETRIEVER_EXCLUDED_KEYWORDS" default:"greeting card,gift wrap"`
	IndexTimeout       int      `envconfig:"RETRIEVER_INDEX_TIMEOUT" default:"1"`
}

type ComposerConfig struct {
	MaxProducts int `envconfig:"COMPOSER_MAX_PRODUCTS" default:"3"`
}

type VoiceConfig struct {
	BusinessType string `envconfig:"PROMPT_BUSINESS_TYPE" default:"flower shop"`
	BusinessName string `envconfig:"PROMPT_BUSINESS_NAME" default:"PetalDesk"`
}

type EngineConfig struct {
	MaxInFlight int64 `envconfig:"ENGINE_MAX_IN_FLIGHT" default:"64"`
}
