package config

// Config represents the complete configuration structure for ollamastream
type Config struct {
	Parameters Parameters `mapstructure:"parameters"`
	Providers  Providers  `mapstructure:"providers"`
}

// Parameters contains defaults that apply across providers
type Parameters struct {
	// generation-level defaults
	StopSequences []string `mapstructure:"stop_sequences"`

	// default backend selected when no --provider flag is given
	DefaultProvider string `mapstructure:"default_provider"`

	// request timeout in seconds; 0 disables the limit, which long streamed
	// generations usually need
	Timeout int `mapstructure:"timeout"`
}

// Providers contains configuration for the registered LLM backends
type Providers struct {
	Ollama Ollama `mapstructure:"ollama"`
}

// BaseProvider contains common fields shared across all providers
type BaseProvider struct {
	APIKey  string `mapstructure:"api_key"`
	BaseUrl string `mapstructure:"base_url"`
}

// Ollama holds the settings surface for a self-hosted Ollama server;
// defaults mirror the values the server itself ships with
type Ollama struct {
	BaseProvider `mapstructure:",squash"`

	Model         string  `mapstructure:"model"`
	NumCtx        int     `mapstructure:"num_ctx"`
	RepeatLastN   int     `mapstructure:"repeat_last_n"`
	RepeatPenalty float64 `mapstructure:"repeat_penalty"`
	Temperature   float64 `mapstructure:"temperature"`
}
