package core

// Role identifies the author of a conversation message.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single turn in a multi-turn prompt.
type Message struct {
	Role    string `json:"role" yaml:"role"`
	Content string `json:"content" yaml:"content"`
}

// GenerationParams are the sampling parameters stored with a prompt version.
type GenerationParams struct {
	Temperature    float64 `json:"temperature" yaml:"temperature"`
	TopP           float64 `json:"top_p" yaml:"top_p"`
	TopK           int     `json:"top_k" yaml:"top_k"`
	MaxTokens      int     `json:"max_tokens" yaml:"max_tokens"`
	ResponseFormat string  `json:"response_format" yaml:"response_format"`
}

// PromptVersion is an immutable, reusable prompt definition authored in the
// editor: a primary template text and/or a multi-turn message history, a
// system instruction, and a model reference.
type PromptVersion struct {
	ID       string           `json:"id" yaml:"id"`
	Name     string           `json:"name" yaml:"name"`
	Text     string           `json:"text" yaml:"text"`
	Messages []Message        `json:"messages,omitempty" yaml:"messages,omitempty"`
	System   string           `json:"system" yaml:"system"`
	ModelID  string           `json:"model" yaml:"model"`
	Params   GenerationParams `json:"params" yaml:"params"`
}

// IsMultiTurn reports whether the version carries a message history.
func (v *PromptVersion) IsMultiTurn() bool {
	return len(v.Messages) > 0
}

// ModelConfig holds everything needed to reach a generation backend.
type ModelConfig struct {
	ID       string `json:"id" yaml:"id"`
	Provider string `json:"provider" yaml:"provider"`
	Endpoint string `json:"endpoint" yaml:"endpoint"`
	Model    string `json:"model" yaml:"model"`
	APIKey   string `json:"api_key" yaml:"api_key"`
}

// Attachment is an opaque file passed through to the generation call.
type Attachment struct {
	Name      string `json:"name"`
	MediaType string `json:"media_type"`
	Data      []byte `json:"data"`
}
