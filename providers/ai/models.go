package ai

// Request describes a single completion call to an LLM provider. The zero
// value of every optional field means "use the provider's default".
type Request struct {
	// Model overrides the provider's configured model for this request.
	Model string

	// SystemPrompt sets the system instruction, when the provider supports
	// one. Empty means no system message is sent.
	SystemPrompt string

	// Prompt is the user-facing content of the request.
	Prompt string

	// Temperature controls sampling randomness. Nil keeps the provider
	// default; most labs want a low temperature for reproducible routing.
	Temperature *float64

	// MaxTokens caps the completion length. Zero keeps the provider default.
	MaxTokens int
}

// TemperatureOf is a convenience for building a Request with a literal
// temperature value.
func TemperatureOf(value float64) *float64 {
	return &value
}
