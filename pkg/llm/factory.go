package llm

import "fmt"

// NewProvider builds the configured LLM backend.
func NewProvider(providerType, modelName, baseURL string) (Provider, error) {
	switch providerType {
	case "ollama":
		return NewOllama(baseURL, modelName), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}
