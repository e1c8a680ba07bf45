package factory

import (
	"context"
	"fmt"

	"ai-chatbot/internal/constant"
	"ai-chatbot/pkg/llm"
	"ai-chatbot/pkg/llm/gemini"
	"ai-chatbot/pkg/llm/huggingface"
	"ai-chatbot/pkg/llm/ollama"
)

// NewLLMProvider picks the backend by name. baseURL is only used by the
// HTTP-based providers; apiKey by the hosted ones.
func NewLLMProvider(ctx context.Context, providerType, modelName, baseURL, apiKey string) (llm.LLMProvider, error) {
	switch providerType {
	case constant.LLMProviderGemini:
		provider, err := gemini.NewGeminiProvider(ctx, apiKey, modelName)
		if err != nil {
			return nil, err
		}
		return provider, nil
	case constant.LLMProviderOllama:
		if baseURL == "" {
			baseURL = constant.OllamaDefaultBaseURL
		}
		if modelName == "" {
			modelName = constant.OllamaDefaultModel
		}
		return ollama.NewOllamaProvider(baseURL, modelName), nil
	case constant.LLMProviderHuggingFace:
		return huggingface.NewHuggingFaceProvider(apiKey, baseURL, modelName), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}
