package factory

import (
	"context"
	"testing"

	"ai-chatbot/pkg/llm/ollama"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLLMProvider(t *testing.T) {
	provider, err := NewLLMProvider(context.Background(), "ollama", "", "", "")
	require.NoError(t, err)

	ollamaProvider, ok := provider.(*ollama.OllamaProvider)
	require.True(t, ok)
	assert.Equal(t, "http://localhost:11434", ollamaProvider.BaseURL)
	assert.Equal(t, "llama3", ollamaProvider.ModelName)

	_, err = NewLLMProvider(context.Background(), "bard", "", "", "")
	assert.Error(t, err)
}
