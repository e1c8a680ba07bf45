package ollama

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"ai-chatbot/internal/constant"
	"ai-chatbot/pkg/chat"
	"ai-chatbot/pkg/llm"
)

type OllamaProvider struct {
	BaseURL   string
	ModelName string
	Client    *http.Client
}

// Ensure OllamaProvider implements LLMProvider
var _ llm.LLMProvider = &OllamaProvider{}

// NewOllamaProvider leaves deadlines to the caller's context.
func NewOllamaProvider(baseURL, modelName string) *OllamaProvider {
	return &OllamaProvider{
		BaseURL:   baseURL,
		ModelName: modelName,
		Client:    &http.Client{},
	}
}

// --- Request/Response structs (Internal to this package) ---

type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Options  *ollamaOptions  `json:"options,omitempty"`
}

type ollamaMessage struct {
	Role    string   `json:"role"`
	Content string   `json:"content"`
	Images  []string `json:"images,omitempty"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type ollamaChatResponse struct {
	Model   string        `json:"model"`
	Message ollamaMessage `json:"message"`
	Done    bool          `json:"done"`
	Error   string        `json:"error,omitempty"`
}

// ToOllamaRole maps the client vocabulary onto Ollama chat roles.
func ToOllamaRole(role chat.Role) (string, error) {
	switch role {
	case chat.RoleUser:
		return constant.ChatMessageRoleUser, nil
	case chat.RoleAssistant:
		return constant.ChatMessageRoleAssistant, nil
	default:
		return "", fmt.Errorf("no ollama role for %q", role)
	}
}

func (o *OllamaProvider) Name() string {
	return constant.LLMProviderOllama
}

func (o *OllamaProvider) Chat(ctx context.Context, history []llm.Message, turn []llm.Part, opts ...llm.Option) (string, error) {
	// 1. Process Options
	options := llm.ApplyOptions(llm.Options{Temperature: 0.7, Model: o.ModelName}, opts...)

	// 2. Map generic messages to Ollama messages
	ollamaMessages := make([]ollamaMessage, 0, len(history)+2)
	if options.SystemInstruction != "" {
		ollamaMessages = append(ollamaMessages, ollamaMessage{
			Role:    constant.ChatMessageRoleSystem,
			Content: options.SystemInstruction,
		})
	}
	for i, msg := range history {
		role, err := ToOllamaRole(msg.Role)
		if err != nil {
			return "", fmt.Errorf("history[%d]: %w", i, err)
		}
		ollamaMessages = append(ollamaMessages, toOllamaMessage(role, msg.Parts))
	}
	ollamaMessages = append(ollamaMessages, toOllamaMessage(constant.ChatMessageRoleUser, turn))

	// 3. Prepare Payload
	reqPayload := ollamaChatRequest{
		Model:    options.Model,
		Messages: ollamaMessages,
		Stream:   false,
		Options: &ollamaOptions{
			Temperature: options.Temperature,
		},
	}

	if options.MaxTokens > 0 {
		reqPayload.Options.NumPredict = options.MaxTokens
	}

	payloadBytes, err := json.Marshal(reqPayload)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	// 4. Send Request
	url := o.BaseURL + constant.OllamaChatEndpoint
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(payloadBytes))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ollama error: status %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	// 5. Parse Response
	var ollamaResp ollamaChatResponse
	if err := json.Unmarshal(bodyBytes, &ollamaResp); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if ollamaResp.Error != "" {
		return "", fmt.Errorf("ollama error: %s", ollamaResp.Error)
	}
	if ollamaResp.Message.Content == "" {
		return "", fmt.Errorf("ollama returned an empty message")
	}

	return ollamaResp.Message.Content, nil
}

// Ollama carries images next to the message text rather than as ordered parts.
func toOllamaMessage(role string, parts []llm.Part) ollamaMessage {
	msg := ollamaMessage{Role: role}
	for _, p := range parts {
		if p.IsBlob() {
			msg.Images = append(msg.Images, base64.StdEncoding.EncodeToString(p.Data))
			continue
		}
		msg.Content += p.Text
	}
	return msg
}
