package huggingface

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"ai-chatbot/internal/constant"
	"ai-chatbot/pkg/chat"
	"ai-chatbot/pkg/llm"
)

const DefaultBaseURL = "https://router.huggingface.co/v1"

// ErrAttachmentUnsupported is returned for turns carrying binary parts; the
// router's chat completions endpoint only takes text here.
var ErrAttachmentUnsupported = errors.New("huggingface provider does not accept attachments")

type HuggingFaceProvider struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

var _ llm.LLMProvider = &HuggingFaceProvider{}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request Payload Structure (OpenAI Compatible)
type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func NewHuggingFaceProvider(apiKey, baseURL, model string) *HuggingFaceProvider {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &HuggingFaceProvider{
		apiKey:  apiKey,
		baseURL: baseURL,
		model:   model,
		client:  &http.Client{},
	}
}

// ToChatRole maps the client vocabulary onto OpenAI-style chat roles.
func ToChatRole(role chat.Role) (string, error) {
	switch role {
	case chat.RoleUser:
		return constant.ChatMessageRoleUser, nil
	case chat.RoleAssistant:
		return constant.ChatMessageRoleAssistant, nil
	default:
		return "", fmt.Errorf("no chat completions role for %q", role)
	}
}

func (p *HuggingFaceProvider) Name() string {
	return constant.LLMProviderHuggingFace
}

func (p *HuggingFaceProvider) Chat(ctx context.Context, history []llm.Message, turn []llm.Part, options ...llm.Option) (string, error) {
	opts := llm.ApplyOptions(llm.Options{Model: p.model, MaxTokens: 500}, options...)

	messages := make([]chatMessage, 0, len(history)+2)
	if opts.SystemInstruction != "" {
		messages = append(messages, chatMessage{Role: constant.ChatMessageRoleSystem, Content: opts.SystemInstruction})
	}
	for i, msg := range history {
		role, err := ToChatRole(msg.Role)
		if err != nil {
			return "", fmt.Errorf("history[%d]: %w", i, err)
		}
		messages = append(messages, chatMessage{Role: role, Content: msg.Text()})
	}

	current := llm.Message{Role: chat.RoleUser, Parts: turn}
	for _, part := range turn {
		if part.IsBlob() {
			return "", ErrAttachmentUnsupported
		}
	}
	messages = append(messages, chatMessage{Role: constant.ChatMessageRoleUser, Content: current.Text()})

	jsonData, err := json.Marshal(chatRequest{
		Model:     opts.Model,
		Messages:  messages,
		MaxTokens: opts.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/chat/completions", p.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", p.apiKey))
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("huggingface api error (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	var chatResp chatResponse
	if err := json.Unmarshal(bodyBytes, &chatResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if chatResp.Error != nil {
		return "", fmt.Errorf("huggingface api returned error: %s", chatResp.Error.Message)
	}

	if len(chatResp.Choices) == 0 || chatResp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("empty choices from huggingface api")
	}

	return chatResp.Choices[0].Message.Content, nil
}
