package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ai-chatbot/internal/constant"
	"ai-chatbot/pkg/chat"
	"ai-chatbot/pkg/llm"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

var ErrEmptyResponse = errors.New("gemini returned no text")

type GeminiProvider struct {
	client    *genai.Client
	modelName string
}

// Ensure GeminiProvider implements LLMProvider
var _ llm.LLMProvider = &GeminiProvider{}

func NewGeminiProvider(ctx context.Context, apiKey, modelName string) (*GeminiProvider, error) {
	if modelName == "" {
		modelName = constant.GeminiDefaultModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &GeminiProvider{
		client:    client,
		modelName: modelName,
	}, nil
}

// ToGeminiRole maps the client vocabulary onto the roles the Gemini API accepts.
func ToGeminiRole(role chat.Role) (string, error) {
	switch role {
	case chat.RoleUser:
		return constant.ChatMessageRoleUser, nil
	case chat.RoleAssistant:
		return constant.ChatMessageRoleModel, nil
	default:
		return "", fmt.Errorf("no gemini role for %q", role)
	}
}

func (p *GeminiProvider) Name() string {
	return constant.LLMProviderGemini
}

func (p *GeminiProvider) Chat(ctx context.Context, history []llm.Message, turn []llm.Part, opts ...llm.Option) (string, error) {
	options := llm.ApplyOptions(llm.Options{Model: p.modelName}, opts...)

	// A model value per request keeps the chat session stateless and unshared.
	model := p.client.GenerativeModel(options.Model)
	if options.SystemInstruction != "" {
		model.SystemInstruction = genai.NewUserContent(genai.Text(options.SystemInstruction))
	}
	if options.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(options.MaxTokens))
	}
	if options.Temperature > 0 {
		model.SetTemperature(float32(options.Temperature))
	}

	contents, err := ToContents(history)
	if err != nil {
		return "", err
	}

	session := model.StartChat()
	session.History = contents

	resp, err := session.SendMessage(ctx, ToParts(turn)...)
	if err != nil {
		return "", fmt.Errorf("gemini send message: %w", err)
	}

	text := ResponseText(resp)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

func (p *GeminiProvider) Close() error {
	return p.client.Close()
}

// ToContents converts history in order; every message keeps its position.
func ToContents(history []llm.Message) ([]*genai.Content, error) {
	contents := make([]*genai.Content, 0, len(history))
	for i, msg := range history {
		role, err := ToGeminiRole(msg.Role)
		if err != nil {
			return nil, fmt.Errorf("history[%d]: %w", i, err)
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: ToParts(msg.Parts),
		})
	}
	return contents, nil
}

// ToParts keeps part order; callers put attachments before text.
func ToParts(parts []llm.Part) []genai.Part {
	out := make([]genai.Part, 0, len(parts))
	for _, p := range parts {
		if p.IsBlob() {
			out = append(out, genai.Blob{MIMEType: p.MIMEType, Data: p.Data})
			continue
		}
		out = append(out, genai.Text(p.Text))
	}
	return out
}

func ResponseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return sb.String()
}
