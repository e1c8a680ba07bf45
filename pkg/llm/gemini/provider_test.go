package gemini

import (
	"testing"

	"ai-chatbot/pkg/chat"
	"ai-chatbot/pkg/llm"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToGeminiRole(t *testing.T) {
	tests := []struct {
		role chat.Role
		want string
	}{
		{chat.RoleUser, "user"},
		{chat.RoleAssistant, "model"},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			got, err := ToGeminiRole(tt.role)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ToGeminiRole(chat.Role("bot"))
	assert.Error(t, err, "only parsed roles are mappable")
}

func TestToContentsKeepsEveryEntry(t *testing.T) {
	history := []llm.Message{
		{Role: chat.RoleUser, Parts: []llm.Part{llm.TextPart("hi")}},
		{Role: chat.RoleAssistant, Parts: []llm.Part{llm.TextPart("hello")}},
	}

	contents, err := ToContents(history)
	require.NoError(t, err)
	require.Len(t, contents, 2)

	assert.Equal(t, "user", contents[0].Role)
	assert.Equal(t, []genai.Part{genai.Text("hi")}, contents[0].Parts)
	assert.Equal(t, "model", contents[1].Role)
	assert.Equal(t, []genai.Part{genai.Text("hello")}, contents[1].Parts)
}

func TestToPartsPreservesAttachmentFirstOrder(t *testing.T) {
	parts := ToParts([]llm.Part{
		llm.BlobPart("image/png", []byte{0x89, 'P', 'N', 'G'}),
		llm.TextPart("what is this?"),
	})

	require.Len(t, parts, 2)
	assert.Equal(t, genai.Blob{MIMEType: "image/png", Data: []byte{0x89, 'P', 'N', 'G'}}, parts[0])
	assert.Equal(t, genai.Text("what is this?"), parts[1])
}

func TestResponseText(t *testing.T) {
	assert.Empty(t, ResponseText(nil))
	assert.Empty(t, ResponseText(&genai.GenerateContentResponse{}))

	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{
				Role:  "model",
				Parts: []genai.Part{genai.Text("4"), genai.Text(".")},
			},
		}},
	}
	assert.Equal(t, "4.", ResponseText(resp))
}
