package llm

import (
	"context"

	"ai-chatbot/pkg/chat"
)

// Part is one piece of a turn: either text or inline binary data.
type Part struct {
	Text     string
	Data     []byte
	MIMEType string
}

func TextPart(text string) Part {
	return Part{Text: text}
}

func BlobPart(mimeType string, data []byte) Part {
	return Part{Data: data, MIMEType: mimeType}
}

func (p Part) IsBlob() bool {
	return len(p.Data) > 0
}

// Message represents a chat message in a provider-agnostic format
type Message struct {
	Role  chat.Role
	Parts []Part
}

// Text concatenates the text parts of a message.
func (m Message) Text() string {
	var text string
	for _, p := range m.Parts {
		if !p.IsBlob() {
			text += p.Text
		}
	}
	return text
}

// Option allows for optional parameters like Temperature, MaxTokens, etc.
type Option func(*Options)

type Options struct {
	Temperature       float64
	MaxTokens         int
	Model             string // Override default model
	SystemInstruction string
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

func WithSystemInstruction(instruction string) Option {
	return func(o *Options) {
		o.SystemInstruction = instruction
	}
}

func ApplyOptions(defaults Options, opts ...Option) Options {
	for _, opt := range opts {
		opt(&defaults)
	}
	return defaults
}

// LLMProvider defines the contract for any LLM backend
type LLMProvider interface {
	// Chat starts a fresh conversation seeded with history, sends the current
	// turn's parts and returns the complete reply text.
	Chat(ctx context.Context, history []Message, turn []Part, options ...Option) (string, error)

	Name() string
}
