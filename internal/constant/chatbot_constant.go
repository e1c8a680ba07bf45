package constant

import "time"

const (
	ChatMessageRoleUser      = "user"
	ChatMessageRoleModel     = "model"
	ChatMessageRoleAssistant = "assistant"
	ChatMessageRoleSystem    = "system"

	DefaultSystemInstruction = "You are a simple, helpful chatbot. Respond clearly and concisely. Avoid hallucination."

	DefaultGreeting = "Hello! I am your AI assistant. How can I help you today?"

	ServerRunningMessage = "Gemini Chatbot Server is Running"

	EmptyHistoryTextPlaceholder = "[attachment]"
)

// Relay limits
const (
	MaxAttachmentBytes     = 5 * 1024 * 1024
	MaxRequestBodyBytes    = 10 * 1024 * 1024
	DefaultMaxOutputTokens = 2048
	DefaultUpstreamTimeout = 60 * time.Second
)

// LLM providers
const (
	LLMProviderGemini      = "gemini"
	LLMProviderOllama      = "ollama"
	LLMProviderHuggingFace = "huggingface"

	GeminiDefaultModel      = "gemini-2.5-flash"
	OllamaDefaultBaseURL    = "http://localhost:11434"
	OllamaDefaultModel      = "llama3"
	OllamaChatEndpoint      = "/api/chat"
	HuggingFaceDefaultModel = "meta-llama/Llama-3.1-8B-Instruct"
)

// Error messages surfaced to callers
const (
	ErrMessageOrFileRequired = "Message or file is required"
	ErrGenerateFailed        = "Failed to generate response"
	ErrUpstreamTimeout       = "Upstream request timed out"
	ErrInvalidRequestBody    = "Invalid request body"
	ErrInternalServer        = "Internal server error"
)

// Chat events
const (
	ChatEventsTopic     = "chat.events"
	EventTypeChatRelay  = "CHAT_RELAYED"
	EventTypeChatFailed = "CHAT_FAILED"
)

// Wake-up probing
const (
	PingStatusOK          = "ok"
	DefaultPollInterval   = 10 * time.Second
	DefaultCountdownStart = 15
)
