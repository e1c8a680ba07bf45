package dto

import "time"

type ChatRequest struct {
	Message string         `json:"message" validate:"required_without=File"`
	File    *FilePayload   `json:"file,omitempty"`
	History []HistoryEntry `json:"history" validate:"dive"`
}

// FilePayload carries one attachment as standard base64.
type FilePayload struct {
	Data     string `json:"data" validate:"required,base64"`
	MimeType string `json:"mimeType" validate:"required"`
}

type HistoryEntry struct {
	Role string `json:"role" validate:"required,oneof=user assistant bot"`
	Text string `json:"text"`
}

type ChatResponse struct {
	Reply string `json:"reply"`
}

type PingResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type UsageStatsResponse struct {
	Relayed     int64 `json:"relayed"`
	Failed      int64 `json:"failed"`
	Attachments int64 `json:"attachments"`
}
