package session

import (
	"fmt"
	"time"

	"ai-chatbot/internal/dto"
	"ai-chatbot/pkg/chat"

	"github.com/google/uuid"
)

type Connectivity string

const (
	ConnectivityUnknown Connectivity = "unknown"
	ConnectivityProbing Connectivity = "probing"
	ConnectivityReady   Connectivity = "ready"
)

// Attachment is a file the user picked, already read into memory.
type Attachment struct {
	Name     string
	MIMEType string
	Data     []byte
}

// Turn is one entry of the conversation as shown to the user. Local turns
// (the greeting, error notices) are display-only and never sent as context.
type Turn struct {
	ID             uuid.UUID
	Role           chat.Role
	Text           string
	AttachmentName string
	Local          bool
	CreatedAt      time.Time
}

func NewTurn(role chat.Role, text string) Turn {
	return Turn{
		ID:        uuid.New(),
		Role:      role,
		Text:      text,
		CreatedAt: time.Now(),
	}
}

func NewLocalTurn(role chat.Role, text string) Turn {
	turn := NewTurn(role, text)
	turn.Local = true
	return turn
}

type State struct {
	Turns             []Turn
	PendingText       string
	PendingAttachment *Attachment
	Loading           bool
	Error             string
	Connectivity      Connectivity
}

// History is the conversation context sent with the next request: every
// non-local turn, in order.
func (s State) History() []dto.HistoryEntry {
	history := make([]dto.HistoryEntry, 0, len(s.Turns))
	for _, turn := range s.Turns {
		if turn.Local {
			continue
		}
		text := turn.Text
		if text == "" && turn.AttachmentName != "" {
			text = fmt.Sprintf("[attachment: %s]", turn.AttachmentName)
		}
		history = append(history, dto.HistoryEntry{Role: turn.Role.String(), Text: text})
	}
	return history
}
