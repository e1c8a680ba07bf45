package transport

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ai-chatbot/internal/client/session"
	"ai-chatbot/internal/constant"

	"github.com/gabriel-vasile/mimetype"
)

type Attachment = session.Attachment

// MaxAttachmentBytes matches the relay's per-file limit.
const MaxAttachmentBytes = constant.MaxAttachmentBytes

var (
	ErrAttachmentTooLarge = fmt.Errorf("file exceeds the %d MB limit", MaxAttachmentBytes/(1024*1024))
	ErrAttachmentEmpty    = errors.New("file is empty")
)

// LoadAttachment reads a file from disk. The size is checked before the
// content is read.
func LoadAttachment(path string) (*Attachment, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("open attachment: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	if info.Size() > MaxAttachmentBytes {
		return nil, ErrAttachmentTooLarge
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read attachment: %w", err)
	}
	return NewAttachment(filepath.Base(path), "", data)
}

// NewAttachment validates in-memory content. An empty mimeType is detected
// from the content.
func NewAttachment(name, mimeType string, data []byte) (*Attachment, error) {
	if len(data) == 0 {
		return nil, ErrAttachmentEmpty
	}
	if len(data) > MaxAttachmentBytes {
		return nil, ErrAttachmentTooLarge
	}
	if mimeType == "" {
		mimeType = detectMIMEType(data)
	}
	return &Attachment{Name: name, MIMEType: mimeType, Data: data}, nil
}

// detectMIMEType drops parameters: "text/plain; charset=utf-8" -> "text/plain".
func detectMIMEType(data []byte) string {
	detected, _, _ := strings.Cut(mimetype.Detect(data).String(), ";")
	return strings.TrimSpace(detected)
}

// SelectAttachment loads path into the pending attachment slot, or shows the
// failure in the error banner. It never adds a turn.
func SelectAttachment(store *session.Store, path string) error {
	attachment, err := LoadAttachment(path)
	if err != nil {
		store.Dispatch(session.SetError{Message: err.Error()})
		return err
	}
	store.Dispatch(session.SetPendingAttachment{Attachment: attachment})
	return nil
}
