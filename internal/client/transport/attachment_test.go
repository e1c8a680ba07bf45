package transport

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ai-chatbot/internal/client/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAttachment(t *testing.T) {
	dir := t.TempDir()

	small := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(small, []byte("remember the milk"), 0o600))

	large := filepath.Join(dir, "big.bin")
	require.NoError(t, os.WriteFile(large, make([]byte, 6*1024*1024), 0o600))

	empty := filepath.Join(dir, "empty.txt")
	require.NoError(t, os.WriteFile(empty, nil, 0o600))

	attachment, err := LoadAttachment(small)
	require.NoError(t, err)
	assert.Equal(t, "notes.txt", attachment.Name)
	assert.Equal(t, "text/plain", attachment.MIMEType)
	assert.Equal(t, []byte("remember the milk"), attachment.Data)

	_, err = LoadAttachment(large)
	assert.ErrorIs(t, err, ErrAttachmentTooLarge)

	_, err = LoadAttachment(empty)
	assert.ErrorIs(t, err, ErrAttachmentEmpty)

	_, err = LoadAttachment(filepath.Join(dir, "missing.txt"))
	assert.Error(t, err)

	_, err = LoadAttachment(dir)
	assert.Error(t, err)
}

func TestNewAttachmentDetectsPNG(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n" + strings.Repeat("\x00", 16))

	attachment, err := NewAttachment("pixel.png", "", png)
	require.NoError(t, err)
	assert.Equal(t, "image/png", attachment.MIMEType)
}

func TestSelectAttachment(t *testing.T) {
	dir := t.TempDir()
	large := filepath.Join(dir, "big.bin")
	require.NoError(t, os.WriteFile(large, make([]byte, MaxAttachmentBytes+1), 0o600))
	small := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(small, []byte("hello"), 0o600))

	store := session.NewStore()

	err := SelectAttachment(store, large)
	assert.ErrorIs(t, err, ErrAttachmentTooLarge)
	snap := store.Snapshot()
	assert.Nil(t, snap.PendingAttachment)
	assert.Equal(t, ErrAttachmentTooLarge.Error(), snap.Error)
	assert.Empty(t, snap.Turns)

	require.NoError(t, SelectAttachment(store, small))
	require.NotNil(t, store.Snapshot().PendingAttachment)
	assert.Equal(t, "a.txt", store.Snapshot().PendingAttachment.Name)
}
