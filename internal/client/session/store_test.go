package session

import (
	"sync"
	"testing"

	"ai-chatbot/internal/constant"
	"ai-chatbot/internal/dto"
	"ai-chatbot/pkg/chat"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReduceDoesNotMutateInput(t *testing.T) {
	turns := make([]Turn, 1, 4)
	turns[0] = NewTurn(chat.RoleUser, "first")
	before := State{Turns: turns}

	after := Reduce(before, AppendTurn{Turn: NewTurn(chat.RoleAssistant, "second")})

	require.Len(t, before.Turns, 1)
	require.Len(t, after.Turns, 2)
	// Spare capacity in the input must not be written through.
	assert.Equal(t, Turn{}, turns[:2][1])
	assert.Equal(t, "second", after.Turns[1].Text)
}

func TestReduce(t *testing.T) {
	attachment := &Attachment{Name: "notes.txt", MIMEType: "text/plain", Data: []byte("x")}

	tests := []struct {
		name   string
		start  State
		action Action
		check  func(t *testing.T, s State)
	}{
		{
			name:   "set pending text",
			action: SetPendingText{Text: "hello"},
			check:  func(t *testing.T, s State) { assert.Equal(t, "hello", s.PendingText) },
		},
		{
			name:   "clear pending",
			start:  State{PendingText: "hello", PendingAttachment: attachment},
			action: ClearPending{},
			check: func(t *testing.T, s State) {
				assert.Empty(t, s.PendingText)
				assert.Nil(t, s.PendingAttachment)
			},
		},
		{
			name:   "dismiss error",
			start:  State{Error: "boom"},
			action: SetError{},
			check:  func(t *testing.T, s State) { assert.Empty(t, s.Error) },
		},
		{
			name:   "connectivity",
			action: SetConnectivity{Status: ConnectivityReady},
			check:  func(t *testing.T, s State) { assert.Equal(t, ConnectivityReady, s.Connectivity) },
		},
		{
			name:   "nil action",
			start:  State{Loading: true},
			action: nil,
			check:  func(t *testing.T, s State) { assert.True(t, s.Loading) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, Reduce(tt.start, tt.action))
		})
	}
}

func TestHistoryExcludesLocalTurns(t *testing.T) {
	store := NewStore(WithDefaultGreeting())
	store.Dispatch(AppendTurn{Turn: NewTurn(chat.RoleUser, "hi")})
	store.Dispatch(AppendTurn{Turn: NewLocalTurn(chat.RoleAssistant, "⚠️ offline")})

	withFile := NewTurn(chat.RoleUser, "")
	withFile.AttachmentName = "cat.png"
	store.Dispatch(AppendTurn{Turn: withFile})

	snap := store.Snapshot()
	require.Len(t, snap.Turns, 4)
	assert.Equal(t, constant.DefaultGreeting, snap.Turns[0].Text)
	assert.True(t, snap.Turns[0].Local)

	assert.Equal(t, []dto.HistoryEntry{
		{Role: "user", Text: "hi"},
		{Role: "user", Text: "[attachment: cat.png]"},
	}, store.History())
}

func TestSubscribe(t *testing.T) {
	store := NewStore()

	var seen []bool
	unsubscribe := store.Subscribe(func(s State) {
		seen = append(seen, s.Loading)
	})

	store.Dispatch(SetLoading{Loading: true})
	store.Dispatch(SetLoading{Loading: false})
	unsubscribe()
	unsubscribe()
	store.Dispatch(SetLoading{Loading: true})

	assert.Equal(t, []bool{true, false}, seen)
}

func TestConcurrentDispatchKeepsEveryTurn(t *testing.T) {
	store := NewStore()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			store.Dispatch(AppendTurn{Turn: NewTurn(chat.RoleUser, "x")})
		}()
	}
	wg.Wait()

	assert.Len(t, store.Snapshot().Turns, 100)
	assert.Equal(t, ConnectivityUnknown, store.Snapshot().Connectivity)
}
