package session

import (
	"sync"

	"ai-chatbot/internal/constant"
	"ai-chatbot/internal/dto"
	"ai-chatbot/pkg/chat"
)

type Option func(s *State)

// WithGreeting seeds the conversation with a local assistant turn.
func WithGreeting(text string) Option {
	return func(s *State) {
		s.Turns = append(s.Turns, NewLocalTurn(chat.RoleAssistant, text))
	}
}

// WithDefaultGreeting seeds the stock greeting.
func WithDefaultGreeting() Option {
	return WithGreeting(constant.DefaultGreeting)
}

// Store holds the client session. Dispatches are serialized; subscribers are
// called after each one, in dispatch order, and must not dispatch themselves.
type Store struct {
	dispatchMu sync.Mutex

	mu          sync.RWMutex
	state       State
	subscribers map[int]func(State)
	nextID      int
}

func NewStore(opts ...Option) *Store {
	state := State{Connectivity: ConnectivityUnknown}
	for _, opt := range opts {
		opt(&state)
	}
	return &Store{
		state:       state,
		subscribers: make(map[int]func(State)),
	}
}

func (s *Store) Dispatch(a Action) State {
	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()

	s.mu.Lock()
	s.state = Reduce(s.state, a)
	next := s.state
	listeners := make([]func(State), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(next)
	}
	return next
}

// Snapshot returns the current state. The turn slice is shared but never
// written to after publication.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Store) History() []dto.HistoryEntry {
	return s.Snapshot().History()
}

func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subscribers[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subscribers, id)
			s.mu.Unlock()
		})
	}
}
