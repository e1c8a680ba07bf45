package session

// Action is a state transition. Actions are values; applying one never
// mutates the state it is given.
type Action interface {
	apply(s State) State
}

type AppendTurn struct {
	Turn Turn
}

type SetPendingText struct {
	Text string
}

type SetPendingAttachment struct {
	Attachment *Attachment
}

// ClearPending empties both the composer text and the selected attachment.
type ClearPending struct{}

type SetLoading struct {
	Loading bool
}

// SetError shows a banner; an empty Message dismisses it.
type SetError struct {
	Message string
}

type SetConnectivity struct {
	Status Connectivity
}

// Reduce returns the state that results from applying a to s.
func Reduce(s State, a Action) State {
	if a == nil {
		return s
	}
	return a.apply(s)
}

func (a AppendTurn) apply(s State) State {
	turns := make([]Turn, len(s.Turns), len(s.Turns)+1)
	copy(turns, s.Turns)
	s.Turns = append(turns, a.Turn)
	return s
}

func (a SetPendingText) apply(s State) State {
	s.PendingText = a.Text
	return s
}

func (a SetPendingAttachment) apply(s State) State {
	s.PendingAttachment = a.Attachment
	return s
}

func (ClearPending) apply(s State) State {
	s.PendingText = ""
	s.PendingAttachment = nil
	return s
}

func (a SetLoading) apply(s State) State {
	s.Loading = a.Loading
	return s
}

func (a SetError) apply(s State) State {
	s.Error = a.Message
	return s
}

func (a SetConnectivity) apply(s State) State {
	s.Connectivity = a.Status
	return s
}
