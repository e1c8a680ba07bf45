// Package chat holds the speaker vocabulary shared by the relay and its clients.
package chat

import (
	"fmt"
	"strings"
)

// Role identifies who produced a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"

	// wireRoleBot is the name the browser front end used for assistant turns.
	wireRoleBot = "bot"
)

// ParseRole converts a client-supplied role name into a Role.
// Unknown names are rejected rather than defaulted.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(RoleUser):
		return RoleUser, nil
	case string(RoleAssistant), wireRoleBot:
		return RoleAssistant, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

func (r Role) String() string {
	return string(r)
}
