package models

// Role tags one side of a conversation turn.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether r is one of the three known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	}
	return false
}

// Message is a single turn in a room's transcript. Messages are values;
// once stored they are never mutated.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// RoomView is the caller-facing projection of a room: its id and
// transcript with system messages filtered out.
type RoomView struct {
	RoomID   int64     `json:"roomId"`
	Messages []Message `json:"messages"`
}
