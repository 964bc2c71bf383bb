package core

import "github.com/dkeye/bukber/internal/domain"

type EventType string

const (
	EventLoginSuccess  EventType = "login_success"
	EventStateUpdate   EventType = "state_update"
	EventError         EventType = "error"
	EventShowCountdown EventType = "show_countdown"
	EventPong          EventType = "pong"
)

// Event is one outbound message. Data is marshalled as-is.
type Event struct {
	Type EventType `json:"type"`
	Data any       `json:"data,omitempty"`
}

type LoginSuccess struct {
	RoomID domain.RoomID `json:"roomId"`
	Name   string        `json:"name"`
	IsHost bool          `json:"isHost"`
}

type ErrorMessage struct {
	Message string `json:"message"`
}

func ErrorEvent(msg string) Event {
	return Event{Type: EventError, Data: ErrorMessage{Message: msg}}
}

func StateEvent(s Snapshot) Event {
	return Event{Type: EventStateUpdate, Data: s}
}
