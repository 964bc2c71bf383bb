package core

import (
	"time"

	"github.com/dkeye/bukber/internal/domain"
)

// Gateway delivers events to live connections.
// Implementations must not block: sessions call it while holding their lock.
type Gateway interface {
	Send(to domain.UserID, ev Event)
	Broadcast(to []domain.UserID, ev Event)
}

// SessionConfig carries the tunables of one room session.
type SessionConfig struct {
	RoundDuration time.Duration
	Now           func() time.Time
}

func (c SessionConfig) withDefaults() SessionConfig {
	if c.RoundDuration <= 0 {
		c.RoundDuration = 10 * time.Minute
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}

// RoomInfo is a read-only listing entry (no votes, no roster).
type RoomInfo struct {
	RoomID    domain.RoomID `json:"roomId"`
	GroupName string        `json:"groupName"`
	Round     domain.Round  `json:"round"`
	UserCount int           `json:"userCount"`
}
