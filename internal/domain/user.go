// Package domain contains entity without logic, just meta-data
package domain

import (
	"fmt"
	"strings"
)

const MaxUsernameLen = 36

var (
	ErrUsernameTooLong = fmt.Errorf("%w: username too long", ErrValidation)
	ErrUsernameEmpty   = fmt.Errorf("%w: username empty", ErrValidation)
)

// UserID identifies one live connection. It is minted on connect and
// never reused, so it doubles as the participant identity inside a room.
type UserID string

type User struct {
	ID     UserID `json:"id"`
	Name   string `json:"name"`
	IsHost bool   `json:"isHost"`
}

// NewUser is a tiny helper to avoid ad-hoc struct literals in adapters.
func NewUser(id UserID, name string, host bool) (*User, error) {
	name = strings.TrimSpace(name)
	if len(name) == 0 {
		return nil, ErrUsernameEmpty
	}
	if len(name) > MaxUsernameLen {
		return nil, ErrUsernameTooLong
	}
	return &User{ID: id, Name: name, IsHost: host}, nil
}
