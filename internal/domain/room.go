package domain

import (
	"fmt"
	"strconv"
)

const DefaultGroupName = "Bukber Championship"

const (
	MinRoomID = 1000
	MaxRoomID = 9999
)

// RoomID is the short numeric code participants type to join.
type RoomID string

func NewRoomID(n int) RoomID {
	return RoomID(strconv.Itoa(n))
}

// Validate reports whether id lies in the 4-digit code space.
func (id RoomID) Validate() error {
	n, err := strconv.Atoi(string(id))
	if err != nil || n < MinRoomID || n > MaxRoomID {
		return fmt.Errorf("%w: bad room id %q", ErrValidation, id)
	}
	return nil
}
