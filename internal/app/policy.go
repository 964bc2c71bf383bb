package app

import (
	"errors"

	"github.com/dkeye/bukber/internal/core"
	"github.com/dkeye/bukber/internal/domain"
)

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	DropFrame
	Disconnect
)

// Policy decides what happens to a connection whose frame could not be queued.
type Policy interface {
	OnBackPressure(sid domain.UserID, err error) BackpressureAction
}

// SimplePolicy disconnects slow consumers. Their disconnect then runs the
// normal leave path, so the room never keeps a member it cannot reach.
type SimplePolicy struct{}

func (SimplePolicy) OnBackPressure(_ domain.UserID, err error) BackpressureAction {
	if errors.Is(err, core.ErrBackpressure) {
		return Disconnect
	}
	return NoAction
}
