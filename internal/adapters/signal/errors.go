package signal

import (
	"errors"

	"github.com/dkeye/bukber/internal/core"
	"github.com/dkeye/bukber/internal/domain"
	"github.com/rs/zerolog/log"
)

const (
	msgBadPayload       = "Bad request"
	msgRoomNotFound     = "Room not found"
	msgRoomsUnavailable = "No free room codes, try again later"
)

// reply surfaces err to the caller when the client should see it.
// Unauthorized and stale actions are dropped quietly.
func (ctl *SignalWSController) reply(sid domain.UserID, c *WsSignalConn, op string, err error) {
	if err == nil {
		return
	}
	ev := log.Debug()
	var msg string
	switch {
	case errors.Is(err, domain.ErrNotFound):
		msg = msgRoomNotFound
	case errors.Is(err, domain.ErrRoomsUnavailable):
		ev = log.Error()
		msg = msgRoomsUnavailable
	case errors.Is(err, domain.ErrValidation):
		ev = log.Warn()
		msg = err.Error()
	case errors.Is(err, domain.ErrUnauthorized), errors.Is(err, domain.ErrStaleRound), errors.Is(err, domain.ErrRoomClosed):
	default:
		ev = log.Error()
	}
	ev.Err(err).Str("module", "signal").Str("sid", string(sid)).Str("op", op).Msg("request rejected")
	if msg != "" {
		ctl.sendJSON(c, core.ErrorEvent(msg))
	}
}
