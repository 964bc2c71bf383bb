package signal

import (
	"encoding/json"

	"github.com/dkeye/bukber/internal/core"
	"github.com/dkeye/bukber/internal/domain"
	"github.com/rs/zerolog/log"
)

func (ctl *SignalWSController) handleUpdateRestaurants(
	sid domain.UserID,
	conn *WsSignalConn,
	data []byte,
) {
	type restaurantsPayload struct {
		RoomID      string         `json:"roomId"`
		Restaurants []domain.Venue `json:"restaurants"`
	}
	var p restaurantsPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("bad admin_update_restaurants payload")
		ctl.sendJSON(conn, core.ErrorEvent(msgBadPayload))
		return
	}
	err := ctl.Orch.UpdateRestaurants(sid, domain.RoomID(p.RoomID), p.Restaurants)
	ctl.reply(sid, conn, "admin_update_restaurants", err)
}

func (ctl *SignalWSController) handleAdminAction(
	sid domain.UserID,
	conn *WsSignalConn,
	data []byte,
) {
	type actionPayload struct {
		RoomID string `json:"roomId"`
		Action string `json:"action"`
	}
	var p actionPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("bad admin_action payload")
		ctl.sendJSON(conn, core.ErrorEvent(msgBadPayload))
		return
	}
	err := ctl.Orch.AdminAction(sid, domain.RoomID(p.RoomID), p.Action)
	ctl.reply(sid, conn, "admin_action", err)
}
