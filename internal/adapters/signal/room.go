package signal

import (
	"context"
	"encoding/json"

	"github.com/dkeye/bukber/internal/app/orch"
	"github.com/dkeye/bukber/internal/core"
	"github.com/dkeye/bukber/internal/domain"
	"github.com/rs/zerolog/log"
)

func (ctl *SignalWSController) handleCreateRoom(
	ctx context.Context,
	sid domain.UserID,
	conn *WsSignalConn,
	data []byte,
) {
	type createPayload struct {
		Name         string           `json:"name"`
		GroupName    string           `json:"groupName"`
		Restaurants  []domain.Venue   `json:"restaurants"`
		LocationData *domain.Location `json:"locationData"`
	}
	var p createPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("bad create_room payload")
		ctl.sendJSON(conn, core.ErrorEvent(msgBadPayload))
		return
	}

	roomID, err := ctl.Orch.CreateRoom(ctx, sid, orch.CreateRoomRequest{
		Name:        p.Name,
		GroupName:   p.GroupName,
		Restaurants: p.Restaurants,
		Location:    p.LocationData,
	})
	if err != nil {
		ctl.reply(sid, conn, "create_room", err)
		return
	}
	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("room", string(roomID)).Msg("create_room")
}

func (ctl *SignalWSController) handleJoinRoom(
	sid domain.UserID,
	conn *WsSignalConn,
	data []byte,
) {
	type joinPayload struct {
		Name   string `json:"name"`
		RoomID string `json:"roomId"`
	}
	var p joinPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("bad join_room payload")
		ctl.sendJSON(conn, core.ErrorEvent(msgBadPayload))
		return
	}

	if err := ctl.Orch.JoinRoom(sid, p.Name, domain.RoomID(p.RoomID)); err != nil {
		ctl.reply(sid, conn, "join_room", err)
		return
	}
	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("room", p.RoomID).Msg("join_room")
}
