package signal

import (
	"encoding/json"

	"github.com/dkeye/bukber/internal/core"
	"github.com/dkeye/bukber/internal/domain"
	"github.com/rs/zerolog/log"
)

func (ctl *SignalWSController) handleSubmitVote(
	sid domain.UserID,
	conn *WsSignalConn,
	data []byte,
) {
	type votePayload struct {
		RoomID    string          `json:"roomId"`
		Round     string          `json:"round"`
		Selection json.RawMessage `json:"selection"`
	}
	var p votePayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("bad submit_vote payload")
		ctl.sendJSON(conn, core.ErrorEvent(msgBadPayload))
		return
	}
	err := ctl.Orch.SubmitVote(sid, domain.RoomID(p.RoomID), p.Round, p.Selection)
	ctl.reply(sid, conn, "submit_vote", err)
}
