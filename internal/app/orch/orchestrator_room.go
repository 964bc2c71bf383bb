package orch

import (
	"context"
	"errors"
	"fmt"

	"github.com/dkeye/bukber/internal/core"
	"github.com/dkeye/bukber/internal/domain"
	"github.com/rs/zerolog/log"
)

type CreateRoomRequest struct {
	Name        string
	GroupName   string
	Restaurants []domain.Venue
	Location    *domain.Location
}

// CreateRoom opens a new room with the caller as its host.
func (o *Orchestrator) CreateRoom(ctx context.Context, sid domain.UserID, req CreateRoomRequest) (domain.RoomID, error) {
	if _, err := domain.NewUser(sid, req.Name, true); err != nil {
		return "", err
	}
	if err := domain.ValidateVenues(req.Restaurants); err != nil {
		return "", err
	}
	o.leave(sid)

	venues := o.seedVenues(ctx, sid, req)
	sess, err := o.Rooms.Create(func(id domain.RoomID) (*core.Session, error) {
		s := core.NewSession(id, req.GroupName, venues, o.Registry, o.Config.Session)
		if _, err := s.Join(sid, req.Name); err != nil {
			return nil, err
		}
		return s, nil
	})
	if err != nil {
		return "", err
	}
	o.Registry.UpdateRoom(sid, sess.ID())
	return sess.ID(), nil
}

func (o *Orchestrator) JoinRoom(sid domain.UserID, name string, roomID domain.RoomID) error {
	if _, err := domain.NewUser(sid, name, false); err != nil {
		return err
	}
	sess, ok := o.Rooms.Get(roomID)
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, roomID)
	}
	if current, in := o.Registry.RoomOf(sid); in && current != roomID {
		o.leave(sid)
	}
	if _, err := sess.Join(sid, name); err != nil {
		if errors.Is(err, domain.ErrRoomClosed) {
			return fmt.Errorf("%w: %s", domain.ErrNotFound, roomID)
		}
		return err
	}
	o.Registry.UpdateRoom(sid, roomID)
	return nil
}

// OnDisconnect removes the connection from its room, destroying the room
// when it was the last one there.
func (o *Orchestrator) OnDisconnect(sid domain.UserID) {
	o.leave(sid)
	o.Registry.Unbind(sid)
}

func (o *Orchestrator) leave(sid domain.UserID) {
	roomID, ok := o.Registry.RoomOf(sid)
	if !ok {
		return
	}
	o.Registry.RemoveRoom(sid, roomID)
	sess, ok := o.Rooms.Get(roomID)
	if !ok {
		return
	}
	empty, _ := sess.Leave(sid)
	if !empty {
		return
	}
	o.Countdowns.Cancel(roomID)
	if o.Rooms.RemoveIfEmpty(roomID) {
		log.Info().Str("module", "orch").Str("room", string(roomID)).Str("sid", string(sid)).Msg("last participant left, room destroyed")
	}
}

// RoomSnapshot is the read-only view served over REST.
func (o *Orchestrator) RoomSnapshot(roomID domain.RoomID) (core.Snapshot, error) {
	sess, ok := o.Rooms.Get(roomID)
	if !ok {
		return core.Snapshot{}, fmt.Errorf("%w: %s", domain.ErrNotFound, roomID)
	}
	return sess.Snapshot(), nil
}

func (o *Orchestrator) ListRooms() []core.RoomInfo {
	return o.Rooms.List()
}
