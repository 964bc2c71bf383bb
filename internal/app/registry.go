package app

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/dkeye/bukber/internal/core"
	"github.com/dkeye/bukber/internal/domain"
	"github.com/rs/zerolog/log"
)

type connEntry struct {
	RoomID domain.RoomID
	Conn   core.SignalConnection
	Cancel context.CancelFunc
}

// Registry tracks live connections and the room each one sits in.
// It is the core.Gateway: frames are encoded once and queued without blocking.
type Registry struct {
	mu     sync.RWMutex
	conns  map[domain.UserID]*connEntry
	policy Policy
}

func NewRegistry(policy Policy) *Registry {
	if policy == nil {
		policy = SimplePolicy{}
	}
	return &Registry{
		conns:  make(map[domain.UserID]*connEntry),
		policy: policy,
	}
}

func (r *Registry) Bind(sid domain.UserID, conn core.SignalConnection, cancel context.CancelFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[sid] = &connEntry{Conn: conn, Cancel: cancel}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("bound connection")
}

func (r *Registry) Unbind(sid domain.UserID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, sid)
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("unbind connection")
}

func (r *Registry) RoomOf(sid domain.UserID) (domain.RoomID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.conns[sid]
	if !ok || entry.RoomID == "" {
		return "", false
	}
	return entry.RoomID, true
}

func (r *Registry) UpdateRoom(sid domain.UserID, room domain.RoomID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.conns[sid]
	if !ok {
		return false
	}
	entry.RoomID = room
	log.Debug().Str("module", "app.registry").Str("sid", string(sid)).Str("room", string(room)).Msg("updated room")
	return true
}

// RemoveRoom clears sid's room association if it still points at room.
func (r *Registry) RemoveRoom(sid domain.UserID, room domain.RoomID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if entry, ok := r.conns[sid]; ok && entry.RoomID == room {
		entry.RoomID = ""
	}
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

func (r *Registry) Send(sid domain.UserID, ev core.Event) {
	frame, ok := encode(ev)
	if !ok {
		return
	}
	r.mu.RLock()
	entry, found := r.conns[sid]
	r.mu.RUnlock()
	if !found {
		log.Debug().Str("module", "app.registry").Str("sid", string(sid)).Str("event", string(ev.Type)).Msg("send to unknown connection")
		return
	}
	if err := entry.Conn.TrySend(frame); err != nil {
		r.onDropped(sid, err)
	}
}

func (r *Registry) Broadcast(to []domain.UserID, ev core.Event) {
	frame, ok := encode(ev)
	if !ok {
		return
	}
	type failure struct {
		sid domain.UserID
		err error
	}
	var dropped []failure
	sent := 0

	r.mu.RLock()
	for _, sid := range to {
		entry, found := r.conns[sid]
		if !found {
			continue
		}
		if err := entry.Conn.TrySend(frame); err != nil {
			dropped = append(dropped, failure{sid: sid, err: err})
			continue
		}
		sent++
	}
	r.mu.RUnlock()

	log.Debug().Str("module", "app.registry").Str("event", string(ev.Type)).Int("sent_to", sent).Int("dropped", len(dropped)).Msg("broadcast result")
	for _, f := range dropped {
		r.onDropped(f.sid, f.err)
	}
}

// Cancel stops the connection's pumps; its disconnect handling follows.
func (r *Registry) Cancel(sid domain.UserID) bool {
	r.mu.RLock()
	e, ok := r.conns[sid]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	if e.Cancel != nil {
		e.Cancel()
	}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("canceled connection")
	return true
}

func (r *Registry) onDropped(sid domain.UserID, err error) {
	switch r.policy.OnBackPressure(sid, err) {
	case Disconnect:
		log.Warn().Err(err).Str("module", "app.registry").Str("sid", string(sid)).Msg("slow consumer, disconnecting")
		r.Cancel(sid)
	case DropFrame, NoAction:
		log.Debug().Err(err).Str("module", "app.registry").Str("sid", string(sid)).Msg("frame dropped")
	}
}

func encode(ev core.Event) (core.Frame, bool) {
	b, err := json.Marshal(ev)
	if err != nil {
		log.Error().Err(err).Str("module", "app.registry").Str("event", string(ev.Type)).Msg("encode event")
		return nil, false
	}
	return b, true
}
