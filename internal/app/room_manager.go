package app

import (
	"math/rand/v2"
	"slices"
	"strings"
	"sync"

	"github.com/dkeye/bukber/internal/core"
	"github.com/dkeye/bukber/internal/domain"
	"github.com/rs/zerolog/log"
)

const defaultIDAttempts = 32

// RoomManager is the process-wide room registry.
type RoomManager struct {
	mu       sync.RWMutex
	rooms    map[domain.RoomID]*core.Session
	attempts int
	newID    func() domain.RoomID
}

func NewRoomManager(attempts int) *RoomManager {
	if attempts <= 0 {
		attempts = defaultIDAttempts
	}
	return &RoomManager{
		rooms:    make(map[domain.RoomID]*core.Session),
		attempts: attempts,
		newID:    randomRoomID,
	}
}

func randomRoomID() domain.RoomID {
	return domain.NewRoomID(domain.MinRoomID + rand.IntN(domain.MaxRoomID-domain.MinRoomID+1))
}

// Create draws unused ids until one is free, then builds and publishes the
// session in one step. build runs under the registry lock, so nobody can
// reach the room before its creator is inside.
func (m *RoomManager) Create(build func(domain.RoomID) (*core.Session, error)) (*core.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for range m.attempts {
		id := m.newID()
		if _, taken := m.rooms[id]; taken {
			log.Debug().Str("module", "app.rooms").Str("room", string(id)).Msg("room id collision")
			continue
		}
		sess, err := build(id)
		if err != nil {
			return nil, err
		}
		m.rooms[id] = sess
		log.Info().Str("module", "app.rooms").Str("room", string(id)).Int("rooms", len(m.rooms)).Msg("room created")
		return sess, nil
	}
	log.Warn().Str("module", "app.rooms").Int("rooms", len(m.rooms)).Msg("room id space exhausted")
	return nil, domain.ErrRoomsUnavailable
}

func (m *RoomManager) Get(id domain.RoomID) (*core.Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sess, ok := m.rooms[id]
	return sess, ok
}

// RemoveIfEmpty drops the room once its session has closed.
func (m *RoomManager) RemoveIfEmpty(id domain.RoomID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.rooms[id]
	if !ok || !sess.Closed() {
		return false
	}
	delete(m.rooms, id)
	log.Info().Str("module", "app.rooms").Str("room", string(id)).Int("rooms", len(m.rooms)).Msg("room destroyed")
	return true
}

func (m *RoomManager) List() []core.RoomInfo {
	m.mu.RLock()
	sessions := make([]*core.Session, 0, len(m.rooms))
	for _, s := range m.rooms {
		sessions = append(sessions, s)
	}
	m.mu.RUnlock()

	out := make([]core.RoomInfo, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, s.Info())
	}
	slices.SortFunc(out, func(a, b core.RoomInfo) int { return strings.Compare(string(a.RoomID), string(b.RoomID)) })
	return out
}

func (m *RoomManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rooms)
}
