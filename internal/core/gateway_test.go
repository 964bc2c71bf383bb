package core

import (
	"sync"

	"github.com/dkeye/bukber/internal/domain"
)

type delivery struct {
	to []domain.UserID
	ev Event
}

// recordingGateway keeps every Send and Broadcast in call order.
type recordingGateway struct {
	mu         sync.Mutex
	sent       []delivery
	broadcasts []delivery
}

func (g *recordingGateway) Send(to domain.UserID, ev Event) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sent = append(g.sent, delivery{to: []domain.UserID{to}, ev: ev})
}

func (g *recordingGateway) Broadcast(to []domain.UserID, ev Event) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.broadcasts = append(g.broadcasts, delivery{to: append([]domain.UserID{}, to...), ev: ev})
}

func (g *recordingGateway) broadcastCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.broadcasts)
}

func (g *recordingGateway) last() delivery {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.broadcasts[len(g.broadcasts)-1]
}

func (g *recordingGateway) lastState() Snapshot {
	return g.last().ev.Data.(Snapshot)
}

func (g *recordingGateway) reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sent = nil
	g.broadcasts = nil
}
