package orch

import (
	"context"
	"fmt"

	"github.com/dkeye/bukber/internal/core"
	"github.com/dkeye/bukber/internal/domain"
	"github.com/rs/zerolog/log"
)

const msgVenueLookupFailed = "Gagal memuat peta OSM, menggunakan restoran cadangan."

// VenueLookup finds restaurants around an administrative area.
type VenueLookup interface {
	Lookup(ctx context.Context, loc domain.Location) ([]domain.Venue, error)
}

// seedVenues picks the initial venue list for a new room. A location
// triggers one lookup; on failure the client's list is kept, and an empty
// list later falls back to the built-in defaults.
func (o *Orchestrator) seedVenues(ctx context.Context, sid domain.UserID, req CreateRoomRequest) []domain.Venue {
	if req.Location == nil || req.Location.IsZero() || o.Venues == nil {
		return req.Restaurants
	}
	found, err := o.Venues.Lookup(ctx, *req.Location)
	if err != nil || len(found) == 0 {
		log.Error().Err(err).Str("module", "orch.venues").Str("sid", string(sid)).
			Str("city", req.Location.City).Str("district", req.Location.District).Msg("venue lookup failed, using fallback")
		o.Registry.Send(sid, core.ErrorEvent(msgVenueLookupFailed))
		return req.Restaurants
	}
	log.Info().Str("module", "orch.venues").Str("sid", string(sid)).Int("found", len(found)).Msg("venues seeded from lookup")
	o.Registry.Send(sid, core.ErrorEvent(fmt.Sprintf("Menemukan %d Restoran!", len(found))))
	return found
}
