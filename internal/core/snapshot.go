package core

import (
	"slices"

	"github.com/dkeye/bukber/internal/domain"
)

// Snapshot is the complete public view of a room, sent after every mutation.
type Snapshot struct {
	RoomID         domain.RoomID                              `json:"roomId"`
	Round          domain.Round                               `json:"round"`
	GroupName      string                                     `json:"groupName"`
	Users          []domain.User                              `json:"users"`
	TimerEnd       *int64                                     `json:"timerEnd"`
	TopDates       []string                                   `json:"topDates"`
	TopRestaurants []string                                   `json:"topRestaurants"`
	Restaurants    []domain.Venue                             `json:"restaurants"`
	Votes          map[domain.Round]map[domain.UserID]Ballot `json:"votes"`
	Results        *Results                                   `json:"results,omitempty"`
}

// Results are derived from the runoff ledgers on read and never stored.
type Results struct {
	Date       string `json:"date"`
	Restaurant string `json:"restaurant"`
}

func (s *Session) snapshotLocked() Snapshot {
	users := make([]domain.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, *u)
	}
	votes := make(map[domain.Round]map[domain.UserID]Ballot, len(s.votes))
	for r, l := range s.votes {
		votes[r] = l.view()
	}

	snap := Snapshot{
		RoomID:         s.id,
		Round:          s.round,
		GroupName:      s.groupName,
		Users:          users,
		TopDates:       append([]string{}, s.topDates...),
		TopRestaurants: append([]string{}, s.topRestaurants...),
		Restaurants:    append([]domain.Venue{}, s.restaurants...),
		Votes:          votes,
	}
	if s.timerEnd != nil {
		ms := s.timerEnd.UnixMilli()
		snap.TimerEnd = &ms
	}
	if s.round == domain.RoundResults {
		snap.Results = &Results{
			Date:       Winner(s.votes[domain.RoundTwo].Choices()),
			Restaurant: Winner(s.votes[domain.RoundFour].Choices()),
		}
	}
	return snap
}

// VenueIDs lists the ids of the snapshot's venues in order.
func (s Snapshot) VenueIDs() []string {
	ids := make([]string, 0, len(s.Restaurants))
	for _, v := range s.Restaurants {
		ids = append(ids, v.ID)
	}
	return ids
}

// HasUser reports whether id is on the snapshot's roster.
func (s Snapshot) HasUser(id domain.UserID) bool {
	return slices.ContainsFunc(s.Users, func(u domain.User) bool { return u.ID == id })
}
