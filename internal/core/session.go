package core

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/dkeye/bukber/internal/domain"
	"github.com/rs/zerolog/log"
)

// Session is one room: roster, round, vote ledgers and venue options.
// Every exported method takes the session lock for its whole run, including
// the broadcast it ends with, so two mutations never interleave and each one
// is followed by exactly one snapshot.
type Session struct {
	id  domain.RoomID
	gw  Gateway
	cfg SessionConfig

	mu               sync.Mutex
	closed           bool
	hostAssigned     bool
	countdownPending bool
	round            domain.Round
	groupName        string
	users            []*domain.User
	votes            map[domain.Round]*Ledger
	timerEnd         *time.Time
	topDates         []string
	topRestaurants   []string
	restaurants      []domain.Venue
}

// NewSession builds a lobby. Empty venues fall back to the built-in list.
func NewSession(id domain.RoomID, groupName string, venues []domain.Venue, gw Gateway, cfg SessionConfig) *Session {
	groupName = strings.TrimSpace(groupName)
	if groupName == "" {
		groupName = domain.DefaultGroupName
	}
	if len(venues) == 0 {
		venues = domain.DefaultVenues()
	}
	s := &Session{
		id:          id,
		gw:          gw,
		cfg:         cfg.withDefaults(),
		round:       domain.RoundLobby,
		groupName:   groupName,
		restaurants: slices.Clone(venues),
	}
	s.clearVotes()
	return s
}

func (s *Session) ID() domain.RoomID { return s.id }

// Join adds a participant, acknowledges it privately and broadcasts.
// The first participant a session ever sees becomes its host; the role
// never moves to anyone else.
func (s *Session) Join(id domain.UserID, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false, domain.ErrRoomClosed
	}

	if i := s.indexOf(id); i >= 0 {
		u, err := domain.NewUser(id, name, s.users[i].IsHost)
		if err != nil {
			return false, err
		}
		s.users[i] = u
	} else {
		u, err := domain.NewUser(id, name, !s.hostAssigned)
		if err != nil {
			return false, err
		}
		s.hostAssigned = true
		s.users = append(s.users, u)
	}

	u := s.users[s.indexOf(id)]
	log.Info().Str("module", "core.session").Str("room", string(s.id)).Str("sid", string(id)).Bool("host", u.IsHost).Msg("participant joined")

	s.gw.Send(id, Event{Type: EventLoginSuccess, Data: LoginSuccess{RoomID: s.id, Name: u.Name, IsHost: u.IsHost}})
	s.broadcastLocked()
	return u.IsHost, nil
}

// Leave drops a participant. Its past ballots stay in the ledgers.
// It reports whether the roster is now empty, in which case the session is
// closed and nothing is broadcast.
func (s *Session) Leave(id domain.UserID) (empty bool, found bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if s.closed || i < 0 {
		return s.closed, false
	}
	s.users = slices.Delete(s.users, i, i+1)
	log.Info().Str("module", "core.session").Str("room", string(s.id)).Str("sid", string(id)).Int("left", len(s.users)).Msg("participant left")

	if len(s.users) == 0 {
		s.closed = true
		s.countdownPending = false
		return true, true
	}
	s.broadcastLocked()
	return false, true
}

// SubmitVote records the caller's ballot for the current round. When every
// present participant has a ballot on file the round advances, and the
// transition's broadcast replaces the plain progress broadcast.
func (s *Session) SubmitVote(id domain.UserID, round domain.Round, raw []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return domain.ErrRoomClosed
	}
	if s.indexOf(id) < 0 {
		return fmt.Errorf("%w: %s is not in room %s", domain.ErrUnauthorized, id, s.id)
	}
	if round != s.round || !round.IsVoting() {
		return fmt.Errorf("%w: vote for %s during %s", domain.ErrStaleRound, round, s.round)
	}
	ballot, err := ParseBallot(round, raw)
	if err != nil {
		return err
	}

	ledger := s.votes[round]
	ledger.Put(id, ballot)

	if ledger.Len() >= len(s.users) {
		if next, ok := autoAdvance[round]; ok {
			log.Info().Str("module", "core.session").Str("room", string(s.id)).Str("round", string(round)).Msg("round complete")
			return s.applyLocked(next)
		}
	}
	s.broadcastLocked()
	return nil
}

// UpdateRestaurants replaces the venue list wholesale. Host only, lobby only.
func (s *Session) UpdateRestaurants(id domain.UserID, venues []domain.Venue) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.authorizeLocked(id); err != nil {
		return err
	}
	if s.round != domain.RoundLobby {
		return fmt.Errorf("%w: venues are locked in %s", domain.ErrStaleRound, s.round)
	}
	if err := domain.ValidateVenues(venues); err != nil {
		return err
	}

	s.restaurants = slices.Clone(venues)
	if s.restaurants == nil {
		s.restaurants = []domain.Venue{}
	}
	s.broadcastLocked()
	return nil
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) Info() RoomInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return RoomInfo{RoomID: s.id, GroupName: s.groupName, Round: s.round, UserCount: len(s.users)}
}

// Closed reports whether the session lost its last participant.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Session) authorizeLocked(id domain.UserID) error {
	if s.closed {
		return domain.ErrRoomClosed
	}
	i := s.indexOf(id)
	if i < 0 || !s.users[i].IsHost {
		return fmt.Errorf("%w: %s is not host of %s", domain.ErrUnauthorized, id, s.id)
	}
	return nil
}

func (s *Session) indexOf(id domain.UserID) int {
	return slices.IndexFunc(s.users, func(u *domain.User) bool { return u.ID == id })
}

func (s *Session) memberIDs() []domain.UserID {
	ids := make([]domain.UserID, 0, len(s.users))
	for _, u := range s.users {
		ids = append(ids, u.ID)
	}
	return ids
}

func (s *Session) clearVotes() {
	s.votes = make(map[domain.Round]*Ledger, len(domain.VotingRounds))
	for _, r := range domain.VotingRounds {
		s.votes[r] = NewLedger()
	}
	s.topDates = []string{}
	s.topRestaurants = []string{}
}

func (s *Session) broadcastLocked() {
	s.gw.Broadcast(s.memberIDs(), StateEvent(s.snapshotLocked()))
}
