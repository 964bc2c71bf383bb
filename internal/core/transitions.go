package core

import (
	"fmt"
	"time"

	"github.com/dkeye/bukber/internal/domain"
	"github.com/rs/zerolog/log"
)

// TopN sizes for the two narrowing rounds.
const (
	topDatesN       = 2
	topRestaurantsN = 2
)

type timerEffect int

const (
	timerRefresh timerEffect = iota
	timerClear
)

// anyRound lets a transition fire from every state.
const anyRound domain.Round = "*"

type transition struct {
	from  domain.Round
	to    domain.Round
	timer timerEffect
	enter func(s *Session, now time.Time)
}

// transitions is the whole state machine except start_round1, which goes
// through StartCountdown and BeginRoundOne because it is deferred.
var transitions = map[domain.Action]transition{
	domain.ActionStartRound2: {from: domain.RoundOne, to: domain.RoundTwo, timer: timerRefresh, enter: (*Session).narrowDates},
	domain.ActionStartRound3: {from: domain.RoundTwo, to: domain.RoundThree, timer: timerRefresh},
	domain.ActionStartRound4: {from: domain.RoundThree, to: domain.RoundFour, timer: timerRefresh, enter: (*Session).narrowRestaurants},
	domain.ActionShowResults: {from: domain.RoundFour, to: domain.RoundResults, timer: timerClear},
	domain.ActionReset:       {from: anyRound, to: domain.RoundLobby, timer: timerClear, enter: (*Session).resetLedgers},
}

// autoAdvance names the action a completed round triggers.
var autoAdvance = map[domain.Round]domain.Action{
	domain.RoundOne:   domain.ActionStartRound2,
	domain.RoundTwo:   domain.ActionStartRound3,
	domain.RoundThree: domain.ActionStartRound4,
	domain.RoundFour:  domain.ActionShowResults,
}

// Apply runs a host-issued transition. A transition whose predecessor is not
// the current round is a no-op reported as ErrStaleRound.
func (s *Session) Apply(id domain.UserID, action domain.Action) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.authorizeLocked(id); err != nil {
		return err
	}
	return s.applyLocked(action)
}

func (s *Session) applyLocked(action domain.Action) error {
	t, ok := transitions[action]
	if !ok {
		return fmt.Errorf("%w: %s is not a direct transition", domain.ErrValidation, action)
	}
	if t.from != anyRound && t.from != s.round {
		return fmt.Errorf("%w: %s needs %s, room is in %s", domain.ErrStaleRound, action, t.from, s.round)
	}

	now := s.cfg.Now()
	if t.enter != nil {
		t.enter(s, now)
	}
	from := s.round
	s.round = t.to
	switch t.timer {
	case timerRefresh:
		end := now.Add(s.cfg.RoundDuration)
		s.timerEnd = &end
	case timerClear:
		s.timerEnd = nil
	}

	log.Info().Str("module", "core.session").Str("room", string(s.id)).Str("from", string(from)).Str("to", string(s.round)).Msg("round transition")
	s.broadcastLocked()
	return nil
}

// StartCountdown arms the deferred start of round 1 and tells the room to
// show its countdown. Only one countdown may be pending at a time.
func (s *Session) StartCountdown(id domain.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.authorizeLocked(id); err != nil {
		return err
	}
	if s.round != domain.RoundLobby || s.countdownPending {
		return fmt.Errorf("%w: countdown from %s", domain.ErrStaleRound, s.round)
	}
	s.countdownPending = true
	s.gw.Broadcast(s.memberIDs(), Event{Type: EventShowCountdown})
	return nil
}

// BeginRoundOne completes a pending countdown. It is a no-op if the room
// closed, was reset, or already left the lobby while the countdown ran.
func (s *Session) BeginRoundOne() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return domain.ErrRoomClosed
	}
	if !s.countdownPending || s.round != domain.RoundLobby {
		return fmt.Errorf("%w: no pending countdown", domain.ErrStaleRound)
	}
	s.countdownPending = false

	end := s.cfg.Now().Add(s.cfg.RoundDuration)
	s.round = domain.RoundOne
	s.timerEnd = &end

	log.Info().Str("module", "core.session").Str("room", string(s.id)).Msg("round 1 started")
	s.broadcastLocked()
	return nil
}

func (s *Session) narrowDates(now time.Time) {
	s.topDates = TopN(s.votes[domain.RoundOne].Choices(), topDatesN)
	if len(s.topDates) == 0 {
		s.topDates = []string{Tomorrow(now)}
	}
}

func (s *Session) narrowRestaurants(time.Time) {
	s.topRestaurants = TopN(s.votes[domain.RoundThree].Choices(), topRestaurantsN)
	if len(s.topRestaurants) == 0 {
		for _, v := range s.restaurants {
			if len(s.topRestaurants) == topRestaurantsN {
				break
			}
			s.topRestaurants = append(s.topRestaurants, v.ID)
		}
	}
}

func (s *Session) resetLedgers(time.Time) {
	s.clearVotes()
	s.countdownPending = false
}

// Tomorrow formats the UTC calendar day after now as YYYY-MM-DD.
func Tomorrow(now time.Time) string {
	return now.UTC().AddDate(0, 0, 1).Format(time.DateOnly)
}
