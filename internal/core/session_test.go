package core

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/dkeye/bukber/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)

func newTestSession(t *testing.T, names ...string) (*Session, *recordingGateway) {
	t.Helper()
	gw := &recordingGateway{}
	s := NewSession("1234", "Bukber Kantor", nil, gw, SessionConfig{
		RoundDuration: 10 * time.Minute,
		Now:           func() time.Time { return fixedNow },
	})
	for _, name := range names {
		_, err := s.Join(domain.UserID(name), name)
		require.NoError(t, err)
	}
	gw.reset()
	return s, gw
}

func startRoundOne(t *testing.T, s *Session, host domain.UserID) {
	t.Helper()
	require.NoError(t, s.StartCountdown(host))
	require.NoError(t, s.BeginRoundOne())
}

func vote(t *testing.T, s *Session, id domain.UserID, round domain.Round, selection any) {
	t.Helper()
	raw, err := json.Marshal(selection)
	require.NoError(t, err)
	require.NoError(t, s.SubmitVote(id, round, raw))
}

func TestSession_JoinAssignsHostOnce(t *testing.T) {
	gw := &recordingGateway{}
	s := NewSession("1234", "", nil, gw, SessionConfig{})

	host, err := s.Join("amir", "Amir")
	require.NoError(t, err)
	assert.True(t, host)

	host, err = s.Join("budi", "Budi")
	require.NoError(t, err)
	assert.False(t, host)

	require.Len(t, gw.sent, 2)
	assert.Equal(t, Event{Type: EventLoginSuccess, Data: LoginSuccess{RoomID: "1234", Name: "Amir", IsHost: true}}, gw.sent[0].ev)
	assert.Equal(t, Event{Type: EventLoginSuccess, Data: LoginSuccess{RoomID: "1234", Name: "Budi", IsHost: false}}, gw.sent[1].ev)

	require.Equal(t, 2, gw.broadcastCount())
	assert.Equal(t, []domain.UserID{"amir"}, gw.broadcasts[0].to)
	assert.Equal(t, []domain.UserID{"amir", "budi"}, gw.broadcasts[1].to)

	snap := gw.lastState()
	assert.Len(t, snap.Users, 2)
	assert.Equal(t, domain.DefaultGroupName, snap.GroupName)
	assert.Equal(t, domain.DefaultVenues(), snap.Restaurants)
	assert.Equal(t, domain.RoundLobby, snap.Round)
	assert.Nil(t, snap.TimerEnd)
}

func TestSession_HostDoesNotTransfer(t *testing.T) {
	s, _ := newTestSession(t, "amir", "budi")

	empty, found := s.Leave("amir")
	assert.True(t, found)
	assert.False(t, empty)

	snap := s.Snapshot()
	require.Len(t, snap.Users, 1)
	assert.False(t, snap.Users[0].IsHost)
	assert.ErrorIs(t, s.Apply("budi", domain.ActionReset), domain.ErrUnauthorized)
}

func TestSession_JoinRejectsEmptyName(t *testing.T) {
	s, gw := newTestSession(t, "amir")

	_, err := s.Join("budi", "   ")
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Zero(t, gw.broadcastCount())
	assert.Empty(t, gw.sent)
}

func TestSession_VotesBelowTotalBroadcastProgress(t *testing.T) {
	s, gw := newTestSession(t, "amir", "budi", "citra")
	startRoundOne(t, s, "amir")
	gw.reset()

	vote(t, s, "amir", domain.RoundOne, []string{"2026-03-20"})
	vote(t, s, "budi", domain.RoundOne, []string{"2026-03-21"})
	vote(t, s, "budi", domain.RoundOne, []string{"2026-03-20"})

	assert.Equal(t, 3, gw.broadcastCount())
	snap := gw.lastState()
	assert.Equal(t, domain.RoundOne, snap.Round)
	assert.Len(t, snap.Votes[domain.RoundOne], 2)
	assert.Equal(t, MultiBallot("2026-03-20"), snap.Votes[domain.RoundOne]["budi"])
}

func TestSession_LastVoteTransitionsExactlyOnce(t *testing.T) {
	s, gw := newTestSession(t, "amir", "budi")
	startRoundOne(t, s, "amir")
	gw.reset()

	vote(t, s, "amir", domain.RoundOne, []string{"2026-03-20", "2026-03-21"})
	vote(t, s, "budi", domain.RoundOne, []string{"2026-03-21", "2026-03-22"})

	require.Equal(t, 2, gw.broadcastCount())
	snap := gw.lastState()
	assert.Equal(t, domain.RoundTwo, snap.Round)
	assert.Equal(t, []string{"2026-03-21", "2026-03-20"}, snap.TopDates)
	require.NotNil(t, snap.TimerEnd)
	assert.Equal(t, fixedNow.Add(10*time.Minute).UnixMilli(), *snap.TimerEnd)

	// A late round-1 ballot after the advance is dropped.
	raw, _ := json.Marshal([]string{"2026-03-25"})
	err := s.SubmitVote("amir", domain.RoundOne, raw)
	assert.ErrorIs(t, err, domain.ErrStaleRound)
	assert.Equal(t, 2, gw.broadcastCount())
	assert.Equal(t, snap.Votes, s.Snapshot().Votes)
}

func TestSession_StaleAndFutureVotesDropped(t *testing.T) {
	s, gw := newTestSession(t, "amir", "budi")
	startRoundOne(t, s, "amir")
	gw.reset()

	for _, r := range []domain.Round{domain.RoundTwo, domain.RoundLobby, domain.RoundResults} {
		err := s.SubmitVote("amir", r, []byte(`"2026-03-20"`))
		assert.ErrorIs(t, err, domain.ErrStaleRound)
	}
	assert.Zero(t, gw.broadcastCount())
	assert.Empty(t, s.Snapshot().Votes[domain.RoundTwo])
}

func TestSession_OutsiderVoteDropped(t *testing.T) {
	s, gw := newTestSession(t, "amir")
	startRoundOne(t, s, "amir")
	gw.reset()

	err := s.SubmitVote("mallory", domain.RoundOne, []byte(`["2026-03-20"]`))
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.Zero(t, gw.broadcastCount())
}

func TestSession_MalformedBallotLeavesLedger(t *testing.T) {
	s, gw := newTestSession(t, "amir", "budi")
	startRoundOne(t, s, "amir")
	gw.reset()

	err := s.SubmitVote("amir", domain.RoundOne, []byte(`"2026-03-20"`))
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Zero(t, gw.broadcastCount())
	assert.Empty(t, s.Snapshot().Votes[domain.RoundOne])
}

func TestSession_RoundTwoFallsBackToTomorrow(t *testing.T) {
	s, _ := newTestSession(t, "amir", "budi")
	startRoundOne(t, s, "amir")

	require.NoError(t, s.Apply("amir", domain.ActionStartRound2))

	snap := s.Snapshot()
	assert.Equal(t, domain.RoundTwo, snap.Round)
	assert.Equal(t, []string{"2026-10-20"}, snap.TopDates)
}

func TestSession_RoundFourFallsBackToFirstVenues(t *testing.T) {
	s, _ := newTestSession(t, "amir", "budi")
	startRoundOne(t, s, "amir")
	require.NoError(t, s.Apply("amir", domain.ActionStartRound2))
	require.NoError(t, s.Apply("amir", domain.ActionStartRound3))
	require.NoError(t, s.Apply("amir", domain.ActionStartRound4))

	snap := s.Snapshot()
	assert.Equal(t, domain.RoundFour, snap.Round)
	assert.Equal(t, []string{"r1", "r2"}, snap.TopRestaurants)
}

func TestSession_FullFlowToResults(t *testing.T) {
	s, gw := newTestSession(t, "amir", "budi")
	startRoundOne(t, s, "amir")

	vote(t, s, "amir", domain.RoundOne, []string{"2026-03-20", "2026-03-21"})
	vote(t, s, "budi", domain.RoundOne, []string{"2026-03-20"})
	assert.Equal(t, domain.RoundTwo, s.Snapshot().Round)

	vote(t, s, "amir", domain.RoundTwo, "2026-03-21")
	vote(t, s, "budi", domain.RoundTwo, "2026-03-21")
	assert.Equal(t, domain.RoundThree, s.Snapshot().Round)

	vote(t, s, "amir", domain.RoundThree, []string{"r3", "r4"})
	vote(t, s, "budi", domain.RoundThree, []string{"r4", "r5"})
	snap := s.Snapshot()
	assert.Equal(t, domain.RoundFour, snap.Round)
	assert.Equal(t, []string{"r4", "r3"}, snap.TopRestaurants)
	assert.Nil(t, snap.Results)

	vote(t, s, "amir", domain.RoundFour, "r3")
	vote(t, s, "budi", domain.RoundFour, "r4")

	snap = gw.lastState()
	assert.Equal(t, domain.RoundResults, snap.Round)
	assert.Nil(t, snap.TimerEnd)
	require.NotNil(t, snap.Results)
	assert.Equal(t, Results{Date: "2026-03-21", Restaurant: "r3"}, *snap.Results)
}

func TestSession_ResultsDefaultToTBD(t *testing.T) {
	s, _ := newTestSession(t, "amir")
	startRoundOne(t, s, "amir")
	for _, a := range []domain.Action{domain.ActionStartRound2, domain.ActionStartRound3, domain.ActionStartRound4, domain.ActionShowResults} {
		require.NoError(t, s.Apply("amir", a))
	}

	snap := s.Snapshot()
	require.NotNil(t, snap.Results)
	assert.Equal(t, Results{Date: NoWinner, Restaurant: NoWinner}, *snap.Results)
}

func TestSession_ManualTransitionOutOfOrderIsNoop(t *testing.T) {
	s, gw := newTestSession(t, "amir", "budi")

	for _, a := range []domain.Action{domain.ActionStartRound2, domain.ActionStartRound3, domain.ActionStartRound4, domain.ActionShowResults} {
		assert.ErrorIs(t, s.Apply("amir", a), domain.ErrStaleRound)
	}
	assert.ErrorIs(t, s.Apply("amir", domain.ActionStartRound1), domain.ErrValidation)
	assert.Zero(t, gw.broadcastCount())
	assert.Equal(t, domain.RoundLobby, s.Snapshot().Round)

	startRoundOne(t, s, "amir")
	require.NoError(t, s.Apply("amir", domain.ActionStartRound2))
	gw.reset()
	assert.ErrorIs(t, s.Apply("amir", domain.ActionStartRound2), domain.ErrStaleRound)
	assert.Zero(t, gw.broadcastCount())
}

func TestSession_NonHostCannotAdminister(t *testing.T) {
	s, gw := newTestSession(t, "amir", "budi")
	before := s.Snapshot()

	assert.ErrorIs(t, s.StartCountdown("budi"), domain.ErrUnauthorized)
	assert.ErrorIs(t, s.Apply("budi", domain.ActionReset), domain.ErrUnauthorized)
	assert.ErrorIs(t, s.UpdateRestaurants("budi", []domain.Venue{{ID: "x", Name: "X"}}), domain.ErrUnauthorized)
	assert.ErrorIs(t, s.Apply("nobody", domain.ActionReset), domain.ErrUnauthorized)

	assert.Zero(t, gw.broadcastCount())
	assert.Equal(t, before, s.Snapshot())
}

func TestSession_ResetFromEveryRound(t *testing.T) {
	advance := []domain.Action{domain.ActionStartRound2, domain.ActionStartRound3, domain.ActionStartRound4, domain.ActionShowResults}

	for steps := 0; steps <= len(advance)+1; steps++ {
		s, gw := newTestSession(t, "amir", "budi")
		if steps > 0 {
			startRoundOne(t, s, "amir")
			vote(t, s, "budi", domain.RoundOne, []string{"2026-03-20"})
		}
		for i := 0; i < steps-1; i++ {
			require.NoError(t, s.Apply("amir", advance[i]))
		}
		gw.reset()

		require.NoError(t, s.Apply("amir", domain.ActionReset))

		assert.Equal(t, 1, gw.broadcastCount())
		snap := gw.lastState()
		assert.Equal(t, domain.RoundLobby, snap.Round)
		assert.Nil(t, snap.TimerEnd)
		assert.Empty(t, snap.TopDates)
		assert.Empty(t, snap.TopRestaurants)
		require.Len(t, snap.Votes, 4)
		for _, r := range domain.VotingRounds {
			assert.Empty(t, snap.Votes[r], "round %s", r)
		}
	}
}

func TestSession_ResetCancelsPendingCountdown(t *testing.T) {
	s, _ := newTestSession(t, "amir")
	require.NoError(t, s.StartCountdown("amir"))
	require.NoError(t, s.Apply("amir", domain.ActionReset))

	assert.ErrorIs(t, s.BeginRoundOne(), domain.ErrStaleRound)
	assert.Equal(t, domain.RoundLobby, s.Snapshot().Round)
}

func TestSession_CountdownOnlyOnce(t *testing.T) {
	s, gw := newTestSession(t, "amir", "budi")

	require.NoError(t, s.StartCountdown("amir"))
	assert.ErrorIs(t, s.StartCountdown("amir"), domain.ErrStaleRound)

	require.Equal(t, 1, gw.broadcastCount())
	assert.Equal(t, Event{Type: EventShowCountdown}, gw.last().ev)
	assert.Equal(t, domain.RoundLobby, s.Snapshot().Round)

	require.NoError(t, s.BeginRoundOne())
	snap := gw.lastState()
	assert.Equal(t, domain.RoundOne, snap.Round)
	require.NotNil(t, snap.TimerEnd)
	assert.ErrorIs(t, s.BeginRoundOne(), domain.ErrStaleRound)
}

func TestSession_UpdateRestaurantsOnlyInLobby(t *testing.T) {
	s, gw := newTestSession(t, "amir", "budi")
	venues := []domain.Venue{{ID: "v1", Name: "Warung A"}, {ID: "v2", Name: "Warung B"}}

	require.NoError(t, s.UpdateRestaurants("amir", venues))
	assert.Equal(t, 1, gw.broadcastCount())
	assert.Equal(t, venues, gw.lastState().Restaurants)

	err := s.UpdateRestaurants("amir", []domain.Venue{{ID: "v1"}, {ID: "v1"}})
	assert.ErrorIs(t, err, domain.ErrValidation)

	startRoundOne(t, s, "amir")
	gw.reset()
	err = s.UpdateRestaurants("amir", []domain.Venue{{ID: "v9", Name: "Late"}})
	assert.ErrorIs(t, err, domain.ErrStaleRound)
	assert.Zero(t, gw.broadcastCount())
	assert.Equal(t, venues, s.Snapshot().Restaurants)
}

func TestSession_DepartureLetsRemainingVotersFinish(t *testing.T) {
	s, gw := newTestSession(t, "amir", "budi", "citra")
	startRoundOne(t, s, "amir")

	vote(t, s, "citra", domain.RoundOne, []string{"2026-03-22"})
	_, found := s.Leave("citra")
	require.True(t, found)
	vote(t, s, "amir", domain.RoundOne, []string{"2026-03-20"})
	assert.Equal(t, domain.RoundTwo, s.Snapshot().Round, "citra's ballot still counts toward done")

	snap := gw.lastState()
	assert.Contains(t, snap.Votes[domain.RoundOne], domain.UserID("citra"))
	assert.False(t, snap.HasUser("citra"))
	assert.Equal(t, []string{"2026-03-22", "2026-03-20"}, snap.TopDates)
}

func TestSession_LastLeaveClosesRoom(t *testing.T) {
	s, gw := newTestSession(t, "amir")
	require.NoError(t, s.StartCountdown("amir"))
	gw.reset()

	empty, found := s.Leave("amir")
	assert.True(t, empty)
	assert.True(t, found)
	assert.True(t, s.Closed())
	assert.Zero(t, gw.broadcastCount())

	_, err := s.Join("budi", "Budi")
	assert.ErrorIs(t, err, domain.ErrRoomClosed)
	assert.ErrorIs(t, s.BeginRoundOne(), domain.ErrRoomClosed)

	_, found = s.Leave("amir")
	assert.False(t, found)
}

func TestSession_SnapshotRoundTrip(t *testing.T) {
	s, gw := newTestSession(t, "amir", "budi", "citra")
	startRoundOne(t, s, "amir")
	vote(t, s, "amir", domain.RoundOne, []string{"2026-03-20", "2026-03-21"})
	vote(t, s, "budi", domain.RoundOne, []string{"2026-03-21"})
	vote(t, s, "citra", domain.RoundOne, []string{"2026-03-23"})
	vote(t, s, "budi", domain.RoundTwo, "2026-03-21")

	sent := gw.lastState()
	raw, err := json.Marshal(StateEvent(sent))
	require.NoError(t, err)

	var decoded struct {
		Type EventType `json:"type"`
		Data Snapshot  `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.Equal(t, EventStateUpdate, decoded.Type)
	assert.Equal(t, sent.Round, decoded.Data.Round)
	assert.Equal(t, sent.Users, decoded.Data.Users)
	assert.Equal(t, sent.Votes, decoded.Data.Votes)
	assert.Equal(t, sent.TopDates, decoded.Data.TopDates)
	assert.Equal(t, sent.TopRestaurants, decoded.Data.TopRestaurants)
	assert.Equal(t, sent.Restaurants, decoded.Data.Restaurants)
	assert.Equal(t, sent, decoded.Data)
	assert.Equal(t, s.Snapshot(), decoded.Data)
}
