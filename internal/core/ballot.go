package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dkeye/bukber/internal/domain"
)

// MaxChoices caps a multi-select ballot.
const MaxChoices = 3

// Ballot is one participant's selection for one round. Multi-select rounds
// encode as a JSON array, runoff rounds as a single JSON string.
type Ballot struct {
	Choices []string
	multi   bool
}

func SingleBallot(choice string) Ballot {
	return Ballot{Choices: []string{choice}}
}

func MultiBallot(choices ...string) Ballot {
	return Ballot{Choices: choices, multi: true}
}

// ParseBallot decodes and validates a raw selection for round.
func ParseBallot(round domain.Round, raw json.RawMessage) (Ballot, error) {
	if round.MultiSelect() {
		var choices []string
		if err := json.Unmarshal(raw, &choices); err != nil {
			return Ballot{}, fmt.Errorf("%w: %s expects a list of choices", domain.ErrValidation, round)
		}
		if len(choices) == 0 || len(choices) > MaxChoices {
			return Ballot{}, fmt.Errorf("%w: %s expects 1 to %d choices", domain.ErrValidation, round, MaxChoices)
		}
		uniq := make([]string, 0, len(choices))
		seen := make(map[string]struct{}, len(choices))
		for _, c := range choices {
			c = strings.TrimSpace(c)
			if c == "" {
				return Ballot{}, fmt.Errorf("%w: empty choice", domain.ErrValidation)
			}
			if _, dup := seen[c]; dup {
				continue
			}
			seen[c] = struct{}{}
			uniq = append(uniq, c)
		}
		return MultiBallot(uniq...), nil
	}

	var choice string
	if err := json.Unmarshal(raw, &choice); err != nil {
		return Ballot{}, fmt.Errorf("%w: %s expects a single choice", domain.ErrValidation, round)
	}
	choice = strings.TrimSpace(choice)
	if choice == "" {
		return Ballot{}, fmt.Errorf("%w: empty choice", domain.ErrValidation)
	}
	return SingleBallot(choice), nil
}

func (b Ballot) MarshalJSON() ([]byte, error) {
	if b.multi {
		return json.Marshal(b.Choices)
	}
	if len(b.Choices) == 0 {
		return []byte("null"), nil
	}
	return json.Marshal(b.Choices[0])
}

func (b *Ballot) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var choices []string
		if err := json.Unmarshal(data, &choices); err != nil {
			return err
		}
		*b = MultiBallot(choices...)
		return nil
	}
	var choice string
	if err := json.Unmarshal(data, &choice); err != nil {
		return err
	}
	*b = SingleBallot(choice)
	return nil
}

// Ledger holds at most one ballot per participant for a single round.
// Resubmission replaces the ballot but keeps the participant's original
// position, so aggregation sees ballots in first-submission order.
type Ledger struct {
	order   []domain.UserID
	ballots map[domain.UserID]Ballot
}

func NewLedger() *Ledger {
	return &Ledger{ballots: make(map[domain.UserID]Ballot)}
}

func (l *Ledger) Put(id domain.UserID, b Ballot) {
	if _, ok := l.ballots[id]; !ok {
		l.order = append(l.order, id)
	}
	l.ballots[id] = b
}

func (l *Ledger) Len() int { return len(l.order) }

// Choices returns every ballot's choices in first-submission order.
func (l *Ledger) Choices() [][]string {
	out := make([][]string, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, l.ballots[id].Choices)
	}
	return out
}

func (l *Ledger) view() map[domain.UserID]Ballot {
	out := make(map[domain.UserID]Ballot, len(l.ballots))
	for id, b := range l.ballots {
		out[id] = b
	}
	return out
}
