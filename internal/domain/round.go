package domain

import "fmt"

type Round string

const (
	RoundLobby   Round = "lobby"
	RoundOne     Round = "round1"
	RoundTwo     Round = "round2"
	RoundThree   Round = "round3"
	RoundFour    Round = "round4"
	RoundResults Round = "results"
)

// VotingRounds lists the rounds that own a vote ledger, in play order.
var VotingRounds = []Round{RoundOne, RoundTwo, RoundThree, RoundFour}

func ParseRound(s string) (Round, error) {
	switch r := Round(s); r {
	case RoundLobby, RoundOne, RoundTwo, RoundThree, RoundFour, RoundResults:
		return r, nil
	}
	return "", fmt.Errorf("%w: unknown round %q", ErrValidation, s)
}

func (r Round) IsVoting() bool {
	switch r {
	case RoundOne, RoundTwo, RoundThree, RoundFour:
		return true
	}
	return false
}

// MultiSelect reports whether ballots for r carry several choices.
// Round 1 picks dates and round 3 picks venues; rounds 2 and 4 are runoffs.
func (r Round) MultiSelect() bool {
	return r == RoundOne || r == RoundThree
}

type Action string

const (
	ActionStartRound1 Action = "start_round1"
	ActionStartRound2 Action = "start_round2"
	ActionStartRound3 Action = "start_round3"
	ActionStartRound4 Action = "start_round4"
	ActionShowResults Action = "show_results"
	ActionReset       Action = "reset"
)

func ParseAction(s string) (Action, error) {
	switch a := Action(s); a {
	case ActionStartRound1, ActionStartRound2, ActionStartRound3,
		ActionStartRound4, ActionShowResults, ActionReset:
		return a, nil
	}
	return "", fmt.Errorf("%w: unknown action %q", ErrValidation, s)
}
