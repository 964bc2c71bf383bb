package orch

import (
	"fmt"
	"time"

	"github.com/dkeye/bukber/internal/app"
	"github.com/dkeye/bukber/internal/core"
	"github.com/dkeye/bukber/internal/domain"
	"github.com/rs/zerolog/log"
)

const defaultCountdownDelay = 4 * time.Second

type Config struct {
	Session        core.SessionConfig
	CountdownDelay time.Duration
}

// Orchestrator turns inbound participant events into room operations.
type Orchestrator struct {
	Registry   *app.Registry
	Rooms      *app.RoomManager
	Countdowns *app.Scheduler[domain.RoomID]
	Venues     VenueLookup
	Config     Config
}

func New(reg *app.Registry, rooms *app.RoomManager, venues VenueLookup, cfg Config) *Orchestrator {
	if cfg.CountdownDelay <= 0 {
		cfg.CountdownDelay = defaultCountdownDelay
	}
	return &Orchestrator{
		Registry:   reg,
		Rooms:      rooms,
		Countdowns: app.NewScheduler[domain.RoomID](),
		Venues:     venues,
		Config:     cfg,
	}
}

func (o *Orchestrator) session(id domain.RoomID) (*core.Session, error) {
	sess, ok := o.Rooms.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrRoomClosed, id)
	}
	return sess, nil
}

func (o *Orchestrator) SubmitVote(sid domain.UserID, roomID domain.RoomID, round string, selection []byte) error {
	sess, err := o.session(roomID)
	if err != nil {
		return err
	}
	// An unknown round never matches the current one, so it drops as stale.
	return sess.SubmitVote(sid, domain.Round(round), selection)
}

func (o *Orchestrator) UpdateRestaurants(sid domain.UserID, roomID domain.RoomID, venues []domain.Venue) error {
	sess, err := o.session(roomID)
	if err != nil {
		return err
	}
	return sess.UpdateRestaurants(sid, venues)
}

// AdminAction runs a host command. start_round1 only arms the countdown;
// round 1 begins once CountdownDelay has passed and the room still exists.
func (o *Orchestrator) AdminAction(sid domain.UserID, roomID domain.RoomID, action string) error {
	sess, err := o.session(roomID)
	if err != nil {
		return err
	}
	a, err := domain.ParseAction(action)
	if err != nil {
		return err
	}

	switch a {
	case domain.ActionStartRound1:
		if err := sess.StartCountdown(sid); err != nil {
			return err
		}
		o.Countdowns.Schedule(roomID, o.Config.CountdownDelay, func() { o.beginRoundOne(roomID) })
		log.Info().Str("module", "orch").Str("room", string(roomID)).Dur("delay", o.Config.CountdownDelay).Msg("countdown armed")
		return nil
	case domain.ActionReset:
		if err := sess.Apply(sid, a); err != nil {
			return err
		}
		o.Countdowns.Cancel(roomID)
		return nil
	default:
		return sess.Apply(sid, a)
	}
}

// beginRoundOne looks the room up again: it may have been destroyed, or
// replaced by a new room with the same code, while the countdown ran.
func (o *Orchestrator) beginRoundOne(roomID domain.RoomID) {
	sess, ok := o.Rooms.Get(roomID)
	if !ok {
		log.Debug().Str("module", "orch").Str("room", string(roomID)).Msg("countdown fired for a destroyed room")
		return
	}
	if err := sess.BeginRoundOne(); err != nil {
		log.Debug().Err(err).Str("module", "orch").Str("room", string(roomID)).Msg("countdown dropped")
	}
}

// Shutdown stops pending countdowns.
func (o *Orchestrator) Shutdown() {
	o.Countdowns.StopAll()
}
