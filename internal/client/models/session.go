package models

import (
	"github.com/dmitrijs2005/babylog/internal/common"
)

// TimerKind selects one of the two single-instance timers.
type TimerKind string

const (
	TimerKindSleep  TimerKind = common.TimerKindSleep
	TimerKindBreast TimerKind = common.TimerKindBreast
)

func (k TimerKind) Valid() bool {
	return k == TimerKindSleep || k == TimerKindBreast
}

// ActiveSession is the persisted record of a running timer.
type ActiveSession struct {
	ID         string      `json:"id"`
	Kind       TimerKind   `json:"kind"`
	StartTime  int64       `json:"startTime"`
	BreastSide *BreastSide `json:"breastSide,omitempty"`
	IsActive   bool        `json:"isActive"`
	BabyID     string      `json:"babyId,omitempty"`
}

// ElapsedMinutes is floor((nowMs-StartTime)/60000), clamped at zero.
func (s ActiveSession) ElapsedMinutes(nowMs int64) int {
	d := nowMs - s.StartTime
	if d < 0 {
		return 0
	}
	return int(d / 60000)
}

// Complete converts the session into the Entry recorded when it stops.
// The entry is timestamped with the start time.
func (s ActiveSession) Complete(entryID string, nowMs int64) Entry {
	e := Entry{
		ID:        entryID,
		Timestamp: s.StartTime,
		Duration:  Ptr(s.ElapsedMinutes(nowMs)),
		EndTime:   Ptr(nowMs),
		IsActive:  false,
		BabyID:    s.BabyID,
	}
	switch s.Kind {
	case TimerKindBreast:
		e.Type = EntryTypeFeeding
		e.FeedingType = Ptr(FeedingTypeBreast)
		e.Amount = Ptr(0.0)
		if s.BreastSide != nil {
			e.BreastSide = Ptr(*s.BreastSide)
		}
	default:
		e.Type = EntryTypeSleep
	}
	return e
}

// TimerState is either Idle or Running.
type TimerState interface {
	isTimerState()
}

// Idle means no session of the kind exists for the active profile.
type Idle struct{}

// Running carries the active session.
type Running struct {
	Session ActiveSession
}

func (Idle) isTimerState()    {}
func (Running) isTimerState() {}
