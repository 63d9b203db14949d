// Package models defines the care-log records persisted by the local data
// layer. JSON field names are the stored layout and must not change.
package models

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/babylog/internal/common"
)

// EntryType is the discriminant of an Entry.
type EntryType string

const (
	EntryTypeFeeding EntryType = "feeding"
	EntryTypeDiaper  EntryType = "diaper"
	EntryTypeSleep   EntryType = "sleep"
)

func (t EntryType) Valid() bool {
	switch t {
	case EntryTypeFeeding, EntryTypeDiaper, EntryTypeSleep:
		return true
	}
	return false
}

type FeedingType string

const (
	FeedingTypeBreast  FeedingType = "breast"
	FeedingTypeFormula FeedingType = "formula"
	FeedingTypePumped  FeedingType = "pumped"
)

func (t FeedingType) Valid() bool {
	switch t {
	case FeedingTypeBreast, FeedingTypeFormula, FeedingTypePumped:
		return true
	}
	return false
}

// IsBottle reports whether the feeding is measured by volume.
func (t FeedingType) IsBottle() bool {
	return t == FeedingTypeFormula || t == FeedingTypePumped
}

type BreastSide string

const (
	BreastSideLeft  BreastSide = "left"
	BreastSideRight BreastSide = "right"
)

func (s BreastSide) Valid() bool {
	return s == BreastSideLeft || s == BreastSideRight
}

type DiaperType string

const (
	DiaperTypeWet   DiaperType = "wet"
	DiaperTypeDirty DiaperType = "dirty"
	DiaperTypeBoth  DiaperType = "both"
)

func (t DiaperType) Valid() bool {
	switch t {
	case DiaperTypeWet, DiaperTypeDirty, DiaperTypeBoth:
		return true
	}
	return false
}

// Entry is a single logged care event. Optional fields are interpreted
// according to Type; Amount is always in fluid ounces.
type Entry struct {
	ID          string       `json:"id"`
	Type        EntryType    `json:"type"`
	Timestamp   int64        `json:"timestamp"`
	FeedingType *FeedingType `json:"feedingType,omitempty"`
	Amount      *float64     `json:"amount,omitempty"`
	BreastSide  *BreastSide  `json:"breastSide,omitempty"`
	DiaperType  *DiaperType  `json:"diaperType,omitempty"`
	Duration    *int         `json:"duration,omitempty"`
	EndTime     *int64       `json:"endTime,omitempty"`
	IsActive    bool         `json:"isActive"`
	BabyID      string       `json:"babyId,omitempty"`
	Notes       string       `json:"notes,omitempty"`
}

// Validate checks that the populated fields match the entry type.
func (e Entry) Validate() error {
	switch e.Type {
	case EntryTypeFeeding:
		if e.FeedingType == nil || !e.FeedingType.Valid() {
			return fmt.Errorf("%w: feeding requires a feeding type", common.ErrInvalidEntry)
		}
		if e.DiaperType != nil {
			return fmt.Errorf("%w: feeding cannot carry a diaper type", common.ErrInvalidEntry)
		}
		if e.Amount != nil && *e.Amount < 0 {
			return fmt.Errorf("%w: negative amount", common.ErrInvalidEntry)
		}
		if *e.FeedingType == FeedingTypeBreast {
			if e.BreastSide == nil || !e.BreastSide.Valid() {
				return fmt.Errorf("%w: breast feeding requires a side", common.ErrInvalidEntry)
			}
		} else {
			if e.Amount == nil {
				return fmt.Errorf("%w: bottle feeding requires an amount", common.ErrInvalidEntry)
			}
			if e.BreastSide != nil {
				return fmt.Errorf("%w: bottle feeding cannot carry a breast side", common.ErrInvalidEntry)
			}
		}
	case EntryTypeDiaper:
		if e.DiaperType == nil || !e.DiaperType.Valid() {
			return fmt.Errorf("%w: diaper requires a diaper type", common.ErrInvalidEntry)
		}
		if e.FeedingType != nil || e.Amount != nil || e.BreastSide != nil || e.Duration != nil {
			return fmt.Errorf("%w: diaper cannot carry feeding or duration fields", common.ErrInvalidEntry)
		}
	case EntryTypeSleep:
		if e.FeedingType != nil || e.Amount != nil || e.BreastSide != nil || e.DiaperType != nil {
			return fmt.Errorf("%w: sleep cannot carry feeding or diaper fields", common.ErrInvalidEntry)
		}
		if !e.IsActive && (e.Duration == nil || e.EndTime == nil) {
			return fmt.Errorf("%w: completed sleep requires duration and end time", common.ErrInvalidEntry)
		}
	default:
		return fmt.Errorf("%w: unknown type %q", common.ErrInvalidEntry, e.Type)
	}

	if e.Duration != nil && *e.Duration < 0 {
		return fmt.Errorf("%w: negative duration", common.ErrInvalidEntry)
	}
	return nil
}

// LocalDate returns the calendar date of the entry in loc as YYYY-MM-DD.
func (e Entry) LocalDate(loc *time.Location) string {
	return time.UnixMilli(e.Timestamp).In(loc).Format(DateLayout)
}

// VisibleTo reports whether the entry belongs to babyID. Entries without an
// owner predate profiles and are visible to everyone.
func (e Entry) VisibleTo(babyID string) bool {
	return e.BabyID == "" || e.BabyID == babyID
}

// EntryPatch is a shallow partial update; nil fields are left untouched.
type EntryPatch struct {
	Timestamp   *int64       `json:"timestamp,omitempty"`
	FeedingType *FeedingType `json:"feedingType,omitempty"`
	Amount      *float64     `json:"amount,omitempty"`
	BreastSide  *BreastSide  `json:"breastSide,omitempty"`
	DiaperType  *DiaperType  `json:"diaperType,omitempty"`
	Duration    *int         `json:"duration,omitempty"`
	EndTime     *int64       `json:"endTime,omitempty"`
	Notes       *string      `json:"notes,omitempty"`
}

// Apply returns e with the non-nil patch fields copied over.
func (p EntryPatch) Apply(e Entry) Entry {
	if p.Timestamp != nil {
		e.Timestamp = *p.Timestamp
	}
	if p.FeedingType != nil {
		e.FeedingType = Ptr(*p.FeedingType)
	}
	if p.Amount != nil {
		e.Amount = Ptr(*p.Amount)
	}
	if p.BreastSide != nil {
		e.BreastSide = Ptr(*p.BreastSide)
	}
	if p.DiaperType != nil {
		e.DiaperType = Ptr(*p.DiaperType)
	}
	if p.Duration != nil {
		e.Duration = Ptr(*p.Duration)
	}
	if p.EndTime != nil {
		e.EndTime = Ptr(*p.EndTime)
	}
	if p.Notes != nil {
		e.Notes = *p.Notes
	}
	return e
}

// IsEmpty reports whether the patch changes nothing.
func (p EntryPatch) IsEmpty() bool {
	return p == EntryPatch{}
}

// Ptr returns a pointer to a copy of v.
func Ptr[T any](v T) *T {
	return &v
}
