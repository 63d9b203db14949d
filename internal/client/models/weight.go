package models

import (
	"fmt"

	"github.com/dmitrijs2005/babylog/internal/common"
)

// WeightEntry is a weight measurement in pounds.
type WeightEntry struct {
	ID        string  `json:"id"`
	BabyID    string  `json:"babyId,omitempty"`
	Weight    float64 `json:"weight"`
	Timestamp int64   `json:"timestamp"`
	Notes     string  `json:"notes,omitempty"`
}

func (w WeightEntry) Validate() error {
	if w.Weight <= 0 {
		return fmt.Errorf("%w: weight must be positive", common.ErrInvalidWeight)
	}
	return nil
}
