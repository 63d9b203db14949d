package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/babylog/internal/common"
)

// BabyProfile is one child being tracked. Weights are in pounds.
type BabyProfile struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	DateOfBirth   int64    `json:"dateOfBirth"`
	BirthWeight   *float64 `json:"birthWeight,omitempty"`
	CurrentWeight *float64 `json:"currentWeight,omitempty"`
	PhotoURI      string   `json:"photoUri,omitempty"`
	CreatedAt     int64    `json:"createdAt"`
	UpdatedAt     int64    `json:"updatedAt"`
}

func (p BabyProfile) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: name is required", common.ErrInvalidProfile)
	}
	if p.DateOfBirth == 0 {
		return fmt.Errorf("%w: date of birth is required", common.ErrInvalidProfile)
	}
	if p.BirthWeight != nil && *p.BirthWeight <= 0 {
		return fmt.Errorf("%w: birth weight must be positive", common.ErrInvalidProfile)
	}
	return nil
}

// AgeDays returns whole days since birth at now, never negative.
func (p BabyProfile) AgeDays(now time.Time) int {
	d := now.Sub(time.UnixMilli(p.DateOfBirth))
	if d < 0 {
		return 0
	}
	return int(d / (24 * time.Hour))
}
