package models

import "time"

// Baby is a remote profile. Version is bumped once per accepted push and is
// the high-water mark clients pull from.
type Baby struct {
	ID          string
	Name        string
	DateOfBirth int64
	PhotoKey    string
	Version     int64
	CreatedAt   time.Time
}
