package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DateLayout is the calendar date format used for day filters and reports.
const DateLayout = "2006-01-02"

// NewEntryID builds an id of the form <prefix>_<unixMillis>_<8 hex>.
func NewEntryID(prefix string, now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%s_%d_%s", prefix, now.UnixMilli(), suffix)
}

// NewID returns a random identifier for profiles, weights and sessions.
func NewID() string {
	return uuid.NewString()
}
