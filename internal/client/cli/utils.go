package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/babylog/internal/client/models"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// parseDate parses YYYY-MM-DD; "" and "today" mean today.
func parseDate(s, today string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "today" {
		return today, nil
	}
	if _, err := time.Parse(models.DateLayout, s); err != nil {
		return "", fmt.Errorf("date %q: expected YYYY-MM-DD", s)
	}
	return s, nil
}

// parseWhen resolves a user supplied moment: "" is now, "HH:MM" is that
// time today (yesterday when it would lie in the future), otherwise
// "YYYY-MM-DD HH:MM" or RFC 3339.
func parseWhen(s string, now time.Time, loc *time.Location) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return now.UnixMilli(), nil
	}
	now = now.In(loc)

	if t, err := time.ParseInLocation("15:04", s, loc); err == nil {
		at := time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), 0, 0, loc)
		if at.After(now) {
			at = at.AddDate(0, 0, -1)
		}
		return at.UnixMilli(), nil
	}
	if t, err := time.ParseInLocation("2006-01-02 15:04", s, loc); err == nil {
		return t.UnixMilli(), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UnixMilli(), nil
	}
	return 0, fmt.Errorf("time %q: expected HH:MM, \"YYYY-MM-DD HH:MM\" or RFC 3339", s)
}

// daysBefore returns the date days-1 days before end, so that a run of days
// starting there ends on end.
func daysBefore(end string, days int, loc *time.Location) string {
	t, err := time.ParseInLocation(models.DateLayout, end, loc)
	if err != nil {
		return end
	}
	return t.AddDate(0, 0, 1-days).Format(models.DateLayout)
}

func clockTime(ms int64, loc *time.Location) string {
	return time.UnixMilli(ms).In(loc).Format("15:04")
}

func dateOf(ms int64, loc *time.Location) string {
	return time.UnixMilli(ms).In(loc).Format(models.DateLayout)
}
