package export

import (
	"context"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/a-h/templ"
)

const reportStyle = `body{font-family:sans-serif;margin:2em;color:#222}` +
	`table{border-collapse:collapse;margin-bottom:1.5em}` +
	`th,td{border:1px solid #ccc;padding:4px 8px;text-align:left}` +
	`th{background:#f3f3f3}`

// HTML returns a standalone document for r, suitable for printing to PDF.
func HTML(r Report) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		e := html.EscapeString

		b.WriteString("<!DOCTYPE html>\n<html lang=\"en\"><head><meta charset=\"utf-8\">")
		fmt.Fprintf(&b, "<title>%s - Babylog Report</title>", e(r.Profile.Name))
		fmt.Fprintf(&b, "<style>%s</style></head><body>", reportStyle)

		fmt.Fprintf(&b, "<h1>%s</h1>", e(r.Profile.Name))
		fmt.Fprintf(&b, "<p class=\"meta\">Born %s &middot; %d days old &middot; generated %s</p>",
			e(r.date(r.Profile.DateOfBirth)), r.Profile.AgeDays(r.GeneratedAt),
			e(r.GeneratedAt.In(r.loc()).Format("2006-01-02 15:04")))

		b.WriteString("<h2>Daily summary</h2><table><thead><tr>")
		for _, h := range []string{"Date", "Feedings", "Volume", "Breast", "Diapers", "Sleep"} {
			fmt.Fprintf(&b, "<th>%s</th>", h)
		}
		b.WriteString("</tr></thead><tbody>")
		for _, d := range r.Daily {
			fmt.Fprintf(&b, "<tr><td>%s</td><td>%d</td><td>%s</td><td>%s</td><td>%d</td><td>%s</td></tr>",
				e(d.Date), d.TotalFeedings, e(r.volume(d.TotalVolumeOz)), FormatMinutes(d.BreastMinutes),
				d.Diapers.Total, FormatMinutes(d.SleepMinutes))
		}
		b.WriteString("</tbody></table>")

		b.WriteString("<h2>Log</h2><table><thead><tr><th>When</th><th>Event</th><th>Detail</th><th>Notes</th></tr></thead><tbody>")
		for _, x := range r.Entries {
			detail := ""
			if x.Duration != nil {
				detail = FormatMinutes(*x.Duration)
			}
			if x.Amount != nil && x.FeedingType != nil && x.FeedingType.IsBottle() {
				detail = r.volume(*x.Amount)
			}
			fmt.Fprintf(&b, "<tr><td>%s %s</td><td>%s</td><td>%s</td><td>%s</td></tr>",
				e(r.date(x.Timestamp)), e(r.clock(x.Timestamp)), e(Describe(x)), e(detail), e(x.Notes))
		}
		b.WriteString("</tbody></table>")

		if len(r.Weights) > 0 {
			b.WriteString("<h2>Weights</h2><table><thead><tr><th>Date</th><th>Weight</th><th>Notes</th></tr></thead><tbody>")
			for _, x := range r.Weights {
				fmt.Fprintf(&b, "<tr><td>%s</td><td>%s</td><td>%s</td></tr>",
					e(r.date(x.Timestamp)), e(r.weight(x.Weight)), e(x.Notes))
			}
			b.WriteString("</tbody></table>")
		}

		b.WriteString("</body></html>\n")
		_, err := io.WriteString(w, b.String())
		return err
	})
}
