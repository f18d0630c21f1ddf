package workflow

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"
)

const (
	selResultsRows = `tr[role='row']`
	selDateFilter  = `input[name='daterange']`
)

const siteDateLayout = "02-01-2006"

// searchShifts queries the roster grid by staff name, applies the
// server-side date filter and parses the resulting rows.
func (w *Workflow) searchShifts(ctx context.Context, b BrowserSession, staffName string, start, end time.Time) ([]Shift, error) {
	q := url.Values{"keyword": {staffName}}
	searchURL := w.cfg.BaseURL + "/search?" + q.Encode()
	log.Printf("[workflow] searching shifts for %s: %s", staffName, searchURL)

	if err := b.Navigate(ctx, searchURL); err != nil {
		return nil, navErr(err)
	}
	if err := b.WaitVisible(ctx, "table tbody tr"); err != nil {
		return nil, navErr(err)
	}

	filter := fmt.Sprintf("%s to %s", start.Format(siteDateLayout), end.Format(siteDateLayout))
	log.Printf("[workflow] applying date filter: %s", filter)
	if err := b.Fill(ctx, selDateFilter, filter); err != nil {
		return nil, navErr(err)
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(gridSettleDelay):
	}

	rows, err := b.Rows(ctx, selResultsRows)
	if err != nil {
		return nil, navErr(err)
	}

	var shifts []Shift
	for _, row := range rows {
		if len(row.Cells) < 3 {
			continue
		}
		shift := parseShiftRow(row, w.today().Location())
		shifts = append(shifts, shift)
	}
	log.Printf("[workflow] found %d shifts for %s", len(shifts), staffName)
	return shifts, nil
}

// parseShiftRow reads one results row. Column order: Type, Staff Name,
// Client Info ("Client Name on DD-MM-YYYY at HH:MM AM").
func parseShiftRow(row Row, loc *time.Location) Shift {
	shift := Shift{
		Type:      row.Cells[0],
		StaffName: row.Cells[1],
		URL:       row.Href,
	}
	if row.Href != "" {
		parts := strings.Split(row.Href, "/")
		shift.ID = parts[len(parts)-1]
	}

	clientInfo := row.Cells[2]
	if idx := strings.Index(clientInfo, " on "); idx != -1 {
		shift.ClientName = strings.TrimSpace(clientInfo[:idx])
		remainder := clientInfo[idx+4:]
		if at := strings.Index(remainder, " at "); at != -1 {
			shift.RawDate = strings.TrimSpace(remainder[:at])
			shift.Time = strings.TrimSpace(remainder[at+4:])
		} else {
			shift.RawDate = strings.TrimSpace(remainder)
		}
	}
	if shift.RawDate != "" {
		if d, err := time.ParseInLocation(siteDateLayout, shift.RawDate, loc); err == nil {
			shift.Date = d
		}
	}
	return shift
}

// filterByInterval keeps only shifts whose parsed date falls inside the
// closed interval. Rows with no parseable date never pass.
func filterByInterval(shifts []Shift, start, end time.Time) []Shift {
	var out []Shift
	for _, s := range shifts {
		if s.Date.IsZero() {
			continue
		}
		if s.Date.Before(start) || s.Date.After(end) {
			continue
		}
		out = append(out, s)
	}
	return out
}
