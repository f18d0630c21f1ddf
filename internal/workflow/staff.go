package workflow

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"
)

const (
	staffPagePath     = "/staff/4"
	selStaffSearch    = `input[type='search'].form-control`
	selStaffTableRows = `table#task-table tbody tr`
)

// DataTables filters asynchronously; the grid needs a beat to re-render.
const gridSettleDelay = 3 * time.Second

var nameTitles = map[string]bool{
	"Ms.": true, "Ms": true, "Mr.": true, "Mr": true, "Dr.": true, "Dr": true,
	"Prof.": true, "Prof": true, "Sir": true, "Dame": true, "Mrs.": true, "Mrs": true,
	"Miss.": true, "Miss": true, "Rev.": true, "Rev": true, "Fr.": true, "Fr": true,
	"Reverend": true, "Father": true, "Mx.": true, "Mx": true,
}

// StripTitle removes a leading courtesy title from a full name.
func StripTitle(fullName string) string {
	parts := strings.Fields(fullName)
	if len(parts) > 1 && nameTitles[parts[0]] {
		return strings.Join(parts[1:], " ")
	}
	return fullName
}

// NormalizePhone strips formatting and maps a leading 0 to the 61 country
// prefix so differently formatted Australian numbers compare equal.
func NormalizePhone(phone string) string {
	r := strings.NewReplacer("+", "", "-", "", " ", "")
	normalized := r.Replace(phone)
	if strings.HasPrefix(normalized, "0") {
		normalized = "61" + normalized[1:]
	}
	return normalized
}

// PhonesMatch reports whether two phone numbers are the same once
// normalized.
func PhonesMatch(a, b string) bool {
	return NormalizePhone(a) == NormalizePhone(b)
}

// lookupStaffByPhone searches the staff grid by phone and reads the first
// matching row. Column order: checkbox, ID, Full Name, Team, Email,
// Mobile, Address, Status.
func (w *Workflow) lookupStaffByPhone(ctx context.Context, b BrowserSession, phone string) (Staff, error) {
	log.Printf("[workflow] looking up staff by phone: %s", phone)
	if err := b.Navigate(ctx, w.cfg.BaseURL+staffPagePath); err != nil {
		return Staff{}, navErr(err)
	}
	url, err := b.CurrentURL(ctx)
	if err != nil {
		return Staff{}, navErr(err)
	}
	if onLoginPage(url) {
		return Staff{}, fmt.Errorf("%w: redirected to login during staff lookup", ErrAuthFailed)
	}

	if err := b.Fill(ctx, selStaffSearch, phone); err != nil {
		return Staff{}, navErr(err)
	}
	select {
	case <-ctx.Done():
		return Staff{}, ctx.Err()
	case <-time.After(gridSettleDelay):
	}

	rows, err := b.Rows(ctx, selStaffTableRows)
	if err != nil {
		return Staff{}, navErr(err)
	}
	if len(rows) == 0 {
		return Staff{}, fmt.Errorf("%w: no rows for phone %s", ErrStaffNotFound, phone)
	}
	cells := rows[0].Cells
	if len(cells) < 8 {
		return Staff{}, fmt.Errorf("%w: unexpected staff table structure (%d columns)", ErrStaffNotFound, len(cells))
	}

	staff := Staff{
		ID:       cells[1],
		FullName: StripTitle(cells[2]),
		Team:     cells[3],
		Email:    cells[4],
		Mobile:   cells[5],
		Address:  cells[6],
		Status:   cells[7],
	}
	if staff.Mobile != "" && !PhonesMatch(staff.Mobile, phone) {
		return Staff{}, fmt.Errorf("%w: first row mobile %s does not match %s", ErrStaffNotFound, staff.Mobile, phone)
	}
	log.Printf("[workflow] found staff: %s (ID: %s)", staff.FullName, staff.ID)
	return staff, nil
}
