package workflow

import (
	"errors"
	"time"

	"github.com/solpercival/Thoth/internal/datereason"
)

var (
	ErrAuthFailed        = errors.New("workflow: authentication failed")
	ErrStaffNotFound     = errors.New("workflow: staff not found")
	ErrNavigationTimeout = errors.New("workflow: navigation timeout")
	ErrSubmissionFailed  = errors.New("workflow: submission failed")
)

// Staff is the identity payload returned by the staff-by-phone lookup.
type Staff struct {
	ID       string
	FullName string
	Team     string
	Email    string
	Mobile   string
	Address  string
	Status   string
}

// Shift is one roster row. Date is zero when the row's date could not be
// parsed; such rows are kept in AllShifts but never pass the range filter.
type Shift struct {
	ID         string
	Type       string
	StaffName  string
	ClientName string
	Date       time.Time
	RawDate    string
	Time       string
	URL        string
}

// Result is the aggregate of one lookup run.
type Result struct {
	Staff          Staff
	Dates          datereason.Result
	AllShifts      []Shift
	FilteredShifts []Shift
}
