package mail

import (
	"fmt"
	"strings"
)

// ShiftLine is one shift entry of a cancellation notification.
type ShiftLine struct {
	Client string
	Time   string
	Date   string
}

// Cancellation carries the fields of a cancellation notification email.
type Cancellation struct {
	StaffName  string
	StaffID    string
	StaffEmail string
	Shifts     []ShiftLine
	Reason     string
}

// FormatCancellation renders the plaintext notification body. The REASON
// block is omitted entirely when no reason was supplied.
func FormatCancellation(c Cancellation) string {
	var b strings.Builder

	b.WriteString("Requested cancellation of shift.\n\n")

	b.WriteString("    STAFF:\n")
	fmt.Fprintf(&b, "        · Name: %s\n", c.StaffName)
	fmt.Fprintf(&b, "        · ID: %s\n", c.StaffID)
	fmt.Fprintf(&b, "        · Email: %s\n", c.StaffEmail)
	b.WriteString("\n")

	b.WriteString("    SHIFT(S):\n")
	for _, s := range c.Shifts {
		fmt.Fprintf(&b, "        · %s at %s %s\n", s.Client, s.Time, s.Date)
	}

	if strings.TrimSpace(c.Reason) != "" {
		b.WriteString("\n")
		b.WriteString("    REASON:\n")
		fmt.Fprintf(&b, "        %s\n", c.Reason)
	}

	b.WriteString("\nThis is an auto-generated email. Please do not reply.")
	return b.String()
}
