package mail

import (
	"context"
	"strings"
	"testing"
)

func TestFormatCancellation(t *testing.T) {
	body := FormatCancellation(Cancellation{
		StaffName:  "Jane Doe",
		StaffID:    "42",
		StaffEmail: "jane@example.com",
		Shifts: []ShiftLine{
			{Client: "Acme Care", Time: "09:00 - 17:00", Date: "07-08-2026"},
		},
		Reason: "feeling unwell",
	})

	want := "Requested cancellation of shift.\n\n" +
		"    STAFF:\n" +
		"        · Name: Jane Doe\n" +
		"        · ID: 42\n" +
		"        · Email: jane@example.com\n" +
		"\n" +
		"    SHIFT(S):\n" +
		"        · Acme Care at 09:00 - 17:00 07-08-2026\n" +
		"\n" +
		"    REASON:\n" +
		"        feeling unwell\n" +
		"\nThis is an auto-generated email. Please do not reply."
	if body != want {
		t.Fatalf("body mismatch:\ngot:\n%s\nwant:\n%s", body, want)
	}
}

func TestFormatCancellationOmitsEmptyReason(t *testing.T) {
	for _, reason := range []string{"", "   ", "\n"} {
		body := FormatCancellation(Cancellation{Reason: reason})
		if strings.Contains(body, "REASON") {
			t.Errorf("reason block present for %q:\n%s", reason, body)
		}
	}
}

func TestFormatCancellationMultipleShifts(t *testing.T) {
	body := FormatCancellation(Cancellation{
		Shifts: []ShiftLine{
			{Client: "Acme Care", Time: "09:00", Date: "07-08-2026"},
			{Client: "Beta House", Time: "14:00", Date: "08-08-2026"},
		},
	})
	if !strings.Contains(body, "Acme Care at 09:00 07-08-2026") ||
		!strings.Contains(body, "Beta House at 14:00 08-08-2026") {
		t.Fatalf("missing shift lines:\n%s", body)
	}
}

func TestSenderRequiresConfiguration(t *testing.T) {
	s := NewSender("smtp.example.com", 587, "", "", "")
	if err := s.Send(context.Background(), "subject", "body"); err == nil {
		t.Fatal("unconfigured sender accepted send")
	}
}
