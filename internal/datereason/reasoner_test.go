package datereason

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/solpercival/Thoth/internal/llm"
)

type fakeCompleter struct {
	replies []string
	err     error
	calls   int
}

func (f *fakeCompleter) Complete(ctx context.Context, messages []llm.Message) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	if len(f.replies) == 0 {
		return "", errors.New("completer script exhausted")
	}
	reply := f.replies[0]
	f.replies = f.replies[1:]
	return reply, nil
}

// anchor is a Thursday.
var anchor = time.Date(2026, 8, 6, 0, 0, 0, 0, time.UTC)

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		t.Fatalf("bad test date %q: %v", s, err)
	}
	return d
}

func TestSimpleDatesSkipModel(t *testing.T) {
	cases := []struct {
		query     string
		rangeType string
		start     string
		end       string
	}{
		{"tomorrow", "tomorrow", "2026-08-07", "2026-08-07"},
		{"tmr", "tomorrow", "2026-08-07", "2026-08-07"},
		{"today", "today", "2026-08-06", "2026-08-06"},
		{"tonight", "today", "2026-08-06", "2026-08-06"},
		{"yesterday", "yesterday", "2026-08-05", "2026-08-05"},
		{"friday", "specific", "2026-08-07", "2026-08-07"},
		{"sunday", "specific", "2026-08-09", "2026-08-09"},
		{"thursday", "specific", "2026-08-13", "2026-08-13"},
		{"next monday", "specific", "2026-08-10", "2026-08-10"},
		{"shifts next week", "week", "2026-08-17", "2026-08-23"},
		{"shifts this week", "week", "2026-08-06", "2026-08-09"},
	}
	for _, tc := range cases {
		t.Run(tc.query, func(t *testing.T) {
			completer := &fakeCompleter{}
			r := New(completer, anchor)

			res := r.ReasonDates(context.Background(), tc.query)
			if completer.calls != 0 {
				t.Fatalf("model consulted %d times for keyword query", completer.calls)
			}
			if !res.IsShiftQuery {
				t.Error("keyword query not marked as shift query")
			}
			if res.Intent != IntentView {
				t.Errorf("intent = %q, want view", res.Intent)
			}
			if res.RangeType != tc.rangeType {
				t.Errorf("range type = %q, want %q", res.RangeType, tc.rangeType)
			}
			if !res.Start.Equal(day(t, tc.start)) || !res.End.Equal(day(t, tc.end)) {
				t.Errorf("interval = %s..%s, want %s..%s",
					res.Start.Format("2006-01-02"), res.End.Format("2006-01-02"), tc.start, tc.end)
			}
		})
	}
}

func TestReasonDatesModelPath(t *testing.T) {
	completer := &fakeCompleter{replies: []string{
		`{"is_shift_query": true, "date_range_type": "specific", "start_date": "2026-08-10", "end_date": "2026-08-10", "reasoning": "<CNCL> user wants to cancel Monday"}`,
	}}
	r := New(completer, anchor)

	res := r.ReasonDates(context.Background(), "I need to cancel the one on the tenth")
	if completer.calls != 1 {
		t.Fatalf("calls = %d, want 1", completer.calls)
	}
	if res.Intent != IntentCancel {
		t.Errorf("intent = %q, want cancel", res.Intent)
	}
	if !res.Start.Equal(day(t, "2026-08-10")) || !res.End.Equal(day(t, "2026-08-10")) {
		t.Errorf("interval = %s..%s", res.Start, res.End)
	}
}

func TestReasonDatesAcceptsSiteDateFormat(t *testing.T) {
	completer := &fakeCompleter{replies: []string{
		`{"is_shift_query": true, "date_range_type": "specific", "start_date": "10-08-2026", "end_date": "10-08-2026", "reasoning": "<SHOW> specific day"}`,
	}}
	r := New(completer, anchor)

	res := r.ReasonDates(context.Background(), "the shift on the tenth of august")
	if !res.Start.Equal(day(t, "2026-08-10")) {
		t.Errorf("start = %s, want 2026-08-10", res.Start.Format("2006-01-02"))
	}
	if res.Intent != IntentView {
		t.Errorf("intent = %q, want view", res.Intent)
	}
}

func TestReasonDatesRetriesOnGarbage(t *testing.T) {
	completer := &fakeCompleter{replies: []string{
		"sure, happy to help!",
		`{"is_shift_query": true, "date_range_type": "today", "start_date": "2026-08-06", "end_date": "2026-08-06", "reasoning": "<SHOW> today"}`,
	}}
	r := New(completer, anchor)

	res := r.ReasonDates(context.Background(), "am I working right now or what")
	if completer.calls != 2 {
		t.Fatalf("calls = %d, want 2", completer.calls)
	}
	if !res.Start.Equal(anchor) {
		t.Errorf("start = %s, want anchor", res.Start)
	}
}

func TestReasonDatesFallsBackToDefault(t *testing.T) {
	completer := &fakeCompleter{err: errors.New("model down")}
	r := New(completer, anchor)

	res := r.ReasonDates(context.Background(), "something unintelligible")
	if completer.calls != maxAttempts {
		t.Fatalf("calls = %d, want %d", completer.calls, maxAttempts)
	}
	if res.Intent != IntentUnknown || res.IsShiftQuery {
		t.Errorf("unexpected fallback classification %+v", res)
	}
	if !res.Start.Equal(anchor) || !res.End.Equal(anchor.AddDate(0, 0, 7)) {
		t.Errorf("fallback interval = %s..%s", res.Start, res.End)
	}
}

func TestReasonDatesRejectsInvertedInterval(t *testing.T) {
	completer := &fakeCompleter{replies: []string{
		`{"is_shift_query": true, "date_range_type": "week", "start_date": "2026-08-10", "end_date": "2026-08-01", "reasoning": "<SHOW>"}`,
		`{"is_shift_query": true, "date_range_type": "week", "start_date": "2026-08-10", "end_date": "2026-08-01", "reasoning": "<SHOW>"}`,
	}}
	r := New(completer, anchor)

	res := r.ReasonDates(context.Background(), "some date phrase")
	if res.Rationale != "default" {
		t.Fatalf("expected default fallback, got %+v", res)
	}
}

func TestReasonDatesRejectsMissingFields(t *testing.T) {
	completer := &fakeCompleter{replies: []string{
		`{"is_shift_query": true, "reasoning": "<SHOW>"}`,
		`{"is_shift_query": true, "date_range_type": "today", "start_date": "2026-08-06", "end_date": "2026-08-06", "reasoning": "<SHOW>"}`,
	}}
	r := New(completer, anchor)

	res := r.ReasonDates(context.Background(), "when do I work, roughly speaking")
	if completer.calls != 2 {
		t.Fatalf("calls = %d, want 2", completer.calls)
	}
	if res.RangeType != "today" {
		t.Errorf("range type = %q, want today", res.RangeType)
	}
}

func TestClassifyIntent(t *testing.T) {
	cases := []struct {
		reasoning    string
		isShiftQuery bool
		want         Intent
	}{
		{"<CNCL> wants out", false, IntentCancel},
		{"<SHOW> just asking", false, IntentView},
		{"no marker at all", true, IntentView},
		{"no marker at all", false, IntentUnknown},
	}
	for _, tc := range cases {
		if got := classifyIntent(tc.reasoning, tc.isShiftQuery); got != tc.want {
			t.Errorf("classifyIntent(%q, %v) = %q, want %q", tc.reasoning, tc.isShiftQuery, got, tc.want)
		}
	}
}

func TestNewAnchorsAtMidnight(t *testing.T) {
	late := time.Date(2026, 8, 6, 23, 45, 12, 0, time.UTC)
	r := New(&fakeCompleter{}, late)
	if !r.Today().Equal(anchor) {
		t.Fatalf("today = %s, want %s", r.Today(), anchor)
	}
}
