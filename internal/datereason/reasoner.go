package datereason

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/solpercival/Thoth/internal/llm"
)

// Intent is the user's goal as classified from the reasoning text.
type Intent string

const (
	IntentCancel  Intent = "cancel"
	IntentView    Intent = "view"
	IntentUnknown Intent = "unknown"
)

// Result is a closed date interval plus the classification of the query.
type Result struct {
	IsShiftQuery bool
	Intent       Intent
	RangeType    string
	Start        time.Time
	End          time.Time
	Rationale    string
}

const systemPromptTemplate = `You are a shift scheduling assistant. Your job is to interpret shift queries and determine what dates the user is interested in.

TASK: Given a user's query about their shifts, output ONLY a JSON object (no other text) with these fields:
{
    "is_shift_query": true/false,
    "date_range_type": "today" | "tomorrow" | "week" | "month" | "specific",
    "start_date": "YYYY-MM-DD",
    "end_date": "YYYY-MM-DD",
    "reasoning": "<CNCL>" if cancellation, "<SHOW>" if viewing shifts, followed by brief explanation
}

DATE INTERPRETATION RULES:
- "When is my shift?" or "What shifts do I have?" -> today + next 7 days
- "Tomorrow" -> get the date today and add one day
- "Next week" -> 7 days from today
- "This week" -> from TODAY until %s
- "Next month" -> entire next calendar month
- Specific date mentioned -> that date only
- Default (no date mentioned) -> today + next 7 days

IMPORTANT: Always use today's date as reference. Output ONLY the JSON object, no explanation.
This Sunday is: %s

Today's date: %s (%s)
`

const maxAttempts = 2

// Reasoner converts a natural-language time phrase into a concrete closed
// date interval. It owns its own chat history, separate from the main
// conversation, and clears it after every call.
type Reasoner struct {
	chat       *llm.Chat
	today      time.Time
	thisSunday time.Time
}

// New builds a Reasoner anchored at the given reference date. A zero today
// means the current local date.
func New(completer llm.Completer, today time.Time) *Reasoner {
	if today.IsZero() {
		today = time.Now()
	}
	today = time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())

	days := (7 - int(today.Weekday())) % 7
	sunday := today.AddDate(0, 0, days)

	prompt := fmt.Sprintf(systemPromptTemplate,
		sunday.Format("02-01-2006"),
		sunday.Format("02-01-2006"),
		today.Format("2006-01-02"),
		today.Weekday().String(),
	)

	return &Reasoner{
		chat:       llm.NewChat(completer, prompt),
		today:      today,
		thisSunday: sunday,
	}
}

// Today returns the reference date the reasoner was anchored at.
func (r *Reasoner) Today() time.Time { return r.today }

// ReasonDates determines the date interval relevant to a shift query.
// Simple keyword phrases are computed directly; everything else goes to
// the model, with one retry and a safe default when both attempts fail.
func (r *Reasoner) ReasonDates(ctx context.Context, userQuery string) Result {
	if res, ok := r.simpleDates(userQuery); ok {
		log.Printf("[reasoner] date calculated directly: %s to %s",
			res.Start.Format("2006-01-02"), res.End.Format("2006-01-02"))
		return res
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		res, err := r.askOnce(ctx, userQuery)
		if err != nil {
			log.Printf("[reasoner] attempt %d/%d failed: %v", attempt, maxAttempts, err)
			r.chat.Clear()
			continue
		}
		r.chat.Clear()
		log.Printf("[reasoner] determined dates: %s to %s",
			res.Start.Format("2006-01-02"), res.End.Format("2006-01-02"))
		return res
	}

	log.Printf("[reasoner] falling back to default dates (next 7 days)")
	return r.defaultDates()
}

type rawDateInfo struct {
	IsShiftQuery  *bool   `json:"is_shift_query"`
	DateRangeType *string `json:"date_range_type"`
	StartDate     *string `json:"start_date"`
	EndDate       *string `json:"end_date"`
	Reasoning     string  `json:"reasoning"`
}

func (r *Reasoner) askOnce(ctx context.Context, userQuery string) (Result, error) {
	reply, err := r.chat.Ask(ctx, userQuery)
	if err != nil {
		return Result{}, err
	}

	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start == -1 || end == -1 || end < start {
		return Result{}, fmt.Errorf("no JSON object in reply")
	}

	var raw rawDateInfo
	if err := json.Unmarshal([]byte(reply[start:end+1]), &raw); err != nil {
		return Result{}, fmt.Errorf("parse JSON: %w", err)
	}
	if raw.IsShiftQuery == nil || raw.DateRangeType == nil || raw.StartDate == nil || raw.EndDate == nil {
		return Result{}, fmt.Errorf("missing required fields")
	}

	startDate, err := parseDate(*raw.StartDate, r.today.Location())
	if err != nil {
		return Result{}, fmt.Errorf("start_date: %w", err)
	}
	endDate, err := parseDate(*raw.EndDate, r.today.Location())
	if err != nil {
		return Result{}, fmt.Errorf("end_date: %w", err)
	}
	if endDate.Before(startDate) {
		return Result{}, fmt.Errorf("end before start: %s > %s", *raw.StartDate, *raw.EndDate)
	}

	rangeType := *raw.DateRangeType
	if (rangeType == "week" || rangeType == "this week") && endDate.After(r.thisSunday) && strings.Contains(strings.ToLower(userQuery), "this week") {
		log.Printf("[reasoner] correcting 'this week' end date from %s to %s",
			endDate.Format("2006-01-02"), r.thisSunday.Format("2006-01-02"))
		endDate = r.thisSunday
	}

	return Result{
		IsShiftQuery: *raw.IsShiftQuery,
		Intent:       classifyIntent(raw.Reasoning, *raw.IsShiftQuery),
		RangeType:    rangeType,
		Start:        startDate,
		End:          endDate,
		Rationale:    raw.Reasoning,
	}, nil
}

func (r *Reasoner) defaultDates() Result {
	return Result{
		IsShiftQuery: false,
		Intent:       IntentUnknown,
		RangeType:    "week",
		Start:        r.today,
		End:          r.today.AddDate(0, 0, 7),
		Rationale:    "default",
	}
}

func classifyIntent(reasoning string, isShiftQuery bool) Intent {
	switch {
	case strings.Contains(reasoning, "<CNCL>"):
		return IntentCancel
	case strings.Contains(reasoning, "<SHOW>"):
		return IntentView
	case isShiftQuery:
		return IntentView
	default:
		return IntentUnknown
	}
}

// parseDate accepts YYYY-MM-DD and the site's DD-MM-YYYY display format.
func parseDate(s string, loc *time.Location) (time.Time, error) {
	parts := strings.Split(s, "-")
	if len(parts) == 3 && len(parts[0]) == 4 {
		return time.ParseInLocation("2006-01-02", s, loc)
	}
	return time.ParseInLocation("02-01-2006", s, loc)
}

// simpleDates computes intervals for bare keyword queries without a model
// round trip. Returns false when the phrase needs real reasoning.
func (r *Reasoner) simpleDates(userQuery string) (Result, bool) {
	q := strings.ToLower(strings.TrimSpace(userQuery))

	single := func(rangeType string, d time.Time, rationale string) (Result, bool) {
		return Result{
			IsShiftQuery: true,
			Intent:       IntentView,
			RangeType:    rangeType,
			Start:        d,
			End:          d,
			Rationale:    rationale,
		}, true
	}

	switch q {
	case "tomorrow", "tmr", "tmrw":
		return single("tomorrow", r.today.AddDate(0, 0, 1), "<SHOW> Query about tomorrow's shift")
	case "today", "tonight":
		return single("today", r.today, "<SHOW> Query about today's shift")
	case "yesterday":
		return single("yesterday", r.today.AddDate(0, 0, -1), "<SHOW> Query about yesterday's shift")
	}

	weekdays := map[string]time.Weekday{
		"monday": time.Monday, "mon": time.Monday,
		"tuesday": time.Tuesday, "tue": time.Tuesday, "tues": time.Tuesday,
		"wednesday": time.Wednesday, "wed": time.Wednesday,
		"thursday": time.Thursday, "thu": time.Thursday, "thur": time.Thursday, "thurs": time.Thursday,
		"friday": time.Friday, "fri": time.Friday,
		"saturday": time.Saturday, "sat": time.Saturday,
		"sunday": time.Sunday, "sun": time.Sunday,
	}
	for name, wd := range weekdays {
		if q == name || q == "next "+name {
			ahead := int(wd) - int(r.today.Weekday())
			if ahead <= 0 {
				ahead += 7
			}
			target := r.today.AddDate(0, 0, ahead)
			return single("specific", target, "<SHOW> Query about "+strings.Title(name)+" shift")
		}
	}

	if strings.Contains(q, "next week") {
		daysUntilNextMonday := (8-int(r.today.Weekday()))%7 + 7
		if daysUntilNextMonday == 7 {
			daysUntilNextMonday = 14
		}
		nextMonday := r.today.AddDate(0, 0, daysUntilNextMonday)
		return Result{
			IsShiftQuery: true,
			Intent:       IntentView,
			RangeType:    "week",
			Start:        nextMonday,
			End:          nextMonday.AddDate(0, 0, 6),
			Rationale:    "<SHOW> Query about next week's shifts",
		}, true
	}

	if strings.Contains(q, "this week") || q == "week" {
		return Result{
			IsShiftQuery: true,
			Intent:       IntentView,
			RangeType:    "week",
			Start:        r.today,
			End:          r.thisSunday,
			Rationale:    "<SHOW> Query about this week's shifts",
		}, true
	}

	return Result{}, false
}
