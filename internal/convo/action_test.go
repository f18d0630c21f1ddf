package convo

import "testing"

func TestParseAction(t *testing.T) {
	cases := []struct {
		name    string
		reply   string
		ok      bool
		kind    ActionKind
		payload string
	}{
		{"plain speech", "Hello, how can I help?", false, 0, ""},
		{"getshifts with query", "<GETSHIFTS>shifts this week", true, ActionGetShifts, "shifts this week"},
		{"getshifts empty payload", "<GETSHIFTS>", true, ActionGetShifts, ""},
		{"getshifts stops at newline", "<GETSHIFTS>tomorrow\nignored trailing text", true, ActionGetShifts, "tomorrow"},
		{"confirm cancel id", "<CONFIRM_CANCEL>sh-42", true, ActionConfirmCancel, "sh-42"},
		{"confirm cancel trims punctuation", "<CONFIRM_CANCEL>sh-42.", true, ActionConfirmCancel, "sh-42"},
		{"confirm cancel first token only", "<CONFIRM_CANCEL>sh-42 please", true, ActionConfirmCancel, "sh-42"},
		{"confirm cancel no token", "<CONFIRM_CANCEL>", true, ActionConfirmCancel, ""},
		{"reason text", "<REASON>I am feeling unwell", true, ActionReason, "I am feeling unwell"},
		{"login", "<LOGIN>", true, ActionLogin, ""},
		{"real person", "<REAL>", true, ActionReal, ""},
		{"deny", "<DENY>", true, ActionDeny, ""},
		{"end", "<END>", true, ActionEnd, ""},
		{"tag mid-sentence", "Sure. <GETSHIFTS>next week", true, ActionGetShifts, "next week"},
		{"priority over position", "<END> something <GETSHIFTS>query", true, ActionGetShifts, "query"},
		{"unknown tag ignored", "<UNKNOWN>hello", false, 0, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			action, ok := ParseAction(tc.reply)
			if ok != tc.ok {
				t.Fatalf("ok = %v, want %v", ok, tc.ok)
			}
			if !ok {
				return
			}
			if action.Kind != tc.kind {
				t.Errorf("kind = %v, want %v", action.Kind, tc.kind)
			}
			if action.Payload != tc.payload {
				t.Errorf("payload = %q, want %q", action.Payload, tc.payload)
			}
		})
	}
}

func TestSanitize(t *testing.T) {
	cases := []struct {
		name  string
		in    string
		want  string
	}{
		{"plain", "Hello there.", "Hello there."},
		{"drops speculative user turn", "Your shift is confirmed.\nUser: thanks\nYou: welcome", "Your shift is confirmed."},
		{"strips leading you prefix", "You: Your shift is confirmed.", "Your shift is confirmed."},
		{"whitespace trimmed", "  okay  ", "okay"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Sanitize(tc.in); got != tc.want {
				t.Fatalf("Sanitize(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
