package convo

import "strings"

// ActionKind identifies one of the closed set of action tags the model
// may emit.
type ActionKind int

const (
	ActionGetShifts ActionKind = iota
	ActionConfirmCancel
	ActionReason
	ActionLogin
	ActionReal
	ActionDeny
	ActionEnd
)

// Action is one parsed tag plus its payload. GetShifts and Reason carry
// free-form text; ConfirmCancel carries a shift id.
type Action struct {
	Kind    ActionKind
	Payload string
}

// tagPriority is the match order: the first tag present in the reply, in
// this order, wins regardless of position in the text.
var tagPriority = []struct {
	marker string
	kind   ActionKind
}{
	{"<GETSHIFTS>", ActionGetShifts},
	{"<CONFIRM_CANCEL>", ActionConfirmCancel},
	{"<REASON>", ActionReason},
	{"<LOGIN>", ActionLogin},
	{"<REAL>", ActionReal},
	{"<DENY>", ActionDeny},
	{"<END>", ActionEnd},
}

// ParseAction scans a model reply for the first recognized action tag.
// Unknown tags are not matched and fall through to plain speech.
func ParseAction(reply string) (Action, bool) {
	for _, tag := range tagPriority {
		idx := strings.Index(reply, tag.marker)
		if idx == -1 {
			continue
		}
		rest := reply[idx+len(tag.marker):]
		switch tag.kind {
		case ActionGetShifts, ActionReason:
			return Action{Kind: tag.kind, Payload: restOfLine(rest)}, true
		case ActionConfirmCancel:
			return Action{Kind: tag.kind, Payload: firstToken(rest)}, true
		default:
			return Action{Kind: tag.kind}, true
		}
	}
	return Action{}, false
}

func restOfLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx != -1 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}

// firstToken extracts the first whitespace-delimited token, trimming
// trailing sentence punctuation the model tends to append.
func firstToken(s string) string {
	token := strings.TrimSpace(s)
	if fields := strings.Fields(token); len(fields) > 0 {
		token = fields[0]
	} else {
		token = ""
	}
	return strings.TrimRight(token, ".,;:!?")
}

// Sanitize cuts speculative multi-turn narration out of a reply: text
// from the first "User:" on is dropped, a leading "You:" is stripped.
func Sanitize(reply string) string {
	if idx := strings.Index(reply, "User:"); idx != -1 {
		reply = reply[:idx]
	}
	reply = strings.TrimSpace(reply)
	if strings.HasPrefix(reply, "You:") {
		reply = strings.TrimSpace(reply[4:])
	}
	return reply
}
