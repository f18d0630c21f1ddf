package convo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/solpercival/Thoth/internal/workflow"
)

// Chat is the dialogue model for one session.
type Chat interface {
	Ask(ctx context.Context, user string) (string, error)
}

// ShiftService runs the site workflow on behalf of the tag handlers.
type ShiftService interface {
	Lookup(ctx context.Context, callerPhone, utterance string) (workflow.Result, error)
	SubmitCancellation(ctx context.Context, staff workflow.Staff, shift workflow.Shift, reason string) error
}

// AgentTransfer hands the call to a live agent.
type AgentTransfer interface {
	Transfer(ctx context.Context, callID string) error
}

// maxDepth bounds the observation-injection recursion. The longest
// legitimate chain is get -> confirm -> reason -> final speech; anything
// deeper is model runaway and collapses to speech.
const maxDepth = 4

// Core turns one completed utterance into at most one spoken reply by a
// dialogue with the model: the reply is either speech or an action tag
// whose handler injects a SYSTEM observation and recurses.
type Core struct {
	chat        Chat
	shifts      ShiftService
	transfer    AgentTransfer
	callID      string
	callerPhone string

	ctx Context
	end bool
}

func New(chat Chat, shifts ShiftService, transfer AgentTransfer, callID, callerPhone string) *Core {
	return &Core{
		chat:        chat,
		shifts:      shifts,
		transfer:    transfer,
		callID:      callID,
		callerPhone: callerPhone,
	}
}

// Context exposes the working memory, mainly for the owning session and
// its tests.
func (c *Core) Context() *Context { return &c.ctx }

// ResetContext clears the working memory after a failure.
func (c *Core) ResetContext() { c.ctx.Reset() }

// EndRequested reports whether the model asked to wrap up the call.
func (c *Core) EndRequested() bool { return c.end }

// Process handles one utterance and returns the text to synthesize,
// possibly empty.
func (c *Core) Process(ctx context.Context, utterance string) (string, error) {
	return c.process(ctx, utterance, 0)
}

func (c *Core) process(ctx context.Context, input string, depth int) (string, error) {
	if depth > maxDepth {
		log.Printf("[convo] depth %d exceeded, collapsing to speech", depth)
		return Sanitize(input), nil
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	raw, err := c.chat.Ask(ctx, input)
	if err != nil {
		return "", fmt.Errorf("chat: %w", err)
	}

	action, ok := ParseAction(raw)
	if !ok {
		reply := Sanitize(raw)
		if wantsGoodbye(reply) {
			c.end = true
			return endReply, nil
		}
		return reply, nil
	}

	switch action.Kind {
	case ActionGetShifts:
		query := action.Payload
		if query == "" {
			query = input
		}
		return c.handleGetShifts(ctx, query, depth)
	case ActionConfirmCancel:
		return c.handleConfirmCancel(ctx, action.Payload, depth)
	case ActionReason:
		reason := action.Payload
		if reason == "" {
			reason = input
		}
		return c.handleReason(ctx, reason, depth)
	case ActionLogin:
		c.tryTransfer(ctx)
		return loginReply, nil
	case ActionReal:
		c.tryTransfer(ctx)
		return realReply, nil
	case ActionDeny:
		return denyReply, nil
	case ActionEnd:
		c.end = true
		return endReply, nil
	}
	return Sanitize(raw), nil
}

type shiftSummary struct {
	Client  string `json:"client"`
	Date    string `json:"date"`
	Time    string `json:"time"`
	ShiftID string `json:"shift_id"`
}

func (c *Core) handleGetShifts(ctx context.Context, query string, depth int) (string, error) {
	if c.callerPhone == "" {
		return noPhoneReply, nil
	}

	result, err := c.shifts.Lookup(ctx, c.callerPhone, query)
	if err != nil {
		log.Printf("[convo] shift lookup failed: %v", err)
		c.ctx.Reset()
		if errors.Is(err, workflow.ErrStaffNotFound) {
			c.tryTransfer(ctx)
			return staffMissReply, nil
		}
		return lookupFailReply, nil
	}

	shifts := result.FilteredShifts
	c.ctx.IsCancellation = result.Dates.Intent == "cancel"
	c.ctx.CurrentShifts = shifts
	c.ctx.StaffInfo = &result.Staff

	shiftData := "[]"
	if len(shifts) > 0 {
		summaries := make([]shiftSummary, 0, len(shifts))
		for _, s := range shifts {
			summaries = append(summaries, shiftSummary{
				Client:  s.ClientName,
				Date:    s.RawDate,
				Time:    s.Time,
				ShiftID: s.ID,
			})
		}
		data, _ := json.Marshal(summaries)
		shiftData = string(data)
	}

	observation := fmt.Sprintf("SYSTEM: Found %d shift(s): %s", len(shifts), shiftData)
	if c.ctx.IsCancellation {
		observation += " | User wants to CANCEL a shift."
	} else {
		observation += " | User wants to VIEW shift info."
	}
	return c.process(ctx, observation, depth+1)
}

func (c *Core) handleConfirmCancel(ctx context.Context, shiftID string, depth int) (string, error) {
	var selected *workflow.Shift
	for i := range c.ctx.CurrentShifts {
		if c.ctx.CurrentShifts[i].ID == shiftID {
			selected = &c.ctx.CurrentShifts[i]
			break
		}
	}
	if selected == nil && len(c.ctx.CurrentShifts) == 1 {
		selected = &c.ctx.CurrentShifts[0]
	}
	if selected == nil {
		observation := fmt.Sprintf("SYSTEM: Shift id %q not recognized. Ask the user which shift they mean.", shiftID)
		return c.process(ctx, observation, depth+1)
	}

	c.ctx.SelectedShift = selected
	observation := "SYSTEM: User confirmed cancellation. Now ask for the reason."
	return c.process(ctx, observation, depth+1)
}

func (c *Core) handleReason(ctx context.Context, reason string, depth int) (string, error) {
	shift := c.ctx.SelectedShift
	if shift == nil {
		return lostSelectReply, nil
	}
	staff := c.ctx.StaffInfo
	if staff == nil {
		staff = &workflow.Staff{}
	}

	if err := c.shifts.SubmitCancellation(ctx, *staff, *shift, reason); err != nil {
		log.Printf("[convo] cancellation submission failed: %v", err)
		observation := "SYSTEM: Cancellation submission failed. Apologize and suggest trying again."
		return c.process(ctx, observation, depth+1)
	}

	observation := fmt.Sprintf(
		"SYSTEM: Cancellation successful. Shift at %s on %s at %s has been cancelled. Reason: %s. Thank the user and ask if there's anything else.",
		shift.ClientName, shift.RawDate, shift.Time, reason,
	)
	reply, err := c.process(ctx, observation, depth+1)

	c.ctx.SelectedShift = nil
	c.ctx.CurrentShifts = nil
	return reply, err
}

func (c *Core) tryTransfer(ctx context.Context) {
	if c.transfer == nil {
		return
	}
	if err := c.transfer.Transfer(ctx, c.callID); err != nil {
		log.Printf("[convo] live-agent transfer failed: %v", err)
	}
}

func wantsGoodbye(reply string) bool {
	trimmed := strings.TrimRight(strings.ToLower(reply), "!.")
	return strings.Contains(trimmed, "have a great day")
}
