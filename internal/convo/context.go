package convo

import "github.com/solpercival/Thoth/internal/workflow"

// Context is the per-session working memory of the action-tag handlers.
// It is owned by one session and never shared.
type Context struct {
	CurrentShifts  []workflow.Shift
	SelectedShift  *workflow.Shift
	StaffInfo      *workflow.Staff
	IsCancellation bool
}

// Reset clears everything, returning the session to the idle state.
func (c *Context) Reset() {
	c.CurrentShifts = nil
	c.SelectedShift = nil
	c.StaffInfo = nil
	c.IsCancellation = false
}
