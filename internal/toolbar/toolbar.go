// Package toolbar implements the floating selection toolbar's mode machine.
package toolbar

import (
	"strings"

	"github.com/csheth/notable/internal/geometry"
	"github.com/csheth/notable/internal/selection"
)

// Mode is the toolbar's single active state.
type Mode int

const (
	Hidden Mode = iota
	ActionMenu
	InlineEditPrompt
)

func (m Mode) String() string {
	switch m {
	case ActionMenu:
		return "action-menu"
	case InlineEditPrompt:
		return "inline-edit-prompt"
	default:
		return "hidden"
	}
}

// Action is one of the action-menu entries.
type Action int

const (
	ActionAskAI Action = iota
	ActionEdit
	ActionDiagram
)

// Actions lists the action menu in display order.
var Actions = []Action{ActionAskAI, ActionEdit, ActionDiagram}

func (a Action) String() string {
	switch a {
	case ActionAskAI:
		return "Ask AI"
	case ActionEdit:
		return "Edit"
	case ActionDiagram:
		return "Diagram"
	default:
		return "?"
	}
}

// Intent is a dispatched action for the edit session to carry out.
type Intent struct {
	Action      Action
	Text        string
	Instruction string
}

// Focus tracks where input focus sits relative to the editor.
type Focus int

const (
	FocusEditor Focus = iota
	FocusOverlay
	FocusElsewhere
)

// Controller is the toolbar state machine. It is not safe for concurrent use;
// the TUI drives it from its update loop.
type Controller struct {
	spec      geometry.OverlaySpec
	mode      Mode
	selection selection.Selection
	position  geometry.Position
	container geometry.Size

	instruction string
	focus       Focus
	blurToken   uint64
	blurPending bool
}

// New returns a hidden controller whose overlay has the given size estimate.
func New(spec geometry.OverlaySpec) *Controller {
	return &Controller{spec: spec}
}

// Mode returns the active mode.
func (c *Controller) Mode() Mode {
	return c.mode
}

// Visible reports whether the toolbar is showing.
func (c *Controller) Visible() bool {
	return c.mode != Hidden
}

// Selection returns the selection the toolbar is acting on.
func (c *Controller) Selection() selection.Selection {
	return c.selection
}

// Instruction returns the inline-edit instruction typed so far.
func (c *Controller) Instruction() string {
	return c.instruction
}

// Position returns the clamped overlay position.
func (c *Controller) Position() geometry.Position {
	return c.position
}

// Bounds returns the overlay rectangle, empty while hidden.
func (c *Controller) Bounds() geometry.Rect {
	if c.mode == Hidden {
		return geometry.Rect{}
	}
	return c.position.Bounds(c.spec)
}

// Spec returns the overlay size estimate.
func (c *Controller) Spec() geometry.OverlaySpec {
	return c.spec
}

// Observe applies a normalized selection event.
func (c *Controller) Observe(res selection.Result, container geometry.Size) {
	switch res.Kind {
	case selection.Cleared:
		c.hide()
	case selection.Selected:
		if c.mode == InlineEditPrompt {
			return
		}
		c.selection = res.Selection
		c.container = container
		c.position = geometry.Clamp(res.Selection.Anchor, container, c.spec)
		c.mode = ActionMenu
		c.focus = FocusEditor
		c.blurPending = false
	}
}

// Reposition re-clamps the overlay after the container was resized or scrolled.
func (c *Controller) Reposition(anchor geometry.Point, container geometry.Size) {
	if c.mode == Hidden {
		return
	}
	c.selection.Anchor = anchor
	c.container = container
	c.position = geometry.Clamp(anchor, container, c.spec)
}

// Choose selects an action from the menu. Ask-AI and diagram dispatch
// immediately and hide the toolbar; edit opens the instruction prompt.
func (c *Controller) Choose(a Action) (Intent, bool) {
	if c.mode != ActionMenu {
		return Intent{}, false
	}
	switch a {
	case ActionEdit:
		c.mode = InlineEditPrompt
		c.instruction = ""
		c.focus = FocusOverlay
		c.blurPending = false
		return Intent{}, false
	case ActionAskAI, ActionDiagram:
		intent := Intent{Action: a, Text: c.selection.Text}
		c.hide()
		return intent, true
	default:
		return Intent{}, false
	}
}

// SetInstruction records the prompt text while in InlineEditPrompt.
func (c *Controller) SetInstruction(s string) {
	if c.mode == InlineEditPrompt {
		c.instruction = s
	}
}

// Submit finishes the inline-edit prompt. A blank instruction keeps the prompt open.
func (c *Controller) Submit() (Intent, bool) {
	if c.mode != InlineEditPrompt {
		return Intent{}, false
	}
	instruction := strings.TrimSpace(c.instruction)
	if instruction == "" {
		return Intent{}, false
	}
	intent := Intent{Action: ActionEdit, Text: c.selection.Text, Instruction: instruction}
	c.hide()
	return intent, true
}

// Cancel leaves the prompt without side effects.
func (c *Controller) Cancel() {
	c.hide()
}

// Dismiss hides the toolbar from any mode.
func (c *Controller) Dismiss() {
	c.hide()
}

// FocusOverlay records that input landed on the toolbar itself. A pending
// blur will not hide the toolbar.
func (c *Controller) FocusOverlay() {
	c.focus = FocusOverlay
	c.blurPending = false
}

// FocusEditor records that focus returned to the editor.
func (c *Controller) FocusEditor() {
	c.focus = FocusEditor
	c.blurPending = false
}

// Blur records that the editor lost focus. The caller must deliver the
// returned token back through ResolveBlur on the next tick; hiding is deferred
// so that a click on the overlay can claim focus first.
func (c *Controller) Blur() uint64 {
	c.blurToken++
	c.focus = FocusElsewhere
	c.blurPending = c.mode != Hidden
	return c.blurToken
}

// ResolveBlur hides the toolbar if the blur identified by token is still
// current and focus did not move to the overlay. It reports whether the
// toolbar was hidden.
func (c *Controller) ResolveBlur(token uint64) bool {
	if !c.blurPending || token != c.blurToken {
		return false
	}
	c.blurPending = false
	if c.focus == FocusOverlay {
		return false
	}
	c.hide()
	return true
}

// Focus reports the current focus target.
func (c *Controller) Focus() Focus {
	return c.focus
}

func (c *Controller) hide() {
	c.mode = Hidden
	c.instruction = ""
	c.blurPending = false
	c.selection = selection.Selection{}
}
