package nurbs

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// commandKind enumerates the closed set of reversible operations. Dispatch
// is an exhaustive switch; adding a kind without handling it panics loudly
// in tests rather than silently doing nothing.
type commandKind int

const (
	kindMove commandKind = iota
	kindMultiMove
	kindInsertKnot
	kindAttachPatch
	kindDeletePatch
	kindSetContinuity
)

// ControlPointMove describes one control-point move inside a (possibly
// batched) move command. Group may be nil when the patch is not under
// constraint management.
type ControlPointMove struct {
	Group    *PatchGroup
	Patch    *Patch
	U, V     int
	From, To r3.Vec
}

// Command is a reversible editing operation. Commands are created through
// the constructor functions below and applied through a [History]; a command
// must not be executed by more than one history.
type Command struct {
	kind commandKind
	desc string

	// skipNext marks a command wrapping an interactive edit that has
	// already mutated geometry; the first execute is then a no-op.
	skipNext bool

	moves []ControlPointMove

	group *PatchGroup
	patch *Patch

	// Knot insertion.
	insertU bool
	knot    float64
	// Full-surface snapshot taken before insertion or continuity change;
	// undo restores it wholesale.
	snapshot *Surface

	// Attach / delete.
	attachTo         *Patch
	attachEdge       Edge
	attached         *Patch
	savedConstraints []*Constraint

	// Continuity change.
	constraint *Constraint
	oldKind    Continuity
	newKind    Continuity
}

// MoveCommand moves a single control point of a patch. If group is non-nil,
// constraints touching the patch are enforced after the move and again after
// undoing it.
func MoveCommand(group *PatchGroup, p *Patch, u, v int, from, to r3.Vec) *Command {
	return &Command{
		kind:  kindMove,
		desc:  "Move control point",
		moves: []ControlPointMove{{Group: group, Patch: p, U: u, V: v, From: from, To: to}},
	}
}

// MultiMoveCommand applies a batch of control-point moves atomically.
// Constraint enforcement runs once per distinct (group, patch) pair in the
// batch, not once per point, so a drag of an entire boundary row propagates
// exactly once per neighbor.
func MultiMoveCommand(moves []ControlPointMove) *Command {
	return &Command{
		kind:  kindMultiMove,
		desc:  fmt.Sprintf("Move %d control points", len(moves)),
		moves: append([]ControlPointMove(nil), moves...),
	}
}

// InsertKnotCommand refines a patch's surface by inserting a knot in the U
// or V direction. The surface is snapshotted on execute; undo restores the
// snapshot instead of algebraically reversing the refinement.
func InsertKnotCommand(p *Patch, insertU bool, t float64) *Command {
	dir := "V"
	if insertU {
		dir = "U"
	}
	return &Command{
		kind:    kindInsertKnot,
		desc:    fmt.Sprintf("Insert %s knot at %g", dir, t),
		patch:   p,
		insertU: insertU,
		knot:    t,
	}
}

// AttachPatchCommand attaches a new patch to an edge of an existing one (see
// [PatchGroup.AttachPatch]). The command remembers the created patch, so undo
// removes exactly that patch and redo restores it with its identity and any
// constraints intact.
func AttachPatchCommand(group *PatchGroup, existing *Patch, edge Edge) *Command {
	return &Command{
		kind:       kindAttachPatch,
		desc:       fmt.Sprintf("Attach patch at %v", edge),
		group:      group,
		attachTo:   existing,
		attachEdge: edge,
	}
}

// DeletePatchCommand removes a patch from its group, cascading to the
// constraints that reference it. Undo restores the patch and those
// constraints.
func DeletePatchCommand(group *PatchGroup, p *Patch) *Command {
	return &Command{
		kind:  kindDeletePatch,
		desc:  "Delete patch",
		group: group,
		patch: p,
	}
}

// SetContinuityCommand switches a constraint between G0 and G1 and enforces
// it. Since a G1 pass can move many inner control points of the destination
// patch, the command snapshots that patch's entire surface on execute; undo
// restores the snapshot and reverts the kind.
func SetContinuityCommand(group *PatchGroup, c *Constraint, kind Continuity) *Command {
	return &Command{
		kind:       kindSetContinuity,
		desc:       fmt.Sprintf("Change continuity to %v", kind),
		group:      group,
		constraint: c,
		oldKind:    c.Kind,
		newKind:    kind,
	}
}

// AlreadyApplied marks cmd as wrapping an edit whose geometry change has
// already happened interactively (a live drag). The command's first execute
// is then a no-op; a later redo behaves as a normal execute.
func AlreadyApplied(cmd *Command) *Command {
	cmd.skipNext = true
	return cmd
}

// Description returns a human-readable label for UI display.
func (c *Command) Description() string { return c.desc }

func (c *Command) execute() {
	if c.skipNext {
		c.skipNext = false
		return
	}
	switch c.kind {
	case kindMove, kindMultiMove:
		for _, m := range c.moves {
			m.Patch.ApplyControlPointMove(m.U, m.V, m.To)
		}
		c.enforceMoved()
	case kindInsertKnot:
		c.snapshot = c.patch.Surface.Clone()
		if c.insertU {
			c.patch.Surface.InsertKnotU(c.knot)
		} else {
			c.patch.Surface.InsertKnotV(c.knot)
		}
	case kindAttachPatch:
		if c.attached == nil {
			attached, err := c.group.AttachPatch(c.attachTo.ID, c.attachEdge)
			if err != nil {
				return
			}
			c.attached = attached
			c.savedConstraints = c.group.constraintsTouching(attached.ID)
			return
		}
		// Redo: restore the remembered patch rather than creating a new
		// one, keeping its identity stable across undo/redo.
		c.group.Add(c.attached)
		for _, con := range c.savedConstraints {
			c.group.AddConstraint(con)
		}
	case kindDeletePatch:
		c.savedConstraints = c.group.constraintsTouching(c.patch.ID)
		c.group.Remove(c.patch.ID)
	case kindSetContinuity:
		dst := c.group.Patch(c.constraint.PatchB)
		if dst != nil {
			c.snapshot = dst.Surface.Clone()
		}
		c.constraint.Kind = c.newKind
		c.constraint.Enforce(c.group, c.constraint.PatchA)
	default:
		panic(fmt.Sprintf("nurbs: unhandled command kind %d", c.kind))
	}
}

func (c *Command) undo() {
	switch c.kind {
	case kindMove, kindMultiMove:
		for i := len(c.moves) - 1; i >= 0; i-- {
			m := c.moves[i]
			m.Patch.ApplyControlPointMove(m.U, m.V, m.From)
		}
		c.enforceMoved()
	case kindInsertKnot:
		c.patch.Surface = c.snapshot
	case kindAttachPatch:
		if c.attached == nil {
			return
		}
		c.savedConstraints = c.group.constraintsTouching(c.attached.ID)
		c.group.Remove(c.attached.ID)
	case kindDeletePatch:
		c.group.Add(c.patch)
		for _, con := range c.savedConstraints {
			c.group.AddConstraint(con)
		}
	case kindSetContinuity:
		c.constraint.Kind = c.oldKind
		if dst := c.group.Patch(c.constraint.PatchB); dst != nil && c.snapshot != nil {
			dst.Surface = c.snapshot
		}
	default:
		panic(fmt.Sprintf("nurbs: unhandled command kind %d", c.kind))
	}
}

// enforceMoved runs constraint enforcement once per distinct (group, patch)
// pair touched by the command's moves.
func (c *Command) enforceMoved() {
	type pair struct {
		g *PatchGroup
		p *Patch
	}
	seen := make(map[pair]bool, len(c.moves))
	for _, m := range c.moves {
		if m.Group == nil {
			continue
		}
		k := pair{m.Group, m.Patch}
		if seen[k] {
			continue
		}
		seen[k] = true
		m.Group.EnforceConstraints(m.Patch.ID)
	}
}

// History is a reversible-command log: a LIFO undo stack and a LIFO redo
// stack. It is the only sanctioned path for persistent mutation of patch
// geometry; interactive drags may mutate directly while in flight but must
// be captured into a command (see [AlreadyApplied]) when they end.
type History struct {
	undo []*Command
	redo []*Command
}

// Execute applies the command and pushes it onto the undo stack. Any pending
// redo history is discarded, matching the usual branching semantics: once a
// new edit lands, the undone future is gone for good.
func (h *History) Execute(cmd *Command) {
	cmd.execute()
	h.undo = append(h.undo, cmd)
	h.redo = h.redo[:0]
}

// Undo reverts the most recent command and moves it onto the redo stack. It
// is a no-op when there is nothing to undo.
func (h *History) Undo() {
	if len(h.undo) == 0 {
		return
	}
	cmd := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	cmd.undo()
	h.redo = append(h.redo, cmd)
}

// Redo re-applies the most recently undone command. It is a no-op when there
// is nothing to redo.
func (h *History) Redo() {
	if len(h.redo) == 0 {
		return
	}
	cmd := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	cmd.execute()
	h.undo = append(h.undo, cmd)
}

// Clear drops both stacks without touching any geometry.
func (h *History) Clear() {
	h.undo = h.undo[:0]
	h.redo = h.redo[:0]
}

// CanUndo reports whether an undo step is available.
func (h *History) CanUndo() bool { return len(h.undo) > 0 }

// CanRedo reports whether a redo step is available.
func (h *History) CanRedo() bool { return len(h.redo) > 0 }

// UndoDescription returns the label of the command Undo would revert, or ""
// when the undo stack is empty.
func (h *History) UndoDescription() string {
	if len(h.undo) == 0 {
		return ""
	}
	return h.undo[len(h.undo)-1].desc
}

// RedoDescription returns the label of the command Redo would re-apply, or
// "" when the redo stack is empty.
func (h *History) RedoDescription() string {
	if len(h.redo) == 0 {
		return ""
	}
	return h.redo[len(h.redo)-1].desc
}
