package nurbs

import (
	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r3"
)

// Color is a display color with components in [0, 1].
type Color struct {
	R, G, B, A float64
}

// DefaultPatchColor is the display color assigned to newly created patches.
var DefaultPatchColor = Color{R: 0.75, G: 0.75, B: 0.8, A: 1}

// MoveObserver is notified after a control point of a patch has moved.
type MoveObserver func(p *Patch, u, v int, pos r3.Vec)

type subscription struct {
	id int
	fn MoveObserver
}

// Patch is an editable surface with a stable identity and display state. The
// ID is what constraints and groups refer to; it never changes for the
// lifetime of the patch, even when the underlying surface is replaced
// wholesale (as undo of a knot insertion does).
type Patch struct {
	ID       uuid.UUID
	Surface  *Surface
	Color    Color
	Selected bool

	subs    []subscription
	nextSub int
}

// NewPatch wraps a surface in a patch with a fresh identity and the default
// display color.
func NewPatch(s *Surface) *Patch {
	return &Patch{
		ID:      uuid.New(),
		Surface: s,
		Color:   DefaultPatchColor,
	}
}

// Subscribe registers an observer for control-point moves and returns a
// function that removes it again. Observers are invoked synchronously, in
// registration order, after the grid has been written.
func (p *Patch) Subscribe(fn MoveObserver) (unsubscribe func()) {
	id := p.nextSub
	p.nextSub++
	p.subs = append(p.subs, subscription{id: id, fn: fn})
	return func() {
		for i, sub := range p.subs {
			if sub.id == id {
				p.subs = append(p.subs[:i], p.subs[i+1:]...)
				return
			}
		}
	}
}

// ApplyControlPointMove writes a new position for the control point at grid
// position (u, v) and notifies every subscriber. This is the only sanctioned
// mutator for control-point data on a live patch: writing to the surface grid
// directly leaves renderers and the constraint engine out of sync.
func (p *Patch) ApplyControlPointMove(u, v int, pos r3.Vec) {
	p.Surface.SetControlPoint(u, v, pos)
	for _, sub := range p.subs {
		sub.fn(p, u, v, pos)
	}
}
