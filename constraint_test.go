package nurbs

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

// attachedPair returns a group holding a default patch and a second patch
// attached to its UMax edge, plus the G0 constraint between them.
func attachedPair(t *testing.T) (*PatchGroup, *Patch, *Patch, *Constraint) {
	t.Helper()
	g := NewPatchGroup("test")
	a := NewPatch(BezierPatch())
	g.Add(a)
	b, err := g.AttachPatch(a.ID, EdgeUMax)
	if err != nil {
		t.Fatal(err)
	}
	if len(g.Constraints()) != 1 {
		t.Fatalf("got %d constraints after attach, want 1", len(g.Constraints()))
	}
	return g, a, b, g.Constraints()[0]
}

func edgeRow(s *Surface, e Edge, depth int) []r3.Vec {
	row := make([]r3.Vec, e.Length(s))
	for k := range row {
		u, v := e.gridIndex(s, depth, k)
		row[k] = s.ControlPoint(u, v)
	}
	return row
}

func TestEdgeOpposite(t *testing.T) {
	diff(t, EdgeUMax, EdgeUMin.Opposite())
	diff(t, EdgeUMin, EdgeUMax.Opposite())
	diff(t, EdgeVMax, EdgeVMin.Opposite())
	diff(t, EdgeVMin, EdgeVMax.Opposite())
}

func TestEnforceG0(t *testing.T) {
	g, a, b, c := attachedPair(t)

	a.ApplyControlPointMove(3, 1, r3.Vec{X: 1.2, Y: 0.8, Z: 0.3})
	a.ApplyControlPointMove(3, 2, r3.Vec{X: 0.9, Y: -0.4, Z: 0.7})
	c.Enforce(g, a.ID)

	diff(t, edgeRow(a.Surface, EdgeUMax, 0), edgeRow(b.Surface, EdgeUMin, 0))
}

func TestEnforceFromEitherSide(t *testing.T) {
	// Moving patch B makes B the source: its boundary wins.
	g, a, b, c := attachedPair(t)

	want := r3.Vec{X: 1, Y: 3, Z: 0.5}
	b.ApplyControlPointMove(0, 1, want)
	c.Enforce(g, b.ID)

	diff(t, edgeRow(b.Surface, EdgeUMin, 0), edgeRow(a.Surface, EdgeUMax, 0))
	diff(t, want, a.Surface.ControlPoint(3, 1))
}

func TestEnforceG1Mirror(t *testing.T) {
	g, a, b, c := attachedPair(t)
	c.Kind = G1

	// Bend the source's inner row so the mirror is non-trivial.
	a.ApplyControlPointMove(2, 1, r3.Vec{X: 0.6, Y: 0.5, Z: 1.0 / 3.0})
	a.ApplyControlPointMove(3, 2, r3.Vec{X: 1.1, Y: -0.2, Z: 2.0 / 3.0})
	c.Enforce(g, a.ID)

	diff(t, edgeRow(a.Surface, EdgeUMax, 0), edgeRow(b.Surface, EdgeUMin, 0))
	for k := 0; k < 4; k++ {
		boundary := a.Surface.ControlPoint(3, k)
		inner := a.Surface.ControlPoint(2, k)
		want := r3.Sub(r3.Scale(2, boundary), inner)
		diff(t, want, b.Surface.ControlPoint(1, k))
	}
}

func TestEnforceMismatchedBoundaryTruncates(t *testing.T) {
	// Refining the destination along the seam makes its boundary one point
	// longer than the source's. Enforcement covers the shared length and
	// leaves the remainder alone; it must not reject or panic.
	g, a, b, c := attachedPair(t)
	b.Surface.InsertKnotV(0.5)
	if b.Surface.CpCountV() != 5 {
		t.Fatalf("CpCountV = %d after insertion, want 5", b.Surface.CpCountV())
	}
	extraBefore := b.Surface.ControlPoint(0, 4)

	a.ApplyControlPointMove(3, 0, r3.Vec{Y: 2})
	c.Enforce(g, a.ID)

	for k := 0; k < 4; k++ {
		diff(t, a.Surface.ControlPoint(3, k), b.Surface.ControlPoint(0, k))
	}
	diff(t, extraBefore, b.Surface.ControlPoint(0, 4))
}

func TestEnforceUnrelatedMoveIsNoop(t *testing.T) {
	g, a, b, c := attachedPair(t)
	other := NewPatch(BezierPatch())
	g.Add(other)

	before := edgeRow(b.Surface, EdgeUMin, 0)
	a.ApplyControlPointMove(3, 1, r3.Vec{Y: 5})
	c.Enforce(g, other.ID)
	diff(t, before, edgeRow(b.Surface, EdgeUMin, 0))
}

func TestEnforceOrphanedConstraintIsNoop(t *testing.T) {
	g, a, b, c := attachedPair(t)
	// Simulate a split that left one endpoint behind.
	g.Remove(b.ID)
	a.ApplyControlPointMove(3, 1, r3.Vec{Y: 5})
	c.Enforce(g, a.ID) // must not panic
}

func TestEnforceNotifiesDestination(t *testing.T) {
	g, a, b, c := attachedPair(t)
	var calls int
	b.Subscribe(func(*Patch, int, int, r3.Vec) { calls++ })

	a.ApplyControlPointMove(3, 1, r3.Vec{Y: 1})
	c.Enforce(g, a.ID)

	// One notification per shared boundary index.
	if calls != 4 {
		t.Errorf("destination notified %d times, want 4", calls)
	}
}
