package nurbs

import (
	"fmt"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r3"
)

// Edge identifies one of the four boundary curves of a surface. It is a
// derived view onto the control grid, not stored geometry.
type Edge int

const (
	EdgeUMin Edge = iota
	EdgeUMax
	EdgeVMin
	EdgeVMax
)

func (e Edge) String() string {
	switch e {
	case EdgeUMin:
		return "UMin"
	case EdgeUMax:
		return "UMax"
	case EdgeVMin:
		return "VMin"
	case EdgeVMax:
		return "VMax"
	}
	return fmt.Sprintf("Edge(%d)", int(e))
}

// Opposite returns the edge facing e across the surface: UMin↔UMax,
// VMin↔VMax.
func (e Edge) Opposite() Edge {
	switch e {
	case EdgeUMin:
		return EdgeUMax
	case EdgeUMax:
		return EdgeUMin
	case EdgeVMin:
		return EdgeVMax
	case EdgeVMax:
		return EdgeVMin
	}
	panic("nurbs: invalid edge")
}

// Length returns the number of control points along edge e of s.
func (e Edge) Length(s *Surface) int {
	if e == EdgeUMin || e == EdgeUMax {
		return s.CpCountV()
	}
	return s.CpCountU()
}

// gridIndex maps position k along edge e of s to grid indices, depth rows in
// from the boundary. Depth 0 is the boundary row itself, depth 1 the
// adjacent inner row.
func (e Edge) gridIndex(s *Surface, depth, k int) (u, v int) {
	switch e {
	case EdgeUMin:
		return depth, k
	case EdgeUMax:
		return s.CpCountU() - 1 - depth, k
	case EdgeVMin:
		return k, depth
	case EdgeVMax:
		return k, s.CpCountV() - 1 - depth
	}
	panic("nurbs: invalid edge")
}

// Continuity is the kind of geometric continuity a constraint maintains
// across a shared boundary.
type Continuity int

const (
	// G0 keeps the boundary control points of both surfaces coincident.
	G0 Continuity = iota
	// G1 additionally mirrors the inner control rows about the shared
	// boundary, matching tangent direction across it.
	G1
)

func (c Continuity) String() string {
	switch c {
	case G0:
		return "G0"
	case G1:
		return "G1"
	}
	return fmt.Sprintf("Continuity(%d)", int(c))
}

// Constraint ties an edge of one patch to an edge of another and maintains
// the requested continuity between them. Patches are referenced by ID and
// resolved through the owning group at enforcement time, so a constraint can
// never hold a dangling pointer.
//
// When the two edges have different control-point counts, enforcement covers
// the shorter length and leaves the remainder untouched. This keeps mixed
// refinement levels editable at the cost of visually incomplete continuity
// past the shorter edge.
type Constraint struct {
	PatchA uuid.UUID
	EdgeA  Edge
	PatchB uuid.UUID
	EdgeB  Edge
	Kind   Continuity
}

// Touches reports whether the constraint references the given patch.
func (c *Constraint) Touches(id uuid.UUID) bool {
	return c.PatchA == id || c.PatchB == id
}

// Enforce propagates the moved patch's boundary onto the opposite patch of
// the constraint: a G0 pass copies boundary control points across, and for
// G1 constraints a second pass reflects the source's inner row about the
// shared boundary onto the destination's inner row. All destination writes
// go through the patch mutator, so subscribers observe them.
//
// If moved is not part of the constraint, or either patch cannot be resolved
// in g (an orphaned constraint after a split), Enforce does nothing.
func (c *Constraint) Enforce(g *PatchGroup, moved uuid.UUID) {
	if !c.Touches(moved) {
		return
	}
	srcID, srcEdge := c.PatchA, c.EdgeA
	dstID, dstEdge := c.PatchB, c.EdgeB
	if moved == c.PatchB {
		srcID, srcEdge, dstID, dstEdge = dstID, dstEdge, srcID, srcEdge
	}
	src, dst := g.Patch(srcID), g.Patch(dstID)
	if src == nil || dst == nil {
		return
	}

	n := min(srcEdge.Length(src.Surface), dstEdge.Length(dst.Surface))
	for k := 0; k < n; k++ {
		su, sv := srcEdge.gridIndex(src.Surface, 0, k)
		du, dv := dstEdge.gridIndex(dst.Surface, 0, k)
		dst.ApplyControlPointMove(du, dv, src.Surface.ControlPoint(su, sv))
	}
	if c.Kind != G1 {
		return
	}
	for k := 0; k < n; k++ {
		bu, bv := srcEdge.gridIndex(src.Surface, 0, k)
		iu, iv := srcEdge.gridIndex(src.Surface, 1, k)
		boundary := src.Surface.ControlPoint(bu, bv)
		inner := src.Surface.ControlPoint(iu, iv)
		mirror := r3.Sub(r3.Scale(2, boundary), inner)
		du, dv := dstEdge.gridIndex(dst.Surface, 1, k)
		dst.ApplyControlPointMove(du, dv, mirror)
	}
}
