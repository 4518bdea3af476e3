package nurbs

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r3"
)

var ErrUnknownPatch = errors.New("patch is not part of this group")

// attachMultiples are the extrapolation factors for the synthesized control
// rows of a newly attached patch: the boundary row itself, then the three
// inner rows pushed outward along the boundary tangent.
var attachMultiples = [...]float64{0, 1, 1.5, 2}

// PatchGroup owns an ordered set of patches and the constraints between
// them. It is the sole authority resolving patch IDs to patches; removing a
// patch cascades to every constraint that references it.
type PatchGroup struct {
	ID   uuid.UUID
	Name string

	patches     []*Patch
	constraints []*Constraint
}

// NewPatchGroup returns an empty named group with a fresh identity.
func NewPatchGroup(name string) *PatchGroup {
	return &PatchGroup{ID: uuid.New(), Name: name}
}

// Add appends a patch to the group.
func (g *PatchGroup) Add(p *Patch) {
	g.patches = append(g.patches, p)
}

// Patch resolves a patch ID, returning nil when the patch is not (or no
// longer) part of the group.
func (g *PatchGroup) Patch(id uuid.UUID) *Patch {
	for _, p := range g.patches {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// Patches returns the group's patches in insertion order. The returned slice
// is the group's own storage and must not be modified.
func (g *PatchGroup) Patches() []*Patch { return g.patches }

// Constraints returns the group's constraints. The returned slice is the
// group's own storage and must not be modified.
func (g *PatchGroup) Constraints() []*Constraint { return g.constraints }

// AddConstraint registers a constraint with the group.
func (g *PatchGroup) AddConstraint(c *Constraint) {
	g.constraints = append(g.constraints, c)
}

// Remove deletes the patch with the given ID from the group and cascades to
// every constraint referencing it. Removing an unknown ID is a no-op.
func (g *PatchGroup) Remove(id uuid.UUID) {
	for i, p := range g.patches {
		if p.ID == id {
			g.patches = append(g.patches[:i], g.patches[i+1:]...)
			break
		}
	}
	kept := g.constraints[:0]
	for _, c := range g.constraints {
		if !c.Touches(id) {
			kept = append(kept, c)
		}
	}
	g.constraints = kept
}

// constraintsTouching returns the constraints referencing the given patch.
func (g *PatchGroup) constraintsTouching(id uuid.UUID) []*Constraint {
	var out []*Constraint
	for _, c := range g.constraints {
		if c.Touches(id) {
			out = append(out, c)
		}
	}
	return out
}

// EnforceConstraints runs a single enforcement pass over every constraint
// touching the moved patch. There is no iteration to a fixed point: in a
// chain of three or more constrained patches, propagating a move all the way
// through requires one call per affected patch.
func (g *PatchGroup) EnforceConstraints(moved uuid.UUID) {
	for _, c := range g.constraints {
		c.Enforce(g, moved)
	}
}

// AttachPatch creates a new default Bézier patch glued to the given edge of
// an existing patch. The new patch's facing boundary row is copied from the
// existing edge, and its remaining rows are extrapolated outward along the
// boundary tangent (boundary − inner row of the existing patch) at growing
// multiples, so the seam starts out free of a visible kink. A G0 constraint
// between the two edges is registered and the new patch is added to the
// group.
func (g *PatchGroup) AttachPatch(existingID uuid.UUID, edge Edge) (*Patch, error) {
	existing := g.Patch(existingID)
	if existing == nil {
		return nil, fmt.Errorf("attach to %v: %w", existingID, ErrUnknownPatch)
	}

	np := NewPatch(BezierPatch())
	facing := edge.Opposite()
	n := min(edge.Length(existing.Surface), facing.Length(np.Surface))
	for k := 0; k < n; k++ {
		bu, bv := edge.gridIndex(existing.Surface, 0, k)
		iu, iv := edge.gridIndex(existing.Surface, 1, k)
		boundary := existing.Surface.ControlPoint(bu, bv)
		tangent := r3.Sub(boundary, existing.Surface.ControlPoint(iu, iv))
		for depth, mult := range attachMultiples {
			nu, nv := facing.gridIndex(np.Surface, depth, k)
			np.Surface.SetControlPoint(nu, nv, r3.Add(boundary, r3.Scale(mult, tangent)))
		}
	}

	g.Add(np)
	g.AddConstraint(&Constraint{
		PatchA: existing.ID,
		EdgeA:  edge,
		PatchB: np.ID,
		EdgeB:  facing,
		Kind:   G0,
	})
	return np, nil
}

// Split moves the given patches into a new group with the given name.
// Constraints whose both endpoints move go with them; constraints with only
// one endpoint in the moved set stay behind in the origin group, orphaned
// rather than silently dropped (their Enforce becomes a no-op until the
// missing patch returns). Unknown IDs are ignored.
func (g *PatchGroup) Split(name string, ids []uuid.UUID) *PatchGroup {
	moved := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		if g.Patch(id) != nil {
			moved[id] = true
		}
	}

	ng := NewPatchGroup(name)
	keptPatches := g.patches[:0]
	for _, p := range g.patches {
		if moved[p.ID] {
			ng.patches = append(ng.patches, p)
		} else {
			keptPatches = append(keptPatches, p)
		}
	}
	g.patches = keptPatches

	keptConstraints := g.constraints[:0]
	for _, c := range g.constraints {
		if moved[c.PatchA] && moved[c.PatchB] {
			ng.constraints = append(ng.constraints, c)
		} else {
			keptConstraints = append(keptConstraints, c)
		}
	}
	g.constraints = keptConstraints
	return ng
}
