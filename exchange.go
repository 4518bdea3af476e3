package nurbs

import (
	"encoding/json"
	"errors"
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// CoincidenceTolerance is the world-space distance within which two boundary
// control points are considered coincident when inferring continuity between
// patches on decode.
const CoincidenceTolerance = 1e-4

var ErrBadRecord = errors.New("malformed surface record")

// surfaceRecord is the interchange form of a surface: knot vectors in the
// reduced cpCount+degree−1 form (the repeated clamp values at both ends are
// omitted), and control points premultiplied by their weight, stored as
// [wx, wy, wz, w] in row-major grid order.
type surfaceRecord struct {
	DegreeU  int          `json:"degree_u"`
	DegreeV  int          `json:"degree_v"`
	CpCountU int          `json:"cp_count_u"`
	CpCountV int          `json:"cp_count_v"`
	KnotsU   []float64    `json:"knots_u"`
	KnotsV   []float64    `json:"knots_v"`
	Points   [][4]float64 `json:"points"`
}

// groupRecord is the interchange form of a patch group. Constraints are not
// persisted; they are re-inferred from coincident boundaries on decode.
type groupRecord struct {
	Name     string          `json:"name"`
	Surfaces []surfaceRecord `json:"surfaces"`
}

// reduceKnots drops the first and last knot of the fully clamped form. The
// values are redundant (each end value appears degree+1 times) and the
// interchange format omits one repetition per end.
func reduceKnots(kv KnotVector) []float64 {
	return append([]float64(nil), kv[1:len(kv)-1]...)
}

// expandKnots restores the fully clamped form by repeating the first and
// last value of the reduced form once more at each end.
func expandKnots(reduced []float64) KnotVector {
	if len(reduced) == 0 {
		return nil
	}
	kv := make(KnotVector, 0, len(reduced)+2)
	kv = append(kv, reduced[0])
	kv = append(kv, reduced...)
	return append(kv, reduced[len(reduced)-1])
}

func newSurfaceRecord(s *Surface) surfaceRecord {
	rec := surfaceRecord{
		DegreeU:  s.degreeU,
		DegreeV:  s.degreeV,
		CpCountU: s.cpCountU,
		CpCountV: s.cpCountV,
		KnotsU:   reduceKnots(s.knotsU),
		KnotsV:   reduceKnots(s.knotsV),
		Points:   make([][4]float64, len(s.points)),
	}
	for i, p := range s.points {
		w := s.weights[i]
		rec.Points[i] = [4]float64{p.X * w, p.Y * w, p.Z * w, w}
	}
	return rec
}

func (rec surfaceRecord) surface() (*Surface, error) {
	if len(rec.KnotsU) != rec.CpCountU+rec.DegreeU-1 || len(rec.KnotsV) != rec.CpCountV+rec.DegreeV-1 {
		return nil, fmt.Errorf("%w: reduced knot count does not match grid", ErrBadRecord)
	}
	points := make([]r3.Vec, len(rec.Points))
	weights := make([]float64, len(rec.Points))
	for i, hp := range rec.Points {
		w := hp[3]
		if w <= 0 {
			return nil, fmt.Errorf("%w: %w", ErrBadRecord, ErrInvalidWeight)
		}
		points[i] = r3.Vec{X: hp[0] / w, Y: hp[1] / w, Z: hp[2] / w}
		weights[i] = w
	}
	s, err := NewSurface(rec.DegreeU, rec.DegreeV, rec.CpCountU, rec.CpCountV,
		expandKnots(rec.KnotsU), expandKnots(rec.KnotsV), points, weights)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadRecord, err)
	}
	return s, nil
}

// EncodeSurface serializes a single surface to its interchange form.
func EncodeSurface(s *Surface) ([]byte, error) {
	return json.Marshal(newSurfaceRecord(s))
}

// DecodeSurface parses a surface from its interchange form, validating every
// structural invariant on the way in.
func DecodeSurface(data []byte) (*Surface, error) {
	var rec surfaceRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadRecord, err)
	}
	return rec.surface()
}

// EncodeGroup serializes a patch group's surfaces. Patch identity, selection
// state, and constraints are session state and are not persisted.
func EncodeGroup(g *PatchGroup) ([]byte, error) {
	rec := groupRecord{Name: g.Name, Surfaces: make([]surfaceRecord, len(g.patches))}
	for i, p := range g.patches {
		rec.Surfaces[i] = newSurfaceRecord(p.Surface)
	}
	return json.Marshal(rec)
}

// DecodeGroup parses a patch group and re-infers its constraints: for every
// pair of decoded patches, every pair of boundary edges whose control points
// coincide within [CoincidenceTolerance] yields a G0 constraint.
func DecodeGroup(data []byte) (*PatchGroup, error) {
	var rec groupRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadRecord, err)
	}
	g := NewPatchGroup(rec.Name)
	for _, sr := range rec.Surfaces {
		s, err := sr.surface()
		if err != nil {
			return nil, err
		}
		g.Add(NewPatch(s))
	}
	inferConstraints(g)
	return g, nil
}

var allEdges = [...]Edge{EdgeUMin, EdgeUMax, EdgeVMin, EdgeVMax}

// inferConstraints synthesizes a G0 constraint for every pair of edges of
// distinct patches whose shared-length boundary control points all coincide
// within the tolerance.
func inferConstraints(g *PatchGroup) {
	for i, pa := range g.patches {
		for _, pb := range g.patches[i+1:] {
			for _, ea := range allEdges {
				for _, eb := range allEdges {
					if edgesCoincide(pa.Surface, ea, pb.Surface, eb) {
						g.AddConstraint(&Constraint{
							PatchA: pa.ID, EdgeA: ea,
							PatchB: pb.ID, EdgeB: eb,
							Kind: G0,
						})
					}
				}
			}
		}
	}
}

func edgesCoincide(sa *Surface, ea Edge, sb *Surface, eb Edge) bool {
	n := min(ea.Length(sa), eb.Length(sb))
	for k := 0; k < n; k++ {
		au, av := ea.gridIndex(sa, 0, k)
		bu, bv := eb.gridIndex(sb, 0, k)
		d := r3.Sub(sa.ControlPoint(au, av), sb.ControlPoint(bu, bv))
		if r3.Norm(d) > CoincidenceTolerance {
			return false
		}
	}
	return true
}
