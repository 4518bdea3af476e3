package nurbs

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

var (
	ErrInvalidDegree     = errors.New("surface degree must be at least 1")
	ErrInvalidSpanCount  = errors.New("surface needs at least one span per direction")
	ErrInvalidKnotVector = errors.New("knot vector is not clamped and non-decreasing")
	ErrGridMismatch      = errors.New("control grid size does not match degrees and knots")
	ErrInvalidWeight     = errors.New("control-point weights must be positive")
)

// degenerateWeight is the weight-sum threshold below which a rational
// evaluation is considered degenerate and yields a defined fallback instead
// of dividing.
const degenerateWeight = 1e-10

// upVector is the normal returned for degenerate parameterizations, where
// the surface partials are parallel or vanish.
var upVector = r3.Vec{Y: 1}

// Surface is a rational tensor-product B-spline surface. The control net is
// stored row-major (all V entries of the first U row first) behind
// accessors; both knot vectors are clamped.
//
// A Surface is mutated only through SetControlPoint/SetWeight and knot
// insertion. Interactive editing should go through [Patch], which layers the
// change-notification contract on top.
type Surface struct {
	degreeU, degreeV   int
	cpCountU, cpCountV int
	knotsU, knotsV     KnotVector
	points             []r3.Vec
	weights            []float64
}

// NewSurface builds a surface from explicit data, validating every structural
// invariant: degrees at least 1, at least one span per direction, clamped
// non-decreasing knot vectors of length cpCount+degree+1, a full control grid
// in row-major order, and positive weights. A nil weights slice means unit
// weights throughout.
func NewSurface(degreeU, degreeV, cpCountU, cpCountV int, knotsU, knotsV KnotVector, points []r3.Vec, weights []float64) (*Surface, error) {
	if degreeU < 1 || degreeV < 1 {
		return nil, ErrInvalidDegree
	}
	if cpCountU <= degreeU || cpCountV <= degreeV {
		return nil, ErrInvalidSpanCount
	}
	if len(knotsU) != cpCountU+degreeU+1 || len(knotsV) != cpCountV+degreeV+1 {
		return nil, fmt.Errorf("%w: got %d/%d knots, want %d/%d",
			ErrInvalidKnotVector, len(knotsU), len(knotsV), cpCountU+degreeU+1, cpCountV+degreeV+1)
	}
	if !knotsU.IsValid(degreeU) || !knotsV.IsValid(degreeV) {
		return nil, ErrInvalidKnotVector
	}
	if len(points) != cpCountU*cpCountV {
		return nil, fmt.Errorf("%w: got %d control points, want %d",
			ErrGridMismatch, len(points), cpCountU*cpCountV)
	}
	if weights == nil {
		weights = make([]float64, len(points))
		for i := range weights {
			weights[i] = 1
		}
	} else {
		if len(weights) != len(points) {
			return nil, fmt.Errorf("%w: got %d weights, want %d",
				ErrGridMismatch, len(weights), len(points))
		}
		for _, w := range weights {
			if w <= 0 {
				return nil, ErrInvalidWeight
			}
		}
		weights = append([]float64(nil), weights...)
	}
	return &Surface{
		degreeU:  degreeU,
		degreeV:  degreeV,
		cpCountU: cpCountU,
		cpCountV: cpCountV,
		knotsU:   knotsU.Clone(),
		knotsV:   knotsV.Clone(),
		points:   append([]r3.Vec(nil), points...),
		weights:  weights,
	}, nil
}

// BezierPatch returns the default editable patch: a degree-3 single-span
// surface whose 4×4 control net lies flat on the XZ plane, spanning the unit
// square, with unit weights.
func BezierPatch() *Surface {
	s, err := GridSurface(1, 1)
	if err != nil {
		panic(err)
	}
	return s
}

// GridSurface returns a degree-3 surface with the given number of spans per
// direction, its control net laid out flat on the XZ plane over the unit
// square, with unit weights and uniform clamped knot vectors.
func GridSurface(spansU, spansV int) (*Surface, error) {
	const degree = 3
	if spansU < 1 || spansV < 1 {
		return nil, ErrInvalidSpanCount
	}
	cpU, cpV := degree+spansU, degree+spansV
	points := make([]r3.Vec, cpU*cpV)
	for i := 0; i < cpU; i++ {
		for j := 0; j < cpV; j++ {
			points[i*cpV+j] = r3.Vec{
				X: float64(i) / float64(cpU-1),
				Z: float64(j) / float64(cpV-1),
			}
		}
	}
	return NewSurface(degree, degree, cpU, cpV,
		ClampedKnotVector(degree, cpU), ClampedKnotVector(degree, cpV),
		points, nil)
}

func (s *Surface) DegreeU() int { return s.degreeU }
func (s *Surface) DegreeV() int { return s.degreeV }

// CpCountU returns the number of control points in the U direction.
func (s *Surface) CpCountU() int { return s.cpCountU }

// CpCountV returns the number of control points in the V direction.
func (s *Surface) CpCountV() int { return s.cpCountV }

// SpanCountU returns the number of knot spans in the U direction.
func (s *Surface) SpanCountU() int { return s.cpCountU - s.degreeU }

// SpanCountV returns the number of knot spans in the V direction.
func (s *Surface) SpanCountV() int { return s.cpCountV - s.degreeV }

// KnotsU returns the U knot vector. The returned slice is the surface's own
// storage and must not be modified.
func (s *Surface) KnotsU() KnotVector { return s.knotsU }

// KnotsV returns the V knot vector. The returned slice is the surface's own
// storage and must not be modified.
func (s *Surface) KnotsV() KnotVector { return s.knotsV }

func (s *Surface) idx(u, v int) int { return u*s.cpCountV + v }

// ControlPoint returns the control point at grid position (u, v).
func (s *Surface) ControlPoint(u, v int) r3.Vec { return s.points[s.idx(u, v)] }

// SetControlPoint writes the control point at grid position (u, v).
func (s *Surface) SetControlPoint(u, v int, pos r3.Vec) { s.points[s.idx(u, v)] = pos }

// Weight returns the weight at grid position (u, v).
func (s *Surface) Weight(u, v int) float64 { return s.weights[s.idx(u, v)] }

// SetWeight writes the weight at grid position (u, v).
func (s *Surface) SetWeight(u, v int, w float64) { s.weights[s.idx(u, v)] = w }

// Clone returns a deep copy of the surface: knot vectors, control grid, and
// weights are all independent of the original.
func (s *Surface) Clone() *Surface {
	return &Surface{
		degreeU:  s.degreeU,
		degreeV:  s.degreeV,
		cpCountU: s.cpCountU,
		cpCountV: s.cpCountV,
		knotsU:   s.knotsU.Clone(),
		knotsV:   s.knotsV.Clone(),
		points:   append([]r3.Vec(nil), s.points...),
		weights:  append([]float64(nil), s.weights...),
	}
}

// Evaluate returns the surface point at parameters (u, v), each in [0, 1].
// A degenerate weight sum yields the zero vector rather than an error, so
// evaluation stays total under interactive editing.
func (s *Surface) Evaluate(u, v float64) r3.Vec {
	spanU := FindSpan(s.cpCountU-1, s.degreeU, u, s.knotsU)
	spanV := FindSpan(s.cpCountV-1, s.degreeV, v, s.knotsV)
	bu := BasisFunctions(spanU, u, s.degreeU, s.knotsU)
	bv := BasisFunctions(spanV, v, s.degreeV, s.knotsV)

	var acc r3.Vec
	var wsum float64
	for i := 0; i < s.degreeU+1; i++ {
		ui := spanU - s.degreeU + i
		for j := 0; j < s.degreeV+1; j++ {
			vi := spanV - s.degreeV + j
			w := s.weights[s.idx(ui, vi)] * bu[i] * bv[j]
			acc = r3.Add(acc, r3.Scale(w, s.points[s.idx(ui, vi)]))
			wsum += w
		}
	}
	if wsum < degenerateWeight {
		return r3.Vec{}
	}
	return r3.Scale(1/wsum, acc)
}

// EvaluateWithDerivatives returns the surface point at (u, v) together with
// the first-order partial derivatives with respect to u and v.
//
// The homogeneous point and its partials each carry an extra weight channel;
// the rational quotient rule dP/du = (dA/du − w_u·P)/w recovers the true
// surface tangents from them.
func (s *Surface) EvaluateWithDerivatives(u, v float64) (pt, du, dv r3.Vec) {
	spanU := FindSpan(s.cpCountU-1, s.degreeU, u, s.knotsU)
	spanV := FindSpan(s.cpCountV-1, s.degreeV, v, s.knotsV)
	dbu := BasisFunctionDerivatives(spanU, u, s.degreeU, 1, s.knotsU)
	dbv := BasisFunctionDerivatives(spanV, v, s.degreeV, 1, s.knotsV)

	var a, au, av r3.Vec
	var w, wu, wv float64
	for i := 0; i < s.degreeU+1; i++ {
		ui := spanU - s.degreeU + i
		for j := 0; j < s.degreeV+1; j++ {
			vi := spanV - s.degreeV + j
			cw := s.weights[s.idx(ui, vi)]
			cp := r3.Scale(cw, s.points[s.idx(ui, vi)])

			b := dbu[0][i] * dbv[0][j]
			bu := dbu[1][i] * dbv[0][j]
			bv := dbu[0][i] * dbv[1][j]

			a = r3.Add(a, r3.Scale(b, cp))
			au = r3.Add(au, r3.Scale(bu, cp))
			av = r3.Add(av, r3.Scale(bv, cp))
			w += b * cw
			wu += bu * cw
			wv += bv * cw
		}
	}
	if w < degenerateWeight {
		return r3.Vec{}, r3.Vec{}, r3.Vec{}
	}
	pt = r3.Scale(1/w, a)
	du = r3.Scale(1/w, r3.Sub(au, r3.Scale(wu, pt)))
	dv = r3.Scale(1/w, r3.Sub(av, r3.Scale(wv, pt)))
	return pt, du, dv
}

// Normal returns the unit surface normal at (u, v), the normalized cross
// product of the two partial derivatives. Where the parameterization is
// degenerate and the cross product vanishes, a fixed up vector is returned.
func (s *Surface) Normal(u, v float64) r3.Vec {
	_, du, dv := s.EvaluateWithDerivatives(u, v)
	n := r3.Cross(du, dv)
	if r3.Norm(n) < degenerateWeight {
		return upVector
	}
	return r3.Unit(n)
}

// InsertKnotU inserts the knot t into the U knot vector without changing the
// surface shape (Boehm's algorithm). One new row of control points replaces
// the affected rows as a homogeneous blend of their neighbors; CpCountU and
// SpanCountU both grow by exactly one. t must lie in the open domain (0, 1).
func (s *Surface) InsertKnotU(t float64) {
	p := s.degreeU
	k := FindSpan(s.cpCountU-1, p, t, s.knotsU)

	knots := make(KnotVector, len(s.knotsU)+1)
	copy(knots, s.knotsU[:k+1])
	knots[k+1] = t
	copy(knots[k+2:], s.knotsU[k+1:])

	cpU := s.cpCountU + 1
	points := make([]r3.Vec, cpU*s.cpCountV)
	weights := make([]float64, cpU*s.cpCountV)
	for v := 0; v < s.cpCountV; v++ {
		for i := 0; i < cpU; i++ {
			switch {
			case i <= k-p:
				points[i*s.cpCountV+v] = s.points[s.idx(i, v)]
				weights[i*s.cpCountV+v] = s.weights[s.idx(i, v)]
			case i > k:
				points[i*s.cpCountV+v] = s.points[s.idx(i-1, v)]
				weights[i*s.cpCountV+v] = s.weights[s.idx(i-1, v)]
			default:
				alpha := insertionAlpha(t, s.knotsU, i, p)
				hp, hw := blendHomogeneous(
					s.points[s.idx(i-1, v)], s.weights[s.idx(i-1, v)],
					s.points[s.idx(i, v)], s.weights[s.idx(i, v)],
					alpha)
				points[i*s.cpCountV+v] = hp
				weights[i*s.cpCountV+v] = hw
			}
		}
	}

	s.knotsU = knots
	s.points = points
	s.weights = weights
	s.cpCountU = cpU
}

// InsertKnotV inserts the knot t into the V knot vector without changing the
// surface shape. The V-direction mirror of [Surface.InsertKnotU].
func (s *Surface) InsertKnotV(t float64) {
	p := s.degreeV
	k := FindSpan(s.cpCountV-1, p, t, s.knotsV)

	knots := make(KnotVector, len(s.knotsV)+1)
	copy(knots, s.knotsV[:k+1])
	knots[k+1] = t
	copy(knots[k+2:], s.knotsV[k+1:])

	cpV := s.cpCountV + 1
	points := make([]r3.Vec, s.cpCountU*cpV)
	weights := make([]float64, s.cpCountU*cpV)
	for u := 0; u < s.cpCountU; u++ {
		for j := 0; j < cpV; j++ {
			switch {
			case j <= k-p:
				points[u*cpV+j] = s.points[s.idx(u, j)]
				weights[u*cpV+j] = s.weights[s.idx(u, j)]
			case j > k:
				points[u*cpV+j] = s.points[s.idx(u, j-1)]
				weights[u*cpV+j] = s.weights[s.idx(u, j-1)]
			default:
				alpha := insertionAlpha(t, s.knotsV, j, p)
				hp, hw := blendHomogeneous(
					s.points[s.idx(u, j-1)], s.weights[s.idx(u, j-1)],
					s.points[s.idx(u, j)], s.weights[s.idx(u, j)],
					alpha)
				points[u*cpV+j] = hp
				weights[u*cpV+j] = hw
			}
		}
	}

	s.knotsV = knots
	s.points = points
	s.weights = weights
	s.cpCountV = cpV
}

// insertionAlpha computes the Boehm blend factor for control point i when
// inserting t into knots. A numerically zero knot interval yields 0.
func insertionAlpha(t float64, knots KnotVector, i, degree int) float64 {
	den := knots[i+degree] - knots[i]
	if den < 1e-12 && den > -1e-12 {
		return 0
	}
	return (t - knots[i]) / den
}

// blendHomogeneous blends two weighted control points in homogeneous space,
// (1−alpha)·A + alpha·B, and divides back out by the blended weight. A
// degenerate blended weight yields the zero point.
func blendHomogeneous(pa r3.Vec, wa float64, pb r3.Vec, wb float64, alpha float64) (r3.Vec, float64) {
	w := (1-alpha)*wa + alpha*wb
	h := r3.Add(r3.Scale((1-alpha)*wa, pa), r3.Scale(alpha*wb, pb))
	if w < degenerateWeight {
		return r3.Vec{}, w
	}
	return r3.Scale(1/w, h), w
}
