package nurbs

import (
	"testing"

	"github.com/google/go-cmp/cmp/cmpopts"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"
)

func TestClampedKnotVector(t *testing.T) {
	got := ClampedKnotVector(3, 6)
	want := KnotVector{0, 0, 0, 0, 1.0 / 3.0, 2.0 / 3.0, 1, 1, 1, 1}
	diff(t, want, got, cmpopts.EquateApprox(0, 1e-15))

	if !got.IsValid(3) {
		t.Error("uniform clamped knot vector reported invalid")
	}
}

func TestBezierKnotVector(t *testing.T) {
	diff(t, KnotVector{0, 0, 0, 0, 1, 1, 1, 1}, BezierKnotVector(3))
	diff(t, KnotVector{0, 0, 1, 1}, BezierKnotVector(1))
}

func TestKnotVectorIsValid(t *testing.T) {
	cases := []struct {
		name   string
		kv     KnotVector
		degree int
		want   bool
	}{
		{"bezier", KnotVector{0, 0, 0, 0, 1, 1, 1, 1}, 3, true},
		{"multispan", ClampedKnotVector(2, 7), 2, true},
		{"too short", KnotVector{0, 0, 1, 1}, 3, false},
		{"unclamped start", KnotVector{0, 0, 0, 0.5, 1, 1, 1, 1}, 3, false},
		{"unclamped end", KnotVector{0, 0, 0, 0, 0.5, 1, 1, 1}, 3, false},
		{"decreasing", KnotVector{0, 0, 0, 0, 0.7, 0.3, 1, 1, 1, 1}, 3, false},
		{"empty", nil, 3, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.kv.IsValid(c.degree); got != c.want {
				t.Errorf("IsValid(%d) = %v, want %v", c.degree, got, c.want)
			}
		})
	}
}

func TestFindSpanBoundary(t *testing.T) {
	const degree = 3
	kv := ClampedKnotVector(degree, 6)
	n := 5 // cpCount-1

	// The upper domain bound clamps to the last non-empty span.
	if got := FindSpan(n, degree, 1.0, kv); got != n {
		t.Errorf("FindSpan at upper bound = %d, want %d", got, n)
	}
	if got := FindSpan(n, degree, 0.0, kv); got != degree {
		t.Errorf("FindSpan at lower bound = %d, want %d", got, degree)
	}
}

func TestFindSpanInterior(t *testing.T) {
	const degree = 3
	kv := ClampedKnotVector(degree, 6) // interior knots at 1/3, 2/3
	n := 5

	cases := []struct {
		t    float64
		want int
	}{
		{0.1, 3},
		{1.0 / 3.0, 4},
		{0.5, 4},
		{2.0 / 3.0, 5},
		{0.9, 5},
	}
	for _, c := range cases {
		got := FindSpan(n, degree, c.t, kv)
		if got != c.want {
			t.Errorf("FindSpan(t=%g) = %d, want %d", c.t, got, c.want)
		}
		if !(kv[got] <= c.t && c.t < kv[got+1]) {
			t.Errorf("FindSpan(t=%g) = %d, but t outside [knots[%d], knots[%d])", c.t, got, got, got+1)
		}
	}
}

func TestBasisFunctionsPartitionOfUnity(t *testing.T) {
	for degree := 1; degree <= 4; degree++ {
		for cpCount := degree + 1; cpCount <= degree+5; cpCount++ {
			kv := ClampedKnotVector(degree, cpCount)
			n := cpCount - 1
			const samples = 50
			for i := 0; i < samples+1; i++ {
				u := float64(i) / float64(samples)
				span := FindSpan(n, degree, u, kv)
				basis := BasisFunctions(span, u, degree, kv)
				if len(basis) != degree+1 {
					t.Fatalf("got %d basis values, want %d", len(basis), degree+1)
				}
				sum := floats.Sum(basis)
				if !scalar.EqualWithinAbs(sum, 1, 1e-9) {
					t.Errorf("degree %d, cp %d, u=%g: basis sum %g, want 1", degree, cpCount, u, sum)
				}
				for _, b := range basis {
					if b < 0 {
						t.Errorf("degree %d, u=%g: negative basis value %g", degree, u, b)
					}
				}
			}
		}
	}
}

func TestBasisFunctionDerivativesZerothOrder(t *testing.T) {
	const degree = 3
	kv := ClampedKnotVector(degree, 7)
	n := 6
	for _, u := range []float64{0, 0.2, 0.5, 0.77, 1} {
		span := FindSpan(n, degree, u, kv)
		want := BasisFunctions(span, u, degree, kv)
		got := BasisFunctionDerivatives(span, u, degree, 2, kv)
		diff(t, want, got[0], cmpopts.EquateApprox(0, 1e-12))
		if len(got) != 3 {
			t.Errorf("got %d derivative rows, want 3", len(got))
		}
	}
}

func TestBasisFunctionDerivativesRowsCapped(t *testing.T) {
	const degree = 2
	kv := ClampedKnotVector(degree, 5)
	span := FindSpan(4, degree, 0.4, kv)
	got := BasisFunctionDerivatives(span, 0.4, degree, 5, kv)
	// Derivatives beyond the degree vanish; the table stops at degree+1 rows.
	if len(got) != degree+1 {
		t.Errorf("got %d rows for nDerivs=5, degree=2, want %d", len(got), degree+1)
	}
}

func TestBasisFunctionDerivativesFiniteDifference(t *testing.T) {
	const degree = 3
	const h = 1e-6
	kv := ClampedKnotVector(degree, 8)
	n := 7
	for _, u := range []float64{0.1, 0.33, 0.5, 0.81} {
		span := FindSpan(n, degree, u, kv)
		// Keep all three evaluations on the same span so the basis
		// functions line up index for index.
		if FindSpan(n, degree, u-h, kv) != span || FindSpan(n, degree, u+h, kv) != span {
			continue
		}
		lo := BasisFunctions(span, u-h, degree, kv)
		hi := BasisFunctions(span, u+h, degree, kv)
		d := BasisFunctionDerivatives(span, u, degree, 1, kv)
		for j := 0; j < degree+1; j++ {
			approx := (hi[j] - lo[j]) / (2 * h)
			if !scalar.EqualWithinAbs(d[1][j], approx, 1e-5) {
				t.Errorf("u=%g, basis %d: derivative %g, finite difference %g", u, j, d[1][j], approx)
			}
		}
	}
}

func TestBasisFunctionDerivativesSumToZero(t *testing.T) {
	// Derivatives of a partition of unity sum to zero.
	const degree = 3
	kv := ClampedKnotVector(degree, 9)
	n := 8
	for _, u := range []float64{0.05, 0.4, 0.66, 0.95} {
		span := FindSpan(n, degree, u, kv)
		d := BasisFunctionDerivatives(span, u, degree, 2, kv)
		for k := 1; k < len(d); k++ {
			sum := floats.Sum(d[k])
			if !scalar.EqualWithinAbs(sum, 0, 1e-7) {
				t.Errorf("u=%g: order-%d derivatives sum to %g, want 0", u, k, sum)
			}
		}
	}
}

func BenchmarkBasisFunctions(b *testing.B) {
	const degree = 3
	kv := ClampedKnotVector(degree, 10)
	span := FindSpan(9, degree, 0.41, kv)
	for i := 0; i < b.N; i++ {
		BasisFunctions(span, 0.41, degree, kv)
	}
}
