package nurbs

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"gonum.org/v1/gonum/spatial/r3"
)

func diff(t *testing.T, want, got any, opts ...cmp.Option) {
	t.Helper()
	if d := cmp.Diff(want, got, opts...); d != "" {
		t.Error(d)
	}
}

func approxVec(t *testing.T, want, got r3.Vec, tol float64) {
	t.Helper()
	if d := r3.Norm(r3.Sub(want, got)); d > tol {
		t.Errorf("got %v, want %v (distance %g > %g)", got, want, d, tol)
	}
}
