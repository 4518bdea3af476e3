package nurbs

// KnotVector is a non-decreasing sequence of parameter values. All knot
// vectors in this package are clamped: the first and last values are each
// repeated degree+1 times, so a surface interpolates its boundary control
// points.
type KnotVector []float64

// Clone returns an independent copy of the knot vector.
func (kv KnotVector) Clone() KnotVector {
	return append(KnotVector(nil), kv...)
}

// IsValid reports whether kv is a well-formed clamped knot vector for the
// given degree: long enough for at least one span, non-decreasing, and with
// degree+1 repeated values at both ends.
func (kv KnotVector) IsValid(degree int) bool {
	if degree < 1 || len(kv) < 2*(degree+1) {
		return false
	}
	first, last := kv[0], kv[len(kv)-1]
	for i := 0; i < degree+1; i++ {
		if kv[i] != first || kv[len(kv)-1-i] != last {
			return false
		}
	}
	for i := 0; i < len(kv)-1; i++ {
		if kv[i] > kv[i+1] {
			return false
		}
	}
	return true
}

// ClampedKnotVector returns the uniform clamped knot vector for a curve of
// the given degree with cpCount control points. The domain is [0, 1] and
// interior knots are evenly spaced, one per span boundary.
func ClampedKnotVector(degree, cpCount int) KnotVector {
	spans := cpCount - degree
	kv := make(KnotVector, cpCount+degree+1)
	for i := 0; i < degree+1; i++ {
		kv[len(kv)-1-i] = 1
	}
	for i := 1; i < spans; i++ {
		kv[degree+i] = float64(i) / float64(spans)
	}
	return kv
}

// BezierKnotVector returns the single-span clamped knot vector of the given
// degree, i.e. the knot vector of a Bézier segment.
func BezierKnotVector(degree int) KnotVector {
	return ClampedKnotVector(degree, degree+1)
}

// FindSpan returns the index i of the knot span containing t, such that
// knots[i] <= t < knots[i+1]. n is the highest control-point index,
// len(knots)-degree-2. When t equals the upper bound of the domain the last
// non-empty span, n, is returned.
//
// This is a binary search over the interior knots (Piegl & Tiller A2.1).
// t must lie within [knots[degree], knots[n+1]].
func FindSpan(n, degree int, t float64, knots KnotVector) int {
	if t >= knots[n+1] {
		return n
	}
	if t <= knots[degree] {
		return degree
	}
	low, high := degree, n+1
	mid := (low + high) / 2
	for t < knots[mid] || t >= knots[mid+1] {
		if t < knots[mid] {
			high = mid
		} else {
			low = mid
		}
		mid = (low + high) / 2
	}
	return mid
}

// BasisFunctions evaluates the degree+1 basis functions that are nonzero on
// the given span at parameter t, using the triangular Cox–de Boor recurrence
// (Piegl & Tiller A2.2). The span bounds guarantee positive denominators, so
// no division by zero can occur. The returned values sum to 1.
func BasisFunctions(span int, t float64, degree int, knots KnotVector) []float64 {
	basis := make([]float64, degree+1)
	left := make([]float64, degree+1)
	right := make([]float64, degree+1)
	basis[0] = 1
	for j := 1; j <= degree; j++ {
		left[j] = t - knots[span+1-j]
		right[j] = knots[span+j] - t
		saved := 0.0
		for r := 0; r < j; r++ {
			temp := basis[r] / (right[r+1] + left[j-r])
			basis[r] = saved + right[r+1]*temp
			saved = left[j-r] * temp
		}
		basis[j] = saved
	}
	return basis
}

// BasisFunctionDerivatives evaluates the nonzero basis functions on the given
// span at t together with their derivatives up to order nDerivs (Piegl &
// Tiller A2.3). It returns a table d where d[k][j] is the k-th derivative of
// the j-th nonzero basis function; d[0] holds the function values themselves.
// The table has min(nDerivs, degree)+1 rows, since derivatives beyond the
// degree vanish identically.
func BasisFunctionDerivatives(span int, t float64, degree, nDerivs int, knots KnotVector) [][]float64 {
	n := min(nDerivs, degree)

	// ndu stores the basis functions and the knot differences in one
	// triangular table.
	ndu := make([][]float64, degree+1)
	for i := range ndu {
		ndu[i] = make([]float64, degree+1)
	}
	left := make([]float64, degree+1)
	right := make([]float64, degree+1)
	ndu[0][0] = 1
	for j := 1; j <= degree; j++ {
		left[j] = t - knots[span+1-j]
		right[j] = knots[span+j] - t
		saved := 0.0
		for r := 0; r < j; r++ {
			ndu[j][r] = right[r+1] + left[j-r]
			temp := ndu[r][j-1] / ndu[j][r]
			ndu[r][j] = saved + right[r+1]*temp
			saved = left[j-r] * temp
		}
		ndu[j][j] = saved
	}

	d := make([][]float64, n+1)
	for k := range d {
		d[k] = make([]float64, degree+1)
	}
	for j := 0; j < degree+1; j++ {
		d[0][j] = ndu[j][degree]
	}

	// Two alternating rows of difference coefficients.
	var a [2][]float64
	a[0] = make([]float64, degree+1)
	a[1] = make([]float64, degree+1)
	for r := 0; r < degree+1; r++ {
		s1, s2 := 0, 1
		a[0][0] = 1
		for k := 1; k <= n; k++ {
			der := 0.0
			rk, pk := r-k, degree-k
			if r >= k {
				a[s2][0] = a[s1][0] / ndu[pk+1][rk]
				der = a[s2][0] * ndu[rk][pk]
			}
			j1 := 1
			if rk < -1 {
				j1 = -rk
			}
			j2 := k - 1
			if r-1 > pk {
				j2 = degree - r
			}
			for j := j1; j <= j2; j++ {
				a[s2][j] = (a[s1][j] - a[s1][j-1]) / ndu[pk+1][rk+j]
				der += a[s2][j] * ndu[rk+j][pk]
			}
			if r <= pk {
				a[s2][k] = -a[s1][k-1] / ndu[pk+1][r]
				der += a[s2][k] * ndu[r][pk]
			}
			d[k][r] = der
			s1, s2 = s2, s1
		}
	}

	// Scale by degree!/(degree-k)!.
	f := float64(degree)
	for k := 1; k <= n; k++ {
		for j := 0; j < degree+1; j++ {
			d[k][j] *= f
		}
		f *= float64(degree - k)
	}
	return d
}
