package nurbs

import "gonum.org/v1/gonum/spatial/r3"

// Mesh is a triangle tessellation of a surface. Vertices, Normals, and UVs
// are parallel slices; Indices holds three vertex indices per triangle, all
// wound the same way.
type Mesh struct {
	Vertices []r3.Vec
	Normals  []r3.Vec
	UVs      [][2]float64
	Indices  []int
}

// TriangleCount returns the number of triangles in the mesh.
func (m *Mesh) TriangleCount() int { return len(m.Indices) / 3 }

// Tessellate samples the surface on a regular samplesU × samplesV parameter
// grid over [0,1]² and triangulates it with two triangles per grid cell,
// using a fixed winding throughout. Each axis is clamped to a minimum of 2
// samples, and the last row and column are sampled at exactly 1.0 so the
// final span lookup lands on the surface boundary.
func (s *Surface) Tessellate(samplesU, samplesV int) Mesh {
	samplesU = max(samplesU, 2)
	samplesV = max(samplesV, 2)

	m := Mesh{
		Vertices: make([]r3.Vec, 0, samplesU*samplesV),
		Normals:  make([]r3.Vec, 0, samplesU*samplesV),
		UVs:      make([][2]float64, 0, samplesU*samplesV),
		Indices:  make([]int, 0, 6*(samplesU-1)*(samplesV-1)),
	}
	for iu := 0; iu < samplesU; iu++ {
		u := float64(iu) / float64(samplesU-1)
		if iu == samplesU-1 {
			u = 1
		}
		for iv := 0; iv < samplesV; iv++ {
			v := float64(iv) / float64(samplesV-1)
			if iv == samplesV-1 {
				v = 1
			}
			m.Vertices = append(m.Vertices, s.Evaluate(u, v))
			m.Normals = append(m.Normals, s.Normal(u, v))
			m.UVs = append(m.UVs, [2]float64{u, v})
		}
	}
	for iu := 0; iu < samplesU-1; iu++ {
		for iv := 0; iv < samplesV-1; iv++ {
			a := iu*samplesV + iv
			b := (iu+1)*samplesV + iv
			c := (iu+1)*samplesV + iv + 1
			d := iu*samplesV + iv + 1
			m.Indices = append(m.Indices, a, b, c, a, c, d)
		}
	}
	return m
}
