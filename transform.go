package subduction

import "math"

// Transform3d is a column-major 4x4 affine matrix of float64. Cols[c][r] is
// row r of column c; this matches the column-major convention used by the
// rest of the compositor so that transforming a column vector is
// Cols * v.
type Transform3d struct {
	Cols [4][4]float64
}

// Identity3d is the identity transform.
var Identity3d = Transform3d{Cols: [4][4]float64{
	{1, 0, 0, 0},
	{0, 1, 0, 0},
	{0, 0, 1, 0},
	{0, 0, 0, 1},
}}

// TransformFromCols builds a Transform3d from four columns.
func TransformFromCols(c0, c1, c2, c3 [4]float64) Transform3d {
	return Transform3d{Cols: [4][4]float64{c0, c1, c2, c3}}
}

// TransformFromColsArray builds a Transform3d directly from a column-major
// 4x4 array.
func TransformFromColsArray(cols [4][4]float64) Transform3d {
	return Transform3d{Cols: cols}
}

// ToColsArray returns the underlying column-major 4x4 array.
func (t Transform3d) ToColsArray() [4][4]float64 { return t.Cols }

// Col returns column i.
func (t Transform3d) Col(i int) [4]float64 { return t.Cols[i] }

// TransformFromTranslation builds a translation transform.
func TransformFromTranslation(x, y, z float64) Transform3d {
	m := Identity3d
	m.Cols[3] = [4]float64{x, y, z, 1}
	return m
}

// TransformFromScale builds an anisotropic scale transform.
func TransformFromScale(sx, sy, sz float64) Transform3d {
	m := Identity3d
	m.Cols[0][0] = sx
	m.Cols[1][1] = sy
	m.Cols[2][2] = sz
	return m
}

// TransformFromRotationZ builds a rotation-about-Z transform, angle in
// radians.
func TransformFromRotationZ(radians float64) Transform3d {
	s, c := math.Sincos(radians)
	m := Identity3d
	m.Cols[0][0] = c
	m.Cols[0][1] = s
	m.Cols[1][0] = -s
	m.Cols[1][1] = c
	return m
}

// IsFinite reports whether every element is finite (not NaN or +/-Inf).
func (t Transform3d) IsFinite() bool {
	for _, col := range t.Cols {
		for _, v := range col {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}
	return true
}

// IsNaN reports whether any element is NaN.
func (t Transform3d) IsNaN() bool {
	for _, col := range t.Cols {
		for _, v := range col {
			if math.IsNaN(v) {
				return true
			}
		}
	}
	return false
}

// Mul returns t * rhs: a standard 4x4 matrix multiply, no SIMD. Columns of
// the result are t applied to each column of rhs.
func (t Transform3d) Mul(rhs Transform3d) Transform3d {
	var out Transform3d
	for c := 0; c < 4; c++ {
		for r := 0; r < 4; r++ {
			var sum float64
			for k := 0; k < 4; k++ {
				sum += t.Cols[k][r] * rhs.Cols[c][k]
			}
			out.Cols[c][r] = sum
		}
	}
	return out
}
