package math

import "math"

// Mat3 is a 3x3 homogeneous plan transform in column-major order.
// Layout: [m0 m3 m6]
//
//	[m1 m4 m7]
//	[m2 m5 m8]
type Mat3 [9]float64

// Identity returns an identity matrix.
func Identity() Mat3 {
	return Mat3{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	}
}

// Translate returns a translation matrix.
func Translate(x, y float64) Mat3 {
	return Mat3{
		1, 0, 0,
		0, 1, 0,
		x, y, 1,
	}
}

// Rotate returns a counter-clockwise rotation matrix about the origin.
func Rotate(angle float64) Mat3 {
	s, c := math.Sincos(angle)
	return Mat3{
		c, s, 0,
		-s, c, 0,
		0, 0, 1,
	}
}

// Basis returns the matrix mapping local (u, v) onto origin + u*ax + v*ay.
func Basis(origin, ax, ay Vec2) Mat3 {
	return Mat3{
		ax.X, ax.Y, 0,
		ay.X, ay.Y, 0,
		origin.X, origin.Y, 1,
	}
}

// RotateAbout returns a counter-clockwise rotation about pivot.
func RotateAbout(pivot Vec2, angle float64) Mat3 {
	return Translate(pivot.X, pivot.Y).Mul(Rotate(angle)).Mul(Translate(-pivot.X, -pivot.Y))
}

// Mul returns m * other.
func (m Mat3) Mul(other Mat3) Mat3 {
	var result Mat3
	for col := range 3 {
		for row := range 3 {
			var sum float64
			for k := range 3 {
				sum += m[k*3+row] * other[col*3+k]
			}
			result[col*3+row] = sum
		}
	}
	return result
}

// TransformPoint applies m to a point.
func (m Mat3) TransformPoint(p Vec2) Vec2 {
	return Vec2{
		m[0]*p.X + m[3]*p.Y + m[6],
		m[1]*p.X + m[4]*p.Y + m[7],
	}
}

// TransformVec applies m to a direction, ignoring translation.
func (m Mat3) TransformVec(v Vec2) Vec2 {
	return Vec2{
		m[0]*v.X + m[3]*v.Y,
		m[1]*v.X + m[4]*v.Y,
	}
}
