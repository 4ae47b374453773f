// Package gamemath holds the small amount of vector math shared by the
// navigation grid, the bot controller and the world loop.
// Y is the vertical axis; the ground plane is XZ.
package gamemath

import "math"

// Vec3 is a point or direction in world space.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Up is the world vertical axis.
var Up = Vec3{Y: 1}

func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }

// Len returns the Euclidean length of v.
func (v Vec3) Len() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Distance returns the full 3D distance between a and b.
func Distance(a, b Vec3) float64 {
	return b.Sub(a).Len()
}

// MoveTowards moves from towards to by at most step and reports whether to
// was reached.
func MoveTowards(from, to Vec3, step float64) (Vec3, bool) {
	d := to.Sub(from)
	dist := d.Len()
	if dist <= step || dist == 0 {
		return to, true
	}
	return from.Add(d.Scale(step / dist)), false
}

// YawTowards returns the yaw (rotation about Y) that faces from towards to,
// ignoring any vertical offset. A yaw of 0 faces +Z.
func YawTowards(from, to Vec3) float64 {
	dx := to.X - from.X
	dz := to.Z - from.Z
	if dx == 0 && dz == 0 {
		return 0
	}
	return math.Atan2(dx, dz)
}

// Forward returns the unit ground-plane direction for yaw.
func Forward(yaw float64) Vec3 {
	return Vec3{X: math.Sin(yaw), Z: math.Cos(yaw)}
}

// Pose is a position plus facing.
type Pose struct {
	Position Vec3    `json:"position"`
	Yaw      float64 `json:"yaw"`
}
