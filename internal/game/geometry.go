package game

import "math"

// Vec3 is a point or direction in world space. Y is up.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

func (v Vec3) Scale(f float64) Vec3 { return Vec3{v.X * f, v.Y * f, v.Z * f} }

// Len returns the Euclidean length of v.
func (v Vec3) Len() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Normalize returns v scaled to unit length, or the zero vector if v is zero.
func (v Vec3) Normalize() Vec3 {
	l := v.Len()
	if l == 0 {
		return Vec3{}
	}
	return v.Scale(1 / l)
}

// Flat projects v onto the ground plane.
func (v Vec3) Flat() Vec3 {
	return Vec3{X: v.X, Z: v.Z}
}

// Distance calculates the Euclidean distance between two points.
func Distance(a, b Vec3) float64 {
	return a.Sub(b).Len()
}

// GroundDistance is the distance between a and b on the ground plane, ignoring height.
func GroundDistance(a, b Vec3) float64 {
	return a.Sub(b).Flat().Len()
}

// Mean returns the coordinate-wise mean of points. The mean of no points is the origin.
func Mean(points []Vec3) Vec3 {
	if len(points) == 0 {
		return Vec3{}
	}
	var sum Vec3
	for _, p := range points {
		sum = sum.Add(p)
	}
	return sum.Scale(1 / float64(len(points)))
}

// Yaw returns the heading of a direction on the ground plane, in radians.
// Zero faces +Z.
func Yaw(dir Vec3) float64 {
	return math.Atan2(dir.X, dir.Z)
}

// turnToward rotates heading toward target by fraction t of the remaining angle.
func turnToward(heading, target, t float64) float64 {
	if t >= 1 {
		return target
	}
	diff := math.Remainder(target-heading, 2*math.Pi)
	return heading + diff*t
}
