package geom

import "fmt"

// Point on the integer lattice, Y is the vertical axis
type Vec3 struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

// Point on the horizontal (x, z) plane
type Vec2 struct {
	X int `json:"x"`
	Z int `json:"z"`
}

func V3(x, y, z int) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

func (v Vec3) Mul(k int) Vec3 {
	return Vec3{v.X * k, v.Y * k, v.Z * k}
}

func (v Vec3) Abs() Vec3 {
	return Vec3{abs(v.X), abs(v.Y), abs(v.Z)}
}

// Weighted manhattan length, used by distance-to-target rewards
func (v Vec3) Manhattan(wx, wy, wz int) int {
	a := v.Abs()
	return a.X*wx + a.Y*wy + a.Z*wz
}

// Drop the vertical component
func (v Vec3) XZ() Vec2 {
	return Vec2{X: v.X, Z: v.Z}
}

func (v Vec3) String() string {
	return fmt.Sprintf("(%d, %d, %d)", v.X, v.Y, v.Z)
}

func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{v.X + o.X, v.Z + o.Z}
}

func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{v.X - o.X, v.Z - o.Z}
}

func (v Vec2) String() string {
	return fmt.Sprintf("(%d, %d)", v.X, v.Z)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Division rounding towards negative infinity
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
