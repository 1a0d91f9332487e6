package geom

// NormalizeFacing converts any quarter-turn count into [0,3].
func NormalizeFacing(f int) int {
	f %= 4
	if f < 0 {
		f += 4
	}
	return f
}

// RotateXZ rotates an (x,z) offset around the Y axis by rot*90 degrees
// clockwise.
func RotateXZ(x, z, rot int) (rx, rz int) {
	switch NormalizeFacing(rot) {
	case 0:
		return x, z
	case 1:
		return z, -x
	case 2:
		return -x, -z
	default: // 3
		return -z, x
	}
}

// Rotate a vector around the vertical axis through the origin
func Rotate(v Vec3, rot int) Vec3 {
	x, z := RotateXZ(v.X, v.Z, rot)
	return Vec3{X: x, Y: v.Y, Z: z}
}

// Rotate 'p' around the vertical axis passing through 'origin'
func RotateAround(origin, p Vec3, rot int) Vec3 {
	return origin.Add(Rotate(p.Sub(origin), rot))
}

// Size of a box after rotating it by 'rot' quarter turns, odd turns swap x and z
func RotateSize(size Vec3, rot int) Vec3 {
	if NormalizeFacing(rot)%2 == 1 {
		return Vec3{X: size.Z, Y: size.Y, Z: size.X}
	}
	return size
}

// Unit vector pointing out of the face with given facing, facing 0 is +x
func Direction(facing int) Vec3 {
	return Rotate(Vec3{X: 1}, facing)
}
