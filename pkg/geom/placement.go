package geom

// NextPosition computes the world offset of a box attached to 'current'
// (a world space box) through a connector facing 'facing'.
//
// 'next' is the local (unrotated) size of the attached box, it will be
// rotated by the same facing. The attached box is centered on the face of
// 'current', its rear face touching it, and then shifted by 'offset' given in
// the connector's frame (x pointing outwards).
func NextPosition(facing int, current Box, next Vec3, offset Vec3) Vec3 {
	facing = NormalizeFacing(facing)

	// Work in doubled coordinates, so that box centers stay on the lattice
	along := RotateSize(current.Size, facing).X + next.X
	shift := Rotate(Vec3{X: along}, facing)
	center := current.Offset.Mul(2).Add(current.Size).Add(shift)
	size := RotateSize(next, facing)

	position := Vec3{
		X: floorDiv(center.X-size.X, 2),
		Y: current.Offset.Y,
		Z: floorDiv(center.Z-size.Z, 2),
	}
	return position.Add(Rotate(offset, facing))
}

// World space box of a structure with given local size, placed at 'position' with 'facing'
func WorldBox(position Vec3, size Vec3, facing int) Box {
	return Box{Offset: position, Size: RotateSize(size, facing)}
}
