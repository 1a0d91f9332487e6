package geom

import "fmt"

// Axis aligned box, covering [Offset, Offset+Size) on every axis
type Box struct {
	Offset Vec3 `json:"offset"`
	Size   Vec3 `json:"size"`
}

func (b Box) Begin() Vec3 {
	return b.Offset
}

// Exclusive upper corner
func (b Box) End() Vec3 {
	return b.Offset.Add(b.Size)
}

// Inclusive upper corner
func (b Box) Last() Vec3 {
	return b.End().Sub(Vec3{1, 1, 1})
}

// Offset plus half the size, rounded down
func (b Box) Center() Vec3 {
	return Vec3{
		X: b.Offset.X + b.Size.X/2,
		Y: b.Offset.Y + b.Size.Y/2,
		Z: b.Offset.Z + b.Size.Z/2,
	}
}

// Midpoint between the first and the last cell, rounded down
func (b Box) Middle() Vec3 {
	last := b.Last()
	return Vec3{
		X: floorDiv(b.Offset.X+last.X, 2),
		Y: floorDiv(b.Offset.Y+last.Y, 2),
		Z: floorDiv(b.Offset.Z+last.Z, 2),
	}
}

func (b Box) Empty() bool {
	return b.Size.X <= 0 || b.Size.Y <= 0 || b.Size.Z <= 0
}

// Whether the two boxes share at least one cell
func (b Box) Collides(o Box) bool {
	if b.Empty() || o.Empty() {
		return false
	}
	be, oe := b.End(), o.End()
	return b.Offset.X < oe.X && o.Offset.X < be.X &&
		b.Offset.Y < oe.Y && o.Offset.Y < be.Y &&
		b.Offset.Z < oe.Z && o.Offset.Z < be.Z
}

// Shrink the box by n cells on every side, the size never goes below zero
func (b Box) Eroded(n int) Box {
	return Box{
		Offset: b.Offset.Add(Vec3{n, n, n}),
		Size: Vec3{
			X: max(0, b.Size.X-2*n),
			Y: max(0, b.Size.Y-2*n),
			Z: max(0, b.Size.Z-2*n),
		},
	}
}

func (b Box) Translated(v Vec3) Box {
	return Box{Offset: b.Offset.Add(v), Size: b.Size}
}

func (b Box) Contains(p Vec3) bool {
	e := b.End()
	return p.X >= b.Offset.X && p.X < e.X &&
		p.Y >= b.Offset.Y && p.Y < e.Y &&
		p.Z >= b.Offset.Z && p.Z < e.Z
}

// Horizontal projection of the box
func (b Box) Rect() Rect {
	return Rect{
		Offset: b.Offset.XZ(),
		Size:   b.Size.XZ(),
	}
}

func (b Box) String() string {
	return fmt.Sprintf("Box{offset=%v, size=%v}", b.Offset, b.Size)
}

// Axis aligned rectangle on the (x, z) plane, covering [Offset, Offset+Size)
type Rect struct {
	Offset Vec2 `json:"offset"`
	Size   Vec2 `json:"size"`
}

func (r Rect) End() Vec2 {
	return r.Offset.Add(r.Size)
}

func (r Rect) Center() Vec2 {
	return Vec2{X: r.Offset.X + r.Size.X/2, Z: r.Offset.Z + r.Size.Z/2}
}

func (r Rect) Area() int {
	return r.Size.X * r.Size.Z
}

func (r Rect) Empty() bool {
	return r.Size.X <= 0 || r.Size.Z <= 0
}

func (r Rect) Collides(o Rect) bool {
	if r.Empty() || o.Empty() {
		return false
	}
	re, oe := r.End(), o.End()
	return r.Offset.X < oe.X && o.Offset.X < re.X &&
		r.Offset.Z < oe.Z && o.Offset.Z < re.Z
}

// Whether 'inner' lies completely inside this rectangle
func (r Rect) ContainsRect(inner Rect) bool {
	re, ie := r.End(), inner.End()
	return inner.Offset.X >= r.Offset.X && inner.Offset.Z >= r.Offset.Z &&
		ie.X <= re.X && ie.Z <= re.Z
}

func (r Rect) Contains(p Vec2) bool {
	e := r.End()
	return p.X >= r.Offset.X && p.X < e.X && p.Z >= r.Offset.Z && p.Z < e.Z
}

// Rectangle with the same center, grown by 'by' on every side
func (r Rect) Grown(by int) Rect {
	return Rect{
		Offset: Vec2{r.Offset.X - by, r.Offset.Z - by},
		Size:   Vec2{max(0, r.Size.X+2*by), max(0, r.Size.Z+2*by)},
	}
}

// Smallest rectangle covering all of 'rects', empty rect if none given
func MergeRects(rects ...Rect) Rect {
	if len(rects) == 0 {
		return Rect{}
	}
	begin, end := rects[0].Offset, rects[0].End()
	for _, r := range rects[1:] {
		e := r.End()
		begin = Vec2{min(begin.X, r.Offset.X), min(begin.Z, r.Offset.Z)}
		end = Vec2{max(end.X, e.X), max(end.Z, e.Z)}
	}
	return Rect{Offset: begin, Size: end.Sub(begin)}
}

func (r Rect) String() string {
	return fmt.Sprintf("Rect{offset=%v, size=%v}", r.Offset, r.Size)
}
