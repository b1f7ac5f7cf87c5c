package btd

import "fmt"

// Vec3 is a point or offset in model space. Units follow the input document
// (the BTD format uses millimeters).
type Vec3 struct {
	X, Y, Z float64
}

func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

func (v Vec3) String() string { return fmt.Sprintf("[%g,%g,%g]", v.X, v.Y, v.Z) }

// Vec2 is a point in a planar section.
type Vec2 struct {
	X, Y float64
}

func (v Vec2) String() string { return fmt.Sprintf("[%g,%g]", v.X, v.Y) }

// BBox3 is an axis-aligned bounding box.
type BBox3 struct {
	Min, Max Vec3
}

// Contains reports whether p lies inside the box (boundary inclusive).
func (b BBox3) Contains(p Vec3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// Union grows the box to cover o.
func (b BBox3) Union(o BBox3) BBox3 {
	return BBox3{
		Min: Vec3{min(b.Min.X, o.Min.X), min(b.Min.Y, o.Min.Y), min(b.Min.Z, o.Min.Z)},
		Max: Vec3{max(b.Max.X, o.Max.X), max(b.Max.Y, o.Max.Y), max(b.Max.Z, o.Max.Z)},
	}
}

// Intersects reports whether two boxes overlap. Used for advisory overlap
// diagnostics, never as hard validation.
func (b BBox3) Intersects(o BBox3) bool {
	return b.Min.X <= o.Max.X && b.Max.X >= o.Min.X &&
		b.Min.Y <= o.Max.Y && b.Max.Y >= o.Min.Y &&
		b.Min.Z <= o.Max.Z && b.Max.Z >= o.Min.Z
}

// BBox2 is an axis-aligned rectangle in a planar section.
type BBox2 struct {
	Min, Max Vec2
}

func (b BBox2) Contains(p Vec2) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y
}

func (b BBox2) Union(o BBox2) BBox2 {
	return BBox2{
		Min: Vec2{min(b.Min.X, o.Min.X), min(b.Min.Y, o.Min.Y)},
		Max: Vec2{max(b.Max.X, o.Max.X), max(b.Max.Y, o.Max.Y)},
	}
}
