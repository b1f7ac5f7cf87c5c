package btd

import (
	"fmt"
	"math"
)

// ShapeType discriminates the three-dimensional shape variants. The values
// are the "type" strings used by the BTD document format.
type ShapeType string

const (
	ShapeCube               ShapeType = "cube"
	ShapeCylinder           ShapeType = "cylinder"
	ShapeHexagonalPrism     ShapeType = "hexagonal_prism"
	ShapeSlantedCube        ShapeType = "slanted_cube"
	ShapePrism              ShapeType = "prism"
	ShapeRectPrism          ShapeType = "rect_prism"
	ShapeSquarePrism        ShapeType = "square_prism"
	ShapeEllipticalPrism    ShapeType = "elliptical_prism"
	ShapeOblongPrism        ShapeType = "oblong_prism"
	ShapeRoundedRectPrism   ShapeType = "rounded_rect_prism"
	ShapeChamferedRectPrism ShapeType = "chamfered_rect_prism"
	ShapeNPolygonPrism      ShapeType = "n_polygon_prism"
	ShapePath               ShapeType = "path"
)

// Shape is a parsed three-dimensional shape. Values are immutable once
// returned by ParseShape. Shapes record declarative parameters only; solid
// geometry is the downstream builder's business. Bounding boxes are for
// advisory overlap diagnostics.
type Shape interface {
	Type() ShapeType
	// BoundingBox returns the axis-aligned bounds in local (untransformed)
	// coordinates.
	BoundingBox() BBox3
	// Contains tests point containment in local coordinates, boundary
	// inclusive.
	Contains(p Vec3) bool
	// Describe renders a stable constructor-style description, e.g.
	// "cube([0,0,0],10,10,1)".
	Describe() string
}

// Cube is an axis-aligned box. Position is the minimum corner; Length, Width
// and Height extend along X, Y and Z.
type Cube struct {
	Position              Vec3
	Length, Width, Height float64
}

func (c Cube) Type() ShapeType { return ShapeCube }

func (c Cube) BoundingBox() BBox3 {
	return BBox3{Min: c.Position, Max: c.Position.Add(Vec3{c.Length, c.Width, c.Height})}
}

func (c Cube) Contains(p Vec3) bool { return c.BoundingBox().Contains(p) }

func (c Cube) Describe() string {
	return fmt.Sprintf("cube(%v,%g,%g,%g)", c.Position, c.Length, c.Width, c.Height)
}

// Cylinder stands on its base circle. Position is the base center.
type Cylinder struct {
	Position       Vec3
	Radius, Height float64
}

func (c Cylinder) Type() ShapeType { return ShapeCylinder }

func (c Cylinder) BoundingBox() BBox3 {
	return BBox3{
		Min: c.Position.Add(Vec3{-c.Radius, -c.Radius, 0}),
		Max: c.Position.Add(Vec3{c.Radius, c.Radius, c.Height}),
	}
}

func (c Cylinder) Contains(p Vec3) bool {
	if p.Z < c.Position.Z || p.Z > c.Position.Z+c.Height {
		return false
	}
	dx, dy := p.X-c.Position.X, p.Y-c.Position.Y
	return dx*dx+dy*dy <= c.Radius*c.Radius
}

func (c Cylinder) Describe() string {
	return fmt.Sprintf("cylinder(%v,%g,%g)", c.Position, c.Radius, c.Height)
}

// HexagonalPrism is a regular hexagonal prism. Position is the base center;
// Diameter measures across corners (one vertex lies on the +X axis).
type HexagonalPrism struct {
	Position         Vec3
	Diameter, Height float64
}

func (h HexagonalPrism) Type() ShapeType { return ShapeHexagonalPrism }

func (h HexagonalPrism) BoundingBox() BBox3 {
	r := h.Diameter / 2
	apothem := r * math.Sqrt(3) / 2
	return BBox3{
		Min: h.Position.Add(Vec3{-r, -apothem, 0}),
		Max: h.Position.Add(Vec3{r, apothem, h.Height}),
	}
}

func (h HexagonalPrism) Contains(p Vec3) bool {
	if p.Z < h.Position.Z || p.Z > h.Position.Z+h.Height {
		return false
	}
	return regularPolygonContains(Vec2{p.X, p.Y}, Vec2{h.Position.X, h.Position.Y}, h.Diameter/2, 6)
}

func (h HexagonalPrism) Describe() string {
	return fmt.Sprintf("hexagonal_prism(%v,%g,%g)", h.Position, h.Diameter, h.Height)
}

// SlantedCube is a box whose rectangular cross-section (Width x Thickness)
// sweeps along the segment Start->End, used for slanted interconnect stubs.
type SlantedCube struct {
	Start, End       Vec3
	Width, Thickness float64
}

func (s SlantedCube) Type() ShapeType { return ShapeSlantedCube }

func (s SlantedCube) BoundingBox() BBox3 {
	half := Vec3{s.Width / 2, s.Thickness / 2, 0}
	a := BBox3{Min: Vec3{s.Start.X - half.X, s.Start.Y - half.Y, s.Start.Z}, Max: Vec3{s.Start.X + half.X, s.Start.Y + half.Y, s.Start.Z}}
	b := BBox3{Min: Vec3{s.End.X - half.X, s.End.Y - half.Y, s.End.Z}, Max: Vec3{s.End.X + half.X, s.End.Y + half.Y, s.End.Z}}
	return a.Union(b)
}

func (s SlantedCube) Contains(p Vec3) bool {
	lo, hi := s.Start.Z, s.End.Z
	if lo > hi {
		lo, hi = hi, lo
	}
	if p.Z < lo || p.Z > hi {
		return false
	}
	t := 0.0
	if s.End.Z != s.Start.Z {
		t = (p.Z - s.Start.Z) / (s.End.Z - s.Start.Z)
	}
	cx := s.Start.X + t*(s.End.X-s.Start.X)
	cy := s.Start.Y + t*(s.End.Y-s.Start.Y)
	return math.Abs(p.X-cx) <= s.Width/2 && math.Abs(p.Y-cy) <= s.Thickness/2
}

func (s SlantedCube) Describe() string {
	return fmt.Sprintf("slanted_cube(%v,%v,%g,%g)", s.Start, s.End, s.Width, s.Thickness)
}

// Prism extrudes an arbitrary two-dimensional base. Position is the base
// plane origin; the base shape's coordinates are relative to it.
type Prism struct {
	Position Vec3
	Base     Shape2D
	Height   float64
}

func (pr Prism) Type() ShapeType { return ShapePrism }

func (pr Prism) BoundingBox() BBox3 {
	b := pr.Base.Bounds()
	return BBox3{
		Min: pr.Position.Add(Vec3{b.Min.X, b.Min.Y, 0}),
		Max: pr.Position.Add(Vec3{b.Max.X, b.Max.Y, pr.Height}),
	}
}

func (pr Prism) Contains(p Vec3) bool {
	if p.Z < pr.Position.Z || p.Z > pr.Position.Z+pr.Height {
		return false
	}
	return pr.Base.Contains(Vec2{p.X - pr.Position.X, p.Y - pr.Position.Y})
}

func (pr Prism) Describe() string {
	return fmt.Sprintf("prism(%v,%s,%g)", pr.Position, pr.Base.Describe(), pr.Height)
}

// RectPrism is a box centered on Position in X/Y, standing on its base.
type RectPrism struct {
	Position              Vec3
	Length, Width, Height float64
}

func (r RectPrism) Type() ShapeType { return ShapeRectPrism }

func (r RectPrism) BoundingBox() BBox3 {
	return BBox3{
		Min: r.Position.Add(Vec3{-r.Length / 2, -r.Width / 2, 0}),
		Max: r.Position.Add(Vec3{r.Length / 2, r.Width / 2, r.Height}),
	}
}

func (r RectPrism) Contains(p Vec3) bool { return r.BoundingBox().Contains(p) }

func (r RectPrism) Describe() string {
	return fmt.Sprintf("rect_prism(%v,%g,%g,%g)", r.Position, r.Length, r.Width, r.Height)
}

// SquarePrism is a RectPrism with a square footprint.
type SquarePrism struct {
	Position     Vec3
	Side, Height float64
}

func (s SquarePrism) Type() ShapeType { return ShapeSquarePrism }

func (s SquarePrism) BoundingBox() BBox3 {
	return RectPrism{s.Position, s.Side, s.Side, s.Height}.BoundingBox()
}

func (s SquarePrism) Contains(p Vec3) bool { return s.BoundingBox().Contains(p) }

func (s SquarePrism) Describe() string {
	return fmt.Sprintf("square_prism(%v,%g,%g)", s.Position, s.Side, s.Height)
}

// EllipticalPrism has an elliptical cross-section with semi-axes RadiusX and
// RadiusY. Position is the base center.
type EllipticalPrism struct {
	Position                 Vec3
	RadiusX, RadiusY, Height float64
}

func (e EllipticalPrism) Type() ShapeType { return ShapeEllipticalPrism }

func (e EllipticalPrism) BoundingBox() BBox3 {
	return BBox3{
		Min: e.Position.Add(Vec3{-e.RadiusX, -e.RadiusY, 0}),
		Max: e.Position.Add(Vec3{e.RadiusX, e.RadiusY, e.Height}),
	}
}

func (e EllipticalPrism) Contains(p Vec3) bool {
	if p.Z < e.Position.Z || p.Z > e.Position.Z+e.Height {
		return false
	}
	if e.RadiusX == 0 || e.RadiusY == 0 {
		return false
	}
	dx := (p.X - e.Position.X) / e.RadiusX
	dy := (p.Y - e.Position.Y) / e.RadiusY
	return dx*dx+dy*dy <= 1
}

func (e EllipticalPrism) Describe() string {
	return fmt.Sprintf("elliptical_prism(%v,%g,%g,%g)", e.Position, e.RadiusX, e.RadiusY, e.Height)
}

// OblongPrism has a stadium cross-section: a Width-diameter capsule of total
// Length along the X axis. Position is the base center.
type OblongPrism struct {
	Position              Vec3
	Length, Width, Height float64
}

func (o OblongPrism) Type() ShapeType { return ShapeOblongPrism }

func (o OblongPrism) BoundingBox() BBox3 {
	return BBox3{
		Min: o.Position.Add(Vec3{-o.Length / 2, -o.Width / 2, 0}),
		Max: o.Position.Add(Vec3{o.Length / 2, o.Width / 2, o.Height}),
	}
}

func (o OblongPrism) Contains(p Vec3) bool {
	if p.Z < o.Position.Z || p.Z > o.Position.Z+o.Height {
		return false
	}
	return Oblong{Center: Vec2{o.Position.X, o.Position.Y}, Length: o.Length, Width: o.Width}.
		Contains(Vec2{p.X, p.Y})
}

func (o OblongPrism) Describe() string {
	return fmt.Sprintf("oblong_prism(%v,%g,%g,%g)", o.Position, o.Length, o.Width, o.Height)
}

// RoundedRectPrism is a RectPrism whose four footprint corners are rounded
// with Radius.
type RoundedRectPrism struct {
	Position              Vec3
	Length, Width, Height float64
	Radius                float64
}

func (r RoundedRectPrism) Type() ShapeType { return ShapeRoundedRectPrism }

func (r RoundedRectPrism) BoundingBox() BBox3 {
	return RectPrism{r.Position, r.Length, r.Width, r.Height}.BoundingBox()
}

func (r RoundedRectPrism) Contains(p Vec3) bool {
	if p.Z < r.Position.Z || p.Z > r.Position.Z+r.Height {
		return false
	}
	return RoundedRect{Center: Vec2{r.Position.X, r.Position.Y}, Width: r.Length, Height: r.Width, Radius: r.Radius}.
		Contains(Vec2{p.X, p.Y})
}

func (r RoundedRectPrism) Describe() string {
	return fmt.Sprintf("rounded_rect_prism(%v,%g,%g,%g,%g)", r.Position, r.Length, r.Width, r.Height, r.Radius)
}

// ChamferedRectPrism is a RectPrism whose four footprint corners are cut at
// 45 degrees by Chamfer.
type ChamferedRectPrism struct {
	Position              Vec3
	Length, Width, Height float64
	Chamfer               float64
}

func (c ChamferedRectPrism) Type() ShapeType { return ShapeChamferedRectPrism }

func (c ChamferedRectPrism) BoundingBox() BBox3 {
	return RectPrism{c.Position, c.Length, c.Width, c.Height}.BoundingBox()
}

func (c ChamferedRectPrism) Contains(p Vec3) bool {
	if p.Z < c.Position.Z || p.Z > c.Position.Z+c.Height {
		return false
	}
	return ChamferedRect{Center: Vec2{c.Position.X, c.Position.Y}, Width: c.Length, Height: c.Width, Chamfer: c.Chamfer}.
		Contains(Vec2{p.X, p.Y})
}

func (c ChamferedRectPrism) Describe() string {
	return fmt.Sprintf("chamfered_rect_prism(%v,%g,%g,%g,%g)", c.Position, c.Length, c.Width, c.Height, c.Chamfer)
}

// NPolygonPrism is a regular N-sided prism. Diameter measures across corners;
// one vertex lies on the +X axis.
type NPolygonPrism struct {
	Position         Vec3
	Diameter, Height float64
	Sides            int
}

func (n NPolygonPrism) Type() ShapeType { return ShapeNPolygonPrism }

func (n NPolygonPrism) BoundingBox() BBox3 {
	r := n.Diameter / 2
	return BBox3{
		Min: n.Position.Add(Vec3{-r, -r, 0}),
		Max: n.Position.Add(Vec3{r, r, n.Height}),
	}
}

func (n NPolygonPrism) Contains(p Vec3) bool {
	if p.Z < n.Position.Z || p.Z > n.Position.Z+n.Height {
		return false
	}
	return regularPolygonContains(Vec2{p.X, p.Y}, Vec2{n.Position.X, n.Position.Y}, n.Diameter/2, n.Sides)
}

func (n NPolygonPrism) Describe() string {
	return fmt.Sprintf("n_polygon_prism(%v,%g,%g,%d)", n.Position, n.Diameter, n.Height, n.Sides)
}

// Path is a routed trace segment of rectangular cross-section (Width x
// Height) running Length along +X from Position.
type Path struct {
	Position              Vec3
	Width, Height, Length float64
}

func (t Path) Type() ShapeType { return ShapePath }

func (t Path) BoundingBox() BBox3 {
	return BBox3{
		Min: t.Position.Add(Vec3{0, -t.Width / 2, 0}),
		Max: t.Position.Add(Vec3{t.Length, t.Width / 2, t.Height}),
	}
}

func (t Path) Contains(p Vec3) bool { return t.BoundingBox().Contains(p) }

func (t Path) Describe() string {
	return fmt.Sprintf("path(%v,%g,%g,%g)", t.Position, t.Width, t.Height, t.Length)
}

// regularPolygonContains tests p against a regular n-gon centered at c with
// circumradius r and a vertex on the +X axis, via per-edge half-plane tests.
func regularPolygonContains(p, c Vec2, r float64, n int) bool {
	if n < 3 || r <= 0 {
		return false
	}
	const eps = 1e-12
	for i := 0; i < n; i++ {
		a0 := 2 * math.Pi * float64(i) / float64(n)
		a1 := 2 * math.Pi * float64(i+1) / float64(n)
		v0 := Vec2{c.X + r*math.Cos(a0), c.Y + r*math.Sin(a0)}
		v1 := Vec2{c.X + r*math.Cos(a1), c.Y + r*math.Sin(a1)}
		// counter-clockwise winding: inside points keep a non-negative cross
		// product against every edge
		cross := (v1.X-v0.X)*(p.Y-v0.Y) - (v1.Y-v0.Y)*(p.X-v0.X)
		if cross < -eps {
			return false
		}
	}
	return true
}
