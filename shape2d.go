package btd

import (
	"fmt"
	"math"
)

// Shape2DType discriminates the planar shape variants.
type Shape2DType string

const (
	Shape2DCircle        Shape2DType = "circle"
	Shape2DRectangle     Shape2DType = "rectangle"
	Shape2DSquare        Shape2DType = "square"
	Shape2DEllipse       Shape2DType = "ellipse"
	Shape2DOblong        Shape2DType = "oblong"
	Shape2DRoundedRect   Shape2DType = "rounded_rect"
	Shape2DChamferedRect Shape2DType = "chamfered_rect"
	Shape2DNPolygon      Shape2DType = "n_polygon"
)

// Shape2D is a parsed planar shape, used on its own (power map areas, pad
// footprints) and as the base of an extruded Prism.
type Shape2D interface {
	Type() Shape2DType
	Bounds() BBox2
	Contains(p Vec2) bool
	Describe() string
}

// Circle is centered at Center.
type Circle struct {
	Center Vec2
	Radius float64
}

func (c Circle) Type() Shape2DType { return Shape2DCircle }

func (c Circle) Bounds() BBox2 {
	return BBox2{
		Min: Vec2{c.Center.X - c.Radius, c.Center.Y - c.Radius},
		Max: Vec2{c.Center.X + c.Radius, c.Center.Y + c.Radius},
	}
}

func (c Circle) Contains(p Vec2) bool {
	dx, dy := p.X-c.Center.X, p.Y-c.Center.Y
	return dx*dx+dy*dy <= c.Radius*c.Radius
}

func (c Circle) Describe() string {
	return fmt.Sprintf("circle(%v,%g)", c.Center, c.Radius)
}

// Rectangle is centered at Center.
type Rectangle struct {
	Center        Vec2
	Width, Height float64
}

func (r Rectangle) Type() Shape2DType { return Shape2DRectangle }

func (r Rectangle) Bounds() BBox2 {
	return BBox2{
		Min: Vec2{r.Center.X - r.Width/2, r.Center.Y - r.Height/2},
		Max: Vec2{r.Center.X + r.Width/2, r.Center.Y + r.Height/2},
	}
}

func (r Rectangle) Contains(p Vec2) bool { return r.Bounds().Contains(p) }

func (r Rectangle) Describe() string {
	return fmt.Sprintf("rectangle(%v,%g,%g)", r.Center, r.Width, r.Height)
}

// Square is a Rectangle with equal sides.
type Square struct {
	Center Vec2
	Side   float64
}

func (s Square) Type() Shape2DType { return Shape2DSquare }

func (s Square) Bounds() BBox2 { return Rectangle{s.Center, s.Side, s.Side}.Bounds() }

func (s Square) Contains(p Vec2) bool { return s.Bounds().Contains(p) }

func (s Square) Describe() string {
	return fmt.Sprintf("square(%v,%g)", s.Center, s.Side)
}

// Ellipse has semi-axes RadiusX and RadiusY.
type Ellipse struct {
	Center           Vec2
	RadiusX, RadiusY float64
}

func (e Ellipse) Type() Shape2DType { return Shape2DEllipse }

func (e Ellipse) Bounds() BBox2 {
	return BBox2{
		Min: Vec2{e.Center.X - e.RadiusX, e.Center.Y - e.RadiusY},
		Max: Vec2{e.Center.X + e.RadiusX, e.Center.Y + e.RadiusY},
	}
}

func (e Ellipse) Contains(p Vec2) bool {
	if e.RadiusX == 0 || e.RadiusY == 0 {
		return false
	}
	dx := (p.X - e.Center.X) / e.RadiusX
	dy := (p.Y - e.Center.Y) / e.RadiusY
	return dx*dx+dy*dy <= 1
}

func (e Ellipse) Describe() string {
	return fmt.Sprintf("ellipse(%v,%g,%g)", e.Center, e.RadiusX, e.RadiusY)
}

// Oblong is a stadium: a rectangle of total Length along X with semicircular
// caps of diameter Width.
type Oblong struct {
	Center        Vec2
	Length, Width float64
}

func (o Oblong) Type() Shape2DType { return Shape2DOblong }

func (o Oblong) Bounds() BBox2 {
	return Rectangle{o.Center, o.Length, o.Width}.Bounds()
}

func (o Oblong) Contains(p Vec2) bool {
	dx := math.Abs(p.X - o.Center.X)
	dy := math.Abs(p.Y - o.Center.Y)
	r := o.Width / 2
	if dy > r {
		return false
	}
	straight := o.Length/2 - r
	if straight < 0 {
		straight = 0
	}
	if dx <= straight {
		return true
	}
	cx := dx - straight
	return cx*cx+dy*dy <= r*r
}

func (o Oblong) Describe() string {
	return fmt.Sprintf("oblong(%v,%g,%g)", o.Center, o.Length, o.Width)
}

// RoundedRect has its four corners rounded with Radius.
type RoundedRect struct {
	Center        Vec2
	Width, Height float64
	Radius        float64
}

func (r RoundedRect) Type() Shape2DType { return Shape2DRoundedRect }

func (r RoundedRect) Bounds() BBox2 { return Rectangle{r.Center, r.Width, r.Height}.Bounds() }

func (r RoundedRect) Contains(p Vec2) bool {
	dx := math.Abs(p.X - r.Center.X)
	dy := math.Abs(p.Y - r.Center.Y)
	hw, hh := r.Width/2, r.Height/2
	if dx > hw || dy > hh {
		return false
	}
	ix, iy := hw-r.Radius, hh-r.Radius
	if dx <= ix || dy <= iy {
		return true
	}
	cx, cy := dx-ix, dy-iy
	return cx*cx+cy*cy <= r.Radius*r.Radius
}

func (r RoundedRect) Describe() string {
	return fmt.Sprintf("rounded_rect(%v,%g,%g,%g)", r.Center, r.Width, r.Height, r.Radius)
}

// ChamferedRect has its four corners cut at 45 degrees by Chamfer.
type ChamferedRect struct {
	Center        Vec2
	Width, Height float64
	Chamfer       float64
}

func (c ChamferedRect) Type() Shape2DType { return Shape2DChamferedRect }

func (c ChamferedRect) Bounds() BBox2 { return Rectangle{c.Center, c.Width, c.Height}.Bounds() }

func (c ChamferedRect) Contains(p Vec2) bool {
	dx := math.Abs(p.X - c.Center.X)
	dy := math.Abs(p.Y - c.Center.Y)
	hw, hh := c.Width/2, c.Height/2
	if dx > hw || dy > hh {
		return false
	}
	// corner cut: x + y <= hw + hh - chamfer in the corner quadrant
	return dx+dy <= hw+hh-c.Chamfer
}

func (c ChamferedRect) Describe() string {
	return fmt.Sprintf("chamfered_rect(%v,%g,%g,%g)", c.Center, c.Width, c.Height, c.Chamfer)
}

// NPolygon is a regular N-sided polygon. Diameter measures across corners;
// one vertex lies on the +X axis.
type NPolygon struct {
	Center   Vec2
	Diameter float64
	Sides    int
}

func (n NPolygon) Type() Shape2DType { return Shape2DNPolygon }

func (n NPolygon) Bounds() BBox2 {
	r := n.Diameter / 2
	return BBox2{
		Min: Vec2{n.Center.X - r, n.Center.Y - r},
		Max: Vec2{n.Center.X + r, n.Center.Y + r},
	}
}

func (n NPolygon) Contains(p Vec2) bool {
	return regularPolygonContains(p, n.Center, n.Diameter/2, n.Sides)
}

func (n NPolygon) Describe() string {
	return fmt.Sprintf("n_polygon(%v,%g,%d)", n.Center, n.Diameter, n.Sides)
}
