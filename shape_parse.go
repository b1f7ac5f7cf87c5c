package btd

import (
	"github.com/reoring/btdconv/i18n"
	"github.com/reoring/btdconv/internal/jsontext"
)

// ParseShape decodes one three-dimensional shape fragment. The fragment must
// be a JSON object carrying a recognized "type" discriminator; missing or
// malformed required parameters fail with invalid_shape_parameters naming the
// offending field. ParseShape is a pure function and the returned Shape is an
// immutable value.
func ParseShape(fragment any) (Shape, error) {
	s, iss := parseShapeAt(fragment, Root())
	if len(iss) > 0 {
		return nil, iss
	}
	return s, nil
}

// ParseShape2D decodes one planar shape fragment.
func ParseShape2D(fragment any) (Shape2D, error) {
	s, iss := parseShape2DAt(fragment, Root())
	if len(iss) > 0 {
		return nil, iss
	}
	return s, nil
}

func parseShapeAt(fragment any, at PathRef) (Shape, Issues) {
	obj, ok := jsontext.Object(fragment)
	if !ok {
		return nil, Issues{at.Issue(CodeInvalidType, "shape fragment must be an object")}
	}
	typ, ok := jsontext.String(obj["type"])
	if !ok || typ == "" {
		return nil, Issues{at.Field("type").Issue(CodeUnknownShapeType, i18n.T(CodeUnknownShapeType, nil), "got", obj["type"])}
	}

	r := &shapeFields{obj: obj, at: at}
	var s Shape
	switch ShapeType(typ) {
	case ShapeCube:
		s = Cube{Position: r.vec3("position"), Length: r.size("length"), Width: r.size("width"), Height: r.size("height")}
	case ShapeCylinder:
		s = Cylinder{Position: r.vec3("position"), Radius: r.size("radius"), Height: r.size("height")}
	case ShapeHexagonalPrism:
		s = HexagonalPrism{Position: r.vec3("position"), Diameter: r.size("diameter"), Height: r.size("height")}
	case ShapeSlantedCube:
		s = SlantedCube{Start: r.reqVec3("start"), End: r.reqVec3("end"), Width: r.size("width"), Thickness: r.size("thickness")}
	case ShapePrism:
		base, baseIss := parseShape2DAt(obj["base"], at.Field("base"))
		r.iss = AppendIssues(r.iss, baseIss...)
		if obj["base"] == nil {
			r.iss = AppendIssues(r.iss, r.missing("base"))
		}
		s = Prism{Position: r.vec3("position"), Base: base, Height: r.size("height")}
	case ShapeRectPrism:
		s = RectPrism{Position: r.vec3("position"), Length: r.size("length"), Width: r.size("width"), Height: r.size("height")}
	case ShapeSquarePrism:
		s = SquarePrism{Position: r.vec3("position"), Side: r.size("side"), Height: r.size("height")}
	case ShapeEllipticalPrism:
		s = EllipticalPrism{Position: r.vec3("position"), RadiusX: r.size("radius_x"), RadiusY: r.size("radius_y"), Height: r.size("height")}
	case ShapeOblongPrism:
		s = OblongPrism{Position: r.vec3("position"), Length: r.size("length"), Width: r.size("width"), Height: r.size("height")}
	case ShapeRoundedRectPrism:
		v := RoundedRectPrism{Position: r.vec3("position"), Length: r.size("length"), Width: r.size("width"), Height: r.size("height"), Radius: r.size("radius")}
		if len(r.iss) == 0 && v.Radius > min(v.Length, v.Width)/2 {
			r.iss = AppendIssues(r.iss, r.invalid("radius", "corner radius exceeds half the footprint"))
		}
		s = v
	case ShapeChamferedRectPrism:
		v := ChamferedRectPrism{Position: r.vec3("position"), Length: r.size("length"), Width: r.size("width"), Height: r.size("height"), Chamfer: r.size("chamfer")}
		if len(r.iss) == 0 && v.Chamfer > min(v.Length, v.Width)/2 {
			r.iss = AppendIssues(r.iss, r.invalid("chamfer", "chamfer exceeds half the footprint"))
		}
		s = v
	case ShapeNPolygonPrism:
		s = NPolygonPrism{Position: r.vec3("position"), Diameter: r.size("diameter"), Height: r.size("height"), Sides: r.sides("sides")}
	case ShapePath:
		s = Path{Position: r.vec3("position"), Width: r.size("width"), Height: r.size("height"), Length: r.size("length")}
	default:
		return nil, Issues{at.Field("type").Issue(CodeUnknownShapeType, i18n.T(CodeUnknownShapeType, nil), "type", typ)}
	}

	if len(r.iss) > 0 {
		return nil, r.iss
	}
	return s, nil
}

func parseShape2DAt(fragment any, at PathRef) (Shape2D, Issues) {
	obj, ok := jsontext.Object(fragment)
	if !ok {
		return nil, Issues{at.Issue(CodeInvalidType, "shape fragment must be an object")}
	}
	typ, ok := jsontext.String(obj["type"])
	if !ok || typ == "" {
		return nil, Issues{at.Field("type").Issue(CodeUnknownShapeType, i18n.T(CodeUnknownShapeType, nil), "got", obj["type"])}
	}

	r := &shapeFields{obj: obj, at: at}
	var s Shape2D
	switch Shape2DType(typ) {
	case Shape2DCircle:
		s = Circle{Center: r.vec2("center"), Radius: r.size("radius")}
	case Shape2DRectangle:
		s = Rectangle{Center: r.vec2("center"), Width: r.size("width"), Height: r.size("height")}
	case Shape2DSquare:
		s = Square{Center: r.vec2("center"), Side: r.size("side")}
	case Shape2DEllipse:
		s = Ellipse{Center: r.vec2("center"), RadiusX: r.size("radius_x"), RadiusY: r.size("radius_y")}
	case Shape2DOblong:
		s = Oblong{Center: r.vec2("center"), Length: r.size("length"), Width: r.size("width")}
	case Shape2DRoundedRect:
		v := RoundedRect{Center: r.vec2("center"), Width: r.size("width"), Height: r.size("height"), Radius: r.size("radius")}
		if len(r.iss) == 0 && v.Radius > min(v.Width, v.Height)/2 {
			r.iss = AppendIssues(r.iss, r.invalid("radius", "corner radius exceeds half the footprint"))
		}
		s = v
	case Shape2DChamferedRect:
		v := ChamferedRect{Center: r.vec2("center"), Width: r.size("width"), Height: r.size("height"), Chamfer: r.size("chamfer")}
		if len(r.iss) == 0 && v.Chamfer > min(v.Width, v.Height)/2 {
			r.iss = AppendIssues(r.iss, r.invalid("chamfer", "chamfer exceeds half the footprint"))
		}
		s = v
	case Shape2DNPolygon:
		s = NPolygon{Center: r.vec2("center"), Diameter: r.size("diameter"), Sides: r.sides("sides")}
	default:
		return nil, Issues{at.Field("type").Issue(CodeUnknownShapeType, i18n.T(CodeUnknownShapeType, nil), "type", typ)}
	}

	if len(r.iss) > 0 {
		return nil, r.iss
	}
	return s, nil
}

// shapeFields accumulates issues while pulling typed parameters out of one
// shape fragment, so one bad fragment reports every bad field at once.
type shapeFields struct {
	obj map[string]any
	at  PathRef
	iss Issues
}

func (r *shapeFields) missing(name string) Issue {
	return r.at.Field(name).Issue(CodeInvalidShapeParameters,
		i18n.T(CodeInvalidShapeParameters, map[string]string{"field": name}), "field", name, "reason", "missing")
}

func (r *shapeFields) invalid(name, reason string) Issue {
	return r.at.Field(name).Issue(CodeInvalidShapeParameters,
		i18n.T(CodeInvalidShapeParameters, map[string]string{"field": name}), "field", name, "reason", reason)
}

// size reads a required, finite, non-negative dimension.
func (r *shapeFields) size(name string) float64 {
	v, present := r.obj[name]
	if !present {
		r.iss = AppendIssues(r.iss, r.missing(name))
		return 0
	}
	f, ok := jsontext.Number(v)
	if !ok {
		r.iss = AppendIssues(r.iss, r.invalid(name, "not a finite number"))
		return 0
	}
	if f < 0 {
		r.iss = AppendIssues(r.iss, r.invalid(name, "negative"))
		return 0
	}
	return f
}

// sides reads a required vertex count (>= 3).
func (r *shapeFields) sides(name string) int {
	v, present := r.obj[name]
	if !present {
		r.iss = AppendIssues(r.iss, r.missing(name))
		return 0
	}
	n, ok := jsontext.Int(v)
	if !ok || n < 3 {
		r.iss = AppendIssues(r.iss, r.invalid(name, "must be an integer >= 3"))
		return 0
	}
	return n
}

// vec3 reads an optional position; absent defaults to the origin. Accepts
// both {"x":..,"y":..,"z":..} and [x,y,z] spellings.
func (r *shapeFields) vec3(name string) Vec3 {
	v, present := r.obj[name]
	if !present {
		return Vec3{}
	}
	return r.decodeVec3(name, v)
}

// reqVec3 reads a mandatory point.
func (r *shapeFields) reqVec3(name string) Vec3 {
	v, present := r.obj[name]
	if !present {
		r.iss = AppendIssues(r.iss, r.missing(name))
		return Vec3{}
	}
	return r.decodeVec3(name, v)
}

func (r *shapeFields) decodeVec3(name string, v any) Vec3 {
	if obj, ok := jsontext.Object(v); ok {
		x, okx := coordOrZero(obj, "x")
		y, oky := coordOrZero(obj, "y")
		z, okz := coordOrZero(obj, "z")
		if !okx || !oky || !okz {
			r.iss = AppendIssues(r.iss, r.invalid(name, "coordinates must be finite numbers"))
			return Vec3{}
		}
		return Vec3{x, y, z}
	}
	if arr, ok := jsontext.Array(v); ok && len(arr) == 3 {
		x, okx := jsontext.Number(arr[0])
		y, oky := jsontext.Number(arr[1])
		z, okz := jsontext.Number(arr[2])
		if !okx || !oky || !okz {
			r.iss = AppendIssues(r.iss, r.invalid(name, "coordinates must be finite numbers"))
			return Vec3{}
		}
		return Vec3{x, y, z}
	}
	r.iss = AppendIssues(r.iss, r.invalid(name, "expected {x,y,z} or [x,y,z]"))
	return Vec3{}
}

func (r *shapeFields) vec2(name string) Vec2 {
	v, present := r.obj[name]
	if !present {
		return Vec2{}
	}
	if obj, ok := jsontext.Object(v); ok {
		x, okx := coordOrZero(obj, "x")
		y, oky := coordOrZero(obj, "y")
		if !okx || !oky {
			r.iss = AppendIssues(r.iss, r.invalid(name, "coordinates must be finite numbers"))
			return Vec2{}
		}
		return Vec2{x, y}
	}
	if arr, ok := jsontext.Array(v); ok && len(arr) == 2 {
		x, okx := jsontext.Number(arr[0])
		y, oky := jsontext.Number(arr[1])
		if !okx || !oky {
			r.iss = AppendIssues(r.iss, r.invalid(name, "coordinates must be finite numbers"))
			return Vec2{}
		}
		return Vec2{x, y}
	}
	r.iss = AppendIssues(r.iss, r.invalid(name, "expected {x,y} or [x,y]"))
	return Vec2{}
}

func coordOrZero(obj map[string]any, key string) (float64, bool) {
	v, present := obj[key]
	if !present {
		return 0, true
	}
	return jsontext.Number(v)
}
