package btd_test

import (
	"errors"
	"testing"

	btd "github.com/reoring/btdconv"
)

func issuesOf(t *testing.T, err error) btd.Issues {
	t.Helper()
	if err == nil {
		t.Fatalf("expected an error")
	}
	iss, ok := btd.AsIssues(err)
	if !ok {
		t.Fatalf("expected Issues, got %T: %v", err, err)
	}
	return iss
}

func findIssue(iss btd.Issues, code string) (btd.Issue, bool) {
	for _, it := range iss {
		if it.Code == code {
			return it, true
		}
	}
	return btd.Issue{}, false
}

func TestParseShapeCube(t *testing.T) {
	s, err := btd.ParseShape(map[string]any{
		"type":     "cube",
		"position": []any{1, 2, 3},
		"length":   10.0,
		"width":    4.0,
		"height":   2.0,
	})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if s.Type() != btd.ShapeCube {
		t.Fatalf("type = %q", s.Type())
	}
	bb := s.BoundingBox()
	if bb.Min != (btd.Vec3{X: 1, Y: 2, Z: 3}) || bb.Max != (btd.Vec3{X: 11, Y: 6, Z: 5}) {
		t.Fatalf("bbox = %+v", bb)
	}
	if !s.Contains(btd.Vec3{X: 5, Y: 3, Z: 4}) {
		t.Fatalf("interior point not contained")
	}
	if s.Contains(btd.Vec3{X: 12, Y: 3, Z: 4}) {
		t.Fatalf("exterior point contained")
	}
}

func TestParseShapePositionDefaultsToOrigin(t *testing.T) {
	s, err := btd.ParseShape(map[string]any{"type": "cylinder", "radius": 1.0, "height": 2.0})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !s.Contains(btd.Vec3{X: 0.5, Y: 0, Z: 1}) {
		t.Fatalf("point inside cylinder at origin not contained")
	}
}

func TestParseShapeUnknownType(t *testing.T) {
	_, err := btd.ParseShape(map[string]any{"type": "torus", "radius": 1.0})
	iss := issuesOf(t, err)
	if _, ok := findIssue(iss, btd.CodeUnknownShapeType); !ok {
		t.Fatalf("want unknown_shape_type, got %v", iss)
	}
}

func TestParseShapeMissingFieldNamesIt(t *testing.T) {
	_, err := btd.ParseShape(map[string]any{"type": "cube", "length": 1.0, "width": 1.0})
	iss := issuesOf(t, err)
	it, ok := findIssue(iss, btd.CodeInvalidShapeParameters)
	if !ok {
		t.Fatalf("want invalid_shape_parameters, got %v", iss)
	}
	if it.Params["field"] != "height" {
		t.Fatalf("field = %v", it.Params["field"])
	}
}

func TestParseShapeCollectsEveryBadField(t *testing.T) {
	_, err := btd.ParseShape(map[string]any{"type": "cube", "length": -1.0})
	iss := issuesOf(t, err)
	// negative length plus missing width and height
	if len(iss) != 3 {
		t.Fatalf("want 3 issues, got %d: %v", len(iss), iss)
	}
}

func TestParseShapePrismWithCircleBase(t *testing.T) {
	s, err := btd.ParseShape(map[string]any{
		"type":     "prism",
		"position": map[string]any{"z": 1.0},
		"base":     map[string]any{"type": "circle", "radius": 2.0},
		"height":   3.0,
	})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !s.Contains(btd.Vec3{X: 1, Y: 1, Z: 2}) {
		t.Fatalf("interior point not contained")
	}
	if s.Contains(btd.Vec3{X: 1, Y: 1, Z: 0.5}) {
		t.Fatalf("point below base contained")
	}
}

func TestParseShapeRoundedRectRadiusBound(t *testing.T) {
	_, err := btd.ParseShape(map[string]any{
		"type": "rounded_rect_prism", "length": 4.0, "width": 2.0, "height": 1.0, "radius": 1.5,
	})
	iss := issuesOf(t, err)
	it, ok := findIssue(iss, btd.CodeInvalidShapeParameters)
	if !ok || it.Params["field"] != "radius" {
		t.Fatalf("want radius bound issue, got %v", iss)
	}
}

func TestHexagonalPrismContains(t *testing.T) {
	s, err := btd.ParseShape(map[string]any{"type": "hexagonal_prism", "diameter": 2.0, "height": 1.0})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	// a vertex lies on the +X axis at r=1; the flat side is at apothem ~0.866
	if !s.Contains(btd.Vec3{X: 0.9, Y: 0, Z: 0.5}) {
		t.Fatalf("point near +X vertex not contained")
	}
	if s.Contains(btd.Vec3{X: 0, Y: 0.9, Z: 0.5}) {
		t.Fatalf("point beyond apothem contained")
	}
}

func TestParseShape2DNPolygonSides(t *testing.T) {
	_, err := btd.ParseShape2D(map[string]any{"type": "n_polygon", "diameter": 2.0, "sides": 2})
	iss := issuesOf(t, err)
	it, ok := findIssue(iss, btd.CodeInvalidShapeParameters)
	if !ok || it.Params["field"] != "sides" {
		t.Fatalf("want sides issue, got %v", iss)
	}
}

func TestParseShapeErrorsAreIssues(t *testing.T) {
	_, err := btd.ParseShape("not an object")
	var iss btd.Issues
	if !errors.As(err, &iss) {
		t.Fatalf("error does not unwrap to Issues: %T", err)
	}
}
