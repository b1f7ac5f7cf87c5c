package btd_test

import (
	"reflect"
	"testing"

	btd "github.com/reoring/btdconv"
)

func testShapes(t *testing.T) map[string]btd.Shape {
	t.Helper()
	die, err := btd.ParseShape(map[string]any{"type": "cube", "length": 10.0, "width": 10.0, "height": 0.5})
	if err != nil {
		t.Fatalf("shape: %v", err)
	}
	return map[string]btd.Shape{"die_shape": die}
}

func testMaterials(t *testing.T) map[string]btd.Material {
	t.Helper()
	parsed, iss := btd.ParseBaseMaterials([]any{
		map[string]any{"name": "Si", "thermal_conductivity": 150.0},
	}, btd.Root())
	if iss.Fatal() {
		t.Fatalf("materials: %v", iss)
	}
	out := map[string]btd.Material{}
	for k, v := range parsed {
		out[k] = v
	}
	return out
}

func stackDoc() []any {
	return []any{map[string]any{
		"id":        "die_stack",
		"shape_ref": "die_shape",
		"children": []any{
			map[string]any{"id": "layer_1", "shape_ref": "die_shape", "material_ref": "Si"},
			map[string]any{"id": "layer_2", "shape_ref": "die_shape", "material_ref": "Si"},
		},
	}}
}

func TestGeometryTreeAndPaths(t *testing.T) {
	roots, iss := btd.ParseGeometry(stackDoc(), btd.RoleStackedDie, testShapes(t), testMaterials(t), btd.Root().Field("stacked_die_sections"))
	if iss.Fatal() {
		t.Fatalf("parse: %v", iss)
	}
	if len(roots) != 1 {
		t.Fatalf("roots = %d", len(roots))
	}
	root := roots[0]
	if root.Path() != "die_stack" || root.ParentID() != "" {
		t.Fatalf("root path/parent = %q/%q", root.Path(), root.ParentID())
	}
	if len(root.Children) != 2 {
		t.Fatalf("children = %d", len(root.Children))
	}
	l2 := root.Children[1]
	if l2.Path() != "die_stack/layer_2" {
		t.Fatalf("path = %q", l2.Path())
	}
	if l2.ParentID() != "die_stack" || l2.StackOrder != 1 {
		t.Fatalf("parent/order = %q/%d", l2.ParentID(), l2.StackOrder)
	}
	if l2.Material == nil || l2.Material.Name() != "Si" {
		t.Fatalf("material not wired: %+v", l2.Material)
	}
}

func TestGeometryUnresolvedMaterialNamesComponent(t *testing.T) {
	doc := []any{map[string]any{
		"id": "die_stack", "shape_ref": "die_shape",
		"children": []any{
			map[string]any{"id": "layer_2", "shape_ref": "die_shape", "material_ref": "Au"},
		},
	}}
	_, iss := btd.ParseGeometry(doc, btd.RoleStackedDie, testShapes(t), testMaterials(t), btd.Root())
	it, ok := findIssue(iss, btd.CodeUnresolvedMaterialReference)
	if !ok {
		t.Fatalf("want unresolved_material_reference, got %v", iss)
	}
	if it.Path != "die_stack/layer_2" {
		t.Fatalf("path = %q", it.Path)
	}
	if it.Params["material"] != "Au" {
		t.Fatalf("params = %v", it.Params)
	}
}

func TestGeometryUnresolvedShape(t *testing.T) {
	doc := []any{map[string]any{"id": "lid", "shape_ref": "lid_shape"}}
	_, iss := btd.ParseGeometry(doc, btd.RolePackage, testShapes(t), testMaterials(t), btd.Root())
	it, ok := findIssue(iss, btd.CodeUnresolvedShapeReference)
	if !ok || it.Params["shape"] != "lid_shape" {
		t.Fatalf("want unresolved_shape_reference for lid_shape, got %v", iss)
	}
}

func TestGeometryInlineShape(t *testing.T) {
	doc := []any{map[string]any{
		"id":    "tim",
		"shape": map[string]any{"type": "cube", "length": 1.0, "width": 1.0, "height": 0.1},
	}}
	roots, iss := btd.ParseGeometry(doc, btd.RolePackage, nil, testMaterials(t), btd.Root())
	if iss.Fatal() {
		t.Fatalf("parse: %v", iss)
	}
	if roots[0].Shape == nil || roots[0].ShapeRef != "" {
		t.Fatalf("inline shape not wired: %+v", roots[0])
	}
}

func TestGeometryCyclicID(t *testing.T) {
	doc := []any{map[string]any{
		"id": "a", "shape_ref": "die_shape",
		"children": []any{
			map[string]any{"id": "a", "shape_ref": "die_shape"},
		},
	}}
	_, iss := btd.ParseGeometry(doc, btd.RoleSection, testShapes(t), testMaterials(t), btd.Root())
	if _, ok := findIssue(iss, btd.CodeCyclicGeometryReference); !ok {
		t.Fatalf("want cyclic_geometry_reference, got %v", iss)
	}
	if !iss.Fatal() {
		t.Fatalf("cycle must be fatal")
	}
}

func TestGeometryTransformDefaults(t *testing.T) {
	doc := []any{map[string]any{
		"id": "die", "shape_ref": "die_shape",
		"transform": map[string]any{
			"position": []any{1.0, 2.0, 3.0},
			"scale":    map[string]any{"x": 2.0},
		},
	}}
	roots, iss := btd.ParseGeometry(doc, btd.RoleSection, testShapes(t), testMaterials(t), btd.Root())
	if iss.Fatal() {
		t.Fatalf("parse: %v", iss)
	}
	tr := roots[0].Transform
	if tr.Position != (btd.Vec3{X: 1, Y: 2, Z: 3}) {
		t.Fatalf("position = %+v", tr.Position)
	}
	if tr.Rotation != (btd.Vec3{}) {
		t.Fatalf("rotation = %+v", tr.Rotation)
	}
	// unspecified scale axes stay 1, not 0
	if tr.Scale != (btd.Vec3{X: 2, Y: 1, Z: 1}) {
		t.Fatalf("scale = %+v", tr.Scale)
	}
}

func TestGeometryNoTransformIsIdentity(t *testing.T) {
	doc := []any{map[string]any{"id": "die", "shape_ref": "die_shape"}}
	roots, iss := btd.ParseGeometry(doc, btd.RoleSection, testShapes(t), testMaterials(t), btd.Root())
	if iss.Fatal() {
		t.Fatalf("parse: %v", iss)
	}
	if !roots[0].Transform.IsIdentity() {
		t.Fatalf("transform = %+v", roots[0].Transform)
	}
}

func TestGeometryUnknownKeyPolicy(t *testing.T) {
	doc := []any{map[string]any{"id": "die", "shape_ref": "die_shape", "color": "red"}}

	_, warnIss := btd.ParseGeometry(doc, btd.RoleSection, testShapes(t), testMaterials(t), btd.Root())
	it, ok := findIssue(warnIss, btd.CodeUnknownKey)
	if !ok || it.Severity != btd.SeverityWarn {
		t.Fatalf("default policy should warn, got %v", warnIss)
	}

	_, strictIss := btd.ParseGeometry(doc, btd.RoleSection, testShapes(t), testMaterials(t), btd.Root(),
		btd.WithUnknownKeys(btd.UnknownStrict))
	if !strictIss.Fatal() {
		t.Fatalf("strict policy should be fatal, got %v", strictIss)
	}

	_, quiet := btd.ParseGeometry(doc, btd.RoleSection, testShapes(t), testMaterials(t), btd.Root(),
		btd.WithUnknownKeys(btd.UnknownIgnore))
	if _, ok := findIssue(quiet, btd.CodeUnknownKey); ok {
		t.Fatalf("ignore policy should be silent, got %v", quiet)
	}
}

func TestGeometryParallelMatchesSequential(t *testing.T) {
	var doc []any
	for _, id := range []string{"s1", "s2", "s3", "s4", "s5", "s6"} {
		doc = append(doc, map[string]any{
			"id": id, "shape_ref": "die_shape",
			"children": []any{
				map[string]any{"id": id + "_a", "shape_ref": "die_shape"},
				map[string]any{"id": id + "_b", "shape_ref": "missing"},
			},
		})
	}
	shapes, materials := testShapes(t), testMaterials(t)

	collect := func(opts ...btd.Option) ([]string, btd.Issues) {
		roots, iss := btd.ParseGeometry(doc, btd.RoleSection, shapes, materials, btd.Root(), opts...)
		var paths []string
		for _, r := range roots {
			r.Walk(func(c *btd.Component) bool {
				paths = append(paths, c.Path())
				return true
			})
		}
		return paths, iss
	}

	seqPaths, seqIss := collect()
	parPaths, parIss := collect(btd.WithParallelism(4))

	if !reflect.DeepEqual(seqPaths, parPaths) {
		t.Fatalf("paths differ:\nseq: %v\npar: %v", seqPaths, parPaths)
	}
	if len(seqIss) != len(parIss) {
		t.Fatalf("issue counts differ: %d vs %d", len(seqIss), len(parIss))
	}
	for i := range seqIss {
		if seqIss[i].Path != parIss[i].Path || seqIss[i].Code != parIss[i].Code {
			t.Fatalf("issue %d differs: %+v vs %+v", i, seqIss[i], parIss[i])
		}
	}
}
