package btd_test

import (
	"errors"
	"reflect"
	"testing"

	btd "github.com/reoring/btdconv"
)

const demoDoc = `{
  "model_name": "hbm_demo",
  "future_section": {"ignored": true},
  "materials": {
    "base_materials": [
      {"name": "Si", "thermal_conductivity": [[20, 156], [100, 120]], "density": 2330, "specific_heat": 700},
      {"name": "resin", "thermal_conductivity": 0.3, "density": 1200, "specific_heat": 1000},
      {"name": "silica", "thermal_conductivity": 1.4, "density": 2200, "specific_heat": 700}
    ],
    "composite_materials": [
      {"name": "underfill", "materials": [
        {"material": "resin", "fraction": 0.6},
        {"material": "silica", "fraction": 0.4}
      ]}
    ],
    "object_materials": [
      {"object": "die_stack", "material": "underfill"}
    ]
  },
  "shapes": {
    "die_shape": {"type": "cube", "length": 10, "width": 10, "height": 0.5}
  },
  "geometry": {
    "stacked_die_sections": [
      {
        "id": "die_stack",
        "shape_ref": "die_shape",
        "children": [
          {"id": "layer_1", "shape_ref": "die_shape", "material_ref": "Si"},
          {"id": "layer_2", "shape_ref": "die_shape", "material_ref": "Si",
           "transform": {"position": [0, 0, 0.5]}}
        ]
      }
    ],
    "package_components": [
      {"id": "lid", "shape": {"type": "rect_prism", "length": 20, "width": 20, "height": 1},
       "material_ref": "silica"}
    ]
  },
  "parameters": {"unit": "mm", "scale": 1.0},
  "thermal_parameters": {"ambient_temperature": 300, "solver_type": "stationary"},
  "power_maps": {
    "core0": {
      "object": "layer_1",
      "base_z": 0.0,
      "thickness": 0.05,
      "xcoor": [0, 5, 10],
      "ycoor": [0, 10],
      "power": [[2.0, 3.0]]
    }
  },
  "netlist": {
    "nodes": [
      {"id": "n_die", "component": "layer_1", "kind": "die"},
      {"id": "n_amb", "kind": "ambient"}
    ],
    "edges": [
      {"from": "n_die", "to": "n_amb", "resistance": 4.2}
    ]
  }
}`

func TestParseEndToEnd(t *testing.T) {
	info, err := btd.Parse(btd.JSONBytes([]byte(demoDoc)))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if info.State() != btd.StateFrozen {
		t.Fatalf("state = %v", info.State())
	}
	if info.Name() != "hbm_demo" {
		t.Fatalf("name = %q", info.Name())
	}

	s := info.Summary()
	if s.BaseMaterials != 3 || s.Composites != 1 || s.Components != 4 || s.PowerMaps != 1 {
		t.Fatalf("summary = %+v", s)
	}

	si, ok := info.Material("Si")
	if !ok {
		t.Fatalf("Si missing")
	}
	if got := si.ConductivityAt(60).X; got != 138 {
		t.Fatalf("Si k(60) = %g", got)
	}
	uf, _ := info.Material("underfill")
	if got := uf.ConductivityAt(300).X; got != 0.6*0.3+0.4*1.4 {
		t.Fatalf("underfill k = %g", got)
	}

	l2, ok := info.Component("layer_2")
	if !ok || l2.Path() != "die_stack/layer_2" {
		t.Fatalf("layer_2 lookup: %v %v", l2, ok)
	}
	if l2.Transform.Position != (btd.Vec3{Z: 0.5}) {
		t.Fatalf("transform = %+v", l2.Transform)
	}

	if got := info.ThermalParams().AmbientTemperature(); got != 300 {
		t.Fatalf("ambient = %g", got)
	}
	pm, _ := info.PowerMap("core0")
	if got := pm.TotalPower(); got != 2*50+3*50 {
		t.Fatalf("total power = %g", got)
	}
	if info.Netlist() == nil || len(info.Netlist().Edges) != 1 {
		t.Fatalf("netlist not parsed")
	}
	// unknown top-level key is ignored, not even a warning
	for _, w := range info.Warnings() {
		if w.Params["key"] == "future_section" {
			t.Fatalf("top-level unknown key should be ignored: %v", w)
		}
	}
}

func TestParseIsIdempotent(t *testing.T) {
	a, err := btd.Parse(btd.JSONBytes([]byte(demoDoc)))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	b, err := btd.Parse(btd.JSONBytes([]byte(demoDoc)))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !reflect.DeepEqual(a.Summary(), b.Summary()) {
		t.Fatalf("summaries differ: %+v vs %+v", a.Summary(), b.Summary())
	}
	if !reflect.DeepEqual(componentPaths(a), componentPaths(b)) {
		t.Fatalf("component sets differ")
	}
}

func componentPaths(info *btd.ThermalInfo) []string {
	var out []string
	info.Walk(func(c *btd.Component) bool {
		out = append(out, c.Path())
		return true
	})
	return out
}

func TestParseUnknownNestedKeyWarns(t *testing.T) {
	doc := `{
	  "materials": {"base_materials": [], "paints": []},
	  "geometry": {}
	}`
	info, err := btd.Parse(btd.JSONBytes([]byte(doc)))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	it, ok := findIssue(info.Warnings(), btd.CodeUnknownKey)
	if !ok || it.Params["key"] != "paints" {
		t.Fatalf("want unknown key warning for paints, got %v", info.Warnings())
	}
}

func TestParseReportsFailingSection(t *testing.T) {
	doc := `{
	  "materials": {
	    "base_materials": [
	      {"name": "bad", "thermal_conductivity": [[100, 380], [20, 400]]}
	    ]
	  }
	}`
	_, err := btd.Parse(btd.JSONBytes([]byte(doc)))
	var pe *btd.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("want *ParseError, got %v", err)
	}
	if pe.Section != "materials" {
		t.Fatalf("section = %q", pe.Section)
	}
	if _, ok := findIssue(pe.Issues, btd.CodeInvalidPropertyTable); !ok {
		t.Fatalf("issues = %v", pe.Issues)
	}
}

func TestParseMalformedJSONCarriesOffset(t *testing.T) {
	_, err := btd.Parse(btd.JSONBytes([]byte(`{"model_name": }`)))
	var pe *btd.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("want *ParseError, got %v", err)
	}
	if pe.Section != "document" || pe.Offset < 0 {
		t.Fatalf("section/offset = %q/%d", pe.Section, pe.Offset)
	}
}

func TestParsePowerMapGridShape(t *testing.T) {
	doc := `{
	  "geometry": {},
	  "power_maps": {
	    "bad": {"object": "x", "xcoor": [0, 1, 2], "ycoor": [0, 1], "power": [[1]]}
	  }
	}`
	_, err := btd.Parse(btd.JSONBytes([]byte(doc)))
	var pe *btd.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("want *ParseError, got %v", err)
	}
	if pe.Section != "power_maps" {
		t.Fatalf("section = %q", pe.Section)
	}
}

func TestParseValidationFailureDiscardsModel(t *testing.T) {
	doc := `{
	  "materials": {
	    "base_materials": [{"name": "Si", "thermal_conductivity": 150}],
	    "object_materials": [{"object": "missing_die", "material": "Si"}]
	  },
	  "geometry": {}
	}`
	info, err := btd.Parse(btd.JSONBytes([]byte(doc)))
	var ve *btd.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("want *ValidationError, got %v", err)
	}
	if info != nil {
		t.Fatalf("failed parse must not return a model")
	}
	if _, ok := findIssue(ve.Issues, btd.CodeDanglingObjectMaterial); !ok {
		t.Fatalf("issues = %v", ve.Issues)
	}
}

func TestParseYAMLSource(t *testing.T) {
	doc := `
model_name: yaml_demo
materials:
  base_materials:
    - name: Si
      thermal_conductivity: 150
geometry:
  sections:
    - id: die
      shape:
        type: cube
        length: 10
        width: 10
        height: 0.5
      material_ref: Si
`
	info, err := btd.Parse(btd.YAMLBytes([]byte(doc)))
	if err != nil {
		t.Fatalf("parse yaml: %v", err)
	}
	if info.Name() != "yaml_demo" {
		t.Fatalf("name = %q", info.Name())
	}
	if _, ok := info.Component("die"); !ok {
		t.Fatalf("die missing")
	}
}

func TestExportRoundTrip(t *testing.T) {
	first, err := btd.Parse(btd.JSONBytes([]byte(demoDoc)))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	out, err := btd.Export(first)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	second, err := btd.Parse(btd.JSONBytes(out))
	if err != nil {
		t.Fatalf("reparse: %v\n%s", err, out)
	}

	if !reflect.DeepEqual(first.Summary(), second.Summary()) {
		t.Fatalf("summaries differ: %+v vs %+v", first.Summary(), second.Summary())
	}
	if !reflect.DeepEqual(componentPaths(first), componentPaths(second)) {
		t.Fatalf("component sets differ:\n%v\n%v", componentPaths(first), componentPaths(second))
	}
	for _, name := range first.MaterialNames() {
		a, _ := first.Material(name)
		b, ok := second.Material(name)
		if !ok {
			t.Fatalf("material %q lost in round trip", name)
		}
		for _, temp := range []float64{0, 60, 300, 500} {
			if a.ConductivityAt(temp) != b.ConductivityAt(temp) {
				t.Fatalf("%s k(%g) differs: %v vs %v", name, temp, a.ConductivityAt(temp), b.ConductivityAt(temp))
			}
		}
	}
	pmA, _ := first.PowerMap("core0")
	pmB, ok := second.PowerMap("core0")
	if !ok || pmA.TotalPower() != pmB.TotalPower() {
		t.Fatalf("power map lost in round trip")
	}
}

func TestExportRequiresFrozenModel(t *testing.T) {
	info := btd.NewThermalInfo("wip")
	if _, err := btd.Export(info); err == nil {
		t.Fatalf("export of an unfrozen model must fail")
	}
}
