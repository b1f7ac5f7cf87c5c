package btd_test

import (
	"math"
	"strings"
	"testing"

	btd "github.com/reoring/btdconv"
)

func baseMaterials(t *testing.T, list any) map[string]*btd.BaseMaterial {
	t.Helper()
	out, iss := btd.ParseBaseMaterials(list, btd.Root().Field("base_materials"))
	if iss.Fatal() {
		t.Fatalf("parse base materials: %v", iss)
	}
	return out
}

func approx(t *testing.T, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("got %g, want %g", got, want)
	}
}

func TestPropertyTableInterpolation(t *testing.T) {
	mats := baseMaterials(t, []any{map[string]any{
		"name":                 "copper",
		"thermal_conductivity": []any{[]any{20.0, 400.0}, []any{100.0, 380.0}},
		"density":              8960.0,
		"specific_heat":        385.0,
	}})
	cu := mats["copper"]
	if cu == nil {
		t.Fatalf("copper missing")
	}

	approx(t, cu.ConductivityAt(20).X, 400)  // exact breakpoint
	approx(t, cu.ConductivityAt(60).X, 390)  // linear blend
	approx(t, cu.ConductivityAt(100).X, 380) // exact breakpoint
	approx(t, cu.ConductivityAt(150).X, 380) // clamped above
	approx(t, cu.ConductivityAt(0).X, 400)   // clamped below
	approx(t, cu.DensityAt(300), 8960)
	if !cu.IsIsotropic() {
		t.Fatalf("scalar table should be isotropic")
	}
}

func TestPropertyTableRejectsNonMonotonic(t *testing.T) {
	for name, table := range map[string]any{
		"decreasing": []any{[]any{100.0, 380.0}, []any{20.0, 400.0}},
		"duplicate":  []any{[]any{20.0, 400.0}, []any{20.0, 390.0}},
	} {
		t.Run(name, func(t *testing.T) {
			_, iss := btd.ParseBaseMaterials([]any{map[string]any{
				"name":                 "bad",
				"thermal_conductivity": table,
			}}, btd.Root())
			if _, ok := findIssue(iss, btd.CodeInvalidPropertyTable); !ok {
				t.Fatalf("want invalid_property_table, got %v", iss)
			}
		})
	}
}

func TestAnisotropicConductivityInheritsX(t *testing.T) {
	mats := baseMaterials(t, []any{map[string]any{
		"name":                 "graphite",
		"thermal_conductivity": map[string]any{"x": 200.0, "z": 30.0},
	}})
	g := mats["graphite"]
	if g.IsIsotropic() {
		t.Fatalf("per-axis declaration should not be isotropic")
	}
	k := g.ConductivityAt(300)
	approx(t, k.X, 200)
	approx(t, k.Y, 200) // y defaults to x
	approx(t, k.Z, 30)
}

func TestDuplicateBaseMaterialWarnsAndOverrides(t *testing.T) {
	out, iss := btd.ParseBaseMaterials([]any{
		map[string]any{"name": "al", "thermal_conductivity": 200.0},
		map[string]any{"name": "al", "thermal_conductivity": 210.0},
	}, btd.Root())
	if iss.Fatal() {
		t.Fatalf("duplicates must not be fatal: %v", iss)
	}
	if _, ok := findIssue(iss, btd.CodeDuplicateKey); !ok {
		t.Fatalf("want duplicate_key warning, got %v", iss)
	}
	approx(t, out["al"].ConductivityAt(300).X, 210)
}

func compositeDoc() (map[string]*btd.BaseMaterial, any) {
	base := map[string]*btd.BaseMaterial{}
	parsed, _ := btd.ParseBaseMaterials([]any{
		map[string]any{"name": "resin", "thermal_conductivity": 0.3, "density": 1200.0, "specific_heat": 1000.0},
		map[string]any{"name": "silica", "thermal_conductivity": 1.4, "density": 2200.0, "specific_heat": 700.0},
	}, btd.Root())
	for k, v := range parsed {
		base[k] = v
	}
	composites := []any{map[string]any{
		"name": "underfill",
		"materials": []any{
			map[string]any{"material": "resin", "fraction": 0.6},
			map[string]any{"material": "silica", "fraction": 0.4},
		},
	}}
	return base, composites
}

func TestCompositeEffectiveProperties(t *testing.T) {
	base, composites := compositeDoc()
	out, iss := btd.ParseCompositeMaterials(composites, base, 0, btd.Root())
	if iss.Fatal() {
		t.Fatalf("parse composites: %v", iss)
	}
	uf := out["underfill"]
	approx(t, uf.ConductivityAt(300).X, 0.6*0.3+0.4*1.4)
	approx(t, uf.DensityAt(300), 0.6*1200+0.4*2200)
	approx(t, uf.SpecificHeatAt(300), 0.6*1000+0.4*700)
}

func TestNestedCompositeRecurses(t *testing.T) {
	base, _ := compositeDoc()
	composites := []any{
		map[string]any{"name": "blend", "materials": []any{
			map[string]any{"material": "resin", "fraction": 0.5},
			map[string]any{"material": "silica", "fraction": 0.5},
		}},
		map[string]any{"name": "outer", "materials": []any{
			map[string]any{"material": "blend", "fraction": 0.5},
			map[string]any{"material": "resin", "fraction": 0.5},
		}},
	}
	out, iss := btd.ParseCompositeMaterials(composites, base, 0, btd.Root())
	if iss.Fatal() {
		t.Fatalf("parse composites: %v", iss)
	}
	blendK := 0.5*0.3 + 0.5*1.4
	approx(t, out["outer"].ConductivityAt(300).X, 0.5*blendK+0.5*0.3)
}

func TestCompositeFractionSumChecked(t *testing.T) {
	base, _ := compositeDoc()
	composites := []any{map[string]any{
		"name": "overfull",
		"materials": []any{
			map[string]any{"material": "resin", "fraction": 0.5},
			map[string]any{"material": "silica", "fraction": 0.3},
			map[string]any{"material": "resin", "fraction": 0.3},
		},
	}}
	_, iss := btd.ParseCompositeMaterials(composites, base, 0, btd.Root())
	it, ok := findIssue(iss, btd.CodeInvalidVolumeFractions)
	if !ok {
		t.Fatalf("want invalid_volume_fractions, got %v", iss)
	}
	sum, _ := it.Params["sum"].(float64)
	approx(t, sum, 1.1)
}

func TestCompositeCycleDetected(t *testing.T) {
	base, _ := compositeDoc()
	composites := []any{
		map[string]any{"name": "a", "materials": []any{map[string]any{"material": "b", "fraction": 1.0}}},
		map[string]any{"name": "b", "materials": []any{map[string]any{"material": "a", "fraction": 1.0}}},
	}
	_, iss := btd.ParseCompositeMaterials(composites, base, 0, btd.Root())
	it, ok := findIssue(iss, btd.CodeCircularMaterialReference)
	if !ok {
		t.Fatalf("want circular_material_reference, got %v", iss)
	}
	cycle, _ := it.Params["cycle"].(string)
	if !strings.Contains(cycle, "->") {
		t.Fatalf("cycle not rendered: %q", cycle)
	}
}

func TestCompositeUnknownReference(t *testing.T) {
	base, _ := compositeDoc()
	composites := []any{map[string]any{
		"name":      "bad",
		"materials": []any{map[string]any{"material": "unobtainium", "fraction": 1.0}},
	}}
	_, iss := btd.ParseCompositeMaterials(composites, base, 0, btd.Root())
	if _, ok := findIssue(iss, btd.CodeUnknownMaterialReference); !ok {
		t.Fatalf("want unknown_material_reference, got %v", iss)
	}
}

func TestObjectMaterialDuplicateOverrides(t *testing.T) {
	base, _ := compositeDoc()
	materials := map[string]btd.Material{}
	for k, v := range base {
		materials[k] = v
	}
	out, iss := btd.ParseObjectMaterials([]any{
		map[string]any{"object": "die", "material": "resin"},
		map[string]any{"object": "die", "material": "silica"},
	}, materials, btd.Root())
	if iss.Fatal() {
		t.Fatalf("duplicates must not be fatal: %v", iss)
	}
	if _, ok := findIssue(iss, btd.CodeDuplicateObjectMaterial); !ok {
		t.Fatalf("want duplicate_object_material warning, got %v", iss)
	}
	if len(out) != 1 || out[0].Ref != "silica" {
		t.Fatalf("last binding should win: %+v", out)
	}
}
