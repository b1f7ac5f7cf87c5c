package btd

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/reoring/btdconv/i18n"
	"github.com/reoring/btdconv/internal/jsontext"
)

// ParseBaseMaterials decodes the base_materials list into a name-keyed map.
// Returned Issues may contain warnings only (duplicate names override with a
// warning); callers decide via Issues.Fatal.
func ParseBaseMaterials(list any, at PathRef) (map[string]*BaseMaterial, Issues) {
	out := map[string]*BaseMaterial{}
	if list == nil {
		return out, nil
	}
	arr, ok := jsontext.Array(list)
	if !ok {
		return out, Issues{at.Issue(CodeInvalidType, "base_materials must be an array")}
	}

	var iss Issues
	for i, raw := range arr {
		el := at.Index(i)
		obj, ok := jsontext.Object(raw)
		if !ok {
			iss = AppendIssues(iss, el.Issue(CodeInvalidType, "material must be an object"))
			continue
		}
		name, ok := jsontext.String(obj["name"])
		if !ok || name == "" {
			iss = AppendIssues(iss, el.Field("name").Issue(CodeRequired, i18n.T(CodeRequired, nil)))
			continue
		}

		m := &BaseMaterial{name: name}
		var mi Issues
		m.kx, m.ky, m.kz, m.isotropic, mi = parseConductivity(obj["thermal_conductivity"], el.Field("thermal_conductivity"))
		iss = AppendIssues(iss, mi...)

		m.density, mi = parseProperty(obj["density"], el.Field("density"))
		iss = AppendIssues(iss, mi...)

		m.heat, mi = parseProperty(obj["specific_heat"], el.Field("specific_heat"))
		iss = AppendIssues(iss, mi...)

		if _, dup := out[name]; dup {
			iss = AppendIssues(iss, Issue{
				Path: el.Field("name").Pointer(), Code: CodeDuplicateKey,
				Message:  fmt.Sprintf("material %q redefined, last definition wins", name),
				Params:   map[string]any{"name": name},
				Severity: SeverityWarn, Offset: -1,
			})
		}
		out[name] = m
	}
	if iss.Fatal() {
		return nil, iss
	}
	return out, iss
}

// parseConductivity accepts a scalar, a [[T,v],...] table, or a per-axis
// {"x":..,"y":..,"z":..} object (each axis again scalar or table). Missing
// axes inherit x, matching the original anisotropy shorthand.
func parseConductivity(v any, at PathRef) (kx, ky, kz Property, isotropic bool, iss Issues) {
	if v == nil {
		return Property{}, Property{}, Property{}, true,
			Issues{at.Issue(CodeRequired, i18n.T(CodeRequired, nil))}
	}
	if obj, ok := jsontext.Object(v); ok {
		x, xi := parseProperty(obj["x"], at.Field("x"))
		iss = AppendIssues(iss, xi...)
		if obj["x"] == nil {
			iss = AppendIssues(iss, at.Field("x").Issue(CodeRequired, i18n.T(CodeRequired, nil)))
		}
		y := x
		if obj["y"] != nil {
			var yi Issues
			y, yi = parseProperty(obj["y"], at.Field("y"))
			iss = AppendIssues(iss, yi...)
		}
		z := x
		if obj["z"] != nil {
			var zi Issues
			z, zi = parseProperty(obj["z"], at.Field("z"))
			iss = AppendIssues(iss, zi...)
		}
		return x, y, z, false, iss
	}
	p, pi := parseProperty(v, at)
	return p, p, p, true, pi
}

// parseProperty accepts a number (constant) or a [[temperature,value],...]
// table with strictly increasing temperatures. Absent values default to a
// zero constant, per the original reader.
func parseProperty(v any, at PathRef) (Property, Issues) {
	if v == nil {
		return ConstantProperty(0), nil
	}
	if f, ok := jsontext.Number(v); ok {
		return ConstantProperty(f), nil
	}
	arr, ok := jsontext.Array(v)
	if !ok {
		return Property{}, Issues{at.Issue(CodeInvalidPropertyTable, i18n.T(CodeInvalidPropertyTable, nil), "reason", "expected number or [[temperature,value],...]")}
	}
	if len(arr) == 0 {
		return Property{}, Issues{at.Issue(CodeInvalidPropertyTable, i18n.T(CodeInvalidPropertyTable, nil), "reason", "table must have at least one point")}
	}
	pts := make([]PropPoint, 0, len(arr))
	for i, rawPt := range arr {
		pair, ok := jsontext.Array(rawPt)
		if !ok || len(pair) != 2 {
			return Property{}, Issues{at.Index(i).Issue(CodeInvalidPropertyTable, i18n.T(CodeInvalidPropertyTable, nil), "reason", "point must be a [temperature,value] pair")}
		}
		t, okt := jsontext.Number(pair[0])
		val, okv := jsontext.Number(pair[1])
		if !okt || !okv {
			return Property{}, Issues{at.Index(i).Issue(CodeInvalidPropertyTable, i18n.T(CodeInvalidPropertyTable, nil), "reason", "non-numeric table entry")}
		}
		pts = append(pts, PropPoint{Temperature: t, Value: val})
	}
	for i := 1; i < len(pts); i++ {
		if pts[i].Temperature == pts[i-1].Temperature {
			return Property{}, Issues{at.Index(i).Issue(CodeInvalidPropertyTable, i18n.T(CodeInvalidPropertyTable, nil), "reason", "duplicate temperature breakpoint", "temperature", pts[i].Temperature)}
		}
		if pts[i].Temperature < pts[i-1].Temperature {
			return Property{}, Issues{at.Index(i).Issue(CodeInvalidPropertyTable, i18n.T(CodeInvalidPropertyTable, nil), "reason", "temperatures must be strictly increasing", "temperature", pts[i].Temperature)}
		}
	}
	return TableProperty(pts), nil
}

// compositeDef is the decoded-but-unresolved form of one composite.
type compositeDef struct {
	name  string
	at    PathRef
	terms []struct {
		ref      string
		fraction float64
	}
}

// ParseCompositeMaterials decodes composite_materials and resolves every
// reference against base materials and other composites. The reference graph
// among composites must be a DAG: cycles are detected by depth-first
// traversal with a recursion-stack set and reported with the full cycle.
// Fraction sums are checked only after all references resolve.
func ParseCompositeMaterials(list any, base map[string]*BaseMaterial, tolerance float64, at PathRef) (map[string]*CompositeMaterial, Issues) {
	out := map[string]*CompositeMaterial{}
	if list == nil {
		return out, nil
	}
	arr, ok := jsontext.Array(list)
	if !ok {
		return nil, Issues{at.Issue(CodeInvalidType, "composite_materials must be an array")}
	}
	if tolerance <= 0 {
		tolerance = FractionTolerance
	}

	var iss Issues
	defs := map[string]*compositeDef{}
	order := []string{}
	for i, raw := range arr {
		el := at.Index(i)
		obj, ok := jsontext.Object(raw)
		if !ok {
			iss = AppendIssues(iss, el.Issue(CodeInvalidType, "composite material must be an object"))
			continue
		}
		name, ok := jsontext.String(obj["name"])
		if !ok || name == "" {
			iss = AppendIssues(iss, el.Field("name").Issue(CodeRequired, i18n.T(CodeRequired, nil)))
			continue
		}
		def := &compositeDef{name: name, at: el}
		terms, ok := jsontext.Array(obj["materials"])
		if !ok || len(terms) == 0 {
			iss = AppendIssues(iss, el.Field("materials").Issue(CodeInvalidType, "materials must be a non-empty array"))
			continue
		}
		bad := false
		for j, rawTerm := range terms {
			tat := el.Field("materials").Index(j)
			term, ok := jsontext.Object(rawTerm)
			if !ok {
				iss = AppendIssues(iss, tat.Issue(CodeInvalidType, "blend term must be an object"))
				bad = true
				continue
			}
			ref, ok := jsontext.String(term["material"])
			if !ok || ref == "" {
				iss = AppendIssues(iss, tat.Field("material").Issue(CodeRequired, i18n.T(CodeRequired, nil)))
				bad = true
				continue
			}
			fv := term["fraction"]
			if fv == nil {
				fv = term["percentage"] // legacy spelling
			}
			f, ok := jsontext.Number(fv)
			if !ok || f < 0 {
				iss = AppendIssues(iss, tat.Field("fraction").Issue(CodeInvalidVolumeFractions, i18n.T(CodeInvalidVolumeFractions, nil), "reason", "fraction must be a non-negative number"))
				bad = true
				continue
			}
			def.terms = append(def.terms, struct {
				ref      string
				fraction float64
			}{ref, f})
		}
		if bad {
			continue
		}
		if _, dup := defs[name]; !dup {
			order = append(order, name)
		}
		defs[name] = def
	}

	// Resolve references: base names first, composite names second.
	for _, name := range order {
		def := defs[name]
		for _, term := range def.terms {
			if _, isBase := base[term.ref]; isBase {
				continue
			}
			if _, isComposite := defs[term.ref]; isComposite {
				continue
			}
			iss = AppendIssues(iss, def.at.Field("materials").Issue(CodeUnknownMaterialReference,
				i18n.T(CodeUnknownMaterialReference, map[string]string{"material": term.ref}), "material", term.ref, "composite", name))
		}
	}
	if iss.Fatal() {
		return nil, iss
	}

	// Cycle detection over the composite-to-composite edges.
	const (
		white = iota
		grey
		black
	)
	color := map[string]int{}
	var stack []string
	var visit func(name string) bool
	visit = func(name string) bool {
		color[name] = grey
		stack = append(stack, name)
		for _, term := range defs[name].terms {
			next, isComposite := defs[term.ref]
			if !isComposite {
				continue
			}
			switch color[next.name] {
			case grey:
				cycle := append(cycleFrom(stack, next.name), next.name)
				iss = AppendIssues(iss, defs[name].at.Issue(CodeCircularMaterialReference,
					i18n.T(CodeCircularMaterialReference, nil), "cycle", strings.Join(cycle, " -> ")))
				return false
			case white:
				if !visit(next.name) {
					return false
				}
			}
		}
		stack = stack[:len(stack)-1]
		color[name] = black
		return true
	}
	names := make([]string, 0, len(defs))
	for n := range defs {
		names = append(names, n)
	}
	sort.Strings(names) // deterministic traversal and cycle reporting
	for _, n := range names {
		if color[n] == white {
			stack = stack[:0]
			if !visit(n) {
				return nil, iss
			}
		}
	}

	// Fraction sums, checked after resolution per the contract.
	for _, name := range order {
		def := defs[name]
		sum := 0.0
		for _, t := range def.terms {
			sum += t.fraction
		}
		if math.Abs(sum-1.0) > tolerance {
			iss = AppendIssues(iss, def.at.Field("materials").Issue(CodeInvalidVolumeFractions,
				i18n.T(CodeInvalidVolumeFractions, nil), "sum", sum, "want", 1.0, "tolerance", tolerance))
		}
	}
	if iss.Fatal() {
		return nil, iss
	}

	// Wire resolved Material pointers; the DAG guarantees recursion in
	// topological order terminates.
	var build func(name string) *CompositeMaterial
	build = func(name string) *CompositeMaterial {
		if done, ok := out[name]; ok {
			return done
		}
		def := defs[name]
		cm := &CompositeMaterial{name: name}
		out[name] = cm
		for _, t := range def.terms {
			var m Material
			if bm, ok := base[t.ref]; ok {
				m = bm
			} else {
				m = build(t.ref)
			}
			cm.components = append(cm.components, CompositeComponent{Ref: t.ref, Fraction: t.fraction, Material: m})
		}
		return cm
	}
	for _, n := range order {
		build(n)
	}
	return out, iss
}

func cycleFrom(stack []string, start string) []string {
	for i, n := range stack {
		if n == start {
			return append([]string{}, stack[i:]...)
		}
	}
	return append([]string{}, stack...)
}

// ParseObjectMaterials decodes object_materials bindings and resolves their
// material references. Duplicate bindings to the same object warn and
// override (last write wins). Object existence is checked later by
// ThermalInfo.Validate, once geometry is populated.
func ParseObjectMaterials(list any, materials map[string]Material, at PathRef) ([]ObjectMaterial, Issues) {
	if list == nil {
		return nil, nil
	}
	arr, ok := jsontext.Array(list)
	if !ok {
		return nil, Issues{at.Issue(CodeInvalidType, "object_materials must be an array")}
	}

	var iss Issues
	var out []ObjectMaterial
	seen := map[string]int{} // object -> index in out
	for i, raw := range arr {
		el := at.Index(i)
		obj, ok := jsontext.Object(raw)
		if !ok {
			iss = AppendIssues(iss, el.Issue(CodeInvalidType, "object material must be an object"))
			continue
		}
		target, ok := jsontext.String(obj["object"])
		if !ok || target == "" {
			iss = AppendIssues(iss, el.Field("object").Issue(CodeRequired, i18n.T(CodeRequired, nil)))
			continue
		}
		ref, ok := jsontext.String(obj["material"])
		if !ok || ref == "" {
			iss = AppendIssues(iss, el.Field("material").Issue(CodeRequired, i18n.T(CodeRequired, nil)))
			continue
		}
		m, known := materials[ref]
		if !known {
			iss = AppendIssues(iss, el.Field("material").Issue(CodeUnknownMaterialReference,
				i18n.T(CodeUnknownMaterialReference, map[string]string{"material": ref}), "material", ref))
			continue
		}
		binding := ObjectMaterial{Object: target, Ref: ref, Material: m}
		if prev, dup := seen[target]; dup {
			iss = AppendIssues(iss, Issue{
				Path: el.Pointer(), Code: CodeDuplicateObjectMaterial,
				Message:  i18n.T(CodeDuplicateObjectMaterial, nil),
				Params:   map[string]any{"object": target, "overridden": out[prev].Ref, "now": ref},
				Severity: SeverityWarn, Offset: -1,
			})
			out[prev] = binding
			continue
		}
		seen[target] = len(out)
		out = append(out, binding)
	}
	if iss.Fatal() {
		return nil, iss
	}
	return out, iss
}
