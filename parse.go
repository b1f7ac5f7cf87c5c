package btd

import (
	"github.com/reoring/btdconv/i18n"
	"github.com/reoring/btdconv/internal/jsontext"
)

// Top-level document sections. Unknown top-level keys are ignored for
// forward compatibility; unknown keys inside known objects are warnings
// under the default policy.
const (
	secDocument = "document"
	secMaterial = "materials"
	secShapes   = "shapes"
	secGeometry = "geometry"
	secParams   = "parameters"
	secThermal  = "thermal_parameters"
	secPower    = "power_maps"
	secNetlist  = "netlist"
)

var materialsKeys = map[string]bool{
	"base_materials":      true,
	"composite_materials": true,
	"object_materials":    true,
}

var geometryKeys = map[string]bool{
	"sections":             true,
	"stacked_die_sections": true,
	"package_components":   true,
}

// Parse decodes a BTD document into a validated, frozen ThermalInfo. The
// sub-parsers run in dependency order (materials, then shapes, then geometry,
// which references both, then power maps and netlist). Any sub-parser
// failure is wrapped in a *ParseError naming the failing section; fatal
// semantic problems surface as a *ValidationError. No partially built model
// is ever returned.
func Parse(src Source, opts ...Option) (*ThermalInfo, error) {
	opt := defaultParseOptions()
	for _, o := range opts {
		o(&opt)
	}

	doc, err := src.Decode()
	if err != nil {
		if iss, ok := AsIssues(err); ok {
			return nil, &ParseError{Section: secDocument, Offset: firstOffset(iss), Issues: iss}
		}
		return nil, &ParseError{Section: secDocument, Offset: -1, Issues: Issues{{Path: "/", Code: CodeParseError, Message: err.Error(), Cause: err, Offset: -1}}}
	}

	info := NewThermalInfo("")
	if name, ok := jsontext.String(doc["model_name"]); ok {
		_ = info.SetName(name)
	}

	// materials
	base, composite, bindings, iss := parseMaterialsSection(doc[secMaterial], opt)
	if iss.Fatal() {
		return nil, &ParseError{Section: secMaterial, Offset: firstOffset(iss), Issues: iss}
	}
	info.addWarnings(iss)
	_ = info.SetMaterials(base, composite)
	_ = info.SetObjectMaterials(bindings)

	// shapes
	shapes, iss := parseShapesSection(doc[secShapes])
	if iss.Fatal() {
		return nil, &ParseError{Section: secShapes, Offset: firstOffset(iss), Issues: iss}
	}
	info.addWarnings(iss)
	_ = info.SetShapes(shapes)

	// geometry (references materials and shapes)
	roots, iss := parseGeometrySection(doc[secGeometry], shapes, info.materials, opt)
	if iss.Fatal() {
		return nil, &ParseError{Section: secGeometry, Offset: firstOffset(iss), Issues: iss}
	}
	info.addWarnings(iss)
	for _, r := range roots {
		_ = info.AddRoot(r)
	}

	// global parameters
	params, iss := parseParametersSection(doc[secParams])
	if iss.Fatal() {
		return nil, &ParseError{Section: secParams, Offset: firstOffset(iss), Issues: iss}
	}
	_ = info.SetParameters(params)

	// thermal parameters
	thermal, iss := parseThermalSection(doc[secThermal])
	if iss.Fatal() {
		return nil, &ParseError{Section: secThermal, Offset: firstOffset(iss), Issues: iss}
	}
	_ = info.SetThermalParams(thermal)

	// power maps
	maps, iss := parsePowerMapsSection(doc[secPower])
	if iss.Fatal() {
		return nil, &ParseError{Section: secPower, Offset: firstOffset(iss), Issues: iss}
	}
	info.addWarnings(iss)
	for _, pm := range maps {
		_ = info.AddPowerMap(pm)
	}

	// netlist (optional)
	netlist, iss := parseNetlistSection(doc[secNetlist])
	if iss.Fatal() {
		return nil, &ParseError{Section: secNetlist, Offset: firstOffset(iss), Issues: iss}
	}
	info.addWarnings(iss)
	_ = info.SetNetlist(netlist)

	// final consistency checks; a fatal result discards the model
	if _, err := info.Validate(); err != nil {
		return nil, err
	}
	if err := info.Freeze(); err != nil {
		return nil, err
	}
	return info, nil
}

// ParseFile reads and parses a document from disk, picking the codec from
// the file extension.
func ParseFile(path string, opts ...Option) (*ThermalInfo, error) {
	return Parse(File(path), opts...)
}

func firstOffset(iss Issues) int64 {
	for _, it := range iss {
		if it.Offset >= 0 {
			return it.Offset
		}
	}
	return -1
}

func parseMaterialsSection(raw any, opt parseOptions) (map[string]*BaseMaterial, map[string]*CompositeMaterial, []ObjectMaterial, Issues) {
	at := Root().Field(secMaterial)
	if raw == nil {
		return map[string]*BaseMaterial{}, map[string]*CompositeMaterial{}, nil, nil
	}
	obj, ok := jsontext.Object(raw)
	if !ok {
		return nil, nil, nil, Issues{at.Issue(CodeInvalidType, "materials must be an object")}
	}

	var iss Issues
	iss = AppendIssues(iss, unknownKeyIssues(obj, materialsKeys, at, opt)...)

	base, bi := ParseBaseMaterials(obj["base_materials"], at.Field("base_materials"))
	iss = AppendIssues(iss, bi...)
	if iss.Fatal() {
		return nil, nil, nil, iss
	}

	composite, ci := ParseCompositeMaterials(obj["composite_materials"], base, opt.tolerance, at.Field("composite_materials"))
	iss = AppendIssues(iss, ci...)
	if iss.Fatal() {
		return nil, nil, nil, iss
	}

	all := map[string]Material{}
	for n, m := range base {
		all[n] = m
	}
	for n, m := range composite {
		all[n] = m
	}
	bindings, oi := ParseObjectMaterials(obj["object_materials"], all, at.Field("object_materials"))
	iss = AppendIssues(iss, oi...)
	if iss.Fatal() {
		return nil, nil, nil, iss
	}
	return base, composite, bindings, iss
}

func parseShapesSection(raw any) (map[string]Shape, Issues) {
	out := map[string]Shape{}
	if raw == nil {
		return out, nil
	}
	at := Root().Field(secShapes)
	obj, ok := jsontext.Object(raw)
	if !ok {
		return nil, Issues{at.Issue(CodeInvalidType, "shapes must be an object keyed by shape id")}
	}
	var iss Issues
	for id, fragment := range obj {
		s, si := parseShapeAt(fragment, at.Field(id))
		iss = AppendIssues(iss, si...)
		if s != nil {
			out[id] = s
		}
	}
	if iss.Fatal() {
		return nil, iss
	}
	return out, iss
}

func parseGeometrySection(raw any, shapes map[string]Shape, materials map[string]Material, opt parseOptions) ([]*Component, Issues) {
	if raw == nil {
		return nil, nil
	}
	at := Root().Field(secGeometry)
	obj, ok := jsontext.Object(raw)
	if !ok {
		return nil, Issues{at.Issue(CodeInvalidType, "geometry must be an object")}
	}

	var iss Issues
	iss = AppendIssues(iss, unknownKeyIssues(obj, geometryKeys, at, opt)...)

	var roots []*Component
	for _, part := range []struct {
		key  string
		role Role
	}{
		{"sections", RoleSection},
		{"stacked_die_sections", RoleStackedDie},
		{"package_components", RolePackage},
	} {
		rs, ri := parseGeometryList(obj[part.key], part.role, shapes, materials, at.Field(part.key), opt)
		iss = AppendIssues(iss, ri...)
		roots = append(roots, rs...)
	}
	if iss.Fatal() {
		return nil, iss
	}
	return roots, iss
}

func parseParametersSection(raw any) (map[string]any, Issues) {
	if raw == nil {
		return map[string]any{}, nil
	}
	at := Root().Field(secParams)
	obj, ok := jsontext.Object(raw)
	if !ok {
		return nil, Issues{at.Issue(CodeInvalidType, "parameters must be an object")}
	}
	out := make(map[string]any, len(obj))
	for k, v := range obj {
		if f, ok := jsontext.Number(v); ok {
			out[k] = f
			continue
		}
		out[k] = v
	}
	return out, nil
}

func parseThermalSection(raw any) (ThermalParams, Issues) {
	if raw == nil {
		return NewThermalParams(nil), nil
	}
	at := Root().Field(secThermal)
	obj, ok := jsontext.Object(raw)
	if !ok {
		return NewThermalParams(nil), Issues{at.Issue(CodeInvalidType, "thermal_parameters must be an object")}
	}
	return NewThermalParams(obj), nil
}

func parsePowerMapsSection(raw any) ([]*PowerMap, Issues) {
	if raw == nil {
		return nil, nil
	}
	at := Root().Field(secPower)
	obj, ok := jsontext.Object(raw)
	if !ok {
		return nil, Issues{at.Issue(CodeInvalidType, "power_maps must be an object keyed by map name")}
	}

	var iss Issues
	var out []*PowerMap
	for name, rawMap := range obj {
		mat := at.Field(name)
		mo, ok := jsontext.Object(rawMap)
		if !ok {
			iss = AppendIssues(iss, mat.Issue(CodeInvalidType, "power map must be an object"))
			continue
		}
		pm := &PowerMap{Name: name}
		pm.Object, _ = jsontext.String(mo["object"])
		if f, ok := jsontext.Number(mo["base_z"]); ok {
			pm.BaseZ = f
		}
		if f, ok := jsontext.Number(mo["thickness"]); ok {
			pm.Thickness = f
		}
		var gi Issues
		pm.XCoords, gi = floatVector(mo["xcoor"], mat.Field("xcoor"))
		iss = AppendIssues(iss, gi...)
		pm.YCoords, gi = floatVector(mo["ycoor"], mat.Field("ycoor"))
		iss = AppendIssues(iss, gi...)
		pm.Power, gi = floatGrid(mo["power"], mat.Field("power"))
		iss = AppendIssues(iss, gi...)
		if gi == nil && !gridShapeOK(pm) {
			iss = AppendIssues(iss, mat.Field("power").Issue(CodeInvalidType,
				"power grid shape must be (len(ycoor)-1) rows of (len(xcoor)-1) cells",
				"rows", len(pm.Power), "xcoor", len(pm.XCoords), "ycoor", len(pm.YCoords)))
			continue
		}
		out = append(out, pm)
	}
	if iss.Fatal() {
		return nil, iss
	}
	return out, iss
}

func gridShapeOK(pm *PowerMap) bool {
	if len(pm.XCoords) < 2 || len(pm.YCoords) < 2 {
		return false
	}
	if len(pm.Power) != len(pm.YCoords)-1 {
		return false
	}
	for _, row := range pm.Power {
		if len(row) != len(pm.XCoords)-1 {
			return false
		}
	}
	return true
}

func floatVector(raw any, at PathRef) ([]float64, Issues) {
	arr, ok := jsontext.Array(raw)
	if !ok {
		return nil, Issues{at.Issue(CodeInvalidType, "expected an array of numbers")}
	}
	out := make([]float64, len(arr))
	for i, v := range arr {
		f, ok := jsontext.Number(v)
		if !ok {
			return nil, Issues{at.Index(i).Issue(CodeInvalidType, "expected a finite number")}
		}
		out[i] = f
	}
	return out, nil
}

func floatGrid(raw any, at PathRef) ([][]float64, Issues) {
	arr, ok := jsontext.Array(raw)
	if !ok {
		return nil, Issues{at.Issue(CodeInvalidType, "expected an array of number rows")}
	}
	out := make([][]float64, len(arr))
	for i, rowRaw := range arr {
		row, ri := floatVector(rowRaw, at.Index(i))
		if ri != nil {
			return nil, ri
		}
		out[i] = row
	}
	return out, nil
}

func parseNetlistSection(raw any) (*Netlist, Issues) {
	if raw == nil {
		return nil, nil
	}
	at := Root().Field(secNetlist)
	obj, ok := jsontext.Object(raw)
	if !ok {
		return nil, Issues{at.Issue(CodeInvalidType, "netlist must be an object")}
	}

	var iss Issues
	nl := &Netlist{}
	if nodesRaw, present := obj["nodes"]; present {
		arr, ok := jsontext.Array(nodesRaw)
		if !ok {
			return nil, Issues{at.Field("nodes").Issue(CodeInvalidType, "nodes must be an array")}
		}
		for i, rawNode := range arr {
			el := at.Field("nodes").Index(i)
			no, ok := jsontext.Object(rawNode)
			if !ok {
				iss = AppendIssues(iss, el.Issue(CodeInvalidType, "node must be an object"))
				continue
			}
			id, ok := jsontext.String(no["id"])
			if !ok || id == "" {
				iss = AppendIssues(iss, el.Field("id").Issue(CodeRequired, i18n.T(CodeRequired, nil)))
				continue
			}
			n := NetlistNode{ID: id}
			n.Component, _ = jsontext.String(no["component"])
			n.Kind, _ = jsontext.String(no["kind"])
			nl.Nodes = append(nl.Nodes, n)
		}
	}
	if edgesRaw, present := obj["edges"]; present {
		arr, ok := jsontext.Array(edgesRaw)
		if !ok {
			return nil, Issues{at.Field("edges").Issue(CodeInvalidType, "edges must be an array")}
		}
		for i, rawEdge := range arr {
			el := at.Field("edges").Index(i)
			eo, ok := jsontext.Object(rawEdge)
			if !ok {
				iss = AppendIssues(iss, el.Issue(CodeInvalidType, "edge must be an object"))
				continue
			}
			from, okf := jsontext.String(eo["from"])
			to, okt := jsontext.String(eo["to"])
			if !okf || !okt || from == "" || to == "" {
				iss = AppendIssues(iss, el.Issue(CodeRequired, "edge requires from and to node ids"))
				continue
			}
			e := NetlistEdge{From: from, To: to}
			if r, ok := jsontext.Number(eo["resistance"]); ok {
				e.Resistance = r
			}
			nl.Edges = append(nl.Edges, e)
		}
	}
	if iss.Fatal() {
		return nil, iss
	}
	return nl, iss
}

func unknownKeyIssues(obj map[string]any, known map[string]bool, at PathRef, opt parseOptions) Issues {
	if opt.unknownKeys == UnknownIgnore {
		return nil
	}
	var iss Issues
	for k := range obj {
		if known[k] {
			continue
		}
		is := at.Field(k).Issue(CodeUnknownKey, i18n.T(CodeUnknownKey, nil), "key", k)
		if opt.unknownKeys == UnknownWarn {
			is.Severity = SeverityWarn
		}
		iss = AppendIssues(iss, is)
	}
	return iss
}
