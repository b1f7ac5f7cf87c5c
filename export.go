package btd

import (
	"fmt"

	json "github.com/goccy/go-json"
)

// Export serializes a frozen model back to the document format. The output
// is semantically equivalent to the input: feeding it to Parse yields the
// same model. Export never mutates the model.
func Export(t *ThermalInfo) ([]byte, error) {
	if t.State() != StateFrozen {
		return nil, fmt.Errorf("btd: export requires a frozen model, state is %s", t.State())
	}

	doc := map[string]any{}
	if t.Name() != "" {
		doc["model_name"] = t.Name()
	}
	doc[secMaterial] = encodeMaterials(t)
	if len(t.shapes) > 0 {
		shapes := make(map[string]any, len(t.shapes))
		for id, s := range t.shapes {
			shapes[id] = encodeShape(s)
		}
		doc[secShapes] = shapes
	}
	doc[secGeometry] = encodeGeometry(t)
	if len(t.parameters) > 0 {
		doc[secParams] = t.parameters
	}
	if vals := t.thermal.Values(); len(vals) > 0 {
		doc[secThermal] = vals
	}
	if len(t.powerMaps) > 0 {
		maps := make(map[string]any, len(t.powerMaps))
		for _, name := range t.PowerMapNames() {
			pm := t.powerMaps[name]
			maps[name] = map[string]any{
				"object":    pm.Object,
				"base_z":    pm.BaseZ,
				"thickness": pm.Thickness,
				"xcoor":     pm.XCoords,
				"ycoor":     pm.YCoords,
				"power":     pm.Power,
			}
		}
		doc[secPower] = maps
	}
	if t.netlist != nil {
		doc[secNetlist] = encodeNetlist(t.netlist)
	}
	return json.MarshalIndent(doc, "", "  ")
}

func encodeMaterials(t *ThermalInfo) map[string]any {
	out := map[string]any{}

	var base []any
	for _, name := range t.MaterialNames() {
		m, ok := t.baseMaterials[name]
		if !ok {
			continue
		}
		entry := map[string]any{"name": m.Name()}
		kx, ky, kz := m.Conductivity()
		if m.IsIsotropic() {
			entry["thermal_conductivity"] = encodeProperty(kx)
		} else {
			entry["thermal_conductivity"] = map[string]any{
				"x": encodeProperty(kx),
				"y": encodeProperty(ky),
				"z": encodeProperty(kz),
			}
		}
		entry["density"] = encodeProperty(m.Density())
		entry["specific_heat"] = encodeProperty(m.SpecificHeat())
		base = append(base, entry)
	}
	if base != nil {
		out["base_materials"] = base
	}

	var composite []any
	for _, name := range t.MaterialNames() {
		m, ok := t.compositeMaterials[name]
		if !ok {
			continue
		}
		terms := make([]any, 0, len(m.components))
		for _, c := range m.Components() {
			terms = append(terms, map[string]any{"material": c.Ref, "fraction": c.Fraction})
		}
		composite = append(composite, map[string]any{"name": m.Name(), "materials": terms})
	}
	if composite != nil {
		out["composite_materials"] = composite
	}

	var bindings []any
	for _, om := range t.objectMaterials {
		bindings = append(bindings, map[string]any{"object": om.Object, "material": om.Ref})
	}
	if bindings != nil {
		out["object_materials"] = bindings
	}
	return out
}

// encodeProperty inverts parseProperty: constants become bare numbers,
// tables become [[temperature,value],...] pairs.
func encodeProperty(p Property) any {
	pts := p.Points()
	if len(pts) <= 1 {
		if len(pts) == 0 {
			return 0.0
		}
		return pts[0].Value
	}
	table := make([][2]float64, len(pts))
	for i, pt := range pts {
		table[i] = [2]float64{pt.Temperature, pt.Value}
	}
	return table
}

func encodeGeometry(t *ThermalInfo) map[string]any {
	out := map[string]any{}
	byRole := map[Role][]any{}
	for _, r := range t.roots {
		byRole[r.Role] = append(byRole[r.Role], encodeComponent(r))
	}
	if v := byRole[RoleSection]; v != nil {
		out["sections"] = v
	}
	if v := byRole[RoleStackedDie]; v != nil {
		out["stacked_die_sections"] = v
	}
	if v := byRole[RolePackage]; v != nil {
		out["package_components"] = v
	}
	return out
}

func encodeComponent(c *Component) map[string]any {
	out := map[string]any{"id": c.ID}
	if c.Name != "" && c.Name != c.ID {
		out["name"] = c.Name
	}
	switch {
	case c.ShapeRef != "":
		out["shape_ref"] = c.ShapeRef
	case c.Shape != nil:
		out["shape"] = encodeShape(c.Shape)
	}
	if c.MaterialRef != "" {
		out["material_ref"] = c.MaterialRef
	}
	if !c.Transform.IsIdentity() {
		out["transform"] = map[string]any{
			"position": encodeVec3(c.Transform.Position),
			"rotation": encodeVec3(c.Transform.Rotation),
			"scale":    encodeVec3(c.Transform.Scale),
		}
	}
	if len(c.Children) > 0 {
		children := make([]any, len(c.Children))
		for i, ch := range c.Children {
			children[i] = encodeComponent(ch)
		}
		out["children"] = children
	}
	return out
}

func encodeVec3(v Vec3) []float64 { return []float64{v.X, v.Y, v.Z} }

func encodeVec2(v Vec2) []float64 { return []float64{v.X, v.Y} }

// encodeShape emits the fragment spelling ParseShape reads back.
func encodeShape(s Shape) map[string]any {
	out := map[string]any{"type": string(s.Type())}
	switch v := s.(type) {
	case Cube:
		out["position"] = encodeVec3(v.Position)
		out["length"], out["width"], out["height"] = v.Length, v.Width, v.Height
	case Cylinder:
		out["position"] = encodeVec3(v.Position)
		out["radius"], out["height"] = v.Radius, v.Height
	case HexagonalPrism:
		out["position"] = encodeVec3(v.Position)
		out["diameter"], out["height"] = v.Diameter, v.Height
	case SlantedCube:
		out["start"] = encodeVec3(v.Start)
		out["end"] = encodeVec3(v.End)
		out["width"], out["thickness"] = v.Width, v.Thickness
	case Prism:
		out["position"] = encodeVec3(v.Position)
		out["base"] = encodeShape2D(v.Base)
		out["height"] = v.Height
	case RectPrism:
		out["position"] = encodeVec3(v.Position)
		out["length"], out["width"], out["height"] = v.Length, v.Width, v.Height
	case SquarePrism:
		out["position"] = encodeVec3(v.Position)
		out["side"], out["height"] = v.Side, v.Height
	case EllipticalPrism:
		out["position"] = encodeVec3(v.Position)
		out["radius_x"], out["radius_y"], out["height"] = v.RadiusX, v.RadiusY, v.Height
	case OblongPrism:
		out["position"] = encodeVec3(v.Position)
		out["length"], out["width"], out["height"] = v.Length, v.Width, v.Height
	case RoundedRectPrism:
		out["position"] = encodeVec3(v.Position)
		out["length"], out["width"], out["height"] = v.Length, v.Width, v.Height
		out["radius"] = v.Radius
	case ChamferedRectPrism:
		out["position"] = encodeVec3(v.Position)
		out["length"], out["width"], out["height"] = v.Length, v.Width, v.Height
		out["chamfer"] = v.Chamfer
	case NPolygonPrism:
		out["position"] = encodeVec3(v.Position)
		out["diameter"], out["height"] = v.Diameter, v.Height
		out["sides"] = v.Sides
	case Path:
		out["position"] = encodeVec3(v.Position)
		out["width"], out["height"], out["length"] = v.Width, v.Height, v.Length
	}
	return out
}

func encodeShape2D(s Shape2D) map[string]any {
	out := map[string]any{"type": string(s.Type())}
	switch v := s.(type) {
	case Circle:
		out["center"] = encodeVec2(v.Center)
		out["radius"] = v.Radius
	case Rectangle:
		out["center"] = encodeVec2(v.Center)
		out["width"], out["height"] = v.Width, v.Height
	case Square:
		out["center"] = encodeVec2(v.Center)
		out["side"] = v.Side
	case Ellipse:
		out["center"] = encodeVec2(v.Center)
		out["radius_x"], out["radius_y"] = v.RadiusX, v.RadiusY
	case Oblong:
		out["center"] = encodeVec2(v.Center)
		out["length"], out["width"] = v.Length, v.Width
	case RoundedRect:
		out["center"] = encodeVec2(v.Center)
		out["width"], out["height"] = v.Width, v.Height
		out["radius"] = v.Radius
	case ChamferedRect:
		out["center"] = encodeVec2(v.Center)
		out["width"], out["height"] = v.Width, v.Height
		out["chamfer"] = v.Chamfer
	case NPolygon:
		out["center"] = encodeVec2(v.Center)
		out["diameter"] = v.Diameter
		out["sides"] = v.Sides
	}
	return out
}

func encodeNetlist(n *Netlist) map[string]any {
	out := map[string]any{}
	if len(n.Nodes) > 0 {
		nodes := make([]any, len(n.Nodes))
		for i, node := range n.Nodes {
			entry := map[string]any{"id": node.ID}
			if node.Component != "" {
				entry["component"] = node.Component
			}
			if node.Kind != "" {
				entry["kind"] = node.Kind
			}
			nodes[i] = entry
		}
		out["nodes"] = nodes
	}
	if len(n.Edges) > 0 {
		edges := make([]any, len(n.Edges))
		for i, e := range n.Edges {
			edges[i] = map[string]any{"from": e.From, "to": e.To, "resistance": e.Resistance}
		}
		out["edges"] = edges
	}
	return out
}
