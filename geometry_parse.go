package btd

import (
	"sync"

	"github.com/reoring/btdconv/i18n"
	"github.com/reoring/btdconv/internal/jsontext"
)

// componentKeys are the recognized fields of a geometry node; anything else
// is subject to the unknown-key policy.
var componentKeys = map[string]bool{
	"id":           true,
	"name":         true,
	"shape_ref":    true,
	"shape":        true,
	"material_ref": true,
	"transform":    true,
	"children":     true,
}

// ParseGeometry decodes one list of component trees (sections, stacked-die
// sections or package components all share the grammar; role carries the
// difference). Shape and material references resolve against the maps built
// earlier; failures name the component path. Sibling subtrees may be parsed
// in parallel, but results and issues always merge in document order.
func ParseGeometry(list any, role Role, shapes map[string]Shape, materials map[string]Material, at PathRef, opts ...Option) ([]*Component, Issues) {
	opt := defaultParseOptions()
	for _, o := range opts {
		o(&opt)
	}
	return parseGeometryList(list, role, shapes, materials, at, opt)
}

func parseGeometryList(list any, role Role, shapes map[string]Shape, materials map[string]Material, at PathRef, opt parseOptions) ([]*Component, Issues) {
	if list == nil {
		return nil, nil
	}
	arr, ok := jsontext.Array(list)
	if !ok {
		return nil, Issues{at.Issue(CodeInvalidType, "expected an array of components")}
	}

	roots := make([]*Component, len(arr))
	perTree := make([]Issues, len(arr))

	parseOne := func(i int) {
		g := &geomParser{shapes: shapes, materials: materials, opt: opt, role: role}
		roots[i] = g.parseTree(arr[i], at.Index(i), i)
		perTree[i] = g.iss
	}

	if opt.parallelism > 1 && len(arr) > 1 {
		// Each worker owns a disjoint subtree; shape/material maps are
		// read-only. Indexed slots keep merge order equal to document order.
		sem := make(chan struct{}, opt.parallelism)
		var wg sync.WaitGroup
		for i := range arr {
			wg.Add(1)
			sem <- struct{}{}
			go func(i int) {
				defer wg.Done()
				defer func() { <-sem }()
				parseOne(i)
			}(i)
		}
		wg.Wait()
	} else {
		for i := range arr {
			parseOne(i)
		}
	}

	var iss Issues
	var out []*Component
	for i, r := range roots {
		iss = AppendIssues(iss, perTree[i]...)
		if r != nil {
			out = append(out, r)
		}
	}
	if iss.Fatal() {
		return nil, iss
	}
	return out, iss
}

type geomParser struct {
	shapes    map[string]Shape
	materials map[string]Material
	opt       parseOptions
	role      Role
	iss       Issues
}

// gframe is one worklist entry of the iterative traversal.
type gframe struct {
	comp     *Component
	children []any
	docPath  PathRef
	next     int
}

// parseTree decodes one root component and its nested children with an
// explicit stack instead of recursion, guarding against revisiting an id
// that is still open on the current path.
func (g *geomParser) parseTree(raw any, docPath PathRef, stackOrder int) *Component {
	root := g.decodeNode(raw, docPath, "", "", stackOrder)
	if root == nil {
		return nil
	}

	open := map[string]bool{root.ID: true}
	stack := []*gframe{{comp: root, children: childList(raw), docPath: docPath}}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		if top.next >= len(top.children) {
			delete(open, top.comp.ID)
			stack = stack[:len(stack)-1]
			continue
		}
		i := top.next
		top.next++
		childRaw := top.children[i]
		childDoc := top.docPath.Field("children").Index(i)

		child := g.decodeNode(childRaw, childDoc, top.comp.ID, top.comp.path, i)
		if child == nil {
			continue
		}
		if open[child.ID] {
			g.iss = AppendIssues(g.iss, Issue{
				Path: top.comp.path + "/" + child.ID, Code: CodeCyclicGeometryReference,
				Message: i18n.T(CodeCyclicGeometryReference, nil),
				Params:  map[string]any{"id": child.ID, "at": childDoc.Pointer()},
				Offset:  -1,
			})
			continue
		}
		top.comp.Children = append(top.comp.Children, child)
		open[child.ID] = true
		stack = append(stack, &gframe{comp: child, children: childList(childRaw), docPath: childDoc})
	}
	return root
}

func childList(raw any) []any {
	obj, ok := jsontext.Object(raw)
	if !ok {
		return nil
	}
	arr, _ := jsontext.Array(obj["children"])
	return arr
}

// decodeNode builds a Component from one raw object, resolving shape and
// material references. Children are left to the caller's worklist.
func (g *geomParser) decodeNode(raw any, docPath PathRef, parentID, parentPath string, order int) *Component {
	obj, ok := jsontext.Object(raw)
	if !ok {
		g.iss = AppendIssues(g.iss, docPath.Issue(CodeInvalidType, "component must be an object"))
		return nil
	}
	id, ok := jsontext.String(obj["id"])
	if !ok || id == "" {
		g.iss = AppendIssues(g.iss, docPath.Field("id").Issue(CodeRequired, i18n.T(CodeRequired, nil)))
		return nil
	}

	path := id
	if parentPath != "" {
		path = parentPath + "/" + id
	}
	c := &Component{
		ID:         id,
		Name:       id,
		Role:       g.role,
		Transform:  IdentityTransform(),
		StackOrder: order,
		parentID:   parentID,
		path:       path,
	}
	if name, ok := jsontext.String(obj["name"]); ok && name != "" {
		c.Name = name
	}

	g.checkUnknownKeys(obj, docPath)
	g.resolveShape(c, obj, docPath)
	g.resolveMaterial(c, obj, docPath)

	if rawTr, present := obj["transform"]; present {
		c.Transform = g.parseTransform(rawTr, docPath.Field("transform"))
	}
	return c
}

func (g *geomParser) checkUnknownKeys(obj map[string]any, docPath PathRef) {
	if g.opt.unknownKeys == UnknownIgnore {
		return
	}
	for k := range obj {
		if componentKeys[k] {
			continue
		}
		is := docPath.Field(k).Issue(CodeUnknownKey, i18n.T(CodeUnknownKey, nil), "key", k)
		if g.opt.unknownKeys == UnknownWarn {
			is.Severity = SeverityWarn
		}
		g.iss = AppendIssues(g.iss, is)
	}
}

func (g *geomParser) resolveShape(c *Component, obj map[string]any, docPath PathRef) {
	if inline, present := obj["shape"]; present {
		s, si := parseShapeAt(inline, docPath.Field("shape"))
		g.iss = AppendIssues(g.iss, si...)
		c.Shape = s
		return
	}
	ref, ok := jsontext.String(obj["shape_ref"])
	if !ok || ref == "" {
		g.iss = AppendIssues(g.iss, docPath.Field("shape_ref").Issue(CodeRequired, i18n.T(CodeRequired, nil)))
		return
	}
	c.ShapeRef = ref
	s, known := g.shapes[ref]
	if !known {
		g.iss = AppendIssues(g.iss, Issue{
			Path: c.path, Code: CodeUnresolvedShapeReference,
			Message: i18n.T(CodeUnresolvedShapeReference, map[string]string{"shape": ref}),
			Params:  map[string]any{"shape": ref, "component": c.path, "at": docPath.Field("shape_ref").Pointer()},
			Offset:  -1,
		})
		return
	}
	c.Shape = s
}

func (g *geomParser) resolveMaterial(c *Component, obj map[string]any, docPath PathRef) {
	ref, ok := jsontext.String(obj["material_ref"])
	if !ok || ref == "" {
		return // material is optional; bindings may come from object_materials
	}
	c.MaterialRef = ref
	m, known := g.materials[ref]
	if !known {
		g.iss = AppendIssues(g.iss, Issue{
			Path: c.path, Code: CodeUnresolvedMaterialReference,
			Message: i18n.T(CodeUnresolvedMaterialReference, map[string]string{"material": ref}),
			Params:  map[string]any{"material": ref, "component": c.path, "at": docPath.Field("material_ref").Pointer()},
			Offset:  -1,
		})
		return
	}
	c.Material = m
}

func (g *geomParser) parseTransform(raw any, docPath PathRef) Transform {
	tr := IdentityTransform()
	obj, ok := jsontext.Object(raw)
	if !ok {
		g.iss = AppendIssues(g.iss, docPath.Issue(CodeInvalidType, "transform must be an object"))
		return tr
	}
	// axisDefault fills axes a partially specified vector leaves out: 0 for
	// position/rotation, 1 for scale.
	read := func(key string, axisDefault float64) Vec3 {
		def := Vec3{axisDefault, axisDefault, axisDefault}
		v, present := obj[key]
		if !present {
			return def
		}
		if vo, ok := jsontext.Object(v); ok {
			out := def
			bad := false
			setAxis := func(name string, dst *float64) {
				av, present := vo[name]
				if !present {
					return
				}
				f, ok := jsontext.Number(av)
				if !ok {
					bad = true
					return
				}
				*dst = f
			}
			setAxis("x", &out.X)
			setAxis("y", &out.Y)
			setAxis("z", &out.Z)
			if bad {
				g.iss = AppendIssues(g.iss, docPath.Field(key).Issue(CodeInvalidType, "coordinates must be finite numbers"))
				return def
			}
			return out
		}
		if arr, ok := jsontext.Array(v); ok && len(arr) == 3 {
			x, okx := jsontext.Number(arr[0])
			y, oky := jsontext.Number(arr[1])
			z, okz := jsontext.Number(arr[2])
			if okx && oky && okz {
				return Vec3{x, y, z}
			}
		}
		g.iss = AppendIssues(g.iss, docPath.Field(key).Issue(CodeInvalidType, "expected {x,y,z} or [x,y,z]"))
		return def
	}
	tr.Position = read("position", 0)
	tr.Rotation = read("rotation", 0)
	tr.Scale = read("scale", 1)
	return tr
}
