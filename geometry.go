package btd

// Role tags the geometry component variants. All three share the same tree
// abstraction; the role carries the semantics (stacking order matters for
// stacked-die sections).
type Role string

const (
	RoleSection    Role = "section"
	RoleStackedDie Role = "stacked_die"
	RolePackage    Role = "package"
)

// Transform places a component relative to its parent. Composition order is
// fixed: scale first, then rotation applied around the X, then Y, then Z
// axes (degrees), then translation by Position. Absent parts default to
// identity.
type Transform struct {
	Position Vec3
	Rotation Vec3 // Euler angles in degrees, X->Y->Z order
	Scale    Vec3
}

// IdentityTransform returns the do-nothing transform.
func IdentityTransform() Transform {
	return Transform{Scale: Vec3{1, 1, 1}}
}

// IsIdentity reports whether the transform moves nothing.
func (t Transform) IsIdentity() bool {
	return t.Position == Vec3{} && t.Rotation == Vec3{} && t.Scale == Vec3{1, 1, 1}
}

// Component is one node of the geometry tree. A parent exclusively owns its
// children; the parent id is a non-owning lookup field kept for diagnostics.
type Component struct {
	ID          string
	Name        string // optional display label; defaults to ID
	Role        Role
	ShapeRef    string // empty when the shape was declared inline
	Shape       Shape
	MaterialRef string   // optional
	Material    Material // nil when MaterialRef is empty
	Transform   Transform
	Children    []*Component
	// StackOrder is the document-order index among siblings; for stacked-die
	// sections it is the physical stacking order.
	StackOrder int

	parentID string
	path     string
}

// ParentID returns the owning component's id, empty for roots.
func (c *Component) ParentID() string { return c.parentID }

// Path returns the slash-joined component path from its root, e.g.
// "die_stack/layer_2".
func (c *Component) Path() string { return c.path }

// Walk visits the subtree in pre-order, children in document order. The
// visitor returns false to prune the subtree below the current node.
func (c *Component) Walk(fn func(*Component) bool) {
	if c == nil {
		return
	}
	// explicit stack; trees can be deep
	stack := []*Component{c}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(n) {
			continue
		}
		// push children reversed so they pop in document order
		for i := len(n.Children) - 1; i >= 0; i-- {
			stack = append(stack, n.Children[i])
		}
	}
}

// Subtree returns the component and all descendants in pre-order.
func (c *Component) Subtree() []*Component {
	var out []*Component
	c.Walk(func(n *Component) bool {
		out = append(out, n)
		return true
	})
	return out
}

// BoundingBox unions the local bounding boxes of the subtree's shapes,
// offset by each node's transform position. Advisory only: rotation and
// scale are not applied, so the result is a rough envelope for overlap
// diagnostics.
func (c *Component) BoundingBox() BBox3 {
	var box BBox3
	first := true
	var walk func(n *Component, offset Vec3)
	walk = func(n *Component, offset Vec3) {
		at := offset.Add(n.Transform.Position)
		if n.Shape != nil {
			b := n.Shape.BoundingBox()
			b.Min = b.Min.Add(at)
			b.Max = b.Max.Add(at)
			if first {
				box = b
				first = false
			} else {
				box = box.Union(b)
			}
		}
		for _, ch := range n.Children {
			walk(ch, at)
		}
	}
	walk(c, Vec3{})
	return box
}
