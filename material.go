package btd

// Material is anything a geometry object can be made of: a base material or
// a volume-fraction composite. Properties are evaluated at a query
// temperature in kelvin.
type Material interface {
	Name() string
	// ConductivityAt returns the per-axis thermal conductivity (W/(m*K)).
	// Isotropic materials return the same value on all axes.
	ConductivityAt(temp float64) Vec3
	// DensityAt returns the density (kg/m^3).
	DensityAt(temp float64) float64
	// SpecificHeatAt returns the specific heat capacity (J/(kg*K)).
	SpecificHeatAt(temp float64) float64
}

// PropPoint is one breakpoint of a temperature-dependent property table.
type PropPoint struct {
	Temperature float64
	Value       float64
}

// Property is a scalar material property: either a constant or a
// piecewise-linear table over temperature. Tables hold at least one point
// with strictly increasing temperatures. Queries outside the table range
// clamp to the nearest endpoint.
type Property struct {
	points []PropPoint
}

// ConstantProperty builds a temperature-independent property.
func ConstantProperty(v float64) Property {
	return Property{points: []PropPoint{{Temperature: 0, Value: v}}}
}

// TableProperty builds a property from breakpoints. The caller guarantees
// ordering; ParseBaseMaterials validates it before constructing.
func TableProperty(points []PropPoint) Property {
	cp := make([]PropPoint, len(points))
	copy(cp, points)
	return Property{points: cp}
}

// At evaluates the property. Between breakpoints the value is the linear
// blend; outside the range it is the nearest endpoint (flat extrapolation).
func (p Property) At(temp float64) float64 {
	pts := p.points
	switch {
	case len(pts) == 0:
		return 0
	case len(pts) == 1:
		return pts[0].Value
	}
	if temp <= pts[0].Temperature {
		return pts[0].Value
	}
	if temp >= pts[len(pts)-1].Temperature {
		return pts[len(pts)-1].Value
	}
	for i := 1; i < len(pts); i++ {
		if temp <= pts[i].Temperature {
			lo, hi := pts[i-1], pts[i]
			t := (temp - lo.Temperature) / (hi.Temperature - lo.Temperature)
			return lo.Value + t*(hi.Value-lo.Value)
		}
	}
	return pts[len(pts)-1].Value
}

// IsConstant reports whether the property carries a single breakpoint.
func (p Property) IsConstant() bool { return len(p.points) <= 1 }

// Points returns a copy of the breakpoints.
func (p Property) Points() []PropPoint {
	out := make([]PropPoint, len(p.points))
	copy(out, p.points)
	return out
}

// BaseMaterial is a named material with (possibly anisotropic, possibly
// temperature-dependent) conductivity, density and specific heat.
type BaseMaterial struct {
	name       string
	kx, ky, kz Property
	density    Property
	heat       Property
	isotropic  bool
}

func (m *BaseMaterial) Name() string { return m.name }

func (m *BaseMaterial) ConductivityAt(temp float64) Vec3 {
	if m.isotropic {
		k := m.kx.At(temp)
		return Vec3{k, k, k}
	}
	return Vec3{m.kx.At(temp), m.ky.At(temp), m.kz.At(temp)}
}

func (m *BaseMaterial) DensityAt(temp float64) float64 { return m.density.At(temp) }

func (m *BaseMaterial) SpecificHeatAt(temp float64) float64 { return m.heat.At(temp) }

// IsIsotropic reports whether the conductivity was declared with a single
// scalar/table rather than per-axis values.
func (m *BaseMaterial) IsIsotropic() bool { return m.isotropic }

// Conductivity returns the per-axis property tables.
func (m *BaseMaterial) Conductivity() (x, y, z Property) { return m.kx, m.ky, m.kz }

// Density returns the density property table.
func (m *BaseMaterial) Density() Property { return m.density }

// SpecificHeat returns the specific-heat property table.
func (m *BaseMaterial) SpecificHeat() Property { return m.heat }

// CompositeComponent is one (material, volume fraction) term of a composite.
type CompositeComponent struct {
	Ref      string
	Fraction float64
	Material Material // resolved against the material table; never nil after parse
}

// CompositeMaterial blends other materials by volume fraction. Fractions are
// non-negative and sum to 1 within tolerance; references form a DAG.
type CompositeMaterial struct {
	name       string
	components []CompositeComponent
}

func (m *CompositeMaterial) Name() string { return m.name }

// Components returns a copy of the blend terms in document order.
func (m *CompositeMaterial) Components() []CompositeComponent {
	out := make([]CompositeComponent, len(m.components))
	copy(out, m.components)
	return out
}

// ConductivityAt is the volume-weighted average of the component
// conductivities, recursing through nested composites.
func (m *CompositeMaterial) ConductivityAt(temp float64) Vec3 {
	var eff Vec3
	for _, c := range m.components {
		k := c.Material.ConductivityAt(temp)
		eff.X += k.X * c.Fraction
		eff.Y += k.Y * c.Fraction
		eff.Z += k.Z * c.Fraction
	}
	return eff
}

func (m *CompositeMaterial) DensityAt(temp float64) float64 {
	eff := 0.0
	for _, c := range m.components {
		eff += c.Material.DensityAt(temp) * c.Fraction
	}
	return eff
}

func (m *CompositeMaterial) SpecificHeatAt(temp float64) float64 {
	eff := 0.0
	for _, c := range m.components {
		eff += c.Material.SpecificHeatAt(temp) * c.Fraction
	}
	return eff
}

// ObjectMaterial binds a geometry object id to a material.
type ObjectMaterial struct {
	Object   string
	Ref      string
	Material Material
}
