package btd

import (
	"sort"

	"github.com/reoring/btdconv/internal/jsontext"
)

// ModelState is the ThermalInfo lifecycle. The only legal order is
// Empty -> Populating -> Validated -> Frozen; Validate may be retried (with
// further mutation in between) until Freeze succeeds.
type ModelState int

const (
	StateEmpty ModelState = iota
	StatePopulating
	StateValidated
	StateFrozen
)

func (s ModelState) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StatePopulating:
		return "populating"
	case StateValidated:
		return "validated"
	case StateFrozen:
		return "frozen"
	}
	return "unknown"
}

// ThermalParams wraps the thermal_parameters section with typed accessors
// and the defaults the original reader used.
type ThermalParams struct {
	raw map[string]any
}

// NewThermalParams builds params from already-decoded values (numbers as
// float64/json.Number, strings as strings).
func NewThermalParams(raw map[string]any) ThermalParams {
	if raw == nil {
		raw = map[string]any{}
	}
	return ThermalParams{raw: raw}
}

// Has reports whether the key was explicitly present in the document.
func (p ThermalParams) Has(key string) bool {
	_, ok := p.raw[key]
	return ok
}

// Float returns a numeric parameter.
func (p ThermalParams) Float(key string) (float64, bool) {
	v, ok := p.raw[key]
	if !ok {
		return 0, false
	}
	return jsontext.Number(v)
}

// String returns a string parameter.
func (p ThermalParams) String(key string) (string, bool) {
	v, ok := p.raw[key]
	if !ok {
		return "", false
	}
	return jsontext.String(v)
}

func (p ThermalParams) floatOr(key string, def float64) float64 {
	if f, ok := p.Float(key); ok {
		return f
	}
	return def
}

func (p ThermalParams) stringOr(key, def string) string {
	if s, ok := p.String(key); ok && s != "" {
		return s
	}
	return def
}

// AmbientTemperature in kelvin; defaults to 298.15.
func (p ThermalParams) AmbientTemperature() float64 { return p.floatOr("ambient_temperature", 298.15) }

// SurfaceHeatFlux in W/m^2.
func (p ThermalParams) SurfaceHeatFlux() float64 { return p.floatOr("surface_heat_flux", 0) }

// ConvectionCoefficient in W/(m^2*K).
func (p ThermalParams) ConvectionCoefficient() float64 { return p.floatOr("convection_coefficient", 0) }

// RadiationEmissivity, dimensionless.
func (p ThermalParams) RadiationEmissivity() float64 { return p.floatOr("radiation_emissivity", 0) }

// SolverType is "stationary" or "transient".
func (p ThermalParams) SolverType() string { return p.stringOr("solver_type", "stationary") }

// MaxIterations defaults to 100.
func (p ThermalParams) MaxIterations() int { return int(p.floatOr("max_iterations", 100)) }

// Tolerance defaults to 1e-6.
func (p ThermalParams) Tolerance() float64 { return p.floatOr("tolerance", 1e-6) }

// MeshSize defaults to "normal".
func (p ThermalParams) MeshSize() string { return p.stringOr("mesh_size", "normal") }

// MeshType defaults to "tetrahedral".
func (p ThermalParams) MeshType() string { return p.stringOr("mesh_type", "tetrahedral") }

// ElementOrder defaults to 2.
func (p ThermalParams) ElementOrder() int { return int(p.floatOr("element_order", 2)) }

// TimeStep in seconds (transient solves).
func (p ThermalParams) TimeStep() float64 { return p.floatOr("time_step", 0) }

// TotalTime in seconds (transient solves).
func (p ThermalParams) TotalTime() float64 { return p.floatOr("total_time", 0) }

// Values returns a copy of the explicitly present key/value pairs.
func (p ThermalParams) Values() map[string]any {
	out := make(map[string]any, len(p.raw))
	for k, v := range p.raw {
		out[k] = v
	}
	return out
}

// Keys returns the explicitly present keys, sorted.
func (p ThermalParams) Keys() []string {
	out := make([]string, 0, len(p.raw))
	for k := range p.raw {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// requiredThermalKeys maps a solver type to the keys a solvable model must
// declare explicitly. Keys with defaults (ambient temperature, mesh
// controls) are never required; transient solves need an explicit time grid.
var requiredThermalKeys = map[string][]string{
	"stationary": {},
	"transient":  {"time_step", "total_time"},
}

// PowerMap is a named 2D power-density grid used as a heat-source boundary
// condition. XCoords/YCoords are cell edges; Power is row-major with
// len(Power) == len(YCoords)-1 rows of len(XCoords)-1 cells, in W/m^2.
type PowerMap struct {
	Name      string
	Object    string // target surface/object id
	BaseZ     float64
	Thickness float64
	XCoords   []float64
	YCoords   []float64
	Power     [][]float64
}

// CellPower returns the density of cell (ix, iy).
func (pm *PowerMap) CellPower(ix, iy int) float64 {
	if iy < 0 || iy >= len(pm.Power) {
		return 0
	}
	row := pm.Power[iy]
	if ix < 0 || ix >= len(row) {
		return 0
	}
	return row[ix]
}

// TotalPower integrates density over the grid, in watts.
func (pm *PowerMap) TotalPower() float64 {
	total := 0.0
	for iy := 0; iy+1 < len(pm.YCoords); iy++ {
		dy := pm.YCoords[iy+1] - pm.YCoords[iy]
		for ix := 0; ix+1 < len(pm.XCoords); ix++ {
			dx := pm.XCoords[ix+1] - pm.XCoords[ix]
			total += pm.CellPower(ix, iy) * dx * dy
		}
	}
	return total
}

// NetlistNode is one thermal/electrical node of the connectivity graph.
type NetlistNode struct {
	ID        string
	Component string // geometry component id, may be empty for ambient nodes
	Kind      string // "die", "package", "ambient", ...
}

// NetlistEdge connects two nodes with a thermal resistance in K/W.
type NetlistEdge struct {
	From, To   string
	Resistance float64
}

// Netlist is the optional die/package connectivity description.
type Netlist struct {
	Nodes []NetlistNode
	Edges []NetlistEdge
}

// ThermalInfo is the aggregate root owning everything the parser produced.
// It is constructed empty, populated in a fixed dependency order (materials,
// shapes, geometry, power/netlist), validated, then frozen for read-only
// consumption by the downstream builder.
type ThermalInfo struct {
	name  string
	state ModelState

	baseMaterials      map[string]*BaseMaterial
	compositeMaterials map[string]*CompositeMaterial
	materials          map[string]Material // unified name -> material view
	objectMaterials    []ObjectMaterial

	shapes map[string]Shape
	roots  []*Component

	parameters map[string]any // global key -> scalar/string
	thermal    ThermalParams
	powerMaps  map[string]*PowerMap
	netlist    *Netlist

	warnings Issues
}

// NewThermalInfo returns an empty model.
func NewThermalInfo(name string) *ThermalInfo {
	return &ThermalInfo{
		name:               name,
		state:              StateEmpty,
		baseMaterials:      map[string]*BaseMaterial{},
		compositeMaterials: map[string]*CompositeMaterial{},
		materials:          map[string]Material{},
		shapes:             map[string]Shape{},
		parameters:         map[string]any{},
		thermal:            NewThermalParams(nil),
		powerMaps:          map[string]*PowerMap{},
	}
}

func (t *ThermalInfo) mutable() error {
	if t.state == StateFrozen {
		return ErrModelFrozen
	}
	if t.state == StateEmpty {
		t.state = StatePopulating
	} else if t.state == StateValidated {
		// mutation invalidates a prior successful validation
		t.state = StatePopulating
	}
	return nil
}

// Name returns the model name.
func (t *ThermalInfo) Name() string { return t.name }

// State returns the lifecycle state.
func (t *ThermalInfo) State() ModelState { return t.state }

// SetName renames the model.
func (t *ThermalInfo) SetName(name string) error {
	if err := t.mutable(); err != nil {
		return err
	}
	t.name = name
	return nil
}

// SetMaterials installs the parsed material tables. Base and composite names
// share one namespace.
func (t *ThermalInfo) SetMaterials(base map[string]*BaseMaterial, composite map[string]*CompositeMaterial) error {
	if err := t.mutable(); err != nil {
		return err
	}
	t.baseMaterials = base
	t.compositeMaterials = composite
	t.materials = map[string]Material{}
	for n, m := range base {
		t.materials[n] = m
	}
	for n, m := range composite {
		t.materials[n] = m
	}
	return nil
}

// SetObjectMaterials installs the object-material bindings.
func (t *ThermalInfo) SetObjectMaterials(bindings []ObjectMaterial) error {
	if err := t.mutable(); err != nil {
		return err
	}
	t.objectMaterials = bindings
	return nil
}

// SetShapes installs the shared shape library.
func (t *ThermalInfo) SetShapes(shapes map[string]Shape) error {
	if err := t.mutable(); err != nil {
		return err
	}
	t.shapes = shapes
	return nil
}

// AddRoot appends a geometry root (section, stacked-die section or package
// component tree).
func (t *ThermalInfo) AddRoot(c *Component) error {
	if err := t.mutable(); err != nil {
		return err
	}
	if c != nil {
		t.roots = append(t.roots, c)
	}
	return nil
}

// SetParameters installs the global parameter map.
func (t *ThermalInfo) SetParameters(params map[string]any) error {
	if err := t.mutable(); err != nil {
		return err
	}
	if params == nil {
		params = map[string]any{}
	}
	t.parameters = params
	return nil
}

// SetThermalParams installs the thermal boundary/solver parameters.
func (t *ThermalInfo) SetThermalParams(p ThermalParams) error {
	if err := t.mutable(); err != nil {
		return err
	}
	t.thermal = p
	return nil
}

// AddPowerMap installs one named power map; duplicate names override.
func (t *ThermalInfo) AddPowerMap(pm *PowerMap) error {
	if err := t.mutable(); err != nil {
		return err
	}
	if pm != nil {
		t.powerMaps[pm.Name] = pm
	}
	return nil
}

// SetNetlist installs the optional netlist.
func (t *ThermalInfo) SetNetlist(n *Netlist) error {
	if err := t.mutable(); err != nil {
		return err
	}
	t.netlist = n
	return nil
}

func (t *ThermalInfo) addWarnings(iss Issues) {
	for _, it := range iss {
		if it.Severity == SeverityWarn {
			t.warnings = append(t.warnings, it)
		}
	}
}

// Material looks up a base or composite material by name.
func (t *ThermalInfo) Material(name string) (Material, bool) {
	m, ok := t.materials[name]
	return m, ok
}

// MaterialNames returns all material names, sorted.
func (t *ThermalInfo) MaterialNames() []string {
	out := make([]string, 0, len(t.materials))
	for n := range t.materials {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Materials enumerates all materials in name order.
func (t *ThermalInfo) Materials() []Material {
	names := t.MaterialNames()
	out := make([]Material, 0, len(names))
	for _, n := range names {
		out = append(out, t.materials[n])
	}
	return out
}

// ObjectMaterials returns the object-material bindings in document order.
func (t *ThermalInfo) ObjectMaterials() []ObjectMaterial {
	out := make([]ObjectMaterial, len(t.objectMaterials))
	copy(out, t.objectMaterials)
	return out
}

// Shape looks up a shared shape by id.
func (t *ThermalInfo) Shape(id string) (Shape, bool) {
	s, ok := t.shapes[id]
	return s, ok
}

// Roots returns the geometry tree roots in document order.
func (t *ThermalInfo) Roots() []*Component {
	out := make([]*Component, len(t.roots))
	copy(out, t.roots)
	return out
}

// Walk visits every component of every root in pre-order.
func (t *ThermalInfo) Walk(fn func(*Component) bool) {
	for _, r := range t.roots {
		r.Walk(fn)
	}
}

// Component finds a component by id anywhere in the geometry.
func (t *ThermalInfo) Component(id string) (*Component, bool) {
	var found *Component
	t.Walk(func(c *Component) bool {
		if c.ID == id {
			found = c
			return false
		}
		return true
	})
	return found, found != nil
}

// Parameter looks up a global parameter.
func (t *ThermalInfo) Parameter(key string) (any, bool) {
	v, ok := t.parameters[key]
	return v, ok
}

// ParameterKeys returns the global parameter keys, sorted.
func (t *ThermalInfo) ParameterKeys() []string {
	out := make([]string, 0, len(t.parameters))
	for k := range t.parameters {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// ThermalParams returns the thermal boundary/solver parameters.
func (t *ThermalInfo) ThermalParams() ThermalParams { return t.thermal }

// PowerMap looks up a power map by name.
func (t *ThermalInfo) PowerMap(name string) (*PowerMap, bool) {
	pm, ok := t.powerMaps[name]
	return pm, ok
}

// PowerMapNames returns the power map names, sorted.
func (t *ThermalInfo) PowerMapNames() []string {
	out := make([]string, 0, len(t.powerMaps))
	for n := range t.powerMaps {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Netlist returns the optional netlist, nil when absent.
func (t *ThermalInfo) Netlist() *Netlist { return t.netlist }

// Warnings returns the advisory issues collected while parsing and
// validating.
func (t *ThermalInfo) Warnings() Issues {
	out := make(Issues, len(t.warnings))
	copy(out, t.warnings)
	return out
}

// Summary counts the model's entities, for reporting.
type Summary struct {
	Name           string
	BaseMaterials  int
	Composites     int
	ObjectBindings int
	Shapes         int
	Components     int
	PowerMaps      int
	NetlistNodes   int
	NetlistEdges   int
	Warnings       int
}

// Summary tallies the model.
func (t *ThermalInfo) Summary() Summary {
	s := Summary{
		Name:           t.name,
		BaseMaterials:  len(t.baseMaterials),
		Composites:     len(t.compositeMaterials),
		ObjectBindings: len(t.objectMaterials),
		Shapes:         len(t.shapes),
		PowerMaps:      len(t.powerMaps),
		Warnings:       len(t.warnings),
	}
	t.Walk(func(*Component) bool {
		s.Components++
		return true
	})
	if t.netlist != nil {
		s.NetlistNodes = len(t.netlist.Nodes)
		s.NetlistEdges = len(t.netlist.Edges)
	}
	return s
}
