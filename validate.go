package btd

import (
	"github.com/reoring/btdconv/i18n"
)

// Validate runs every semantic check and returns the full issue list:
// checks are independent and never short-circuit, so a single call surfaces
// everything wrong with the model. The returned error is a *ValidationError
// when at least one fatal issue was found, nil otherwise (warnings alone do
// not fail validation). On success the model transitions to StateValidated;
// callers may keep mutating and re-validating until Freeze.
func (t *ThermalInfo) Validate() (Issues, error) {
	if t.state == StateFrozen {
		// already validated and sealed; nothing can have changed
		return nil, nil
	}

	var iss Issues
	ids := t.componentIDs()

	iss = AppendIssues(iss, t.checkObjectMaterials(ids)...)
	iss = AppendIssues(iss, t.checkMaterialUse()...)
	iss = AppendIssues(iss, t.checkPowerMaps(ids)...)
	iss = AppendIssues(iss, t.checkThermalParams()...)
	iss = AppendIssues(iss, t.checkNetlist(ids)...)

	t.addWarnings(iss)
	if iss.Fatal() {
		return iss, &ValidationError{Issues: iss}
	}
	t.state = StateValidated
	return iss, nil
}

// Freeze seals the model for read-only consumption by the builder. It
// requires a successful Validate first.
func (t *ThermalInfo) Freeze() error {
	switch t.state {
	case StateFrozen:
		return nil
	case StateValidated:
		t.state = StateFrozen
		return nil
	default:
		if _, err := t.Validate(); err != nil {
			return err
		}
		t.state = StateFrozen
		return nil
	}
}

func (t *ThermalInfo) componentIDs() map[string]bool {
	ids := map[string]bool{}
	t.Walk(func(c *Component) bool {
		ids[c.ID] = true
		return true
	})
	return ids
}

// checkObjectMaterials: every binding target must exist in the geometry tree
// (fatal) and every bound material must still resolve (fatal).
func (t *ThermalInfo) checkObjectMaterials(ids map[string]bool) Issues {
	var iss Issues
	for _, om := range t.objectMaterials {
		if !ids[om.Object] {
			iss = AppendIssues(iss, Issue{
				Path: "/materials/object_materials", Code: CodeDanglingObjectMaterial,
				Message: i18n.T(CodeDanglingObjectMaterial, nil),
				Params:  map[string]any{"object": om.Object, "material": om.Ref},
				Offset:  -1,
			})
		}
		if _, ok := t.materials[om.Ref]; !ok {
			iss = AppendIssues(iss, Issue{
				Path: "/materials/object_materials", Code: CodeUnknownMaterialReference,
				Message: i18n.T(CodeUnknownMaterialReference, map[string]string{"material": om.Ref}),
				Params:  map[string]any{"object": om.Object, "material": om.Ref},
				Offset:  -1,
			})
		}
	}
	return iss
}

// checkMaterialUse: every material name used by a component must resolve
// (fatal). Parse already wires these, but the model is mutable until frozen.
func (t *ThermalInfo) checkMaterialUse() Issues {
	var iss Issues
	t.Walk(func(c *Component) bool {
		if c.MaterialRef != "" {
			if _, ok := t.materials[c.MaterialRef]; !ok {
				iss = AppendIssues(iss, Issue{
					Path: c.Path(), Code: CodeUnresolvedMaterialReference,
					Message: i18n.T(CodeUnresolvedMaterialReference, map[string]string{"material": c.MaterialRef}),
					Params:  map[string]any{"material": c.MaterialRef, "component": c.Path()},
					Offset:  -1,
				})
			}
		}
		return true
	})
	return iss
}

// checkPowerMaps: a power map naming a missing target is an orphan (warning;
// the map is kept but will heat nothing).
func (t *ThermalInfo) checkPowerMaps(ids map[string]bool) Issues {
	var iss Issues
	for _, name := range t.PowerMapNames() {
		pm := t.powerMaps[name]
		if pm.Object == "" || ids[pm.Object] {
			continue
		}
		iss = AppendIssues(iss, Issue{
			Path: "/power_maps/" + name, Code: CodeOrphanedPowerMap,
			Message:  i18n.T(CodeOrphanedPowerMap, nil),
			Params:   map[string]any{"power_map": name, "object": pm.Object},
			Severity: SeverityWarn, Offset: -1,
		})
	}
	return iss
}

// checkThermalParams: the requested solve mode dictates which keys must be
// explicitly present (fatal when absent).
func (t *ThermalInfo) checkThermalParams() Issues {
	var iss Issues
	mode := t.thermal.SolverType()
	required, known := requiredThermalKeys[mode]
	if !known {
		return Issues{{
			Path: "/thermal_parameters/solver_type", Code: CodeUnknownSolverType,
			Message: i18n.T(CodeUnknownSolverType, nil),
			Params:  map[string]any{"solver_type": mode},
			Offset:  -1,
		}}
	}
	for _, key := range required {
		if !t.thermal.Has(key) {
			iss = AppendIssues(iss, Issue{
				Path: "/thermal_parameters/" + key, Code: CodeMissingThermalParam,
				Message: i18n.T(CodeMissingThermalParam, map[string]string{"key": key}),
				Params:  map[string]any{"key": key, "solver_type": mode},
				Offset:  -1,
			})
		}
	}
	return iss
}

// checkNetlist: node component refs and edge endpoints should correspond to
// declared entities (warnings; the netlist is optional connectivity hints).
func (t *ThermalInfo) checkNetlist(ids map[string]bool) Issues {
	if t.netlist == nil {
		return nil
	}
	var iss Issues
	nodeIDs := map[string]bool{}
	for _, n := range t.netlist.Nodes {
		nodeIDs[n.ID] = true
		if n.Component != "" && !ids[n.Component] {
			iss = AppendIssues(iss, Issue{
				Path: "/netlist/nodes/" + n.ID, Code: CodeUnknownNetlistNode,
				Message:  i18n.T(CodeUnknownNetlistNode, nil),
				Params:   map[string]any{"node": n.ID, "component": n.Component},
				Severity: SeverityWarn, Offset: -1,
			})
		}
	}
	for _, e := range t.netlist.Edges {
		for _, end := range []string{e.From, e.To} {
			if !nodeIDs[end] {
				iss = AppendIssues(iss, Issue{
					Path: "/netlist/edges", Code: CodeUnknownNetlistNode,
					Message:  i18n.T(CodeUnknownNetlistNode, nil),
					Params:   map[string]any{"node": end},
					Severity: SeverityWarn, Offset: -1,
				})
			}
		}
	}
	return iss
}
