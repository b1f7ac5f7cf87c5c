package btd

import (
	"context"
	"fmt"
	"os"

	json "github.com/goccy/go-json"
)

// Builder consumes a frozen model and produces build output for a downstream
// solver toolchain. Implementations must treat the model as read-only.
type Builder interface {
	Build(ctx context.Context, model *ThermalInfo, outputPath string) error
}

// ManifestBuilder writes a JSON build manifest: the model summary, every
// material evaluated at the ambient temperature, the flattened component
// list and the total dissipated power. It is the reference Builder used by
// the command-line converter; solver-specific builders replace it.
type ManifestBuilder struct{}

type manifestMaterial struct {
	Name         string  `json:"name"`
	Kind         string  `json:"kind"` // "base" or "composite"
	KX           float64 `json:"k_x"`
	KY           float64 `json:"k_y"`
	KZ           float64 `json:"k_z"`
	Density      float64 `json:"density"`
	SpecificHeat float64 `json:"specific_heat"`
}

type manifestComponent struct {
	Path     string `json:"path"`
	Role     string `json:"role"`
	Shape    string `json:"shape,omitempty"`
	Material string `json:"material,omitempty"`
}

type manifest struct {
	Model       string              `json:"model"`
	AmbientK    float64             `json:"ambient_temperature"`
	SolverType  string              `json:"solver_type"`
	Materials   []manifestMaterial  `json:"materials"`
	Components  []manifestComponent `json:"components"`
	TotalPowerW float64             `json:"total_power_w"`
	Warnings    int                 `json:"warnings"`
}

// Build writes the manifest to outputPath. The model must be frozen.
func (ManifestBuilder) Build(ctx context.Context, model *ThermalInfo, outputPath string) error {
	if model.State() != StateFrozen {
		return fmt.Errorf("btd: build requires a frozen model, state is %s", model.State())
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	tp := model.ThermalParams()
	ambient := tp.AmbientTemperature()
	m := manifest{
		Model:      model.Name(),
		AmbientK:   ambient,
		SolverType: tp.SolverType(),
		Warnings:   len(model.Warnings()),
	}

	for _, name := range model.MaterialNames() {
		mat, _ := model.Material(name)
		kind := "base"
		if _, ok := mat.(*CompositeMaterial); ok {
			kind = "composite"
		}
		k := mat.ConductivityAt(ambient)
		m.Materials = append(m.Materials, manifestMaterial{
			Name: name, Kind: kind,
			KX: k.X, KY: k.Y, KZ: k.Z,
			Density:      mat.DensityAt(ambient),
			SpecificHeat: mat.SpecificHeatAt(ambient),
		})
	}

	model.Walk(func(c *Component) bool {
		mc := manifestComponent{Path: c.Path(), Role: string(c.Role), Material: c.MaterialRef}
		if c.Shape != nil {
			mc.Shape = c.Shape.Describe()
		}
		m.Components = append(m.Components, mc)
		return true
	})

	for _, name := range model.PowerMapNames() {
		pm, _ := model.PowerMap(name)
		m.TotalPowerW += pm.TotalPower()
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(outputPath, append(data, '\n'), 0o644)
}
