// Package btd parses BTD thermal-model documents (chip/package geometry,
// materials, power sources, netlist) into a validated in-memory model:
//
//   - Typed shape records for 13 three-dimensional and 8 two-dimensional
//     variants, discriminated by a "type" field (ParseShape)
//   - Base materials with temperature-dependent property tables, composite
//     materials resolved as volume-fraction blends, object-material bindings
//   - A geometry component tree (sections, stacked-die sections, package
//     components) with per-node transforms and resolved shape/material refs
//   - ThermalInfo, the aggregate root with an explicit lifecycle
//     (Empty -> Populating -> Validated -> Frozen) and exhaustive,
//     collect-everything validation
//
// Design policy:
//   - Keep the public API and domain model in the root package; put decoding
//     details under internal/.
//   - Errors are Issues: stable snake_case codes plus JSON-Pointer paths, so a
//     single parse reports everything wrong with the input.
//   - The core is a pure transform; it never logs and never touches the
//     downstream FEA builder. The CLI under cmd/btdconv owns both.
//
// Typical usage:
//
//	info, err := btd.Parse(btd.JSONBytes(data))
//	if err != nil { /* inspect btd.AsIssues(err) */ }
//	out, err := btd.Export(info)
package btd
