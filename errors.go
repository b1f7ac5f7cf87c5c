package btd

import (
	"errors"
	"fmt"
	"strings"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	CodeParseError   = "parse_error"
	CodeInvalidType  = "invalid_type"
	CodeRequired     = "required"
	CodeUnknownKey   = "unknown_key"
	CodeDuplicateKey = "duplicate_key"

	// Shape decoding
	CodeUnknownShapeType       = "unknown_shape_type"
	CodeInvalidShapeParameters = "invalid_shape_parameters"

	// Material decoding and resolution
	CodeInvalidPropertyTable      = "invalid_property_table"
	CodeInvalidVolumeFractions    = "invalid_volume_fractions"
	CodeCircularMaterialReference = "circular_material_reference"
	CodeUnknownMaterialReference  = "unknown_material_reference"
	CodeDuplicateObjectMaterial   = "duplicate_object_material"

	// Geometry decoding and resolution
	CodeUnresolvedShapeReference    = "unresolved_shape_reference"
	CodeUnresolvedMaterialReference = "unresolved_material_reference"
	CodeCyclicGeometryReference     = "cyclic_geometry_reference"

	// Post-parse validation
	CodeDanglingObjectMaterial = "dangling_object_material"
	CodeOrphanedPowerMap       = "orphaned_power_map"
	CodeMissingThermalParam    = "missing_thermal_parameter"
	CodeUnknownSolverType      = "unknown_solver_type"
	CodeUnknownNetlistNode     = "unknown_netlist_node"
)

// Issue represents a single parse or validation entry.
type Issue struct {
	Path    string // JSON Pointer into the document, or a component path for geometry issues.
	Code    string // One of the codes listed above.
	Message string
	Hint    string // Optional: remediation hints.
	Cause   error  // Optional: underlying error.
	Offset  int64  // Byte offset in the input source (-1 when unknown).
	// Params carries structured parameters (e.g., {"sum":1.1, "want":1.0})
	// for rendering and observability.
	Params map[string]any
	// Severity distinguishes fatal issues from advisory ones. The zero value
	// is SeverityError; validation warnings carry SeverityWarn.
	Severity Severity
}

// Issues is a collection of parse/validation entries that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// Fatal reports whether any issue in the collection is an error (not a warning).
func (iss Issues) Fatal() bool {
	for _, it := range iss {
		if it.Severity != SeverityWarn {
			return true
		}
	}
	return false
}

// Warnings returns only the advisory entries.
func (iss Issues) Warnings() Issues {
	var out Issues
	for _, it := range iss {
		if it.Severity == SeverityWarn {
			out = append(out, it)
		}
	}
	return out
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally. It also
// unwraps ParseError and ValidationError.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe.Issues, true
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Issues, true
	}
	return nil, false
}

// ParseError wraps sub-parser failures with the top-level section that was
// being decoded and the byte offset when the decoder provided one.
type ParseError struct {
	Section string // top-level document section, e.g. "materials"
	Offset  int64  // byte offset into the input, -1 when unknown
	Issues  Issues
}

func (e *ParseError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("btd: parsing %q (offset %d): %s", e.Section, e.Offset, e.Issues.Error())
	}
	return fmt.Sprintf("btd: parsing %q: %s", e.Section, e.Issues.Error())
}

func (e *ParseError) Unwrap() error { return e.Issues }

// ValidationError is returned by Validate when at least one fatal issue was
// found. Issues holds the full list, warnings included.
type ValidationError struct {
	Issues Issues
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("btd: validation failed: %s", e.Issues.Error())
}

func (e *ValidationError) Unwrap() error { return e.Issues }

// ErrModelFrozen is returned by ThermalInfo mutators once Freeze has been
// called. It signals a programming-contract violation, not bad input.
var ErrModelFrozen = errors.New("btd: model is frozen")

// IssueAt creates an Issue at the given path with provided code, message and params map.
// This is a convenience helper to improve readability at call sites with many parameters.
func IssueAt(p PathRef, code, msg string, params map[string]any) Issue {
	return Issue{Path: p.Pointer(), Code: code, Message: msg, Params: params, Offset: -1}
}
