package btd

// UnknownPolicy controls how unknown keys inside known objects are handled.
type UnknownPolicy int

const (
	UnknownWarn   UnknownPolicy = iota // Record a warning issue and continue.
	UnknownIgnore                      // Drop unknown keys silently.
	UnknownStrict                      // Reject unknown keys with an error.
)

// Severity expresses the severity level for issues.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarn
)

func (s Severity) String() string {
	if s == SeverityWarn {
		return "warning"
	}
	return "error"
}

// FractionTolerance is the default tolerance for composite volume-fraction
// sums.
const FractionTolerance = 1e-6

// Option configures Parse.
type Option func(*parseOptions)

type parseOptions struct {
	unknownKeys UnknownPolicy
	tolerance   float64
	parallelism int
}

func defaultParseOptions() parseOptions {
	return parseOptions{
		unknownKeys: UnknownWarn,
		tolerance:   FractionTolerance,
		parallelism: 1,
	}
}

// WithUnknownKeys overrides how unknown keys inside known objects are treated.
// Unknown top-level keys are always ignored (forward compatibility).
func WithUnknownKeys(p UnknownPolicy) Option {
	return func(o *parseOptions) { o.unknownKeys = p }
}

// WithFractionTolerance overrides the composite volume-fraction sum tolerance.
func WithFractionTolerance(tol float64) Option {
	return func(o *parseOptions) {
		if tol > 0 {
			o.tolerance = tol
		}
	}
}

// WithParallelism allows sibling geometry subtrees to be parsed on up to n
// workers. Results and errors are merged in document order regardless of
// completion order; n <= 1 keeps parsing fully sequential.
func WithParallelism(n int) Option {
	return func(o *parseOptions) {
		if n > 0 {
			o.parallelism = n
		}
	}
}
