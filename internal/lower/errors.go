package lower

import "errors"

// Lowering failure kinds. Rules wrap these with operator context via
// fmt.Errorf and %w; callers test them with errors.Is.
var (
	// ErrUnsupportedArity reports an operator with an unexpected
	// input or output count for its declared kind.
	ErrUnsupportedArity = errors.New("unsupported operator arity")

	// ErrAttributeType reports an attribute that is present but holds
	// a value of the wrong type.
	ErrAttributeType = errors.New("attribute type mismatch")

	// ErrMissingAttribute reports a required attribute that is absent.
	ErrMissingAttribute = errors.New("missing required attribute")

	// ErrUnknownValue reports an input name that resolves to nothing,
	// including through the materialization fallback.
	ErrUnknownValue = errors.New("unknown value name")

	// ErrInvalidReshape reports an ambiguous or invalid inferred-dimension
	// reshape specification.
	ErrInvalidReshape = errors.New("invalid reshape specification")

	// ErrUnsupportedOperator reports an operator type that neither the
	// common engine nor the format-specific caller recognizes.
	ErrUnsupportedOperator = errors.New("unsupported operator")
)
