package lower

import "fmt"

// AttrKind tags the value held by an Attribute.
type AttrKind int

// Attribute value kinds.
const (
	AttrInt AttrKind = iota
	AttrFloat
	AttrString
	AttrShape
)

// String returns a human-readable kind name for error messages.
func (k AttrKind) String() string {
	switch k {
	case AttrInt:
		return "int"
	case AttrFloat:
		return "float"
	case AttrString:
		return "string"
	case AttrShape:
		return "shape"
	default:
		return "unknown"
	}
}

// Attribute is one tagged attribute value. Exactly the field selected by
// Kind is meaningful.
type Attribute struct {
	Kind AttrKind
	I    int64
	F    float32
	S    string
	Dims []int64
}

// IntAttr constructs an integer attribute.
func IntAttr(v int64) Attribute { return Attribute{Kind: AttrInt, I: v} }

// FloatAttr constructs a float attribute.
func FloatAttr(v float32) Attribute { return Attribute{Kind: AttrFloat, F: v} }

// StringAttr constructs a string attribute.
func StringAttr(v string) Attribute { return Attribute{Kind: AttrString, S: v} }

// ShapeAttr constructs a shape attribute (an ordered integer sequence).
func ShapeAttr(dims ...int64) Attribute { return Attribute{Kind: AttrShape, Dims: dims} }

// AttributeDictionary maps attribute names to tagged values for one
// operator. It is built once before lowering and read-only afterwards.
type AttributeDictionary map[string]Attribute

// Has reports whether key is present, regardless of its kind.
func (d AttributeDictionary) Has(key string) bool {
	_, ok := d[key]
	return ok
}

// Int returns the integer attribute under key. Absence is
// ErrMissingAttribute; a value of another kind is ErrAttributeType.
func (d AttributeDictionary) Int(key string) (int64, error) {
	attr, ok := d[key]
	if !ok {
		return 0, fmt.Errorf("attribute %q: %w", key, ErrMissingAttribute)
	}
	if attr.Kind != AttrInt {
		return 0, fmt.Errorf("attribute %q holds %s, want int: %w", key, attr.Kind, ErrAttributeType)
	}
	return attr.I, nil
}

// IntDefault returns the integer attribute under key, or def when the key
// is absent. A present value of another kind is still ErrAttributeType.
func (d AttributeDictionary) IntDefault(key string, def int64) (int64, error) {
	if !d.Has(key) {
		return def, nil
	}
	return d.Int(key)
}

// Float returns the float attribute under key. Absence is
// ErrMissingAttribute; a value of another kind is ErrAttributeType.
func (d AttributeDictionary) Float(key string) (float32, error) {
	attr, ok := d[key]
	if !ok {
		return 0, fmt.Errorf("attribute %q: %w", key, ErrMissingAttribute)
	}
	if attr.Kind != AttrFloat {
		return 0, fmt.Errorf("attribute %q holds %s, want float: %w", key, attr.Kind, ErrAttributeType)
	}
	return attr.F, nil
}

// FloatDefault returns the float attribute under key, or def when the
// key is absent. A present value of another kind is still ErrAttributeType.
func (d AttributeDictionary) FloatDefault(key string, def float32) (float32, error) {
	if !d.Has(key) {
		return def, nil
	}
	return d.Float(key)
}

// Str returns the string attribute under key. Absence is
// ErrMissingAttribute; a value of another kind is ErrAttributeType.
func (d AttributeDictionary) Str(key string) (string, error) {
	attr, ok := d[key]
	if !ok {
		return "", fmt.Errorf("attribute %q: %w", key, ErrMissingAttribute)
	}
	if attr.Kind != AttrString {
		return "", fmt.Errorf("attribute %q holds %s, want string: %w", key, attr.Kind, ErrAttributeType)
	}
	return attr.S, nil
}

// Shape returns the integer sequence under key. Absence yields an empty
// sequence, never an error; callers define the applicable default. A
// present value of another kind is ErrAttributeType.
func (d AttributeDictionary) Shape(key string) ([]int64, error) {
	attr, ok := d[key]
	if !ok {
		return nil, nil
	}
	if attr.Kind != AttrShape {
		return nil, fmt.Errorf("attribute %q holds %s, want shape: %w", key, attr.Kind, ErrAttributeType)
	}
	return attr.Dims, nil
}
