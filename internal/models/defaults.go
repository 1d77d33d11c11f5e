package models

// DefaultKind represents how a field's default value was declared
type DefaultKind int

const (
	DefaultAbsent   DefaultKind = iota // no default, the field is required
	DefaultMissing                     // explicitly marked as "no value yet"
	DefaultLiteral                     // a plain value (scalar, list or mapping)
	DefaultInstance                    // an instance of another class
	DefaultEnum                        // a member of an enum
	DefaultSentinel                    // a library-internal "no value provided" marker
)

// String returns the string representation of the default kind
func (k DefaultKind) String() string {
	switch k {
	case DefaultAbsent:
		return "absent"
	case DefaultMissing:
		return "missing"
	case DefaultLiteral:
		return "literal"
	case DefaultInstance:
		return "instance"
	case DefaultEnum:
		return "enum"
	case DefaultSentinel:
		return "sentinel"
	default:
		return "unknown"
	}
}

// Default is the declared default of a field. The zero value is DefaultAbsent.
type Default struct {
	Kind     DefaultKind
	Value    Value   // DefaultLiteral
	Class    string  // DefaultInstance: class name; DefaultEnum: enum type name
	Member   string  // DefaultEnum: member name
	Values   []Entry // DefaultInstance: keyword values, in order
	Sentinel string  // DefaultSentinel: name of the marker, for diagnostics
}

// Absent returns the "no default" marker
func Absent() Default {
	return Default{Kind: DefaultAbsent}
}

// Missing returns the explicit missing marker
func Missing() Default {
	return Default{Kind: DefaultMissing}
}

// Literal wraps a literal value
func Literal(v Value) Default {
	return Default{Kind: DefaultLiteral, Value: v}
}

// Instance returns a default constructed from another class
func Instance(class string, values ...Entry) Default {
	return Default{Kind: DefaultInstance, Class: class, Values: values}
}

// EnumMember returns a default naming an enum member
func EnumMember(enum, member string) Default {
	return Default{Kind: DefaultEnum, Class: enum, Member: member}
}

// Sentinel returns a default that was set to a "no value" marker object
func Sentinel(name string) Default {
	return Default{Kind: DefaultSentinel, Sentinel: name}
}

// ValueKind represents the shape of a literal value
type ValueKind int

const (
	ValueNull ValueKind = iota
	ValueBool
	ValueInt
	ValueFloat
	ValueString
	ValueList
	ValueMap
	ValueOpaque
)

// Value is a literal value tree. Maps keep their declaration order.
type Value struct {
	Kind   ValueKind
	Bool   bool
	Int    int64
	Float  float64
	String string  // ValueString; for ValueOpaque, a description of the unrenderable value
	Items  []Value // ValueList
	Map    []Entry // ValueMap
}

// Entry is one key/value pair of a map value or instance keyword
type Entry struct {
	Key   Value
	Value Value
}

// Null returns the null value
func Null() Value { return Value{Kind: ValueNull} }

// Bool returns a boolean value
func Bool(b bool) Value { return Value{Kind: ValueBool, Bool: b} }

// Int returns an integer value
func Int(i int64) Value { return Value{Kind: ValueInt, Int: i} }

// Float returns a float value
func Float(f float64) Value { return Value{Kind: ValueFloat, Float: f} }

// String returns a string value
func String(s string) Value { return Value{Kind: ValueString, String: s} }

// List returns a list value
func List(items ...Value) Value { return Value{Kind: ValueList, Items: items} }

// Map returns a map value with entries in the given order
func Map(entries ...Entry) Value { return Value{Kind: ValueMap, Map: entries} }

// Opaque returns a value that cannot be expressed as a literal
func Opaque(description string) Value { return Value{Kind: ValueOpaque, String: description} }

// KV builds an entry with a string key
func KV(key string, value Value) Entry {
	return Entry{Key: String(key), Value: value}
}
