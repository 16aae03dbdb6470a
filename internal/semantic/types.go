package semantic

import "strings"

var predefinedValueTypes = map[string]bool{
	"bool": true, "byte": true, "sbyte": true, "char": true, "decimal": true,
	"double": true, "float": true, "int": true, "uint": true, "long": true,
	"ulong": true, "short": true, "ushort": true, "nint": true, "nuint": true,
}

var systemValueTypes = map[string]bool{
	"Boolean": true, "Byte": true, "SByte": true, "Char": true, "Decimal": true,
	"Double": true, "Single": true, "Int16": true, "Int32": true, "Int64": true,
	"UInt16": true, "UInt32": true, "UInt64": true, "IntPtr": true, "UIntPtr": true,
	"DateTime": true, "DateTimeOffset": true, "DateOnly": true, "TimeOnly": true,
	"TimeSpan": true, "Guid": true, "CancellationToken": true, "KeyValuePair": true,
	"Nullable": true, "ValueTuple": true, "Span": true, "ReadOnlySpan": true,
	"Memory": true, "ReadOnlyMemory": true, "ValueTask": true, "Half": true,
	"Int128": true, "UInt128": true, "Index": true, "Range": true,
}

// simpleTypeName strips namespace qualifiers, generic arguments and array
// ranks: "System.Collections.Generic.List<int>" becomes "List".
func simpleTypeName(name string) string {
	name = normalizeTypeName(name)
	if i := strings.IndexByte(name, '<'); i >= 0 {
		name = name[:i]
	}
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	if strings.HasPrefix(name, "global::") {
		name = strings.TrimPrefix(name, "global::")
	}
	if i := strings.LastIndex(name, "::"); i >= 0 {
		name = name[i+2:]
	}
	return name
}

// isBuiltinValueType covers predefined keywords, well-known System value
// types and tuples. Arrays of value types are reference types.
func isBuiltinValueType(name string) bool {
	name = normalizeTypeName(name)
	if name == "" || strings.HasSuffix(name, "]") || strings.HasSuffix(name, "*") {
		return false
	}
	if strings.HasPrefix(name, "(") {
		return true
	}
	if predefinedValueTypes[name] {
		return true
	}
	return systemValueTypes[simpleTypeName(name)]
}
