// Package s7addr is a reference DataItem implementation: S7
// address-string parsing and per-datatype value conversion, kept outside
// the s7 core and wired in through its s7.DataItem interface instead of
// a hardcoded type table.
package s7addr

import (
	"strings"

	"s7link/s7"
)

// TypeCode identifies an S7 scalar data type. The high bit marks an
// array of the base type.
type TypeCode uint16

const (
	TypeBool    TypeCode = 0x0001
	TypeByte    TypeCode = 0x0002 // also USINT
	TypeSInt    TypeCode = 0x0003
	TypeWord    TypeCode = 0x0004 // also UINT
	TypeInt     TypeCode = 0x0005
	TypeDWord   TypeCode = 0x0006 // also UDINT
	TypeDInt    TypeCode = 0x0007
	TypeReal    TypeCode = 0x0008
	TypeLInt    TypeCode = 0x000F
	TypeULInt   TypeCode = 0x0010
	TypeString  TypeCode = 0x0013
	TypeWString TypeCode = 0x0014
	TypeLReal   TypeCode = 0x001E

	// TypeArrayFlag marks a TypeCode as "array of base type".
	TypeArrayFlag TypeCode = 0x8000
)

// IsArray reports whether t is an array of its base type.
func IsArray(t TypeCode) bool { return t&TypeArrayFlag != 0 }

// MakeArrayType returns the array version of base.
func MakeArrayType(base TypeCode) TypeCode { return base | TypeArrayFlag }

// BaseType strips the array flag from t.
func BaseType(t TypeCode) TypeCode { return t &^ TypeArrayFlag }

// ElementSize returns the byte size of one element of the base type.
// WSTRING and STRING have no fixed element size; NewArrayItem sizes
// those from the element count and this returns 0.
func ElementSize(t TypeCode) int {
	switch BaseType(t) {
	case TypeBool, TypeByte, TypeSInt:
		return 1
	case TypeWord, TypeInt:
		return 2
	case TypeDWord, TypeDInt, TypeReal:
		return 4
	case TypeLInt, TypeULInt, TypeLReal:
		return 8
	default:
		return 0
	}
}

// TypeName returns the human-readable type name, with an "[]" suffix for
// array types.
func TypeName(t TypeCode) string {
	name := baseTypeName(BaseType(t))
	if IsArray(t) {
		return name + "[]"
	}
	return name
}

func baseTypeName(t TypeCode) string {
	switch t {
	case TypeBool:
		return "BOOL"
	case TypeByte:
		return "BYTE"
	case TypeSInt:
		return "SINT"
	case TypeWord:
		return "WORD"
	case TypeInt:
		return "INT"
	case TypeDWord:
		return "DWORD"
	case TypeDInt:
		return "DINT"
	case TypeReal:
		return "REAL"
	case TypeLInt:
		return "LINT"
	case TypeULInt:
		return "ULINT"
	case TypeLReal:
		return "LREAL"
	case TypeString:
		return "STRING"
	case TypeWString:
		return "WSTRING"
	default:
		return "UNKNOWN"
	}
}

// TypeCodeFromName resolves a type name (case-insensitive, aliases
// accepted) to its TypeCode.
func TypeCodeFromName(name string) (TypeCode, bool) {
	switch strings.ToUpper(name) {
	case "BOOL":
		return TypeBool, true
	case "BYTE", "USINT":
		return TypeByte, true
	case "SINT":
		return TypeSInt, true
	case "WORD", "UINT":
		return TypeWord, true
	case "INT":
		return TypeInt, true
	case "DWORD", "UDINT":
		return TypeDWord, true
	case "DINT":
		return TypeDInt, true
	case "REAL":
		return TypeReal, true
	case "LINT":
		return TypeLInt, true
	case "ULINT":
		return TypeULInt, true
	case "LREAL":
		return TypeLReal, true
	case "STRING":
		return TypeString, true
	case "WSTRING":
		return TypeWString, true
	default:
		return 0, false
	}
}

// SupportedTypeNames lists the primary type names TypeCodeFromName
// accepts; it also accepts the aliases USINT, UINT and UDINT.
func SupportedTypeNames() []string {
	return []string{"BOOL", "BYTE", "SINT", "INT", "DINT", "LINT", "ULINT", "WORD", "DWORD", "REAL", "LREAL", "STRING", "WSTRING"}
}

// wireVariableType returns the RequestItem variable_type byte for t:
// bit-granular for BOOL, byte-granular for everything else this package
// supports.
func wireVariableType(t TypeCode) s7.VariableType {
	if BaseType(t) == TypeBool {
		return s7.VarBit
	}
	return s7.VarByte
}

// wireTransportSize returns the DataItem block's transport_size byte for
// t
func wireTransportSize(t TypeCode) s7.TransportSize {
	switch BaseType(t) {
	case TypeBool:
		return s7.TransportBit
	case TypeString, TypeWString:
		return s7.TransportChar
	default:
		return s7.TransportByte
	}
}
