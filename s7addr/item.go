package s7addr

import (
	"encoding/binary"
	"fmt"
	"math"

	"s7link/s7"
)

// Item is the reference s7.DataItem implementation: an address plus a
// typed value buffer. Construct one with NewItem; read its value with
// the Bool/Int/Uint/Float/String accessors after a Client.Read, set it
// with the matching Set* method before a Client.Write.
type Item struct {
	addr     parsedAddress
	typeCode TypeCode
	count    int // element count; 1 for scalar

	raw []byte // little scratch buffer holding the wire-order bytes
}

// NewItem parses addr and resolves typeName into a new scalar Item.
func NewItem(addr, typeName string) (*Item, error) {
	return NewArrayItem(addr, typeName, 1)
}

// NewArrayItem is like NewItem but for a fixed-size array of count
// elements of the same base type.
func NewArrayItem(addr, typeName string, count int) (*Item, error) {
	if count < 1 {
		return nil, fmt.Errorf("s7addr: count must be >= 1, got %d", count)
	}
	a, err := ParseAddress(addr)
	if err != nil {
		return nil, err
	}
	base, ok := TypeCodeFromName(typeName)
	if !ok {
		return nil, fmt.Errorf("s7addr: unknown type %q", typeName)
	}
	if base == TypeBool && count != 1 {
		return nil, fmt.Errorf("s7addr: BOOL does not support array access, use a BYTE/WORD mask instead")
	}

	typeCode := base
	if count > 1 {
		typeCode = MakeArrayType(base)
	}

	size := ElementSize(base) * count
	if base == TypeString {
		size = count // STRING here is used as a fixed-length char buffer
	}
	if base == TypeWString {
		size = count * 2
	}

	return &Item{addr: a, typeCode: typeCode, count: count, raw: make([]byte, size)}, nil
}

// Area implements s7.DataItem.
func (it *Item) Area() s7.Area { return it.addr.area }

// DBNumber implements s7.DataItem.
func (it *Item) DBNumber() uint16 { return it.addr.dbNumber }

// Address implements s7.DataItem.
func (it *Item) Address() uint32 { return it.addr.byteOff }

// BitOffset implements s7.DataItem.
func (it *Item) BitOffset() uint8 { return it.addr.bitOffset }

// VariableType implements s7.DataItem.
func (it *Item) VariableType() s7.VariableType { return wireVariableType(it.typeCode) }

// TransportSize implements s7.DataItem.
func (it *Item) TransportSize() s7.TransportSize { return wireTransportSize(it.typeCode) }

// ReadCount implements s7.DataItem: the wire count is bits for a single
// BOOL, otherwise the number of bytes this item occupies.
func (it *Item) ReadCount() uint16 {
	if BaseType(it.typeCode) == TypeBool {
		return 1
	}
	return uint16(len(it.raw))
}

// TypeName returns the item's declared type, e.g. "INT" or "DINT[]".
func (it *Item) TypeName() string { return TypeName(it.typeCode) }

// WriteValue implements s7.DataItem: serializes the current value into
// buf and reports the number of bytes written.
func (it *Item) WriteValue(buf []byte) (int, error) {
	if len(buf) < len(it.raw) {
		return 0, fmt.Errorf("s7addr: write buffer too small for %s (need %d, have %d)", it.TypeName(), len(it.raw), len(buf))
	}
	return copy(buf, it.raw), nil
}

// ReadValue implements s7.DataItem: stores the PLC's raw bytes for this
// item so the Bool/Int/Uint/Float/String accessors can decode them.
func (it *Item) ReadValue(buf []byte) error {
	if len(buf) < len(it.raw) {
		return fmt.Errorf("s7addr: response too short for %s (need %d, have %d)", it.TypeName(), len(it.raw), len(buf))
	}
	copy(it.raw, buf)
	return nil
}

// Bool returns the scalar BOOL value. Only valid when the type is BOOL.
func (it *Item) Bool() bool {
	if len(it.raw) == 0 {
		return false
	}
	return it.raw[0]&0x01 != 0
}

// SetBool sets a scalar BOOL value.
func (it *Item) SetBool(v bool) {
	if len(it.raw) == 0 {
		it.raw = make([]byte, 1)
	}
	if v {
		it.raw[0] = 1
	} else {
		it.raw[0] = 0
	}
}

// Int returns the scalar value as a signed integer, sign-extended from
// the item's declared width (SINT/INT/DINT/LINT).
func (it *Item) Int() int64 {
	return intAt(it.raw, 0, BaseType(it.typeCode))
}

// SetInt stores v truncated to the item's declared width.
func (it *Item) SetInt(v int64) {
	putIntAt(it.raw, 0, BaseType(it.typeCode), v)
}

// Uint returns the scalar value as an unsigned integer (BYTE/WORD/
// DWORD/ULINT).
func (it *Item) Uint() uint64 {
	return uintAt(it.raw, 0, BaseType(it.typeCode))
}

// SetUint stores v truncated to the item's declared width.
func (it *Item) SetUint(v uint64) {
	putUintAt(it.raw, 0, BaseType(it.typeCode), v)
}

// Float returns the scalar value as a float (REAL/LREAL).
func (it *Item) Float() float64 {
	switch BaseType(it.typeCode) {
	case TypeReal:
		if len(it.raw) < 4 {
			return 0
		}
		return float64(math.Float32frombits(binary.BigEndian.Uint32(it.raw)))
	case TypeLReal:
		if len(it.raw) < 8 {
			return 0
		}
		return math.Float64frombits(binary.BigEndian.Uint64(it.raw))
	default:
		return 0
	}
}

// SetFloat stores v as REAL or LREAL depending on the item's type.
func (it *Item) SetFloat(v float64) {
	switch BaseType(it.typeCode) {
	case TypeReal:
		if len(it.raw) < 4 {
			it.raw = make([]byte, 4)
		}
		binary.BigEndian.PutUint32(it.raw, math.Float32bits(float32(v)))
	case TypeLReal:
		if len(it.raw) < 8 {
			it.raw = make([]byte, 8)
		}
		binary.BigEndian.PutUint64(it.raw, math.Float64bits(v))
	}
}

// String returns the raw bytes interpreted as an S7 STRING (no length
// header here: callers working with the core's DataItem contract read
// exactly the declared width, so the length prefix S7 STRING normally
// carries must be sized into count by the caller).
func (it *Item) String() string {
	n := len(it.raw)
	for n > 0 && it.raw[n-1] == 0 {
		n--
	}
	return string(it.raw[:n])
}

// SetString stores s, truncated or zero-padded to the item's declared
// width.
func (it *Item) SetString(s string) {
	for i := range it.raw {
		it.raw[i] = 0
	}
	copy(it.raw, s)
}

// GoValue returns the value as the most natural Go type for the item's
// TypeCode: bool, int64, uint64, float64, or string.
func (it *Item) GoValue() interface{} {
	switch BaseType(it.typeCode) {
	case TypeBool:
		return it.Bool()
	case TypeSInt, TypeInt, TypeDInt, TypeLInt:
		return it.Int()
	case TypeByte, TypeWord, TypeDWord, TypeULInt:
		return it.Uint()
	case TypeReal, TypeLReal:
		return it.Float()
	case TypeString, TypeWString:
		return it.String()
	default:
		return nil
	}
}

// IntAt returns element i of an array item as a signed integer.
func (it *Item) IntAt(i int) int64 {
	base := BaseType(it.typeCode)
	return intAt(it.raw, i*ElementSize(base), base)
}

// SetIntAt stores v at element i of an array item.
func (it *Item) SetIntAt(i int, v int64) {
	base := BaseType(it.typeCode)
	putIntAt(it.raw, i*ElementSize(base), base, v)
}

func intAt(raw []byte, off int, base TypeCode) int64 {
	if off+ElementSize(base) > len(raw) {
		return 0
	}
	switch base {
	case TypeSInt:
		return int64(int8(raw[off]))
	case TypeInt:
		return int64(int16(binary.BigEndian.Uint16(raw[off:])))
	case TypeDInt:
		return int64(int32(binary.BigEndian.Uint32(raw[off:])))
	case TypeLInt:
		return int64(binary.BigEndian.Uint64(raw[off:]))
	default:
		return int64(uintAt(raw, off, base))
	}
}

func putIntAt(raw []byte, off int, base TypeCode, v int64) {
	if off+ElementSize(base) > len(raw) {
		return
	}
	switch base {
	case TypeSInt:
		raw[off] = byte(int8(v))
	case TypeInt:
		binary.BigEndian.PutUint16(raw[off:], uint16(int16(v)))
	case TypeDInt:
		binary.BigEndian.PutUint32(raw[off:], uint32(int32(v)))
	case TypeLInt:
		binary.BigEndian.PutUint64(raw[off:], uint64(v))
	default:
		putUintAt(raw, off, base, uint64(v))
	}
}

func uintAt(raw []byte, off int, base TypeCode) uint64 {
	if off+ElementSize(base) > len(raw) {
		return 0
	}
	switch base {
	case TypeByte:
		return uint64(raw[off])
	case TypeWord:
		return uint64(binary.BigEndian.Uint16(raw[off:]))
	case TypeDWord:
		return uint64(binary.BigEndian.Uint32(raw[off:]))
	case TypeULInt:
		return binary.BigEndian.Uint64(raw[off:])
	default:
		return 0
	}
}

func putUintAt(raw []byte, off int, base TypeCode, v uint64) {
	if off+ElementSize(base) > len(raw) {
		return
	}
	switch base {
	case TypeByte:
		raw[off] = byte(v)
	case TypeWord:
		binary.BigEndian.PutUint16(raw[off:], uint16(v))
	case TypeDWord:
		binary.BigEndian.PutUint32(raw[off:], uint32(v))
	case TypeULInt:
		binary.BigEndian.PutUint64(raw[off:], v)
	}
}
