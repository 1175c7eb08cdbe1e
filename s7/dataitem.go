package s7

// DataItem is the external capability the core consumes to read and
// write one PLC address. The codec is agnostic to the concrete
// datatype: it only needs the address/size/value I/O this interface
// exposes. A reference implementation (address parsing plus per-type
// value conversion) lives in the companion s7addr package, outside the
// core.
type DataItem interface {
	Area() Area
	DBNumber() uint16
	Address() uint32   // byte offset into the area
	BitOffset() uint8  // 0-7, meaningful only when VariableType() == VarBit
	ReadCount() uint16 // number of elements to read (bits for VarBit, else bytes)
	TransportSize() TransportSize
	VariableType() VariableType

	// WriteValue serializes the item's current value into buf, returning
	// the number of bytes written. Called once per item when building a
	// write request.
	WriteValue(buf []byte) (int, error)
	// ReadValue is handed the raw payload bytes returned by the PLC for
	// this item. Called once per successful item in a read response.
	ReadValue(buf []byte) error
}

// requestItemSize is the fixed 12-byte size of a RequestItem.
const requestItemSize = 12

// bitAddress computes the 24-bit bit address for an item: the wire field
// is always start_byte*8, plus a bit offset for bit-granular variable
// types. It rejects addresses that overflow the 24-bit field instead of
// silently truncating.
func bitAddress(item DataItem) (uint32, error) {
	byteAddr := uint64(item.Address()) * 8
	bitOffset := uint64(0)
	if item.VariableType() == VarBit {
		bitOffset = uint64(item.BitOffset())
	}
	full := byteAddr + bitOffset
	if full >= 1<<24 {
		return 0, wrapf(ErrSpecViolation, "bit address %d exceeds 24-bit field", full)
	}
	return uint32(full), nil
}

// encodeRequestItem writes one 12-byte RequestItem into buf at offset
// off. count is in the units the caller already computed (bits for a
// bit-granular item, bytes otherwise).
func encodeRequestItem(buf []byte, off int, item DataItem, count uint16) error {
	addr, err := bitAddress(item)
	if err != nil {
		return err
	}
	dbNumber := item.DBNumber()
	if item.Area() != AreaDataBlock {
		dbNumber = 0
	}

	buf[off] = s7AnySpecType
	buf[off+1] = s7AnyLen
	buf[off+2] = s7AnySyntaxID
	buf[off+3] = byte(item.VariableType())
	putU16(buf, off+4, count)
	putU16(buf, off+6, dbNumber)
	buf[off+8] = byte(item.Area())
	putU24(buf, off+9, addr)
	return nil
}
