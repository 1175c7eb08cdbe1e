package s7

import (
	"bytes"
	"testing"
)

// fakeItem is a minimal s7.DataItem for codec tests.
type fakeItem struct {
	area       Area
	dbNumber   uint16
	address    uint32
	bitOffset  uint8
	readCount  uint16
	transport  TransportSize
	varType    VariableType
	writeBytes []byte
	readBytes  []byte
	readErr    error
}

func (f *fakeItem) Area() Area                  { return f.area }
func (f *fakeItem) DBNumber() uint16             { return f.dbNumber }
func (f *fakeItem) Address() uint32              { return f.address }
func (f *fakeItem) BitOffset() uint8             { return f.bitOffset }
func (f *fakeItem) ReadCount() uint16            { return f.readCount }
func (f *fakeItem) TransportSize() TransportSize { return f.transport }
func (f *fakeItem) VariableType() VariableType   { return f.varType }
func (f *fakeItem) WriteValue(buf []byte) (int, error) {
	return copy(buf, f.writeBytes), nil
}
func (f *fakeItem) ReadValue(buf []byte) error {
	f.readBytes = append([]byte(nil), buf...)
	return f.readErr
}

// TestEncodeRequestItemScenarioB matches Scenario B request
// parameters for a 2-byte read of DB9.DBW6.
func TestEncodeRequestItemScenarioB(t *testing.T) {
	item := &fakeItem{
		area:      AreaDataBlock,
		dbNumber:  9,
		address:   6,
		readCount: 2,
		varType:   VarByte,
	}
	buf := make([]byte, 2+requestItemSize)
	buf[0] = funcRead
	buf[1] = 1
	if err := encodeRequestItem(buf, 2, item, item.ReadCount()); err != nil {
		t.Fatalf("encodeRequestItem: %v", err)
	}
	want := mustHex(t, "04 01 12 0A 10 02 00 02 00 09 84 00 00 30")
	if !bytes.Equal(buf, want) {
		t.Errorf("encodeRequestItem:\n got  %X\n want %X", buf, want)
	}
}

func TestBitAddressOverflowRejected(t *testing.T) {
	item := &fakeItem{
		area:      AreaDataBlock,
		address:   1 << 21, // * 8 = 1<<24, exactly at the 24-bit limit
		varType:   VarByte,
	}
	if _, err := bitAddress(item); err == nil {
		t.Fatal("expected SpecViolation for address at the 24-bit boundary")
	}
}

func TestBitAddressWithinRangeAccepted(t *testing.T) {
	item := &fakeItem{
		area:    AreaDataBlock,
		address: (1 << 21) - 1,
		varType: VarByte,
	}
	if _, err := bitAddress(item); err != nil {
		t.Fatalf("unexpected error for in-range address: %v", err)
	}
}

func TestBitAddressIncludesBitOffsetForVarBit(t *testing.T) {
	item := &fakeItem{area: AreaMarker, address: 10, bitOffset: 3, varType: VarBit}
	got, err := bitAddress(item)
	if err != nil {
		t.Fatalf("bitAddress: %v", err)
	}
	want := uint32(10*8 + 3)
	if got != want {
		t.Errorf("bitAddress = %d, want %d", got, want)
	}
}

func TestEncodeRequestItemClearsDBNumberOutsideDataBlock(t *testing.T) {
	item := &fakeItem{area: AreaMarker, dbNumber: 42, address: 0, varType: VarByte}
	buf := make([]byte, requestItemSize)
	if err := encodeRequestItem(buf, 0, item, 1); err != nil {
		t.Fatalf("encodeRequestItem: %v", err)
	}
	if got := getU16(buf, 6); got != 0 {
		t.Errorf("db_number = %d, want 0 for non-DataBlock area", got)
	}
}
