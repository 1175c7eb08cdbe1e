package s7addr

import (
	"testing"

	"s7link/s7"
)

func TestNewItemScalarTypes(t *testing.T) {
	it, err := NewItem("DB9.DBW6", "INT")
	if err != nil {
		t.Fatalf("NewItem: %v", err)
	}
	if it.Area() != s7.AreaDataBlock || it.DBNumber() != 9 || it.Address() != 6 {
		t.Errorf("address fields wrong: area=%v db=%d addr=%d", it.Area(), it.DBNumber(), it.Address())
	}
	if it.VariableType() != s7.VarByte {
		t.Errorf("VariableType = %v, want VarByte", it.VariableType())
	}
	if it.ReadCount() != 2 {
		t.Errorf("ReadCount = %d, want 2", it.ReadCount())
	}
}

func TestNewItemBoolUsesVarBit(t *testing.T) {
	it, err := NewItem("I0.3", "BOOL")
	if err != nil {
		t.Fatalf("NewItem: %v", err)
	}
	if it.VariableType() != s7.VarBit {
		t.Errorf("VariableType = %v, want VarBit", it.VariableType())
	}
	if it.TransportSize() != s7.TransportBit {
		t.Errorf("TransportSize = %v, want TransportBit", it.TransportSize())
	}
	if it.ReadCount() != 1 {
		t.Errorf("ReadCount = %d, want 1", it.ReadCount())
	}
	if it.BitOffset() != 3 {
		t.Errorf("BitOffset = %d, want 3", it.BitOffset())
	}
}

func TestNewItemUnknownType(t *testing.T) {
	if _, err := NewItem("DB1.DBW0", "NOPE"); err == nil {
		t.Fatal("expected error for unknown type name")
	}
}

func TestNewArrayItemRejectsBoolArray(t *testing.T) {
	if _, err := NewArrayItem("M0.0", "BOOL", 4); err == nil {
		t.Fatal("expected error for BOOL array")
	}
}

func TestNewArrayItemRejectsZeroCount(t *testing.T) {
	if _, err := NewArrayItem("DB1.DBW0", "INT", 0); err == nil {
		t.Fatal("expected error for count < 1")
	}
}

func TestItemWriteReadValueRoundTrip(t *testing.T) {
	it, err := NewItem("DB1.DBD0", "DINT")
	if err != nil {
		t.Fatalf("NewItem: %v", err)
	}
	it.SetInt(-123456)

	buf := make([]byte, 4)
	n, err := it.WriteValue(buf)
	if err != nil {
		t.Fatalf("WriteValue: %v", err)
	}
	if n != 4 {
		t.Fatalf("WriteValue returned %d bytes, want 4", n)
	}

	it2, _ := NewItem("DB1.DBD0", "DINT")
	if err := it2.ReadValue(buf); err != nil {
		t.Fatalf("ReadValue: %v", err)
	}
	if it2.Int() != -123456 {
		t.Errorf("Int() = %d, want -123456", it2.Int())
	}
}

func TestItemFloatRoundTrip(t *testing.T) {
	it, _ := NewItem("DB1.DBD0", "REAL")
	it.SetFloat(3.25)
	buf := make([]byte, 4)
	it.WriteValue(buf)

	it2, _ := NewItem("DB1.DBD0", "REAL")
	it2.ReadValue(buf)
	if it2.Float() != 3.25 {
		t.Errorf("Float() = %v, want 3.25", it2.Float())
	}
}

func TestItemUintRoundTrip(t *testing.T) {
	it, _ := NewItem("DB1.DBW0", "WORD")
	it.SetUint(0xBEEF)
	buf := make([]byte, 2)
	it.WriteValue(buf)

	it2, _ := NewItem("DB1.DBW0", "WORD")
	it2.ReadValue(buf)
	if it2.Uint() != 0xBEEF {
		t.Errorf("Uint() = 0x%X, want 0xBEEF", it2.Uint())
	}
}

func TestItemStringRoundTrip(t *testing.T) {
	it, err := NewArrayItem("DB1.DBB0", "STRING", 10)
	if err != nil {
		t.Fatalf("NewArrayItem: %v", err)
	}
	it.SetString("hello")
	buf := make([]byte, 10)
	it.WriteValue(buf)

	it2, _ := NewArrayItem("DB1.DBB0", "STRING", 10)
	it2.ReadValue(buf)
	if it2.String() != "hello" {
		t.Errorf("String() = %q, want \"hello\"", it2.String())
	}
}

func TestItemBoolRoundTrip(t *testing.T) {
	it, _ := NewItem("M0.0", "BOOL")
	it.SetBool(true)
	buf := make([]byte, 1)
	it.WriteValue(buf)

	it2, _ := NewItem("M0.0", "BOOL")
	it2.ReadValue(buf)
	if !it2.Bool() {
		t.Error("Bool() = false, want true")
	}
}

func TestArrayItemIntAtSetIntAt(t *testing.T) {
	it, err := NewArrayItem("DB1.DBW0", "INT", 3)
	if err != nil {
		t.Fatalf("NewArrayItem: %v", err)
	}
	it.SetIntAt(0, 10)
	it.SetIntAt(1, -20)
	it.SetIntAt(2, 30)

	if got := it.IntAt(0); got != 10 {
		t.Errorf("IntAt(0) = %d, want 10", got)
	}
	if got := it.IntAt(1); got != -20 {
		t.Errorf("IntAt(1) = %d, want -20", got)
	}
	if got := it.IntAt(2); got != 30 {
		t.Errorf("IntAt(2) = %d, want 30", got)
	}
}

func TestItemGoValue(t *testing.T) {
	it, _ := NewItem("DB1.DBW0", "INT")
	it.SetInt(42)
	v, ok := it.GoValue().(int64)
	if !ok || v != 42 {
		t.Errorf("GoValue() = %#v, want int64(42)", it.GoValue())
	}
}

func TestItemWriteValueBufferTooSmall(t *testing.T) {
	it, _ := NewItem("DB1.DBD0", "DINT")
	if _, err := it.WriteValue(make([]byte, 2)); err == nil {
		t.Fatal("expected error for undersized write buffer")
	}
}

func TestItemTypeName(t *testing.T) {
	it, _ := NewItem("DB1.DBW0", "INT")
	if it.TypeName() != "INT" {
		t.Errorf("TypeName() = %q, want INT", it.TypeName())
	}
	arr, _ := NewArrayItem("DB1.DBW0", "INT", 4)
	if arr.TypeName() != "INT[]" {
		t.Errorf("TypeName() = %q, want INT[]", arr.TypeName())
	}
}
