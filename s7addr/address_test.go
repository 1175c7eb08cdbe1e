package s7addr

import (
	"testing"

	"s7link/s7"
)

func TestParseAddressDataBlock(t *testing.T) {
	cases := []struct {
		addr      string
		wantDB    uint16
		wantOff   uint32
		wantBit   bool
		wantBitNo uint8
	}{
		{"DB1.DBX0.0", 1, 0, true, 0},
		{"DB1.DBX0.7", 1, 0, true, 7},
		{"DB9.DBW6", 9, 6, false, 0},
		{"DB20.DBD100", 20, 100, false, 0},
		{"db1.dbb2", 1, 2, false, 0},
	}
	for _, tc := range cases {
		t.Run(tc.addr, func(t *testing.T) {
			a, err := ParseAddress(tc.addr)
			if err != nil {
				t.Fatalf("ParseAddress(%q): %v", tc.addr, err)
			}
			if a.area != s7.AreaDataBlock {
				t.Errorf("area = %v, want AreaDataBlock", a.area)
			}
			if a.dbNumber != tc.wantDB {
				t.Errorf("dbNumber = %d, want %d", a.dbNumber, tc.wantDB)
			}
			if a.byteOff != tc.wantOff {
				t.Errorf("byteOff = %d, want %d", a.byteOff, tc.wantOff)
			}
			if a.isBit != tc.wantBit {
				t.Errorf("isBit = %v, want %v", a.isBit, tc.wantBit)
			}
			if a.isBit && a.bitOffset != tc.wantBitNo {
				t.Errorf("bitOffset = %d, want %d", a.bitOffset, tc.wantBitNo)
			}
		})
	}
}

func TestParseAddressDBXRequiresBitNumber(t *testing.T) {
	if _, err := ParseAddress("DB1.DBX0"); err == nil {
		t.Fatal("expected error for DBX address missing a bit number")
	}
}

func TestParseAddressDBXRejectsBitOutOfRange(t *testing.T) {
	if _, err := ParseAddress("DB1.DBX0.8"); err == nil {
		t.Fatal("expected error for bit number out of range")
	}
}

func TestParseAddressIQM(t *testing.T) {
	cases := []struct {
		addr     string
		wantArea s7.Area
		wantOff  uint32
		wantBit  bool
	}{
		{"I0.0", s7.AreaInput, 0, true},
		{"Q2.3", s7.AreaOutput, 2, true},
		{"M10", s7.AreaMarker, 10, true},
		{"MB10", s7.AreaMarker, 10, false},
		{"MW10", s7.AreaMarker, 10, false},
		{"MD10", s7.AreaMarker, 10, false},
	}
	for _, tc := range cases {
		t.Run(tc.addr, func(t *testing.T) {
			a, err := ParseAddress(tc.addr)
			if err != nil {
				t.Fatalf("ParseAddress(%q): %v", tc.addr, err)
			}
			if a.area != tc.wantArea {
				t.Errorf("area = %v, want %v", a.area, tc.wantArea)
			}
			if a.byteOff != tc.wantOff {
				t.Errorf("byteOff = %d, want %d", a.byteOff, tc.wantOff)
			}
			if a.isBit != tc.wantBit {
				t.Errorf("isBit = %v, want %v", a.isBit, tc.wantBit)
			}
		})
	}
}

func TestParseAddressTimerCounter(t *testing.T) {
	a, err := ParseAddress("T5")
	if err != nil {
		t.Fatalf("ParseAddress(T5): %v", err)
	}
	if a.area != s7.AreaTimer || a.byteOff != 5 {
		t.Errorf("T5 parsed as %+v", a)
	}

	c, err := ParseAddress("C3")
	if err != nil {
		t.Fatalf("ParseAddress(C3): %v", err)
	}
	if c.area != s7.AreaCounter || c.byteOff != 3 {
		t.Errorf("C3 parsed as %+v", c)
	}
}

func TestParseAddressInvalid(t *testing.T) {
	cases := []string{"", "XYZ123", "DB.DBW6", "DB1.DBQ6"}
	for _, addr := range cases {
		if _, err := ParseAddress(addr); err == nil {
			t.Errorf("ParseAddress(%q): expected error", addr)
		}
	}
}

func TestValidateAddress(t *testing.T) {
	if err := ValidateAddress("DB1.DBW0"); err != nil {
		t.Errorf("ValidateAddress(DB1.DBW0): unexpected error: %v", err)
	}
	if err := ValidateAddress("not an address"); err == nil {
		t.Error("ValidateAddress(garbage): expected error")
	}
}
