package s7

import (
	"bytes"
	"encoding/hex"
	"strings"
	"testing"
)

// TestEncodeConnectRequestScenarioA matches Scenario A byte
// sequence exactly for source TSAP (0xC9,0xCA) and dest (0xCB,0xCC).
func TestEncodeConnectRequestScenarioA(t *testing.T) {
	want := mustHex(t, "03 00 00 16 11 E0 00 00 00 00 00 C0 01 0A C1 02 C9 CA C2 02 CB CC")
	got := encodeConnectRequest(TSAP{0xC9, 0xCA}, TSAP{0xCB, 0xCC})
	if !bytes.Equal(got, want) {
		t.Errorf("encodeConnectRequest:\n got  %X\n want %X", got, want)
	}
}

func TestEncodeConnectRequestTPKTLength(t *testing.T) {
	frame := encodeConnectRequest(TSAP{0x01, 0x00}, TSAP{0x01, 0x02})
	length := getU16(frame, 2)
	if int(length) != len(frame) {
		t.Errorf("tpkt length %d != actual frame length %d", length, len(frame))
	}
}

func TestDecodeConnectConfirm(t *testing.T) {
	cases := []struct {
		name    string
		cotp    []byte
		wantErr bool
	}{
		{"valid CC", []byte{0x05, cotpCC, 0, 0, 0, 0}, false},
		{"wrong pdu type", []byte{0x05, cotpCR, 0, 0, 0, 0}, true},
		{"too short", []byte{0x05}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := decodeConnectConfirm(tc.cotp)
			if (err != nil) != tc.wantErr {
				t.Errorf("decodeConnectConfirm(%v) error = %v, wantErr %v", tc.cotp, err, tc.wantErr)
			}
		})
	}
}

func TestWrapUnwrapDTRoundTrip(t *testing.T) {
	s7pdu := []byte{0x32, 0x01, 0x00, 0x00, 0x00, 0x01, 0x00, 0x08, 0x00, 0x00}
	wrapped := wrapDT(s7pdu)
	if wrapped[1] != cotpDT {
		t.Fatalf("wrapDT: expected pdu_type 0x%02X, got 0x%02X", cotpDT, wrapped[1])
	}
	unwrapped, err := unwrapDT(wrapped)
	if err != nil {
		t.Fatalf("unwrapDT: unexpected error: %v", err)
	}
	if !bytes.Equal(unwrapped, s7pdu) {
		t.Errorf("unwrapDT: got %X, want %X", unwrapped, s7pdu)
	}
}

func TestUnwrapDTRejectsWrongPDUType(t *testing.T) {
	_, err := unwrapDT([]byte{0x02, cotpCC, 0x80})
	if err == nil {
		t.Fatal("unwrapDT: expected error for non-DT pdu type")
	}
}

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(strings.ReplaceAll(s, " ", ""))
	if err != nil {
		t.Fatalf("mustHex: %v", err)
	}
	return b
}
