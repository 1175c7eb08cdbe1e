package s7

import "testing"

func TestPutGetU16RoundTrip(t *testing.T) {
	cases := []uint16{0, 1, 0xFF, 0x0100, 0xFFFF, 1024, 1920}
	for _, v := range cases {
		buf := make([]byte, 4)
		putU16(buf, 1, v)
		got := getU16(buf, 1)
		if got != v {
			t.Errorf("putU16/getU16(%d): got %d", v, got)
		}
	}
}

func TestPutU16Endianness(t *testing.T) {
	buf := make([]byte, 2)
	putU16(buf, 0, 0x0102)
	if buf[0] != 0x01 || buf[1] != 0x02 {
		t.Errorf("putU16: expected big-endian 01 02, got %02X %02X", buf[0], buf[1])
	}
}

func TestPutGetU24RoundTrip(t *testing.T) {
	cases := []uint32{0, 1, 0xFF, 0xFFFF, 1<<24 - 1}
	for _, v := range cases {
		buf := make([]byte, 5)
		putU24(buf, 1, v)
		got := getU24(buf, 1)
		if got != v {
			t.Errorf("putU24/getU24(%d): got %d", v, got)
		}
	}
}

func TestPutU24Endianness(t *testing.T) {
	buf := make([]byte, 3)
	putU24(buf, 0, 0x010203)
	if buf[0] != 0x01 || buf[1] != 0x02 || buf[2] != 0x03 {
		t.Errorf("putU24: expected big-endian 01 02 03, got %02X %02X %02X", buf[0], buf[1], buf[2])
	}
}
