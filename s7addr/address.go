package s7addr

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"s7link/s7"
)

// parsedAddress is the outcome of ParseAddress: an area, an optional DB
// number, a byte offset, and (for bit access) a bit number 0-7.
type parsedAddress struct {
	area      s7.Area
	dbNumber  uint16
	byteOff   uint32
	bitOffset uint8
	isBit     bool
}

// These regular expressions match the address-string grammar operators
// already type S7 addresses in (DB1.DBW6, MW10, I0.0, T5, ...).
var (
	reDB  = regexp.MustCompile(`^DB(\d+)\.DB([XBWDL])(\d+)(?:\.(\d))?$`)
	reIQM = regexp.MustCompile(`^([IQM])([XBWDL])?(\d+)(?:\.(\d))?$`)
	reTC  = regexp.MustCompile(`^([TC])(\d+)$`)
)

// ParseAddress parses an S7 address string (DB1.DBW6, MW10, I0.0, Q2.3,
// T5, C3, ...) into its area/offset/bit components.
func ParseAddress(addr string) (parsedAddress, error) {
	addr = strings.ToUpper(strings.TrimSpace(addr))
	if addr == "" {
		return parsedAddress{}, fmt.Errorf("s7addr: empty address")
	}

	if m := reDB.FindStringSubmatch(addr); m != nil {
		return parseDBAddress(m)
	}
	if m := reIQM.FindStringSubmatch(addr); m != nil {
		return parseIQMAddress(m)
	}
	if m := reTC.FindStringSubmatch(addr); m != nil {
		return parseTCAddress(m)
	}
	return parsedAddress{}, fmt.Errorf("s7addr: invalid address format: %s", addr)
}

func parseDBAddress(m []string) (parsedAddress, error) {
	dbNum, _ := strconv.Atoi(m[1])
	offset, _ := strconv.Atoi(m[3])

	a := parsedAddress{area: s7.AreaDataBlock, dbNumber: uint16(dbNum), byteOff: uint32(offset)}
	if m[2] == "X" {
		if m[4] == "" {
			return parsedAddress{}, fmt.Errorf("s7addr: DBX requires a bit number, e.g. DB1.DBX0.0")
		}
		bit, _ := strconv.Atoi(m[4])
		if bit < 0 || bit > 7 {
			return parsedAddress{}, fmt.Errorf("s7addr: bit number must be 0-7, got %d", bit)
		}
		a.isBit = true
		a.bitOffset = uint8(bit)
	}
	return a, nil
}

func parseIQMAddress(m []string) (parsedAddress, error) {
	var area s7.Area
	switch m[1] {
	case "I":
		area = s7.AreaInput
	case "Q":
		area = s7.AreaOutput
	case "M":
		area = s7.AreaMarker
	}
	offset, _ := strconv.Atoi(m[3])
	a := parsedAddress{area: area, byteOff: uint32(offset)}

	typeLetter := m[2]
	if typeLetter == "" || typeLetter == "X" {
		a.isBit = true
		if m[4] != "" {
			bit, _ := strconv.Atoi(m[4])
			if bit < 0 || bit > 7 {
				return parsedAddress{}, fmt.Errorf("s7addr: bit number must be 0-7, got %d", bit)
			}
			a.bitOffset = uint8(bit)
		}
	}
	return a, nil
}

func parseTCAddress(m []string) (parsedAddress, error) {
	var area s7.Area
	switch m[1] {
	case "T":
		area = s7.AreaTimer
	case "C":
		area = s7.AreaCounter
	}
	num, _ := strconv.Atoi(m[2])
	return parsedAddress{area: area, byteOff: uint32(num)}, nil
}

// ValidateAddress reports whether addr parses as a valid S7 address.
func ValidateAddress(addr string) error {
	_, err := ParseAddress(addr)
	return err
}
