// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package pyrdt

import (
	"fmt"

	"golang.org/x/text/encoding/unicode"
)

// squelchType identifies the coding scheme carried in the top two bits of
// a BCDT-encoded field's second octet.
type squelchType uint8

const (
	squelchCTCSS squelchType = 0
	squelchDCSN  squelchType = 1
	squelchDCSI  squelchType = 2
)

// bcdDecode decodes a little-endian BCD byte slice: the low nibble of
// octet i contributes digit 2i, the high nibble contributes digit 2i+1.
// Nibble values outside 0-9 are malformed input and are reported rather
// than silently accepted or allowed to panic.
func bcdDecode(raw []byte) (uint64, error) {
	var cumsum uint64
	pow := uint64(1)
	for _, octet := range raw {
		lo := octet & 0x0F
		hi := (octet & 0xF0) >> 4
		if lo > 9 || hi > 9 {
			return 0, fmt.Errorf("%w: octet 0x%02x is not valid BCD", ErrDecodeFailed, octet)
		}
		cumsum += uint64(lo) * pow
		pow *= 10
		cumsum += uint64(hi) * pow
		pow *= 10
	}
	return cumsum, nil
}

// revBCDDecode decodes BCD with the octets processed in reverse (most
// significant octet first), nibbles within an octet still low-then-high.
func revBCDDecode(raw []byte) (uint64, error) {
	reversed := make([]byte, len(raw))
	for i, b := range raw {
		reversed[len(raw)-1-i] = b
	}
	return bcdDecode(reversed)
}

// bcdEncode encodes value as little-endian BCD into numOctets bytes.
// Returns ErrCapacityExceeded if value needs more than 2*numOctets
// decimal digits.
func bcdEncode(value uint64, numOctets int) ([]byte, error) {
	max := uint64(1)
	for i := 0; i < 2*numOctets; i++ {
		max *= 10
	}
	if value >= max {
		return nil, fmt.Errorf("%w: %d cannot be BCD encoded in %d octets", ErrCapacityExceeded, value, numOctets)
	}
	encoded := make([]byte, numOctets)
	for i := 0; i < numOctets; i++ {
		lowNibble := value % 10
		value /= 10
		highNibble := value % 10
		value /= 10
		encoded[i] = byte(highNibble<<4) | byte(lowNibble)
	}
	return encoded, nil
}

// revBCDEncode is the inverse of revBCDDecode: encode then reverse octet
// order so that decoding it back with revBCDDecode recovers value.
func revBCDEncode(value uint64, numOctets int) ([]byte, error) {
	encoded, err := bcdEncode(value, numOctets)
	if err != nil {
		return nil, err
	}
	reversed := make([]byte, len(encoded))
	for i, b := range encoded {
		reversed[len(encoded)-1-i] = b
	}
	return reversed, nil
}

// bcdtTone pulls the 14-bit BCD tone and the 2-bit squelch-type selector
// out of a 2-octet BCDT field.
func bcdtTone(raw []byte) (tone uint64, sq squelchType, err error) {
	if len(raw) != 2 {
		return 0, 0, fmt.Errorf("%w: bcdt field must be 2 octets, got %d", ErrDecodeFailed, len(raw))
	}
	masked := []byte{raw[0], raw[1] & 0x3F}
	tone, err = bcdDecode(masked)
	if err != nil {
		return 0, 0, err
	}
	sq = squelchType((raw[1] & 0xC0) >> 6)
	if sq > squelchDCSI {
		return 0, 0, fmt.Errorf("%w: unknown bcdt squelch type %d", ErrDecodeFailed, sq)
	}
	return tone, sq, nil
}

// bcdtDisplay renders a BCDT field per the squelch type encoded in its
// top two bits. A CTCSS tone is rendered with one fixed decimal place; a
// DCS code is rendered with its N(ormal)/I(nverted) polarity suffix.
func bcdtDisplay(raw []byte) (string, error) {
	tone, sq, err := bcdtTone(raw)
	if err != nil {
		return "", err
	}
	switch sq {
	case squelchCTCSS:
		return fmt.Sprintf("CTCSS %.1f", float64(tone)/10.0), nil
	case squelchDCSN:
		return fmt.Sprintf("DCS D%dN", tone), nil
	case squelchDCSI:
		return fmt.Sprintf("DCS D%dI", tone), nil
	}
	return "", fmt.Errorf("%w: unknown bcdt squelch type %d", ErrDecodeFailed, sq)
}

// bcdtEncode is the inverse of bcdtDisplay's source data: given a tone
// value (tenths of a Hz for CTCSS, the bare DCS code otherwise) and a
// squelch type, produce the 2-octet raw field.
func bcdtEncode(tone uint64, sq squelchType) ([]byte, error) {
	if sq > squelchDCSI {
		return nil, fmt.Errorf("%w: unknown bcdt squelch type %d", ErrCapacityExceeded, sq)
	}
	raw, err := bcdEncode(tone, 2)
	if err != nil {
		return nil, err
	}
	raw[1] = (raw[1] & 0x3F) | byte(sq)<<6
	return raw, nil
}

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// decodeUTF16 decodes a little-endian UTF-16 byte slice and trims
// trailing NUL code units.
func decodeUTF16(raw []byte) (string, error) {
	decoded, err := utf16le.NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("%w: invalid utf-16: %v", ErrDecodeFailed, err)
	}
	s := string(decoded)
	end := len(s)
	for end > 0 && s[end-1] == 0 {
		end--
	}
	return s[:end], nil
}

// encodeUTF16 encodes s as little-endian UTF-16 and pads with trailing
// NUL code units up to width bytes. Returns ErrCapacityExceeded if s
// encodes to more bytes than width.
func encodeUTF16(s string, width int) ([]byte, error) {
	encoded, err := utf16le.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid utf-16 input: %v", ErrDecodeFailed, err)
	}
	if len(encoded) > width {
		return nil, fmt.Errorf("%w: %q needs %d bytes, field is %d", ErrCapacityExceeded, s, len(encoded), width)
	}
	padded := make([]byte, width)
	copy(padded, encoded)
	return padded, nil
}

// decodeASCII trims trailing NULs from raw and fails if any remaining
// byte is not 7-bit ASCII.
func decodeASCII(raw []byte) (string, error) {
	end := len(raw)
	for end > 0 && raw[end-1] == 0 {
		end--
	}
	for _, b := range raw[:end] {
		if b >= 0x80 {
			return "", fmt.Errorf("%w: byte 0x%02x is not ASCII", ErrDecodeFailed, b)
		}
	}
	return string(raw[:end]), nil
}

// encodeASCII encodes s as ASCII, NUL-padded to width bytes.
func encodeASCII(s string, width int) ([]byte, error) {
	if len(s) > width {
		return nil, fmt.Errorf("%w: %q needs %d bytes, field is %d", ErrCapacityExceeded, s, len(s), width)
	}
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return nil, fmt.Errorf("%w: byte 0x%02x is not ASCII", ErrDecodeFailed, s[i])
		}
	}
	padded := make([]byte, width)
	copy(padded, s)
	return padded, nil
}

// littleEndianUint decodes raw (1..8 bytes) as an unsigned little-endian
// integer. Used for int/binary fields whose width is a whole number of
// octets wider than a single byte.
func littleEndianUint(raw []byte) uint64 {
	var v uint64
	for i, b := range raw {
		v |= uint64(b) << (8 * i)
	}
	return v
}

// littleEndianBytes encodes v into width little-endian bytes.
func littleEndianBytes(v uint64, width int) []byte {
	out := make([]byte, width)
	for i := 0; i < width; i++ {
		out[i] = byte(v >> (8 * i))
	}
	return out
}
