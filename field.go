// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package pyrdt

import (
	"fmt"
	"sort"
	"strings"
)

// FieldType is the closed set of semantic encodings a field descriptor
// may declare. It replaces the source's string-tagged dispatch with a
// tagged variant so Display/Validate/encode/decode are total switches
// over a known set of cases.
type FieldType int

const (
	// FieldBitfield marks a synthetic grouping octet produced by the
	// schema loader (C2) to hold one or more bit-packed sub-fields. It
	// is never a field the caller authored directly.
	FieldBitfield FieldType = iota
	FieldAscii
	FieldUTF16
	FieldInt
	FieldBinary
	FieldBCD
	FieldRevBCD
	FieldBCDT
)

// fieldTypeNames maps the schema's `type` column to a FieldType.
var fieldTypeNames = map[string]FieldType{
	"bitfield": FieldBitfield,
	"ascii":    FieldAscii,
	"utf16":    FieldUTF16,
	"unicode":  FieldUTF16,
	"int":      FieldInt,
	"binary":   FieldBinary,
	"bcd":      FieldBCD,
	"rev_bcd":  FieldRevBCD,
	"bcdt":     FieldBCDT,
}

func parseFieldType(s string) (FieldType, error) {
	t, ok := fieldTypeNames[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownFieldType, s)
	}
	return t, nil
}

// FieldDescriptor is a field's immutable, schema-authored definition.
// Once a Table's schema has been loaded, FieldDescriptors never change.
type FieldDescriptor struct {
	ID          string
	Description string
	Type        FieldType
	Offset      int // bit offset from the start of the record
	Bits        int

	MinValue      *uint64
	MaxValue      *uint64
	AllowedValues []uint64
	LUT           map[uint64]string

	// Tentative flags a LUT whose polarity was marked "verify" in the
	// original source and has not been confirmed against hardware; see
	// the Open Questions in DESIGN.md.
	Tentative bool

	// Bitfield names the grouping octet descriptor this sub-field
	// belongs to; empty for byte-aligned fields and for grouping octets
	// themselves.
	Bitfield string

	// Constituents lists, in schema order, the sub-field ids grouped
	// under this descriptor. Populated only when Type == FieldBitfield.
	Constituents []string
}

// byteWidth returns the descriptor's storage width in whole bytes,
// rounding a sub-field's bit width up to 1 (it always lives inside a
// single shared octet).
func (fd *FieldDescriptor) byteWidth() int {
	if fd.Bits < 8 {
		return 1
	}
	return fd.Bits / 8
}

// isUnset reports whether raw, belonging to a field in a table whose
// "zero value" octet pattern is zeroValue, is entirely that sentinel
// pattern (the zero-valued / unset rule, §4.4).
func isUnset(raw []byte, zeroValue byte) bool {
	for _, b := range raw {
		if b != zeroValue {
			return false
		}
	}
	return true
}

// FieldValue is a field's runtime state: whether it has been loaded,
// its raw bytes, and a reference to the immutable descriptor that
// governs how it is displayed and validated.
type FieldValue struct {
	Descriptor *FieldDescriptor
	loaded     bool
	raw        []byte // always byteWidth() bytes, little-endian for int/binary
	zeroValue  byte   // the owning table's zero-value octet, for the unset rule
}

// newFieldValue constructs an unloaded field value for fd, scoped to a
// table whose "unset" sentinel octet is zeroValue.
func newFieldValue(fd *FieldDescriptor, zeroValue byte) *FieldValue {
	return &FieldValue{
		Descriptor: fd,
		raw:        make([]byte, fd.byteWidth()),
		zeroValue:  zeroValue,
	}
}

// SetRaw stores raw bytes (copied) and marks the field loaded.
func (fv *FieldValue) SetRaw(raw []byte) {
	buf := make([]byte, len(raw))
	copy(buf, raw)
	fv.raw = buf
	fv.loaded = true
}

// SetUint stores an unsigned integer value, little-endian, truncated to
// the descriptor's byte width, and marks the field loaded. Used for
// byte-aligned int/binary fields and for sub-field assembly during Dump.
func (fv *FieldValue) SetUint(v uint64) {
	fv.SetRaw(littleEndianBytes(v, fv.Descriptor.byteWidth()))
}

// Raw returns the field's raw bytes. For widths of 8 bits or less the
// caller may also use Uint().
func (fv *FieldValue) Raw() []byte {
	return fv.raw
}

// Uint interprets Raw as an unsigned little-endian integer. Valid for
// int/binary/bitfield-sub-field values; bcd/ascii/utf16 fields should use
// Display or the table-engine's decode helpers instead.
func (fv *FieldValue) Uint() uint64 {
	return littleEndianUint(fv.raw)
}

// Loaded reports whether SetRaw/SetUint has been called since
// construction.
func (fv *FieldValue) Loaded() bool {
	return fv.loaded
}

// IsUnset reports whether the field's raw bytes are entirely the owning
// table's zero-value sentinel, with the LUT-key exception of §4.4: a
// field whose value is a valid LUT key is never "unset" even if it
// numerically coincides with the sentinel.
func (fv *FieldValue) IsUnset() bool {
	if fv.Descriptor.Bits < 8 {
		// Sub-fields are never independently unset; only their
		// containing octet can be.
		return false
	}
	if fv.Descriptor.LUT != nil {
		if _, ok := fv.Descriptor.LUT[fv.Uint()]; ok {
			return false
		}
	}
	return isUnset(fv.raw, fv.zeroValue)
}

// Validate checks int-typed fields against MinValue/MaxValue/
// AllowedValues. Other field types always succeed (their validity is
// established by construction, e.g. a successful Display decode).
func (fv *FieldValue) Validate() error {
	if fv.Descriptor.Type != FieldInt && fv.Descriptor.Type != FieldBinary {
		return nil
	}
	if fv.IsUnset() {
		// An unset/disabled field (factory-default flash, e.g. 0xFF) carries
		// no programmed value, so declared bounds don't apply to it.
		return nil
	}
	v := fv.Uint()
	id := fv.Descriptor.ID
	if fv.Descriptor.MaxValue != nil && v > *fv.Descriptor.MaxValue {
		return fmt.Errorf("%w: %s: %d greater than defined maximum %d", ErrValidationFailed, id, v, *fv.Descriptor.MaxValue)
	}
	if fv.Descriptor.MinValue != nil && v < *fv.Descriptor.MinValue {
		return fmt.Errorf("%w: %s: %d less than defined minimum %d", ErrValidationFailed, id, v, *fv.Descriptor.MinValue)
	}
	if len(fv.Descriptor.AllowedValues) > 0 {
		found := false
		for _, allowed := range fv.Descriptor.AllowedValues {
			if v == allowed {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("%w: %s: %d not in permitted values list", ErrValidationFailed, id, v)
		}
	}
	return nil
}

// Display renders the field to a human-readable string, per the
// rendering table in §4.4. Display is total: it never returns an error,
// producing a sentinel or diagnostic string instead so that partial
// dumps remain possible for diagnosis (§7).
func (fv *FieldValue) Display() string {
	if !fv.loaded {
		return "<UNINITIALIZED>"
	}
	if fv.IsUnset() {
		return "Unset/Disabled"
	}

	switch fv.Descriptor.Type {
	case FieldBitfield:
		return "<bitfield>"
	case FieldAscii:
		s, err := decodeASCII(fv.raw)
		if err != nil {
			return fmt.Sprintf("** %v **", err)
		}
		return s
	case FieldUTF16:
		s, err := decodeUTF16(fv.raw)
		if err != nil {
			return fmt.Sprintf("** %v **", err)
		}
		return s
	case FieldInt, FieldBinary:
		v := fv.Uint()
		if fv.Descriptor.LUT != nil {
			if label, ok := fv.Descriptor.LUT[v]; ok {
				return fmt.Sprintf("%s %s", label, allLabels(fv.Descriptor.LUT))
			}
			return fmt.Sprintf("** unknown value %d, expected one of %s **", v, allLabels(fv.Descriptor.LUT))
		}
		return fmt.Sprintf("%d", v)
	case FieldBCD:
		v, err := bcdDecode(fv.raw)
		if err != nil {
			return fmt.Sprintf("** %v **", err)
		}
		return fmt.Sprintf("%0*d", fv.Descriptor.Bits/4, v)
	case FieldRevBCD:
		v, err := revBCDDecode(fv.raw)
		if err != nil {
			return fmt.Sprintf("** %v **", err)
		}
		return fmt.Sprintf("%0*d", fv.Descriptor.Bits/4, v)
	case FieldBCDT:
		s, err := bcdtDisplay(fv.raw)
		if err != nil {
			return fmt.Sprintf("** %v **", err)
		}
		return s
	}
	return "** unknown field type **"
}

// allLabels renders every label in a LUT, in ascending key order, as a
// parenthesised hint alongside the matched/unmatched value - mirroring
// the source's "{label} {all labels}" rendering.
func allLabels(lut map[uint64]string) string {
	keys := make([]uint64, 0, len(lut))
	for k := range lut {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%d=%s", k, lut[k]))
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
