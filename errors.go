// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package pyrdt

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the schema loader, the struct-template
// builder and the table engine. Callers should match against these with
// errors.Is; per-record detail is attached by CodecError, whose Unwrap
// resolves back to one of these.
var (
	// ErrSchemaMalformed is returned when a schema row violates one of the
	// field-layout invariants (non-monotone offsets, a sub-field straddling
	// an octet boundary, a wide field not a multiple of 8 bits, a missing id).
	ErrSchemaMalformed = errors.New("schema malformed")

	// ErrStructuralMismatch is returned when a table's declared geometry
	// exceeds the image, or the struct template's size does not equal the
	// table's declared record length.
	ErrStructuralMismatch = errors.New("structural mismatch")

	// ErrDecodeFailed is returned when a primitive codec cannot make sense
	// of the bytes it was given: a non-decimal BCD nibble, an invalid UTF-16
	// code unit sequence, a non-ASCII byte in an ascii field, or an unknown
	// BCDT squelch-type selector.
	ErrDecodeFailed = errors.New("decode failed")

	// ErrValidationFailed is returned when a loaded value falls outside its
	// field's declared bounds or enumeration.
	ErrValidationFailed = errors.New("validation failed")

	// ErrCapacityExceeded is returned by the field encoders (BCD, UTF-16,
	// ASCII) when a value needs more room than its field's width; ImportCSV
	// reports such a failure wrapped as ErrDecodeFailed. Dump never returns
	// it, and integer values are truncated to the field width when set
	// (see FieldValue.SetUint) rather than rejected.
	ErrCapacityExceeded = errors.New("capacity exceeded")

	// ErrUnknownTableKind is returned when a caller asks the image façade
	// for a TableKind outside the closed set.
	ErrUnknownTableKind = errors.New("unknown table kind")

	// ErrInvalidImageSize is returned when Image.Load is given an empty
	// image, or when a codeplug file on disk is smaller than the largest
	// table geometry (see OpenCodeplugFile).
	ErrInvalidImageSize = errors.New("invalid image size")

	// ErrUnknownFieldType is returned when a schema declares a field type
	// outside the closed set recognised by the field-value model.
	ErrUnknownFieldType = errors.New("unknown field type")
)

// CodecError attaches table/row/field context to one of the sentinel
// errors above. It implements Unwrap so that errors.Is(err,
// ErrValidationFailed) and errors.As work against a CodecError the same
// way they would against the bare sentinel.
type CodecError struct {
	TableKind TableKind
	RowIndex  int // -1 when the error is not row-scoped (e.g. schema load)
	FieldID   string
	Reason    string
	kind      error
}

// NewCodecError constructs a CodecError wrapping the given sentinel kind.
func NewCodecError(kind error, table TableKind, rowIndex int, fieldID, reason string) *CodecError {
	return &CodecError{
		TableKind: table,
		RowIndex:  rowIndex,
		FieldID:   fieldID,
		Reason:    reason,
		kind:      kind,
	}
}

func (e *CodecError) Error() string {
	if e.RowIndex < 0 {
		return fmt.Sprintf("%s: table=%s field=%s: %s", e.kind, e.TableKind, e.FieldID, e.Reason)
	}
	return fmt.Sprintf("%s: table=%s row=%d field=%s: %s", e.kind, e.TableKind, e.RowIndex, e.FieldID, e.Reason)
}

// Unwrap exposes the wrapped sentinel kind to errors.Is / errors.As.
func (e *CodecError) Unwrap() error {
	return e.kind
}
