// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package pyrdt

import (
	"fmt"

	"github.com/go-kratos/kratos/v2/log"
)

// Table owns one table kind's schema, its fixed geometry, and the rows
// materialised from (or destined for) an Image's buffer. It is the C6
// table engine of §4.6.
type Table struct {
	geometry geometry
	schema   *schema
	rows     []*Row
	log      *log.Helper
	strict   bool
}

// newTable loads kind's schema (C2/C3) and returns an empty table ready
// for Load. The schema is read once and cached for the table's
// lifetime, per §4.6 step 1. strict mirrors Options.StrictValidation: it
// promotes LUT-miss anomalies to fatal ValidationFailed errors.
func newTable(kind TableKind, logger *log.Helper, strict bool) (*Table, error) {
	g, ok := geometries[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrUnknownTableKind, kind)
	}
	src, err := openSchema(g.schemaName)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	s, err := loadSchema(src, kind)
	if err != nil {
		return nil, err
	}
	if s.template.Size() != g.recordLength {
		return nil, NewCodecError(ErrStructuralMismatch, kind, -1, "",
			fmt.Sprintf("struct template is %d bytes, record_length is %d", s.template.Size(), g.recordLength))
	}
	return &Table{geometry: g, schema: s, log: logger, strict: strict}, nil
}

// Kind returns the table's kind.
func (t *Table) Kind() TableKind {
	return t.geometry.kind
}

// FieldNames returns field ids in schema order, excluding grouping
// octets (§4.5/§6).
func (t *Table) FieldNames() []string {
	names := make([]string, 0, len(t.schema.descriptors))
	for _, fd := range t.schema.descriptors {
		if fd.Type == FieldBitfield {
			continue
		}
		names = append(names, fd.ID)
	}
	return names
}

// Rows returns every record slot's row, in record-index order.
func (t *Table) Rows() []*Row {
	return t.rows
}

// Len returns the table's record count (its geometry's num_records).
func (t *Table) Len() int {
	return len(t.rows)
}

// Load materialises a Row for every record slot of the table's geometry
// from image, per the algorithm of §4.6. It fails fast: the first
// schema/structural/decode/validation error aborts the whole table,
// leaving no rows populated.
func (t *Table) Load(image []byte) error {
	g := t.geometry
	end := g.firstRecordOffset + g.numRecords*g.recordLength
	if end > len(image) {
		return NewCodecError(ErrStructuralMismatch, g.kind, -1, "",
			fmt.Sprintf("declared geometry [%d:%d) exceeds image length %d", g.firstRecordOffset, end, len(image)))
	}

	rows := make([]*Row, 0, g.numRecords)
	for i := 0; i < g.numRecords; i++ {
		start := g.firstRecordOffset + i*g.recordLength
		record := image[start : start+g.recordLength]

		row := newRow(t.schema.descriptors, g.zeroValue)
		row.deleted = record[g.deletion.offset] == g.deletion.value

		raws, err := t.schema.template.apply(record)
		if err != nil {
			return NewCodecError(ErrStructuralMismatch, g.kind, i, "", err.Error())
		}

		var groupingOctets []string
		for name, rv := range raws {
			fd := t.schema.byID[name]
			if fd.Type == FieldBitfield {
				if err := t.explodeBitfield(row, i, fd, byte(rv.u8)); err != nil {
					return err
				}
				groupingOctets = append(groupingOctets, name)
				continue
			}
			fv := row.MustField(name)
			if rv.isU8 {
				fv.SetUint(rv.u8)
			} else {
				fv.SetRaw(rv.blob)
			}
			if err := fv.Validate(); err != nil {
				return NewCodecError(ErrValidationFailed, g.kind, i, name, err.Error())
			}
			if fd.Tentative && !fv.IsUnset() {
				msg := fmt.Sprintf("row %d: %s", i, anomalyTentativeFieldNonZero(name))
				row.addAnomaly(msg)
				t.log.Warnf("%s: %s", g.kind, msg)
			}
			if fd.Type != FieldBitfield && fd.LUT != nil {
				if _, ok := fd.LUT[fv.Uint()]; !ok && !fv.IsUnset() {
					msg := anomalyLUTMiss(name, fv.Uint())
					if t.strict {
						return NewCodecError(ErrValidationFailed, g.kind, i, name, msg)
					}
					full := fmt.Sprintf("row %d: %s", i, msg)
					row.addAnomaly(full)
					t.log.Warnf("%s: %s", g.kind, full)
				}
			}
		}
		for _, name := range groupingOctets {
			row.removeGroupingOctet(name)
		}

		if row.deleted {
			t.log.Debugf("%s: row %d flagged deleted", g.kind, i)
		}
		rows = append(rows, row)
	}
	t.rows = rows
	return nil
}

// explodeBitfield carves octet into its constituent sub-fields per
// §4.6 step 2.d: each constituent's raw value is
// (octet & mask) >> shift, where shift = descriptor.Offset % 8 and mask
// = (2^Bits - 1) << shift.
func (t *Table) explodeBitfield(row *Row, rowIndex int, group *FieldDescriptor, octet byte) error {
	for _, subID := range group.Constituents {
		sub := t.schema.byID[subID]
		shift := sub.Offset % 8
		mask := byte((1<<uint(sub.Bits))-1) << uint(shift)
		value := uint64((octet & mask) >> uint(shift))

		fv := row.MustField(subID)
		fv.SetUint(value)
		if err := fv.Validate(); err != nil {
			return NewCodecError(ErrValidationFailed, t.geometry.kind, rowIndex, subID, err.Error())
		}
	}
	return nil
}

// Dump serialises every row back into a fresh, geometry-sized slice of
// the owning Image's buffer, per §4.6's Dump algorithm. It writes each
// field's stored raw bytes as they are: it does no re-encoding and no
// width or bounds check, so it never returns ErrCapacityExceeded or
// ErrValidationFailed. Bits of a grouping octet that no sub-field
// declares are written as the table's zero value, like undeclared
// padding bytes.
func (t *Table) Dump() ([]byte, error) {
	g := t.geometry
	out := make([]byte, g.numRecords*g.recordLength)

	for i, row := range t.rows {
		values := make(map[string][]byte)
		groupOctet := make(map[string]byte)

		for _, fd := range t.schema.descriptors {
			if fd.Type == FieldBitfield {
				continue
			}
			if fd.Bitfield != "" {
				fv := row.MustField(fd.ID)
				shift := fd.Offset % 8
				mask := byte((1<<uint(fd.Bits))-1) << uint(shift)
				sub := byte(fv.Uint()) & ((1 << uint(fd.Bits)) - 1)
				octet, ok := groupOctet[fd.Bitfield]
				if !ok {
					octet = g.zeroValue
				}
				groupOctet[fd.Bitfield] = octet&^mask | (sub<<uint(shift))&mask
				continue
			}
			fv := row.MustField(fd.ID)
			values[fd.ID] = fv.Raw()
		}
		for name, octet := range groupOctet {
			values[name] = []byte{octet}
		}

		record := t.schema.template.render(values, g.zeroValue)
		if row.deleted {
			record[g.deletion.offset] = g.deletion.value
		}
		if len(record) != g.recordLength {
			return nil, NewCodecError(ErrStructuralMismatch, g.kind, i, "",
				fmt.Sprintf("rendered record is %d bytes, want %d", len(record), g.recordLength))
		}
		copy(out[i*g.recordLength:(i+1)*g.recordLength], record)
	}
	return out, nil
}
