// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package pyrdt

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// schemaRow is one raw CSV record before it is folded into a
// FieldDescriptor (and, for bit-packed fields, a grouping octet).
type schemaRow struct {
	id            string
	description   string
	typ           string
	offset        int
	bits          int
	minValue      *uint64
	maxValue      *uint64
	allowedValues []uint64
	lut           map[uint64]string
	tentative     bool
}

// schema is the C2 output: an ordered field list (grouping octets
// interleaved with their constituents, in schema order) and the C3
// struct template derived from it in the same pass.
type schema struct {
	descriptors []*FieldDescriptor
	byID        map[string]*FieldDescriptor
	template    *structTemplate
}

// loadSchema parses a CSV schema (header row + data rows) per the
// algorithm in §4.2: a running bit offset and an "active bitfield"
// state machine that groups consecutive sub-8-bit fields sharing an
// octet into a single synthetic FieldBitfield descriptor.
//
// This is a direct transliteration of original_source/pyrdt.py's
// _read_fields, generalized to return a typed result (or a wrapped
// ErrSchemaMalformed) instead of mutating a dict and printing it.
func loadSchema(r io.Reader, kind TableKind) (*schema, error) {
	rows, err := readSchemaCSV(r)
	if err != nil {
		return nil, err
	}

	var (
		descriptors     []*FieldDescriptor
		builder         = newTemplateBuilder()
		bitoffset       = 0
		activeBitfield  *FieldDescriptor
		bitfieldCounter = 0
	)

	closeBitfield := func() {
		activeBitfield = nil
	}

	for _, row := range rows {
		if row.id == "" {
			return nil, wrapSchemaErr(kind, "", "schema row missing id")
		}
		if row.offset < bitoffset {
			return nil, wrapSchemaErr(kind, row.id, fmt.Sprintf(
				"field offsets must be strictly increasing: %d < %d", row.offset, bitoffset))
		}

		if row.offset > bitoffset {
			gap := row.offset - bitoffset
			if gap >= 8 {
				closeBitfield()
				builder.addPadding(gap / 8)
				bitoffset = row.offset
			} else {
				// A gap under a byte wide either finishes a partially-filled
				// octet (unclaimed reserved bits) or starts a new sub-field
				// mid-octet; either way, whether row itself is legal at this
				// offset is decided by the per-width checks below, not here.
				if activeBitfield != nil && row.offset%8 == 0 {
					closeBitfield()
				}
				bitoffset = row.offset
			}
		}

		switch {
		case row.bits < 8:
			if row.bits < 1 {
				return nil, wrapSchemaErr(kind, row.id, "bit-packed field must declare 1-7 bits")
			}
			if activeBitfield != nil && row.offset%8 == 0 {
				closeBitfield()
			}
			if row.offset%8+row.bits > 8 {
				return nil, wrapSchemaErr(kind, row.id, "sub-field straddles an octet boundary")
			}
			if activeBitfield == nil {
				bitfieldCounter++
				bfName := fmt.Sprintf("bitfield%d", bitfieldCounter)
				bfOffset := row.offset - row.offset%8
				activeBitfield = &FieldDescriptor{
					ID:     bfName,
					Type:   FieldBitfield,
					Offset: bfOffset,
					Bits:   8,
				}
				descriptors = append(descriptors, activeBitfield)
				builder.addU8(bfName)
			}
			ft, err := parseFieldType(row.typ)
			if err != nil {
				return nil, wrapSchemaErr(kind, row.id, err.Error())
			}
			sub := &FieldDescriptor{
				ID:            row.id,
				Description:   row.description,
				Type:          ft,
				Offset:        row.offset,
				Bits:          row.bits,
				MinValue:      row.minValue,
				MaxValue:      row.maxValue,
				AllowedValues: row.allowedValues,
				LUT:           row.lut,
				Tentative:     row.tentative,
				Bitfield:      activeBitfield.ID,
			}
			activeBitfield.Constituents = append(activeBitfield.Constituents, sub.ID)
			descriptors = append(descriptors, sub)

		case row.bits == 8:
			if row.offset%8 != 0 {
				return nil, wrapSchemaErr(kind, row.id, "8-bit field is not octet-aligned")
			}
			ft, err := parseFieldType(row.typ)
			if err != nil {
				return nil, wrapSchemaErr(kind, row.id, err.Error())
			}
			fd := &FieldDescriptor{
				ID:            row.id,
				Description:   row.description,
				Type:          ft,
				Offset:        row.offset,
				Bits:          row.bits,
				MinValue:      row.minValue,
				MaxValue:      row.maxValue,
				AllowedValues: row.allowedValues,
				LUT:           row.lut,
				Tentative:     row.tentative,
			}
			descriptors = append(descriptors, fd)
			builder.addU8(fd.ID)

		case row.bits > 8 && row.bits%8 == 0:
			if row.offset%8 != 0 {
				return nil, wrapSchemaErr(kind, row.id, "wide field is not octet-aligned")
			}
			ft, err := parseFieldType(row.typ)
			if err != nil {
				return nil, wrapSchemaErr(kind, row.id, err.Error())
			}
			fd := &FieldDescriptor{
				ID:            row.id,
				Description:   row.description,
				Type:          ft,
				Offset:        row.offset,
				Bits:          row.bits,
				MinValue:      row.minValue,
				MaxValue:      row.maxValue,
				AllowedValues: row.allowedValues,
				LUT:           row.lut,
				Tentative:     row.tentative,
			}
			descriptors = append(descriptors, fd)
			builder.addBlob(fd.ID, row.bits/8)

		default:
			return nil, wrapSchemaErr(kind, row.id, "field width is >8 bits but not a multiple of 8")
		}

		bitoffset += row.bits
		if bitoffset%8 == 0 {
			closeBitfield()
		}
	}

	byID := make(map[string]*FieldDescriptor, len(descriptors))
	for _, fd := range descriptors {
		byID[fd.ID] = fd
	}

	return &schema{
		descriptors: descriptors,
		byID:        byID,
		template:    builder.build(),
	}, nil
}

func wrapSchemaErr(kind TableKind, fieldID, reason string) error {
	return NewCodecError(ErrSchemaMalformed, kind, -1, fieldID, reason)
}

// readSchemaCSV parses the schema's required and optional columns. The
// header row names the columns; order is not significant, but
// id/description/type/offset/bits are required.
func readSchemaCSV(r io.Reader) ([]schemaRow, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: reading schema csv: %v", ErrSchemaMalformed, err)
	}
	if len(records) < 1 {
		return nil, fmt.Errorf("%w: empty schema", ErrSchemaMalformed)
	}

	header := records[0]
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}
	required := []string{"id", "description", "type", "offset", "bits"}
	for _, c := range required {
		if _, ok := col[c]; !ok {
			return nil, fmt.Errorf("%w: schema missing required column %q", ErrSchemaMalformed, c)
		}
	}

	get := func(rec []string, name string) string {
		idx, ok := col[name]
		if !ok || idx >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[idx])
	}

	var rows []schemaRow
	for _, rec := range records[1:] {
		if allEmpty(rec) {
			continue
		}
		offset, err := strconv.Atoi(get(rec, "offset"))
		if err != nil {
			return nil, fmt.Errorf("%w: invalid offset %q: %v", ErrSchemaMalformed, get(rec, "offset"), err)
		}
		bits, err := strconv.Atoi(get(rec, "bits"))
		if err != nil {
			return nil, fmt.Errorf("%w: invalid bits %q: %v", ErrSchemaMalformed, get(rec, "bits"), err)
		}

		row := schemaRow{
			id:          get(rec, "id"),
			description: get(rec, "description"),
			typ:         get(rec, "type"),
			offset:      offset,
			bits:        bits,
			tentative:   strings.EqualFold(get(rec, "tentative"), "true"),
		}

		if v := get(rec, "min_value"); v != "" {
			parsed, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: invalid min_value %q: %v", ErrSchemaMalformed, v, err)
			}
			row.minValue = &parsed
		}
		if v := get(rec, "max_value"); v != "" {
			parsed, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: invalid max_value %q: %v", ErrSchemaMalformed, v, err)
			}
			row.maxValue = &parsed
		}
		if v := get(rec, "allowed_values"); v != "" {
			for _, part := range strings.Split(v, "|") {
				part = strings.TrimSpace(part)
				if part == "" {
					continue
				}
				parsed, err := strconv.ParseUint(part, 10, 64)
				if err != nil {
					return nil, fmt.Errorf("%w: invalid allowed_values entry %q: %v", ErrSchemaMalformed, part, err)
				}
				row.allowedValues = append(row.allowedValues, parsed)
			}
		}
		if v := get(rec, "lut"); v != "" {
			lut, err := parseLUT(v)
			if err != nil {
				return nil, fmt.Errorf("%w: invalid lut %q: %v", ErrSchemaMalformed, v, err)
			}
			row.lut = lut
		}

		rows = append(rows, row)
	}
	return rows, nil
}

func allEmpty(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// parseLUT parses a "key=label;key=label" cell into a lookup table.
func parseLUT(s string) (map[uint64]string, error) {
	lut := make(map[uint64]string)
	for _, entry := range strings.Split(s, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		kv := strings.SplitN(entry, "=", 2)
		if len(kv) != 2 {
			return nil, fmt.Errorf("malformed lut entry %q", entry)
		}
		key, err := strconv.ParseUint(strings.TrimSpace(kv[0]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("malformed lut key %q: %w", kv[0], err)
		}
		lut[key] = strings.TrimSpace(kv[1])
	}
	return lut, nil
}
