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
	"text/tabwriter"
)

// RenderTable writes t to w as an aligned column table, one row per
// record, one column per field id (grouping octets already excluded by
// FieldNames), with a trailing "[deleted]" marker column.
func RenderTable(w io.Writer, t *Table) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	names := t.FieldNames()

	header := append([]string{"Row"}, names...)
	header = append(header, "[deleted]")
	if _, err := fmt.Fprintln(tw, joinTab(header)); err != nil {
		return err
	}

	for i, row := range t.Rows() {
		cells := make([]string, 0, len(names)+2)
		cells = append(cells, strconv.Itoa(i))
		for _, name := range names {
			fv := row.MustField(name)
			cells = append(cells, fv.Display())
		}
		cells = append(cells, strconv.FormatBool(row.Deleted()))
		if _, err := fmt.Fprintln(tw, joinTab(cells)); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func joinTab(cells []string) string {
	out := cells[0]
	for _, c := range cells[1:] {
		out += "\t" + c
	}
	return out
}

// ExportCSV writes t to w as CSV: a header row of field ids (plus a
// leading "deleted" column), one data row per record, every cell
// rendered with FieldValue.Display. This mirrors pyrdt.py's own use of
// encoding/csv as both its schema format and, here, its data interchange
// format.
func ExportCSV(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	names := t.FieldNames()

	header := append([]string{"deleted"}, names...)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, row := range t.Rows() {
		record := make([]string, 0, len(names)+1)
		record = append(record, strconv.FormatBool(row.Deleted()))
		for _, name := range names {
			record = append(record, row.MustField(name).Display())
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ImportCSV reads rows produced by ExportCSV (or hand-edited in the same
// shape) and assigns them onto t's existing rows by position, re-encoding
// each cell per its field's type and re-validating the whole row before
// moving to the next. t must already have exactly as many rows as the
// CSV has data rows; ImportCSV never adds or removes rows, only mutates
// the ones a prior Load produced.
func ImportCSV(r io.Reader, t *Table) error {
	cr := csv.NewReader(r)
	records, err := cr.ReadAll()
	if err != nil {
		return fmt.Errorf("%w: reading import csv: %v", ErrSchemaMalformed, err)
	}
	if len(records) < 1 {
		return fmt.Errorf("%w: empty import csv", ErrSchemaMalformed)
	}

	header := records[0]
	if len(header) < 1 || header[0] != "deleted" {
		return fmt.Errorf("%w: import csv must start with a %q column", ErrSchemaMalformed, "deleted")
	}
	names := header[1:]

	data := records[1:]
	if len(data) != t.Len() {
		return fmt.Errorf("%w: import csv has %d data rows, table has %d", ErrStructuralMismatch, len(data), t.Len())
	}

	for i, record := range data {
		if len(record) != len(header) {
			return fmt.Errorf("%w: row %d has %d columns, header has %d", ErrSchemaMalformed, i, len(record), len(header))
		}
		row := t.Rows()[i]
		deleted, err := strconv.ParseBool(record[0])
		if err != nil {
			return fmt.Errorf("%w: row %d: invalid deleted column %q", ErrSchemaMalformed, i, record[0])
		}
		row.SetDeleted(deleted)

		for j, name := range names {
			fv, ok := row.Field(name)
			if !ok {
				return fmt.Errorf("%w: row %d: unknown field %q", ErrSchemaMalformed, i, name)
			}
			if err := assignDisplayCell(fv, record[j+1]); err != nil {
				return NewCodecError(ErrDecodeFailed, t.Kind(), i, name, err.Error())
			}
			if err := fv.Validate(); err != nil {
				return NewCodecError(ErrValidationFailed, t.Kind(), i, name, err.Error())
			}
		}
	}
	return nil
}

// assignDisplayCell parses cell per fv's field type and assigns the
// re-encoded raw bytes, inverting Display() closely enough to round-trip
// values ExportCSV produced, plus plain hand-edited forms (a bare LUT
// label, a bare decimal integer, a bare BCDT tone string).
func assignDisplayCell(fv *FieldValue, cell string) error {
	cell = strings.TrimSpace(cell)
	fd := fv.Descriptor

	if cell == "Unset/Disabled" {
		fv.SetRaw(fillBytes(fv.zeroValue, fd.byteWidth()))
		return nil
	}
	if cell == "<UNINITIALIZED>" {
		return nil
	}

	switch fd.Type {
	case FieldAscii:
		raw, err := encodeASCII(cell, fd.byteWidth())
		if err != nil {
			return err
		}
		fv.SetRaw(raw)
	case FieldUTF16:
		raw, err := encodeUTF16(cell, fd.byteWidth())
		if err != nil {
			return err
		}
		fv.SetRaw(raw)
	case FieldBCD, FieldRevBCD:
		v, err := strconv.ParseUint(cell, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: %q is not a decimal bcd value: %v", ErrDecodeFailed, cell, err)
		}
		var raw []byte
		if fd.Type == FieldBCD {
			raw, err = bcdEncode(v, fd.byteWidth())
		} else {
			raw, err = revBCDEncode(v, fd.byteWidth())
		}
		if err != nil {
			return err
		}
		fv.SetRaw(raw)
	case FieldBCDT:
		tone, sq, err := parseBCDTDisplay(cell)
		if err != nil {
			return err
		}
		raw, err := bcdtEncode(tone, sq)
		if err != nil {
			return err
		}
		fv.SetRaw(raw)
	case FieldInt, FieldBinary:
		v, err := parseIntCell(cell, fd.LUT)
		if err != nil {
			return err
		}
		fv.SetUint(v)
	default:
		return fmt.Errorf("%w: cannot import field type for %q", ErrDecodeFailed, fd.ID)
	}
	return nil
}

// parseIntCell accepts either a bare decimal integer or a LUT label (the
// first whitespace-delimited token of Display()'s "label (0=a, 1=b)"
// rendering matches the label itself, since this codec's lut labels are
// always single tokens).
func parseIntCell(cell string, lut map[uint64]string) (uint64, error) {
	token := cell
	if idx := strings.IndexByte(cell, ' '); idx >= 0 {
		token = cell[:idx]
	}
	if lut != nil {
		for k, label := range lut {
			if label == token {
				return k, nil
			}
		}
	}
	v, err := strconv.ParseUint(token, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is neither a known lut label nor a decimal integer", ErrDecodeFailed, cell)
	}
	return v, nil
}

// parseBCDTDisplay inverts bcdtDisplay's "CTCSS dd.d" / "DCS DnnnN" /
// "DCS DnnnI" renderings.
func parseBCDTDisplay(cell string) (tone uint64, sq squelchType, err error) {
	fields := strings.Fields(cell)
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("%w: %q is not a recognised bcdt rendering", ErrDecodeFailed, cell)
	}
	switch fields[0] {
	case "CTCSS":
		f, ferr := strconv.ParseFloat(fields[1], 64)
		if ferr != nil {
			return 0, 0, fmt.Errorf("%w: %q is not a ctcss tone: %v", ErrDecodeFailed, fields[1], ferr)
		}
		return uint64(f*10 + 0.5), squelchCTCSS, nil
	case "DCS":
		code := fields[1]
		if len(code) < 3 || code[0] != 'D' {
			return 0, 0, fmt.Errorf("%w: %q is not a recognised dcs code", ErrDecodeFailed, code)
		}
		polarity := code[len(code)-1]
		digits := code[1 : len(code)-1]
		v, perr := strconv.ParseUint(digits, 10, 64)
		if perr != nil {
			return 0, 0, fmt.Errorf("%w: %q is not a recognised dcs code", ErrDecodeFailed, code)
		}
		switch polarity {
		case 'N':
			return v, squelchDCSN, nil
		case 'I':
			return v, squelchDCSI, nil
		}
		return 0, 0, fmt.Errorf("%w: %q has an unknown dcs polarity", ErrDecodeFailed, code)
	}
	return 0, 0, fmt.Errorf("%w: %q is not a recognised bcdt rendering", ErrDecodeFailed, cell)
}

// fillBytes returns n bytes all set to b.
func fillBytes(b byte, n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = b
	}
	return out
}
