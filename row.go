// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package pyrdt

// Row is an ordered mapping from field id to FieldValue. Deleted is an
// explicit struct field rather than an in-band map key (§9's "ordered
// mapping with shadow key" redesign note) so that it can never leak into
// FieldIDs/FieldNames, and can never collide with a schema-authored field
// id.
type Row struct {
	ids      []string
	fields   map[string]*FieldValue
	deleted  bool
	anomaly  []string // soft warnings accumulated while assigning this row's fields
}

// newRow constructs an empty row holding one unloaded FieldValue per
// descriptor, in schema order (including grouping octets, which the
// table engine removes once their constituents have been assigned).
func newRow(descriptors []*FieldDescriptor, zeroValue byte) *Row {
	r := &Row{
		ids:    make([]string, 0, len(descriptors)),
		fields: make(map[string]*FieldValue, len(descriptors)),
	}
	for _, fd := range descriptors {
		r.ids = append(r.ids, fd.ID)
		r.fields[fd.ID] = newFieldValue(fd, zeroValue)
	}
	return r
}

// Deleted reports whether the table engine found this record's deletion
// marker set.
func (r *Row) Deleted() bool {
	return r.deleted
}

// SetDeleted flags or unflags the row for deletion. It does not alter
// any other field; Dump writes the marker byte independently of every
// other declared field (§8 property 5).
func (r *Row) SetDeleted(deleted bool) {
	r.deleted = deleted
}

// Field returns the named field's value and whether it exists.
func (r *Row) Field(id string) (*FieldValue, bool) {
	fv, ok := r.fields[id]
	return fv, ok
}

// MustField is Field, panicking if id is not a field of this row. Used
// internally by the table engine for ids it has just validated against
// the schema.
func (r *Row) MustField(id string) *FieldValue {
	fv, ok := r.fields[id]
	if !ok {
		panic("pyrdt: row has no field " + id)
	}
	return fv
}

// FieldIDs returns the row's field ids in schema order. Grouping octets
// are never present here: by the time a Row is handed to a caller, the
// table engine has exploded and removed them (§4.6 step 2.e).
func (r *Row) FieldIDs() []string {
	return r.ids
}

// Len counts the row's actual fields (never counts the deleted flag).
func (r *Row) Len() int {
	return len(r.ids)
}

// Anomalies returns soft warnings recorded while this row was loaded
// (e.g. a tentative LUT field carrying a non-zero value). These never
// fail Load; they are informational, mirroring the teacher's anomaly
// accumulation.
func (r *Row) Anomalies() []string {
	return r.anomaly
}

// addAnomaly is called by the table engine (never by callers).
func (r *Row) addAnomaly(msg string) {
	r.anomaly = append(r.anomaly, msg)
}

// removeGroupingOctet deletes a bitfield grouping descriptor from the
// row's iteration order once its constituents have all been assigned
// (§4.6 step 2.e). It is a no-op if id is not present.
func (r *Row) removeGroupingOctet(id string) {
	delete(r.fields, id)
	for i, fid := range r.ids {
		if fid == id {
			r.ids = append(r.ids[:i], r.ids[i+1:]...)
			return
		}
	}
}
