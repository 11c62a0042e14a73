// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package pyrdt

// slotKind distinguishes the three shapes a struct-template slot can
// take: a single octet (U8), an N-byte opaque blob (Blob), or unnamed
// padding inserted to keep later fields octet-aligned.
type slotKind int

const (
	slotU8 slotKind = iota
	slotBlob
	slotPadding
)

// templateSlot is one entry of the C3 struct template: its shape and,
// for Blob, its byte width.
type templateSlot struct {
	kind  slotKind
	name  string // empty for slotPadding
	width int    // byte width; 1 for slotU8
}

// structTemplate is the deterministic, parallel (slots, names) pair
// produced by the schema loader: applying it to a record-sized byte
// slice carves that slice into named raw values with no hidden state.
type structTemplate struct {
	slots []templateSlot
	size  int // total byte size; must equal the table's record_length
}

// Size returns the template's total byte footprint.
func (t *structTemplate) Size() int {
	return t.size
}

// rawValue is either a uint64 (slotU8) or a []byte (slotBlob), the raw
// value for one named slot of the template.
type rawValue struct {
	u8   uint64
	blob []byte
	isU8 bool
}

// apply carves record (which must be exactly t.Size() bytes) into a
// name -> rawValue mapping. It performs no validation beyond the slice
// length check: that is the table engine's job.
func (t *structTemplate) apply(record []byte) (map[string]rawValue, error) {
	if len(record) != t.size {
		return nil, ErrStructuralMismatch
	}
	out := make(map[string]rawValue, len(t.slots))
	pos := 0
	for _, slot := range t.slots {
		switch slot.kind {
		case slotPadding:
			pos += slot.width
		case slotU8:
			out[slot.name] = rawValue{u8: uint64(record[pos]), isU8: true}
			pos += 1
		case slotBlob:
			blob := make([]byte, slot.width)
			copy(blob, record[pos:pos+slot.width])
			out[slot.name] = rawValue{blob: blob}
			pos += slot.width
		}
	}
	return out, nil
}

// render writes values (a subset or full name -> bytes mapping produced
// by the table engine during Dump) back into a freshly allocated
// record-sized buffer, pre-filled with fillByte (the table's zero
// value). Unassigned slots/padding are left as fillByte.
func (t *structTemplate) render(values map[string][]byte, fillByte byte) []byte {
	record := make([]byte, t.size)
	for i := range record {
		record[i] = fillByte
	}
	pos := 0
	for _, slot := range t.slots {
		switch slot.kind {
		case slotPadding:
			pos += slot.width
		case slotU8, slotBlob:
			if v, ok := values[slot.name]; ok {
				copy(record[pos:pos+slot.width], v)
			}
			pos += slot.width
		}
	}
	return record
}

// offsetOf returns the byte offset of the named slot within a record,
// and its byte width. Dump does not use it; it writes through render.
func (t *structTemplate) offsetOf(name string) (offset, width int, ok bool) {
	pos := 0
	for _, slot := range t.slots {
		switch slot.kind {
		case slotPadding:
			pos += slot.width
		case slotU8, slotBlob:
			if slot.name == name {
				return pos, slot.width, true
			}
			pos += slot.width
		}
	}
	return 0, 0, false
}

// templateBuilder accumulates slots in schema order; build() freezes
// them into a structTemplate.
type templateBuilder struct {
	slots []templateSlot
	size  int
}

func newTemplateBuilder() *templateBuilder {
	return &templateBuilder{}
}

func (b *templateBuilder) addPadding(n int) {
	if n <= 0 {
		return
	}
	b.slots = append(b.slots, templateSlot{kind: slotPadding, width: n})
	b.size += n
}

func (b *templateBuilder) addU8(name string) {
	b.slots = append(b.slots, templateSlot{kind: slotU8, name: name, width: 1})
	b.size++
}

func (b *templateBuilder) addBlob(name string, width int) {
	b.slots = append(b.slots, templateSlot{kind: slotBlob, name: name, width: width})
	b.size += width
}

func (b *templateBuilder) build() *structTemplate {
	return &structTemplate{slots: b.slots, size: b.size}
}
