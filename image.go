// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package pyrdt

import (
	"fmt"

	"github.com/go-kratos/kratos/v2/log"
)

// Options configures Image construction, mirroring the teacher's own
// pe.Options: an injectable logger plus a single behavioural knob.
type Options struct {
	// Logger receives structured diagnostic events from Load/Dump. A nil
	// Logger defaults to a stdout logger filtered to Error level, same
	// default as file.go's New/NewBytes.
	Logger log.Logger

	// StrictValidation, when true, causes Load to treat LUT misses (on
	// byte-aligned fields, tentative or not; see AnoLUTMiss) as fatal
	// ValidationFailed errors instead of anomalies. Off by default, matching the spec's fail-fast-on-
	// declared-bounds-only behaviour.
	StrictValidation bool
}

// Image is the C7 image façade: it owns one Table per known TableKind
// and is the sole public entry point described in §6.
type Image struct {
	data    []byte
	opts    *Options
	log     *log.Helper
	tables  map[TableKind]*Table
}

// ImageFromBytes constructs an Image over data without loading it yet.
// Every known table's schema is parsed immediately (so a malformed
// schema fails fast, before any record is examined), matching the
// teacher's pattern of resolving all configuration in the constructor.
func ImageFromBytes(data []byte, opts *Options) (*Image, error) {
	if opts == nil {
		opts = &Options{}
	}
	helper := newLogHelper(opts.Logger)

	img := &Image{
		data:   data,
		opts:   opts,
		log:    helper,
		tables: make(map[TableKind]*Table, len(tableKindOrder)),
	}
	for _, kind := range tableKindOrder {
		t, err := newTable(kind, helper, opts.StrictValidation)
		if err != nil {
			return nil, err
		}
		img.tables[kind] = t
	}
	return img, nil
}

// Load populates every table's rows from the image buffer, in the
// fixed order Settings, Channel, Contact, RxGroup, Scanlist,
// Textmessage, Zone (§4.7). It is fail-fast: the first table to error
// aborts the whole load.
func (img *Image) Load() error {
	if len(img.data) == 0 {
		return fmt.Errorf("%w: empty image", ErrInvalidImageSize)
	}
	for _, kind := range tableKindOrder {
		img.log.Debugf("loading table %s", kind)
		if err := img.tables[kind].Load(img.data); err != nil {
			img.log.Errorf("loading table %s failed: %v", kind, err)
			return err
		}
	}
	return nil
}

// Dump serialises every table back into a fresh image-sized buffer,
// starting from a copy of the original bytes so that any byte outside
// every declared table's geometry (the geometries leave gaps, e.g. every
// byte before offset 8805) is preserved unchanged.
func (img *Image) Dump() ([]byte, error) {
	out := make([]byte, len(img.data))
	copy(out, img.data)

	for _, kind := range tableKindOrder {
		t := img.tables[kind]
		g := t.geometry
		buf, err := t.Dump()
		if err != nil {
			img.log.Errorf("dumping table %s failed: %v", kind, err)
			return nil, err
		}
		copy(out[g.firstRecordOffset:g.firstRecordOffset+len(buf)], buf)
	}
	return out, nil
}

// Table returns the table for the given kind, or an error if kind is
// not one of the seven known kinds.
func (img *Image) Table(kind TableKind) (*Table, error) {
	t, ok := img.tables[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrUnknownTableKind, kind)
	}
	return t, nil
}

// Settings, Channels, Contacts, RxGroups, Scanlists, Textmessages and
// Zones are the fixed per-kind accessors promised by §6. They never
// fail: every kind is always constructed in ImageFromBytes.
func (img *Image) Settings() *Table    { return img.tables[Settings] }
func (img *Image) Channels() *Table    { return img.tables[Channel] }
func (img *Image) Contacts() *Table    { return img.tables[Contact] }
func (img *Image) RxGroups() *Table    { return img.tables[RxGroup] }
func (img *Image) Scanlists() *Table   { return img.tables[Scanlist] }
func (img *Image) Textmessages() *Table { return img.tables[Textmessage] }
func (img *Image) Zones() *Table       { return img.tables[Zone] }

// Anomalies aggregates every row's soft warnings, across every table,
// into a single flat slice of "<kind>[<row index>]: <message>" strings, for
// CLI/report consumption (adapted from the teacher's File.Anomalies).
func (img *Image) Anomalies() []string {
	var all []string
	for _, kind := range tableKindOrder {
		t := img.tables[kind]
		for i, row := range t.rows {
			for _, a := range row.Anomalies() {
				all = append(all, fmt.Sprintf("%s[%d]: %s", kind, i, a))
			}
		}
	}
	return all
}

// ImageFromFile reads a codeplug file from disk via OpenCodeplugFile and
// constructs an Image over its bytes, closing the mapping once the
// bytes have been copied out (the Image owns its own buffer from that
// point on, independent of the file's lifetime).
func ImageFromFile(path string, opts *Options) (*Image, error) {
	cf, err := OpenCodeplugFile(path)
	if err != nil {
		return nil, err
	}
	defer cf.Close()

	data := make([]byte, len(cf.Bytes()))
	copy(data, cf.Bytes())
	return ImageFromBytes(data, opts)
}

// DumpToFile dumps img and writes the result to path via
// WriteCodeplugFile.
func DumpToFile(img *Image, path string) error {
	data, err := img.Dump()
	if err != nil {
		return err
	}
	return WriteCodeplugFile(path, data)
}
