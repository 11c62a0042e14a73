// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package pyrdt

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestPropertyTemplateCompleteness is property 1 of §8: every embedded
// schema's struct template size matches its geometry's record_length.
// (Exercised exhaustively by TestEmbeddedSchemasLoadAndMatchGeometry in
// schema_test.go; this is a narrower smoke check kept alongside the
// other numbered properties for readability.)
func TestPropertyTemplateCompleteness(t *testing.T) {
	for kind, g := range geometries {
		src, err := openSchema(g.schemaName)
		require.NoError(t, err)
		s, err := loadSchema(src, kind)
		src.Close()
		require.NoError(t, err)
		require.Equal(t, g.recordLength, s.template.Size())
	}
}

// TestPropertyBitDecomposition is property 3 of §8: for any octet and
// any sub-field shift/width within it, the extracted value always lands
// in [0, 2^width).
func TestPropertyBitDecomposition(t *testing.T) {
	for octet := 0; octet < 256; octet += 17 { // sample, not exhaustive
		for shift := 0; shift < 8; shift++ {
			for width := 1; width+shift <= 8; width++ {
				mask := byte((1<<uint(width))-1) << uint(shift)
				value := uint64((byte(octet) & mask) >> uint(shift))
				require.GreaterOrEqual(t, value, uint64(0))
				require.Less(t, value, uint64(1)<<uint(width))
			}
		}
	}
}

// TestPropertyLoadDumpIdempotence is property 4 of §8: dumping an image
// immediately after loading it, with no field mutations, reproduces
// every declared byte unchanged.
func TestPropertyLoadDumpIdempotence(t *testing.T) {
	data := buildBlankCodeplug()
	img, err := ImageFromBytes(data, nil)
	require.NoError(t, err)
	require.NoError(t, img.Load())

	out, err := img.Dump()
	require.NoError(t, err)
	require.Equal(t, data, out)
}

// TestPropertyDeletionMarkerIndependence is property 5 of §8: toggling
// deleted on and back off leaves every other field byte-identical.
func TestPropertyDeletionMarkerIndependence(t *testing.T) {
	tbl := newTestTable(t, Zone)
	require.NoError(t, tbl.Load(blankImageFor(Zone)))

	before, err := tbl.Dump()
	require.NoError(t, err)

	row := tbl.Rows()[0]
	row.SetDeleted(true)
	row.SetDeleted(false)

	after, err := tbl.Dump()
	require.NoError(t, err)
	require.Equal(t, before, after)
}

// TestPropertyValidationTotality is property 6 of §8: every field with a
// declared bound rejects an out-of-bound value with ValidationFailed
// naming that exact field.
func TestPropertyValidationTotality(t *testing.T) {
	src, err := openSchema(geometries[Settings].schemaName)
	require.NoError(t, err)
	s, err := loadSchema(src, Settings)
	src.Close()
	require.NoError(t, err)

	checked := 0
	for _, fd := range s.descriptors {
		if fd.MaxValue == nil {
			continue
		}
		overflow := *fd.MaxValue + 1
		if overflow >= uint64(1)<<uint(fd.byteWidth()*8) {
			continue // max_value already fills the field's storage width
		}
		checked++
		fv := newFieldValue(fd, 0x00) // zero_value 0 never coincides with an out-of-bound value here
		fv.SetUint(overflow)
		err := fv.Validate()
		require.ErrorIs(t, err, ErrValidationFailed)
		require.Contains(t, err.Error(), fd.ID)
	}
	require.Greater(t, checked, 0, "settings schema should declare at least one max_value bound")
}
