// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package pyrdt

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func testDescriptors() []*FieldDescriptor {
	return []*FieldDescriptor{
		{ID: "bitfield1", Type: FieldBitfield, Bits: 8, Constituents: []string{"flag_a"}},
		{ID: "flag_a", Type: FieldInt, Bits: 1, Bitfield: "bitfield1"},
		{ID: "name", Type: FieldUTF16, Bits: 32},
	}
}

func TestRowFieldIDsExcludesRemovedGroupingOctet(t *testing.T) {
	row := newRow(testDescriptors(), 0x00)
	require.Equal(t, []string{"bitfield1", "flag_a", "name"}, row.FieldIDs())
	require.Equal(t, 3, row.Len())

	row.removeGroupingOctet("bitfield1")
	require.Equal(t, []string{"flag_a", "name"}, row.FieldIDs())
	require.Equal(t, 2, row.Len())

	_, ok := row.Field("bitfield1")
	require.False(t, ok)
}

func TestRowDeletedIsIndependentOfFields(t *testing.T) {
	row := newRow(testDescriptors(), 0x00)
	require.False(t, row.Deleted())

	row.SetDeleted(true)
	require.True(t, row.Deleted())

	fv := row.MustField("name")
	fv.SetRaw(make([]byte, 4))
	require.True(t, row.Deleted(), "mutating a field must never alter the deletion flag")
}

func TestRowMustFieldPanicsOnUnknownID(t *testing.T) {
	row := newRow(testDescriptors(), 0x00)
	require.Panics(t, func() {
		row.MustField("does-not-exist")
	})
}

func TestRowAnomalies(t *testing.T) {
	row := newRow(testDescriptors(), 0x00)
	require.Empty(t, row.Anomalies())

	row.addAnomaly("field X carries a tentative value")
	require.Equal(t, []string{"field X carries a tentative value"}, row.Anomalies())
}
