// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package pyrdt

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestSettingsGeneralDecode covers the S1 scenario: info1/info2 are two
// independent UTF-16 lines packed back to back at the head of the
// record.
func TestSettingsGeneralDecode(t *testing.T) {
	tbl := newTestTable(t, Settings)
	buf := blankImageFor(Settings)
	g := geometries[Settings]
	record := buf[g.firstRecordOffset : g.firstRecordOffset+g.recordLength]

	info1, err := encodeUTF16("MyRadio", 20)
	require.NoError(t, err)
	copy(record[0:20], info1)

	info2, err := encodeUTF16("Line2", 20)
	require.NoError(t, err)
	copy(record[20:40], info2)

	require.NoError(t, tbl.Load(buf))
	row := tbl.Rows()[0]
	require.Equal(t, "MyRadio", row.MustField("info1").Display())
	require.Equal(t, "Line2", row.MustField("info2").Display())
}

// TestSettingsBitPackedFlags covers the S2 scenario: several single-bit
// and two-bit flags sharing one octet (byte 65, bits 520-527) explode
// into independent fields.
func TestSettingsBitPackedFlags(t *testing.T) {
	tbl := newTestTable(t, Settings)
	buf := blankImageFor(Settings)
	g := geometries[Settings]
	record := buf[g.firstRecordOffset : g.firstRecordOffset+g.recordLength]

	// byte 65 (bit offset 520): bit0-1 talk_permit_tone=3 (both), bit2
	// password_and_lock_enable=1, bit5 disable_all_tone=1, bit7
	// save_preamble=1.
	record[65] = 0b10100111

	require.NoError(t, tbl.Load(buf))
	row := tbl.Rows()[0]
	require.EqualValues(t, 3, row.MustField("talk_permit_tone").Uint())
	require.Contains(t, row.MustField("talk_permit_tone").Display(), "both")
	require.EqualValues(t, 1, row.MustField("password_and_lock_enable").Uint())
	require.EqualValues(t, 1, row.MustField("disable_all_tone").Uint())
	require.EqualValues(t, 1, row.MustField("save_preamble").Uint())
}

// TestSettingsModeSentinelAndLUT covers the S6 scenario: mode's raw
// value 0xFF coincides with the table's zero_value sentinel, but
// because 255 is also a valid lut key ("CH"), the field is never
// treated as unset.
func TestSettingsModeSentinelAndLUT(t *testing.T) {
	tbl := newTestTable(t, Settings)
	buf := blankImageFor(Settings)
	g := geometries[Settings]
	record := buf[g.firstRecordOffset : g.firstRecordOffset+g.recordLength]

	off, _, ok := tbl.schema.template.offsetOf("mode")
	require.True(t, ok)
	record[off] = 0xFF

	require.NoError(t, tbl.Load(buf))
	row := tbl.Rows()[0]
	fv := row.MustField("mode")
	require.False(t, fv.IsUnset())
	require.Contains(t, fv.Display(), "CH")
}
