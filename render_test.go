// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package pyrdt

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRenderTableProducesOneLinePerRowPlusHeader(t *testing.T) {
	tbl := newTestTable(t, Contact)
	require.NoError(t, tbl.Load(blankImageFor(Contact)))

	var buf bytes.Buffer
	require.NoError(t, RenderTable(&buf, tbl))

	lines := bytes.Count(buf.Bytes(), []byte("\n"))
	require.Equal(t, tbl.Len()+1, lines)
	require.Contains(t, buf.String(), "[deleted]")
}

func TestExportImportCSVRoundTrip(t *testing.T) {
	src := newTestTable(t, Contact)
	raw := blankImageFor(Contact)
	require.NoError(t, src.Load(raw))

	row := src.Rows()[7]
	row.MustField("contact_id").SetUint(424242)
	row.MustField("call_type").SetUint(1)
	row.SetDeleted(true)

	var csv bytes.Buffer
	require.NoError(t, ExportCSV(&csv, src))

	dst := newTestTable(t, Contact)
	require.NoError(t, dst.Load(raw)) // materialise the same number of rows
	require.NoError(t, ImportCSV(&csv, dst))

	dstRow := dst.Rows()[7]
	require.EqualValues(t, 424242, dstRow.MustField("contact_id").Uint())
	require.EqualValues(t, 1, dstRow.MustField("call_type").Uint())
	require.True(t, dstRow.Deleted())

	srcDump, err := src.Dump()
	require.NoError(t, err)
	dstDump, err := dst.Dump()
	require.NoError(t, err)
	require.Equal(t, srcDump, dstDump)
}

func TestImportCSVRejectsRowCountMismatch(t *testing.T) {
	tbl := newTestTable(t, Zone)
	require.NoError(t, tbl.Load(blankImageFor(Zone)))

	csv := bytes.NewBufferString("deleted,name\ntrue,Example\n")
	err := ImportCSV(csv, tbl)
	require.ErrorIs(t, err, ErrStructuralMismatch)
}

func TestImportCSVRejectsMissingDeletedColumn(t *testing.T) {
	tbl := newTestTable(t, Zone)
	require.NoError(t, tbl.Load(blankImageFor(Zone)))

	csv := bytes.NewBufferString("name\nExample\n")
	err := ImportCSV(csv, tbl)
	require.ErrorIs(t, err, ErrSchemaMalformed)
}
