// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package pyrdt

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// buildBlankCodeplug returns a buffer large enough to hold every table's
// declared geometry, each region pre-filled with that kind's zero-value
// sentinel so every field loads as unset.
func buildBlankCodeplug() []byte {
	buf := make([]byte, minCodeplugSize)
	for _, kind := range tableKindOrder {
		g := geometries[kind]
		end := g.firstRecordOffset + g.numRecords*g.recordLength
		for i := g.firstRecordOffset; i < end; i++ {
			buf[i] = g.zeroValue
		}
	}
	return buf
}

func TestImageFromBytesConstructsEveryTable(t *testing.T) {
	img, err := ImageFromBytes(buildBlankCodeplug(), nil)
	require.NoError(t, err)

	for _, kind := range tableKindOrder {
		tbl, err := img.Table(kind)
		require.NoError(t, err)
		require.Equal(t, kind, tbl.Kind())
	}

	_, err = img.Table(TableKind(999))
	require.ErrorIs(t, err, ErrUnknownTableKind)
}

func TestImageLoadPopulatesAllAccessors(t *testing.T) {
	img, err := ImageFromBytes(buildBlankCodeplug(), nil)
	require.NoError(t, err)
	require.NoError(t, img.Load())

	require.Equal(t, geometries[Settings].numRecords, img.Settings().Len())
	require.Equal(t, geometries[Channel].numRecords, img.Channels().Len())
	require.Equal(t, geometries[Contact].numRecords, img.Contacts().Len())
	require.Equal(t, geometries[RxGroup].numRecords, img.RxGroups().Len())
	require.Equal(t, geometries[Scanlist].numRecords, img.Scanlists().Len())
	require.Equal(t, geometries[Textmessage].numRecords, img.Textmessages().Len())
	require.Equal(t, geometries[Zone].numRecords, img.Zones().Len())

	require.Empty(t, img.Anomalies())
}

func TestImageLoadRejectsEmptyImage(t *testing.T) {
	img, err := ImageFromBytes(nil, nil)
	require.NoError(t, err)
	err = img.Load()
	require.ErrorIs(t, err, ErrInvalidImageSize)
}

func TestImageDumpRoundTrip(t *testing.T) {
	data := buildBlankCodeplug()
	img, err := ImageFromBytes(data, nil)
	require.NoError(t, err)
	require.NoError(t, img.Load())

	g := geometries[Contact]
	row := img.Contacts().Rows()[3]
	row.MustField("contact_id").SetUint(12345)
	require.NoError(t, row.MustField("contact_id").Validate())

	out, err := img.Dump()
	require.NoError(t, err)
	require.Len(t, out, len(data))

	recordStart := g.firstRecordOffset + 3*g.recordLength
	require.EqualValues(t, 12345, littleEndianUint(out[recordStart:recordStart+3]))
}

func TestImageDumpPreservesBytesOutsideDeclaredTables(t *testing.T) {
	data := buildBlankCodeplug()
	data[0] = 0xAB // nothing in geometries claims this low offset
	img, err := ImageFromBytes(data, nil)
	require.NoError(t, err)
	require.NoError(t, img.Load())

	out, err := img.Dump()
	require.NoError(t, err)
	require.Equal(t, byte(0xAB), out[0])
}

func TestImageFromFileAndDumpToFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "codeplug.rdt")
	require.NoError(t, os.WriteFile(path, buildBlankCodeplug(), 0644))

	img, err := ImageFromFile(path, nil)
	require.NoError(t, err)
	require.NoError(t, img.Load())

	img.Channels().Rows()[0].MustField("tot").SetUint(10)

	outPath := filepath.Join(dir, "codeplug-out.rdt")
	require.NoError(t, DumpToFile(img, outPath))

	written, err := os.ReadFile(outPath)
	require.NoError(t, err)
	require.Len(t, written, minCodeplugSize)

	reopened, err := ImageFromBytes(written, nil)
	require.NoError(t, err)
	require.NoError(t, reopened.Load())
	require.EqualValues(t, 10, reopened.Channels().Rows()[0].MustField("tot").Uint())
}

func TestImageStrictValidationOptionPropagatesToTables(t *testing.T) {
	data := buildBlankCodeplug()
	g := geometries[Settings]

	probe, err := ImageFromBytes(data, nil)
	require.NoError(t, err)
	tbl, err := probe.Table(Settings)
	require.NoError(t, err)
	off, _, ok := tbl.schema.template.offsetOf("mode")
	require.True(t, ok)
	data[g.firstRecordOffset+off] = 7

	img, err := ImageFromBytes(data, &Options{StrictValidation: true})
	require.NoError(t, err)
	err = img.Load()
	require.ErrorIs(t, err, ErrValidationFailed)
}
