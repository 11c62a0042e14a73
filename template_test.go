// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package pyrdt

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTemplateBuilderLayout(t *testing.T) {
	b := newTemplateBuilder()
	b.addU8("a")
	b.addPadding(2)
	b.addBlob("b", 4)
	tmpl := b.build()

	require.Equal(t, 7, tmpl.Size())

	off, width, ok := tmpl.offsetOf("a")
	require.True(t, ok)
	require.Equal(t, 0, off)
	require.Equal(t, 1, width)

	off, width, ok = tmpl.offsetOf("b")
	require.True(t, ok)
	require.Equal(t, 3, off)
	require.Equal(t, 4, width)

	_, _, ok = tmpl.offsetOf("missing")
	require.False(t, ok)
}

func TestTemplateApplyRender(t *testing.T) {
	b := newTemplateBuilder()
	b.addU8("a")
	b.addPadding(1)
	b.addBlob("b", 2)
	tmpl := b.build()

	record := []byte{0x42, 0xFF, 0x01, 0x02}
	values, err := tmpl.apply(record)
	require.NoError(t, err)
	require.EqualValues(t, 0x42, values["a"].u8)
	require.True(t, values["a"].isU8)
	require.Equal(t, []byte{0x01, 0x02}, values["b"].blob)

	out := tmpl.render(map[string][]byte{
		"a": {0x42},
		"b": {0x01, 0x02},
	}, 0xFF)
	require.Equal(t, record, out)
}

func TestTemplateApplyRejectsWrongSize(t *testing.T) {
	b := newTemplateBuilder()
	b.addU8("a")
	tmpl := b.build()

	_, err := tmpl.apply([]byte{0x01, 0x02})
	require.ErrorIs(t, err, ErrStructuralMismatch)
}

func TestTemplateRenderLeavesUnassignedSlotsAtFillByte(t *testing.T) {
	b := newTemplateBuilder()
	b.addU8("a")
	b.addU8("b")
	tmpl := b.build()

	out := tmpl.render(map[string][]byte{"a": {0x11}}, 0xAA)
	require.Equal(t, []byte{0x11, 0xAA}, out)
}
