// Copyright 2021 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package pyrdt

import "fmt"

// Anomalies are soft warnings accumulated while loading a codeplug.
// Unlike the Err* sentinels in errors.go, an anomaly never aborts Load;
// it only flags something worth a human's attention. This mirrors the
// teacher's own anomaly.go, whose Ano* strings are appended to
// File.Anomalies without failing Parse.
const (
	// AnoTentativeFieldNonZero is reported when a field whose LUT
	// polarity was marked "verify (backwards)" in the original source
	// (see DESIGN.md) carries a non-zero, non-default value.
	AnoTentativeFieldNonZero = "tentative field %q carries a non-zero value; polarity unconfirmed"

	// AnoLUTMiss is reported when a byte-aligned field with a LUT is not
	// unset and does not have its raw value among the LUT's declared
	// keys. Bit-packed sub-fields are not checked against their LUTs.
	AnoLUTMiss = "field %q value %d is not a declared lut key"
)

func anomalyTentativeFieldNonZero(fieldID string) string {
	return fmt.Sprintf(AnoTentativeFieldNonZero, fieldID)
}

func anomalyLUTMiss(fieldID string, value uint64) string {
	return fmt.Sprintf(AnoLUTMiss, fieldID, value)
}
