// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package pyrdt

import (
	"embed"
	"fmt"
	"io"
)

// schemaFS embeds the CSV schema for every table kind directly into the
// binary, grounded on pyrdt.py's own _read_fields("fields_settings.csv")
// convention: each kind's layout is authored as data, not code, and this
// is simply that same convention carried into a statically linked Go
// binary via go:embed instead of a sibling file read off disk.
//
//go:embed schemas/*.csv
var schemaFS embed.FS

// openSchema opens the embedded CSV schema for name (one of the
// geometry.schemaName values in kind.go's geometries table).
func openSchema(name string) (io.ReadCloser, error) {
	f, err := schemaFS.Open(fmt.Sprintf("schemas/%s.csv", name))
	if err != nil {
		return nil, fmt.Errorf("%w: opening schema %q: %v", ErrSchemaMalformed, name, err)
	}
	return f, nil
}
