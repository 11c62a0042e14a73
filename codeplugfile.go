// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package pyrdt

import (
	"fmt"
	"os"

	mmap "github.com/edsrzf/mmap-go"
)

// minCodeplugSize is the smallest plausible codeplug file: large enough
// to hold every table's declared geometry (the largest offset plus
// length among the seven kinds).
const minCodeplugSize = 127013 + 1000*64

// CodeplugFile is a memory-mapped codeplug image on disk, grounded on
// file.go's File/mmap.Map(f, mmap.RDONLY, 0) pattern: a codeplug editor
// commonly reopens the same file across several CLI invocations, so
// mapping it read-only avoids copying the whole ~256 KiB image for
// operations (like a single-table dump) that only touch a slice of it.
type CodeplugFile struct {
	f    *os.File
	data mmap.MMap
}

// OpenCodeplugFile opens and memory-maps the named file read-only.
func OpenCodeplugFile(path string) (*CodeplugFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, err
	}
	if len(data) < minCodeplugSize {
		data.Unmap()
		f.Close()
		return nil, fmt.Errorf("%w: %s is %d bytes, smallest known codeplug geometry needs %d",
			ErrInvalidImageSize, path, len(data), minCodeplugSize)
	}
	return &CodeplugFile{f: f, data: data}, nil
}

// Bytes returns the mapped file contents. The returned slice is only
// valid until Close.
func (cf *CodeplugFile) Bytes() []byte {
	return cf.data
}

// Close unmaps and closes the underlying file.
func (cf *CodeplugFile) Close() error {
	if cf.data != nil {
		_ = cf.data.Unmap()
	}
	return cf.f.Close()
}

// WriteCodeplugFile writes data to path, preserving the mode of an
// existing file at that path if one exists (so re-dumping a codeplug in
// place does not silently change its permissions).
func WriteCodeplugFile(path string, data []byte) error {
	mode := os.FileMode(0644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode()
	}
	return os.WriteFile(path, data, mode)
}
