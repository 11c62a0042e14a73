// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package pyrdt

// Fuzz is the classic github.com/dvyukov/go-fuzz corpus-driven
// entrypoint, adapted from the teacher's own fuzz.go: it feeds an
// arbitrary byte slice through the whole parse path and reports
// whether it was accepted.
func Fuzz(data []byte) int {
	img, err := ImageFromBytes(data, nil)
	if err != nil {
		return 0
	}
	if err := img.Load(); err != nil {
		return 0
	}
	return 1
}
