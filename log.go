// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package pyrdt

import (
	"os"

	"github.com/go-kratos/kratos/v2/log"
)

// newLogHelper wraps l in a log.Helper, defaulting to a stdout logger
// filtered to Error level when l is nil. This mirrors file.go's own
// logger construction in New/NewBytes exactly.
func newLogHelper(l log.Logger) *log.Helper {
	if l == nil {
		l = log.NewStdLogger(os.Stdout)
		return log.NewHelper(log.NewFilter(l, log.FilterLevel(log.LevelError)))
	}
	return log.NewHelper(l)
}
