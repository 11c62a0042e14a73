// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package pyrdt

// Version is the module's release version, surfaced by the CLI's
// `version` subcommand.
const Version = "0.1.0"
