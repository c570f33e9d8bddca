// Copyright (c) 2026 RuneBingo. All rights reserved.

// Package migrations embeds the golang-migrate schema so the binary can run
// it without a checkout on disk.
package migrations

import "embed"

// FS holds every *.sql migration at its root.
//
//go:embed *.sql
var FS embed.FS
