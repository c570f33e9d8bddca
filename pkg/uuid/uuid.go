// Copyright (c) 2026 RuneBingo. All rights reserved.

/*
Package uuid provides time-ordered unique identifiers for the platform.

It wraps google/uuid to generate Version 7 values, which are naturally ordered
by creation time and keep PostgreSQL B-tree indexes compact.
*/
package uuid

import "github.com/google/uuid"

// New generates a new UUIDv7 string.
func New() string {
	id, err := uuid.NewV7()

	// entropy failure is an unrecoverable system-level error
	if err != nil {
		panic("uuid: failed to generate UUIDv7: " + err.Error())
	}

	return id.String()
}

// IsValid reports whether s parses as a UUID of any version.
//
// Routes accept either a bingo id or its slug; this tells them apart.
func IsValid(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
