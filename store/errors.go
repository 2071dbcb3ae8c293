package store

import "errors"

// ErrNotFound is returned by Driver lookups that find no matching row.
var ErrNotFound = errors.New("store: not found")

// ErrConflict is returned when a write would violate a referential or
// uniqueness invariant (e.g. deleting a CoreAI still referenced by a Bot).
var ErrConflict = errors.New("store: conflict")

// ErrSuperseded names the supersession error kind (spec §4.3 P3). No
// operation in this module returns it: supersession is reported through
// lock.Decision and the job record's status.
var ErrSuperseded = errors.New("store: superseded")
