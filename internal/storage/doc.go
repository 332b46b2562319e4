// Package storage defines the persistence interfaces for Quest Chronicles.
//
// Characters are kept in plain-text save files (see savefile) and every
// finished battle is appended to a SQLite journal (see sqlite). Encounter
// orchestration depends only on the interfaces declared here.
//
// # Error Types
//
//   - ErrNotFound: a requested journal record is missing.
package storage
