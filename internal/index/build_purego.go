//go:build !sqlite_cgo
// +build !sqlite_cgo

package index

// Compiled without CGO (the default). Uses a pure Go SQLite
// implementation so cross-compilation needs no C toolchain.
//
// Build command:
//   CGO_ENABLED=0 go build ./...
//
// Driver used: modernc.org/sqlite

import (
	_ "modernc.org/sqlite"
)

const (
	// DriverName is the SQLite driver to use
	DriverName = "sqlite"

	// BuildMode describes the current build configuration
	BuildMode = "purego"
)
