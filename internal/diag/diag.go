// Package diag centralizes the core's never-abort diagnostic reporting:
// unmapped bus accesses, unknown opcodes, and malformed interrupt state all
// surface here instead of propagating an error out of the core.
package diag

import (
	"log"

	"github.com/davecgh/go-spew/spew"
)

// Warnf logs a recoverable anomaly. The core continues executing after
// every call site; nothing here ever panics or returns an error.
func Warnf(format string, args ...interface{}) {
	log.Printf("gbcore: "+format, args...)
}

// Dump renders v with spew for inclusion in a diagnostic message, e.g. a
// register snapshot alongside an unknown-opcode warning.
func Dump(label string, v interface{}) string {
	return label + ": " + spew.Sdump(v)
}
