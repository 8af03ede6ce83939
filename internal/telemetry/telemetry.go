// Package telemetry is the logging surface shared by every package in this
// module: stdlib log.Printf for ordinary lines, github.com/davecgh/go-spew
// for structured debug dumps, and github.com/google/uuid for a
// per-invocation trace identifier attached to every matcher invocation.
package telemetry

import (
	"log"
	"sync/atomic"

	"github.com/davecgh/go-spew/spew"
	"github.com/google/uuid"
)

// debugEnabled gates spew.Dump calls off the hot path; flipped on by
// EnableDebug.
var debugEnabled atomic.Bool

// traceID is prepended to every Logf line once SetTraceID has been called.
// Empty until then, so Logf works unchanged for callers (e.g. tests) that
// never set one.
var traceID atomic.Value

func init() {
	traceID.Store("")
}

// EnableDebug turns on Dump output. Off by default: the matcher core runs
// inside a sandbox on every credential-picker invocation, and spew's
// reflection-heavy dumps are not something we want live there unconditionally.
func EnableDebug(on bool) {
	debugEnabled.Store(on)
}

// NewTraceID returns a fresh per-invocation identifier.
func NewTraceID() string {
	return uuid.New().String()
}

// SetTraceID fixes the identifier Logf prepends to every subsequent line.
// Called once, at the start of a matcher invocation.
func SetTraceID(id string) {
	traceID.Store(id)
}

// Logf writes one structured log line, prefixed with the current trace ID
// (if SetTraceID has been called). Never blocks on I/O failures; log itself
// doesn't return errors for Printf.
func Logf(format string, args ...interface{}) {
	id, _ := traceID.Load().(string)
	if id == "" {
		log.Printf(format, args...)
		return
	}
	log.Printf("[%s] "+format, append([]interface{}{id}, args...)...)
}

// Dump writes a reflection-based dump of v using go-spew, only when
// EnableDebug(true) has been called.
func Dump(label string, v interface{}) {
	if !debugEnabled.Load() {
		return
	}
	log.Printf("%s:", label)
	spew.Dump(v)
}
