//go:build wasip1 || wasm

// Command matcher is the WASM entrypoint: it runs one matcher invocation
// against the credman host ABI and exits. There is no structured result
// channel back to the host - success or failure is observable only
// through whether picker entries were emitted.
package main

import (
	"log"

	"github.com/kouzoh/credential-matcher-core/host"
	"github.com/kouzoh/credential-matcher-core/matcher"
)

func main() {
	if err := matcher.Run(host.NewWasmHost()); err != nil {
		log.Printf("matcher: invocation failed: %v", err)
	}
}
