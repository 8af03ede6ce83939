// Package matcher is the top-level orchestration: one invocation reads the
// host's request envelope and credential catalog, evaluates every request
// against the catalog, and drives picker entries for whatever satisfies
// it. Every failure mode short of the host API itself misbehaving is
// handled by skipping the offending unit of work - Run itself only ever
// returns an error when it cannot even get started.
package matcher

import (
	"encoding/json"
	"fmt"

	"github.com/kouzoh/credential-matcher-core/catalog"
	"github.com/kouzoh/credential-matcher-core/dcql"
	"github.com/kouzoh/credential-matcher-core/host"
	"github.com/kouzoh/credential-matcher-core/internal/telemetry"
	"github.com/kouzoh/credential-matcher-core/picker"
	"github.com/kouzoh/credential-matcher-core/request"
)

// defaultCombinationCap is the recommended resource-protection ceiling: a
// query whose consolidated credential sets multiply out past this many
// combinations is refused rather than enumerated.
const defaultCombinationCap = 10_000

// Option configures Run.
type Option func(*config)

type config struct {
	combinationCap int
	debug          bool
}

// WithCombinationCap overrides the default combination enumeration cap.
func WithCombinationCap(n int) Option {
	return func(c *config) { c.combinationCap = n }
}

// WithDebug turns on spew dumps of decoded requests and DCQL responses via
// internal/telemetry. Off by default - never enable this on the sandboxed
// credman hot path.
func WithDebug(on bool) Option {
	return func(c *config) { c.debug = on }
}

// Run executes one matcher invocation against h.
func Run(h host.Host, opts ...Option) error {
	cfg := config{combinationCap: defaultCombinationCap}
	for _, opt := range opts {
		opt(&cfg)
	}
	telemetry.SetTraceID(telemetry.NewTraceID())
	telemetry.EnableDebug(cfg.debug)

	info, err := h.CallingAppInfo()
	if err != nil {
		return fmt.Errorf("matcher: get calling app info: %w", err)
	}
	telemetry.Logf("matcher: invoked by %s (origin %s)", info.PackageName, info.Origin)

	credentialsBuf, err := h.CredentialsBuffer()
	if err != nil {
		return fmt.Errorf("matcher: read credentials buffer: %w", err)
	}
	cat := catalog.Load(credentialsBuf)

	requestBuf, err := h.RequestBuffer()
	if err != nil {
		return fmt.Errorf("matcher: read request buffer: %w", err)
	}
	var envelope request.Envelope
	if err := json.Unmarshal(requestBuf, &envelope); err != nil {
		telemetry.Logf("matcher: malformed request envelope, emitting nothing: %v", err)
		return nil
	}

	version, err := h.WasmVersion()
	if err != nil {
		return fmt.Errorf("matcher: get wasm version: %w", err)
	}
	emitter := picker.New(h, version)

	for _, obj := range envelope.Objects() {
		processRequestObject(obj, cat, emitter, cfg)
	}
	return nil
}

func processRequestObject(obj request.Object, cat *catalog.Catalog, emitter *picker.Emitter, cfg config) {
	if !containsProtocol(cat.Protocols, obj.Protocol) {
		telemetry.Logf("matcher: protocol %q not declared by catalog, skipping", obj.Protocol)
		return
	}

	parsed, err := request.Parse(obj.Protocol, obj.Payload())
	if err != nil {
		telemetry.Logf("matcher: skipping request: %v", err)
		return
	}

	telemetry.Dump(fmt.Sprintf("matcher: parsed %s request", obj.Protocol), parsed)

	resp := evaluate(parsed, cat.Credentials)
	if resp == nil {
		telemetry.Logf("matcher: %s request unsatisfiable, no entries", obj.Protocol)
		return
	}
	telemetry.Dump(fmt.Sprintf("matcher: %s dcql response", obj.Protocol), resp)

	count := 1
	for _, cs := range resp.ConsolidateCredentialSets() {
		arity := len(cs.Options)
		if cs.Optional {
			arity++
		}
		count *= arity
		if count > cfg.combinationCap {
			break
		}
	}
	if count > cfg.combinationCap {
		telemetry.Logf("matcher: %s request: too many combinations (more than %d), skipping", obj.Protocol, cfg.combinationCap)
		return
	}

	combinations := resp.Combinations()

	if err := emitter.Emit(obj.Protocol, combinations); err != nil {
		telemetry.Logf("matcher: %s request: picker emission failed: %v", obj.Protocol, err)
	}
}

func evaluate(req request.Request, credentials []catalog.Credential) *dcql.Response {
	switch r := req.(type) {
	case *request.MdocRequest:
		return dcql.MatchMdoc(r.DocType, r.DataElements, credentials)
	case *request.OpenID4VPRequest:
		resp, err := dcql.Evaluate(r.DcqlQuery, credentials)
		if err != nil {
			telemetry.Logf("matcher: dcql evaluation error: %v", err)
			return nil
		}
		return resp
	default:
		telemetry.Logf("matcher: unhandled request type %T", req)
		return nil
	}
}

func containsProtocol(protocols []string, want string) bool {
	for _, p := range protocols {
		if p == want {
			return true
		}
	}
	return false
}
