// Package request parses a single verifier request object - one element of
// the host-supplied envelope's "requests" array - into a protocol-neutral
// shape the matcher and dcql packages can evaluate. Every protocol's inner
// payload is untrusted input: a parse failure here is reported to the
// caller so the request object can be skipped and logged, never panics.
package request

import (
	"encoding/json"
	"fmt"

	"github.com/kouzoh/credential-matcher-core/dcql"
)

// Envelope is the top-level JSON object the host passes as the request
// buffer. "requests" is the current key; "providers" is accepted as a
// legacy alias when "requests" is absent.
type Envelope struct {
	Requests  []Object `json:"requests,omitempty"`
	Providers []Object `json:"providers,omitempty"`
}

// Objects returns the envelope's request objects, preferring "requests"
// and falling back to the legacy "providers" key.
func (e Envelope) Objects() []Object {
	if len(e.Requests) > 0 {
		return e.Requests
	}
	return e.Providers
}

// Object is a single element of the envelope's request array: a protocol
// name plus its protocol-specific payload, which arrives under either a
// "data" or "request" key.
type Object struct {
	Protocol string          `json:"protocol"`
	Data     json.RawMessage `json:"data,omitempty"`
	Request  json.RawMessage `json:"request,omitempty"`
}

// Payload returns whichever of Data or Request carries the protocol body.
func (o Object) Payload() json.RawMessage {
	if len(o.Data) > 0 {
		return o.Data
	}
	return o.Request
}

// Request is the parsed form of one Object: either an MdocRequest or an
// OpenID4VPRequest - a tagged sum rather than an interface hierarchy, since
// the matcher dispatches with a type switch on the concrete type rather
// than calling shared behavior polymorphically.
type Request interface {
	ProtocolName() string
}

// MdocRequest is the normalized shape of preview, mdoc-api and
// austroads-request-forwarding-v2 requests: a single document type plus a
// flat list of requested data elements.
type MdocRequest struct {
	Protocol     string
	DocType      string
	DataElements []dcql.MdocDataElement
}

func (r *MdocRequest) ProtocolName() string { return r.Protocol }

// OpenID4VPRequest is the normalized shape of an openid4vp request: a DCQL
// query, already unwrapped from a signed request envelope if one was
// present.
type OpenID4VPRequest struct {
	Protocol  string
	DcqlQuery dcql.Query
}

func (r *OpenID4VPRequest) ProtocolName() string { return r.Protocol }

// UnsupportedProtocolError reports a protocol name Parse has no handler
// for.
type UnsupportedProtocolError struct {
	Protocol string
}

func (e *UnsupportedProtocolError) Error() string {
	return fmt.Sprintf("request: unsupported protocol %q", e.Protocol)
}

// Parse dispatches payload to the parser for protocol.
func Parse(protocol string, payload json.RawMessage) (Request, error) {
	switch protocol {
	case "preview":
		return parsePreview(protocol, payload)
	case "org.iso.mdoc", "org-iso-mdoc", "austroads-request-forwarding-v2":
		return parseMdocAPI(protocol, payload)
	case "openid4vp", "openid4vp-v1-unsigned", "openid4vp-v1-signed":
		return parseOpenID4VP(protocol, payload)
	default:
		return nil, &UnsupportedProtocolError{Protocol: protocol}
	}
}
