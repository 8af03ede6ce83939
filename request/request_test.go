package request

import (
	"encoding/json"
	"testing"
)

func TestParseUnsupportedProtocol(t *testing.T) {
	_, err := Parse("carrier-pigeon", json.RawMessage(`{}`))
	if err == nil {
		t.Fatalf("expected an error for an unsupported protocol")
	}
	var unsupported *UnsupportedProtocolError
	if _, ok := err.(*UnsupportedProtocolError); !ok {
		t.Fatalf("err = %T, want %T", err, unsupported)
	}
}

func TestEnvelopeObjectsPrefersRequests(t *testing.T) {
	env := Envelope{
		Requests:  []Object{{Protocol: "preview"}},
		Providers: []Object{{Protocol: "openid4vp"}},
	}
	objs := env.Objects()
	if len(objs) != 1 || objs[0].Protocol != "preview" {
		t.Fatalf("Objects() = %+v, want the requests entry", objs)
	}
}

func TestEnvelopeObjectsFallsBackToProviders(t *testing.T) {
	env := Envelope{Providers: []Object{{Protocol: "openid4vp"}}}
	objs := env.Objects()
	if len(objs) != 1 || objs[0].Protocol != "openid4vp" {
		t.Fatalf("Objects() = %+v, want the legacy providers entry", objs)
	}
}

func TestObjectPayloadPrefersData(t *testing.T) {
	obj := Object{Data: json.RawMessage(`{"a":1}`), Request: json.RawMessage(`{"b":2}`)}
	if string(obj.Payload()) != `{"a":1}` {
		t.Errorf("Payload() = %s", obj.Payload())
	}
}
