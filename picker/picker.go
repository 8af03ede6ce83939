// Package picker drives the host credential picker (host.Picker) with the
// combinations a dcql.Response resolved: one set of entries per
// combination, shaped by the host's declared picker API version.
package picker

import (
	"fmt"

	"github.com/kouzoh/credential-matcher-core/dcql"
	"github.com/kouzoh/credential-matcher-core/host"
	"github.com/kouzoh/credential-matcher-core/internal/telemetry"
)

// Emitter drives p for every request the matcher evaluates, applying the
// v1/v2 split once per Emitter (the host's picker version doesn't change
// mid-invocation) and carrying the v1 cross-request documentId dedup set
// across calls to Emit.
type Emitter struct {
	picker  host.Picker
	version uint32

	emittedDocumentIDs map[string]bool
}

// New returns an Emitter targeting p, using version (from Host.WasmVersion)
// to choose the v1 or v2 picker API.
func New(p host.Picker, version uint32) *Emitter {
	return &Emitter{picker: p, version: version, emittedDocumentIDs: map[string]bool{}}
}

// Emit drives one request's resolved combinations through the picker.
// protocol is folded into every setId/entryId so entries from requests
// with different protocols in the same envelope never collide.
func (e *Emitter) Emit(protocol string, combinations []dcql.Combination) error {
	if e.version >= 2 {
		return e.emitV2(protocol, combinations)
	}
	return e.emitV1(protocol, combinations)
}

func setID(number int, protocol string) string {
	return fmt.Sprintf("%d %s", number, protocol)
}

func entryID(number int, protocol, documentID string) string {
	return fmt.Sprintf("%d %s %s", number, protocol, documentID)
}

func (e *Emitter) emitV2(protocol string, combinations []dcql.Combination) error {
	for _, combo := range combinations {
		sid := setID(combo.Number, protocol)
		if err := e.picker.AddEntrySet(sid, len(combo.Elements)); err != nil {
			return fmt.Errorf("picker: add_entry_set %s: %w", sid, err)
		}
		for setIndex, element := range combo.Elements {
			for _, match := range element.Matches {
				if match.Credential == nil {
					continue
				}
				eid := entryID(combo.Number, protocol, match.Credential.DocumentID)
				if err := e.picker.AddEntryToSet(eid, match.Credential.Bitmap, match.Credential.Title, match.Credential.Subtitle, "", "", "", sid, setIndex); err != nil {
					return fmt.Errorf("picker: add_entry_to_set %s: %w", eid, err)
				}
				if err := e.addClaimFields(func(name, value string) error {
					return e.picker.AddFieldToEntrySet(eid, name, value, sid, setIndex)
				}, match); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// emitV1 emits one flat entry per combination: only the first element and,
// within it, only its first match - mirroring the original picker's break
// placed both inside and outside the per-element loop. A credential whose
// documentId was already emitted for an earlier request is skipped.
func (e *Emitter) emitV1(protocol string, combinations []dcql.Combination) error {
	for _, combo := range combinations {
		if len(combo.Elements) == 0 || len(combo.Elements[0].Matches) == 0 {
			continue
		}
		match := combo.Elements[0].Matches[0]
		if match.Credential == nil {
			continue
		}
		documentID := match.Credential.DocumentID
		if e.emittedDocumentIDs[documentID] {
			telemetry.Logf("picker: v1: skipping already-emitted documentId %s", documentID)
			continue
		}

		credID := entryID(combo.Number, protocol, documentID)
		if err := e.picker.AddStringIdEntry(credID, match.Credential.Bitmap, match.Credential.Title, match.Credential.Subtitle, "", ""); err != nil {
			return fmt.Errorf("picker: add_string_id_entry %s: %w", credID, err)
		}
		if err := e.addClaimFields(func(name, value string) error {
			return e.picker.AddFieldForStringIdEntry(credID, name, value)
		}, match); err != nil {
			return err
		}
		e.emittedDocumentIDs[documentID] = true
	}
	return nil
}

func (e *Emitter) addClaimFields(addField func(name, value string) error, match dcql.Match) error {
	for _, claim := range match.Claims {
		if claim == nil {
			continue
		}
		if err := addField(claim.DisplayName, claim.Value); err != nil {
			return fmt.Errorf("picker: add field %s: %w", claim.DisplayName, err)
		}
	}
	return nil
}
