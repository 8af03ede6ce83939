// Package catalog loads the host-supplied CBOR credential catalog into a
// list of Credential records. The catalog is untrusted input: any structural
// problem produces an empty result rather than a panic or a propagated
// error, matching the fail-soft policy the rest of this module follows.
package catalog

import (
	"strings"

	"github.com/kouzoh/credential-matcher-core/cbor"
	"github.com/kouzoh/credential-matcher-core/internal/telemetry"
)

// Claim is a single disclosable attribute of a Credential.
type Claim struct {
	ClaimName   string
	DisplayName string
	Value       string
	MatchValue  string
}

// Credential is a single catalog entry. At least one of MdocDocType or
// VCVct is non-empty; a credential may expose both projections, with their
// claims sharing a single flat map distinguishable by key shape.
type Credential struct {
	Title      string
	Subtitle   string
	Bitmap     []byte
	DocumentID string

	// MdocDocType is empty if this credential has no mdoc projection.
	MdocDocType string

	// VCVct is empty if this credential has no VC/SD-JWT projection.
	VCVct string

	// Claims maps canonical claim name to Claim. For mdoc projections the
	// canonical name is "<namespace>.<dataElement>"; for VC projections it
	// is the claim path joined with ".".
	Claims map[string]Claim
}

// FindMatchingClaim looks up joinedPath in c's claims and, if values is
// non-empty, additionally requires the stored MatchValue to be one of
// values. Returns nil on no match.
func (c *Credential) FindMatchingClaim(joinedPath string, values []string) *Claim {
	claim, ok := c.Claims[joinedPath]
	if !ok {
		return nil
	}
	if len(values) > 0 && !contains(values, claim.MatchValue) {
		return nil
	}
	return &claim
}

func contains(values []string, v string) bool {
	for _, want := range values {
		if want == v {
			return true
		}
	}
	return false
}

// Catalog is the decoded credential database.
type Catalog struct {
	Protocols   []string
	Credentials []Credential
}

// Load parses data as the CBOR-encoded catalog described in the host
// envelope: a top-level map with a "protocols" text-string array and a
// "credentials" array of per-credential maps, each carrying an optional
// "mdoc" and/or "sdjwt" sub-map. A decode error, or a top-level item that
// is not a map, yields an empty Catalog; a malformed credential entry is
// skipped and the remaining entries are kept. Load never returns an error because the caller (the top-level
// invocation loop) has nothing useful to do with a load failure besides
// proceed with no credentials.
func Load(data []byte) *Catalog {
	cat := &Catalog{}

	root, err := cbor.Decode(data)
	if err != nil {
		telemetry.Logf("catalog: decode failed: %v", err)
		return cat
	}
	top, err := root.AsMap()
	if err != nil {
		telemetry.Logf("catalog: top-level item is not a map: %v", err)
		return cat
	}

	cat.Protocols = loadProtocols(top)
	cat.Credentials = loadCredentials(top)
	telemetry.Logf("catalog: loaded %d protocols, %d credentials", len(cat.Protocols), len(cat.Credentials))
	return cat
}

func loadProtocols(top *cbor.Map) []string {
	item, ok := top.GetText("protocols")
	if !ok {
		return nil
	}
	arr, err := item.AsArray()
	if err != nil {
		telemetry.Logf("catalog: protocols is not an array: %v", err)
		return nil
	}
	protocols := make([]string, 0, len(arr))
	for _, p := range arr {
		s, err := p.AsTstr()
		if err != nil {
			telemetry.Logf("catalog: skipping non-text protocol entry: %v", err)
			continue
		}
		protocols = append(protocols, s)
	}
	return protocols
}

func loadCredentials(top *cbor.Map) []Credential {
	item, ok := top.GetText("credentials")
	if !ok {
		return nil
	}
	arr, err := item.AsArray()
	if err != nil {
		telemetry.Logf("catalog: credentials is not an array: %v", err)
		return nil
	}
	creds := make([]Credential, 0, len(arr))
	for _, entry := range arr {
		cred, err := loadCredential(entry)
		if err != nil {
			telemetry.Logf("catalog: skipping malformed credential: %v", err)
			continue
		}
		creds = append(creds, *cred)
	}
	return creds
}

func loadCredential(entry *cbor.Item) (*Credential, error) {
	m, err := entry.AsMap()
	if err != nil {
		return nil, err
	}

	title := textOr(m, "title", "")
	subtitle := textOr(m, "subtitle", "")
	bitmap := bstrOr(m, "bitmap", nil)

	cred := &Credential{
		Title:    title,
		Subtitle: subtitle,
		Bitmap:   bitmap,
		Claims:   map[string]Claim{},
	}

	if mdocItem, ok := m.GetText("mdoc"); ok {
		if err := loadMdocProjection(cred, mdocItem); err != nil {
			telemetry.Logf("catalog: mdoc projection rejected: %v", err)
		}
	}
	if sdjwtItem, ok := m.GetText("sdjwt"); ok {
		if err := loadSDJWTProjection(cred, sdjwtItem); err != nil {
			telemetry.Logf("catalog: sdjwt projection rejected: %v", err)
		}
	}

	if cred.MdocDocType == "" && cred.VCVct == "" {
		return nil, &InvalidCredentialError{Reason: "neither mdoc nor sdjwt projection present"}
	}
	return cred, nil
}

func loadMdocProjection(cred *Credential, item *cbor.Item) error {
	m, err := item.AsMap()
	if err != nil {
		return err
	}
	if docID, ok := textField(m, "documentId"); ok {
		cred.DocumentID = docID
	}
	docType, ok := textField(m, "docType")
	if !ok {
		return &InvalidCredentialError{Reason: "mdoc.docType missing"}
	}
	cred.MdocDocType = docType

	nsItem, ok := m.GetText("namespaces")
	if !ok {
		return &InvalidCredentialError{Reason: "mdoc.namespaces missing"}
	}
	namespaces, err := nsItem.AsMap()
	if err != nil {
		return err
	}
	for _, nsEntry := range namespaces.Entries() {
		namespaceName, err := nsEntry.Key.AsTstr()
		if err != nil {
			continue
		}
		elements, err := nsEntry.Value.AsMap()
		if err != nil {
			continue
		}
		for _, elemEntry := range elements.Entries() {
			elementName, err := elemEntry.Key.AsTstr()
			if err != nil {
				continue
			}
			claim, err := claimFromTriple(elemEntry.Value)
			if err != nil {
				telemetry.Logf("catalog: mdoc claim %s.%s rejected: %v", namespaceName, elementName, err)
				continue
			}
			key := namespaceName + "." + elementName
			claim.ClaimName = key
			cred.Claims[key] = *claim
		}
	}
	return nil
}

func loadSDJWTProjection(cred *Credential, item *cbor.Item) error {
	m, err := item.AsMap()
	if err != nil {
		return err
	}
	if docID, ok := textField(m, "documentId"); ok && cred.DocumentID == "" {
		cred.DocumentID = docID
	}
	vct, ok := textField(m, "vct")
	if !ok {
		return &InvalidCredentialError{Reason: "sdjwt.vct missing"}
	}
	cred.VCVct = vct

	claimsItem, ok := m.GetText("claims")
	if !ok {
		return &InvalidCredentialError{Reason: "sdjwt.claims missing"}
	}
	claims, err := claimsItem.AsMap()
	if err != nil {
		return err
	}
	for _, entry := range claims.Entries() {
		claimName, err := entry.Key.AsTstr()
		if err != nil {
			continue
		}
		claim, err := claimFromTriple(entry.Value)
		if err != nil {
			telemetry.Logf("catalog: sdjwt claim %s rejected: %v", claimName, err)
			continue
		}
		claim.ClaimName = claimName
		cred.Claims[claimName] = *claim
	}
	return nil
}

// claimFromTriple decodes the [displayName, value, matchValue] array shared
// by both the mdoc and sdjwt claim projections.
func claimFromTriple(item *cbor.Item) (*Claim, error) {
	arr, err := item.AsArray()
	if err != nil {
		return nil, err
	}
	if len(arr) != 3 {
		return nil, &InvalidCredentialError{Reason: "claim entry is not a 3-element array"}
	}
	displayName, err := arr[0].AsTstr()
	if err != nil {
		return nil, err
	}
	value, err := arr[1].AsTstr()
	if err != nil {
		return nil, err
	}
	matchValue, err := arr[2].AsTstr()
	if err != nil {
		return nil, err
	}
	return &Claim{DisplayName: displayName, Value: value, MatchValue: matchValue}, nil
}

func textField(m *cbor.Map, key string) (string, bool) {
	item, ok := m.GetText(key)
	if !ok {
		return "", false
	}
	s, err := item.AsTstr()
	if err != nil {
		return "", false
	}
	return s, true
}

func textOr(m *cbor.Map, key, def string) string {
	if s, ok := textField(m, key); ok {
		return s
	}
	return def
}

func bstrOr(m *cbor.Map, key string, def []byte) []byte {
	item, ok := m.GetText(key)
	if !ok {
		return def
	}
	b, err := item.AsBstr()
	if err != nil {
		return def
	}
	return b
}

// InvalidCredentialError is returned internally while loading a single
// catalog entry; Load itself never surfaces it, it only drives the
// skip-and-log fail-soft behavior.
type InvalidCredentialError struct {
	Reason string
}

func (e *InvalidCredentialError) Error() string {
	return "catalog: invalid credential: " + strings.TrimSpace(e.Reason)
}
