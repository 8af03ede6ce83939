// Package dcql implements the Digital Credentials Query Language evaluation
// engine used by OpenID4VP requests, plus a simpler matcher for the
// non-DCQL mdoc protocols (preview, mdoc-api, austroads-request-forwarding-v2)
// that shares the same combination/response shapes so the picker emitter
// only has to know about one model.
package dcql

import "strings"

// RequestedClaim is one entry of a CredentialQuery.requestedClaims array.
type RequestedClaim struct {
	ID             string
	Values         []string
	Path           []string
	IntentToRetain bool
}

// JoinPath joins Path with "." to produce the canonical claim key used to
// look the claim up in a catalog.Credential.
func (c RequestedClaim) JoinPath() string {
	return strings.Join(c.Path, ".")
}

// ClaimSet names an ordered subset of a CredentialQuery's RequestedClaims
// (by id) that together satisfy the query if every one resolves.
type ClaimSet struct {
	ClaimIdentifiers []string
}

// Format identifies the credential format a CredentialQuery targets.
type Format string

const (
	FormatMsoMdoc   Format = "mso_mdoc"
	FormatMsoMdocZK Format = "mso_mdoc_zk"
	FormatSDJWT     Format = "dc+sd-jwt"
)

// CredentialQuery is one entry of DCQL's top-level "credentials" array.
type CredentialQuery struct {
	ID     string
	Format Format

	// MdocDocType is meaningful only for FormatMsoMdoc/FormatMsoMdocZK.
	MdocDocType string
	// VctValues is meaningful only for FormatSDJWT.
	VctValues []string

	RequestedClaims []RequestedClaim
	ClaimSets       []ClaimSet
}

// FindRequestedClaim looks up a RequestedClaim by id within this query.
func (q *CredentialQuery) FindRequestedClaim(id string) *RequestedClaim {
	for i := range q.RequestedClaims {
		if q.RequestedClaims[i].ID == id {
			return &q.RequestedClaims[i]
		}
	}
	return nil
}

// CredentialSetOption is one alternative bundle of credential-query ids.
type CredentialSetOption struct {
	CredentialIDs []string
}

// CredentialSetQuery groups alternative CredentialSetOptions; if Required
// is false the whole set may be omitted from a combination.
type CredentialSetQuery struct {
	Required bool
	Options  []CredentialSetOption
}

// Query is a fully parsed DCQL query.
type Query struct {
	CredentialQueries    []CredentialQuery
	CredentialSetQueries []CredentialSetQuery
}
