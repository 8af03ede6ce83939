package dcql

import "github.com/kouzoh/credential-matcher-core/catalog"

// MdocDataElement is one requested element of a non-DCQL mdoc request
// (preview, mdoc-api, austroads-request-forwarding-v2).
type MdocDataElement struct {
	NamespaceName   string
	DataElementName string
	IntentToRetain  bool
}

// MatchMdoc evaluates the simpler per-element resolution these protocols
// use in place of full DCQL: a credential matches iff its MdocDocType
// equals docType and every requested element resolves against its claims.
// The result is shaped exactly like a DCQL Response with no credential_sets
// (the synthetic single-query case), so Combinations() works unchanged for
// both protocol families.
func MatchMdoc(docType string, elements []MdocDataElement, credentials []catalog.Credential) *Response {
	var matches []Match
	for i := range credentials {
		cred := &credentials[i]
		if cred.MdocDocType != docType {
			continue
		}
		resolved, ok := resolveMdocElements(elements, cred)
		if !ok {
			continue
		}
		matches = append(matches, Match{Credential: cred, Claims: resolved})
	}
	if len(matches) == 0 {
		return nil
	}
	return &Response{
		CredentialSets: []ResponseCredentialSet{
			{
				Optional: false,
				Options: []Option{
					{Members: []Member{{Matches: matches}}},
				},
			},
		},
	}
}

func resolveMdocElements(elements []MdocDataElement, cred *catalog.Credential) ([]*catalog.Claim, bool) {
	var resolved []*catalog.Claim
	for _, el := range elements {
		claim := cred.FindMatchingClaim(el.NamespaceName+"."+el.DataElementName, nil)
		if claim == nil {
			return nil, false
		}
		resolved = append(resolved, claim)
	}
	return resolved, true
}
