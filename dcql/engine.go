package dcql

import (
	"github.com/kouzoh/credential-matcher-core/catalog"
	"github.com/kouzoh/credential-matcher-core/internal/telemetry"
)

// queryResponse is Evaluate's working state per credential query: which
// catalog credentials, and with which resolved claims, satisfied it.
type queryResponse struct {
	query   *CredentialQuery
	matches []Match
}

// Evaluate runs the first two stages of the DCQL algorithm against
// credentials (stage 3, combination enumeration, is Response.Combinations):
// stage 1 finds, per credential query, every credential that satisfies its
// format/meta filter and its claim requirements; stage 2 checks credential
// set satisfaction; a nil, nil return means the query is unsatisfiable (a
// required credential set, or - absent credential_sets - any credential
// query, had no matches) and the caller should skip this request entirely.
func Evaluate(query Query, credentials []catalog.Credential) (*Response, error) {
	byID := make(map[string]*queryResponse, len(query.CredentialQueries))
	order := make([]string, 0, len(query.CredentialQueries))

	for i := range query.CredentialQueries {
		q := &query.CredentialQueries[i]
		matches := matchCredentialQuery(q, credentials)
		byID[q.ID] = &queryResponse{query: q, matches: matches}
		order = append(order, q.ID)
	}

	if len(query.CredentialSetQueries) == 0 {
		return evaluateWithoutCredentialSets(order, byID)
	}
	return evaluateWithCredentialSets(query.CredentialSetQueries, byID)
}

func matchCredentialQuery(q *CredentialQuery, credentials []catalog.Credential) []Match {
	var candidates []*catalog.Credential
	for i := range credentials {
		c := &credentials[i]
		switch q.Format {
		case FormatMsoMdoc, FormatMsoMdocZK:
			if c.MdocDocType == q.MdocDocType {
				candidates = append(candidates, c)
			}
		case FormatSDJWT:
			if containsString(q.VctValues, c.VCVct) {
				candidates = append(candidates, c)
			}
		}
	}

	var matches []Match
	for _, cred := range candidates {
		claims, ok := resolveClaims(q, cred)
		if !ok {
			telemetry.Logf("dcql: credential query %s: no claim set resolved for credential %s", q.ID, cred.DocumentID)
			continue
		}
		matches = append(matches, Match{Credential: cred, Claims: claims})
	}
	return matches
}

// resolveClaims: with no claim sets, every requested claim must resolve;
// with claim sets, the first set whose every referenced claim resolves
// wins.
func resolveClaims(q *CredentialQuery, cred *catalog.Credential) ([]*catalog.Claim, bool) {
	if len(q.ClaimSets) == 0 {
		var resolved []*catalog.Claim
		for _, rc := range q.RequestedClaims {
			claim := cred.FindMatchingClaim(rc.JoinPath(), rc.Values)
			if claim == nil {
				return nil, false
			}
			resolved = append(resolved, claim)
		}
		return resolved, true
	}

	for _, set := range q.ClaimSets {
		resolved, ok := resolveClaimSet(q, cred, set)
		if ok {
			return resolved, true
		}
	}
	return nil, false
}

func resolveClaimSet(q *CredentialQuery, cred *catalog.Credential, set ClaimSet) ([]*catalog.Claim, bool) {
	var resolved []*catalog.Claim
	for _, claimID := range set.ClaimIdentifiers {
		rc := q.FindRequestedClaim(claimID)
		if rc == nil {
			return nil, false
		}
		claim := cred.FindMatchingClaim(rc.JoinPath(), rc.Values)
		if claim == nil {
			return nil, false
		}
		resolved = append(resolved, claim)
	}
	return resolved, true
}

// evaluateWithoutCredentialSets implements the "credential_sets is absent"
// case: every credential query must have at least one match, and the
// response synthesizes one non-optional credential set per query with a
// single option/single member.
func evaluateWithoutCredentialSets(order []string, byID map[string]*queryResponse) (*Response, error) {
	var sets []ResponseCredentialSet
	for _, id := range order {
		resp := byID[id]
		if len(resp.matches) == 0 {
			telemetry.Logf("dcql: no matches for credential query %s, query unsatisfiable", id)
			return nil, nil
		}
		sets = append(sets, ResponseCredentialSet{
			Optional: false,
			Options: []Option{
				{Members: []Member{{Matches: resp.matches}}},
			},
		})
	}
	return &Response{CredentialSets: sets}, nil
}

func evaluateWithCredentialSets(setQueries []CredentialSetQuery, byID map[string]*queryResponse) (*Response, error) {
	var sets []ResponseCredentialSet
	for _, csq := range setQueries {
		var options []Option
		satisfied := false
		for _, opt := range csq.Options {
			if !credentialSetOptionSatisfied(opt, byID) {
				continue
			}
			var members []Member
			for _, id := range opt.CredentialIDs {
				members = append(members, Member{Matches: byID[id].matches})
			}
			options = append(options, Option{Members: members})
			satisfied = true
		}
		if !satisfied && csq.Required {
			telemetry.Logf("dcql: no option satisfied a required credential set")
			return nil, nil
		}
		sets = append(sets, ResponseCredentialSet{Optional: !csq.Required, Options: options})
	}
	return &Response{CredentialSets: sets}, nil
}

func credentialSetOptionSatisfied(opt CredentialSetOption, byID map[string]*queryResponse) bool {
	for _, id := range opt.CredentialIDs {
		resp, ok := byID[id]
		if !ok || len(resp.matches) == 0 {
			return false
		}
	}
	return true
}

func containsString(values []string, v string) bool {
	for _, want := range values {
		if want == v {
			return true
		}
	}
	return false
}
