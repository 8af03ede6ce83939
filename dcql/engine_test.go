package dcql

import (
	"testing"

	"github.com/kouzoh/credential-matcher-core/catalog"
)

func sampleCredentials() []catalog.Credential {
	return []catalog.Credential{
		{
			DocumentID:  "doc-mdl",
			MdocDocType: "org.iso.18013.5.1.mDL",
			Claims: map[string]catalog.Claim{
				"org.iso.18013.5.1.given_name": {ClaimName: "org.iso.18013.5.1.given_name", DisplayName: "Given Name", Value: "Alice", MatchValue: "Alice"},
				"org.iso.18013.5.1.age_over_18": {ClaimName: "org.iso.18013.5.1.age_over_18", DisplayName: "Age Over 18", Value: "true", MatchValue: "true"},
			},
		},
		{
			DocumentID: "doc-degree",
			VCVct:      "https://example.com/degree",
			Claims: map[string]catalog.Claim{
				"degree.name": {ClaimName: "degree.name", DisplayName: "Degree", Value: "B.Sc.", MatchValue: "B.Sc."},
			},
		},
	}
}

func TestEvaluateNoCredentialSets(t *testing.T) {
	query := Query{
		CredentialQueries: []CredentialQuery{
			{
				ID:          "mdl",
				Format:      FormatMsoMdoc,
				MdocDocType: "org.iso.18013.5.1.mDL",
				RequestedClaims: []RequestedClaim{
					{Path: []string{"org.iso.18013.5.1", "given_name"}},
				},
			},
		},
	}
	resp, err := Evaluate(query, sampleCredentials())
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if resp == nil {
		t.Fatalf("expected a response, got nil")
	}
	combos := resp.Combinations()
	if len(combos) != 1 {
		t.Fatalf("len(combos) = %d, want 1", len(combos))
	}
	if len(combos[0].Elements) != 1 || len(combos[0].Elements[0].Matches) != 1 {
		t.Fatalf("unexpected combination shape: %+v", combos[0])
	}
	if combos[0].Elements[0].Matches[0].Credential.DocumentID != "doc-mdl" {
		t.Errorf("matched wrong credential: %+v", combos[0].Elements[0].Matches[0].Credential)
	}
}

func TestEvaluateUnsatisfiableWithoutCredentialSets(t *testing.T) {
	query := Query{
		CredentialQueries: []CredentialQuery{
			{ID: "missing", Format: FormatMsoMdoc, MdocDocType: "does.not.exist"},
		},
	}
	resp, err := Evaluate(query, sampleCredentials())
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if resp != nil {
		t.Fatalf("expected nil response for unsatisfiable query, got %+v", resp)
	}
}

func TestEvaluateValueMatching(t *testing.T) {
	query := Query{
		CredentialQueries: []CredentialQuery{
			{
				ID:          "mdl",
				Format:      FormatMsoMdoc,
				MdocDocType: "org.iso.18013.5.1.mDL",
				RequestedClaims: []RequestedClaim{
					{Path: []string{"org.iso.18013.5.1", "age_over_18"}, Values: []string{"true"}},
				},
			},
		},
	}
	resp, err := Evaluate(query, sampleCredentials())
	if err != nil || resp == nil {
		t.Fatalf("Evaluate: resp=%v err=%v", resp, err)
	}

	query.CredentialQueries[0].RequestedClaims[0].Values = []string{"false"}
	resp, err = Evaluate(query, sampleCredentials())
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if resp != nil {
		t.Fatalf("expected unsatisfiable query with mismatched value, got %+v", resp)
	}
}

func TestEvaluateClaimSets(t *testing.T) {
	query := Query{
		CredentialQueries: []CredentialQuery{
			{
				ID:          "mdl",
				Format:      FormatMsoMdoc,
				MdocDocType: "org.iso.18013.5.1.mDL",
				RequestedClaims: []RequestedClaim{
					{ID: "gn", Path: []string{"org.iso.18013.5.1", "given_name"}},
					{ID: "missing", Path: []string{"org.iso.18013.5.1", "not_a_real_element"}},
				},
				ClaimSets: []ClaimSet{
					{ClaimIdentifiers: []string{"missing"}},
					{ClaimIdentifiers: []string{"gn"}},
				},
			},
		},
	}
	resp, err := Evaluate(query, sampleCredentials())
	if err != nil || resp == nil {
		t.Fatalf("Evaluate: resp=%v err=%v", resp, err)
	}
	combos := resp.Combinations()
	if len(combos) != 1 {
		t.Fatalf("len(combos) = %d, want 1", len(combos))
	}
}

func TestEvaluateCredentialSetsRequiredAndOptional(t *testing.T) {
	query := Query{
		CredentialQueries: []CredentialQuery{
			{ID: "mdl", Format: FormatMsoMdoc, MdocDocType: "org.iso.18013.5.1.mDL"},
			{ID: "degree", Format: FormatSDJWT, VctValues: []string{"https://example.com/degree"}},
			{ID: "missing", Format: FormatMsoMdoc, MdocDocType: "does.not.exist"},
		},
		CredentialSetQueries: []CredentialSetQuery{
			{Required: true, Options: []CredentialSetOption{{CredentialIDs: []string{"mdl"}}}},
			{Required: false, Options: []CredentialSetOption{{CredentialIDs: []string{"missing"}}, {CredentialIDs: []string{"degree"}}}},
		},
	}
	resp, err := Evaluate(query, sampleCredentials())
	if err != nil || resp == nil {
		t.Fatalf("Evaluate: resp=%v err=%v", resp, err)
	}
	if len(resp.CredentialSets) != 2 {
		t.Fatalf("len(CredentialSets) = %d, want 2", len(resp.CredentialSets))
	}
	// Second set is optional and only its second option (degree) is satisfied.
	if len(resp.CredentialSets[1].Options) != 1 {
		t.Fatalf("expected only the satisfied option to survive, got %d", len(resp.CredentialSets[1].Options))
	}
}

func TestEvaluateRequiredCredentialSetUnsatisfiable(t *testing.T) {
	query := Query{
		CredentialQueries: []CredentialQuery{
			{ID: "missing", Format: FormatMsoMdoc, MdocDocType: "does.not.exist"},
		},
		CredentialSetQueries: []CredentialSetQuery{
			{Required: true, Options: []CredentialSetOption{{CredentialIDs: []string{"missing"}}}},
		},
	}
	resp, err := Evaluate(query, sampleCredentials())
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if resp != nil {
		t.Fatalf("expected nil response, got %+v", resp)
	}
}

func TestMatchMdoc(t *testing.T) {
	resp := MatchMdoc("org.iso.18013.5.1.mDL", []MdocDataElement{
		{NamespaceName: "org.iso.18013.5.1", DataElementName: "given_name"},
	}, sampleCredentials())
	if resp == nil {
		t.Fatalf("expected a response")
	}
	combos := resp.Combinations()
	if len(combos) != 1 {
		t.Fatalf("len(combos) = %d, want 1", len(combos))
	}
}

func TestMatchMdocNoMatch(t *testing.T) {
	resp := MatchMdoc("does.not.exist", nil, sampleCredentials())
	if resp != nil {
		t.Fatalf("expected nil response, got %+v", resp)
	}
}
