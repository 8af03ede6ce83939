package request

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/mitchellh/mapstructure"

	"github.com/kouzoh/credential-matcher-core/dcql"
	"github.com/kouzoh/credential-matcher-core/internal/telemetry"
)

// rawCredentialQuery mirrors one entry of the DCQL "credentials" array before
// format-dependent fields (mdoc doctype vs. SD-JWT vct) are resolved into
// dcql.CredentialQuery.
type rawCredentialQuery struct {
	ID     string `mapstructure:"id"`
	Format string `mapstructure:"format"`
	Meta   struct {
		DocTypeValue string   `mapstructure:"doctype_value"`
		VctValues    []string `mapstructure:"vct_values"`
	} `mapstructure:"meta"`
	Claims    []rawClaim `mapstructure:"claims"`
	ClaimSets [][]string `mapstructure:"claim_sets"`
}

type rawClaim struct {
	ID     string        `mapstructure:"id"`
	Path   []string      `mapstructure:"path"`
	Values []interface{} `mapstructure:"values"`
	// Required, despite the name, maps to IntentToRetain - that is what
	// this field means on a DCQL claim, not claim-set membership.
	Required *bool `mapstructure:"required"`
}

type rawCredentialSetQuery struct {
	Required *bool      `mapstructure:"required"`
	Options  [][]string `mapstructure:"options"`
}

type rawDcqlQuery struct {
	Credentials    []rawCredentialQuery    `mapstructure:"credentials"`
	CredentialSets []rawCredentialSetQuery `mapstructure:"credential_sets"`
}

// parseDcqlQuery decodes a dcql_query JSON object into a dcql.Query,
// normalizing claim values to strings and defaulting "required" to true
// wherever DCQL says it's implied by absence.
func parseDcqlQuery(raw json.RawMessage) (*dcql.Query, error) {
	var generic map[string]interface{}
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("dcql_query is not a JSON object: %w", err)
	}

	var parsed rawDcqlQuery
	if err := mapstructure.Decode(generic, &parsed); err != nil {
		return nil, fmt.Errorf("decode dcql_query: %w", err)
	}

	query := &dcql.Query{}
	for _, c := range parsed.Credentials {
		query.CredentialQueries = append(query.CredentialQueries, credentialQueryFromRaw(c))
	}
	for _, cs := range parsed.CredentialSets {
		required := cs.Required == nil || *cs.Required
		var options []dcql.CredentialSetOption
		for _, opt := range cs.Options {
			options = append(options, dcql.CredentialSetOption{CredentialIDs: opt})
		}
		query.CredentialSetQueries = append(query.CredentialSetQueries, dcql.CredentialSetQuery{
			Required: required,
			Options:  options,
		})
	}
	return query, nil
}

func credentialQueryFromRaw(c rawCredentialQuery) dcql.CredentialQuery {
	cq := dcql.CredentialQuery{
		ID:     c.ID,
		Format: dcql.Format(c.Format),
	}
	switch cq.Format {
	case dcql.FormatMsoMdoc, dcql.FormatMsoMdocZK:
		cq.MdocDocType = c.Meta.DocTypeValue
	case dcql.FormatSDJWT:
		cq.VctValues = c.Meta.VctValues
	}
	for _, claim := range c.Claims {
		cq.RequestedClaims = append(cq.RequestedClaims, dcql.RequestedClaim{
			ID:             claim.ID,
			Path:           claim.Path,
			Values:         normalizeValues(claim.Values),
			IntentToRetain: claim.Required != nil && *claim.Required,
		})
	}
	for _, set := range c.ClaimSets {
		cq.ClaimSets = append(cq.ClaimSets, dcql.ClaimSet{ClaimIdentifiers: set})
	}
	return cq
}

// normalizeValues canonicalizes a DCQL claim's "values" array to strings
// the same way the catalog's claim MatchValue is stored: booleans become
// "true"/"false", numbers become the decimal form of their integer part (a
// fractional part is dropped), strings pass through.
func normalizeValues(values []interface{}) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		switch val := v.(type) {
		case bool:
			if val {
				out = append(out, "true")
			} else {
				out = append(out, "false")
			}
		case float64:
			out = append(out, strconv.FormatInt(int64(val), 10))
		case string:
			out = append(out, val)
		default:
			telemetry.Logf("request: unhandled JSON type %T in dcql claim values", v)
		}
	}
	return out
}
