package request

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type openid4vpData struct {
	Request   string          `json:"request"`
	DcqlQuery json.RawMessage `json:"dcql_query"`
}

// parseOpenID4VP handles openid4vp, openid4vp-v1-unsigned and
// openid4vp-v1-signed: the dcql_query is either inline in the request
// object, or nested inside a signed JAR request's JWS payload.
func parseOpenID4VP(protocol string, payload json.RawMessage) (*OpenID4VPRequest, error) {
	var msg openid4vpData
	if err := json.Unmarshal(payload, &msg); err != nil {
		return nil, fmt.Errorf("request: parse openid4vp data: %w", err)
	}

	dcqlRaw := msg.DcqlQuery
	if msg.Request != "" {
		claims, err := unwrapSignedRequest(msg.Request)
		if err != nil {
			return nil, fmt.Errorf("request: unwrap signed request: %w", err)
		}
		claim, ok := claims["dcql_query"]
		if !ok {
			return nil, fmt.Errorf("request: signed request missing dcql_query")
		}
		reencoded, err := json.Marshal(claim)
		if err != nil {
			return nil, fmt.Errorf("request: re-encode dcql_query: %w", err)
		}
		dcqlRaw = reencoded
	}
	if len(dcqlRaw) == 0 {
		return nil, fmt.Errorf("request: missing dcql_query")
	}

	query, err := parseDcqlQuery(dcqlRaw)
	if err != nil {
		return nil, fmt.Errorf("request: parse dcql_query: %w", err)
	}

	return &OpenID4VPRequest{Protocol: protocol, DcqlQuery: *query}, nil
}

// unwrapSignedRequest splits and decodes an unverified three-segment JWS,
// returning its claims as a plain map. Signature verification is an
// explicit non-goal of this component - the host's own trust boundary
// already vetted the request before handing it to the matcher.
func unwrapSignedRequest(token string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	_, _, err := jwt.NewParser().ParseUnverified(trimSignedRequestPadding(token), claims)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// trimSignedRequestPadding strips any padding already present on the
// claims segment, since golang-jwt's raw base64url decoder rejects '='
// regardless of whether the original padding was needed or not.
func trimSignedRequestPadding(token string) string {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return token
	}
	parts[1] = strings.TrimRight(parts[1], "=")
	return strings.Join(parts, ".")
}
