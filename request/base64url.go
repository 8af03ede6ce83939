package request

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// decodeBase64URL decodes s as unpadded or padded base64url, inferring the
// padding a sender omitted: two '=' when len(s)%4 == 2, one when it's 3,
// none otherwise. A trailing '=' already present in s is left alone rather
// than padded again.
func decodeBase64URL(s string) ([]byte, error) {
	if !strings.HasSuffix(s, "=") {
		switch len(s) % 4 {
		case 2:
			s += "=="
		case 3:
			s += "="
		}
	}
	b, err := base64.URLEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("request: invalid base64url: %w", err)
	}
	return b, nil
}
