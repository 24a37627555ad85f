package audit

import (
	"regexp"
	"strings"
)

// sensitiveFields are redacted by exact key match, case-insensitively.
// Substring matching is deliberately avoided: a field named "tokenizer"
// is data, a field named "token" is a secret.
var sensitiveFields = map[string]struct{}{
	"api_key":    {},
	"token":      {},
	"password":   {},
	"secret":     {},
	"credential": {},
}

var (
	longKeyPattern = regexp.MustCompile(`[a-zA-Z0-9]{32,}`)
	emailPattern   = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
)

// Sanitize redacts secrets from a payload before it is hashed and written.
// Keys in sensitiveFields lose their values entirely; every remaining string
// leaf is scrubbed of key-shaped tokens and email addresses.
func Sanitize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			if _, hit := sensitiveFields[strings.ToLower(k)]; hit {
				out[k] = "[REDACTED]"
				continue
			}
			out[k] = Sanitize(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = Sanitize(e)
		}
		return out
	case string:
		s := longKeyPattern.ReplaceAllString(t, "[REDACTED_KEY]")
		return emailPattern.ReplaceAllString(s, "[REDACTED_EMAIL]")
	default:
		return v
	}
}
