package expand

import (
	"regexp"
	"strings"
)

// literalSetCandidates handles explicitly enumerated literals: domains,
// URLs and handle-like identifiers named side by side in one sentence.
// Each distinct literal becomes one candidate.
func (e *Expander) literalSetCandidates(s Sentence) []Candidate {
	var out []Candidate
	for _, lit := range e.extractLiteralSet(s.Text) {
		out = append(out, Candidate{
			Pattern:        regexp.QuoteMeta(lit),
			Kind:           "domain_or_url",
			ParentSpans:    s.Spans,
			Operator:       OpLiteralSet,
			EvidenceSentID: s.SentID,
			EvidenceQuote:  s.Text,
			Status:         StatusAdvisory,
		})
	}
	return out
}

// extractLiteralSet collects domain/URL/identifier-shaped tokens that appear
// in explicit enumerations. Single mentions are not a set: both sources
// require more than one hit before contributing. Results are deduplicated in
// first-seen order so the same literal found by both sources yields one
// candidate.
func (e *Expander) extractLiteralSet(text string) []string {
	var literals []string

	domains := domainPattern.FindAllString(text, -1)
	if len(domains) > 1 {
		literals = append(literals, domains...)
	}

	if strings.Contains(text, ",") && strings.ContainsAny(text, ".@/") {
		var variants []string
		for _, part := range strings.Split(text, ",") {
			token := lastToken(part)
			if len(token) > 3 && strings.ContainsAny(token, ".@/") {
				variants = append(variants, token)
			}
		}
		if len(variants) > 1 {
			literals = append(literals, variants...)
		}
	}

	seen := make(map[string]bool, len(literals))
	var out []string
	for _, lit := range literals {
		if seen[lit] || e.denied(lit) {
			continue
		}
		seen[lit] = true
		out = append(out, lit)
	}
	return out
}

// lastToken reduces a comma-separated part to its final word, dropping any
// narrative prefix ("backup domains pay-safe.net" -> "pay-safe.net").
func lastToken(part string) string {
	part = strings.TrimSpace(part)
	words := strings.Fields(part)
	if len(words) == 0 {
		return ""
	}
	return strings.Trim(words[len(words)-1], altTrimSet)
}
