package expand

import (
	"regexp"
	"strings"
)

var orSplit = regexp.MustCompile(`(?i)\s+or\s+`)

const altTrimSet = ".,;:()"

// alternationCandidates handles enumerated alternatives: "A or B",
// "such as A, B", "including A, B". Each alternative becomes its own
// candidate so downstream review can accept them independently.
func (e *Expander) alternationCandidates(s Sentence) []Candidate {
	lower := strings.ToLower(s.Text)
	if !strings.Contains(lower, " or ") &&
		!strings.Contains(lower, "such as") &&
		!strings.Contains(lower, "including") {
		return nil
	}

	var out []Candidate
	for _, alt := range e.extractAlternatives(s.Text) {
		out = append(out, Candidate{
			Pattern:        regexp.QuoteMeta(alt),
			Kind:           "behavior_or_platform",
			ParentSpans:    s.Spans,
			Operator:       OpAltEnum,
			EvidenceSentID: s.SentID,
			EvidenceQuote:  s.Text,
			Status:         StatusAdvisory,
		})
	}
	return out
}

// extractAlternatives pulls the enumerated terms out of a sentence. Cue
// detection is case-insensitive but the extracted terms keep their original
// casing; expansion never rewrites evidence.
func (e *Expander) extractAlternatives(text string) []string {
	lower := strings.ToLower(text)
	var alternatives []string

	if i := strings.Index(lower, "such as"); i >= 0 {
		alternatives = append(alternatives, splitEnumeration(text[i+len("such as"):])...)
	}
	if strings.Contains(lower, " or ") {
		for _, part := range orSplit.Split(text, -1) {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			words := strings.Fields(part)
			alternatives = append(alternatives, strings.Trim(words[len(words)-1], altTrimSet))
		}
	}
	if i := strings.Index(lower, "including"); i >= 0 {
		alternatives = append(alternatives, splitEnumeration(text[i+len("including"):])...)
	}

	var out []string
	for _, alt := range alternatives {
		if len(alt) > 1 && !e.denied(alt) {
			out = append(out, alt)
		}
	}
	return out
}

func splitEnumeration(seg string) []string {
	var out []string
	for _, part := range strings.Split(seg, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, strings.Trim(part, altTrimSet))
	}
	return out
}
