package expand

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Digit range cues, checked in order; the first hit wins. An open upper
// bound ("6+ digits") leaves hi at zero.
var rangeCues = []*regexp.Regexp{
	regexp.MustCompile(`(\d+)[-–](\d+)\s*digit`),
	regexp.MustCompile(`(\d+)\+\s*digit`),
	regexp.MustCompile(`between\s+(\d+)\s+and\s+(\d+)`),
	regexp.MustCompile(`(\d+)\s+to\s+(\d+)\s*digit`),
}

// anchorPattern finds a standalone all-caps token to pin the digit run to.
var anchorPattern = regexp.MustCompile(`\b[A-Z][A-Z0-9]+\b`)

// rangeCandidates handles digit-range evidence such as "3-4 digit code".
// A bare \d{3,4} run matches everywhere, so the pattern is anchored on a
// co-occurring all-caps literal from the same sentence. No anchor in the
// sentence means no candidate.
func (e *Expander) rangeCandidates(s Sentence) []Candidate {
	lo, hi, ok := digitRange(s.Text)
	if !ok {
		return nil
	}
	anchor := anchorPattern.FindString(s.Text)
	if anchor == "" {
		return nil
	}

	quantifier := fmt.Sprintf(`\d{%d,}`, lo)
	if hi > 0 {
		quantifier = fmt.Sprintf(`\d{%d,%d}`, lo, hi)
	}
	return []Candidate{{
		Pattern:        regexp.QuoteMeta(anchor) + `[ ]` + quantifier,
		Kind:           "text",
		ParentSpans:    s.Spans,
		Operator:       OpRangeDigits,
		EvidenceSentID: s.SentID,
		EvidenceQuote:  s.Text,
		Status:         StatusAdvisory,
	}}
}

// digitRange parses a digit-count phrase ("8-11 digit", "between 8 and 11
// digits") out of a sentence.
func digitRange(text string) (lo, hi int, ok bool) {
	lower := strings.ToLower(text)
	for _, cue := range rangeCues {
		m := cue.FindStringSubmatch(lower)
		if m == nil {
			continue
		}
		lo, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if len(m) > 2 && m[2] != "" {
			hi, err := strconv.Atoi(m[2])
			if err != nil {
				continue
			}
			return lo, hi, true
		}
		return lo, 0, true
	}
	return 0, 0, false
}
