// Package expand implements evidence-driven advisory promotion (EDAP):
// turning narrative evidence sentences into candidate detection patterns.
// Every candidate stays tied to the sentence and spans it came from, and
// promotion to ready status needs explicit evidence, never judgment.
package expand

import (
	"log/slog"
	"regexp"
	"strings"
)

// Candidate operators name the evidence shape that produced the pattern.
const (
	OpAltEnum     = "ALT_ENUM"
	OpRangeDigits = "RANGE_DIGITS"
	OpLiteralSet  = "LITERAL_SET"
)

// Candidate statuses. Ready-for-deployment decisions live downstream in
// governance; expansion only ever promotes advisory to ready.
const (
	StatusAdvisory = "advisory"
	StatusReady    = "ready"
)

// DefaultRepeatMin is the cross-sentence recurrence threshold for promotion.
const DefaultRepeatMin = 2

// defaultDenylist blocks generic nouns that recur in narratives without
// identifying anything. A pattern built from one of these matches everywhere.
var defaultDenylist = map[string]bool{
	"apps":      true,
	"payments":  true,
	"transfers": true,
}

// Sentence is one narrative evidence sentence with the spans it supports.
type Sentence struct {
	SentID string   `json:"sent_id"`
	Text   string   `json:"text"`
	Spans  []string `json:"spans"`
}

// Candidate is one proposed detection pattern with its full evidence trail.
type Candidate struct {
	Pattern        string   `json:"pattern"`
	Kind           string   `json:"kind"`
	ParentSpans    []string `json:"parent_spans"`
	Operator       string   `json:"operator"`
	EvidenceSentID string   `json:"evidence_sent_id"`
	EvidenceQuote  string   `json:"evidence_quote"`
	Status         string   `json:"status"`
}

// Expander generates and promotes candidates.
type Expander struct {
	repeatMin int
	denylist  map[string]bool
	logger    *slog.Logger
}

// Option configures an Expander.
type Option func(*Expander)

// WithRepeatMin overrides the recurrence threshold.
func WithRepeatMin(n int) Option {
	return func(e *Expander) { e.repeatMin = n }
}

// WithDenylist replaces the generic-token denylist. Terms are matched
// case-insensitively.
func WithDenylist(terms []string) Option {
	return func(e *Expander) {
		e.denylist = make(map[string]bool, len(terms))
		for _, t := range terms {
			e.denylist[strings.ToLower(t)] = true
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Expander) { e.logger = l }
}

// NewExpander returns an Expander with the default threshold and denylist.
func NewExpander(opts ...Option) *Expander {
	e := &Expander{
		repeatMin: DefaultRepeatMin,
		denylist:  defaultDenylist,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Expand runs all three detectors over every sentence, then applies the
// promotion rules. Candidates come back in sentence order, detectors in
// alternation/range/literal order within a sentence.
func (e *Expander) Expand(sentences []Sentence) []Candidate {
	var candidates []Candidate
	for _, s := range sentences {
		candidates = append(candidates, e.alternationCandidates(s)...)
		candidates = append(candidates, e.rangeCandidates(s)...)
		candidates = append(candidates, e.literalSetCandidates(s)...)
	}
	promoted := e.Promote(candidates, sentences)
	e.logger.Debug("expansion complete",
		"sentences", len(sentences),
		"candidates", len(promoted),
		"ready", countReady(promoted))
	return promoted
}

// Promote applies the promotion rules in place and returns the slice.
//
// Enumerated alternatives and digit ranges are explicit evidence, so they
// always promote. A literal set promotes when its sentence enumerates more
// than one variant. Independently, any candidate whose base term recurs
// across sentences at least repeatMin times promotes on frequency.
func (e *Expander) Promote(candidates []Candidate, sentences []Sentence) []Candidate {
	for i := range candidates {
		switch candidates[i].Operator {
		case OpAltEnum, OpRangeDigits:
			candidates[i].Status = StatusReady
		case OpLiteralSet:
			quote := candidates[i].EvidenceQuote
			if strings.Contains(quote, ",") && len(e.extractLiteralSet(quote)) > 1 {
				candidates[i].Status = StatusReady
			}
		}
	}

	counts := make(map[string]int)
	for _, s := range sentences {
		for _, term := range candidateTerms(s.Text) {
			counts[term]++
		}
	}
	for i := range candidates {
		if counts[baseTerm(candidates[i].Pattern)] >= e.repeatMin {
			candidates[i].Status = StatusReady
		}
	}
	return candidates
}

func (e *Expander) denied(token string) bool {
	return e.denylist[strings.ToLower(token)]
}

var (
	wordPattern   = regexp.MustCompile(`\b\w+\b`)
	domainPattern = regexp.MustCompile(`\b[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}\b`)
)

// candidateTerms tokenizes a sentence for frequency counting: plain words
// plus domain-shaped tokens, all lowercased.
func candidateTerms(text string) []string {
	lower := strings.ToLower(text)
	terms := wordPattern.FindAllString(lower, -1)
	return append(terms, domainPattern.FindAllString(lower, -1)...)
}

// baseTerm recovers the comparable term from an escaped pattern.
func baseTerm(pattern string) string {
	s := strings.ReplaceAll(pattern, `\`, "")
	s = strings.ReplaceAll(s, "(", "")
	s = strings.ReplaceAll(s, ")", "")
	return strings.ToLower(s)
}

func countReady(candidates []Candidate) int {
	n := 0
	for _, c := range candidates {
		if c.Status == StatusReady {
			n++
		}
	}
	return n
}
