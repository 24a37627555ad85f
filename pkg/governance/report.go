package governance

// Summary counts decisions across one governance pass.
type Summary struct {
	TotalCandidates           int     `json:"total_candidates"`
	ReadyDeploy               int     `json:"ready_deploy"`
	ReadyReview               int     `json:"ready_review"`
	EscalateMissingConfidence int     `json:"escalate_missing_confidence"`
	EscalateMissingTier       int     `json:"escalate_missing_tier"`
	EscalateMissingMetadata   int     `json:"escalate_missing_metadata"`
	EscalatedByRule           int     `json:"escalated_by_rule"`
	GovernancePassRate        float64 `json:"governance_pass_rate"`
}

// Report buckets decided candidates for review tooling and dashboards.
type Report struct {
	Summary               Summary     `json:"governance_summary"`
	Escalations           []Candidate `json:"escalations"`
	ReadyForReview        []Candidate `json:"ready_for_review"`
	ApprovedForDeployment []Candidate `json:"approved_for_deployment"`
}

// Summarize buckets candidates by decision. Pass rate is ready-deploy over
// total considered, rounded to three places.
func Summarize(cands []Candidate) *Report {
	r := &Report{
		Escalations:           []Candidate{},
		ReadyForReview:        []Candidate{},
		ApprovedForDeployment: []Candidate{},
	}
	for _, c := range cands {
		r.Summary.TotalCandidates++
		switch c.Decision {
		case DecisionReadyDeploy:
			r.Summary.ReadyDeploy++
			r.ApprovedForDeployment = append(r.ApprovedForDeployment, c)
		case DecisionReadyReview:
			r.Summary.ReadyReview++
			r.ReadyForReview = append(r.ReadyForReview, c)
		case DecisionEscalateMissingConfidence:
			r.Summary.EscalateMissingConfidence++
			r.Escalations = append(r.Escalations, c)
		case DecisionEscalateMissingTier:
			r.Summary.EscalateMissingTier++
			r.Escalations = append(r.Escalations, c)
		case DecisionEscalateMissingMetadata:
			r.Summary.EscalateMissingMetadata++
			r.Escalations = append(r.Escalations, c)
		case DecisionEscalatedByRule:
			r.Summary.EscalatedByRule++
			r.Escalations = append(r.Escalations, c)
		}
	}
	if r.Summary.TotalCandidates > 0 {
		r.Summary.GovernancePassRate = round3(float64(r.Summary.ReadyDeploy) / float64(r.Summary.TotalCandidates))
	}
	return r
}
