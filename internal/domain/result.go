package domain

// Group identifies the clinical group a check belongs to. Groups run in the
// fixed order returned by GroupOrder.
type Group string

const (
	GroupCT         Group = "CT"
	GroupStructures Group = "STRUCTURES"
	GroupPlan       Group = "PLAN"
	GroupDose       Group = "DOSE"
)

// GroupOrder returns the evaluation order of the check groups.
func GroupOrder() []Group {
	return []Group{GroupCT, GroupStructures, GroupPlan, GroupDose}
}

// CheckResult is the outcome of one quality check. Immutable once produced.
// Score is in [0, 1]; Details is an open key/value bag whose key set each
// check documents as its own stable contract. Key is the registry key
// ("group.check") and identifies the check regardless of its display name.
type CheckResult struct {
	Key            string         `json:"check_key"`
	Name           string         `json:"name"`
	Passed         bool           `json:"passed"`
	Score          float64        `json:"score"`
	Message        string         `json:"message"`
	Details        map[string]any `json:"details,omitempty"`
	Group          Group          `json:"group"`
	Recommendation string         `json:"recommendation,omitempty"`
}

// QAResult is the aggregated outcome of one evaluation run.
// TotalScore is in [0, 100]; Recommendations are the messages of failed
// checks in production order, without deduplication.
type QAResult struct {
	CaseID          string        `json:"case_id"`
	TotalScore      float64       `json:"total_score"`
	Checks          []CheckResult `json:"checks"`
	Recommendations []string      `json:"recommendations"`
}
