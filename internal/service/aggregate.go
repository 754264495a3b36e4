package service

import (
	"github.com/rtplan-qa-engine/internal/config"
	"github.com/rtplan-qa-engine/internal/domain"
)

// Aggregate reduces produced check results into the final QAResult. The
// total is the weight-normalized mean of check scores on a 0-100 scale;
// only results actually produced contribute, so disabled or short-circuited
// checks carry no weight. Checks without a configured weight count as 1.0.
// Recommendations are the messages of failed checks in production order,
// without deduplication.
func Aggregate(caseID string, results []domain.CheckResult, cfg *config.Config) *domain.QAResult {
	weightFor := buildWeightIndex(cfg)

	var weightSum, scoreSum float64
	recommendations := make([]string, 0)
	for _, res := range results {
		w := 1.0
		if explicit, ok := weightFor[res.Key]; ok {
			w = explicit
		}
		weightSum += w
		scoreSum += w * res.Score
		if !res.Passed {
			recommendations = append(recommendations, res.Message)
		}
	}

	total := 0.0
	if weightSum > 0 {
		total = 100 * scoreSum / weightSum
	}
	return &domain.QAResult{
		CaseID:          caseID,
		TotalScore:      total,
		Checks:          results,
		Recommendations: recommendations,
	}
}

// buildWeightIndex maps registry check keys to configured weights. Results
// carry their key alongside the display name, so renaming a check through
// result_name cannot alias another check's weight.
func buildWeightIndex(cfg *config.Config) map[string]float64 {
	if cfg == nil {
		return nil
	}
	idx := make(map[string]float64, len(cfg.Checks))
	for key, cc := range cfg.Checks {
		idx[key] = cc.Weight
	}
	return idx
}
