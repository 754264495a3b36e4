package checks

import (
	"math"

	"github.com/rtplan-qa-engine/internal/domain"
)

func pass(message string, details map[string]any) domain.CheckResult {
	return domain.CheckResult{Passed: true, Score: 1.0, Message: message, Details: details}
}

func fail(score float64, message string, details map[string]any) domain.CheckResult {
	return domain.CheckResult{Passed: false, Score: score, Message: message, Details: details}
}

// degraded builds the reduced-confidence result used when required input is
// missing: the check cannot vouch for the case, but a hard zero would
// overstate what it knows.
func degraded(message, recommendation string) domain.CheckResult {
	return domain.CheckResult{
		Passed:         false,
		Score:          0.5,
		Message:        message,
		Details:        map[string]any{"condition": domain.CondMissingData},
		Recommendation: recommendation,
	}
}

// informational is a non-penalizing pass for checks whose premise does not
// apply to this case.
func informational(message string, details map[string]any) domain.CheckResult {
	if details == nil {
		details = map[string]any{}
	}
	details["informational"] = true
	return domain.CheckResult{Passed: true, Score: 1.0, Message: message, Details: details}
}

func distanceMM(a, b [3]float64) float64 {
	dx := a[0] - b[0]
	dy := a[1] - b[1]
	dz := a[2] - b[2]
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// normAngle folds an angle in degrees into (-180, 180].
func normAngle(deg float64) float64 {
	a := math.Mod(deg, 360)
	if a > 180 {
		a -= 360
	} else if a <= -180 {
		a += 360
	}
	return a
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
