package checks

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rtplan-qa-engine/internal/config"
	"github.com/rtplan-qa-engine/internal/domain"
	"github.com/rtplan-qa-engine/internal/naming"
	"github.com/rtplan-qa-engine/pkg/dvh"
)

// checkDoseGrid is the Dose-group prerequisite: a dose volume must exist and
// live on the CT grid. When it fails the orchestrator skips the remaining
// dose checks, since every one of them would fail for the same reason.
//
// Details contract: dose_dims, ct_dims; condition on failure.
func checkDoseGrid(c *domain.Case, cfg *config.CheckConfig) domain.CheckResult {
	dose, ok := c.Dose()
	if !ok {
		return domain.CheckResult{
			Passed:         false,
			Score:          0,
			Message:        "no dose volume on case",
			Details:        map[string]any{"condition": domain.CondMissingData},
			Recommendation: "export the plan dose resampled to the CT grid",
		}
	}
	details := map[string]any{"dose_dims": dose.Dims, "ct_dims": c.CT.Dims}
	if !dose.SameShape(&c.CT) {
		details["condition"] = domain.CondGeometryMismatch
		return fail(0, fmt.Sprintf("dose grid %v does not match CT grid %v", dose.Dims, c.CT.Dims), details)
	}
	if len(dose.Data) != dose.Len() {
		details["condition"] = domain.CondGeometryMismatch
		return fail(0, fmt.Sprintf("dose array has %d voxels, grid declares %d", len(dose.Data), dose.Len()), details)
	}
	return pass("dose grid matches CT grid", details)
}

// prescriptionGy resolves the prescription dose for coverage and hotspot
// checks. The plan's declared total dose is preferred; otherwise the 98th
// percentile of the dose inside the target approximates it, and the caller
// must treat the result as reduced-confidence.
func prescriptionGy(c *domain.Case, targetValues []float64) (gy float64, estimated bool) {
	if c.Plan != nil && c.Plan.TotalDoseGy != nil && *c.Plan.TotalDoseGy > 0 {
		return *c.Plan.TotalDoseGy, false
	}
	return dvh.Percentile(targetValues, 98), true
}

// checkTargetCoverage computes D95 of the primary target against the
// prescription. An estimated prescription caps the score below a full pass.
//
// Details contract: d95_gy, prescription_gy, estimated_prescription, ratio,
// coverage_threshold, voxels, empty_selection.
func checkTargetCoverage(c *domain.Case, cfg *config.CheckConfig) domain.CheckResult {
	covThreshold := cfg.Float("coverage_threshold", 0.95)
	estimateCap := cfg.Float("estimate_cap", 0.9)

	dose, ok := c.Dose()
	if !ok {
		return degraded("no dose volume on case", "export the plan dose resampled to the CT grid")
	}
	target := naming.PrimaryTarget(c)
	if target == nil {
		return degraded("no recognizable target for coverage analysis",
			"verify target naming follows PTV/CTV/GTV conventions")
	}

	values := dvh.Masked(dose.Data, target.Mask)
	if len(values) == 0 {
		return fail(0.5, fmt.Sprintf("target %q selects no dose voxels", target.Name),
			map[string]any{"condition": domain.CondMissingData, "empty_selection": true, "voxels": 0})
	}

	rx, estimated := prescriptionGy(c, values)
	d95 := dvh.Dx(values, 95)
	details := map[string]any{
		"d95_gy":                 round2(d95),
		"prescription_gy":        round2(rx),
		"estimated_prescription": estimated,
		"coverage_threshold":     covThreshold,
		"voxels":                 len(values),
	}
	if rx <= 0 {
		details["condition"] = domain.CondMissingData
		return fail(0.5, "no usable prescription dose", details)
	}

	ratio := d95 / rx
	details["ratio"] = round2(ratio)
	score := ratio
	if score > 1 {
		score = 1
	}
	msg := fmt.Sprintf("D95 = %.2f Gy (%.0f%% of %.2f Gy prescription)", d95, ratio*100, rx)
	if estimated {
		if score > estimateCap {
			score = estimateCap
		}
		msg += " [prescription estimated from dose distribution]"
	}
	if ratio < covThreshold {
		return domain.CheckResult{
			Passed:         false,
			Score:          score,
			Message:        msg,
			Details:        details,
			Recommendation: "review target coverage; D95 below the coverage threshold",
		}
	}
	return domain.CheckResult{Passed: true, Score: score, Message: msg, Details: details}
}

// checkHotspot flags dose maxima above the configured fraction of the
// prescription anywhere in the dose grid.
//
// Details contract: max_gy, prescription_gy, relative_max, max_relative_dose,
// estimated_prescription.
func checkHotspot(c *domain.Case, cfg *config.CheckConfig) domain.CheckResult {
	limit := cfg.Float("max_relative_dose", 1.07)
	dose, ok := c.Dose()
	if !ok {
		return degraded("no dose volume on case", "export the plan dose resampled to the CT grid")
	}

	var targetValues []float64
	if target := naming.PrimaryTarget(c); target != nil {
		targetValues = dvh.Masked(dose.Data, target.Mask)
	}
	rx, estimated := prescriptionGy(c, targetValues)
	if rx <= 0 {
		return informational("no usable prescription dose; hotspot not assessable",
			map[string]any{"condition": domain.CondMissingData})
	}

	maxGy := 0.0
	for _, v := range dose.Data {
		if float64(v) > maxGy {
			maxGy = float64(v)
		}
	}
	relative := maxGy / rx
	details := map[string]any{
		"max_gy":                 round2(maxGy),
		"prescription_gy":        round2(rx),
		"relative_max":           round2(relative),
		"max_relative_dose":      limit,
		"estimated_prescription": estimated,
	}
	if relative > limit {
		excess := (relative - limit) / limit
		return domain.CheckResult{
			Passed:         false,
			Score:          1 - 4*excess,
			Message:        fmt.Sprintf("hotspot at %.1f%% of prescription (limit %.0f%%)", relative*100, limit*100),
			Details:        details,
			Recommendation: "locate and evaluate the hotspot region",
		}
	}
	return pass(fmt.Sprintf("maximum dose %.1f%% of prescription", relative*100), details)
}

// checkOARLimits evaluates Vx limits for configured organs at risk. Absent
// organs are noted, not penalized; empty mask selections are flagged as
// neutral.
//
// Details contract: per organ "<organ>_v<threshold>" fraction and
// "<organ>_limit"; absent []string; violations []string.
func checkOARLimits(c *domain.Case, cfg *config.CheckConfig) domain.CheckResult {
	limits, _ := cfg.Params["limits"].(map[string]any)
	if len(limits) == 0 {
		return informational("no OAR limits configured", nil)
	}
	dose, ok := c.Dose()
	if !ok {
		return degraded("no dose volume on case", "export the plan dose resampled to the CT grid")
	}
	groups := naming.GroupByCategory(c)

	details := map[string]any{}
	var violations, absent []string

	// Sorted so violation order, and with it the message, is reproducible.
	categories := make([]string, 0, len(limits))
	for category := range limits {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	for _, category := range categories {
		spec, ok := limits[category].([]any)
		if !ok || len(spec) != 2 {
			continue
		}
		thresholdGy, ok1 := asFloatAny(spec[0])
		maxFraction, ok2 := asFloatAny(spec[1])
		if !ok1 || !ok2 {
			continue
		}

		organ := naming.ChoosePrimary(groups[naming.Category(category)])
		key := strings.ToLower(category)
		if organ == nil {
			absent = append(absent, category)
			continue
		}
		values := dvh.Masked(dose.Data, organ.Mask)
		if len(values) == 0 {
			details[key+"_empty_selection"] = true
			continue
		}
		v := dvh.Vx(values, thresholdGy)
		details[fmt.Sprintf("%s_v%.0f", key, thresholdGy)] = round2(v)
		details[key+"_limit"] = maxFraction
		if v > maxFraction {
			violations = append(violations,
				fmt.Sprintf("%s V%.0fGy = %.0f%% exceeds %.0f%% limit", category, thresholdGy, v*100, maxFraction*100))
		}
	}

	if len(absent) > 0 {
		details["absent"] = absent
	}
	if len(violations) > 0 {
		details["violations"] = violations
		return domain.CheckResult{
			Passed:         false,
			Score:          1 - 0.5*float64(len(violations)),
			Message:        strings.Join(violations, "; "),
			Details:        details,
			Recommendation: "review OAR dose-volume limits with the planning physician",
		}
	}
	return pass("all evaluated OAR limits respected", details)
}

func asFloatAny(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	}
	return 0, false
}
