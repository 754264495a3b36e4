package checks

import (
	"fmt"

	"github.com/rtplan-qa-engine/internal/config"
	"github.com/rtplan-qa-engine/internal/domain"
)

// checkCTGeometry validates voxel spacing sanity and resolution limits.
//
// Details contract: spacing_mm [3]float64, max_slice_mm, max_inplane_mm;
// condition when the CT volume is unusable.
func checkCTGeometry(c *domain.Case, cfg *config.CheckConfig) domain.CheckResult {
	maxSlice := cfg.Float("max_slice_mm", 3.0)
	maxInplane := cfg.Float("max_inplane_mm", 2.0)
	details := map[string]any{
		"spacing_mm":     c.SpacingMM,
		"max_slice_mm":   maxSlice,
		"max_inplane_mm": maxInplane,
	}

	if c.CT.Len() == 0 || len(c.CT.Data) == 0 {
		details["condition"] = domain.CondMissingData
		return fail(0, "CT volume is empty", details)
	}
	for i := 0; i < 3; i++ {
		if c.SpacingMM[i] <= 0 {
			details["condition"] = domain.CondGeometryMismatch
			return fail(0, fmt.Sprintf("non-positive voxel spacing on axis %d: %.3f mm", i, c.SpacingMM[i]), details)
		}
	}
	if c.SpacingMM[0] > maxInplane || c.SpacingMM[1] > maxInplane {
		return fail(0.4, fmt.Sprintf("in-plane resolution %.2fx%.2f mm exceeds %.1f mm limit",
			c.SpacingMM[0], c.SpacingMM[1], maxInplane), details)
	}
	if c.SpacingMM[2] > maxSlice {
		return fail(0.4, fmt.Sprintf("slice thickness %.2f mm exceeds %.1f mm limit", c.SpacingMM[2], maxSlice), details)
	}
	return pass(fmt.Sprintf("voxel spacing %.2fx%.2fx%.2f mm within limits",
		c.SpacingMM[0], c.SpacingMM[1], c.SpacingMM[2]), details)
}

// checkCTHURange verifies that the HU values stay inside a plausible window.
// A handful of out-of-range voxels is tolerated (metal artifacts, couch
// edges); a large fraction points at calibration or import problems.
//
// Details contract: bad_fraction, hu_min, hu_max, max_bad_fraction.
func checkCTHURange(c *domain.Case, cfg *config.CheckConfig) domain.CheckResult {
	huMin := cfg.Float("hu_min", -1050)
	huMax := cfg.Float("hu_max", 3200)
	maxBad := cfg.Float("max_bad_fraction", 0.001)

	if len(c.CT.Data) == 0 {
		return fail(0, "CT volume is empty", map[string]any{"condition": domain.CondMissingData})
	}

	bad := 0
	for _, v := range c.CT.Data {
		if float64(v) < huMin || float64(v) > huMax {
			bad++
		}
	}
	badFrac := float64(bad) / float64(len(c.CT.Data))
	details := map[string]any{
		"bad_fraction":     badFrac,
		"hu_min":           huMin,
		"hu_max":           huMax,
		"max_bad_fraction": maxBad,
	}
	if badFrac > maxBad {
		score := 1 - badFrac*100
		if score < 0 {
			score = 0
		}
		return fail(score, fmt.Sprintf("%.3f%% of voxels outside [%.0f, %.0f] HU", badFrac*100, huMin, huMax), details)
	}
	return pass("HU values within plausible range", details)
}
