package checks

import (
	"fmt"

	"github.com/rtplan-qa-engine/internal/config"
	"github.com/rtplan-qa-engine/internal/domain"
	"github.com/rtplan-qa-engine/internal/naming"
)

// checkBody verifies a body/external contour exists with a plausible volume.
//
// Details contract: name, volume_cc, min_volume_cc when present; condition
// when absent.
func checkBody(c *domain.Case, cfg *config.CheckConfig) domain.CheckResult {
	minVol := cfg.Float("min_volume_cc", 1000)
	body := naming.ChoosePrimary(naming.GroupByCategory(c)[naming.Body])
	if body == nil {
		return domain.CheckResult{
			Passed:         false,
			Score:          0,
			Message:        "no body/external contour found",
			Details:        map[string]any{"condition": domain.CondMissingData},
			Recommendation: "contour the patient external before plan approval",
		}
	}
	details := map[string]any{"name": body.Name, "volume_cc": body.VolumeCC, "min_volume_cc": minVol}
	if body.VolumeCC < minVol {
		return fail(0.5, fmt.Sprintf("body contour %q has implausible volume %.0f cc", body.Name, body.VolumeCC), details)
	}
	return pass(fmt.Sprintf("body contour %q present (%.0f cc)", body.Name, body.VolumeCC), details)
}

// checkTarget verifies a recognizable treatment target exists.
//
// Details contract: name, category, volume_cc when present; condition when
// absent.
func checkTarget(c *domain.Case, cfg *config.CheckConfig) domain.CheckResult {
	target := naming.PrimaryTarget(c)
	if target == nil {
		return domain.CheckResult{
			Passed:         false,
			Score:          0,
			Message:        "no recognizable target structure (PTV/CTV/GTV)",
			Details:        map[string]any{"condition": domain.CondMissingData},
			Recommendation: "verify target naming follows PTV/CTV/GTV conventions",
		}
	}
	canon := naming.Canonicalize(target.Name)
	details := map[string]any{
		"name":      target.Name,
		"category":  string(canon.Category),
		"volume_cc": target.VolumeCC,
	}
	return pass(fmt.Sprintf("primary target %q (%s, %.1f cc)", target.Name, canon.Category, target.VolumeCC), details)
}

// checkTargetVolume flags targets outside the per-site plausible volume
// window. Without a target the check is informational; the missing target is
// already penalized by structures.target.
//
// Details contract: name, volume_cc, min_cc, max_cc, site.
func checkTargetVolume(c *domain.Case, cfg *config.CheckConfig) domain.CheckResult {
	target := naming.PrimaryTarget(c)
	if target == nil {
		return informational("no target structure; volume check not applicable",
			map[string]any{"condition": domain.CondMissingData})
	}
	site := string(naming.InferSite(c))
	minCC := cfg.SiteFloat(site, "min_cc", 1)
	maxCC := cfg.SiteFloat(site, "max_cc", 4000)
	details := map[string]any{
		"name":      target.Name,
		"volume_cc": target.VolumeCC,
		"min_cc":    minCC,
		"max_cc":    maxCC,
		"site":      site,
	}
	if target.VolumeCC < minCC || target.VolumeCC > maxCC {
		return fail(0.4, fmt.Sprintf("target volume %.1f cc outside [%.0f, %.0f] cc for site %s",
			target.VolumeCC, minCC, maxCC, site), details)
	}
	return pass(fmt.Sprintf("target volume %.1f cc within expected range", target.VolumeCC), details)
}

// checkStructureGrid verifies every structure mask lives on the CT grid.
//
// Details contract: ct_dims, ct_voxels, mismatched []map{name, mask_len,
// expected}; condition on any mismatch.
func checkStructureGrid(c *domain.Case, cfg *config.CheckConfig) domain.CheckResult {
	expected := c.CT.Len()
	var mismatched []map[string]any
	total := 0
	for _, s := range c.StructuresInOrder() {
		total++
		if len(s.Mask) != expected {
			mismatched = append(mismatched, map[string]any{
				"name":     s.Name,
				"mask_len": len(s.Mask),
				"expected": expected,
			})
		}
	}
	details := map[string]any{"ct_dims": c.CT.Dims, "ct_voxels": expected}
	if total == 0 {
		details["condition"] = domain.CondMissingData
		return fail(0, "case has no structures", details)
	}
	if len(mismatched) > 0 {
		details["mismatched"] = mismatched
		details["condition"] = domain.CondGeometryMismatch
		score := 1 - float64(len(mismatched))/float64(total)
		return fail(score, fmt.Sprintf("%d of %d structure masks do not match the CT grid", len(mismatched), total), details)
	}
	return pass(fmt.Sprintf("all %d structure masks match the CT grid", total), details)
}

// checkNaming scores how much of the structure set maps onto known canonical
// categories; a mostly unrecognized set undermines every downstream
// site-specific check.
//
// Details contract: recognized, total, recognized_fraction, unknown []string.
func checkNaming(c *domain.Case, cfg *config.CheckConfig) domain.CheckResult {
	minFrac := cfg.Float("min_recognized_fraction", 0.5)
	total := 0
	recognized := 0
	var unknown []string
	for _, s := range c.StructuresInOrder() {
		total++
		if naming.Canonicalize(s.Name).Category != naming.Unknown {
			recognized++
		} else {
			unknown = append(unknown, s.Name)
		}
	}
	if total == 0 {
		return fail(0, "case has no structures", map[string]any{"condition": domain.CondMissingData})
	}
	frac := float64(recognized) / float64(total)
	details := map[string]any{
		"recognized":          recognized,
		"total":               total,
		"recognized_fraction": frac,
	}
	if len(unknown) > 0 {
		details["unknown"] = unknown
	}
	if frac < minFrac {
		return fail(frac, fmt.Sprintf("only %d of %d structure names recognized", recognized, total), details)
	}
	return pass(fmt.Sprintf("%d of %d structure names recognized", recognized, total), details)
}
