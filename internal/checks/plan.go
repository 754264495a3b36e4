package checks

import (
	"fmt"
	"strings"

	"github.com/rtplan-qa-engine/internal/config"
	"github.com/rtplan-qa-engine/internal/domain"
	"github.com/rtplan-qa-engine/internal/naming"
)

// checkIsocenter measures the distance between the plan isocenter and the
// primary target centroid, converted from voxel space to physical mm via the
// case origin and spacing.
//
// Details contract: distance_mm, max_distance_mm, isocenter_mm,
// target_centroid_mm, site; condition when plan or target data is missing.
func checkIsocenter(c *domain.Case, cfg *config.CheckConfig) domain.CheckResult {
	if c.Plan == nil || c.Plan.Isocenter == nil {
		return degraded("no plan isocenter available", "verify the plan export includes an isocenter")
	}
	target := naming.PrimaryTarget(c)
	if target == nil {
		return degraded("no target structure to measure isocenter against",
			"verify target naming follows PTV/CTV/GTV conventions")
	}

	site := string(naming.InferSite(c))
	maxDist := cfg.SiteFloat(site, "max_distance_mm", 15)
	centroidMM := c.VoxelToPhysical(target.Centroid)
	dist := distanceMM(centroidMM, *c.Plan.Isocenter)

	details := map[string]any{
		"distance_mm":        round2(dist),
		"max_distance_mm":    maxDist,
		"isocenter_mm":       *c.Plan.Isocenter,
		"target_centroid_mm": centroidMM,
		"site":               site,
	}
	if dist > maxDist {
		// Score degrades linearly, hitting zero at twice the tolerance.
		score := 1 - (dist-maxDist)/maxDist
		return domain.CheckResult{
			Passed:         false,
			Score:          score,
			Message:        fmt.Sprintf("isocenter is %.1f mm from target centroid (limit %.0f mm)", dist, maxDist),
			Details:        details,
			Recommendation: "review isocenter placement relative to the target",
		}
	}
	return pass(fmt.Sprintf("isocenter within %.1f mm of target centroid", dist), details)
}

// checkTechnique compares the declared technique and beam/arc count against
// the per-site whitelist and minimum-count rule. Unknown sites fall back to
// the permissive flat whitelist.
//
// Details contract: technique, site, allowed []string, beam_count, min_beams.
func checkTechnique(c *domain.Case, cfg *config.CheckConfig) domain.CheckResult {
	if c.Plan == nil {
		return degraded("no plan information on case", "verify the plan export completed")
	}
	site := string(naming.InferSite(c))
	allowed := cfg.SiteStrings(site, "allowed_techniques")
	minBeams := int(cfg.SiteFloat(site, "min_beams", 1))

	beamCount := len(c.Plan.Beams)
	if beamCount == 0 {
		beamCount = c.Plan.ArcCount
	}
	details := map[string]any{
		"technique":  c.Plan.Technique,
		"site":       site,
		"allowed":    allowed,
		"beam_count": beamCount,
		"min_beams":  minBeams,
	}

	if c.Plan.Technique == "" {
		details["condition"] = domain.CondMissingData
		return fail(0.5, "plan declares no technique", details)
	}
	if len(allowed) > 0 && !containsFold(allowed, c.Plan.Technique) {
		return domain.CheckResult{
			Passed:         false,
			Score:          0.3,
			Message:        fmt.Sprintf("technique %q not in whitelist for site %s", c.Plan.Technique, site),
			Details:        details,
			Recommendation: "confirm the delivery technique is appropriate for this site",
		}
	}
	if beamCount < minBeams {
		return fail(0.5, fmt.Sprintf("plan has %d beams, site %s expects at least %d", beamCount, site, minBeams), details)
	}
	return pass(fmt.Sprintf("technique %q with %d beams consistent with site %s", c.Plan.Technique, beamCount, site), details)
}

// checkBeamGeometry inspects couch angles, collimator diversity, and arc
// spans. Without beam-level data it passes in an informational mode, since
// absence of export detail is not a plan defect.
//
// Details contract: violations []string, max_couch_deg, collimator_spread,
// widest_arc_deg, arc_technique.
func checkBeamGeometry(c *domain.Case, cfg *config.CheckConfig) domain.CheckResult {
	if c.Plan == nil || len(c.Plan.Beams) == 0 {
		return informational("no beam-level data; geometry checks not applicable", nil)
	}

	couchTol := cfg.Float("couch_tolerance_deg", 5)
	minSpread := cfg.Float("min_collimator_spread", 5)
	wideArc := cfg.Float("wide_arc_threshold_deg", 200)
	site := naming.InferSite(c)

	var violations []string
	details := map[string]any{}

	// Couch excursions for sites treated flat on the table.
	if site == naming.SiteProstate || site == naming.SitePelvis {
		maxCouch := 0.0
		for _, b := range c.Plan.Beams {
			if b.Couch == nil {
				continue
			}
			if a := normAngle(*b.Couch); a < 0 {
				if -a > maxCouch {
					maxCouch = -a
				}
			} else if a > maxCouch {
				maxCouch = a
			}
		}
		details["max_couch_deg"] = maxCouch
		if maxCouch > couchTol {
			violations = append(violations, fmt.Sprintf("couch angle %.1f° exceeds %.0f° tolerance", maxCouch, couchTol))
		}
	}

	// Collimator diversity across beams.
	var colMin, colMax float64
	colSeen := 0
	for _, b := range c.Plan.Beams {
		if b.Collimator == nil {
			continue
		}
		v := *b.Collimator
		if colSeen == 0 || v < colMin {
			colMin = v
		}
		if colSeen == 0 || v > colMax {
			colMax = v
		}
		colSeen++
	}
	if colSeen >= 2 {
		spread := colMax - colMin
		details["collimator_spread"] = spread
		if spread < minSpread {
			violations = append(violations, fmt.Sprintf("collimator spread %.1f° below %.0f° minimum", spread, minSpread))
		}
	}

	// Arc plans need at least one wide arc.
	arcTechnique := isArcTechnique(c.Plan)
	details["arc_technique"] = arcTechnique
	if arcTechnique {
		widest := 0.0
		spansKnown := false
		for _, b := range c.Plan.Beams {
			if span, ok := b.GantrySpan(); ok {
				spansKnown = true
				if span > widest {
					widest = span
				}
			}
		}
		details["widest_arc_deg"] = widest
		if spansKnown && widest <= wideArc {
			violations = append(violations, fmt.Sprintf("widest arc spans %.0f°, expected more than %.0f°", widest, wideArc))
		}
	}

	if len(violations) > 0 {
		details["violations"] = violations
		score := 1 - 0.3*float64(len(violations))
		return domain.CheckResult{
			Passed:         false,
			Score:          score,
			Message:        strings.Join(violations, "; "),
			Details:        details,
			Recommendation: "review beam geometry against site practice",
		}
	}
	return pass("beam geometry consistent with site practice", details)
}

// checkFractionation validates the prescription arithmetic and flags unusual
// dose-per-fraction values.
//
// Details contract: total_gy, fractions, fx_dose_gy, min_fx_dose_gy,
// max_fx_dose_gy; condition when prescription data is absent or inconsistent.
func checkFractionation(c *domain.Case, cfg *config.CheckConfig) domain.CheckResult {
	if c.Plan == nil {
		return degraded("no plan information on case", "verify the plan export completed")
	}
	if err := c.Plan.Validate(); err != nil {
		return fail(0, fmt.Sprintf("prescription inconsistent: %v", err),
			map[string]any{"condition": domain.CondGeometryMismatch, "error": err.Error()})
	}

	minFx := cfg.Float("min_fx_dose_gy", 1.5)
	maxFx := cfg.Float("max_fx_dose_gy", 5.0)

	var fxDose float64
	switch {
	case c.Plan.DosePerFraction != nil:
		fxDose = *c.Plan.DosePerFraction
	case c.Plan.TotalDoseGy != nil && c.Plan.Fractions != nil && *c.Plan.Fractions > 0:
		fxDose = *c.Plan.TotalDoseGy / float64(*c.Plan.Fractions)
	default:
		return informational("no prescription numbers on plan; fractionation not assessable",
			map[string]any{"condition": domain.CondMissingData})
	}

	details := map[string]any{
		"fx_dose_gy":     round2(fxDose),
		"min_fx_dose_gy": minFx,
		"max_fx_dose_gy": maxFx,
	}
	if c.Plan.TotalDoseGy != nil {
		details["total_gy"] = *c.Plan.TotalDoseGy
	}
	if c.Plan.Fractions != nil {
		details["fractions"] = *c.Plan.Fractions
	}
	if fxDose < minFx || fxDose > maxFx {
		return fail(0.5, fmt.Sprintf("dose per fraction %.2f Gy outside [%.1f, %.1f] Gy", fxDose, minFx, maxFx), details)
	}
	return pass(fmt.Sprintf("dose per fraction %.2f Gy within expected range", fxDose), details)
}

func containsFold(list []string, v string) bool {
	for _, item := range list {
		if strings.EqualFold(item, v) {
			return true
		}
	}
	return false
}

func isArcTechnique(p *domain.PlanInfo) bool {
	t := strings.ToUpper(p.Technique)
	if strings.Contains(t, "VMAT") || strings.Contains(t, "ARC") {
		return true
	}
	if p.ArcCount > 0 {
		return true
	}
	for _, b := range p.Beams {
		if b.IsArc != nil && *b.IsArc {
			return true
		}
	}
	return false
}
