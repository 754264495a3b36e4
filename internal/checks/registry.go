// Package checks contains the QA check registry and the orchestrator that
// runs the four clinical groups in order. Checks are pure functions of
// (Case, CheckConfig); nothing in this package performs I/O or mutates the
// case.
package checks

import (
	"fmt"
	"strings"

	"github.com/rtplan-qa-engine/internal/config"
	"github.com/rtplan-qa-engine/internal/domain"
)

// CheckFunc evaluates one quality check. Implementations return exactly one
// result and keep failures inside it; panics are contained by the runner.
type CheckFunc func(c *domain.Case, cfg *config.CheckConfig) domain.CheckResult

// Definition binds a check function to its key and group. Prerequisite marks
// the check that must pass before the rest of its group is worth running.
type Definition struct {
	Key          string
	Group        domain.Group
	Name         string
	Prerequisite bool
	Run          CheckFunc
}

// Registry holds the static check groups in evaluation order.
type Registry struct {
	groups map[domain.Group][]Definition
}

// DefaultRegistry returns the built-in battery of checks.
func DefaultRegistry() *Registry {
	r := &Registry{groups: make(map[domain.Group][]Definition)}

	r.add(Definition{Key: "ct.geometry", Group: domain.GroupCT, Name: "CT geometry", Run: checkCTGeometry})
	r.add(Definition{Key: "ct.hu_range", Group: domain.GroupCT, Name: "CT HU range", Run: checkCTHURange})

	r.add(Definition{Key: "structures.body", Group: domain.GroupStructures, Name: "Body contour", Run: checkBody})
	r.add(Definition{Key: "structures.target", Group: domain.GroupStructures, Name: "Target structure", Run: checkTarget})
	r.add(Definition{Key: "structures.target_volume", Group: domain.GroupStructures, Name: "Target volume", Run: checkTargetVolume})
	r.add(Definition{Key: "structures.grid", Group: domain.GroupStructures, Name: "Structure grid consistency", Run: checkStructureGrid})
	r.add(Definition{Key: "structures.naming", Group: domain.GroupStructures, Name: "Structure naming", Run: checkNaming})

	r.add(Definition{Key: "plan.isocenter", Group: domain.GroupPlan, Name: "Isocenter placement", Run: checkIsocenter})
	r.add(Definition{Key: "plan.technique", Group: domain.GroupPlan, Name: "Technique consistency", Run: checkTechnique})
	r.add(Definition{Key: "plan.geometry", Group: domain.GroupPlan, Name: "Beam geometry", Run: checkBeamGeometry})
	r.add(Definition{Key: "plan.fractionation", Group: domain.GroupPlan, Name: "Fractionation", Run: checkFractionation})

	r.add(Definition{Key: "dose.grid", Group: domain.GroupDose, Name: "Dose grid", Prerequisite: true, Run: checkDoseGrid})
	r.add(Definition{Key: "dose.target_coverage", Group: domain.GroupDose, Name: "Target coverage", Run: checkTargetCoverage})
	r.add(Definition{Key: "dose.hotspot", Group: domain.GroupDose, Name: "Hotspot", Run: checkHotspot})
	r.add(Definition{Key: "dose.oar", Group: domain.GroupDose, Name: "OAR dose limits", Run: checkOARLimits})

	return r
}

func (r *Registry) add(def Definition) {
	r.groups[def.Group] = append(r.groups[def.Group], def)
}

// Definitions returns the registered checks of one group in run order.
func (r *Registry) Definitions(group domain.Group) []Definition {
	return r.groups[group]
}

// Run executes all enabled checks against the case using one effective
// configuration snapshot. Groups run in fixed order; disabled checks (and
// disabled sections) are omitted entirely. When a group's prerequisite check
// fails, the rest of the group is skipped so a single missing premise does
// not fan out into a cascade of uninformative failures.
func (r *Registry) Run(c *domain.Case, cfg *config.Config) []domain.CheckResult {
	var results []domain.CheckResult
	for _, group := range domain.GroupOrder() {
		if !cfg.Section(sectionID(group)).Enabled {
			continue
		}
		results = append(results, r.runGroup(group, c, cfg)...)
	}
	return results
}

func (r *Registry) runGroup(group domain.Group, c *domain.Case, cfg *config.Config) []domain.CheckResult {
	var results []domain.CheckResult
	skipRest := false
	for _, def := range r.groups[group] {
		cc := cfg.Check(def.Key)
		if !cc.Enabled {
			continue
		}
		if skipRest {
			break
		}
		res := safeRun(def, c, cc)
		results = append(results, res)
		if def.Prerequisite && !res.Passed {
			skipRest = true
		}
	}
	return results
}

// safeRun contains any panic from a check body, converting it into a failing
// result so orchestration continues, and normalizes the result's identity
// fields and score range.
func safeRun(def Definition, c *domain.Case, cc *config.CheckConfig) (res domain.CheckResult) {
	defer func() {
		if rec := recover(); rec != nil {
			cond := domain.NewCondition(domain.CondInternalCheckError, "%v", rec)
			res = domain.CheckResult{
				Key:     def.Key,
				Name:    displayName(def, cc),
				Passed:  false,
				Score:   0,
				Message: fmt.Sprintf("check failed internally: %v", rec),
				Details: map[string]any{"condition": cond.Code, "failure": fmt.Sprintf("%v", rec)},
				Group:   def.Group,
			}
		}
	}()

	res = def.Run(c, cc)
	res.Key = def.Key
	res.Name = displayName(def, cc)
	res.Group = def.Group
	if res.Score < 0 {
		res.Score = 0
	} else if res.Score > 1 {
		res.Score = 1
	}
	return res
}

func displayName(def Definition, cc *config.CheckConfig) string {
	if cc.ResultName != "" {
		return cc.ResultName
	}
	return def.Name
}

func sectionID(group domain.Group) string {
	return strings.ToLower(string(group))
}
