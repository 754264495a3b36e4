// Package report renders an aggregated QAResult as a filterable text stream
// for the reviewing physicist.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/rtplan-qa-engine/internal/domain"
)

// Status is the three-valued display status of a check.
type Status string

const (
	StatusOK   Status = "OK"
	StatusWarn Status = "WARN"
	StatusFail Status = "FAIL"
)

// Layout selects how checks are arranged in the report.
type Layout string

const (
	LayoutGrouped Layout = "grouped"
	LayoutFlat    Layout = "flat"
)

// RenderConfig drives status classification, filtering, and layout.
// Groups and Statuses act as allow-lists; empty means everything.
type RenderConfig struct {
	Title    string
	OKMin    float64
	WarnMin  float64
	BarWidth int
	Layout   Layout
	Groups   []domain.Group
	Statuses []Status
	Details  bool
}

// DefaultRenderConfig returns the standard report settings.
func DefaultRenderConfig() RenderConfig {
	return RenderConfig{
		Title:    "Plan QA Report",
		OKMin:    0.9,
		WarnMin:  0.5,
		BarWidth: 40,
		Layout:   LayoutGrouped,
		Details:  true,
	}
}

// StatusOf classifies one check result. A failed check is always FAIL. A
// passed check is demoted to WARN or even FAIL on a low score: this strict
// low-score-overrides-pass policy is deliberate and clinical stakeholders
// should be told about it, because it makes the displayed status stricter
// than the check's own pass flag.
func StatusOf(res *domain.CheckResult, cfg *RenderConfig) Status {
	if !res.Passed {
		return StatusFail
	}
	if res.Score >= cfg.OKMin {
		return StatusOK
	}
	if res.Score >= cfg.WarnMin {
		return StatusWarn
	}
	return StatusFail
}

// Render writes the report for a QAResult to w. It never mutates the result.
func Render(w io.Writer, qa *domain.QAResult, cfg RenderConfig) error {
	if cfg.BarWidth <= 0 {
		cfg.BarWidth = 40
	}
	if cfg.Layout == "" {
		cfg.Layout = LayoutGrouped
	}

	title := cfg.Title
	if title == "" {
		title = "Plan QA Report"
	}
	if _, err := fmt.Fprintf(w, "%s\nCase: %s\n", title, qa.CaseID); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Score: %5.1f / 100  %s\n\n", qa.TotalScore, scoreBar(qa.TotalScore, cfg.BarWidth)); err != nil {
		return err
	}

	visible := filterChecks(qa.Checks, &cfg)
	switch cfg.Layout {
	case LayoutFlat:
		sortByName(visible)
		for i := range visible {
			if err := writeCheck(w, &visible[i], &cfg); err != nil {
				return err
			}
		}
	default:
		for _, group := range sortedGroups(visible) {
			if _, err := fmt.Fprintf(w, "== %s ==\n", group); err != nil {
				return err
			}
			inGroup := checksOfGroup(visible, group)
			sortByName(inGroup)
			for i := range inGroup {
				if err := writeCheck(w, &inGroup[i], &cfg); err != nil {
					return err
				}
			}
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
	}

	return writeRecommendations(w, qa)
}

func filterChecks(checks []domain.CheckResult, cfg *RenderConfig) []domain.CheckResult {
	out := make([]domain.CheckResult, 0, len(checks))
	for _, res := range checks {
		if len(cfg.Groups) > 0 && !containsGroup(cfg.Groups, res.Group) {
			continue
		}
		if len(cfg.Statuses) > 0 && !containsStatus(cfg.Statuses, StatusOf(&res, cfg)) {
			continue
		}
		out = append(out, res)
	}
	return out
}

func writeCheck(w io.Writer, res *domain.CheckResult, cfg *RenderConfig) error {
	status := StatusOf(res, cfg)
	if _, err := fmt.Fprintf(w, "[%-4s] %s (score=%.2f)\n", status, res.Name, res.Score); err != nil {
		return err
	}
	if res.Message != "" {
		if _, err := fmt.Fprintf(w, "       %s\n", res.Message); err != nil {
			return err
		}
	}
	if cfg.Details && len(res.Details) > 0 {
		keys := make([]string, 0, len(res.Details))
		for k := range res.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if _, err := fmt.Fprintf(w, "       - %s: %v\n", k, res.Details[k]); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeRecommendations(w io.Writer, qa *domain.QAResult) error {
	if len(qa.Recommendations) == 0 {
		_, err := fmt.Fprintln(w, "No recommendations.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Recommendations:"); err != nil {
		return err
	}
	for i, rec := range qa.Recommendations {
		if _, err := fmt.Fprintf(w, "  %d. %s\n", i+1, rec); err != nil {
			return err
		}
	}
	return nil
}

// scoreBar renders a fixed-width ASCII progress bar for a 0-100 score.
func scoreBar(score float64, width int) string {
	if score < 0 {
		score = 0
	} else if score > 100 {
		score = 100
	}
	filled := int(score/100*float64(width) + 0.5)
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", width-filled) + "]"
}

func sortedGroups(checks []domain.CheckResult) []domain.Group {
	seen := make(map[domain.Group]bool)
	var groups []string
	for _, res := range checks {
		if !seen[res.Group] {
			seen[res.Group] = true
			groups = append(groups, string(res.Group))
		}
	}
	sort.Strings(groups)
	out := make([]domain.Group, len(groups))
	for i, g := range groups {
		out[i] = domain.Group(g)
	}
	return out
}

func checksOfGroup(checks []domain.CheckResult, group domain.Group) []domain.CheckResult {
	var out []domain.CheckResult
	for _, res := range checks {
		if res.Group == group {
			out = append(out, res)
		}
	}
	return out
}

func sortByName(checks []domain.CheckResult) {
	sort.Slice(checks, func(i, j int) bool { return checks[i].Name < checks[j].Name })
}

func containsGroup(list []domain.Group, g domain.Group) bool {
	for _, item := range list {
		if item == g {
			return true
		}
	}
	return false
}

func containsStatus(list []Status, s Status) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
