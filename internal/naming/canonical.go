// Package naming maps free-text structure names from planning systems onto a
// fixed set of canonical categories. Clinics name the same organ a dozen
// ways ("Rectum", "RECTUM_ext", "Rektum"); every function here is pure and
// total over that mess: unrecognized input degrades to UNKNOWN, never to an
// error.
package naming

import (
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/rtplan-qa-engine/internal/domain"
)

// Category is a canonical structure category.
type Category string

const (
	PTV              Category = "PTV"
	CTV              Category = "CTV"
	GTV              Category = "GTV"
	Body             Category = "BODY"
	Rectum           Category = "RECTUM"
	Bladder          Category = "BLADDER"
	Bowel            Category = "BOWEL"
	FemoralHeadLeft  Category = "FEMORAL_HEAD_LEFT"
	FemoralHeadRight Category = "FEMORAL_HEAD_RIGHT"
	Helper           Category = "HELPER"
	Unknown          Category = "UNKNOWN"
)

// Canonical is the interpretation of one raw structure name. Helper marks
// optimization aids (rings, shells, push/eval volumes); such structures keep
// their clinical category for grouping but are never chosen as the primary
// exemplar of it.
type Canonical struct {
	Category Category
	Helper   bool
}

type nameRule struct {
	substrings []string
	category   Category
}

// Ordered rule table; first match wins. Laterality rules sit before the
// generic femoral rule, target subtypes before the bare target rule.
var rules = []nameRule{
	{[]string{"femoral_l", "femhead_l", "femur_l", "l_femoral", "femoralhead_l", "caput_femoris_l"}, FemoralHeadLeft},
	{[]string{"femoral_r", "femhead_r", "femur_r", "r_femoral", "femoralhead_r", "caput_femoris_r"}, FemoralHeadRight},
	{[]string{"ptv"}, PTV},
	{[]string{"ctv"}, CTV},
	{[]string{"gtv"}, GTV},
	{[]string{"body", "external", "outer contour", "skin"}, Body},
	{[]string{"rectum", "rektum"}, Rectum},
	{[]string{"bladder", "vessie", "blase"}, Bladder},
	{[]string{"bowel", "intestine", "small bowel", "colon"}, Bowel},
}

// Helper naming conventions: optimization rings and shells, push/eval copies,
// wall expansions and other auxiliary volumes derived from clinical contours.
var helperMarkers = []string{
	"_opti", "opti_", "ring", "shell", "wall", "_push", "_eval",
	"_aux", "aux_", "helper", "_exp", "dummy", "temp", "_sub", "z_",
}

// Structure sets within one clinic repeat names endlessly, so resolved
// interpretations are memoized across evaluations. The cache is safe for
// concurrent use.
var canonCache, _ = lru.New[string, Canonical](4096)

// Canonicalize maps a raw structure name to its canonical interpretation.
func Canonicalize(name string) Canonical {
	if c, ok := canonCache.Get(name); ok {
		return c
	}
	c := resolve(name)
	canonCache.Add(name, c)
	return c
}

func resolve(name string) Canonical {
	lower := strings.ToLower(strings.TrimSpace(name))
	helper := false
	for _, marker := range helperMarkers {
		if strings.Contains(lower, marker) {
			helper = true
			break
		}
	}
	for _, rule := range rules {
		for _, sub := range rule.substrings {
			if strings.Contains(lower, sub) {
				return Canonical{Category: rule.category, Helper: helper}
			}
		}
	}
	if helper {
		return Canonical{Category: Helper, Helper: true}
	}
	return Canonical{Category: Unknown}
}

// GroupByCategory returns, per category, the case's structures in discovery
// order. Helper variants land in their clinical category alongside the real
// contour.
func GroupByCategory(c *domain.Case) map[Category][]*domain.StructureInfo {
	groups := make(map[Category][]*domain.StructureInfo)
	for _, s := range c.StructuresInOrder() {
		cat := Canonicalize(s.Name).Category
		groups[cat] = append(groups[cat], s)
	}
	return groups
}

// ChoosePrimary selects the structure that should represent a category: the
// largest-volume member that is not a helper. When only helpers matched it
// degrades to the largest helper rather than returning nothing. Empty groups
// yield nil.
func ChoosePrimary(group []*domain.StructureInfo) *domain.StructureInfo {
	var best, bestHelper *domain.StructureInfo
	for _, s := range group {
		if Canonicalize(s.Name).Helper {
			if bestHelper == nil || s.VolumeCC > bestHelper.VolumeCC {
				bestHelper = s
			}
			continue
		}
		if best == nil || s.VolumeCC > best.VolumeCC {
			best = s
		}
	}
	if best != nil {
		return best
	}
	return bestHelper
}

// PrimaryTarget returns the primary treatment target of the case, preferring
// PTV over CTV over GTV.
func PrimaryTarget(c *domain.Case) *domain.StructureInfo {
	groups := GroupByCategory(c)
	for _, cat := range []Category{PTV, CTV, GTV} {
		if s := ChoosePrimary(groups[cat]); s != nil {
			return s
		}
	}
	return nil
}
