package naming

import "github.com/rtplan-qa-engine/internal/domain"

// Site is an inferred clinical treatment site.
type Site string

const (
	SiteProstate Site = "PROSTATE"
	SitePelvis   Site = "PELVIS"
	SiteUnknown  Site = "UNKNOWN"
)

// siteRule is one entry of the precedence table: the site applies when every
// category in requires is present and at least one of anyOf is (empty anyOf
// means no additional requirement).
type siteRule struct {
	site     Site
	requires []Category
	anyOf    []Category
}

// Ordered precedence; first satisfied rule wins. The table is heuristic by
// nature, so it stays deterministic and data-driven instead of branchy code.
var siteRules = []siteRule{
	{SiteProstate, []Category{Rectum, Bladder}, []Category{PTV, CTV, GTV}},
	{SitePelvis, []Category{FemoralHeadLeft, FemoralHeadRight}, nil},
	{SitePelvis, []Category{Rectum, Bowel}, nil},
}

// InferSite derives a clinical site hint from the categories present on the
// case. Unknown combinations yield SiteUnknown, never an error.
func InferSite(c *domain.Case) Site {
	present := make(map[Category]bool)
	for _, s := range c.StructuresInOrder() {
		present[Canonicalize(s.Name).Category] = true
	}
	for _, rule := range siteRules {
		ok := true
		for _, cat := range rule.requires {
			if !present[cat] {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		if len(rule.anyOf) > 0 {
			any := false
			for _, cat := range rule.anyOf {
				if present[cat] {
					any = true
					break
				}
			}
			if !any {
				continue
			}
		}
		return rule.site
	}
	return SiteUnknown
}
