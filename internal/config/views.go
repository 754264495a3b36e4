package config

import (
	"sort"
	"strings"
)

// UI metadata projections of an effective configuration, for presentation
// layers that edit the override document.

// SectionView is the UI projection of one section.
type SectionView struct {
	ID      string  `json:"id"`
	Label   string  `json:"label"`
	Enabled bool    `json:"enabled"`
	Weight  float64 `json:"weight"`
	Order   int     `json:"order"`
}

// CheckView is the UI projection of one check.
type CheckView struct {
	ID       string  `json:"id"`
	Section  string  `json:"section"`
	CheckKey string  `json:"check_key"`
	Label    string  `json:"label"`
	Enabled  bool    `json:"enabled"`
	Weight   float64 `json:"weight"`
}

// SectionViews returns the sections sorted by order.
func (c *Config) SectionViews() []SectionView {
	out := make([]SectionView, 0, len(c.Sections))
	for id, sc := range c.Sections {
		out = append(out, SectionView{
			ID:      id,
			Label:   sc.Label,
			Enabled: sc.Enabled,
			Weight:  sc.Weight,
			Order:   sc.Order,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// CheckViews returns the checks sorted by (section, id).
func (c *Config) CheckViews() []CheckView {
	out := make([]CheckView, 0, len(c.Checks))
	for key, cc := range c.Checks {
		section, id := splitKey(key)
		out = append(out, CheckView{
			ID:       id,
			Section:  section,
			CheckKey: key,
			Label:    cc.Label(),
			Enabled:  cc.Enabled,
			Weight:   cc.Weight,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Section != out[j].Section {
			return out[i].Section < out[j].Section
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func splitKey(key string) (section, id string) {
	if i := strings.IndexByte(key, '.'); i >= 0 {
		return key[:i], key[i+1:]
	}
	return "", key
}
