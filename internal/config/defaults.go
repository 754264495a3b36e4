package config

// Built-in default configuration. Constructed fresh on every call so that no
// evaluation can contaminate another through shared tables; overrides are
// merged onto a copy, never onto this.

// SectionConfig is the effective configuration of one check group.
type SectionConfig struct {
	Enabled bool    `json:"enabled"`
	Weight  float64 `json:"weight"`
	Order   int     `json:"order"`
	Label   string  `json:"label"`
}

// CheckConfig is the effective configuration of one check, keyed by
// "group.check". Params and Texts are open bags; numeric thresholds resolve
// through the site-aware accessors in params.go.
type CheckConfig struct {
	Key        string            `json:"key"`
	Enabled    bool              `json:"enabled"`
	Weight     float64           `json:"weight"`
	ResultName string            `json:"result_name"`
	Params     map[string]any    `json:"params,omitempty"`
	Texts      map[string]string `json:"texts,omitempty"`
}

// Config is one effective configuration snapshot.
type Config struct {
	Sections map[string]*SectionConfig `json:"sections"`
	Checks   map[string]*CheckConfig   `json:"checks"`
}

// Check returns the configuration for a check key, or an enabled
// unit-weight default when the key has no entry.
func (c *Config) Check(key string) *CheckConfig {
	if cc, ok := c.Checks[key]; ok {
		return cc
	}
	return &CheckConfig{Key: key, Enabled: true, Weight: 1.0}
}

// Section returns the configuration for a section id, or an enabled default.
func (c *Config) Section(id string) *SectionConfig {
	if sc, ok := c.Sections[id]; ok {
		return sc
	}
	return &SectionConfig{Enabled: true, Weight: 1.0, Label: id}
}

// Defaults builds the built-in default configuration.
func Defaults() *Config {
	return &Config{
		Sections: map[string]*SectionConfig{
			"ct":         {Enabled: true, Weight: 1.0, Order: 1, Label: "CT volume"},
			"structures": {Enabled: true, Weight: 1.0, Order: 2, Label: "Structures"},
			"plan":       {Enabled: true, Weight: 1.0, Order: 3, Label: "Treatment plan"},
			"dose":       {Enabled: true, Weight: 1.5, Order: 4, Label: "Dose distribution"},
		},
		Checks: map[string]*CheckConfig{
			"ct.geometry": {
				Key: "ct.geometry", Enabled: true, Weight: 1.0,
				ResultName: "CT geometry",
				Params: map[string]any{
					"max_slice_mm":   3.0,
					"max_inplane_mm": 2.0,
				},
			},
			"ct.hu_range": {
				Key: "ct.hu_range", Enabled: true, Weight: 1.0,
				ResultName: "CT HU range",
				Params: map[string]any{
					"hu_min":           -1050.0,
					"hu_max":           3200.0,
					"max_bad_fraction": 0.001,
				},
			},
			"structures.body": {
				Key: "structures.body", Enabled: true, Weight: 1.0,
				ResultName: "Body contour",
				Params: map[string]any{
					"min_volume_cc": 1000.0,
				},
			},
			"structures.target": {
				Key: "structures.target", Enabled: true, Weight: 1.5,
				ResultName: "Target structure",
			},
			"structures.target_volume": {
				Key: "structures.target_volume", Enabled: true, Weight: 1.0,
				ResultName: "Target volume",
				Params: map[string]any{
					"min_cc": 1.0,
					"max_cc": 4000.0,
					"sites": map[string]any{
						"PROSTATE": map[string]any{"min_cc": 20.0, "max_cc": 600.0},
					},
				},
			},
			"structures.grid": {
				Key: "structures.grid", Enabled: true, Weight: 1.5,
				ResultName: "Structure grid consistency",
			},
			"structures.naming": {
				Key: "structures.naming", Enabled: true, Weight: 0.5,
				ResultName: "Structure naming",
				Params: map[string]any{
					"min_recognized_fraction": 0.5,
				},
			},
			"plan.isocenter": {
				Key: "plan.isocenter", Enabled: true, Weight: 1.0,
				ResultName: "Isocenter placement",
				Params: map[string]any{
					"max_distance_mm": 15.0,
					"sites": map[string]any{
						"PROSTATE": map[string]any{"max_distance_mm": 10.0},
					},
				},
			},
			"plan.technique": {
				Key: "plan.technique", Enabled: true, Weight: 1.0,
				ResultName: "Technique consistency",
				Params: map[string]any{
					"allowed_techniques": []any{"VMAT", "IMRT", "3DCRT", "SBRT"},
					"min_beams":          1.0,
					"sites": map[string]any{
						"PROSTATE": map[string]any{
							"allowed_techniques": []any{"VMAT", "IMRT"},
							"min_beams":          2.0,
						},
					},
				},
			},
			"plan.geometry": {
				Key: "plan.geometry", Enabled: true, Weight: 1.0,
				ResultName: "Beam geometry",
				Params: map[string]any{
					"couch_tolerance_deg":    5.0,
					"min_collimator_spread":  5.0,
					"wide_arc_threshold_deg": 200.0,
				},
			},
			"plan.fractionation": {
				Key: "plan.fractionation", Enabled: true, Weight: 1.0,
				ResultName: "Fractionation",
				Params: map[string]any{
					"min_fx_dose_gy": 1.5,
					"max_fx_dose_gy": 5.0,
				},
			},
			"dose.grid": {
				Key: "dose.grid", Enabled: true, Weight: 1.5,
				ResultName: "Dose grid",
			},
			"dose.target_coverage": {
				Key: "dose.target_coverage", Enabled: true, Weight: 2.0,
				ResultName: "Target coverage",
				Params: map[string]any{
					"coverage_threshold": 0.95,
					"estimate_cap":       0.9,
				},
			},
			"dose.hotspot": {
				Key: "dose.hotspot", Enabled: true, Weight: 1.0,
				ResultName: "Hotspot",
				Params: map[string]any{
					"max_relative_dose": 1.07,
				},
			},
			"dose.oar": {
				Key: "dose.oar", Enabled: true, Weight: 1.0,
				ResultName: "OAR dose limits",
				Params: map[string]any{
					// category -> [threshold Gy, max allowed fraction]
					"limits": map[string]any{
						"RECTUM":  []any{65.0, 0.17},
						"BLADDER": []any{70.0, 0.25},
					},
				},
			},
		},
	}
}
