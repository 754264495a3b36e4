package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rtplan-qa-engine/internal/domain"
)

// JSON case format produced by the external case exporter. The engine itself
// never reads files; this loader stands in for the acquisition pipeline.

type volumeFile struct {
	Dims [3]int    `json:"dims"`
	Data []float32 `json:"data"`
}

type structureFile struct {
	Name     string     `json:"name"`
	Mask     []bool     `json:"mask"`
	VolumeCC float64    `json:"volume_cc"`
	Centroid [3]float64 `json:"centroid"`
}

type caseFile struct {
	CaseID     string           `json:"case_id"`
	CT         volumeFile       `json:"ct"`
	SpacingMM  [3]float64       `json:"spacing_mm"`
	Origin     *[3]float64      `json:"origin,omitempty"`
	Structures []structureFile  `json:"structures"`
	Plan       *domain.PlanInfo `json:"plan,omitempty"`
	Dose       *volumeFile      `json:"dose,omitempty"`
	Errors     []string         `json:"errors,omitempty"`
}

func loadCase(path string) (*domain.Case, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cf caseFile
	if err := json.Unmarshal(raw, &cf); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if cf.CaseID == "" {
		return nil, fmt.Errorf("%s: case_id is required", path)
	}

	c := &domain.Case{
		ID:         cf.CaseID,
		CT:         domain.Volume{Dims: cf.CT.Dims, Data: cf.CT.Data},
		SpacingMM:  cf.SpacingMM,
		Structures: make(map[string]*domain.StructureInfo, len(cf.Structures)),
		Plan:       cf.Plan,
		Meta:       map[string]any{},
	}
	for _, sf := range cf.Structures {
		if _, dup := c.Structures[sf.Name]; dup {
			return nil, fmt.Errorf("%s: duplicate structure name %q", path, sf.Name)
		}
		c.StructureNames = append(c.StructureNames, sf.Name)
		c.Structures[sf.Name] = &domain.StructureInfo{
			Name:     sf.Name,
			Mask:     sf.Mask,
			VolumeCC: sf.VolumeCC,
			Centroid: sf.Centroid,
		}
	}
	if cf.Origin != nil {
		c.Meta[domain.MetaOrigin] = *cf.Origin
	}
	if cf.Dose != nil {
		c.Meta[domain.MetaDose] = &domain.Volume{Dims: cf.Dose.Dims, Data: cf.Dose.Data}
	}
	if len(cf.Errors) > 0 {
		c.Meta[domain.MetaErrors] = cf.Errors
	}
	return c, nil
}
