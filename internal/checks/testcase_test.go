package checks

import (
	"github.com/rtplan-qa-engine/internal/domain"
)

// newTestCase builds a small synthetic prostate case that passes every check:
// a 4x4x4 CT at 2 mm spacing, a PTV covered at exactly 60 Gy, OARs well under
// their limits, and a two-arc VMAT plan centered on the target.
func newTestCase() *domain.Case {
	dims := [3]int{4, 4, 4}
	n := dims[0] * dims[1] * dims[2]

	ct := domain.Volume{Dims: dims, Data: make([]float32, n)} // water

	// PTV occupies the central 2x2x2 block; centroid (1.5, 1.5, 1.5) voxels.
	ptvMask := make([]bool, n)
	for z := 1; z <= 2; z++ {
		for y := 1; y <= 2; y++ {
			for x := 1; x <= 2; x++ {
				ptvMask[ct.Index(x, y, z)] = true
			}
		}
	}

	bodyMask := make([]bool, n)
	for i := range bodyMask {
		bodyMask[i] = true
	}

	rectumMask := make([]bool, n)
	rectumMask[ct.Index(0, 0, 0)] = true
	rectumMask[ct.Index(1, 0, 0)] = true

	bladderMask := make([]bool, n)
	bladderMask[ct.Index(3, 3, 3)] = true

	// 60 Gy inside the PTV, 30 Gy everywhere else.
	dose := &domain.Volume{Dims: dims, Data: make([]float32, n)}
	for i := range dose.Data {
		if ptvMask[i] {
			dose.Data[i] = 60
		} else {
			dose.Data[i] = 30
		}
	}

	total := 60.0
	fractions := 30
	perFx := 2.0
	iso := [3]float64{3, 3, 3} // physical position of the PTV centroid
	couch := 0.0
	col1, col2 := 10.0, 95.0
	g1s, g1e := 179.0, -179.0
	g2s, g2e := -179.0, 179.0
	arc := true

	c := &domain.Case{
		ID:        "test-case",
		CT:        ct,
		SpacingMM: [3]float64{2, 2, 2},
		Structures: map[string]*domain.StructureInfo{
			"PTV60":   {Name: "PTV60", Mask: ptvMask, VolumeCC: 80, Centroid: [3]float64{1.5, 1.5, 1.5}},
			"BODY":    {Name: "BODY", Mask: bodyMask, VolumeCC: 8000, Centroid: [3]float64{1.5, 1.5, 1.5}},
			"Rectum":  {Name: "Rectum", Mask: rectumMask, VolumeCC: 55, Centroid: [3]float64{0.5, 0, 0}},
			"Bladder": {Name: "Bladder", Mask: bladderMask, VolumeCC: 90, Centroid: [3]float64{3, 3, 3}},
		},
		StructureNames: []string{"PTV60", "BODY", "Rectum", "Bladder"},
		Plan: &domain.PlanInfo{
			Energy:          "6MV",
			Technique:       "VMAT",
			ArcCount:        2,
			Isocenter:       &iso,
			TotalDoseGy:     &total,
			Fractions:       &fractions,
			DosePerFraction: &perFx,
			Beams: []domain.BeamInfo{
				{Name: "Arc1", IsArc: &arc, GantryStart: &g1s, GantryEnd: &g1e, Couch: &couch, Collimator: &col1},
				{Name: "Arc2", IsArc: &arc, GantryStart: &g2s, GantryEnd: &g2e, Couch: &couch, Collimator: &col2},
			},
		},
		Meta: map[string]any{
			domain.MetaOrigin: [3]float64{0, 0, 0},
			domain.MetaDose:   dose,
		},
	}
	return c
}
