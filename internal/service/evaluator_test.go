package service

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rtplan-qa-engine/internal/config"
	"github.com/rtplan-qa-engine/internal/domain"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func testStore(t *testing.T) *config.Store {
	t.Helper()
	return config.NewStore(filepath.Join(t.TempDir(), "qa-overrides.json"))
}

// passingCase builds a small prostate case engineered to pass every check.
func passingCase() *domain.Case {
	dims := [3]int{4, 4, 4}
	n := dims[0] * dims[1] * dims[2]
	ct := domain.Volume{Dims: dims, Data: make([]float32, n)}

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
	bladderMask := make([]bool, n)
	bladderMask[ct.Index(3, 3, 3)] = true

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
	iso := [3]float64{3, 3, 3}
	couch := 0.0
	col1, col2 := 10.0, 95.0
	g1s, g1e := 179.0, -179.0
	arc := true

	return &domain.Case{
		ID:        "eval-case",
		CT:        ct,
		SpacingMM: [3]float64{2, 2, 2},
		Structures: map[string]*domain.StructureInfo{
			"PTV60":   {Name: "PTV60", Mask: ptvMask, VolumeCC: 80, Centroid: [3]float64{1.5, 1.5, 1.5}},
			"BODY":    {Name: "BODY", Mask: bodyMask, VolumeCC: 8000, Centroid: [3]float64{1.5, 1.5, 1.5}},
			"Rectum":  {Name: "Rectum", Mask: rectumMask, VolumeCC: 55, Centroid: [3]float64{0, 0, 0}},
			"Bladder": {Name: "Bladder", Mask: bladderMask, VolumeCC: 90, Centroid: [3]float64{3, 3, 3}},
		},
		StructureNames: []string{"PTV60", "BODY", "Rectum", "Bladder"},
		Plan: &domain.PlanInfo{
			Technique:       "VMAT",
			ArcCount:        2,
			Isocenter:       &iso,
			TotalDoseGy:     &total,
			Fractions:       &fractions,
			DosePerFraction: &perFx,
			Beams: []domain.BeamInfo{
				{Name: "Arc1", IsArc: &arc, GantryStart: &g1s, GantryEnd: &g1e, Couch: &couch, Collimator: &col1},
				{Name: "Arc2", IsArc: &arc, GantryStart: &g1e, GantryEnd: &g1s, Couch: &couch, Collimator: &col2},
			},
		},
		Meta: map[string]any{
			domain.MetaOrigin: [3]float64{0, 0, 0},
			domain.MetaDose:   dose,
		},
	}
}

func TestEvaluatorCleanCase(t *testing.T) {
	ev := NewEvaluator(quietLogger(), testStore(t))

	qa := ev.Evaluate(context.Background(), passingCase())
	require.NotNil(t, qa)
	assert.Equal(t, "eval-case", qa.CaseID)
	assert.Len(t, qa.Checks, 15)
	assert.InDelta(t, 100.0, qa.TotalScore, 1e-9)
	assert.Empty(t, qa.Recommendations)
	for _, res := range qa.Checks {
		assert.True(t, res.Passed, "check %q failed: %s", res.Name, res.Message)
	}
}

func TestEvaluatorDegradedCase(t *testing.T) {
	ev := NewEvaluator(quietLogger(), testStore(t))

	c := passingCase()
	c.Plan = nil
	delete(c.Meta, domain.MetaDose)

	qa := ev.Evaluate(context.Background(), c)
	assert.Less(t, qa.TotalScore, 100.0)
	assert.NotEmpty(t, qa.Recommendations)

	// Without a dose grid the rest of the dose group is short-circuited.
	doseResults := 0
	for _, res := range qa.Checks {
		if res.Group == domain.GroupDose {
			doseResults++
		}
	}
	assert.Equal(t, 1, doseResults)
}

func TestEvaluatorHonorsOverrides(t *testing.T) {
	store := testStore(t)
	off := false
	store.Apply(&config.Document{
		Sections: map[string]config.SectionOverride{
			"dose": {Enabled: &off},
		},
		Checks: map[string]config.CheckOverride{
			"ct.hu_range": {Enabled: &off},
		},
	})
	ev := NewEvaluator(quietLogger(), store)

	qa := ev.Evaluate(context.Background(), passingCase())
	assert.Len(t, qa.Checks, 10)
	for _, res := range qa.Checks {
		assert.NotEqual(t, domain.GroupDose, res.Group)
		assert.NotEqual(t, "CT HU range", res.Name)
	}
}
