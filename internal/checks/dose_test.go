package checks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rtplan-qa-engine/internal/domain"
)

func TestCheckDoseGrid(t *testing.T) {
	t.Run("matching grid passes", func(t *testing.T) {
		res := checkDoseGrid(newTestCase(), effectiveDefaults().Check("dose.grid"))
		assert.True(t, res.Passed)
		assert.Equal(t, 1.0, res.Score)
	})

	t.Run("missing dose fails with condition", func(t *testing.T) {
		c := newTestCase()
		delete(c.Meta, domain.MetaDose)

		res := checkDoseGrid(c, effectiveDefaults().Check("dose.grid"))
		assert.False(t, res.Passed)
		assert.Equal(t, domain.CondMissingData, res.Details["condition"])
	})

	t.Run("shape mismatch carries both shapes", func(t *testing.T) {
		c := newTestCase()
		c.Meta[domain.MetaDose] = &domain.Volume{Dims: [3]int{2, 2, 2}, Data: make([]float32, 8)}

		res := checkDoseGrid(c, effectiveDefaults().Check("dose.grid"))
		require.False(t, res.Passed)
		assert.Equal(t, domain.CondGeometryMismatch, res.Details["condition"])
		assert.Equal(t, [3]int{2, 2, 2}, res.Details["dose_dims"])
		assert.Equal(t, [3]int{4, 4, 4}, res.Details["ct_dims"])
	})
}

func TestCheckTargetCoverage(t *testing.T) {
	t.Run("full coverage at prescription", func(t *testing.T) {
		res := checkTargetCoverage(newTestCase(), effectiveDefaults().Check("dose.target_coverage"))

		assert.True(t, res.Passed)
		assert.Equal(t, 1.0, res.Score)
		assert.InDelta(t, 60.0, res.Details["d95_gy"].(float64), 1e-6)
		assert.Equal(t, false, res.Details["estimated_prescription"])
	})

	t.Run("estimated prescription caps the score", func(t *testing.T) {
		c := newTestCase()
		c.Plan.TotalDoseGy = nil

		res := checkTargetCoverage(c, effectiveDefaults().Check("dose.target_coverage"))

		assert.True(t, res.Passed, "coverage relative to the estimate is still full")
		assert.Equal(t, 0.9, res.Score, "fallback prescription never earns a full pass")
		assert.Equal(t, true, res.Details["estimated_prescription"])
	})

	t.Run("underdosed target fails", func(t *testing.T) {
		c := newTestCase()
		dose, _ := c.Dose()
		for i := range dose.Data {
			if c.Structures["PTV60"].Mask[i] {
				dose.Data[i] = 48 // 80% of prescription
			}
		}

		res := checkTargetCoverage(c, effectiveDefaults().Check("dose.target_coverage"))
		assert.False(t, res.Passed)
		assert.InDelta(t, 0.8, res.Score, 1e-6)
		assert.NotEmpty(t, res.Recommendation)
	})

	t.Run("no target degrades instead of aborting", func(t *testing.T) {
		c := newTestCase()
		delete(c.Structures, "PTV60")
		c.StructureNames = []string{"BODY", "Rectum", "Bladder"}

		res := checkTargetCoverage(c, effectiveDefaults().Check("dose.target_coverage"))
		assert.False(t, res.Passed)
		assert.Equal(t, 0.5, res.Score)
		assert.Equal(t, domain.CondMissingData, res.Details["condition"])
	})

	t.Run("empty mask selection is flagged, not raised", func(t *testing.T) {
		c := newTestCase()
		c.Structures["PTV60"].Mask = make([]bool, c.CT.Len())

		res := checkTargetCoverage(c, effectiveDefaults().Check("dose.target_coverage"))
		assert.False(t, res.Passed)
		assert.Equal(t, true, res.Details["empty_selection"])
	})
}

func TestCheckHotspot(t *testing.T) {
	t.Run("within limit", func(t *testing.T) {
		res := checkHotspot(newTestCase(), effectiveDefaults().Check("dose.hotspot"))
		assert.True(t, res.Passed)
	})

	t.Run("missing dose degrades", func(t *testing.T) {
		c := newTestCase()
		delete(c.Meta, domain.MetaDose)

		res := checkHotspot(c, effectiveDefaults().Check("dose.hotspot"))
		assert.False(t, res.Passed)
		assert.Equal(t, 0.5, res.Score)
		assert.Equal(t, domain.CondMissingData, res.Details["condition"])
	})

	t.Run("hotspot above limit fails", func(t *testing.T) {
		c := newTestCase()
		dose, _ := c.Dose()
		dose.Data[0] = 70 // 116.7% of 60 Gy

		res := checkHotspot(c, effectiveDefaults().Check("dose.hotspot"))
		assert.False(t, res.Passed)
		assert.Less(t, res.Score, 1.0)
	})
}

func TestCheckOARLimits(t *testing.T) {
	t.Run("limits respected", func(t *testing.T) {
		res := checkOARLimits(newTestCase(), effectiveDefaults().Check("dose.oar"))
		assert.True(t, res.Passed)
		assert.Equal(t, 0.0, res.Details["rectum_v65"])
	})

	t.Run("violation fails with organ detail", func(t *testing.T) {
		c := newTestCase()
		dose, _ := c.Dose()
		for i, m := range c.Structures["Rectum"].Mask {
			if m {
				dose.Data[i] = 68
			}
		}

		res := checkOARLimits(c, effectiveDefaults().Check("dose.oar"))
		assert.False(t, res.Passed)
		assert.Equal(t, 1.0, res.Details["rectum_v65"])
	})

	t.Run("multiple violations reported in stable order", func(t *testing.T) {
		c := newTestCase()
		dose, _ := c.Dose()
		for i := range dose.Data {
			dose.Data[i] = 75 // over both the rectum and bladder limits
		}

		res := checkOARLimits(c, effectiveDefaults().Check("dose.oar"))
		require.False(t, res.Passed)
		violations, ok := res.Details["violations"].([]string)
		require.True(t, ok)
		require.Len(t, violations, 2)
		assert.Contains(t, violations[0], "BLADDER")
		assert.Contains(t, violations[1], "RECTUM")
	})

	t.Run("absent organ is noted, not penalized", func(t *testing.T) {
		c := newTestCase()
		delete(c.Structures, "Bladder")
		c.StructureNames = []string{"PTV60", "BODY", "Rectum"}

		res := checkOARLimits(c, effectiveDefaults().Check("dose.oar"))
		assert.True(t, res.Passed)
		assert.Contains(t, res.Details["absent"], "BLADDER")
	})
}
