package checks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rtplan-qa-engine/internal/domain"
)

func TestCheckBody(t *testing.T) {
	t.Run("external contour passes", func(t *testing.T) {
		res := checkBody(newTestCase(), effectiveDefaults().Check("structures.body"))
		assert.True(t, res.Passed)
		assert.Equal(t, "BODY", res.Details["name"])
	})

	t.Run("missing body scores zero", func(t *testing.T) {
		c := newTestCase()
		delete(c.Structures, "BODY")
		c.StructureNames = []string{"PTV60", "Rectum", "Bladder"}

		res := checkBody(c, effectiveDefaults().Check("structures.body"))
		assert.False(t, res.Passed)
		assert.Equal(t, 0.0, res.Score)
		assert.NotEmpty(t, res.Recommendation)
	})

	t.Run("implausibly small body fails soft", func(t *testing.T) {
		c := newTestCase()
		c.Structures["BODY"].VolumeCC = 200

		res := checkBody(c, effectiveDefaults().Check("structures.body"))
		assert.False(t, res.Passed)
		assert.Equal(t, 0.5, res.Score)
	})
}

func TestCheckTarget(t *testing.T) {
	t.Run("ptv recognized", func(t *testing.T) {
		res := checkTarget(newTestCase(), effectiveDefaults().Check("structures.target"))
		require.True(t, res.Passed)
		assert.Equal(t, "PTV60", res.Details["name"])
		assert.Equal(t, "PTV", res.Details["category"])
	})

	t.Run("no target scores zero", func(t *testing.T) {
		c := newTestCase()
		delete(c.Structures, "PTV60")
		c.StructureNames = []string{"BODY", "Rectum", "Bladder"}

		res := checkTarget(c, effectiveDefaults().Check("structures.target"))
		assert.False(t, res.Passed)
		assert.Equal(t, 0.0, res.Score)
		assert.Equal(t, domain.CondMissingData, res.Details["condition"])
	})
}

func TestCheckTargetVolume(t *testing.T) {
	t.Run("prostate window applies", func(t *testing.T) {
		res := checkTargetVolume(newTestCase(), effectiveDefaults().Check("structures.target_volume"))
		require.True(t, res.Passed)
		assert.Equal(t, 20.0, res.Details["min_cc"])
		assert.Equal(t, 600.0, res.Details["max_cc"])
	})

	t.Run("oversized target fails", func(t *testing.T) {
		c := newTestCase()
		c.Structures["PTV60"].VolumeCC = 900 // above the prostate 600 cc ceiling

		res := checkTargetVolume(c, effectiveDefaults().Check("structures.target_volume"))
		assert.False(t, res.Passed)
		assert.Equal(t, 0.4, res.Score)
	})

	t.Run("no target is informational", func(t *testing.T) {
		c := newTestCase()
		delete(c.Structures, "PTV60")
		c.StructureNames = []string{"BODY", "Rectum", "Bladder"}

		res := checkTargetVolume(c, effectiveDefaults().Check("structures.target_volume"))
		assert.True(t, res.Passed)
		assert.Equal(t, true, res.Details["informational"])
	})
}

func TestCheckStructureGrid(t *testing.T) {
	t.Run("matching masks pass", func(t *testing.T) {
		res := checkStructureGrid(newTestCase(), effectiveDefaults().Check("structures.grid"))
		assert.True(t, res.Passed)
		assert.Equal(t, 64, res.Details["ct_voxels"])
	})

	t.Run("mismatched mask reported by name", func(t *testing.T) {
		c := newTestCase()
		c.Structures["Rectum"].Mask = make([]bool, 10)

		res := checkStructureGrid(c, effectiveDefaults().Check("structures.grid"))
		require.False(t, res.Passed)
		assert.Equal(t, domain.CondGeometryMismatch, res.Details["condition"])
		mismatched, ok := res.Details["mismatched"].([]map[string]any)
		require.True(t, ok)
		require.Len(t, mismatched, 1)
		assert.Equal(t, "Rectum", mismatched[0]["name"])
		assert.InDelta(t, 0.75, res.Score, 1e-6)
	})

	t.Run("no structures fails", func(t *testing.T) {
		c := newTestCase()
		c.Structures = map[string]*domain.StructureInfo{}
		c.StructureNames = nil

		res := checkStructureGrid(c, effectiveDefaults().Check("structures.grid"))
		assert.False(t, res.Passed)
		assert.Equal(t, domain.CondMissingData, res.Details["condition"])
	})
}

func TestCheckNaming(t *testing.T) {
	t.Run("all names recognized", func(t *testing.T) {
		res := checkNaming(newTestCase(), effectiveDefaults().Check("structures.naming"))
		assert.True(t, res.Passed)
		assert.Equal(t, 1.0, res.Details["recognized_fraction"])
	})

	t.Run("mostly unrecognized set fails", func(t *testing.T) {
		c := newTestCase()
		for _, n := range []string{"struct_a", "struct_b", "struct_c", "struct_d", "struct_e"} {
			c.Structures[n] = &domain.StructureInfo{Name: n, Mask: make([]bool, c.CT.Len())}
			c.StructureNames = append(c.StructureNames, n)
		}

		res := checkNaming(c, effectiveDefaults().Check("structures.naming"))
		require.False(t, res.Passed)
		assert.Equal(t, 4, res.Details["recognized"])
		assert.Equal(t, 9, res.Details["total"])
		assert.Len(t, res.Details["unknown"], 5)
	})
}
