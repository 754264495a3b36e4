package domain

import (
	"fmt"
	"math"
)

// Volume is a flattened 3D scalar grid. Data is stored x-fastest:
// index = x + Dims[0]*(y + Dims[1]*z).
type Volume struct {
	Dims [3]int    `json:"dims"`
	Data []float32 `json:"data"`
}

// Len returns the expected number of voxels for the grid dimensions.
func (v *Volume) Len() int {
	return v.Dims[0] * v.Dims[1] * v.Dims[2]
}

// Index returns the flat index of voxel (x, y, z).
func (v *Volume) Index(x, y, z int) int {
	return x + v.Dims[0]*(y+v.Dims[1]*z)
}

// SameShape reports whether two volumes share grid dimensions.
func (v *Volume) SameShape(other *Volume) bool {
	if other == nil {
		return false
	}
	return v.Dims == other.Dims
}

// StructureInfo represents a contoured anatomical structure on the CT grid.
// The name is kept exactly as delivered by the planning system; all
// interpretation of it happens in the naming package.
type StructureInfo struct {
	Name     string     `json:"name"`
	Mask     []bool     `json:"-"`
	VolumeCC float64    `json:"volume_cc"`
	Centroid [3]float64 `json:"centroid"` // voxel space
}

// BeamInfo represents a single treatment beam. Optional fields are nil when
// the planning system did not report them; they are never guessed.
type BeamInfo struct {
	Number      *int     `json:"number,omitempty"`
	Name        string   `json:"name,omitempty"`
	Modality    string   `json:"modality,omitempty"`
	BeamType    string   `json:"beam_type,omitempty"`
	IsArc       *bool    `json:"is_arc,omitempty"`
	GantryStart *float64 `json:"gantry_start,omitempty"`
	GantryEnd   *float64 `json:"gantry_end,omitempty"`
	Couch       *float64 `json:"couch,omitempty"`
	Collimator  *float64 `json:"collimator,omitempty"`
}

// GantrySpan returns the absolute gantry rotation of the beam in degrees,
// or false when either angle is unknown.
func (b *BeamInfo) GantrySpan() (float64, bool) {
	if b.GantryStart == nil || b.GantryEnd == nil {
		return 0, false
	}
	span := math.Abs(*b.GantryEnd - *b.GantryStart)
	if span > 360 {
		span = math.Mod(span, 360)
	}
	return span, true
}

// PlanInfo represents the treatment plan attached to a case.
type PlanInfo struct {
	Energy          string      `json:"energy,omitempty"`
	Technique       string      `json:"technique,omitempty"`
	ArcCount        int         `json:"arc_count"`
	Isocenter       *[3]float64 `json:"isocenter,omitempty"` // mm
	Beams           []BeamInfo  `json:"beams,omitempty"`
	TotalDoseGy     *float64    `json:"total_dose_gy,omitempty"`
	Fractions       *int        `json:"fractions,omitempty"`
	DosePerFraction *float64    `json:"dose_per_fraction,omitempty"`
}

// Validate checks the internal consistency of the plan prescription.
func (p *PlanInfo) Validate() error {
	if p.TotalDoseGy != nil && p.Fractions != nil && p.DosePerFraction != nil {
		if *p.Fractions <= 0 {
			return fmt.Errorf("plan has %d fractions", *p.Fractions)
		}
		want := *p.TotalDoseGy / float64(*p.Fractions)
		if math.Abs(want-*p.DosePerFraction) > 1e-6 {
			return fmt.Errorf("dose per fraction %.4f Gy inconsistent with %.2f Gy / %d fx",
				*p.DosePerFraction, *p.TotalDoseGy, *p.Fractions)
		}
	}
	return nil
}

// Meta keys with a defined interpretation. Anything else in Case.Meta is
// carried through untouched for downstream consumers.
const (
	MetaOrigin    = "origin"    // [3]float64, mm position of voxel (0,0,0)
	MetaDirection = "direction" // [9]float64, row-major orientation cosines
	MetaDose      = "dose"      // *Volume, dose in Gy resampled to the CT grid
	MetaErrors    = "errors"    // []string, loader-side error flags
)

// Case is the immutable in-memory representation of one clinical case.
// StructureNames preserves the order structures were discovered in, so that
// grouping and reporting stay deterministic; Structures is keyed by the raw
// structure name.
type Case struct {
	ID             string                    `json:"case_id"`
	CT             Volume                    `json:"ct"`
	SpacingMM      [3]float64                `json:"spacing_mm"`
	StructureNames []string                  `json:"structure_names"`
	Structures     map[string]*StructureInfo `json:"structures"`
	Plan           *PlanInfo                 `json:"plan,omitempty"`
	Meta           map[string]any            `json:"meta,omitempty"`
}

// Origin returns the physical position of voxel (0,0,0) in mm.
func (c *Case) Origin() ([3]float64, bool) {
	o, ok := c.Meta[MetaOrigin].([3]float64)
	return o, ok
}

// Dose returns the dose volume resampled onto the CT grid, if the loader
// attached one.
func (c *Case) Dose() (*Volume, bool) {
	d, ok := c.Meta[MetaDose].(*Volume)
	if !ok || d == nil {
		return nil, false
	}
	return d, true
}

// VoxelToPhysical converts a voxel-space point to physical mm using the case
// origin and spacing. Without an origin the conversion is spacing-only.
func (c *Case) VoxelToPhysical(p [3]float64) [3]float64 {
	origin, _ := c.Origin()
	var out [3]float64
	for i := 0; i < 3; i++ {
		out[i] = origin[i] + p[i]*c.SpacingMM[i]
	}
	return out
}

// StructuresInOrder returns the structures in discovery order.
func (c *Case) StructuresInOrder() []*StructureInfo {
	out := make([]*StructureInfo, 0, len(c.StructureNames))
	for _, name := range c.StructureNames {
		if s, ok := c.Structures[name]; ok {
			out = append(out, s)
		}
	}
	return out
}
