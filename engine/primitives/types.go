package primitives

import (
	"github.com/spaghettifunk/cadscene/engine/math"
)

// Type is the renderer-facing primitive tag.
type Type string

const (
	TypeSphere   Type = "sphere"
	TypeCylinder Type = "cylinder"
	TypeBox      Type = "box"
	TypeTorus    Type = "torus"
	TypeCone     Type = "cone"
	TypePlane    Type = "plane"
)

/**
 * @brief Geometry is the analytic shape of one primitive in its local frame.
 */
type Geometry interface {
	// HalfExtents is half the size of the axis-aligned box enclosing the
	// shape, ignoring rotation.
	HalfExtents() math.Vec3
}

type SphereGeometry struct {
	Radius float64 `json:"radius"`
}

func (g SphereGeometry) HalfExtents() math.Vec3 {
	return math.NewVec3(g.Radius, g.Radius, g.Radius)
}

type CylinderGeometry struct {
	RadiusTop    float64 `json:"radiusTop"`
	RadiusBottom float64 `json:"radiusBottom"`
	Height       float64 `json:"height"`
}

func (g CylinderGeometry) HalfExtents() math.Vec3 {
	r := max(g.RadiusTop, g.RadiusBottom)
	return math.NewVec3(r, r, g.Height/2)
}

// BoxGeometry keeps the Blender naming: Depth runs along Y and Height along Z.
type BoxGeometry struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Depth  float64 `json:"depth"`
}

func (g BoxGeometry) HalfExtents() math.Vec3 {
	return math.NewVec3(g.Width/2, g.Depth/2, g.Height/2)
}

type TorusGeometry struct {
	MajorRadius float64 `json:"majorRadius"`
	MinorRadius float64 `json:"minorRadius"`
}

func (g TorusGeometry) HalfExtents() math.Vec3 {
	r := g.MajorRadius + g.MinorRadius
	return math.NewVec3(r, r, r)
}

// ConeGeometry has a base Radius; RadiusTop is only set for truncated cones.
type ConeGeometry struct {
	Radius    float64 `json:"radius"`
	Height    float64 `json:"height"`
	RadiusTop float64 `json:"radiusTop,omitempty"`
}

func (g ConeGeometry) HalfExtents() math.Vec3 {
	r := max(g.Radius, g.RadiusTop)
	return math.NewVec3(r, r, g.Height/2)
}

// PlaneGeometry lies flat in XY.
type PlaneGeometry struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (g PlaneGeometry) HalfExtents() math.Vec3 {
	return math.NewVec3(g.Width/2, g.Height/2, 0)
}

// Transform places a primitive. Rotation is XYZ euler in radians.
type Transform struct {
	Position math.Vec3 `json:"position"`
	Rotation math.Vec3 `json:"rotation"`
}

/**
 * @brief Record is one converted primitive as it appears in the scene
 * document. At most one of the two material ids is set.
 */
type Record struct {
	Type               Type      `json:"type"`
	Name               string    `json:"name"`
	Geometry           Geometry  `json:"geometry"`
	Transform          Transform `json:"transform"`
	GlobalMaterialUUID string    `json:"globalMaterialUuid,omitempty"`
	ObjectMaterialUUID string    `json:"objectMaterialUuid,omitempty"`
}

// Bounds is the world-space box of the record, ignoring rotation.
func (r Record) Bounds() math.Extents3D {
	return math.NewExtents3DAround(r.Transform.Position, r.Geometry.HalfExtents())
}
