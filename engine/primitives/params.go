package primitives

import (
	"github.com/spaghettifunk/cadscene/engine/capture"
)

// Parameters decoded from the operator keywords, one struct per kind. Each
// decoder applies the operator's documented defaults for absent keywords.

type SphereParams struct {
	Radius float64
}

func decodeSphere(a capture.Args) SphereParams {
	return SphereParams{Radius: a.Float("radius", 1)}
}

type CylinderParams struct {
	Radius float64
	Depth  float64
}

func decodeCylinder(a capture.Args) CylinderParams {
	return CylinderParams{
		Radius: a.Float("radius", 1),
		Depth:  a.Float("depth", 1),
	}
}

type CubeParams struct {
	Size float64
}

func decodeCube(a capture.Args) CubeParams {
	return CubeParams{Size: a.Float("size", 1)}
}

type TorusParams struct {
	MajorRadius float64
	MinorRadius float64
}

func decodeTorus(a capture.Args) TorusParams {
	return TorusParams{
		MajorRadius: a.Float("major_radius", 1),
		MinorRadius: a.Float("minor_radius", 0.25),
	}
}

type ConeParams struct {
	Radius1 float64
	Radius2 float64
	Depth   float64
}

// radius1 falls back to radius before the default.
func decodeCone(a capture.Args) ConeParams {
	return ConeParams{
		Radius1: a.Float("radius1", a.Float("radius", 1)),
		Radius2: a.Float("radius2", 0),
		Depth:   a.Float("depth", 1),
	}
}

type PlaneParams struct {
	Size float64
}

func decodePlane(a capture.Args) PlaneParams {
	return PlaneParams{Size: a.Float("size", 2)}
}
