package primitives

import (
	"errors"
	"fmt"

	"github.com/spaghettifunk/cadscene/engine/capture"
	"github.com/spaghettifunk/cadscene/engine/materials"
	"github.com/spaghettifunk/cadscene/engine/math"
)

var ErrUnsupportedPrimitive = errors.New("unsupported primitive")

// builder turns the keywords and final object scale into a typed geometry.
type builder func(args capture.Args, scale math.Vec3) (Type, Geometry)

var builders = map[capture.Kind]builder{
	capture.KindSphere:   buildSphere,
	capture.KindUVSphere: buildSphere,
	capture.KindCylinder: buildCylinder,
	capture.KindCube:     buildBox,
	capture.KindTorus:    buildTorus,
	capture.KindCone:     buildCone,
	capture.KindPlane:    buildPlane,
}

func buildSphere(a capture.Args, s math.Vec3) (Type, Geometry) {
	p := decodeSphere(a)
	return TypeSphere, SphereGeometry{Radius: p.Radius * s.MaxComponent()}
}

func buildCylinder(a capture.Args, s math.Vec3) (Type, Geometry) {
	p := decodeCylinder(a)
	r := p.Radius * s.MaxXY()
	return TypeCylinder, CylinderGeometry{
		RadiusTop:    r,
		RadiusBottom: r,
		Height:       p.Depth * s.Z,
	}
}

func buildBox(a capture.Args, s math.Vec3) (Type, Geometry) {
	p := decodeCube(a)
	return TypeBox, BoxGeometry{
		Width:  p.Size * s.X,
		Height: p.Size * s.Z,
		Depth:  p.Size * s.Y,
	}
}

func buildTorus(a capture.Args, s math.Vec3) (Type, Geometry) {
	p := decodeTorus(a)
	k := s.MaxXY()
	return TypeTorus, TorusGeometry{
		MajorRadius: p.MajorRadius * k,
		MinorRadius: p.MinorRadius * k,
	}
}

func buildCone(a capture.Args, s math.Vec3) (Type, Geometry) {
	p := decodeCone(a)
	k := s.MaxXY()
	g := ConeGeometry{
		Radius: p.Radius1 * k,
		Height: p.Depth * s.Z,
	}
	if p.Radius2 != 0 {
		g.RadiusTop = p.Radius2 * k
	}
	return TypeCone, g
}

func buildPlane(a capture.Args, s math.Vec3) (Type, Geometry) {
	p := decodePlane(a)
	return TypePlane, PlaneGeometry{
		Width:  p.Size * s.X,
		Height: p.Size * s.Y,
	}
}

/**
 * @brief Mapper converts captured calls into primitive records, resolving
 * each object's first material through the conversion's resolver.
 */
type Mapper struct {
	resolver *materials.Resolver
}

func NewMapper(resolver *materials.Resolver) *Mapper {
	return &Mapper{resolver: resolver}
}

// Map converts one call. Unsupported kinds fail with ErrUnsupportedPrimitive.
func (mp *Mapper) Map(call capture.Call) (Record, error) {
	build, ok := builders[call.Kind]
	if !ok {
		return Record{}, fmt.Errorf("%w: %s", ErrUnsupportedPrimitive, call.Kind)
	}

	obj := call.Object
	typ, geom := build(call.Args, obj.Scale)

	rec := Record{
		Type:     typ,
		Name:     obj.Name,
		Geometry: geom,
		Transform: Transform{
			Position: obj.Location,
			Rotation: obj.Rotation,
		},
	}
	if rec.Name == "" {
		rec.Name = string(typ)
	}

	if mp.resolver != nil {
		var first *capture.Material
		if m, ok := obj.FirstMaterial(); ok {
			first = &m
		}
		ref, err := mp.resolver.Resolve(first)
		if err != nil {
			return Record{}, err
		}
		rec.GlobalMaterialUUID = ref.GlobalID
		rec.ObjectMaterialUUID = ref.LocalID
	}
	return rec, nil
}

// MapAll converts calls in order and stops at the first failure.
func (mp *Mapper) MapAll(calls []capture.Call) ([]Record, error) {
	records := make([]Record, 0, len(calls))
	for i, c := range calls {
		rec, err := mp.Map(c)
		if err != nil {
			return nil, fmt.Errorf("primitive %d: %w", i, err)
		}
		records = append(records, rec)
	}
	return records, nil
}
