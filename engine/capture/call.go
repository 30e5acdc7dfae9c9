package capture

import (
	"github.com/spaghettifunk/cadscene/engine/math"
)

// Args holds the numeric keyword arguments of one primitive call, scalars
// and sequences apart.
type Args struct {
	numbers map[string]float64
	vectors map[string][]float64
}

func NewArgs() Args {
	return Args{
		numbers: make(map[string]float64),
		vectors: make(map[string][]float64),
	}
}

// SetFloat stores a numeric keyword argument.
func (a Args) SetFloat(name string, v float64) {
	a.numbers[name] = v
}

// SetVector stores a numeric sequence keyword argument.
func (a Args) SetVector(name string, v ...float64) {
	a.vectors[name] = append([]float64(nil), v...)
}

// Float returns the numeric argument name, or def when it is absent or
// not a number.
func (a Args) Float(name string, def float64) float64 {
	if v, ok := a.numbers[name]; ok {
		return v
	}
	return def
}

// Vec3 returns the three-component argument name, or def when it is absent.
// Shorter sequences keep the remaining components of def.
func (a Args) Vec3(name string, def math.Vec3) math.Vec3 {
	v, ok := a.vectors[name]
	if !ok {
		return def
	}
	out := def
	if len(v) > 0 {
		out.X = v[0]
	}
	if len(v) > 1 {
		out.Y = v[1]
	}
	if len(v) > 2 {
		out.Z = v[2]
	}
	return out
}

// Material is the frozen state of a material attached to an object.
type Material struct {
	Name string
	// DiffuseColor is RGBA in the 0-1 range.
	DiffuseColor [4]float64
}

// Object is the frozen state of the handle a primitive call returned.
type Object struct {
	Name      string
	Scale     math.Vec3
	Location  math.Vec3
	Rotation  math.Vec3
	Materials []Material
}

// FirstMaterial returns the material that decides the object's color.
func (o Object) FirstMaterial() (Material, bool) {
	if len(o.Materials) == 0 {
		return Material{}, false
	}
	return o.Materials[0], true
}

// Call is one intercepted primitive creation together with the final
// state of its object.
type Call struct {
	Kind   Kind
	Args   Args
	Object Object
}

// NewCall builds a call the way the sandbox does: location and rotation
// default to the origin and scale to one.
func NewCall(kind Kind, args Args) Call {
	return Call{
		Kind: kind,
		Args: args,
		Object: Object{
			Scale:    args.Vec3("scale", math.NewVec3One()),
			Location: args.Vec3("location", math.NewVec3Zero()),
			Rotation: args.Vec3("rotation", math.NewVec3Zero()),
		},
	}
}
