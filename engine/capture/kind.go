package capture

import "strings"

// Kind is the primitive name as it appears in bpy.ops.mesh.primitive_<kind>_add.
type Kind string

const (
	KindSphere   Kind = "sphere"
	KindUVSphere Kind = "uv_sphere"
	KindCylinder Kind = "cylinder"
	KindCube     Kind = "cube"
	KindTorus    Kind = "torus"
	KindCone     Kind = "cone"
	KindPlane    Kind = "plane"
)

// SupportedKinds lists every kind the mapper knows how to convert.
var SupportedKinds = []Kind{
	KindCylinder,
	KindUVSphere,
	KindSphere,
	KindCube,
	KindTorus,
	KindCone,
	KindPlane,
}

// Supported reports whether k is one of SupportedKinds.
func (k Kind) Supported() bool {
	for _, s := range SupportedKinds {
		if s == k {
			return true
		}
	}
	return false
}

const (
	primitivePrefix = "primitive_"
	primitiveSuffix = "_add"
)

// kindFromOperator extracts the kind from an operator name such as
// "primitive_uv_sphere_add". ok is false for any other operator.
func kindFromOperator(op string) (Kind, bool) {
	if !strings.HasPrefix(op, primitivePrefix) || !strings.HasSuffix(op, primitiveSuffix) {
		return "", false
	}
	k := strings.TrimSuffix(strings.TrimPrefix(op, primitivePrefix), primitiveSuffix)
	if k == "" {
		return "", false
	}
	return Kind(k), true
}
