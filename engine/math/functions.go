package math

import m "math"

/** @brief A multiplier used to convert degrees to radians. */
const K_DEG2RAD_MULTIPLIER float64 = m.Pi / 180.0

/** @brief Smallest positive number where 1.0 + FLOAT_EPSILON != 0 */
const K_FLOAT_EPSILON float64 = 1e-9

// ------------------------------------------
// Vector 3
// ------------------------------------------

/**
 * @brief Creates and returns a new 3-element vector using the supplied values.
 */
func NewVec3(x, y, z float64) Vec3 {
	return Vec3{x, y, z}
}

// NewVec3FromSlice builds a vector from the first three values of s.
// Missing components are left at zero.
func NewVec3FromSlice(s []float64) Vec3 {
	var v Vec3
	if len(s) > 0 {
		v.X = s[0]
	}
	if len(s) > 1 {
		v.Y = s[1]
	}
	if len(s) > 2 {
		v.Z = s[2]
	}
	return v
}

/**
 * @brief Creates and returns a 3-component vector with all components set to 0.0.
 */
func NewVec3Zero() Vec3 {
	return Vec3{0.0, 0.0, 0.0}
}

/**
 * @brief Creates and returns a 3-component vector with all components set to 1.0.
 */
func NewVec3One() Vec3 {
	return Vec3{1.0, 1.0, 1.0}
}

// Add adds other to v and returns a copy of the result.
func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{
		v.X + other.X,
		v.Y + other.Y,
		v.Z + other.Z}
}

// Sub subtracts other from v and returns a copy of the result.
func (v Vec3) Sub(other Vec3) Vec3 {
	return Vec3{
		v.X - other.X,
		v.Y - other.Y,
		v.Z - other.Z}
}

// MulScalar multiplies all elements of v by scalar.
func (v Vec3) MulScalar(scalar float64) Vec3 {
	return Vec3{
		v.X * scalar,
		v.Y * scalar,
		v.Z * scalar}
}

// Negate flips the sign of every component.
func (v Vec3) Negate() Vec3 {
	return v.MulScalar(-1)
}

// MaxComponent returns the largest of the three components.
func (v Vec3) MaxComponent() float64 {
	return m.Max(v.X, m.Max(v.Y, v.Z))
}

// MaxXY returns the larger of the X and Y components.
func (v Vec3) MaxXY() float64 {
	return m.Max(v.X, v.Y)
}

// SwapYZ exchanges the second and third components. Applying it twice
// returns the original vector.
func (v Vec3) SwapYZ() Vec3 {
	return Vec3{v.X, v.Z, v.Y}
}

/**
 * @brief Compares all elements of v and other and ensures the difference
 * is less than tolerance.
 *
 * @param tolerance The difference tolerance. Typically K_FLOAT_EPSILON or similar.
 * @return True if within tolerance; otherwise false.
 */
func (v Vec3) Compare(other Vec3, tolerance float64) bool {
	if m.Abs(v.X-other.X) > tolerance {
		return false
	}

	if m.Abs(v.Y-other.Y) > tolerance {
		return false
	}

	if m.Abs(v.Z-other.Z) > tolerance {
		return false
	}

	return true
}

// Distance returns the euclidean distance between v and other.
func (v Vec3) Distance(other Vec3) float64 {
	d := v.Sub(other)
	return m.Sqrt(d.X*d.X + d.Y*d.Y + d.Z*d.Z)
}

// ToArray returns the components in x, y, z order.
func (v Vec3) ToArray() [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

// ------------------------------------------
// Extents
// ------------------------------------------

// NewExtents3DEmpty returns inverted extents that any Union call will replace.
func NewExtents3DEmpty() Extents3D {
	return Extents3D{
		Min: Vec3{m.Inf(1), m.Inf(1), m.Inf(1)},
		Max: Vec3{m.Inf(-1), m.Inf(-1), m.Inf(-1)},
	}
}

// NewExtents3DAround returns the box centered at center reaching half in each
// direction.
func NewExtents3DAround(center, half Vec3) Extents3D {
	return Extents3D{
		Min: center.Sub(half),
		Max: center.Add(half),
	}
}

// Union returns the smallest extents containing both e and other.
func (e Extents3D) Union(other Extents3D) Extents3D {
	return Extents3D{
		Min: Vec3{m.Min(e.Min.X, other.Min.X), m.Min(e.Min.Y, other.Min.Y), m.Min(e.Min.Z, other.Min.Z)},
		Max: Vec3{m.Max(e.Max.X, other.Max.X), m.Max(e.Max.Y, other.Max.Y), m.Max(e.Max.Z, other.Max.Z)},
	}
}

// Center returns the midpoint of the extents.
func (e Extents3D) Center() Vec3 {
	return Vec3{
		(e.Min.X + e.Max.X) / 2,
		(e.Min.Y + e.Max.Y) / 2,
		(e.Min.Z + e.Max.Z) / 2}
}

// IsEmpty reports whether the extents were never grown.
func (e Extents3D) IsEmpty() bool {
	return e.Min.X > e.Max.X || e.Min.Y > e.Max.Y || e.Min.Z > e.Max.Z
}

/**
 * @brief Converts the provided degrees to radians.
 */
func DegToRad(degrees float64) float64 {
	return degrees * K_DEG2RAD_MULTIPLIER
}
