package scene

import (
	"github.com/spaghettifunk/cadscene/engine/math"
	"github.com/spaghettifunk/cadscene/engine/primitives"
)

// Bounds is the union of every record's box. ok is false when there are no
// records.
func Bounds(records []primitives.Record) (e math.Extents3D, ok bool) {
	if len(records) == 0 {
		return e, false
	}
	e = math.NewExtents3DEmpty()
	for _, r := range records {
		e = e.Union(r.Bounds())
	}
	return e, true
}

// Center moves every record so the union box is centered on the origin.
func Center(records []primitives.Record) {
	e, ok := Bounds(records)
	if !ok {
		return
	}
	offset := e.Center().Negate()
	for i := range records {
		records[i].Transform.Position = records[i].Transform.Position.Add(offset)
	}
}

// SwapYZ exchanges the second and third components of every position and
// rotation. It is its own inverse.
func SwapYZ(records []primitives.Record) {
	for i := range records {
		t := &records[i].Transform
		t.Position = t.Position.SwapYZ()
		t.Rotation = t.Rotation.SwapYZ()
	}
}

/**
 * @brief Centers the records and remaps them to the requested up axis in place.
 * Records are produced Z-up; UpY swaps Y and Z after centering.
 */
func Normalize(records []primitives.Record, up UpAxis) {
	if len(records) == 0 {
		return
	}
	Center(records)
	if up == UpY {
		SwapYZ(records)
	}
}
