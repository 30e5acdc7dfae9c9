package math

import (
	"encoding/json"
	"fmt"
)

// MarshalJSON writes the vector as a [x, y, z] array.
func (v Vec3) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.ToArray())
}

// UnmarshalJSON reads a [x, y, z] array.
func (v *Vec3) UnmarshalJSON(data []byte) error {
	var arr []float64
	if err := json.Unmarshal(data, &arr); err != nil {
		return err
	}
	if len(arr) != 3 {
		return fmt.Errorf("vec3: expected 3 components, got %d", len(arr))
	}
	*v = NewVec3FromSlice(arr)
	return nil
}
