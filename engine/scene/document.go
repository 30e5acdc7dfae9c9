package scene

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spaghettifunk/cadscene/engine/materials"
	"github.com/spaghettifunk/cadscene/engine/primitives"
)

var ErrInvalidUpAxis = errors.New("invalid up axis")

// UpAxis names the world axis that points up in the emitted document.
type UpAxis string

const (
	UpY UpAxis = "Y"
	UpZ UpAxis = "Z"
)

// ParseUpAxis accepts y or z in any case.
func ParseUpAxis(s string) (UpAxis, error) {
	switch UpAxis(strings.ToUpper(strings.TrimSpace(s))) {
	case UpY:
		return UpY, nil
	case UpZ:
		return UpZ, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidUpAxis, s)
}

func (u UpAxis) Valid() bool {
	return u == UpY || u == UpZ
}

/**
 * @brief Document is the renderer-agnostic result of one conversion.
 */
type Document struct {
	Name       string              `json:"name"`
	UpAxis     UpAxis              `json:"upAxis"`
	Primitives []primitives.Record `json:"primitives"`
	Materials  []materials.Local   `json:"materials,omitempty"`
}

// Stats summarizes a document for logging.
type Stats struct {
	Primitives      int
	ByType          map[primitives.Type]int
	GlobalMaterials int
	LocalMaterials  int
	Untextured      int
}

func (d *Document) Stats() Stats {
	s := Stats{
		Primitives:     len(d.Primitives),
		ByType:         make(map[primitives.Type]int),
		LocalMaterials: len(d.Materials),
	}
	for _, p := range d.Primitives {
		s.ByType[p.Type]++
		switch {
		case p.GlobalMaterialUUID != "":
			s.GlobalMaterials++
		case p.ObjectMaterialUUID == "":
			s.Untextured++
		}
	}
	return s
}

func (s Stats) String() string {
	types := make([]string, 0, len(s.ByType))
	for t, n := range s.ByType {
		types = append(types, fmt.Sprintf("%s=%d", t, n))
	}
	sort.Strings(types)
	return fmt.Sprintf("%d primitives [%s], %d on global materials, %d local materials, %d without material",
		s.Primitives, strings.Join(types, " "), s.GlobalMaterials, s.LocalMaterials, s.Untextured)
}
