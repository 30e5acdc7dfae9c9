package materials

import (
	"errors"
	"fmt"
	gomath "math"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"

	m "github.com/spaghettifunk/cadscene/engine/math"
)

var ErrInvalidColor = errors.New("invalid color")

// RGB is an 8-bit color.
type RGB [3]uint8

// Hex returns the color as "#rrggbb" in lower case.
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2])
}

// Distance is the euclidean distance between c and other in 0-255 space.
func (c RGB) Distance(other RGB) float64 {
	a := m.NewVec3(float64(c[0]), float64(c[1]), float64(c[2]))
	b := m.NewVec3(float64(other[0]), float64(other[1]), float64(other[2]))
	return a.Distance(b)
}

// FromUnit converts 0-1 channels to 8-bit by clamping and truncating.
// NaN and infinite channels fail with ErrInvalidColor.
func FromUnit(r, g, b float64) (RGB, error) {
	for _, v := range [...]float64{r, g, b} {
		if gomath.IsNaN(v) || gomath.IsInf(v, 0) {
			return RGB{}, fmt.Errorf("%w: channel %v", ErrInvalidColor, v)
		}
	}
	return RGB{
		uint8(m.Clamp01(r) * 255),
		uint8(m.Clamp01(g) * 255),
		uint8(m.Clamp01(b) * 255),
	}, nil
}

// ParseColor accepts "#RRGGBB", "RRGGBB" or a CSS color name.
func ParseColor(s string) (RGB, error) {
	s = strings.TrimSpace(s)
	if c, ok := colornames.Map[strings.ToLower(s)]; ok {
		return RGB{c.R, c.G, c.B}, nil
	}
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 {
		return RGB{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	return RGB{uint8(v >> 16), uint8(v >> 8), uint8(v)}, nil
}

// Entry is one global material of the palette.
type Entry struct {
	Color RGB
	// ID is the opaque global material id emitted as globalMaterialUuid.
	ID string
	// Label is a human name, used only for logging.
	Label string
}

/**
 * @brief Palette is an ordered, read-only list of global materials. The order
 * decides ties when two entries are equally close to a color.
 */
type Palette struct {
	entries []Entry
}

// NewPalette copies entries; the palette never changes afterwards.
func NewPalette(entries ...Entry) *Palette {
	return &Palette{entries: append([]Entry(nil), entries...)}
}

// DefaultPalette is the built-in global material set.
func DefaultPalette() *Palette {
	return NewPalette(
		Entry{Color: RGB{0x8B, 0x45, 0x13}, ID: "global-material-wood-001", Label: "wood"},
		Entry{Color: RGB{0x7D, 0x7D, 0x7D}, ID: "global-material-metal-001", Label: "metal"},
		Entry{Color: RGB{0x65, 0x43, 0x21}, ID: "global-material-earth-001", Label: "earth"},
		Entry{Color: RGB{0x70, 0x80, 0x90}, ID: "global-material-stone-001", Label: "stone"},
		Entry{Color: RGB{0xFF, 0xFF, 0xFF}, ID: "global-material-plastic-001", Label: "plastic"},
		Entry{Color: RGB{0xFF, 0xD7, 0x00}, ID: "global-material-gold-001", Label: "gold"},
		Entry{Color: RGB{0xB8, 0x73, 0x33}, ID: "global-material-copper-001", Label: "copper"},
		Entry{Color: RGB{0x2F, 0x2F, 0x2F}, ID: "global-material-rubber-001", Label: "rubber"},
		Entry{Color: RGB{0xF5, 0xF5, 0xDC}, ID: "global-material-ceramic-001", Label: "ceramic"},
	)
}

// Entries returns a copy of the palette in declaration order.
func (p *Palette) Entries() []Entry {
	return append([]Entry(nil), p.entries...)
}

func (p *Palette) Len() int {
	return len(p.entries)
}

// Exact returns the entry whose color equals c.
func (p *Palette) Exact(c RGB) (Entry, bool) {
	for _, e := range p.entries {
		if e.Color == c {
			return e, true
		}
	}
	return Entry{}, false
}

// Nearest returns the closest entry and its distance. The first entry wins
// a tie. ok is false for an empty palette.
func (p *Palette) Nearest(c RGB) (e Entry, distance float64, ok bool) {
	for i, candidate := range p.entries {
		d := c.Distance(candidate.Color)
		if i == 0 || d < distance {
			e, distance, ok = candidate, d, true
		}
	}
	return e, distance, ok
}

// EntryConfig is the file form of an Entry, as found in TOML palette files
// and the application config.
type EntryConfig struct {
	Color string `toml:"color"`
	ID    string `toml:"id"`
	Label string `toml:"label"`
}

// BuildPalette parses every entry, keeping declaration order.
func BuildPalette(cfgs []EntryConfig) (*Palette, error) {
	entries := make([]Entry, 0, len(cfgs))
	for i, c := range cfgs {
		rgb, err := ParseColor(c.Color)
		if err != nil {
			return nil, fmt.Errorf("palette entry %d: %w", i, err)
		}
		if c.ID == "" {
			return nil, fmt.Errorf("palette entry %d: missing id", i)
		}
		label := c.Label
		if label == "" {
			label = c.ID
		}
		entries = append(entries, Entry{Color: rgb, ID: c.ID, Label: label})
	}
	return NewPalette(entries...), nil
}
