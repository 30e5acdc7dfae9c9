package engine

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml/v2"

	"github.com/spaghettifunk/cadscene/engine/core"
	"github.com/spaghettifunk/cadscene/engine/materials"
	"github.com/spaghettifunk/cadscene/engine/resources/loaders"
	"github.com/spaghettifunk/cadscene/engine/scene"
)

// EnvPrefix prefixes every environment override, e.g. CADSCENE_UP_AXIS.
const EnvPrefix = "CADSCENE"

var ErrInvalidConfig = errors.New("invalid configuration")

type ApplicationConfig struct {
	// Document name when converting a single script with no explicit name.
	Name string `toml:"name" envconfig:"NAME"`
	// Target up axis, "Y" or "Z".
	UpAxis string `toml:"up_axis" envconfig:"UP_AXIS"`
	// debug, info, warn or error.
	LogLevel string `toml:"log_level" envconfig:"LOG_LEVEL"`
	// Largest RGB distance, exclusive, at which a color snaps to the palette.
	MatchThreshold float64 `toml:"match_threshold" envconfig:"MATCH_THRESHOLD"`
	// Batch conversion workers.
	Workers int `toml:"workers" envconfig:"WORKERS"`
	// Where documents are written; stdout when empty and there is one input.
	OutputDir string `toml:"output_dir" envconfig:"OUTPUT_DIR"`
	// Interpreter step budget per script; zero is unlimited.
	MaxSteps uint64 `toml:"max_steps" envconfig:"MAX_STEPS"`
	// TOML file of [[palette]] entries; takes precedence over Palette.
	PaletteFile string `toml:"palette_file" envconfig:"PALETTE_FILE"`
	// Inline palette entries.
	Palette []materials.EntryConfig `toml:"palette" ignored:"true"`
}

func DefaultApplicationConfig() *ApplicationConfig {
	return &ApplicationConfig{
		Name:           "",
		UpAxis:         string(scene.UpY),
		LogLevel:       "info",
		MatchThreshold: materials.DefaultMatchThreshold,
		Workers:        4,
	}
}

/**
 * @brief Builds the configuration from, in increasing priority: built-in
 * defaults, the TOML file at path (skipped when empty), the dotenv files
 * (".env" when none are given; missing files are ignored) and CADSCENE_*
 * environment variables.
 */
func LoadConfig(path string, dotenvFiles ...string) (*ApplicationConfig, error) {
	cfg := DefaultApplicationConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(cfg); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, path, err)
		}
	}

	if len(dotenvFiles) == 0 {
		dotenvFiles = []string{".env"}
	}
	for _, f := range dotenvFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, f, err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *ApplicationConfig) Validate() error {
	if _, err := scene.ParseUpAxis(c.UpAxis); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if _, err := core.ParseLogLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: log level: %w", ErrInvalidConfig, err)
	}
	if c.MatchThreshold < 0 {
		return fmt.Errorf("%w: negative match threshold %v", ErrInvalidConfig, c.MatchThreshold)
	}
	if c.Workers < 1 {
		return fmt.Errorf("%w: workers must be at least 1, got %d", ErrInvalidConfig, c.Workers)
	}
	return nil
}

// Up returns the parsed up axis; call after Validate.
func (c *ApplicationConfig) Up() scene.UpAxis {
	up, _ := scene.ParseUpAxis(c.UpAxis)
	return up
}

// Level returns the parsed log level; call after Validate.
func (c *ApplicationConfig) Level() core.LogLevel {
	lvl, err := core.ParseLogLevel(c.LogLevel)
	if err != nil {
		return core.InfoLevel
	}
	return lvl
}

// BuildPalette picks the palette file, then inline entries, then the
// built-in default.
func (c *ApplicationConfig) BuildPalette() (*materials.Palette, error) {
	if c.PaletteFile != "" {
		res, err := (&loaders.PaletteLoader{}).Load(c.PaletteFile)
		if err != nil {
			return nil, err
		}
		return res.Data.(*materials.Palette), nil
	}
	if len(c.Palette) > 0 {
		return materials.BuildPalette(c.Palette)
	}
	return materials.DefaultPalette(), nil
}
