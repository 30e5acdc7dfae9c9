package engine_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/cadscene/engine"
	"github.com/spaghettifunk/cadscene/engine/core"
	"github.com/spaghettifunk/cadscene/engine/materials"
	"github.com/spaghettifunk/cadscene/engine/scene"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// noDotenv points LoadConfig at a dotenv file that does not exist.
func noDotenv(t *testing.T) string {
	return filepath.Join(t.TempDir(), "missing.env")
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := engine.LoadConfig("", noDotenv(t))
	require.NoError(t, err)
	assert.Equal(t, engine.DefaultApplicationConfig(), cfg)
	assert.Equal(t, scene.UpY, cfg.Up())
	assert.Equal(t, core.InfoLevel, cfg.Level())
}

func TestLoadConfig_TOML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "cadscene.toml", `
name = "Chair"
up_axis = "z"
log_level = "debug"
match_threshold = 5.5
workers = 2
output_dir = "out"
max_steps = 100000

[[palette]]
color = "#112233"
id = "global-material-navy-001"
label = "navy"
`)
	cfg, err := engine.LoadConfig(path, noDotenv(t))
	require.NoError(t, err)

	assert.Equal(t, "Chair", cfg.Name)
	assert.Equal(t, scene.UpZ, cfg.Up())
	assert.Equal(t, core.DebugLevel, cfg.Level())
	assert.Equal(t, 5.5, cfg.MatchThreshold)
	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, "out", cfg.OutputDir)
	assert.Equal(t, uint64(100000), cfg.MaxSteps)
	require.Len(t, cfg.Palette, 1)

	p, err := cfg.BuildPalette()
	require.NoError(t, err)
	require.Equal(t, 1, p.Len())
	assert.Equal(t, "navy", p.Entries()[0].Label)
}

func TestLoadConfig_UnknownKey(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bad.toml", "up_axiz = \"Y\"\n")
	_, err := engine.LoadConfig(path, noDotenv(t))
	assert.ErrorIs(t, err, engine.ErrInvalidConfig)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := engine.LoadConfig(filepath.Join(t.TempDir(), "nope.toml"), noDotenv(t))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadConfig_EnvironmentWins(t *testing.T) {
	path := writeFile(t, t.TempDir(), "cadscene.toml", "workers = 2\nup_axis = \"Y\"\n")
	t.Setenv("CADSCENE_WORKERS", "8")
	t.Setenv("CADSCENE_UP_AXIS", "Z")

	cfg, err := engine.LoadConfig(path, noDotenv(t))
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, scene.UpZ, cfg.Up())
}

func TestLoadConfig_Dotenv(t *testing.T) {
	dotenv := writeFile(t, t.TempDir(), ".env", "CADSCENE_OUTPUT_DIR=from-dotenv\nCADSCENE_MATCH_THRESHOLD=7\n")
	t.Cleanup(func() {
		os.Unsetenv("CADSCENE_OUTPUT_DIR")
		os.Unsetenv("CADSCENE_MATCH_THRESHOLD")
	})
	// A variable already in the environment is not overridden by the file.
	t.Setenv("CADSCENE_MATCH_THRESHOLD", "3")

	cfg, err := engine.LoadConfig("", dotenv)
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.OutputDir)
	assert.Equal(t, 3.0, cfg.MatchThreshold)
}

func TestLoadConfig_InvalidEnvironment(t *testing.T) {
	t.Setenv("CADSCENE_WORKERS", "many")
	_, err := engine.LoadConfig("", noDotenv(t))
	assert.ErrorIs(t, err, engine.ErrInvalidConfig)
}

func TestApplicationConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *engine.ApplicationConfig)
	}{
		{"up axis", func(c *engine.ApplicationConfig) { c.UpAxis = "X" }},
		{"log level", func(c *engine.ApplicationConfig) { c.LogLevel = "loud" }},
		{"threshold", func(c *engine.ApplicationConfig) { c.MatchThreshold = -1 }},
		{"workers", func(c *engine.ApplicationConfig) { c.Workers = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := engine.DefaultApplicationConfig()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), engine.ErrInvalidConfig)
		})
	}
	assert.NoError(t, engine.DefaultApplicationConfig().Validate())
}

func TestApplicationConfig_BuildPalette(t *testing.T) {
	cfg := engine.DefaultApplicationConfig()
	p, err := cfg.BuildPalette()
	require.NoError(t, err)
	assert.Equal(t, materials.DefaultPalette().Len(), p.Len())

	file := writeFile(t, t.TempDir(), "palette.toml", `
[[palette]]
color = "red"
id = "global-material-red-001"

[[palette]]
color = "0000ff"
id = "global-material-blue-001"
`)
	cfg.PaletteFile = file
	cfg.Palette = []materials.EntryConfig{{Color: "#ffffff", ID: "ignored"}}
	p, err = cfg.BuildPalette()
	require.NoError(t, err)
	require.Equal(t, 2, p.Len())
	assert.Equal(t, "global-material-red-001", p.Entries()[0].ID)

	cfg.PaletteFile = ""
	cfg.Palette = []materials.EntryConfig{{Color: "not-a-color", ID: "x"}}
	_, err = cfg.BuildPalette()
	assert.ErrorIs(t, err, materials.ErrInvalidColor)
}
