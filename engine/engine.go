package engine

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spaghettifunk/cadscene/engine/assets"
	"github.com/spaghettifunk/cadscene/engine/core"
	"github.com/spaghettifunk/cadscene/engine/materials"
	"github.com/spaghettifunk/cadscene/engine/resources"
	"github.com/spaghettifunk/cadscene/engine/resources/loaders"
	"github.com/spaghettifunk/cadscene/engine/scene"
	"github.com/spaghettifunk/cadscene/engine/systems"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is ready to convert
	EngineStageInitialized
	// Engine is watching directories
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
)

var ErrEngineStopped = errors.New("engine is shut down")

// OnConverted is called once per finished conversion, from a worker goroutine
// in batch mode.
type OnConverted func(path string, doc *scene.Document) error

// OnFailed is called when a conversion or its OnConverted hook fails.
type OnFailed func(path string, err error)

// Hooks receive conversion results; nil hooks are skipped.
type Hooks struct {
	FnOnConverted OnConverted
	FnOnFailed    OnFailed
}

// Result is the outcome of one batch entry.
type Result struct {
	Path     string
	Document *scene.Document
	Err      error
}

/**
 * @brief Engine owns the long-lived pieces around the converter: the worker
 * pool for batch runs, the asset watcher for watch mode, and metrics.
 */
type Engine struct {
	mu           sync.Mutex
	currentStage Stage

	config    *ApplicationConfig
	converter *Converter
	up        scene.UpAxis
	metrics   *core.Metrics
	jobSystem *systems.JobSystem
	hooks     Hooks
}

func New(cfg *ApplicationConfig, hooks Hooks) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultApplicationConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	palette, err := cfg.BuildPalette()
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}

	js, err := systems.NewJobSystem(cfg.Workers, cfg.Workers*2)
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}

	core.LogDebug("engine ready: %d workers, %d palette entries, up axis %s", js.Workers(), palette.Len(), cfg.Up())

	return &Engine{
		currentStage: EngineStageInitialized,
		config:       cfg,
		converter:    NewConverter(palette, cfg.MatchThreshold, cfg.MaxSteps),
		up:           cfg.Up(),
		metrics:      core.NewMetrics(),
		jobSystem:    js,
		hooks:        hooks,
	}, nil
}

func (e *Engine) Metrics() *core.Metrics {
	return e.metrics
}

func (e *Engine) stage() Stage {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.currentStage
}

func (e *Engine) currentConverter() *Converter {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.converter
}

// setPalette swaps the converter for one built on palette. Conversions
// already running finish with the previous palette.
func (e *Engine) setPalette(palette *materials.Palette) {
	c := NewConverter(palette, e.config.MatchThreshold, e.config.MaxSteps)
	e.mu.Lock()
	e.converter = c
	e.mu.Unlock()
}

// Convert converts source with the engine's palette and up axis.
func (e *Engine) Convert(source, name string) (*scene.Document, error) {
	clock := core.NewClock()
	clock.Start()
	doc, err := e.currentConverter().Convert(source, name, e.up)
	clock.Stop()

	count := 0
	if doc != nil {
		count = len(doc.Primitives)
	}
	e.metrics.Record(clock.Elapsed(), count, err)
	return doc, err
}

// ConvertFile loads a script and converts it. name overrides the file stem.
func (e *Engine) ConvertFile(path, name string) (*scene.Document, error) {
	res, err := (&loaders.ScriptLoader{}).Load(path)
	if err != nil {
		e.metrics.Record(0, 0, err)
		return nil, err
	}
	if name == "" {
		name = res.Name
	}
	doc, err := e.Convert(res.Data.(resources.ScriptResourceData).Source, name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

func (e *Engine) process(path, name string) (*scene.Document, error) {
	doc, err := e.ConvertFile(path, name)
	return doc, e.finish(path, doc, err)
}

// finish runs the hooks for one conversion outcome.
func (e *Engine) finish(path string, doc *scene.Document, err error) error {
	if err == nil && e.hooks.FnOnConverted != nil {
		err = e.hooks.FnOnConverted(path, doc)
	}
	if err != nil && e.hooks.FnOnFailed != nil {
		e.hooks.FnOnFailed(path, err)
	}
	return err
}

/**
 * @brief Converts every path on the worker pool. Each conversion is
 * independent; one failure does not stop the others.
 * @return one Result per path, in input order.
 */
func (e *Engine) ConvertBatch(paths []string) ([]Result, error) {
	if e.stage() >= EngineStageShuttingDown {
		return nil, ErrEngineStopped
	}

	results := make([]Result, len(paths))
	var wg sync.WaitGroup
	wg.Add(len(paths))
	for i, p := range paths {
		i, p := i, p
		results[i].Path = p
		err := e.jobSystem.Submit(systems.JobTask{
			Name: p,
			Run: func() error {
				doc, err := e.process(p, "")
				results[i].Document = doc
				results[i].Err = err
				return err
			},
			OnCompletionCallback: wg.Done,
		})
		if err != nil {
			results[i].Err = err
			wg.Done()
		}
	}
	wg.Wait()
	return results, nil
}

/**
 * @brief Converts every script under paths once, then reconverts scripts as
 * they are created or rewritten until ctx is done. paths may name
 * directories or single files. When a palette file is configured it is
 * watched too, and every known script is reconverted after it changes.
 */
func (e *Engine) Watch(ctx context.Context, paths ...string) error {
	e.mu.Lock()
	if e.currentStage != EngineStageInitialized {
		e.mu.Unlock()
		return fmt.Errorf("cannot watch from stage %d", e.currentStage)
	}
	e.currentStage = EngineStageRunning
	e.mu.Unlock()

	am, err := assets.NewAssetManager()
	if err != nil {
		return err
	}
	defer am.Shutdown()

	watched := append([]string{}, paths...)
	palettePath := ""
	if e.config.PaletteFile != "" {
		if palettePath, err = filepath.Abs(e.config.PaletteFile); err != nil {
			return err
		}
		watched = append(watched, palettePath)
	}
	if err := am.Initialize(watched...); err != nil {
		return err
	}

	initial := am.Assets(resources.ResourceTypeScript)
	core.LogInfo("watching %s (%d scripts)", strings.Join(paths, ", "), len(initial))
	for _, p := range initial {
		if err := e.submitWatched(ctx, am, p); err != nil {
			return ignoreDone(ctx, err)
		}
	}

	errs := am.Errors()
	for {
		select {
		case <-ctx.Done():
			return nil
		case path, ok := <-am.Changes():
			if !ok {
				return nil
			}
			core.LogInfo("%s changed", filepath.Base(path))
			err = nil
			switch resources.DetermineType(path) {
			case resources.ResourceTypeScript:
				err = e.submitWatched(ctx, am, path)
			case resources.ResourceTypePalette:
				err = e.reloadPalette(ctx, am, path, palettePath)
			}
			if err != nil {
				return ignoreDone(ctx, err)
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			core.LogWarn("watcher: %s", err)
		}
	}
}

// submitWatched queues the conversion of one watched script. It gives up
// when ctx is done before a worker frees up.
func (e *Engine) submitWatched(ctx context.Context, am *assets.AssetManager, path string) error {
	return e.jobSystem.SubmitContext(ctx, systems.JobTask{
		Name: path,
		Run: func() error {
			res, err := am.LoadAsset(path)
			if err != nil {
				return e.finish(path, nil, err)
			}
			doc, err := e.Convert(res.Data.(resources.ScriptResourceData).Source, res.Name)
			if err != nil {
				err = fmt.Errorf("%s: %w", path, err)
			}
			return e.finish(path, doc, err)
		},
	})
}

// reloadPalette swaps in the changed palette and reconverts every script.
// Palettes other than the configured one are ignored, and a palette that
// fails to load keeps the previous one in place.
func (e *Engine) reloadPalette(ctx context.Context, am *assets.AssetManager, path, configured string) error {
	if path != configured {
		return nil
	}
	res, err := am.LoadAsset(path)
	if err != nil {
		core.LogError("palette %s: %s", path, err)
		return nil
	}
	palette := res.Data.(*materials.Palette)
	e.setPalette(palette)
	core.LogInfo("palette reloaded (%d entries)", palette.Len())

	for _, p := range am.Assets(resources.ResourceTypeScript) {
		if err := e.submitWatched(ctx, am, p); err != nil {
			return err
		}
	}
	return nil
}

func ignoreDone(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return nil
	}
	return err
}

// Shutdown drains the worker pool and logs the collected metrics.
func (e *Engine) Shutdown() error {
	e.mu.Lock()
	if e.currentStage == EngineStageShuttingDown {
		e.mu.Unlock()
		return nil
	}
	e.currentStage = EngineStageShuttingDown
	e.mu.Unlock()

	if err := e.jobSystem.Shutdown(); err != nil {
		return err
	}
	conversions, failures, prims, avg := e.metrics.Snapshot()
	core.LogInfo("%d conversions, %d failed, %d primitives, %.2fms average", conversions, failures, prims, avg)
	return nil
}
