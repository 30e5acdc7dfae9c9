/*
cadscene converts procedural bpy scene scripts into renderer-agnostic
JSON scene documents.

	cadscene [flags] input...

Inputs are script files or directories of scripts. A single input without
-o is written to stdout; otherwise each document is written to
<output dir>/<script stem>.json, or to the -o path when it names a .json
file and there is exactly one input.
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spaghettifunk/cadscene/engine"
	"github.com/spaghettifunk/cadscene/engine/core"
	"github.com/spaghettifunk/cadscene/engine/resources"
	"github.com/spaghettifunk/cadscene/engine/scene"
)

type flags struct {
	output   string
	name     string
	up       string
	config   string
	logLevel string
	workers  int
	watch    bool
}

func parseFlags(args []string) (*flags, []string, map[string]bool, error) {
	f := &flags{}
	fset := flag.NewFlagSet("cadscene", flag.ContinueOnError)
	fset.Usage = func() {
		fmt.Fprintf(fset.Output(), "usage: cadscene [flags] input...\n")
		fset.PrintDefaults()
	}
	fset.StringVar(&f.output, "o", "", "output file (single input) or directory")
	fset.StringVar(&f.name, "name", "", "document name; defaults to the script file name")
	fset.StringVar(&f.up, "up", "", "up axis of the output, y or z")
	fset.StringVar(&f.config, "config", "", "TOML configuration file")
	fset.StringVar(&f.logLevel, "log-level", "", "debug, info, warn or error")
	fset.IntVar(&f.workers, "workers", 0, "number of concurrent conversions")
	fset.BoolVar(&f.watch, "watch", false, "keep converting scripts as they change")

	if err := fset.Parse(args); err != nil {
		return nil, nil, nil, err
	}
	set := make(map[string]bool)
	fset.Visit(func(fl *flag.Flag) { set[fl.Name] = true })
	return f, fset.Args(), set, nil
}

// applyFlags overrides config values with the flags given on the command line.
func applyFlags(cfg *engine.ApplicationConfig, f *flags, set map[string]bool) error {
	if set["name"] {
		cfg.Name = f.name
	}
	if set["up"] {
		cfg.UpAxis = f.up
	}
	if set["log-level"] {
		cfg.LogLevel = f.logLevel
	}
	if set["workers"] {
		cfg.Workers = f.workers
	}
	return cfg.Validate()
}

// expandInputs replaces directories with the scripts they contain.
func expandInputs(inputs []string) ([]string, error) {
	var paths []string
	for _, in := range inputs {
		info, err := os.Stat(in)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			paths = append(paths, in)
			continue
		}
		err = filepath.WalkDir(in, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && resources.DetermineType(p) == resources.ResourceTypeScript {
				paths = append(paths, p)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return paths, nil
}

// outputFor decides where the document for input goes; "" means stdout.
func outputFor(output, configDir string, single bool, input string) string {
	if output != "" {
		if single && strings.EqualFold(filepath.Ext(output), ".json") {
			return output
		}
		return engine.OutputPath(output, input)
	}
	if configDir != "" {
		return engine.OutputPath(configDir, input)
	}
	if single {
		return ""
	}
	return engine.OutputPath(filepath.Dir(input), input)
}

func run(ctx context.Context, args []string) error {
	f, inputs, set, err := parseFlags(args)
	if err != nil {
		return err
	}
	if len(inputs) == 0 {
		return errors.New("no input given")
	}

	cfg, err := engine.LoadConfig(f.config)
	if err != nil {
		return err
	}
	if err := applyFlags(cfg, f, set); err != nil {
		return err
	}
	core.SetLogLevel(cfg.Level())

	paths, err := expandInputs(inputs)
	if err != nil {
		return err
	}
	single := len(inputs) == 1 && len(paths) == 1 && !f.watch

	if single {
		e, err := engine.New(cfg, engine.Hooks{})
		if err != nil {
			return err
		}
		defer e.Shutdown()

		doc, err := e.ConvertFile(paths[0], cfg.Name)
		if err != nil {
			return err
		}
		out := outputFor(f.output, cfg.OutputDir, true, paths[0])
		if out == "" {
			return engine.WriteDocument(os.Stdout, doc)
		}
		if err := engine.WriteDocumentFile(out, doc); err != nil {
			return err
		}
		core.LogInfo("%s -> %s (%s)", paths[0], out, doc.Stats())
		return nil
	}

	hooks := engine.Hooks{
		FnOnConverted: func(path string, doc *scene.Document) error {
			out := outputFor(f.output, cfg.OutputDir, false, path)
			if err := engine.WriteDocumentFile(out, doc); err != nil {
				return err
			}
			core.LogInfo("%s -> %s (%s)", path, out, doc.Stats())
			return nil
		},
		FnOnFailed: func(path string, err error) {
			core.LogError("%s: %s", path, err)
		},
	}

	e, err := engine.New(cfg, hooks)
	if err != nil {
		return err
	}
	defer e.Shutdown()

	if f.watch {
		return e.Watch(ctx, inputs...)
	}

	results, err := e.ConvertBatch(paths)
	if err != nil {
		return err
	}
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d conversions failed", failed, len(results))
	}
	return nil
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// signal channel to capture system calls
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)

	// start shutdown goroutine
	go func() {
		// capture sigterm and other system call here
		<-sigCh
		cancel()
	}()

	if err := run(ctx, os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		core.LogFatal(err.Error())
	}
}
