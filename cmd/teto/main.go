package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/kazuvin/teto/internal/assets"
	"github.com/kazuvin/teto/internal/compiler"
	"github.com/kazuvin/teto/internal/config"
	"github.com/kazuvin/teto/internal/effects"
	"github.com/kazuvin/teto/internal/mediabackend"
	"github.com/kazuvin/teto/internal/paralleldriver"
	"github.com/kazuvin/teto/internal/project"
	"github.com/kazuvin/teto/internal/script"
	"github.com/kazuvin/teto/internal/ttscache"
	"github.com/kazuvin/teto/internal/ttsprovider"
	"github.com/kazuvin/teto/pkg/logger"
)

// teto is a thin CLI over the compiler/pipeline libraries: read a
// script, compile every declared output, render them under a bounded
// worker pool, print the resulting paths. It demonstrates library
// wiring; it is not an HTTP API.
func main() {
	var (
		scriptPath  = flag.String("script", "", "path to a script JSON file")
		outDir      = flag.String("out", "./output", "directory rendered outputs are written to")
		verbose     = flag.Bool("verbose", false, "mark renders verbose (ffmpeg stderr is logged at debug level either way)")
		showVersion = flag.Bool("version", false, "show version information")
	)
	flag.Parse()

	if *showVersion {
		fmt.Println("teto (dev)")
		return
	}

	if *scriptPath == "" {
		fmt.Fprintln(os.Stderr, "usage: teto -script path/to/script.json [-out ./output]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewFromConfig(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, log, *scriptPath, *outDir, *verbose); err != nil {
		log.WithError(err).Error("render failed")
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log logger.Logger, scriptPath, outDir string, verbose bool) error {
	data, err := os.ReadFile(scriptPath)
	if err != nil {
		return fmt.Errorf("read script: %w", err)
	}

	s, err := script.Decode(data)
	if err != nil {
		return fmt.Errorf("decode script: %w", err)
	}

	cache, err := ttscache.New(cfg.Cache.Root, log)
	if err != nil {
		return fmt.Errorf("open tts cache: %w", err)
	}

	provider, err := buildProvider(cfg, log)
	if err != nil {
		return err
	}

	resolver, err := buildResolver(cfg, outDir, log)
	if err != nil {
		return err
	}

	registry := effects.NewRegistry()
	presets := effects.NewPresetRegistry()

	c := compiler.New(cache, provider, resolver, registry, presets, log)
	c.NarrationConcurrency = cfg.Job.Workers

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	results, err := c.CompileAll(ctx, s, outDir)
	if err != nil {
		return fmt.Errorf("compile: %w", err)
	}

	backend := mediabackend.NewFFmpeg(cfg.FFmpeg.BinaryPath, cfg.FFmpeg.FFprobePath, log)
	driver := paralleldriver.New(backend, registry, cfg.Job.Workers, log)

	projs := make([]*project.Project, len(results))
	for i, r := range results {
		projs[i] = r.Project
	}

	renderResults := driver.RunAll(ctx, projs, verbose, func(i int, proj *project.Project, renderErr error) {
		if renderErr != nil {
			log.WithField("output", filepath.Base(proj.Output.Path)).WithError(renderErr).Error("render failed")
			return
		}
		log.WithField("output", proj.Output.Path).Info("render complete")
	})

	if !paralleldriver.Succeeded(renderResults) {
		return fmt.Errorf("one or more outputs failed to render")
	}

	for _, r := range renderResults {
		fmt.Println(r.Project.Output.Path)
	}
	return nil
}

func buildProvider(cfg *config.Config, log logger.Logger) (ttsprovider.Provider, error) {
	switch cfg.TTS.Provider {
	case "mock":
		return ttsprovider.NewMock(), nil
	default:
		apiKey := os.Getenv(cfg.TTS.APIKeyEnv)
		if apiKey == "" {
			return nil, fmt.Errorf("missing TTS API key in env var %s", cfg.TTS.APIKeyEnv)
		}
		return ttsprovider.NewRetrying(ttsprovider.NewOpenAI(apiKey, log), log), nil
	}
}

func buildResolver(cfg *config.Config, outDir string, log logger.Logger) (assets.Resolver, error) {
	switch cfg.Assets.Provider {
	case "gemini":
		apiKey := os.Getenv(cfg.Assets.APIKeyEnv)
		if apiKey == "" {
			return nil, fmt.Errorf("missing asset generation API key in env var %s", cfg.Assets.APIKeyEnv)
		}
		return assets.NewGemini(apiKey, outDir, log), nil
	default:
		return assets.NewLocal(), nil
	}
}
