package main

import (
	"errors"
	"flag"
	"fmt"
	"image/jpeg"
	"image/png"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/df07/go-scene-raytracer/pkg/loaders"
	"github.com/df07/go-scene-raytracer/pkg/renderer"
	"github.com/df07/go-scene-raytracer/pkg/scene"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// options holds the parsed command line
type options struct {
	sceneRef  string
	scenesDir string
	output    string
	dumpScene string
	verbose   bool
	list      bool
	config    renderer.Config
}

func parseArgs(args []string, stderr io.Writer) (*options, error) {
	opts := &options{config: renderer.DefaultConfig()}
	config := &opts.config

	fs := flag.NewFlagSet("raytracer", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.sceneRef, "scene", "cornell", "Built-in scene ID, scene file path, or scene name in -scenes-dir")
	fs.StringVar(&opts.scenesDir, "scenes-dir", "scenes", "Directory searched for JSON scene files")
	fs.StringVar(&opts.dumpScene, "dump-scene", "", "Write the scene description as JSON to this file ('-' for stdout) and exit")
	fs.BoolVar(&opts.list, "list", false, "List available scenes and exit")
	fs.BoolVar(&opts.verbose, "verbose", false, "Enable debug logging")
	fs.IntVar(&config.Width, "width", config.Width, "Image width in pixels; height follows the scene aspect ratio")
	fs.IntVar(&config.SamplesPerPixel, "samples", config.SamplesPerPixel, "Rays per pixel")
	fs.IntVar(&config.MaxBounces, "bounces", config.MaxBounces, "Maximum bounces per ray")
	fs.IntVar(&config.Workers, "workers", 0, "Worker goroutines (0 = one per CPU)")
	fs.Int64Var(&config.Seed, "seed", 0, "Random seed")
	fs.StringVar(&config.RecoverPath, "recover", "", "Resume from this checkpoint (.part) file")
	fs.BoolVar(&config.RecoverCorrupt, "recover-corrupt", false, "Keep the readable rows of a damaged checkpoint")
	fs.BoolVar(&config.Quiet, "quiet", false, "Hide the progress bar")
	fs.IntVar(&config.BarWidth, "bar-width", config.BarWidth, "Progress bar width in columns")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: raytracer [options] <output.png|.jpg|.bmp|.tif|.ppm>")
		fmt.Fprintln(stderr)
		fmt.Fprintln(stderr, "Options:")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	switch fs.NArg() {
	case 0:
	case 1:
		opts.output = fs.Arg(0)
	default:
		return nil, fmt.Errorf("expected one output file, got %q", fs.Args())
	}
	config.OutputPath = opts.output
	return opts, nil
}

func run(args []string, stdout, stderr io.Writer) error {
	opts, err := parseArgs(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return nil
	}
	if err != nil {
		return err
	}

	logger := newLogger(stderr, opts.verbose, opts.config.Quiet)

	if opts.list {
		return listScenes(stdout, opts.scenesDir)
	}

	desc, err := loadDescription(opts.sceneRef, opts.scenesDir)
	if err != nil {
		return err
	}
	if opts.dumpScene != "" {
		return dumpScene(desc, opts.dumpScene, stdout)
	}

	if opts.output == "" {
		return errors.New("no output file given")
	}
	encode, err := encoderFor(opts.output)
	if err != nil {
		return err
	}

	s, err := scene.Build(desc, scene.BuildOptions{
		Random: rand.New(rand.NewSource(opts.config.Seed)),
		Logger: logger,
	})
	if err != nil {
		return err
	}

	opts.config.ProgressOutput = stderr
	rt, err := renderer.NewRaytracer(s, opts.config, logger)
	if err != nil {
		return err
	}
	result, err := rt.Render()
	if err != nil {
		return err
	}

	if err := saveImage(opts.output, result, encode); err != nil {
		return err
	}
	if err := result.RemoveCheckpoint(); err != nil {
		logger.Warn("Checkpoint left behind", "path", result.CheckpointPath, "error", err)
	}

	printSummary(stdout, opts.output, result.Stats)
	return nil
}

func newLogger(w io.Writer, verbose, quiet bool) *slog.Logger {
	level := slog.LevelInfo
	switch {
	case verbose:
		level = slog.LevelDebug
	case quiet:
		level = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func isBuiltin(ref string) bool {
	for _, info := range scene.BuiltinScenes() {
		if info.ID == ref {
			return true
		}
	}
	return false
}

// loadDescription accepts a built-in ID, a path, or the base name of a file in scenesDir
func loadDescription(ref, scenesDir string) (*loaders.SceneFile, error) {
	if ref == "" {
		return nil, errors.New("no scene given")
	}
	if !isBuiltin(ref) && filepath.Ext(ref) == "" {
		if _, err := os.Stat(ref); err != nil {
			candidate := filepath.Join(scenesDir, ref+".json")
			if _, err := os.Stat(candidate); err == nil {
				ref = candidate
			}
		}
	}
	desc, err := scene.Load(ref)
	if err != nil {
		return nil, fmt.Errorf("failed to load scene %q: %w", ref, err)
	}
	return desc, nil
}

func listScenes(w io.Writer, scenesDir string) error {
	scenes, err := scene.ListAllScenes(scenesDir)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tTYPE\tDESCRIPTION")
	for _, info := range scenes {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", info.ID, info.DisplayName, info.Type, info.Description)
	}
	return tw.Flush()
}

func dumpScene(desc *loaders.SceneFile, path string, stdout io.Writer) error {
	if path == "-" {
		return desc.Encode(stdout)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := desc.Encode(file); err != nil {
		file.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return file.Close()
}

// encodeFunc writes a finished render in one image format
type encodeFunc func(w io.Writer, result *renderer.Result) error

func encoderFor(path string) (encodeFunc, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".png":
		return func(w io.Writer, r *renderer.Result) error { return png.Encode(w, r.Image()) }, nil
	case ".jpg", ".jpeg":
		return func(w io.Writer, r *renderer.Result) error {
			return jpeg.Encode(w, r.Image(), &jpeg.Options{Quality: 95})
		}, nil
	case ".bmp":
		return func(w io.Writer, r *renderer.Result) error { return bmp.Encode(w, r.Image()) }, nil
	case ".tif", ".tiff":
		return func(w io.Writer, r *renderer.Result) error {
			return tiff.Encode(w, r.Image(), &tiff.Options{Compression: tiff.Deflate})
		}, nil
	case ".ppm":
		return func(w io.Writer, r *renderer.Result) error {
			return writePPM(w, r.Width, r.Height, r.Pixels)
		}, nil
	default:
		return nil, fmt.Errorf("unsupported output format %q", ext)
	}
}

// writePPM writes binary (P6) PPM
func writePPM(w io.Writer, width, height int, pixels []byte) error {
	if _, err := fmt.Fprintf(w, "P6\n%d %d\n255\n", width, height); err != nil {
		return err
	}
	_, err := w.Write(pixels)
	return err
}

func saveImage(path string, result *renderer.Result, encode encodeFunc) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := encode(file, result); err != nil {
		file.Close()
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}

func printSummary(w io.Writer, output string, stats renderer.RenderStats) {
	p := message.NewPrinter(language.English)
	elapsed := int(stats.Duration.Seconds())
	p.Fprintf(w, "Completed in %d:%02d\n", elapsed/60, elapsed%60)
	p.Fprintf(w, "%dx%d pixels, %d rows rendered, %d recovered, %d samples (%.0f samples/s)\n",
		stats.Width, stats.Height, stats.RowsRendered, stats.RowsRecovered,
		stats.TotalSamples, stats.SamplesPerSecond())
	if stats.CheckpointFailures > 0 {
		p.Fprintf(w, "%d checkpoint writes failed\n", stats.CheckpointFailures)
	}
	fmt.Fprintf(w, "Render saved as %s\n", output)
}
