package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/tj/go-spin"

	"github.com/bsaid97/go-buffer-overlap/batch"
	"github.com/bsaid97/go-buffer-overlap/config"
)

// Options are the command-line flags. Pointer fields override the
// configuration file only when given explicitly.
type Options struct {
	ConfigFile string   `short:"c" long:"config"        env:"OVERLAP_CONFIG"        description:"Path to YAML configuration file"`
	Input      string   `short:"i" long:"input"         env:"OVERLAP_INPUT"         description:"Batch items JSON file, - for stdin"         default:"-"`
	Output     string   `short:"o" long:"output"        env:"OVERLAP_OUTPUT"        description:"Result records JSON file, - for stdout"     default:"-"`
	BufferM    *float64 `short:"b" long:"buffer"        env:"OVERLAP_BUFFER_M"      description:"Buffer distance in meters"`
	Workers    *int     `short:"w" long:"workers"       env:"OVERLAP_WORKERS"       description:"Parallel workers, 0 for one per CPU"`
	QuadSegs   *int     `long:"quad-segments"           env:"OVERLAP_QUAD_SEGMENTS" description:"Segments per quarter circle in buffer arcs"`
	OutDir     string   `short:"d" long:"out-dir"       env:"OVERLAP_OUT_DIR"       description:"Directory for per-item GeoJSON artifacts"`
	Shapefile  bool     `long:"shp"                     env:"OVERLAP_SHAPEFILE"     description:"Also export overlap pieces as shapefiles (requires --out-dir)"`
	Pretty     bool     `long:"pretty"                                              description:"Indent the output JSON"`
	LogLevel   string   `long:"log-level"               env:"OVERLAP_LOG_LEVEL"     description:"Log level" choice:"trace" choice:"debug" choice:"info" choice:"warn" choice:"error"`
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	// stdout carries the result records; everything human-facing goes to
	// stderr.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	applyFlags(cfg, &opts)
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	level, _ := zerolog.ParseLevel(cfg.LogLevel)
	zerolog.SetGlobalLevel(level)

	items, err := readInput(opts.Input)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read batch input")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().
		Int("items", len(items)).
		Float64("buffer_m", cfg.BufferM).
		Int("workers", cfg.Workers).
		Msg("Starting batch")

	runner := batch.Runner{Workers: cfg.Workers, BufferM: cfg.BufferM, QuadSegs: cfg.QuadSegments}
	stopSpinner := startSpinner()
	outcomes := runner.Run(ctx, items)
	stopSpinner()

	if err := writeOutput(opts.Output, outcomes, cfg.Pretty); err != nil {
		log.Fatal().Err(err).Msg("Failed to write batch output")
	}

	if cfg.OutDir != "" {
		for _, o := range outcomes {
			if o.Err != nil {
				continue
			}
			if err := batch.WriteArtifacts(cfg.OutDir, o.Record, cfg.Shapefile); err != nil {
				log.Fatal().Err(err).Msg("Failed to write artifacts")
			}
		}
	}

	failed := 0
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
		}
	}
	log.Info().
		Int("items", len(items)).
		Int("failed", failed).
		Msg("Batch finished")
}

// applyFlags lets explicit command-line values override the file.
func applyFlags(cfg *config.Config, opts *Options) {
	if opts.BufferM != nil {
		cfg.BufferM = *opts.BufferM
	}
	if opts.Workers != nil {
		cfg.Workers = *opts.Workers
	}
	if opts.QuadSegs != nil {
		cfg.QuadSegments = *opts.QuadSegs
	}
	if opts.OutDir != "" {
		cfg.OutDir = opts.OutDir
	}
	if opts.Shapefile {
		cfg.Shapefile = true
	}
	if opts.Pretty {
		cfg.Pretty = true
	}
	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}
}

func readInput(path string) ([]json.RawMessage, error) {
	r := io.Reader(os.Stdin)
	if path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	return batch.ReadItems(r)
}

func writeOutput(path string, outcomes []batch.Outcome, pretty bool) error {
	var data []byte
	var err error
	if pretty {
		data, err = json.MarshalIndent(outcomes, "", "  ")
	} else {
		data, err = json.Marshal(outcomes)
	}
	if err != nil {
		return err
	}
	data = append(data, '\n')

	if path == "" || path == "-" {
		_, err = os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// startSpinner animates on stderr while the batch runs, only when stderr
// is a terminal so piped runs stay clean. The returned func stops it.
func startSpinner() func() {
	if !isatty.IsTerminal(os.Stderr.Fd()) {
		return func() {}
	}

	s := spin.New()
	done := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				fmt.Fprint(os.Stderr, "\r              \r")
				return
			case <-ticker.C:
				fmt.Fprintf(os.Stderr, "\r%s processing", s.Next())
			}
		}
	}()
	return func() {
		close(done)
		<-finished
	}
}
