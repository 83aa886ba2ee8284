package main

import (
	"context"
	"flag"
	"fmt"
	"image/jpeg"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"neurovolume/pkg/config"
	"neurovolume/pkg/fetch"
	"neurovolume/pkg/nifti"
	"neurovolume/pkg/volume"
)

func main() {
	configPath := flag.String("config", "neurovolume.yaml", "Path to YAML configuration file")
	timeout := flag.Duration("timeout", 0, "Fetch timeout override (default: from config)")
	sliceDir := flag.String("slice-dir", "", "Directory to save mid-volume slices along each axis (optional)")
	flag.Parse()

	inputs := flag.Args()
	if len(inputs) == 0 {
		fmt.Fprintln(os.Stderr, "usage: neurovolume [flags] <file-or-url> ...")
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	fetchTimeout := cfg.FetchTimeout()
	if *timeout > 0 {
		fetchTimeout = *timeout
	}

	// Ctrl-C cancels in-flight fetches; the decoder itself runs to
	// completion once bytes are in hand.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Interleaved reports from concurrent decodes would be unreadable,
	// so each goroutine prints its whole report under one lock.
	var printMu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	start := time.Now()
	for _, input := range inputs {
		input := input
		g.Go(func() error {
			data, err := loadInput(gctx, input, fetchTimeout, cfg, len(inputs) == 1)
			if err != nil {
				return fmt.Errorf("%s: %w", input, err)
			}
			if cfg.Decode.MaxInputBytes > 0 && int64(len(data)) > cfg.Decode.MaxInputBytes {
				return fmt.Errorf("%s: input is %s, limit is %s", input,
					humanize.Bytes(uint64(len(data))), humanize.Bytes(uint64(cfg.Decode.MaxInputBytes)))
			}

			vol, diags, err := nifti.Decode(data)
			if err != nil {
				return fmt.Errorf("%s: %w", input, err)
			}

			printMu.Lock()
			report(input, len(data), vol, diags, cfg)
			printMu.Unlock()

			if *sliceDir != "" {
				if err := saveMidSlices(vol, *sliceDir, input); err != nil {
					log.Printf("Warning: failed to save slices for %s: %v", input, err)
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		log.Fatalf("Decode failed: %v", err)
	}

	if cfg.Output.Verbose {
		fmt.Printf("\nProcessed %d input(s) in %.2f seconds\n", len(inputs), time.Since(start).Seconds())
	}
}

// loadInput reads a local file or fetches a URL. Progress is only reported
// for single-input runs so concurrent transfers don't fight over the line.
func loadInput(ctx context.Context, input string, timeout time.Duration, cfg *config.Config, single bool) ([]byte, error) {
	if !strings.HasPrefix(input, "http://") && !strings.HasPrefix(input, "https://") {
		return os.ReadFile(input)
	}

	opts := fetch.Options{Timeout: timeout}
	if cfg.Fetch.ReportProgress && single {
		opts.OnProgress = func(received, total uint64) {
			fmt.Printf("\rDownloading: %s / %s", humanize.Bytes(received), humanize.Bytes(total))
			if received == total {
				fmt.Println()
			}
		}
	}
	return fetch.Fetch(ctx, input, opts)
}

// report prints the decoded volume's metadata and intensity summary.
func report(input string, inputSize int, vol *volume.Volume, diags []nifti.Diagnostic, cfg *config.Config) {
	fmt.Printf("\n%s (%s)\n", input, humanize.Bytes(uint64(inputSize)))
	fmt.Printf("================================\n")
	fmt.Printf("Dimensions:  %d x %d x %d voxels\n", vol.Dimensions[0], vol.Dimensions[1], vol.Dimensions[2])
	if vol.HasSpacing {
		fmt.Printf("Spacing:     %.3f x %.3f x %.3f mm\n", vol.VoxelSpacing[0], vol.VoxelSpacing[1], vol.VoxelSpacing[2])
	} else {
		fmt.Printf("Spacing:     not specified\n")
	}
	fmt.Printf("Datatype:    %s\n", nifti.Datatype(vol.DatatypeCode))
	if vol.Description != "" {
		fmt.Printf("Description: %s\n", vol.Description)
	}
	fmt.Printf("Intensity:   min %.4f, max %.4f (rescaled units)\n", vol.Stats.Min, vol.Stats.Max)
	fmt.Printf("Voxels:      %s total, %s non-zero\n",
		humanize.Comma(int64(vol.Stats.TotalVoxels)), humanize.Comma(int64(vol.Stats.NonZeroCount)))

	mean, std := vol.MeanStdDev()
	fmt.Printf("Normalized:  mean %.4f, stddev %.4f\n", mean, std)

	if cfg.Output.Verbose && cfg.Output.HistogramBins > 0 {
		fmt.Printf("Histogram (%d bins): ", cfg.Output.HistogramBins)
		for _, count := range vol.Histogram(cfg.Output.HistogramBins) {
			fmt.Printf("%d ", int64(count))
		}
		fmt.Println()
	}

	for _, d := range diags {
		log.Printf("[%s] %s: %s %v", d.Severity, d.Code, d.Message, d.Context)
	}
}

// saveMidSlices writes the central plane along each axis as a JPEG.
func saveMidSlices(vol *volume.Volume, dir, input string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(filepath.Base(input)))
	nx, ny, nz := vol.Data.Dims()
	positions := map[string]int{"x": nx / 2, "y": ny / 2, "z": nz / 2}

	for axis, pos := range positions {
		img, err := vol.Slice(axis, pos)
		if err != nil {
			return err
		}
		name := filepath.Join(dir, fmt.Sprintf("%s_%s_%03d.jpg", base, axis, pos))
		f, err := os.Create(name)
		if err != nil {
			return err
		}
		if err := jpeg.Encode(f, img, &jpeg.Options{Quality: 90}); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
	}
	return nil
}
