// Command irpeaks processes IR spectrometer CSV exports: it detects
// absorption peaks in each spectrum, prints the conventional writeup line
// (e.g. "IR (ATR): 3412 (w), 2955 (w), ...") and renders an annotated SVG
// plot per input file.
//
// Usage:
//
//	irpeaks [flags] file.csv [more.csv | pattern ...]
//
// Examples:
//
//	irpeaks sample.csv
//	irpeaks -o writeup.txt -pd 25 spectra/*.csv
//	irpeaks -p "" -raw "scan??.csv"
//	irpeaks -config irpeaks.yaml sample.csv
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/cwbudde/algo-ir/csvio"
	"github.com/cwbudde/algo-ir/internal/config"
	"github.com/cwbudde/algo-ir/peaks"
	"github.com/cwbudde/algo-ir/plot"
	"github.com/cwbudde/algo-ir/report"
	"github.com/cwbudde/algo-ir/spectrum"
)

type options struct {
	plotPattern string
	raw         bool
	absorbance  bool
	detector    peaks.Config
	style       plot.Style
}

type result struct {
	file  string
	lines []string
	err   error
}

func main() {
	var (
		output        = flag.String("o", "", "append writeup lines to this file instead of stdout")
		plotPattern   = flag.String("p", "{FILENAME}.svg", "plot output pattern; {FILENAME} is replaced by the input name without .csv; empty disables plots")
		configPath    = flag.String("config", "", "YAML configuration file (detector thresholds and plot style)")
		minProminence = flag.Float64("pr", 0, "minimum peak prominence (0 = 2% of the spectrum's intensity range)")
		minSeparation = flag.Float64("pd", 0, "minimum distance between reported peaks in 1/cm (0 = 8)")
		minWidth      = flag.Float64("pw", 4, "minimum half-prominence width in 1/cm for a peak to count as real")
		broadWidth    = flag.Float64("bw", 0, "width in 1/cm beyond which a band is reported broad (0 = 100)")
		smoothing     = flag.Int("smooth", 0, "smoothing window in samples (0 = 5, 1 = off)")
		raw           = flag.Bool("raw", false, "skip transmittance normalization")
		absorbance    = flag.Bool("absorbance", false, "treat the intensity column as absorbance regardless of the CSV header")
		workers       = flag.Int("workers", runtime.NumCPU(), "number of files processed in parallel")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: irpeaks [flags] file.csv [more.csv | pattern ...]\n\n")
		fmt.Fprintf(os.Stderr, "Detects IR absorption peaks and emits writeup lines plus SVG plots.\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync() //nolint:errcheck

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("loading configuration", zap.Error(err))
	}

	detector := cfg.Detector.PeaksConfig()

	// Explicit flags win over the configuration file.
	setFlags := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { setFlags[f.Name] = true })

	if setFlags["pr"] || detector.MinProminence == 0 {
		detector.MinProminence = *minProminence
	}

	if setFlags["pd"] || detector.MinSeparation == 0 {
		detector.MinSeparation = *minSeparation
	}

	if setFlags["pw"] || detector.MinWidth == 0 {
		detector.MinWidth = *minWidth
	}

	if setFlags["bw"] || detector.BroadWidth == 0 {
		detector.BroadWidth = *broadWidth
	}

	if setFlags["smooth"] || detector.SmoothingWindow == 0 {
		detector.SmoothingWindow = *smoothing
	}

	files := expandArgs(flag.Args())
	if len(files) == 0 {
		logger.Error("no valid files to process")
		flag.Usage()
		os.Exit(1)
	}

	logger.Info("processing files", zap.Int("count", len(files)))

	opts := options{
		plotPattern: *plotPattern,
		raw:         *raw,
		absorbance:  *absorbance,
		detector:    detector,
		style:       cfg.Plot,
	}

	results := processAll(files, opts, *workers, logger)

	out := os.Stdout

	if *output != "" {
		f, err := os.OpenFile(*output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			logger.Fatal("opening output file", zap.Error(err))
		}
		defer f.Close()

		out = f
	}

	processed := 0

	for _, res := range results {
		if res.err != nil {
			logger.Error("skipping file", zap.String("file", res.file), zap.Error(res.err))
			continue
		}

		for _, line := range res.lines {
			fmt.Fprintln(out, line)
		}

		processed++
	}

	if processed == 0 {
		logger.Error("no file could be processed")
		os.Exit(1)
	}
}

// expandArgs resolves glob patterns and plain paths into a file list,
// preserving argument order.
func expandArgs(args []string) []string {
	var files []string

	for _, arg := range args {
		matches, err := filepath.Glob(arg)
		if err != nil || len(matches) == 0 {
			// Not a pattern (or nothing matched): keep the literal path so
			// the per-file error reporting names it.
			files = append(files, arg)
			continue
		}

		files = append(files, matches...)
	}

	return files
}

// processAll fans the files out over a bounded worker pool. Spectra are
// immutable and detection is pure, so files are independent; results are
// collected back in input order.
func processAll(files []string, opts options, workers int, logger *zap.Logger) []result {
	if workers < 1 {
		workers = 1
	}

	results := make([]result, len(files))
	sem := make(chan struct{}, workers)

	var wg sync.WaitGroup

	for i, file := range files {
		wg.Add(1)

		go func(i int, file string) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			results[i] = processFile(file, opts, logger.With(zap.String("file", file)))
		}(i, file)
	}

	wg.Wait()

	return results
}

func processFile(file string, opts options, logger *zap.Logger) result {
	res := result{file: file}

	var loadOpts []csvio.Option
	if opts.raw {
		loadOpts = append(loadOpts, csvio.WithRaw())
	}

	if opts.absorbance {
		loadOpts = append(loadOpts, csvio.WithUnit(spectrum.Absorbance))
	}

	s, err := csvio.LoadFile(file, loadOpts...)
	if err != nil {
		res.err = err
		return res
	}

	pks, err := peaks.Detect(s, opts.detector)

	switch {
	case errors.Is(err, peaks.ErrNoPeaks):
		// Recoverable: report and plot an empty spectrum.
		logger.Warn("no peaks found")

		pks = nil
	case err != nil:
		res.err = err
		return res
	}

	if opts.plotPattern != "" {
		plotFile := strings.ReplaceAll(opts.plotPattern, "{FILENAME}", strings.TrimSuffix(file, ".csv"))

		if err := writePlot(plotFile, s, pks, file, opts.style); err != nil {
			// The writeup is still worth emitting.
			logger.Warn("plot not written", zap.String("plot", plotFile), zap.Error(err))
		} else {
			logger.Info("plot written", zap.String("plot", plotFile))
		}
	}

	abs, err := filepath.Abs(file)
	if err != nil {
		abs = file
	}

	res.lines = []string{
		">>> " + abs,
		report.Line(pks),
	}

	return res
}

func writePlot(path string, s *spectrum.Spectrum, pks []peaks.Peak, title string, style plot.Style) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := plot.Render(f, s, pks, title, style); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}
