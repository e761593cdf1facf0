// Command besocli runs ground-structure topology optimizations headlessly:
// single runs with optional frame dumps and report exports, or removal-ratio
// sweeps.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"syscall"

	"github.com/sourcegraph/conc/pool"

	"github.com/StructKit/beso-go/pkg/beso"
	"github.com/StructKit/beso-go/pkg/config"
	"github.com/StructKit/beso-go/pkg/core"
	"github.com/StructKit/beso-go/pkg/export"
	"github.com/StructKit/beso-go/pkg/logging"
	"github.com/StructKit/beso-go/pkg/render"
	"github.com/StructKit/beso-go/pkg/solver"
)

// collectSink retains every report so frames and exports can be produced
// after the run finishes.
type collectSink struct {
	mu      sync.Mutex
	reports []*core.IterationReport
}

func (c *collectSink) Report(r *core.IterationReport) {
	c.mu.Lock()
	c.reports = append(c.reports, r)
	c.mu.Unlock()
}

func (c *collectSink) all() []*core.IterationReport {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*core.IterationReport(nil), c.reports...)
}

func (c *collectSink) last() *core.IterationReport {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.reports) == 0 {
		return nil
	}
	return c.reports[len(c.reports)-1]
}

type sweepResult struct {
	ratio      float64
	iterations int
	active     int
	state      string
}

func main() {
	configPath := flag.String("config", "", "YAML run-parameter file (defaults apply when empty)")
	outDir := flag.String("out", "out", "output directory for frames and reports")
	frames := flag.Bool("frames", false, "write a PNG frame per iteration")
	frameEvery := flag.Int("frame-every", 1, "write every Nth frame")
	writePDF := flag.Bool("pdf", false, "write the PDF run report")
	writeXLSX := flag.Bool("xlsx", false, "write the XLSX member schedule")
	sweep := flag.String("sweep", "", "comma-separated removal ratios for a sweep (e.g. 0.01,0.02,0.04)")
	logLevel := flag.String("log-level", "INFO", "log severity (DEBUG, INFO, WARN, ERROR)")
	maxIter := flag.Int("max-iter", 500, "iteration safety cap (0 = unlimited)")
	flag.Parse()

	logging.SetLogger(logging.NewLogger(logging.Config{
		Severity: logging.ParseSeverity(strings.ToUpper(*logLevel)),
		Outputs:  []logging.Output{logging.NewConsoleOutput(true)},
	}))
	logger := logging.GetLogger()

	// SIGINT cancels the context; the loop stops cleanly between
	// iterations.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	params := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
			os.Exit(1)
		}
		params = loaded
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "failed to create output directory: %v\n", err)
		os.Exit(1)
	}

	if *sweep != "" {
		if err := runSweep(ctx, params, *sweep, *maxIter); err != nil {
			fmt.Fprintf(os.Stderr, "sweep failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	opt := beso.New(solver.New(), beso.WithMaxIterations(*maxIter))
	if err := opt.Initialize(ctx, params); err != nil {
		fmt.Fprintf(os.Stderr, "initialize failed: %v\n", err)
		os.Exit(1)
	}

	sink := &collectSink{}
	if err := opt.Run(ctx, sink); err != nil {
		if ctx.Err() != nil {
			logger.Warn(ctx, "run canceled after %d completed iterations", opt.Iteration())
		} else {
			fmt.Fprintf(os.Stderr, "run failed: %v\n", err)
			os.Exit(1)
		}
	}

	final := sink.last()
	if final == nil {
		logger.Warn(ctx, "no completed iterations, nothing to export")
		return
	}

	logger.Info(ctx, "run finished: state=%s iterations=%d active=%d",
		opt.State(), final.Iteration, final.ActiveCount)

	if *frames {
		if err := writeFrames(*outDir, sink.all(), *frameEvery); err != nil {
			fmt.Fprintf(os.Stderr, "frame export failed: %v\n", err)
			os.Exit(1)
		}
	}
	if *writePDF {
		path := filepath.Join(*outDir, "report.pdf")
		if err := export.WritePDF(path, params, final); err != nil {
			fmt.Fprintf(os.Stderr, "PDF export failed: %v\n", err)
			os.Exit(1)
		}
		logger.Info(ctx, "wrote %s", path)
	}
	if *writeXLSX {
		path := filepath.Join(*outDir, "members.xlsx")
		if err := export.WriteXLSX(path, params, final); err != nil {
			fmt.Fprintf(os.Stderr, "XLSX export failed: %v\n", err)
			os.Exit(1)
		}
		logger.Info(ctx, "wrote %s", path)
	}
}

// writeFrames encodes iteration frames on a worker pool; reports are
// immutable snapshots, so the fan-out is safe.
func writeFrames(outDir string, reports []*core.IterationReport, every int) error {
	if every < 1 {
		every = 1
	}

	renderer := render.NewRenderer()
	p := pool.New().WithErrors().WithMaxGoroutines(4)

	for _, report := range reports {
		if (report.Iteration-1)%every != 0 {
			continue
		}
		report := report
		p.Go(func() error {
			path := filepath.Join(outDir, fmt.Sprintf("frame_%04d.png", report.Iteration))
			return renderer.WritePNG(path, report)
		})
	}

	return p.Wait()
}

// runSweep executes independent runs for each removal ratio concurrently,
// one engine and optimizer state per run, and prints a summary table.
func runSweep(ctx context.Context, base config.RunParams, spec string, maxIter int) error {
	parts := strings.Split(spec, ",")
	ratios := make([]float64, 0, len(parts))
	for _, part := range parts {
		ratio, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return fmt.Errorf("invalid sweep ratio %q: %w", part, err)
		}
		ratios = append(ratios, ratio)
	}

	results := make([]sweepResult, len(ratios))
	p := pool.New().WithErrors().WithMaxGoroutines(len(ratios))

	for i, ratio := range ratios {
		i, ratio := i, ratio
		p.Go(func() error {
			params := base
			params.RemovalRatio = ratio

			opt := beso.New(solver.New(), beso.WithMaxIterations(maxIter))
			if err := opt.Initialize(ctx, params); err != nil {
				return fmt.Errorf("ratio %.3f: %w", ratio, err)
			}

			sink := &collectSink{}
			if err := opt.Run(ctx, sink); err != nil && ctx.Err() == nil {
				return fmt.Errorf("ratio %.3f: %w", ratio, err)
			}

			result := sweepResult{ratio: ratio, state: opt.State().String()}
			if final := sink.last(); final != nil {
				result.iterations = final.Iteration
				result.active = final.ActiveCount
			}
			results[i] = result
			return nil
		})
	}

	if err := p.Wait(); err != nil {
		return err
	}

	fmt.Println("ratio    iterations  active  state")
	for _, r := range results {
		fmt.Printf("%-8.3f %-11d %-7d %s\n", r.ratio, r.iterations, r.active, r.state)
	}
	return nil
}
