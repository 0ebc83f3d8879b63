// Command convcheck runs the interpolation kernel conformance suites from
// the command line.
//
// Usage:
//
//	convcheck run [options]    Compare the candidate kernels with the references
//	convcheck list [options]   List suites and their configurations
//	convcheck info             Show CPU features and the selected backend
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/deepteams/convcheck/internal/convolve"
	"github.com/deepteams/convcheck/internal/cpu"
	"github.com/deepteams/convcheck/internal/harness"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "run":
		err = runRun(os.Args[2:], os.Stdout, os.Stderr)
	case "list":
		err = runList(os.Args[2:], os.Stdout)
	case "info":
		err = runInfo(os.Args[2:], os.Stdout)
	case "-h", "-help", "--help", "help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "convcheck: unknown command %q\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "convcheck: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage:
  convcheck run [options]    Compare the candidate kernels with the references
  convcheck list [options]   List suites and their configurations
  convcheck info             Show CPU features and the selected backend

Run "convcheck <command> -h" for command-specific options.
`)
}

// quickPhases is the phase subset swept unless -full or -phases is given.
var quickPhases = []int{0, 1, 8, 15}

// selectFlags are the suite and configuration filters shared by run and list.
type selectFlags struct {
	suite *string
	bd    *int
	block *string
}

func addSelectFlags(fs *flag.FlagSet) *selectFlags {
	return &selectFlags{
		suite: fs.String("suite", "", "regexp selecting suites by name, e.g. 'Hbd.*/2D'"),
		bd:    fs.Int("bd", 0, "only run this bit depth (0=all)"),
		block: fs.String("block", "", "only run this block size, e.g. 16x8"),
	}
}

type selection struct {
	suite    *regexp.Regexp
	bd       int
	block    harness.BlockSize
	hasBlock bool
}

func (f *selectFlags) compile() (*selection, error) {
	s := &selection{bd: *f.bd}
	if *f.suite != "" {
		re, err := regexp.Compile(*f.suite)
		if err != nil {
			return nil, fmt.Errorf("-suite: %w", err)
		}
		s.suite = re
	}
	switch s.bd {
	case 0, 8, 10, 12:
	default:
		return nil, fmt.Errorf("-bd: %w: bit depth %d", harness.ErrInvalidConfig, s.bd)
	}
	if *f.block != "" {
		b, err := harness.ParseBlockSize(*f.block)
		if err != nil {
			return nil, fmt.Errorf("-block: %w", err)
		}
		s.block, s.hasBlock = b, true
	}
	return s, nil
}

func (s *selection) suites(all []harness.Runner) []harness.Runner {
	if s.suite == nil {
		return all
	}
	var out []harness.Runner
	for _, r := range all {
		if s.suite.MatchString(r.Name()) {
			out = append(out, r)
		}
	}
	return out
}

func (s *selection) configs(r harness.Runner) []harness.Config {
	var out []harness.Config
	for _, cfg := range r.Configs() {
		if s.bd != 0 && cfg.BitDepth != s.bd {
			continue
		}
		if s.hasBlock && cfg.Block != s.block {
			continue
		}
		out = append(out, cfg)
	}
	return out
}

func parsePhases(s string) ([]int, error) {
	var out []int
	for _, f := range strings.Split(s, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("-phases: %w", err)
		}
		if v < 0 || v >= convolve.SubpelShifts {
			return nil, fmt.Errorf("-phases: %w: sub-pixel phase %d", harness.ErrInvalidConfig, v)
		}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("-phases: %w: empty list", harness.ErrInvalidConfig)
	}
	return out, nil
}

// --- run ---

func runRun(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(stderr)
	sel := addSelectFlags(fs)
	full := fs.Bool("full", false, "sweep all 16 sub-pixel phases")
	phaseList := fs.String("phases", "", "comma-separated sub-pixel phases (default 0,1,8,15)")
	generic := fs.Bool("generic", false, "force the scalar kernels as candidates")
	lanes := fs.Int("lanes", 0, "use lane-batched candidates of this width (0=auto)")
	seed := fs.Uint64("seed", 0, "input generator seed")
	parallel := fs.Int("parallel", runtime.GOMAXPROCS(0), "configurations run concurrently")
	failFast := fs.Bool("failfast", false, "stop scheduling work after the first mismatch")
	verbose := fs.Bool("v", false, "log every configuration")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("run: unexpected argument %q\nUsage: convcheck run [options]", fs.Arg(0))
	}
	s, err := sel.compile()
	if err != nil {
		return err
	}
	if *parallel < 1 {
		return errors.New("-parallel must be at least 1")
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	opts := harness.Options{Phases: quickPhases, Seed: *seed, Logger: logger}
	switch {
	case *full:
		opts.Phases = nil
	case *phaseList != "":
		if opts.Phases, err = parsePhases(*phaseList); err != nil {
			return err
		}
	}

	kernels, err := candidates(*generic, *lanes)
	if err != nil {
		return err
	}
	logger.Debug("candidate kernels", "backend", kernels.Backend)

	suites := s.suites(harness.SuitesFor(kernels))
	start := time.Now()
	results, err := execute(suites, s, opts, *parallel, *failFast)
	if err != nil {
		return err
	}
	logger.Debug("run finished", "backend", kernels.Backend, "suites", len(results), "elapsed", time.Since(start))
	return report(stdout, results)
}

// suiteResult collects the outcome of every configuration of one suite.
type suiteResult struct {
	name string

	mu          sync.Mutex
	configs     int
	invocations int
	elapsed     time.Duration
	failures    []error
}

func (r *suiteResult) add(res harness.Result, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.configs++
	r.invocations += res.Invocations
	r.elapsed += res.Elapsed
	if err != nil {
		r.failures = append(r.failures, err)
	}
}

// execute runs every selected configuration with at most parallel running
// at once. Suites without a selected configuration are skipped.
func execute(suites []harness.Runner, s *selection, opts harness.Options, parallel int, failFast bool) ([]*suiteResult, error) {
	var results []*suiteResult
	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(parallel)
	for _, r := range suites {
		cfgs := s.configs(r)
		if len(cfgs) == 0 {
			continue
		}
		res := &suiteResult{name: r.Name()}
		results = append(results, res)
		for _, cfg := range cfgs {
			g.Go(func() error {
				if ctx.Err() != nil {
					return nil
				}
				out, err := r.Run(cfg, opts)
				res.add(out, err)
				if err != nil && failFast {
					return err
				}
				return nil
			})
		}
	}
	if len(results) == 0 {
		return nil, errors.New("run: no configuration matches the selection")
	}
	// Group errors are failures already recorded on their suite; under
	// failfast the first one only stops scheduling.
	if err := g.Wait(); err != nil && !failFast {
		return nil, err
	}
	return results, nil
}

// report prints one line per suite and every failure under it.
func report(w io.Writer, results []*suiteResult) error {
	failed := 0
	var first error
	for _, res := range results {
		if len(res.failures) > 0 {
			failed++
			if first == nil {
				first = res.failures[0]
			}
			fmt.Fprintf(w, "FAIL\t%s\t%d/%d configs\n", res.name, len(res.failures), res.configs)
			for _, err := range res.failures {
				fmt.Fprintf(w, "\t%v\n", err)
			}
			continue
		}
		fmt.Fprintf(w, "ok  \t%s\t%d configs\t%d invocations\t%.2fs\n",
			res.name, res.configs, res.invocations, res.elapsed.Seconds())
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d suites failed, first: %w", failed, len(results), first)
	}
	return nil
}

// candidates returns the kernel bundle to test.
func candidates(generic bool, lanes int) (convolve.Kernels, error) {
	switch {
	case generic && lanes != 0:
		return convolve.Kernels{}, errors.New("-generic and -lanes are mutually exclusive")
	case generic:
		f := cpu.DetectFeatures()
		f.ForceGeneric = true
		return convolve.SelectKernels(f), nil
	case lanes != 0:
		if lanes < 1 || lanes > 16 {
			return convolve.Kernels{}, fmt.Errorf("-lanes must be in [1, 16], got %d", lanes)
		}
		return convolve.LaneKernels(lanes), nil
	default:
		return harness.Dispatched(), nil
	}
}

// --- list ---

func runList(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	sel := addSelectFlags(fs)
	configs := fs.Bool("configs", false, "list every configuration")
	if err := fs.Parse(args); err != nil {
		return err
	}
	s, err := sel.compile()
	if err != nil {
		return err
	}
	for _, r := range s.suites(harness.Suites()) {
		cfgs := s.configs(r)
		fmt.Fprintf(stdout, "%s\t%d configs\n", r.Name(), len(cfgs))
		if !*configs {
			continue
		}
		for _, cfg := range cfgs {
			fmt.Fprintf(stdout, "\t%s\n", cfg)
		}
	}
	return nil
}

// --- info ---

func runInfo(args []string, stdout io.Writer) error {
	if len(args) > 0 {
		return fmt.Errorf("info: unexpected argument %q\nUsage: convcheck info", args[0])
	}
	f := cpu.DetectFeatures()
	fmt.Fprintf(stdout, "Architecture: %s\n", f.Architecture)
	fmt.Fprintf(stdout, "SSE2:         %v\n", f.HasSSE2)
	fmt.Fprintf(stdout, "SSE4.1:       %v\n", f.HasSSE41)
	fmt.Fprintf(stdout, "AVX2:         %v\n", f.HasAVX2)
	fmt.Fprintf(stdout, "AVX-512:      %v\n", f.HasAVX512)
	fmt.Fprintf(stdout, "NEON:         %v\n", f.HasNEON)
	fmt.Fprintf(stdout, "Backend:      %s\n", convolve.ActiveBackend)
	fmt.Fprintf(stdout, "Phases:       %d\n", convolve.SubpelShifts)
	fmt.Fprintf(stdout, "Block sizes:  %d\n", int(harness.BlockSizesAll))
	return nil
}
