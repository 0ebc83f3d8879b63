package harness

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/deepteams/convcheck/internal/convolve"
)

// Options tunes a suite run. The zero value sweeps everything.
type Options struct {
	// Phases restricts the sub-pixel phases used on an active axis.
	// nil means all 16.
	Phases []int
	// Blends restricts the compound blending settings. nil means every
	// setting from Blends; an empty list or a bad weight pair is rejected.
	// Single-reference suites validate but ignore it.
	Blends []Blend
	// Seed perturbs the input generator; 0 is the default sequence.
	Seed uint64
	// Logger receives per-configuration progress. nil uses slog.Default.
	Logger *slog.Logger
}

func (o *Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

// Result summarizes a configuration run.
type Result struct {
	Invocations int
	Elapsed     time.Duration
}

// Runner is one registered test suite.
type Runner interface {
	// Name is "<Lbd|Hbd><SR|Jnt>/<2D|X|Y|Copy>".
	Name() string
	// Configs enumerates the configurations the suite accepts.
	Configs() []Config
	// Run sweeps cfg. It stops at the first divergence and returns it as
	// a *Mismatch.
	Run(cfg Config, opts Options) (Result, error)
}

// Suite binds a capability to one motion mode.
type Suite[S Sample] struct {
	name       string
	capability Capability[S]
	hasX, hasY bool
}

// NewSuite returns the suite for c in the mode selected by hasX and hasY.
func NewSuite[S Sample](c Capability[S], hasX, hasY bool) *Suite[S] {
	kind := "SR"
	if c.Compound {
		kind = "Jnt"
	}
	return &Suite[S]{
		name:       c.Family.String() + kind + "/" + ModeName(hasX, hasY),
		capability: c,
		hasX:       hasX,
		hasY:       hasY,
	}
}

func (s *Suite[S]) Name() string { return s.name }

func (s *Suite[S]) Configs() []Config {
	return BuildParams(s.capability.Family, s.hasX, s.hasY, s.capability.Compound)
}

func (s *Suite[S]) validate(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.Family != s.capability.Family || cfg.Compound != s.capability.Compound ||
		cfg.HasSubpelX != s.hasX || cfg.HasSubpelY != s.hasY {
		return fmt.Errorf("%w: %s config for suite %s", ErrInvalidConfig, cfg, s.name)
	}
	if s.capability.Ref.Select(s.hasX, s.hasY) == nil || s.capability.Tst.Select(s.hasX, s.hasY) == nil {
		return fmt.Errorf("%w: suite %s has no kernel", ErrInvalidConfig, s.name)
	}
	return nil
}

func (s *Suite[S]) blends(override []Blend) ([]Blend, error) {
	if override == nil {
		return Blends(s.capability.Compound), nil
	}
	if len(override) == 0 {
		return nil, fmt.Errorf("%w: empty blend list", ErrInvalidConfig)
	}
	for _, b := range override {
		if err := b.Validate(); err != nil {
			return nil, err
		}
	}
	if !s.capability.Compound {
		return Blends(false), nil
	}
	return override, nil
}

func (s *Suite[S]) Run(cfg Config, opts Options) (Result, error) {
	var res Result
	if err := s.validate(cfg); err != nil {
		return res, err
	}
	phases, err := Phases(s.hasX, s.hasY, opts.Phases)
	if err != nil {
		return res, err
	}
	blends, err := s.blends(opts.Blends)
	if err != nil {
		return res, err
	}

	start := time.Now()
	fix := NewFixture[S](opts.Seed)
	defer fix.Close()
	fix.Prepare(cfg.BitDepth)

	exec := NewExecutor(&s.capability, fix, s.hasX, s.hasY)
	cmp := NewComparator(fix, s.capability.Compound)

	w, h := cfg.Block.Width(), cfg.Block.Height()
	for _, fp := range FilterPairs(s.hasX, s.hasY) {
		inv := Invocation{
			W:        w,
			H:        h,
			FilterX:  convolve.FilterParamsForBlock(fp.X, w),
			FilterY:  convolve.FilterParamsForBlock(fp.Y, h),
			Filters:  fp,
			BitDepth: cfg.BitDepth,
		}
		for _, b := range blends {
			inv.Blend = b
			for _, ph := range phases {
				inv.SubX, inv.SubY = ph.X, ph.Y
				exec.Execute(&inv)
				res.Invocations++
				if err := cmp.Check(&inv); err != nil {
					var m *Mismatch
					if errors.As(err, &m) {
						m.Context = fmt.Sprintf("%s %s filters=%s blend=%s", s.name, cfg, fp, b)
					}
					res.Elapsed = time.Since(start)
					return res, err
				}
			}
		}
	}
	res.Elapsed = time.Since(start)
	opts.logger().Debug("config passed", "suite", s.name, "config", cfg.String(),
		"invocations", res.Invocations, "elapsed", res.Elapsed)
	return res, nil
}

var modes = []struct{ hasX, hasY bool }{
	{true, true},
	{true, false},
	{false, true},
	{false, false},
}

// SuitesFor registers the sixteen suites that check k against the scalar
// references, in the order LbdSR, LbdJnt, HbdSR, HbdJnt, each over 2D, X,
// Y and Copy.
func SuitesFor(k convolve.Kernels) []Runner {
	caps8 := []Capability[uint8]{
		{Family: Narrow, Ref: NarrowTable(convolve.ReferenceSR), Tst: NarrowTable(k.SR)},
		{Family: Narrow, Compound: true, Ref: NarrowTable(convolve.ReferenceDistWtd), Tst: NarrowTable(k.DistWtd)},
	}
	caps16 := []Capability[uint16]{
		{Family: Wide, Ref: WideTable(convolve.HighbdReferenceSR), Tst: WideTable(k.HighbdSR)},
		{Family: Wide, Compound: true, Ref: WideTable(convolve.HighbdReferenceDistWtd), Tst: WideTable(k.HighbdDistWtd)},
	}
	out := make([]Runner, 0, 4*len(modes))
	for _, c := range caps8 {
		for _, m := range modes {
			out = append(out, NewSuite(c, m.hasX, m.hasY))
		}
	}
	for _, c := range caps16 {
		for _, m := range modes {
			out = append(out, NewSuite(c, m.hasX, m.hasY))
		}
	}
	return out
}

// Dispatched returns the kernels currently installed in package convolve.
func Dispatched() convolve.Kernels {
	return convolve.Kernels{
		Backend:       convolve.ActiveBackend,
		SR:            convolve.SR,
		DistWtd:       convolve.DistWtd,
		HighbdSR:      convolve.HighbdSR,
		HighbdDistWtd: convolve.HighbdDistWtd,
	}
}

// Suites registers the suites for the dispatched kernels.
func Suites() []Runner {
	return SuitesFor(Dispatched())
}
