// Package beso implements the evolutionary ground-structure topology
// optimizer: iterative solve, strain-energy ranking and soft-kill pruning
// under a left/right symmetry constraint.
package beso

import (
	"context"
	stderrors "errors"
	"sync"

	"github.com/google/uuid"

	"github.com/StructKit/beso-go/pkg/config"
	"github.com/StructKit/beso-go/pkg/core"
	"github.com/StructKit/beso-go/pkg/errors"
	"github.com/StructKit/beso-go/pkg/ground"
	"github.com/StructKit/beso-go/pkg/logging"
	"github.com/StructKit/beso-go/pkg/section"
)

// Config contains the pruning policy knobs of the optimizer. RemovalRatio
// and the floors are adopted from the run parameters at Initialize; the
// attenuation factor and iteration cap are construction-time options.
type Config struct {
	RemovalRatio       float64 // fraction of active members removed per iteration
	SafetyFloor        int     // below this active count removal is held at zero
	ConvergenceFloor   int     // active count below which the run converges
	StiffnessReduction float64 // soft-kill attenuation factor
	MaxIterations      int     // Run-level cap, 0 = unlimited
}

// runState is the process-scoped state of one optimization run. It is
// created by Initialize and replaced wholesale by the next one.
type runState struct {
	runID     string
	structure *core.Structure
	iteration int
	state     core.RunState

	totalEnergy float64
	maxForce    float64
}

// Optimizer drives one full evolutionary cycle per Step: solve, evaluate,
// prune, report. It owns the member arena; the engine holds the parallel
// stiffness representation that soft-kill keeps in sync.
type Optimizer struct {
	config Config
	engine core.AnalysisEngine
	logger *logging.Logger

	mu  sync.Mutex
	run *runState
}

// Option defines functional options for Optimizer configuration.
type Option func(*Optimizer)

// WithStiffnessReduction sets the soft-kill attenuation factor.
func WithStiffnessReduction(f float64) Option {
	return func(o *Optimizer) {
		o.config.StiffnessReduction = f
	}
}

// WithMaxIterations caps Run at the given iteration count (0 = unlimited).
func WithMaxIterations(n int) Option {
	return func(o *Optimizer) {
		o.config.MaxIterations = n
	}
}

// New creates an optimizer over the given analysis engine.
func New(engine core.AnalysisEngine, opts ...Option) *Optimizer {
	o := &Optimizer{
		config: Config{
			RemovalRatio:       0.02,
			SafetyFloor:        15,
			ConvergenceFloor:   25,
			StiffnessReduction: 1e-6,
		},
		engine: engine,
		logger: logging.GetLogger(),
	}

	for _, opt := range opts {
		opt(o)
	}

	return o
}

// Initialize builds the ground structure, symmetry map and initial
// topology from the given parameters and hands the model to the engine.
// Any prior run's state is discarded; the removal ratio and floors are
// adopted from the parameters.
func (o *Optimizer) Initialize(ctx context.Context, params config.RunParams) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	// Section properties first: a degenerate section fails with
	// InvalidGeometry before any mesh is built.
	area, inertia, err := section.Properties(
		params.Section.FlangeWidth,
		params.Section.Depth,
		params.Section.WebThickness,
		params.Section.FlangeThickness,
	)
	if err != nil {
		return err
	}

	if err := config.Validate(&params); err != nil {
		return errors.Wrap(err, errors.InvalidInput, "invalid run parameters")
	}

	modulus := params.ModulusGPa * 1e9
	ea := modulus * area
	ei := modulus * inertia

	s, err := ground.Build(params.Span, params.Height, params.XDivs, params.YDivs)
	if err != nil {
		return err
	}
	ground.MapSymmetry(s)

	topo := core.Topology{
		Nodes:   make([]core.Point, len(s.Nodes)),
		Members: make([]core.MemberSpec, len(s.Members)),
	}
	for i, n := range s.Nodes {
		topo.Nodes[i] = n.Pos
	}
	for i, m := range s.Members {
		topo.Members[i] = core.MemberSpec{
			ID:    m.ID,
			NodeI: m.NodeI,
			NodeJ: m.NodeJ,
			EA:    ea,
			EI:    ei,
		}
	}

	left := s.NearestNode(0, 0)
	right := s.NearestNode(params.Span, 0)
	switch params.Support {
	case config.SupportPinnedRoller:
		topo.Supports = []core.Support{
			{Node: left, Kind: core.Pinned},
			{Node: right, Kind: core.Roller},
		}
	case config.SupportFixedFixed:
		topo.Supports = []core.Support{
			{Node: left, Kind: core.Fixed},
			{Node: right, Kind: core.Fixed},
		}
	case config.SupportPinnedPinned:
		topo.Supports = []core.Support{
			{Node: left, Kind: core.Pinned},
			{Node: right, Kind: core.Pinned},
		}
	default:
		return errors.WithFields(
			errors.New(errors.InvalidInput, "unknown support selector"),
			errors.Fields{"support": params.Support},
		)
	}

	loadNode := s.NearestNode(params.Span/2, params.Height)
	topo.Loads = []core.PointLoad{{Node: loadNode, FY: -params.Load}}

	if err := o.engine.LoadTopology(topo); err != nil {
		return errors.Wrap(err, errors.InvalidInput, "failed to load topology into engine")
	}

	o.config.RemovalRatio = params.RemovalRatio
	o.config.SafetyFloor = params.SafetyFloor
	o.config.ConvergenceFloor = params.ConvergenceFloor

	o.run = &runState{
		runID:     uuid.New().String(),
		structure: s,
		state:     core.Ready,
	}

	o.logger.Info(logging.WithRunID(ctx, o.run.runID),
		"initialized ground structure: nodes=%d members=%d load_node=%d support=%s",
		len(s.Nodes), len(s.Members), loadNode, params.Support)

	return nil
}

// Step performs one full evolutionary cycle: solve, evaluate, prune,
// report. Cancellation is observed at entry only, so a canceled context
// leaves the member arena exactly as the last completed iteration did.
func (o *Optimizer) Step(ctx context.Context) (*core.IterationReport, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.run == nil || (o.run.state != core.Ready && o.run.state != core.Running) {
		state := core.Uninitialized
		if o.run != nil {
			state = o.run.state
		}
		return nil, errors.WithFields(
			errors.New(errors.InvalidRunState, "optimizer cannot iterate in this state"),
			errors.Fields{"state": state.String()},
		)
	}

	if err := errors.CheckContext(ctx, "iteration"); err != nil {
		o.run.state = core.Stopped
		return nil, err
	}

	o.run.state = core.Running
	iterNum := o.run.iteration + 1
	ctx = logging.WithIteration(logging.WithRunID(ctx, o.run.runID), iterNum)

	sol, err := o.engine.Solve(ctx)
	if err != nil {
		if stderrors.Is(err, errors.New(errors.Canceled, "")) ||
			stderrors.Is(err, context.Canceled) ||
			stderrors.Is(err, context.DeadlineExceeded) {
			// The engine observed the cancellation before solving.
			// External engines may surface the raw context error.
			o.run.state = core.Stopped
			return nil, err
		}
		// A failed solve reflects a structurally invalid topology;
		// retrying the same topology cannot succeed.
		o.run.state = core.Failed
		o.logger.Error(ctx, "solve failed: %v", err)
		return nil, errors.WithFields(err, errors.Fields{"iteration": iterNum})
	}

	stats := evaluateEnergies(o.run.structure, sol)

	removed, held, err := pruneWeakest(
		o.run.structure, o.engine,
		o.config.RemovalRatio, o.config.SafetyFloor, o.config.StiffnessReduction,
	)
	if err != nil {
		o.run.state = core.Failed
		o.logger.Error(ctx, "soft-kill rejected by engine: %v", err)
		return nil, errors.WithFields(
			errors.Wrap(err, errors.SolverInstability, "engine rejected soft-kill"),
			errors.Fields{"iteration": iterNum},
		)
	}
	if held {
		o.logger.Warn(ctx, "safety floor hold: active=%d below floor=%d, no removal this iteration",
			o.run.structure.ActiveCount(), o.config.SafetyFloor)
	}

	o.run.iteration = iterNum
	o.run.totalEnergy = stats.TotalEnergy
	o.run.maxForce = stats.MaxForce

	active := o.run.structure.ActiveCount()
	if active < o.config.ConvergenceFloor {
		o.run.state = core.Converged
	}

	o.logger.Info(ctx, "[iter %03d] active=%03d removed=%02d max_force=%.2f kN energy=%.3e",
		iterNum, active, removed, stats.MaxForce/1000, stats.TotalEnergy)

	return o.buildReport(removed), nil
}

// Run drives Step until a terminal state, forwarding every report to sink
// (nil sink allowed). The context is the only yield point: cancellation is
// honored between iterations and never recorded as a failure.
func (o *Optimizer) Run(ctx context.Context, sink core.ReportSink) error {
	for {
		report, err := o.Step(ctx)
		if err != nil {
			return err
		}
		if sink != nil {
			sink.Report(report)
		}
		if o.State().Terminal() {
			return nil
		}
		if o.config.MaxIterations > 0 && report.Iteration >= o.config.MaxIterations {
			o.mu.Lock()
			o.run.state = core.Stopped
			o.mu.Unlock()
			o.logger.Warn(ctx, "iteration cap reached at %d, stopping run", report.Iteration)
			return nil
		}
	}
}

// buildReport snapshots the member arena for the rendering layer. Caller
// holds o.mu.
func (o *Optimizer) buildReport(removed int) *core.IterationReport {
	s := o.run.structure

	report := &core.IterationReport{
		Iteration:   o.run.iteration,
		Members:     make([]core.MemberView, len(s.Members)),
		ActiveCount: s.ActiveCount(),
		Removed:     removed,
		TotalEnergy: o.run.totalEnergy,
		State:       o.run.state.String(),
	}

	for i := range s.Members {
		m := &s.Members[i]
		report.Members[i] = core.MemberView{
			P1:     m.P1,
			P2:     m.P2,
			Active: m.Active,
			Force:  m.ForceVal,
		}
		if m.Active && m.ForceVal > report.MaxForce {
			report.MaxForce = m.ForceVal
		}
	}

	return report
}

// State returns the current run state.
func (o *Optimizer) State() core.RunState {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.run == nil {
		return core.Uninitialized
	}
	return o.run.state
}

// Iteration returns the number of completed iterations of the current run.
func (o *Optimizer) Iteration() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.run == nil {
		return 0
	}
	return o.run.iteration
}

// RunID returns the identifier of the current run, or "" before Initialize.
func (o *Optimizer) RunID() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.run == nil {
		return ""
	}
	return o.run.runID
}

// Structure exposes the member arena of the current run for inspection.
// Callers must not mutate it.
func (o *Optimizer) Structure() *core.Structure {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.run == nil {
		return nil
	}
	return o.run.structure
}
