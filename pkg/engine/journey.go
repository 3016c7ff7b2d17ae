package engine

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/indoorroute/pkg/connector"
	errs "github.com/matzehuels/indoorroute/pkg/errors"
	"github.com/matzehuels/indoorroute/pkg/journey"
	"github.com/matzehuels/indoorroute/pkg/observability"
)

// Plan is a multi-floor journey ready to be started.
type Plan struct {
	Steps         []journey.RouteStep `json:"steps"`
	Destination   journey.Endpoint    `json:"destination"`
	Precalculated map[string][]string `json:"precalculated"`
}

// PlanJourney searches the via-type connector graph from from.Floor to
// to.Floor, builds the walking steps and pre-calculates every step's node
// path in parallel. It does not touch the engine's state machine, so the
// HTTP API can run one machine per session.
//
// (nil, nil) is returned when no connector chain joins the floors.
func (e *Engine) PlanJourney(ctx context.Context, from, to journey.Endpoint, via connector.Type) (*Plan, error) {
	if err := validateQuery(from.Floor, from.Place, to.Place); err != nil {
		return nil, err
	}
	if err := errs.ValidateFloorKey(to.Floor); err != nil {
		return nil, err
	}
	via, err := connector.ParseType(string(via))
	if err != nil {
		return nil, err
	}

	start := time.Now()
	ctx = observability.Routing().OnJourneyStart(ctx, from.Floor, to.Floor, string(via))
	plan, err := e.planJourney(ctx, from, to, via)
	steps := 0
	if plan != nil {
		steps = len(plan.Steps)
	}
	observability.Routing().OnJourneyComplete(ctx, string(via), steps, time.Since(start), err)
	return plan, err
}

func (e *Engine) planJourney(ctx context.Context, from, to journey.Endpoint, via connector.Type) (*Plan, error) {
	g, err := e.connectorGraph(ctx, via)
	if err != nil {
		return nil, err
	}
	path, err := g.FindPath(from.Floor, to.Floor)
	if err != nil {
		if errs.Recoverable(err) {
			e.logger.Warn("no connector path", "from", from.Floor, "to", to.Floor, "via", via)
			return nil, nil
		}
		return nil, err
	}

	if err := e.yield(ctx); err != nil {
		return nil, err
	}

	steps := journey.BuildSteps(from, to, via, path)
	return &Plan{
		Steps:         steps,
		Destination:   to,
		Precalculated: e.precalculate(ctx, steps),
	}, nil
}

// precalculate routes every walking step concurrently. A failing step is
// logged and left out; it never stops the others.
func (e *Engine) precalculate(ctx context.Context, steps []journey.RouteStep) map[string][]string {
	var (
		mu  sync.Mutex
		out = make(map[string][]string, len(steps))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Workers)
	for _, step := range steps {
		if step.IsVerticalTransition {
			continue
		}
		g.Go(func() error {
			nodes, err := e.routeNodes(gctx, step.Floor, step.FromID, step.ToID)
			if err != nil {
				e.logger.Warn("step pre-calculation failed", "floor", step.Floor, "from", step.FromID, "to", step.ToID, "error", err)
				return nil
			}
			if nodes == nil {
				return nil
			}
			mu.Lock()
			out[step.Key()] = nodes
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	e.logger.Debug("pre-calculated steps", "steps", len(steps), "routes", len(out))
	return out
}

// ComputeMultiFloorRoute plans a journey and starts the engine's state
// machine on it. When no connector chain exists, (nil, nil) is returned
// and the current journey is left untouched.
func (e *Engine) ComputeMultiFloorRoute(ctx context.Context, from, to journey.Endpoint, via connector.Type) ([]journey.RouteStep, error) {
	plan, err := e.PlanJourney(ctx, from, to, via)
	if err != nil || plan == nil {
		return nil, err
	}
	e.machine.Start(plan.Steps, plan.Destination, plan.Precalculated)
	return plan.Steps, nil
}

// NewMachine returns a state machine that computes missing step paths with
// this engine and publishes to publish.
func (e *Engine) NewMachine(publish journey.PublishFunc) *journey.Machine {
	return journey.NewMachine(e.routeNodes,
		journey.WithPublisher(publish),
		journey.WithMachineLogger(e.logger),
	)
}

// OnFloorChange notifies the engine's state machine that the displayed
// floor changed. It returns the published path, if any.
func (e *Engine) OnFloorChange(ctx context.Context, floor string) ([]string, bool, error) {
	return e.machine.OnFloor(ctx, floor)
}

// AdvanceRoute moves the journey to its next step and reports whether it
// is still active.
func (e *Engine) AdvanceRoute() bool {
	return e.machine.Advance()
}

// ClearRoute abandons the current journey.
func (e *Engine) ClearRoute() {
	e.machine.Clear()
}

// Journey returns a snapshot of the current journey.
func (e *Engine) Journey() journey.MultiFloorRoute {
	return e.machine.Snapshot()
}
