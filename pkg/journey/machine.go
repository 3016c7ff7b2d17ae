package journey

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/charmbracelet/log"
)

// MultiFloorRoute is the observable state of a journey.
type MultiFloorRoute struct {
	IsActive            bool                `json:"isActive"`
	CurrentStep         int                 `json:"currentStep"`
	Steps               []RouteStep         `json:"steps"`
	FinalDestination    Endpoint            `json:"finalDestination"`
	PreCalculatedRoutes map[string][]string `json:"preCalculatedRoutes,omitempty"`
}

// Current returns the active step.
func (r MultiFloorRoute) Current() (RouteStep, bool) {
	if !r.IsActive || r.CurrentStep >= len(r.Steps) {
		return RouteStep{}, false
	}
	return r.Steps[r.CurrentStep], true
}

// ComputeFunc computes a same-floor node path on demand. A nil slice with
// a nil error means no route exists.
type ComputeFunc func(ctx context.Context, floor, from, to string) ([]string, error)

// PublishFunc receives the node path for the current step. A nil path
// clears whatever was shown before.
type PublishFunc func(floor string, nodes []string)

// Machine is the route-continuation state machine. It is safe for
// concurrent use.
type Machine struct {
	mu      sync.Mutex
	route   MultiFloorRoute
	gen     uint64
	compute ComputeFunc
	publish PublishFunc
	logger  *log.Logger
}

// MachineOption configures a Machine.
type MachineOption func(*Machine)

// WithPublisher sets the callback that receives published paths.
func WithPublisher(fn PublishFunc) MachineOption {
	return func(m *Machine) { m.publish = fn }
}

// WithMachineLogger sets the logger.
func WithMachineLogger(l *log.Logger) MachineOption {
	return func(m *Machine) { m.logger = l }
}

// NewMachine returns an inactive machine that computes missing step paths
// with compute.
func NewMachine(compute ComputeFunc, opts ...MachineOption) *Machine {
	m := &Machine{compute: compute, logger: log.Default()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start activates the machine at step 0, replacing any previous journey.
// precalc maps step keys (see [RouteStep.Key]) to node paths and may be nil.
func (m *Machine) Start(steps []RouteStep, final Endpoint, precalc map[string][]string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.gen++
	if len(steps) == 0 {
		m.route = MultiFloorRoute{}
		return
	}
	pre := maps.Clone(precalc)
	if pre == nil {
		pre = make(map[string][]string)
	}
	m.route = MultiFloorRoute{
		IsActive:            true,
		Steps:               slices.Clone(steps),
		FinalDestination:    final,
		PreCalculatedRoutes: pre,
	}
}

// OnFloor is called whenever the traveller's floor changes. It is a no-op
// unless the machine is active and floor is the current step's floor. On a
// match the step's path comes from the pre-calculated set or, failing that,
// from the compute function; it is then published.
//
// A computed path is discarded if the machine advanced or was cleared while
// computing.
func (m *Machine) OnFloor(ctx context.Context, floor string) (nodes []string, published bool, err error) {
	m.mu.Lock()
	step, ok := m.route.Current()
	if !ok || step.Floor != floor {
		m.mu.Unlock()
		return nil, false, nil
	}
	key := step.Key()
	cached, hit := m.route.PreCalculatedRoutes[key]
	cached = slices.Clone(cached)
	gen := m.gen
	m.mu.Unlock()

	if hit {
		m.logger.Debug("publishing pre-calculated step", "floor", floor, "from", step.FromID, "to", step.ToID)
		m.emit(floor, cached)
		return cached, true, nil
	}

	if m.compute == nil {
		return nil, false, nil
	}
	nodes, err = m.compute(ctx, floor, step.FromID, step.ToID)
	if err != nil {
		return nil, false, err
	}

	m.mu.Lock()
	if m.gen != gen {
		m.mu.Unlock()
		m.logger.Debug("discarding stale step result", "floor", floor, "key", key)
		return nil, false, nil
	}
	if nodes != nil {
		m.route.PreCalculatedRoutes[key] = nodes
	}
	m.mu.Unlock()

	m.emit(floor, nodes)
	return nodes, true, nil
}

func (m *Machine) emit(floor string, nodes []string) {
	if m.publish != nil {
		m.publish(floor, nodes)
	}
}

// Advance moves to the next step. Advancing past the last step deactivates
// the machine and drops its steps, pre-calculated paths and destination.
// It reports whether the machine is still active. Advancing an inactive
// machine does nothing.
func (m *Machine) Advance() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.route.IsActive {
		return false
	}
	m.gen++
	m.route.CurrentStep++
	if m.route.CurrentStep >= len(m.route.Steps) {
		m.route = MultiFloorRoute{}
		return false
	}
	return true
}

// Clear resets the machine to inactive regardless of its state.
func (m *Machine) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gen++
	m.route = MultiFloorRoute{}
}

// Restore replaces the machine's state with a snapshot, typically one
// persisted between requests. Inactive or out-of-range snapshots reset the
// machine.
func (m *Machine) Restore(r MultiFloorRoute) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.gen++
	if !r.IsActive || r.CurrentStep < 0 || r.CurrentStep >= len(r.Steps) {
		m.route = MultiFloorRoute{}
		return
	}
	m.route = r.clone()
	if m.route.PreCalculatedRoutes == nil {
		m.route.PreCalculatedRoutes = make(map[string][]string)
	}
}

// Active reports whether a journey is in progress.
func (m *Machine) Active() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.route.IsActive
}

// Snapshot returns a deep copy of the current state.
func (m *Machine) Snapshot() MultiFloorRoute {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.route.clone()
}

func (r MultiFloorRoute) clone() MultiFloorRoute {
	out := r
	out.Steps = slices.Clone(r.Steps)
	if r.PreCalculatedRoutes != nil {
		out.PreCalculatedRoutes = make(map[string][]string, len(r.PreCalculatedRoutes))
		for k, v := range r.PreCalculatedRoutes {
			out.PreCalculatedRoutes[k] = slices.Clone(v)
		}
	}
	return out
}
