package simulation

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/sarchlab/cachesim/mem/cache"
	"github.com/sarchlab/cachesim/mem/trace"
	"github.com/sarchlab/cachesim/monitoring"
	"github.com/sarchlab/cachesim/sim/hooking"
)

// A Runner replays one trace through many caches. Each cache is driven by its
// own goroutine and caches never share state, so the results do not depend
// on the parallelism.
type Runner struct {
	parallelism int
	batchSize   int
	monitor     *monitoring.Monitor
	recorder    *ResultRecorder
	hooks       []hooking.Hook
}

// NewRunner creates a runner that uses one goroutine per CPU.
func NewRunner() *Runner {
	return &Runner{
		parallelism: runtime.NumCPU(),
		batchSize:   defaultBatchSize,
	}
}

// WithParallelism sets how many caches may be driven at the same time. A
// value below 1 means one per CPU.
func (r *Runner) WithParallelism(n int) *Runner {
	if n < 1 {
		n = runtime.NumCPU()
	}

	r.parallelism = n

	return r
}

// WithBatchSize sets how many accesses each driver replays between progress
// reports.
func (r *Runner) WithBatchSize(n int) *Runner {
	r.batchSize = n
	return r
}

// WithMonitor makes the runner register its caches and progress bars with
// the monitor.
func (r *Runner) WithMonitor(m *monitoring.Monitor) *Runner {
	r.monitor = m
	return r
}

// WithResultRecorder makes the runner record every result.
func (r *Runner) WithResultRecorder(recorder *ResultRecorder) *Runner {
	r.recorder = recorder
	return r
}

// WithHook attaches a hook to every cache that the runner builds.
func (r *Runner) WithHook(h hooking.Hook) *Runner {
	r.hooks = append(r.hooks, h)
	return r
}

// Build creates a simulation with one cache per config. Configs are
// validated before any cache is built.
func (r *Runner) Build(configs []cache.Config) (*Simulation, error) {
	for _, c := range configs {
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("invalid config %q: %w", c.Label(), err)
		}
	}

	s := NewSimulation()

	for _, config := range configs {
		c, err := config.Build()
		if err != nil {
			return nil, err
		}

		if err := s.RegisterCache(c); err != nil {
			return nil, err
		}

		for _, h := range r.hooks {
			c.AcceptHook(h)
		}

		if r.monitor != nil {
			r.monitor.RegisterCache(c)
		}
	}

	return s, nil
}

// Run builds a simulation from the configs and replays the events through it.
func (r *Runner) Run(
	ctx context.Context,
	configs []cache.Config,
	events []trace.AccessEvent,
) (Summary, error) {
	s, err := r.Build(configs)
	if err != nil {
		return Summary{}, err
	}

	return r.RunSimulation(ctx, s, events)
}

// RunSimulation resets every cache of the simulation and replays the events
// through them. The results are in registration order.
func (r *Runner) RunSimulation(
	ctx context.Context,
	s *Simulation,
	events []trace.AccessEvent,
) (Summary, error) {
	caches := s.Caches()
	results := make([]Result, len(caches))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.parallelism)

	for i, c := range caches {
		i, c := i, c

		g.Go(func() error {
			result, err := r.drive(ctx, c, events)
			if err != nil {
				return fmt.Errorf("%s: %w", c.Name(), err)
			}

			results[i] = result

			if r.recorder != nil {
				r.recorder.Record(s.ID(), result)
			}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Summary{}, err
	}

	if r.recorder != nil {
		r.recorder.Flush()
	}

	return Summary{RunID: s.ID(), Results: results}, nil
}

func (r *Runner) drive(
	ctx context.Context,
	c cache.Cache,
	events []trace.AccessEvent,
) (Result, error) {
	name := c.Name()

	if r.monitor != nil {
		r.monitor.BeginRun(name)
		defer r.monitor.EndRun(name)
	}

	c.Reset()

	d := NewDriver(c).WithBatchSize(r.batchSize)

	if r.monitor != nil {
		r.monitor.PublishStats(name, c.Stats())

		bar := r.monitor.CreateProgressBar(name, uint64(len(events)))
		defer r.monitor.CompleteProgressBar(bar)

		d.WithProgress(bar.IncrementFinished).
			WithStats(func(s cache.Statistics) {
				r.monitor.PublishStats(name, s)
			})
	}

	return d.Run(ctx, events)
}
