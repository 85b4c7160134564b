package sim

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/physics"
)

type member struct {
	sim *Simulator
	cfg Config
}

// Ensemble runs independent simulators concurrently, one goroutine each.
// Members must not share a System.
type Ensemble struct {
	members []member
	systems map[*physics.System]int
	limit   int
}

func NewEnsemble() *Ensemble {
	return &Ensemble{
		systems: make(map[*physics.System]int),
		limit:   -1,
	}
}

// Add queues s to run with cfg.
func (e *Ensemble) Add(s *Simulator, cfg Config) error {
	idx := len(e.members)
	if s == nil {
		return fmt.Errorf("%w: ensemble member %d is nil", dynamo.ErrInvalidConfig, idx)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("ensemble member %d: %w", idx, err)
	}
	if j, ok := e.systems[s.sys]; ok {
		return fmt.Errorf("%w: ensemble members %d and %d share a system", dynamo.ErrInvalidConfig, j, idx)
	}
	e.systems[s.sys] = idx
	e.members = append(e.members, member{sim: s, cfg: cfg})
	return nil
}

// SetLimit caps the number of members running at once; n <= 0 means no cap.
func (e *Ensemble) SetLimit(n int) {
	if n <= 0 {
		n = -1
	}
	e.limit = n
}

func (e *Ensemble) Len() int { return len(e.members) }

// Run runs every member. The first failure cancels the others; results are
// index-aligned with Add order and include partial results.
func (e *Ensemble) Run(ctx context.Context) ([]*Result, error) {
	results := make([]*Result, len(e.members))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.limit)

	for i, m := range e.members {
		i, m := i, m
		g.Go(func() error {
			res, err := m.sim.Run(gctx, m.cfg)
			results[i] = res
			if err != nil {
				return fmt.Errorf("member %d: %w", i, err)
			}
			return nil
		})
	}

	return results, g.Wait()
}
