package viz

import (
	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/physics"
)

// Trails records recent positions of every body. It is a sim.Observer and
// only reads the system.
type Trails struct {
	capacity int
	every    int
	points   [][]dynamo.Vector
	next     []int
	full     []bool
}

// NewTrails keeps the last capacity samples per body, sampling every
// every-th step.
func NewTrails(capacity, every int) *Trails {
	if capacity < 1 {
		capacity = 1
	}
	if every < 1 {
		every = 1
	}
	return &Trails{capacity: capacity, every: every}
}

func (t *Trails) OnStep(step int, _ float64, sys *physics.System) {
	if step%t.every != 0 {
		return
	}
	if len(t.points) != sys.Len() {
		t.points = make([][]dynamo.Vector, sys.Len())
		t.next = make([]int, sys.Len())
		t.full = make([]bool, sys.Len())
	}
	for i, b := range sys.Bodies() {
		pos := b.Position()
		if !t.full[i] {
			t.points[i] = append(t.points[i], pos)
			if len(t.points[i]) == t.capacity {
				t.full[i] = true
			}
			continue
		}
		t.points[i][t.next[i]] = pos
		t.next[i] = (t.next[i] + 1) % t.capacity
	}
}

// Points returns the trail of body i, oldest first.
func (t *Trails) Points(i int) []dynamo.Vector {
	if i < 0 || i >= len(t.points) {
		return nil
	}
	pts := t.points[i]
	if !t.full[i] {
		return append([]dynamo.Vector(nil), pts...)
	}
	out := make([]dynamo.Vector, 0, len(pts))
	out = append(out, pts[t.next[i]:]...)
	return append(out, pts[:t.next[i]]...)
}

func (t *Trails) Clear() {
	t.points, t.next, t.full = nil, nil, nil
}
