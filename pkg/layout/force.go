package layout

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/matzehuels/forcegraph/pkg/graph"
	"gonum.org/v1/gonum/spatial/r2"
)

// Positions maps node ids to canvas coordinates.
type Positions map[string]r2.Vec

// Bounds returns the smallest box containing every position.
func (p Positions) Bounds() (lo, hi r2.Vec) {
	first := true
	for _, v := range p {
		if first {
			lo, hi = v, v
			first = false
			continue
		}
		lo.X, lo.Y = math.Min(lo.X, v.X), math.Min(lo.Y, v.Y)
		hi.X, hi.Y = math.Max(hi.X, v.X), math.Max(hi.Y, v.Y)
	}
	return lo, hi
}

type body struct {
	pos    r2.Vec
	vel    r2.Vec
	pinned bool
}

type spring struct {
	from, to int
}

// Compute lays out nodes on a width × height canvas and returns the final
// position of every node. Edges whose endpoints are not both in nodes are
// ignored. Neither slice is modified. Repeated node ids keep the first
// occurrence.
func Compute(nodes []graph.Node, edges []graph.Edge, width, height float64, opts ...Option) Positions {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	p := o.params
	if err := p.Validate(); err != nil {
		o.logger.Warn("falling back to default layout params", "err", err)
		p = DefaultParams()
	}
	if o.source == nil {
		o.source = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	width, height = sanitizeExtent(width), sanitizeExtent(height)

	start := time.Now()
	unique, _ := graph.DedupeNodes(nodes)
	index := make(map[string]int, len(unique))
	bodies := make([]body, len(unique))
	for i, n := range unique {
		index[n.ID] = i
		bodies[i].pos = r2.Vec{X: o.source.Float64() * width, Y: o.source.Float64() * height}
		if at, ok := o.pinned[n.ID]; ok {
			bodies[i].pos = clampVec(at, width, height, p.Margin)
			bodies[i].pinned = true
		}
	}

	springs := make([]spring, 0, len(edges))
	for _, e := range edges {
		from, okFrom := index[e.FromID]
		to, okTo := index[e.ToID]
		if okFrom && okTo {
			springs = append(springs, spring{from: from, to: to})
		}
	}

	sim := simulation{
		params: p,
		center: r2.Vec{X: width / 2, Y: height / 2},
		width:  width,
		height: height,
	}
	for range p.Iterations {
		sim.step(bodies, springs)
	}

	out := make(Positions, len(unique))
	for i, n := range unique {
		out[n.ID] = sim.finite(clampVec(bodies[i].pos, width, height, p.Margin))
	}

	o.logger.Debug("layout computed",
		"nodes", len(unique), "springs", len(springs),
		"iterations", p.Iterations, "elapsed", time.Since(start))
	return out
}

type simulation struct {
	params        Params
	center        r2.Vec
	width, height float64
}

func (s *simulation) step(bodies []body, springs []spring) {
	s.repel(bodies)
	s.attract(bodies, springs)

	p := s.params
	for i := range bodies {
		b := &bodies[i]
		if b.pinned {
			b.vel = r2.Vec{}
			continue
		}
		b.vel = r2.Add(b.vel, r2.Scale(p.Centering, r2.Sub(s.center, b.pos)))
		b.vel = r2.Scale(p.Damping, b.vel)
		b.pos = r2.Add(b.pos, r2.Scale(p.Step, b.vel))
		b.pos = s.finite(clampVec(b.pos, s.width, s.height, p.Margin))
	}
}

// repel applies the pairwise inverse-square force. This is the O(n²) pass; a
// quadtree approximation would replace it for very large graphs.
func (s *simulation) repel(bodies []body) {
	k, eps := s.params.Repulsion, s.params.Epsilon
	for i := 0; i < len(bodies); i++ {
		for j := i + 1; j < len(bodies); j++ {
			d := r2.Sub(bodies[i].pos, bodies[j].pos)
			distSq := math.Max(r2.Dot(d, d), eps)
			f := k / distSq
			unit := r2.Scale(1/math.Sqrt(distSq), d)
			bodies[i].vel = r2.Add(bodies[i].vel, r2.Scale(f, unit))
			bodies[j].vel = r2.Sub(bodies[j].vel, r2.Scale(f, unit))
		}
	}
}

// attract applies Hooke's law along each spring.
func (s *simulation) attract(bodies []body, springs []spring) {
	k, rest, eps := s.params.Spring, s.params.RestLength, s.params.Epsilon
	for _, sp := range springs {
		d := r2.Sub(bodies[sp.to].pos, bodies[sp.from].pos)
		dist := math.Max(r2.Norm(d), eps)
		f := k * (dist - rest)
		unit := r2.Scale(1/dist, d)
		bodies[sp.from].vel = r2.Add(bodies[sp.from].vel, r2.Scale(f, unit))
		bodies[sp.to].vel = r2.Sub(bodies[sp.to].vel, r2.Scale(f, unit))
	}
}

func (s *simulation) finite(v r2.Vec) r2.Vec {
	if !isFinite(v.X) {
		v.X = clamp(s.center.X, s.params.Margin, s.width-s.params.Margin)
	}
	if !isFinite(v.Y) {
		v.Y = clamp(s.center.Y, s.params.Margin, s.height-s.params.Margin)
	}
	return v
}

func clampVec(v r2.Vec, width, height, margin float64) r2.Vec {
	return r2.Vec{
		X: clamp(v.X, margin, width-margin),
		Y: clamp(v.Y, margin, height-margin),
	}
}

// clamp limits v to [lo, hi]. An empty interval collapses to its midpoint.
func clamp(v, lo, hi float64) float64 {
	if hi < lo {
		return (lo + hi) / 2
	}
	return math.Max(lo, math.Min(hi, v))
}

func sanitizeExtent(v float64) float64 {
	if !isFinite(v) || v < 0 {
		return 0
	}
	return v
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
