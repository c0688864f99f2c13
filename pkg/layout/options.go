package layout

import (
	"io"
	"math/rand/v2"

	"github.com/charmbracelet/log"
	"gonum.org/v1/gonum/spatial/r2"
)

// Source supplies uniform values in [0, 1) for initial placement.
// *rand.Rand from math/rand/v2 satisfies it.
type Source interface {
	Float64() float64
}

// Option configures a Compute call.
type Option func(*options)

type options struct {
	params Params
	source Source
	pinned map[string]r2.Vec
	logger *log.Logger
}

func defaultOptions() options {
	return options{
		params: DefaultParams(),
		logger: log.New(io.Discard),
	}
}

// WithParams overrides the simulation constants. Invalid params are ignored
// and the defaults are used instead.
func WithParams(p Params) Option {
	return func(o *options) { o.params = p }
}

// WithSeed makes initial placement reproducible.
func WithSeed(seed uint64) Option {
	return func(o *options) { o.source = NewSource(seed) }
}

// WithSource draws initial placement from src.
func WithSource(src Source) Option {
	return func(o *options) {
		if src != nil {
			o.source = src
		}
	}
}

// WithPinned fixes nodes at the given coordinates. Pinned nodes exert forces
// on the rest of the graph but never move. Coordinates are clamped to the
// margin box.
func WithPinned(pinned map[string]r2.Vec) Option {
	return func(o *options) { o.pinned = pinned }
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *log.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// NewSource returns a PCG-backed source for seed.
func NewSource(seed uint64) Source {
	return rand.New(rand.NewPCG(seed, seed^0xdeadbeef))
}
