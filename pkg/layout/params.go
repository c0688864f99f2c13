package layout

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Default simulation constants.
const (
	DefaultRepulsion  = 30000.0
	DefaultRestLength = 90.0
	DefaultSpring     = 0.5
	DefaultDamping    = 0.85
	DefaultCentering  = 0.02
	DefaultStep       = 0.02
	DefaultIterations = 300
	DefaultMargin     = 10.0
	DefaultEpsilon    = 0.01
)

// Params are the tunable constants of the simulation.
type Params struct {
	Repulsion  float64 `json:"repulsion" toml:"repulsion" yaml:"repulsion" validate:"gt=0"`
	RestLength float64 `json:"rest_length" toml:"rest_length" yaml:"rest_length" validate:"gte=0"`
	Spring     float64 `json:"spring" toml:"spring" yaml:"spring" validate:"gte=0"`
	Damping    float64 `json:"damping" toml:"damping" yaml:"damping" validate:"gt=0,lt=1"`
	Centering  float64 `json:"centering" toml:"centering" yaml:"centering" validate:"gte=0,lte=1"`
	Step       float64 `json:"step" toml:"step" yaml:"step" validate:"gt=0"`
	Iterations int     `json:"iterations" toml:"iterations" yaml:"iterations" validate:"gte=0,lte=100000"`
	Margin     float64 `json:"margin" toml:"margin" yaml:"margin" validate:"gte=0"`
	Epsilon    float64 `json:"epsilon" toml:"epsilon" yaml:"epsilon" validate:"gt=0"`
}

// DefaultParams returns the reference constants.
func DefaultParams() Params {
	return Params{
		Repulsion:  DefaultRepulsion,
		RestLength: DefaultRestLength,
		Spring:     DefaultSpring,
		Damping:    DefaultDamping,
		Centering:  DefaultCentering,
		Step:       DefaultStep,
		Iterations: DefaultIterations,
		Margin:     DefaultMargin,
		Epsilon:    DefaultEpsilon,
	}
}

var validate = validator.New()

// Validate reports the first constraint violation, if any.
func (p Params) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("invalid layout params: %w", err)
	}
	return nil
}
