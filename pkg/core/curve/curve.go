// Package curve evaluates parametrized deterioration curves mapping component
// age to expected condition. Curves are validated once at construction; every
// evaluation after that is a cheap pure function.
package curve

import (
	"errors"
	"fmt"
	"math"

	"capital_planning/pkg/models"
)

// ErrInvalidCurveParameters is returned when a curve's parameters produce a
// condition function that improves with age anywhere over its service-life
// domain, or when the domain/scale itself is malformed.
var ErrInvalidCurveParameters = errors.New("invalid curve parameters")

// monotonicity is checked by sampling; this resolution catches any realistic
// polynomial wobble over a service life measured in years.
const validationSamples = 200

// Shape is the typed variant behind the flat param1..param6 storage columns.
// ConditionAt returns the raw (unclamped) condition for an age within the
// service-life domain.
type Shape interface {
	Mode() models.InterpolationMode
	ConditionAt(age float64) float64
}

// LinearShape declines proportionally to age/serviceLife between the scale's
// best and worst values.
type LinearShape struct {
	Initial     float64
	Terminal    float64
	ServiceLife float64
}

func (s LinearShape) Mode() models.InterpolationMode { return models.InterpLinear }

func (s LinearShape) ConditionAt(age float64) float64 {
	return s.Initial - (s.Initial-s.Terminal)*(age/s.ServiceLife)
}

// PolynomialShape evaluates coefficients c0..c5 over normalized age
// t = age/serviceLife: condition = c0 + c1*t + c2*t^2 + ... + c5*t^5.
type PolynomialShape struct {
	Coefficients [6]float64
	ServiceLife  float64
}

func (s PolynomialShape) Mode() models.InterpolationMode { return models.InterpPolynomial }

func (s PolynomialShape) ConditionAt(age float64) float64 {
	t := age / s.ServiceLife
	value := 0.0
	power := 1.0
	for _, c := range s.Coefficients {
		value += c * power
		power *= t
	}
	return value
}

// ExponentialShape decays from the scale's best value toward its worst:
// condition = terminal + (initial-terminal) * exp(-decay * age).
type ExponentialShape struct {
	Initial  float64
	Terminal float64
	Decay    float64 // per-year decay rate, param1
}

func (s ExponentialShape) Mode() models.InterpolationMode { return models.InterpExponential }

func (s ExponentialShape) ConditionAt(age float64) float64 {
	return s.Terminal + (s.Initial-s.Terminal)*math.Exp(-s.Decay*age)
}

// Evaluator wraps a validated curve. Construction is the only place
// monotonicity is checked; Evaluate never re-validates.
type Evaluator struct {
	curve models.DeteriorationCurve
	shape Shape
}

// Resolve builds the typed shape variant from the flat parameter slots.
func Resolve(c models.DeteriorationCurve) (Shape, error) {
	switch c.Mode {
	case models.InterpLinear:
		return LinearShape{
			Initial:     c.MaxCondition,
			Terminal:    c.MinCondition,
			ServiceLife: c.ServiceLife,
		}, nil
	case models.InterpPolynomial:
		return PolynomialShape{
			Coefficients: [6]float64{c.Param1, c.Param2, c.Param3, c.Param4, c.Param5, c.Param6},
			ServiceLife:  c.ServiceLife,
		}, nil
	case models.InterpExponential:
		if c.Param1 <= 0 {
			return nil, fmt.Errorf("%w: exponential decay rate must be positive, got %f", ErrInvalidCurveParameters, c.Param1)
		}
		return ExponentialShape{
			Initial:  c.MaxCondition,
			Terminal: c.MinCondition,
			Decay:    c.Param1,
		}, nil
	default:
		return nil, fmt.Errorf("%w: unknown interpolation mode %q", ErrInvalidCurveParameters, c.Mode)
	}
}

// New validates the curve definition and returns a reusable evaluator.
// Validation samples the full service-life domain and rejects any curve whose
// clamped condition increases with age.
func New(c models.DeteriorationCurve) (*Evaluator, error) {
	if c.ServiceLife <= 0 {
		return nil, fmt.Errorf("%w: service life must be positive, got %f", ErrInvalidCurveParameters, c.ServiceLife)
	}
	if c.MaxCondition <= c.MinCondition {
		return nil, fmt.Errorf("%w: max condition %f must exceed min condition %f",
			ErrInvalidCurveParameters, c.MaxCondition, c.MinCondition)
	}

	shape, err := Resolve(c)
	if err != nil {
		return nil, err
	}

	ev := &Evaluator{curve: c, shape: shape}

	prev := ev.Evaluate(0)
	step := c.ServiceLife / float64(validationSamples)
	for i := 1; i <= validationSamples; i++ {
		v := ev.Evaluate(float64(i) * step)
		if v > prev+1e-9 {
			return nil, fmt.Errorf("%w: curve %q condition increases near age %.2f",
				ErrInvalidCurveParameters, c.Name, float64(i)*step)
		}
		prev = v
	}
	return ev, nil
}

// Curve returns the underlying curve record.
func (e *Evaluator) Curve() models.DeteriorationCurve { return e.curve }

// Evaluate returns the condition value at the given age, clamped to the
// curve's scale. Ages beyond the service life hold at the terminal value;
// negative ages are treated as zero.
func (e *Evaluator) Evaluate(age float64) float64 {
	if age < 0 {
		age = 0
	}
	if age > e.curve.ServiceLife {
		age = e.curve.ServiceLife
	}
	v := e.shape.ConditionAt(age)
	if v > e.curve.MaxCondition {
		v = e.curve.MaxCondition
	}
	if v < e.curve.MinCondition {
		v = e.curve.MinCondition
	}
	return v
}

// RemainingLife estimates years until the condition crosses the curve's
// failure threshold, adjusted by the curve's shape. For a linear curve with
// the threshold at the scale minimum this reduces to serviceLife - age.
func (e *Evaluator) RemainingLife(age float64) float64 {
	if age < 0 {
		age = 0
	}
	if age >= e.curve.ServiceLife {
		return 0
	}

	threshold := e.curve.FailThreshold
	if threshold < e.curve.MinCondition {
		threshold = e.curve.MinCondition
	}

	if e.Evaluate(age) <= threshold {
		return 0
	}

	// The validated curve is monotone non-increasing, so bisect for the
	// first age at which condition reaches the threshold.
	lo, hi := age, e.curve.ServiceLife
	if e.Evaluate(hi) > threshold {
		// Curve never reaches the threshold within its domain; remaining
		// life is bounded by the service life itself.
		return e.curve.ServiceLife - age
	}
	for i := 0; i < 64 && hi-lo > 1e-6; i++ {
		mid := (lo + hi) / 2
		if e.Evaluate(mid) > threshold {
			lo = mid
		} else {
			hi = mid
		}
	}
	return hi - age
}
