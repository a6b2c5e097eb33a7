package domain

import (
	"errors"
	"fmt"
	"math"
)

// Params are the user-controlled impact parameters.
type Params struct {
	Diameter float64 `json:"diameter"` // meters
	Speed    float64 `json:"speed"`    // km/s
	Angle    float64 `json:"angle"`    // degrees from horizontal
}

// ParamName identifies a single field of Params.
type ParamName string

const (
	ParamDiameter ParamName = "diameter"
	ParamSpeed    ParamName = "speed"
	ParamAngle    ParamName = "angle"
)

// ErrInvalidParams is wrapped by every validation failure.
var ErrInvalidParams = errors.New("invalid simulation parameters")

// DefaultParams is a 1 km impactor at 20 km/s striking at 45 degrees.
func DefaultParams() Params {
	return Params{Diameter: 1000, Speed: 20, Angle: 45}
}

// Validate reports whether the parameters describe a physical impact.
// CalculateImpact itself never validates.
func (p Params) Validate() error {
	if !isFinite(p.Diameter) || p.Diameter <= 0 {
		return fmt.Errorf("%w: diameter must be positive, got %g", ErrInvalidParams, p.Diameter)
	}
	if !isFinite(p.Speed) || p.Speed <= 0 {
		return fmt.Errorf("%w: speed must be positive, got %g", ErrInvalidParams, p.Speed)
	}
	if !isFinite(p.Angle) || p.Angle < 0 || p.Angle > 90 {
		return fmt.Errorf("%w: angle must be within [0, 90], got %g", ErrInvalidParams, p.Angle)
	}
	return nil
}

// With returns a copy of p with one field replaced.
func (p Params) With(name ParamName, value float64) (Params, error) {
	switch name {
	case ParamDiameter:
		p.Diameter = value
	case ParamSpeed:
		p.Speed = value
	case ParamAngle:
		p.Angle = value
	default:
		return p, fmt.Errorf("%w: unknown parameter %q", ErrInvalidParams, name)
	}
	return p, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
