package domain

import (
	"math"
	"strconv"
	"strings"
)

const (
	meteoriteDensity     = 3000.0 // kg/m³, stony meteorite
	joulesPerMegatonTNT  = 4.184e15
	craterExponent       = 1 / 3.4
	referenceEnergyMT    = 1e8 // Chicxulub-scale energy
	referenceCraterKM    = 180.0
	smallImpactorMeters  = 50.0
	smallCraterRatio     = 20.0 // crater/impactor cap below smallImpactorMeters
	formatScientificFrom = 1000.0
)

// craterConstant scales the power law so referenceEnergyMT yields referenceCraterKM.
var craterConstant = referenceCraterKM / math.Pow(referenceEnergyMT, craterExponent)

// ImpactCalculations are the physical consequences derived from Params.
type ImpactCalculations struct {
	Energy                  float64 `json:"energy"`           // megatons of TNT
	CraterDiameter          float64 `json:"craterDiameter"`   // km
	SeismicMagnitude        float64 `json:"seismicMagnitude"` // Richter
	FormattedEnergy         string  `json:"formattedEnergy"`
	FormattedCraterDiameter string  `json:"formattedCraterDiameter"`
}

// ImpactResults is one completed simulation run: calculations plus narrative.
type ImpactResults struct {
	ImpactCalculations
	Narrative string `json:"narrative"`
}

// CalculateImpact computes kinetic energy, crater size, and seismic magnitude.
// It is deterministic and never fails; invalid input propagates to NaN or Inf.
func CalculateImpact(p Params) ImpactCalculations {
	radius := p.Diameter / 2
	volume := 4.0 / 3.0 * math.Pi * math.Pow(radius, 3)
	mass := meteoriteDensity * volume

	speedMS := p.Speed * 1000
	energyJ := 0.5 * mass * math.Pow(speedMS, 2)
	energyMT := energyJ / joulesPerMegatonTNT

	crater := craterDiameter(p.Diameter, energyMT, p.Angle)
	seismic := math.Max(0, 0.67*math.Log10(energyJ)-5.87)

	return ImpactCalculations{
		Energy:                  energyMT,
		CraterDiameter:          crater,
		SeismicMagnitude:        math.Round(seismic*10) / 10,
		FormattedEnergy:         FormatNumber(energyMT),
		FormattedCraterDiameter: FormatNumber(crater),
	}
}

// craterDiameter applies the angle-scaled power law, then the small-impactor
// cap, then the floor at the impactor's own diameter. Order matters.
func craterDiameter(diameterM, energyMT, angleDeg float64) float64 {
	angleEffect := math.Sin(angleDeg * math.Pi / 180)
	crater := craterConstant * math.Pow(energyMT, craterExponent) * angleEffect

	if limit := diameterM * smallCraterRatio / 1000; diameterM < smallImpactorMeters && crater > limit {
		crater = limit
	}
	if floor := diameterM / 1000; crater < floor {
		crater = floor
	}
	return crater
}

// FormatNumber renders values below 1000 with two decimals and larger values
// in exponential notation, e.g. 75086.3 -> "7.51e+4".
func FormatNumber(v float64) string {
	if v < formatScientificFrom {
		return strconv.FormatFloat(v, 'f', 2, 64)
	}
	return trimExponent(strconv.FormatFloat(v, 'e', 2, 64))
}

// trimExponent drops zero padding from the exponent: "7.51e+04" -> "7.51e+4".
func trimExponent(s string) string {
	i := strings.IndexByte(s, 'e')
	if i < 0 || i+2 >= len(s) {
		return s
	}
	mantissa, sign, digits := s[:i], s[i+1], strings.TrimLeft(s[i+2:], "0")
	if digits == "" {
		digits = "0"
	}
	return mantissa + "e" + string(sign) + digits
}
