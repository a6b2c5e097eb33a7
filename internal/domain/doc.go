// Package domain models a hypothetical meteor impact and the single interactive
// session that configures, animates, and narrates it.
//
// # Impact Model
//
// [CalculateImpact] maps impact parameters to simplified physical consequences:
//
//	mass      = 3000 kg/m³ × (4/3)π(d/2)³          (stony meteorite density)
//	energy    = ½ × mass × (v × 1000)²  joules
//	megatons  = joules / 4.184e15
//	crater    = C × megatons^(1/3.4) × sin(angle)  km,  C = 180 / (1e8)^(1/3.4)
//	seismic   = max(0, 0.67 × log10(joules) − 5.87), one decimal
//
// C is calibrated so that 100 million megatons (a Chicxulub-scale impact)
// produces a 180 km crater. Two clamps follow the power law, in this order:
//
//	impactor < 50 m:  crater ≤ 20 × d / 1000 km
//	always:           crater ≥ d / 1000 km
//
// The model performs no validation. Non-positive or non-finite input yields
// NaN or Inf rather than an error; callers at the API boundary use
// [Params.Validate].
//
// Formatting: values below 1000 render with two decimals ("15.34"); larger
// values render in exponential notation with two fraction digits and an
// unpadded exponent ("7.51e+4").
//
// # Near-Earth Objects
//
// Live records come from the JPL SBDB Close-Approach Data API. Diameters are
// not part of that feed; they are estimated from absolute magnitude H with an
// assumed geometric albedo of 0.15:
//
//	d_km = 1329 / √0.15 × 10^(−0.2 H)
//
// and rounded to whole meters. Miss distances arrive in astronomical units and
// are converted with 1 AU = 149,597,870.7 km.
//
// # Session
//
// A session is an immutable [State] snapshot advanced by [Reduce]. The
// animation runs idle → shooting → impact → idle; a run may start only when the
// session is idle and no narrative request is loading (see [State.CanRun]).
package domain
