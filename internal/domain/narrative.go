package domain

import (
	"context"
	"fmt"
	"strconv"
)

// Narrator produces a natural-language account of an impact.
type Narrator interface {
	Narrate(ctx context.Context, params Params, calc ImpactCalculations) (string, error)
}

// NarrativePrompt builds the text-generation prompt for an impact. The prompt
// asks for three paragraphs: the impact moment, the immediate aftermath, and
// the regional and global consequences.
func NarrativePrompt(p Params, calc ImpactCalculations) string {
	return fmt.Sprintf(`You are a planetary scientist and a masterful storyteller.
Describe the consequences of a meteor impact on Earth with the following parameters.
Be vivid, dramatic, and scientifically plausible. Structure your response in three paragraphs.

**Impact Parameters:**
- Meteor Diameter: %s meters
- Impact Velocity: %s km/s
- Impact Angle: %s degrees

**Calculated Effects:**
- Impact Energy: %s Megatons of TNT
- Estimated Crater Diameter: %s km
- Seismic Magnitude: %s on the Richter scale

**Narrative Structure:**
1. **The Impact Moment:** Describe the final moments of the meteor's descent, the atmospheric entry, the blinding flash of light, and the initial explosion upon impact.
2. **Immediate Aftermath:** Detail the formation of the crater, the massive thermal pulse, the devastating air blast (shockwave), and the ground-shaking earthquake that radiates from ground zero.
3. **Regional & Global Consequences:** Explain the broader effects. Mention the ejecta (debris) thrown into the atmosphere, potential for tsunamis if it hit water, and the short and long-term climate effects based on the scale of the impact.
`,
		plain(p.Diameter), plain(p.Speed), plain(p.Angle),
		calc.FormattedEnergy, calc.FormattedCraterDiameter, plain(calc.SeismicMagnitude),
	)
}

// plain prints a number the shortest way that round-trips, without exponents
// for ordinary magnitudes: 1000 -> "1000", 30.7 -> "30.7".
func plain(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
