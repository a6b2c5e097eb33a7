// Command impactcalc prints impact calculations as JSON without starting the
// service. It runs the same domain model the simulator uses.
//
// Usage:
//
//	go run ./cmd/impactcalc -diameter 370 -speed 30.7 -angle 60
//	go run ./cmd/impactcalc -presets -out data/presets_calculated.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/couchcryptid/impact-simulator/internal/domain"
)

type row struct {
	Designation  string                    `json:"designation"`
	Params       domain.Params             `json:"params"`
	Calculations domain.ImpactCalculations `json:"calculations"`
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func run(args []string, stdout io.Writer) error {
	defaults := domain.DefaultParams()

	fs := flag.NewFlagSet("impactcalc", flag.ContinueOnError)
	diameter := fs.Float64("diameter", defaults.Diameter, "impactor diameter in meters")
	speed := fs.Float64("speed", defaults.Speed, "impact velocity in km/s")
	angle := fs.Float64("angle", defaults.Angle, "impact angle in degrees from horizontal")
	presets := fs.Bool("presets", false, "calculate every static preset at -angle instead of a single impact")
	out := fs.String("out", "", "write JSON to this path instead of stdout")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var rows []row
	if *presets {
		for _, p := range domain.StaticPresets() {
			rows = append(rows, row{Designation: p.Designation, Params: domain.Params{Diameter: p.Diameter, Speed: p.Velocity, Angle: *angle}})
		}
	} else {
		rows = append(rows, row{Designation: domain.CustomPreset, Params: domain.Params{Diameter: *diameter, Speed: *speed, Angle: *angle}})
	}

	for i := range rows {
		if err := rows[i].Params.Validate(); err != nil {
			return fmt.Errorf("%s: %w", rows[i].Designation, err)
		}
		rows[i].Calculations = domain.CalculateImpact(rows[i].Params)
	}

	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal calculations: %w", err)
	}
	data = append(data, '\n')

	if *out == "" {
		_, err = stdout.Write(data)
		return err
	}
	if err := os.WriteFile(*out, data, 0o644); err != nil { //nolint:gosec // output fixture, not a secret
		return fmt.Errorf("write %s: %w", *out, err)
	}
	log.Printf("wrote %d calculations to %s", len(rows), *out)
	return nil
}
