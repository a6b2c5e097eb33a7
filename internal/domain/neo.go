package domain

import (
	"context"
	"math"
)

const (
	// KilometersPerAU converts astronomical units to kilometers.
	KilometersPerAU = 149597870.7

	// assumedAlbedo is the geometric albedo used for H→diameter estimates.
	assumedAlbedo = 0.15

	// CustomPreset is the sentinel selection meaning "manual parameters".
	CustomPreset = "custom"
)

// NeoData describes a real or historical near-Earth object that can be
// replayed as an impactor.
type NeoData struct {
	Designation       string  `json:"designation"`
	Diameter          float64 `json:"diameter"` // meters
	Velocity          float64 `json:"velocity"` // km/s
	CloseApproachDate string  `json:"closeApproachDate"`
	MissDistance      float64 `json:"missDistance"` // km
}

// NeoFeed fetches the current list of near-Earth objects.
type NeoFeed interface {
	FetchNeoFeed(ctx context.Context) ([]NeoData, error)
}

// DiameterFromMagnitude estimates an asteroid's diameter in whole meters from
// its absolute magnitude H.
func DiameterFromMagnitude(h float64) float64 {
	km := (1329 / math.Sqrt(assumedAlbedo)) * math.Pow(10, -0.2*h)
	return math.Round(km * 1000)
}

var staticPresets = []NeoData{
	{Designation: "Chelyabinsk (2013 est.)", Diameter: 20, Velocity: 19, CloseApproachDate: "2013-Feb-15", MissDistance: 0},
	{Designation: "Tunguska (1908 est.)", Diameter: 60, Velocity: 15, CloseApproachDate: "1908-Jun-30", MissDistance: 0},
	{Designation: "Apophis (Potentially Hazardous)", Diameter: 370, Velocity: 30.7, CloseApproachDate: "2029-Apr-13", MissDistance: 31000},
	{Designation: "Chicxulub (Dinosaur Killer)", Diameter: 10000, Velocity: 20, CloseApproachDate: "Past Event", MissDistance: 0},
}

// StaticPresets returns a copy of the built-in historical and fictional presets.
func StaticPresets() []NeoData {
	out := make([]NeoData, len(staticPresets))
	copy(out, staticPresets)
	return out
}

// MergePresets returns the static presets followed by the live feed.
func MergePresets(feed []NeoData) []NeoData {
	out := make([]NeoData, 0, len(staticPresets)+len(feed))
	out = append(out, staticPresets...)
	return append(out, feed...)
}

// FindPreset looks up a designation by exact match, static presets first.
func FindPreset(feed []NeoData, designation string) (NeoData, bool) {
	for _, neo := range MergePresets(feed) {
		if neo.Designation == designation {
			return neo, true
		}
	}
	return NeoData{}, false
}
