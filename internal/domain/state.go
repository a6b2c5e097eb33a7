package domain

// AnimationState is the scripted animation phase.
type AnimationState string

const (
	AnimationIdle     AnimationState = "idle"
	AnimationShooting AnimationState = "shooting"
	AnimationImpact   AnimationState = "impact"
)

// State is an immutable snapshot of the session. Slices and pointers inside a
// State are never mutated after the snapshot is produced; Reduce always
// allocates replacements.
type State struct {
	Params         Params         `json:"params"`
	SelectedPreset string         `json:"selectedPreset"`
	Results        *ImpactResults `json:"results"`
	Loading        bool           `json:"loading"`
	Error          string         `json:"error,omitempty"`
	Animation      AnimationState `json:"animationState"`
	Feed           []NeoData      `json:"feed"`
	FeedLoading    bool           `json:"feedLoading"`
	Prediction     *NeoData       `json:"prediction"`
}

// InitialState is the session at startup, before the feed has been fetched.
func InitialState() State {
	return State{
		Params:         DefaultParams(),
		SelectedPreset: CustomPreset,
		Animation:      AnimationIdle,
		Feed:           []NeoData{},
		FeedLoading:    true,
	}
}

// CanRun is the run guard: a new simulation may start only when nothing is
// loading and the animation is idle.
func (s State) CanRun() bool {
	return !s.Loading && s.Animation == AnimationIdle
}

// Presets returns the static presets followed by the live feed.
func (s State) Presets() []NeoData {
	return MergePresets(s.Feed)
}

// Event is an input to Reduce.
type Event interface {
	apply(State) State
}

// Reduce returns the snapshot that follows s after e.
func Reduce(s State, e Event) State {
	if e == nil {
		return s
	}
	return e.apply(s)
}

// ParamChanged is a manual edit of one parameter. It discards results and
// resets the preset selection to custom.
type ParamChanged struct {
	Name  ParamName
	Value float64
}

func (e ParamChanged) apply(s State) State {
	p, err := s.Params.With(e.Name, e.Value)
	if err != nil {
		return s
	}
	s.Results = nil
	s.Params = p
	s.SelectedPreset = CustomPreset
	return s
}

// PresetSelected chooses a preset by designation. Diameter and speed are
// copied from the matching record; angle is never touched.
type PresetSelected struct {
	Designation string
}

func (e PresetSelected) apply(s State) State {
	s.Results = nil
	s.SelectedPreset = e.Designation
	if e.Designation == CustomPreset {
		return s
	}
	if neo, ok := FindPreset(s.Feed, e.Designation); ok {
		s.Params.Diameter = neo.Diameter
		s.Params.Speed = neo.Velocity
	}
	return s
}

// PredictionSimulated loads the current prediction into the parameters.
// Without a prediction it is a no-op.
type PredictionSimulated struct{}

func (PredictionSimulated) apply(s State) State {
	if s.Prediction == nil {
		return s
	}
	s.Results = nil
	s.SelectedPreset = s.Prediction.Designation
	s.Params.Diameter = s.Prediction.Diameter
	s.Params.Speed = s.Prediction.Velocity
	return s
}

// FeedLoaded installs the live feed; its first record becomes the prediction.
type FeedLoaded struct {
	Records []NeoData
}

func (e FeedLoaded) apply(s State) State {
	feed := make([]NeoData, len(e.Records))
	copy(feed, e.Records)
	s.Feed = feed
	s.FeedLoading = false
	s.Prediction = nil
	if len(feed) > 0 {
		first := feed[0]
		s.Prediction = &first
	}
	return s
}

// FeedFailed ends feed loading and leaves the feed empty.
type FeedFailed struct{}

func (FeedFailed) apply(s State) State {
	s.FeedLoading = false
	return s
}

// RunStarted clears the previous outcome and begins the shooting phase.
// Callers must check CanRun first.
type RunStarted struct{}

func (RunStarted) apply(s State) State {
	s.Results = nil
	s.Error = ""
	s.Loading = true
	s.Animation = AnimationShooting
	return s
}

// ImpactReached switches the animation to the impact phase.
type ImpactReached struct{}

func (ImpactReached) apply(s State) State {
	s.Animation = AnimationImpact
	return s
}

// RunSucceeded publishes the merged calculations and narrative.
type RunSucceeded struct {
	Results ImpactResults
}

func (e RunSucceeded) apply(s State) State {
	r := e.Results
	s.Results = &r
	s.Error = ""
	return s
}

// RunFailed publishes a user-facing error and discards any results.
type RunFailed struct {
	Message string
}

func (e RunFailed) apply(s State) State {
	s.Results = nil
	s.Error = e.Message
	return s
}

// RunSettled clears the loading flag once the narrative step has finished,
// whatever its outcome.
type RunSettled struct{}

func (RunSettled) apply(s State) State {
	s.Loading = false
	return s
}

// AnimationFinished returns the animation to idle.
type AnimationFinished struct{}

func (AnimationFinished) apply(s State) State {
	s.Animation = AnimationIdle
	return s
}
