package simulation

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/couchcryptid/impact-simulator/internal/domain"
	"github.com/couchcryptid/impact-simulator/internal/observability"
	"github.com/jonboulle/clockwork"
)

// NarrativeErrorMessage is the single user-facing error for a failed run.
const NarrativeErrorMessage = "Failed to get simulation narrative. Please check your API key and try again."

// ErrRunInProgress is returned when a trigger arrives while a run is loading
// or animating. The trigger is dropped, not queued.
var ErrRunInProgress = errors.New("simulation already in progress")

// Options tunes the animation choreography.
type Options struct {
	ShootDelay  time.Duration // shooting → impact
	ImpactDelay time.Duration // narrative settled → idle
	Clock       clockwork.Clock
	Publisher   domain.ResultPublisher // optional
}

// Orchestrator sequences one simulation run: the shooting animation, the
// impact calculation, the narrative request, and the return to idle.
type Orchestrator struct {
	store       *Store
	narrator    domain.Narrator
	publisher   domain.ResultPublisher
	clock       clockwork.Clock
	shootDelay  time.Duration
	impactDelay time.Duration
	logger      *slog.Logger
	metrics     *observability.Metrics
	inflight    sync.WaitGroup
}

// New creates an Orchestrator over the given session store.
func New(store *Store, narrator domain.Narrator, logger *slog.Logger, metrics *observability.Metrics, opts Options) *Orchestrator {
	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Orchestrator{
		store:       store,
		narrator:    narrator,
		publisher:   opts.Publisher,
		clock:       clock,
		shootDelay:  opts.ShootDelay,
		impactDelay: opts.ImpactDelay,
		logger:      logger,
		metrics:     metrics,
	}
}

// Trigger admits a run and continues it in the background on ctx, which
// should live as long as the service rather than the triggering request.
// It returns the snapshot right after admission.
func (o *Orchestrator) Trigger(ctx context.Context) (domain.State, error) {
	state, err := o.admit()
	if err != nil {
		return state, err
	}

	o.inflight.Add(1)
	go func() {
		defer o.inflight.Done()
		o.run(ctx, state.Params, state.SelectedPreset)
	}()
	return state, nil
}

// Run admits a run and executes it to completion on the calling goroutine.
func (o *Orchestrator) Run(ctx context.Context) error {
	state, err := o.admit()
	if err != nil {
		return err
	}
	o.inflight.Add(1)
	defer o.inflight.Done()
	o.run(ctx, state.Params, state.SelectedPreset)
	return nil
}

// Wait blocks until all admitted runs have returned to idle or ctx is done.
func (o *Orchestrator) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		o.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (o *Orchestrator) admit() (domain.State, error) {
	state, ok := o.store.TryStart()
	if !ok {
		o.metrics.SimulationsRejected.Inc()
		o.logger.Debug("simulation trigger rejected", "animation", state.Animation, "loading", state.Loading)
		return state, ErrRunInProgress
	}
	o.metrics.SimulationsStarted.Inc()
	return state, nil
}

// run executes the admitted sequence. Params are the snapshot taken at
// admission; edits made during the animation do not affect this run.
func (o *Orchestrator) run(ctx context.Context, params domain.Params, preset string) {
	o.metrics.SimulationRunning.Set(1)
	defer o.metrics.SimulationRunning.Set(0)

	o.logger.Info("simulation started",
		"diameter_m", params.Diameter,
		"speed_kms", params.Speed,
		"angle_deg", params.Angle,
		"preset", preset,
	)

	o.sleep(ctx, o.shootDelay)
	o.store.Dispatch(domain.ImpactReached{})

	calc := domain.CalculateImpact(params)
	narrative, err := o.narrator.Narrate(ctx, params, calc)
	if err != nil {
		o.logger.Error("narrative generation failed", "error", err)
		o.metrics.SimulationsCompleted.WithLabelValues("error").Inc()
		o.store.Dispatch(domain.RunFailed{Message: NarrativeErrorMessage})
		o.store.Dispatch(domain.RunSettled{})
	} else {
		results := domain.ImpactResults{ImpactCalculations: calc, Narrative: narrative}
		o.metrics.SimulationsCompleted.WithLabelValues("success").Inc()
		o.store.Dispatch(domain.RunSucceeded{Results: results})
		o.store.Dispatch(domain.RunSettled{})
		o.logger.Info("simulation completed",
			"energy_mt", calc.Energy,
			"crater_km", calc.CraterDiameter,
			"seismic_magnitude", calc.SeismicMagnitude,
		)
		o.publish(ctx, domain.NewRunRecord(preset, params, results, o.clock.Now()))
	}

	o.sleep(ctx, o.impactDelay)
	o.store.Dispatch(domain.AnimationFinished{})
}

// publish hands a completed run to the results sink. Failures are logged and
// never reach the session.
func (o *Orchestrator) publish(ctx context.Context, record domain.RunRecord) {
	if o.publisher == nil {
		return
	}
	if err := o.publisher.Publish(ctx, record); err != nil {
		o.logger.Warn("publish simulation run failed", "run_id", record.ID, "error", err)
		o.metrics.ResultsPublished.WithLabelValues("error").Inc()
		return
	}
	o.metrics.ResultsPublished.WithLabelValues("success").Inc()
}

// sleep waits on the orchestrator clock. Cancellation only shortens the wait;
// the caller still completes the remaining transitions.
func (o *Orchestrator) sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}

	timer := o.clock.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.Chan():
	}
}
