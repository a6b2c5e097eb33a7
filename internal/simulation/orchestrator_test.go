package simulation_test

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/couchcryptid/impact-simulator/internal/domain"
	"github.com/couchcryptid/impact-simulator/internal/observability"
	"github.com/couchcryptid/impact-simulator/internal/simulation"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type stubNarrator struct {
	text string
	err  error

	mu    sync.Mutex
	calls []domain.Params
}

func (n *stubNarrator) Narrate(_ context.Context, p domain.Params, _ domain.ImpactCalculations) (string, error) {
	n.mu.Lock()
	n.calls = append(n.calls, p)
	n.mu.Unlock()
	return n.text, n.err
}

// gatedNarrator blocks until released so tests can observe the impact phase.
type gatedNarrator struct {
	called  chan struct{}
	release chan struct{}
	text    string
}

func newGatedNarrator(text string) *gatedNarrator {
	return &gatedNarrator{
		called:  make(chan struct{}, 1),
		release: make(chan struct{}),
		text:    text,
	}
}

func (n *gatedNarrator) Narrate(ctx context.Context, _ domain.Params, _ domain.ImpactCalculations) (string, error) {
	n.called <- struct{}{}
	select {
	case <-n.release:
		return n.text, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

type recordingPublisher struct {
	err error

	mu      sync.Mutex
	records []domain.RunRecord
}

func (p *recordingPublisher) Publish(_ context.Context, r domain.RunRecord) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.records = append(p.records, r)
	return p.err
}

func newTestMetrics() *observability.Metrics {
	return observability.NewMetricsForTesting()
}

// --- tests ---

func TestOrchestrator_Trigger_Choreography(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	clock := clockwork.NewFakeClock()
	store := simulation.NewStore(domain.InitialState())
	narrator := newGatedNarrator("The sky splits open.")
	o := simulation.New(store, narrator, slog.Default(), newTestMetrics(), simulation.Options{
		ShootDelay:  3 * time.Second,
		ImpactDelay: 2 * time.Second,
		Clock:       clock,
	})

	state, err := o.Trigger(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.AnimationShooting, state.Animation)
	assert.True(t, state.Loading)
	assert.Nil(t, state.Results)

	// Shooting phase holds until the shoot delay elapses.
	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	assert.Equal(t, domain.AnimationShooting, store.Snapshot().Animation)
	clock.Advance(3 * time.Second)

	select {
	case <-narrator.called:
	case <-ctx.Done():
		t.Fatal("narrator was never called")
	}
	during := store.Snapshot()
	assert.Equal(t, domain.AnimationImpact, during.Animation)
	assert.True(t, during.Loading)

	_, err = o.Trigger(ctx)
	require.ErrorIs(t, err, simulation.ErrRunInProgress)
	assert.Equal(t, during, store.Snapshot())

	close(narrator.release)

	// Results are visible while the impact phase lingers.
	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	settled := store.Snapshot()
	assert.False(t, settled.Loading)
	assert.Equal(t, domain.AnimationImpact, settled.Animation)
	require.NotNil(t, settled.Results)
	assert.Equal(t, "The sky splits open.", settled.Results.Narrative)
	assert.Equal(t, "7.51e+4", settled.Results.FormattedEnergy)
	assert.Empty(t, settled.Error)

	clock.Advance(2 * time.Second)
	require.NoError(t, o.Wait(ctx))

	final := store.Snapshot()
	assert.Equal(t, domain.AnimationIdle, final.Animation)
	assert.True(t, final.CanRun())
	assert.NotNil(t, final.Results)
}

func TestOrchestrator_Run_NarrativeFailure(t *testing.T) {
	store := simulation.NewStore(domain.InitialState())
	narrator := &stubNarrator{err: errors.New("401 unauthorized")}
	pub := &recordingPublisher{}
	o := simulation.New(store, narrator, slog.Default(), newTestMetrics(), simulation.Options{
		Clock:     clockwork.NewFakeClock(),
		Publisher: pub,
	})

	require.NoError(t, o.Run(context.Background()))

	s := store.Snapshot()
	assert.Nil(t, s.Results)
	assert.Equal(t, simulation.NarrativeErrorMessage, s.Error)
	assert.False(t, s.Loading)
	assert.Equal(t, domain.AnimationIdle, s.Animation)
	assert.Empty(t, pub.records)
}

func TestOrchestrator_Run_SuccessClearsPreviousError(t *testing.T) {
	store := simulation.NewStore(domain.InitialState())
	narrator := &stubNarrator{err: errors.New("quota exceeded")}
	o := simulation.New(store, narrator, slog.Default(), newTestMetrics(), simulation.Options{
		Clock: clockwork.NewFakeClock(),
	})

	require.NoError(t, o.Run(context.Background()))
	require.NotEmpty(t, store.Snapshot().Error)

	narrator.err = nil
	narrator.text = "A new crater."
	require.NoError(t, o.Run(context.Background()))

	s := store.Snapshot()
	assert.Empty(t, s.Error)
	require.NotNil(t, s.Results)
	assert.Equal(t, "A new crater.", s.Results.Narrative)
}

func TestOrchestrator_Run_UsesParamsAtAdmission(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	clock := clockwork.NewFakeClock()
	store := simulation.NewStore(domain.InitialState())
	narrator := &stubNarrator{text: "ok"}
	o := simulation.New(store, narrator, slog.Default(), newTestMetrics(), simulation.Options{
		ShootDelay: time.Second,
		Clock:      clock,
	})

	_, err := o.Trigger(ctx)
	require.NoError(t, err)

	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	store.Dispatch(domain.ParamChanged{Name: domain.ParamDiameter, Value: 50})
	clock.Advance(time.Second)
	require.NoError(t, o.Wait(ctx))

	require.Len(t, narrator.calls, 1)
	assert.InDelta(t, 1000.0, narrator.calls[0].Diameter, 1e-9)
	assert.InDelta(t, 50.0, store.Snapshot().Params.Diameter, 1e-9)
}

func TestOrchestrator_Run_PublishesRecord(t *testing.T) {
	completed := time.Date(2026, time.October, 19, 15, 10, 0, 0, time.UTC)
	store := simulation.NewStore(domain.InitialState())
	store.Dispatch(domain.PresetSelected{Designation: "Tunguska (1908 est.)"})
	pub := &recordingPublisher{}
	o := simulation.New(store, &stubNarrator{text: "Trees fall."}, slog.Default(), newTestMetrics(), simulation.Options{
		Clock:     clockwork.NewFakeClockAt(completed),
		Publisher: pub,
	})

	require.NoError(t, o.Run(context.Background()))

	require.Len(t, pub.records, 1)
	rec := pub.records[0]
	assert.Equal(t, "Tunguska (1908 est.)", rec.Preset)
	assert.Equal(t, completed, rec.CompletedAt)
	assert.Equal(t, "Trees fall.", rec.Results.Narrative)
	assert.Equal(t, store.Snapshot().Params, rec.Params)
}

func TestOrchestrator_Run_PublishErrorIsNotSurfaced(t *testing.T) {
	store := simulation.NewStore(domain.InitialState())
	pub := &recordingPublisher{err: errors.New("broker unavailable")}
	o := simulation.New(store, &stubNarrator{text: "ok"}, slog.Default(), newTestMetrics(), simulation.Options{
		Clock:     clockwork.NewFakeClock(),
		Publisher: pub,
	})

	require.NoError(t, o.Run(context.Background()))

	s := store.Snapshot()
	assert.Empty(t, s.Error)
	assert.NotNil(t, s.Results)
	assert.Len(t, pub.records, 1)
}

func TestOrchestrator_Run_RejectedWhileLoading(t *testing.T) {
	store := simulation.NewStore(domain.InitialState())
	store.Dispatch(domain.RunStarted{})
	before := store.Snapshot()

	o := simulation.New(store, &stubNarrator{text: "ok"}, slog.Default(), newTestMetrics(), simulation.Options{})

	err := o.Run(context.Background())
	require.ErrorIs(t, err, simulation.ErrRunInProgress)
	assert.Equal(t, before, store.Snapshot())
}

func TestOrchestrator_Wait_ContextExpires(t *testing.T) {
	clock := clockwork.NewFakeClock()
	store := simulation.NewStore(domain.InitialState())
	o := simulation.New(store, &stubNarrator{text: "ok"}, slog.Default(), newTestMetrics(), simulation.Options{
		ShootDelay: time.Hour,
		Clock:      clock,
	})

	_, err := o.Trigger(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, o.Wait(ctx), context.DeadlineExceeded)

	blockCtx, blockCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer blockCancel()
	require.NoError(t, clock.BlockUntilContext(blockCtx, 1))
	clock.Advance(time.Hour)
	require.NoError(t, o.Wait(context.Background()))
}

func TestOrchestrator_Run_CancelledContextStillReturnsToIdle(t *testing.T) {
	store := simulation.NewStore(domain.InitialState())
	o := simulation.New(store, &stubNarrator{text: "ok"}, slog.Default(), newTestMetrics(), simulation.Options{
		ShootDelay:  time.Hour,
		ImpactDelay: time.Hour,
		Clock:       clockwork.NewFakeClock(),
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, o.Run(ctx))
	s := store.Snapshot()
	assert.Equal(t, domain.AnimationIdle, s.Animation)
	assert.False(t, s.Loading)
}
