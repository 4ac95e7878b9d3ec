package countdown

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/LISDEAD/beep/internal/core/model"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTick = 10 * time.Millisecond

type recordingPublisher struct {
	events chan Event
}

func newRecordingPublisher() *recordingPublisher {
	return &recordingPublisher{events: make(chan Event, 1024)}
}

func (publisher *recordingPublisher) Publish(event Event) {
	publisher.events <- event
}

// next returns the next event of one of the given types, skipping others.
func (publisher *recordingPublisher) next(t *testing.T, types ...EventType) Event {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case event := <-publisher.events:
			for _, eventType := range types {
				if event.Type == eventType {
					return event
				}
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %v", types)
			return Event{}
		}
	}
}

func (publisher *recordingPublisher) drain() {
	for {
		select {
		case <-publisher.events:
		default:
			return
		}
	}
}

type countingNotifier struct {
	calls atomic.Int32
	err   error
	done  chan struct{}
}

func newCountingNotifier(err error) *countingNotifier {
	return &countingNotifier{err: err, done: make(chan struct{}, 8)}
}

func (notifier *countingNotifier) Notify(_ context.Context, _, _ string) error {
	notifier.calls.Add(1)
	notifier.done <- struct{}{}
	return notifier.err
}

func newTestEngine(seconds int, publisher Publisher, notifier Notifier) *Engine {
	return New(model.TimerConfig{
		Duration:     time.Duration(seconds) * time.Second,
		TickInterval: testTick,
		Notification: model.DefaultNotification(),
	}, Options{
		Publisher: publisher,
		Notifier:  notifier,
		Logger:    zerolog.Nop(),
	})
}

func mustSnapshot(t *testing.T, engine *Engine) Snapshot {
	t.Helper()
	snapshot, err := engine.Snapshot()
	require.NoError(t, err)
	return snapshot
}

func TestEngine_NewIsIdleWithFullDuration(t *testing.T) {
	engine := newTestEngine(90, nil, nil)

	assert.Equal(t, Snapshot{Total: 90, Remaining: 90, Phase: PhaseIdle}, mustSnapshot(t, engine))
	assert.Equal(t, int64(0), engine.spawned.Load())
}

func TestEngine_ConfigureThenReset(t *testing.T) {
	for _, seconds := range []int{0, 1, 5, 3600} {
		engine := newTestEngine(60, nil, nil)
		require.NoError(t, engine.Start())

		require.NoError(t, engine.Configure(seconds))
		require.NoError(t, engine.Reset())

		assert.Equal(t, Snapshot{Total: seconds, Remaining: seconds, Phase: PhaseIdle}, mustSnapshot(t, engine))
	}
}

func TestEngine_ConfigureRejectsNegative(t *testing.T) {
	publisher := newRecordingPublisher()
	engine := newTestEngine(30, publisher, nil)

	err := engine.Configure(-1)

	require.ErrorIs(t, err, ErrInvalidConfiguration)
	assert.Equal(t, Snapshot{Total: 30, Remaining: 30, Phase: PhaseIdle}, mustSnapshot(t, engine))
	assert.Empty(t, publisher.events)
}

func TestEngine_ConfigureStopsRunningCountdown(t *testing.T) {
	publisher := newRecordingPublisher()
	engine := newTestEngine(100, publisher, nil)
	require.NoError(t, engine.Start())
	publisher.next(t, EventUpdate)

	require.NoError(t, engine.Configure(7))
	time.Sleep(5 * testTick)

	assert.Equal(t, Snapshot{Total: 7, Remaining: 7, Phase: PhaseIdle}, mustSnapshot(t, engine))
}

func TestEngine_StartIsIdempotent(t *testing.T) {
	engine := newTestEngine(100, nil, nil)

	require.NoError(t, engine.Start())
	first := mustSnapshot(t, engine)
	require.NoError(t, engine.Start())
	second := mustSnapshot(t, engine)

	assert.Equal(t, PhaseRunning, first.Phase)
	assert.Equal(t, first.Phase, second.Phase)
	assert.Equal(t, first.Total, second.Total)
	assert.Equal(t, int64(1), engine.spawned.Load())
	require.NoError(t, engine.Close())
}

func TestEngine_CountdownCompletes(t *testing.T) {
	publisher := newRecordingPublisher()
	notifier := newCountingNotifier(nil)
	engine := newTestEngine(60, publisher, notifier)
	require.NoError(t, engine.Configure(3))
	publisher.drain()

	start := time.Now()
	require.NoError(t, engine.Start())

	var updates []int
	var last time.Time
	for len(updates) < 3 {
		event := publisher.next(t, EventUpdate, EventCompleted)
		require.Equal(t, EventUpdate, event.Type, "completed before update(0)")
		updates = append(updates, event.Remaining)
		last = event.At
	}
	completed := publisher.next(t, EventUpdate, EventCompleted)

	assert.Equal(t, []int{2, 1, 0}, updates)
	assert.Equal(t, EventCompleted, completed.Type)
	assert.Equal(t, PhaseCompleted, completed.Phase)
	assert.GreaterOrEqual(t, last.Sub(start), 3*testTick-time.Millisecond)

	select {
	case <-notifier.done:
	case <-time.After(time.Second):
		t.Fatal("notifier was not called")
	}

	time.Sleep(5 * testTick)
	assert.Empty(t, publisher.events, "no events after completion")
	assert.Equal(t, int32(1), notifier.calls.Load())
	assert.Equal(t, Snapshot{Total: 3, Remaining: 0, Phase: PhaseCompleted}, mustSnapshot(t, engine))
}

func TestEngine_RemainingDecreasesByOnePerTick(t *testing.T) {
	publisher := newRecordingPublisher()
	engine := newTestEngine(20, publisher, nil)
	require.NoError(t, engine.Start())

	previous := 20
	for previous > 0 {
		event := publisher.next(t, EventUpdate)
		require.Equal(t, previous-1, event.Remaining)
		require.Equal(t, PhaseRunning, event.Phase)
		previous = event.Remaining
	}
	publisher.next(t, EventCompleted)
}

func TestEngine_PauseResumesFromSameValue(t *testing.T) {
	publisher := newRecordingPublisher()
	engine := newTestEngine(50, publisher, nil)
	require.NoError(t, engine.Start())
	publisher.next(t, EventUpdate)
	publisher.next(t, EventUpdate)

	require.NoError(t, engine.Pause())
	paused := mustSnapshot(t, engine)
	require.Equal(t, PhasePaused, paused.Phase)

	time.Sleep(5 * testTick)
	assert.Equal(t, paused, mustSnapshot(t, engine), "paused timer must not tick")

	publisher.drain()
	require.NoError(t, engine.Start())
	resumed := publisher.next(t, EventUpdate)

	assert.Equal(t, paused.Remaining-1, resumed.Remaining)
	require.NoError(t, engine.Close())
}

func TestEngine_PauseIsIdempotent(t *testing.T) {
	engine := newTestEngine(50, nil, nil)

	require.NoError(t, engine.Pause())
	assert.Equal(t, PhaseIdle, mustSnapshot(t, engine).Phase)

	require.NoError(t, engine.Start())
	require.NoError(t, engine.Pause())
	require.NoError(t, engine.Pause())
	assert.Equal(t, PhasePaused, mustSnapshot(t, engine).Phase)
}

func TestEngine_NoDecrementAfterPauseReturns(t *testing.T) {
	engine := New(model.TimerConfig{
		Duration:     time.Hour,
		TickInterval: time.Millisecond,
	}, Options{Logger: zerolog.Nop()})

	for i := 0; i < 50; i++ {
		require.NoError(t, engine.Start())
		time.Sleep(time.Duration(i%4) * time.Millisecond)
		require.NoError(t, engine.Pause())

		before := mustSnapshot(t, engine)
		time.Sleep(3 * time.Millisecond)
		after := mustSnapshot(t, engine)
		require.Equal(t, before, after, "iteration %d", i)
	}
}

func TestEngine_ResetEmitsUpdate(t *testing.T) {
	publisher := newRecordingPublisher()
	engine := newTestEngine(10, publisher, nil)
	require.NoError(t, engine.Start())
	publisher.next(t, EventUpdate)

	require.NoError(t, engine.Reset())

	var event Event
	for event.Phase != PhaseIdle {
		event = publisher.next(t, EventUpdate)
	}
	assert.Equal(t, 10, event.Remaining)
	assert.Equal(t, Snapshot{Total: 10, Remaining: 10, Phase: PhaseIdle}, mustSnapshot(t, engine))
}

func TestEngine_StartWithNothingRemainingIsNoop(t *testing.T) {
	publisher := newRecordingPublisher()
	notifier := newCountingNotifier(nil)
	engine := newTestEngine(10, publisher, notifier)
	require.NoError(t, engine.Configure(0))
	publisher.drain()

	require.NoError(t, engine.Start())
	time.Sleep(5 * testTick)

	assert.Equal(t, Snapshot{Total: 0, Remaining: 0, Phase: PhaseIdle}, mustSnapshot(t, engine))
	assert.Empty(t, publisher.events)
	assert.Equal(t, int64(0), engine.spawned.Load())
	assert.Equal(t, int32(0), notifier.calls.Load())
}

func TestEngine_StartAfterCompletionIsNoop(t *testing.T) {
	publisher := newRecordingPublisher()
	notifier := newCountingNotifier(nil)
	engine := newTestEngine(1, publisher, notifier)
	require.NoError(t, engine.Start())
	publisher.next(t, EventCompleted)
	<-notifier.done

	require.NoError(t, engine.Start())
	time.Sleep(5 * testTick)

	assert.Equal(t, PhaseCompleted, mustSnapshot(t, engine).Phase)
	assert.Equal(t, int32(1), notifier.calls.Load())
	assert.Equal(t, int64(1), engine.spawned.Load())
}

func TestEngine_ConcurrentStartSpawnsOneTask(t *testing.T) {
	engine := newTestEngine(100, nil, nil)

	var wg sync.WaitGroup
	begin := make(chan struct{})
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-begin
			assert.NoError(t, engine.Start())
		}()
	}
	close(begin)
	wg.Wait()

	assert.Equal(t, int64(1), engine.spawned.Load())
	assert.LessOrEqual(t, engine.active.Load(), int64(1))
	require.NoError(t, engine.Close())
}

func TestEngine_StaleTaskExitsAfterRestart(t *testing.T) {
	engine := newTestEngine(100, nil, nil)

	for i := 0; i < 20; i++ {
		require.NoError(t, engine.Start())
		require.NoError(t, engine.Pause())
	}
	require.NoError(t, engine.Start())

	require.Eventually(t, func() bool {
		return engine.active.Load() == 1
	}, time.Second, testTick)
	require.NoError(t, engine.Close())
	require.Eventually(t, func() bool {
		return engine.active.Load() == 0
	}, time.Second, testTick)
}

func TestEngine_NotificationFailureDoesNotAffectState(t *testing.T) {
	notifier := newCountingNotifier(errors.New("no notification daemon"))
	engine := newTestEngine(1, nil, notifier)
	require.NoError(t, engine.Start())

	select {
	case <-notifier.done:
	case <-time.After(time.Second):
		t.Fatal("notifier was not called")
	}

	assert.Equal(t, Snapshot{Total: 1, Remaining: 0, Phase: PhaseCompleted}, mustSnapshot(t, engine))
	require.NoError(t, engine.Reset())
	assert.Equal(t, PhaseIdle, mustSnapshot(t, engine).Phase)
}

func TestEngine_DisabledNotificationIsSkipped(t *testing.T) {
	notifier := newCountingNotifier(nil)
	publisher := newRecordingPublisher()
	engine := New(model.TimerConfig{
		Duration:     time.Second,
		TickInterval: testTick,
	}, Options{Publisher: publisher, Notifier: notifier, Logger: zerolog.Nop()})

	require.NoError(t, engine.Start())
	publisher.next(t, EventCompleted)
	time.Sleep(5 * testTick)

	assert.Equal(t, int32(0), notifier.calls.Load())
}

type panickingPublisher struct {
	armed atomic.Bool
}

func (publisher *panickingPublisher) Publish(Event) {
	if publisher.armed.Load() {
		panic("observer exploded")
	}
}

func TestEngine_PoisonedGuardSurfacesLockFailure(t *testing.T) {
	publisher := &panickingPublisher{}
	engine := newTestEngine(10, publisher, nil)
	publisher.armed.Store(true)

	err := engine.Reset()
	require.ErrorIs(t, err, ErrLockFailure)
	assert.Contains(t, err.Error(), "observer exploded")

	publisher.armed.Store(false)
	require.ErrorIs(t, engine.Start(), ErrLockFailure)
	require.ErrorIs(t, engine.Pause(), ErrLockFailure)
	require.ErrorIs(t, engine.Configure(5), ErrLockFailure)
	_, err = engine.Snapshot()
	require.ErrorIs(t, err, ErrLockFailure)
}

func TestEngine_TickTaskStopsOnLockFailure(t *testing.T) {
	publisher := &panickingPublisher{}
	engine := newTestEngine(10, publisher, nil)
	require.NoError(t, engine.Start())
	publisher.armed.Store(true)

	require.Eventually(t, func() bool {
		return engine.active.Load() == 0
	}, time.Second, testTick)
	assert.Equal(t, PhaseRunning, engine.phase)
}

type blockingNotifier struct {
	release chan struct{}
	calls   atomic.Int32
}

func (notifier *blockingNotifier) Notify(ctx context.Context, _, _ string) error {
	select {
	case <-notifier.release:
	case <-ctx.Done():
		return ctx.Err()
	}
	notifier.calls.Add(1)
	return nil
}

func TestEngine_WaitNotificationsBlocksUntilDelivered(t *testing.T) {
	publisher := newRecordingPublisher()
	notifier := &blockingNotifier{release: make(chan struct{})}
	engine := newTestEngine(1, publisher, notifier)

	require.NoError(t, engine.Start())
	publisher.next(t, EventCompleted)

	short, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, engine.WaitNotifications(short), context.DeadlineExceeded)

	close(notifier.release)
	require.NoError(t, engine.WaitNotifications(context.Background()))
	assert.Equal(t, int32(1), notifier.calls.Load())
}

func TestEngine_WaitNotificationsWithoutCompletion(t *testing.T) {
	engine := newTestEngine(5, newRecordingPublisher(), newCountingNotifier(nil))

	assert.NoError(t, engine.WaitNotifications(context.Background()))
}
