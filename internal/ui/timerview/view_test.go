package timerview

import (
	"context"
	"image/color"
	"testing"
	"time"

	"github.com/LISDEAD/beep/internal/core/bridge"
	"github.com/LISDEAD/beep/internal/core/countdown"
	"github.com/LISDEAD/beep/internal/core/model"
	"github.com/LISDEAD/beep/internal/ui/animation"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fyne.io/fyne/v2/test"
)

func TestRingPixel(t *testing.T) {
	const size = 100

	t.Run("outside and hole are transparent", func(t *testing.T) {
		assert.Equal(t, color.Transparent, ringPixel(0, 0, size, size, 0, animation.FrameNormal))
		assert.Equal(t, color.Transparent, ringPixel(50, 50, size, size, 0, animation.FrameNormal))
	})

	t.Run("full ring before start", func(t *testing.T) {
		assert.Equal(t, remainColor, ringPixel(52, 2, size, size, 0, animation.FrameNormal))
		assert.Equal(t, remainColor, ringPixel(2, 50, size, size, 0, animation.FrameNormal))
	})

	t.Run("elapsed arc runs clockwise from twelve", func(t *testing.T) {
		// Right side is a quarter turn, left side three quarters.
		assert.Equal(t, trackColor, ringPixel(97, 50, size, size, 0.5, animation.FrameNormal))
		assert.Equal(t, remainColor, ringPixel(2, 50, size, size, 0.5, animation.FrameNormal))
	})

	t.Run("empty ring when complete", func(t *testing.T) {
		assert.Equal(t, trackColor, ringPixel(2, 50, size, size, 1, animation.FrameNormal))
	})

	t.Run("frames recolor the ring", func(t *testing.T) {
		assert.Equal(t, litColor, ringPixel(2, 50, size, size, 1, animation.FrameLit))
		assert.Equal(t, dimColor, ringPixel(2, 50, size, size, 0, animation.FrameDim))
	})
}

func TestRing_SetSnapshotUsesStrokeOffset(t *testing.T) {
	ring := newRing()

	ring.SetSnapshot(countdown.Snapshot{Total: 60, Remaining: 45})
	assert.InDelta(t, 0.25, ring.offset, 1e-9)
	assert.Equal(t, trackColor, ring.pixel(85, 15, 100, 100))
	assert.Equal(t, remainColor, ring.pixel(2, 50, 100, 100))

	ring.SetSnapshot(countdown.Snapshot{})
	assert.Zero(t, ring.offset)
}

func newTestView(t *testing.T, seconds int) (*View, *bridge.Bridge) {
	t.Helper()
	app := test.NewApp()
	t.Cleanup(app.Quit)

	hub := bridge.New(zerolog.Nop())
	engine := countdown.New(model.TimerConfig{
		Duration:     time.Duration(seconds) * time.Second,
		TickInterval: time.Hour,
	}, countdown.Options{Publisher: hub, Logger: zerolog.Nop()})
	hub.Bind(engine)
	t.Cleanup(func() { _ = engine.Close() })

	config := Config{Animation: animation.DefaultConfig()}
	view := New(app, hub, config, zerolog.Nop())
	view.Sync()
	return view, hub
}

func TestView_SyncRendersInitialState(t *testing.T) {
	view, _ := newTestView(t, 90)

	assert.Equal(t, "01:30", view.timeLabel.Text)
	assert.Equal(t, "ready", view.phaseLabel.Text)
	assert.Equal(t, "01:30", view.entry.Text)
	assert.Equal(t, "Start", view.toggleButton.Text)
	assert.False(t, view.toggleButton.Disabled())
}

func TestView_ToggleStartsAndPauses(t *testing.T) {
	view, hub := newTestView(t, 60)

	test.Tap(view.toggleButton)
	snapshot, err := hub.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, countdown.PhaseRunning, snapshot.Phase)
	assert.Equal(t, "Pause", view.toggleButton.Text)

	test.Tap(view.toggleButton)
	snapshot, err = hub.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, countdown.PhasePaused, snapshot.Phase)
	assert.Equal(t, "Resume", view.toggleButton.Text)
	view.animator.Stop()
}

func TestView_DropsFramesFromReplacedAnimation(t *testing.T) {
	view, _ := newTestView(t, 60)
	t.Cleanup(view.animator.Stop)

	view.animate(countdown.PhasePaused)
	stale := view.frameGen.Load()
	view.animate(countdown.PhaseRunning)

	view.showFrame(stale, animation.FrameDim)
	assert.Equal(t, remainColor, view.timeLabel.Color)
	assert.Equal(t, animation.FrameNormal, view.ring.frame)

	view.showFrame(view.frameGen.Load(), animation.FrameDim)
	assert.Equal(t, dimColor, view.timeLabel.Color)
	assert.Equal(t, animation.FrameDim, view.ring.frame)
}

func TestView_ConfigureFromEntry(t *testing.T) {
	view, hub := newTestView(t, 60)

	view.entry.SetText("2:30")
	test.Tap(view.setButton)

	snapshot, err := hub.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, 150, snapshot.Total)
	assert.Equal(t, 150, snapshot.Remaining)
	assert.Equal(t, "02:30", view.timeLabel.Text)
	assert.False(t, view.errorLabel.Visible())
}

func TestView_RejectsInvalidDurationInline(t *testing.T) {
	for _, input := range []string{"abc", "-5", ""} {
		t.Run(input, func(t *testing.T) {
			view, hub := newTestView(t, 60)

			view.entry.SetText(input)
			test.Tap(view.setButton)

			assert.True(t, view.errorLabel.Visible())
			assert.NotEmpty(t, view.errorLabel.Text)
			assert.Error(t, view.entry.Validate())

			snapshot, err := hub.Snapshot()
			require.NoError(t, err)
			assert.Equal(t, 60, snapshot.Total, "timer untouched")
		})
	}
}

func TestView_ZeroDurationDisablesStart(t *testing.T) {
	view, _ := newTestView(t, 0)

	assert.Equal(t, "00:00", view.timeLabel.Text)
	assert.True(t, view.toggleButton.Disabled())
}

func TestView_ResetRestoresTotal(t *testing.T) {
	view, _ := newTestView(t, 60)
	view.Render(countdown.Snapshot{Total: 60, Remaining: 10, Phase: countdown.PhaseIdle})

	test.Tap(view.resetButton)

	assert.Equal(t, "01:00", view.timeLabel.Text)
	assert.Equal(t, 60, view.Snapshot().Remaining)
}

func TestView_RunRendersEventsAndNotifiesListeners(t *testing.T) {
	view, hub := newTestView(t, 60)
	var seen []countdown.Snapshot
	view.OnSnapshot(func(snapshot countdown.Snapshot) {
		seen = append(seen, snapshot)
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	subscription := hub.Subscribe(8)
	done := make(chan struct{})
	go func() {
		view.Run(ctx, subscription)
		close(done)
	}()

	hub.Publish(countdown.Event{Type: countdown.EventUpdate, Phase: countdown.PhaseIdle, Remaining: 45, Total: 60})

	require.Eventually(t, func() bool {
		return view.Snapshot().Remaining == 45
	}, time.Second, 5*time.Millisecond)

	cancel()
	<-done
	assert.Equal(t, 0, hub.Subscribers())
	require.NotEmpty(t, seen)
}

func TestView_RunStopsWhenBridgeCloses(t *testing.T) {
	view, hub := newTestView(t, 60)
	subscription := hub.Subscribe(1)
	done := make(chan struct{})
	go func() {
		view.Run(context.Background(), subscription)
		close(done)
	}()

	hub.Close()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("view did not stop after bridge close")
	}
}

func TestNotifier_RespectsCancelledContext(t *testing.T) {
	app := test.NewApp()
	defer app.Quit()
	notifier := NewNotifier(app)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, notifier.Notify(ctx, "title", "body"), context.Canceled)
	assert.NoError(t, notifier.Notify(context.Background(), "title", "body"))
}
