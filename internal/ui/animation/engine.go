package animation

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// Range is a duration sampled uniformly from [Min, Max).
type Range struct {
	Min time.Duration
	Max time.Duration
}

// Sample draws a duration from the range. A degenerate range yields Min.
func (r Range) Sample(rng *rand.Rand) time.Duration {
	if r.Max <= r.Min {
		return r.Min
	}
	return r.Min + time.Duration(rng.Int63n(int64(r.Max-r.Min)))
}

// Config contains animation timing values.
type Config struct {
	FlashOn     Range
	FlashOff    Range
	FlashCycles int

	PulseVisible Range
	PulseHidden  Range
}

type step struct {
	frame Frame
	hold  Range
}

// sequence is a list of frames played in order, once or until cancelled.
type sequence struct {
	steps  []step
	repeat bool
	final  *Frame
}

// Engine drives ring animations. At most one sequence plays at a time.
type Engine struct {
	config Config
	apply  func(Frame)

	mu     sync.Mutex
	stop   context.CancelFunc
	random *rand.Rand
}

// New creates an animation engine. apply is called from the animation goroutine
// with the engine locked, so it must not call back into the engine.
func New(config Config, apply func(Frame)) *Engine {
	return &Engine{
		config: config,
		apply:  apply,
		random: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// StartFlash blinks the ring FlashCycles times and leaves it lit.
func (engine *Engine) StartFlash(ctx context.Context) {
	lit := FrameLit
	seq := sequence{final: &lit}
	for i := 0; i < engine.config.FlashCycles; i++ {
		seq.steps = append(seq.steps,
			step{frame: FrameLit, hold: engine.config.FlashOn},
			step{frame: FrameDim, hold: engine.config.FlashOff},
		)
	}
	engine.play(ctx, seq)
}

// StartPulse fades the ring in and out until stopped.
func (engine *Engine) StartPulse(ctx context.Context) {
	engine.play(ctx, sequence{
		steps: []step{
			{frame: FrameNormal, hold: engine.config.PulseVisible},
			{frame: FrameDim, hold: engine.config.PulseHidden},
		},
		repeat: true,
	})
}

// Stop cancels the sequence in progress, if any. No frame of that sequence is
// applied once Stop returns.
func (engine *Engine) Stop() {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	if engine.stop != nil {
		engine.stop()
		engine.stop = nil
	}
}

// play replaces the current sequence with seq.
func (engine *Engine) play(parent context.Context, seq sequence) {
	engine.mu.Lock()
	if engine.stop != nil {
		engine.stop()
	}
	ctx, cancel := context.WithCancel(parent)
	engine.stop = cancel
	engine.mu.Unlock()

	go func() {
		for {
			for _, s := range seq.steps {
				if !engine.emit(ctx, s.frame) || !hold(ctx, engine.sample(s.hold)) {
					return
				}
			}
			if !seq.repeat || len(seq.steps) == 0 {
				break
			}
		}
		if seq.final != nil {
			engine.emit(ctx, *seq.final)
		}
	}()
}

// emit applies frame unless ctx has ended. Cancellation happens under the same
// lock, so a cancelled sequence never applies another frame.
func (engine *Engine) emit(ctx context.Context, frame Frame) bool {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	if ctx.Err() != nil {
		return false
	}
	engine.apply(frame)
	return true
}

func (engine *Engine) sample(r Range) time.Duration {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	return r.Sample(engine.random)
}

// hold waits for d and reports false if ctx ended first.
func hold(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
