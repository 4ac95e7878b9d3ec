package timerview

import (
	"image/color"
	"math"
	"sync"

	"github.com/LISDEAD/beep/internal/core/countdown"
	"github.com/LISDEAD/beep/internal/ui/animation"

	"fyne.io/fyne/v2/canvas"
)

const (
	// ringThickness is the stroke width as a fraction of the ring radius.
	ringThickness = 0.16
	// ringTurn is the ring circumference in turns, so stroke offsets are turn fractions.
	ringTurn = 1.0
)

var (
	trackColor  = color.NRGBA{R: 60, G: 64, B: 72, A: 255}
	remainColor = color.NRGBA{R: 232, G: 190, B: 66, A: 255}
	litColor    = color.NRGBA{R: 255, G: 120, B: 80, A: 255}
	dimColor    = color.NRGBA{R: 120, G: 100, B: 40, A: 255}
)

// Ring is a progress ring. The remaining arc starts at twelve o'clock and shrinks
// clockwise as the countdown runs, so an empty ring means the time is up.
type Ring struct {
	mu       sync.Mutex
	offset   float64
	frame    animation.Frame
	raster   *canvas.Raster
}

func newRing() *Ring {
	ring := &Ring{}
	ring.raster = canvas.NewRasterWithPixels(ring.pixel)
	return ring
}

// SetSnapshot takes the stroke offset from snapshot and redraws.
func (ring *Ring) SetSnapshot(snapshot countdown.Snapshot) {
	ring.mu.Lock()
	ring.offset = snapshot.RingOffset(ringTurn)
	ring.mu.Unlock()
	ring.raster.Refresh()
}

// SetFrame sets the animation frame and redraws.
func (ring *Ring) SetFrame(frame animation.Frame) {
	ring.mu.Lock()
	ring.frame = frame
	ring.mu.Unlock()
	ring.raster.Refresh()
}

func (ring *Ring) pixel(x, y, w, h int) color.Color {
	ring.mu.Lock()
	offset, frame := ring.offset, ring.frame
	ring.mu.Unlock()
	return ringPixel(x, y, w, h, offset, frame)
}

// ringPixel returns the color of one pixel of a ring drawn into a w by h raster.
// offset is the swept part of the stroke in turns.
func ringPixel(x, y, w, h int, offset float64, frame animation.Frame) color.Color {
	cx, cy := float64(w)/2, float64(h)/2
	outer := math.Min(cx, cy)
	inner := outer * (1 - ringThickness)
	dx, dy := float64(x)+0.5-cx, float64(y)+0.5-cy
	distance := math.Hypot(dx, dy)
	if distance > outer || distance < inner {
		return color.Transparent
	}

	if frame == animation.FrameLit {
		return litColor
	}

	// Clockwise angle from twelve o'clock as a fraction of a full turn.
	turn := math.Atan2(dx, -dy) / (2 * math.Pi)
	if turn < 0 {
		turn++
	}
	if turn < offset {
		return trackColor
	}
	if frame == animation.FrameDim {
		return dimColor
	}
	return remainColor
}
