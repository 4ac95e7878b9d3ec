package animation

// Frame is one visual state of the progress ring.
type Frame int

const (
	// FrameNormal draws the ring with its regular colors.
	FrameNormal Frame = iota
	// FrameLit highlights the ring.
	FrameLit
	// FrameDim fades the ring and the time label.
	FrameDim
)

func (frame Frame) String() string {
	switch frame {
	case FrameLit:
		return "lit"
	case FrameDim:
		return "dim"
	default:
		return "normal"
	}
}
