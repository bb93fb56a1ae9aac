package sim

// Motion is a straight-line move at constant speed, shared by vehicles and
// visitors. Position is linearly interpolated between From and To.
type Motion struct {
	From     Point
	To       Point
	Start    float64 // clock value when the move began
	Duration float64 // seconds; 0 means the move completes on the first update
}

// NewMotion plans a move from one point to another at speed. speed must be
// positive; configuration validation guarantees this for every engine speed.
func NewMotion(from, to Point, start, speed float64) Motion {
	if speed <= 0 {
		panic("NewMotion: speed must be positive")
	}
	return Motion{
		From:     from,
		To:       to,
		Start:    start,
		Duration: from.Distance(to) / speed,
	}
}

// Progress returns the completed fraction of the move at now, clamped to [0, 1].
func (m Motion) Progress(now float64) float64 {
	if m.Duration <= 0 {
		return 1
	}
	elapsed := now - m.Start
	if elapsed <= 0 {
		return 0
	}
	return min(elapsed/m.Duration, 1)
}

// PositionAt interpolates the position at now.
func (m Motion) PositionAt(now float64) Point {
	return m.From.Lerp(m.To, m.Progress(now))
}

// Done reports whether the move has reached its target by now.
func (m Motion) Done(now float64) bool {
	return m.Progress(now) >= 1
}
