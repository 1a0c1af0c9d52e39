package scroll

// Sample is one observation of the viewport's scroll position.
type Sample struct {
	Top          int // current offset
	Previous     int // offset at the previous sample
	ScrollHeight int // total content height
	ClientHeight int // visible height
}

// Distance returns how far the viewport is from the dir edge.
func (s Sample) Distance(dir Direction) int {
	if dir == Up {
		return max(s.Top, 0)
	}
	return max(s.ScrollHeight-s.ClientHeight-s.Top, 0)
}

// FollowState decides whether newly appended content should pull the
// viewport along.
type FollowState struct {
	Enabled   bool
	Direction Direction
	Noise     int // movement away from the edge up to this size is ignored
	Proximity int // within this distance of the edge, following resumes
}

// Apply evaluates a manual scroll sample and reports whether Enabled flipped.
func (f *FollowState) Apply(s Sample) bool {
	before := f.Enabled

	var away bool
	if f.Direction == Up {
		away = s.Top > s.Previous+f.Noise
	} else {
		away = s.Top < s.Previous-f.Noise
	}

	switch {
	case away:
		f.Enabled = false
	case s.Distance(f.Direction) <= f.Proximity:
		f.Enabled = true
	}
	return f.Enabled != before
}

// Force turns following on unconditionally.
func (f *FollowState) Force() {
	f.Enabled = true
}

// Reset recomputes Enabled from the current distance to the edge.
func (f *FollowState) Reset(distance int) {
	f.Enabled = distance <= f.Proximity
}
