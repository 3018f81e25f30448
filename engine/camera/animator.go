package camera

// MinAnimationDuration is the shortest non-zero animation length in seconds.
const MinAnimationDuration float32 = 0.1

type animatorPhase int

const (
	phaseIdle animatorPhase = iota
	phaseAnimating
)

// Animator interpolates a camera State toward a goal over time. It is either idle or animating
// from start to end; advancing past the duration applies end exactly and returns to idle.
// The zero value is an idle animator.
type Animator struct {
	phase    animatorPhase
	start    State
	end      State
	elapsed  float32
	duration float32
	easing   Easing
}

// Start begins an animation from one state to another. A duration of exactly zero completes
// immediately; other durations are raised to MinAnimationDuration. A nil easing uses EaseInOut.
//
// Parameters:
//   - from: the state at progress 0
//   - to: the state at progress 1
//   - duration: animation length in seconds
//   - easing: progress curve
//
// Returns:
//   - bool: true if the animation is running, false if it completed immediately
func (a *Animator) Start(from, to State, duration float32, easing Easing) bool {
	if easing == nil {
		easing = EaseInOut
	}
	*a = Animator{start: from, end: to, easing: easing}
	if duration == 0 {
		return false
	}
	a.phase = phaseAnimating
	a.duration = max(duration, MinAnimationDuration)
	return true
}

// Advance moves the animation forward by dt seconds.
//
// Parameters:
//   - dt: elapsed time in seconds
//
// Returns:
//   - State: the interpolated state to apply
//   - bool: true if this call finished the animation
func (a *Animator) Advance(dt float32) (State, bool) {
	if a.phase != phaseAnimating {
		return a.end, false
	}
	a.elapsed += max(dt, 0)
	if a.elapsed >= a.duration {
		a.phase = phaseIdle
		return a.end, true
	}
	return a.Sample(), false
}

// Sample returns the state at the current elapsed time without advancing.
func (a *Animator) Sample() State {
	if a.elapsed <= 0 {
		return a.start
	}
	if a.elapsed >= a.duration {
		return a.end
	}
	return a.start.Lerp(a.end, a.easing(a.elapsed/a.duration))
}

// Cancel returns the animator to idle, leaving elapsed time where it was.
func (a *Animator) Cancel() {
	a.phase = phaseIdle
}

// Active reports whether an animation is in progress.
func (a *Animator) Active() bool {
	return a.phase == phaseAnimating
}

// Goal returns the end state of the current or most recent animation.
func (a *Animator) Goal() State {
	return a.end
}
