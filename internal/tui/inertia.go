package tui

import (
	"math"

	"github.com/charmbracelet/harmonica"
)

// Inertia tuning.
const (
	springFrequency = 4.0  // moderate decay speed
	springDamping   = 1.0  // critically damped, no overshoot
	minVelocity     = 0.05 // pixels per frame below which coasting stops
	trackSmoothing  = 0.5  // weight of the newest drag delta
)

// axis holds one drag velocity that a spring pulls toward zero.
type axis struct {
	velocity float64
	accel    float64 // spring velocity of velocity
	spring   harmonica.Spring
}

func newAxis(fps int) axis {
	return axis{spring: harmonica.NewSpring(harmonica.FPS(fps), springFrequency, springDamping)}
}

// step returns the current velocity and decays it.
func (a *axis) step() float64 {
	v := a.velocity
	a.velocity, a.accel = a.spring.Update(a.velocity, a.accel, 0)
	return v
}

// Inertia keeps the model spinning briefly after a rotating drag ends.
// Velocities are in pixels per frame and are fed to Viewer.Rotate.
type Inertia struct {
	yaw, pitch axis
	fps        int
	coasting   bool
}

// NewInertia creates an idle inertia for the given frame rate.
func NewInertia(fps int) *Inertia {
	if fps <= 0 {
		fps = 60
	}
	return &Inertia{
		yaw:   newAxis(fps),
		pitch: newAxis(fps),
		fps:   fps,
	}
}

// Track records one drag delta. Deltas are smoothed so a final jitter does
// not dominate the release velocity.
func (in *Inertia) Track(dx, dy float64) {
	in.coasting = false
	in.yaw.velocity = trackSmoothing*dx + (1-trackSmoothing)*in.yaw.velocity
	in.pitch.velocity = trackSmoothing*dy + (1-trackSmoothing)*in.pitch.velocity
}

// Release starts coasting with the tracked velocity.
func (in *Inertia) Release() {
	in.yaw.accel, in.pitch.accel = 0, 0
	in.coasting = in.speed() >= minVelocity
}

// Stop cancels any motion and forgets tracked velocity.
func (in *Inertia) Stop() {
	in.yaw = newAxis(in.fps)
	in.pitch = newAxis(in.fps)
	in.coasting = false
}

// Active reports whether Step still produces motion.
func (in *Inertia) Active() bool {
	return in.coasting
}

// Step advances one frame and returns the rotation delta to apply.
func (in *Inertia) Step() (dx, dy float64) {
	if !in.coasting {
		return 0, 0
	}
	dx, dy = in.yaw.step(), in.pitch.step()
	if in.speed() < minVelocity {
		in.Stop()
	}
	return dx, dy
}

func (in *Inertia) speed() float64 {
	return math.Hypot(in.yaw.velocity, in.pitch.velocity)
}
