// Package session orchestrates one trace attempt: it classifies touch
// events against the shape outline, tracks coverage, and turns state
// transitions into feedback requests.
package session

import (
	"fmt"
	"time"

	"github.com/verte-zerg/tracer/internal/coverage"
	"github.com/verte-zerg/tracer/internal/feedback"
	"github.com/verte-zerg/tracer/internal/geometry"
)

// State is the trace session lifecycle state.
type State int

// Session states.
const (
	// Idle means no shape has been assigned yet.
	Idle State = iota
	// Ready means a shape is assigned and waiting for the first touch.
	Ready
	// Tracing means a gesture is in progress.
	Tracing
	// Complete means the attempt passed the quality-completion check.
	Complete
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Ready:
		return "ready"
	case Tracing:
		return "tracing"
	case Complete:
		return "complete"
	}
	return "unknown"
}

// Default timer delays.
const (
	// DefaultIdleResetDelay is how long a lifted finger may rest before
	// a partial trace is discarded.
	DefaultIdleResetDelay = 5 * time.Second
	// DefaultCompleteResetDelay is how long a completed attempt is shown
	// before the session returns to Ready.
	DefaultCompleteResetDelay = 5 * time.Second
	// DefaultPulseGap separates the two pulses of the corner emphasis.
	DefaultPulseGap = 80 * time.Millisecond
)

// Progress milestones announced once per attempt.
var milestones = []float64{0.25, 0.5, 0.75}

// Config tunes classification bands, cue cooldowns, and timer delays.
type Config struct {
	Bands              geometry.Bands
	Cooldowns          feedback.Cooldowns
	IdleResetDelay     time.Duration
	CompleteResetDelay time.Duration
	PulseGap           time.Duration
}

// DefaultConfig returns the standard session configuration.
func DefaultConfig() Config {
	return Config{
		Bands:              geometry.DefaultBands(),
		Cooldowns:          feedback.DefaultCooldowns(),
		IdleResetDelay:     DefaultIdleResetDelay,
		CompleteResetDelay: DefaultCompleteResetDelay,
		PulseGap:           DefaultPulseGap,
	}
}

// Session is the stateful trace orchestrator. It is driven by a single
// logical event stream: TouchMoved, TouchEnded, and Tick must be called
// from the same goroutine (or serialized by the caller), and each call
// runs its full classify-update-decide pipeline before returning. Timer
// work happens inside Tick so delayed actions flow through the same
// queue as touch events.
type Session struct {
	cfg Config
	now func() time.Time

	state    State
	shape    geometry.Shape
	hasShape bool
	rect     geometry.Rect
	path     []geometry.Point

	tracker *coverage.Tracker
	arbiter *feedback.Arbiter

	touch     geometry.Point
	hasTouch  bool
	onPath    bool
	started   bool
	offCanvas bool

	progress      float64
	strays        int
	milestoneNext int
	startedAt     time.Time

	narrator bool

	// Pending timers. A new touch invalidates the idle reset; stopping
	// feedback or completing invalidates the pulse. Stale timers must
	// never fire.
	resetAt      time.Time
	resetPending bool
	pulseAt      time.Time
	pulsePending bool
}

// New creates a session in the Idle state using the wall clock.
func New(cfg Config) *Session {
	return NewWithClock(cfg, time.Now)
}

// NewWithClock creates a session with an injected clock, used by tests
// to drive cooldowns and timers deterministically.
func NewWithClock(cfg Config, now func() time.Time) *Session {
	return &Session{
		cfg:     cfg,
		now:     now,
		state:   Idle,
		arbiter: feedback.NewArbiter(cfg.Cooldowns),
	}
}

// State returns the current lifecycle state.
func (s *Session) State() State { return s.state }

// Shape returns the assigned shape, if any.
func (s *Session) Shape() (geometry.Shape, bool) { return s.shape, s.hasShape }

// Rect returns the canvas rectangle.
func (s *Session) Rect() geometry.Rect { return s.rect }

// Progress returns the coverage ratio of the current attempt.
func (s *Session) Progress() float64 { return s.progress }

// OnPath reports whether the latest touch was on the outline.
func (s *Session) OnPath() bool { return s.onPath }

// Touch returns the latest touch position, if a touch is active.
func (s *Session) Touch() (geometry.Point, bool) { return s.touch, s.hasTouch }

// Strays counts departures from the outline during the attempt.
func (s *Session) Strays() int { return s.strays }

// StartedAt returns when the current attempt began tracing.
func (s *Session) StartedAt() time.Time { return s.startedAt }

// Regions returns the per-region coverage of the current attempt.
func (s *Session) Regions() []coverage.RegionCoverage {
	if s.tracker == nil {
		return nil
	}
	return s.tracker.Regions()
}

// MissingRegionsHint phrases the regions still below their minimum.
func (s *Session) MissingRegionsHint() string {
	if s.tracker == nil {
		return ""
	}
	return s.tracker.MissingRegionsHint()
}

// SegmentsVisited returns the distinct segments visited so far.
func (s *Session) SegmentsVisited() int {
	if s.tracker == nil {
		return 0
	}
	return s.tracker.VisitedCount()
}

// TotalSegments returns the partition size for the assigned shape.
func (s *Session) TotalSegments() int {
	if s.tracker == nil {
		return 0
	}
	return s.tracker.TotalSegments()
}

// SetNarrator records whether a spoken narrator is active; it selects
// the form of the out-of-canvas warning.
func (s *Session) SetNarrator(active bool) { s.narrator = active }

// SetShape assigns the shape to trace inside rect. Changing the shape
// or the canvas discards any in-progress attempt; reassigning the same
// shape on the same canvas is a no-op.
func (s *Session) SetShape(shape geometry.Shape, rect geometry.Rect) {
	if s.hasShape && s.shape == shape && s.rect == rect {
		return
	}
	s.shape = shape
	s.hasShape = true
	s.rect = rect
	s.path = geometry.BoundaryPath(shape, rect)
	s.tracker = coverage.NewTracker(shape, rect)
	s.Reset()
}

// Reset returns the session to Ready (or Idle when no shape is
// assigned), clearing coverage, touch state, cooldown timers, and any
// pending delayed actions.
func (s *Session) Reset() {
	if s.hasShape {
		s.state = Ready
	} else {
		s.state = Idle
	}
	if s.tracker != nil {
		s.tracker.Reset()
	}
	s.arbiter.Reset()
	s.hasTouch = false
	s.onPath = false
	s.started = false
	s.offCanvas = false
	s.progress = 0
	s.strays = 0
	s.milestoneNext = 0
	s.startedAt = time.Time{}
	s.resetPending = false
	s.pulsePending = false
}

// TouchMoved consumes one touch position update and returns the
// feedback to dispatch. It drives the Ready-to-Tracing transition,
// classification, coverage, completion, and the canvas-exit edge
// trigger.
func (s *Session) TouchMoved(p geometry.Point) []feedback.Request {
	if s.state == Idle {
		return nil
	}
	if s.state == Complete {
		// Coverage is frozen; the attempt only leaves Complete through
		// a reset.
		s.touch = p
		s.hasTouch = true
		return nil
	}
	// A returning finger cancels a pending idle reset.
	s.resetPending = false

	var reqs []feedback.Request
	now := s.now()
	if s.state == Ready {
		s.state = Tracing
		s.started = true
		s.startedAt = now
		reqs = append(reqs, feedback.Speak(fmt.Sprintf("Tracing the %s. Follow the outline with your finger.", s.shape)))
	}

	c := geometry.Classify(p, s.shape, s.rect, s.cfg.Bands)
	exited := !c.OnCanvas && !s.offCanvas
	s.offCanvas = !c.OnCanvas

	wasOnPath := s.onPath
	s.onPath = c.OnPath && c.OnCanvas
	if wasOnPath && !s.onPath {
		s.strays++
	}
	s.touch = p
	s.hasTouch = true

	in := feedback.Input{
		At:             now,
		OnCanvas:       c.OnCanvas,
		OnPath:         c.OnPath,
		NearPath:       c.NearPath,
		NearCorner:     c.NearCorner,
		NarratorActive: s.narrator,
		CanvasExit:     exited,
	}
	if c.NearCorner {
		in.CornerAnnouncement = cornerName(c.Vertex, s.rect)
	}
	if !c.OnCanvas {
		in.Guidance = geometry.GuidanceDirection(p, s.rect.Center())
	} else if !c.OnPath && c.NearPath {
		if target, ok := geometry.NearestPathPoint(p, s.path); ok {
			in.Guidance = "Move " + geometry.GuidanceDirection(p, target)
		}
	}

	d := s.arbiter.Decide(in)
	reqs = append(reqs, d.Requests...)
	if d.VertexEmphasis {
		s.pulseAt = now.Add(s.cfg.PulseGap)
		s.pulsePending = true
	}
	if !s.onPath {
		// Leaving the path or the canvas aborts a scheduled second
		// pulse.
		s.pulsePending = false
	}

	if s.onPath {
		newSegment := s.tracker.RecordVisit(p)
		s.progress = s.tracker.Ratio()
		if newSegment {
			reqs = append(reqs, s.milestoneAnnouncements()...)
		}
		if s.tracker.QualityComplete() {
			reqs = append(reqs, s.complete(now)...)
		}
	}
	return reqs
}

func (s *Session) milestoneAnnouncements() []feedback.Request {
	var reqs []feedback.Request
	for s.milestoneNext < len(milestones) && s.progress >= milestones[s.milestoneNext] {
		pct := int(milestones[s.milestoneNext] * 100)
		reqs = append(reqs, feedback.Speak(fmt.Sprintf("%d percent traced", pct)))
		s.milestoneNext++
	}
	return reqs
}

func (s *Session) complete(now time.Time) []feedback.Request {
	s.state = Complete
	s.pulsePending = false
	s.resetAt = now.Add(s.cfg.CompleteResetDelay)
	s.resetPending = true
	return []feedback.Request{
		feedback.Haptic(feedback.VertexHapticIntensity, feedback.VertexHapticSharpness),
		feedback.Speak(fmt.Sprintf("Well done. You traced the whole %s.", s.shape)),
	}
}

// TouchEnded consumes the end of a gesture. Lifting mid-trace stops
// active feedback and schedules an idle reset when partial progress
// would otherwise linger; the reset is cancelled if a new touch arrives
// first.
func (s *Session) TouchEnded() []feedback.Request {
	s.hasTouch = false
	s.pulsePending = false
	if s.state != Tracing {
		return nil
	}
	s.onPath = false
	if s.progress > 0 {
		s.resetAt = s.now().Add(s.cfg.IdleResetDelay)
		s.resetPending = true
	}
	return []feedback.Request{feedback.Stop()}
}

// Tick drives pending delayed actions. Callers invoke it periodically
// from the same event queue that delivers touch events; a timer that
// has been invalidated since it was scheduled does nothing.
func (s *Session) Tick() []feedback.Request {
	now := s.now()
	var reqs []feedback.Request

	if s.pulsePending && !now.Before(s.pulseAt) {
		s.pulsePending = false
		if s.state == Tracing && s.hasTouch {
			reqs = append(reqs, feedback.Haptic(feedback.VertexHapticIntensity, feedback.VertexHapticSharpness))
		}
	}

	if s.resetPending && !now.Before(s.resetAt) {
		s.resetPending = false
		if s.state == Complete {
			s.Reset()
			reqs = append(reqs, feedback.Speak(fmt.Sprintf("Ready to trace the %s again.", s.shape)))
		} else if s.state == Tracing && !s.hasTouch {
			s.Reset()
		}
	}
	return reqs
}

// cornerName names the matched vertex for the spoken corner
// announcement.
func cornerName(v geometry.Point, rect geometry.Rect) string {
	vs := geometry.Vertices(rect)
	switch v {
	case vs[0]:
		return "Top left corner"
	case vs[1]:
		return "Top right corner"
	case vs[2]:
		return "Bottom right corner"
	case vs[3]:
		return "Bottom left corner"
	}
	return "Corner"
}
