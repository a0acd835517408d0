// Package feedback decides which audio, haptic, or spoken cue a trace
// event earns, and gates each cue class behind its own cooldown.
package feedback

import "time"

// Sink is the playback capability the engine drives. Implementations
// are best-effort: the engine never waits on playback and a failing
// sink must not influence session state.
type Sink interface {
	PlayPathTone()
	PlayVertexTone()
	PlayHaptic(intensity, sharpness float64)
	Speak(text string)
	StopAll()
}

// Kind identifies the action a Request asks for.
type Kind int

// Request kinds.
const (
	KindPathTone Kind = iota
	KindVertexTone
	KindHaptic
	KindSpeak
	KindStop
)

// Request is one feedback action for the caller to dispatch to a Sink.
type Request struct {
	Kind      Kind
	Intensity float64
	Sharpness float64
	Text      string
}

// PathTone requests the on-path tone.
func PathTone() Request { return Request{Kind: KindPathTone} }

// VertexTone requests the corner-emphasis tone.
func VertexTone() Request { return Request{Kind: KindVertexTone} }

// Haptic requests a haptic pulse.
func Haptic(intensity, sharpness float64) Request {
	return Request{Kind: KindHaptic, Intensity: intensity, Sharpness: sharpness}
}

// Speak requests a spoken announcement.
func Speak(text string) Request { return Request{Kind: KindSpeak, Text: text} }

// Stop requests that all continuous feedback stop.
func Stop() Request { return Request{Kind: KindStop} }

// Dispatch plays each request on the sink in order.
func Dispatch(s Sink, reqs []Request) {
	for _, r := range reqs {
		switch r.Kind {
		case KindPathTone:
			s.PlayPathTone()
		case KindVertexTone:
			s.PlayVertexTone()
		case KindHaptic:
			s.PlayHaptic(r.Intensity, r.Sharpness)
		case KindSpeak:
			s.Speak(r.Text)
		case KindStop:
			s.StopAll()
		}
	}
}

// Haptic pulse parameters per cue.
const (
	PathHapticIntensity      = 0.5
	PathHapticSharpness      = 0.3
	VertexHapticIntensity    = 1.0
	VertexHapticSharpness    = 0.8
	ProximityHapticIntensity = 0.25
	ProximityHapticSharpness = 0.2
)

// Cooldowns holds the minimum interval between firings of each cue
// class. Classes are fully independent: firing one never resets
// another's timer. The proximity haptic runs at half the on-path haptic
// rate (double its interval).
type Cooldowns struct {
	Tone       time.Duration
	Haptic     time.Duration
	Corner     time.Duration
	Guidance   time.Duration
	CanvasExit time.Duration
}

// DefaultCooldowns returns the standard cue intervals.
func DefaultCooldowns() Cooldowns {
	return Cooldowns{
		Tone:       200 * time.Millisecond,
		Haptic:     150 * time.Millisecond,
		Corner:     3 * time.Second,
		Guidance:   2 * time.Second,
		CanvasExit: 5 * time.Second,
	}
}

type cueClass int

const (
	cueTone cueClass = iota
	cueHaptic
	cueProximityHaptic
	cueCorner
	cueGuidance
	cueCanvasExit
)

// Input is the per-event snapshot the arbiter decides on. The session
// computes classification and edge triggers; the arbiter only applies
// priorities and cooldowns.
type Input struct {
	At time.Time

	OnCanvas   bool
	OnPath     bool
	NearPath   bool
	NearCorner bool

	// Guidance is the directional phrase toward the path, empty when no
	// guidance applies.
	Guidance string
	// CornerAnnouncement is spoken on corner emphasis, empty to skip.
	CornerAnnouncement string
	// CanvasExit is true only on the event that crossed off the canvas.
	CanvasExit bool
	// NarratorActive selects a spoken rather than audible canvas-exit
	// warning.
	NarratorActive bool
}

// Decision is the arbitration result for one event.
type Decision struct {
	Requests []Request
	// VertexEmphasis is true when the vertex cue fired; the session may
	// schedule a follow-up pulse.
	VertexEmphasis bool
}

// Arbiter applies the cue priority order and per-class cooldowns. It
// holds only timing state; one arbiter serves one session.
type Arbiter struct {
	cooldowns Cooldowns
	lastFired map[cueClass]time.Time
	lastSaid  string
}

// NewArbiter creates an arbiter with all cooldown timers at epoch, so
// the first cue of every class fires immediately.
func NewArbiter(c Cooldowns) *Arbiter {
	return &Arbiter{
		cooldowns: c,
		lastFired: map[cueClass]time.Time{},
	}
}

// Reset clears every cooldown timer and the announcement memory.
func (a *Arbiter) Reset() {
	a.lastFired = map[cueClass]time.Time{}
	a.lastSaid = ""
}

func (a *Arbiter) ready(c cueClass, at time.Time, interval time.Duration) bool {
	last, ok := a.lastFired[c]
	return !ok || at.Sub(last) >= interval
}

func (a *Arbiter) fire(c cueClass, at time.Time) {
	a.lastFired[c] = at
}

// Decide picks the cues for one input event, in priority order: vertex
// emphasis, then on-path feedback, then proximity guidance, then stop.
// Tone and haptic cooldowns gate independently, so an on-path event can
// produce a tone without a pulse or a pulse without a tone.
func (a *Arbiter) Decide(in Input) Decision {
	var d Decision

	if !in.OnCanvas {
		d.Requests = append(d.Requests, Stop())
		if in.CanvasExit && a.ready(cueCanvasExit, in.At, a.cooldowns.CanvasExit) {
			a.fire(cueCanvasExit, in.At)
			d.Requests = append(d.Requests, a.canvasWarning(in))
		}
		return d
	}

	switch {
	case in.OnPath && in.NearCorner:
		if a.ready(cueHaptic, in.At, a.cooldowns.Haptic) {
			a.fire(cueHaptic, in.At)
			d.VertexEmphasis = true
			d.Requests = append(d.Requests,
				VertexTone(),
				Haptic(VertexHapticIntensity, VertexHapticSharpness),
			)
		}
		if in.CornerAnnouncement != "" && a.ready(cueCorner, in.At, a.cooldowns.Corner) {
			a.fire(cueCorner, in.At)
			d.Requests = append(d.Requests, Speak(in.CornerAnnouncement))
		}

	case in.OnPath:
		if a.ready(cueTone, in.At, a.cooldowns.Tone) {
			a.fire(cueTone, in.At)
			d.Requests = append(d.Requests, PathTone())
		}
		if a.ready(cueHaptic, in.At, a.cooldowns.Haptic) {
			a.fire(cueHaptic, in.At)
			d.Requests = append(d.Requests, Haptic(PathHapticIntensity, PathHapticSharpness))
		}

	case in.NearPath:
		d.Requests = append(d.Requests, Stop())
		if a.ready(cueProximityHaptic, in.At, 2*a.cooldowns.Haptic) {
			a.fire(cueProximityHaptic, in.At)
			d.Requests = append(d.Requests, Haptic(ProximityHapticIntensity, ProximityHapticSharpness))
		}
		if in.Guidance != "" && in.Guidance != a.lastSaid &&
			a.ready(cueGuidance, in.At, a.cooldowns.Guidance) {
			a.fire(cueGuidance, in.At)
			a.lastSaid = in.Guidance
			d.Requests = append(d.Requests, Speak(in.Guidance))
		}

	default:
		d.Requests = append(d.Requests, Stop())
	}
	return d
}

func (a *Arbiter) canvasWarning(in Input) Request {
	if in.NarratorActive {
		text := "Finger outside the drawing area"
		if in.Guidance != "" {
			text += ". Move " + in.Guidance
		}
		return Speak(text)
	}
	return VertexTone()
}
