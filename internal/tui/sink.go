package tui

import "time"

// statusSink renders feedback as terminal state instead of audio and
// vibration: tones and haptics become short-lived indicator flashes,
// announcements become a status line. It implements feedback.Sink.
type statusSink struct {
	now func() time.Time

	toneUntil   time.Time
	toneLabel   string
	hapticUntil time.Time
	hapticLevel float64

	announcement string
}

const flashDuration = 250 * time.Millisecond

func newStatusSink(now func() time.Time) *statusSink {
	return &statusSink{now: now}
}

func (s *statusSink) PlayPathTone() {
	s.toneLabel = "tone"
	s.toneUntil = s.now().Add(flashDuration)
}

func (s *statusSink) PlayVertexTone() {
	s.toneLabel = "corner tone"
	s.toneUntil = s.now().Add(flashDuration)
}

func (s *statusSink) PlayHaptic(intensity, _ float64) {
	s.hapticLevel = intensity
	s.hapticUntil = s.now().Add(flashDuration)
}

func (s *statusSink) Speak(text string) {
	s.announcement = text
}

func (s *statusSink) StopAll() {
	s.toneUntil = time.Time{}
	s.hapticUntil = time.Time{}
}

// toneActive reports whether a tone flash is still showing.
func (s *statusSink) toneActive() bool {
	return s.now().Before(s.toneUntil)
}

// hapticActive reports whether a haptic flash is still showing.
func (s *statusSink) hapticActive() bool {
	return s.now().Before(s.hapticUntil)
}
