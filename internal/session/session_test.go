package session

import (
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/tracer/internal/feedback"
	"github.com/verte-zerg/tracer/internal/geometry"
)

var canvas = geometry.R(0, 0, 300, 300)

type fakeClock struct {
	at time.Time
}

func (c *fakeClock) now() time.Time { return c.at }

func (c *fakeClock) advance(d time.Duration) { c.at = c.at.Add(d) }

func newTestSession(t *testing.T) (*Session, *fakeClock) {
	t.Helper()
	clock := &fakeClock{at: time.Unix(0, 0)}
	return NewWithClock(DefaultConfig(), clock.now), clock
}

func hasKind(reqs []feedback.Request, k feedback.Kind) bool {
	for _, r := range reqs {
		if r.Kind == k {
			return true
		}
	}
	return false
}

func spokenTexts(reqs []feedback.Request) []string {
	var out []string
	for _, r := range reqs {
		if r.Kind == feedback.KindSpeak {
			out = append(out, r.Text)
		}
	}
	return out
}

// walkOutline feeds a fine-grained clockwise walk of the square outline
// into the session, advancing the clock between events, and returns all
// emitted requests.
func walkOutline(s *Session, clock *fakeClock) []feedback.Request {
	var all []feedback.Request
	move := func(p geometry.Point) {
		clock.advance(10 * time.Millisecond)
		all = append(all, s.TouchMoved(p)...)
	}
	for x := 20.0; x <= 280; x += 2 {
		move(geometry.Pt(x, 20))
	}
	for y := 20.0; y <= 280; y += 2 {
		move(geometry.Pt(280, y))
	}
	for x := 280.0; x >= 20; x -= 2 {
		move(geometry.Pt(x, 280))
	}
	for y := 280.0; y >= 20; y -= 2 {
		move(geometry.Pt(20, y))
	}
	return all
}

func countCompletions(reqs []feedback.Request) int {
	n := 0
	for _, text := range spokenTexts(reqs) {
		if strings.HasPrefix(text, "Well done") {
			n++
		}
	}
	return n
}

func TestIdleSessionIgnoresTouches(t *testing.T) {
	s, _ := newTestSession(t)
	if reqs := s.TouchMoved(geometry.Pt(150, 20)); reqs != nil {
		t.Fatalf("idle session should ignore touches, got %v", reqs)
	}
	if s.State() != Idle {
		t.Fatalf("state %v, want idle", s.State())
	}
}

func TestFirstTouchStartsTracing(t *testing.T) {
	s, _ := newTestSession(t)
	s.SetShape(geometry.Square, canvas)
	if s.State() != Ready {
		t.Fatalf("state %v after SetShape, want ready", s.State())
	}
	reqs := s.TouchMoved(geometry.Pt(150, 150))
	if s.State() != Tracing {
		t.Fatalf("state %v after first touch, want tracing", s.State())
	}
	texts := spokenTexts(reqs)
	if len(texts) == 0 || !strings.HasPrefix(texts[0], "Tracing the square") {
		t.Fatalf("expected a one-time start announcement, got %v", texts)
	}
	// The announcement is one-time.
	if texts := spokenTexts(s.TouchMoved(geometry.Pt(150, 150))); len(texts) != 0 {
		t.Fatalf("start announcement repeated: %v", texts)
	}
}

func TestProgressMonotonicUntilReset(t *testing.T) {
	s, clock := newTestSession(t)
	s.SetShape(geometry.Circle, canvas)
	points := []geometry.Point{
		geometry.Pt(150, 20),  // on the ring
		geometry.Pt(150, 150), // center, off-path
		geometry.Pt(280, 150), // ring again
		geometry.Pt(-40, 150), // off-canvas
		geometry.Pt(150, 280),
	}
	prev := 0.0
	for _, p := range points {
		clock.advance(50 * time.Millisecond)
		s.TouchMoved(p)
		if s.Progress() < prev {
			t.Fatalf("progress decreased from %v to %v at %v", prev, s.Progress(), p)
		}
		prev = s.Progress()
	}
	s.Reset()
	if s.Progress() != 0 {
		t.Fatalf("reset should clear progress, got %v", s.Progress())
	}
}

func TestFullTraceCompletesExactlyOnce(t *testing.T) {
	s, clock := newTestSession(t)
	s.SetShape(geometry.Square, canvas)

	first := walkOutline(s, clock)
	if s.State() != Complete {
		t.Fatalf("state %v after full walk, want complete", s.State())
	}
	if n := countCompletions(first); n != 1 {
		t.Fatalf("expected exactly one completion event, got %d", n)
	}
	progress := s.Progress()

	// A second identical pass before reset changes nothing.
	second := walkOutline(s, clock)
	if n := countCompletions(second); n != 0 {
		t.Fatalf("second pass produced %d completion events", n)
	}
	if len(second) != 0 {
		t.Fatalf("second pass produced requests: %v", second)
	}
	if s.State() != Complete || s.Progress() != progress {
		t.Fatalf("second pass changed state to %v / %v", s.State(), s.Progress())
	}
}

func TestOneSidedTraceNeverCompletes(t *testing.T) {
	s, clock := newTestSession(t)
	s.SetShape(geometry.Square, canvas)
	// Trace only the top side, repeatedly.
	for pass := 0; pass < 5; pass++ {
		for x := 20.0; x <= 280; x += 2 {
			clock.advance(10 * time.Millisecond)
			s.TouchMoved(geometry.Pt(x, 20))
		}
	}
	if s.State() == Complete {
		t.Fatalf("one-sided trace must never complete")
	}
	if hint := s.MissingRegionsHint(); hint == "" {
		t.Fatalf("expected a missing-regions hint")
	}
}

func TestCanvasExitWarnsOncePerExit(t *testing.T) {
	s, clock := newTestSession(t)
	s.SetShape(geometry.Square, canvas)
	s.SetNarrator(true)
	s.TouchMoved(geometry.Pt(150, 20))

	warnings := 0
	for i := 0; i < 50; i++ {
		clock.advance(20 * time.Millisecond)
		reqs := s.TouchMoved(geometry.Pt(-50, 150))
		for _, text := range spokenTexts(reqs) {
			if strings.Contains(text, "outside") {
				warnings++
			}
		}
	}
	if warnings != 1 {
		t.Fatalf("expected one warning across 50 off-canvas events, got %d", warnings)
	}

	// Re-entering and leaving again warns once more.
	clock.advance(10 * time.Second)
	s.TouchMoved(geometry.Pt(150, 20))
	clock.advance(20 * time.Millisecond)
	reqs := s.TouchMoved(geometry.Pt(-50, 150))
	found := false
	for _, text := range spokenTexts(reqs) {
		if strings.Contains(text, "outside") {
			found = true
		}
	}
	if !found {
		t.Fatalf("a fresh exit should warn again")
	}
}

func TestTouchEndedStopsAndSchedulesIdleReset(t *testing.T) {
	s, clock := newTestSession(t)
	s.SetShape(geometry.Square, canvas)
	s.TouchMoved(geometry.Pt(150, 20))
	if s.Progress() == 0 {
		t.Fatalf("on-path touch should record progress")
	}

	reqs := s.TouchEnded()
	if !hasKind(reqs, feedback.KindStop) {
		t.Fatalf("lifting mid-trace should stop feedback, got %v", reqs)
	}

	// Before the delay: nothing happens.
	clock.advance(4 * time.Second)
	s.Tick()
	if s.State() != Tracing || s.Progress() == 0 {
		t.Fatalf("idle reset fired early: %v / %v", s.State(), s.Progress())
	}

	// After the delay the partial trace is discarded.
	clock.advance(2 * time.Second)
	s.Tick()
	if s.State() != Ready || s.Progress() != 0 {
		t.Fatalf("expected idle reset to Ready, got %v / %v", s.State(), s.Progress())
	}
}

func TestIdleResetCancelledByNewTouch(t *testing.T) {
	s, clock := newTestSession(t)
	s.SetShape(geometry.Square, canvas)
	s.TouchMoved(geometry.Pt(150, 20))
	s.TouchEnded()

	clock.advance(3 * time.Second)
	s.TouchMoved(geometry.Pt(152, 20))

	// The stale timer must not fire.
	clock.advance(3 * time.Second)
	s.Tick()
	if s.State() != Tracing || s.Progress() == 0 {
		t.Fatalf("cancelled idle reset still fired: %v / %v", s.State(), s.Progress())
	}
}

func TestCompleteAutoResetsAfterDelay(t *testing.T) {
	s, clock := newTestSession(t)
	s.SetShape(geometry.Square, canvas)
	walkOutline(s, clock)
	if s.State() != Complete {
		t.Fatalf("state %v, want complete", s.State())
	}

	clock.advance(6 * time.Second)
	reqs := s.Tick()
	if s.State() != Ready || s.Progress() != 0 {
		t.Fatalf("expected auto reset after completion, got %v / %v", s.State(), s.Progress())
	}
	texts := spokenTexts(reqs)
	if len(texts) != 1 || !strings.HasPrefix(texts[0], "Ready") {
		t.Fatalf("expected a ready announcement, got %v", texts)
	}
}

func TestVertexDoublePulse(t *testing.T) {
	s, clock := newTestSession(t)
	s.SetShape(geometry.Square, canvas)
	s.TouchMoved(geometry.Pt(150, 20))

	clock.advance(time.Second)
	reqs := s.TouchMoved(geometry.Pt(22, 22))
	if !hasKind(reqs, feedback.KindVertexTone) {
		t.Fatalf("corner touch should fire vertex emphasis, got %v", reqs)
	}

	clock.advance(100 * time.Millisecond)
	reqs = s.Tick()
	if !hasKind(reqs, feedback.KindHaptic) {
		t.Fatalf("expected the second emphasis pulse, got %v", reqs)
	}
}

func TestVertexDoublePulseAbortedByTouchEnd(t *testing.T) {
	s, clock := newTestSession(t)
	s.SetShape(geometry.Square, canvas)
	s.TouchMoved(geometry.Pt(150, 20))
	clock.advance(time.Second)
	s.TouchMoved(geometry.Pt(22, 22))
	s.TouchEnded()

	clock.advance(100 * time.Millisecond)
	if reqs := s.Tick(); hasKind(reqs, feedback.KindHaptic) {
		t.Fatalf("stale pulse fired after the gesture ended: %v", reqs)
	}
}

func TestShapeChangeDiscardsProgress(t *testing.T) {
	s, clock := newTestSession(t)
	s.SetShape(geometry.Square, canvas)
	s.TouchMoved(geometry.Pt(150, 20))
	if s.Progress() == 0 {
		t.Fatalf("expected progress on the square")
	}

	clock.advance(time.Second)
	s.SetShape(geometry.Circle, canvas)
	if s.State() != Ready || s.Progress() != 0 {
		t.Fatalf("shape change should fully reset, got %v / %v", s.State(), s.Progress())
	}
	if total := s.TotalSegments(); total != 60 {
		t.Fatalf("expected the circle partition, got %d segments", total)
	}

	// Reassigning the same shape keeps the attempt.
	s.TouchMoved(geometry.Pt(150, 20))
	progress := s.Progress()
	s.SetShape(geometry.Circle, canvas)
	if s.Progress() != progress {
		t.Fatalf("same-shape reassignment should be a no-op")
	}
}

func TestMilestoneAnnouncementsFireOnce(t *testing.T) {
	s, clock := newTestSession(t)
	s.SetShape(geometry.Square, canvas)

	all := walkOutline(s, clock)
	counts := map[string]int{}
	for _, text := range spokenTexts(all) {
		if strings.HasSuffix(text, "percent traced") {
			counts[text]++
		}
	}
	for _, want := range []string{"25 percent traced", "50 percent traced", "75 percent traced"} {
		if counts[want] != 1 {
			t.Fatalf("milestone %q announced %d times", want, counts[want])
		}
	}
}
