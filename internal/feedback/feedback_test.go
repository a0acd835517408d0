package feedback

import (
	"testing"
	"time"
)

func at(ms int) time.Time {
	return time.Unix(0, 0).Add(time.Duration(ms) * time.Millisecond)
}

func kinds(reqs []Request) []Kind {
	out := make([]Kind, len(reqs))
	for i, r := range reqs {
		out[i] = r.Kind
	}
	return out
}

func hasKind(reqs []Request, k Kind) bool {
	for _, r := range reqs {
		if r.Kind == k {
			return true
		}
	}
	return false
}

func TestOnPathFiresToneAndHaptic(t *testing.T) {
	a := NewArbiter(DefaultCooldowns())
	d := a.Decide(Input{At: at(0), OnCanvas: true, OnPath: true, NearPath: true})
	if !hasKind(d.Requests, KindPathTone) || !hasKind(d.Requests, KindHaptic) {
		t.Fatalf("first on-path event should fire tone and haptic, got %v", kinds(d.Requests))
	}
}

func TestToneAndHapticCooldownsAreIndependent(t *testing.T) {
	a := NewArbiter(DefaultCooldowns())
	in := Input{OnCanvas: true, OnPath: true, NearPath: true}

	in.At = at(0)
	a.Decide(in)

	// 160ms: the haptic (150ms) is ready again, the tone (200ms) is not.
	in.At = at(160)
	d := a.Decide(in)
	if hasKind(d.Requests, KindPathTone) {
		t.Fatalf("tone should still be cooling down at 160ms")
	}
	if !hasKind(d.Requests, KindHaptic) {
		t.Fatalf("haptic should have fired at 160ms, got %v", kinds(d.Requests))
	}

	// 210ms: tone ready, haptic fired 50ms ago and is not.
	in.At = at(210)
	d = a.Decide(in)
	if !hasKind(d.Requests, KindPathTone) {
		t.Fatalf("tone should fire at 210ms, got %v", kinds(d.Requests))
	}
	if hasKind(d.Requests, KindHaptic) {
		t.Fatalf("haptic should still be cooling down at 210ms")
	}
}

func TestVertexTakesPriorityOverPath(t *testing.T) {
	a := NewArbiter(DefaultCooldowns())
	d := a.Decide(Input{
		At:                 at(0),
		OnCanvas:           true,
		OnPath:             true,
		NearPath:           true,
		NearCorner:         true,
		CornerAnnouncement: "Top left corner",
	})
	if !d.VertexEmphasis {
		t.Fatalf("expected vertex emphasis")
	}
	if !hasKind(d.Requests, KindVertexTone) {
		t.Fatalf("expected vertex tone, got %v", kinds(d.Requests))
	}
	if hasKind(d.Requests, KindPathTone) {
		t.Fatalf("path tone must not fire alongside vertex emphasis")
	}
	if !hasKind(d.Requests, KindSpeak) {
		t.Fatalf("first corner should be announced, got %v", kinds(d.Requests))
	}
}

func TestCornerAnnouncementHasOwnCooldown(t *testing.T) {
	a := NewArbiter(DefaultCooldowns())
	in := Input{
		OnCanvas:           true,
		OnPath:             true,
		NearPath:           true,
		NearCorner:         true,
		CornerAnnouncement: "Top left corner",
	}

	in.At = at(0)
	a.Decide(in)

	// 500ms later the haptic cooldown has lapsed but the 3s corner
	// announcement cooldown has not.
	in.At = at(500)
	d := a.Decide(in)
	if !d.VertexEmphasis {
		t.Fatalf("vertex emphasis should fire again after the haptic cooldown")
	}
	if hasKind(d.Requests, KindSpeak) {
		t.Fatalf("corner announcement should still be cooling down")
	}

	in.At = at(3500)
	d = a.Decide(in)
	if !hasKind(d.Requests, KindSpeak) {
		t.Fatalf("corner announcement should fire after its cooldown")
	}
}

func TestProximityStopsBeforePulsing(t *testing.T) {
	a := NewArbiter(DefaultCooldowns())
	d := a.Decide(Input{At: at(0), OnCanvas: true, NearPath: true, Guidance: "up"})
	if len(d.Requests) == 0 || d.Requests[0].Kind != KindStop {
		t.Fatalf("proximity should stop continuous feedback first, got %v", kinds(d.Requests))
	}
	if !hasKind(d.Requests, KindHaptic) || !hasKind(d.Requests, KindSpeak) {
		t.Fatalf("expected proximity haptic and guidance, got %v", kinds(d.Requests))
	}
}

func TestProximityHapticRunsAtHalfRate(t *testing.T) {
	a := NewArbiter(DefaultCooldowns())
	in := Input{OnCanvas: true, NearPath: true}

	in.At = at(0)
	a.Decide(in)

	// 200ms would satisfy the on-path haptic cooldown but not the
	// half-rate proximity interval of 300ms.
	in.At = at(200)
	if d := a.Decide(in); hasKind(d.Requests, KindHaptic) {
		t.Fatalf("proximity haptic should still be cooling down at 200ms")
	}
	in.At = at(320)
	if d := a.Decide(in); !hasKind(d.Requests, KindHaptic) {
		t.Fatalf("proximity haptic should fire at 320ms")
	}
}

func TestGuidanceDeduplicatesByContent(t *testing.T) {
	a := NewArbiter(DefaultCooldowns())
	in := Input{OnCanvas: true, NearPath: true, Guidance: "up"}

	in.At = at(0)
	if d := a.Decide(in); !hasKind(d.Requests, KindSpeak) {
		t.Fatalf("first guidance should be spoken")
	}

	// Same phrase long after the cooldown: suppressed by content.
	in.At = at(10_000)
	if d := a.Decide(in); hasKind(d.Requests, KindSpeak) {
		t.Fatalf("repeated identical guidance must not be spoken again")
	}

	// A different phrase speaks once its cooldown allows.
	in.Guidance = "down and to the left"
	in.At = at(12_500)
	if d := a.Decide(in); !hasKind(d.Requests, KindSpeak) {
		t.Fatalf("changed guidance should be spoken")
	}
}

func TestOffPathStops(t *testing.T) {
	a := NewArbiter(DefaultCooldowns())
	d := a.Decide(Input{At: at(0), OnCanvas: true})
	if len(d.Requests) != 1 || d.Requests[0].Kind != KindStop {
		t.Fatalf("far off-path should only stop feedback, got %v", kinds(d.Requests))
	}
}

func TestCanvasExitWarnsOncePerExit(t *testing.T) {
	a := NewArbiter(DefaultCooldowns())

	d := a.Decide(Input{At: at(0), CanvasExit: true, NarratorActive: true, Guidance: "right"})
	if !hasKind(d.Requests, KindStop) || !hasKind(d.Requests, KindSpeak) {
		t.Fatalf("exit event should stop and warn, got %v", kinds(d.Requests))
	}

	// Fifty more events while continuously outside: no further warnings.
	for i := 1; i <= 50; i++ {
		d = a.Decide(Input{At: at(i * 20), NarratorActive: true})
		if hasKind(d.Requests, KindSpeak) || hasKind(d.Requests, KindVertexTone) {
			t.Fatalf("event %d: warning repeated while continuously outside", i)
		}
	}
}

func TestCanvasExitToneWithoutNarrator(t *testing.T) {
	a := NewArbiter(DefaultCooldowns())
	d := a.Decide(Input{At: at(0), CanvasExit: true})
	if !hasKind(d.Requests, KindVertexTone) {
		t.Fatalf("without a narrator the exit warning should be audible, got %v", kinds(d.Requests))
	}
	if hasKind(d.Requests, KindSpeak) {
		t.Fatalf("no narrator, nothing should be spoken")
	}
}

func TestResetClearsCooldownsAndAnnouncementMemory(t *testing.T) {
	a := NewArbiter(DefaultCooldowns())
	in := Input{At: at(0), OnCanvas: true, NearPath: true, Guidance: "up"}
	a.Decide(in)
	a.Reset()

	in.At = at(1)
	d := a.Decide(in)
	if !hasKind(d.Requests, KindHaptic) || !hasKind(d.Requests, KindSpeak) {
		t.Fatalf("after reset every class should fire immediately, got %v", kinds(d.Requests))
	}
}

type recordingSink struct {
	calls []string
}

func (r *recordingSink) PlayPathTone()           { r.calls = append(r.calls, "path-tone") }
func (r *recordingSink) PlayVertexTone()         { r.calls = append(r.calls, "vertex-tone") }
func (r *recordingSink) PlayHaptic(_, _ float64) { r.calls = append(r.calls, "haptic") }
func (r *recordingSink) Speak(text string)       { r.calls = append(r.calls, "speak:"+text) }
func (r *recordingSink) StopAll()                { r.calls = append(r.calls, "stop") }

func TestDispatch(t *testing.T) {
	sink := &recordingSink{}
	Dispatch(sink, []Request{Stop(), PathTone(), Haptic(0.5, 0.3), Speak("hello")})
	want := []string{"stop", "path-tone", "haptic", "speak:hello"}
	if len(sink.calls) != len(want) {
		t.Fatalf("calls %v, want %v", sink.calls, want)
	}
	for i := range want {
		if sink.calls[i] != want[i] {
			t.Fatalf("call %d: %q, want %q", i, sink.calls[i], want[i])
		}
	}
}
