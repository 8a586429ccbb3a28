package input

import "testing"

type recorder struct {
	events []Event
}

func (r *recorder) handle(ev Event) { r.events = append(r.events, ev) }

func (r *recorder) types() []EventType {
	out := make([]EventType, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Type
	}
	return out
}

func newRecordingEngine() (*Engine, *recorder) {
	e := NewEngine(NewSession())
	r := &recorder{}
	e.SetHandler(r.handle)
	e.SetBounds(100, 100)
	return e, r
}

func mouse(kind RawKind, x, y float64, buttons uint16) RawEvent {
	return RawEvent{Kind: kind, PointerID: 1, PointerType: Mouse, IsPrimary: true, X: x, Y: y, Buttons: buttons}
}

func touch(kind RawKind, id PointerID, primary bool, x, y float64) RawEvent {
	return RawEvent{Kind: kind, PointerID: id, PointerType: Touch, IsPrimary: primary, X: x, Y: y, Pressure: 0.7}
}

func equalTypes(a, b []EventType) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// =============================================================================
// Gesture lifecycle
// =============================================================================

func TestEngine_MouseGesture(t *testing.T) {
	e, r := newRecordingEngine()
	e.Handle(mouse(RawDown, 10, 10, ButtonPrimary))
	e.Handle(mouse(RawMove, 20, 10, ButtonPrimary))
	e.Handle(mouse(RawMove, 150, 10, ButtonPrimary)) // outside: still captured
	e.Handle(mouse(RawUp, 150, 10, 0))

	want := []EventType{Start, Move, Move, End}
	if got := r.types(); !equalTypes(got, want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	if r.events[2].X != 150 {
		t.Errorf("captured move X = %v, want 150", r.events[2].X)
	}
	if r.events[0].Pressure != 0.5 {
		t.Errorf("mouse pressure = %v, want 0.5", r.events[0].Pressure)
	}
	if e.Active() {
		t.Error("engine still active after up")
	}
}

func TestEngine_NonPrimaryButtonIgnored(t *testing.T) {
	e, r := newRecordingEngine()
	e.Handle(mouse(RawDown, 10, 10, 2))
	e.Handle(mouse(RawMove, 20, 10, 2))
	if len(r.events) != 0 {
		t.Errorf("right button produced %v", r.types())
	}
}

func TestEngine_OnlyPrimaryPointerDraws(t *testing.T) {
	e, r := newRecordingEngine()
	e.Handle(touch(RawDown, 5, false, 10, 10))
	if len(r.events) != 0 {
		t.Fatal("non-primary touch started a gesture")
	}

	e.Handle(touch(RawDown, 1, true, 10, 10))
	e.Handle(touch(RawMove, 2, false, 40, 40))
	e.Handle(touch(RawDown, 3, true, 50, 50)) // second gesture attempt while captured
	e.Handle(touch(RawMove, 1, true, 12, 12))
	e.Handle(touch(RawUp, 1, true, 12, 12))

	want := []EventType{Start, Move, End}
	if got := r.types(); !equalTypes(got, want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for _, ev := range r.events {
		if ev.PointerID != 1 {
			t.Errorf("event from pointer %d, want 1", ev.PointerID)
		}
		if ev.Pressure != 0.7 {
			t.Errorf("touch pressure = %v, want 0.7", ev.Pressure)
		}
	}
	if _, ok := e.Session().Pointer(1); ok {
		t.Error("lifted touch pointer still tracked")
	}
}

// =============================================================================
// Cancellation
// =============================================================================

func TestEngine_CancelPaths(t *testing.T) {
	tests := []struct {
		name   string
		cancel func(e *Engine)
		reason CancelReason
	}{
		{"capture lost", func(e *Engine) { e.Handle(touch(RawCaptureLost, 1, true, 0, 0)) }, ReasonCaptureLost},
		{"platform cancel", func(e *Engine) { e.Handle(touch(RawCancel, 1, true, 0, 0)) }, ReasonPointerCancel},
		{"disabled", func(e *Engine) { e.SetEnabled(false) }, ReasonDisabled},
		{"competing gesture", func(e *Engine) { e.Cancel(ReasonGesture) }, ReasonGesture},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, r := newRecordingEngine()
			e.Handle(touch(RawDown, 1, true, 10, 10))
			e.Handle(touch(RawMove, 1, true, 30, 30))
			tt.cancel(e)

			want := []EventType{Start, Move, Cancel}
			if got := r.types(); !equalTypes(got, want) {
				t.Fatalf("events = %v, want %v", got, want)
			}
			last := r.events[len(r.events)-1]
			if last.Reason != tt.reason {
				t.Errorf("reason = %v, want %v", last.Reason, tt.reason)
			}
			if last.X != 30 || last.Y != 30 {
				t.Errorf("cancel position = (%v,%v), want last known (30,30)", last.X, last.Y)
			}
			if e.Active() {
				t.Error("engine active after cancel")
			}

			// Nothing further reaches the handler from the cancelled pointer.
			e.Handle(touch(RawUp, 1, true, 30, 30))
			if len(r.events) != 3 {
				t.Errorf("events after cancel: %v", r.types())
			}
		})
	}
}

func TestEngine_CancelWithoutGestureIsNoop(t *testing.T) {
	e, r := newRecordingEngine()
	e.Cancel(ReasonTeardown)
	if len(r.events) != 0 {
		t.Errorf("idle cancel emitted %v", r.types())
	}
}

func TestEngine_DisabledIgnoresDown(t *testing.T) {
	e, r := newRecordingEngine()
	e.SetEnabled(false)
	e.Handle(mouse(RawDown, 10, 10, ButtonPrimary))
	if len(r.events) != 0 || e.Active() {
		t.Error("disabled engine started a gesture")
	}
	e.SetEnabled(true)
	e.Handle(mouse(RawDown, 10, 10, ButtonPrimary))
	if !e.Active() {
		t.Error("re-enabled engine did not start a gesture")
	}
}

// =============================================================================
// Hover and pressure
// =============================================================================

func TestEngine_Hover(t *testing.T) {
	e, _ := newRecordingEngine()
	type hover struct {
		x, y   float64
		inside bool
	}
	var got []hover
	e.OnHover(func(x, y float64, inside bool) { got = append(got, hover{x, y, inside}) })

	e.Handle(mouse(RawMove, 10, 10, 0))
	e.Handle(mouse(RawMove, 120, 10, 0))
	e.Handle(mouse(RawLeave, 120, 10, 0))
	e.Handle(mouse(RawDown, 50, 50, ButtonPrimary))
	e.Handle(mouse(RawMove, 60, 60, ButtonPrimary)) // drawing, not hovering

	want := []hover{{10, 10, true}, {120, 10, false}, {120, 10, false}}
	if len(got) != len(want) {
		t.Fatalf("hover calls = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("hover[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestNormalizePressure(t *testing.T) {
	tests := []struct {
		name     string
		typ      PointerType
		pressure float64
		buttons  uint16
		want     float64
	}{
		{"mouse pressed", Mouse, 0, ButtonPrimary, 0.5},
		{"mouse hover", Mouse, 0, 0, 0},
		{"pen", Pen, 0.3, ButtonPrimary, 0.3},
		{"pen over range", Pen, 1.7, ButtonPrimary, 1},
		{"negative", Touch, -0.2, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizePressure(tt.typ, tt.pressure, tt.buttons); got != tt.want {
				t.Errorf("NormalizePressure = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStringers(t *testing.T) {
	if Touch.String() != "touch" || Cancel.String() != "cancel" || ReasonCaptureLost.String() != "capture-lost" {
		t.Error("unexpected stringer output")
	}
	if PointerType(9).String() != "PointerType(9)" {
		t.Errorf("out of range PointerType = %q", PointerType(9).String())
	}
}
