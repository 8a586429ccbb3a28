package input

import "github.com/gogpu/maskpaint/internal/logging"

// Handler receives normalised drawing events.
type Handler func(Event)

// HoverFunc receives pointer positions while no gesture is active. inside
// reports whether the position lies within the element bounds.
type HoverFunc func(x, y float64, inside bool)

// Engine is the drawing input state machine. It is not safe for
// concurrent use.
type Engine struct {
	session *Session
	handler Handler
	hover   HoverFunc
	enabled bool

	width, height float64
}

// NewEngine returns an enabled engine tracking pointers in s. A nil
// session gets a fresh one.
func NewEngine(s *Session) *Engine {
	if s == nil {
		s = NewSession()
	}
	return &Engine{session: s, enabled: true}
}

// Session returns the engine's pointer session.
func (e *Engine) Session() *Session { return e.session }

// SetHandler registers the drawing event handler, replacing any previous
// one.
func (e *Engine) SetHandler(h Handler) { e.handler = h }

// OnHover registers the hover callback.
func (e *Engine) OnHover(fn HoverFunc) { e.hover = fn }

// SetBounds sets the element size used for hover inside tests.
func (e *Engine) SetBounds(width, height float64) {
	e.width, e.height = width, height
}

// Enabled reports whether the engine starts new gestures.
func (e *Engine) Enabled() bool { return e.enabled }

// SetEnabled enables or disables drawing. Disabling mid-gesture cancels
// the gesture.
func (e *Engine) SetEnabled(on bool) {
	if !on && e.enabled {
		e.Cancel(ReasonDisabled)
	}
	e.enabled = on
}

// Active reports whether a drawing gesture is in progress.
func (e *Engine) Active() bool {
	_, ok := e.session.Captured()
	return ok
}

// Cancel aborts the active gesture, emitting a Cancel event at the last
// known position. It is a no-op when no gesture is active.
func (e *Engine) Cancel(reason CancelReason) {
	id, ok := e.session.Captured()
	if !ok {
		return
	}
	p, _ := e.session.Pointer(id)
	e.session.release()
	logging.Logger().Debug("input: gesture cancelled", "pointer", id, "reason", reason.String())
	if p == nil {
		e.emit(Event{Type: Cancel, PointerID: id, Reason: reason})
		return
	}
	e.emit(eventFor(Cancel, p, reason))
}

// Handle processes one raw event. It reports whether a drawing event was
// emitted.
func (e *Engine) Handle(ev RawEvent) bool {
	switch ev.Kind {
	case RawDown:
		return e.down(ev)
	case RawMove:
		return e.move(ev)
	case RawUp:
		return e.up(ev)
	case RawCancel:
		return e.cancelPointer(ev, ReasonPointerCancel)
	case RawCaptureLost:
		return e.cancelPointer(ev, ReasonCaptureLost)
	case RawLeave:
		if !e.Active() && e.hover != nil {
			e.hover(ev.X, ev.Y, false)
		}
		if ev.PointerType != Mouse && !e.session.isCapture(ev.PointerID) {
			e.session.forget(ev.PointerID)
		}
	}
	return false
}

func (e *Engine) down(ev RawEvent) bool {
	p := e.session.track(ev)
	if !e.enabled || e.Active() || !ev.IsPrimary {
		return false
	}
	if ev.PointerType == Mouse && ev.Buttons&ButtonPrimary == 0 {
		return false
	}
	e.session.setCapture(p)
	e.emit(eventFor(Start, p, ReasonNone))
	return true
}

func (e *Engine) move(ev RawEvent) bool {
	p := e.session.track(ev)
	if e.session.isCapture(ev.PointerID) {
		e.emit(eventFor(Move, p, ReasonNone))
		return true
	}
	if !e.Active() && e.hover != nil {
		e.hover(ev.X, ev.Y, e.inside(ev.X, ev.Y))
	}
	return false
}

func (e *Engine) up(ev RawEvent) bool {
	p := e.session.track(ev)
	emitted := false
	if e.session.isCapture(ev.PointerID) {
		e.session.release()
		e.emit(eventFor(End, p, ReasonNone))
		emitted = true
	}
	if ev.PointerType != Mouse {
		e.session.forget(ev.PointerID)
	}
	return emitted
}

func (e *Engine) cancelPointer(ev RawEvent, reason CancelReason) bool {
	emitted := false
	if e.session.isCapture(ev.PointerID) {
		e.Cancel(reason)
		emitted = true
	}
	e.session.forget(ev.PointerID)
	return emitted
}

func (e *Engine) inside(x, y float64) bool {
	if e.width <= 0 || e.height <= 0 {
		return true
	}
	return x >= 0 && y >= 0 && x < e.width && y < e.height
}

func (e *Engine) emit(ev Event) {
	if e.handler != nil {
		e.handler(ev)
	}
}

func eventFor(t EventType, p *PointerState, reason CancelReason) Event {
	return Event{
		Type:        t,
		X:           p.X,
		Y:           p.Y,
		PointerID:   p.ID,
		PointerType: p.Type,
		IsPrimary:   p.IsPrimary,
		Pressure:    p.Pressure,
		Reason:      reason,
	}
}
