package input

// PointerState is the tracked state of one pointer.
type PointerState struct {
	ID        PointerID
	Type      PointerType
	IsPrimary bool
	X, Y      float64
	Pressure  float64
	Buttons   uint16

	// Captured is set while this pointer owns a drawing gesture.
	Captured bool
}

// Session holds per-pointer state for one drawing surface. Create one per
// surface; sessions are not shared and not safe for concurrent use.
type Session struct {
	pointers map[PointerID]*PointerState
	capture  PointerID
	captured bool
}

// NewSession returns an empty session.
func NewSession() *Session {
	return &Session{pointers: make(map[PointerID]*PointerState)}
}

// Pointer returns the tracked state of id.
func (s *Session) Pointer(id PointerID) (*PointerState, bool) {
	p, ok := s.pointers[id]
	return p, ok
}

// Len returns the number of tracked pointers.
func (s *Session) Len() int { return len(s.pointers) }

// Captured returns the pointer owning the current gesture.
func (s *Session) Captured() (PointerID, bool) { return s.capture, s.captured }

// Reset forgets every pointer and releases capture.
func (s *Session) Reset() {
	clear(s.pointers)
	s.captured = false
	s.capture = 0
}

func (s *Session) track(ev RawEvent) *PointerState {
	p, ok := s.pointers[ev.PointerID]
	if !ok {
		p = &PointerState{ID: ev.PointerID}
		s.pointers[ev.PointerID] = p
	}
	p.Type = ev.PointerType
	p.IsPrimary = ev.IsPrimary
	p.X, p.Y = ev.X, ev.Y
	p.Buttons = ev.Buttons
	p.Pressure = NormalizePressure(ev.PointerType, ev.Pressure, ev.Buttons)
	return p
}

func (s *Session) setCapture(p *PointerState) {
	s.capture = p.ID
	s.captured = true
	p.Captured = true
}

func (s *Session) release() {
	if p, ok := s.pointers[s.capture]; ok {
		p.Captured = false
	}
	s.captured = false
	s.capture = 0
}

func (s *Session) isCapture(id PointerID) bool {
	return s.captured && s.capture == id
}

func (s *Session) forget(id PointerID) {
	delete(s.pointers, id)
}
