package input

import "fmt"

// PointerID identifies a pointer for the lifetime of its contact.
type PointerID int64

// PointerType is the kind of device behind a pointer.
type PointerType uint8

const (
	Mouse PointerType = iota
	Pen
	Touch
)

var pointerTypeNames = [...]string{"mouse", "pen", "touch"}

func (t PointerType) String() string {
	if int(t) < len(pointerTypeNames) {
		return pointerTypeNames[t]
	}
	return fmt.Sprintf("PointerType(%d)", t)
}

// RawKind is the kind of a host pointer event.
type RawKind uint8

const (
	RawDown RawKind = iota
	RawMove
	RawUp

	// RawCancel is the platform cancelling the pointer (palm rejection,
	// system gesture).
	RawCancel

	// RawCaptureLost reports that the host lost pointer capture.
	RawCaptureLost

	// RawLeave reports that the pointer left the element.
	RawLeave
)

// ButtonPrimary is the RawEvent.Buttons bit of the left mouse button.
const ButtonPrimary uint16 = 1

// RawEvent is a host pointer event in element-relative coordinates.
type RawEvent struct {
	Kind        RawKind
	PointerID   PointerID
	PointerType PointerType
	IsPrimary   bool
	X, Y        float64
	Pressure    float64
	Buttons     uint16
}

// EventType is the kind of a normalised drawing event.
type EventType uint8

const (
	Start EventType = iota
	Move
	End
	Cancel
)

var eventTypeNames = [...]string{"start", "move", "end", "cancel"}

func (t EventType) String() string {
	if int(t) < len(eventTypeNames) {
		return eventTypeNames[t]
	}
	return fmt.Sprintf("EventType(%d)", t)
}

// CancelReason says why a gesture was cancelled.
type CancelReason uint8

const (
	ReasonNone CancelReason = iota
	ReasonPointerCancel
	ReasonCaptureLost
	ReasonDisabled

	// ReasonGesture is a competing navigation gesture taking over.
	ReasonGesture

	// ReasonTeardown is the host shutting the engine down.
	ReasonTeardown
)

var reasonNames = [...]string{"none", "pointer-cancel", "capture-lost", "disabled", "gesture", "teardown"}

func (r CancelReason) String() string {
	if int(r) < len(reasonNames) {
		return reasonNames[r]
	}
	return fmt.Sprintf("CancelReason(%d)", r)
}

// Event is a normalised drawing event.
type Event struct {
	Type        EventType
	X, Y        float64
	PointerID   PointerID
	PointerType PointerType
	IsPrimary   bool
	Pressure    float64

	// Reason is set on Cancel events.
	Reason CancelReason
}

// NormalizePressure maps device pressure into [0, 1]. Mice report zero
// pressure even with a button held; those read as 0.5.
func NormalizePressure(t PointerType, pressure float64, buttons uint16) float64 {
	if pressure != pressure { // NaN
		pressure = 0
	}
	if t == Mouse && buttons != 0 && pressure == 0 {
		return 0.5
	}
	return min(max(pressure, 0), 1)
}
