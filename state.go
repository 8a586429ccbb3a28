package maskpaint

import (
	"github.com/gogpu/maskpaint/brush"
	"github.com/gogpu/maskpaint/history"
	"github.com/gogpu/maskpaint/view"
)

// State is a snapshot of the canvas for UI binding.
type State struct {
	Width, Height int
	Loaded        bool
	Dirty         bool
	Stroking      bool

	BrushSize int
	Mode      brush.Mode

	// CanUndo also counts pixels left by a cancelled stroke.
	CanUndo bool
	CanRedo bool

	History  history.State
	View     view.ViewTransform
	Gesture  view.GestureState
	Executor string
}

// State returns the current canvas state.
func (c *Canvas) State() State {
	return State{
		Width:     c.width,
		Height:    c.height,
		Loaded:    c.loaded,
		Dirty:     c.dirty,
		Stroking:  c.stroker != nil,
		BrushSize: c.brushSize,
		Mode:      c.mode,
		CanUndo:   c.CanUndo(),
		CanRedo:   c.CanRedo(),
		History:   c.hist.State(),
		View:      c.ctrl.ViewTransform(),
		Gesture:   c.ctrl.State(),
		Executor:  c.exec.Name(),
	}
}
