package game

import "context"

// DebugHooks is what automation harnesses drive: read the state as text and push the
// clock forward.
type DebugHooks interface {
	RenderToText() string
	AdvanceTime(ctx context.Context, ms float64) error
}

// ViewState is the renderer's camera, merged into the text snapshot when available.
type ViewState struct {
	CameraY         float64  `json:"cameraY"`
	ViewHWorld      float64  `json:"viewHWorld"`
	CameraOverrideY *float64 `json:"override"`
}

// ViewSource supplies the current camera, if any.
type ViewSource interface {
	ViewState() (ViewState, bool)
}

// Hooks implements DebugHooks over a bare Loop. It is not safe for concurrent use.
type Hooks struct {
	Loop *Loop
	View ViewSource
}

var _ DebugHooks = (*Hooks)(nil)

func (h *Hooks) RenderToText() string {
	return renderText(h.Loop.sim.Snapshot(), cameraFields(h.View))
}

// AdvanceTime ticks synchronously and returns once after-frame callbacks have run.
func (h *Hooks) AdvanceTime(ctx context.Context, ms float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	h.Loop.TickFixed(ms)
	return nil
}

func cameraFields(src ViewSource) map[string]interface{} {
	if src == nil {
		return nil
	}
	v, ok := src.ViewState()
	if !ok {
		return nil
	}
	return map[string]interface{}{"camera": v}
}
