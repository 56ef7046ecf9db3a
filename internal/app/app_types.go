package app

import (
	"artboard/internal/domain"
	"artboard/internal/editor"
)

// EditorState is the frontend view of the open artboard.
type EditorState struct {
	Artboard  domain.Artboard `json:"artboard"`
	Blocks    []*domain.Block `json:"blocks"`
	Selected  []string        `json:"selected"`
	Editing   string          `json:"editing,omitempty"`
	Clippable bool            `json:"clippable"`
}

// editorState copies the surface state. Must run on the loop.
func editorState(a domain.Artboard, sf *editor.Surface) *EditorState {
	st := &EditorState{Artboard: a, Selected: []string{}, Clippable: sf.Clippable()}
	for _, b := range sf.Blocks() {
		st.Blocks = append(st.Blocks, b.Clone())
		ctl, ok := sf.Controller(b.Reference)
		if !ok {
			continue
		}
		if ctl.Selected() {
			st.Selected = append(st.Selected, b.Reference)
		}
		if ctl.Editable() {
			st.Editing = b.Reference
		}
	}
	return st
}

// GestureInput is one pointer gesture from the frontend, in pixels.
type GestureInput struct {
	Reference string  `json:"reference"`
	DX        float64 `json:"dx"`
	DY        float64 `json:"dy"`
	DW        float64 `json:"dw"`
	DH        float64 `json:"dh"`
	// Direction of the resize handle, e.g. [1, 1] for bottom-right.
	Direction [2]int  `json:"direction"`
	Degrees   float64 `json:"degrees"`
	ClipPath  string  `json:"clipPath"`
}
