package app

import (
	"fmt"
	"os"

	wailsRuntime "github.com/wailsapp/wails/v2/pkg/runtime"

	"artboard/internal/domain"
	"artboard/internal/editor"
	"artboard/internal/gesture"
	"artboard/internal/service"
)

// ============================================================
// Blocks
// ============================================================

// AddBlock adds a block of blockType. Zero width or height uses the
// default geometry.
func (a *App) AddBlock(blockType string, left, top, width, height float64) (*domain.Block, error) {
	var added *domain.Block
	err := a.do(func(sf *editor.Surface) error {
		var tmpl *domain.Block
		if width > 0 && height > 0 {
			tmpl = &domain.Block{
				Type:   domain.BlockType(blockType),
				Left:   left,
				Top:    top,
				Width:  width,
				Height: height,
			}
		} else if blockType != "" && blockType != string(domain.BlockTypeText) {
			return fmt.Errorf("width and height are required for %s blocks", blockType)
		}
		added = sf.AddBlock(tmpl).Clone()
		return nil
	})
	return added, err
}

// Select replaces the selection. Shift-click selections send every
// reference in the new selection.
func (a *App) Select(refs []string) error {
	return a.do(func(sf *editor.Surface) error {
		sf.Select(refs...)
		return nil
	})
}

func (a *App) ClearSelection() error {
	return a.do(func(sf *editor.Surface) error {
		sf.ClearSelection()
		return nil
	})
}

// Edit enters text edit mode on a block.
func (a *App) Edit(ref string) (bool, error) {
	var ok bool
	err := a.do(func(sf *editor.Surface) error {
		ok = sf.Edit(ref)
		return nil
	})
	return ok, err
}

// SetContent stores the HTML typed into a block's editor.
func (a *App) SetContent(ref, html string) error {
	return a.do(func(sf *editor.Surface) error {
		ctl, ok := sf.Controller(ref)
		if !ok {
			return fmt.Errorf("no block %q", ref)
		}
		ctl.SetContent(html)
		return nil
	})
}

// RemoveSelected deletes the selected blocks and returns their references.
func (a *App) RemoveSelected() ([]string, error) {
	var refs []string
	err := a.do(func(sf *editor.Surface) error {
		refs = references(sf.RemoveSelected())
		return nil
	})
	return refs, err
}

// LayerUp moves the selection up one layer and returns the new order.
func (a *App) LayerUp() ([]string, error) { return a.moveLayer(1) }

// LayerDown moves the selection down one layer and returns the new order.
func (a *App) LayerDown() ([]string, error) { return a.moveLayer(-1) }

func (a *App) moveLayer(dir int) ([]string, error) {
	var refs []string
	err := a.do(func(sf *editor.Surface) error {
		refs = references(sf.MoveLayer(dir))
		return nil
	})
	return refs, err
}

func references(blocks []*domain.Block) []string {
	refs := make([]string, 0, len(blocks))
	for _, b := range blocks {
		refs = append(refs, b.Reference)
	}
	return refs
}

// ============================================================
// Gestures
// ============================================================

func (a *App) drive(ref string, fn func(gesture.Driver) error) (*domain.Block, error) {
	var out *domain.Block
	err := a.do(func(sf *editor.Surface) error {
		ctl, ok := sf.Controller(ref)
		if !ok {
			return fmt.Errorf("no block %q", ref)
		}
		d, ok := ctl.Handle().(gesture.Driver)
		if !ok {
			return fmt.Errorf("block %s has no gesture handle", ref)
		}
		if err := fn(d); err != nil {
			return err
		}
		out = ctl.Block().Clone()
		return nil
	})
	return out, err
}

// Drag moves a block by a pointer offset in pixels.
func (a *App) Drag(in GestureInput) (*domain.Block, error) {
	return a.drive(in.Reference, func(d gesture.Driver) error { return d.DragBy(in.DX, in.DY, 1) })
}

// Resize drags one of a block's resize handles by a pixel offset.
func (a *App) Resize(in GestureInput) (*domain.Block, error) {
	if in.Direction == [2]int{} {
		in.Direction = [2]int{1, 1}
	}
	return a.drive(in.Reference, func(d gesture.Driver) error { return d.ResizeBy(in.DW, in.DH, in.Direction, 1) })
}

func (a *App) Rotate(in GestureInput) (*domain.Block, error) {
	return a.drive(in.Reference, func(d gesture.Driver) error { return d.RotateBy(in.Degrees, 1) })
}

// Clip applies a clip-path while the selection is in clip mode.
func (a *App) Clip(in GestureInput) (*domain.Block, error) {
	return a.drive(in.Reference, func(d gesture.Driver) error { return d.ClipTo(in.ClipPath) })
}

// ============================================================
// Toolbar
// ============================================================

func (a *App) each(fn func(*editor.Surface)) error {
	return a.do(func(sf *editor.Surface) error {
		fn(sf)
		return nil
	})
}

func (a *App) SetVerticalAlign(v string) error {
	return a.each(func(sf *editor.Surface) { sf.SetVerticalAlign(domain.VerticalAlign(v)) })
}

func (a *App) SetHorizontalAlign(v string) error {
	return a.each(func(sf *editor.Surface) { sf.SetHorizontalAlign(domain.HorizontalAlign(v)) })
}

func (a *App) ToggleBold() error      { return a.each((*editor.Surface).ToggleBold) }
func (a *App) ToggleItalic() error    { return a.each((*editor.Surface).ToggleItalic) }
func (a *App) ToggleUnderline() error { return a.each((*editor.Surface).ToggleUnderline) }
func (a *App) RemoveImage() error     { return a.each((*editor.Surface).RemoveImage) }

func (a *App) SetFontColor(v string) error {
	return a.each(func(sf *editor.Surface) { sf.SetFontColor(v) })
}

func (a *App) SetBackgroundColor(v string) error {
	return a.each(func(sf *editor.Surface) { sf.SetBackgroundColor(v) })
}

func (a *App) SetBorderColor(v string) error {
	return a.each(func(sf *editor.Surface) { sf.SetBorderColor(v) })
}

// SetFontSize takes the raw input value; invalid input is ignored.
func (a *App) SetFontSize(v string) error {
	return a.each(func(sf *editor.Surface) { sf.SetFontSize(v) })
}

func (a *App) SetLineHeight(v string) error {
	return a.each(func(sf *editor.Surface) { sf.SetLineHeight(v) })
}

func (a *App) SetPadding(side, v string) error {
	return a.each(func(sf *editor.Surface) { sf.SetPadding(domain.PaddingSide(side), v) })
}

func (a *App) ToggleShape(corner string) error {
	return a.each(func(sf *editor.Surface) { sf.ToggleShape(domain.Corner(corner)) })
}

func (a *App) SetShapeRadius(r float64) error {
	return a.each(func(sf *editor.Surface) { sf.SetShapeRadius(r) })
}

// ToggleClip flips clip mode and returns the new state.
func (a *App) ToggleClip() (bool, error) {
	var on bool
	err := a.do(func(sf *editor.Surface) error {
		on = sf.ToggleClip()
		return nil
	})
	return on, err
}

// ============================================================
// Images and linked content
// ============================================================

// PickImage opens a native file picker and uploads the chosen image to the
// selected blocks.
func (a *App) PickImage() error {
	path, err := wailsRuntime.OpenFileDialog(a.ctx, wailsRuntime.OpenDialogOptions{
		Title: "Select Image",
		Filters: []wailsRuntime.FileFilter{
			{DisplayName: "Images", Pattern: "*.png;*.jpg;*.jpeg;*.gif;*.webp;*.bmp"},
		},
	})
	if err != nil || path == "" {
		return err
	}
	blob, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read image: %w", err)
	}
	return a.each(func(sf *editor.Surface) { sf.FileSelect(blob) })
}

// UploadImage uploads a pasted or dropped image given as a data URL.
func (a *App) UploadImage(dataURL string) error {
	blob, err := service.DecodeDataURL(dataURL)
	if err != nil {
		return fmt.Errorf("decode image: %w", err)
	}
	return a.each(func(sf *editor.Surface) { sf.FileSelect(blob) })
}

// ImageData returns a stored image as a data URL for the WebView.
func (a *App) ImageData(imageURL string) (string, error) {
	return service.ReadDataURL(imageURL)
}

// LinkContentFile lets the user pick an HTML file whose contents follow
// into the block on every save.
func (a *App) LinkContentFile(ref string) (string, error) {
	sess, err := a.current()
	if err != nil {
		return "", err
	}
	path, err := wailsRuntime.OpenFileDialog(a.ctx, wailsRuntime.OpenDialogOptions{
		Title: "Link Content File",
		Filters: []wailsRuntime.FileFilter{
			{DisplayName: "HTML", Pattern: "*.html;*.htm"},
			{DisplayName: "All Files", Pattern: "*.*"},
		},
	})
	if err != nil || path == "" {
		return "", err
	}
	err = a.do(func(*editor.Surface) error { return sess.LinkContent(ref, path) })
	return path, err
}
