package mcpserver

import (
	"context"
	"fmt"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"

	"artboard/internal/domain"
	"artboard/internal/editor"
)

// styleOps maps a property name to the toolbar operation on the selection.
var styleOps = map[string]func(sf *editor.Surface, v string) error{
	"verticalAlign": func(sf *editor.Surface, v string) error {
		switch a := domain.VerticalAlign(v); a {
		case domain.AlignTop, domain.AlignMiddle, domain.AlignBottom:
			sf.SetVerticalAlign(a)
			return nil
		}
		return fmt.Errorf("verticalAlign must be top, center or bottom")
	},
	"horizontalAlign": func(sf *editor.Surface, v string) error {
		switch a := domain.HorizontalAlign(v); a {
		case domain.AlignLeft, domain.AlignCenter, domain.AlignRight:
			sf.SetHorizontalAlign(a)
			return nil
		}
		return fmt.Errorf("horizontalAlign must be left, center or right")
	},
	"bold":            func(sf *editor.Surface, _ string) error { sf.ToggleBold(); return nil },
	"italic":          func(sf *editor.Surface, _ string) error { sf.ToggleItalic(); return nil },
	"underline":       func(sf *editor.Surface, _ string) error { sf.ToggleUnderline(); return nil },
	"fontColor":       func(sf *editor.Surface, v string) error { sf.SetFontColor(v); return nil },
	"backgroundColor": func(sf *editor.Surface, v string) error { sf.SetBackgroundColor(v); return nil },
	"borderColor":     func(sf *editor.Surface, v string) error { sf.SetBorderColor(v); return nil },
	"fontSize":        func(sf *editor.Surface, v string) error { sf.SetFontSize(v); return nil },
	"lineHeight":      func(sf *editor.Surface, v string) error { sf.SetLineHeight(v); return nil },
	"paddingTop":      padding(domain.PaddingTop),
	"paddingRight":    padding(domain.PaddingRight),
	"paddingBottom":   padding(domain.PaddingBottom),
	"paddingLeft":     padding(domain.PaddingLeft),
	"shape": func(sf *editor.Surface, v string) error {
		switch c := domain.Corner(v); c {
		case domain.CornerTopLeft, domain.CornerTopRight, domain.CornerBottomLeft, domain.CornerBottomRight:
			sf.ToggleShape(c)
			return nil
		}
		return fmt.Errorf("shape value must be a corner: shapeTopLeft, shapeTopRight, shapeBottomLeft or shapeBottomRight")
	},
	"shapeRadius": func(sf *editor.Surface, v string) error {
		r, err := strconv.ParseFloat(v, 64)
		if err != nil || r < 0 {
			return fmt.Errorf("shapeRadius must be a non-negative number")
		}
		sf.SetShapeRadius(r)
		return nil
	},
	"removeImage": func(sf *editor.Surface, _ string) error { sf.RemoveImage(); return nil },
}

func padding(side domain.PaddingSide) func(*editor.Surface, string) error {
	return func(sf *editor.Surface, v string) error {
		sf.SetPadding(side, v)
		return nil
	}
}

func styleProperties() []string {
	return []string{
		"verticalAlign", "horizontalAlign", "bold", "italic", "underline",
		"fontColor", "backgroundColor", "borderColor", "fontSize", "lineHeight",
		"paddingTop", "paddingRight", "paddingBottom", "paddingLeft",
		"shape", "shapeRadius", "removeImage",
	}
}

func (s *Server) registerStyleTools() {
	s.mcp.AddTool(mcp.NewTool("set_style",
		mcp.WithDescription("Apply a toolbar style operation to the selected blocks (or the given ones). "+
			"bold, italic, underline, shape and removeImage toggle or clear and ignore value. "+
			"Numeric fields accept digits with an optional decimal point; an empty value clears them."),
		mcp.WithString("property", mcp.Description("Style property"), mcp.Required(), mcp.Enum(styleProperties()...)),
		mcp.WithString("value", mcp.Description("New value (see description)")),
		mcp.WithString("references", mcp.Description("Comma-separated block references to select first (optional)")),
	), s.handleSetStyle)
}

func (s *Server) handleSetStyle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	prop := getString(args, "property", "")
	op, ok := styleOps[prop]
	if !ok {
		return nil, fmt.Errorf("unknown style property %q", prop)
	}
	value := getString(args, "value", "")
	refs := splitRefs(getString(args, "references", ""))

	var summaries []blockSummary
	err := s.do(ctx, func(sf *editor.Surface) error {
		if len(refs) > 0 {
			sf.Select(refs...)
		}
		selected := sf.Selected()
		if len(selected) == 0 {
			return fmt.Errorf("no block selected")
		}
		if err := op(sf, value); err != nil {
			return err
		}
		summaries = summarizeBlocks(sf, selected)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return jsonResult(summaries)
}
