package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"artboard/internal/editor"
	"artboard/internal/gesture"
)

// resize directions by handle name
var resizeHandles = map[string][2]int{
	"right":        {1, 0},
	"bottom":       {0, 1},
	"bottom-right": {1, 1},
	"left":         {-1, 0},
	"top":          {0, -1},
	"top-left":     {-1, -1},
	"top-right":    {1, -1},
	"bottom-left":  {-1, 1},
}

// registerGestureTools exposes the direct-manipulation gestures. Each tool
// selects its block and drives the block's gesture handle the way a
// pointer would, so snapping and unit conversion apply.
func (s *Server) registerGestureTools() {
	s.mcp.AddTool(mcp.NewTool("drag_block",
		mcp.WithDescription("Drag a block by an offset, snapping to other blocks and the artboard edges"),
		mcp.WithString("reference", mcp.Description("Block reference"), mcp.Required()),
		mcp.WithNumber("dx", mcp.Description("Horizontal offset"), mcp.Required()),
		mcp.WithNumber("dy", mcp.Description("Vertical offset"), mcp.Required()),
	), s.handleDragBlock)

	s.mcp.AddTool(mcp.NewTool("resize_block",
		mcp.WithDescription("Resize a block by dragging one of its handles"),
		mcp.WithString("reference", mcp.Description("Block reference"), mcp.Required()),
		mcp.WithNumber("dw", mcp.Description("Width change"), mcp.Required()),
		mcp.WithNumber("dh", mcp.Description("Height change"), mcp.Required()),
		mcp.WithString("handle", mcp.Description("Handle to drag (default bottom-right)"),
			mcp.Enum("right", "bottom", "bottom-right", "left", "top", "top-left", "top-right", "bottom-left")),
	), s.handleResizeBlock)

	s.mcp.AddTool(mcp.NewTool("rotate_block",
		mcp.WithDescription("Rotate a block by a number of degrees, relative to its current rotation"),
		mcp.WithString("reference", mcp.Description("Block reference"), mcp.Required()),
		mcp.WithNumber("degrees", mcp.Description("Rotation delta in degrees"), mcp.Required()),
	), s.handleRotateBlock)

	s.mcp.AddTool(mcp.NewTool("clip_block",
		mcp.WithDescription("Clip a block with a CSS clip-path, e.g. inset(10% 0 0 0) or circle(50%)"),
		mcp.WithString("reference", mcp.Description("Block reference"), mcp.Required()),
		mcp.WithString("clipPath", mcp.Description("CSS clip-path value"), mcp.Required()),
	), s.handleClipBlock)
}

// withDriver selects the block, then runs fn with its gesture driver.
func (s *Server) withDriver(ctx context.Context, args map[string]any, fn func(*editor.Surface, gesture.Driver) error) (*mcp.CallToolResult, error) {
	var summary blockSummary
	err := s.do(ctx, func(sf *editor.Surface) error {
		ctl, err := controllerFor(sf, args)
		if err != nil {
			return err
		}
		sf.Select(ctl.Reference())
		d, ok := ctl.Handle().(gesture.Driver)
		if !ok {
			return fmt.Errorf("block %s cannot be driven", ctl.Reference())
		}
		if err := fn(sf, d); err != nil {
			return err
		}
		summary = summarizeBlock(ctl.Block(), ctl.Selected())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return jsonResult(summary)
}

func (s *Server) handleDragBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	unit := s.session.Artboard().Unit
	dx := editor.ToPixels(getFloat(args, "dx", 0), unit)
	dy := editor.ToPixels(getFloat(args, "dy", 0), unit)
	return s.withDriver(ctx, args, func(_ *editor.Surface, d gesture.Driver) error {
		return d.DragBy(dx, dy, 4)
	})
}

func (s *Server) handleResizeBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	unit := s.session.Artboard().Unit
	dir, ok := resizeHandles[getString(args, "handle", "bottom-right")]
	if !ok {
		return nil, fmt.Errorf("unknown handle %q", getString(args, "handle", ""))
	}
	dw := editor.ToPixels(getFloat(args, "dw", 0), unit)
	dh := editor.ToPixels(getFloat(args, "dh", 0), unit)
	return s.withDriver(ctx, args, func(_ *editor.Surface, d gesture.Driver) error {
		return d.ResizeBy(dw, dh, dir, 4)
	})
}

func (s *Server) handleRotateBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	deg := getFloat(args, "degrees", 0)
	return s.withDriver(ctx, args, func(_ *editor.Surface, d gesture.Driver) error {
		return d.RotateBy(deg, 4)
	})
}

func (s *Server) handleClipBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	clip := getString(args, "clipPath", "")
	if clip == "" {
		return nil, fmt.Errorf("clipPath is required")
	}
	return s.withDriver(ctx, args, func(sf *editor.Surface, d gesture.Driver) error {
		if !sf.Clippable() {
			sf.ToggleClip()
			defer sf.ToggleClip()
		}
		return d.ClipTo(clip)
	})
}
