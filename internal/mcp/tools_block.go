package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"artboard/internal/domain"
	"artboard/internal/editor"
	"artboard/internal/service"
)

func (s *Server) registerBlockTools() {
	// ── get_artboard ───────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("get_artboard",
		mcp.WithDescription("Describe the open artboard: name, unit and size. All geometry in other tools uses this unit."),
	), s.handleGetArtboard)

	// ── list_blocks ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_blocks",
		mcp.WithDescription("List all blocks on the artboard, bottom layer first, optionally filtered by type"),
		mcp.WithString("type", mcp.Description("Filter by block type: text or image (optional)")),
	), s.handleListBlocks)

	// ── add_block ──────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("add_block",
		mcp.WithDescription("Add a block on top of the artboard. Position is auto-calculated if not provided."),
		mcp.WithString("type", mcp.Description("Block type"), mcp.Enum("text", "image")),
		mcp.WithNumber("left", mcp.Description("Left edge (optional, auto-layout if omitted)")),
		mcp.WithNumber("top", mcp.Description("Top edge (optional, auto-layout if omitted)")),
		mcp.WithNumber("width", mcp.Description("Width (optional)")),
		mcp.WithNumber("height", mcp.Description("Height (optional)")),
		mcp.WithString("content", mcp.Description("Initial HTML content of a text block (optional)")),
		mcp.WithString("imageUrl", mcp.Description("Image URL of an image block (optional)")),
	), s.handleAddBlock)

	// ── select_blocks ──────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("select_blocks",
		mcp.WithDescription("Replace the selection. Toolbar style tools act on the selection."),
		mcp.WithString("references", mcp.Description("Comma-separated block references"), mcp.Required()),
	), s.handleSelectBlocks)

	// ── clear_selection ────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("clear_selection",
		mcp.WithDescription("Deselect every block"),
	), s.handleClearSelection)

	// ── set_block ──────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("set_block",
		mcp.WithDescription("Set geometry or content of one block directly"),
		mcp.WithString("reference", mcp.Description("Block reference"), mcp.Required()),
		mcp.WithNumber("left", mcp.Description("Left edge (optional)")),
		mcp.WithNumber("top", mcp.Description("Top edge (optional)")),
		mcp.WithNumber("width", mcp.Description("Width (optional)")),
		mcp.WithNumber("height", mcp.Description("Height (optional)")),
		mcp.WithNumber("rotate", mcp.Description("Rotation in degrees (optional)")),
		mcp.WithString("content", mcp.Description("HTML content (optional)")),
		mcp.WithString("contentFile", mcp.Description("Path of an HTML file the content follows while the session is open (optional)")),
	), s.handleSetBlock)

	// ── move_layer ─────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("move_layer",
		mcp.WithDescription("Move blocks to the top or bottom of the layer stack"),
		mcp.WithString("references", mcp.Description("Comma-separated block references"), mcp.Required()),
		mcp.WithString("direction", mcp.Description("up or down"), mcp.Required(), mcp.Enum("up", "down")),
	), s.handleMoveLayer)

	// ── remove_blocks (destructive) ────────────────────
	s.mcp.AddTool(mcp.NewTool("remove_blocks",
		mcp.WithDescription("🛑 DESTRUCTIVE: Remove blocks from the artboard. Requires user approval."),
		mcp.WithString("references", mcp.Description("Comma-separated block references"), mcp.Required()),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleRemoveBlocks)

	// ── upload_image ───────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("upload_image",
		mcp.WithDescription("Upload an image into the selected image blocks (or the given block)"),
		mcp.WithString("reference", mcp.Description("Block reference (optional, defaults to the selection)")),
		mcp.WithString("path", mcp.Description("Local image file (path or dataUrl required)")),
		mcp.WithString("dataUrl", mcp.Description("data:image/...;base64,... (path or dataUrl required)")),
	), s.handleUploadImage)

	// ── arrange_blocks ─────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("arrange_blocks",
		mcp.WithDescription("Auto-arrange all blocks in rows, bottom layer first"),
		mcp.WithNumber("startX", mcp.Description("Starting left edge (default 0)")),
		mcp.WithNumber("startY", mcp.Description("Starting top edge (default 0)")),
	), s.handleArrangeBlocks)

	// ── save_snapshot ──────────────────────────────────
	if s.autosave != nil {
		s.mcp.AddTool(mcp.NewTool("save_snapshot",
			mcp.WithDescription("Write a YAML snapshot of the artboard now"),
		), s.handleSaveSnapshot)
	}
}

func boolPtr(v bool) *bool { return &v }

// ── Handlers ───────────────────────────────────────────────

func (s *Server) handleGetArtboard(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var count int
	err := s.do(ctx, func(sf *editor.Surface) error {
		count = len(sf.Blocks())
		return nil
	})
	if err != nil {
		return nil, err
	}
	a := s.session.Artboard()
	return jsonResult(map[string]any{
		"id":     a.ID,
		"name":   a.Name,
		"unit":   a.Unit,
		"width":  a.Width,
		"height": a.Height,
		"blocks": count,
	})
}

func (s *Server) handleListBlocks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filterType, _ := req.GetArguments()["type"].(string)

	var summaries []blockSummary
	err := s.do(ctx, func(sf *editor.Surface) error {
		var blocks []*domain.Block
		for _, b := range sf.Blocks() {
			if filterType == "" || string(b.Type) == filterType {
				blocks = append(blocks, b)
			}
		}
		summaries = summarizeBlocks(sf, blocks)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return jsonResult(summaries)
}

func (s *Server) handleAddBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	a := s.session.Artboard()

	blockType := domain.BlockType(getString(args, "type", string(domain.BlockTypeText)))
	if blockType != domain.BlockTypeText && blockType != domain.BlockTypeImage {
		return nil, fmt.Errorf("unknown block type %q", blockType)
	}
	// Default size: a third of the artboard width, 3:2 landscape.
	w := getFloat(args, "width", editor.FromPixels(editor.ToPixels(a.Width, a.Unit)/3, a.Unit))
	h := getFloat(args, "height", editor.FromPixels(editor.ToPixels(w, a.Unit)*2/3, a.Unit))
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("width and height must be positive")
	}

	var summary blockSummary
	err := s.do(ctx, func(sf *editor.Surface) error {
		left, hasLeft := args["left"].(float64)
		top, hasTop := args["top"].(float64)
		if !hasLeft || !hasTop {
			left, top = s.layout.NextPosition(sf.Blocks(), w, h)
		}
		b := sf.AddBlock(&domain.Block{
			Type:     blockType,
			Left:     left,
			Top:      top,
			Width:    w,
			Height:   h,
			Content:  getString(args, "content", ""),
			ImageURL: getString(args, "imageUrl", ""),
		})
		summary = summarizeBlock(b, false)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("add block: %w", err)
	}
	s.logger.Debug("block added", "reference", summary.Reference)
	return jsonResult(summary)
}

func (s *Server) handleSelectBlocks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	refs := splitRefs(getString(req.GetArguments(), "references", ""))
	if len(refs) == 0 {
		return nil, fmt.Errorf("references is required")
	}
	var selected []string
	err := s.do(ctx, func(sf *editor.Surface) error {
		for _, b := range sf.Select(refs...) {
			selected = append(selected, b.Reference)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(selected) < len(refs) {
		return textResult(fmt.Sprintf("Selected %d of %d blocks (unknown references ignored): %s",
			len(selected), len(refs), strings.Join(selected, ", "))), nil
	}
	return textResult(fmt.Sprintf("Selected %s", strings.Join(selected, ", "))), nil
}

func (s *Server) handleClearSelection(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	err := s.do(ctx, func(sf *editor.Surface) error {
		sf.ClearSelection()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return textResult("Selection cleared"), nil
}

func (s *Server) handleSetBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	var summary blockSummary
	err := s.do(ctx, func(sf *editor.Surface) error {
		ctl, err := controllerFor(sf, args)
		if err != nil {
			return err
		}
		if v, ok := args["left"].(float64); ok {
			ctl.SetLeft(v)
		}
		if v, ok := args["top"].(float64); ok {
			ctl.SetTop(v)
		}
		if v, ok := args["width"].(float64); ok {
			ctl.SetWidth(v)
		}
		if v, ok := args["height"].(float64); ok {
			ctl.SetHeight(v)
		}
		if v, ok := args["rotate"].(float64); ok {
			ctl.SetRotate(v)
		}
		if v, ok := args["content"].(string); ok {
			ctl.SetContent(v)
		}
		if path, ok := args["contentFile"].(string); ok && path != "" {
			if err := s.session.LinkContent(ctl.Reference(), path); err != nil {
				return err
			}
		}
		summary = summarizeBlock(ctl.Block(), ctl.Selected())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return jsonResult(summary)
}

func (s *Server) handleMoveLayer(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	refs := splitRefs(getString(args, "references", ""))
	if len(refs) == 0 {
		return nil, fmt.Errorf("references is required")
	}
	dir := 0
	switch getString(args, "direction", "") {
	case "up":
		dir = 1
	case "down":
		dir = -1
	default:
		return nil, fmt.Errorf("direction must be up or down")
	}

	var order []string
	err := s.do(ctx, func(sf *editor.Surface) error {
		if len(sf.Select(refs...)) == 0 {
			return fmt.Errorf("none of %v is on this artboard", refs)
		}
		for _, b := range sf.MoveLayer(dir) {
			order = append(order, b.Reference)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return jsonResult(map[string]any{"order": order})
}

func (s *Server) handleRemoveBlocks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	refs := splitRefs(getString(req.GetArguments(), "references", ""))
	if len(refs) == 0 {
		return nil, fmt.Errorf("references is required")
	}

	var known []string
	err := s.do(ctx, func(sf *editor.Surface) error {
		for _, ref := range refs {
			if _, ok := sf.Block(ref); ok {
				known = append(known, ref)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(known) == 0 {
		return nil, fmt.Errorf("none of %v is on this artboard", refs)
	}

	approved, err := s.approval.Request("remove_blocks",
		fmt.Sprintf("Remove %d blocks: %s", len(known), strings.Join(known, ", ")), known)
	if err != nil || !approved {
		return textResult("Action rejected by user"), nil
	}

	var removed int
	err = s.do(ctx, func(sf *editor.Surface) error {
		sf.Select(known...)
		removed = len(sf.RemoveSelected())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Removed %d blocks", removed)), nil
}

func (s *Server) handleUploadImage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	var (
		blob []byte
		err  error
	)
	switch {
	case getString(args, "dataUrl", "") != "":
		blob, err = service.DecodeDataURL(getString(args, "dataUrl", ""))
	case getString(args, "path", "") != "":
		blob, err = os.ReadFile(getString(args, "path", ""))
	default:
		return nil, fmt.Errorf("path or dataUrl is required")
	}
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}

	var targets []string
	err = s.do(ctx, func(sf *editor.Surface) error {
		if ref := getString(args, "reference", ""); ref != "" {
			sf.Select(ref)
		}
		for _, b := range sf.Selected() {
			targets = append(targets, b.Reference)
		}
		if len(targets) == 0 {
			return fmt.Errorf("no block selected")
		}
		sf.FileSelect(blob)
		return nil
	})
	if err != nil {
		return nil, err
	}

	url, err := s.awaitImage(ctx, targets[0])
	if err != nil {
		return nil, err
	}
	return jsonResult(map[string]any{"imageUrl": url, "references": targets})
}

// awaitImage waits until the upload lands on ref. Uploads complete off the
// editor loop and are applied on a later turn.
func (s *Server) awaitImage(ctx context.Context, ref string) (string, error) {
	var before string
	s.do(ctx, func(sf *editor.Surface) error {
		if b, ok := sf.Block(ref); ok {
			before = b.ImageURL
		}
		return nil
	})
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return "", errors.New("upload did not complete; check the server log")
		case <-ticker.C:
		}
		var url string
		err := s.do(ctx, func(sf *editor.Surface) error {
			if b, ok := sf.Block(ref); ok {
				url = b.ImageURL
			}
			return nil
		})
		if err != nil {
			return "", err
		}
		if url != "" && url != before {
			return url, nil
		}
	}
}

func (s *Server) handleArrangeBlocks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	startX := getFloat(args, "startX", 0)
	startY := getFloat(args, "startY", 0)

	var positions []Position
	err := s.do(ctx, func(sf *editor.Surface) error {
		positions = s.layout.ArrangeGroup(sf.Blocks(), startX, startY)
		for _, p := range positions {
			ctl, ok := sf.Controller(p.Reference)
			if !ok {
				continue
			}
			ctl.SetLeft(p.Left)
			ctl.SetTop(p.Top)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return jsonResult(positions)
}

func (s *Server) handleSaveSnapshot(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := s.autosave.Snapshot(ctx, s.session.Artboard().ID)
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	return textResult("Snapshot written to " + path), nil
}

// ── Argument helpers ───────────────────────────────────────

func getFloat(args map[string]any, key string, fallback float64) float64 {
	if v, ok := args[key].(float64); ok {
		return v
	}
	return fallback
}

func getString(args map[string]any, key, fallback string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return fallback
}

func splitRefs(s string) []string {
	var refs []string
	for _, part := range strings.Split(s, ",") {
		if ref := strings.TrimSpace(part); ref != "" {
			refs = append(refs, ref)
		}
	}
	return refs
}
