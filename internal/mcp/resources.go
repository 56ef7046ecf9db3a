package mcpserver

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"artboard/internal/editor"
)

const (
	artboardURI = "artboard://artboard"
	blocksURI   = "artboard://blocks"
)

func (s *Server) registerResources() {
	// ── artboard://artboard ────────────────────────────
	s.mcp.AddResource(mcp.NewResource(
		artboardURI,
		"Open Artboard",
		mcp.WithResourceDescription("Name, unit and size of the artboard being edited"),
		mcp.WithMIMEType("application/json"),
	), s.handleArtboardResource)

	// ── artboard://blocks ──────────────────────────────
	s.mcp.AddResource(mcp.NewResource(
		blocksURI,
		"Blocks on the Artboard",
		mcp.WithResourceDescription("Every block, bottom layer first, in the artboard unit"),
		mcp.WithMIMEType("application/json"),
	), s.handleBlocksResource)
}

func (s *Server) handleArtboardResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return jsonResource(artboardURI, s.session.Artboard())
}

func (s *Server) handleBlocksResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	var summaries []blockSummary
	err := s.do(ctx, func(sf *editor.Surface) error {
		summaries = summarizeBlocks(sf, sf.Blocks())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return jsonResource(blocksURI, summaries)
}

func jsonResource(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
