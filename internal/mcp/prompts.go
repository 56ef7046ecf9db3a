package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerPrompts() {
	s.mcp.AddPrompt(mcp.NewPrompt("poster_layout",
		mcp.WithPromptDescription("Guide through laying out a poster or flyer on the open artboard"),
		mcp.WithArgument("topic",
			mcp.ArgumentDescription("What the poster announces"),
			mcp.RequiredArgument(),
		),
	), s.handlePosterPrompt)
}

func (s *Server) handlePosterPrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	topic := req.Params.Arguments["topic"]
	a := s.session.Artboard()
	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Lay out a poster for: %s", topic),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.TextContent{
					Type: "text",
					Text: fmt.Sprintf(`Design a poster about "%s" on the open artboard (%g x %g %s). Follow these steps:

1. Call list_blocks to see what is already there.
2. Add a full-width title block at the top with add_block and HTML content like "<h1>%s</h1>".
3. Add an image block and fill it with upload_image, or leave a placeholder.
4. Add one or two text blocks with details below the image.
5. Style the title with set_style: bold, a large fontSize and horizontalAlign center.
6. Use drag_block and resize_block for fine adjustments; they snap to the other blocks.
7. Move the image below the text with move_layer if they overlap.

Keep every block inside the artboard bounds.`, topic, a.Width, a.Height, a.Unit, topic),
				},
			},
		},
	}, nil
}
