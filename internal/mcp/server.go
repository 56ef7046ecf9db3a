package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"artboard/internal/domain"
	"artboard/internal/editor"
	"artboard/internal/service"
)

// Server is the MCP server for one open artboard. It exposes the editor's
// operations as tools so AI agents can lay out blocks.
type Server struct {
	mcp      *server.MCPServer
	session  *service.Session
	autosave *service.Autosave
	approval *ApprovalQueue
	layout   *LayoutEngine
	logger   *log.Logger
}

// Deps holds everything the host passes to the MCP server.
type Deps struct {
	Session  *service.Session
	Autosave *service.Autosave // optional, enables save_snapshot
	Emitter  EventEmitter      // nil in standalone mode
	Logger   *log.Logger
	Name     string
	Version  string

	// AutoApprove skips the approval round-trip for destructive tools.
	AutoApprove bool
}

// New creates and configures a new MCP server with all tools and resources.
func New(ctx context.Context, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = log.Default()
	}
	name, version := deps.Name, deps.Version
	if name == "" {
		name = "artboard-mcp"
	}
	if version == "" {
		version = "1.0.0"
	}
	a := deps.Session.Artboard()
	s := &Server{
		session:  deps.Session,
		autosave: deps.Autosave,
		approval: NewApprovalQueue(ctx, deps.Emitter, deps.AutoApprove),
		layout:   NewLayoutEngine(a.Unit, a.Width, a.Height),
		logger:   logger.WithPrefix("mcp"),
	}

	s.mcp = server.NewMCPServer(
		name,
		version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
		server.WithPromptCapabilities(true),
	)

	s.registerBlockTools()
	s.registerGestureTools()
	s.registerStyleTools()
	s.registerResources()
	s.registerPrompts()
	return s
}

// MCP returns the underlying server, e.g. for an HTTP transport.
func (s *Server) MCP() *server.MCPServer { return s.mcp }

// ServeStdio serves MCP on stdin/stdout until ctx is done or stdin closes.
func (s *Server) ServeStdio(ctx context.Context) error {
	s.logger.Info("starting stdio server", "artboard", s.session.Artboard().ID)
	stdio := server.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(s.logger.StandardLog(log.StandardLogOptions{ForceLevel: log.ErrorLevel}))
	return stdio.Listen(ctx, os.Stdin, os.Stdout)
}

// ServeHTTP serves MCP over streamable HTTP on addr until ctx is done.
func (s *Server) ServeHTTP(ctx context.Context, addr string) error {
	httpSrv := server.NewStreamableHTTPServer(s.mcp)
	errc := make(chan error, 1)
	go func() { errc <- httpSrv.Start(addr) }()
	s.logger.Info("starting http server", "addr", addr, "artboard", s.session.Artboard().ID)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("http shutdown", "err", err)
		}
		return ctx.Err()
	}
}

// Approve forwards a user approval to the approval queue.
func (s *Server) Approve(actionID string) {
	s.approval.Approve(actionID)
}

// Reject forwards a user rejection to the approval queue.
func (s *Server) Reject(actionID string) {
	s.approval.Reject(actionID)
}

// ── Helpers ────────────────────────────────────────────────

// do runs fn on the session's editor loop.
func (s *Server) do(ctx context.Context, fn func(*editor.Surface) error) error {
	return s.session.Do(ctx, fn)
}

// textResult creates a simple text tool result.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

// jsonResult serializes v to JSON and wraps it in a text tool result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return textResult(string(data)), nil
}

// controllerFor resolves the "reference" argument. Must run on the loop.
func controllerFor(sf *editor.Surface, args map[string]any) (*editor.BlockController, error) {
	ref, _ := args["reference"].(string)
	if ref == "" {
		return nil, fmt.Errorf("reference is required")
	}
	ctl, ok := sf.Controller(ref)
	if !ok {
		return nil, fmt.Errorf("no block %q on this artboard", ref)
	}
	return ctl, nil
}

// blockSummary is what agents see of a block.
type blockSummary struct {
	Reference string  `json:"reference"`
	Type      string  `json:"type"`
	Layer     int     `json:"layer"`
	Left      float64 `json:"left"`
	Top       float64 `json:"top"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	Rotate    float64 `json:"rotate,omitempty"`
	Selected  bool    `json:"selected,omitempty"`
	ImageURL  string  `json:"imageUrl,omitempty"`
	ClipPath  string  `json:"clipPath,omitempty"`
	Preview   string  `json:"preview,omitempty"` // first 200 chars of content
}

func summarizeBlock(b *domain.Block, selected bool) blockSummary {
	preview := b.Content
	if len(preview) > 200 {
		preview = preview[:200] + "..."
	}
	return blockSummary{
		Reference: b.Reference,
		Type:      string(b.Type),
		Layer:     b.Layer(),
		Left:      b.Left,
		Top:       b.Top,
		Width:     b.Width,
		Height:    b.Height,
		Rotate:    b.Rotate,
		Selected:  selected,
		ImageURL:  b.ImageURL,
		ClipPath:  b.ClipPath,
		Preview:   preview,
	}
}

func summarizeBlocks(sf *editor.Surface, blocks []*domain.Block) []blockSummary {
	out := make([]blockSummary, 0, len(blocks))
	for _, b := range blocks {
		selected := false
		if ctl, ok := sf.Controller(b.Reference); ok {
			selected = ctl.Selected()
		}
		out = append(out, summarizeBlock(b, selected))
	}
	return out
}
