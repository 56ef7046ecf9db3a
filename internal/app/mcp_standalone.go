package app

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"artboard/internal/config"
	mcpserver "artboard/internal/mcp"
)

// MCPOptions configures the standalone MCP server.
type MCPOptions struct {
	ArtboardID string
	Version    string
}

// ServeMCP runs a standalone MCP server on stdin/stdout with no GUI. The
// artboard's session loop, the stdio transport and autosave share one
// errgroup; the first to fail or ctx cancellation stops them all.
func ServeMCP(ctx context.Context, cfg *config.Config, opts MCPOptions, logger *log.Logger) error {
	if logger == nil {
		logger = log.Default()
	}
	backend, err := OpenBackend(ctx, cfg, nil, logger)
	if err != nil {
		return err
	}

	a, err := backend.ResolveArtboard(opts.ArtboardID)
	if err != nil {
		backend.Close(context.Background())
		return err
	}
	sess, unregister, err := backend.OpenSession(ctx, a.ID)
	if err != nil {
		backend.Close(context.Background())
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	srv := mcpserver.New(ctx, mcpserver.Deps{
		Session:     sess,
		Autosave:    backend.Autosave(),
		Logger:      logger,
		Name:        cfg.MCP.Name,
		Version:     opts.Version,
		AutoApprove: cfg.MCP.AutoApprove,
	})

	g.Go(func() error { return sess.Run(ctx) })
	g.Go(func() error {
		err := srv.ServeStdio(ctx)
		if err == nil || errors.Is(err, context.Canceled) {
			// stdin closed; stop the session too
			return context.Canceled
		}
		return err
	})
	if err := backend.StartAutosave(ctx); err != nil {
		logger.Error("autosave disabled", "err", err)
	}

	err = g.Wait()
	unregister()
	if cerr := sess.Close(); cerr != nil {
		logger.Error("close session", "err", cerr)
	}
	if cerr := backend.Close(context.Background()); cerr != nil {
		logger.Error("close storage", "err", cerr)
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
