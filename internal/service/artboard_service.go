package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"artboard/internal/domain"
	"artboard/internal/storage"
)

// ─────────────────────────────────────────────────────────────
// Artboard Service: artboards and their persisted blocks
// ─────────────────────────────────────────────────────────────

// ArtboardService manages artboards and their stored blocks.
type ArtboardService struct {
	artboards domain.ArtboardStore
	blocks    domain.BlockStore
	emitter   EventEmitter
	logger    *log.Logger
}

func NewArtboardService(artboards domain.ArtboardStore, blocks domain.BlockStore, emitter EventEmitter, logger *log.Logger) *ArtboardService {
	if emitter == nil {
		emitter = NopEmitter{}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &ArtboardService{
		artboards: artboards,
		blocks:    blocks,
		emitter:   emitter,
		logger:    logger.WithPrefix("artboard"),
	}
}

func (s *ArtboardService) Blocks() domain.BlockStore { return s.blocks }

// CreateArtboard creates an empty artboard.
func (s *ArtboardService) CreateArtboard(name string, unit domain.Unit, width, height float64) (*domain.Artboard, error) {
	a := &domain.Artboard{
		ID:     uuid.NewString(),
		Name:   name,
		Unit:   unit,
		Width:  width,
		Height: height,
	}
	if err := s.artboards.CreateArtboard(a); err != nil {
		return nil, fmt.Errorf("create artboard: %w", err)
	}
	s.logger.Info("created", "id", a.ID, "name", name)
	return a, nil
}

func (s *ArtboardService) ListArtboards() ([]domain.Artboard, error) {
	return s.artboards.ListArtboards()
}

func (s *ArtboardService) GetArtboard(id string) (*domain.Artboard, error) {
	return s.artboards.GetArtboard(id)
}

func (s *ArtboardService) RenameArtboard(id, name string) error {
	a, err := s.artboards.GetArtboard(id)
	if err != nil {
		return err
	}
	a.Name = name
	return s.artboards.UpdateArtboard(a)
}

// DeleteArtboard removes an artboard and all of its blocks.
func (s *ArtboardService) DeleteArtboard(id string) error {
	if err := s.blocks.DeleteBlocksByArtboard(id); err != nil {
		return fmt.Errorf("delete blocks: %w", err)
	}
	if err := s.artboards.DeleteArtboard(id); err != nil {
		return fmt.Errorf("delete artboard: %w", err)
	}
	s.logger.Info("deleted", "id", id)
	return nil
}

// GetState returns an artboard with its blocks, bottom layer first.
func (s *ArtboardService) GetState(id string) (*domain.ArtboardState, error) {
	a, err := s.artboards.GetArtboard(id)
	if err != nil {
		return nil, err
	}
	blocks, err := s.blocks.ListBlocks(id)
	if err != nil {
		return nil, fmt.Errorf("load blocks: %w", err)
	}
	return &domain.ArtboardState{Artboard: *a, Blocks: blocks}, nil
}

// SaveState writes the artboard and replaces its blocks.
func (s *ArtboardService) SaveState(ctx context.Context, state *domain.ArtboardState) error {
	a := state.Artboard
	if err := s.artboards.UpdateArtboard(&a); err != nil {
		return fmt.Errorf("save artboard: %w", err)
	}
	if err := s.blocks.ReplaceBlocks(a.ID, state.Blocks); err != nil {
		return fmt.Errorf("save blocks: %w", err)
	}
	s.emitter.Emit(ctx, EventSaved, a.ID)
	return nil
}

// RestoreState stores state as a new artboard, or overwrites the one with
// the same ID.
func (s *ArtboardService) RestoreState(ctx context.Context, state *domain.ArtboardState) (*domain.Artboard, error) {
	a := state.Artboard
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	_, err := s.artboards.GetArtboard(a.ID)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		err = s.artboards.CreateArtboard(&a)
	case err == nil:
		err = s.artboards.UpdateArtboard(&a)
	}
	if err != nil {
		return nil, fmt.Errorf("restore artboard: %w", err)
	}
	if err := s.blocks.ReplaceBlocks(a.ID, state.Blocks); err != nil {
		return nil, fmt.Errorf("restore blocks: %w", err)
	}
	s.emitter.Emit(ctx, EventSaved, a.ID)
	return &a, nil
}
