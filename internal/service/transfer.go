package service

import (
	"context"
	"fmt"
	"io"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"artboard/internal/domain"
)

// ─────────────────────────────────────────────────────────────
// YAML import / export
// ─────────────────────────────────────────────────────────────

// ExportYAML writes state as a YAML document.
func ExportYAML(w io.Writer, state *domain.ArtboardState) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(state); err != nil {
		return fmt.Errorf("encode artboard: %w", err)
	}
	return enc.Close()
}

// ImportYAML reads and validates an artboard document. Blocks without a
// reference get a fresh one.
func ImportYAML(r io.Reader) (*domain.ArtboardState, error) {
	var state domain.ArtboardState
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&state); err != nil {
		return nil, fmt.Errorf("decode artboard: %w", err)
	}
	for _, b := range state.Blocks {
		if b != nil && b.Reference == "" {
			b.Reference = uuid.NewString()
		}
	}
	if err := validateState(&state); err != nil {
		return nil, fmt.Errorf("invalid artboard: %w", err)
	}
	return &state, nil
}

func validateState(state *domain.ArtboardState) error {
	a := &state.Artboard
	if err := validation.ValidateStruct(a,
		validation.Field(&a.Name, validation.Required),
		validation.Field(&a.Unit, validation.Required, validation.In(domain.UnitInch, domain.UnitPixel)),
		validation.Field(&a.Width, validation.Required, validation.Min(0.0)),
		validation.Field(&a.Height, validation.Required, validation.Min(0.0)),
	); err != nil {
		return err
	}
	seen := map[string]bool{}
	for i, b := range state.Blocks {
		if b == nil {
			return fmt.Errorf("block %d is empty", i)
		}
		if err := validation.Validate(b.Type, validation.Required, validation.In(domain.BlockTypeText, domain.BlockTypeImage)); err != nil {
			return fmt.Errorf("block %s: type: %w", b.Reference, err)
		}
		if seen[b.Reference] {
			return fmt.Errorf("duplicate block reference %q", b.Reference)
		}
		seen[b.Reference] = true
	}
	return nil
}

// Export writes the stored artboard id as YAML.
func (s *ArtboardService) Export(id string, w io.Writer) error {
	state, err := s.GetState(id)
	if err != nil {
		return err
	}
	return ExportYAML(w, state)
}

// Import stores the YAML artboard read from r.
func (s *ArtboardService) Import(ctx context.Context, r io.Reader) (*domain.Artboard, error) {
	state, err := ImportYAML(r)
	if err != nil {
		return nil, err
	}
	return s.RestoreState(ctx, state)
}
