package domain

import "time"

// Artboard is the bounded surface blocks are placed on.
type Artboard struct {
	ID        string    `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	Unit      Unit      `json:"unit" yaml:"unit"`
	Width     float64   `json:"width" yaml:"width"`
	Height    float64   `json:"height" yaml:"height"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" yaml:"updatedAt"`
}

type ArtboardStore interface {
	CreateArtboard(a *Artboard) error
	GetArtboard(id string) (*Artboard, error)
	ListArtboards() ([]Artboard, error)
	UpdateArtboard(a *Artboard) error
	DeleteArtboard(id string) error
}

// ArtboardState is the complete state of an artboard, blocks ordered by layer.
type ArtboardState struct {
	Artboard Artboard `json:"artboard" yaml:"artboard"`
	Blocks   []*Block `json:"blocks" yaml:"blocks"`
}
