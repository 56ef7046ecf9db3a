package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"artboard/internal/domain"
)

// ArtboardStore implements domain.ArtboardStore on a SQL database.
type ArtboardStore struct {
	db *DB
}

var _ domain.ArtboardStore = (*ArtboardStore)(nil)

func NewArtboardStore(db *DB) *ArtboardStore {
	return &ArtboardStore{db: db}
}

func (s *ArtboardStore) CreateArtboard(a *domain.Artboard) error {
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now
	_, err := s.db.exec(
		`INSERT INTO artboards (id, name, unit, width, height, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Name, string(a.Unit), a.Width, a.Height, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create artboard: %w", err)
	}
	return nil
}

func (s *ArtboardStore) GetArtboard(id string) (*domain.Artboard, error) {
	a := &domain.Artboard{}
	err := s.db.queryRow(
		`SELECT id, name, unit, width, height, created_at, updated_at FROM artboards WHERE id = ?`, id,
	).Scan(&a.ID, &a.Name, &a.Unit, &a.Width, &a.Height, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("artboard %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get artboard: %w", err)
	}
	return a, nil
}

func (s *ArtboardStore) ListArtboards() ([]domain.Artboard, error) {
	rows, err := s.db.query(`SELECT id, name, unit, width, height, created_at, updated_at FROM artboards ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list artboards: %w", err)
	}
	defer rows.Close()

	var boards []domain.Artboard
	for rows.Next() {
		var a domain.Artboard
		if err := rows.Scan(&a.ID, &a.Name, &a.Unit, &a.Width, &a.Height, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		boards = append(boards, a)
	}
	return boards, rows.Err()
}

func (s *ArtboardStore) UpdateArtboard(a *domain.Artboard) error {
	a.UpdatedAt = time.Now().UTC()
	res, err := s.db.exec(
		`UPDATE artboards SET name = ?, unit = ?, width = ?, height = ?, updated_at = ? WHERE id = ?`,
		a.Name, string(a.Unit), a.Width, a.Height, a.UpdatedAt, a.ID,
	)
	if err != nil {
		return fmt.Errorf("update artboard: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("artboard %s: %w", a.ID, ErrNotFound)
	}
	return nil
}

func (s *ArtboardStore) DeleteArtboard(id string) error {
	_, err := s.db.exec(`DELETE FROM artboards WHERE id = ?`, id)
	return err
}
