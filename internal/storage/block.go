package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"artboard/internal/domain"
)

// BlockStore implements domain.BlockStore on a SQL database.
type BlockStore struct {
	db *DB
}

var _ domain.BlockStore = (*BlockStore)(nil)

func NewBlockStore(db *DB) *BlockStore {
	return &BlockStore{db: db}
}

// blockStyle is the style_json column: every presentational field that
// has no column of its own.
type blockStyle struct {
	HorizontalAlign  domain.HorizontalAlign `json:"horizontalAlign,omitempty"`
	VerticalAlign    domain.VerticalAlign   `json:"verticalAlign,omitempty"`
	BorderColor      string                 `json:"borderColor,omitempty"`
	FontColor        string                 `json:"fontColor,omitempty"`
	BackgroundColor  string                 `json:"backgroundColor,omitempty"`
	FontSize         *float64               `json:"fontSize,omitempty"`
	LineHeight       *float64               `json:"lineHeight,omitempty"`
	Bold             bool                   `json:"bold,omitempty"`
	Italic           bool                   `json:"italic,omitempty"`
	Underline        bool                   `json:"underline,omitempty"`
	ShapeTopLeft     domain.CornerShape     `json:"shapeTopLeft,omitempty"`
	ShapeTopRight    domain.CornerShape     `json:"shapeTopRight,omitempty"`
	ShapeBottomLeft  domain.CornerShape     `json:"shapeBottomLeft,omitempty"`
	ShapeBottomRight domain.CornerShape     `json:"shapeBottomRight,omitempty"`
	ShapeRadius      float64                `json:"shapeRadius,omitempty"`
	PaddingTop       *float64               `json:"paddingTop,omitempty"`
	PaddingRight     *float64               `json:"paddingRight,omitempty"`
	PaddingBottom    *float64               `json:"paddingBottom,omitempty"`
	PaddingLeft      *float64               `json:"paddingLeft,omitempty"`
}

func styleOf(b *domain.Block) blockStyle {
	return blockStyle{
		HorizontalAlign: b.HorizontalAlign, VerticalAlign: b.VerticalAlign,
		BorderColor: b.BorderColor, FontColor: b.FontColor, BackgroundColor: b.BackgroundColor,
		FontSize: b.FontSize, LineHeight: b.LineHeight,
		Bold: b.Bold, Italic: b.Italic, Underline: b.Underline,
		ShapeTopLeft: b.ShapeTopLeft, ShapeTopRight: b.ShapeTopRight,
		ShapeBottomLeft: b.ShapeBottomLeft, ShapeBottomRight: b.ShapeBottomRight,
		ShapeRadius: b.ShapeRadius,
		PaddingTop: b.PaddingTop, PaddingRight: b.PaddingRight,
		PaddingBottom: b.PaddingBottom, PaddingLeft: b.PaddingLeft,
	}
}

func (s blockStyle) applyTo(b *domain.Block) {
	b.HorizontalAlign, b.VerticalAlign = s.HorizontalAlign, s.VerticalAlign
	b.BorderColor, b.FontColor, b.BackgroundColor = s.BorderColor, s.FontColor, s.BackgroundColor
	b.FontSize, b.LineHeight = s.FontSize, s.LineHeight
	b.Bold, b.Italic, b.Underline = s.Bold, s.Italic, s.Underline
	b.ShapeTopLeft, b.ShapeTopRight = s.ShapeTopLeft, s.ShapeTopRight
	b.ShapeBottomLeft, b.ShapeBottomRight = s.ShapeBottomLeft, s.ShapeBottomRight
	b.ShapeRadius = s.ShapeRadius
	b.PaddingTop, b.PaddingRight = s.PaddingTop, s.PaddingRight
	b.PaddingBottom, b.PaddingLeft = s.PaddingBottom, s.PaddingLeft
}

const blockColumns = `reference, layer, type, width, height, pos_top, pos_left, rotate, style_json, image_url, clip_path, content, extra_json`

// blockRow flattens b into the values of blockColumns.
func blockRow(b *domain.Block) ([]any, error) {
	style, err := json.Marshal(styleOf(b))
	if err != nil {
		return nil, fmt.Errorf("encode style: %w", err)
	}
	extra := []byte("{}")
	if len(b.Extra) > 0 {
		if extra, err = json.Marshal(b.Extra); err != nil {
			return nil, fmt.Errorf("encode extra: %w", err)
		}
	}
	var layer sql.NullInt64
	if b.Index != nil {
		layer = sql.NullInt64{Int64: int64(*b.Index), Valid: true}
	}
	return []any{
		b.Reference, layer, string(b.Type), b.Width, b.Height, b.Top, b.Left, b.Rotate,
		string(style), b.ImageURL, b.ClipPath, b.Content, string(extra),
	}, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBlock(row scanner) (*domain.Block, error) {
	var (
		b            domain.Block
		layer        sql.NullInt64
		style, extra string
	)
	if err := row.Scan(&b.Reference, &layer, &b.Type, &b.Width, &b.Height, &b.Top, &b.Left, &b.Rotate,
		&style, &b.ImageURL, &b.ClipPath, &b.Content, &extra); err != nil {
		return nil, err
	}
	if layer.Valid {
		b.SetLayer(int(layer.Int64))
	}
	var st blockStyle
	if err := json.Unmarshal([]byte(style), &st); err != nil {
		return nil, fmt.Errorf("decode style of %s: %w", b.Reference, err)
	}
	st.applyTo(&b)
	if extra != "" && extra != "{}" {
		if err := json.Unmarshal([]byte(extra), &b.Extra); err != nil {
			return nil, fmt.Errorf("decode extra of %s: %w", b.Reference, err)
		}
	}
	return &b, nil
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func (s *BlockStore) insert(ex execer, artboardID string, b *domain.Block, now time.Time) error {
	row, err := blockRow(b)
	if err != nil {
		return err
	}
	args := append([]any{artboardID}, row...)
	args = append(args, now, now)
	_, err = ex.Exec(s.db.dialect.Rebind(
		`INSERT INTO blocks (artboard_id, `+blockColumns+`, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`), args...)
	return err
}

func (s *BlockStore) CreateBlock(artboardID string, b *domain.Block) error {
	if err := s.insert(s.db.conn, artboardID, b, time.Now()); err != nil {
		return fmt.Errorf("create block %s: %w", b.Reference, err)
	}
	return nil
}

func (s *BlockStore) GetBlock(artboardID, reference string) (*domain.Block, error) {
	b, err := scanBlock(s.db.queryRow(
		`SELECT `+blockColumns+` FROM blocks WHERE artboard_id = ? AND reference = ?`, artboardID, reference,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("block %s: %w", reference, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get block: %w", err)
	}
	return b, nil
}

// ListBlocks returns the blocks of an artboard, bottom layer first.
func (s *BlockStore) ListBlocks(artboardID string) ([]*domain.Block, error) {
	rows, err := s.db.query(
		`SELECT `+blockColumns+` FROM blocks WHERE artboard_id = ?
		 ORDER BY CASE WHEN layer IS NULL THEN 1 ELSE 0 END, layer, created_at`,
		artboardID,
	)
	if err != nil {
		return nil, fmt.Errorf("list blocks: %w", err)
	}
	defer rows.Close()

	var blocks []*domain.Block
	for rows.Next() {
		b, err := scanBlock(rows)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, b)
	}
	return blocks, rows.Err()
}

func (s *BlockStore) UpdateBlock(artboardID string, b *domain.Block) error {
	row, err := blockRow(b)
	if err != nil {
		return err
	}
	// row[0] is the reference; it moves to the WHERE clause
	args := append(row[1:], time.Now(), artboardID, b.Reference)
	res, err := s.db.exec(
		`UPDATE blocks SET layer = ?, type = ?, width = ?, height = ?, pos_top = ?, pos_left = ?, rotate = ?,
		 style_json = ?, image_url = ?, clip_path = ?, content = ?, extra_json = ?, updated_at = ?
		 WHERE artboard_id = ? AND reference = ?`, args...)
	if err != nil {
		return fmt.Errorf("update block %s: %w", b.Reference, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("block %s: %w", b.Reference, ErrNotFound)
	}
	return nil
}

func (s *BlockStore) DeleteBlock(artboardID, reference string) error {
	_, err := s.db.exec(`DELETE FROM blocks WHERE artboard_id = ? AND reference = ?`, artboardID, reference)
	return err
}

func (s *BlockStore) DeleteBlocksByArtboard(artboardID string) error {
	_, err := s.db.exec(`DELETE FROM blocks WHERE artboard_id = ?`, artboardID)
	return err
}

// ReplaceBlocks atomically replaces all blocks of an artboard.
func (s *BlockStore) ReplaceBlocks(artboardID string, blocks []*domain.Block) error {
	tx, err := s.db.conn.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(s.db.dialect.Rebind(`DELETE FROM blocks WHERE artboard_id = ?`), artboardID); err != nil {
		return fmt.Errorf("delete blocks: %w", err)
	}
	now := time.Now()
	for _, b := range blocks {
		if err := s.insert(tx, artboardID, b, now); err != nil {
			return fmt.Errorf("insert block %s: %w", b.Reference, err)
		}
	}
	return tx.Commit()
}
