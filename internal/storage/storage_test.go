package storage_test

import (
	"errors"
	"path/filepath"
	"testing"

	"artboard/internal/domain"
	"artboard/internal/storage"
)

func newTestDB(t *testing.T) *storage.DB {
	t.Helper()
	db, err := storage.New(filepath.Join(t.TempDir(), "data", "artboard.db"))
	if err != nil {
		t.Fatalf("storage.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func fptr(v float64) *float64 { return &v }

func TestArtboardStore_CRUD(t *testing.T) {
	s := storage.NewArtboardStore(newTestDB(t))

	a := &domain.Artboard{ID: "ab1", Name: "Flyer", Unit: domain.UnitInch, Width: 8.5, Height: 11}
	if err := s.CreateArtboard(a); err != nil {
		t.Fatalf("CreateArtboard: %v", err)
	}
	got, err := s.GetArtboard("ab1")
	if err != nil {
		t.Fatalf("GetArtboard: %v", err)
	}
	if got.Name != "Flyer" || got.Unit != domain.UnitInch || got.Width != 8.5 {
		t.Errorf("got %+v", got)
	}

	a.Name = "Poster"
	if err := s.UpdateArtboard(a); err != nil {
		t.Fatalf("UpdateArtboard: %v", err)
	}
	list, err := s.ListArtboards()
	if err != nil || len(list) != 1 || list[0].Name != "Poster" {
		t.Fatalf("ListArtboards = %v, %v", list, err)
	}

	if err := s.DeleteArtboard("ab1"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetArtboard("ab1"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := s.UpdateArtboard(a); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("update of missing artboard: %v", err)
	}
}

func TestBlockStore_RoundTrip(t *testing.T) {
	s := storage.NewBlockStore(newTestDB(t))

	b := &domain.Block{
		Reference: "b1", Type: domain.BlockTypeText,
		Width: 3, Height: 2, Top: 1.25, Left: 0.5, Rotate: 15,
		HorizontalAlign: domain.AlignCenter, VerticalAlign: domain.AlignBottom,
		FontColor: "#112233", FontSize: fptr(14), Bold: true,
		ShapeTopLeft: domain.ShapeSquare, ShapeRadius: 0.2,
		PaddingLeft: fptr(0.1),
		Content:     "<p>hi</p>", ClipPath: "inset(0 1px 0 0)",
		Extra: map[string]any{"author": "kim"},
	}
	b.SetLayer(2)
	if err := s.CreateBlock("ab1", b); err != nil {
		t.Fatalf("CreateBlock: %v", err)
	}

	got, err := s.GetBlock("ab1", "b1")
	if err != nil {
		t.Fatalf("GetBlock: %v", err)
	}
	if got.Top != 1.25 || got.Rotate != 15 || got.Layer() != 2 {
		t.Errorf("geometry lost: %+v", got)
	}
	if got.HorizontalAlign != domain.AlignCenter || got.FontSize == nil || *got.FontSize != 14 || !got.Bold {
		t.Errorf("style lost: %+v", got)
	}
	if got.LineHeight != nil || got.PaddingTop != nil || *got.PaddingLeft != 0.1 {
		t.Errorf("optional numerics: lineHeight=%v paddingTop=%v paddingLeft=%v", got.LineHeight, got.PaddingTop, got.PaddingLeft)
	}
	if got.Extra["author"] != "kim" || got.Content != "<p>hi</p>" || got.ClipPath != b.ClipPath {
		t.Errorf("content lost: %+v", got)
	}

	got.ImageURL = "file:///x.png"
	if err := s.UpdateBlock("ab1", got); err != nil {
		t.Fatalf("UpdateBlock: %v", err)
	}
	again, _ := s.GetBlock("ab1", "b1")
	if again.ImageURL != "file:///x.png" {
		t.Errorf("update not persisted: %q", again.ImageURL)
	}

	if err := s.UpdateBlock("ab1", &domain.Block{Reference: "missing"}); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := s.GetBlock("other", "b1"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("blocks are scoped per artboard, got %v", err)
	}
}

func TestBlockStore_ListOrdersByLayer(t *testing.T) {
	s := storage.NewBlockStore(newTestDB(t))

	blocks := []*domain.Block{
		{Reference: "top", Type: domain.BlockTypeText},
		{Reference: "b", Type: domain.BlockTypeImage},
		{Reference: "a", Type: domain.BlockTypeText},
	}
	blocks[1].SetLayer(1)
	blocks[2].SetLayer(0)
	if err := s.ReplaceBlocks("ab1", blocks); err != nil {
		t.Fatalf("ReplaceBlocks: %v", err)
	}

	list, err := s.ListBlocks("ab1")
	if err != nil {
		t.Fatal(err)
	}
	var refs []string
	for _, b := range list {
		refs = append(refs, b.Reference)
	}
	if len(refs) != 3 || refs[0] != "a" || refs[1] != "b" || refs[2] != "top" {
		t.Errorf("order = %v, want [a b top]", refs)
	}

	if err := s.ReplaceBlocks("ab1", blocks[:1]); err != nil {
		t.Fatal(err)
	}
	if list, _ := s.ListBlocks("ab1"); len(list) != 1 {
		t.Errorf("replace should drop old blocks, got %d", len(list))
	}
	if err := s.DeleteBlocksByArtboard("ab1"); err != nil {
		t.Fatal(err)
	}
	if list, _ := s.ListBlocks("ab1"); len(list) != 0 {
		t.Errorf("expected no blocks, got %d", len(list))
	}
}

func TestOpen_UnknownDriver(t *testing.T) {
	if _, err := storage.Open("oracle", "x"); err == nil {
		t.Error("expected error for unsupported driver")
	}
}
