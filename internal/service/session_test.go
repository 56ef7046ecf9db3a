package service_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"artboard/internal/domain"
	"artboard/internal/editor"
	"artboard/internal/service"
	"artboard/internal/storage"
)

func newService(t *testing.T) (*service.ArtboardService, *service.MockEmitter) {
	t.Helper()
	db, err := storage.New(filepath.Join(t.TempDir(), "artboard.db"))
	if err != nil {
		t.Fatalf("storage.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	em := &service.MockEmitter{}
	return service.NewArtboardService(storage.NewArtboardStore(db), storage.NewBlockStore(db), em, nil), em
}

func newBoard(t *testing.T, svc *service.ArtboardService, blocks ...*domain.Block) *domain.Artboard {
	t.Helper()
	a, err := svc.CreateArtboard("Flyer", domain.UnitInch, 8.5, 11)
	if err != nil {
		t.Fatalf("CreateArtboard: %v", err)
	}
	for _, b := range blocks {
		if err := svc.Blocks().CreateBlock(a.ID, b); err != nil {
			t.Fatalf("CreateBlock: %v", err)
		}
	}
	return a
}

func openSession(t *testing.T, svc *service.ArtboardService, id string, opts ...service.SessionOption) *service.Session {
	t.Helper()
	opts = append([]service.SessionOption{service.WithFlushDelay(time.Hour)}, opts...)
	sess, err := svc.Open(context.Background(), id, opts...)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return sess
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestOpen_UnknownArtboard(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.Open(context.Background(), "missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestSession_LoadsStoredBlocks(t *testing.T) {
	svc, em := newService(t)
	one, two := 1, 0
	a := newBoard(t, svc,
		&domain.Block{Reference: "top", Type: domain.BlockTypeText, Left: 1, Top: 1, Width: 2, Height: 2, Index: &one},
		&domain.Block{Reference: "bottom", Type: domain.BlockTypeText, Left: 1, Top: 1, Width: 2, Height: 2, Index: &two},
	)
	sess := openSession(t, svc, a.ID)
	defer sess.Close()
	sess.Loop().Drain()

	state := sess.State()
	if len(state.Blocks) != 2 || state.Blocks[0].Reference != "bottom" || state.Blocks[1].Reference != "top" {
		t.Fatalf("blocks = %+v", state.Blocks)
	}
	// The selection subject replays its empty value at mount.
	if got := em.Named(service.EventBlocksSelected); len(got) == 0 {
		t.Error("expected an initial blocks-selected event")
	}
}

func TestSession_AddedBlockIsPersistedOnFlush(t *testing.T) {
	svc, em := newService(t)
	a := newBoard(t, svc)
	sess := openSession(t, svc, a.ID)
	defer sess.Close()

	added := sess.Surface().AddBlock(nil)
	sess.Loop().Drain()

	if got := em.Named(service.EventBlockAdded); len(got) != 1 {
		t.Fatalf("block-added events = %d, want 1", len(got))
	}
	if _, err := svc.Blocks().GetBlock(a.ID, added.Reference); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("block stored before flush: %v", err)
	}

	if err := sess.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	got, err := svc.Blocks().GetBlock(a.ID, added.Reference)
	if err != nil {
		t.Fatalf("GetBlock: %v", err)
	}
	if got.Width != 3.13 || got.Left != 1.04 {
		t.Errorf("stored geometry = %v,%v", got.Left, got.Width)
	}
}

func TestSession_StyleChangeUpdatesStore(t *testing.T) {
	svc, _ := newService(t)
	zero := 0
	a := newBoard(t, svc, &domain.Block{Reference: "b1", Type: domain.BlockTypeText, Width: 1, Height: 1, Index: &zero})
	sess := openSession(t, svc, a.ID)
	defer sess.Close()
	sess.Loop().Drain()

	sess.Surface().Select("b1")
	sess.Surface().ToggleBold()
	sess.Surface().SetFontColor("#ff0000")
	sess.Loop().Drain()
	if err := sess.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	got, err := svc.Blocks().GetBlock(a.ID, "b1")
	if err != nil {
		t.Fatalf("GetBlock: %v", err)
	}
	if !got.Bold || got.FontColor != "#ff0000" {
		t.Errorf("stored style = bold:%v color:%q", got.Bold, got.FontColor)
	}
}

func TestSession_RemoveDeletesImmediately(t *testing.T) {
	svc, em := newService(t)
	zero := 0
	a := newBoard(t, svc, &domain.Block{Reference: "b1", Type: domain.BlockTypeText, Width: 1, Height: 1, Index: &zero})
	sess := openSession(t, svc, a.ID)
	defer sess.Close()
	sess.Loop().Drain()

	sess.Surface().Select("b1")
	sess.Surface().RemoveSelected()
	sess.Loop().Drain()

	if _, err := svc.Blocks().GetBlock(a.ID, "b1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("GetBlock after remove: %v", err)
	}
	removed := em.Named(service.EventBlocksRemoved)
	if len(removed) != 1 {
		t.Fatalf("blocks-removed events = %d", len(removed))
	}
	if refs := removed[0].Data.([]string); len(refs) != 1 || refs[0] != "b1" {
		t.Errorf("removed refs = %v", refs)
	}
}

func TestSession_LayerChangePersisted(t *testing.T) {
	svc, _ := newService(t)
	zero, one := 0, 1
	a := newBoard(t, svc,
		&domain.Block{Reference: "a", Type: domain.BlockTypeText, Width: 1, Height: 1, Index: &zero},
		&domain.Block{Reference: "b", Type: domain.BlockTypeText, Width: 1, Height: 1, Index: &one},
	)
	sess := openSession(t, svc, a.ID)
	defer sess.Close()
	sess.Loop().Drain()

	sess.Surface().Select("a")
	sess.Surface().LayerUp()
	sess.Loop().Drain()
	if err := sess.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	blocks, err := svc.Blocks().ListBlocks(a.ID)
	if err != nil {
		t.Fatalf("ListBlocks: %v", err)
	}
	if len(blocks) != 2 || blocks[0].Reference != "b" || blocks[1].Reference != "a" {
		t.Errorf("stored order = %v,%v", blocks[0].Reference, blocks[1].Reference)
	}
}

func TestSession_RunFlushesOnCancel(t *testing.T) {
	svc, _ := newService(t)
	a := newBoard(t, svc)
	sess := openSession(t, svc, a.ID)
	defer sess.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sess.Run(ctx) }()

	var ref string
	err := sess.Do(ctx, func(s *editor.Surface) error {
		ref = s.AddBlock(nil).Reference
		return nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return")
	}

	if _, err := svc.Blocks().GetBlock(a.ID, ref); err != nil {
		t.Fatalf("block not flushed: %v", err)
	}
}

func TestSession_DoAfterRunReturns(t *testing.T) {
	svc, _ := newService(t)
	a := newBoard(t, svc)
	sess := openSession(t, svc, a.ID)
	defer sess.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sess.Run(ctx) }()
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Run: %v", err)
	}

	errc := make(chan error, 1)
	go func() {
		_, err := sess.Snapshot(context.Background())
		errc <- err
	}()
	select {
	case err := <-errc:
		if !errors.Is(err, editor.ErrClosed) {
			t.Errorf("Snapshot after Run = %v, want ErrClosed", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Snapshot blocked after Run returned")
	}
}

func TestSession_DebouncedFlush(t *testing.T) {
	svc, _ := newService(t)
	a := newBoard(t, svc)
	sess := openSession(t, svc, a.ID, service.WithFlushDelay(10*time.Millisecond))
	defer sess.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sess.Run(ctx) }()
	defer func() {
		cancel()
		<-done
	}()

	var ref string
	sess.Do(ctx, func(s *editor.Surface) error {
		ref = s.AddBlock(nil).Reference
		return nil
	})
	waitFor(t, "debounced flush", func() bool {
		_, err := svc.Blocks().GetBlock(a.ID, ref)
		return err == nil
	})
}

func TestSession_ImageUpload(t *testing.T) {
	svc, _ := newService(t)
	zero := 0
	a := newBoard(t, svc, &domain.Block{Reference: "img", Type: domain.BlockTypeImage, Width: 1, Height: 1, Index: &zero})
	images := service.NewImageStore(t.TempDir())
	sess := openSession(t, svc, a.ID, service.WithImages(images))
	defer sess.Close()
	sess.Loop().Drain()

	sess.Surface().Select("img")
	sess.Surface().FileSelect(pngBytes)

	var url string
	waitFor(t, "uploaded image", func() bool {
		sess.Loop().Drain()
		b, _ := sess.Surface().Block("img")
		url = b.ImageURL
		return url != ""
	})
	if filepath.Ext(url) != ".png" {
		t.Errorf("image url = %q", url)
	}
}

func TestSession_LinkContent(t *testing.T) {
	svc, _ := newService(t)
	zero := 0
	a := newBoard(t, svc, &domain.Block{Reference: "txt", Type: domain.BlockTypeText, Width: 1, Height: 1, Index: &zero})
	sess := openSession(t, svc, a.ID)
	defer sess.Close()
	sess.Loop().Drain()

	path := filepath.Join(t.TempDir(), "txt.html")
	if err := os.WriteFile(path, []byte("<p>first</p>\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := sess.LinkContent("txt", path); err != nil {
		t.Fatalf("LinkContent: %v", err)
	}
	if b, _ := sess.Surface().Block("txt"); b.Content != "<p>first</p>" {
		t.Fatalf("content = %q", b.Content)
	}

	if err := os.WriteFile(path, []byte("<p>second</p>"), 0644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "linked content", func() bool {
		sess.Loop().Drain()
		b, _ := sess.Surface().Block("txt")
		return b.Content == "<p>second</p>"
	})

	if err := sess.LinkContent("nope", path); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("LinkContent(unknown) = %v", err)
	}
}
