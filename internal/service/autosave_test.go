package service_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"artboard/internal/domain"
	"artboard/internal/service"
)

func staticState(name string) service.SnapshotFunc {
	return func(context.Context) (*domain.ArtboardState, error) {
		return &domain.ArtboardState{
			Artboard: domain.Artboard{ID: "board", Name: name, Unit: domain.UnitInch, Width: 8.5, Height: 11},
			Blocks:   []*domain.Block{{Reference: "b1", Type: domain.BlockTypeText, Width: 1, Height: 1}},
		}, nil
	}
}

func TestAutosave_SnapshotIsImportable(t *testing.T) {
	em := &service.MockEmitter{}
	a := service.NewAutosave(t.TempDir(), em, nil)
	a.Register("board", staticState("Flyer"))

	path, err := a.Snapshot(context.Background(), "board")
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	state, err := service.ImportYAML(f)
	if err != nil {
		t.Fatalf("ImportYAML: %v", err)
	}
	if state.Artboard.Name != "Flyer" || len(state.Blocks) != 1 {
		t.Errorf("state = %+v", state)
	}
	if got := em.Named(service.EventSnapshot); len(got) != 1 || got[0].Data != path {
		t.Errorf("snapshot events = %+v", got)
	}
}

func TestAutosave_RunOnceAndPrune(t *testing.T) {
	a := service.NewAutosave(t.TempDir(), nil, nil)
	a.Keep = 2
	unregister := a.Register("board", staticState("Flyer"))

	for range 4 {
		if paths := a.RunOnce(context.Background()); len(paths) != 1 {
			t.Fatalf("RunOnce wrote %d snapshots", len(paths))
		}
	}
	snaps, err := a.Snapshots("board")
	if err != nil {
		t.Fatalf("Snapshots: %v", err)
	}
	if len(snaps) != 2 {
		t.Errorf("kept %d snapshots, want 2", len(snaps))
	}

	unregister()
	if paths := a.RunOnce(context.Background()); len(paths) != 0 {
		t.Errorf("unregistered artboard still snapshotted: %v", paths)
	}
}

func TestAutosave_CaptureError(t *testing.T) {
	a := service.NewAutosave(t.TempDir(), nil, nil)
	boom := errors.New("boom")
	a.Register("board", func(context.Context) (*domain.ArtboardState, error) { return nil, boom })

	if _, err := a.Snapshot(context.Background(), "board"); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if _, err := a.Snapshot(context.Background(), "other"); err == nil {
		t.Fatal("expected error for unregistered artboard")
	}
}

func TestAutosave_StartRejectsBadSchedule(t *testing.T) {
	a := service.NewAutosave(t.TempDir(), nil, nil)
	if err := a.Start(context.Background(), "every tuesday"); err == nil {
		t.Fatal("expected schedule error")
	}
	if err := a.Start(context.Background(), "@every 1h"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := a.Start(context.Background(), "@every 1h"); err == nil {
		t.Error("expected error on second Start")
	}
	a.Stop(context.Background())
}

func TestAutosave_SessionSnapshot(t *testing.T) {
	svc, _ := newService(t)
	zero := 0
	board := newBoard(t, svc, &domain.Block{Reference: "b1", Type: domain.BlockTypeText, Width: 1, Height: 1, Index: &zero})
	sess := openSession(t, svc, board.ID)
	defer sess.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sess.Run(ctx) }()
	defer func() {
		cancel()
		<-done
	}()

	a := service.NewAutosave(t.TempDir(), nil, nil)
	a.Register(board.ID, sess.Snapshot)
	if _, err := a.Snapshot(ctx, board.ID); err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
}
