package service_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"artboard/internal/domain"
	"artboard/internal/service"
)

func TestExportImport_PreservesBlocks(t *testing.T) {
	svc, em := newService(t)
	zero, one := 0, 1
	size := 14.0
	a := newBoard(t, svc,
		&domain.Block{Reference: "title", Type: domain.BlockTypeText, Left: 1, Top: 1, Width: 6, Height: 1, Content: "<p>Sale</p>", Bold: true, FontSize: &size, Index: &one},
		&domain.Block{Reference: "photo", Type: domain.BlockTypeImage, Left: 0, Top: 0, Width: 8.5, Height: 5, Rotate: 15, ImageURL: "file:///tmp/a.png", Index: &zero},
	)

	var buf bytes.Buffer
	if err := svc.Export(a.ID, &buf); err != nil {
		t.Fatalf("Export: %v", err)
	}
	if err := svc.DeleteArtboard(a.ID); err != nil {
		t.Fatalf("DeleteArtboard: %v", err)
	}

	restored, err := svc.Import(context.Background(), &buf)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if restored.ID != a.ID || restored.Name != "Flyer" {
		t.Errorf("restored = %+v", restored)
	}
	state, err := svc.GetState(a.ID)
	if err != nil {
		t.Fatalf("GetState: %v", err)
	}
	if len(state.Blocks) != 2 || state.Blocks[0].Reference != "photo" {
		t.Fatalf("blocks = %+v", state.Blocks)
	}
	title := state.Blocks[1]
	if !title.Bold || title.FontSize == nil || *title.FontSize != 14 || title.Content != "<p>Sale</p>" {
		t.Errorf("title = %+v", title)
	}
	if state.Blocks[0].Rotate != 15 {
		t.Errorf("photo rotate = %v", state.Blocks[0].Rotate)
	}
	if len(em.Named(service.EventSaved)) != 1 {
		t.Error("expected one saved event")
	}
}

func TestImportYAML_Rejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"unknown field", "artboard: {name: a, unit: in, width: 1, height: 1}\ncolour: red\n"},
		{"bad unit", "artboard: {name: a, unit: cm, width: 1, height: 1}\n"},
		{"missing name", "artboard: {unit: in, width: 1, height: 1}\n"},
		{"bad block type", "artboard: {name: a, unit: in, width: 1, height: 1}\nblocks:\n  - {reference: x, type: video}\n"},
		{"duplicate reference", "artboard: {name: a, unit: in, width: 1, height: 1}\nblocks:\n  - {reference: x, type: text}\n  - {reference: x, type: text}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := service.ImportYAML(strings.NewReader(tt.doc)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestImportYAML_FillsMissingReferences(t *testing.T) {
	doc := "artboard: {name: a, unit: px, width: 800, height: 600}\nblocks:\n  - {type: text}\n  - {type: image}\n"
	state, err := service.ImportYAML(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("ImportYAML: %v", err)
	}
	if state.Blocks[0].Reference == "" || state.Blocks[0].Reference == state.Blocks[1].Reference {
		t.Errorf("references = %q, %q", state.Blocks[0].Reference, state.Blocks[1].Reference)
	}
}
