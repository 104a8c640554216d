package drafts

import (
	"context"
	"errors"
	"testing"

	"github.com/oriolmontcreus/capsulo-sub000/pkg/interfaces"
)

func sampleUnit(id string) *interfaces.ContentUnit {
	return &interfaces.ContentUnit{
		ID:   id,
		Kind: interfaces.UnitKindPage,
		Components: []*interfaces.Component{
			{
				ID:         "hero-1",
				SchemaName: "hero",
				Data: map[string]interfaces.FieldEntry{
					"title": {Type: interfaces.FieldTypeText, Value: "Hello"},
				},
			},
		},
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if unit, err := store.GetDraft(ctx, "home"); err != nil || unit != nil {
		t.Fatalf("expected nil, nil for absent draft, got %v, %v", unit, err)
	}

	if err := store.SetDraft(ctx, "home", sampleUnit("home")); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := store.GetDraft(ctx, "home")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil || got.Component("hero-1") == nil {
		t.Fatalf("expected stored snapshot back, got %+v", got)
	}
}

func TestMemoryStoreClonesSnapshots(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	unit := sampleUnit("home")
	if err := store.SetDraft(ctx, "home", unit); err != nil {
		t.Fatalf("set: %v", err)
	}
	unit.Components[0].Data["title"] = interfaces.FieldEntry{Type: interfaces.FieldTypeText, Value: "mutated"}

	got, _ := store.GetDraft(ctx, "home")
	if got.Component("hero-1").Data["title"].Value != "Hello" {
		t.Fatal("expected store to be isolated from caller mutation")
	}

	got.Component("hero-1").Data["title"] = interfaces.FieldEntry{Type: interfaces.FieldTypeText, Value: "also mutated"}
	again, _ := store.GetDraft(ctx, "home")
	if again.Component("hero-1").Data["title"].Value != "Hello" {
		t.Fatal("expected reads to hand out copies")
	}
}

func TestMemoryStoreValidation(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if _, err := store.GetDraft(ctx, " "); !errors.Is(err, ErrUnitIDRequired) {
		t.Fatalf("expected ErrUnitIDRequired, got %v", err)
	}
	if err := store.SetDraft(ctx, "", sampleUnit("x")); !errors.Is(err, ErrUnitIDRequired) {
		t.Fatalf("expected ErrUnitIDRequired, got %v", err)
	}
	if err := store.SetDraft(ctx, "home", nil); !errors.Is(err, ErrNilSnapshot) {
		t.Fatalf("expected ErrNilSnapshot, got %v", err)
	}
	if err := store.ClearDraft(ctx, ""); !errors.Is(err, ErrUnitIDRequired) {
		t.Fatalf("expected ErrUnitIDRequired, got %v", err)
	}
}

func TestMemoryStoreListAndClear(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	for _, id := range []string{"zeta", "alpha", "mid"} {
		if err := store.SetDraft(ctx, id, sampleUnit(id)); err != nil {
			t.Fatalf("set %s: %v", id, err)
		}
	}

	ids, err := store.ListDraftUnitIDs(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{"alpha", "mid", "zeta"}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("expected sorted ids %v, got %v", want, ids)
		}
	}

	if err := store.ClearDraft(ctx, "mid"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	ids, _ = store.ListDraftUnitIDs(ctx)
	if len(ids) != 2 {
		t.Fatalf("expected 2 drafts after clear, got %v", ids)
	}

	if err := store.ClearAllDrafts(ctx); err != nil {
		t.Fatalf("clear all: %v", err)
	}
	ids, _ = store.ListDraftUnitIDs(ctx)
	if len(ids) != 0 {
		t.Fatalf("expected empty store, got %v", ids)
	}
}
