package identity

import (
	"testing"

	"github.com/google/uuid"
)

func TestUUIDIsDeterministic(t *testing.T) {
	a := UUID("editor:unit:home")
	b := UUID("editor:unit:home")
	if a == uuid.Nil {
		t.Fatal("expected non-nil uuid")
	}
	if a != b {
		t.Fatalf("expected stable uuid, got %s vs %s", a, b)
	}
	if UUID("editor:unit:other") == a {
		t.Fatal("expected distinct keys to derive distinct uuids")
	}
	if UUID("  ") != uuid.Nil {
		t.Fatal("expected blank key to derive nil uuid")
	}
}

func TestUnitAndDraftNamespacesDiffer(t *testing.T) {
	if UnitUUID("home") == DraftUUID("home") {
		t.Fatal("expected unit and draft namespaces to diverge")
	}
}

func TestComponentIDNormalizesSchemaKey(t *testing.T) {
	if got := ComponentID("Hero Banner", 0); got != "hero-banner-0" {
		t.Fatalf("expected normalized key, got %q", got)
	}
	if got := ComponentID("hero", 2); got != "hero-2" {
		t.Fatalf("expected occurrence suffix, got %q", got)
	}
	if got := ComponentID("  ", 0); got != "" {
		t.Fatalf("expected empty id for blank key, got %q", got)
	}
}

func TestRepeaterItemIDs(t *testing.T) {
	id := RepeaterItemID()
	if !IsRepeaterItemID(id) {
		t.Fatalf("expected minted id to validate, got %q", id)
	}
	if RepeaterItemID() == id {
		t.Fatal("expected fresh ids per mint")
	}
	if IsRepeaterItemID("item_") || IsRepeaterItemID("hero-0") {
		t.Fatal("expected malformed ids to fail validation")
	}
}
