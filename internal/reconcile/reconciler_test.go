package reconcile

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/oriolmontcreus/capsulo-sub000/internal/drafts"
	"github.com/oriolmontcreus/capsulo-sub000/pkg/interfaces"
)

type fakeRemote struct {
	mu          sync.Mutex
	units       map[string]*interfaces.ContentUnit
	remoteDraft *interfaces.ContentUnit
	hasDraft    bool
	loadErr     error
	probeErr    error
	draftErr    error
	saved       []string
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{units: make(map[string]*interfaces.ContentUnit)}
}

func (f *fakeRemote) LoadUnit(_ context.Context, unitID string) (*interfaces.ContentUnit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.units[unitID].Clone(), nil
}

func (f *fakeRemote) SaveUnit(_ context.Context, unitID string, unit *interfaces.ContentUnit, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.units[unitID] = unit.Clone()
	f.saved = append(f.saved, unitID)
	return nil
}

func (f *fakeRemote) HasUnpublishedDraft(_ context.Context) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hasDraft, f.probeErr
}

func (f *fakeRemote) LoadRemoteDraft(_ context.Context, _ string) (*interfaces.ContentUnit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.draftErr != nil {
		return nil, f.draftErr
	}
	return f.remoteDraft.Clone(), nil
}

// blockingDraftStore parks GetDraft until released so tests can interleave a
// competing selection mid-load.
type blockingDraftStore struct {
	interfaces.DraftStore
	entered chan struct{}
	release chan struct{}
	first   atomic.Bool
}

func newBlockingDraftStore(inner interfaces.DraftStore) *blockingDraftStore {
	store := &blockingDraftStore{
		DraftStore: inner,
		entered:    make(chan struct{}),
		release:    make(chan struct{}),
	}
	store.first.Store(true)
	return store
}

func (b *blockingDraftStore) GetDraft(ctx context.Context, unitID string) (*interfaces.ContentUnit, error) {
	if b.first.CompareAndSwap(true, false) {
		close(b.entered)
		<-b.release
	}
	return b.DraftStore.GetDraft(ctx, unitID)
}

func pageUnit(id string, componentIDs ...string) *interfaces.ContentUnit {
	unit := &interfaces.ContentUnit{ID: id, Kind: interfaces.UnitKindPage}
	for _, compID := range componentIDs {
		unit.Components = append(unit.Components, &interfaces.Component{
			ID:         compID,
			SchemaName: "hero",
			Data:       map[string]interfaces.FieldEntry{},
		})
	}
	return unit
}

func TestLoadLocalDraftWins(t *testing.T) {
	store := drafts.NewMemoryStore()
	remote := newFakeRemote()
	remote.units["home"] = pageUnit("home", "hero-0")
	remote.hasDraft = true
	remote.remoteDraft = pageUnit("home", "hero-0", "hero-1")

	draft := pageUnit("home", "hero-0")
	draft.Components[0].Data["title"] = interfaces.FieldEntry{Type: interfaces.FieldTypeText, Value: "draft edit"}
	if err := store.SetDraft(context.Background(), "home", draft); err != nil {
		t.Fatalf("seed draft: %v", err)
	}

	r := New(store, remote)
	result, err := r.Load(context.Background(), "home", nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if result.Source != SourceLocalDraft {
		t.Fatalf("expected local draft source, got %s", result.Source)
	}
	if !result.HasChanges {
		t.Fatal("expected surviving draft to imply pending work")
	}
	if result.Unit.Component("hero-0").Data["title"].Value != "draft edit" {
		t.Fatal("expected draft content returned")
	}
}

func TestLoadRemoteDraftBeatsPublished(t *testing.T) {
	store := drafts.NewMemoryStore()
	remote := newFakeRemote()
	remote.units["home"] = pageUnit("home", "hero-0")
	remote.hasDraft = true
	remote.remoteDraft = pageUnit("home", "hero-0", "cta-0")

	r := New(store, remote)
	result, err := r.Load(context.Background(), "home", nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if result.Source != SourceRemoteDraft {
		t.Fatalf("expected remote draft source, got %s", result.Source)
	}
	if result.HasChanges {
		t.Fatal("expected remote draft not to imply local pending work")
	}
	if result.Unit.Component("cta-0") == nil {
		t.Fatal("expected remote draft contents")
	}
}

func TestLoadFallsBackToCachedCopy(t *testing.T) {
	store := drafts.NewMemoryStore()
	remote := newFakeRemote()
	remote.probeErr = errors.New("offline")

	cached := pageUnit("home", "hero-0")
	r := New(store, remote)
	result, err := r.Load(context.Background(), "home", cached)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if result.Source != SourceCache {
		t.Fatalf("expected cache source, got %s", result.Source)
	}
	if result.Unit.Component("hero-0") == nil {
		t.Fatal("expected cached contents")
	}
}

func TestLoadRemoteErrorDegradesToEmptyUnit(t *testing.T) {
	store := drafts.NewMemoryStore()
	remote := newFakeRemote()
	remote.loadErr = errors.New("boom")

	r := New(store, remote)
	result, err := r.Load(context.Background(), "home", nil)
	if err != nil {
		t.Fatalf("expected degraded load, got %v", err)
	}
	if result.Unit == nil || result.Unit.ID != "home" {
		t.Fatalf("expected empty working copy, got %+v", result.Unit)
	}
	if result.Unit.Kind != interfaces.UnitKindPage {
		t.Fatalf("expected page kind, got %s", result.Unit.Kind)
	}
}

func TestLoadSynthesizesManifestComponents(t *testing.T) {
	store := drafts.NewMemoryStore()
	remote := newFakeRemote()
	remote.units["home"] = pageUnit("home", "hero-0")

	manifest := func(unitID string) []interfaces.ManifestEntry {
		return []interfaces.ManifestEntry{
			{SchemaKey: "hero", Count: 2},
			{SchemaKey: "Call To Action", Count: 1},
		}
	}
	r := New(store, remote, WithManifest(manifest))

	result, err := r.Load(context.Background(), "home", nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	unit := result.Unit
	if unit.Component("hero-0") == nil || unit.Component("hero-1") == nil {
		t.Fatalf("expected both hero occurrences, got %+v", unit.Components)
	}
	if unit.Component("call-to-action-0") == nil {
		t.Fatal("expected normalized manifest key in synthesized id")
	}
	if len(unit.Components) != 3 {
		t.Fatalf("expected 3 components, got %d", len(unit.Components))
	}

	// A second load over the synthesized copy must not duplicate anything.
	again, err := r.Load(context.Background(), "home", unit)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(again.Unit.Components) != 3 {
		t.Fatalf("expected idempotent synthesis, got %d components", len(again.Unit.Components))
	}
}

func TestLoadEnsuresGlobalsComponent(t *testing.T) {
	store := drafts.NewMemoryStore()
	remote := newFakeRemote()
	remote.units["globals"] = &interfaces.ContentUnit{ID: "globals", Kind: interfaces.UnitKindGlobals}

	r := New(store, remote)
	result, err := r.Load(context.Background(), "globals", nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	comp := result.Unit.Component(interfaces.GlobalsComponentID)
	if comp == nil {
		t.Fatal("expected globals component synthesized")
	}
	if comp.SchemaName != interfaces.GlobalsComponentID {
		t.Fatalf("expected fixed schema name, got %q", comp.SchemaName)
	}
}

func TestLoadDuplicateInFlight(t *testing.T) {
	store := newBlockingDraftStore(drafts.NewMemoryStore())
	remote := newFakeRemote()
	remote.units["home"] = pageUnit("home", "hero-0")
	r := New(store, remote)

	type outcome struct {
		result *Result
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		result, err := r.Load(context.Background(), "home", nil)
		done <- outcome{result, err}
	}()
	<-store.entered

	if _, err := r.Load(context.Background(), "home", nil); !errors.Is(err, ErrLoadInFlight) {
		close(store.release)
		t.Fatalf("expected ErrLoadInFlight, got %v", err)
	}
	close(store.release)

	// The suppressed duplicate must not invalidate the running load; the
	// unit is still the active selection, so the original has to finish
	// with a working copy.
	select {
	case got := <-done:
		if got.err != nil {
			t.Fatalf("original load failed: %v", got.err)
		}
		if got.result.Unit.ID != "home" || got.result.Unit.Component("hero-0") == nil {
			t.Fatalf("expected home working copy, got %+v", got.result.Unit)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("first load never settled")
	}
}

func TestLoadSupersededBySwitchingUnits(t *testing.T) {
	store := newBlockingDraftStore(drafts.NewMemoryStore())
	remote := newFakeRemote()
	remote.units["second"] = pageUnit("second", "hero-0")
	r := New(store, remote)

	errs := make(chan error, 1)
	go func() {
		_, err := r.Load(context.Background(), "first", nil)
		errs <- err
	}()
	<-store.entered

	result, err := r.Load(context.Background(), "second", nil)
	if err != nil {
		t.Fatalf("second load: %v", err)
	}
	if result.Unit.ID != "second" {
		t.Fatalf("expected second unit, got %s", result.Unit.ID)
	}

	close(store.release)
	select {
	case err := <-errs:
		if !errors.Is(err, ErrLoadSuperseded) {
			t.Fatalf("expected ErrLoadSuperseded, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("abandoned load never settled")
	}
}

func TestDeselectDropsLateResults(t *testing.T) {
	store := newBlockingDraftStore(drafts.NewMemoryStore())
	remote := newFakeRemote()
	r := New(store, remote)

	errs := make(chan error, 1)
	go func() {
		_, err := r.Load(context.Background(), "home", nil)
		errs <- err
	}()
	<-store.entered

	r.Deselect("home")
	close(store.release)

	select {
	case err := <-errs:
		if !errors.Is(err, ErrLoadSuperseded) {
			t.Fatalf("expected ErrLoadSuperseded after deselect, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("load never settled")
	}
}
