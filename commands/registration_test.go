package commands

import (
	"context"
	"testing"

	editor "github.com/oriolmontcreus/capsulo-sub000"
	unitscmd "github.com/oriolmontcreus/capsulo-sub000/internal/commands/units"
	"github.com/oriolmontcreus/capsulo-sub000/pkg/interfaces"
)

type recordingRegistry struct {
	handlers []any
}

func (r *recordingRegistry) RegisterCommand(handler any) error {
	r.handlers = append(r.handlers, handler)
	return nil
}

type recordingSubscription struct {
	unsubscribed bool
}

func (s *recordingSubscription) Unsubscribe() { s.unsubscribed = true }

type recordingDispatcher struct {
	subscriptions []*recordingSubscription
}

func (d *recordingDispatcher) RegisterCommand(any) (CommandSubscription, error) {
	sub := &recordingSubscription{}
	d.subscriptions = append(d.subscriptions, sub)
	return sub, nil
}

type stubRemote struct {
	units map[string]*interfaces.ContentUnit
	saves int
}

func newStubRemote() *stubRemote {
	return &stubRemote{units: make(map[string]*interfaces.ContentUnit)}
}

func (s *stubRemote) LoadUnit(_ context.Context, unitID string) (*interfaces.ContentUnit, error) {
	return s.units[unitID].Clone(), nil
}

func (s *stubRemote) SaveUnit(_ context.Context, unitID string, unit *interfaces.ContentUnit, _ string) error {
	s.units[unitID] = unit.Clone()
	s.saves++
	return nil
}

func (s *stubRemote) HasUnpublishedDraft(context.Context) (bool, error) { return false, nil }

func (s *stubRemote) LoadRemoteDraft(context.Context, string) (*interfaces.ContentUnit, error) {
	return nil, nil
}

func newTestModule(t *testing.T, remote *stubRemote) *editor.Module {
	t.Helper()

	cfg := editor.DefaultConfig()
	cfg.I18N.Locales = []string{"en", "es"}

	module, err := editor.New(cfg, editor.WithRemoteStore(remote))
	if err != nil {
		t.Fatalf("new module: %v", err)
	}
	err = module.Schemas().Register("hero", []editor.FieldDef{
		{Name: "title", Type: interfaces.FieldTypeText, Required: true, Translatable: true},
	})
	if err != nil {
		t.Fatalf("register schema: %v", err)
	}
	module.SetManifest(func(string) []editor.ManifestEntry {
		return []editor.ManifestEntry{{SchemaKey: "hero", Count: 1}}
	})
	return module
}

func TestRegisterModuleCommandsBuildsHandlers(t *testing.T) {
	registry := &recordingRegistry{}
	dispatcher := &recordingDispatcher{}

	result, err := RegisterModuleCommands(newTestModule(t, newStubRemote()), RegistrationOptions{
		Registry:   registry,
		Dispatcher: dispatcher,
	})
	if err != nil {
		t.Fatalf("register commands: %v", err)
	}

	if len(result.Handlers) != 2 {
		t.Fatalf("expected save and publish handlers, got %d", len(result.Handlers))
	}
	if len(registry.handlers) != len(result.Handlers) {
		t.Fatalf("expected registry to record all handlers, got %d of %d", len(registry.handlers), len(result.Handlers))
	}
	if len(dispatcher.subscriptions) != 2 {
		t.Fatalf("expected dispatcher subscriptions when dispatcher provided, got %d", len(dispatcher.subscriptions))
	}
}

func TestRegisterModuleCommandsWithoutRegistrars(t *testing.T) {
	result, err := RegisterModuleCommands(newTestModule(t, newStubRemote()), RegistrationOptions{})
	if err != nil {
		t.Fatalf("register commands: %v", err)
	}
	if len(result.Handlers) != 2 {
		t.Fatalf("expected handlers built without registrars, got %d", len(result.Handlers))
	}
	if len(result.Subscriptions) != 0 {
		t.Fatalf("expected no dispatcher subscriptions without dispatcher, got %d", len(result.Subscriptions))
	}
}

func TestRegisterModuleCommandsNilModule(t *testing.T) {
	result, err := RegisterModuleCommands(nil, RegistrationOptions{})
	if err != nil {
		t.Fatalf("register commands: %v", err)
	}
	if len(result.Handlers) != 0 {
		t.Fatalf("expected no handlers for nil module, got %d", len(result.Handlers))
	}
}

func TestSaveHandlerCommitsThroughModule(t *testing.T) {
	remote := newStubRemote()
	module := newTestModule(t, remote)
	ctx := context.Background()

	svc := module.Editor()
	if _, err := svc.LoadUnit(ctx, "home"); err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := svc.UpdateField(ctx, "home", "hero-0", "title", "Hello", ""); err != nil {
		t.Fatalf("update: %v", err)
	}

	result, err := RegisterModuleCommands(module, RegistrationOptions{})
	if err != nil {
		t.Fatalf("register commands: %v", err)
	}
	save, ok := result.Handlers[0].(*unitscmd.SaveUnitHandler)
	if !ok {
		t.Fatalf("expected save handler first, got %T", result.Handlers[0])
	}

	if err := save.Execute(ctx, unitscmd.SaveUnitCommand{UnitID: "home", Message: "initial copy"}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if remote.saves != 1 {
		t.Fatalf("expected one remote commit, got %d", remote.saves)
	}
	saved, _ := remote.LoadUnit(ctx, "home")
	if saved.Component("hero-0").Data["title"].Value != "Hello" {
		t.Fatal("expected committed content readable through the remote store")
	}
}

func TestSaveHandlerForwardsIssues(t *testing.T) {
	module := newTestModule(t, newStubRemote())
	ctx := context.Background()

	svc := module.Editor()
	if _, err := svc.LoadUnit(ctx, "home"); err != nil {
		t.Fatalf("load: %v", err)
	}

	var gotUnit string
	var gotIssues []editor.ValidationError
	result, err := RegisterModuleCommands(module, RegistrationOptions{
		IssueSink: func(unitID string, issues []editor.ValidationError) {
			gotUnit = unitID
			gotIssues = issues
		},
	})
	if err != nil {
		t.Fatalf("register commands: %v", err)
	}
	save := result.Handlers[0].(*unitscmd.SaveUnitHandler)

	// The required title is still empty, so the save is rejected by field
	// validation rather than an execution error.
	if err := save.Execute(ctx, unitscmd.SaveUnitCommand{UnitID: "home"}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if gotUnit != "home" || len(gotIssues) == 0 {
		t.Fatalf("expected issue sink invoked, got unit=%q issues=%v", gotUnit, gotIssues)
	}
}
