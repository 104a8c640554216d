package editor

import (
	"context"
	"errors"
	"fmt"

	"github.com/oriolmontcreus/capsulo-sub000/internal/adapters/remotehttp"
	"github.com/oriolmontcreus/capsulo-sub000/internal/codec"
	"github.com/oriolmontcreus/capsulo-sub000/internal/drafts"
	editorsvc "github.com/oriolmontcreus/capsulo-sub000/internal/editor"
	"github.com/oriolmontcreus/capsulo-sub000/internal/logging"
	"github.com/oriolmontcreus/capsulo-sub000/internal/logging/gologger"
	"github.com/oriolmontcreus/capsulo-sub000/internal/runtimeconfig"
	"github.com/oriolmontcreus/capsulo-sub000/internal/schema"
	"github.com/oriolmontcreus/capsulo-sub000/pkg/interfaces"
)

// ErrRemoteStoreRequired is returned when no remote store is configured and no
// base URL is available to construct one.
var ErrRemoteStoreRequired = errors.New("editor: remote store is required")

// ErrUnitNotFound is returned when neither a local draft nor a remote copy
// exists for a unit.
var ErrUnitNotFound = errors.New("editor: unit not found")

// EditorService exports the editing service contract for consumers of the
// editor package.
type EditorService = editorsvc.Service

// SchemaRegistry exports the schema registry contract.
type SchemaRegistry = interfaces.SchemaRegistry

// DraftStore exports the local draft store contract.
type DraftStore = interfaces.DraftStore

// RemoteStore exports the versioned content store contract.
type RemoteStore = interfaces.RemoteStore

// ContentUnit exports the content unit DTO.
type ContentUnit = interfaces.ContentUnit

// Component exports the component DTO.
type Component = interfaces.Component

// FieldEntry exports the field entry DTO.
type FieldEntry = interfaces.FieldEntry

// FieldDef exports the schema field definition DTO.
type FieldDef = interfaces.FieldDef

// ValidationError exports the per-field validation failure DTO.
type ValidationError = interfaces.ValidationError

// ManifestEntry exports the expected-component manifest entry.
type ManifestEntry = interfaces.ManifestEntry

// PublishResult exports the per-unit publish outcome report.
type PublishResult = editorsvc.PublishResult

// UnitFailure exports a failed publish entry.
type UnitFailure = editorsvc.UnitFailure

// Module is the top level runtime façade wiring stores, schemas and the
// editing service from a single configuration value.
type Module struct {
	cfg      Config
	registry *schema.Registry
	drafts   interfaces.DraftStore
	remote   interfaces.RemoteStore
	provider interfaces.LoggerProvider
	service   editorsvc.Service
	manifest  func(unitID string) []ManifestEntry
	previewer *codec.Previewer

	bunStore *drafts.BunStore
}

// Option overrides a wired dependency before the service is constructed.
type Option func(*Module)

// WithDraftStore replaces the storage-driver selected draft store.
func WithDraftStore(store interfaces.DraftStore) Option {
	return func(m *Module) {
		if store != nil {
			m.drafts = store
		}
	}
}

// WithRemoteStore replaces the HTTP remote store.
func WithRemoteStore(store interfaces.RemoteStore) Option {
	return func(m *Module) {
		if store != nil {
			m.remote = store
		}
	}
}

// WithLoggerProvider replaces the configured logger provider.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(m *Module) {
		if provider != nil {
			m.provider = provider
		}
	}
}

// New constructs the editing runtime from configuration.
func New(cfg Config, opts ...Option) (*Module, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	m := &Module{cfg: cfg, registry: schema.NewRegistry(), previewer: codec.NewPreviewer()}

	for _, opt := range opts {
		opt(m)
	}

	if m.provider == nil {
		provider, err := buildLoggerProvider(cfg.Logging)
		if err != nil {
			return nil, err
		}
		m.provider = provider
	}

	if m.drafts == nil {
		store, err := buildDraftStore(cfg.Storage, m)
		if err != nil {
			return nil, err
		}
		m.drafts = store
	}

	if m.remote == nil {
		if cfg.Remote.BaseURL == "" {
			return nil, ErrRemoteStoreRequired
		}
		remoteOpts := []remotehttp.Option{}
		if cfg.Remote.Token != "" {
			remoteOpts = append(remoteOpts, remotehttp.WithToken(cfg.Remote.Token))
		}
		client, err := remotehttp.NewClient(cfg.Remote.BaseURL, remoteOpts...)
		if err != nil {
			return nil, err
		}
		m.remote = client
	}

	svcCfg := editorsvc.Config{
		DefaultLocale: cfg.I18N.DefaultLocale,
		Locales:       cfg.I18N.Locales,
		GlobalsUnitID: cfg.I18N.GlobalsUnitID,
	}
	if cfg.Autosave.Enabled {
		svcCfg.AutosaveInterval = cfg.Autosave.QuietPeriod
	} else {
		svcCfg.AutosaveDisabled = true
	}

	m.service = editorsvc.NewService(svcCfg, m.drafts, m.remote, m.registry,
		editorsvc.WithLogger(m.provider),
		editorsvc.WithManifest(m.manifestFor),
	)

	return m, nil
}

// Editor returns the configured editing service.
func (m *Module) Editor() EditorService {
	if m == nil {
		return nil
	}
	return m.service
}

// Schemas returns the schema registry used to declare component field sets.
func (m *Module) Schemas() *schema.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Drafts returns the local draft store.
func (m *Module) Drafts() DraftStore {
	if m == nil {
		return nil
	}
	return m.drafts
}

// Remote returns the versioned content store.
func (m *Module) Remote() RemoteStore {
	if m == nil {
		return nil
	}
	return m.remote
}

// LoggerProvider returns the configured logger provider.
func (m *Module) LoggerProvider() interfaces.LoggerProvider {
	if m == nil {
		return nil
	}
	return m.provider
}

// ExportUnit renders a unit's current persisted shape as a frontmatter
// document: a surviving local draft when present, else the remote copy.
// notes becomes the markdown body kept next to the unit in git-backed stores.
func (m *Module) ExportUnit(ctx context.Context, unitID string, notes []byte) ([]byte, error) {
	unit, err := m.drafts.GetDraft(ctx, unitID)
	if err != nil {
		return nil, err
	}
	if unit == nil {
		unit, err = m.remote.LoadUnit(ctx, unitID)
		if err != nil {
			return nil, err
		}
	}
	if unit == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnitNotFound, unitID)
	}
	return codec.EncodeUnitDocument(&codec.UnitDocument{Unit: unit, Body: notes})
}

// ImportUnit parses a frontmatter document and installs it as the unit's
// local draft, so the next selection of that unit loads the imported shape.
func (m *Module) ImportUnit(ctx context.Context, source []byte) (*ContentUnit, error) {
	doc, err := codec.ParseUnitDocument(source)
	if err != nil {
		return nil, err
	}
	if err := m.drafts.SetDraft(ctx, doc.Unit.ID, doc.Unit); err != nil {
		return nil, err
	}
	return doc.Unit, nil
}

// RenderFieldPreview renders a markdown-typed field entry to HTML at the
// requested locale, falling back to the default locale for untranslated
// content.
func (m *Module) RenderFieldPreview(entry FieldEntry, locale string) ([]byte, error) {
	return m.previewer.RenderField(entry, locale, m.cfg.I18N.DefaultLocale, m.cfg.I18N.Locales)
}

// SetManifest installs the expected-component manifest source for a unit.
// Manifests drive component synthesis during reconciliation.
func (m *Module) SetManifest(fn func(unitID string) []ManifestEntry) {
	m.manifest = fn
}

func (m *Module) manifestFor(unitID string) []interfaces.ManifestEntry {
	if m == nil || m.manifest == nil {
		return nil
	}
	return m.manifest(unitID)
}

func buildLoggerProvider(cfg runtimeconfig.LoggingConfig) (interfaces.LoggerProvider, error) {
	switch cfg.Provider {
	case runtimeconfig.LoggingProviderGoLogger:
		return gologger.NewProvider(gologger.Config{
			Level:     cfg.Level,
			Format:    cfg.Format,
			AddSource: cfg.AddSource,
		})
	default:
		return noopProvider{}, nil
	}
}

func buildDraftStore(cfg runtimeconfig.StorageConfig, m *Module) (interfaces.DraftStore, error) {
	switch cfg.Driver {
	case runtimeconfig.StorageDriverSQLite:
		db, err := drafts.OpenSQLite(cfg.DSN)
		if err != nil {
			return nil, err
		}
		store := drafts.NewBunStore(db)
		if err := store.EnsureSchema(context.Background()); err != nil {
			return nil, err
		}
		m.bunStore = store
		return store, nil
	default:
		return drafts.NewMemoryStore(), nil
	}
}

type noopProvider struct{}

func (noopProvider) GetLogger(string) interfaces.Logger { return logging.NoOp() }
