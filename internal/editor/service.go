package editor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oriolmontcreus/capsulo-sub000/internal/autosave"
	"github.com/oriolmontcreus/capsulo-sub000/internal/changes"
	"github.com/oriolmontcreus/capsulo-sub000/internal/logging"
	"github.com/oriolmontcreus/capsulo-sub000/internal/reconcile"
	"github.com/oriolmontcreus/capsulo-sub000/internal/session"
	"github.com/oriolmontcreus/capsulo-sub000/internal/translation"
	"github.com/oriolmontcreus/capsulo-sub000/internal/validate"
	"github.com/oriolmontcreus/capsulo-sub000/pkg/interfaces"
)

// Service is the editing surface the UI layer consumes: reconciled loads,
// buffered field updates, change detection, and the explicit save/publish
// step.
type Service interface {
	LoadUnit(ctx context.Context, unitID string) (*interfaces.ContentUnit, error)
	UpdateField(ctx context.Context, unitID, componentID, fieldName string, value any, locale string) error
	RenameComponent(ctx context.Context, unitID, componentID, alias string) error
	DeleteComponent(ctx context.Context, unitID, componentID string) error
	RestoreComponent(ctx context.Context, unitID, componentID string) error
	HasChanges(unitID string) bool
	IsSaving(unitID string) bool
	Save(ctx context.Context, unitID, message string) ([]interfaces.ValidationError, error)
	Publish(ctx context.Context, message string) (*PublishResult, error)
	Deselect(ctx context.Context, unitID string) error
}

var (
	ErrUnitIDRequired      = errors.New("editor: unit id required")
	ErrComponentIDRequired = errors.New("editor: component id required")
	ErrFieldNameRequired   = errors.New("editor: field name required")
	ErrUnitNotLoaded       = errors.New("editor: unit not loaded")
	ErrUnknownComponent    = errors.New("editor: unknown component")
	ErrGlobalsDeletion     = errors.New("editor: globals components cannot be deleted")
	ErrSaveInProgress      = errors.New("editor: save already in progress")
	ErrUnknownLocale       = errors.New("editor: locale not configured")
)

// Config carries the locale setup and tuning knobs for the engine.
type Config struct {
	DefaultLocale    string
	Locales          []string
	GlobalsUnitID    string
	AutosaveInterval time.Duration
	AutosaveDisabled bool
}

// Option configures the service.
type Option func(*service)

// WithLogger wires the orchestration logger provider.
func WithLogger(provider interfaces.LoggerProvider) Option {
	return func(s *service) {
		s.logger = logging.PublishLogger(provider)
		s.reconcileLogger = logging.ReconcileLogger(provider)
		s.autosaveLogger = logging.AutosaveLogger(provider)
	}
}

// WithAssetPipeline wires the binary-asset resolution step run before saves.
func WithAssetPipeline(pipeline interfaces.AssetPipeline) Option {
	return func(s *service) {
		if pipeline != nil {
			s.assets = pipeline
		}
	}
}

// WithManifest wires the declared component manifest.
func WithManifest(fn reconcile.ManifestFunc) Option {
	return func(s *service) {
		s.manifest = fn
	}
}

type service struct {
	cfg      Config
	drafts   interfaces.DraftStore
	remote   interfaces.RemoteStore
	registry interfaces.SchemaRegistry
	assets   interfaces.AssetPipeline
	manifest reconcile.ManifestFunc

	logger          interfaces.Logger
	reconcileLogger interfaces.Logger
	autosaveLogger  interfaces.Logger

	sessions   *session.Manager
	merger     *translation.Merger
	detector   *changes.Detector
	resolver   *validate.Resolver
	reconciler *reconcile.Reconciler
	scheduler  *autosave.Scheduler
}

// NewService wires the engine over the given stores and schema registry.
func NewService(cfg Config, drafts interfaces.DraftStore, remote interfaces.RemoteStore, registry interfaces.SchemaRegistry, opts ...Option) Service {
	if cfg.DefaultLocale == "" {
		cfg.DefaultLocale = "en"
	}
	if len(cfg.Locales) == 0 {
		cfg.Locales = []string{cfg.DefaultLocale}
	}
	if cfg.GlobalsUnitID == "" {
		cfg.GlobalsUnitID = "globals"
	}

	s := &service{
		cfg:             cfg,
		drafts:          drafts,
		remote:          remote,
		registry:        registry,
		assets:          interfaces.NoOpAssetPipeline{},
		logger:          logging.NoOp(),
		reconcileLogger: logging.NoOp(),
		autosaveLogger:  logging.NoOp(),
		sessions:        session.NewManager(),
		merger:          translation.NewMerger(cfg.DefaultLocale, cfg.Locales),
		detector:        changes.NewDetector(cfg.DefaultLocale, cfg.Locales),
		resolver:        validate.NewResolver(registry, cfg.DefaultLocale, cfg.Locales),
	}
	for _, opt := range opts {
		opt(s)
	}

	reconcileOpts := []reconcile.Option{
		reconcile.WithLogger(s.reconcileLogger),
		reconcile.WithGlobalsUnitID(cfg.GlobalsUnitID),
	}
	if s.manifest != nil {
		reconcileOpts = append(reconcileOpts, reconcile.WithManifest(s.manifest))
	}
	s.reconciler = reconcile.New(drafts, remote, reconcileOpts...)

	autosaveOpts := []autosave.Option{autosave.WithLogger(s.autosaveLogger)}
	if cfg.AutosaveInterval > 0 {
		autosaveOpts = append(autosaveOpts, autosave.WithQuietPeriod(cfg.AutosaveInterval))
	}
	s.scheduler = autosave.New(drafts, s.draftSnapshot, autosaveOpts...)

	return s
}

// LoadUnit reconciles and installs the working copy for a unit selection.
// A load superseded by a newer selection returns without mutating state.
func (s *service) LoadUnit(ctx context.Context, unitID string) (*interfaces.ContentUnit, error) {
	if strings.TrimSpace(unitID) == "" {
		return nil, ErrUnitIDRequired
	}

	sess := s.sessions.GetOrCreate(unitID)
	sess.SetLoading(true)

	result, err := s.reconciler.Load(ctx, unitID, sess.Unit())
	if err != nil {
		sess.SetLoading(false)
		return nil, err
	}

	s.scheduler.Cancel(unitID)
	sess.SetUnit(result.Unit)
	sess.ClearEdits()
	sess.ForceChanged(result.HasChanges)
	sess.SetLoading(false)

	logging.WithUnitContext(s.reconcileLogger, unitID, "", "load").
		Debug("editor.unit_loaded", "source", string(result.Source))
	return sess.Unit(), nil
}

// Deselect releases a unit's session when the user navigates away. Pending
// work is flushed into the local draft store first, so the next load
// reconstructs it; a unit mid-save keeps its session until the save settles.
func (s *service) Deselect(ctx context.Context, unitID string) error {
	if strings.TrimSpace(unitID) == "" {
		return ErrUnitIDRequired
	}

	s.reconciler.Deselect(unitID)

	sess := s.sessions.Get(unitID)
	if sess == nil {
		return nil
	}
	if sess.IsSaving() {
		return nil
	}

	if s.detector.HasChanges(sess) {
		if err := s.scheduler.Flush(ctx, unitID); err != nil {
			// Keep the session; dropping it now would lose the edits the
			// draft store failed to take.
			return fmt.Errorf("editor: deselect %s: %w", unitID, err)
		}
	} else {
		s.scheduler.Cancel(unitID)
	}

	s.sessions.Remove(unitID)
	return nil
}

// UpdateField records an edit into the unit's buffers and re-arms autosave.
// An empty locale or the default locale targets the form buffer; any other
// configured locale targets the translation buffer.
func (s *service) UpdateField(_ context.Context, unitID, componentID, fieldName string, value any, locale string) error {
	if strings.TrimSpace(unitID) == "" {
		return ErrUnitIDRequired
	}
	if strings.TrimSpace(componentID) == "" {
		return ErrComponentIDRequired
	}
	if strings.TrimSpace(fieldName) == "" {
		return ErrFieldNameRequired
	}

	sess := s.sessions.Get(unitID)
	if sess == nil || sess.Unit() == nil {
		return ErrUnitNotLoaded
	}

	if locale == "" || locale == s.cfg.DefaultLocale {
		sess.SetFormValue(componentID, fieldName, value)
	} else {
		if !s.localeConfigured(locale) {
			return ErrUnknownLocale
		}
		sess.SetTranslationValue(locale, componentID, fieldName, value)
	}

	s.armAutosave(unitID)
	return nil
}

// RenameComponent sets a component's user-facing alias.
func (s *service) RenameComponent(_ context.Context, unitID, componentID, alias string) error {
	sess := s.sessions.Get(unitID)
	if sess == nil || sess.Unit() == nil {
		return ErrUnitNotLoaded
	}
	if !sess.SetAlias(componentID, alias) {
		return ErrUnknownComponent
	}
	s.armAutosave(unitID)
	return nil
}

// DeleteComponent soft-deletes a page component for the session; globals
// components cannot be deleted.
func (s *service) DeleteComponent(_ context.Context, unitID, componentID string) error {
	sess := s.sessions.Get(unitID)
	if sess == nil {
		return ErrUnitNotLoaded
	}
	unit := sess.Unit()
	if unit == nil {
		return ErrUnitNotLoaded
	}
	if unit.Kind == interfaces.UnitKindGlobals {
		return ErrGlobalsDeletion
	}
	if unit.Component(componentID) == nil {
		return ErrUnknownComponent
	}
	sess.MarkDeleted(componentID)
	s.armAutosave(unitID)
	return nil
}

// RestoreComponent reverts a soft delete.
func (s *service) RestoreComponent(_ context.Context, unitID, componentID string) error {
	sess := s.sessions.Get(unitID)
	if sess == nil {
		return ErrUnitNotLoaded
	}
	sess.UnmarkDeleted(componentID)
	s.armAutosave(unitID)
	return nil
}

// HasChanges reports whether the unit carries unsaved work.
func (s *service) HasChanges(unitID string) bool {
	return s.detector.HasChanges(s.sessions.Get(unitID))
}

// IsSaving reports whether a save is in flight for the unit.
func (s *service) IsSaving(unitID string) bool {
	sess := s.sessions.Get(unitID)
	return sess != nil && sess.IsSaving()
}

// armAutosave re-arms the unit's quiet-period timer unless autosave is off.
func (s *service) armAutosave(unitID string) {
	if s.cfg.AutosaveDisabled {
		return
	}
	s.scheduler.Touch(unitID)
}

func (s *service) localeConfigured(locale string) bool {
	for _, code := range s.cfg.Locales {
		if code == locale {
			return true
		}
	}
	return false
}

// draftSnapshot is the autosave scheduler's view into the engine: the save
// projection of every non-deleted component, or ok=false while the unit is
// loading or unchanged.
func (s *service) draftSnapshot(_ context.Context, unitID string) (*interfaces.ContentUnit, bool) {
	sess := s.sessions.Get(unitID)
	if sess == nil || sess.IsLoading() {
		return nil, false
	}
	if !s.detector.HasChanges(sess) {
		return nil, false
	}
	unit := sess.Unit()
	if unit == nil {
		return nil, false
	}
	return s.projectUnit(sess, unit, nil), true
}

// projectUnit builds the merged shape of a unit. formOverrides, when
// non-nil, replaces the session's form buffer (the asset pipeline's output
// feeds through here on save).
func (s *service) projectUnit(sess *session.Session, unit *interfaces.ContentUnit, formOverrides map[string]map[string]any) *interfaces.ContentUnit {
	out := &interfaces.ContentUnit{ID: unit.ID, Kind: unit.Kind}
	for _, comp := range unit.Components {
		if comp == nil || sess.IsDeleted(comp.ID) {
			continue
		}
		formEdits := sess.FormEdits(comp.ID)
		if formOverrides != nil {
			formEdits = formOverrides[comp.ID]
		}
		merged := s.merger.SaveComponent(comp, formEdits, sess.TranslationEdits(comp.ID), s.declaredFields(comp.SchemaName))
		normalizeAssetFields(merged)
		out.Components = append(out.Components, merged)
	}
	return out
}

func (s *service) declaredFields(schemaName string) []interfaces.FieldDef {
	if s.registry == nil {
		return nil
	}
	fields, err := s.registry.GetFields(schemaName)
	if err != nil {
		return nil
	}
	return s.registry.Flatten(fields)
}
