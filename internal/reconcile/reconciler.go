package reconcile

import (
	"context"
	"errors"
	"sync"

	"github.com/oriolmontcreus/capsulo-sub000/internal/identity"
	"github.com/oriolmontcreus/capsulo-sub000/internal/logging"
	"github.com/oriolmontcreus/capsulo-sub000/pkg/interfaces"
)

// Source names where a reconciled working copy came from.
type Source string

const (
	// SourceLocalDraft means a surviving local draft won unconditionally.
	SourceLocalDraft Source = "local_draft"
	// SourceRemoteDraft means the remote store reported an unpublished draft.
	SourceRemoteDraft Source = "remote_draft"
	// SourceCache means the cached/initial copy was used.
	SourceCache Source = "cache"
)

var (
	// ErrLoadInFlight guards against duplicate concurrent loads of one unit
	// (rapid re-selection, hover preload, prop changes).
	ErrLoadInFlight = errors.New("reconcile: unit load already in flight")
	// ErrLoadSuperseded reports that the selection moved on while a load was
	// suspended; the abandoned load must not mutate state.
	ErrLoadSuperseded = errors.New("reconcile: unit selection changed during load")
)

// ManifestFunc declares the expected component occurrences for a unit.
type ManifestFunc func(unitID string) []interfaces.ManifestEntry

// Result is the outcome of one reconciliation.
type Result struct {
	Unit       *interfaces.ContentUnit
	Source     Source
	HasChanges bool
}

// Reconciler decides, per unit selection, which copy of the data is
// authoritative: local draft, remote unpublished draft, or the cached
// initial copy. Loads are cancellable: switching units abandons in-flight
// work without mutating state for the abandoned unit.
type Reconciler struct {
	drafts   interfaces.DraftStore
	remote   interfaces.RemoteStore
	manifest ManifestFunc
	logger   interfaces.Logger

	globalsUnitID string

	mu          sync.Mutex
	inflight    map[string]uint64
	activeUnit  string
	activeToken uint64
	lastToken   uint64
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithManifest wires the declared component manifest used to synthesize
// missing components.
func WithManifest(fn ManifestFunc) Option {
	return func(r *Reconciler) {
		if fn != nil {
			r.manifest = fn
		}
	}
}

// WithLogger wires the load-path logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(r *Reconciler) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithGlobalsUnitID names the unit id reserved for the global-variable set.
func WithGlobalsUnitID(unitID string) Option {
	return func(r *Reconciler) {
		if unitID != "" {
			r.globalsUnitID = unitID
		}
	}
}

// New constructs a reconciler over the given draft and remote stores.
func New(drafts interfaces.DraftStore, remote interfaces.RemoteStore, opts ...Option) *Reconciler {
	r := &Reconciler{
		drafts:        drafts,
		remote:        remote,
		manifest:      func(string) []interfaces.ManifestEntry { return nil },
		logger:        logging.NoOp(),
		globalsUnitID: "globals",
		inflight:      make(map[string]uint64),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Load reconciles the working copy for a freshly selected unit. cached is
// the caller's cached/initial copy; pass nil to have the published copy
// fetched from the remote store. Load marks the unit as the active
// selection, so a later Load for another unit supersedes this one at its
// next suspension point.
func (r *Reconciler) Load(ctx context.Context, unitID string, cached *interfaces.ContentUnit) (*Result, error) {
	token, ok := r.begin(unitID)
	if !ok {
		return nil, ErrLoadInFlight
	}
	defer r.endLoad(unitID)

	logger := logging.WithUnitContext(r.logger, unitID, "", "reconcile.load")

	// Step 1: a surviving local draft wins unconditionally and always
	// implies pending work.
	draft, err := r.drafts.GetDraft(ctx, unitID)
	if err != nil {
		logger.Warn("reconcile.draft_read_failed", "error", err)
	}
	if !r.isActive(unitID, token) {
		return nil, ErrLoadSuperseded
	}
	if draft != nil {
		logger.Debug("reconcile.local_draft_wins")
		return &Result{Unit: draft, Source: SourceLocalDraft, HasChanges: true}, nil
	}

	base := cached.Clone()
	if base == nil {
		base, err = r.fetchPublished(ctx, unitID, logger)
		if err != nil {
			return nil, err
		}
		if !r.isActive(unitID, token) {
			return nil, ErrLoadSuperseded
		}
	}

	// Step 2: manifest synthesis keeps persisted data in lockstep with the
	// declared component occurrences.
	r.syncManifest(base)

	// Step 3: an unpublished remote draft replaces the cached copy. Any
	// fetch error falls back to the cached copy; the unit never sticks in a
	// loading state.
	remoteDraft, ok := r.fetchRemoteDraft(ctx, unitID, logger)
	if !r.isActive(unitID, token) {
		return nil, ErrLoadSuperseded
	}
	if ok && remoteDraft != nil {
		r.syncManifest(remoteDraft)
		return &Result{Unit: remoteDraft, Source: SourceRemoteDraft}, nil
	}

	return &Result{Unit: base, Source: SourceCache}, nil
}

// Deselect clears the active selection so late results for the unit are
// dropped.
func (r *Reconciler) Deselect(unitID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.activeUnit == unitID {
		r.activeUnit = ""
		r.activeToken = 0
	}
}

func (r *Reconciler) fetchPublished(ctx context.Context, unitID string, logger interfaces.Logger) (*interfaces.ContentUnit, error) {
	unit, err := r.remote.LoadUnit(ctx, unitID)
	if err != nil {
		// A unit is created implicitly when first selected; fetch errors
		// degrade to an empty working copy rather than a stuck load.
		logger.Warn("reconcile.remote_load_failed", "error", err)
		return r.emptyUnit(unitID), nil
	}
	if unit == nil {
		return r.emptyUnit(unitID), nil
	}
	return unit, nil
}

func (r *Reconciler) fetchRemoteDraft(ctx context.Context, unitID string, logger interfaces.Logger) (*interfaces.ContentUnit, bool) {
	has, err := r.remote.HasUnpublishedDraft(ctx)
	if err != nil {
		logger.Warn("reconcile.remote_draft_probe_failed", "error", err)
		return nil, false
	}
	if !has {
		return nil, false
	}
	draft, err := r.remote.LoadRemoteDraft(ctx, unitID)
	if err != nil {
		logger.Warn("reconcile.remote_draft_load_failed", "error", err)
		return nil, false
	}
	return draft, draft != nil
}

// syncManifest ensures components with deterministic ids schemaKey-0 ..
// schemaKey-(count-1) exist, synthesizing empty components for missing
// occurrences. Re-running with the same manifest yields identical ids and
// no duplicates.
func (r *Reconciler) syncManifest(unit *interfaces.ContentUnit) {
	if unit == nil || unit.Kind == interfaces.UnitKindGlobals {
		r.syncGlobals(unit)
		return
	}
	entries := r.manifest(unit.ID)
	if len(entries) == 0 {
		return
	}
	existing := make(map[string]struct{}, len(unit.Components))
	for _, comp := range unit.Components {
		if comp != nil {
			existing[comp.ID] = struct{}{}
		}
	}
	for _, entry := range entries {
		for i := 0; i < entry.Count; i++ {
			id := identity.ComponentID(entry.SchemaKey, i)
			if id == "" {
				continue
			}
			if _, ok := existing[id]; ok {
				continue
			}
			existing[id] = struct{}{}
			unit.Components = append(unit.Components, &interfaces.Component{
				ID:         id,
				SchemaName: entry.SchemaKey,
				Data:       map[string]interfaces.FieldEntry{},
			})
		}
	}
}

func (r *Reconciler) syncGlobals(unit *interfaces.ContentUnit) {
	if unit == nil {
		return
	}
	if unit.Component(interfaces.GlobalsComponentID) != nil {
		return
	}
	unit.Components = append(unit.Components, &interfaces.Component{
		ID:         interfaces.GlobalsComponentID,
		SchemaName: interfaces.GlobalsComponentID,
		Data:       map[string]interfaces.FieldEntry{},
	})
}

func (r *Reconciler) emptyUnit(unitID string) *interfaces.ContentUnit {
	kind := interfaces.UnitKindPage
	if unitID == r.globalsUnitID {
		kind = interfaces.UnitKindGlobals
	}
	return &interfaces.ContentUnit{ID: unitID, Kind: kind}
}

// begin marks the unit as the active selection and hands out the token the
// new load must present at each suspension point. Re-selecting a unit whose
// load is still in flight revalidates the running load's token instead of
// starting a duplicate.
func (r *Reconciler) begin(unitID string) (uint64, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if token, loading := r.inflight[unitID]; loading {
		r.activeUnit = unitID
		r.activeToken = token
		return 0, false
	}
	r.lastToken++
	r.inflight[unitID] = r.lastToken
	r.activeUnit = unitID
	r.activeToken = r.lastToken
	return r.lastToken, true
}

func (r *Reconciler) isActive(unitID string, token uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.activeUnit == unitID && r.activeToken == token
}

func (r *Reconciler) endLoad(unitID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.inflight, unitID)
}
