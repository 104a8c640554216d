package session

import (
	"sync"

	"github.com/oriolmontcreus/capsulo-sub000/pkg/interfaces"
)

// Session holds the ephemeral edit state of one content unit: the working
// copy produced by reconciliation, the in-memory edit buffers, deletion
// marks, and the load/save flags the orchestrator consults. All access is
// guarded so cooperative tasks (load, autosave, save) can share it.
type Session struct {
	unitID string

	mu               sync.RWMutex
	unit             *interfaces.ContentUnit
	formEdits        map[string]map[string]any            // componentID -> field -> value
	translationEdits map[string]map[string]map[string]any // locale -> componentID -> field -> value
	deleted          map[string]struct{}
	loading          bool
	saving           bool
	forcedChanges    bool
}

func newSession(unitID string) *Session {
	return &Session{
		unitID:           unitID,
		formEdits:        make(map[string]map[string]any),
		translationEdits: make(map[string]map[string]map[string]any),
		deleted:          make(map[string]struct{}),
	}
}

// UnitID returns the id of the unit this session tracks.
func (s *Session) UnitID() string { return s.unitID }

// SetUnit replaces the working copy.
func (s *Session) SetUnit(unit *interfaces.ContentUnit) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unit = unit.Clone()
}

// Unit returns a deep copy of the working copy, or nil before the first
// load completes.
func (s *Session) Unit() *interfaces.ContentUnit {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.unit.Clone()
}

// SetFormValue records a default-locale edit for a component field.
func (s *Session) SetFormValue(componentID, fieldName string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fields, ok := s.formEdits[componentID]
	if !ok {
		fields = make(map[string]any)
		s.formEdits[componentID] = fields
	}
	fields[fieldName] = interfaces.CloneValue(value)
}

// SetTranslationValue records a non-default-locale edit. An explicit empty
// string is a real edit: it clears the translation on save.
func (s *Session) SetTranslationValue(locale, componentID, fieldName string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	byComponent, ok := s.translationEdits[locale]
	if !ok {
		byComponent = make(map[string]map[string]any)
		s.translationEdits[locale] = byComponent
	}
	fields, ok := byComponent[componentID]
	if !ok {
		fields = make(map[string]any)
		byComponent[componentID] = fields
	}
	fields[fieldName] = interfaces.CloneValue(value)
}

// FormEdits returns a copy of the default-locale edits for one component.
func (s *Session) FormEdits(componentID string) map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneFieldMap(s.formEdits[componentID])
}

// AllFormEdits returns a copy of every recorded default-locale edit.
func (s *Session) AllFormEdits() map[string]map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]map[string]any, len(s.formEdits))
	for componentID, fields := range s.formEdits {
		out[componentID] = cloneFieldMap(fields)
	}
	return out
}

// TranslationEdits returns a copy of the per-locale edits for one component,
// keyed locale -> field -> value.
func (s *Session) TranslationEdits(componentID string) map[string]map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]map[string]any)
	for locale, byComponent := range s.translationEdits {
		if fields, ok := byComponent[componentID]; ok && len(fields) > 0 {
			out[locale] = cloneFieldMap(fields)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// AllTranslationEdits returns a copy of the translation buffer, keyed
// locale -> componentID -> field -> value.
func (s *Session) AllTranslationEdits() map[string]map[string]map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]map[string]map[string]any, len(s.translationEdits))
	for locale, byComponent := range s.translationEdits {
		localeCopy := make(map[string]map[string]any, len(byComponent))
		for componentID, fields := range byComponent {
			localeCopy[componentID] = cloneFieldMap(fields)
		}
		out[locale] = localeCopy
	}
	return out
}

// SetAlias renames a component in the working copy. Alias is a user-facing
// label, independent of the schema name. Reports whether the component
// exists.
func (s *Session) SetAlias(componentID, alias string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.unit == nil {
		return false
	}
	comp := s.unit.Component(componentID)
	if comp == nil {
		return false
	}
	comp.Alias = alias
	s.forcedChanges = true
	return true
}

// MarkDeleted soft-deletes a component for the rest of the session.
func (s *Session) MarkDeleted(componentID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted[componentID] = struct{}{}
}

// UnmarkDeleted reverts a soft delete.
func (s *Session) UnmarkDeleted(componentID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.deleted, componentID)
}

// IsDeleted reports whether the component is marked deleted.
func (s *Session) IsDeleted(componentID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.deleted[componentID]
	return ok
}

// DeletedIDs lists the components marked deleted this session.
func (s *Session) DeletedIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.deleted))
	for id := range s.deleted {
		ids = append(ids, id)
	}
	return ids
}

// HasDeletions reports whether any component is marked deleted.
func (s *Session) HasDeletions() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.deleted) > 0
}

// SetLoading flips the initial-load flag; autosave stays quiet while set.
func (s *Session) SetLoading(loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = loading
}

// IsLoading reports whether the unit's initial load is still in flight.
func (s *Session) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// BeginSave claims the save-in-progress flag, reporting false when another
// save already holds it. The claim and the check happen under one lock so
// concurrent callers cannot both enter the commit path.
func (s *Session) BeginSave() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saving {
		return false
	}
	s.saving = true
	return true
}

// EndSave releases the save-in-progress flag.
func (s *Session) EndSave() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saving = false
}

// IsSaving reports whether a save is in progress.
func (s *Session) IsSaving() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saving
}

// ForceChanged marks the unit as carrying unsaved work independent of the
// edit buffers. A surviving local draft sets this on load.
func (s *Session) ForceChanged(changed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.forcedChanges = changed
}

// IsForcedChanged reports the forced-changes mark.
func (s *Session) IsForcedChanged() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.forcedChanges
}

// ClearEdits discards the edit buffers, deletion marks, and forced-changes
// mark after a successful save.
func (s *Session) ClearEdits() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.formEdits = make(map[string]map[string]any)
	s.translationEdits = make(map[string]map[string]map[string]any)
	s.deleted = make(map[string]struct{})
	s.forcedChanges = false
}

func cloneFieldMap(fields map[string]any) map[string]any {
	if fields == nil {
		return nil
	}
	out := make(map[string]any, len(fields))
	for name, value := range fields {
		out[name] = interfaces.CloneValue(value)
	}
	return out
}
