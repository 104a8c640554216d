package editor

import (
	"context"
	"fmt"
	"strings"

	"github.com/oriolmontcreus/capsulo-sub000/internal/logging"
	"github.com/oriolmontcreus/capsulo-sub000/pkg/interfaces"
)

// Save validates the whole unit, resolves pending asset uploads, builds the
// persisted shape, and commits it to the remote store. Validation failures
// return the full issue list and leave storage untouched. On success the
// working copy is replaced with the saved shape and the edit buffers,
// deletion marks, and local draft are cleared.
func (s *service) Save(ctx context.Context, unitID, message string) ([]interfaces.ValidationError, error) {
	if strings.TrimSpace(unitID) == "" {
		return nil, ErrUnitIDRequired
	}
	sess := s.sessions.Get(unitID)
	if sess == nil {
		return nil, ErrUnitNotLoaded
	}
	if !sess.BeginSave() {
		return nil, ErrSaveInProgress
	}
	defer sess.EndSave()

	unit := sess.Unit()
	if unit == nil {
		return nil, ErrUnitNotLoaded
	}

	logger := logging.WithUnitContext(s.logger, unitID, "", "save")

	// Validation gates the entire unit: one invalid field blocks the save
	// and nothing reaches storage.
	var issues []interfaces.ValidationError
	for _, comp := range unit.Components {
		if comp == nil || sess.IsDeleted(comp.ID) {
			continue
		}
		compIssues, err := s.resolver.ValidateComponent(comp, sess.FormEdits(comp.ID))
		if err != nil {
			return nil, err
		}
		issues = append(issues, compIssues...)
	}
	if len(issues) > 0 {
		logger.Debug("editor.save_blocked", "issue_count", len(issues))
		return issues, nil
	}

	processed, err := s.assets.ProcessPendingUploads(ctx, sess.AllFormEdits())
	if err != nil {
		return nil, fmt.Errorf("editor: asset processing: %w", err)
	}

	persisted := s.projectUnit(sess, unit, processed)

	if err := s.remote.SaveUnit(ctx, unitID, persisted, message); err != nil {
		logger.Error("editor.save_failed", "error", err)
		return nil, fmt.Errorf("editor: save %s: %w", unitID, err)
	}

	// Buffers clear before the scheduler cancels: a timer callback racing
	// the commit then snapshots an unchanged unit and writes nothing.
	sess.SetUnit(persisted)
	sess.ClearEdits()
	s.scheduler.Cancel(unitID)
	if err := s.drafts.ClearDraft(ctx, unitID); err != nil {
		// The commit already succeeded; a lingering draft only costs an
		// extra reconcile on next load.
		logger.Warn("editor.draft_clear_failed", "error", err)
	}

	logger.Info("editor.unit_saved")
	return nil, nil
}

// normalizeAssetFields coerces file-typed values into the canonical
// {files: [...]} shape, per locale when the value is a locale map.
func normalizeAssetFields(comp *interfaces.Component) {
	for name, entry := range comp.Data {
		if entry.Type != interfaces.FieldTypeFile {
			continue
		}
		switch value := entry.Value.(type) {
		case []any:
			entry.Value = map[string]any{"files": value}
		case map[string]any:
			if _, ok := value["files"]; ok {
				break
			}
			for locale, localized := range value {
				if files, ok := localized.([]any); ok {
					value[locale] = map[string]any{"files": files}
				}
			}
		}
		comp.Data[name] = entry
	}
}
