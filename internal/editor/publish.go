package editor

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// UnitFailure pairs a unit id with the error its commit produced.
type UnitFailure struct {
	UnitID string
	Err    error
}

// PublishResult partitions a publish batch. Drafts are cleared only when
// Failed is empty, so a retry re-attempts the exact same batch.
type PublishResult struct {
	Succeeded []string
	Failed    []UnitFailure
}

// PartialSuccess reports a mixed outcome: some units committed, some failed.
func (r *PublishResult) PartialSuccess() bool {
	return len(r.Succeeded) > 0 && len(r.Failed) > 0
}

// AllFailed reports whether no unit committed.
func (r *PublishResult) AllFailed() bool {
	return len(r.Succeeded) == 0 && len(r.Failed) > 0
}

// Publish commits every unit with a pending local draft (the globals draft
// included) as one batch. Each commit resolves independently; the join
// never short-circuits on the first failure, and no sibling commit is
// cancelled because another failed.
func (s *service) Publish(ctx context.Context, message string) (*PublishResult, error) {
	unitIDs, err := s.drafts.ListDraftUnitIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("editor: list drafts: %w", err)
	}

	result := &PublishResult{}
	if len(unitIDs) == 0 {
		return result, nil
	}

	type outcome struct {
		unitID string
		err    error
	}

	outcomes := make(chan outcome, len(unitIDs))
	var wg sync.WaitGroup
	for _, unitID := range unitIDs {
		wg.Add(1)
		go func(unitID string) {
			defer wg.Done()
			outcomes <- outcome{unitID: unitID, err: s.commitDraft(ctx, unitID, message)}
		}(unitID)
	}
	wg.Wait()
	close(outcomes)

	for o := range outcomes {
		if o.err != nil {
			result.Failed = append(result.Failed, UnitFailure{UnitID: o.unitID, Err: o.err})
			continue
		}
		result.Succeeded = append(result.Succeeded, o.unitID)
	}
	sort.Strings(result.Succeeded)
	sort.Slice(result.Failed, func(i, j int) bool {
		return result.Failed[i].UnitID < result.Failed[j].UnitID
	})

	// Clearing is gated on a fully clean batch: one failed unit preserves
	// every draft so the retry covers the identical set.
	if len(result.Failed) == 0 {
		for _, unitID := range result.Succeeded {
			if err := s.drafts.ClearDraft(ctx, unitID); err != nil {
				s.logger.Warn("editor.publish_draft_clear_failed", "unit_id", unitID, "error", err)
			}
			if sess := s.sessions.Get(unitID); sess != nil {
				sess.ClearEdits()
			}
		}
		s.logger.Info("editor.publish_complete", "unit_count", len(result.Succeeded))
		return result, nil
	}

	if result.PartialSuccess() {
		s.logger.Warn("editor.publish_partial_failure",
			"succeeded", len(result.Succeeded),
			"failed", len(result.Failed))
	} else {
		s.logger.Error("editor.publish_failed", "failed", len(result.Failed))
	}
	return result, nil
}

// commitDraft pushes one unit's draft snapshot to the remote store.
func (s *service) commitDraft(ctx context.Context, unitID, message string) error {
	draft, err := s.drafts.GetDraft(ctx, unitID)
	if err != nil {
		return fmt.Errorf("editor: read draft %s: %w", unitID, err)
	}
	if draft == nil {
		return fmt.Errorf("editor: draft %s vanished before commit", unitID)
	}
	if err := s.remote.SaveUnit(ctx, unitID, draft, message); err != nil {
		return fmt.Errorf("editor: commit %s: %w", unitID, err)
	}
	return nil
}
