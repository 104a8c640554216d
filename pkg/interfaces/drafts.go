package interfaces

import "context"

// DraftStore is the client-side persistence layer for uncommitted unit
// snapshots. The presence of a draft is the sole signal that a unit has
// unsaved edits after a reload; absence means nothing is pending.
type DraftStore interface {
	// GetDraft returns the stored snapshot for the unit, or (nil, nil) when
	// no draft exists.
	GetDraft(ctx context.Context, unitID string) (*ContentUnit, error)

	// SetDraft writes the snapshot, replacing any previous draft.
	SetDraft(ctx context.Context, unitID string, unit *ContentUnit) error

	// ClearDraft removes the unit's draft. Clearing an absent draft is not
	// an error.
	ClearDraft(ctx context.Context, unitID string) error

	// ListDraftUnitIDs returns the ids of every unit with a pending draft.
	ListDraftUnitIDs(ctx context.Context) ([]string, error)

	// ClearAllDrafts removes every pending draft.
	ClearAllDrafts(ctx context.Context) error
}
