package interfaces

import "context"

// RemoteStore abstracts the versioned content store the editor commits to
// (typically a git-backed HTTP API). Implementations translate transport
// failures into errors; the engine never inspects wire formats.
type RemoteStore interface {
	// LoadUnit fetches the published copy of a unit. Implementations return
	// ErrUnitNotFound when the store has no record for the id.
	LoadUnit(ctx context.Context, unitID string) (*ContentUnit, error)

	// SaveUnit commits one unit, optionally annotated with a message.
	SaveUnit(ctx context.Context, unitID string, unit *ContentUnit, message string) error

	// HasUnpublishedDraft reports whether the store carries an unpublished
	// draft branch or version.
	HasUnpublishedDraft(ctx context.Context) (bool, error)

	// LoadRemoteDraft fetches the unpublished draft copy of a unit, or
	// (nil, nil) when the store has none.
	LoadRemoteDraft(ctx context.Context, unitID string) (*ContentUnit, error)
}
