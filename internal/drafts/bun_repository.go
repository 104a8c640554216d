package drafts

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"

	"github.com/oriolmontcreus/capsulo-sub000/internal/identity"
	"github.com/oriolmontcreus/capsulo-sub000/pkg/interfaces"
)

// draftModel is the persisted row for one unit snapshot. The row key is the
// deterministic draft UUID derived from the unit id, so re-saving a unit's
// draft always lands on the same row. The payload is the JSON-encoded
// ContentUnit; the engine treats it as opaque.
type draftModel struct {
	bun.BaseModel `bun:"table:unit_drafts,alias:ud"`

	ID        string    `bun:"id,pk"`
	UnitID    string    `bun:"unit_id,notnull,unique"`
	Kind      string    `bun:"kind,notnull"`
	Payload   []byte    `bun:"payload,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

// BunStore persists drafts in a Bun-backed database. This is the durable
// client-profile store that survives reloads.
type BunStore struct {
	db  *bun.DB
	now func() time.Time
}

// BunStoreOption configures a BunStore.
type BunStoreOption func(*BunStore)

// WithClock overrides the timestamp source, used mainly by tests.
func WithClock(clock func() time.Time) BunStoreOption {
	return func(s *BunStore) {
		if clock != nil {
			s.now = clock
		}
	}
}

// NewBunStore constructs a Bun-backed draft store.
func NewBunStore(db *bun.DB, opts ...BunStoreOption) *BunStore {
	s := &BunStore{
		db:  db,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ interfaces.DraftStore = (*BunStore)(nil)

// EnsureSchema creates the drafts table when missing.
func (s *BunStore) EnsureSchema(ctx context.Context) error {
	if s.db == nil {
		return errors.New("drafts: bun store requires a database")
	}
	_, err := s.db.NewCreateTable().
		Model((*draftModel)(nil)).
		IfNotExists().
		Exec(ctx)
	return err
}

func (s *BunStore) GetDraft(ctx context.Context, unitID string) (*interfaces.ContentUnit, error) {
	if strings.TrimSpace(unitID) == "" {
		return nil, ErrUnitIDRequired
	}
	if s.db == nil {
		return nil, errors.New("drafts: bun store requires a database")
	}

	var model draftModel
	err := s.db.NewSelect().Model(&model).Where("unit_id = ?", unitID).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("drafts: read %s: %w", unitID, err)
	}

	var unit interfaces.ContentUnit
	if err := json.Unmarshal(model.Payload, &unit); err != nil {
		return nil, fmt.Errorf("drafts: decode %s: %w", unitID, err)
	}
	return &unit, nil
}

func (s *BunStore) SetDraft(ctx context.Context, unitID string, unit *interfaces.ContentUnit) error {
	if strings.TrimSpace(unitID) == "" {
		return ErrUnitIDRequired
	}
	if unit == nil {
		return ErrNilSnapshot
	}
	if s.db == nil {
		return errors.New("drafts: bun store requires a database")
	}

	payload, err := json.Marshal(unit)
	if err != nil {
		return fmt.Errorf("drafts: encode %s: %w", unitID, err)
	}

	model := &draftModel{
		ID:        identity.DraftUUID(unitID).String(),
		UnitID:    unitID,
		Kind:      string(unit.Kind),
		Payload:   payload,
		UpdatedAt: s.now(),
	}
	_, err = s.db.NewInsert().
		Model(model).
		On("CONFLICT (unit_id) DO UPDATE").
		Set("kind = EXCLUDED.kind").
		Set("payload = EXCLUDED.payload").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("drafts: write %s: %w", unitID, err)
	}
	return nil
}

func (s *BunStore) ClearDraft(ctx context.Context, unitID string) error {
	if strings.TrimSpace(unitID) == "" {
		return ErrUnitIDRequired
	}
	if s.db == nil {
		return errors.New("drafts: bun store requires a database")
	}
	_, err := s.db.NewDelete().
		Model((*draftModel)(nil)).
		Where("unit_id = ?", unitID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("drafts: clear %s: %w", unitID, err)
	}
	return nil
}

func (s *BunStore) ListDraftUnitIDs(ctx context.Context) ([]string, error) {
	if s.db == nil {
		return nil, errors.New("drafts: bun store requires a database")
	}
	var ids []string
	err := s.db.NewSelect().
		Model((*draftModel)(nil)).
		Column("unit_id").
		Order("unit_id ASC").
		Scan(ctx, &ids)
	if err != nil {
		return nil, fmt.Errorf("drafts: list: %w", err)
	}
	return ids, nil
}

func (s *BunStore) ClearAllDrafts(ctx context.Context) error {
	if s.db == nil {
		return errors.New("drafts: bun store requires a database")
	}
	_, err := s.db.NewDelete().
		Model((*draftModel)(nil)).
		Where("1 = 1").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("drafts: clear all: %w", err)
	}
	return nil
}
