package identity

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-slug"
	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// UUID derives a deterministic UUID from a stable key using go-hashid.
//
// Callers must ensure key construction prevents cross-entity collisions (prefix by domain/type).
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

// ComponentID builds the deterministic id for a component synthesized from a
// manifest entry: the normalized schema key plus the occurrence index.
// Re-synthesizing the same manifest always yields the same ids.
func ComponentID(schemaKey string, occurrence int) string {
	key := NormalizeSchemaKey(schemaKey)
	if key == "" {
		return ""
	}
	return fmt.Sprintf("%s-%d", key, occurrence)
}

// NormalizeSchemaKey applies slug normalization so manifest keys survive
// round-trips through persisted component ids.
func NormalizeSchemaKey(schemaKey string) string {
	trimmed := strings.TrimSpace(schemaKey)
	if trimmed == "" {
		return ""
	}
	normalized, err := slug.Normalize(trimmed)
	if err != nil || normalized == "" {
		return trimmed
	}
	return normalized
}

// RepeaterItemID mints the synthetic id attached to repeater sub-records on
// first save. Ids are opaque; stability across edits is what matters.
func RepeaterItemID() string {
	return "item_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// IsRepeaterItemID reports whether the value looks like a minted item id.
func IsRepeaterItemID(value string) bool {
	return strings.HasPrefix(value, "item_") && len(value) > len("item_")
}

func UnitUUID(unitID string) uuid.UUID {
	return UUID("editor:unit:" + strings.TrimSpace(unitID))
}

func DraftUUID(unitID string) uuid.UUID {
	return UUID("editor:draft:" + strings.TrimSpace(unitID))
}
