package fieldvalue

import "github.com/oriolmontcreus/capsulo-sub000/internal/identity"

// ItemIDKey is the key under which repeater sub-records carry their
// synthetic id. The id is assigned on first save and preserved across edits
// so per-item error paths and per-locale partial updates can be addressed
// positionally without identity drift.
const ItemIDKey = "id"

// EnsureItemIDs assigns synthetic ids to repeater items that lack one,
// returning a copy of the array. Existing ids pass through untouched.
func EnsureItemIDs(items []any) []any {
	if items == nil {
		return nil
	}
	out := make([]any, len(items))
	for i, item := range items {
		record, ok := item.(map[string]any)
		if !ok {
			out[i] = item
			continue
		}
		copied := make(map[string]any, len(record)+1)
		for k, v := range record {
			copied[k] = v
		}
		if id, ok := copied[ItemIDKey].(string); !ok || id == "" {
			copied[ItemIDKey] = identity.RepeaterItemID()
		}
		out[i] = copied
	}
	return out
}

// ItemID extracts the synthetic id of a repeater item, or "".
func ItemID(item any) string {
	record, ok := item.(map[string]any)
	if !ok {
		return ""
	}
	id, _ := record[ItemIDKey].(string)
	return id
}
