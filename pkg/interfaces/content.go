package interfaces

// UnitKind distinguishes the two content unit flavours the editor manages.
type UnitKind string

const (
	// UnitKindPage is an ordered list of schema-typed components.
	UnitKindPage UnitKind = "page"
	// UnitKindGlobals is the singleton global-variable set: exactly one
	// component with a fixed id.
	UnitKindGlobals UnitKind = "globals"
)

// GlobalsComponentID is the fixed component id carried by the globals unit.
const GlobalsComponentID = "global-variables"

// FieldEntry is the normalized shape of one stored field value. When
// Translatable is set, Value is either a locale-code map or a single value
// meaning only the default locale has content yet. A value whose keys match
// the configured locale codes is treated as a locale map regardless of the
// flag, to tolerate fields whose translatability was inferred rather than
// declared.
type FieldEntry struct {
	Type         string `json:"type"`
	Translatable bool   `json:"translatable,omitempty"`
	Value        any    `json:"value"`
}

// Component is one schema-typed block of structured data within a unit.
// Alias is an optional user-facing rename, independent of SchemaName.
type Component struct {
	ID         string                `json:"id"`
	SchemaName string                `json:"schemaName"`
	Alias      string                `json:"alias,omitempty"`
	Data       map[string]FieldEntry `json:"data"`
}

// ContentUnit is a page or the globals singleton, identified by a stable
// string id. Units are created implicitly on first selection and never hard
// deleted; components within a page can be soft-deleted during an edit
// session.
type ContentUnit struct {
	ID         string       `json:"id"`
	Kind       UnitKind     `json:"kind"`
	Components []*Component `json:"components"`
}

// ManifestEntry declares how many occurrences of a schema key the
// presentation layer expects for a unit. Missing occurrences are synthesized
// with deterministic ids during reconciliation.
type ManifestEntry struct {
	SchemaKey string `json:"schemaKey"`
	Count     int    `json:"count"`
}

// ValidationError addresses a single invalid leaf field. FieldPath is
// dot-joined (field.index.subfield) so nested and repeated structures can be
// pointed at precisely.
type ValidationError struct {
	ComponentID string `json:"componentId"`
	FieldPath   string `json:"fieldPath"`
	Message     string `json:"message"`
}

// Clone returns a deep copy of the component.
func (c *Component) Clone() *Component {
	if c == nil {
		return nil
	}
	out := &Component{
		ID:         c.ID,
		SchemaName: c.SchemaName,
		Alias:      c.Alias,
	}
	if c.Data != nil {
		out.Data = make(map[string]FieldEntry, len(c.Data))
		for name, entry := range c.Data {
			entry.Value = CloneValue(entry.Value)
			out.Data[name] = entry
		}
	}
	return out
}

// Clone returns a deep copy of the unit.
func (u *ContentUnit) Clone() *ContentUnit {
	if u == nil {
		return nil
	}
	out := &ContentUnit{
		ID:   u.ID,
		Kind: u.Kind,
	}
	if u.Components != nil {
		out.Components = make([]*Component, 0, len(u.Components))
		for _, comp := range u.Components {
			out.Components = append(out.Components, comp.Clone())
		}
	}
	return out
}

// Component returns the component with the given id, or nil.
func (u *ContentUnit) Component(id string) *Component {
	if u == nil {
		return nil
	}
	for _, comp := range u.Components {
		if comp != nil && comp.ID == id {
			return comp
		}
	}
	return nil
}

// CloneValue deep-copies JSON-shaped values (maps, slices, scalars).
func CloneValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for k, v := range typed {
			out[k] = CloneValue(v)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, v := range typed {
			out[i] = CloneValue(v)
		}
		return out
	default:
		return value
	}
}
