package interfaces

// Field type identifiers shared between the schema registry and the
// validator resolver. Layout types group other fields for presentation and
// never hold values of their own.
const (
	FieldTypeText     = "text"
	FieldTypeTextarea = "textarea"
	FieldTypeMarkdown = "markdown"
	FieldTypeNumber   = "number"
	FieldTypeToggle   = "toggle"
	FieldTypeSelect   = "select"
	FieldTypeDate     = "date"
	FieldTypeFile     = "file"
	FieldTypeRepeater = "repeater"

	FieldTypeGrid = "grid"
	FieldTypeTabs = "tabs"
)

// FieldDef declares one field of a component schema. Repeater and layout
// fields carry their sub-fields in Fields.
type FieldDef struct {
	Name         string     `json:"name"`
	Type         string     `json:"type"`
	Label        string     `json:"label,omitempty"`
	Translatable bool       `json:"translatable,omitempty"`
	Required     bool       `json:"required,omitempty"`
	Min          *float64   `json:"min,omitempty"`
	Max          *float64   `json:"max,omitempty"`
	Pattern      string     `json:"pattern,omitempty"`
	Options      []string   `json:"options,omitempty"`
	Fields       []FieldDef `json:"fields,omitempty"`
}

// IsLayout reports whether the field only groups other fields.
func (f FieldDef) IsLayout() bool {
	switch f.Type {
	case FieldTypeGrid, FieldTypeTabs:
		return true
	}
	return false
}

// SchemaRegistry resolves a component schema name to its declared fields.
type SchemaRegistry interface {
	// GetFields returns the declared fields of a schema, layout wrappers
	// included.
	GetFields(schemaName string) ([]FieldDef, error)

	// Flatten expands layout wrappers into the addressable leaf fields.
	Flatten(fields []FieldDef) []FieldDef

	// TypeOf resolves a leaf field's declared type within a schema.
	TypeOf(schemaName, fieldName string) (string, bool)
}
