package codec

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"

	"github.com/oriolmontcreus/capsulo-sub000/internal/identity"
	"github.com/oriolmontcreus/capsulo-sub000/pkg/interfaces"
)

// UnitDocument is a content unit serialized as a frontmatter document: the
// unit metadata and component data live in the frontmatter, the markdown
// body carries free-form notes kept next to the unit in git-backed stores.
type UnitDocument struct {
	Unit *interfaces.ContentUnit
	Body []byte
}

type unitEnvelope struct {
	ID   string `yaml:"id"`
	Kind string `yaml:"kind"`
	// UUID is the deterministic document identity derived from the unit id.
	// Git-backed stores key history on it; parsing ignores it so a renamed
	// document re-derives its identity on the next encode.
	UUID       string              `yaml:"uuid,omitempty"`
	Components []componentEnvelope `yaml:"components"`
}

type componentEnvelope struct {
	ID         string         `yaml:"id"`
	Schema     string         `yaml:"schema"`
	Alias      string         `yaml:"alias,omitempty"`
	Data       map[string]any `yaml:"data"`
}

// ParseUnitDocument decodes a frontmatter document into a ContentUnit.
func ParseUnitDocument(source []byte) (*UnitDocument, error) {
	var env unitEnvelope
	body, err := frontmatter.Parse(bytes.NewReader(source), &env)
	if err != nil {
		return nil, fmt.Errorf("codec: parse frontmatter: %w", err)
	}
	if strings.TrimSpace(env.ID) == "" {
		return nil, fmt.Errorf("codec: document missing unit id")
	}

	unit := &interfaces.ContentUnit{
		ID:   env.ID,
		Kind: interfaces.UnitKind(env.Kind),
	}
	if unit.Kind == "" {
		unit.Kind = interfaces.UnitKindPage
	}
	for _, comp := range env.Components {
		unit.Components = append(unit.Components, &interfaces.Component{
			ID:         comp.ID,
			SchemaName: comp.Schema,
			Alias:      comp.Alias,
			Data:       decodeFieldData(comp.Data),
		})
	}
	return &UnitDocument{Unit: unit, Body: body}, nil
}

// EncodeUnitDocument renders a unit back to frontmatter + body form.
func EncodeUnitDocument(doc *UnitDocument) ([]byte, error) {
	if doc == nil || doc.Unit == nil {
		return nil, fmt.Errorf("codec: unit required")
	}
	env := unitEnvelope{
		ID:   doc.Unit.ID,
		Kind: string(doc.Unit.Kind),
		UUID: identity.UnitUUID(doc.Unit.ID).String(),
	}
	for _, comp := range doc.Unit.Components {
		if comp == nil {
			continue
		}
		env.Components = append(env.Components, componentEnvelope{
			ID:     comp.ID,
			Schema: comp.SchemaName,
			Alias:  comp.Alias,
			Data:   encodeFieldData(comp.Data),
		})
	}

	meta, err := yaml.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("codec: encode frontmatter: %w", err)
	}

	var out bytes.Buffer
	out.WriteString("---\n")
	out.Write(meta)
	out.WriteString("---\n")
	if len(doc.Body) > 0 {
		out.Write(doc.Body)
		if doc.Body[len(doc.Body)-1] != '\n' {
			out.WriteByte('\n')
		}
	}
	return out.Bytes(), nil
}

func decodeFieldData(data map[string]any) map[string]interfaces.FieldEntry {
	out := make(map[string]interfaces.FieldEntry, len(data))
	for name, raw := range data {
		entry := interfaces.FieldEntry{Type: interfaces.FieldTypeText}
		if record, ok := raw.(map[string]any); ok {
			if t, ok := record["type"].(string); ok && t != "" {
				entry.Type = t
			}
			if translatable, ok := record["translatable"].(bool); ok {
				entry.Translatable = translatable
			}
			entry.Value = record["value"]
		} else {
			entry.Value = raw
		}
		out[name] = entry
	}
	return out
}

func encodeFieldData(data map[string]interfaces.FieldEntry) map[string]any {
	out := make(map[string]any, len(data))
	for name, entry := range data {
		record := map[string]any{
			"type":  entry.Type,
			"value": entry.Value,
		}
		if entry.Translatable {
			record["translatable"] = true
		}
		out[name] = record
	}
	return out
}
