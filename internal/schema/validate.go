package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/oriolmontcreus/capsulo-sub000/pkg/interfaces"
)

var ErrFieldDefsInvalid = errors.New("schema: field definitions invalid")

// fieldDefsSchema is the structural contract every registered field list
// must satisfy. Layout and repeater fields nest recursively.
const fieldDefsSchema = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "array",
	"items": { "$ref": "#/$defs/field" },
	"$defs": {
		"field": {
			"type": "object",
			"required": ["name", "type"],
			"properties": {
				"name": { "type": "string", "minLength": 1 },
				"type": { "type": "string", "minLength": 1 },
				"label": { "type": "string" },
				"translatable": { "type": "boolean" },
				"required": { "type": "boolean" },
				"min": { "type": "number" },
				"max": { "type": "number" },
				"pattern": { "type": "string" },
				"options": { "type": "array", "items": { "type": "string" } },
				"fields": { "type": "array", "items": { "$ref": "#/$defs/field" } }
			}
		}
	}
}`

var compiledFieldDefs = jsonschema.MustCompileString("fielddefs.json", fieldDefsSchema)

// ValidateFieldDefs checks a declared field list against the structural
// contract, plus rules the JSON schema cannot express (unique names, layout
// wrappers needing children).
func ValidateFieldDefs(fields []interfaces.FieldDef) error {
	doc, err := toJSONValue(fields)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFieldDefsInvalid, err)
	}
	if err := compiledFieldDefs.Validate(doc); err != nil {
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) {
			return fmt.Errorf("%w: %s", ErrFieldDefsInvalid, flattenValidationError(ve))
		}
		return fmt.Errorf("%w: %v", ErrFieldDefsInvalid, err)
	}
	return validateFieldRules(fields, "")
}

func validateFieldRules(fields []interfaces.FieldDef, prefix string) error {
	seen := map[string]struct{}{}
	for _, field := range fields {
		path := field.Name
		if prefix != "" {
			path = prefix + "." + field.Name
		}
		if !field.IsLayout() {
			if _, dup := seen[field.Name]; dup {
				return fmt.Errorf("%w: duplicate field %q", ErrFieldDefsInvalid, path)
			}
			seen[field.Name] = struct{}{}
		}
		switch field.Type {
		case interfaces.FieldTypeRepeater:
			if len(field.Fields) == 0 {
				return fmt.Errorf("%w: repeater %q declares no sub-fields", ErrFieldDefsInvalid, path)
			}
			if err := validateFieldRules(field.Fields, path); err != nil {
				return err
			}
		case interfaces.FieldTypeGrid, interfaces.FieldTypeTabs:
			if len(field.Fields) == 0 {
				return fmt.Errorf("%w: layout %q declares no children", ErrFieldDefsInvalid, path)
			}
			if err := validateFieldRules(field.Fields, prefix); err != nil {
				return err
			}
		case interfaces.FieldTypeSelect:
			if len(field.Options) == 0 {
				return fmt.Errorf("%w: select %q declares no options", ErrFieldDefsInvalid, path)
			}
		}
	}
	return nil
}

func toJSONValue(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func flattenValidationError(ve *jsonschema.ValidationError) string {
	leaves := collectLeaves(ve)
	parts := make([]string, 0, len(leaves))
	for _, leaf := range leaves {
		location := leaf.InstanceLocation
		if location == "" {
			location = "#"
		}
		parts = append(parts, fmt.Sprintf("%s: %s", location, leaf.Message))
	}
	return strings.Join(parts, "; ")
}

func collectLeaves(ve *jsonschema.ValidationError) []*jsonschema.ValidationError {
	if len(ve.Causes) == 0 {
		return []*jsonschema.ValidationError{ve}
	}
	var out []*jsonschema.ValidationError
	for _, cause := range ve.Causes {
		out = append(out, collectLeaves(cause)...)
	}
	return out
}
