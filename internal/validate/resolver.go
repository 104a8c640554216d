package validate

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/oriolmontcreus/capsulo-sub000/internal/fieldvalue"
	"github.com/oriolmontcreus/capsulo-sub000/pkg/interfaces"
)

var ErrSchemaUnknown = errors.New("validate: unknown component schema")

// Issue is one validation failure addressed by its dot-joined field path.
type Issue struct {
	FieldPath string
	Message   string
}

// Resolver maps declared field types onto runtime validators. It is pure:
// resolving and running validators never mutates component data.
type Resolver struct {
	registry      interfaces.SchemaRegistry
	defaultLocale string
	locales       []string
}

// NewResolver constructs a resolver bound to a schema registry and the
// configured locales.
func NewResolver(registry interfaces.SchemaRegistry, defaultLocale string, locales []string) *Resolver {
	return &Resolver{
		registry:      registry,
		defaultLocale: defaultLocale,
		locales:       locales,
	}
}

// FieldValidator checks one candidate value and reports structured issues.
type FieldValidator func(value any) []Issue

// ValidatorFor builds the validator for a single field definition. Sibling
// form values travel along so future conditional rules can consult them;
// current rules are per-field.
func (r *Resolver) ValidatorFor(field interfaces.FieldDef, siblings map[string]any) FieldValidator {
	return func(value any) []Issue {
		return r.validateField(field, value, field.Name)
	}
}

// ValidateComponent validates every leaf field of a component. Candidate
// values resolve with this precedence: explicit in-memory form value, else
// the stored value with locale maps read at the default locale.
func (r *Resolver) ValidateComponent(comp *interfaces.Component, formValues map[string]any) ([]interfaces.ValidationError, error) {
	if comp == nil {
		return nil, nil
	}
	declared, err := r.registry.GetFields(comp.SchemaName)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSchemaUnknown, comp.SchemaName)
	}

	var out []interfaces.ValidationError
	for _, field := range r.registry.Flatten(declared) {
		value := r.candidateValue(comp, field.Name, formValues)
		for _, issue := range r.validateField(field, value, field.Name) {
			out = append(out, interfaces.ValidationError{
				ComponentID: comp.ID,
				FieldPath:   issue.FieldPath,
				Message:     issue.Message,
			})
		}
	}
	return out, nil
}

func (r *Resolver) candidateValue(comp *interfaces.Component, fieldName string, formValues map[string]any) any {
	if formValues != nil {
		if v, ok := formValues[fieldName]; ok {
			return v
		}
	}
	entry, ok := comp.Data[fieldName]
	if !ok {
		return nil
	}
	return fieldvalue.NormalizeEntry(entry, r.locales).Resolve(r.defaultLocale, r.defaultLocale)
}

func (r *Resolver) validateField(field interfaces.FieldDef, value any, path string) []Issue {
	if field.Type == interfaces.FieldTypeRepeater {
		return r.validateRepeater(field, value, path)
	}

	var issues []Issue
	if field.Required && fieldvalue.IsAbsent(value) {
		issues = append(issues, Issue{FieldPath: path, Message: fmt.Sprintf("%s is required", fieldLabel(field))})
		return issues
	}
	if fieldvalue.IsAbsent(value) {
		return nil
	}

	rules := r.rulesFor(field)
	if len(rules) == 0 {
		return nil
	}
	if err := validation.Validate(value, rules...); err != nil {
		issues = append(issues, Issue{FieldPath: path, Message: err.Error()})
	}
	return issues
}

func (r *Resolver) validateRepeater(field interfaces.FieldDef, value any, path string) []Issue {
	if fieldvalue.IsAbsent(value) {
		if field.Required {
			return []Issue{{FieldPath: path, Message: fmt.Sprintf("%s is required", fieldLabel(field))}}
		}
		return nil
	}
	items, ok := value.([]any)
	if !ok {
		return []Issue{{FieldPath: path, Message: fmt.Sprintf("%s must be a list", fieldLabel(field))}}
	}
	if field.Required && len(items) == 0 {
		return []Issue{{FieldPath: path, Message: fmt.Sprintf("%s is required", fieldLabel(field))}}
	}

	var issues []Issue
	for index, item := range items {
		record, _ := item.(map[string]any)
		for _, sub := range r.registry.Flatten(field.Fields) {
			var subValue any
			if record != nil {
				subValue = record[sub.Name]
			}
			subPath := path + "." + strconv.Itoa(index) + "." + sub.Name
			for _, issue := range r.validateField(sub, subValue, sub.Name) {
				issues = append(issues, Issue{FieldPath: subPath + trimPrefix(issue.FieldPath, sub.Name), Message: issue.Message})
			}
		}
	}
	return issues
}

func (r *Resolver) rulesFor(field interfaces.FieldDef) []validation.Rule {
	var rules []validation.Rule
	switch field.Type {
	case interfaces.FieldTypeText, interfaces.FieldTypeTextarea, interfaces.FieldTypeMarkdown:
		if field.Min != nil || field.Max != nil {
			min, max := 0, 0
			if field.Min != nil {
				min = int(*field.Min)
			}
			if field.Max != nil {
				max = int(*field.Max)
			}
			rules = append(rules, validation.Length(min, max))
		}
		if field.Pattern != "" {
			if re, err := regexp.Compile(field.Pattern); err == nil {
				rules = append(rules, validation.Match(re))
			}
		}
	case interfaces.FieldTypeNumber:
		if field.Min != nil {
			rules = append(rules, validation.Min(*field.Min))
		}
		if field.Max != nil {
			rules = append(rules, validation.Max(*field.Max))
		}
	case interfaces.FieldTypeSelect:
		if len(field.Options) > 0 {
			allowed := make([]any, len(field.Options))
			for i, opt := range field.Options {
				allowed[i] = opt
			}
			rules = append(rules, validation.In(allowed...))
		}
	case interfaces.FieldTypeDate:
		rules = append(rules, validation.Date("2006-01-02"))
	}
	return rules
}

func fieldLabel(field interfaces.FieldDef) string {
	if field.Label != "" {
		return field.Label
	}
	return field.Name
}

func trimPrefix(path, prefix string) string {
	if path == prefix {
		return ""
	}
	if len(path) > len(prefix) && path[:len(prefix)] == prefix {
		return path[len(prefix):]
	}
	return ""
}
