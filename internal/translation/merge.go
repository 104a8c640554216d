package translation

import (
	"github.com/oriolmontcreus/capsulo-sub000/internal/fieldvalue"
	"github.com/oriolmontcreus/capsulo-sub000/pkg/interfaces"
)

// Merger folds per-locale edits into component data. Both projections read
// the same inputs: stored component data, default-locale form edits, and
// per-locale translation edits.
type Merger struct {
	defaultLocale string
	locales       []string
}

// NewMerger constructs a merger for the configured locales. The default
// locale must be part of locales.
func NewMerger(defaultLocale string, locales []string) *Merger {
	return &Merger{
		defaultLocale: defaultLocale,
		locales:       locales,
	}
}

// DefaultLocale returns the configured default locale.
func (m *Merger) DefaultLocale() string { return m.defaultLocale }

// Locales returns the configured locale codes.
func (m *Merger) Locales() []string {
	return append([]string(nil), m.locales...)
}

// SaveComponent builds the persisted shape of one component: every stored
// locale is preserved verbatim, the default locale is overwritten from form
// edits when present and non-empty, and every translation edit is applied.
// An explicit empty string clears that locale's value rather than dropping
// it. Repeater items receive synthetic ids on the way out.
//
// fields carries the declared schema so fields edited for the first time
// inherit their declared type and translatability.
func (m *Merger) SaveComponent(comp *interfaces.Component, formEdits map[string]any, translationEdits map[string]map[string]any, fields []interfaces.FieldDef) *interfaces.Component {
	out := comp.Clone()
	if out.Data == nil {
		out.Data = make(map[string]interfaces.FieldEntry)
	}
	defs := fieldDefIndex(fields)

	for _, name := range m.fieldNames(comp, formEdits, translationEdits) {
		entry := m.entryFor(out, name, defs)
		merged := m.mergeField(entry, name, formEdits, translationEdits, defs, true)
		out.Data[name] = merged
	}
	return out
}

// DisplayComponent overlays edits onto stored data without persisting. The
// result keeps locale maps expanded so callers can inspect per-locale
// coverage; no item ids are minted and nothing collapses to scalar.
func (m *Merger) DisplayComponent(comp *interfaces.Component, formEdits map[string]any, translationEdits map[string]map[string]any, fields []interfaces.FieldDef) map[string]interfaces.FieldEntry {
	defs := fieldDefIndex(fields)
	out := make(map[string]interfaces.FieldEntry)
	for _, name := range m.fieldNames(comp, formEdits, translationEdits) {
		entry := m.entryFor(comp, name, defs)
		out[name] = m.mergeField(entry, name, formEdits, translationEdits, defs, false)
	}
	return out
}

// IsFullyTranslated reports whether a display entry carries non-empty
// content for every configured locale.
func (m *Merger) IsFullyTranslated(entry interfaces.FieldEntry) bool {
	value := fieldvalue.NormalizeEntry(entry, m.locales)
	for _, locale := range m.locales {
		if !value.IsLocaleMap() {
			// Scalar content only covers the default locale.
			if locale != m.defaultLocale {
				return false
			}
			if fieldvalue.IsAbsent(value.Scalar()) {
				return false
			}
			continue
		}
		stored, ok := value.Locale(locale)
		if !ok || fieldvalue.IsAbsent(stored) {
			return false
		}
	}
	return true
}

func (m *Merger) mergeField(entry interfaces.FieldEntry, name string, formEdits map[string]any, translationEdits map[string]map[string]any, defs map[string]interfaces.FieldDef, persisting bool) interfaces.FieldEntry {
	def, hasDef := defs[name]
	isRepeater := entry.Type == interfaces.FieldTypeRepeater || (hasDef && def.Type == interfaces.FieldTypeRepeater)
	if isRepeater {
		return m.mergeRepeater(entry, name, formEdits, translationEdits, persisting)
	}

	locales := m.storedLocales(entry)

	if formEdits != nil {
		if edited, ok := formEdits[name]; ok && !fieldvalue.IsAbsent(edited) {
			locales[m.defaultLocale] = interfaces.CloneValue(edited)
		}
	}
	for locale, fieldEdits := range translationEdits {
		if locale == m.defaultLocale {
			continue
		}
		if edited, ok := fieldEdits[name]; ok {
			locales[locale] = interfaces.CloneValue(edited)
		}
	}

	if persisting {
		entry.Value = m.collapse(entry, locales)
	} else {
		entry.Value = locales
	}
	return entry
}

// mergeRepeater applies locale edits to per-locale item arrays. Translation
// edits are inherently sparse, so same-index items object-merge instead of
// replacing the whole array.
func (m *Merger) mergeRepeater(entry interfaces.FieldEntry, name string, formEdits map[string]any, translationEdits map[string]map[string]any, persisting bool) interfaces.FieldEntry {
	locales := m.storedLocales(entry)

	if formEdits != nil {
		if edited, ok := formEdits[name]; ok && !fieldvalue.IsAbsent(edited) {
			locales[m.defaultLocale] = interfaces.CloneValue(edited)
		}
	}
	for locale, fieldEdits := range translationEdits {
		if locale == m.defaultLocale {
			continue
		}
		edited, ok := fieldEdits[name]
		if !ok {
			continue
		}
		editedItems, isList := edited.([]any)
		if !isList {
			locales[locale] = interfaces.CloneValue(edited)
			continue
		}
		storedItems, _ := locales[locale].([]any)
		locales[locale] = mergeItemArrays(storedItems, editedItems)
	}

	if persisting {
		for locale, value := range locales {
			if items, ok := value.([]any); ok {
				locales[locale] = fieldvalue.EnsureItemIDs(items)
			}
		}
		entry.Value = m.collapse(entry, locales)
	} else {
		entry.Value = locales
	}
	return entry
}

// collapse stores a single-default-locale map as its scalar value. Entries
// declared translatable whose content is itself an object keep the map
// shape: collapsed, the object's keys could shadow locale detection on
// reload.
func (m *Merger) collapse(entry interfaces.FieldEntry, locales map[string]any) any {
	if len(locales) == 0 {
		return nil
	}
	if len(locales) == 1 {
		if only, ok := locales[m.defaultLocale]; ok {
			if entry.Translatable {
				if _, isObject := only.(map[string]any); isObject {
					return locales
				}
			}
			return only
		}
	}
	return locales
}

// storedLocales expands the stored value into a locale map: existing maps
// copy verbatim, scalars become the default-locale entry.
func (m *Merger) storedLocales(entry interfaces.FieldEntry) map[string]any {
	value := fieldvalue.NormalizeEntry(entry, m.locales)
	if value.IsLocaleMap() {
		out := make(map[string]any)
		for locale, stored := range value.Locales() {
			out[locale] = interfaces.CloneValue(stored)
		}
		return out
	}
	out := make(map[string]any)
	if scalar := value.Scalar(); scalar != nil {
		out[m.defaultLocale] = interfaces.CloneValue(scalar)
	}
	return out
}

func (m *Merger) entryFor(comp *interfaces.Component, name string, defs map[string]interfaces.FieldDef) interfaces.FieldEntry {
	if comp != nil && comp.Data != nil {
		if entry, ok := comp.Data[name]; ok {
			return entry
		}
	}
	if def, ok := defs[name]; ok {
		return interfaces.FieldEntry{Type: def.Type, Translatable: def.Translatable}
	}
	return interfaces.FieldEntry{Type: interfaces.FieldTypeText}
}

// fieldNames unions stored fields with edited fields, stored order is not
// meaningful: data is a map end to end.
func (m *Merger) fieldNames(comp *interfaces.Component, formEdits map[string]any, translationEdits map[string]map[string]any) []string {
	seen := map[string]struct{}{}
	var names []string
	add := func(name string) {
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	if comp != nil {
		for name := range comp.Data {
			add(name)
		}
	}
	for name := range formEdits {
		add(name)
	}
	for _, fieldEdits := range translationEdits {
		for name := range fieldEdits {
			add(name)
		}
	}
	return names
}

// mergeItemArrays merges per-locale repeater arrays index by index. Missing
// or nil edit slots keep the stored item; map items merge key by key so a
// sparse translation edit cannot discard untouched item fields.
func mergeItemArrays(stored, edited []any) []any {
	size := len(stored)
	if len(edited) > size {
		size = len(edited)
	}
	out := make([]any, size)
	for i := 0; i < size; i++ {
		var storedItem, editedItem any
		if i < len(stored) {
			storedItem = stored[i]
		}
		if i < len(edited) {
			editedItem = edited[i]
		}
		out[i] = mergeItem(storedItem, editedItem)
	}
	return out
}

func mergeItem(stored, edited any) any {
	if edited == nil {
		return interfaces.CloneValue(stored)
	}
	editedMap, editedIsMap := edited.(map[string]any)
	storedMap, storedIsMap := stored.(map[string]any)
	if !editedIsMap || !storedIsMap {
		return interfaces.CloneValue(edited)
	}
	merged := make(map[string]any, len(storedMap)+len(editedMap))
	for k, v := range storedMap {
		merged[k] = interfaces.CloneValue(v)
	}
	for k, v := range editedMap {
		merged[k] = interfaces.CloneValue(v)
	}
	return merged
}

func fieldDefIndex(fields []interfaces.FieldDef) map[string]interfaces.FieldDef {
	out := make(map[string]interfaces.FieldDef, len(fields))
	for _, field := range fields {
		out[field.Name] = field
	}
	return out
}
