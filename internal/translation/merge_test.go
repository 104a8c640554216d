package translation

import (
	"testing"

	"github.com/oriolmontcreus/capsulo-sub000/internal/fieldvalue"
	"github.com/oriolmontcreus/capsulo-sub000/pkg/interfaces"
)

func newTestMerger() *Merger {
	return NewMerger("en", []string{"en", "es", "fr"})
}

func heroComponent() *interfaces.Component {
	return &interfaces.Component{
		ID:         "hero-1",
		SchemaName: "hero",
		Data: map[string]interfaces.FieldEntry{
			"title": {
				Type:         interfaces.FieldTypeText,
				Translatable: true,
				Value:        map[string]any{"en": "Hello", "es": "Hola", "fr": "Bonjour"},
			},
			"subtitle": {Type: interfaces.FieldTypeText, Value: "Plain"},
		},
	}
}

func heroFields() []interfaces.FieldDef {
	return []interfaces.FieldDef{
		{Name: "title", Type: interfaces.FieldTypeText, Translatable: true},
		{Name: "subtitle", Type: interfaces.FieldTypeText},
		{Name: "slides", Type: interfaces.FieldTypeRepeater, Fields: []interfaces.FieldDef{
			{Name: "caption", Type: interfaces.FieldTypeText},
		}},
	}
}

func localeMap(t *testing.T, entry interfaces.FieldEntry) map[string]any {
	t.Helper()
	m, ok := entry.Value.(map[string]any)
	if !ok {
		t.Fatalf("expected locale map, got %T (%v)", entry.Value, entry.Value)
	}
	return m
}

func TestSaveComponentPreservesUntouchedLocales(t *testing.T) {
	m := newTestMerger()
	out := m.SaveComponent(heroComponent(), map[string]any{"title": "Hello v2"}, nil, heroFields())
	title := localeMap(t, out.Data["title"])
	if title["en"] != "Hello v2" {
		t.Fatalf("expected default locale overwritten, got %v", title["en"])
	}
	if title["es"] != "Hola" || title["fr"] != "Bonjour" {
		t.Fatalf("expected stored translations preserved, got %v", title)
	}
}

func TestSaveComponentEmptyFormEditDoesNotClearDefault(t *testing.T) {
	m := newTestMerger()
	out := m.SaveComponent(heroComponent(), map[string]any{"title": ""}, nil, heroFields())
	title := localeMap(t, out.Data["title"])
	if title["en"] != "Hello" {
		t.Fatalf("expected empty form edit ignored, got %v", title["en"])
	}
}

func TestSaveComponentAppliesTranslationEdits(t *testing.T) {
	m := newTestMerger()
	edits := map[string]map[string]any{
		"es": {"title": "Hola v2"},
	}
	out := m.SaveComponent(heroComponent(), nil, edits, heroFields())
	title := localeMap(t, out.Data["title"])
	if title["es"] != "Hola v2" {
		t.Fatalf("expected translation edit applied, got %v", title["es"])
	}
	if title["en"] != "Hello" || title["fr"] != "Bonjour" {
		t.Fatalf("expected other locales untouched, got %v", title)
	}
}

func TestSaveComponentExplicitEmptyTranslationClearsLocale(t *testing.T) {
	m := newTestMerger()
	edits := map[string]map[string]any{
		"fr": {"title": ""},
	}
	out := m.SaveComponent(heroComponent(), nil, edits, heroFields())
	title := localeMap(t, out.Data["title"])
	value, ok := title["fr"]
	if !ok || value != "" {
		t.Fatalf("expected explicit empty string kept as the fr value, got %v (%v)", value, ok)
	}
}

func TestSaveComponentCollapsesSingleDefaultLocale(t *testing.T) {
	m := newTestMerger()
	comp := &interfaces.Component{
		ID:         "hero-1",
		SchemaName: "hero",
		Data:       map[string]interfaces.FieldEntry{},
	}
	out := m.SaveComponent(comp, map[string]any{"subtitle": "Only default"}, nil, heroFields())
	if out.Data["subtitle"].Value != "Only default" {
		t.Fatalf("expected single default-locale value stored as scalar, got %v", out.Data["subtitle"].Value)
	}
}

func TestSaveComponentTranslatableObjectKeepsMapShape(t *testing.T) {
	m := newTestMerger()
	comp := &interfaces.Component{ID: "hero-1", SchemaName: "hero", Data: map[string]interfaces.FieldEntry{}}
	fields := []interfaces.FieldDef{{Name: "meta", Type: interfaces.FieldTypeText, Translatable: true}}
	object := map[string]any{"headline": "x"}
	out := m.SaveComponent(comp, map[string]any{"meta": object}, nil, fields)
	meta := localeMap(t, out.Data["meta"])
	inner, ok := meta["en"].(map[string]any)
	if !ok || inner["headline"] != "x" {
		t.Fatalf("expected object pinned under the default locale, got %v", meta)
	}
}

func TestSaveComponentFirstEditInheritsDeclaredType(t *testing.T) {
	m := newTestMerger()
	comp := &interfaces.Component{ID: "hero-1", SchemaName: "hero", Data: map[string]interfaces.FieldEntry{}}
	out := m.SaveComponent(comp, map[string]any{"title": "Fresh"}, nil, heroFields())
	entry := out.Data["title"]
	if entry.Type != interfaces.FieldTypeText || !entry.Translatable {
		t.Fatalf("expected declared type and translatability inherited, got %+v", entry)
	}
}

func TestSaveComponentMintsRepeaterItemIDs(t *testing.T) {
	m := newTestMerger()
	comp := &interfaces.Component{ID: "hero-1", SchemaName: "hero", Data: map[string]interfaces.FieldEntry{}}
	slides := []any{
		map[string]any{"caption": "first"},
		map[string]any{"id": "item_keep", "caption": "second"},
	}
	out := m.SaveComponent(comp, map[string]any{"slides": slides}, nil, heroFields())
	items, ok := out.Data["slides"].Value.([]any)
	if !ok || len(items) != 2 {
		t.Fatalf("expected 2 repeater items, got %v", out.Data["slides"].Value)
	}
	if fieldvalue.ItemID(items[0]) == "" {
		t.Fatal("expected minted id on first item")
	}
	if fieldvalue.ItemID(items[1]) != "item_keep" {
		t.Fatal("expected existing item id preserved")
	}
}

func TestSaveComponentRepeaterTranslationMergesByIndex(t *testing.T) {
	m := newTestMerger()
	comp := &interfaces.Component{
		ID:         "hero-1",
		SchemaName: "hero",
		Data: map[string]interfaces.FieldEntry{
			"slides": {
				Type: interfaces.FieldTypeRepeater,
				Value: map[string]any{
					"en": []any{
						map[string]any{"id": "item_a", "caption": "one", "image": "a.png"},
						map[string]any{"id": "item_b", "caption": "two", "image": "b.png"},
					},
					"es": []any{
						map[string]any{"id": "item_a", "caption": "uno", "image": "a.png"},
						map[string]any{"id": "item_b", "caption": "dos", "image": "b.png"},
					},
				},
			},
		},
	}
	edits := map[string]map[string]any{
		"es": {"slides": []any{
			nil,
			map[string]any{"caption": "dos v2"},
		}},
	}
	out := m.SaveComponent(comp, nil, edits, heroFields())
	slides := localeMap(t, out.Data["slides"])
	es, ok := slides["es"].([]any)
	if !ok || len(es) != 2 {
		t.Fatalf("expected 2 es items, got %v", slides["es"])
	}
	first, _ := es[0].(map[string]any)
	if first["caption"] != "uno" {
		t.Fatalf("expected nil edit slot to keep stored item, got %v", first)
	}
	second, _ := es[1].(map[string]any)
	if second["caption"] != "dos v2" {
		t.Fatalf("expected edited caption, got %v", second)
	}
	if second["image"] != "b.png" || second["id"] != "item_b" {
		t.Fatalf("expected sparse edit to keep untouched item fields, got %v", second)
	}
	en, _ := slides["en"].([]any)
	enFirst, _ := en[0].(map[string]any)
	if enFirst["caption"] != "one" {
		t.Fatalf("expected default locale untouched, got %v", en)
	}
}

func TestDisplayComponentKeepsLocaleMapsExpanded(t *testing.T) {
	m := newTestMerger()
	out := m.DisplayComponent(heroComponent(), map[string]any{"subtitle": "Edited"}, nil, heroFields())
	subtitle := localeMap(t, out["subtitle"])
	if subtitle["en"] != "Edited" {
		t.Fatalf("expected display overlay, got %v", subtitle)
	}
	title := localeMap(t, out["title"])
	if title["es"] != "Hola" {
		t.Fatalf("expected stored translations visible, got %v", title)
	}
}

func TestIsFullyTranslated(t *testing.T) {
	m := newTestMerger()
	full := interfaces.FieldEntry{
		Type:  interfaces.FieldTypeText,
		Value: map[string]any{"en": "a", "es": "b", "fr": "c"},
	}
	if !m.IsFullyTranslated(full) {
		t.Fatal("expected full coverage to report translated")
	}
	partial := interfaces.FieldEntry{
		Type:  interfaces.FieldTypeText,
		Value: map[string]any{"en": "a", "es": ""},
	}
	if m.IsFullyTranslated(partial) {
		t.Fatal("expected empty and missing locales to report untranslated")
	}
	scalar := interfaces.FieldEntry{Type: interfaces.FieldTypeText, Value: "only default"}
	if m.IsFullyTranslated(scalar) {
		t.Fatal("expected scalar content to cover only the default locale")
	}
}
