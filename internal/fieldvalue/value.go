package fieldvalue

import (
	"github.com/oriolmontcreus/capsulo-sub000/pkg/interfaces"
)

// Kind discriminates the two shapes a stored field value can take.
type Kind int

const (
	// KindScalar is a plain value: scalar, array, or nested object such as a
	// file list.
	KindScalar Kind = iota
	// KindLocaleMap is one entry per locale code.
	KindLocaleMap
)

// Value is the tagged union over a field's stored shape. The zero value is
// an absent scalar.
type Value struct {
	kind    Kind
	scalar  any
	locales map[string]any
}

// Scalar wraps a plain value.
func Scalar(v any) Value {
	return Value{kind: KindScalar, scalar: v}
}

// LocaleMap wraps a locale-keyed map. The map is not copied.
func LocaleMap(m map[string]any) Value {
	if m == nil {
		m = map[string]any{}
	}
	return Value{kind: KindLocaleMap, locales: m}
}

// Normalize classifies a raw stored value against the configured locale
// codes. An object whose keys all name configured locales is treated as a
// locale map even when the field was never declared translatable; fields
// whose translatability was inferred rather than declared persist in that
// shape.
func Normalize(raw any, locales []string) Value {
	if m, ok := raw.(map[string]any); ok && looksLikeLocaleMap(m, locales) {
		return LocaleMap(m)
	}
	return Scalar(raw)
}

// NormalizeEntry applies Normalize to a field entry, honouring the declared
// translatable flag: a declared-translatable map value is a locale map even
// when its keys stray outside the configured set.
func NormalizeEntry(entry interfaces.FieldEntry, locales []string) Value {
	if entry.Translatable {
		if m, ok := entry.Value.(map[string]any); ok {
			return LocaleMap(m)
		}
	}
	return Normalize(entry.Value, locales)
}

// Kind reports the shape of the value.
func (v Value) Kind() Kind { return v.kind }

// IsLocaleMap reports whether the value is locale-keyed.
func (v Value) IsLocaleMap() bool { return v.kind == KindLocaleMap }

// Scalar returns the plain value; nil for locale maps.
func (v Value) Scalar() any {
	if v.kind != KindScalar {
		return nil
	}
	return v.scalar
}

// Locale returns the entry stored for a locale code.
func (v Value) Locale(code string) (any, bool) {
	if v.kind != KindLocaleMap {
		return nil, false
	}
	entry, ok := v.locales[code]
	return entry, ok
}

// Locales returns a copy of the locale map; nil for scalars.
func (v Value) Locales() map[string]any {
	if v.kind != KindLocaleMap {
		return nil
	}
	out := make(map[string]any, len(v.locales))
	for code, entry := range v.locales {
		out[code] = entry
	}
	return out
}

// Resolve reads the value for a locale. Scalars resolve to themselves for
// every locale; locale maps fall back to the default locale when the
// requested locale has no entry.
func (v Value) Resolve(locale, defaultLocale string) any {
	if v.kind == KindScalar {
		return v.scalar
	}
	if entry, ok := v.locales[locale]; ok {
		return entry
	}
	if entry, ok := v.locales[defaultLocale]; ok {
		return entry
	}
	return nil
}

// Raw converts the value back to its wire shape.
func (v Value) Raw() any {
	if v.kind == KindScalar {
		return v.scalar
	}
	return v.locales
}

// looksLikeLocaleMap reports whether every key of a non-empty object names a
// configured locale. Subset matching (rather than exact-set) tolerates
// fields persisted before a locale was added to the configuration.
func looksLikeLocaleMap(m map[string]any, locales []string) bool {
	if len(m) == 0 || len(locales) == 0 {
		return false
	}
	known := make(map[string]struct{}, len(locales))
	for _, code := range locales {
		known[code] = struct{}{}
	}
	for key := range m {
		if _, ok := known[key]; !ok {
			return false
		}
	}
	return true
}
