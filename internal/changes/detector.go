package changes

import (
	"github.com/oriolmontcreus/capsulo-sub000/internal/fieldvalue"
	"github.com/oriolmontcreus/capsulo-sub000/internal/session"
	"github.com/oriolmontcreus/capsulo-sub000/pkg/interfaces"
)

// Detector decides whether a unit carries unsaved work. It only ever reads
// the settled edit buffers: debouncing upstream bounds how often this runs,
// never which values it sees.
type Detector struct {
	defaultLocale string
	locales       []string
}

// NewDetector constructs a detector for the configured locales.
func NewDetector(defaultLocale string, locales []string) *Detector {
	return &Detector{
		defaultLocale: defaultLocale,
		locales:       locales,
	}
}

// HasChanges reports form changes, translation changes, or deletion marks
// against the session's working copy.
func (d *Detector) HasChanges(sess *session.Session) bool {
	if sess == nil {
		return false
	}
	if sess.IsForcedChanged() {
		return true
	}
	unit := sess.Unit()
	return d.hasFormChanges(sess, unit) || d.hasTranslationChanges(sess) || sess.HasDeletions()
}

// hasFormChanges compares each edited field to its stored counterpart.
// Empty string and nil normalize to one absent sentinel; structured values
// compare by deep equality. Locale-map stored values compare against the
// default-locale entry.
func (d *Detector) hasFormChanges(sess *session.Session, unit *interfaces.ContentUnit) bool {
	for componentID, fields := range sess.AllFormEdits() {
		var comp *interfaces.Component
		if unit != nil {
			comp = unit.Component(componentID)
		}
		for fieldName, edited := range fields {
			var stored any
			if comp != nil {
				if entry, ok := comp.Data[fieldName]; ok {
					stored = fieldvalue.NormalizeEntry(entry, d.locales).Resolve(d.defaultLocale, d.defaultLocale)
				}
			}
			if !fieldvalue.Equal(edited, stored) {
				return true
			}
		}
	}
	return false
}

// hasTranslationChanges reports whether any non-default locale carries at
// least one non-empty recorded edit, whether or not it round-tripped into
// the stored snapshot yet.
func (d *Detector) hasTranslationChanges(sess *session.Session) bool {
	for locale, byComponent := range sess.AllTranslationEdits() {
		if locale == d.defaultLocale {
			continue
		}
		for _, fields := range byComponent {
			for _, value := range fields {
				if !fieldvalue.IsAbsent(value) {
					return true
				}
			}
		}
	}
	return false
}
