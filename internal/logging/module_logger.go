package logging

import (
	"context"
	"strings"

	"github.com/oriolmontcreus/capsulo-sub000/pkg/interfaces"
)

const (
	rootModule      = "editor"
	reconcileModule = "editor.reconcile"
	autosaveModule  = "editor.autosave"
	publishModule   = "editor.publish"
	draftsModule    = "editor.drafts"
)

const (
	fieldUnitID    = "unit_id"
	fieldLocale    = "locale"
	fieldOperation = "operation"
)

// ModuleLogger returns a module-scoped logger, defaulting to a no-op
// implementation when no provider is supplied. The returned logger attaches
// the module identifier as structured context so downstream entries can be
// filtered predictably.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	if fieldsLogger, ok := logger.(interfaces.FieldsLogger); ok {
		return fieldsLogger.WithFields(map[string]any{
			"module": module,
		})
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// ReconcileLogger returns the logger namespace reserved for the load path.
func ReconcileLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, reconcileModule)
}

// AutosaveLogger returns the logger namespace reserved for the autosave scheduler.
func AutosaveLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, autosaveModule)
}

// PublishLogger returns the logger namespace reserved for save/publish orchestration.
func PublishLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, publishModule)
}

// DraftsLogger returns the logger namespace reserved for the local draft store.
func DraftsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, draftsModule)
}

// WithUnitContext enriches the provided logger with common editing fields such
// as unit id, locale, and operation. Empty values are ignored.
func WithUnitContext(logger interfaces.Logger, unitID, locale, operation string) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(unitID); trimmed != "" {
		fields[fieldUnitID] = trimmed
	}
	if trimmed := strings.TrimSpace(locale); trimmed != "" {
		fields[fieldLocale] = trimmed
	}
	if trimmed := strings.TrimSpace(operation); trimmed != "" {
		fields[fieldOperation] = trimmed
	}
	return WithFields(logger, fields)
}

// NoOp returns a logger that drops every log entry. It satisfies the Logger
// contract so services can safely operate when logging is disabled.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
