package unitscmd

import (
	"context"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/oriolmontcreus/capsulo-sub000/internal/commands"
	"github.com/oriolmontcreus/capsulo-sub000/internal/editor"
	"github.com/oriolmontcreus/capsulo-sub000/pkg/interfaces"
)

const saveUnitMessageType = "editor.units.save"

// SaveUnitCommand requests the buffered edits of a unit to be validated and
// committed to the remote store.
type SaveUnitCommand struct {
	UnitID  string `json:"unit_id"`
	Message string `json:"message,omitempty"`
}

// Type implements command.Message.
func (SaveUnitCommand) Type() string { return saveUnitMessageType }

// Validate ensures the message carries the required fields before reaching handlers.
func (m SaveUnitCommand) Validate() error {
	errs := validation.Errors{}
	if strings.TrimSpace(m.UnitID) == "" {
		errs["unit_id"] = validation.NewError("editor.units.save.unit_id_required", "unit_id is required")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SaveUnitHandler commits unit edits via the editing service using the shared
// command handler foundation. Validation failures reported by the service are
// surfaced through the Issues accessor of the last execution.
type SaveUnitHandler struct {
	inner *commands.Handler[SaveUnitCommand]

	onIssues func(unitID string, issues []interfaces.ValidationError)
}

// SaveUnitHandlerOption configures optional handler behaviour.
type SaveUnitHandlerOption func(*SaveUnitHandler)

// WithIssueSink registers a callback invoked when a save is rejected by field
// validation.
func WithIssueSink(fn func(unitID string, issues []interfaces.ValidationError)) SaveUnitHandlerOption {
	return func(h *SaveUnitHandler) {
		h.onIssues = fn
	}
}

// NewSaveUnitHandler constructs a handler wired to the provided editing service.
func NewSaveUnitHandler(service editor.Service, logger interfaces.Logger, opts ...SaveUnitHandlerOption) *SaveUnitHandler {
	h := &SaveUnitHandler{}
	for _, opt := range opts {
		opt(h)
	}

	exec := func(ctx context.Context, msg SaveUnitCommand) error {
		issues, err := service.Save(ctx, msg.UnitID, msg.Message)
		if len(issues) > 0 && h.onIssues != nil {
			h.onIssues(msg.UnitID, issues)
		}
		return err
	}

	h.inner = commands.NewHandler[SaveUnitCommand](exec,
		commands.WithLogger[SaveUnitCommand](logger),
		commands.WithOperation[SaveUnitCommand]("units.save"),
	)
	return h
}

// Execute satisfies command.Commander[SaveUnitCommand].Execute.
func (h *SaveUnitHandler) Execute(ctx context.Context, msg SaveUnitCommand) error {
	return h.inner.Execute(ctx, msg)
}
