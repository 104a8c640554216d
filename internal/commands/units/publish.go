package unitscmd

import (
	"context"

	"github.com/oriolmontcreus/capsulo-sub000/internal/commands"
	"github.com/oriolmontcreus/capsulo-sub000/internal/editor"
	"github.com/oriolmontcreus/capsulo-sub000/pkg/interfaces"
)

const publishDraftsMessageType = "editor.units.publish"

// PublishDraftsCommand requests every unpublished local draft to be committed
// to the remote store as a batch.
type PublishDraftsCommand struct {
	Message string `json:"message,omitempty"`
}

// Type implements command.Message.
func (PublishDraftsCommand) Type() string { return publishDraftsMessageType }

// Validate implements command.Message. The batch message has no required fields.
func (PublishDraftsCommand) Validate() error { return nil }

// PublishDraftsHandler publishes pending drafts via the editing service.
type PublishDraftsHandler struct {
	inner *commands.Handler[PublishDraftsCommand]

	onResult func(*editor.PublishResult)
}

// PublishDraftsHandlerOption configures optional handler behaviour.
type PublishDraftsHandlerOption func(*PublishDraftsHandler)

// WithResultSink registers a callback invoked with the per-unit outcome of
// every publish run, including partial failures.
func WithResultSink(fn func(*editor.PublishResult)) PublishDraftsHandlerOption {
	return func(h *PublishDraftsHandler) {
		h.onResult = fn
	}
}

// NewPublishDraftsHandler constructs a handler wired to the provided editing service.
func NewPublishDraftsHandler(service editor.Service, logger interfaces.Logger, opts ...PublishDraftsHandlerOption) *PublishDraftsHandler {
	h := &PublishDraftsHandler{}
	for _, opt := range opts {
		opt(h)
	}

	exec := func(ctx context.Context, msg PublishDraftsCommand) error {
		result, err := service.Publish(ctx, msg.Message)
		if result != nil && h.onResult != nil {
			h.onResult(result)
		}
		return err
	}

	h.inner = commands.NewHandler[PublishDraftsCommand](exec,
		commands.WithLogger[PublishDraftsCommand](logger),
		commands.WithOperation[PublishDraftsCommand]("units.publish"),
	)
	return h
}

// Execute satisfies command.Commander[PublishDraftsCommand].Execute.
func (h *PublishDraftsHandler) Execute(ctx context.Context, msg PublishDraftsCommand) error {
	return h.inner.Execute(ctx, msg)
}
