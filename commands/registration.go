package commands

import (
	"errors"

	editor "github.com/oriolmontcreus/capsulo-sub000"
	internalcmd "github.com/oriolmontcreus/capsulo-sub000/internal/commands"
	unitscmd "github.com/oriolmontcreus/capsulo-sub000/internal/commands/units"
	"github.com/oriolmontcreus/capsulo-sub000/pkg/interfaces"
)

// CommandRegistry records command handlers so hosts can expose them via CLI or cron.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// CommandDispatcher subscribes command handlers to a dispatcher implementation.
type CommandDispatcher interface {
	RegisterCommand(handler any) (CommandSubscription, error)
}

// CommandSubscription allows hosts to tear down dispatcher subscriptions.
type CommandSubscription interface {
	Unsubscribe()
}

// RegistrationOptions configures how handlers are registered during construction.
type RegistrationOptions struct {
	Registry       CommandRegistry
	Dispatcher     CommandDispatcher
	LoggerProvider interfaces.LoggerProvider
	// IssueSink receives the per-field validation failures that block a save.
	IssueSink func(unitID string, issues []editor.ValidationError)
	// ResultSink receives the per-unit outcome of every publish run,
	// including partial failures.
	ResultSink func(*editor.PublishResult)
}

// RegistrationResult captures the constructed command handlers and any dispatcher subscriptions.
type RegistrationResult struct {
	Handlers      []any
	Subscriptions []CommandSubscription
}

// RegisterModuleCommands builds the save and publish command handlers over
// the module's editing service and optionally registers them with
// registry/dispatcher integrations.
func RegisterModuleCommands(module *editor.Module, opts RegistrationOptions) (*RegistrationResult, error) {
	result := &RegistrationResult{
		Handlers:      make([]any, 0),
		Subscriptions: make([]CommandSubscription, 0),
	}
	if module == nil || module.Editor() == nil {
		return result, nil
	}

	provider := opts.LoggerProvider
	if provider == nil {
		provider = module.LoggerProvider()
	}

	var errs error

	register := func(handler any) {
		if handler == nil {
			return
		}
		result.Handlers = append(result.Handlers, handler)

		if opts.Registry != nil {
			if err := opts.Registry.RegisterCommand(handler); err != nil {
				errs = errors.Join(errs, err)
			}
		}

		if opts.Dispatcher != nil {
			subscription, err := opts.Dispatcher.RegisterCommand(handler)
			if err != nil {
				errs = errors.Join(errs, err)
			} else if subscription != nil {
				result.Subscriptions = append(result.Subscriptions, subscription)
			}
		}
	}

	service := module.Editor()
	logger := internalcmd.CommandLogger(provider, "units")

	var saveOpts []unitscmd.SaveUnitHandlerOption
	if opts.IssueSink != nil {
		saveOpts = append(saveOpts, unitscmd.WithIssueSink(opts.IssueSink))
	}
	register(unitscmd.NewSaveUnitHandler(service, logger, saveOpts...))

	var publishOpts []unitscmd.PublishDraftsHandlerOption
	if opts.ResultSink != nil {
		publishOpts = append(publishOpts, unitscmd.WithResultSink(opts.ResultSink))
	}
	register(unitscmd.NewPublishDraftsHandler(service, logger, publishOpts...))

	return result, errs
}
