package commands

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
)

// Text codes let hosts route editor command failures without string-matching
// wrapped messages.
const (
	codeValidationFailed = "EDITOR_COMMAND_VALIDATION_FAILED"
	codeContextCanceled  = "EDITOR_COMMAND_CANCELED"
	codeContextTimeout   = "EDITOR_COMMAND_TIMEOUT"
	codeContextError     = "EDITOR_COMMAND_CONTEXT_ERROR"
	codeExecuteFailed    = "EDITOR_COMMAND_EXECUTION_FAILED"
)

func wrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryValidation, "editor command message rejected").
		WithTextCode(codeValidationFailed)
}

func wrapContextError(err error) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	switch err {
	case context.Canceled:
		return goerrors.Wrap(err, goerrors.CategoryCommand, "editor command cancelled").
			WithTextCode(codeContextCanceled)
	case context.DeadlineExceeded:
		return goerrors.Wrap(err, goerrors.CategoryCommand, "editor command deadline exceeded").
			WithTextCode(codeContextTimeout)
	default:
		return goerrors.Wrap(err, goerrors.CategoryCommand, "editor command context error").
			WithTextCode(codeContextError)
	}
}

func wrapExecuteError(err error) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryCommand, "editor command failed").
		WithTextCode(codeExecuteFailed)
}
