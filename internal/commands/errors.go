package commands

import (
	"context"
	"errors"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-sites/internal/leads"
	"github.com/goliatone/go-sites/internal/navigation"
	"github.com/goliatone/go-sites/internal/pages"
	"github.com/goliatone/go-sites/internal/projects"
)

// Text codes attached to command failures.
const (
	CodeInvalidMessage   = "SITES_INVALID_MESSAGE"
	CodeCanceled         = "SITES_COMMAND_CANCELED"
	CodeTimeout          = "SITES_COMMAND_TIMEOUT"
	CodeFailed           = "SITES_COMMAND_FAILED"
	CodeNotFound         = "SITES_NOT_FOUND"
	CodeConflict         = "SITES_CONFLICT"
	CodeInvalidReference = "SITES_INVALID_REFERENCE"
	CodeInvalidContent   = "SITES_INVALID_CONTENT"
)

type failureClass struct {
	category goerrors.Category
	code     string
	message  string
}

var conflictSentinels = []error{
	pages.ErrPageExists,
	projects.ErrSlugExists,
	projects.ErrHeadquartersExists,
}

var referenceSentinels = []error{
	navigation.ErrCrossLocaleReference,
	navigation.ErrPageOtherProject,
	navigation.ErrReorderMismatch,
	pages.ErrReorderMismatch,
}

var contentSentinels = []error{
	pages.ErrDuplicateFieldKey,
	pages.ErrUnknownFieldKey,
	pages.ErrFieldKeyRequired,
	pages.ErrNoFieldValues,
	pages.ErrIdentifierRequired,
	pages.ErrPositionInvalid,
}

// classify maps a handler failure onto the category transports switch on.
func classify(err error) failureClass {
	switch {
	case errors.Is(err, context.Canceled):
		return failureClass{goerrors.CategoryCommand, CodeCanceled, "command cancelled"}
	case errors.Is(err, context.DeadlineExceeded):
		return failureClass{goerrors.CategoryCommand, CodeTimeout, "command deadline exceeded"}
	case pages.IsNotFound(err), projects.IsNotFound(err), navigation.IsNotFound(err), leads.IsNotFound(err):
		return failureClass{goerrors.CategoryNotFound, CodeNotFound, "command target not found"}
	case isAny(err, conflictSentinels):
		return failureClass{goerrors.CategoryConflict, CodeConflict, "command conflicts with stored content"}
	case isAny(err, referenceSentinels):
		return failureClass{goerrors.CategoryValidation, CodeInvalidReference, "command references content it cannot use"}
	case isAny(err, contentSentinels):
		return failureClass{goerrors.CategoryBadInput, CodeInvalidContent, "command carries invalid content"}
	default:
		return failureClass{goerrors.CategoryCommand, CodeFailed, "command failed"}
	}
}

func isAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func wrapValidationError(err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid command message").
		WithTextCode(CodeInvalidMessage)
}

func wrapFailure(err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	class := classify(err)
	return goerrors.Wrap(err, class.category, class.message).
		WithTextCode(class.code)
}
