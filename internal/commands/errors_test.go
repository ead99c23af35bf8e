package commands

import (
	"context"
	"errors"
	"fmt"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"

	"github.com/goliatone/go-sites/internal/navigation"
	"github.com/goliatone/go-sites/internal/pages"
	"github.com/goliatone/go-sites/internal/projects"
)

func TestHandlerClassifiesDomainFailures(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		category goerrors.Category
		code     string
	}{
		{"missing page", &pages.NotFoundError{Resource: "page", Key: "home@en"}, goerrors.CategoryNotFound, CodeNotFound},
		{"taken page key", fmt.Errorf("save: %w", pages.ErrPageExists), goerrors.CategoryConflict, CodeConflict},
		{"taken project slug", projects.ErrSlugExists, goerrors.CategoryConflict, CodeConflict},
		{"cross locale link", &navigation.CrossLocaleReferenceError{ItemLocale: "en", PageLocale: "pt", PageID: uuid.New()}, goerrors.CategoryValidation, CodeInvalidReference},
		{"menu reorder", navigation.ErrReorderMismatch, goerrors.CategoryValidation, CodeInvalidReference},
		{"duplicate field", pages.ErrDuplicateFieldKey, goerrors.CategoryBadInput, CodeInvalidContent},
		{"deadline", context.DeadlineExceeded, goerrors.CategoryCommand, CodeTimeout},
		{"storage", errors.New("disk full"), goerrors.CategoryCommand, CodeFailed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewHandler[testMessage](func(context.Context, testMessage) error { return tc.err })

			err := h.Execute(context.Background(), testMessage{})
			if !errors.Is(err, tc.err) {
				t.Fatalf("expected cause %v to be kept, got %v", tc.err, err)
			}
			var wrapped *goerrors.Error
			if !errors.As(err, &wrapped) {
				t.Fatalf("expected go-errors error, got %T", err)
			}
			if wrapped.Category != tc.category || wrapped.TextCode != tc.code {
				t.Fatalf("expected %s/%s, got %s/%s", tc.category, tc.code, wrapped.Category, wrapped.TextCode)
			}
		})
	}
}

func TestHandlerLeavesTaggedErrorsAlone(t *testing.T) {
	tagged := goerrors.New("already tagged", goerrors.CategoryAuthz).WithTextCode("SITES_FORBIDDEN")
	h := NewHandler[testMessage](func(context.Context, testMessage) error { return tagged })

	err := h.Execute(context.Background(), testMessage{})
	var wrapped *goerrors.Error
	if !errors.As(err, &wrapped) || wrapped.TextCode != "SITES_FORBIDDEN" {
		t.Fatalf("expected original tag, got %v", err)
	}
}

func TestInvalidMessageCarriesItsOwnCode(t *testing.T) {
	h := NewHandler[invalidMessage](func(context.Context, invalidMessage) error { return nil })

	err := h.Execute(context.Background(), invalidMessage{})
	var wrapped *goerrors.Error
	if !errors.As(err, &wrapped) || wrapped.TextCode != CodeInvalidMessage {
		t.Fatalf("expected %s, got %v", CodeInvalidMessage, err)
	}
}
