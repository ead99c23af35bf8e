package pagescmd

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/goliatone/go-sites/internal/commands"
	"github.com/goliatone/go-sites/internal/logging"
	"github.com/goliatone/go-sites/internal/pages"
	"github.com/goliatone/go-sites/pkg/interfaces"
)

const reorderSectionsMessageType = "sites.pages.sections.reorder"

// ReorderSectionsCommand rewrites the section order of a page. SectionIDs must
// name every section of the page exactly once.
type ReorderSectionsCommand struct {
	PageID     uuid.UUID   `json:"page_id"`
	SectionIDs []uuid.UUID `json:"section_ids"`
}

// Type implements command.Message.
func (ReorderSectionsCommand) Type() string { return reorderSectionsMessageType }

// Validate ensures the ordering is well formed.
func (m ReorderSectionsCommand) Validate() error {
	errs := validation.Errors{}
	if m.PageID == uuid.Nil {
		errs["page_id"] = validation.NewError("sites.pages.sections.page_id_required", "page_id is required")
	}
	seen := make(map[uuid.UUID]struct{}, len(m.SectionIDs))
	for _, id := range m.SectionIDs {
		if id == uuid.Nil {
			errs["section_ids"] = validation.NewError("sites.pages.sections.id_invalid", "section_ids cannot contain empty identifiers")
			break
		}
		if _, dup := seen[id]; dup {
			errs["section_ids"] = validation.NewError("sites.pages.sections.id_duplicate", "section_ids cannot repeat an identifier")
			break
		}
		seen[id] = struct{}{}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SectionReorderer is the slice of pages.Service the handler needs.
type SectionReorderer interface {
	ReorderSections(ctx context.Context, pageID uuid.UUID, orderedIDs []uuid.UUID) ([]*pages.Section, error)
}

// ReorderSectionsHandler applies a section ordering in one transaction.
type ReorderSectionsHandler struct {
	inner *commands.Handler[ReorderSectionsCommand]
}

// NewReorderSectionsHandler constructs a handler wired to the page service.
func NewReorderSectionsHandler(service SectionReorderer, logger interfaces.Logger, opts ...commands.HandlerOption[ReorderSectionsCommand]) *ReorderSectionsHandler {
	if logger == nil {
		logger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg ReorderSectionsCommand) error {
		_, err := service.ReorderSections(ctx, msg.PageID, msg.SectionIDs)
		return err
	}

	handlerOpts := []commands.HandlerOption[ReorderSectionsCommand]{
		commands.WithLogger[ReorderSectionsCommand](logger),
		commands.WithOperation[ReorderSectionsCommand]("pages.sections.reorder"),
		commands.WithMessageFields(func(msg ReorderSectionsCommand) map[string]any {
			return map[string]any{
				"page_id":  msg.PageID,
				"sections": len(msg.SectionIDs),
			}
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[ReorderSectionsCommand](logger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &ReorderSectionsHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[ReorderSectionsCommand].Execute.
func (h *ReorderSectionsHandler) Execute(ctx context.Context, msg ReorderSectionsCommand) error {
	return h.inner.Execute(ctx, msg)
}
