package pagescmd

import (
	"context"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/goliatone/go-sites/internal/commands"
	"github.com/goliatone/go-sites/internal/logging"
	"github.com/goliatone/go-sites/internal/pages"
	"github.com/goliatone/go-sites/pkg/interfaces"
)

const updateFieldsMessageType = "sites.pages.fields.update"

// UpdateFieldsCommand writes several field values of one section at once.
// Either every key is written or none is.
type UpdateFieldsCommand struct {
	SectionID uuid.UUID         `json:"section_id"`
	Values    map[string]string `json:"values"`
}

// Type implements command.Message.
func (UpdateFieldsCommand) Type() string { return updateFieldsMessageType }

// Validate ensures the command targets a section and carries keys.
func (m UpdateFieldsCommand) Validate() error {
	errs := validation.Errors{}
	if m.SectionID == uuid.Nil {
		errs["section_id"] = validation.NewError("sites.pages.fields.section_id_required", "section_id is required")
	}
	if len(m.Values) == 0 {
		errs["values"] = validation.NewError("sites.pages.fields.values_required", "values must contain at least one key")
	}
	for key := range m.Values {
		if strings.TrimSpace(key) == "" {
			errs["values"] = validation.NewError("sites.pages.fields.key_blank", "field keys cannot be blank")
			break
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// FieldUpdater is the slice of pages.Service the handler needs.
type FieldUpdater interface {
	UpdateFields(ctx context.Context, sectionID uuid.UUID, values map[string]string) ([]*pages.Field, error)
}

// UpdateFieldsHandler applies batch field updates.
type UpdateFieldsHandler struct {
	inner *commands.Handler[UpdateFieldsCommand]
}

// NewUpdateFieldsHandler constructs a handler wired to the page service.
func NewUpdateFieldsHandler(service FieldUpdater, logger interfaces.Logger, opts ...commands.HandlerOption[UpdateFieldsCommand]) *UpdateFieldsHandler {
	if logger == nil {
		logger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg UpdateFieldsCommand) error {
		_, err := service.UpdateFields(ctx, msg.SectionID, msg.Values)
		return err
	}

	handlerOpts := []commands.HandlerOption[UpdateFieldsCommand]{
		commands.WithLogger[UpdateFieldsCommand](logger),
		commands.WithOperation[UpdateFieldsCommand]("pages.fields.update"),
		commands.WithMessageFields(func(msg UpdateFieldsCommand) map[string]any {
			return map[string]any{
				"section_id": msg.SectionID,
				"keys":       len(msg.Values),
			}
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[UpdateFieldsCommand](logger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &UpdateFieldsHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[UpdateFieldsCommand].Execute.
func (h *UpdateFieldsHandler) Execute(ctx context.Context, msg UpdateFieldsCommand) error {
	return h.inner.Execute(ctx, msg)
}
