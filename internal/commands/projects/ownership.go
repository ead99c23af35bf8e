package projectscmd

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/goliatone/go-sites/internal/commands"
	"github.com/goliatone/go-sites/internal/logging"
	"github.com/goliatone/go-sites/internal/projects"
	"github.com/goliatone/go-sites/pkg/interfaces"
)

const (
	transferOwnershipMessageType = "sites.projects.ownership.transfer"
	setHeadquartersMessageType   = "sites.projects.headquarters.set"
)

// TransferOwnershipCommand assigns a project to OwnerID, or releases it when
// OwnerID is nil.
type TransferOwnershipCommand struct {
	ProjectID uuid.UUID  `json:"project_id"`
	OwnerID   *uuid.UUID `json:"owner_id,omitempty"`
}

// Type implements command.Message.
func (TransferOwnershipCommand) Type() string { return transferOwnershipMessageType }

// Validate ensures identifiers are present.
func (m TransferOwnershipCommand) Validate() error {
	errs := validation.Errors{}
	if m.ProjectID == uuid.Nil {
		errs["project_id"] = validation.NewError("sites.projects.project_id_required", "project_id is required")
	}
	if m.OwnerID != nil && *m.OwnerID == uuid.Nil {
		errs["owner_id"] = validation.NewError("sites.projects.owner_id_invalid", "owner_id must be a valid identifier when provided")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Ownership converts the command payload into the ownership value.
func (m TransferOwnershipCommand) Ownership() projects.Ownership {
	if m.OwnerID == nil {
		return projects.Unowned()
	}
	return projects.Owned(*m.OwnerID)
}

// SetHeadquartersCommand marks a project as the headquarters site.
type SetHeadquartersCommand struct {
	ProjectID uuid.UUID `json:"project_id"`
}

// Type implements command.Message.
func (SetHeadquartersCommand) Type() string { return setHeadquartersMessageType }

// Validate ensures the project identifier is present.
func (m SetHeadquartersCommand) Validate() error {
	if m.ProjectID == uuid.Nil {
		return validation.Errors{
			"project_id": validation.NewError("sites.projects.project_id_required", "project_id is required"),
		}
	}
	return nil
}

// OwnershipService is the slice of projects.Service the handlers need.
type OwnershipService interface {
	TransferOwnership(ctx context.Context, req projects.TransferOwnershipRequest) (*projects.Project, error)
	SetHeadquarters(ctx context.Context, id uuid.UUID) (*projects.Project, error)
}

// TransferOwnershipHandler moves a project between owners in one transaction.
type TransferOwnershipHandler struct {
	inner *commands.Handler[TransferOwnershipCommand]
}

// NewTransferOwnershipHandler constructs the ownership transfer handler.
func NewTransferOwnershipHandler(service OwnershipService, logger interfaces.Logger, opts ...commands.HandlerOption[TransferOwnershipCommand]) *TransferOwnershipHandler {
	if logger == nil {
		logger = logging.NoOp()
	}
	exec := func(ctx context.Context, msg TransferOwnershipCommand) error {
		_, err := service.TransferOwnership(ctx, projects.TransferOwnershipRequest{
			ProjectID: msg.ProjectID,
			Owner:     msg.Ownership(),
		})
		return err
	}
	handlerOpts := []commands.HandlerOption[TransferOwnershipCommand]{
		commands.WithLogger[TransferOwnershipCommand](logger),
		commands.WithOperation[TransferOwnershipCommand]("projects.ownership.transfer"),
		commands.WithMessageFields(func(msg TransferOwnershipCommand) map[string]any {
			fields := map[string]any{"project_id": msg.ProjectID}
			if msg.OwnerID != nil {
				fields["owner_id"] = *msg.OwnerID
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[TransferOwnershipCommand](logger)),
	}
	handlerOpts = append(handlerOpts, opts...)
	return &TransferOwnershipHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[TransferOwnershipCommand].Execute.
func (h *TransferOwnershipHandler) Execute(ctx context.Context, msg TransferOwnershipCommand) error {
	return h.inner.Execute(ctx, msg)
}

// SetHeadquartersHandler switches the headquarters flag in one transaction.
type SetHeadquartersHandler struct {
	inner *commands.Handler[SetHeadquartersCommand]
}

// NewSetHeadquartersHandler constructs the headquarters handler.
func NewSetHeadquartersHandler(service OwnershipService, logger interfaces.Logger, opts ...commands.HandlerOption[SetHeadquartersCommand]) *SetHeadquartersHandler {
	if logger == nil {
		logger = logging.NoOp()
	}
	exec := func(ctx context.Context, msg SetHeadquartersCommand) error {
		_, err := service.SetHeadquarters(ctx, msg.ProjectID)
		return err
	}
	handlerOpts := []commands.HandlerOption[SetHeadquartersCommand]{
		commands.WithLogger[SetHeadquartersCommand](logger),
		commands.WithOperation[SetHeadquartersCommand]("projects.headquarters.set"),
		commands.WithMessageFields(func(msg SetHeadquartersCommand) map[string]any {
			return map[string]any{"project_id": msg.ProjectID}
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[SetHeadquartersCommand](logger)),
	}
	handlerOpts = append(handlerOpts, opts...)
	return &SetHeadquartersHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[SetHeadquartersCommand].Execute.
func (h *SetHeadquartersHandler) Execute(ctx context.Context, msg SetHeadquartersCommand) error {
	return h.inner.Execute(ctx, msg)
}
