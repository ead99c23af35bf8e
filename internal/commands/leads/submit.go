package leadscmd

import (
	"context"

	"github.com/google/uuid"

	"github.com/goliatone/go-sites/internal/commands"
	"github.com/goliatone/go-sites/internal/leads"
	"github.com/goliatone/go-sites/internal/logging"
	"github.com/goliatone/go-sites/pkg/interfaces"
)

const submitQuoteRequestMessageType = "sites.leads.quote_request.submit"

// SubmitQuoteRequestCommand records a visitor's quote request. Callers may
// pre-assign Request.ID to read the record back after dispatch.
type SubmitQuoteRequestCommand struct {
	Request leads.SubmitRequest `json:"request"`
}

// Type implements command.Message.
func (SubmitQuoteRequestCommand) Type() string { return submitQuoteRequestMessageType }

// Validate delegates to the request's ozzo rules.
func (m SubmitQuoteRequestCommand) Validate() error {
	return m.Request.Validate()
}

// Submitter is the slice of leads.Service the handler needs.
type Submitter interface {
	Submit(ctx context.Context, req leads.SubmitRequest) (*leads.QuoteRequest, error)
}

// SubmitQuoteRequestHandler stores quote requests.
type SubmitQuoteRequestHandler struct {
	inner *commands.Handler[SubmitQuoteRequestCommand]
}

// NewSubmitQuoteRequestHandler constructs the submission handler.
func NewSubmitQuoteRequestHandler(service Submitter, logger interfaces.Logger, opts ...commands.HandlerOption[SubmitQuoteRequestCommand]) *SubmitQuoteRequestHandler {
	if logger == nil {
		logger = logging.NoOp()
	}
	exec := func(ctx context.Context, msg SubmitQuoteRequestCommand) error {
		_, err := service.Submit(ctx, msg.Request)
		return err
	}
	handlerOpts := []commands.HandlerOption[SubmitQuoteRequestCommand]{
		commands.WithLogger[SubmitQuoteRequestCommand](logger),
		commands.WithOperation[SubmitQuoteRequestCommand]("leads.submit"),
		commands.WithMessageFields(func(msg SubmitQuoteRequestCommand) map[string]any {
			fields := map[string]any{"project_id": msg.Request.ProjectID}
			if msg.Request.ID != uuid.Nil {
				fields["quote_request_id"] = msg.Request.ID
			}
			if msg.Request.SourcePath != "" {
				fields["source_path"] = msg.Request.SourcePath
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[SubmitQuoteRequestCommand](logger)),
	}
	handlerOpts = append(handlerOpts, opts...)
	return &SubmitQuoteRequestHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[SubmitQuoteRequestCommand].Execute.
func (h *SubmitQuoteRequestHandler) Execute(ctx context.Context, msg SubmitQuoteRequestCommand) error {
	return h.inner.Execute(ctx, msg)
}
