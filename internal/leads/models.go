package leads

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// QuoteRequest is a lead captured from a public site form. Records are
// append-only.
type QuoteRequest struct {
	bun.BaseModel `bun:"table:quote_requests,alias:q"`

	ID         uuid.UUID `bun:",pk,type:uuid" json:"id"`
	ProjectID  uuid.UUID `bun:"project_id,notnull,type:uuid" json:"project_id"`
	Reference  string    `bun:"reference,notnull,unique" json:"reference"`
	Name       string    `bun:"name,notnull" json:"name"`
	Email      string    `bun:"email,notnull" json:"email"`
	Phone      string    `bun:"phone" json:"phone,omitempty"`
	Company    string    `bun:"company" json:"company,omitempty"`
	Service    string    `bun:"service" json:"service,omitempty"`
	Message    string    `bun:"message" json:"message"`
	Locale     string    `bun:"locale" json:"locale,omitempty"`
	SourcePath string    `bun:"source_path" json:"source_path,omitempty"`
	CreatedAt  time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
}
