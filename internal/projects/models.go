package projects

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// HeaderBackground controls how a site header is painted.
type HeaderBackground string

const (
	HeaderSolid       HeaderBackground = "solid"
	HeaderTransparent HeaderBackground = "transparent"
	HeaderImage       HeaderBackground = "image"
)

// Valid reports whether the mode is one of the known values.
func (h HeaderBackground) Valid() bool {
	switch h {
	case HeaderSolid, HeaderTransparent, HeaderImage:
		return true
	default:
		return false
	}
}

// Project is a tenant site, or the platform's own headquarters site.
type Project struct {
	bun.BaseModel `bun:"table:projects,alias:pr"`

	ID               uuid.UUID        `bun:",pk,type:uuid" json:"id"`
	Slug             string           `bun:"slug,notnull,unique" json:"slug"`
	Name             string           `bun:"name,notnull" json:"name"`
	Owner            Ownership        `bun:"owner_id,type:uuid" json:"ownership"`
	TemplateKey      string           `bun:"template_key" json:"template_key,omitempty"`
	IsHeadquarters   bool             `bun:"is_headquarters,notnull,default:false" json:"is_headquarters"`
	PrimaryColor     string           `bun:"primary_color" json:"primary_color,omitempty"`
	SecondaryColor   string           `bun:"secondary_color" json:"secondary_color,omitempty"`
	AccentColor      string           `bun:"accent_color" json:"accent_color,omitempty"`
	HeaderBackground HeaderBackground `bun:"header_background,notnull,default:'solid'" json:"header_background"`
	CreatedAt        time.Time        `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt        time.Time        `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// Ownership is either Owned by a user or Unowned. The zero value is Unowned.
// It persists as a nullable owner_id column.
type Ownership struct {
	user uuid.UUID
}

// Owned returns an ownership bound to user. A nil user yields Unowned.
func Owned(user uuid.UUID) Ownership {
	return Ownership{user: user}
}

// Unowned returns the ownership of a project nobody has claimed.
func Unowned() Ownership {
	return Ownership{}
}

// Owner returns the owning user and whether one exists.
func (o Ownership) Owner() (uuid.UUID, bool) {
	return o.user, o.user != uuid.Nil
}

// IsOwned reports whether a user owns the project.
func (o Ownership) IsOwned() bool {
	return o.user != uuid.Nil
}

// IsZero lets bun treat Unowned as NULL.
func (o Ownership) IsZero() bool {
	return o.user == uuid.Nil
}

func (o Ownership) String() string {
	if !o.IsOwned() {
		return "unowned"
	}
	return "owned(" + o.user.String() + ")"
}

// Value implements driver.Valuer.
func (o Ownership) Value() (driver.Value, error) {
	if !o.IsOwned() {
		return nil, nil
	}
	return o.user.String(), nil
}

// Scan implements sql.Scanner.
func (o *Ownership) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		o.user = uuid.Nil
		return nil
	case string:
		return o.parse(v)
	case []byte:
		if len(v) == 16 {
			id, err := uuid.FromBytes(v)
			if err != nil {
				return err
			}
			o.user = id
			return nil
		}
		return o.parse(string(v))
	case uuid.UUID:
		o.user = v
		return nil
	default:
		return fmt.Errorf("projects: cannot scan %T into Ownership", src)
	}
}

func (o *Ownership) parse(value string) error {
	if value == "" {
		o.user = uuid.Nil
		return nil
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return fmt.Errorf("projects: invalid owner id: %w", err)
	}
	o.user = id
	return nil
}

type ownershipJSON struct {
	Kind   string     `json:"kind"`
	UserID *uuid.UUID `json:"user_id,omitempty"`
}

// MarshalJSON renders {"kind":"owned","user_id":...} or {"kind":"unowned"}.
func (o Ownership) MarshalJSON() ([]byte, error) {
	if user, ok := o.Owner(); ok {
		return json.Marshal(ownershipJSON{Kind: "owned", UserID: &user})
	}
	return json.Marshal(ownershipJSON{Kind: "unowned"})
}

// UnmarshalJSON accepts the shape produced by MarshalJSON.
func (o *Ownership) UnmarshalJSON(data []byte) error {
	var payload ownershipJSON
	if err := json.Unmarshal(data, &payload); err != nil {
		return err
	}
	switch payload.Kind {
	case "owned":
		if payload.UserID == nil || *payload.UserID == uuid.Nil {
			return ErrOwnerRequired
		}
		o.user = *payload.UserID
	case "", "unowned":
		o.user = uuid.Nil
	default:
		return fmt.Errorf("projects: unknown ownership kind %q", payload.Kind)
	}
	return nil
}
