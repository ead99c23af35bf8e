package navigation

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Location names the menu an item belongs to.
type Location string

const (
	LocationHeader Location = "header"
	LocationFooter Location = "footer"
)

// Valid reports whether l is a known menu location.
func (l Location) Valid() bool {
	switch l {
	case LocationHeader, LocationFooter:
		return true
	default:
		return false
	}
}

// Item is a menu entry authored for one (project, location, locale). It links
// either to a free URL or to a page of the same project and locale.
type Item struct {
	bun.BaseModel `bun:"table:navigation_items,alias:n"`

	ID        uuid.UUID  `bun:",pk,type:uuid" json:"id"`
	ProjectID uuid.UUID  `bun:"project_id,notnull,type:uuid" json:"project_id"`
	Label     string     `bun:"label,notnull" json:"label"`
	Locale    string     `bun:"locale,notnull" json:"locale"`
	Location  Location   `bun:"location,notnull" json:"location"`
	Order     int        `bun:"sort_order,notnull,default:0" json:"order"`
	URL       *string    `bun:"url" json:"url,omitempty"`
	PageID    *uuid.UUID `bun:"page_id,type:uuid" json:"page_id,omitempty"`
	CreatedAt time.Time  `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time  `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// LinksPage reports whether the item targets a page.
func (i *Item) LinksPage() bool {
	return i.PageID != nil && *i.PageID != uuid.Nil
}

// ResolvedItem is a navigation entry ready for rendering.
type ResolvedItem struct {
	ID     uuid.UUID  `json:"id"`
	Label  string     `json:"label"`
	URL    string     `json:"url"`
	PageID *uuid.UUID `json:"page_id,omitempty"`
	Order  int        `json:"order"`
}
